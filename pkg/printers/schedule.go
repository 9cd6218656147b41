package printers

import (
	"fmt"

	"github.com/fatih/color"
	"github.com/gosuri/uitable"

	"alarmdeck/pkg/app"
)

// Schedule prints the upcoming firings for a window, one row per firing.
func (pp *PrettyPrint) Schedule(result app.ScheduleResult) {
	t := color.New(color.Bold, color.Underline)
	_, _ = t.Printf("Upcoming until %s\n", result.Until.Format("Mon 15:04"))

	if len(result.Entries) == 0 {
		f := color.New(color.Faint, color.Italic)
		_, _ = f.Print(" nothing scheduled\n\n")
		return
	}

	tbl := uitable.New()
	tbl.Separator = "  "
	tbl.AddRow(bold("When"), bold("Alarm"), bold("Repeat"))
	for _, e := range result.Entries {
		tbl.AddRow(e.At.Format("Mon 15:04"), e.Alarm.Name, repeatCell(e.Alarm))
	}
	_, _ = fmt.Fprintln(color.Output, tbl)

	if result.Idle > 0 {
		f := color.New(color.Faint)
		_, _ = f.Printf("%d alarm(s) idle in this window\n", result.Idle)
	}
}
