package printers

import (
	"fmt"
	"strings"

	"github.com/fatih/color"
	"github.com/gosuri/uitable"

	"alarmdeck/pkg/alarm"
	"alarmdeck/pkg/automation"
)

type PrettyPrint struct {
	ShowID bool
}

func (pp *PrettyPrint) NewLine() {
	fmt.Println("")
}

func (pp *PrettyPrint) Title(title string) {
	t := color.New(color.Bold, color.Underline)
	_, _ = t.Println(title)
}

func (pp *PrettyPrint) TitleWithCount(title string, count int) {
	t := color.New(color.Bold, color.Underline)
	c := color.New(color.Faint)

	_, _ = t.Print(title)
	_, _ = c.Printf(" - %d", count)

	switch count {
	case 1:
		_, _ = c.Println(" alarm")
	default:
		_, _ = c.Println(" alarms")
	}
}

func (pp *PrettyPrint) Alarms(alarms ...alarm.Alarm) {
	if len(alarms) == 0 {
		f := color.New(color.Faint, color.Italic)
		_, _ = f.Print(" none\n\n")
		return
	}

	tbl := uitable.New()
	tbl.Separator = "  "
	if pp.ShowID {
		tbl.AddRow(bold("ID"), bold("Name"), bold("Time"), bold("Days"), bold("Repeat"), bold("State"))
	} else {
		tbl.AddRow(bold("Name"), bold("Time"), bold("Days"), bold("Repeat"), bold("State"))
	}
	for _, a := range alarms {
		row := []interface{}{a.Name, timeCell(a), dayCells(a), repeatCell(a), stateCell(a)}
		if pp.ShowID {
			row = append([]interface{}{faint(a.ID)}, row...)
		}
		tbl.AddRow(row...)
	}
	_, _ = fmt.Fprintln(color.Output, tbl)
}

func (pp *PrettyPrint) Automations(summaries ...automation.Summary) {
	if len(summaries) == 0 {
		f := color.New(color.Faint, color.Italic)
		_, _ = f.Print(" none configured\n\n")
		return
	}

	tbl := uitable.New()
	tbl.Separator = "  "
	tbl.AddRow(bold("ID"), bold("Name"), bold("Active"))
	for _, s := range summaries {
		active := color.New(color.FgGreen).Sprint("on")
		if !s.Active {
			active = color.New(color.Faint).Sprint("off")
		}
		tbl.AddRow(faint(s.ID), s.DisplayName, active)
	}
	_, _ = fmt.Fprintln(color.Output, tbl)
}

func timeCell(a alarm.Alarm) string {
	if a.State == alarm.StateTriggered {
		return color.New(color.FgHiRed, color.Bold).Sprint(a.Time)
	}
	return a.Time
}

// dayCells renders the seven weekday slots in fixed order, selected days
// highlighted.
func dayCells(a alarm.Alarm) string {
	sel := color.New(color.Bold, color.FgHiCyan)
	off := color.New(color.Faint)

	cells := make([]string, 0, 7)
	for _, d := range alarm.AllDays() {
		label := strings.ToUpper(string(d)[:1])
		if a.HasDay(d) {
			cells = append(cells, sel.Sprint(label))
		} else {
			cells = append(cells, off.Sprint(label))
		}
	}
	return strings.Join(cells, " ")
}

func repeatCell(a alarm.Alarm) string {
	if a.Repeat {
		return "yes"
	}
	return faint("no")
}

func stateCell(a alarm.Alarm) string {
	switch {
	case a.State == alarm.StateTriggered:
		return color.New(color.FgHiRed, color.Bold).Sprint("triggered")
	case !a.Enabled:
		return faint("off")
	default:
		return color.New(color.FgGreen).Sprint("on")
	}
}

func bold(s string) string  { return color.New(color.Bold).Sprint(s) }
func faint(s string) string { return color.New(color.Faint).Sprint(s) }
