// Package tui is the interactive terminal front end: an alarm pane, an
// automation pane for the selected alarm, and modal overlays for the
// automation builder and destructive confirmations. All alarm state comes
// from push updates; the UI never mutates its own copy ahead of the
// platform.
package tui

import (
	"context"
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/v2/list"
	"github.com/charmbracelet/bubbles/v2/textinput"
	tea "github.com/charmbracelet/bubbletea/v2"
	"github.com/charmbracelet/lipgloss/v2"

	"alarmdeck/pkg/alarm"
	"alarmdeck/pkg/app"
	"alarmdeck/pkg/automation"
	"alarmdeck/pkg/tui/theme"
)

type mode int

const (
	modeNormal mode = iota
	modeInsert
	modeConfirm
	modeWizard
	modeHelp
)

type action int

const (
	actionNone action = iota
	actionAddName
	actionAddTime
	actionSetTime
)

// alarmItem renders one alarm row in the left list.
type alarmItem struct {
	a  alarm.Alarm
	th theme.AlarmTheme
}

func (it alarmItem) Title() string {
	t := it.th.Time.Render(it.a.Time)
	if it.a.State == alarm.StateTriggered {
		t = it.th.Triggered.Render(it.a.Time)
	}

	days := make([]string, 0, 7)
	for _, d := range alarm.AllDays() {
		label := strings.ToUpper(string(d)[:1])
		if it.a.HasDay(d) {
			days = append(days, it.th.DayOn.Render(label))
		} else {
			days = append(days, it.th.DayOff.Render(label))
		}
	}

	name := it.a.Name
	if !it.a.Enabled {
		name = it.th.Disabled.Render(name + " (off)")
	}
	row := fmt.Sprintf("%s  %s  %s", t, name, strings.Join(days, " "))
	if it.a.Repeat {
		row += it.th.DayOff.Render("  ↻")
	}
	return row
}
func (it alarmItem) Description() string { return "" }
func (it alarmItem) FilterValue() string { return it.a.Name }

// autoItem renders one automation row in the right list.
type autoItem struct{ s automation.Summary }

func (it autoItem) Title() string {
	state := "on"
	if !it.s.Active {
		state = "off"
	}
	return fmt.Sprintf("%s [%s]", it.s.DisplayName, state)
}
func (it autoItem) Description() string { return "" }
func (it autoItem) FilterValue() string { return it.s.DisplayName }

// Messages the host program feeds into the model.
type (
	// AlarmsChangedMsg carries a freshly accepted alarm list. The runner
	// sends it for every push update that survived the change gate.
	AlarmsChangedMsg struct{ Alarms []alarm.Alarm }
	// ErrMsg surfaces a background failure on the status line.
	ErrMsg struct{ Err error }

	automationsLoadedMsg struct{ items []list.Item }
	statusMsg            string
)

// Model contains the UI state.
type Model struct {
	svc  *app.Service
	ctx  context.Context
	mode mode
	act  action

	focus int // 0: alarms, 1: automations

	alarmList list.Model
	autoList  list.Model
	input     textinput.Model

	status      string
	pendingName string

	confirmPrompt string
	confirmDo     func() tea.Msg

	wiz *wizard

	termWidth  int
	termHeight int

	focusDel list.DefaultDelegate
	blurDel  list.DefaultDelegate
	theme    theme.Theme
}

// New creates a UI model backed by the service.
func New(svc *app.Service) Model {
	th := theme.Default()

	dFocus := list.NewDefaultDelegate()
	dBlur := list.NewDefaultDelegate()
	dBlur.Styles.SelectedTitle = dBlur.Styles.NormalTitle
	dBlur.Styles.SelectedDesc = dBlur.Styles.NormalDesc
	dFocus.ShowDescription = false
	dBlur.ShowDescription = false
	dFocus.SetSpacing(0)
	dBlur.SetSpacing(0)

	l1 := list.New([]list.Item{}, dFocus, 48, 20)
	l1.Title = "Alarms"
	l1.SetShowHelp(false)
	l1.SetShowStatusBar(false)

	l2 := list.New([]list.Item{}, dBlur, 40, 20)
	l2.Title = "Automations"
	l2.SetShowHelp(false)
	l2.SetShowStatusBar(false)

	ti := textinput.New()
	ti.CharLimit = 64
	ti.Prompt = ""

	m := Model{
		svc:       svc,
		ctx:       context.Background(),
		mode:      modeNormal,
		focus:     0,
		alarmList: l1,
		autoList:  l2,
		input:     ti,
		status:    "NORMAL: j/k move, h/l panes, o add, t time, 1-7 days, x toggle, p repeat, a automation, d delete, ? help",
		focusDel:  dFocus,
		blurDel:   dBlur,
		theme:     th,
	}
	m.updateFocusHeaders()
	return m
}

// Init loads the initial alarm view.
func (m Model) Init() tea.Cmd {
	return m.refresh()
}

func (m *Model) refresh() tea.Cmd {
	return func() tea.Msg {
		if _, err := m.svc.Refresh(m.ctx); err != nil {
			return ErrMsg{err}
		}
		return AlarmsChangedMsg{Alarms: m.svc.Alarms()}
	}
}

func (m *Model) selectedAlarm() (alarm.Alarm, bool) {
	sel := m.alarmList.SelectedItem()
	if sel == nil {
		return alarm.Alarm{}, false
	}
	it, ok := sel.(alarmItem)
	return it.a, ok
}

func (m *Model) selectedAutomation() (automation.Summary, bool) {
	sel := m.autoList.SelectedItem()
	if sel == nil {
		return automation.Summary{}, false
	}
	it, ok := sel.(autoItem)
	return it.s, ok
}

func (m *Model) loadAutomations() tea.Cmd {
	a, ok := m.selectedAlarm()
	return func() tea.Msg {
		if !ok {
			return automationsLoadedMsg{nil}
		}
		summaries := m.svc.Automations(a.ID)
		items := make([]list.Item, 0, len(summaries))
		for _, s := range summaries {
			items = append(items, autoItem{s: s})
		}
		return automationsLoadedMsg{items}
	}
}

// dispatchCmd runs one intent in the background and reports the outcome.
// State changes come back through the push channel, never from the intent's
// own success.
func (m *Model) dispatchCmd(status string, fn func() error) tea.Cmd {
	return func() tea.Msg {
		if err := fn(); err != nil {
			return ErrMsg{err}
		}
		return statusMsg(status)
	}
}

// Update handles messages and keybindings.
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	var cmds []tea.Cmd
	skipListRouting := false

	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.termWidth = msg.Width
		m.termHeight = msg.Height
		m.applySizes()
	case ErrMsg:
		m.status = "ERR: " + msg.Err.Error()
	case statusMsg:
		m.status = string(msg)
	case AlarmsChangedMsg:
		items := make([]list.Item, 0, len(msg.Alarms))
		for _, a := range msg.Alarms {
			items = append(items, alarmItem{a: a, th: m.theme.Alarm})
		}
		prev := m.alarmList.Index()
		m.alarmList.SetItems(items)
		if prev >= len(items) {
			prev = len(items) - 1
		}
		if prev >= 0 {
			m.alarmList.Select(prev)
		}
		cmds = append(cmds, m.loadAutomations())
	case automationsLoadedMsg:
		m.autoList.SetItems(msg.items)
	case tea.KeyPressMsg:
		switch m.mode {
		case modeHelp:
			if key := msg.String(); key == "q" || key == "esc" || key == "?" {
				m.mode = modeNormal
				skipListRouting = true
			}
		case modeConfirm:
			switch msg.String() {
			case "y", "Y":
				do := m.confirmDo
				m.mode = modeNormal
				m.confirmDo = nil
				cmds = append(cmds, do)
			case "n", "N", "esc", "q":
				m.mode = modeNormal
				m.confirmDo = nil
				m.status = "Cancelled"
			}
			skipListRouting = true
		case modeWizard:
			done, status, cmd := m.wiz.handleKey(m.ctx, msg)
			if cmd != nil {
				cmds = append(cmds, cmd)
			}
			if status != "" {
				m.status = status
			}
			if done {
				m.mode = modeNormal
				m.wiz = nil
				cmds = append(cmds, m.refresh())
			}
			skipListRouting = true
		case modeInsert:
			skipListRouting = true
			switch msg.String() {
			case "enter":
				cmds = append(cmds, m.commitInsert())
			case "esc":
				m.leaveInsert("Cancelled")
			default:
				var cmd tea.Cmd
				m.input, cmd = m.input.Update(msg)
				cmds = append(cmds, cmd)
			}
		case modeNormal:
			switch msg.String() {
			case "h", "left":
				m.focus = 0
				m.updateFocusHeaders()
				skipListRouting = true
			case "l", "right":
				m.focus = 1
				m.updateFocusHeaders()
				skipListRouting = true
			case "j", "down":
				if m.focus == 0 {
					m.alarmList.CursorDown()
					cmds = append(cmds, m.loadAutomations())
				} else {
					m.autoList.CursorDown()
				}
				skipListRouting = true
			case "k", "up":
				if m.focus == 0 {
					m.alarmList.CursorUp()
					cmds = append(cmds, m.loadAutomations())
				} else {
					m.autoList.CursorUp()
				}
				skipListRouting = true

			case "o":
				m.mode = modeInsert
				m.act = actionAddName
				m.input.Placeholder = "Alarm name"
				m.input.SetValue("")
				if cmd := m.input.Focus(); cmd != nil {
					cmds = append(cmds, cmd)
				}
				cmds = append(cmds, textinput.Blink)
				skipListRouting = true

			case "t":
				if a, ok := m.selectedAlarm(); ok {
					m.mode = modeInsert
					m.act = actionSetTime
					m.input.Placeholder = "HH:MM"
					m.input.SetValue(a.Time)
					m.input.CursorEnd()
					if cmd := m.input.Focus(); cmd != nil {
						cmds = append(cmds, cmd)
					}
					cmds = append(cmds, textinput.Blink)
				}
				skipListRouting = true

			case "x", " ", "space":
				if m.focus == 1 {
					if s, ok := m.selectedAutomation(); ok {
						cmds = append(cmds, m.dispatchCmd("Automation toggled", func() error {
							return m.svc.Dispatcher().ToggleAutomation(m.ctx, s.ID)
						}), m.refresh())
					}
				} else if a, ok := m.selectedAlarm(); ok {
					cmds = append(cmds, m.dispatchCmd("Toggled", func() error {
						return m.svc.Dispatcher().ToggleAlarm(m.ctx, a.ID)
					}), m.refresh())
				}
				skipListRouting = true

			case "p":
				if a, ok := m.selectedAlarm(); ok {
					repeat := !a.Repeat
					cmds = append(cmds, m.dispatchCmd("Repeat updated", func() error {
						return m.svc.Dispatcher().SetRepeat(m.ctx, a.ID, repeat)
					}), m.refresh())
				}
				skipListRouting = true

			case "1", "2", "3", "4", "5", "6", "7":
				if a, ok := m.selectedAlarm(); ok {
					day := alarm.AllDays()[int(msg.String()[0]-'1')]
					cmds = append(cmds, m.dispatchCmd("Days updated", func() error {
						return m.svc.Dispatcher().ToggleDay(m.ctx, a, day)
					}), m.refresh())
				}
				skipListRouting = true

			case "a":
				if a, ok := m.selectedAlarm(); ok {
					m.wiz = newWizard(m.svc, a.ID, m.theme)
					m.wiz.setSize(m.termWidth, m.termHeight)
					m.mode = modeWizard
					m.status = "Pick an action kind"
				}
				skipListRouting = true

			case "e":
				if m.focus == 1 {
					if s, ok := m.selectedAutomation(); ok {
						m.svc.Dispatcher().EditAutomation(s.ID)
						m.status = "Edit the rule with: alarmdeck automation edit " + s.ID
					}
				}
				skipListRouting = true

			case "d":
				if m.focus == 1 {
					if s, ok := m.selectedAutomation(); ok {
						ruleID := strings.TrimPrefix(s.ID, automation.Domain+".")
						m.enterConfirm(
							fmt.Sprintf("Delete automation %q? There is no undo.", s.DisplayName),
							m.dispatchDelete(ruleID),
						)
					}
				} else if a, ok := m.selectedAlarm(); ok {
					m.enterConfirm(
						fmt.Sprintf("Remove alarm %q? There is no undo.", a.Name),
						m.dispatchRemove(a.ID),
					)
				}
				skipListRouting = true

			case "r":
				cmds = append(cmds, m.refresh())
				skipListRouting = true
			case "?":
				m.mode = modeHelp
				skipListRouting = true
			case "q", "ctrl+c":
				cmds = append(cmds, tea.Quit)
				skipListRouting = true
			}
		}
	}

	if m.mode == modeNormal && !skipListRouting {
		if m.focus == 0 {
			var cmd tea.Cmd
			m.alarmList, cmd = m.alarmList.Update(msg)
			cmds = append(cmds, cmd)
		} else {
			var cmd tea.Cmd
			m.autoList, cmd = m.autoList.Update(msg)
			cmds = append(cmds, cmd)
		}
	}

	return m, tea.Batch(cmds...)
}

func (m *Model) dispatchDelete(ruleID string) func() tea.Msg {
	svc := m.svc
	ctx := m.ctx
	return func() tea.Msg {
		if err := svc.Dispatcher().DeleteAutomation(ctx, ruleID); err != nil {
			return ErrMsg{err}
		}
		if _, err := svc.Refresh(ctx); err != nil {
			return ErrMsg{err}
		}
		return AlarmsChangedMsg{Alarms: svc.Alarms()}
	}
}

func (m *Model) dispatchRemove(alarmID string) func() tea.Msg {
	svc := m.svc
	ctx := m.ctx
	return func() tea.Msg {
		if err := svc.Dispatcher().RemoveAlarm(ctx, alarmID); err != nil {
			return ErrMsg{err}
		}
		if _, err := svc.Refresh(ctx); err != nil {
			return ErrMsg{err}
		}
		return AlarmsChangedMsg{Alarms: svc.Alarms()}
	}
}

func (m *Model) enterConfirm(prompt string, do func() tea.Msg) {
	m.mode = modeConfirm
	m.confirmPrompt = prompt
	m.confirmDo = do
}

func (m *Model) commitInsert() tea.Cmd {
	value := strings.TrimSpace(m.input.Value())
	switch m.act {
	case actionAddName:
		if value == "" {
			m.leaveInsert("Add cancelled")
			return nil
		}
		m.pendingName = value
		m.act = actionAddTime
		m.input.Placeholder = "HH:MM"
		m.input.SetValue("")
		return textinput.Blink
	case actionAddTime:
		name := m.pendingName
		m.leaveInsert("")
		return tea.Batch(m.dispatchCmd("Added "+name, func() error {
			return m.svc.Dispatcher().AddAlarm(m.ctx, name, value)
		}), m.refresh())
	case actionSetTime:
		a, ok := m.selectedAlarm()
		m.leaveInsert("")
		if !ok {
			return nil
		}
		return tea.Batch(m.dispatchCmd("Time updated", func() error {
			return m.svc.Dispatcher().SetTime(m.ctx, a.ID, value)
		}), m.refresh())
	}
	m.leaveInsert("")
	return nil
}

func (m *Model) leaveInsert(status string) {
	m.mode = modeNormal
	m.act = actionNone
	m.pendingName = ""
	m.input.Reset()
	m.input.Blur()
	if status != "" {
		m.status = status
	}
}

// View renders the two panes plus any active overlay.
func (m Model) View() string {
	if m.mode == modeWizard && m.wiz != nil {
		return m.wiz.view()
	}

	left := m.alarmList.View()
	right := m.autoList.View()
	gap := lipgloss.NewStyle().Padding(0, 1).Render

	body := lipgloss.JoinHorizontal(lipgloss.Top, left, gap(" "), right)

	if m.mode == modeInsert {
		prompt := map[action]string{
			actionAddName: "Name: ",
			actionAddTime: "Time: ",
			actionSetTime: "Time: ",
		}[m.act]
		body += "\n\n" + prompt + m.input.View()
	}
	if m.mode == modeConfirm {
		panel := m.theme.Modal.Frame.Render(m.confirmPrompt + "\n\ny confirm · n cancel")
		body += "\n\n" + panel
	}
	if m.mode == modeHelp {
		help := "Keys: h/l panes, j/k move, o add, t time, 1-7 toggle days, x/space toggle, p repeat, a new automation, e edit automation, d delete, r refresh, q quit"
		body += "\n\n" + lipgloss.NewStyle().Italic(true).Render(help)
	}

	status := m.theme.Footer.Status.Render(m.status)
	return body + "\n\n" + status
}

// applySizes recalculates list sizes from the terminal size.
func (m *Model) applySizes() {
	if m.termWidth == 0 || m.termHeight == 0 {
		return
	}
	left := m.termWidth * 3 / 5
	if left < 40 {
		left = 40
	}
	right := m.termWidth - left - 4
	if right < 24 {
		right = 24
	}
	height := m.termHeight - 4
	if height < 5 {
		height = 5
	}
	m.alarmList.SetSize(left, height)
	m.autoList.SetSize(right, height)
	if m.wiz != nil {
		m.wiz.setSize(m.termWidth, m.termHeight)
	}
}

func (m *Model) updateFocusHeaders() {
	const on = "» "
	const off = "  "
	if m.focus == 0 {
		m.alarmList.Title = on + "Alarms"
		m.autoList.Title = off + "Automations"
		m.alarmList.SetDelegate(m.focusDel)
		m.autoList.SetDelegate(m.blurDel)
	} else {
		m.alarmList.Title = off + "Alarms"
		m.autoList.Title = on + "Automations"
		m.alarmList.SetDelegate(m.blurDel)
		m.autoList.SetDelegate(m.focusDel)
	}
}
