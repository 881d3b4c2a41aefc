package views

import (
	"fmt"

	"github.com/gdamore/tcell/v2"
	"github.com/mingleapp/mingle/internal/api"
	"github.com/mingleapp/mingle/internal/tui/ui"
	"github.com/rivo/tview"
)

// Dashboard shows the match feed next to the community event feed.
type Dashboard struct {
	*tview.Flex
	theme     *ui.Theme
	matches   *tview.Table
	events    *tview.Table
	matchData []api.Match
	onConnect func(matchID string)
	onIgnore  func(matchID string)
	onMessage func(participantID string)
}

// NewDashboard creates the dashboard layout.
func NewDashboard(theme *ui.Theme) *Dashboard {
	d := &Dashboard{theme: theme}

	matches := tview.NewTable().
		SetSelectable(true, false).
		SetBorders(false).
		SetFixed(1, 0)
	matches.SetBorder(true).SetTitle(" People you may know ").SetTitleColor(theme.TitleColor)
	matches.SetBorderColor(theme.BorderColor)
	matches.SetBackgroundColor(theme.BgColor)
	matches.SetSelectedStyle(tcell.StyleDefault.
		Foreground(theme.TableCursorFg).
		Background(theme.TableCursorBg))

	events := tview.NewTable().
		SetSelectable(false, false).
		SetBorders(false).
		SetFixed(1, 0)
	events.SetBorder(true).SetTitle(" Events ").SetTitleColor(theme.TitleColor)
	events.SetBorderColor(theme.BorderColor)
	events.SetBackgroundColor(theme.BgColor)

	matches.SetInputCapture(func(event *tcell.EventKey) *tcell.EventKey {
		if event.Key() != tcell.KeyRune {
			return event
		}
		id := d.selectedMatch()
		if id == "" {
			return event
		}
		switch event.Rune() {
		case 'c':
			if d.onConnect != nil {
				d.onConnect(id)
			}
			return nil
		case 'x':
			if d.onIgnore != nil {
				d.onIgnore(id)
			}
			return nil
		case 'm':
			if d.onMessage != nil {
				d.onMessage(id)
			}
			return nil
		}
		return event
	})

	d.Flex = tview.NewFlex().
		AddItem(matches, 0, 3, true).
		AddItem(events, 0, 2, false)
	d.matches = matches
	d.events = events
	return d
}

// SetOnConnect sets the callback for the connect action.
func (d *Dashboard) SetOnConnect(fn func(matchID string)) { d.onConnect = fn }

// SetOnIgnore sets the callback for the ignore action.
func (d *Dashboard) SetOnIgnore(fn func(matchID string)) { d.onIgnore = fn }

// SetOnMessage sets the callback for starting a conversation with the
// selected match.
func (d *Dashboard) SetOnMessage(fn func(participantID string)) { d.onMessage = fn }

// Update re-renders both feeds.
func (d *Dashboard) Update(matches []api.Match, events []api.Event) {
	d.matchData = matches
	d.matches.Clear()

	headers := []string{" NAME", " TITLE", " MUTUAL", " STATUS"}
	for col, h := range headers {
		d.matches.SetCell(0, col, tview.NewTableCell(h).
			SetSelectable(false).
			SetTextColor(d.theme.TableHeaderFg).
			SetAttributes(tcell.AttrBold))
	}
	for i, m := range matches {
		row := i + 1
		status := "c:connect x:ignore m:message"
		if m.IsConnected {
			status = "connected"
		}
		d.matches.SetCell(row, 0, tview.NewTableCell(" "+tview.Escape(m.Name)).SetMaxWidth(24).SetExpansion(1).SetTextColor(d.theme.FgColor))
		d.matches.SetCell(row, 1, tview.NewTableCell(" "+tview.Escape(m.Title)).SetMaxWidth(28).SetExpansion(1).SetTextColor(d.theme.FgColor))
		d.matches.SetCell(row, 2, tview.NewTableCell(fmt.Sprintf(" %d", m.MutualConnections)).SetMaxWidth(8).SetTextColor(d.theme.FgColor))
		d.matches.SetCell(row, 3, tview.NewTableCell(" "+status).SetTextColor(d.theme.StatusSentColor))
	}

	d.events.Clear()
	d.events.SetCell(0, 0, tview.NewTableCell(" UPCOMING").
		SetSelectable(false).
		SetTextColor(d.theme.TableHeaderFg).
		SetAttributes(tcell.AttrBold))
	for i, e := range events {
		row := i*2 + 1
		d.events.SetCell(row, 0, tview.NewTableCell(fmt.Sprintf(" [::b]%s[-:-:-] %s", tview.Escape(e.Title), e.Date.Format("Jan 2"))).SetTextColor(d.theme.FgColor))
		d.events.SetCell(row+1, 0, tview.NewTableCell(fmt.Sprintf("   %s, %d attending", tview.Escape(e.Location), e.AttendeeCount)).SetTextColor(d.theme.StatusSentColor))
	}
}

func (d *Dashboard) selectedMatch() string {
	row, _ := d.matches.GetSelection()
	idx := row - 1
	if idx >= 0 && idx < len(d.matchData) {
		return d.matchData[idx].ID
	}
	return ""
}
