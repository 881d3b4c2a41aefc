package views

import (
	"fmt"
	"time"

	"github.com/gdamore/tcell/v2"
	"github.com/mingleapp/mingle/internal/chat"
	"github.com/mingleapp/mingle/internal/delivery"
	"github.com/mingleapp/mingle/internal/tui/ui"
	"github.com/rivo/tview"
)

// ConversationList is the DM inbox table.
type ConversationList struct {
	*tview.Table
	theme *ui.Theme
	data  []*chat.Conversation
}

// NewConversationList creates the inbox table.
func NewConversationList(theme *ui.Theme) *ConversationList {
	table := tview.NewTable().
		SetSelectable(true, false).
		SetBorders(false).
		SetFixed(1, 0)
	table.SetBorder(true).SetTitle(" Messages ").SetTitleColor(theme.TitleColor)
	table.SetBorderColor(theme.BorderColor)
	table.SetBackgroundColor(theme.BgColor)
	table.SetSelectedStyle(tcell.StyleDefault.
		Foreground(theme.TableCursorFg).
		Background(theme.TableCursorBg))

	return &ConversationList{Table: table, theme: theme}
}

// Update re-renders the inbox.
func (cl *ConversationList) Update(convs []*chat.Conversation) {
	cl.data = convs
	cl.Clear()

	headers := []string{" WITH", " LAST MESSAGE", " TIME"}
	for col, h := range headers {
		cl.SetCell(0, col, tview.NewTableCell(h).
			SetSelectable(false).
			SetTextColor(cl.theme.TableHeaderFg).
			SetAttributes(tcell.AttrBold))
	}

	for i, c := range convs {
		row := i + 1
		name := tview.Escape(c.Participant.Name)
		if c.Participant.IsOnline {
			name = "[green]●[-] " + name
		}
		if c.UnreadCount > 0 {
			name = fmt.Sprintf("[::b]%s (%d)[-:-:-]", name, c.UnreadCount)
		}

		preview, ts := "", ""
		if c.LastMessage != nil {
			preview = c.LastMessage.Text
			if c.LastMessage.FromMe {
				preview = "You: " + preview
			}
			ts = delivery.FormatTimestamp(c.LastMessage.Timestamp, time.Now())
		}

		cl.SetCell(row, 0, tview.NewTableCell(" "+name).SetMaxWidth(28).SetExpansion(1).SetTextColor(cl.theme.FgColor))
		cl.SetCell(row, 1, tview.NewTableCell(" "+tview.Escape(preview)).SetMaxWidth(48).SetExpansion(2).SetTextColor(cl.theme.FgColor))
		cl.SetCell(row, 2, tview.NewTableCell(" "+ts).SetMaxWidth(16).SetTextColor(cl.theme.StatusSentColor))
	}
}

// Selected returns the id of the selected conversation, or "".
func (cl *ConversationList) Selected() string {
	row, _ := cl.GetSelection()
	idx := row - 1
	if idx >= 0 && idx < len(cl.data) {
		return cl.data[idx].ID
	}
	return ""
}
