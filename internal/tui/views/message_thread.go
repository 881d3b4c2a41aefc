package views

import (
	"fmt"
	"time"

	"github.com/mingleapp/mingle/internal/delivery"
	"github.com/mingleapp/mingle/internal/tui/ui"
	"github.com/rivo/tview"
)

// MessageThread renders one conversation: messages grouped under date
// separators, consecutive same-sender runs collapsed under one header,
// own messages carrying delivery ticks.
type MessageThread struct {
	*tview.TextView
	theme *ui.Theme
}

// NewMessageThread creates the thread view.
func NewMessageThread(theme *ui.Theme) *MessageThread {
	tv := tview.NewTextView().
		SetDynamicColors(true).
		SetScrollable(true).
		SetWordWrap(true)
	tv.SetBorder(true).SetTitle(" Messages ").SetTitleColor(theme.TitleColor)
	tv.SetBorderColor(theme.BorderColor)
	tv.SetBackgroundColor(theme.BgColor)

	return &MessageThread{TextView: tv, theme: theme}
}

// SetParticipant updates the title with the other side's name.
func (mt *MessageThread) SetParticipant(name string, online bool) {
	title := fmt.Sprintf(" %s ", name)
	if online {
		title = fmt.Sprintf(" %s (online) ", name)
	}
	mt.SetTitle(title)
}

// Update re-renders the thread from the chronological message list.
func (mt *MessageThread) Update(msgs []*delivery.Message) {
	mt.Clear()

	for _, group := range delivery.GroupByDate(msgs, time.Now()) {
		_, _ = fmt.Fprintf(mt, "\n[::d]────── %s ──────[-:-:-]\n", group.Label)

		prevSender := ""
		for _, m := range group.Messages {
			if delivery.ShowAvatar(prevSender, m.SenderID) {
				sender := tview.Escape(m.SenderName)
				if m.FromMe {
					sender = "You"
				}
				_, _ = fmt.Fprintf(mt, "\n[::b]%s[-:-:-]\n", sender)
			}
			prevSender = m.SenderID

			ts := m.SentAt.Format("15:04")
			line := fmt.Sprintf("  %s [::d]%s[-:-:-]", tview.Escape(m.Body), ts)
			if m.FromMe {
				line += " " + mt.ticks(m.Status)
			}
			_, _ = fmt.Fprintln(mt, line)

			for _, att := range m.Attachments {
				_, _ = fmt.Fprintf(mt, "  [::d]↳ %s (%s)[-:-:-]\n", tview.Escape(att.Name), att.SizeLabel)
			}
			if m.Status == delivery.StatusFailed {
				_, _ = fmt.Fprint(mt, "  [red]Not delivered. Press r to retry.[-]\n")
			}
		}
	}

	mt.ScrollToEnd()
}

// ticks renders the delivery indicator for an own message.
func (mt *MessageThread) ticks(status delivery.Status) string {
	switch status {
	case delivery.StatusPending:
		return "[gray]…[-]"
	case delivery.StatusSent:
		return "[gray]✓[-]"
	case delivery.StatusDelivered:
		return "[gray]✓✓[-]"
	case delivery.StatusRead:
		return "[deepskyblue]✓✓[-]"
	case delivery.StatusFailed:
		return "[red]![-]"
	default:
		return ""
	}
}
