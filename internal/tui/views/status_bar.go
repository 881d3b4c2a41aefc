package views

import (
	"fmt"
	"time"

	"github.com/rivo/tview"
)

// StatusBar shows the signed-in account, the current route's key hints
// and the active flash message.
type StatusBar struct {
	*tview.TextView
	account string
	user    string
	hints   string
	flash   string
	isError bool
}

// NewStatusBar creates the status bar.
func NewStatusBar(account string) *StatusBar {
	tv := tview.NewTextView().
		SetDynamicColors(true)
	tv.SetBackgroundColor(tview.Styles.MoreContrastBackgroundColor)

	return &StatusBar{TextView: tv, account: account}
}

// SetUser updates the signed-in user display.
func (sb *StatusBar) SetUser(name string) {
	sb.user = name
	sb.render()
}

// SetHints updates the key hint segment.
func (sb *StatusBar) SetHints(hints string) {
	sb.hints = hints
	sb.render()
}

// SetFlash sets the transient message segment.
func (sb *StatusBar) SetFlash(msg string, isError bool) {
	sb.flash = msg
	sb.isError = isError
	sb.render()
}

func (sb *StatusBar) render() {
	sb.Clear()

	who := sb.account
	if sb.user != "" {
		who = fmt.Sprintf("%s (%s)", sb.account, sb.user)
	}

	line := fmt.Sprintf(" [::b]%s[-:-:-] | %s | %s", who, sb.hints, time.Now().Format("15:04"))
	if sb.flash != "" {
		color := "yellow"
		if sb.isError {
			color = "red"
		}
		line += fmt.Sprintf(" | [%s]%s[-]", color, tview.Escape(sb.flash))
	}

	_, _ = fmt.Fprint(sb, line)
}
