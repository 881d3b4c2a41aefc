package views

import (
	"fmt"
	"strings"

	"github.com/gdamore/tcell/v2"
	"github.com/mingleapp/mingle/internal/media"
	"github.com/mingleapp/mingle/internal/tui/ui"
	"github.com/mingleapp/mingle/internal/validate"
	"github.com/rivo/tview"
)

// Composer is the message input. Typing "/attach <path>" stages a file
// for the next send instead of sending text. Image attachments get a
// preview materialized while staged and released once they leave the
// composer.
type Composer struct {
	*tview.InputField
	attachments []*media.Attachment
	onSend      func(text string, attachments []*media.Attachment)
	onError     func(msg string)
}

// NewComposer creates the composer input.
func NewComposer(theme *ui.Theme) *Composer {
	input := tview.NewInputField().
		SetLabel(" > ").
		SetFieldWidth(0)
	input.SetLabelColor(theme.LabelColor)
	input.SetFieldBackgroundColor(theme.BgColor)
	input.SetFieldTextColor(theme.FgColor)

	c := &Composer{InputField: input}

	input.SetDoneFunc(func(key tcell.Key) {
		if key != tcell.KeyEnter {
			return
		}
		text := c.GetText()

		if path, ok := strings.CutPrefix(text, "/attach "); ok {
			c.stage(strings.TrimSpace(path))
			return
		}

		if errs := validate.Message(validate.MessageValues{Content: text}); !errs.Valid() {
			if len(c.attachments) == 0 || strings.TrimSpace(text) != "" {
				if c.onError != nil {
					c.onError(errs["content"])
				}
				return
			}
			// Attachment-only send.
		}

		attachments := c.attachments
		c.attachments = nil
		c.SetText("")
		c.refreshLabel()
		for _, a := range attachments {
			a.ReleasePreview()
		}
		if c.onSend != nil {
			c.onSend(text, attachments)
		}
	})

	return c
}

// stage validates the attachment and adds it to the pending send.
func (c *Composer) stage(path string) {
	att, err := media.FromFile(path)
	if err != nil {
		if c.onError != nil {
			c.onError(err.Error())
		}
		return
	}
	if _, err := att.EnsurePreview(); err != nil && c.onError != nil {
		c.onError(err.Error())
	}
	c.attachments = append(c.attachments, att)
	c.SetText("")
	c.refreshLabel()
}

// SetOnSend sets the callback when a message is submitted.
func (c *Composer) SetOnSend(fn func(text string, attachments []*media.Attachment)) {
	c.onSend = fn
}

// SetOnError sets the callback for composer-level validation errors.
func (c *Composer) SetOnError(fn func(msg string)) {
	c.onError = fn
}

// ClearAttachments drops staged attachments without sending.
func (c *Composer) ClearAttachments() {
	for _, a := range c.attachments {
		a.ReleasePreview()
	}
	c.attachments = nil
	c.refreshLabel()
}

func (c *Composer) refreshLabel() {
	if len(c.attachments) == 0 {
		c.SetLabel(" > ")
		return
	}
	c.SetLabel(fmt.Sprintf(" [%d📎] > ", len(c.attachments)))
}
