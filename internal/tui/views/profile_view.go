package views

import (
	"fmt"
	"strings"

	"github.com/mingleapp/mingle/internal/api"
	"github.com/mingleapp/mingle/internal/tui/ui"
	"github.com/rivo/tview"
)

// ProfileView renders the signed-in user's profile, with an edit form
// and a share QR overlay.
type ProfileView struct {
	*tview.Flex
	theme   *ui.Theme
	text    *tview.TextView
	form    *tview.Form
	errText *tview.TextView
	onSave  func(patch api.ProfilePatch)
}

// NewProfileView creates the profile page.
func NewProfileView(theme *ui.Theme) *ProfileView {
	pv := &ProfileView{theme: theme}

	text := tview.NewTextView().SetDynamicColors(true).SetWordWrap(true)
	text.SetBorder(true).SetTitle(" Profile ").SetTitleColor(theme.TitleColor)
	text.SetBorderColor(theme.BorderColor)
	text.SetBackgroundColor(theme.BgColor)

	form := tview.NewForm().
		AddInputField("Name", "", 40, nil, nil).
		AddInputField("Location", "", 40, nil, nil).
		AddInputField("Occupation", "", 40, nil, nil).
		AddTextArea("Bio", "", 60, 4, 0, nil)
	form.AddButton("Save", func() {
		if pv.onSave != nil {
			pv.onSave(pv.patch())
		}
	})
	form.SetBorder(true).SetTitle(" Edit ").SetTitleColor(theme.TitleColor)
	form.SetBorderColor(theme.BorderColor)
	form.SetBackgroundColor(theme.BgColor)
	form.SetLabelColor(theme.LabelColor)

	errText := tview.NewTextView().SetDynamicColors(true)
	errText.SetBackgroundColor(theme.BgColor)

	right := tview.NewFlex().
		SetDirection(tview.FlexRow).
		AddItem(form, 0, 1, true).
		AddItem(errText, 2, 0, false)

	pv.Flex = tview.NewFlex().
		AddItem(text, 0, 1, false).
		AddItem(right, 0, 1, true)
	pv.text = text
	pv.form = form
	pv.errText = errText
	return pv
}

// SetOnSave sets the callback for the save button.
func (pv *ProfileView) SetOnSave(fn func(patch api.ProfilePatch)) { pv.onSave = fn }

// Update re-renders the profile panel and refills the edit form.
func (pv *ProfileView) Update(p *api.Profile) {
	pv.text.Clear()
	if p == nil {
		_, _ = fmt.Fprint(pv.text, "\n  Loading profile...")
		return
	}

	_, _ = fmt.Fprintf(pv.text, "\n  [::b]%s[-:-:-]\n", tview.Escape(p.Name))
	if p.Occupation != "" || p.Location != "" {
		_, _ = fmt.Fprintf(pv.text, "  [::d]%s[-:-:-]\n", tview.Escape(strings.TrimSuffix(p.Occupation+" · "+p.Location, " · ")))
	}
	_, _ = fmt.Fprintf(pv.text, "\n  %s\n", tview.Escape(p.Bio))
	if len(p.Interests) > 0 {
		_, _ = fmt.Fprintf(pv.text, "\n  Interests: %s\n", tview.Escape(strings.Join(p.Interests, ", ")))
	}

	pv.form.GetFormItem(0).(*tview.InputField).SetText(p.Name)
	pv.form.GetFormItem(1).(*tview.InputField).SetText(p.Location)
	pv.form.GetFormItem(2).(*tview.InputField).SetText(p.Occupation)
	pv.form.GetFormItem(3).(*tview.TextArea).SetText(p.Bio, false)
}

// ShowError renders a save error under the form.
func (pv *ProfileView) ShowError(msg string) {
	pv.errText.Clear()
	if msg != "" {
		_, _ = pv.errText.Write([]byte("[red]" + tview.Escape(msg) + "[-]"))
	}
}

// ShowQR replaces the profile panel content with the share code until
// the next Update.
func (pv *ProfileView) ShowQR(ascii string) {
	pv.text.Clear()
	_, _ = fmt.Fprintf(pv.text, "\n  Scan to view this profile:\n\n%s", ascii)
}

// patch builds a full-field patch from the edit form; pointer fields
// are always set because the form always carries every field.
func (pv *ProfileView) patch() api.ProfilePatch {
	name := pv.form.GetFormItem(0).(*tview.InputField).GetText()
	location := pv.form.GetFormItem(1).(*tview.InputField).GetText()
	occupation := pv.form.GetFormItem(2).(*tview.InputField).GetText()
	bio := pv.form.GetFormItem(3).(*tview.TextArea).GetText()
	return api.ProfilePatch{
		Name:       &name,
		Location:   &location,
		Occupation: &occupation,
		Bio:        &bio,
	}
}
