package views

import (
	"fmt"

	"github.com/gdamore/tcell/v2"
	"github.com/mingleapp/mingle/internal/interests"
	"github.com/mingleapp/mingle/internal/onboarding"
	"github.com/mingleapp/mingle/internal/tui/ui"
	"github.com/mingleapp/mingle/internal/validate"
	"github.com/rivo/tview"
)

// PersonalInfoView is the first onboarding step.
type PersonalInfoView struct {
	*tview.Flex
	form     *tview.Form
	errText  *tview.TextView
	onSubmit func(values validate.PersonalInfoValues)
}

// NewPersonalInfoView creates the personal info form.
func NewPersonalInfoView(theme *ui.Theme) *PersonalInfoView {
	pv := &PersonalInfoView{}

	form := tview.NewForm().
		AddInputField("First name", "", 40, nil, nil).
		AddInputField("Last name", "", 40, nil, nil).
		AddInputField("Location", "", 40, nil, nil).
		AddInputField("Occupation", "", 40, nil, nil).
		AddTextArea("Bio", "", 60, 4, validate.MaxBioLen, nil)
	form.AddButton("Continue", func() {
		if pv.onSubmit != nil {
			pv.onSubmit(pv.Values())
		}
	})
	form.SetBorder(true).SetTitle(" About you (1/3) ").SetTitleColor(theme.TitleColor)
	form.SetBorderColor(theme.BorderColor)
	form.SetBackgroundColor(theme.BgColor)
	form.SetLabelColor(theme.LabelColor)

	errText := tview.NewTextView().SetDynamicColors(true)
	errText.SetBackgroundColor(theme.BgColor)

	pv.Flex = tview.NewFlex().
		SetDirection(tview.FlexRow).
		AddItem(form, 0, 1, true).
		AddItem(errText, 5, 0, false)
	pv.form = form
	pv.errText = errText
	return pv
}

// SetOnSubmit sets the continue callback.
func (pv *PersonalInfoView) SetOnSubmit(fn func(values validate.PersonalInfoValues)) {
	pv.onSubmit = fn
}

// Values reads the current form values.
func (pv *PersonalInfoView) Values() validate.PersonalInfoValues {
	return validate.PersonalInfoValues{
		FirstName:  pv.form.GetFormItem(0).(*tview.InputField).GetText(),
		LastName:   pv.form.GetFormItem(1).(*tview.InputField).GetText(),
		Location:   pv.form.GetFormItem(2).(*tview.InputField).GetText(),
		Occupation: pv.form.GetFormItem(3).(*tview.InputField).GetText(),
		Bio:        pv.form.GetFormItem(4).(*tview.TextArea).GetText(),
	}
}

// SetValues restores previously entered values after a step back.
func (pv *PersonalInfoView) SetValues(v validate.PersonalInfoValues) {
	pv.form.GetFormItem(0).(*tview.InputField).SetText(v.FirstName)
	pv.form.GetFormItem(1).(*tview.InputField).SetText(v.LastName)
	pv.form.GetFormItem(2).(*tview.InputField).SetText(v.Location)
	pv.form.GetFormItem(3).(*tview.InputField).SetText(v.Occupation)
	pv.form.GetFormItem(4).(*tview.TextArea).SetText(v.Bio, false)
}

// ShowErrors renders field errors under the form.
func (pv *PersonalInfoView) ShowErrors(errs validate.Errors) {
	pv.errText.Clear()
	writeFieldErrors(pv.errText, errs, "firstName", "lastName", "location", "occupation", "bio")
}

// InterestsView is the second onboarding step: a table of the catalog
// with toggled selection.
type InterestsView struct {
	*tview.Flex
	theme    *ui.Theme
	table    *tview.Table
	footer   *tview.TextView
	rows     []interestRow
	onToggle func(tag string)
	onSubmit func()
	onBack   func()
}

type interestRow struct {
	category string // non-empty on category header rows
	tag      string
}

// NewInterestsView creates the interest selection table.
func NewInterestsView(theme *ui.Theme) *InterestsView {
	iv := &InterestsView{theme: theme}

	table := tview.NewTable().
		SetSelectable(true, false).
		SetBorders(false)
	table.SetBorder(true).SetTitle(" Pick your interests (2/3) ").SetTitleColor(theme.TitleColor)
	table.SetBorderColor(theme.BorderColor)
	table.SetBackgroundColor(theme.BgColor)
	table.SetSelectedStyle(tcell.StyleDefault.
		Foreground(theme.TableCursorFg).
		Background(theme.TableCursorBg))

	for _, cat := range interests.Catalog {
		iv.rows = append(iv.rows, interestRow{category: cat.Name})
		for _, tag := range cat.Tags {
			iv.rows = append(iv.rows, interestRow{tag: tag})
		}
	}

	table.SetSelectedFunc(func(row, _ int) {
		if row >= 0 && row < len(iv.rows) && iv.rows[row].tag != "" && iv.onToggle != nil {
			iv.onToggle(iv.rows[row].tag)
		}
	})
	table.SetInputCapture(func(event *tcell.EventKey) *tcell.EventKey {
		switch {
		case event.Key() == tcell.KeyRune && event.Rune() == 'c':
			if iv.onSubmit != nil {
				iv.onSubmit()
			}
			return nil
		case event.Key() == tcell.KeyRune && event.Rune() == 'b':
			if iv.onBack != nil {
				iv.onBack()
			}
			return nil
		}
		return event
	})

	footer := tview.NewTextView().SetDynamicColors(true)
	footer.SetBackgroundColor(theme.BgColor)

	iv.Flex = tview.NewFlex().
		SetDirection(tview.FlexRow).
		AddItem(table, 0, 1, true).
		AddItem(footer, 2, 0, false)
	iv.table = table
	iv.footer = footer
	return iv
}

// SetOnToggle sets the callback when a tag is toggled.
func (iv *InterestsView) SetOnToggle(fn func(tag string)) { iv.onToggle = fn }

// SetOnSubmit sets the continue callback.
func (iv *InterestsView) SetOnSubmit(fn func()) { iv.onSubmit = fn }

// SetOnBack sets the step-back callback.
func (iv *InterestsView) SetOnBack(fn func()) { iv.onBack = fn }

// Update re-renders the catalog with the current selection marked.
func (iv *InterestsView) Update(selected []string, errMsg string) {
	chosen := make(map[string]bool, len(selected))
	for _, tag := range selected {
		chosen[tag] = true
	}

	iv.table.Clear()
	for i, r := range iv.rows {
		if r.category != "" {
			iv.table.SetCell(i, 0, tview.NewTableCell(" [::b]"+r.category+"[-:-:-]").
				SetSelectable(false).
				SetTextColor(iv.theme.TitleColor))
			continue
		}
		mark := "[ ]"
		if chosen[r.tag] {
			mark = "[x]"
		}
		iv.table.SetCell(i, 0, tview.NewTableCell(fmt.Sprintf("   %s %s", tview.Escape(mark), r.tag)).
			SetTextColor(iv.theme.FgColor).
			SetExpansion(1))
	}

	iv.footer.Clear()
	line := fmt.Sprintf(" %d/%d selected (min %d) | enter:toggle c:continue b:back",
		len(selected), onboarding.MaxInterests, onboarding.MinInterests)
	if errMsg != "" {
		line += " | [red]" + tview.Escape(errMsg) + "[-]"
	}
	_, _ = fmt.Fprint(iv.footer, line)
}

// PhotoView is the final onboarding step: the profile photo, picked by
// local path.
type PhotoView struct {
	*tview.Flex
	form     *tview.Form
	errText  *tview.TextView
	onFinish func(path string)
	onBack   func()
}

// NewPhotoView creates the photo step.
func NewPhotoView(theme *ui.Theme) *PhotoView {
	pv := &PhotoView{}

	form := tview.NewForm().
		AddInputField("Photo path", "", 60, nil, nil)
	form.AddButton("Finish", func() {
		if pv.onFinish != nil {
			pv.onFinish(pv.form.GetFormItem(0).(*tview.InputField).GetText())
		}
	})
	form.AddButton("Back", func() {
		if pv.onBack != nil {
			pv.onBack()
		}
	})
	form.SetBorder(true).SetTitle(" Profile photo (3/3) ").SetTitleColor(theme.TitleColor)
	form.SetBorderColor(theme.BorderColor)
	form.SetBackgroundColor(theme.BgColor)
	form.SetLabelColor(theme.LabelColor)

	errText := tview.NewTextView().SetDynamicColors(true)
	errText.SetBackgroundColor(theme.BgColor)

	pv.Flex = tview.NewFlex().
		SetDirection(tview.FlexRow).
		AddItem(form, 0, 1, true).
		AddItem(errText, 3, 0, false)
	pv.form = form
	pv.errText = errText
	return pv
}

// SetOnFinish sets the finish callback.
func (pv *PhotoView) SetOnFinish(fn func(path string)) { pv.onFinish = fn }

// SetOnBack sets the step-back callback.
func (pv *PhotoView) SetOnBack(fn func()) { pv.onBack = fn }

// ShowError renders a single error line.
func (pv *PhotoView) ShowError(msg string) {
	pv.errText.Clear()
	if msg != "" {
		_, _ = pv.errText.Write([]byte("[red]" + tview.Escape(msg) + "[-]"))
	}
}
