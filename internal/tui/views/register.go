package views

import (
	"github.com/mingleapp/mingle/internal/tui/ui"
	"github.com/mingleapp/mingle/internal/validate"
	"github.com/rivo/tview"
)

// RegisterView is the account creation form.
type RegisterView struct {
	*tview.Flex
	form     *tview.Form
	errText  *tview.TextView
	onSubmit func(values validate.RegistrationValues)
	onGoto   func()
}

// NewRegisterView creates the registration form.
func NewRegisterView(theme *ui.Theme) *RegisterView {
	rv := &RegisterView{}

	form := tview.NewForm().
		AddInputField("Name", "", 40, nil, nil).
		AddInputField("Email", "", 40, nil, nil).
		AddPasswordField("Password", "", 40, '*', nil).
		AddPasswordField("Confirm password", "", 40, '*', nil).
		AddCheckbox("I agree to the terms and conditions", false, nil)
	form.AddButton("Create account", func() {
		if rv.onSubmit != nil {
			rv.onSubmit(rv.Values())
		}
	})
	form.AddButton("Back to sign in", func() {
		if rv.onGoto != nil {
			rv.onGoto()
		}
	})
	form.SetBorder(true).SetTitle(" Create account ").SetTitleColor(theme.TitleColor)
	form.SetBorderColor(theme.BorderColor)
	form.SetBackgroundColor(theme.BgColor)
	form.SetLabelColor(theme.LabelColor)
	form.SetFieldTextColor(theme.FgColor)

	errText := tview.NewTextView().SetDynamicColors(true)
	errText.SetBackgroundColor(theme.BgColor)

	flex := tview.NewFlex().
		SetDirection(tview.FlexRow).
		AddItem(form, 0, 1, true).
		AddItem(errText, 5, 0, false)

	rv.Flex = flex
	rv.form = form
	rv.errText = errText
	return rv
}

// SetOnSubmit sets the callback for the create-account button.
func (rv *RegisterView) SetOnSubmit(fn func(values validate.RegistrationValues)) {
	rv.onSubmit = fn
}

// SetOnLogin sets the callback for the back-to-sign-in button.
func (rv *RegisterView) SetOnLogin(fn func()) {
	rv.onGoto = fn
}

// Values reads the current form values.
func (rv *RegisterView) Values() validate.RegistrationValues {
	return validate.RegistrationValues{
		Name:            rv.form.GetFormItem(0).(*tview.InputField).GetText(),
		Email:           rv.form.GetFormItem(1).(*tview.InputField).GetText(),
		Password:        rv.form.GetFormItem(2).(*tview.InputField).GetText(),
		ConfirmPassword: rv.form.GetFormItem(3).(*tview.InputField).GetText(),
		AgreeTerms:      rv.form.GetFormItem(4).(*tview.Checkbox).IsChecked(),
	}
}

// ShowErrors renders field errors under the form.
func (rv *RegisterView) ShowErrors(errs validate.Errors) {
	rv.errText.Clear()
	writeFieldErrors(rv.errText, errs, "name", "email", "password", "confirmPassword", "agreeTerms")
}

// ShowError renders a single error line, for backend failures.
func (rv *RegisterView) ShowError(msg string) {
	rv.errText.Clear()
	if msg != "" {
		_, _ = rv.errText.Write([]byte("[red]" + tview.Escape(msg) + "[-]"))
	}
}
