package views

import (
	"github.com/mingleapp/mingle/internal/tui/ui"
	"github.com/mingleapp/mingle/internal/validate"
	"github.com/rivo/tview"
)

// LoginView is the email/password sign-in form.
type LoginView struct {
	*tview.Flex
	form     *tview.Form
	errText  *tview.TextView
	onSubmit func(values validate.LoginValues)
	onGoto   func()
}

// NewLoginView creates the login form.
func NewLoginView(theme *ui.Theme) *LoginView {
	lv := &LoginView{}

	form := tview.NewForm().
		AddInputField("Email", "", 40, nil, nil).
		AddPasswordField("Password", "", 40, '*', nil)
	form.AddButton("Sign in", func() {
		if lv.onSubmit != nil {
			lv.onSubmit(lv.Values())
		}
	})
	form.AddButton("Create account", func() {
		if lv.onGoto != nil {
			lv.onGoto()
		}
	})
	form.SetBorder(true).SetTitle(" Sign in ").SetTitleColor(theme.TitleColor)
	form.SetBorderColor(theme.BorderColor)
	form.SetBackgroundColor(theme.BgColor)
	form.SetLabelColor(theme.LabelColor)
	form.SetFieldTextColor(theme.FgColor)

	errText := tview.NewTextView().SetDynamicColors(true)
	errText.SetBackgroundColor(theme.BgColor)

	flex := tview.NewFlex().
		SetDirection(tview.FlexRow).
		AddItem(form, 0, 1, true).
		AddItem(errText, 3, 0, false)

	lv.Flex = flex
	lv.form = form
	lv.errText = errText
	return lv
}

// SetOnSubmit sets the callback for the sign-in button.
func (lv *LoginView) SetOnSubmit(fn func(values validate.LoginValues)) {
	lv.onSubmit = fn
}

// SetOnRegister sets the callback for the create-account button.
func (lv *LoginView) SetOnRegister(fn func()) {
	lv.onGoto = fn
}

// Values reads the current form values.
func (lv *LoginView) Values() validate.LoginValues {
	return validate.LoginValues{
		Email:    lv.form.GetFormItem(0).(*tview.InputField).GetText(),
		Password: lv.form.GetFormItem(1).(*tview.InputField).GetText(),
	}
}

// ShowErrors renders field errors under the form.
func (lv *LoginView) ShowErrors(errs validate.Errors) {
	lv.errText.Clear()
	writeFieldErrors(lv.errText, errs, "email", "password")
}

// ShowError renders a single error line, for backend failures.
func (lv *LoginView) ShowError(msg string) {
	lv.errText.Clear()
	if msg != "" {
		_, _ = lv.errText.Write([]byte("[red]" + tview.Escape(msg) + "[-]"))
	}
}

// Reset clears the form and errors.
func (lv *LoginView) Reset() {
	lv.form.GetFormItem(0).(*tview.InputField).SetText("")
	lv.form.GetFormItem(1).(*tview.InputField).SetText("")
	lv.errText.Clear()
}
