package view

import (
	"errors"
	"strings"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/huh"

	"github.com/MrJamesThe3rd/kyat/internal/user"
)

const (
	modeLogin  = "login"
	modeSignup = "signup"
)

// LoggedInMsg is sent once credentials were accepted.
type LoggedInMsg struct {
	User *user.User
}

type authResultMsg struct {
	user   *user.User
	signup bool
	err    error
}

// loginValues is shared by all copies of the model so the form bindings
// stay valid.
type loginValues struct {
	mode     string
	username string
	password string
	confirm  string
}

type LoginModel struct {
	CommonModel
	users *user.Service

	form   *huh.Form
	vals   *loginValues
	status string
}

func NewLoginModel(users *user.Service) LoginModel {
	m := LoginModel{users: users, vals: &loginValues{mode: modeLogin}}
	m.form = m.buildForm()

	return m
}

func (m LoginModel) buildForm() *huh.Form {
	v := m.vals
	v.password, v.confirm = "", ""

	return huh.NewForm(
		huh.NewGroup(
			huh.NewSelect[string]().
				Key("mode").
				Title("Kyat").
				Options(
					huh.NewOption("Login", modeLogin),
					huh.NewOption("Sign up", modeSignup),
				).
				Value(&v.mode),
			huh.NewInput().
				Key("username").
				Title("Username").
				Value(&v.username).
				Validate(func(s string) error {
					if strings.TrimSpace(s) == "" {
						return errors.New(user.Message(user.ErrMissingCredentials))
					}
					return nil
				}),
			huh.NewInput().
				Key("password").
				Title("Password").
				EchoMode(huh.EchoModePassword).
				Value(&v.password),
		),
		huh.NewGroup(
			huh.NewInput().
				Key("confirm").
				Title("Confirm Password").
				EchoMode(huh.EchoModePassword).
				Value(&v.confirm),
		).WithHideFunc(func() bool { return v.mode != modeSignup }),
	).WithWidth(50).WithShowHelp(false)
}

func (m LoginModel) Init() tea.Cmd {
	return m.form.Init()
}

func (m LoginModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	if res, ok := msg.(authResultMsg); ok {
		return m.handleResult(res)
	}

	form, cmd := m.form.Update(msg)
	if f, ok := form.(*huh.Form); ok {
		m.form = f
	}

	if m.form.State != huh.StateCompleted {
		return m, cmd
	}

	return m, m.authCmd(*m.vals)
}

func (m LoginModel) handleResult(res authResultMsg) (tea.Model, tea.Cmd) {
	if res.err != nil {
		m.status = errStyle.Render(Message(res.err))
		m.form = m.buildForm()

		return m, m.form.Init()
	}

	if res.signup {
		m.status = okStyle.Render("Account တင်ပြီးပါပြီ! Login ပြန်ဝင်ပါ")
		m.vals.mode = modeLogin
		m.form = m.buildForm()

		return m, m.form.Init()
	}

	u := res.user

	return m, func() tea.Msg { return LoggedInMsg{User: u} }
}

func (m LoginModel) View() string {
	content := m.form.View()
	if m.status != "" {
		content = m.status + "\n\n" + content
	}

	return padded.Render(content)
}

func (m LoginModel) authCmd(v loginValues) tea.Cmd {
	users := m.users

	return func() tea.Msg {
		ctx, cancel := DbCtx()
		defer cancel()

		if v.mode == modeSignup {
			u, err := users.SignUp(ctx, v.username, v.password, v.confirm)
			return authResultMsg{user: u, signup: true, err: err}
		}

		u, err := users.Authenticate(ctx, v.username, v.password)

		return authResultMsg{user: u, err: err}
	}
}
