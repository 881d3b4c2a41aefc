// Package tui is the terminal front end: a page per route, with all
// state read from the identity, chat and profile stores and refreshed
// through bus events.
package tui

import (
	"context"
	"errors"
	"time"

	"github.com/gdamore/tcell/v2"
	"github.com/mingleapp/mingle/internal/api"
	"github.com/mingleapp/mingle/internal/bus"
	"github.com/mingleapp/mingle/internal/chat"
	"github.com/mingleapp/mingle/internal/config"
	"github.com/mingleapp/mingle/internal/delivery"
	"github.com/mingleapp/mingle/internal/identity"
	"github.com/mingleapp/mingle/internal/media"
	"github.com/mingleapp/mingle/internal/onboarding"
	"github.com/mingleapp/mingle/internal/profile"
	"github.com/mingleapp/mingle/internal/tui/model"
	"github.com/mingleapp/mingle/internal/tui/ui"
	"github.com/mingleapp/mingle/internal/tui/views"
	"github.com/mingleapp/mingle/internal/validate"
	"github.com/rivo/tview"
	"go.uber.org/zap"
)

// Page names double as routes.
const (
	pageLogin     = "login"
	pageRegister  = "register"
	pageInfo      = "onboard_info"
	pageInterests = "onboard_interests"
	pagePhoto     = "onboard_photo"
	pageDashboard = "dashboard"
	pageProfile   = "profile"
	pageInbox     = "inbox"
	pageThread    = "thread"
	pageSearch    = "search"
)

// App is the main TUI application shell.
type App struct {
	app    *tview.Application
	pages  *tview.Pages
	theme  *ui.Theme
	flash  *model.Flash
	logger *zap.Logger
	cfg    *config.Config
	bus    *bus.Bus

	identity *identity.Provider
	chats    *chat.Store
	profiles *profile.Store
	client   *api.Client
	flow     *onboarding.Flow

	loginV     *views.LoginView
	registerV  *views.RegisterView
	infoV      *views.PersonalInfoView
	interestsV *views.InterestsView
	photoV     *views.PhotoView
	dashboard  *views.Dashboard
	profileV   *views.ProfileView
	inbox      *views.ConversationList
	thread     *views.MessageThread
	composer   *views.Composer
	searchV    *views.SearchView
	statusBar  *views.StatusBar

	submitting bool // guards the auth forms against double submits

	ctx    context.Context
	cancel context.CancelFunc
}

// NewApp creates the TUI application.
func NewApp(client *api.Client, ident *identity.Provider, chats *chat.Store, profiles *profile.Store, b *bus.Bus, cfg *config.Config, accountName string, logger *zap.Logger) *App {
	ctx, cancel := context.WithCancel(context.Background())
	theme := ui.DefaultTheme()

	a := &App{
		app:        tview.NewApplication(),
		pages:      tview.NewPages(),
		theme:      theme,
		flash:      &model.Flash{},
		logger:     logger,
		cfg:        cfg,
		bus:        b,
		identity:   ident,
		chats:      chats,
		profiles:   profiles,
		client:     client,
		loginV:     views.NewLoginView(theme),
		registerV:  views.NewRegisterView(theme),
		infoV:      views.NewPersonalInfoView(theme),
		interestsV: views.NewInterestsView(theme),
		photoV:     views.NewPhotoView(theme),
		dashboard:  views.NewDashboard(theme),
		profileV:   views.NewProfileView(theme),
		inbox:      views.NewConversationList(theme),
		thread:     views.NewMessageThread(theme),
		composer:   views.NewComposer(theme),
		searchV:    views.NewSearchView(theme),
		statusBar:  views.NewStatusBar(accountName),
		ctx:        ctx,
		cancel:     cancel,
	}

	a.setupCallbacks()
	a.setupLayout()

	return a
}

func (a *App) setupCallbacks() {
	a.loginV.SetOnSubmit(func(values validate.LoginValues) {
		if errs := validate.Login(values); !errs.Valid() {
			a.loginV.ShowErrors(errs)
			return
		}
		if a.submitting {
			return
		}
		a.submitting = true
		go func() {
			_, err := a.identity.Login(a.ctx, values.Email, values.Password)
			a.app.QueueUpdateDraw(func() {
				a.submitting = false
				if err != nil {
					a.loginV.ShowError("Sign in failed: " + err.Error())
					return
				}
				a.loginV.Reset()
				a.route()
			})
		}()
	})
	a.loginV.SetOnRegister(func() { a.switchTo(pageRegister) })

	a.registerV.SetOnSubmit(func(values validate.RegistrationValues) {
		if errs := validate.Registration(values); !errs.Valid() {
			a.registerV.ShowErrors(errs)
			return
		}
		if a.submitting {
			return
		}
		a.submitting = true
		go func() {
			_, err := a.identity.Register(a.ctx, api.RegisterPayload{
				Name:     values.Name,
				Email:    values.Email,
				Password: values.Password,
			})
			a.app.QueueUpdateDraw(func() {
				a.submitting = false
				if err != nil {
					a.registerV.ShowError("Registration failed: " + err.Error())
					return
				}
				a.route()
			})
		}()
	})
	a.registerV.SetOnLogin(func() { a.switchTo(pageLogin) })

	a.infoV.SetOnSubmit(func(values validate.PersonalInfoValues) {
		if errs := a.ensureFlow().SubmitPersonalInfo(values); !errs.Valid() {
			a.infoV.ShowErrors(errs)
			return
		}
		a.interestsV.Update(a.flow.Selected(), "")
		a.switchTo(pageInterests)
	})

	a.interestsV.SetOnToggle(func(tag string) {
		errMsg := ""
		if err := a.ensureFlow().ToggleInterest(tag); err != nil {
			errMsg = err.Error()
		}
		a.interestsV.Update(a.flow.Selected(), errMsg)
	})
	a.interestsV.SetOnSubmit(func() {
		if err := a.ensureFlow().SubmitInterests(); err != nil {
			a.interestsV.Update(a.flow.Selected(), err.Error())
			return
		}
		a.switchTo(pagePhoto)
	})
	a.interestsV.SetOnBack(func() {
		if err := a.ensureFlow().Back(); err == nil {
			a.infoV.SetValues(a.flow.PersonalInfo())
			a.switchTo(pageInfo)
		}
	})

	a.photoV.SetOnFinish(func(path string) {
		flow := a.ensureFlow()
		if err := flow.SetPhoto(path); err != nil {
			a.photoV.ShowError(err.Error())
			return
		}
		go func() {
			_, err := flow.Complete(a.ctx)
			a.app.QueueUpdateDraw(func() {
				if err != nil {
					a.photoV.ShowError("Could not finish setup: " + err.Error())
					return
				}
				a.flow = nil
				a.route()
			})
		}()
	})
	a.photoV.SetOnBack(func() {
		if err := a.ensureFlow().Back(); err == nil {
			a.interestsV.Update(a.flow.Selected(), "")
			a.switchTo(pageInterests)
		}
	})

	a.dashboard.SetOnConnect(func(matchID string) {
		go func() {
			if err := a.profiles.Connect(a.ctx, matchID); err != nil {
				a.flash.Error("Connect failed: "+err.Error(), 5*time.Second)
			}
		}()
	})
	a.dashboard.SetOnIgnore(func(matchID string) {
		a.profiles.Ignore(matchID)
	})
	a.dashboard.SetOnMessage(func(participantID string) {
		go a.startConversation(participantID)
	})

	a.profileV.SetOnSave(func(patch api.ProfilePatch) {
		go func() {
			_, err := a.profiles.Update(a.ctx, patch)
			a.app.QueueUpdateDraw(func() {
				if err != nil {
					a.profileV.ShowError("Save failed: " + err.Error())
					return
				}
				a.profileV.ShowError("")
				a.flash.Info("Profile saved", 3*time.Second)
			})
		}()
	})

	a.inbox.SetSelectedFunc(func(row, _ int) {
		if id := a.inbox.Selected(); id != "" {
			a.openThread(id)
		}
	})

	a.composer.SetOnSend(func(text string, attachments []*media.Attachment) {
		convID := a.chats.Active()
		if convID == "" {
			return
		}
		draft := delivery.Draft{Text: text, Attachments: attachments}
		go func() {
			if _, err := a.chats.SendMessage(a.ctx, convID, draft); err != nil && !errors.Is(err, delivery.ErrEmptyMessage) {
				a.flash.Error("Send failed. Press r on the message to retry.", 5*time.Second)
			}
		}()
	})
	a.composer.SetOnError(func(msg string) {
		a.flash.Error(msg, 4*time.Second)
	})

	a.searchV.SetOnQuery(func(query string) {
		go func() {
			results, err := a.chats.SearchMessages(query, "", 50)
			a.app.QueueUpdateDraw(func() {
				if err != nil {
					a.flash.Error("Search failed: "+err.Error(), 5*time.Second)
					return
				}
				a.searchV.Update(results)
				a.app.SetFocus(a.searchV.Results())
			})
		}()
	})
	a.searchV.Results().SetSelectedFunc(func(row, _ int) {
		if id := a.searchV.Selected(); id != "" {
			a.openThread(id)
		}
	})
}

func (a *App) setupLayout() {
	threadFlex := tview.NewFlex().
		SetDirection(tview.FlexRow).
		AddItem(a.thread, 0, 1, false).
		AddItem(a.composer, 1, 0, true)

	a.pages.AddPage(pageLogin, center(a.loginV, 60, 14), true, true)
	a.pages.AddPage(pageRegister, center(a.registerV, 60, 20), true, false)
	a.pages.AddPage(pageInfo, center(a.infoV, 80, 24), true, false)
	a.pages.AddPage(pageInterests, a.interestsV, true, false)
	a.pages.AddPage(pagePhoto, center(a.photoV, 80, 12), true, false)
	a.pages.AddPage(pageDashboard, a.dashboard, true, false)
	a.pages.AddPage(pageProfile, a.profileV, true, false)
	a.pages.AddPage(pageInbox, a.inbox, true, false)
	a.pages.AddPage(pageThread, threadFlex, true, false)
	a.pages.AddPage(pageSearch, a.searchV, true, false)

	root := tview.NewFlex().
		SetDirection(tview.FlexRow).
		AddItem(a.pages, 0, 1, true).
		AddItem(a.statusBar, 1, 0, false)

	a.app.SetRoot(root, true)

	a.app.SetInputCapture(func(event *tcell.EventKey) *tcell.EventKey {
		currentPage, _ := a.pages.GetFrontPage()

		if event.Key() == tcell.KeyEscape {
			switch currentPage {
			case pageThread:
				a.chats.Deselect()
				a.switchTo(pageInbox)
				return nil
			case pageInbox, pageProfile:
				a.switchTo(pageDashboard)
				return nil
			case pageSearch:
				a.switchTo(pageInbox)
				return nil
			case pageRegister:
				a.switchTo(pageLogin)
				return nil
			}
		}

		// Let text input widgets handle all keys normally.
		switch a.app.GetFocus().(type) {
		case *tview.InputField, *tview.TextArea, *tview.Checkbox, *tview.Button:
			return event
		}

		if currentPage == pageThread && event.Key() == tcell.KeyRune {
			switch event.Rune() {
			case 'i':
				a.app.SetFocus(a.composer.InputField)
				return nil
			case 'r':
				a.retryLastFailed()
				return nil
			}
		}

		if event.Key() == tcell.KeyRune && a.signedInPage(currentPage) {
			switch event.Rune() {
			case 'q':
				a.Stop()
				return nil
			case 'd':
				a.switchTo(pageDashboard)
				return nil
			case 'p':
				a.profileV.Update(a.profiles.Profile())
				a.switchTo(pageProfile)
				return nil
			case 'm':
				a.switchTo(pageInbox)
				return nil
			case '/':
				if currentPage == pageInbox {
					a.switchTo(pageSearch)
					a.app.SetFocus(a.searchV.Input())
					return nil
				}
			case 's':
				if currentPage == pageProfile {
					a.showShareQR()
					return nil
				}
			case 'o':
				go a.identity.SignOut()
				return nil
			}
		}

		return event
	})
}

// signedInPage reports whether global navigation keys apply.
func (a *App) signedInPage(page string) bool {
	switch page {
	case pageDashboard, pageProfile, pageInbox, pageThread:
		return true
	}
	return false
}

// route switches to the page the current session state calls for:
// signed out lands on login, a fresh account on its onboarding step,
// everyone else on the dashboard.
func (a *App) route() {
	u := a.identity.Current()
	switch {
	case u == nil:
		a.switchTo(pageLogin)
	case !u.Onboarded:
		flow := a.ensureFlow()
		switch flow.Step() {
		case onboarding.StepInterests:
			a.interestsV.Update(flow.Selected(), "")
			a.switchTo(pageInterests)
		case onboarding.StepPhoto:
			a.switchTo(pagePhoto)
		default:
			a.infoV.SetValues(flow.PersonalInfo())
			a.switchTo(pageInfo)
		}
	default:
		a.dashboard.Update(a.profiles.Matches(), a.profiles.Events())
		a.switchTo(pageDashboard)
	}

	name := ""
	if u != nil {
		name = u.Name
	}
	a.statusBar.SetUser(name)
}

func (a *App) ensureFlow() *onboarding.Flow {
	if a.flow == nil {
		a.flow = onboarding.NewFlow(a.client, a.identity, a.bus, a.logger)
	}
	return a.flow
}

func (a *App) switchTo(page string) {
	if !a.pages.HasPage(page) {
		page = pageLogin
		if a.identity.Current() != nil {
			page = pageDashboard
		}
	}
	a.pages.SwitchToPage(page)
	a.statusBar.SetHints(hintsFor(page))
	a.app.SetFocus(a.pages)
}

func hintsFor(page string) string {
	switch page {
	case pageLogin, pageRegister:
		return "tab:next field  enter:submit"
	case pageInterests:
		return "enter:toggle  c:continue  b:back"
	case pageDashboard:
		return "c:connect  x:ignore  m:message  p:profile  q:quit"
	case pageProfile:
		return "s:share  esc:back"
	case pageInbox:
		return "enter:open  /:search  d:dashboard  esc:back"
	case pageSearch:
		return "enter:search/open  esc:back"
	case pageThread:
		return "i:compose  r:retry  esc:back"
	default:
		return ""
	}
}

func (a *App) openThread(conversationID string) {
	go func() {
		if err := a.chats.Select(a.ctx, conversationID); err != nil {
			a.flash.Error("Load failed: "+err.Error(), 5*time.Second)
			return
		}
		a.app.QueueUpdateDraw(func() {
			for _, c := range a.chats.Conversations() {
				if c.ID == conversationID {
					a.thread.SetParticipant(c.Participant.Name, c.Participant.IsOnline)
					break
				}
			}
			a.thread.Update(a.chats.Messages(conversationID))
			a.switchTo(pageThread)
			a.app.SetFocus(a.composer.InputField)
		})
	}()
}

// startConversation opens a DM with a participant, reusing the
// existing conversation when there already is one.
func (a *App) startConversation(participantID string) {
	conv, err := a.chats.StartConversation(a.ctx, participantID)
	if err != nil {
		var conflict *api.ConflictError
		if errors.As(err, &conflict) {
			for _, c := range a.chats.Conversations() {
				if c.Participant.ID == participantID {
					a.openThread(c.ID)
					return
				}
			}
		}
		a.flash.Error("Could not start conversation: "+err.Error(), 5*time.Second)
		return
	}
	a.openThread(conv.ID)
}

// retryLastFailed re-sends the most recent failed message in the
// active conversation.
func (a *App) retryLastFailed() {
	convID := a.chats.Active()
	if convID == "" {
		return
	}
	msgs := a.chats.Messages(convID)
	for i := len(msgs) - 1; i >= 0; i-- {
		if msgs[i].Status == delivery.StatusFailed {
			id := msgs[i].ID
			go func() {
				if err := a.chats.Retry(a.ctx, convID, id); err != nil {
					a.flash.Error("Retry failed: "+err.Error(), 5*time.Second)
				}
			}()
			return
		}
	}
}

func (a *App) showShareQR() {
	go func() {
		ascii, err := a.profiles.ShareQR(a.cfg.ServerURL)
		a.app.QueueUpdateDraw(func() {
			if err != nil {
				a.profileV.ShowError("Share failed: " + err.Error())
				return
			}
			a.profileV.ShowQR(ascii)
		})
	}()
}

// Run starts the TUI and blocks until it exits.
func (a *App) Run() error {
	go a.watchBus()
	go a.startRefreshLoop()
	go a.app.QueueUpdateDraw(a.route)

	return a.app.Run()
}

// watchBus refreshes views as store events arrive.
func (a *App) watchBus() {
	ch, unsub := a.bus.Subscribe("", 64)
	defer unsub()

	for {
		select {
		case evt := <-ch:
			topic := evt.Topic
			a.app.QueueUpdateDraw(func() {
				currentPage, _ := a.pages.GetFrontPage()
				switch {
				case topic == "identity.resolved", topic == "identity.cleared", topic == "onboarding.completed":
					if topic == "identity.cleared" {
						a.flow = nil
					}
					a.route()
				case topic == "chat.conversations_updated":
					if currentPage == pageInbox {
						a.inbox.Update(a.chats.Conversations())
					}
				case topic == "chat.messages_loaded", topic == "chat.message_upserted",
					topic == "chat.message_status", topic == "chat.message_failed":
					if currentPage == pageThread {
						if convID := a.chats.Active(); convID != "" {
							a.thread.Update(a.chats.Messages(convID))
						}
					}
				case topic == "profile.updated":
					if currentPage == pageProfile {
						a.profileV.Update(a.profiles.Profile())
					}
				case topic == "profile.matches_updated", topic == "profile.events_updated":
					if currentPage == pageDashboard {
						a.dashboard.Update(a.profiles.Matches(), a.profiles.Events())
					}
				}
			})
		case <-a.ctx.Done():
			return
		}
	}
}

// startRefreshLoop periodically re-renders ambient chrome (clock,
// flash expiry) and re-fetches the inbox while it is on screen.
func (a *App) startRefreshLoop() {
	ticker := time.NewTicker(5 * time.Second)
	defer ticker.Stop()
	for {
		select {
		case <-ticker.C:
			currentPage, _ := a.pages.GetFrontPage()
			if currentPage == pageInbox {
				_ = a.chats.LoadConversations(a.ctx)
			}
			a.app.QueueUpdateDraw(func() {
				msg, isErr := a.flash.Get()
				a.statusBar.SetFlash(msg, isErr)
				if page, _ := a.pages.GetFrontPage(); page == pageInbox {
					a.inbox.Update(a.chats.Conversations())
				}
			})
		case <-a.ctx.Done():
			return
		}
	}
}

// Stop gracefully shuts down the TUI.
func (a *App) Stop() {
	a.cancel()
	a.app.Stop()
}

// center wraps a primitive in a fixed-size centered frame.
func center(p tview.Primitive, width, height int) tview.Primitive {
	return tview.NewFlex().
		AddItem(nil, 0, 1, false).
		AddItem(tview.NewFlex().
			SetDirection(tview.FlexRow).
			AddItem(nil, 0, 1, false).
			AddItem(p, height, 0, true).
			AddItem(nil, 0, 1, false), width, 0, true).
		AddItem(nil, 0, 1, false)
}
