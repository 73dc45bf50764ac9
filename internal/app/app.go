package app

import (
	"context"
	"fmt"

	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/sirupsen/logrus"

	"github.com/nhle/projecthub/internal/api"
	"github.com/nhle/projecthub/internal/keys"
	"github.com/nhle/projecthub/internal/model"
	"github.com/nhle/projecthub/internal/notify"
	"github.com/nhle/projecthub/internal/session"
	"github.com/nhle/projecthub/internal/store"
	syncer "github.com/nhle/projecthub/internal/sync"
	"github.com/nhle/projecthub/internal/theme"
	"github.com/nhle/projecthub/internal/ui"
	"github.com/nhle/projecthub/internal/ui/analytics"
	"github.com/nhle/projecthub/internal/ui/login"
	"github.com/nhle/projecthub/internal/ui/notifications"
	"github.com/nhle/projecthub/internal/ui/overview"
	"github.com/nhle/projecthub/internal/ui/projects"
	"github.com/nhle/projecthub/internal/ui/tasks"
	"github.com/nhle/projecthub/internal/ui/team"
)

// ViewState identifies the active screen.
type ViewState int

const (
	ViewLogin ViewState = iota
	ViewOverview
	ViewProjects
	ViewTasks
	ViewTeam
	ViewAnalytics
)

// SessionExpiredMsg is sent from outside the event loop when a request
// comes back 401.
type SessionExpiredMsg struct{}

type loginOKMsg struct {
	token string
	user  model.User
}

type loginErrMsg struct {
	err error
}

// Model is the root application model. It owns the shared services and
// routes messages to the active screen.
type Model struct {
	gw        *api.Client
	sess      *session.Session
	feed      *notify.Feed
	refresher *syncer.Refresher
	cache     store.Store
	log       *logrus.Logger
	keys      *keys.KeyMap

	state     ViewState
	notifOpen bool

	layout ui.Layout
	help   help.Model

	loginView     login.Model
	overviewView  overview.Model
	projectsView  projects.Model
	tasksView     tasks.Model
	teamView      team.Model
	analyticsView analytics.Model
	notifPanel    notifications.Model
}

// New creates the root model and seeds the screens from the local
// cache so a returning user sees data before the first fetch lands.
func New(
	gw *api.Client,
	sess *session.Session,
	feed *notify.Feed,
	refresher *syncer.Refresher,
	cache store.Store,
	log *logrus.Logger,
) Model {
	k := keys.DefaultKeyMap()

	m := Model{
		gw:        gw,
		sess:      sess,
		feed:      feed,
		refresher: refresher,
		cache:     cache,
		log:       log,
		keys:      k,
		help:      help.New(),

		loginView:     login.New(0, 0),
		overviewView:  overview.New(gw, k, 0, 0),
		projectsView:  projects.New(gw, feed, k, 0, 0),
		tasksView:     tasks.New(gw, feed, k, 0, 0),
		teamView:      team.New(gw, feed, k, 0, 0),
		analyticsView: analytics.New(gw, k, 0, 0),
		notifPanel:    notifications.New(feed, k, 0, 0),
	}

	if sess.IsAuthenticated() {
		m.state = ViewOverview
		if u := sess.User(); u != nil {
			m.overviewView.SetUser(u.Name)
		}
		m.seedFromCache()
	} else {
		m.state = ViewLogin
	}

	return m
}

// seedFromCache pushes the cached collections into the screens.
func (m *Model) seedFromCache() {
	ctx := context.Background()

	if projects, err := m.cache.GetProjects(ctx); err == nil && len(projects) > 0 {
		m.overviewView.SetProjects(projects)
		m.projectsView.SetProjects(projects)
	}
	if tasks, err := m.cache.GetTasks(ctx); err == nil && len(tasks) > 0 {
		m.overviewView.SetTasks(tasks)
		m.tasksView.SetTasks(tasks)
	}
}

// Init starts the screens and, for authenticated sessions, the
// background refresher and the feed subscription.
func (m Model) Init() tea.Cmd {
	if m.state == ViewLogin {
		return m.loginView.Init()
	}
	return tea.Batch(
		m.refresher.Start(),
		m.feed.WaitForChange(),
		m.overviewView.Init(),
		m.projectsView.Init(),
		m.tasksView.Init(),
		m.teamView.Init(),
		m.analyticsView.Init(),
	)
}

// Update routes messages.
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		return m.handleResize(msg), nil

	case tea.KeyMsg:
		if msg.String() == "ctrl+c" {
			m.refresher.Stop()
			return m, tea.Quit
		}

	case login.SubmitMsg:
		return m, m.doLogin(msg.Email, msg.Password)

	case loginOKMsg:
		return m.handleLoginOK(msg)

	case loginErrMsg:
		m.loginView.SetError(msg.err.Error())
		return m, m.loginView.Init()

	case SessionExpiredMsg:
		return m.handleSessionExpired()

	case syncer.RefreshResultMsg:
		return m.handleRefreshResult(msg)

	case notify.ChangedMsg:
		var cmd tea.Cmd
		m.notifPanel, cmd = m.notifPanel.Update(msg)
		return m, tea.Batch(cmd, m.feed.WaitForChange())

	case notifications.CloseMsg:
		m.notifOpen = false
		return m, nil
	}

	if m.state == ViewLogin {
		var cmd tea.Cmd
		m.loginView, cmd = m.loginView.Update(msg)
		return m, cmd
	}

	if m.notifOpen {
		// Navigating to another screen dismisses the panel without
		// touching read state.
		if keyMsg, ok := msg.(tea.KeyMsg); ok && m.isViewKey(keyMsg) {
			m.notifOpen = false
			if handled, next, cmd := m.handleGlobalKey(keyMsg); handled {
				return next, cmd
			}
			return m, nil
		}
		var cmd tea.Cmd
		m.notifPanel, cmd = m.notifPanel.Update(msg)
		return m, cmd
	}

	if keyMsg, ok := msg.(tea.KeyMsg); ok && !m.activeEditing() {
		if handled, next, cmd := m.handleGlobalKey(keyMsg); handled {
			return next, cmd
		}
	}

	return m.routeToActive(msg)
}

// activeEditing reports whether the active screen has a form open, in
// which case global single-letter shortcuts must not fire.
func (m Model) activeEditing() bool {
	switch m.state {
	case ViewProjects:
		return m.projectsView.Editing()
	case ViewTasks:
		return m.tasksView.Editing()
	case ViewTeam:
		return m.teamView.Editing()
	}
	return false
}

// isViewKey reports whether the key switches screens.
func (m Model) isViewKey(msg tea.KeyMsg) bool {
	return key.Matches(msg, m.keys.Overview) ||
		key.Matches(msg, m.keys.Projects) ||
		key.Matches(msg, m.keys.Tasks) ||
		key.Matches(msg, m.keys.Team) ||
		key.Matches(msg, m.keys.Analytics)
}

func (m Model) handleGlobalKey(msg tea.KeyMsg) (bool, tea.Model, tea.Cmd) {
	switch {
	case key.Matches(msg, m.keys.Quit):
		m.refresher.Stop()
		return true, m, tea.Quit

	case key.Matches(msg, m.keys.Help):
		m.help.ShowAll = !m.help.ShowAll
		return true, m, nil

	case key.Matches(msg, m.keys.Notifications):
		m.notifOpen = true
		return true, m, nil

	case key.Matches(msg, m.keys.Overview):
		m.state = ViewOverview
		return true, m, m.overviewView.Init()

	case key.Matches(msg, m.keys.Projects):
		m.state = ViewProjects
		return true, m, m.projectsView.Init()

	case key.Matches(msg, m.keys.Tasks):
		m.state = ViewTasks
		return true, m, m.tasksView.Init()

	case key.Matches(msg, m.keys.Team):
		m.state = ViewTeam
		return true, m, m.teamView.Init()

	case key.Matches(msg, m.keys.Analytics):
		m.state = ViewAnalytics
		return true, m, m.analyticsView.Init()

	case key.Matches(msg, m.keys.Logout):
		next, cmd := m.signOut()
		return true, next, cmd

	case key.Matches(msg, m.keys.Refresh):
		// Kick the background refresher too, then let the active
		// screen run its own fetch.
		m.refresher.Refresh()
		next, cmd := m.routeToActive(msg)
		return true, next, cmd
	}
	return false, m, nil
}

func (m Model) routeToActive(msg tea.Msg) (tea.Model, tea.Cmd) {
	var cmd tea.Cmd
	switch m.state {
	case ViewOverview:
		m.overviewView, cmd = m.overviewView.Update(msg)
	case ViewProjects:
		m.projectsView, cmd = m.projectsView.Update(msg)
	case ViewTasks:
		m.tasksView, cmd = m.tasksView.Update(msg)
	case ViewTeam:
		m.teamView, cmd = m.teamView.Update(msg)
	case ViewAnalytics:
		m.analyticsView, cmd = m.analyticsView.Update(msg)
	}
	return m, cmd
}

func (m Model) handleResize(msg tea.WindowSizeMsg) Model {
	m.layout = ui.NewLayout(msg.Width, msg.Height)
	m.help.Width = msg.Width

	content := tea.WindowSizeMsg{
		Width:  m.layout.ContentWidth(),
		Height: m.layout.ContentHeight(),
	}

	m.loginView.SetSize(content.Width, content.Height)
	m.overviewView.SetSize(content.Width, content.Height)
	m.projectsView.SetSize(content.Width, content.Height)
	m.tasksView.SetSize(content.Width, content.Height)
	m.teamView.SetSize(content.Width, content.Height)
	m.analyticsView.SetSize(content.Width, content.Height)
	m.notifPanel, _ = m.notifPanel.Update(content)
	return m
}

// doLogin exchanges credentials for a token.
func (m Model) doLogin(email, password string) tea.Cmd {
	gw := m.gw
	return func() tea.Msg {
		result, err := gw.Login(context.Background(), email, password)
		if err != nil {
			return loginErrMsg{err: err}
		}
		return loginOKMsg{token: result.Token, user: result.User}
	}
}

func (m Model) handleLoginOK(msg loginOKMsg) (tea.Model, tea.Cmd) {
	m.sess.SignIn(msg.token, msg.user)
	m.gw.SetToken(msg.token)

	m.state = ViewOverview
	m.overviewView.SetUser(msg.user.Name)
	m.log.WithField("user", msg.user.Email).Info("signed in")

	return m, tea.Batch(
		m.refresher.Start(),
		m.feed.WaitForChange(),
		m.overviewView.Init(),
		m.projectsView.Init(),
		m.tasksView.Init(),
		m.teamView.Init(),
		m.analyticsView.Init(),
	)
}

func (m Model) handleSessionExpired() (tea.Model, tea.Cmd) {
	// Polling with the dead credential would only queue more auth
	// failures; the next login starts the refresher again.
	m.refresher.Stop()
	m.sess.Invalidate()
	m.gw.SetToken("")
	m.state = ViewLogin
	m.notifOpen = false
	m.loginView.SetError("Your session has expired. Please sign in again.")
	m.log.Info("session expired")
	return m, m.loginView.Init()
}

func (m Model) signOut() (tea.Model, tea.Cmd) {
	m.refresher.Stop()
	m.sess.SignOut()
	m.gw.SetToken("")
	m.state = ViewLogin
	m.notifOpen = false
	m.loginView = login.New(m.layout.ContentWidth(), m.layout.ContentHeight())
	m.log.Info("signed out")
	return m, m.loginView.Init()
}

func (m Model) handleRefreshResult(msg syncer.RefreshResultMsg) (tea.Model, tea.Cmd) {
	if msg.Unauthorized {
		next, cmd := m.handleSessionExpired()
		return next, cmd
	}

	if msg.Err == nil {
		m.overviewView.SetProjects(msg.Projects)
		m.overviewView.SetTasks(msg.Tasks)
		m.projectsView.SetProjects(msg.Projects)
		m.tasksView.SetTasks(msg.Tasks)
	}

	return m, m.refresher.WaitForNextResult()
}

// View renders the whole terminal.
func (m Model) View() string {
	if m.state == ViewLogin {
		return m.loginView.View()
	}

	header := m.layout.RenderHeader("ProjectHub", m.bell())

	var content string
	if m.notifOpen {
		content = m.layout.PlacePanel(m.notifPanel.View())
	} else {
		switch m.state {
		case ViewOverview:
			content = m.overviewView.View()
		case ViewProjects:
			content = m.projectsView.View()
		case ViewTasks:
			content = m.tasksView.View()
		case ViewTeam:
			content = m.teamView.View()
		case ViewAnalytics:
			content = m.analyticsView.View()
		}
	}

	statusBar := m.layout.RenderStatusBar(m.help.View(m.keys))
	return m.layout.RenderWithFrame(header, content, statusBar)
}

// bell renders the notification indicator with the unread count capped
// at 9+.
func (m Model) bell() string {
	unread := m.feed.UnreadCount()
	if unread == 0 {
		return "🔔"
	}
	label := fmt.Sprintf("%d", unread)
	if unread > 9 {
		label = "9+"
	}
	return "🔔 " + theme.BadgeStyle.Render(label)
}
