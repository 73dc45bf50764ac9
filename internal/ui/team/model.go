package team

import (
	"context"
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/huh"
	"github.com/charmbracelet/lipgloss"

	"github.com/nhle/projecthub/internal/api"
	"github.com/nhle/projecthub/internal/keys"
	"github.com/nhle/projecthub/internal/model"
	"github.com/nhle/projecthub/internal/notify"
	"github.com/nhle/projecthub/internal/theme"
)

type teamMode int

const (
	modeList teamMode = iota
	modeInvite
	modeConfirmRemove
)

type formBindings struct {
	name     string
	email    string
	password string
	role     string
	confirm  bool
}

type teamLoadedMsg struct {
	members []model.User
	err     error
}

type memberInvitedMsg struct {
	member *model.User
	err    error
}

type memberRemovedMsg struct {
	id  string
	err error
}

// Model is the team screen: workspace roster, invite form and member
// removal. Owners cannot be removed.
type Model struct {
	mode        teamMode
	gw          api.Gateway
	feed        *notify.Feed
	keys        *keys.KeyMap
	members     []model.User
	selectedIdx int
	form        *huh.Form
	confirmForm *huh.Form
	fb          *formBindings
	statusMsg   string
	loading     bool
	width       int
	height      int
}

// New creates the team screen model.
func New(gw api.Gateway, feed *notify.Feed, k *keys.KeyMap, width, height int) Model {
	return Model{
		mode:  modeList,
		gw:    gw,
		feed:  feed,
		keys:  k,
		fb:    &formBindings{},
		width: width, height: height,
	}
}

// Init fetches the roster.
func (m Model) Init() tea.Cmd {
	m.loading = true
	return m.loadTeam()
}

// Update handles messages.
func (m Model) Update(msg tea.Msg) (Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		return m, nil

	case teamLoadedMsg:
		m.loading = false
		if msg.err == nil {
			m.members = msg.members
			m.clampSelection()
		}
		return m, nil

	case memberInvitedMsg:
		m.mode = modeList
		if msg.err != nil {
			m.statusMsg = fmt.Sprintf("Error: %v", msg.err)
			return m, nil
		}
		m.statusMsg = fmt.Sprintf("Invited %s", msg.member.Name)
		m.members = append(m.members, *msg.member)
		return m, nil

	case memberRemovedMsg:
		m.mode = modeList
		if msg.err != nil {
			m.statusMsg = fmt.Sprintf("Error: %v", msg.err)
			return m, nil
		}
		m.statusMsg = "Member removed"
		kept := m.members[:0]
		for _, u := range m.members {
			if u.ID != msg.id {
				kept = append(kept, u)
			}
		}
		m.members = kept
		m.clampSelection()
		return m, nil

	case tea.KeyMsg:
		switch m.mode {
		case modeList:
			return m.handleListKey(msg)
		case modeInvite:
			return m.updateForm(msg)
		case modeConfirmRemove:
			return m.updateConfirm(msg)
		}
	}

	switch m.mode {
	case modeInvite:
		return m.updateForm(msg)
	case modeConfirmRemove:
		return m.updateConfirm(msg)
	}
	return m, nil
}

func (m Model) handleListKey(msg tea.KeyMsg) (Model, tea.Cmd) {
	switch {
	case key.Matches(msg, m.keys.Down):
		if len(m.members) > 0 {
			m.selectedIdx = (m.selectedIdx + 1) % len(m.members)
		}
		return m, nil

	case key.Matches(msg, m.keys.Up):
		if len(m.members) > 0 {
			m.selectedIdx--
			if m.selectedIdx < 0 {
				m.selectedIdx = len(m.members) - 1
			}
		}
		return m, nil

	case key.Matches(msg, m.keys.New):
		m.fb.name = ""
		m.fb.email = ""
		m.fb.password = ""
		m.fb.role = model.RoleMember
		m.form = m.buildInviteForm()
		m.mode = modeInvite
		return m, m.form.Init()

	case key.Matches(msg, m.keys.Delete):
		if len(m.members) == 0 {
			return m, nil
		}
		if m.members[m.selectedIdx].Role == model.RoleOwner {
			m.statusMsg = "The workspace owner cannot be removed"
			return m, nil
		}
		m.fb.confirm = false
		m.confirmForm = m.buildConfirmForm()
		m.mode = modeConfirmRemove
		return m, m.confirmForm.Init()

	case key.Matches(msg, m.keys.Refresh):
		m.loading = true
		return m, m.loadTeam()
	}
	return m, nil
}

func (m Model) buildInviteForm() *huh.Form {
	return huh.NewForm(
		huh.NewGroup(
			huh.NewInput().
				Title("Name").
				Placeholder("Full name").
				Value(&m.fb.name).
				Validate(func(s string) error {
					if strings.TrimSpace(s) == "" {
						return fmt.Errorf("name is required")
					}
					return nil
				}),
			huh.NewInput().
				Title("Email").
				Placeholder("member@example.com").
				Value(&m.fb.email).
				Validate(func(s string) error {
					if !strings.Contains(s, "@") {
						return fmt.Errorf("enter a valid email address")
					}
					return nil
				}),
			huh.NewInput().
				Title("Temporary password").
				EchoMode(huh.EchoModePassword).
				Value(&m.fb.password).
				Validate(func(s string) error {
					if len(s) < 6 {
						return fmt.Errorf("password must be at least 6 characters")
					}
					return nil
				}),
			huh.NewSelect[string]().
				Title("Role").
				Options(
					huh.NewOption("Member", model.RoleMember),
					huh.NewOption("Admin", model.RoleAdmin),
				).
				Value(&m.fb.role),
		),
	).WithWidth(m.formWidth())
}

func (m Model) buildConfirmForm() *huh.Form {
	name := ""
	if m.selectedIdx < len(m.members) {
		name = m.members[m.selectedIdx].Name
	}
	return huh.NewForm(
		huh.NewGroup(
			huh.NewConfirm().
				Title(fmt.Sprintf("Remove %s from the team?", name)).
				Affirmative("Yes, remove").
				Negative("Cancel").
				Value(&m.fb.confirm),
		),
	).WithWidth(m.formWidth())
}

func (m Model) updateForm(msg tea.Msg) (Model, tea.Cmd) {
	if m.form == nil {
		return m, nil
	}
	mdl, cmd := m.form.Update(msg)
	if f, ok := mdl.(*huh.Form); ok {
		m.form = f
	}
	if m.form.State == huh.StateCompleted {
		return m, m.invite()
	}
	if m.form.State == huh.StateAborted {
		m.mode = modeList
		return m, nil
	}
	return m, cmd
}

func (m Model) updateConfirm(msg tea.Msg) (Model, tea.Cmd) {
	if m.confirmForm == nil {
		return m, nil
	}
	mdl, cmd := m.confirmForm.Update(msg)
	if f, ok := mdl.(*huh.Form); ok {
		m.confirmForm = f
	}
	if m.confirmForm.State == huh.StateCompleted {
		if m.fb.confirm && m.selectedIdx < len(m.members) {
			return m, m.remove(m.members[m.selectedIdx])
		}
		m.mode = modeList
		return m, nil
	}
	if m.confirmForm.State == huh.StateAborted {
		m.mode = modeList
		return m, nil
	}
	return m, cmd
}

// View renders the team screen.
func (m Model) View() string {
	switch m.mode {
	case modeInvite:
		return m.viewForm(m.form, "Invite team member")
	case modeConfirmRemove:
		return m.viewForm(m.confirmForm, "")
	default:
		return m.viewList()
	}
}

func (m Model) viewList() string {
	var b strings.Builder

	b.WriteString(theme.TitleStyle.Render("Team"))
	b.WriteString("\n\n")

	switch {
	case m.loading && len(m.members) == 0:
		b.WriteString(theme.EmptyStyle.Render("Loading team..."))
	case len(m.members) == 0:
		b.WriteString(theme.EmptyStyle.Render("No team members yet. Press 'n' to invite one."))
	default:
		for i, u := range m.members {
			role := u.Role
			if role == "" {
				role = model.RoleMember
			}
			label := u.Name +
				"  " + theme.HelpStyle.Render(u.Email) +
				"  " + theme.RoleStyle(role).Render(role)

			if i == m.selectedIdx {
				b.WriteString(theme.SelectedItemStyle.Render(label))
			} else {
				b.WriteString(theme.ListItemStyle.Render(label))
			}
			b.WriteString("\n")
		}
	}

	if m.statusMsg != "" {
		b.WriteString("\n")
		b.WriteString(lipgloss.NewStyle().Foreground(theme.ColorYellow).Italic(true).Render(m.statusMsg))
	}

	b.WriteString("\n\n")
	b.WriteString(theme.HelpStyle.Render("n invite | d remove | r refresh"))

	return lipgloss.NewStyle().Padding(1, 2).Width(m.width).Height(m.height).Render(b.String())
}

func (m Model) viewForm(f *huh.Form, title string) string {
	if f == nil {
		return ""
	}
	var b strings.Builder
	if title != "" {
		b.WriteString(theme.TitleStyle.Render(title))
		b.WriteString("\n\n")
	}
	b.WriteString(f.View())
	return lipgloss.NewStyle().Padding(1, 2).Render(b.String())
}

// Editing reports whether a form currently owns the keyboard.
func (m Model) Editing() bool {
	return m.mode != modeList
}

// SetSize updates dimensions.
func (m *Model) SetSize(width, height int) {
	m.width = width
	m.height = height
}

func (m *Model) clampSelection() {
	if m.selectedIdx >= len(m.members) && m.selectedIdx > 0 {
		m.selectedIdx = len(m.members) - 1
	}
	if m.selectedIdx < 0 {
		m.selectedIdx = 0
	}
}

func (m Model) formWidth() int {
	w := m.width - 4
	if w < 40 {
		w = 40
	}
	if w > 72 {
		w = 72
	}
	return w
}

func (m Model) loadTeam() tea.Cmd {
	gw := m.gw
	return func() tea.Msg {
		members, err := gw.ListTeam(context.Background())
		return teamLoadedMsg{members: members, err: err}
	}
}

// invite calls the gateway and records the outcome in the feed.
func (m Model) invite() tea.Cmd {
	gw := m.gw
	feed := m.feed
	in := api.InviteInput{
		Name:     m.fb.name,
		Email:    m.fb.email,
		Password: m.fb.password,
		Role:     m.fb.role,
	}

	return func() tea.Msg {
		member, err := gw.InviteTeamMember(context.Background(), in)
		if err != nil {
			feed.Record(notify.Input{
				Kind:       model.KindError,
				Title:      "Team Member Addition Failed",
				Message:    err.Error(),
				Operation:  model.OperationCreate,
				EntityType: model.EntityTeam,
			})
			return memberInvitedMsg{err: err}
		}
		feed.Record(notify.Input{
			Kind:       model.KindSuccess,
			Title:      "Team Member Added",
			Message:    fmt.Sprintf("%s has been added to the team", member.Name),
			Operation:  model.OperationCreate,
			EntityType: model.EntityTeam,
			EntityID:   member.ID,
		})
		return memberInvitedMsg{member: member}
	}
}

// remove calls the gateway and records a warning on success.
func (m Model) remove(u model.User) tea.Cmd {
	gw := m.gw
	feed := m.feed

	return func() tea.Msg {
		err := gw.RemoveTeamMember(context.Background(), u.ID)
		if err != nil {
			feed.Record(notify.Input{
				Kind:       model.KindError,
				Title:      "Team Member Removal Failed",
				Message:    err.Error(),
				Operation:  model.OperationDelete,
				EntityType: model.EntityTeam,
				EntityID:   u.ID,
			})
			return memberRemovedMsg{id: u.ID, err: err}
		}
		feed.Record(notify.Input{
			Kind:       model.KindWarning,
			Title:      "Team Member Removed",
			Message:    fmt.Sprintf("%s has been removed from the team", u.Name),
			Operation:  model.OperationDelete,
			EntityType: model.EntityTeam,
			EntityID:   u.ID,
		})
		return memberRemovedMsg{id: u.ID}
	}
}
