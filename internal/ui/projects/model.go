package projects

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

type projectMode int

const (
	modeList projectMode = iota
	modeDetail
	modeForm
	modeConfirmDelete
)

type formBindings struct {
	name        string
	description string
	confirm     bool
}

type projectsLoadedMsg struct {
	projects []model.Project
	err      error
}

type projectSavedMsg struct {
	project *model.Project
	isNew   bool
	err     error
}

type projectDeletedMsg struct {
	id  string
	err error
}

type projectTeamLoadedMsg struct {
	projectID string
	members   []model.TeamMemberDetail
	err       error
}

// Model is the projects screen: list, create/edit form, delete
// confirmation. Every definitive mutation outcome is recorded into
// the notification feed; the feed never participates in the screen's
// own flow.
type Model struct {
	mode        projectMode
	gw          api.Gateway
	feed        *notify.Feed
	keys        *keys.KeyMap
	projects    []model.Project
	selectedIdx int
	editingID   string
	isNew       bool
	form        *huh.Form
	confirmForm *huh.Form
	fb          *formBindings
	statusMsg   string
	loading     bool
	width       int
	height      int

	detailProject model.Project
	detailTeam    []model.TeamMemberDetail
	detailErr     error
}

// New creates the projects screen model.
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

// Init fetches projects from the gateway.
func (m Model) Init() tea.Cmd {
	return m.loadProjects()
}

// SetProjects replaces the screen's collection, used to seed from the
// local cache and to apply background refresh results.
func (m *Model) SetProjects(projects []model.Project) {
	m.projects = projects
	if m.selectedIdx >= len(m.projects) && m.selectedIdx > 0 {
		m.selectedIdx = len(m.projects) - 1
	}
}

// Update handles messages.
func (m Model) Update(msg tea.Msg) (Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		return m, nil

	case projectsLoadedMsg:
		m.loading = false
		if msg.err == nil {
			m.SetProjects(msg.projects)
		}
		return m, nil

	case projectSavedMsg:
		m.mode = modeList
		if msg.err != nil {
			m.statusMsg = fmt.Sprintf("Error: %v", msg.err)
			return m, nil
		}
		m.statusMsg = "Project saved"
		if msg.isNew {
			m.projects = append([]model.Project{*msg.project}, m.projects...)
		} else {
			for i := range m.projects {
				if m.projects[i].ID == msg.project.ID {
					m.projects[i] = *msg.project
					break
				}
			}
		}
		return m, nil

	case projectTeamLoadedMsg:
		if m.mode == modeDetail && msg.projectID == m.detailProject.ID {
			m.detailTeam = msg.members
			m.detailErr = msg.err
		}
		return m, nil

	case projectDeletedMsg:
		m.mode = modeList
		if msg.err != nil {
			m.statusMsg = fmt.Sprintf("Error: %v", msg.err)
			return m, nil
		}
		m.statusMsg = "Project deleted"
		kept := m.projects[:0]
		for _, p := range m.projects {
			if p.ID != msg.id {
				kept = append(kept, p)
			}
		}
		m.projects = kept
		if m.selectedIdx >= len(m.projects) && m.selectedIdx > 0 {
			m.selectedIdx = len(m.projects) - 1
		}
		return m, nil

	case tea.KeyMsg:
		return m.handleKey(msg)
	}

	return m.updateActiveForm(msg)
}

func (m Model) handleKey(msg tea.KeyMsg) (Model, tea.Cmd) {
	switch m.mode {
	case modeList:
		return m.handleListKey(msg)
	case modeDetail:
		if key.Matches(msg, m.keys.Back) {
			m.mode = modeList
		}
		return m, nil
	case modeForm:
		return m.updateForm(msg)
	case modeConfirmDelete:
		return m.updateConfirm(msg)
	}
	return m, nil
}

func (m Model) handleListKey(msg tea.KeyMsg) (Model, tea.Cmd) {
	switch {
	case key.Matches(msg, m.keys.Down):
		if len(m.projects) > 0 {
			m.selectedIdx = (m.selectedIdx + 1) % len(m.projects)
		}
		return m, nil

	case key.Matches(msg, m.keys.Up):
		if len(m.projects) > 0 {
			m.selectedIdx--
			if m.selectedIdx < 0 {
				m.selectedIdx = len(m.projects) - 1
			}
		}
		return m, nil

	case key.Matches(msg, m.keys.Select):
		if len(m.projects) == 0 {
			return m, nil
		}
		m.detailProject = m.projects[m.selectedIdx]
		m.detailTeam = nil
		m.detailErr = nil
		m.mode = modeDetail
		return m, m.loadProjectTeam(m.detailProject.ID)

	case key.Matches(msg, m.keys.New):
		m.isNew = true
		m.editingID = ""
		m.fb.name = ""
		m.fb.description = ""
		m.form = m.buildForm()
		m.mode = modeForm
		return m, m.form.Init()

	case key.Matches(msg, m.keys.Edit):
		if len(m.projects) == 0 {
			return m, nil
		}
		p := m.projects[m.selectedIdx]
		m.isNew = false
		m.editingID = p.ID
		m.fb.name = p.Name
		m.fb.description = p.Description
		m.form = m.buildForm()
		m.mode = modeForm
		return m, m.form.Init()

	case key.Matches(msg, m.keys.Delete):
		if len(m.projects) == 0 {
			return m, nil
		}
		m.fb.confirm = false
		m.confirmForm = m.buildConfirmForm()
		m.mode = modeConfirmDelete
		return m, m.confirmForm.Init()

	case key.Matches(msg, m.keys.Refresh):
		m.loading = true
		return m, m.loadProjects()
	}
	return m, nil
}

func (m Model) buildForm() *huh.Form {
	return huh.NewForm(
		huh.NewGroup(
			huh.NewInput().
				Title("Name").
				Placeholder("Project name").
				Value(&m.fb.name).
				Validate(func(s string) error {
					if strings.TrimSpace(s) == "" {
						return fmt.Errorf("name is required")
					}
					return nil
				}),
			huh.NewText().
				Title("Description").
				Placeholder("Optional description").
				Value(&m.fb.description),
		),
	).WithWidth(m.formWidth()).WithHeight(m.formHeight())
}

func (m Model) buildConfirmForm() *huh.Form {
	name := ""
	if m.selectedIdx < len(m.projects) {
		name = m.projects[m.selectedIdx].Name
	}
	return huh.NewForm(
		huh.NewGroup(
			huh.NewConfirm().
				Title(fmt.Sprintf("Delete project %q?", name)).
				Description("Tasks in this project will be unfiled.").
				Affirmative("Yes, delete").
				Negative("Cancel").
				Value(&m.fb.confirm),
		),
	).WithWidth(m.formWidth()).WithHeight(m.formHeight())
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
		return m, m.saveProject()
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
		if m.fb.confirm {
			p := m.projects[m.selectedIdx]
			return m, m.deleteProject(p)
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

func (m Model) updateActiveForm(msg tea.Msg) (Model, tea.Cmd) {
	switch m.mode {
	case modeForm:
		return m.updateForm(msg)
	case modeConfirmDelete:
		return m.updateConfirm(msg)
	}
	return m, nil
}

// View renders the projects screen.
func (m Model) View() string {
	switch m.mode {
	case modeDetail:
		return m.viewDetail()
	case modeForm:
		return m.viewForm(m.form)
	case modeConfirmDelete:
		return m.viewForm(m.confirmForm)
	default:
		return m.viewList()
	}
}

func (m Model) viewDetail() string {
	var b strings.Builder

	p := m.detailProject
	b.WriteString(theme.TitleStyle.Render(p.Name))
	b.WriteString("\n")
	if p.Description != "" {
		b.WriteString(theme.HelpStyle.Render(p.Description))
		b.WriteString("\n")
	}
	b.WriteString("\n")

	b.WriteString(lipgloss.NewStyle().Bold(true).Render("Team"))
	b.WriteString("\n")
	switch {
	case m.detailErr != nil:
		b.WriteString(lipgloss.NewStyle().Foreground(theme.ColorRed).Render(
			fmt.Sprintf("Failed to load team: %v", m.detailErr)))
	case m.detailTeam == nil:
		b.WriteString(theme.EmptyStyle.Render("  Loading members..."))
	case len(m.detailTeam) == 0:
		b.WriteString(theme.EmptyStyle.Render("  No members on this project"))
	default:
		for _, member := range m.detailTeam {
			b.WriteString(theme.ListItemStyle.Render(
				member.UserInfo.Name +
					"  " + theme.HelpStyle.Render(member.UserInfo.Email) +
					"  " + theme.RoleStyle(member.Role).Render(member.Role)))
			b.WriteString("\n")
		}
	}

	b.WriteString("\n\n")
	b.WriteString(theme.HelpStyle.Render("esc back"))

	return lipgloss.NewStyle().Padding(1, 2).Width(m.width).Height(m.height).Render(b.String())
}

func (m Model) viewList() string {
	var b strings.Builder

	b.WriteString(theme.TitleStyle.Render("Projects"))
	b.WriteString("\n\n")

	switch {
	case m.loading && len(m.projects) == 0:
		b.WriteString(theme.EmptyStyle.Render("Loading projects..."))
	case len(m.projects) == 0:
		b.WriteString(theme.EmptyStyle.Render("No projects yet. Press 'n' to create one."))
	default:
		for i, p := range m.projects {
			label := p.Name
			if p.Description != "" {
				label += "  " + theme.HelpStyle.Render(p.Description)
			}

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
	b.WriteString(theme.HelpStyle.Render("enter team | n new | e edit | d delete | r refresh"))

	return lipgloss.NewStyle().Padding(1, 2).Width(m.width).Height(m.height).Render(b.String())
}

func (m Model) viewForm(f *huh.Form) string {
	if f == nil {
		return ""
	}
	return lipgloss.NewStyle().Padding(1, 2).Render(f.View())
}

// Editing reports whether a form currently owns the keyboard. The
// detail mode is read-only, so global shortcuts stay live there.
func (m Model) Editing() bool {
	return m.mode == modeForm || m.mode == modeConfirmDelete
}

// SetSize updates dimensions.
func (m *Model) SetSize(width, height int) {
	m.width = width
	m.height = height
}

func (m Model) formWidth() int {
	w := m.width - 4
	if w < 40 {
		w = 40
	}
	if w > 100 {
		w = 100
	}
	return w
}

func (m Model) formHeight() int {
	h := m.height - 4
	if h < 10 {
		h = 10
	}
	return h
}

func (m Model) loadProjectTeam(projectID string) tea.Cmd {
	gw := m.gw
	return func() tea.Msg {
		members, err := gw.ProjectTeam(context.Background(), projectID)
		return projectTeamLoadedMsg{projectID: projectID, members: members, err: err}
	}
}

func (m Model) loadProjects() tea.Cmd {
	gw := m.gw
	return func() tea.Msg {
		projects, err := gw.ListProjects(context.Background())
		return projectsLoadedMsg{projects: projects, err: err}
	}
}

// saveProject calls the gateway and records the outcome in the feed.
// The event is recorded inside the command, immediately after the
// call resolves, so feed order matches resolution order.
func (m Model) saveProject() tea.Cmd {
	gw := m.gw
	feed := m.feed
	in := api.ProjectInput{Name: m.fb.name, Description: m.fb.description}
	editID := m.editingID
	isNew := m.isNew

	return func() tea.Msg {
		ctx := context.Background()

		if isNew {
			p, err := gw.CreateProject(ctx, in)
			if err != nil {
				// No entity id: the create failed before one existed.
				feed.Record(notify.Input{
					Kind:       model.KindError,
					Title:      "Project Creation Failed",
					Message:    err.Error(),
					Operation:  model.OperationCreate,
					EntityType: model.EntityProject,
				})
				return projectSavedMsg{isNew: true, err: err}
			}
			feed.Record(notify.Input{
				Kind:       model.KindSuccess,
				Title:      "Project Created",
				Message:    fmt.Sprintf("Project %q has been created successfully", p.Name),
				Operation:  model.OperationCreate,
				EntityType: model.EntityProject,
				EntityID:   p.ID,
			})
			return projectSavedMsg{project: p, isNew: true}
		}

		p, err := gw.UpdateProject(ctx, editID, in)
		if err != nil {
			feed.Record(notify.Input{
				Kind:       model.KindError,
				Title:      "Project Update Failed",
				Message:    err.Error(),
				Operation:  model.OperationUpdate,
				EntityType: model.EntityProject,
				EntityID:   editID,
			})
			return projectSavedMsg{err: err}
		}
		feed.Record(notify.Input{
			Kind:       model.KindSuccess,
			Title:      "Project Updated",
			Message:    fmt.Sprintf("Project %q has been updated successfully", p.Name),
			Operation:  model.OperationUpdate,
			EntityType: model.EntityProject,
			EntityID:   p.ID,
		})
		return projectSavedMsg{project: p}
	}
}

// deleteProject removes a project. Deletion is a definitive success
// of a destructive action, so it records a warning rather than a
// success.
func (m Model) deleteProject(p model.Project) tea.Cmd {
	gw := m.gw
	feed := m.feed

	return func() tea.Msg {
		err := gw.DeleteProject(context.Background(), p.ID)
		if err != nil {
			feed.Record(notify.Input{
				Kind:       model.KindError,
				Title:      "Project Deletion Failed",
				Message:    err.Error(),
				Operation:  model.OperationDelete,
				EntityType: model.EntityProject,
				EntityID:   p.ID,
			})
			return projectDeletedMsg{id: p.ID, err: err}
		}
		feed.Record(notify.Input{
			Kind:       model.KindWarning,
			Title:      "Project Deleted",
			Message:    fmt.Sprintf("Project %q has been deleted", p.Name),
			Operation:  model.OperationDelete,
			EntityType: model.EntityProject,
			EntityID:   p.ID,
		})
		return projectDeletedMsg{id: p.ID}
	}
}
