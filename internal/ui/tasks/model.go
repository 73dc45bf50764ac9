package tasks

import (
	"context"
	"fmt"
	"strings"
	"time"

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

type taskMode int

const (
	modeList taskMode = iota
	modeForm
	modeConfirmDelete
)

// statusFilters is the cycle order for the list filter.
var statusFilters = []string{"all", model.StatusTodo, model.StatusInProgress, model.StatusCompleted}

type formBindings struct {
	title       string
	description string
	priority    string
	project     string
	assignee    string
	dueDate     string
	confirm     bool
}

type tasksLoadedMsg struct {
	tasks []model.Task
	err   error
}

type optionsLoadedMsg struct {
	projects []model.Project
	users    []model.User
}

type taskSavedMsg struct {
	task  *model.Task
	isNew bool
	err   error
}

type taskDeletedMsg struct {
	id  string
	err error
}

// Model is the tasks screen: filterable list, create/edit form,
// status cycling, delete confirmation. Mutation outcomes are recorded
// into the notification feed.
type Model struct {
	mode        taskMode
	gw          api.Gateway
	feed        *notify.Feed
	keys        *keys.KeyMap
	tasks       []model.Task
	projects    []model.Project
	users       []model.User
	filterIdx   int
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
}

// New creates the tasks screen model.
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

// Init fetches tasks from the gateway.
func (m Model) Init() tea.Cmd {
	return m.loadTasks()
}

// SetTasks replaces the screen's collection (cache seed or refresh).
func (m *Model) SetTasks(tasks []model.Task) {
	m.tasks = tasks
	m.clampSelection()
}

// visible returns the tasks matching the current status filter.
func (m Model) visible() []model.Task {
	filter := statusFilters[m.filterIdx]
	if filter == "all" {
		return m.tasks
	}
	var out []model.Task
	for _, t := range m.tasks {
		if t.Status == filter {
			out = append(out, t)
		}
	}
	return out
}

func (m *Model) clampSelection() {
	n := len(m.visible())
	if m.selectedIdx >= n && m.selectedIdx > 0 {
		m.selectedIdx = n - 1
	}
	if m.selectedIdx < 0 {
		m.selectedIdx = 0
	}
}

// Update handles messages.
func (m Model) Update(msg tea.Msg) (Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		return m, nil

	case tasksLoadedMsg:
		m.loading = false
		if msg.err == nil {
			m.SetTasks(msg.tasks)
		}
		return m, nil

	case optionsLoadedMsg:
		m.projects = msg.projects
		m.users = msg.users
		m.form = m.buildForm()
		m.mode = modeForm
		return m, m.form.Init()

	case taskSavedMsg:
		m.mode = modeList
		if msg.err != nil {
			m.statusMsg = fmt.Sprintf("Error: %v", msg.err)
			return m, nil
		}
		m.statusMsg = "Task saved"
		if msg.isNew {
			m.tasks = append(m.tasks, *msg.task)
		} else {
			for i := range m.tasks {
				if m.tasks[i].ID == msg.task.ID {
					m.tasks[i] = *msg.task
					break
				}
			}
		}
		return m, nil

	case taskDeletedMsg:
		m.mode = modeList
		if msg.err != nil {
			m.statusMsg = fmt.Sprintf("Error: %v", msg.err)
			return m, nil
		}
		m.statusMsg = "Task deleted"
		kept := m.tasks[:0]
		for _, t := range m.tasks {
			if t.ID != msg.id {
				kept = append(kept, t)
			}
		}
		m.tasks = kept
		m.clampSelection()
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
	case modeForm:
		return m.updateForm(msg)
	case modeConfirmDelete:
		return m.updateConfirm(msg)
	}
	return m, nil
}

func (m Model) handleListKey(msg tea.KeyMsg) (Model, tea.Cmd) {
	visible := m.visible()

	switch {
	case key.Matches(msg, m.keys.Down):
		if len(visible) > 0 {
			m.selectedIdx = (m.selectedIdx + 1) % len(visible)
		}
		return m, nil

	case key.Matches(msg, m.keys.Up):
		if len(visible) > 0 {
			m.selectedIdx--
			if m.selectedIdx < 0 {
				m.selectedIdx = len(visible) - 1
			}
		}
		return m, nil

	case msg.String() == "tab":
		m.filterIdx = (m.filterIdx + 1) % len(statusFilters)
		m.selectedIdx = 0
		return m, nil

	case key.Matches(msg, m.keys.New):
		m.isNew = true
		m.editingID = ""
		m.fb.title = ""
		m.fb.description = ""
		m.fb.priority = model.PriorityMedium
		m.fb.project = ""
		m.fb.assignee = ""
		m.fb.dueDate = ""
		return m, m.loadFormOptions()

	case key.Matches(msg, m.keys.Edit):
		if len(visible) == 0 {
			return m, nil
		}
		t := visible[m.selectedIdx]
		m.isNew = false
		m.editingID = t.ID
		m.fb.title = t.Title
		m.fb.description = t.Description
		m.fb.priority = t.Priority
		m.fb.project = t.Project
		m.fb.assignee = t.AssignedTo
		m.fb.dueDate = ""
		if t.DueDate != nil {
			m.fb.dueDate = t.DueDate.Format("2006-01-02")
		}
		return m, m.loadFormOptions()

	case key.Matches(msg, m.keys.CycleStatus):
		if len(visible) == 0 {
			return m, nil
		}
		return m, m.changeStatus(visible[m.selectedIdx])

	case key.Matches(msg, m.keys.Delete):
		if len(visible) == 0 {
			return m, nil
		}
		m.fb.confirm = false
		m.confirmForm = m.buildConfirmForm()
		m.mode = modeConfirmDelete
		return m, m.confirmForm.Init()

	case key.Matches(msg, m.keys.Refresh):
		m.loading = true
		return m, m.loadTasks()
	}
	return m, nil
}

func (m Model) buildForm() *huh.Form {
	projectOpts := []huh.Option[string]{huh.NewOption("None", "")}
	for _, p := range m.projects {
		projectOpts = append(projectOpts, huh.NewOption(p.Name, p.ID))
	}

	userOpts := []huh.Option[string]{huh.NewOption("Unassigned", "")}
	for _, u := range m.users {
		userOpts = append(userOpts, huh.NewOption(u.Name, u.ID))
	}

	return huh.NewForm(
		huh.NewGroup(
			huh.NewInput().
				Title("Title").
				Placeholder("Task title").
				Value(&m.fb.title).
				Validate(func(s string) error {
					if strings.TrimSpace(s) == "" {
						return fmt.Errorf("title is required")
					}
					return nil
				}),
			huh.NewText().
				Title("Description").
				Placeholder("Optional description").
				Value(&m.fb.description),
			huh.NewSelect[string]().
				Title("Priority").
				Options(
					huh.NewOption("Low", model.PriorityLow),
					huh.NewOption("Medium", model.PriorityMedium),
					huh.NewOption("High", model.PriorityHigh),
				).
				Value(&m.fb.priority),
			huh.NewSelect[string]().
				Title("Project").
				Options(projectOpts...).
				Value(&m.fb.project),
			huh.NewSelect[string]().
				Title("Assignee").
				Options(userOpts...).
				Value(&m.fb.assignee),
			huh.NewInput().
				Title("Due date").
				Placeholder("YYYY-MM-DD (optional)").
				Value(&m.fb.dueDate).
				Validate(func(s string) error {
					if s == "" {
						return nil
					}
					if _, err := time.Parse("2006-01-02", s); err != nil {
						return fmt.Errorf("use YYYY-MM-DD")
					}
					return nil
				}),
		),
	).WithWidth(m.formWidth()).WithHeight(m.formHeight())
}

func (m Model) buildConfirmForm() *huh.Form {
	title := ""
	if visible := m.visible(); m.selectedIdx < len(visible) {
		title = visible[m.selectedIdx].Title
	}
	return huh.NewForm(
		huh.NewGroup(
			huh.NewConfirm().
				Title(fmt.Sprintf("Delete task %q?", title)).
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
		return m, m.saveTask()
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
			if visible := m.visible(); m.selectedIdx < len(visible) {
				return m, m.deleteTask(visible[m.selectedIdx])
			}
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

// View renders the tasks screen.
func (m Model) View() string {
	switch m.mode {
	case modeForm:
		return m.viewForm(m.form)
	case modeConfirmDelete:
		return m.viewForm(m.confirmForm)
	default:
		return m.viewList()
	}
}

func (m Model) viewList() string {
	var b strings.Builder

	filter := statusFilters[m.filterIdx]
	heading := "Tasks"
	if filter != "all" {
		heading = fmt.Sprintf("Tasks — %s", filter)
	}
	b.WriteString(theme.TitleStyle.Render(heading))
	b.WriteString("\n\n")

	visible := m.visible()
	switch {
	case m.loading && len(visible) == 0:
		b.WriteString(theme.EmptyStyle.Render("Loading tasks..."))
	case len(visible) == 0:
		b.WriteString(theme.EmptyStyle.Render("No tasks found. Press 'n' to create one."))
	default:
		for i, t := range visible {
			label := t.Title +
				"  " + theme.StatusStyle(t.Status).Render(t.Status) +
				" " + theme.PriorityStyle(t.Priority).Render(t.Priority)
			if t.DueDate != nil {
				label += "  " + theme.HelpStyle.Render("due "+t.DueDate.Format("Jan 2"))
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
	b.WriteString(theme.HelpStyle.Render("n new | e edit | s cycle status | d delete | tab filter | r refresh"))

	return lipgloss.NewStyle().Padding(1, 2).Width(m.width).Height(m.height).Render(b.String())
}

func (m Model) viewForm(f *huh.Form) string {
	if f == nil {
		return ""
	}
	return lipgloss.NewStyle().Padding(1, 2).Render(f.View())
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

func (m Model) loadTasks() tea.Cmd {
	gw := m.gw
	return func() tea.Msg {
		tasks, err := gw.ListTasks(context.Background())
		return tasksLoadedMsg{tasks: tasks, err: err}
	}
}

// loadFormOptions fetches projects and users for the select fields.
func (m Model) loadFormOptions() tea.Cmd {
	gw := m.gw
	return func() tea.Msg {
		ctx := context.Background()
		projects, _ := gw.ListProjects(ctx)
		users, _ := gw.ListUsers(ctx)
		return optionsLoadedMsg{projects: projects, users: users}
	}
}

// taskInput assembles the request body from the form bindings.
func (m Model) taskInput(status string) api.TaskInput {
	in := api.TaskInput{
		Title:       m.fb.title,
		Description: m.fb.description,
		Priority:    m.fb.priority,
		Status:      status,
	}
	if m.fb.dueDate != "" {
		if due, err := time.Parse("2006-01-02", m.fb.dueDate); err == nil {
			iso := due.UTC().Format(time.RFC3339)
			in.DueDate = &iso
		}
	}
	if m.fb.project != "" {
		project := m.fb.project
		in.Project = &project
	}
	if m.fb.assignee != "" {
		assignee := m.fb.assignee
		in.AssignedTo = &assignee
	}
	return in
}

// saveTask calls the gateway and records the outcome in the feed.
func (m Model) saveTask() tea.Cmd {
	gw := m.gw
	feed := m.feed
	editID := m.editingID
	isNew := m.isNew

	var in api.TaskInput
	if isNew {
		in = m.taskInput("")
	} else {
		in = m.taskInput(m.currentStatus(editID))
	}

	return func() tea.Msg {
		ctx := context.Background()

		if isNew {
			t, err := gw.CreateTask(ctx, in)
			if err != nil {
				feed.Record(notify.Input{
					Kind:       model.KindError,
					Title:      "Task Creation Failed",
					Message:    err.Error(),
					Operation:  model.OperationCreate,
					EntityType: model.EntityTask,
				})
				return taskSavedMsg{isNew: true, err: err}
			}
			feed.Record(notify.Input{
				Kind:       model.KindSuccess,
				Title:      "Task Created",
				Message:    fmt.Sprintf("Task %q has been created and assigned successfully", t.Title),
				Operation:  model.OperationCreate,
				EntityType: model.EntityTask,
				EntityID:   t.ID,
			})
			return taskSavedMsg{task: t, isNew: true}
		}

		t, err := gw.UpdateTask(ctx, editID, in)
		if err != nil {
			feed.Record(notify.Input{
				Kind:       model.KindError,
				Title:      "Task Update Failed",
				Message:    err.Error(),
				Operation:  model.OperationUpdate,
				EntityType: model.EntityTask,
				EntityID:   editID,
			})
			return taskSavedMsg{err: err}
		}
		feed.Record(notify.Input{
			Kind:       model.KindSuccess,
			Title:      "Task Updated",
			Message:    fmt.Sprintf("Task %q has been updated successfully", t.Title),
			Operation:  model.OperationUpdate,
			EntityType: model.EntityTask,
			EntityID:   t.ID,
		})
		return taskSavedMsg{task: t}
	}
}

func (m Model) currentStatus(id string) string {
	for _, t := range m.tasks {
		if t.ID == id {
			return t.Status
		}
	}
	return model.StatusTodo
}

// changeStatus advances a task to its next status via the gateway.
func (m Model) changeStatus(t model.Task) tea.Cmd {
	gw := m.gw
	feed := m.feed
	next := model.NextStatus(t.Status)

	in := api.TaskInput{
		Title:       t.Title,
		Description: t.Description,
		Priority:    t.Priority,
		Status:      next,
	}
	if t.DueDate != nil {
		iso := t.DueDate.UTC().Format(time.RFC3339)
		in.DueDate = &iso
	}
	if t.Project != "" {
		project := t.Project
		in.Project = &project
	}
	if t.AssignedTo != "" {
		assignee := t.AssignedTo
		in.AssignedTo = &assignee
	}

	return func() tea.Msg {
		updated, err := gw.UpdateTask(context.Background(), t.ID, in)
		if err != nil {
			feed.Record(notify.Input{
				Kind:       model.KindError,
				Title:      "Task Update Failed",
				Message:    err.Error(),
				Operation:  model.OperationUpdate,
				EntityType: model.EntityTask,
				EntityID:   t.ID,
			})
			return taskSavedMsg{err: err}
		}
		feed.Record(notify.Input{
			Kind:       model.KindSuccess,
			Title:      "Task Updated",
			Message:    fmt.Sprintf("Task %q moved to %s", updated.Title, updated.Status),
			Operation:  model.OperationUpdate,
			EntityType: model.EntityTask,
			EntityID:   updated.ID,
		})
		return taskSavedMsg{task: updated}
	}
}

// deleteTask removes a task, recording a warning on success.
func (m Model) deleteTask(t model.Task) tea.Cmd {
	gw := m.gw
	feed := m.feed

	return func() tea.Msg {
		err := gw.DeleteTask(context.Background(), t.ID)
		if err != nil {
			feed.Record(notify.Input{
				Kind:       model.KindError,
				Title:      "Task Deletion Failed",
				Message:    err.Error(),
				Operation:  model.OperationDelete,
				EntityType: model.EntityTask,
				EntityID:   t.ID,
			})
			return taskDeletedMsg{id: t.ID, err: err}
		}
		feed.Record(notify.Input{
			Kind:       model.KindWarning,
			Title:      "Task Deleted",
			Message:    fmt.Sprintf("Task %q has been deleted", t.Title),
			Operation:  model.OperationDelete,
			EntityType: model.EntityTask,
			EntityID:   t.ID,
		})
		return taskDeletedMsg{id: t.ID}
	}
}
