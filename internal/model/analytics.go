package model

// Analytics is the summary aggregate shown on the overview screen.
type Analytics struct {
	TotalProjects    int `json:"totalProjects"`
	TotalTasks       int `json:"totalTasks"`
	CompletedTasks   int `json:"completedTasks"`
	TeamMembersCount int `json:"teamMembersCount"`
	TasksOverdue     int `json:"tasksOverdue"`
}

// StatusCount is one bucket of the tasks-by-status breakdown.
type StatusCount struct {
	Status string `json:"status"`
	Count  int    `json:"count"`
}

// PriorityCount is one bucket of the tasks-by-priority breakdown.
type PriorityCount struct {
	Priority string `json:"priority"`
	Count    int    `json:"count"`
}

// ActivityPoint is one day of project/task creation activity.
type ActivityPoint struct {
	Date     string `json:"date"`
	Tasks    int    `json:"tasks"`
	Projects int    `json:"projects"`
}

// MemberProgress is one team member's completed/pending task split.
type MemberProgress struct {
	Member    string `json:"member"`
	Completed int    `json:"completed"`
	Pending   int    `json:"pending"`
}

// ChartData is the detailed analytics payload backing the charts screen.
type ChartData struct {
	TasksByStatus   []StatusCount    `json:"tasksByStatus"`
	TasksByPriority []PriorityCount  `json:"tasksByPriority"`
	ProjectActivity []ActivityPoint  `json:"projectActivity"`
	TeamProgress    []MemberProgress `json:"teamProgress"`
}
