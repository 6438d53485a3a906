package ticktick

import "fmt"

// Task priority levels as defined by the TickTick API.
const (
	PriorityNone   = 0
	PriorityLow    = 1
	PriorityMedium = 3
	PriorityHigh   = 5
)

// ValidatePriority checks a priority value against the API's closed set.
func ValidatePriority(p int) error {
	switch p {
	case PriorityNone, PriorityLow, PriorityMedium, PriorityHigh:
		return nil
	}
	return fmt.Errorf("invalid priority %d: must be one of 0 (none), 1 (low), 3 (medium), 5 (high)", p)
}

// Project is the flattened representation of a TickTick project returned to
// callers.
type Project struct {
	ID         string `json:"id"`
	Name       string `json:"name"`
	Color      string `json:"color,omitempty"`
	Closed     bool   `json:"closed"`
	GroupID    string `json:"group_id,omitempty"`
	ViewMode   string `json:"view_mode,omitempty"`
	SortOrder  int64  `json:"sort_order"`
	Kind       string `json:"kind,omitempty"`
	Permission string `json:"permission,omitempty"`
}

// ChecklistItem is a sub-item of a task.
type ChecklistItem struct {
	ID            string `json:"id"`
	Title         string `json:"title"`
	Status        int    `json:"status"`
	SortOrder     int64  `json:"sort_order"`
	StartDate     string `json:"start_date,omitempty"`
	IsAllDay      bool   `json:"is_all_day"`
	TimeZone      string `json:"time_zone,omitempty"`
	CompletedTime string `json:"completed_time,omitempty"`
}

// Task is the flattened representation of a TickTick task returned to
// callers. Status 0 is open, 2 is completed.
type Task struct {
	ID            string          `json:"id"`
	ProjectID     string          `json:"project_id"`
	Title         string          `json:"title"`
	Content       string          `json:"content,omitempty"`
	Desc          string          `json:"desc,omitempty"`
	IsAllDay      bool            `json:"is_all_day"`
	StartDate     string          `json:"start_date,omitempty"`
	DueDate       string          `json:"due_date,omitempty"`
	TimeZone      string          `json:"time_zone,omitempty"`
	Reminders     []string        `json:"reminders"`
	RepeatFlag    string          `json:"repeat_flag,omitempty"`
	Priority      int             `json:"priority"`
	Status        int             `json:"status"`
	CompletedTime string          `json:"completed_time,omitempty"`
	SortOrder     int64           `json:"sort_order"`
	Kind          string          `json:"kind,omitempty"`
	Items         []ChecklistItem `json:"items"`
}

// ProjectData bundles a project with its tasks and kanban columns, matching
// the API's /project/{id}/data response.
type ProjectData struct {
	Project Project          `json:"project"`
	Tasks   []Task           `json:"tasks"`
	Columns []map[string]any `json:"columns"`
}

// apiProject mirrors the wire format of a project object.
type apiProject struct {
	ID         string `json:"id"`
	Name       string `json:"name"`
	Color      string `json:"color"`
	Closed     bool   `json:"closed"`
	GroupID    string `json:"groupId"`
	ViewMode   string `json:"viewMode"`
	SortOrder  int64  `json:"sortOrder"`
	Kind       string `json:"kind"`
	Permission string `json:"permission"`
}

// apiTask mirrors the wire format of a task object.
type apiTask struct {
	ID            string    `json:"id"`
	ProjectID     string    `json:"projectId"`
	Title         string    `json:"title"`
	Content       string    `json:"content"`
	Desc          string    `json:"desc"`
	IsAllDay      bool      `json:"isAllDay"`
	StartDate     string    `json:"startDate"`
	DueDate       string    `json:"dueDate"`
	TimeZone      string    `json:"timeZone"`
	Reminders     []string  `json:"reminders"`
	RepeatFlag    string    `json:"repeatFlag"`
	Priority      int       `json:"priority"`
	Status        int       `json:"status"`
	CompletedTime string    `json:"completedTime"`
	SortOrder     int64     `json:"sortOrder"`
	Kind          string    `json:"kind"`
	Items         []apiItem `json:"items"`
}

type apiItem struct {
	ID            string `json:"id"`
	Title         string `json:"title"`
	Status        int    `json:"status"`
	SortOrder     int64  `json:"sortOrder"`
	StartDate     string `json:"startDate"`
	IsAllDay      bool   `json:"isAllDay"`
	TimeZone      string `json:"timeZone"`
	CompletedTime string `json:"completedTime"`
}

type apiProjectData struct {
	Project apiProject       `json:"project"`
	Tasks   []apiTask        `json:"tasks"`
	Columns []map[string]any `json:"columns"`
}

func toProject(p apiProject) Project {
	return Project{
		ID:         p.ID,
		Name:       p.Name,
		Color:      p.Color,
		Closed:     p.Closed,
		GroupID:    p.GroupID,
		ViewMode:   p.ViewMode,
		SortOrder:  p.SortOrder,
		Kind:       p.Kind,
		Permission: p.Permission,
	}
}

func toTask(t apiTask) Task {
	reminders := t.Reminders
	if reminders == nil {
		reminders = []string{}
	}
	items := make([]ChecklistItem, 0, len(t.Items))
	for _, item := range t.Items {
		items = append(items, ChecklistItem{
			ID:            item.ID,
			Title:         item.Title,
			Status:        item.Status,
			SortOrder:     item.SortOrder,
			StartDate:     item.StartDate,
			IsAllDay:      item.IsAllDay,
			TimeZone:      item.TimeZone,
			CompletedTime: item.CompletedTime,
		})
	}
	return Task{
		ID:            t.ID,
		ProjectID:     t.ProjectID,
		Title:         t.Title,
		Content:       t.Content,
		Desc:          t.Desc,
		IsAllDay:      t.IsAllDay,
		StartDate:     t.StartDate,
		DueDate:       t.DueDate,
		TimeZone:      t.TimeZone,
		Reminders:     reminders,
		RepeatFlag:    t.RepeatFlag,
		Priority:      t.Priority,
		Status:        t.Status,
		CompletedTime: t.CompletedTime,
		SortOrder:     t.SortOrder,
		Kind:          t.Kind,
		Items:         items,
	}
}
