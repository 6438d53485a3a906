package ticktick

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"time"
)

// DefaultBaseURL is the public TickTick Open API endpoint.
const DefaultBaseURL = "https://api.ticktick.com/open/v1"

const defaultTimeout = 30 * time.Second

// Client provides access to TickTick project and task operations.
type Client struct {
	baseURL    string
	token      string
	httpClient *http.Client
}

// Option customizes a Client.
type Option func(*Client)

// WithBaseURL overrides the API endpoint, primarily for tests.
func WithBaseURL(baseURL string) Option {
	return func(c *Client) { c.baseURL = baseURL }
}

// WithHTTPClient overrides the underlying HTTP client.
func WithHTTPClient(httpClient *http.Client) Option {
	return func(c *Client) { c.httpClient = httpClient }
}

// NewClient creates a TickTick client using the given bearer access token.
func NewClient(token string, opts ...Option) (*Client, error) {
	if token == "" {
		return nil, fmt.Errorf("access token cannot be empty")
	}
	c := &Client{
		baseURL:    DefaultBaseURL,
		token:      token,
		httpClient: &http.Client{Timeout: defaultTimeout},
	}
	for _, opt := range opts {
		opt(c)
	}
	return c, nil
}

// ListProjects returns all projects accessible to the authenticated user.
func (c *Client) ListProjects(ctx context.Context) ([]Project, error) {
	var raw []apiProject
	if err := c.do(ctx, http.MethodGet, "/project", nil, &raw); err != nil {
		return nil, &Error{Op: "listProjects", Err: err}
	}
	projects := make([]Project, 0, len(raw))
	for _, p := range raw {
		projects = append(projects, toProject(p))
	}
	return projects, nil
}

// GetProject returns a single project by id.
func (c *Client) GetProject(ctx context.Context, projectID string) (*Project, error) {
	var raw apiProject
	if err := c.do(ctx, http.MethodGet, "/project/"+url.PathEscape(projectID), nil, &raw); err != nil {
		return nil, &Error{Op: "getProject", Err: err}
	}
	project := toProject(raw)
	return &project, nil
}

// GetProjectData returns a project together with its tasks and columns.
func (c *Client) GetProjectData(ctx context.Context, projectID string) (*ProjectData, error) {
	var raw apiProjectData
	if err := c.do(ctx, http.MethodGet, "/project/"+url.PathEscape(projectID)+"/data", nil, &raw); err != nil {
		return nil, &Error{Op: "getProjectData", Err: err}
	}
	tasks := make([]Task, 0, len(raw.Tasks))
	for _, t := range raw.Tasks {
		tasks = append(tasks, toTask(t))
	}
	columns := raw.Columns
	if columns == nil {
		columns = []map[string]any{}
	}
	return &ProjectData{
		Project: toProject(raw.Project),
		Tasks:   tasks,
		Columns: columns,
	}, nil
}

// CreateProjectInput carries the fields for creating a project. ViewMode
// defaults to "list" and Kind to "TASK".
type CreateProjectInput struct {
	Name     string
	Color    string
	ViewMode string
	Kind     string
}

// CreateProject creates a new project.
func (c *Client) CreateProject(ctx context.Context, in CreateProjectInput) (*Project, error) {
	if in.Name == "" {
		return nil, &Error{Op: "createProject", Err: fmt.Errorf("name cannot be empty")}
	}
	if in.ViewMode == "" {
		in.ViewMode = "list"
	}
	if in.Kind == "" {
		in.Kind = "TASK"
	}
	body := map[string]any{
		"name":     in.Name,
		"viewMode": in.ViewMode,
		"kind":     in.Kind,
	}
	if in.Color != "" {
		body["color"] = in.Color
	}

	var raw apiProject
	if err := c.do(ctx, http.MethodPost, "/project", body, &raw); err != nil {
		return nil, &Error{Op: "createProject", Err: err}
	}
	project := toProject(raw)
	return &project, nil
}

// UpdateProjectInput carries the fields to change on a project. Nil pointers
// leave the existing value untouched.
type UpdateProjectInput struct {
	Name     *string
	Color    *string
	ViewMode *string
}

// UpdateProject updates an existing project.
func (c *Client) UpdateProject(ctx context.Context, projectID string, in UpdateProjectInput) (*Project, error) {
	body := map[string]any{}
	if in.Name != nil {
		body["name"] = *in.Name
	}
	if in.Color != nil {
		body["color"] = *in.Color
	}
	if in.ViewMode != nil {
		body["viewMode"] = *in.ViewMode
	}

	var raw apiProject
	if err := c.do(ctx, http.MethodPost, "/project/"+url.PathEscape(projectID), body, &raw); err != nil {
		return nil, &Error{Op: "updateProject", Err: err}
	}
	project := toProject(raw)
	return &project, nil
}

// DeleteProject deletes a project.
func (c *Client) DeleteProject(ctx context.Context, projectID string) error {
	if err := c.do(ctx, http.MethodDelete, "/project/"+url.PathEscape(projectID), nil, nil); err != nil {
		return &Error{Op: "deleteProject", Err: err}
	}
	return nil
}

// GetTask returns a single task by project and task id.
func (c *Client) GetTask(ctx context.Context, projectID, taskID string) (*Task, error) {
	path := "/project/" + url.PathEscape(projectID) + "/task/" + url.PathEscape(taskID)
	var raw apiTask
	if err := c.do(ctx, http.MethodGet, path, nil, &raw); err != nil {
		return nil, &Error{Op: "getTask", Err: err}
	}
	task := toTask(raw)
	return &task, nil
}

// CreateTaskInput carries the fields for creating a task. Dates use the
// API's "2006-01-02T15:04:05-0700" layout.
type CreateTaskInput struct {
	Title     string
	ProjectID string
	Content   string
	Desc      string
	StartDate string
	DueDate   string
	TimeZone  string
	IsAllDay  bool
	Priority  int
	Reminders []string
	Items     []ChecklistItem
}

// CreateTask creates a new task in a project.
func (c *Client) CreateTask(ctx context.Context, in CreateTaskInput) (*Task, error) {
	if in.Title == "" {
		return nil, &Error{Op: "createTask", Err: fmt.Errorf("title cannot be empty")}
	}
	if in.ProjectID == "" {
		return nil, &Error{Op: "createTask", Err: fmt.Errorf("projectId cannot be empty")}
	}
	if err := ValidatePriority(in.Priority); err != nil {
		return nil, &Error{Op: "createTask", Err: err}
	}

	body := map[string]any{
		"title":     in.Title,
		"projectId": in.ProjectID,
		"isAllDay":  in.IsAllDay,
		"priority":  in.Priority,
	}
	if in.TimeZone != "" {
		body["timeZone"] = in.TimeZone
	}
	if in.Content != "" {
		body["content"] = in.Content
	}
	if in.Desc != "" {
		body["desc"] = in.Desc
	}
	if in.StartDate != "" {
		body["startDate"] = in.StartDate
	}
	if in.DueDate != "" {
		body["dueDate"] = in.DueDate
	}
	if len(in.Reminders) > 0 {
		body["reminders"] = in.Reminders
	}
	if len(in.Items) > 0 {
		items := make([]map[string]any, 0, len(in.Items))
		for _, item := range in.Items {
			items = append(items, map[string]any{"title": item.Title})
		}
		body["items"] = items
	}

	var raw apiTask
	if err := c.do(ctx, http.MethodPost, "/task", body, &raw); err != nil {
		return nil, &Error{Op: "createTask", Err: err}
	}
	task := toTask(raw)
	return &task, nil
}

// UpdateTaskInput carries the fields to change on a task. Nil pointers leave
// the existing value untouched.
type UpdateTaskInput struct {
	Title     *string
	Content   *string
	Desc      *string
	StartDate *string
	DueDate   *string
	TimeZone  *string
	IsAllDay  *bool
	Priority  *int
}

// UpdateTask updates an existing task.
func (c *Client) UpdateTask(ctx context.Context, projectID, taskID string, in UpdateTaskInput) (*Task, error) {
	if in.Priority != nil {
		if err := ValidatePriority(*in.Priority); err != nil {
			return nil, &Error{Op: "updateTask", Err: err}
		}
	}

	body := map[string]any{
		"id":        taskID,
		"projectId": projectID,
	}
	if in.Title != nil {
		body["title"] = *in.Title
	}
	if in.Content != nil {
		body["content"] = *in.Content
	}
	if in.Desc != nil {
		body["desc"] = *in.Desc
	}
	if in.StartDate != nil {
		body["startDate"] = *in.StartDate
	}
	if in.DueDate != nil {
		body["dueDate"] = *in.DueDate
	}
	if in.TimeZone != nil {
		body["timeZone"] = *in.TimeZone
	}
	if in.IsAllDay != nil {
		body["isAllDay"] = *in.IsAllDay
	}
	if in.Priority != nil {
		body["priority"] = *in.Priority
	}

	var raw apiTask
	if err := c.do(ctx, http.MethodPost, "/task/"+url.PathEscape(taskID), body, &raw); err != nil {
		return nil, &Error{Op: "updateTask", Err: err}
	}
	task := toTask(raw)
	return &task, nil
}

// CompleteTask marks a task as complete.
func (c *Client) CompleteTask(ctx context.Context, projectID, taskID string) error {
	path := "/project/" + url.PathEscape(projectID) + "/task/" + url.PathEscape(taskID) + "/complete"
	if err := c.do(ctx, http.MethodPost, path, nil, nil); err != nil {
		return &Error{Op: "completeTask", Err: err}
	}
	return nil
}

// DeleteTask deletes a task.
func (c *Client) DeleteTask(ctx context.Context, projectID, taskID string) error {
	path := "/project/" + url.PathEscape(projectID) + "/task/" + url.PathEscape(taskID)
	if err := c.do(ctx, http.MethodDelete, path, nil, nil); err != nil {
		return &Error{Op: "deleteTask", Err: err}
	}
	return nil
}

// do issues one API request. body is JSON-encoded when non-nil; out is
// JSON-decoded from the response when non-nil and the response has content.
func (c *Client) do(ctx context.Context, method, path string, body, out any) error {
	var reqBody io.Reader
	if body != nil {
		data, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("encoding request: %w", err)
		}
		reqBody = bytes.NewReader(data)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, reqBody)
	if err != nil {
		return fmt.Errorf("building request: %w", err)
	}
	req.Header.Set("Authorization", "Bearer "+c.token)
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("reading response: %w", err)
	}
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return &StatusError{StatusCode: resp.StatusCode, Body: string(bytes.TrimSpace(data))}
	}
	if out == nil || len(bytes.TrimSpace(data)) == 0 {
		return nil
	}
	if err := json.Unmarshal(data, out); err != nil {
		return fmt.Errorf("decoding response: %w", err)
	}
	return nil
}
