package ticktick_tools

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/mark3labs/mcp-go/mcp"
	mcpserver "github.com/mark3labs/mcp-go/server"

	"github.com/sherpahq/sherpa/internal/server"
	"github.com/sherpahq/sherpa/internal/ticktick"
	"github.com/sherpahq/sherpa/internal/tools/common"
)

// notConfiguredResult is returned when no TickTick client is configured. A
// structured result rather than a protocol error so agents can detect the
// condition and relay the remedy.
func notConfiguredResult() *mcp.CallToolResult {
	payload := map[string]string{
		"error":   "TickTick not configured",
		"message": "Set the TICKTICK_ACCESS_TOKEN environment variable, or run 'sherpa auth ticktick' for setup instructions.",
	}
	data, _ := json.Marshal(payload)
	return mcp.NewToolResultText(string(data))
}

func jsonResult(v any) (*mcp.CallToolResult, error) {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("Failed to encode result: %v", err)), nil
	}
	return mcp.NewToolResultText(string(data)), nil
}

// RegisterTickTickTools registers all TickTick tools with the MCP server
func RegisterTickTickTools(s *mcpserver.MCPServer, sc *server.ServerContext, readOnly bool) error {
	if err := registerProjectTools(s, sc, readOnly); err != nil {
		return fmt.Errorf("failed to register project tools: %w", err)
	}
	if err := registerTaskTools(s, sc, readOnly); err != nil {
		return fmt.Errorf("failed to register task tools: %w", err)
	}
	return nil
}

func registerProjectTools(s *mcpserver.MCPServer, sc *server.ServerContext, readOnly bool) error {
	// List projects tool
	listTool := mcp.NewTool("ticktick_list_projects",
		mcp.WithDescription("List all TickTick projects (task lists)"),
	)

	s.AddTool(listTool, common.InstrumentedToolHandlerWithService(
		"ticktick_list_projects", "ticktick", "list", sc,
		func(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
			return handleListProjects(ctx, request, sc)
		}))

	// Get project tool
	getTool := mcp.NewTool("ticktick_get_project",
		mcp.WithDescription("Get a specific TickTick project, optionally with all its tasks"),
		mcp.WithString("project_id",
			mcp.Required(),
			mcp.Description("The ID of the project to retrieve"),
		),
		mcp.WithBoolean("include_tasks",
			mcp.Description("Include the project's tasks and columns (default true)"),
		),
	)

	s.AddTool(getTool, common.InstrumentedToolHandlerWithService(
		"ticktick_get_project", "ticktick", "get", sc,
		func(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
			return handleGetProject(ctx, request, sc)
		}))

	if readOnly {
		return nil
	}

	// Create project tool
	createTool := mcp.NewTool("ticktick_create_project",
		mcp.WithDescription("Create a new TickTick project (task list)"),
		mcp.WithString("name",
			mcp.Required(),
			mcp.Description("Name of the project"),
		),
		mcp.WithString("color",
			mcp.Description("Project color as a hex string (e.g., '#F18181')"),
		),
		mcp.WithString("view_mode",
			mcp.Description("View mode - list, kanban, or timeline (default list)"),
		),
	)

	s.AddTool(createTool, common.InstrumentedToolHandlerWithService(
		"ticktick_create_project", "ticktick", "create", sc,
		func(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
			return handleCreateProject(ctx, request, sc)
		}))

	// Update project tool
	updateTool := mcp.NewTool("ticktick_update_project",
		mcp.WithDescription("Update an existing TickTick project"),
		mcp.WithString("project_id",
			mcp.Required(),
			mcp.Description("The ID of the project to update"),
		),
		mcp.WithString("name",
			mcp.Description("New project name"),
		),
		mcp.WithString("color",
			mcp.Description("New project color as a hex string"),
		),
		mcp.WithString("view_mode",
			mcp.Description("New view mode - list, kanban, or timeline"),
		),
	)

	s.AddTool(updateTool, common.InstrumentedToolHandlerWithService(
		"ticktick_update_project", "ticktick", "update", sc,
		func(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
			return handleUpdateProject(ctx, request, sc)
		}))

	// Delete project tool
	deleteTool := mcp.NewTool("ticktick_delete_project",
		mcp.WithDescription("Delete a TickTick project"),
		mcp.WithString("project_id",
			mcp.Required(),
			mcp.Description("The ID of the project to delete"),
		),
	)

	s.AddTool(deleteTool, common.InstrumentedToolHandlerWithService(
		"ticktick_delete_project", "ticktick", "delete", sc,
		func(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
			return handleDeleteProject(ctx, request, sc)
		}))

	return nil
}

func registerTaskTools(s *mcpserver.MCPServer, sc *server.ServerContext, readOnly bool) error {
	// Get task tool
	getTool := mcp.NewTool("ticktick_get_task",
		mcp.WithDescription("Get a specific TickTick task"),
		mcp.WithString("project_id",
			mcp.Required(),
			mcp.Description("The ID of the project containing the task"),
		),
		mcp.WithString("task_id",
			mcp.Required(),
			mcp.Description("The ID of the task to retrieve"),
		),
	)

	s.AddTool(getTool, common.InstrumentedToolHandlerWithService(
		"ticktick_get_task", "ticktick", "get", sc,
		func(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
			return handleGetTask(ctx, request, sc)
		}))

	if readOnly {
		return nil
	}

	// Create task tool
	createTool := mcp.NewTool("ticktick_create_task",
		mcp.WithDescription("Create a new task in TickTick"),
		mcp.WithString("title",
			mcp.Required(),
			mcp.Description("Title of the task"),
		),
		mcp.WithString("project_id",
			mcp.Required(),
			mcp.Description("The ID of the project to create the task in"),
		),
		mcp.WithString("content",
			mcp.Description("Task content / notes"),
		),
		mcp.WithString("desc",
			mcp.Description("Description of the task's checklist"),
		),
		mcp.WithString("start_date",
			mcp.Description("Start datetime in '2006-01-02T15:04:05-0700' format"),
		),
		mcp.WithString("due_date",
			mcp.Description("Due datetime in '2006-01-02T15:04:05-0700' format"),
		),
		mcp.WithString("time_zone",
			mcp.Description("IANA timezone for the dates (e.g., 'America/Los_Angeles')"),
		),
		mcp.WithBoolean("is_all_day",
			mcp.Description("Treat the task as an all-day item (default false)"),
		),
		mcp.WithNumber("priority",
			mcp.Description("Priority: 0 (none), 1 (low), 3 (medium), 5 (high)"),
		),
	)

	s.AddTool(createTool, common.InstrumentedToolHandlerWithService(
		"ticktick_create_task", "ticktick", "create", sc,
		func(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
			return handleCreateTask(ctx, request, sc)
		}))

	// Update task tool
	updateTool := mcp.NewTool("ticktick_update_task",
		mcp.WithDescription("Update an existing TickTick task"),
		mcp.WithString("task_id",
			mcp.Required(),
			mcp.Description("The ID of the task to update"),
		),
		mcp.WithString("project_id",
			mcp.Required(),
			mcp.Description("The ID of the project containing the task"),
		),
		mcp.WithString("title",
			mcp.Description("New title"),
		),
		mcp.WithString("content",
			mcp.Description("New content / notes"),
		),
		mcp.WithString("desc",
			mcp.Description("New checklist description"),
		),
		mcp.WithString("start_date",
			mcp.Description("New start datetime in '2006-01-02T15:04:05-0700' format"),
		),
		mcp.WithString("due_date",
			mcp.Description("New due datetime in '2006-01-02T15:04:05-0700' format"),
		),
		mcp.WithString("time_zone",
			mcp.Description("New IANA timezone"),
		),
		mcp.WithBoolean("is_all_day",
			mcp.Description("Treat the task as an all-day item"),
		),
		mcp.WithNumber("priority",
			mcp.Description("New priority: 0 (none), 1 (low), 3 (medium), 5 (high)"),
		),
	)

	s.AddTool(updateTool, common.InstrumentedToolHandlerWithService(
		"ticktick_update_task", "ticktick", "update", sc,
		func(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
			return handleUpdateTask(ctx, request, sc)
		}))

	// Complete task tool
	completeTool := mcp.NewTool("ticktick_complete_task",
		mcp.WithDescription("Mark a TickTick task as complete"),
		mcp.WithString("project_id",
			mcp.Required(),
			mcp.Description("The ID of the project containing the task"),
		),
		mcp.WithString("task_id",
			mcp.Required(),
			mcp.Description("The ID of the task to complete"),
		),
	)

	s.AddTool(completeTool, common.InstrumentedToolHandlerWithService(
		"ticktick_complete_task", "ticktick", "complete", sc,
		func(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
			return handleCompleteTask(ctx, request, sc)
		}))

	// Delete task tool
	deleteTool := mcp.NewTool("ticktick_delete_task",
		mcp.WithDescription("Delete a TickTick task"),
		mcp.WithString("project_id",
			mcp.Required(),
			mcp.Description("The ID of the project containing the task"),
		),
		mcp.WithString("task_id",
			mcp.Required(),
			mcp.Description("The ID of the task to delete"),
		),
	)

	s.AddTool(deleteTool, common.InstrumentedToolHandlerWithService(
		"ticktick_delete_task", "ticktick", "delete", sc,
		func(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
			return handleDeleteTask(ctx, request, sc)
		}))

	return nil
}

func handleListProjects(ctx context.Context, _ mcp.CallToolRequest, sc *server.ServerContext) (*mcp.CallToolResult, error) {
	client := sc.TickTickClient()
	if client == nil {
		return notConfiguredResult(), nil
	}

	projects, err := client.ListProjects(ctx)
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("Failed to list projects: %v", err)), nil
	}

	return jsonResult(map[string]any{
		"projects": projects,
		"count":    len(projects),
	})
}

func handleGetProject(ctx context.Context, request mcp.CallToolRequest, sc *server.ServerContext) (*mcp.CallToolResult, error) {
	client := sc.TickTickClient()
	if client == nil {
		return notConfiguredResult(), nil
	}

	args := request.GetArguments()
	projectID, ok := args["project_id"].(string)
	if !ok || projectID == "" {
		return mcp.NewToolResultError("project_id is required"), nil
	}

	includeTasks := true
	if v, ok := args["include_tasks"].(bool); ok {
		includeTasks = v
	}

	if includeTasks {
		data, err := client.GetProjectData(ctx, projectID)
		if err != nil {
			return mcp.NewToolResultError(fmt.Sprintf("Failed to get project: %v", err)), nil
		}
		return jsonResult(data)
	}

	project, err := client.GetProject(ctx, projectID)
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("Failed to get project: %v", err)), nil
	}
	return jsonResult(map[string]any{"project": project})
}

func handleCreateProject(ctx context.Context, request mcp.CallToolRequest, sc *server.ServerContext) (*mcp.CallToolResult, error) {
	client := sc.TickTickClient()
	if client == nil {
		return notConfiguredResult(), nil
	}

	args := request.GetArguments()
	name, ok := args["name"].(string)
	if !ok || name == "" {
		return mcp.NewToolResultError("name is required"), nil
	}

	input := ticktick.CreateProjectInput{Name: name}
	if color, ok := args["color"].(string); ok {
		input.Color = color
	}
	if viewMode, ok := args["view_mode"].(string); ok {
		input.ViewMode = viewMode
	}

	project, err := client.CreateProject(ctx, input)
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("Failed to create project: %v", err)), nil
	}

	return jsonResult(map[string]any{
		"status":  "created",
		"project": project,
	})
}

func handleUpdateProject(ctx context.Context, request mcp.CallToolRequest, sc *server.ServerContext) (*mcp.CallToolResult, error) {
	client := sc.TickTickClient()
	if client == nil {
		return notConfiguredResult(), nil
	}

	args := request.GetArguments()
	projectID, ok := args["project_id"].(string)
	if !ok || projectID == "" {
		return mcp.NewToolResultError("project_id is required"), nil
	}

	input := ticktick.UpdateProjectInput{}
	if name, ok := args["name"].(string); ok {
		input.Name = &name
	}
	if color, ok := args["color"].(string); ok {
		input.Color = &color
	}
	if viewMode, ok := args["view_mode"].(string); ok {
		input.ViewMode = &viewMode
	}

	project, err := client.UpdateProject(ctx, projectID, input)
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("Failed to update project: %v", err)), nil
	}

	return jsonResult(map[string]any{
		"status":  "updated",
		"project": project,
	})
}

func handleDeleteProject(ctx context.Context, request mcp.CallToolRequest, sc *server.ServerContext) (*mcp.CallToolResult, error) {
	client := sc.TickTickClient()
	if client == nil {
		return notConfiguredResult(), nil
	}

	args := request.GetArguments()
	projectID, ok := args["project_id"].(string)
	if !ok || projectID == "" {
		return mcp.NewToolResultError("project_id is required"), nil
	}

	if err := client.DeleteProject(ctx, projectID); err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("Failed to delete project: %v", err)), nil
	}

	return jsonResult(map[string]any{
		"status":     "deleted",
		"project_id": projectID,
	})
}

func handleGetTask(ctx context.Context, request mcp.CallToolRequest, sc *server.ServerContext) (*mcp.CallToolResult, error) {
	client := sc.TickTickClient()
	if client == nil {
		return notConfiguredResult(), nil
	}

	args := request.GetArguments()
	projectID, ok := args["project_id"].(string)
	if !ok || projectID == "" {
		return mcp.NewToolResultError("project_id is required"), nil
	}
	taskID, ok := args["task_id"].(string)
	if !ok || taskID == "" {
		return mcp.NewToolResultError("task_id is required"), nil
	}

	task, err := client.GetTask(ctx, projectID, taskID)
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("Failed to get task: %v", err)), nil
	}

	return jsonResult(map[string]any{"task": task})
}

func handleCreateTask(ctx context.Context, request mcp.CallToolRequest, sc *server.ServerContext) (*mcp.CallToolResult, error) {
	client := sc.TickTickClient()
	if client == nil {
		return notConfiguredResult(), nil
	}

	args := request.GetArguments()
	title, ok := args["title"].(string)
	if !ok || title == "" {
		return mcp.NewToolResultError("title is required"), nil
	}
	projectID, ok := args["project_id"].(string)
	if !ok || projectID == "" {
		return mcp.NewToolResultError("project_id is required"), nil
	}

	input := ticktick.CreateTaskInput{
		Title:     title,
		ProjectID: projectID,
	}
	if content, ok := args["content"].(string); ok {
		input.Content = content
	}
	if desc, ok := args["desc"].(string); ok {
		input.Desc = desc
	}
	if startDate, ok := args["start_date"].(string); ok {
		input.StartDate = startDate
	}
	if dueDate, ok := args["due_date"].(string); ok {
		input.DueDate = dueDate
	}
	if timeZone, ok := args["time_zone"].(string); ok {
		input.TimeZone = timeZone
	}
	if isAllDay, ok := args["is_all_day"].(bool); ok {
		input.IsAllDay = isAllDay
	}
	if priority, ok := args["priority"].(float64); ok {
		input.Priority = int(priority)
	}

	task, err := client.CreateTask(ctx, input)
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("Failed to create task: %v", err)), nil
	}

	return jsonResult(map[string]any{
		"status": "created",
		"task":   task,
	})
}

func handleUpdateTask(ctx context.Context, request mcp.CallToolRequest, sc *server.ServerContext) (*mcp.CallToolResult, error) {
	client := sc.TickTickClient()
	if client == nil {
		return notConfiguredResult(), nil
	}

	args := request.GetArguments()
	taskID, ok := args["task_id"].(string)
	if !ok || taskID == "" {
		return mcp.NewToolResultError("task_id is required"), nil
	}
	projectID, ok := args["project_id"].(string)
	if !ok || projectID == "" {
		return mcp.NewToolResultError("project_id is required"), nil
	}

	input := ticktick.UpdateTaskInput{}
	if title, ok := args["title"].(string); ok {
		input.Title = &title
	}
	if content, ok := args["content"].(string); ok {
		input.Content = &content
	}
	if desc, ok := args["desc"].(string); ok {
		input.Desc = &desc
	}
	if startDate, ok := args["start_date"].(string); ok {
		input.StartDate = &startDate
	}
	if dueDate, ok := args["due_date"].(string); ok {
		input.DueDate = &dueDate
	}
	if timeZone, ok := args["time_zone"].(string); ok {
		input.TimeZone = &timeZone
	}
	if isAllDay, ok := args["is_all_day"].(bool); ok {
		input.IsAllDay = &isAllDay
	}
	if priority, ok := args["priority"].(float64); ok {
		p := int(priority)
		input.Priority = &p
	}

	task, err := client.UpdateTask(ctx, projectID, taskID, input)
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("Failed to update task: %v", err)), nil
	}

	return jsonResult(map[string]any{
		"status": "updated",
		"task":   task,
	})
}

func handleCompleteTask(ctx context.Context, request mcp.CallToolRequest, sc *server.ServerContext) (*mcp.CallToolResult, error) {
	client := sc.TickTickClient()
	if client == nil {
		return notConfiguredResult(), nil
	}

	args := request.GetArguments()
	projectID, ok := args["project_id"].(string)
	if !ok || projectID == "" {
		return mcp.NewToolResultError("project_id is required"), nil
	}
	taskID, ok := args["task_id"].(string)
	if !ok || taskID == "" {
		return mcp.NewToolResultError("task_id is required"), nil
	}

	if err := client.CompleteTask(ctx, projectID, taskID); err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("Failed to complete task: %v", err)), nil
	}

	return jsonResult(map[string]any{
		"status":     "completed",
		"task_id":    taskID,
		"project_id": projectID,
	})
}

func handleDeleteTask(ctx context.Context, request mcp.CallToolRequest, sc *server.ServerContext) (*mcp.CallToolResult, error) {
	client := sc.TickTickClient()
	if client == nil {
		return notConfiguredResult(), nil
	}

	args := request.GetArguments()
	projectID, ok := args["project_id"].(string)
	if !ok || projectID == "" {
		return mcp.NewToolResultError("project_id is required"), nil
	}
	taskID, ok := args["task_id"].(string)
	if !ok || taskID == "" {
		return mcp.NewToolResultError("task_id is required"), nil
	}

	if err := client.DeleteTask(ctx, projectID, taskID); err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("Failed to delete task: %v", err)), nil
	}

	return jsonResult(map[string]any{
		"status":     "deleted",
		"task_id":    taskID,
		"project_id": projectID,
	})
}
