package ticktick_tools

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sherpahq/sherpa/internal/server"
	"github.com/sherpahq/sherpa/internal/ticktick"
)

func newTestServerContext(t *testing.T) *server.ServerContext {
	t.Helper()

	sc, err := server.NewServerContext(context.Background(), server.Config{}, nil)
	require.NoError(t, err)
	t.Cleanup(func() { _ = sc.Shutdown() })
	return sc
}

// withFakeAPI wires a TickTick client backed by an httptest server into the
// server context.
func withFakeAPI(t *testing.T, sc *server.ServerContext, handler http.HandlerFunc) {
	t.Helper()

	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)
	client, err := ticktick.NewClient("test-token",
		ticktick.WithBaseURL(srv.URL),
		ticktick.WithHTTPClient(srv.Client()))
	require.NoError(t, err)
	sc.SetTickTickClient(client)
}

func newRequest(tool string, args map[string]interface{}) mcp.CallToolRequest {
	return mcp.CallToolRequest{
		Params: mcp.CallToolParams{
			Name:      tool,
			Arguments: args,
		},
	}
}

func resultText(t *testing.T, result *mcp.CallToolResult) string {
	t.Helper()

	require.NotNil(t, result)
	require.NotEmpty(t, result.Content)
	text, ok := result.Content[0].(mcp.TextContent)
	require.True(t, ok, "expected text content, got %T", result.Content[0])
	return text.Text
}

func TestHandleListProjects_NoClient(t *testing.T) {
	sc := newTestServerContext(t)

	result, err := handleListProjects(context.Background(), newRequest("ticktick_list_projects", nil), sc)
	require.NoError(t, err)

	var payload map[string]string
	require.NoError(t, json.Unmarshal([]byte(resultText(t, result)), &payload))
	assert.Equal(t, "TickTick not configured", payload["error"])
	assert.Contains(t, payload["message"], "TICKTICK_ACCESS_TOKEN")
}

func TestHandleListProjects(t *testing.T) {
	sc := newTestServerContext(t)
	withFakeAPI(t, sc, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/project", r.URL.Path)
		json.NewEncoder(w).Encode([]map[string]any{
			{"id": "p1", "name": "Inbox"},
			{"id": "p2", "name": "Groceries"},
		})
	})

	result, err := handleListProjects(context.Background(), newRequest("ticktick_list_projects", nil), sc)
	require.NoError(t, err)
	require.False(t, result.IsError)

	var payload struct {
		Projects []ticktick.Project `json:"projects"`
		Count    int                `json:"count"`
	}
	require.NoError(t, json.Unmarshal([]byte(resultText(t, result)), &payload))
	assert.Equal(t, 2, payload.Count)
	assert.Equal(t, "Inbox", payload.Projects[0].Name)
}

func TestHandleGetProject(t *testing.T) {
	sc := newTestServerContext(t)
	withFakeAPI(t, sc, func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/project/p1/data":
			json.NewEncoder(w).Encode(map[string]any{
				"project": map[string]any{"id": "p1", "name": "Inbox"},
				"tasks":   []map[string]any{{"id": "t1", "projectId": "p1", "title": "Buy milk"}},
			})
		case "/project/p1":
			json.NewEncoder(w).Encode(map[string]any{"id": "p1", "name": "Inbox"})
		default:
			http.NotFound(w, r)
		}
	})

	// Default includes tasks
	result, err := handleGetProject(context.Background(), newRequest("ticktick_get_project", map[string]interface{}{
		"project_id": "p1",
	}), sc)
	require.NoError(t, err)
	require.False(t, result.IsError)
	assert.Contains(t, resultText(t, result), "Buy milk")

	// include_tasks=false fetches the bare project
	result, err = handleGetProject(context.Background(), newRequest("ticktick_get_project", map[string]interface{}{
		"project_id":    "p1",
		"include_tasks": false,
	}), sc)
	require.NoError(t, err)
	require.False(t, result.IsError)
	text := resultText(t, result)
	assert.Contains(t, text, "Inbox")
	assert.NotContains(t, text, "Buy milk")

	// Missing project_id is a validation error
	result, err = handleGetProject(context.Background(), newRequest("ticktick_get_project", map[string]interface{}{}), sc)
	require.NoError(t, err)
	assert.True(t, result.IsError)
}

func TestHandleCreateTask(t *testing.T) {
	sc := newTestServerContext(t)
	withFakeAPI(t, sc, func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, http.MethodPost, r.Method)
		require.Equal(t, "/task", r.URL.Path)

		var body map[string]any
		require.NoError(t, json.NewDecoder(r.Body).Decode(&body))
		assert.Equal(t, "Water the plants", body["title"])
		assert.Equal(t, "p1", body["projectId"])
		assert.Equal(t, float64(5), body["priority"])

		json.NewEncoder(w).Encode(map[string]any{
			"id": "t9", "projectId": "p1", "title": "Water the plants", "priority": 5,
		})
	})

	result, err := handleCreateTask(context.Background(), newRequest("ticktick_create_task", map[string]interface{}{
		"title":      "Water the plants",
		"project_id": "p1",
		"priority":   5.0,
	}), sc)
	require.NoError(t, err)
	require.False(t, result.IsError, resultText(t, result))

	var payload struct {
		Status string        `json:"status"`
		Task   ticktick.Task `json:"task"`
	}
	require.NoError(t, json.Unmarshal([]byte(resultText(t, result)), &payload))
	assert.Equal(t, "created", payload.Status)
	assert.Equal(t, "t9", payload.Task.ID)
}

func TestHandleCreateTask_InvalidPriority(t *testing.T) {
	sc := newTestServerContext(t)
	withFakeAPI(t, sc, func(w http.ResponseWriter, r *http.Request) {
		t.Error("request should not reach the API")
	})

	result, err := handleCreateTask(context.Background(), newRequest("ticktick_create_task", map[string]interface{}{
		"title":      "Bad priority",
		"project_id": "p1",
		"priority":   2.0,
	}), sc)
	require.NoError(t, err)
	assert.True(t, result.IsError)
	assert.Contains(t, resultText(t, result), "priority")
}

func TestHandleCompleteAndDeleteTask(t *testing.T) {
	sc := newTestServerContext(t)
	var sawComplete, sawDelete bool
	withFakeAPI(t, sc, func(w http.ResponseWriter, r *http.Request) {
		switch {
		case r.Method == http.MethodPost && strings.HasSuffix(r.URL.Path, "/complete"):
			assert.Equal(t, "/project/p1/task/t1/complete", r.URL.Path)
			sawComplete = true
		case r.Method == http.MethodDelete:
			assert.Equal(t, "/project/p1/task/t1", r.URL.Path)
			sawDelete = true
		default:
			http.NotFound(w, r)
		}
	})

	args := map[string]interface{}{"project_id": "p1", "task_id": "t1"}

	result, err := handleCompleteTask(context.Background(), newRequest("ticktick_complete_task", args), sc)
	require.NoError(t, err)
	require.False(t, result.IsError, resultText(t, result))
	assert.True(t, sawComplete)
	assert.Contains(t, resultText(t, result), "completed")

	result, err = handleDeleteTask(context.Background(), newRequest("ticktick_delete_task", args), sc)
	require.NoError(t, err)
	require.False(t, result.IsError, resultText(t, result))
	assert.True(t, sawDelete)
}

func TestHandleCreateProject(t *testing.T) {
	sc := newTestServerContext(t)
	withFakeAPI(t, sc, func(w http.ResponseWriter, r *http.Request) {
		var body map[string]any
		require.NoError(t, json.NewDecoder(r.Body).Decode(&body))
		assert.Equal(t, "Reading", body["name"])
		assert.Equal(t, "list", body["viewMode"])

		json.NewEncoder(w).Encode(map[string]any{"id": "p3", "name": "Reading", "viewMode": "list"})
	})

	result, err := handleCreateProject(context.Background(), newRequest("ticktick_create_project", map[string]interface{}{
		"name": "Reading",
	}), sc)
	require.NoError(t, err)
	require.False(t, result.IsError, resultText(t, result))

	var payload struct {
		Status  string           `json:"status"`
		Project ticktick.Project `json:"project"`
	}
	require.NoError(t, json.Unmarshal([]byte(resultText(t, result)), &payload))
	assert.Equal(t, "created", payload.Status)
	assert.Equal(t, "p3", payload.Project.ID)
}

func TestRegisterTickTickTools(t *testing.T) {
	// Verifies the registration entry point exists with the expected shape.
	_ = RegisterTickTickTools
}
