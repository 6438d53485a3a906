package core_tools

import (
	"context"
	"encoding/json"
	"strings"
	"testing"
	"time"

	"github.com/mark3labs/mcp-go/mcp"

	"github.com/sherpahq/sherpa/internal/server"
)

func newTestServerContext(t *testing.T) *server.ServerContext {
	t.Helper()

	sc, err := server.NewServerContext(context.Background(), server.Config{}, nil)
	if err != nil {
		t.Fatalf("Failed to create server context: %v", err)
	}
	t.Cleanup(func() { _ = sc.Shutdown() })
	return sc
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

	if result == nil {
		t.Fatal("nil tool result")
	}
	if len(result.Content) == 0 {
		t.Fatal("tool result has no content")
	}
	text, ok := result.Content[0].(mcp.TextContent)
	if !ok {
		t.Fatalf("expected text content, got %T", result.Content[0])
	}
	return text.Text
}

func TestHandleTestConnection(t *testing.T) {
	sc := newTestServerContext(t)

	result, err := handleTestConnection(context.Background(), newRequest("test_connection", nil), sc)
	if err != nil {
		t.Fatalf("unexpected error = %v", err)
	}

	text := resultText(t, result)
	if !strings.Contains(text, "Connection successful!") {
		t.Errorf("unexpected result: %q", text)
	}
	if !strings.Contains(text, "Server time:") {
		t.Errorf("result should include the server time, got: %q", text)
	}
}

func TestHandleEcho(t *testing.T) {
	sc := newTestServerContext(t)

	tests := []struct {
		name string
		args map[string]interface{}
		want string
	}{
		{
			name: "plain message",
			args: map[string]interface{}{"message": "hello"},
			want: "hello",
		},
		{
			name: "uppercase",
			args: map[string]interface{}{"message": "hello", "uppercase": true},
			want: "HELLO",
		},
		{
			name: "prefix",
			args: map[string]interface{}{"message": "hello", "prefix": "bot"},
			want: "bot: hello",
		},
		{
			name: "prefix and uppercase",
			args: map[string]interface{}{"message": "hello", "uppercase": true, "prefix": "bot"},
			want: "bot: HELLO",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result, err := handleEcho(context.Background(), newRequest("echo", tt.args), sc)
			if err != nil {
				t.Fatalf("unexpected error = %v", err)
			}
			if got := resultText(t, result); got != tt.want {
				t.Errorf("echo = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestHandleEcho_MissingMessage(t *testing.T) {
	sc := newTestServerContext(t)

	result, err := handleEcho(context.Background(), newRequest("echo", map[string]interface{}{}), sc)
	if err != nil {
		t.Fatalf("unexpected error = %v", err)
	}
	if !result.IsError {
		t.Error("expected error result for missing message")
	}
}

func TestHandleGetServerTime(t *testing.T) {
	sc := newTestServerContext(t)

	result, err := handleGetServerTime(context.Background(), newRequest("get_server_time", nil), sc)
	if err != nil {
		t.Fatalf("unexpected error = %v", err)
	}

	var payload map[string]string
	if err := json.Unmarshal([]byte(resultText(t, result)), &payload); err != nil {
		t.Fatalf("result is not JSON: %v", err)
	}
	if _, err := time.Parse(time.RFC3339, payload["timestamp"]); err != nil {
		t.Errorf("timestamp is not RFC3339: %v", err)
	}
	if _, err := time.Parse(time.RFC3339, payload["utc_timestamp"]); err != nil {
		t.Errorf("utc_timestamp is not RFC3339: %v", err)
	}
	if payload["timezone"] == "" {
		t.Error("timezone should be set")
	}
}

func TestRegisterCoreTools(t *testing.T) {
	// Verifies the registration entry point exists with the expected shape.
	_ = RegisterCoreTools
}
