package cmd

import (
	"context"
	"testing"

	mcpserver "github.com/mark3labs/mcp-go/server"

	"github.com/sherpahq/sherpa/internal/server"
)

func TestRegisterAllTools(t *testing.T) {
	ctx := context.Background()
	serverContext, err := server.NewServerContext(ctx, server.Config{}, nil)
	if err != nil {
		t.Fatalf("NewServerContext failed: %v", err)
	}
	defer func() {
		_ = serverContext.Shutdown()
	}()

	tests := []struct {
		name     string
		readOnly bool
	}{
		{name: "read-only mode", readOnly: true},
		{name: "write mode", readOnly: false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			mcpSrv := mcpserver.NewMCPServer("sherpa-test", "test",
				mcpserver.WithToolCapabilities(true),
			)

			if err := registerAllTools(mcpSrv, serverContext, tt.readOnly); err != nil {
				t.Fatalf("registerAllTools failed: %v", err)
			}

			tools := mcpSrv.ListTools()
			if len(tools) == 0 {
				t.Fatal("expected tools to be registered, got none")
			}

			registered := make(map[string]bool, len(tools))
			for _, tool := range tools {
				registered[tool.Tool.Name] = true
			}

			// Read tools from every group are available in both modes
			for _, name := range []string{
				"test_connection",
				"calendar_list_events",
				"ticktick_list_projects",
				"meal_list",
				"obsidian_read_note",
			} {
				if !registered[name] {
					t.Errorf("expected tool %q to be registered", name)
				}
			}

			// Write tools are gated by read-only mode
			for _, name := range []string{
				"calendar_create_event",
				"ticktick_create_task",
				"meal_log",
				"obsidian_create_note",
			} {
				if tt.readOnly && registered[name] {
					t.Errorf("write tool %q should not be registered in read-only mode", name)
				}
				if !tt.readOnly && !registered[name] {
					t.Errorf("write tool %q should be registered in write mode", name)
				}
			}
		})
	}
}

func TestGetCategoryFromToolName(t *testing.T) {
	tests := []struct {
		tool     string
		expected string
	}{
		{tool: "calendar_list_events", expected: "Google Calendar Tools"},
		{tool: "ticktick_create_task", expected: "TickTick Tools"},
		{tool: "meal_daily_summary", expected: "Meal Log Tools"},
		{tool: "obsidian_search_notes", expected: "Obsidian Note Tools"},
		{tool: "test_connection", expected: "Core Tools"},
		{tool: "echo", expected: "Core Tools"},
	}

	for _, tt := range tests {
		t.Run(tt.tool, func(t *testing.T) {
			if got := getCategoryFromToolName(tt.tool); got != tt.expected {
				t.Errorf("getCategoryFromToolName(%q) = %q, want %q", tt.tool, got, tt.expected)
			}
		})
	}
}
