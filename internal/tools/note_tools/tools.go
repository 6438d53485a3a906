package note_tools

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/mark3labs/mcp-go/mcp"
	mcpserver "github.com/mark3labs/mcp-go/server"

	"github.com/sherpahq/sherpa/internal/server"
	"github.com/sherpahq/sherpa/internal/tools/common"
)

// notConfiguredResult is returned when no vault is configured. A structured
// result rather than a protocol error so agents can detect the condition.
func notConfiguredResult() *mcp.CallToolResult {
	payload := map[string]string{
		"error":   "Obsidian not configured",
		"message": "OBSIDIAN_VAULT_PATH environment variable is required. Set it to the path of your Obsidian vault.",
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

// RegisterNoteTools registers all note vault tools with the MCP server
func RegisterNoteTools(s *mcpserver.MCPServer, sc *server.ServerContext, readOnly bool) error {
	// Read note tool
	readTool := mcp.NewTool("obsidian_read_note",
		mcp.WithDescription("Read a markdown note from the Obsidian vault"),
		mcp.WithString("note_path",
			mcp.Required(),
			mcp.Description("Relative path from vault root (e.g., 'Daily Notes/2026-01-23.md')"),
		),
	)

	s.AddTool(readTool, common.InstrumentedToolHandlerWithService(
		"obsidian_read_note", "notes", "get", sc,
		func(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
			return handleReadNote(ctx, request, sc)
		}))

	// List notes tool
	listTool := mcp.NewTool("obsidian_list_notes",
		mcp.WithDescription("List markdown notes in the vault"),
		mcp.WithString("folder",
			mcp.Description("Folder to search in, relative to vault root (e.g., 'Daily Notes')"),
		),
		mcp.WithString("pattern",
			mcp.Description("Glob pattern for file names (e.g., '*.md', 'daily-*.md')"),
		),
		mcp.WithBoolean("recursive",
			mcp.Description("Search subfolders recursively (default true)"),
		),
	)

	s.AddTool(listTool, common.InstrumentedToolHandlerWithService(
		"obsidian_list_notes", "notes", "list", sc,
		func(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
			return handleListNotes(ctx, request, sc)
		}))

	// Search notes tool
	searchTool := mcp.NewTool("obsidian_search_notes",
		mcp.WithDescription("Search for text within notes"),
		mcp.WithString("query",
			mcp.Required(),
			mcp.Description("Search query (case-insensitive)"),
		),
		mcp.WithString("folder",
			mcp.Description("Folder to search in, relative to vault root"),
		),
	)

	s.AddTool(searchTool, common.InstrumentedToolHandlerWithService(
		"obsidian_search_notes", "notes", "search", sc,
		func(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
			return handleSearchNotes(ctx, request, sc)
		}))

	if readOnly {
		return nil
	}

	// Create note tool
	createTool := mcp.NewTool("obsidian_create_note",
		mcp.WithDescription("Create a new markdown note in the Obsidian vault"),
		mcp.WithString("note_path",
			mcp.Required(),
			mcp.Description("Relative path from vault root (e.g., 'Tasks/project-ideas')"),
		),
		mcp.WithString("content",
			mcp.Required(),
			mcp.Description("Markdown content for the note"),
		),
		mcp.WithString("tags",
			mcp.Description("Comma-separated tags (e.g., 'work,urgent,meeting')"),
		),
		mcp.WithBoolean("overwrite",
			mcp.Description("Overwrite an existing file (default false)"),
		),
	)

	s.AddTool(createTool, common.InstrumentedToolHandlerWithService(
		"obsidian_create_note", "notes", "create", sc,
		func(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
			return handleCreateNote(ctx, request, sc)
		}))

	// Update note tool
	updateTool := mcp.NewTool("obsidian_update_note",
		mcp.WithDescription("Update an existing markdown note"),
		mcp.WithString("note_path",
			mcp.Required(),
			mcp.Description("Relative path from vault root"),
		),
		mcp.WithString("content",
			mcp.Description("New content (omit to keep existing content)"),
		),
		mcp.WithString("tags",
			mcp.Description("Comma-separated tags to add or update"),
		),
		mcp.WithBoolean("append",
			mcp.Description("Append content instead of replacing (default false)"),
		),
	)

	s.AddTool(updateTool, common.InstrumentedToolHandlerWithService(
		"obsidian_update_note", "notes", "update", sc,
		func(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
			return handleUpdateNote(ctx, request, sc)
		}))

	// Delete note tool
	deleteTool := mcp.NewTool("obsidian_delete_note",
		mcp.WithDescription("Delete a markdown note from the Obsidian vault"),
		mcp.WithString("note_path",
			mcp.Required(),
			mcp.Description("Relative path from vault root"),
		),
	)

	s.AddTool(deleteTool, common.InstrumentedToolHandlerWithService(
		"obsidian_delete_note", "notes", "delete", sc,
		func(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
			return handleDeleteNote(ctx, request, sc)
		}))

	// Daily note tool
	dailyTool := mcp.NewTool("obsidian_create_daily_note",
		mcp.WithDescription("Create or get today's daily note"),
		mcp.WithString("date",
			mcp.Description("Date in YYYY-MM-DD format (defaults to today)"),
		),
	)

	s.AddTool(dailyTool, common.InstrumentedToolHandlerWithService(
		"obsidian_create_daily_note", "notes", "create", sc,
		func(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
			return handleCreateDailyNote(ctx, request, sc)
		}))

	return nil
}

func handleCreateNote(_ context.Context, request mcp.CallToolRequest, sc *server.ServerContext) (*mcp.CallToolResult, error) {
	vault := sc.Vault()
	if vault == nil {
		return notConfiguredResult(), nil
	}

	args := request.GetArguments()

	notePath, ok := args["note_path"].(string)
	if !ok || notePath == "" {
		return mcp.NewToolResultError("note_path is required"), nil
	}
	content, ok := args["content"].(string)
	if !ok {
		return mcp.NewToolResultError("content is required"), nil
	}

	var metadata map[string]any
	if tags, ok := args["tags"].(string); ok && tags != "" {
		metadata = map[string]any{"tags": tags}
	}

	overwrite := false
	if o, ok := args["overwrite"].(bool); ok {
		overwrite = o
	}

	rel, err := vault.Create(notePath, content, metadata, overwrite)
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("Failed to create note: %v", err)), nil
	}

	return jsonResult(map[string]any{
		"created": true,
		"path":    rel,
	})
}

func handleReadNote(_ context.Context, request mcp.CallToolRequest, sc *server.ServerContext) (*mcp.CallToolResult, error) {
	vault := sc.Vault()
	if vault == nil {
		return notConfiguredResult(), nil
	}

	args := request.GetArguments()
	notePath, ok := args["note_path"].(string)
	if !ok || notePath == "" {
		return mcp.NewToolResultError("note_path is required"), nil
	}

	note, err := vault.Read(notePath)
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("Failed to read note: %v", err)), nil
	}

	return jsonResult(note)
}

func handleUpdateNote(_ context.Context, request mcp.CallToolRequest, sc *server.ServerContext) (*mcp.CallToolResult, error) {
	vault := sc.Vault()
	if vault == nil {
		return notConfiguredResult(), nil
	}

	args := request.GetArguments()
	notePath, ok := args["note_path"].(string)
	if !ok || notePath == "" {
		return mcp.NewToolResultError("note_path is required"), nil
	}

	var content *string
	if c, ok := args["content"].(string); ok {
		content = &c
	}

	var metadata map[string]any
	if tags, ok := args["tags"].(string); ok && tags != "" {
		metadata = map[string]any{"tags": tags}
	}

	appendContent := false
	if a, ok := args["append"].(bool); ok {
		appendContent = a
	}

	rel, err := vault.Update(notePath, content, metadata, appendContent)
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("Failed to update note: %v", err)), nil
	}

	return jsonResult(map[string]any{
		"updated": true,
		"path":    rel,
	})
}

func handleDeleteNote(_ context.Context, request mcp.CallToolRequest, sc *server.ServerContext) (*mcp.CallToolResult, error) {
	vault := sc.Vault()
	if vault == nil {
		return notConfiguredResult(), nil
	}

	args := request.GetArguments()
	notePath, ok := args["note_path"].(string)
	if !ok || notePath == "" {
		return mcp.NewToolResultError("note_path is required"), nil
	}

	if err := vault.Delete(notePath); err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("Failed to delete note: %v", err)), nil
	}

	return jsonResult(map[string]any{
		"deleted": true,
		"path":    notePath,
	})
}

func handleListNotes(_ context.Context, request mcp.CallToolRequest, sc *server.ServerContext) (*mcp.CallToolResult, error) {
	vault := sc.Vault()
	if vault == nil {
		return notConfiguredResult(), nil
	}

	args := request.GetArguments()

	folder := ""
	if f, ok := args["folder"].(string); ok {
		folder = f
	}
	pattern := ""
	if p, ok := args["pattern"].(string); ok {
		pattern = p
	}
	recursive := true
	if r, ok := args["recursive"].(bool); ok {
		recursive = r
	}

	notes, err := vault.List(folder, pattern, recursive)
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("Failed to list notes: %v", err)), nil
	}

	return jsonResult(map[string]any{
		"notes": notes,
		"count": len(notes),
	})
}

func handleSearchNotes(_ context.Context, request mcp.CallToolRequest, sc *server.ServerContext) (*mcp.CallToolResult, error) {
	vault := sc.Vault()
	if vault == nil {
		return notConfiguredResult(), nil
	}

	args := request.GetArguments()
	query, ok := args["query"].(string)
	if !ok || query == "" {
		return mcp.NewToolResultError("query is required"), nil
	}
	folder := ""
	if f, ok := args["folder"].(string); ok {
		folder = f
	}

	results, err := vault.Search(query, folder)
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("Failed to search notes: %v", err)), nil
	}

	return jsonResult(map[string]any{
		"query":   query,
		"results": results,
		"count":   len(results),
	})
}

func handleCreateDailyNote(_ context.Context, request mcp.CallToolRequest, sc *server.ServerContext) (*mcp.CallToolResult, error) {
	vault := sc.Vault()
	if vault == nil {
		return notConfiguredResult(), nil
	}

	args := request.GetArguments()
	date := ""
	if d, ok := args["date"].(string); ok {
		date = d
	}

	daily, err := vault.CreateDaily(date)
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("Failed to create daily note: %v", err)), nil
	}

	return jsonResult(daily)
}
