package core_tools

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/mark3labs/mcp-go/mcp"
	mcpserver "github.com/mark3labs/mcp-go/server"

	"github.com/sherpahq/sherpa/internal/server"
	"github.com/sherpahq/sherpa/internal/tools/common"
)

// RegisterCoreTools registers the basic utility tools with the MCP server
func RegisterCoreTools(s *mcpserver.MCPServer, sc *server.ServerContext) error {
	// Connection test tool
	testTool := mcp.NewTool("test_connection",
		mcp.WithDescription("Test the connection to the MCP server and get server status"),
	)

	s.AddTool(testTool, common.InstrumentedToolHandlerWithService(
		"test_connection", "core", "get", sc,
		func(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
			return handleTestConnection(ctx, request, sc)
		}))

	// Echo tool
	echoTool := mcp.NewTool("echo",
		mcp.WithDescription("Echo back a message with optional formatting"),
		mcp.WithString("message",
			mcp.Required(),
			mcp.Description("The message to echo back"),
		),
		mcp.WithBoolean("uppercase",
			mcp.Description("Return the message in uppercase (default false)"),
		),
		mcp.WithString("prefix",
			mcp.Description("Prefix to prepend to the message"),
		),
	)

	s.AddTool(echoTool, common.InstrumentedToolHandlerWithService(
		"echo", "core", "get", sc,
		func(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
			return handleEcho(ctx, request, sc)
		}))

	// Server time tool
	timeTool := mcp.NewTool("get_server_time",
		mcp.WithDescription("Get the current server time in ISO format"),
	)

	s.AddTool(timeTool, common.InstrumentedToolHandlerWithService(
		"get_server_time", "core", "get", sc,
		func(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
			return handleGetServerTime(ctx, request, sc)
		}))

	return nil
}

func handleTestConnection(_ context.Context, _ mcp.CallToolRequest, sc *server.ServerContext) (*mcp.CallToolResult, error) {
	now := time.Now().In(sc.Timezone())
	return mcp.NewToolResultText(fmt.Sprintf("Connection successful!\nServer time: %s", now.Format(time.RFC3339))), nil
}

func handleEcho(_ context.Context, request mcp.CallToolRequest, _ *server.ServerContext) (*mcp.CallToolResult, error) {
	args := request.GetArguments()

	message, ok := args["message"].(string)
	if !ok {
		return mcp.NewToolResultError("message is required"), nil
	}

	if uppercase, ok := args["uppercase"].(bool); ok && uppercase {
		message = strings.ToUpper(message)
	}
	if prefix, ok := args["prefix"].(string); ok && prefix != "" {
		message = prefix + ": " + message
	}

	return mcp.NewToolResultText(message), nil
}

func handleGetServerTime(_ context.Context, _ mcp.CallToolRequest, sc *server.ServerContext) (*mcp.CallToolResult, error) {
	now := time.Now()
	payload := map[string]string{
		"timestamp":     now.In(sc.Timezone()).Format(time.RFC3339),
		"utc_timestamp": now.UTC().Format(time.RFC3339),
		"timezone":      sc.Timezone().String(),
	}
	data, err := json.MarshalIndent(payload, "", "  ")
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("Failed to encode result: %v", err)), nil
	}
	return mcp.NewToolResultText(string(data)), nil
}
