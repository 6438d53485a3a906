// Package ticktick_tools provides MCP (Model Context Protocol) tools for
// TickTick task management.
//
// The tools cover project CRUD and task CRUD plus completion, backed by the
// TickTick Open API client. Priority values follow the API's closed set:
// 0 (none), 1 (low), 3 (medium), 5 (high).
package ticktick_tools
