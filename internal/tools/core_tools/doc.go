// Package core_tools provides basic MCP (Model Context Protocol) utility
// tools: connection testing, echo, and server time.
package core_tools
