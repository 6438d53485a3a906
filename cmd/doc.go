// Package cmd implements the command-line interface for sherpa.
//
// This package provides the following commands:
//   - serve: Start the MCP server to provide tools for AI assistants
//   - auth: Set up credentials for Google Calendar and TickTick
//   - version: Display version information
//   - generate-docs: Generate markdown documentation for all MCP tools
//
// The serve command is the default command when no subcommand is specified.
package cmd
