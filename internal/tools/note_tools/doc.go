// Package note_tools provides MCP (Model Context Protocol) tools for the
// markdown note vault.
//
// The tools expose vault CRUD, listing, substring search, and daily note
// creation. Note paths are always relative to the vault root; the vault
// itself rejects anything that would escape it.
package note_tools
