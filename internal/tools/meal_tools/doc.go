// Package meal_tools provides MCP (Model Context Protocol) tools for the
// meal log.
//
// The tools wrap the daily-partitioned meal store: logging, listing,
// updating, deleting meals and computing per-day nutrition summaries.
// Results are returned as JSON so the structure survives the protocol
// boundary unchanged.
package meal_tools
