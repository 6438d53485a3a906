// Package server provides the MCP server context, the streamable HTTP
// transport wrapper, and operational endpoints for the sherpa application.
//
// # Key Components
//
// ServerContext holds the configured integrations and hands them to tool
// handlers: the meal store and note vault (constructed eagerly from
// configuration), the TickTick client, and per-account Google Calendar
// clients with lazy initialization and caching. Accessors return nil when an
// integration is not configured; tool handlers translate that into a
// structured not-configured result.
//
// HTTPServer serves the MCP server over streamable HTTP with health
// endpoints and optional request metrics. MetricsServer exposes Prometheus
// metrics on a dedicated port so operational data stays off the main
// listener. HealthChecker implements liveness and readiness probes.
package server
