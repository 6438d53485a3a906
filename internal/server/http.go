package server

import (
	"context"
	"net/http"
	"time"

	mcpserver "github.com/mark3labs/mcp-go/server"

	"github.com/sherpahq/sherpa/internal/instrumentation"
)

// HTTPServer serves the MCP server over the streamable HTTP transport,
// together with health endpoints. Authentication is left to the deployment
// (reverse proxy, network policy); the server itself is unauthenticated.
type HTTPServer struct {
	mcpServer        *mcpserver.MCPServer
	httpServer       *http.Server
	healthChecker    *HealthChecker
	metrics          *instrumentation.Metrics
	disableStreaming bool
}

// NewHTTPServer creates a streamable HTTP server for the given MCP server.
func NewHTTPServer(mcpServer *mcpserver.MCPServer, disableStreaming bool) *HTTPServer {
	return &HTTPServer{
		mcpServer:        mcpServer,
		disableStreaming: disableStreaming,
	}
}

// SetHealthChecker attaches a health checker whose endpoints are registered
// on the server's mux.
func (s *HTTPServer) SetHealthChecker(hc *HealthChecker) {
	s.healthChecker = hc
}

// SetMetrics enables HTTP request instrumentation.
func (s *HTTPServer) SetMetrics(metrics *instrumentation.Metrics) {
	s.metrics = metrics
}

// Start starts the HTTP server. It blocks until the server stops.
func (s *HTTPServer) Start(addr string) error {
	mux := http.NewServeMux()

	var streamable http.Handler
	if s.disableStreaming {
		streamable = mcpserver.NewStreamableHTTPServer(s.mcpServer,
			mcpserver.WithEndpointPath("/mcp"),
			mcpserver.WithDisableStreaming(true),
		)
	} else {
		streamable = mcpserver.NewStreamableHTTPServer(s.mcpServer,
			mcpserver.WithEndpointPath("/mcp"),
		)
	}
	mux.Handle("/mcp", s.instrumentationMiddleware(streamable))

	if s.healthChecker != nil {
		s.healthChecker.RegisterHealthEndpoints(mux)
		s.healthChecker.SetReady(true)
	}

	s.httpServer = &http.Server{
		Addr:              addr,
		Handler:           mux,
		ReadHeaderTimeout: 10 * time.Second,
		WriteTimeout:      10 * time.Second,
		IdleTimeout:       120 * time.Second,
	}

	return s.httpServer.ListenAndServe()
}

// Shutdown gracefully shuts down the server.
func (s *HTTPServer) Shutdown(ctx context.Context) error {
	if s.healthChecker != nil {
		s.healthChecker.SetReady(false)
	}
	if s.httpServer != nil {
		return s.httpServer.Shutdown(ctx)
	}
	return nil
}

// instrumentationMiddleware records request count and latency metrics. When
// metrics are not configured it is a passthrough.
func (s *HTTPServer) instrumentationMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if s.metrics == nil {
			next.ServeHTTP(w, r)
			return
		}

		start := time.Now()
		rw := newResponseWriter(w)
		next.ServeHTTP(rw, r)
		s.metrics.RecordHTTPRequest(r.Context(), r.Method, r.URL.Path, rw.statusCode, time.Since(start))
	})
}

// responseWriter captures the status code written by a handler.
type responseWriter struct {
	http.ResponseWriter
	statusCode int
}

func newResponseWriter(w http.ResponseWriter) *responseWriter {
	return &responseWriter{ResponseWriter: w, statusCode: http.StatusOK}
}

func (rw *responseWriter) WriteHeader(statusCode int) {
	rw.statusCode = statusCode
	rw.ResponseWriter.WriteHeader(statusCode)
}

// Flush passes flushes through to the underlying writer so streaming
// responses are not buffered behind the status recorder.
func (rw *responseWriter) Flush() {
	if f, ok := rw.ResponseWriter.(http.Flusher); ok {
		f.Flush()
	}
}
