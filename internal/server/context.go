package server

import (
	"context"
	"fmt"
	"log/slog"
	"path/filepath"
	"sync"
	"time"

	"github.com/sherpahq/sherpa/internal/calendar"
	"github.com/sherpahq/sherpa/internal/instrumentation"
	"github.com/sherpahq/sherpa/internal/meals"
	"github.com/sherpahq/sherpa/internal/notes"
	"github.com/sherpahq/sherpa/internal/ticktick"
)

// Config carries the resolved configuration for all integrations. Every
// field is optional; an unset field leaves the corresponding integration
// unconfigured, and its tools report that instead of failing.
type Config struct {
	// DataDir is the root for local flat-file storage. Meal partitions live
	// under <DataDir>/meals.
	DataDir string

	// VaultPath is the root of the markdown note vault.
	VaultPath string

	// TickTickToken is the TickTick Open API bearer token.
	TickTickToken string

	// Timezone resolves "today" for daily summaries and note timestamps.
	// Nil means UTC.
	Timezone *time.Location
}

// ServerContext holds the shared state for the MCP server: configuration,
// the meal store, the note vault, and per-integration API clients.
type ServerContext struct {
	ctx    context.Context
	cancel context.CancelFunc
	cfg    Config
	logger *slog.Logger

	mealStore      *meals.Store
	vault          *notes.Vault
	ticktickClient *ticktick.Client

	metrics     *instrumentation.Metrics
	auditLogger *instrumentation.AuditLogger

	calendarClients map[string]*calendar.Client // account name -> client
	mu              sync.RWMutex
	shutdown        bool
}

// NewServerContext creates a new server context, opening whichever
// integrations the configuration enables.
func NewServerContext(ctx context.Context, cfg Config, logger *slog.Logger) (*ServerContext, error) {
	if logger == nil {
		logger = slog.Default()
	}
	if cfg.Timezone == nil {
		cfg.Timezone = time.UTC
	}

	shutdownCtx, cancel := context.WithCancel(ctx)

	sc := &ServerContext{
		ctx:             shutdownCtx,
		cancel:          cancel,
		cfg:             cfg,
		logger:          logger,
		calendarClients: make(map[string]*calendar.Client),
	}

	if cfg.DataDir != "" {
		store, err := meals.NewStore(filepath.Join(cfg.DataDir, "meals"), cfg.Timezone, logger)
		if err != nil {
			cancel()
			return nil, fmt.Errorf("failed to open meal store: %w", err)
		}
		sc.mealStore = store
	}

	if cfg.VaultPath != "" {
		vault, err := notes.NewVault(cfg.VaultPath, cfg.Timezone, logger)
		if err != nil {
			cancel()
			return nil, fmt.Errorf("failed to open note vault: %w", err)
		}
		sc.vault = vault
	}

	if cfg.TickTickToken != "" {
		client, err := ticktick.NewClient(cfg.TickTickToken)
		if err != nil {
			cancel()
			return nil, fmt.Errorf("failed to create TickTick client: %w", err)
		}
		sc.ticktickClient = client
	}

	return sc, nil
}

// Context returns the server context
func (sc *ServerContext) Context() context.Context {
	return sc.ctx
}

// Logger returns the server's logger
func (sc *ServerContext) Logger() *slog.Logger {
	return sc.logger
}

// Timezone returns the configured timezone
func (sc *ServerContext) Timezone() *time.Location {
	return sc.cfg.Timezone
}

// MealStore returns the meal record store, or nil if local storage is not
// configured
func (sc *ServerContext) MealStore() *meals.Store {
	sc.mu.RLock()
	defer sc.mu.RUnlock()
	return sc.mealStore
}

// Vault returns the note vault, or nil if no vault path is configured
func (sc *ServerContext) Vault() *notes.Vault {
	sc.mu.RLock()
	defer sc.mu.RUnlock()
	return sc.vault
}

// TickTickClient returns the TickTick client, or nil if no access token is
// configured
func (sc *ServerContext) TickTickClient() *ticktick.Client {
	sc.mu.RLock()
	defer sc.mu.RUnlock()
	return sc.ticktickClient
}

// Metrics returns the metrics recorder, or nil if instrumentation is not
// configured
func (sc *ServerContext) Metrics() *instrumentation.Metrics {
	sc.mu.RLock()
	defer sc.mu.RUnlock()
	return sc.metrics
}

// SetMetrics sets the metrics recorder
func (sc *ServerContext) SetMetrics(metrics *instrumentation.Metrics) {
	sc.mu.Lock()
	defer sc.mu.Unlock()
	sc.metrics = metrics
}

// AuditLogger returns the audit logger, or nil if audit logging is not
// configured
func (sc *ServerContext) AuditLogger() *instrumentation.AuditLogger {
	sc.mu.RLock()
	defer sc.mu.RUnlock()
	return sc.auditLogger
}

// SetAuditLogger sets the audit logger
func (sc *ServerContext) SetAuditLogger(auditLogger *instrumentation.AuditLogger) {
	sc.mu.Lock()
	defer sc.mu.Unlock()
	sc.auditLogger = auditLogger
}

// CalendarClientForAccount returns the Calendar client for a specific account
// Creates and caches the client if it doesn't exist yet
// Returns nil if the account has no token
func (sc *ServerContext) CalendarClientForAccount(account string) *calendar.Client {
	sc.mu.Lock()
	defer sc.mu.Unlock()

	if client, ok := sc.calendarClients[account]; ok {
		return client
	}

	if !calendar.HasTokenForAccount(account) {
		return nil
	}

	client, err := calendar.NewClientForAccount(sc.ctx, account)
	if err != nil {
		sc.logger.Warn("failed to create Calendar client",
			slog.String("account", account),
			slog.String("error", err.Error()))
		return nil
	}

	sc.calendarClients[account] = client
	return client
}

// CalendarClient returns the Calendar client for the default account
func (sc *ServerContext) CalendarClient() *calendar.Client {
	return sc.CalendarClientForAccount("default")
}

// SetCalendarClientForAccount sets the Calendar client for a specific account
func (sc *ServerContext) SetCalendarClientForAccount(account string, client *calendar.Client) {
	sc.mu.Lock()
	defer sc.mu.Unlock()
	sc.calendarClients[account] = client
}

// SetCalendarClient sets the Calendar client for the default account
func (sc *ServerContext) SetCalendarClient(client *calendar.Client) {
	sc.SetCalendarClientForAccount("default", client)
}

// SetMealStore overrides the meal store, primarily for tests
func (sc *ServerContext) SetMealStore(store *meals.Store) {
	sc.mu.Lock()
	defer sc.mu.Unlock()
	sc.mealStore = store
}

// SetVault overrides the note vault, primarily for tests
func (sc *ServerContext) SetVault(vault *notes.Vault) {
	sc.mu.Lock()
	defer sc.mu.Unlock()
	sc.vault = vault
}

// SetTickTickClient overrides the TickTick client, primarily for tests
func (sc *ServerContext) SetTickTickClient(client *ticktick.Client) {
	sc.mu.Lock()
	defer sc.mu.Unlock()
	sc.ticktickClient = client
}

// IsShutdown returns whether the server has been shutdown
func (sc *ServerContext) IsShutdown() bool {
	sc.mu.RLock()
	defer sc.mu.RUnlock()
	return sc.shutdown
}

// Shutdown shuts down the server context
func (sc *ServerContext) Shutdown() error {
	sc.mu.Lock()
	defer sc.mu.Unlock()

	if sc.shutdown {
		return nil
	}

	sc.shutdown = true
	sc.cancel()
	return nil
}
