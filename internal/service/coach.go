package service

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"sync"
	"time"

	"go.opentelemetry.io/otel/trace"

	"github.com/jask/smartsavernet/internal/agents"
	"github.com/jask/smartsavernet/internal/database/repository"
	"github.com/jask/smartsavernet/internal/logging"
	"github.com/jask/smartsavernet/internal/mockdata"
	"github.com/jask/smartsavernet/internal/orchestrator"
	"github.com/jask/smartsavernet/internal/policy"
	"github.com/jask/smartsavernet/internal/session"
	"github.com/jask/smartsavernet/internal/state"
)

// ErrNoDatabase is returned by operations that need the transaction store when none is configured.
var ErrNoDatabase = errors.New("no transaction database configured")

// RunRequest selects agents and overrides for one pass.
type RunRequest struct {
	// Enabled agents; nil runs all of them.
	Enabled  []agents.Name
	Strategy state.Strategy
}

// Coach ties sessions, the transaction store and one orchestrator per session together.
// It is what the web and terminal front ends talk to.
type Coach struct {
	Policy       *policy.Policy
	Sessions     session.Store
	Transactions *repository.TransactionRepo // nil runs without persistence
	UserID       string
	SeedDays     int
	Warnings     []string
	Log          *slog.Logger
	Clock        func() time.Time
	Tracer       trace.TracerProvider // nil uses the global provider

	mu      sync.Mutex
	orchs   map[string]*orchestrator.Orchestrator
	reports map[string]orchestrator.Report
}

func (c *Coach) now() time.Time {
	if c.Clock != nil {
		return c.Clock()
	}
	return time.Now()
}

func (c *Coach) logger() *slog.Logger {
	return logging.Named(c.Log, "coach")
}

func (c *Coach) orchestrator(sessionID string) *orchestrator.Orchestrator {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.orchs == nil {
		c.orchs = map[string]*orchestrator.Orchestrator{}
	}
	o, ok := c.orchs[sessionID]
	if !ok {
		opts := []orchestrator.Option{
			orchestrator.WithLogger(c.Log),
			orchestrator.WithWarnings(c.Warnings...),
		}
		if c.Tracer != nil {
			opts = append(opts, orchestrator.WithTracerProvider(c.Tracer))
		}
		o = orchestrator.New(agents.All(c.Policy, c.now), opts...)
		c.orchs[sessionID] = o
	}
	return o
}

// HasDatabase reports whether transactions are persisted.
func (c *Coach) HasDatabase() bool { return c.Transactions != nil }

// State returns the session's state, creating it on first use.
func (c *Coach) State(ctx context.Context, sessionID string) (state.UserState, error) {
	s, err := c.Sessions.Get(ctx, sessionID)
	if err == nil {
		return s, nil
	}
	if !errors.Is(err, session.ErrNotFound) {
		return state.UserState{}, err
	}
	s, err = c.fresh(ctx, state.Default())
	if err != nil {
		return state.UserState{}, err
	}
	if err := c.Sessions.Put(ctx, sessionID, s); err != nil {
		return state.UserState{}, err
	}
	return s, nil
}

// fresh overlays stored transactions, if any, on base.
func (c *Coach) fresh(ctx context.Context, base state.UserState) (state.UserState, error) {
	base.ResetPass()
	if c.Transactions == nil {
		return base, nil
	}
	txns, err := c.Transactions.ListAll(ctx, c.UserID)
	if err != nil {
		return state.UserState{}, fmt.Errorf("load transactions: %w", err)
	}
	if len(txns) == 0 {
		return base, nil
	}
	return FromTransactions(base, txns, c.Policy, c.now()), nil
}

// Run executes one pass for the session and stores the result.
func (c *Coach) Run(ctx context.Context, sessionID string, req RunRequest) (state.UserState, orchestrator.Report, error) {
	s, err := c.State(ctx, sessionID)
	if err != nil {
		return state.UserState{}, orchestrator.Report{}, err
	}
	if req.Strategy != "" {
		s.DebtStrategy = req.Strategy
	}
	out, report, err := c.orchestrator(sessionID).Run(ctx, s, req.Enabled)
	if err != nil {
		c.logger().Warn("pass rejected", "session", sessionID, "error", err)
		return s, report, err
	}
	if err := c.Sessions.Put(ctx, sessionID, out); err != nil {
		return state.UserState{}, report, err
	}
	c.mu.Lock()
	if c.reports == nil {
		c.reports = map[string]orchestrator.Report{}
	}
	c.reports[sessionID] = report
	c.mu.Unlock()
	return out, report, nil
}

// LastReport returns the report of the session's latest pass.
func (c *Coach) LastReport(sessionID string) (orchestrator.Report, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	r, ok := c.reports[sessionID]
	return r, ok
}

// Reset discards the session state and starts again from defaults and stored transactions.
func (c *Coach) Reset(ctx context.Context, sessionID string) (state.UserState, error) {
	if err := c.Sessions.Delete(ctx, sessionID); err != nil {
		return state.UserState{}, err
	}
	c.mu.Lock()
	delete(c.reports, sessionID)
	c.mu.Unlock()
	return c.State(ctx, sessionID)
}

// Seed replaces the stored transactions with mock data and refreshes the session from them.
// Goals and debts already in the session are kept.
func (c *Coach) Seed(ctx context.Context, sessionID string, days int) (int, state.UserState, error) {
	if c.Transactions == nil {
		return 0, state.UserState{}, ErrNoDatabase
	}
	if days <= 0 {
		days = c.SeedDays
	}
	n, err := mockdata.Seed(ctx, c.Transactions, c.UserID, days, c.now(), c.now().UnixNano())
	if err != nil {
		return 0, state.UserState{}, fmt.Errorf("seed transactions: %w", err)
	}
	s, err := c.refresh(ctx, sessionID)
	if err != nil {
		return n, state.UserState{}, err
	}
	c.logger().Info("seeded transactions", "user", c.UserID, "count", n)
	return n, s, nil
}

// Import loads a CSV of transactions and refreshes the session from the store.
func (c *Coach) Import(ctx context.Context, sessionID string, r io.Reader) (IngestResult, error) {
	ingest := &IngestService{Transactions: c.Transactions, Policy: c.Policy}
	res, err := ingest.ImportCSV(ctx, r, c.UserID, time.Local)
	if err != nil {
		return res, err
	}
	if _, err := c.refresh(ctx, sessionID); err != nil {
		return res, err
	}
	return res, nil
}

func (c *Coach) refresh(ctx context.Context, sessionID string) (state.UserState, error) {
	current, err := c.State(ctx, sessionID)
	if err != nil {
		return state.UserState{}, err
	}
	s, err := c.fresh(ctx, current)
	if err != nil {
		return state.UserState{}, err
	}
	if err := c.Sessions.Put(ctx, sessionID, s); err != nil {
		return state.UserState{}, err
	}
	return s, nil
}

// RecentTransactions returns the newest stored transactions.
func (c *Coach) RecentTransactions(ctx context.Context, limit int) ([]repository.Transaction, error) {
	if c.Transactions == nil {
		return nil, ErrNoDatabase
	}
	return c.Transactions.ListRecent(ctx, c.UserID, limit)
}

// Totals returns this month's per-category totals from the store.
func (c *Coach) Totals(ctx context.Context) ([]repository.CategoryTotal, repository.MonthlySummary, error) {
	if c.Transactions == nil {
		return nil, repository.MonthlySummary{}, ErrNoDatabase
	}
	now := c.now()
	from := time.Date(now.Year(), now.Month(), 1, 0, 0, 0, 0, time.UTC)
	totals, err := c.Transactions.TotalsByCategory(ctx, c.UserID, from, time.Time{})
	if err != nil {
		return nil, repository.MonthlySummary{}, err
	}
	sum, err := c.Transactions.MonthlySummary(ctx, c.UserID, now.Year(), now.Month())
	return totals, sum, err
}
