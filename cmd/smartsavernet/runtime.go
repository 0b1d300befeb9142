package main

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"strings"
	"time"

	"go.opentelemetry.io/otel/trace"

	"github.com/jask/smartsavernet/internal/agents"
	"github.com/jask/smartsavernet/internal/config"
	"github.com/jask/smartsavernet/internal/database"
	"github.com/jask/smartsavernet/internal/database/repository"
	"github.com/jask/smartsavernet/internal/logging"
	"github.com/jask/smartsavernet/internal/policy"
	"github.com/jask/smartsavernet/internal/service"
	"github.com/jask/smartsavernet/internal/session"
	"github.com/jask/smartsavernet/internal/telemetry"
)

// runtime is everything a command needs, built from config.
type runtime struct {
	cfg      config.Config
	log      *slog.Logger
	policy   *policy.Policy
	warnings []string
	defaults []agents.Name
	db       *sql.DB
	driver   database.Driver
	sessions session.Store
	tracer   trace.TracerProvider
	closers  []func() error
}

type setupOptions struct {
	// requireDB fails setup when the database is disabled or unreachable.
	requireDB bool
	// quiet drops logs that would go to the terminal.
	quiet bool
}

func setup(ctx context.Context, cli *CLI, opts setupOptions) (*runtime, error) {
	if cli.Config != "" {
		if err := os.Setenv("SMARTSAVER_CONFIG", cli.Config); err != nil {
			return nil, err
		}
	}
	cfg, err := config.Load()
	if err != nil {
		return nil, err
	}
	if cli.LogLevel != "" {
		cfg.Log.Level = cli.LogLevel
	}
	out := strings.ToLower(cfg.Log.Output)
	if opts.quiet && (out == "" || out == "stderr" || out == "stdout") {
		cfg.Log.Output = os.DevNull
	}

	rt := &runtime{cfg: cfg}
	log, closeLog, err := logging.New(logging.Config{Level: cfg.Log.Level, Format: cfg.Log.Format, Output: cfg.Log.Output})
	if err != nil {
		return nil, err
	}
	rt.log = log
	rt.closers = append(rt.closers, closeLog)

	if err := rt.startTracing(ctx, opts.quiet); err != nil {
		rt.Close()
		return nil, err
	}

	rt.policy, err = policy.Load(cfg.Policy.Path)
	if err != nil {
		if !errors.Is(err, policy.ErrConfigurationMissing) {
			rt.Close()
			return nil, err
		}
		log.Warn("policy", "error", err)
		rt.warnings = append(rt.warnings, "Policy file unavailable, using built-in defaults.")
	}

	rt.defaults, err = agents.ParseNames(cfg.Agents.Enabled)
	if err != nil {
		rt.Close()
		return nil, fmt.Errorf("agents.enabled: %w", err)
	}

	if err := rt.openDatabase(ctx, cli.NoDB); err != nil {
		if opts.requireDB {
			rt.Close()
			return nil, err
		}
		log.Warn("running without transaction database", "error", err)
		rt.warnings = append(rt.warnings, "Transaction database unavailable, working from session data only.")
	}

	if err := rt.openSessions(ctx); err != nil {
		rt.Close()
		return nil, err
	}
	return rt, nil
}

func (rt *runtime) startTracing(ctx context.Context, quiet bool) error {
	tc := rt.cfg.Trace
	var w io.Writer = os.Stderr
	if quiet {
		w = io.Discard
	}
	tp, shutdown, err := telemetry.Setup(ctx, telemetry.Config{
		Enabled:     tc.Enabled,
		Protocol:    tc.Protocol,
		Endpoint:    tc.Endpoint,
		Insecure:    tc.Insecure,
		Headers:     tc.Headers,
		ServiceName: tc.ServiceName,
		SampleRatio: tc.SampleRatio,
	}, w)
	if err != nil {
		return fmt.Errorf("start tracing: %w", err)
	}
	if tp == nil {
		return nil
	}
	rt.tracer = tp
	rt.closers = append(rt.closers, func() error {
		sctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		return shutdown(sctx)
	})
	rt.log.Debug("tracing enabled", "protocol", tc.Protocol, "endpoint", tc.Endpoint)
	return nil
}

var errDatabaseDisabled = errors.New("transaction database disabled")

func (rt *runtime) openDatabase(ctx context.Context, disabled bool) error {
	if disabled || strings.EqualFold(rt.cfg.Database.Driver, "none") {
		return errDatabaseDisabled
	}
	driver, err := database.ParseDriver(rt.cfg.Database.Driver)
	if err != nil {
		return err
	}
	target := rt.cfg.Database.Path
	if driver == database.MySQL {
		target = rt.cfg.Database.DSN
	}
	db, err := database.Connect(ctx, driver, target)
	if err != nil {
		return err
	}
	if err := database.RunMigrations(db, driver); err != nil {
		_ = db.Close()
		return err
	}
	rt.db, rt.driver = db, driver
	rt.closers = append(rt.closers, db.Close)
	rt.log.Debug("database ready", "driver", driver)
	return nil
}

func (rt *runtime) openSessions(ctx context.Context) error {
	switch strings.ToLower(rt.cfg.Session.Driver) {
	case "", "memory":
		rt.sessions = session.NewMemoryStore()
	case "redis":
		r := rt.cfg.Session.Redis
		store, err := session.NewRedisStore(ctx, session.RedisConfig{
			Address:  r.Address,
			Password: r.Password,
			DB:       r.DB,
			Prefix:   r.Prefix,
			TTL:      r.TTL,
		})
		if err != nil {
			return err
		}
		rt.sessions = store
		rt.closers = append(rt.closers, store.Close)
	default:
		return fmt.Errorf("unsupported session driver %q", rt.cfg.Session.Driver)
	}
	return nil
}

func (rt *runtime) coach() *service.Coach {
	c := &service.Coach{
		Policy:   rt.policy,
		Sessions: rt.sessions,
		UserID:   rt.cfg.Seed.UserID,
		SeedDays: rt.cfg.Seed.Days,
		Warnings: rt.warnings,
		Log:      rt.log,
		Tracer:   rt.tracer,
	}
	if rt.db != nil {
		c.Transactions = repository.NewTransactionRepo(rt.db)
	}
	return c
}

// Close releases resources in reverse order of acquisition.
func (rt *runtime) Close() {
	for i := len(rt.closers) - 1; i >= 0; i-- {
		if err := rt.closers[i](); err != nil && rt.log != nil {
			rt.log.Warn("close", "error", err)
		}
	}
	rt.closers = nil
}
