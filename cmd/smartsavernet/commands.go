package main

import (
	"context"
	"encoding/json"
	"fmt"
	"os"

	"github.com/jask/smartsavernet/internal/agents"
	"github.com/jask/smartsavernet/internal/database"
	"github.com/jask/smartsavernet/internal/service"
	"github.com/jask/smartsavernet/internal/state"
	"github.com/jask/smartsavernet/internal/tui"
	"github.com/jask/smartsavernet/internal/web"
)

const cliSession = "cli"

func (c *ServeCmd) Run(ctx context.Context, cli *CLI) error {
	rt, err := setup(ctx, cli, setupOptions{})
	if err != nil {
		return err
	}
	defer rt.Close()

	addr := rt.cfg.Server.Address
	if c.Addr != "" {
		addr = c.Addr
	}
	srv := web.NewServer(addr, rt.coach(), rt.defaults, rt.log).
		WithShutdownTimeout(rt.cfg.Server.ShutdownTimeout)
	return srv.Start(ctx)
}

func (c *TUICmd) Run(ctx context.Context, cli *CLI) error {
	rt, err := setup(ctx, cli, setupOptions{quiet: true})
	if err != nil {
		return err
	}
	defer rt.Close()

	path := rt.cfg.Prefs.Path
	if c.Prefs != "" {
		path = c.Prefs
	}
	return tui.Run(ctx, tui.Options{
		Coach:     rt.coach(),
		PrefsPath: path,
		Defaults:  rt.defaults,
		Log:       rt.log,
	})
}

func (c *RunCmd) Run(ctx context.Context, cli *CLI) error {
	rt, err := setup(ctx, cli, setupOptions{})
	if err != nil {
		return err
	}
	defer rt.Close()

	req := service.RunRequest{Enabled: rt.defaults}
	if len(c.Agents) > 0 {
		if req.Enabled, err = agents.ParseNames(c.Agents); err != nil {
			return err
		}
	}
	if c.Strategy != "" {
		if req.Strategy, err = state.ParseStrategy(c.Strategy); err != nil {
			return err
		}
	}

	coach := rt.coach()
	if c.Income > 0 {
		s, err := coach.State(ctx, cliSession)
		if err != nil {
			return err
		}
		s.Income = c.Income
		if err := coach.Sessions.Put(ctx, cliSession, s); err != nil {
			return err
		}
	}

	out, report, err := coach.Run(ctx, cliSession, req)
	if err != nil {
		return err
	}
	if c.JSON {
		enc := json.NewEncoder(os.Stdout)
		enc.SetIndent("", "  ")
		return enc.Encode(out)
	}

	for _, m := range out.Messages {
		fmt.Printf("[%s] %s: %s\n", m.Level, m.Agent, m.Content)
	}
	if len(out.Alerts) > 0 {
		fmt.Println()
		fmt.Println("Alerts:")
		for _, a := range out.Alerts {
			fmt.Printf("  - %s\n", a)
		}
	}
	rt.log.Debug("pass finished", "ran", len(report.Ran()), "failures", len(report.Failures))
	return nil
}

func (c *SeedCmd) Run(ctx context.Context, cli *CLI) error {
	rt, err := setup(ctx, cli, setupOptions{requireDB: true})
	if err != nil {
		return err
	}
	defer rt.Close()

	n, _, err := rt.coach().Seed(ctx, cliSession, c.Days)
	if err != nil {
		return err
	}
	fmt.Printf("✓ Seeded %d mock transactions for %s\n", n, rt.cfg.Seed.UserID)
	return nil
}

func (c *ImportCmd) Run(ctx context.Context, cli *CLI) error {
	rt, err := setup(ctx, cli, setupOptions{requireDB: true})
	if err != nil {
		return err
	}
	defer rt.Close()

	f, err := os.Open(c.File)
	if err != nil {
		return err
	}
	defer f.Close()

	res, err := rt.coach().Import(ctx, cliSession, f)
	if err != nil {
		return err
	}
	fmt.Printf("✓ Imported %d transactions (%d duplicates skipped)\n", res.Imported, res.Skipped)
	for _, e := range res.Errors {
		fmt.Printf("  ! %s\n", e)
	}
	return nil
}

func (c *MigrateCmd) Run(ctx context.Context, cli *CLI) error {
	rt, err := setup(ctx, cli, setupOptions{requireDB: true})
	if err != nil {
		return err
	}
	defer rt.Close()

	v, dirty, err := database.MigrationVersion(rt.db, rt.driver)
	if err != nil {
		return err
	}
	fmt.Printf("✓ %s schema at version %d", rt.driver, v)
	if dirty {
		fmt.Print(" (dirty)")
	}
	fmt.Println()

	if c.Wipe {
		maint := &service.MaintenanceService{DB: rt.db, Driver: rt.driver}
		n, err := maint.Wipe(ctx)
		if err != nil {
			return err
		}
		fmt.Printf("✓ Deleted %d transactions\n", n)
	}
	return nil
}

func (c *VersionCmd) Run() error {
	fmt.Printf("smartsavernet %s (%s)\n", version, commit)
	return nil
}
