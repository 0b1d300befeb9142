// Package main is the entry point for the smartsavernet coach.
package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/alecthomas/kong"
	"github.com/joho/godotenv"
)

// Build-time variables (set via ldflags)
var (
	version = "dev"
	commit  = "unknown"
)

func main() {
	_ = godotenv.Load()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	var cli CLI
	kctx := kong.Parse(&cli,
		kong.Name("smartsavernet"),
		kong.Description("Personal finance coach driven by a pipeline of small agents."),
		kong.UsageOnError(),
		kong.BindTo(ctx, (*context.Context)(nil)),
		kongVars(),
	)

	if err := kctx.Run(&cli); err != nil {
		fmt.Fprintf(os.Stderr, "smartsavernet: %v\n", err)
		os.Exit(1)
	}
}
