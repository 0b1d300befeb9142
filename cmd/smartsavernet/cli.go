package main

import "github.com/alecthomas/kong"

// CLI defines the command-line interface.
type CLI struct {
	Config   string `help:"Config file path (overrides SMARTSAVER_CONFIG)" type:"path"`
	LogLevel string `help:"Log level override (debug, info, warn, error)"`
	NoDB     bool   `name:"no-db" help:"Run without the transaction database"`

	Serve   ServeCmd   `cmd:"" default:"1" help:"Serve the web dashboard and JSON API"`
	TUI     TUICmd     `cmd:"" name:"tui" help:"Open the terminal dashboard"`
	Run     RunCmd     `cmd:"" help:"Run one pass of the agents and print the result"`
	Seed    SeedCmd    `cmd:"" help:"Replace stored transactions with mock data"`
	Import  ImportCmd  `cmd:"" help:"Import transactions from a CSV file"`
	Migrate MigrateCmd `cmd:"" help:"Apply database migrations"`
	Version VersionCmd `cmd:"" help:"Show version information"`
}

// ServeCmd runs the HTTP server.
type ServeCmd struct {
	Addr string `help:"Listen address (overrides server.address)"`
}

// TUICmd runs the terminal UI.
type TUICmd struct {
	Prefs string `help:"Preferences file (overrides prefs.path)" type:"path"`
}

// RunCmd executes a single orchestrator pass.
type RunCmd struct {
	Agents   []string `short:"a" help:"Agents to enable, comma separated (default from config)"`
	Strategy string   `help:"Debt strategy: avalanche or snowball"`
	Income   float64  `help:"Monthly income override"`
	JSON     bool     `name:"json" help:"Print the resulting state as JSON"`
}

// SeedCmd writes mock transactions.
type SeedCmd struct {
	Days int `help:"Days of history to generate (default seed.days)"`
}

// ImportCmd loads a CSV export.
type ImportCmd struct {
	File string `arg:"" help:"CSV file with date, description, amount and optional category columns" type:"existingfile"`
}

// MigrateCmd applies migrations and optionally wipes stored data.
type MigrateCmd struct {
	Wipe bool `help:"Delete every stored transaction after migrating"`
}

// VersionCmd shows version information.
type VersionCmd struct{}

func kongVars() kong.Vars {
	return kong.Vars{
		"version": version,
	}
}
