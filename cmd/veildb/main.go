// VeilDB - schema-reflective SQLite access with encoded values
//
// This is the inspection and maintenance CLI for VeilDB data files.
// The heavy lifting lives in the internal packages; this binary is a
// thin wrapper that loads configuration, opens the store and dispatches
// one subcommand:
//
//	tables            list user tables
//	show <table>      pretty-print a table snapshot (raw stored values)
//	create <table> <coldef>...   create a table if absent
//	drop <table>      drop a table
//	health            verify the database file is reachable
package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/nerrad567/veildb/internal/encoding"
	"github.com/nerrad567/veildb/internal/infrastructure/config"
	"github.com/nerrad567/veildb/internal/infrastructure/database"
	"github.com/nerrad567/veildb/internal/infrastructure/logging"
	"github.com/nerrad567/veildb/internal/record"
)

// Version information - set at build time via ldflags
// Example: go build -ldflags "-X main.version=1.0.0 -X main.commit=abc123"
var (
	version = "dev"     // Semantic version (e.g., "1.0.0")
	commit  = "unknown" // Git commit hash
	date    = "unknown" // Build date
)

// Default configuration file path
const defaultConfigPath = "configs/config.yaml"

func main() {
	// Cancel on interrupt signals (Ctrl+C, SIGTERM)
	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer cancel()

	if err := run(ctx, os.Args[1:]); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

// run is the actual application logic, separated from main for testability.
//
// Parameters:
//   - ctx: Context for cancellation and shutdown signals
//   - args: Command line arguments (without the program name)
//
// Returns:
//   - error: nil on success, or error describing failure
func run(ctx context.Context, args []string) error {
	// Use default logger until config is loaded
	log := logging.Default()

	fs := flag.NewFlagSet("veildb", flag.ContinueOnError)
	configFlag := fs.String("config", "", "path to configuration file")
	if err := fs.Parse(args); err != nil {
		return err
	}

	configPath := getConfigPath(*configFlag)
	cfg, err := config.Load(configPath)
	if err != nil {
		return fmt.Errorf("loading config: %w", err)
	}

	// Reinitialise logger with config settings
	log = logging.New(cfg.Logging, version)
	log.Debug("starting veildb",
		"version", version,
		"commit", commit,
		"build_date", date,
		"config", configPath,
	)

	db, err := database.Open(database.Config{
		Path:        cfg.Database.Path,
		WALMode:     cfg.Database.WALMode,
		BusyTimeout: cfg.Database.BusyTimeout,
	})
	if err != nil {
		return fmt.Errorf("opening database: %w", err)
	}
	defer func() {
		if closeErr := db.Close(); closeErr != nil {
			log.Error("error closing database", "error", closeErr)
		}
	}()

	codec, err := encoding.New(encoding.Mode(cfg.Encoding.Mode), cfg.Encoding.Secret)
	if err != nil {
		return fmt.Errorf("configuring encoding: %w", err)
	}

	store := record.New(db, codec, log)

	command := "tables"
	rest := fs.Args()
	if len(rest) > 0 {
		command, rest = rest[0], rest[1:]
	}

	switch command {
	case "tables":
		return listTables(ctx, store)
	case "show":
		if len(rest) != 1 {
			return fmt.Errorf("usage: veildb show <table>")
		}
		return showTable(ctx, store, rest[0])
	case "create":
		if len(rest) < 2 {
			return fmt.Errorf("usage: veildb create <table> <coldef>...")
		}
		return createTable(ctx, store, rest[0], rest[1:])
	case "drop":
		if len(rest) != 1 {
			return fmt.Errorf("usage: veildb drop <table>")
		}
		return dropTable(ctx, store, rest[0])
	case "health":
		if err := db.HealthCheck(ctx); err != nil {
			return err
		}
		fmt.Printf("ok: %s (mode %s)\n", db.Path(), store.Mode())
		return nil
	default:
		return fmt.Errorf("unknown command %q (want tables, show, create, drop or health)", command)
	}
}

// listTables prints every user table with its column count.
func listTables(ctx context.Context, store *record.Store) error {
	tables, err := store.Tables(ctx)
	if err != nil {
		return err
	}

	for _, name := range tables {
		cols, err := store.Columns(ctx, name)
		if err != nil {
			return err
		}
		fmt.Printf("%s (%d columns)\n", name, len(cols))
	}
	return nil
}

// showTable pretty-prints a snapshot of the table as stored.
func showTable(ctx context.Context, store *record.Store, name string) error {
	table, err := store.Snapshot(ctx, name)
	if err != nil {
		return err
	}
	if table == nil {
		return fmt.Errorf("table %q does not exist", name)
	}

	fmt.Println(table.PrettyPrint())
	return nil
}

// createTable creates a table from raw column definitions.
func createTable(ctx context.Context, store *record.Store, name string, columnDefs []string) error {
	table, err := store.CreateTable(ctx, name, columnDefs...)
	if err != nil {
		return err
	}

	if table.Created {
		fmt.Printf("created %s\n", table)
	} else {
		fmt.Printf("already exists: %s\n", table)
	}
	return nil
}

// dropTable drops a table, reporting absence as a plain message.
func dropTable(ctx context.Context, store *record.Store, name string) error {
	dropped, err := store.DropTable(ctx, name)
	if err != nil {
		return err
	}

	if dropped {
		fmt.Printf("dropped %s\n", name)
	} else {
		fmt.Printf("no such table %s\n", name)
	}
	return nil
}

// getConfigPath resolves the configuration file path: the -config flag
// wins, then the VEILDB_CONFIG environment variable, then the default.
func getConfigPath(flagValue string) string {
	if flagValue != "" {
		return flagValue
	}
	if env := os.Getenv("VEILDB_CONFIG"); env != "" {
		return env
	}
	return defaultConfigPath
}
