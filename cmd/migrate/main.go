package main

import (
	"context"
	"flag"
	"fmt"
	"io"
	"os"
	"strings"
	"time"

	"github.com/joho/godotenv"

	"github.com/angelmondragon/storefront-backend/pkg/config"
	"github.com/angelmondragon/storefront-backend/pkg/db"
	"github.com/angelmondragon/storefront-backend/pkg/logger"
	"github.com/angelmondragon/storefront-backend/pkg/migrate"
)

type options struct {
	cmd      string
	dir      string
	name     string
	version  string
	embedded bool
}

// gooseCommands are passed straight through to goose.
var gooseCommands = map[string]bool{"up": true, "down": true, "redo": true, "status": true}

func main() {
	_ = godotenv.Load()

	opts, err := parseFlags(os.Args[1:])
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(2)
	}
	if err := run(context.Background(), opts, os.Stdout); err != nil {
		fmt.Fprintln(os.Stderr, "migrate:", err)
		os.Exit(1)
	}
}

func parseFlags(args []string) (options, error) {
	var opts options
	fs := flag.NewFlagSet("migrate", flag.ContinueOnError)
	fs.StringVar(&opts.cmd, "cmd", "up", "up|down|redo|status|version|create|validate")
	fs.StringVar(&opts.dir, "dir", migrate.DefaultDir, "goose migrations directory")
	fs.StringVar(&opts.name, "name", "", "migration name (create)")
	fs.StringVar(&opts.version, "version", "", "target version YYYYMMDDHHMMSS (version)")
	fs.BoolVar(&opts.embedded, "embedded", false, "use the migrations built into this binary")
	if err := fs.Parse(args); err != nil {
		return options{}, err
	}
	return opts, nil
}

// run handles the file-only commands without touching config or the database.
func run(ctx context.Context, opts options, out io.Writer) error {
	switch opts.cmd {
	case "create":
		if opts.name == "" {
			return fmt.Errorf("-name is required for create")
		}
		path, err := migrate.CreateSQLMigration(opts.dir, opts.name, time.Now())
		if err != nil {
			return err
		}
		fmt.Fprintln(out, "created migration:", path)
		return nil
	case "validate":
		if err := migrate.ValidateDir(opts.dir); err != nil {
			return err
		}
		fmt.Fprintln(out, "migration validation passed")
		return nil
	case "version":
		if opts.version == "" {
			return fmt.Errorf("-version is required for version")
		}
	default:
		if !gooseCommands[opts.cmd] {
			return fmt.Errorf("unknown -cmd value %q", opts.cmd)
		}
	}
	return runAgainstDatabase(ctx, opts)
}

func runAgainstDatabase(ctx context.Context, opts options) error {
	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}
	logg := logger.New(logger.Options{
		ServiceName: "migrate",
		Environment: cfg.App.Env,
		Level:       logger.ParseLevel(cfg.App.LogLevel),
		WarnStack:   cfg.App.LogWarnStack,
	})
	ctx = logg.WithFields(ctx, map[string]any{
		"cmd": opts.cmd,
		"dir": opts.dir,
	})
	if strings.HasPrefix(strings.ToLower(cfg.DB.Driver), db.DriverSQLite) {
		return fmt.Errorf("goose migrations target postgres; sqlite schemas are built by auto-migrate")
	}

	dbClient, err := db.New(ctx, cfg.DB, logg)
	if err != nil {
		return fmt.Errorf("open database: %w", err)
	}
	defer dbClient.Close()

	sqlDB, err := dbClient.DB().DB()
	if err != nil {
		return fmt.Errorf("sql handle: %w", err)
	}

	dir := opts.dir
	if opts.embedded {
		dir = ""
	}
	logg.Info(ctx, "migrate.start")
	if opts.cmd == "version" {
		err = migrate.MigrateToVersion(ctx, sqlDB, dir, opts.version)
	} else {
		err = migrate.Run(ctx, sqlDB, dir, opts.cmd)
	}
	if err != nil {
		logg.Error(ctx, "migrate.failed", err)
		return err
	}
	logg.Info(ctx, "migrate.done")
	return nil
}
