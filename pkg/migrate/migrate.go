package migrate

import (
	"context"
	"database/sql"
	"embed"
	"fmt"
	"strconv"
	"sync"

	"github.com/pressly/goose/v3"
)

const (
	DefaultDir = "pkg/migrate/migrations"
	dialect    = "postgres"
)

//go:embed migrations/*.sql
var embedded embed.FS

// goose keeps its dialect and filesystem in package globals.
var gooseMu sync.Mutex

// Run executes a goose command (up, down, redo, status) against db. An empty
// dir runs the migrations compiled into the binary.
func Run(ctx context.Context, db *sql.DB, dir string, command string, args ...string) error {
	if db == nil {
		return fmt.Errorf("db is required")
	}
	return withGoose(dir, func(source string) error {
		if err := goose.RunContext(ctx, command, db, source, args...); err != nil {
			return fmt.Errorf("goose %s: %w", command, err)
		}
		return nil
	})
}

// MigrateToVersion moves the schema up or down until it sits at
// targetVersion (YYYYMMDDHHMMSS).
func MigrateToVersion(ctx context.Context, db *sql.DB, dir string, targetVersion string) error {
	target, err := strconv.ParseInt(targetVersion, 10, 64)
	if err != nil || target <= 0 {
		return fmt.Errorf("invalid version %q, expected YYYYMMDDHHMMSS", targetVersion)
	}
	if db == nil {
		return fmt.Errorf("db is required")
	}
	return withGoose(dir, func(source string) error {
		current, err := goose.GetDBVersionContext(ctx, db)
		if err != nil {
			return fmt.Errorf("read schema version: %w", err)
		}
		switch {
		case current < target:
			err = goose.UpToContext(ctx, db, source, target)
		case current > target:
			err = goose.DownToContext(ctx, db, source, target)
		}
		if err != nil {
			return fmt.Errorf("migrate %d -> %d: %w", current, target, err)
		}
		return nil
	})
}

func withGoose(dir string, fn func(source string) error) error {
	gooseMu.Lock()
	defer gooseMu.Unlock()

	source := dir
	if dir == "" {
		goose.SetBaseFS(embedded)
		source = "migrations"
	} else {
		goose.SetBaseFS(nil)
	}
	if err := goose.SetDialect(dialect); err != nil {
		return fmt.Errorf("set goose dialect: %w", err)
	}
	return fn(source)
}
