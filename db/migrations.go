// Package db embeds the SQL schema migrations so binaries and tests apply the
// same files without depending on the working directory.
package db

import (
	"context"
	"embed"
	"fmt"
	"io/fs"
	"sort"
	"strings"

	"github.com/jackc/pgx/v5/pgconn"
)

//go:embed migrations/*.sql
var migrationFS embed.FS

// Execer is satisfied by *pgxpool.Pool, *pgx.Conn and pgx.Tx.
type Execer interface {
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
}

// Script is a single migration file.
type Script struct {
	Name string
	SQL  string
}

// UpScripts returns the *.up.sql migrations in application order.
func UpScripts() ([]Script, error) {
	return loadScripts(".up.sql", false)
}

// DownScripts returns the *.down.sql migrations in reverse application order.
func DownScripts() ([]Script, error) {
	return loadScripts(".down.sql", true)
}

// Migrate applies every up migration. Scripts are idempotent.
func Migrate(ctx context.Context, ex Execer) error {
	scripts, err := UpScripts()
	if err != nil {
		return err
	}
	return apply(ctx, ex, scripts)
}

// Rollback applies every down migration.
func Rollback(ctx context.Context, ex Execer) error {
	scripts, err := DownScripts()
	if err != nil {
		return err
	}
	return apply(ctx, ex, scripts)
}

func apply(ctx context.Context, ex Execer, scripts []Script) error {
	for _, script := range scripts {
		// no arguments: pgx sends the file over the simple protocol, so
		// multi-statement scripts are fine.
		if _, err := ex.Exec(ctx, script.SQL); err != nil {
			return fmt.Errorf("apply migration %s: %w", script.Name, err)
		}
	}
	return nil
}

func loadScripts(suffix string, reverse bool) ([]Script, error) {
	names, err := fs.Glob(migrationFS, "migrations/*"+suffix)
	if err != nil {
		return nil, fmt.Errorf("list migrations: %w", err)
	}
	sort.Strings(names)
	if reverse {
		sort.Sort(sort.Reverse(sort.StringSlice(names)))
	}

	scripts := make([]Script, 0, len(names))
	for _, name := range names {
		payload, err := migrationFS.ReadFile(name)
		if err != nil {
			return nil, fmt.Errorf("read migration %s: %w", name, err)
		}
		scripts = append(scripts, Script{
			Name: strings.TrimPrefix(name, "migrations/"),
			SQL:  string(payload),
		})
	}
	return scripts, nil
}
