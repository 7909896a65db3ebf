// Package migration applies ordered, embedded schema migrations to a SQLite
// database. Each migration runs in its own transaction and is recorded in a
// schema_migrations table so reruns are no-ops.
package migration

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"sort"
	"time"
)

// Migration is a single schema change identified by a monotonically
// increasing version.
type Migration struct {
	Version     int
	Description string
	SQL         string
}

// ErrDuplicateVersion indicates two migrations share a version number.
var ErrDuplicateVersion = errors.New("migration: duplicate version")

// ErrVersionGap indicates the migration sequence is not contiguous.
var ErrVersionGap = errors.New("migration: version gap")

// Runner executes pending migrations against a database handle.
type Runner struct {
	db         *sql.DB
	migrations []Migration
	logger     *slog.Logger
}

// NewRunner validates the migration set and returns a Runner. Migrations may
// be registered in any order; they are sorted and checked for duplicates and
// gaps before anything touches the database.
func NewRunner(db *sql.DB, migrations []Migration, logger *slog.Logger) (*Runner, error) {
	if logger == nil {
		logger = slog.Default()
	}

	ordered := make([]Migration, len(migrations))
	copy(ordered, migrations)
	sort.Slice(ordered, func(i, j int) bool { return ordered[i].Version < ordered[j].Version })

	for i, m := range ordered {
		if m.Version <= 0 {
			return nil, fmt.Errorf("migration: version %d must be positive", m.Version)
		}
		if i > 0 && m.Version == ordered[i-1].Version {
			return nil, fmt.Errorf("%w: %d", ErrDuplicateVersion, m.Version)
		}
		if i > 0 && m.Version != ordered[i-1].Version+1 {
			return nil, fmt.Errorf("%w: %d follows %d", ErrVersionGap, m.Version, ordered[i-1].Version)
		}
	}

	return &Runner{db: db, migrations: ordered, logger: logger}, nil
}

// Run applies every migration newer than the current schema version.
func (r *Runner) Run(ctx context.Context) error {
	if err := r.initVersionTable(ctx); err != nil {
		return fmt.Errorf("migration: initialize version table: %w", err)
	}

	current, err := r.CurrentVersion(ctx)
	if err != nil {
		return err
	}

	applied := 0
	for _, m := range r.migrations {
		if m.Version <= current {
			continue
		}
		if err := r.apply(ctx, m); err != nil {
			return err
		}
		applied++
	}

	if applied > 0 {
		r.logger.InfoContext(ctx, "schema migrations applied", "count", applied, "version", r.migrations[len(r.migrations)-1].Version)
	}
	return nil
}

// CurrentVersion reports the highest applied migration version, 0 when none.
func (r *Runner) CurrentVersion(ctx context.Context) (int, error) {
	var version sql.NullInt64
	err := r.db.QueryRowContext(ctx, `SELECT MAX(version) FROM schema_migrations`).Scan(&version)
	if err != nil {
		return 0, fmt.Errorf("migration: read current version: %w", err)
	}
	return int(version.Int64), nil
}

func (r *Runner) initVersionTable(ctx context.Context) error {
	_, err := r.db.ExecContext(ctx, `
		CREATE TABLE IF NOT EXISTS schema_migrations (
			version INTEGER PRIMARY KEY,
			description TEXT NOT NULL,
			applied_at TEXT NOT NULL
		)
	`)
	return err
}

func (r *Runner) apply(ctx context.Context, m Migration) error {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("migration %d: begin: %w", m.Version, err)
	}

	if _, err := tx.ExecContext(ctx, m.SQL); err != nil {
		if rbErr := tx.Rollback(); rbErr != nil {
			return fmt.Errorf("migration %d failed (rollback error: %v): %w", m.Version, rbErr, err)
		}
		return fmt.Errorf("migration %d (%s): %w", m.Version, m.Description, err)
	}

	if _, err := tx.ExecContext(ctx,
		`INSERT INTO schema_migrations (version, description, applied_at) VALUES (?, ?, ?)`,
		m.Version, m.Description, time.Now().UTC().Format(time.RFC3339),
	); err != nil {
		if rbErr := tx.Rollback(); rbErr != nil {
			return fmt.Errorf("migration %d record failed (rollback error: %v): %w", m.Version, rbErr, err)
		}
		return fmt.Errorf("migration %d: record version: %w", m.Version, err)
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("migration %d: commit: %w", m.Version, err)
	}

	r.logger.Debug("migration applied", "version", m.Version, "description", m.Description)
	return nil
}
