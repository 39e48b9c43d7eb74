// AngelaMos | 2026
// migrate.go

package core

import (
	"context"
	"database/sql"
	"fmt"
	"io"
	"io/fs"
	"path"
	"time"

	"github.com/pressly/goose/v3"

	"github.com/carterperez-dev/jobtracker/migrations"
)

type MigrationCommand string

const (
	MigrationUp     MigrationCommand = "up"
	MigrationDown   MigrationCommand = "down"
	MigrationStatus MigrationCommand = "status"
	MigrationUpTo   MigrationCommand = "up-to"
)

// Migrate applies every pending embedded migration and returns how many ran.
func (d *Database) Migrate(ctx context.Context) (int, error) {
	p, err := newMigrationProvider(d.DB.DB, migrations.FS)
	if err != nil {
		return 0, err
	}
	results, err := p.Up(ctx)
	if err != nil {
		return 0, fmt.Errorf("migrate up: %w", err)
	}
	return len(results), nil
}

// RunMigrations executes cmd and writes one line per migration touched.
// version is only read by MigrationUpTo.
func RunMigrations(
	ctx context.Context,
	db *sql.DB,
	cmd MigrationCommand,
	version int64,
	out io.Writer,
) error {
	return runMigrations(ctx, db, migrations.FS, cmd, version, out)
}

func runMigrations(
	ctx context.Context,
	db *sql.DB,
	fsys fs.FS,
	cmd MigrationCommand,
	version int64,
	out io.Writer,
) error {
	switch cmd {
	case MigrationUp, MigrationDown, MigrationStatus, MigrationUpTo:
	default:
		return fmt.Errorf("migration command %q: %w", cmd, ErrInvalidInput)
	}

	p, err := newMigrationProvider(db, fsys)
	if err != nil {
		return err
	}

	var results []*goose.MigrationResult
	switch cmd {
	case MigrationUp:
		results, err = p.Up(ctx)
	case MigrationUpTo:
		results, err = p.UpTo(ctx, version)
	case MigrationDown:
		var res *goose.MigrationResult
		if res, err = p.Down(ctx); res != nil {
			results = append(results, res)
		}
	case MigrationStatus:
		return printStatus(ctx, p, out)
	}
	if err != nil {
		return fmt.Errorf("migrate %s: %w", cmd, err)
	}

	for _, r := range results {
		fmt.Fprintf(out, "%-4s %s %s\n",
			r.Direction, path.Base(r.Source.Path), r.Duration.Round(time.Millisecond))
	}
	return nil
}

func printStatus(ctx context.Context, p *goose.Provider, out io.Writer) error {
	statuses, err := p.Status(ctx)
	if err != nil {
		return fmt.Errorf("migrate status: %w", err)
	}

	for _, s := range statuses {
		applied := "pending"
		if s.State == goose.StateApplied {
			applied = s.AppliedAt.UTC().Format(time.RFC3339)
		}
		fmt.Fprintf(out, "%-25s %s\n", applied, path.Base(s.Source.Path))
	}
	return nil
}

func newMigrationProvider(db *sql.DB, fsys fs.FS) (*goose.Provider, error) {
	p, err := goose.NewProvider(goose.DialectPostgres, db, fsys)
	if err != nil {
		return nil, fmt.Errorf("load migrations: %w", err)
	}
	return p, nil
}
