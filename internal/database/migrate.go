package database

import (
	"context"
	"embed"
	"errors"
	"fmt"
	"io/fs"
	"net/url"
	"strings"

	"github.com/golang-migrate/migrate/v4"
	_ "github.com/golang-migrate/migrate/v4/database/pgx/v5"
	"github.com/golang-migrate/migrate/v4/source/iofs"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

//go:embed migrations/*.sql
var migrationFiles embed.FS

const migrationsDir = "migrations"

// Direction selects whether migrations are applied or reverted
type Direction string

const (
	Up   Direction = "up"
	Down Direction = "down"
)

// ErrNoMigrations is returned by Down when nothing has been applied
var ErrNoMigrations = errors.New("no applied migrations")

// Migrator applies the embedded schema migrations. Concurrent runs against
// the same database serialize on a Postgres advisory lock.
type Migrator struct {
	m      *migrate.Migrate
	logger *zap.Logger
}

// NewMigrator opens a migration session on the database named by dsn.
func NewMigrator(dsn string, logger *zap.Logger) (*Migrator, error) {
	dbURL, err := migrateURL(dsn)
	if err != nil {
		return nil, err
	}

	src, err := iofs.New(migrationFiles, migrationsDir)
	if err != nil {
		return nil, fmt.Errorf("load migrations: %w", err)
	}

	m, err := migrate.NewWithSourceInstance("iofs", src, dbURL)
	if err != nil {
		return nil, fmt.Errorf("open migrations: %w", err)
	}
	return newMigrator(m, logger), nil
}

func newMigrator(m *migrate.Migrate, logger *zap.Logger) *Migrator {
	if logger == nil {
		logger = zap.NewNop()
	}
	m.Log = migrateLogger{
		sugar:   logger.Sugar(),
		verbose: logger.Core().Enabled(zapcore.DebugLevel),
	}
	return &Migrator{m: m, logger: logger}
}

// Run applies all pending migrations (Up) or reverts the latest one (Down).
// Cancelling ctx stops after the migration in flight.
func (m *Migrator) Run(ctx context.Context, direction Direction) error {
	done := make(chan struct{})
	defer close(done)
	go func() {
		select {
		case <-ctx.Done():
			m.m.GracefulStop <- true
		case <-done:
		}
	}()

	switch direction {
	case Up:
		err := m.m.Up()
		if errors.Is(err, migrate.ErrNoChange) {
			m.logger.Info("schema up to date")
			return nil
		}
		if err != nil {
			return fmt.Errorf("apply migrations: %w", err)
		}
	case Down:
		if _, _, err := m.m.Version(); errors.Is(err, migrate.ErrNilVersion) {
			return ErrNoMigrations
		} else if err != nil {
			return fmt.Errorf("read schema version: %w", err)
		}
		err := m.m.Steps(-1)
		if errors.Is(err, fs.ErrNotExist) {
			return ErrNoMigrations
		}
		if err != nil {
			return fmt.Errorf("revert migration: %w", err)
		}
	default:
		return fmt.Errorf("unknown migration direction %q", direction)
	}

	if err := ctx.Err(); err != nil {
		return err
	}

	version, dirty, err := m.Version()
	if err != nil {
		return err
	}
	m.logger.Info("schema migrated",
		zap.String("direction", string(direction)),
		zap.Uint("version", version),
		zap.Bool("dirty", dirty))
	return nil
}

// Version returns the applied schema version, or 0 when nothing is applied.
func (m *Migrator) Version() (uint, bool, error) {
	version, dirty, err := m.m.Version()
	if errors.Is(err, migrate.ErrNilVersion) {
		return 0, false, nil
	}
	if err != nil {
		return 0, false, fmt.Errorf("read schema version: %w", err)
	}
	return version, dirty, nil
}

// Close releases the source and database handles.
func (m *Migrator) Close() error {
	srcErr, dbErr := m.m.Close()
	return errors.Join(srcErr, dbErr)
}

// migrateURL rewrites a postgres DSN to the scheme of the pgx/v5 migrate driver
func migrateURL(dsn string) (string, error) {
	u, err := url.Parse(dsn)
	if err != nil {
		return "", fmt.Errorf("parse dsn: %w", err)
	}
	switch u.Scheme {
	case "postgres", "postgresql":
		u.Scheme = "pgx5"
	default:
		return "", fmt.Errorf("unsupported dsn scheme %q", u.Scheme)
	}
	return u.String(), nil
}

type migrateLogger struct {
	sugar   *zap.SugaredLogger
	verbose bool
}

func (l migrateLogger) Printf(format string, v ...interface{}) {
	l.sugar.Debugf(strings.TrimSuffix(format, "\n"), v...)
}

func (l migrateLogger) Verbose() bool {
	return l.verbose
}
