package store

import (
	"context"
	"time"

	"github.com/cockroachdb/errors"
	"github.com/jmoiron/sqlx"
	_ "github.com/lib/pq" // PostgreSQL driver
	"go.uber.org/zap"
)

// Database is the PostgreSQL connection backing the durable cache.
type Database struct {
	conn   *sqlx.DB
	logger *zap.Logger
}

// migration is one schema step, applied at most once.
type migration struct {
	version string
	sql     string
}

var migrations = []migration{
	{
		version: "001_create_cache_entries",
		sql: `
			CREATE TABLE IF NOT EXISTS cache_entries (
				cache_key  TEXT PRIMARY KEY,
				value      JSONB NOT NULL,
				updated_at BIGINT NOT NULL
			)`,
	},
	{
		version: "002_cache_entries_updated_at_idx",
		sql:     `CREATE INDEX IF NOT EXISTS cache_entries_updated_at_idx ON cache_entries (updated_at)`,
	},
}

// NewDatabase opens and pings a PostgreSQL connection pool.
func NewDatabase(dsn string, logger *zap.Logger) (*Database, error) {
	if logger == nil {
		logger = zap.NewNop()
	}
	db, err := sqlx.Connect("postgres", dsn)
	if err != nil {
		return nil, errors.Wrap(err, "connect database")
	}

	db.SetMaxOpenConns(20)
	db.SetMaxIdleConns(5)
	db.SetConnMaxLifetime(time.Hour)
	db.SetConnMaxIdleTime(10 * time.Minute)

	return &Database{conn: db, logger: logger}, nil
}

// Close closes the database connection.
func (db *Database) Close() error {
	if db.conn != nil {
		return db.conn.Close()
	}
	return nil
}

// DB returns the underlying pool for queries.
func (db *Database) DB() *sqlx.DB {
	return db.conn
}

// RunMigrations applies every pending migration in order.
func (db *Database) RunMigrations(ctx context.Context) error {
	db.logger.Info("running database migrations")

	const tracking = `
		CREATE TABLE IF NOT EXISTS schema_migrations (
			version VARCHAR(255) PRIMARY KEY,
			applied_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
		)`
	if _, err := db.conn.ExecContext(ctx, tracking); err != nil {
		return errors.Wrap(err, "create migrations table")
	}

	for _, m := range migrations {
		if err := db.runMigration(ctx, m); err != nil {
			return errors.Wrapf(err, "run migration %s", m.version)
		}
	}
	return nil
}

func (db *Database) runMigration(ctx context.Context, m migration) error {
	var exists bool
	err := db.conn.GetContext(ctx, &exists,
		"SELECT EXISTS(SELECT 1 FROM schema_migrations WHERE version = $1)", m.version)
	if err != nil {
		return err
	}
	if exists {
		db.logger.Debug("migration already applied", zap.String("version", m.version))
		return nil
	}

	tx, err := db.conn.BeginTxx(ctx, nil)
	if err != nil {
		return err
	}
	defer func() { _ = tx.Rollback() }()

	if _, err := tx.ExecContext(ctx, m.sql); err != nil {
		return err
	}
	if _, err := tx.ExecContext(ctx, "INSERT INTO schema_migrations (version) VALUES ($1)", m.version); err != nil {
		return err
	}
	if err := tx.Commit(); err != nil {
		return err
	}

	db.logger.Info("applied migration", zap.String("version", m.version))
	return nil
}

// HealthCheck pings the database.
func (db *Database) HealthCheck(ctx context.Context) error {
	ctx, cancel := context.WithTimeout(ctx, 3*time.Second)
	defer cancel()
	return db.conn.PingContext(ctx)
}
