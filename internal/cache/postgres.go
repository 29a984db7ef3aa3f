package cache

import (
	"context"
	"database/sql"
	"time"

	"github.com/cockroachdb/errors"
	"github.com/jmoiron/sqlx"
)

// PostgresStore keeps entries in the cache_entries table.
type PostgresStore struct {
	db *sqlx.DB
}

func NewPostgresStore(db *sqlx.DB) *PostgresStore {
	return &PostgresStore{db: db}
}

func (ps *PostgresStore) Load(ctx context.Context, key string) ([]byte, bool, error) {
	var data []byte
	err := ps.db.GetContext(ctx, &data, `SELECT value FROM cache_entries WHERE cache_key = $1`, key)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, errors.Wrap(err, "select cache entry")
	}
	return data, true, nil
}

func (ps *PostgresStore) Save(ctx context.Context, key string, data []byte, updatedAt time.Time) error {
	const query = `
		INSERT INTO cache_entries (cache_key, value, updated_at)
		VALUES ($1, $2, $3)
		ON CONFLICT (cache_key) DO UPDATE SET
			value = EXCLUDED.value,
			updated_at = EXCLUDED.updated_at`
	if _, err := ps.db.ExecContext(ctx, query, key, string(data), updatedAt.UnixMilli()); err != nil {
		return errors.Wrap(err, "upsert cache entry")
	}
	return nil
}

// Purge deletes entries written before cutoff.
func (ps *PostgresStore) Purge(ctx context.Context, cutoff time.Time) (int64, error) {
	res, err := ps.db.ExecContext(ctx, `DELETE FROM cache_entries WHERE updated_at < $1`, cutoff.UnixMilli())
	if err != nil {
		return 0, errors.Wrap(err, "purge cache entries")
	}
	return res.RowsAffected()
}
