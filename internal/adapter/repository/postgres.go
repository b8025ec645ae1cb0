package repository

import (
	"context"
	"errors"
	"fmt"

	"cv-creator/internal/apperr"

	"github.com/jackc/pgx/v4"
	"github.com/jackc/pgx/v4/pgxpool"
)

// PostgresBlobs stores blobs in the cv_blobs table created by the
// migration package.
type PostgresBlobs struct {
	pool *pgxpool.Pool
}

func NewPostgresBlobs(pool *pgxpool.Pool) *PostgresBlobs {
	return &PostgresBlobs{pool: pool}
}

func (r *PostgresBlobs) Get(ctx context.Context, key string) ([]byte, error) {
	var value []byte
	err := r.pool.QueryRow(ctx, `SELECT value FROM cv_blobs WHERE key = $1`, key).Scan(&value)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, fmt.Errorf("%w: blob %q", apperr.ErrNotFound, key)
	}
	if err != nil {
		return nil, err
	}
	return value, nil
}

func (r *PostgresBlobs) Put(ctx context.Context, key string, value []byte) error {
	_, err := r.pool.Exec(ctx, `INSERT INTO cv_blobs (key, value, updated_at)
		VALUES ($1, $2, now())
		ON CONFLICT (key) DO UPDATE SET value = EXCLUDED.value, updated_at = EXCLUDED.updated_at`,
		key, value)
	return err
}

func (r *PostgresBlobs) Close() error {
	r.pool.Close()
	return nil
}
