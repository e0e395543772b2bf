// Package postgres implements the storage gateway on top of PostgreSQL,
// using a single JSONB key/value table.
package postgres

import (
	"context"
	"fmt"

	"github.com/go-faster/errors"
	pgxdecimal "github.com/jackc/pgx-shopspring-decimal"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/Elaba987/pry-Inventario/db"
	"github.com/Elaba987/pry-Inventario/internal/storage"
)

const (
	getRecordSQL = `SELECT value FROM records WHERE key = $1`

	setRecordSQL = `INSERT INTO records (key, value) VALUES ($1, $2)
		ON CONFLICT (key) DO UPDATE SET value = EXCLUDED.value, updated_at = now()`

	removeRecordSQL = `DELETE FROM records WHERE key = $1`

	clearRecordsSQL = `TRUNCATE records`
)

// NewPool creates a pgxpool.Pool configured with shopspring/decimal support
// for NUMERIC columns.
func NewPool(ctx context.Context, databaseURL string) (*pgxpool.Pool, error) {
	cfg, err := pgxpool.ParseConfig(databaseURL)
	if err != nil {
		return nil, fmt.Errorf("parsing database config: %w", err)
	}

	cfg.AfterConnect = func(ctx context.Context, conn *pgx.Conn) error {
		pgxdecimal.Register(conn.TypeMap())
		return nil
	}

	pool, err := pgxpool.NewWithConfig(ctx, cfg)
	if err != nil {
		return nil, fmt.Errorf("creating connection pool: %w", err)
	}

	return pool, nil
}

// RunMigrations executes the embedded DDL schema against the pool.
func RunMigrations(ctx context.Context, pool *pgxpool.Pool) error {
	_, err := pool.Exec(ctx, db.Schema)
	if err != nil {
		return fmt.Errorf("running migrations: %w", err)
	}
	return nil
}

var _ storage.Gateway = (*Gateway)(nil)

// Gateway is a PostgreSQL-backed storage gateway.
type Gateway struct {
	pool *pgxpool.Pool
}

// NewGateway returns a Gateway that uses the given pool.
func NewGateway(pool *pgxpool.Pool) *Gateway {
	return &Gateway{pool: pool}
}

func (g *Gateway) Get(ctx context.Context, key string) ([]byte, error) {
	var value []byte
	err := g.pool.QueryRow(ctx, getRecordSQL, key).Scan(&value)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, storage.ErrNoRecord
		}
		return nil, fmt.Errorf("getting record %q: %w", key, err)
	}
	return value, nil
}

func (g *Gateway) Set(ctx context.Context, key string, value []byte) error {
	if _, err := g.pool.Exec(ctx, setRecordSQL, key, value); err != nil {
		return fmt.Errorf("setting record %q: %w", key, err)
	}
	return nil
}

func (g *Gateway) Remove(ctx context.Context, key string) error {
	if _, err := g.pool.Exec(ctx, removeRecordSQL, key); err != nil {
		return fmt.Errorf("removing record %q: %w", key, err)
	}
	return nil
}

func (g *Gateway) ClearAll(ctx context.Context) error {
	if _, err := g.pool.Exec(ctx, clearRecordsSQL); err != nil {
		return fmt.Errorf("clearing records: %w", err)
	}
	return nil
}
