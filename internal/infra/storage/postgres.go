package storage

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/karimsalah/crm-insights/internal/config"
)

// PostgresStore keeps the same key-value contract on a single table, for
// deployments that already run Postgres and don't want a Redis.
type PostgresStore struct {
	DB *sql.DB
}

func NewPostgresStore(db *sql.DB) (*PostgresStore, error) {
	s := &PostgresStore{DB: db}
	if err := s.ensureSchema(); err != nil {
		return nil, fmt.Errorf("failed preparing kv_store table: %w", err)
	}
	return s, nil
}

func (p *PostgresStore) ensureSchema() error {
	_, err := p.DB.Exec(`
		CREATE TABLE IF NOT EXISTS kv_store (
			key        TEXT PRIMARY KEY,
			value      TEXT NOT NULL,
			updated_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
		)
	`)
	return err
}

func (p *PostgresStore) Get(ctx context.Context, key string) (string, bool) {
	var value string
	err := p.DB.QueryRowContext(ctx,
		`SELECT value FROM kv_store WHERE key = $1`, key,
	).Scan(&value)
	if err != nil {
		if !errors.Is(err, sql.ErrNoRows) {
			config.GetLogger().WithField("key", key).Errorf("kv get: %v", err)
		}
		return "", false
	}
	return value, true
}

func (p *PostgresStore) Set(ctx context.Context, key, value string) {
	query := `
		INSERT INTO kv_store (key, value, updated_at)
		VALUES ($1, $2, NOW())
		ON CONFLICT (key)
		DO UPDATE SET
			value = EXCLUDED.value,
			updated_at = NOW()
	`
	if _, err := p.DB.ExecContext(ctx, query, key, value); err != nil {
		config.GetLogger().WithField("key", key).Errorf("kv set: %v", err)
	}
}

func (p *PostgresStore) Delete(ctx context.Context, key string) {
	if _, err := p.DB.ExecContext(ctx, `DELETE FROM kv_store WHERE key = $1`, key); err != nil {
		config.GetLogger().WithField("key", key).Errorf("kv del: %v", err)
	}
}

func (p *PostgresStore) Ping(ctx context.Context) error {
	return p.DB.PingContext(ctx)
}
