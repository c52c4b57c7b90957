package storage

import (
	"database/sql"
	"fmt"
)

// Postgres stores KV entries in the kv_entries table created by
// database.Migrate.
type Postgres struct {
	db *sql.DB
}

func NewPostgres(db *sql.DB) *Postgres {
	return &Postgres{db: db}
}

func (p *Postgres) Load(key string) ([]byte, error) {
	var value []byte
	err := p.db.QueryRow(
		`SELECT value FROM kv_entries WHERE key = $1`, key,
	).Scan(&value)
	if err == sql.ErrNoRows {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("load %q: %w", key, err)
	}
	return value, nil
}

func (p *Postgres) Save(key string, value []byte) error {
	_, err := p.db.Exec(
		`INSERT INTO kv_entries (key, value, updated_at)
		 VALUES ($1, $2, NOW())
		 ON CONFLICT (key) DO UPDATE SET value = $2, updated_at = NOW()`,
		key, value,
	)
	if err != nil {
		return fmt.Errorf("save %q: %w", key, err)
	}
	return nil
}

func (p *Postgres) Remove(key string) error {
	_, err := p.db.Exec(`DELETE FROM kv_entries WHERE key = $1`, key)
	if err != nil {
		return fmt.Errorf("remove %q: %w", key, err)
	}
	return nil
}
