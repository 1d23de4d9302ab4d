// Package sqlstore keeps persisted client state in a SQLite table, for setups where several goblog
// processes share one state directory.
package sqlstore

import (
	"context"
	"database/sql"
	"errors"

	"github.com/rs/zerolog/log"
	"github.com/sidereusnuntius/goblog/internal/storage"
)

type SQLStore struct {
	db *sql.DB
}

// New wraps a database whose schema has already been migrated.
func New(db *sql.DB) *SQLStore {
	return &SQLStore{db: db}
}

func (s *SQLStore) Get(key string) (data []byte, err error) {
	if key == "" {
		return nil, storage.ErrInvalidKey
	}

	row := s.db.QueryRowContext(context.Background(), "SELECT data FROM kv_records WHERE name = ?", key)
	err = row.Scan(&data)
	return data, s.handleError(err)
}

func (s *SQLStore) Set(key string, value []byte) error {
	if key == "" {
		return storage.ErrInvalidKey
	}
	if value == nil {
		value = []byte{}
	}

	_, err := s.db.ExecContext(context.Background(), `INSERT INTO kv_records(name, data) VALUES (?, ?)
		ON CONFLICT(name) DO UPDATE SET data = excluded.data, updated_at = CURRENT_TIMESTAMP`, key, value)
	return s.handleError(err)
}

func (s *SQLStore) Clear(key string) error {
	if key == "" {
		return storage.ErrInvalidKey
	}

	res, err := s.db.ExecContext(context.Background(), "DELETE FROM kv_records WHERE name = ?", key)
	if err != nil {
		return s.handleError(err)
	}

	n, err := res.RowsAffected()
	if err != nil {
		return s.handleError(err)
	}
	if n == 0 {
		return storage.ErrNotExist
	}
	return nil
}

// handleError hides driver errors behind the storage sentinels.
func (s *SQLStore) handleError(err error) error {
	switch {
	case err == nil:
		return nil
	case errors.Is(err, sql.ErrNoRows):
		return storage.ErrNotExist
	default:
		log.Error().Err(err).Msg("sqlite storage error")
		return storage.ErrInternal
	}
}
