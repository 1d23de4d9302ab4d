package storage

import (
	"errors"
)

var (
	ErrNotDir     = errors.New("given root is not a directory")
	ErrInternal   = errors.New("internal error")
	ErrNotExist   = errors.New("key does not exist")
	ErrInvalidKey = errors.New("invalid key")
)

//go:generate mockgen -source=storage.go -destination=../mocks/mock_storage.go -package=mocks

// Storage is a small key-value store that survives process restarts. It backs the persisted session record.
type Storage interface {
	// Get returns the value stored under key, or ErrNotExist.
	Get(key string) ([]byte, error)
	// Set stores value under key, replacing any previous value.
	Set(key string, value []byte) error
	// Clear removes key. Clearing a key that does not exist returns ErrNotExist.
	Clear(key string) error
}
