package filestore

import (
	"bytes"
	"errors"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"github.com/natefinch/atomic"
	"github.com/rs/zerolog/log"
	"github.com/sidereusnuntius/goblog/internal/storage"
)

// FileStore keeps every key in its own file under Root.
type FileStore struct {
	Root string
}

func New(root string) (fs storage.Storage, err error) {
	fs = &FileStore{
		Root: root,
	}

	info, err := os.Stat(root)
	if err == nil {
		if !info.IsDir() {
			log.Error().Str("root", root).Msg("not a directory")
			err = storage.ErrNotDir
		}
		return
	}

	if errors.Is(err, os.ErrNotExist) {
		err = os.MkdirAll(root, 0o700)
	}

	if err != nil {
		log.Error().Err(err).Msg("internal error when setting up storage")
		err = storage.ErrInternal
	}

	return
}

func (s *FileStore) path(key string) (string, error) {
	if key == "" || key == "." || key == ".." || strings.ContainsAny(key, `/\`) {
		return "", storage.ErrInvalidKey
	}
	return filepath.Join(s.Root, key+".json"), nil
}

func (s *FileStore) Get(key string) (content []byte, err error) {
	path, err := s.path(key)
	if err != nil {
		return
	}

	content, err = os.ReadFile(path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			err = storage.ErrNotExist
		} else {
			log.Error().Err(err).Msg("failed to read file at path " + path)
			err = storage.ErrInternal
		}
	}
	return
}

func (s *FileStore) Clear(key string) error {
	path, err := s.path(key)
	if err != nil {
		return err
	}

	if err := os.Remove(path); err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return storage.ErrNotExist
		}
		log.Error().Err(err).Msg("file deletion error")
		return storage.ErrInternal
	}

	return nil
}

// Set replaces the file atomically, so a crash mid-write never leaves a truncated record behind.
func (s *FileStore) Set(key string, value []byte) error {
	path, err := s.path(key)
	if err != nil {
		return err
	}

	if err := atomic.WriteFile(path, bytes.NewReader(value)); err != nil {
		log.Error().Err(err).Msg("failed to write file with path " + path)
		return storage.ErrInternal
	}

	return nil
}
