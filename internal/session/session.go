// Package session keeps track of who is logged into the client. The in-memory state is authoritative;
// the persisted record only exists so the session survives a restart, and failures to write it are
// logged and otherwise ignored.
package session

import (
	"encoding/json"
	"errors"
	"strings"

	"github.com/rs/zerolog/log"
	"github.com/sidereusnuntius/goblog/internal/domain"
	"github.com/sidereusnuntius/goblog/internal/state"
	"github.com/sidereusnuntius/goblog/internal/storage"
)

// Key is the storage key of the persisted session record.
const Key = "authState"

type Store struct {
	storage storage.Storage
	state   *state.Store
}

func New(s storage.Storage, st *state.Store) *Store {
	return &Store{
		storage: s,
		state:   st,
	}
}

// Restore reads the persisted session record. A missing, unreadable or inconsistent record yields the
// anonymous state. A record is inconsistent if its user has no email.
func Restore(s storage.Storage) domain.SessionState {
	raw, err := s.Get(Key)
	if err != nil {
		if errors.Is(err, storage.ErrNotExist) {
			log.Debug().Msg("no persisted session")
		} else {
			log.Error().Err(err).Msg("failed to load authentication state")
		}
		return domain.Anonymous
	}

	var restored domain.SessionState
	if err := json.Unmarshal(raw, &restored); err != nil {
		log.Error().Err(err).Msg("failed to load authentication state")
		return domain.Anonymous
	}
	if !restored.Valid() {
		log.Error().Bool("authenticated", restored.Authenticated).Msg("discarding inconsistent authentication state")
		return domain.Anonymous
	}
	if restored.User != nil && strings.TrimSpace(restored.User.Email) == "" {
		log.Error().Int64("id", restored.User.ID).Msg("discarding authentication state without an email")
		return domain.Anonymous
	}
	return restored
}

// Login marks user as authenticated and persists the session.
func (s *Store) Login(user domain.User) {
	next := s.state.Dispatch(state.LoggedIn{User: user})

	record, err := json.Marshal(next.Session)
	if err == nil {
		err = s.storage.Set(Key, record)
	}
	if err != nil {
		log.Error().Err(err).Msg("failed to save authentication state")
	}
}

// Logout clears the session and removes the persisted record. Logging out twice is harmless.
func (s *Store) Logout() {
	s.state.Dispatch(state.LoggedOut{})

	err := s.storage.Clear(Key)
	switch {
	case err == nil:
	case errors.Is(err, storage.ErrNotExist):
		log.Debug().Msg("no persisted session to remove")
	default:
		log.Error().Err(err).Msg("failed to remove authentication state")
	}
}

func (s *Store) Current() domain.SessionState {
	return s.state.Snapshot().Session
}
