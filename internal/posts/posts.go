package posts

import (
	"context"
	"strconv"

	"codeberg.org/gruf/go-mutexes"
	"github.com/rs/zerolog/log"
	"github.com/sidereusnuntius/goblog/internal/domain"
	"github.com/sidereusnuntius/goblog/internal/state"
)

//go:generate mockgen -source=posts.go -destination=../mocks/mock_posts.go -package=mocks

// API is the part of the backend client the post store needs.
type API interface {
	ListPosts(ctx context.Context) ([]domain.Post, error)
	CreatePost(ctx context.Context, data domain.PostData) (domain.Post, error)
	UpdatePost(ctx context.Context, id int64, data domain.PostData) (domain.Post, error)
	DeletePost(ctx context.Context, id int64) error
}

// Store owns the in-memory post collection. Each operation performs one request and, on success, applies
// the result to the shared state. Updates and deletes of the same post are serialized, so their results
// are applied in the order the calls were made.
type Store struct {
	api   API
	state *state.Store
	locks *mutexes.MutexMap
}

func New(api API, st *state.Store) *Store {
	locks := mutexes.MutexMap{}
	return &Store{
		api:   api,
		state: st,
		locks: &locks,
	}
}

// FetchAll replaces the collection with the server's list. On failure the previous list is kept and
// the error message is recorded.
func (s *Store) FetchAll(ctx context.Context) ([]domain.Post, error) {
	s.state.Dispatch(state.FetchStarted{})

	posts, err := s.api.ListPosts(ctx)
	if err != nil {
		log.Error().Err(err).Msg("failed to fetch posts")
		s.state.Dispatch(state.FetchFailed{Message: err.Error()})
		return nil, err
	}

	s.state.Dispatch(state.FetchSucceeded{Posts: posts})
	return posts, nil
}

// Create stores a new post and appends the server's record to the collection. Errors are returned to the
// caller without touching the collection status.
func (s *Store) Create(ctx context.Context, data domain.PostData) (domain.Post, error) {
	post, err := s.api.CreatePost(ctx, data)
	if err != nil {
		return domain.Post{}, err
	}

	s.state.Dispatch(state.PostCreated{Post: post})
	return post, nil
}

// Update replaces the post with the given id, keeping its position. If the post is no longer in the
// collection the server's record is not inserted.
func (s *Store) Update(ctx context.Context, id int64, data domain.PostData) (domain.Post, error) {
	unlock := s.lock(id)
	defer unlock()

	post, err := s.api.UpdatePost(ctx, id, data)
	if err != nil {
		return domain.Post{}, err
	}

	s.state.Dispatch(state.PostUpdated{Post: post})
	return post, nil
}

// Delete removes the post from the server and then from the collection.
func (s *Store) Delete(ctx context.Context, id int64) (int64, error) {
	unlock := s.lock(id)
	defer unlock()

	if err := s.api.DeletePost(ctx, id); err != nil {
		log.Error().Err(err).Int64("id", id).Msg("failed to delete post")
		return 0, err
	}

	s.state.Dispatch(state.PostDeleted{ID: id})
	return id, nil
}

func (s *Store) Snapshot() domain.PostCollection {
	return s.state.Snapshot().Posts
}

func (s *Store) lock(id int64) func() {
	return s.locks.Lock(strconv.FormatInt(id, 10))
}
