package state

import "github.com/sidereusnuntius/goblog/internal/domain"

// Action is a tagged state transition. Only the types declared in this file implement it.
type Action interface {
	Kind() string
	action()
}

type LoggedIn struct{ User domain.User }
type LoggedOut struct{}
type FetchStarted struct{}
type FetchSucceeded struct{ Posts []domain.Post }
type FetchFailed struct{ Message string }
type PostCreated struct{ Post domain.Post }
type PostUpdated struct{ Post domain.Post }
type PostDeleted struct{ ID int64 }

func (LoggedIn) Kind() string       { return "auth/login" }
func (LoggedOut) Kind() string      { return "auth/logout" }
func (FetchStarted) Kind() string   { return "posts/fetchPosts/pending" }
func (FetchSucceeded) Kind() string { return "posts/fetchPosts/fulfilled" }
func (FetchFailed) Kind() string    { return "posts/fetchPosts/rejected" }
func (PostCreated) Kind() string    { return "posts/createPost/fulfilled" }
func (PostUpdated) Kind() string    { return "posts/updatePost/fulfilled" }
func (PostDeleted) Kind() string    { return "posts/deletePost/fulfilled" }

func (LoggedIn) action()       {}
func (LoggedOut) action()      {}
func (FetchStarted) action()   {}
func (FetchSucceeded) action() {}
func (FetchFailed) action()    {}
func (PostCreated) action()    {}
func (PostUpdated) action()    {}
func (PostDeleted) action()    {}

const DefaultFetchError = "Failed to fetch posts"

// Reduce computes the state that follows s after a. It does not modify s.
func Reduce(s AppState, a Action) AppState {
	switch a := a.(type) {
	case LoggedIn:
		u := a.User
		s.Session = domain.SessionState{Authenticated: true, User: &u}
	case LoggedOut:
		s.Session = domain.Anonymous
	case FetchStarted:
		s.Posts.Status = domain.StatusLoading
	case FetchSucceeded:
		s.Posts.Status = domain.StatusSucceeded
		posts := make([]domain.Post, len(a.Posts))
		copy(posts, a.Posts)
		s.Posts.Posts = posts
	case FetchFailed:
		s.Posts.Status = domain.StatusFailed
		s.Posts.Error = a.Message
		if s.Posts.Error == "" {
			s.Posts.Error = DefaultFetchError
		}
	case PostCreated:
		posts := make([]domain.Post, 0, len(s.Posts.Posts)+1)
		posts = append(posts, s.Posts.Posts...)
		s.Posts.Posts = append(posts, a.Post)
	case PostUpdated:
		for i, p := range s.Posts.Posts {
			if p.ID == a.Post.ID {
				posts := append([]domain.Post(nil), s.Posts.Posts...)
				posts[i] = a.Post
				s.Posts.Posts = posts
				break
			}
		}
	case PostDeleted:
		posts := make([]domain.Post, 0, len(s.Posts.Posts))
		for _, p := range s.Posts.Posts {
			if p.ID != a.ID {
				posts = append(posts, p)
			}
		}
		s.Posts.Posts = posts
	}
	return s
}
