// Package apitest provides an in-memory stand-in for the REST resource server the blog client talks to.
// It serves the /posts and /users collections with the same shapes as the real backend and lets tests
// inject failures and inspect the requests that were made.
package apitest

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strconv"
	"sync"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/sidereusnuntius/goblog/internal/domain"
)

// Request records a call received by the server.
type Request struct {
	Method    string
	Path      string
	Query     url.Values
	RequestID string
}

type Backend struct {
	mu       sync.Mutex
	posts    []domain.Post
	accounts []domain.Account
	nextPost int64
	nextUser int64
	fail     map[string]int
	requests []Request
}

// New returns an empty backend. Use Serve to expose it over HTTP.
func New() *Backend {
	return &Backend{
		nextPost: 1,
		nextUser: 1,
		fail:     make(map[string]int),
	}
}

// Serve starts an httptest server for b. The caller must Close it.
func (b *Backend) Serve() *httptest.Server {
	return httptest.NewServer(b.Router())
}

func (b *Backend) Router() chi.Router {
	r := chi.NewRouter()
	r.Use(middleware.Recoverer)
	r.Use(b.record)

	r.Route("/posts", func(r chi.Router) {
		r.Get("/", b.listPosts)
		r.Post("/", b.createPost)
		r.Put("/{id}", b.updatePost)
		r.Delete("/{id}", b.deletePost)
	})
	r.Route("/users", func(r chi.Router) {
		r.Get("/", b.listUsers)
		r.Post("/", b.createUser)
	})
	return r
}

// SeedPosts appends posts, assigning ids to those that have none.
func (b *Backend) SeedPosts(posts ...domain.Post) {
	b.mu.Lock()
	defer b.mu.Unlock()
	for _, p := range posts {
		if p.ID == 0 {
			p.ID = b.nextPost
		}
		if p.ID >= b.nextPost {
			b.nextPost = p.ID + 1
		}
		b.posts = append(b.posts, p)
	}
}

// SeedAccounts stores accounts as given, passwords included.
func (b *Backend) SeedAccounts(accounts ...domain.Account) {
	b.mu.Lock()
	defer b.mu.Unlock()
	for _, a := range accounts {
		if a.ID == 0 {
			a.ID = b.nextUser
		}
		if a.ID >= b.nextUser {
			b.nextUser = a.ID + 1
		}
		b.accounts = append(b.accounts, a)
	}
}

// Fail makes every request matching method and chi route pattern (e.g. "/posts/{id}") answer with status.
func (b *Backend) Fail(method, pattern string, status int) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.fail[method+" "+pattern] = status
}

func (b *Backend) Posts() []domain.Post {
	b.mu.Lock()
	defer b.mu.Unlock()
	return append([]domain.Post(nil), b.posts...)
}

func (b *Backend) Accounts() []domain.Account {
	b.mu.Lock()
	defer b.mu.Unlock()
	return append([]domain.Account(nil), b.accounts...)
}

func (b *Backend) Requests() []Request {
	b.mu.Lock()
	defer b.mu.Unlock()
	return append([]Request(nil), b.requests...)
}

func (b *Backend) record(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		b.mu.Lock()
		b.requests = append(b.requests, Request{
			Method:    r.Method,
			Path:      r.URL.Path,
			Query:     r.URL.Query(),
			RequestID: r.Header.Get("X-Request-ID"),
		})
		b.mu.Unlock()
		next.ServeHTTP(w, r)
	})
}

// failed writes the injected failure for the current route, if any.
func (b *Backend) failed(w http.ResponseWriter, r *http.Request) bool {
	pattern := chi.RouteContext(r.Context()).RoutePattern()
	b.mu.Lock()
	status, ok := b.fail[r.Method+" "+pattern]
	if !ok && len(pattern) > 1 && pattern[len(pattern)-1] == '/' {
		status, ok = b.fail[r.Method+" "+pattern[:len(pattern)-1]]
	}
	b.mu.Unlock()
	if ok {
		http.Error(w, http.StatusText(status), status)
	}
	return ok
}

func (b *Backend) listPosts(w http.ResponseWriter, r *http.Request) {
	if b.failed(w, r) {
		return
	}
	writeJSON(w, http.StatusOK, b.Posts())
}

func (b *Backend) createPost(w http.ResponseWriter, r *http.Request) {
	if b.failed(w, r) {
		return
	}
	var data domain.PostData
	if err := json.NewDecoder(r.Body).Decode(&data); err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	b.mu.Lock()
	p := domain.Post{ID: b.nextPost, Title: data.Title, Content: data.Content}
	b.nextPost++
	b.posts = append(b.posts, p)
	b.mu.Unlock()

	writeJSON(w, http.StatusCreated, p)
}

func (b *Backend) updatePost(w http.ResponseWriter, r *http.Request) {
	if b.failed(w, r) {
		return
	}
	id, ok := postID(w, r)
	if !ok {
		return
	}
	var data domain.PostData
	if err := json.NewDecoder(r.Body).Decode(&data); err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	b.mu.Lock()
	defer b.mu.Unlock()
	for i := range b.posts {
		if b.posts[i].ID == id {
			b.posts[i].Title = data.Title
			b.posts[i].Content = data.Content
			writeJSON(w, http.StatusOK, b.posts[i])
			return
		}
	}
	http.NotFound(w, r)
}

func (b *Backend) deletePost(w http.ResponseWriter, r *http.Request) {
	if b.failed(w, r) {
		return
	}
	id, ok := postID(w, r)
	if !ok {
		return
	}

	b.mu.Lock()
	defer b.mu.Unlock()
	for i := range b.posts {
		if b.posts[i].ID == id {
			b.posts = append(b.posts[:i], b.posts[i+1:]...)
			writeJSON(w, http.StatusOK, map[string]any{})
			return
		}
	}
	http.NotFound(w, r)
}

func (b *Backend) listUsers(w http.ResponseWriter, r *http.Request) {
	if b.failed(w, r) {
		return
	}
	email, filter := r.URL.Query()["email"]

	out := []domain.Account{}
	for _, a := range b.Accounts() {
		if filter && a.Email != email[0] {
			continue
		}
		out = append(out, a)
	}
	writeJSON(w, http.StatusOK, out)
}

func (b *Backend) createUser(w http.ResponseWriter, r *http.Request) {
	if b.failed(w, r) {
		return
	}
	var na domain.NewAccount
	if err := json.NewDecoder(r.Body).Decode(&na); err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	b.mu.Lock()
	a := domain.Account{
		User: domain.User{
			ID:        b.nextUser,
			Email:     na.Email,
			CreatedAt: na.CreatedAt,
		},
		Password: na.Password,
	}
	b.nextUser++
	b.accounts = append(b.accounts, a)
	b.mu.Unlock()

	writeJSON(w, http.StatusCreated, a)
}

func postID(w http.ResponseWriter, r *http.Request) (int64, bool) {
	id, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil {
		http.Error(w, "invalid id", http.StatusBadRequest)
		return 0, false
	}
	return id, true
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}
