package client

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"net/url"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/sidereusnuntius/goblog/internal/apitest"
	"github.com/sidereusnuntius/goblog/internal/domain"
)

var ctx = context.Background()

func setup(t *testing.T) (*HttpClient, *apitest.Backend) {
	t.Helper()
	backend := apitest.New()
	server := backend.Serve()
	t.Cleanup(server.Close)

	base, err := url.Parse(server.URL)
	if err != nil {
		t.Fatal(err)
	}
	return New(base, server.Client()), backend
}

func TestPostsLifecycle(t *testing.T) {
	c, backend := setup(t)
	backend.SeedPosts(
		domain.Post{ID: 3, Title: "third", Content: "c"},
		domain.Post{ID: 1, Title: "first", Content: "a"},
	)

	posts, err := c.ListPosts(ctx)
	if err != nil {
		t.Fatalf("ListPosts() error: %v", err)
	}
	expected := []domain.Post{{ID: 3, Title: "third", Content: "c"}, {ID: 1, Title: "first", Content: "a"}}
	if diff := cmp.Diff(expected, posts); diff != "" {
		t.Errorf("server order not preserved (-want +got):\n%s", diff)
	}

	created, err := c.CreatePost(ctx, domain.PostData{Title: "T", Content: "C"})
	if err != nil {
		t.Fatalf("CreatePost() error: %v", err)
	}
	if created.ID != 4 || created.Title != "T" || created.Content != "C" {
		t.Errorf("unexpected created post %+v", created)
	}

	updated, err := c.UpdatePost(ctx, 1, domain.PostData{Title: "first!", Content: "A"})
	if err != nil {
		t.Fatalf("UpdatePost() error: %v", err)
	}
	if diff := cmp.Diff(domain.Post{ID: 1, Title: "first!", Content: "A"}, updated); diff != "" {
		t.Errorf("unexpected updated post:\n%s", diff)
	}

	if err := c.DeletePost(ctx, 3); err != nil {
		t.Fatalf("DeletePost() error: %v", err)
	}
	if n := len(backend.Posts()); n != 2 {
		t.Errorf("expected 2 posts left on the server, got %d", n)
	}

	for _, r := range backend.Requests() {
		if r.RequestID == "" {
			t.Errorf("%s %s was sent without a request id", r.Method, r.Path)
		}
	}
}

func TestStatusError(t *testing.T) {
	c, backend := setup(t)
	backend.Fail(http.MethodPut, "/posts/{id}", http.StatusInternalServerError)

	_, err := c.UpdatePost(ctx, 1, domain.PostData{Title: "x", Content: "y"})
	var statusErr *StatusError
	if !errors.As(err, &statusErr) {
		t.Fatalf("expected *StatusError, got %v", err)
	}
	if statusErr.Code != http.StatusInternalServerError {
		t.Errorf("expected code 500, got %d", statusErr.Code)
	}

	_, err = c.UpdatePost(ctx, 99, domain.PostData{})
	if !errors.As(err, &statusErr) {
		t.Fatalf("expected *StatusError, got %v", err)
	}
}

func TestMalformedResponses(t *testing.T) {
	cases := []struct {
		Casename string
		Body     string
	}{
		{"not json", `<html>oops</html>`},
		{"object instead of array", `{"id": 1}`},
		{"missing id", `[{"title": "t", "content": "c"}]`},
		{"missing content", `[{"id": 1, "title": "t"}]`},
		{"string id", `[{"id": "a1", "title": "t", "content": "c"}]`},
	}

	for _, c := range cases {
		t.Run(c.Casename, func(t *testing.T) {
			server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				w.Write([]byte(c.Body))
			}))
			defer server.Close()
			base, _ := url.Parse(server.URL)

			_, err := New(base, server.Client()).ListPosts(ctx)
			if !errors.Is(err, ErrMalformedResponse) {
				t.Errorf("expected ErrMalformedResponse, got %v", err)
			}
		})
	}
}

func TestUsers(t *testing.T) {
	c, backend := setup(t)
	backend.SeedAccounts(domain.Account{
		User:     domain.User{ID: 7, Email: "a+b@example.com", CreatedAt: "2024-01-01T00:00:00.000Z"},
		Password: "secret",
	})

	found, err := c.FindUsersByEmail(ctx, "a+b@example.com")
	if err != nil {
		t.Fatalf("FindUsersByEmail() error: %v", err)
	}
	if len(found) != 1 || found[0].ID != 7 || found[0].Password != "secret" {
		t.Fatalf("unexpected accounts %+v", found)
	}

	none, err := c.FindUsersByEmail(ctx, "nobody@example.com")
	if err != nil {
		t.Fatalf("FindUsersByEmail() error: %v", err)
	}
	if len(none) != 0 {
		t.Errorf("expected no accounts, got %+v", none)
	}

	created, err := c.CreateUser(ctx, domain.NewAccount{Email: "new@example.com", Password: "pw", CreatedAt: "now"})
	if err != nil {
		t.Fatalf("CreateUser() error: %v", err)
	}
	if created.ID != 8 || created.Email != "new@example.com" {
		t.Errorf("unexpected created account %+v", created)
	}

	n, err := c.CountUsers(ctx)
	if err != nil {
		t.Fatalf("CountUsers() error: %v", err)
	}
	if n != 2 {
		t.Errorf("expected 2 users, got %d", n)
	}
}

func TestBasePathIsKept(t *testing.T) {
	var got string
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		got = r.URL.Path
		w.Write([]byte(`[]`))
	}))
	defer server.Close()

	base, _ := url.Parse(server.URL + "/api/v1")
	if _, err := New(base, server.Client()).ListPosts(ctx); err != nil {
		t.Fatal(err)
	}
	if got != "/api/v1/posts" {
		t.Errorf("expected path /api/v1/posts, got %s", got)
	}
}
