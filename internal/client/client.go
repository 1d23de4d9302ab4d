package client

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"
	"github.com/sidereusnuntius/goblog/internal/domain"
)

const (
	PostsPath = "posts"
	UsersPath = "users"
)

var ErrMalformedResponse = errors.New("malformed response")

// StatusError is returned when the backend answers with a 4xx or 5xx status.
type StatusError struct {
	Code   int
	Status string
	Body   []byte
}

func (e *StatusError) Error() string {
	status := e.Status
	if status == "" {
		status = fmt.Sprintf("%d %s", e.Code, http.StatusText(e.Code))
	}
	return fmt.Sprintf("%s: %s", status, e.Body)
}

// HttpClient talks to the REST backend. Every path is resolved against a single base URL fixed at construction.
type HttpClient struct {
	base   *url.URL
	client *http.Client
}

func New(base *url.URL, client *http.Client) *HttpClient {
	if client == nil {
		client = http.DefaultClient
	}
	return &HttpClient{
		base:   base,
		client: client,
	}
}

func (c *HttpClient) ListPosts(ctx context.Context) ([]domain.Post, error) {
	var wire []wirePost
	if err := c.do(ctx, http.MethodGet, c.base.JoinPath(PostsPath), nil, &wire); err != nil {
		return nil, err
	}

	posts := make([]domain.Post, 0, len(wire))
	for i, w := range wire {
		p, err := w.post()
		if err != nil {
			return nil, fmt.Errorf("element %d: %w", i, err)
		}
		posts = append(posts, p)
	}
	return posts, nil
}

func (c *HttpClient) CreatePost(ctx context.Context, data domain.PostData) (domain.Post, error) {
	var w wirePost
	if err := c.do(ctx, http.MethodPost, c.base.JoinPath(PostsPath), data, &w); err != nil {
		return domain.Post{}, err
	}
	return w.post()
}

func (c *HttpClient) UpdatePost(ctx context.Context, id int64, data domain.PostData) (domain.Post, error) {
	var w wirePost
	if err := c.do(ctx, http.MethodPut, c.postURL(id), data, &w); err != nil {
		return domain.Post{}, err
	}
	return w.post()
}

// DeletePost removes the post; the response body is ignored.
func (c *HttpClient) DeletePost(ctx context.Context, id int64) error {
	return c.do(ctx, http.MethodDelete, c.postURL(id), nil, nil)
}

// FindUsersByEmail returns the accounts registered with the given email; the backend is expected to return
// at most one. The returned accounts still carry the password and must not be kept in client state.
func (c *HttpClient) FindUsersByEmail(ctx context.Context, email string) ([]domain.Account, error) {
	u := c.base.JoinPath(UsersPath)
	u.RawQuery = url.Values{"email": {email}}.Encode()

	var wire []wireAccount
	if err := c.do(ctx, http.MethodGet, u, nil, &wire); err != nil {
		return nil, err
	}

	accounts := make([]domain.Account, 0, len(wire))
	for i, w := range wire {
		a, err := w.account()
		if err != nil {
			return nil, fmt.Errorf("element %d: %w", i, err)
		}
		accounts = append(accounts, a)
	}
	return accounts, nil
}

func (c *HttpClient) CreateUser(ctx context.Context, account domain.NewAccount) (domain.Account, error) {
	var w wireAccount
	if err := c.do(ctx, http.MethodPost, c.base.JoinPath(UsersPath), account, &w); err != nil {
		return domain.Account{}, err
	}
	return w.account()
}

// CountUsers returns the number of records in the users collection.
func (c *HttpClient) CountUsers(ctx context.Context) (int, error) {
	var records []json.RawMessage
	if err := c.do(ctx, http.MethodGet, c.base.JoinPath(UsersPath), nil, &records); err != nil {
		return 0, err
	}
	return len(records), nil
}

func (c *HttpClient) postURL(id int64) *url.URL {
	return c.base.JoinPath(PostsPath, strconv.FormatInt(id, 10))
}

// do sends body, if not nil, as JSON and decodes the response into out, if not nil.
func (c *HttpClient) do(ctx context.Context, method string, u *url.URL, body any, out any) error {
	var reader io.Reader
	if body != nil {
		b, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("failed to marshal request data: %w", err)
		}
		reader = bytes.NewReader(b)
	}

	req, err := http.NewRequestWithContext(ctx, method, u.String(), reader)
	if err != nil {
		return fmt.Errorf("failed to create request: %w", err)
	}

	requestID := uuid.NewString()
	req.Header.Set("Accept", "application/json")
	req.Header.Set("X-Request-ID", requestID)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	log.Debug().Str("method", method).Str("url", u.String()).Str("request id", requestID).Msg("api request")
	res, err := c.client.Do(req)
	if err != nil {
		log.Error().Err(err).Str("request id", requestID).Msg("failed to do request")
		return err
	}
	defer res.Body.Close()

	if res.StatusCode >= http.StatusBadRequest {
		content, readErr := io.ReadAll(io.LimitReader(res.Body, 4096))
		event := log.Error().Int("code", res.StatusCode).Str("request id", requestID)
		if readErr != nil {
			event.Err(readErr)
		}
		event.Bytes("response body", content).Msg("api error")
		return &StatusError{
			Code:   res.StatusCode,
			Status: res.Status,
			Body:   content,
		}
	}

	if out == nil {
		_, _ = io.Copy(io.Discard, res.Body)
		return nil
	}

	if err := json.NewDecoder(res.Body).Decode(out); err != nil {
		log.Error().Err(err).Str("request id", requestID).Msg("response body unmarshaling error")
		return fmt.Errorf("%w: %s", ErrMalformedResponse, err)
	}
	return nil
}
