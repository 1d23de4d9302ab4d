package client

import (
	"fmt"

	"github.com/sidereusnuntius/goblog/internal/domain"
)

// The wire types mirror the backend records with pointer fields, so that a missing field can be told
// apart from a zero value.

type wirePost struct {
	ID      *int64  `json:"id"`
	Title   *string `json:"title"`
	Content *string `json:"content"`
}

func (w wirePost) post() (domain.Post, error) {
	switch {
	case w.ID == nil:
		return domain.Post{}, fmt.Errorf("%w: post without id", ErrMalformedResponse)
	case w.Title == nil:
		return domain.Post{}, fmt.Errorf("%w: post %d without title", ErrMalformedResponse, *w.ID)
	case w.Content == nil:
		return domain.Post{}, fmt.Errorf("%w: post %d without content", ErrMalformedResponse, *w.ID)
	}
	return domain.Post{
		ID:      *w.ID,
		Title:   *w.Title,
		Content: *w.Content,
	}, nil
}

type wireAccount struct {
	ID        *int64  `json:"id"`
	Email     *string `json:"email"`
	Password  string  `json:"password"`
	CreatedAt string  `json:"createdAt"`
}

func (w wireAccount) account() (domain.Account, error) {
	switch {
	case w.ID == nil:
		return domain.Account{}, fmt.Errorf("%w: user without id", ErrMalformedResponse)
	case w.Email == nil || *w.Email == "":
		return domain.Account{}, fmt.Errorf("%w: user %d without email", ErrMalformedResponse, *w.ID)
	}
	return domain.Account{
		User: domain.User{
			ID:        *w.ID,
			Email:     *w.Email,
			CreatedAt: w.CreatedAt,
		},
		Password: w.Password,
	}, nil
}
