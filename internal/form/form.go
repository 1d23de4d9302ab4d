// Package form drives the create and edit post forms: field values, validation and the submission
// lifecycle, independently of how the form is rendered.
package form

import (
	"context"
	"errors"
	"fmt"
	"maps"
	"strings"
	"sync"
	"unicode/utf8"

	"github.com/rs/zerolog/log"
	"github.com/sidereusnuntius/goblog/internal/diff"
	"github.com/sidereusnuntius/goblog/internal/domain"
)

//go:generate mockgen -source=form.go -destination=../mocks/mock_form.go -package=mocks

const (
	FieldTitle   = "title"
	FieldContent = "content"
	FieldSubmit  = "submit"
)

const (
	MsgTitleRequired   = "Title is required"
	MsgContentRequired = "Content is required"
	MsgSaveFailed      = "Failed to save post. Please try again."
)

const (
	DefaultMaxTitleLength   = 100
	DefaultMaxContentLength = 2000
)

var (
	ErrInvalid    = errors.New("form has invalid fields")
	ErrSubmitting = errors.New("form is already being submitted")
	ErrSaveFailed = errors.New("failed to save post")
	ErrClosed     = errors.New("form is closed")
)

// Saver persists the form's post. It is implemented by the post store.
type Saver interface {
	Create(ctx context.Context, data domain.PostData) (domain.Post, error)
	Update(ctx context.Context, id int64, data domain.PostData) (domain.Post, error)
}

type Phase int

const (
	Editing Phase = iota
	Submitting
	Failed
)

func (p Phase) String() string {
	switch p {
	case Editing:
		return "editing"
	case Submitting:
		return "submitting"
	case Failed:
		return "error"
	}
	return fmt.Sprintf("Phase(%d)", int(p))
}

type Options struct {
	// Post seeds the form in edit mode. A nil Post puts the form in create mode.
	Post *domain.Post
	// OnSuccess is called with the saved post after a successful submission.
	OnSuccess        func(domain.Post)
	MaxTitleLength   int
	MaxContentLength int
}

type Form struct {
	saver      Saver
	original   *domain.Post
	onSuccess  func(domain.Post)
	maxTitle   int
	maxContent int

	mu         sync.Mutex
	title      string
	content    string
	submitting bool
	errors     map[string]string
	closed     bool
}

func New(saver Saver, opts Options) *Form {
	f := &Form{
		saver:      saver,
		onSuccess:  opts.OnSuccess,
		maxTitle:   opts.MaxTitleLength,
		maxContent: opts.MaxContentLength,
		errors:     make(map[string]string),
	}
	if f.maxTitle <= 0 {
		f.maxTitle = DefaultMaxTitleLength
	}
	if f.maxContent <= 0 {
		f.maxContent = DefaultMaxContentLength
	}
	if opts.Post != nil {
		p := *opts.Post
		f.original = &p
		f.title = p.Title
		f.content = p.Content
	}
	return f
}

// SetTitle stores value cut to the maximum title length. No validation happens until submission.
func (f *Form) SetTitle(value string) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.title = truncate(value, f.maxTitle)
}

// SetContent stores value cut to the maximum content length.
func (f *Form) SetContent(value string) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.content = truncate(value, f.maxContent)
}

func (f *Form) Title() string {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.title
}

func (f *Form) Content() string {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.content
}

func (f *Form) IsEdit() bool {
	return f.original != nil
}

func (f *Form) MaxTitleLength() int   { return f.maxTitle }
func (f *Form) MaxContentLength() int { return f.maxContent }

func (f *Form) IsSubmitting() bool {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.submitting
}

// Errors returns a copy of the field errors, keyed by FieldTitle, FieldContent and FieldSubmit.
func (f *Form) Errors() map[string]string {
	f.mu.Lock()
	defer f.mu.Unlock()
	return maps.Clone(f.errors)
}

func (f *Form) Phase() Phase {
	f.mu.Lock()
	defer f.mu.Unlock()
	switch {
	case f.submitting:
		return Submitting
	case f.errors[FieldSubmit] != "":
		return Failed
	default:
		return Editing
	}
}

// Validate recomputes the field errors from the current values and reports whether there are none.
func (f *Form) Validate() bool {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.validateLocked()
}

func (f *Form) validateLocked() bool {
	errs := make(map[string]string)
	if strings.TrimSpace(f.title) == "" {
		errs[FieldTitle] = MsgTitleRequired
	}
	if strings.TrimSpace(f.content) == "" {
		errs[FieldContent] = MsgContentRequired
	}
	f.errors = errs
	return len(errs) == 0
}

// Changes returns a patch from the seeded content to the current one. In create mode the patch is
// against an empty document.
func (f *Form) Changes() string {
	f.mu.Lock()
	defer f.mu.Unlock()
	var before string
	if f.original != nil {
		before = f.original.Content
	}
	return diff.FindPatches(before, f.content)
}

// Submit validates the form and, if it is valid, creates or updates the post. Field values are left
// untouched on success. On failure the submit error is set and the error is returned wrapped in
// ErrSaveFailed; the success callback only runs on success.
func (f *Form) Submit(ctx context.Context) error {
	f.mu.Lock()
	if f.closed {
		f.mu.Unlock()
		return ErrClosed
	}
	if f.submitting {
		f.mu.Unlock()
		return ErrSubmitting
	}
	if !f.validateLocked() {
		f.mu.Unlock()
		return ErrInvalid
	}
	f.submitting = true
	data := domain.PostData{Title: f.title, Content: f.content}
	f.mu.Unlock()

	var (
		saved domain.Post
		err   error
	)
	if f.original != nil {
		saved, err = f.saver.Update(ctx, f.original.ID, data)
	} else {
		saved, err = f.saver.Create(ctx, data)
	}

	f.mu.Lock()
	f.submitting = false
	closed := f.closed
	if err != nil && !closed {
		f.errors = map[string]string{FieldSubmit: MsgSaveFailed}
	}
	f.mu.Unlock()

	if err != nil {
		log.Error().Err(err).Msg("failed to save post")
		return fmt.Errorf("%w: %w", ErrSaveFailed, err)
	}
	if closed {
		log.Debug().Int64("id", saved.ID).Msg("post saved after its form was closed")
		return nil
	}
	if f.onSuccess != nil {
		f.onSuccess(saved)
	}
	return nil
}

// Close detaches the form from its view. A submission still in flight will update the post store when it
// completes, but neither the form nor the success callback.
func (f *Form) Close() {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.closed = true
}

func truncate(s string, max int) string {
	if utf8.RuneCountInString(s) <= max {
		return s
	}
	n := 0
	for i := range s {
		if n == max {
			return s[:i]
		}
		n++
	}
	return s
}
