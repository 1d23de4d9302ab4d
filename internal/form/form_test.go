package form

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/sidereusnuntius/goblog/internal/domain"
	"github.com/sidereusnuntius/goblog/internal/mocks"
	"go.uber.org/mock/gomock"
)

func TestValidate(t *testing.T) {
	cases := []struct {
		Casename string
		Title    string
		Content  string
		Expected map[string]string
	}{
		{"both empty", "", "", map[string]string{FieldTitle: MsgTitleRequired, FieldContent: MsgContentRequired}},
		{"whitespace title", "   ", "body", map[string]string{FieldTitle: MsgTitleRequired}},
		{"whitespace content", "Title", "\n\t", map[string]string{FieldContent: MsgContentRequired}},
		{"valid", "Title", "body", map[string]string{}},
	}

	for _, c := range cases {
		t.Run(c.Casename, func(t *testing.T) {
			f := New(nil, Options{})
			f.SetTitle(c.Title)
			f.SetContent(c.Content)

			ok := f.Validate()
			if ok != (len(c.Expected) == 0) {
				t.Errorf("Validate returned %v", ok)
			}
			if diff := cmp.Diff(c.Expected, f.Errors()); diff != "" {
				t.Errorf("unexpected errors (-want +got):\n%s", diff)
			}
		})
	}
}

func TestInvalidSubmitMakesNoRequest(t *testing.T) {
	ctrl := gomock.NewController(t)
	saver := mocks.NewMockSaver(ctrl)

	f := New(saver, Options{})
	f.SetContent("body")

	if err := f.Submit(context.Background()); !errors.Is(err, ErrInvalid) {
		t.Fatalf("expected ErrInvalid, got %v", err)
	}
	if diff := cmp.Diff(map[string]string{FieldTitle: MsgTitleRequired}, f.Errors()); diff != "" {
		t.Errorf("unexpected errors:\n%s", diff)
	}
	if f.Phase() != Editing {
		t.Errorf("expected phase %v, got %v", Editing, f.Phase())
	}
}

func TestSubmitCreate(t *testing.T) {
	ctx := context.Background()
	ctrl := gomock.NewController(t)
	saver := mocks.NewMockSaver(ctrl)

	saved := domain.Post{ID: 7, Title: "Hi", Content: "There"}
	saver.EXPECT().Create(ctx, saved.Data()).Return(saved, nil)

	var got []domain.Post
	f := New(saver, Options{OnSuccess: func(p domain.Post) { got = append(got, p) }})
	f.SetTitle("Hi")
	f.SetContent("There")

	if err := f.Submit(ctx); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if diff := cmp.Diff([]domain.Post{saved}, got); diff != "" {
		t.Errorf("unexpected callback calls:\n%s", diff)
	}
	if f.IsSubmitting() {
		t.Error("form still submitting")
	}
	if f.Title() != "Hi" || f.Content() != "There" {
		t.Errorf("fields changed after submit: %q %q", f.Title(), f.Content())
	}
}

func TestSubmitEdit(t *testing.T) {
	ctx := context.Background()
	ctrl := gomock.NewController(t)
	saver := mocks.NewMockSaver(ctrl)

	original := domain.Post{ID: 3, Title: "Old", Content: "Body"}
	edited := domain.Post{ID: 3, Title: "New", Content: "Body"}
	saver.EXPECT().Update(ctx, int64(3), edited.Data()).Return(edited, nil)

	called := false
	f := New(saver, Options{Post: &original, OnSuccess: func(p domain.Post) { called = p == edited }})
	if !f.IsEdit() || f.Title() != "Old" || f.Content() != "Body" {
		t.Fatalf("form not seeded from the post: %q %q", f.Title(), f.Content())
	}
	f.SetTitle("New")

	if err := f.Submit(ctx); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !called {
		t.Error("success callback not called with the saved post")
	}
}

func TestSubmitFailure(t *testing.T) {
	ctx := context.Background()
	ctrl := gomock.NewController(t)
	saver := mocks.NewMockSaver(ctrl)

	cause := errors.New("500 Internal Server Error")
	saver.EXPECT().Create(ctx, gomock.Any()).Return(domain.Post{}, cause)

	calls := 0
	f := New(saver, Options{OnSuccess: func(domain.Post) { calls++ }})
	f.SetTitle("Hi")
	f.SetContent("There")

	err := f.Submit(ctx)
	if !errors.Is(err, ErrSaveFailed) || !errors.Is(err, cause) {
		t.Fatalf("expected ErrSaveFailed wrapping the cause, got %v", err)
	}
	if diff := cmp.Diff(map[string]string{FieldSubmit: MsgSaveFailed}, f.Errors()); diff != "" {
		t.Errorf("unexpected errors:\n%s", diff)
	}
	if f.Phase() != Failed {
		t.Errorf("expected phase %v, got %v", Failed, f.Phase())
	}
	if calls != 0 {
		t.Fatalf("callback called on failure")
	}

	// A retry that succeeds clears the submit error.
	saver.EXPECT().Create(ctx, gomock.Any()).Return(domain.Post{ID: 1, Title: "Hi", Content: "There"}, nil)
	if err := f.Submit(ctx); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(f.Errors()) != 0 {
		t.Errorf("expected no errors, got %v", f.Errors())
	}
	if calls != 1 || f.Phase() != Editing {
		t.Errorf("expected one callback and phase %v, got %d and %v", Editing, calls, f.Phase())
	}
}

func TestSubmitWhileSubmitting(t *testing.T) {
	ctx := context.Background()
	ctrl := gomock.NewController(t)
	saver := mocks.NewMockSaver(ctrl)

	var f *Form
	saver.EXPECT().Create(ctx, gomock.Any()).DoAndReturn(func(context.Context, domain.PostData) (domain.Post, error) {
		if !f.IsSubmitting() || f.Phase() != Submitting {
			t.Error("expected the form to be submitting")
		}
		if err := f.Submit(ctx); !errors.Is(err, ErrSubmitting) {
			t.Errorf("expected ErrSubmitting, got %v", err)
		}
		return domain.Post{ID: 1}, nil
	})

	f = New(saver, Options{})
	f.SetTitle("Hi")
	f.SetContent("There")
	if err := f.Submit(ctx); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
}

func TestCloseDuringSubmit(t *testing.T) {
	ctx := context.Background()
	ctrl := gomock.NewController(t)
	saver := mocks.NewMockSaver(ctrl)

	var f *Form
	saver.EXPECT().Create(ctx, gomock.Any()).DoAndReturn(func(context.Context, domain.PostData) (domain.Post, error) {
		f.Close()
		return domain.Post{}, errors.New("timeout")
	})

	f = New(saver, Options{OnSuccess: func(domain.Post) { t.Error("callback called") }})
	f.SetTitle("Hi")
	f.SetContent("There")

	if err := f.Submit(ctx); !errors.Is(err, ErrSaveFailed) {
		t.Fatalf("expected ErrSaveFailed, got %v", err)
	}
	if _, ok := f.Errors()[FieldSubmit]; ok {
		t.Error("closed form received a submit error")
	}
	if err := f.Submit(ctx); !errors.Is(err, ErrClosed) {
		t.Errorf("expected ErrClosed, got %v", err)
	}
}

func TestTruncation(t *testing.T) {
	f := New(nil, Options{MaxTitleLength: 5, MaxContentLength: 3})

	f.SetTitle("abcdefgh")
	f.SetContent("ñañaña")

	if f.Title() != "abcde" {
		t.Errorf("expected title %q, got %q", "abcde", f.Title())
	}
	if f.Content() != "ñañ" {
		t.Errorf("expected content %q, got %q", "ñañ", f.Content())
	}

	d := New(nil, Options{})
	d.SetTitle(strings.Repeat("x", 150))
	if n := len(d.Title()); n != DefaultMaxTitleLength {
		t.Errorf("expected %d characters, got %d", DefaultMaxTitleLength, n)
	}
	if d.MaxContentLength() != DefaultMaxContentLength {
		t.Errorf("unexpected content limit %d", d.MaxContentLength())
	}
}

func TestChanges(t *testing.T) {
	original := domain.Post{ID: 1, Title: "T", Content: "hello world"}
	f := New(nil, Options{Post: &original})

	if got := f.Changes(); got != "" {
		t.Errorf("expected no changes, got %q", got)
	}

	f.SetContent("hello there")
	if got := f.Changes(); !strings.HasPrefix(got, "@@ -") {
		t.Errorf("unexpected patch %q", got)
	}
}
