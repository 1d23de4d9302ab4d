package memstore

import (
	"errors"
	"testing"

	"github.com/sidereusnuntius/goblog/internal/storage"
)

func TestRoundTrip(t *testing.T) {
	s := New()
	value := []byte(`{"isAuthenticated":true}`)
	if err := s.Set("authState", value); err != nil {
		t.Fatalf("Set() error: %v", err)
	}
	value[0] = 'x'

	got, err := s.Get("authState")
	if err != nil {
		t.Fatalf("Get() error: %v", err)
	}
	if string(got) != `{"isAuthenticated":true}` {
		t.Errorf("stored value was aliased: %s", got)
	}

	if err := s.Clear("authState"); err != nil {
		t.Fatalf("Clear() error: %v", err)
	}
	if err := s.Clear("authState"); !errors.Is(err, storage.ErrNotExist) {
		t.Errorf("expected ErrNotExist on second Clear(), got %v", err)
	}
	if _, err := s.Get("authState"); !errors.Is(err, storage.ErrNotExist) {
		t.Errorf("expected ErrNotExist, got %v", err)
	}
}
