package redis

import (
	"context"
	"errors"
	"testing"

	"github.com/felixgeelhaar/codeclip/internal/storage"
)

func TestNew_DefaultPrefix(t *testing.T) {
	s := New(nil, "")
	if s.prefix != DefaultPrefix {
		t.Errorf("prefix = %q; want %q", s.prefix, DefaultPrefix)
	}

	s = New(nil, "custom:")
	if s.prefix != "custom:" {
		t.Errorf("prefix = %q; want custom:", s.prefix)
	}
}

func TestStore_RejectsInvalidKeys(t *testing.T) {
	s := New(nil, "")
	ctx := context.Background()

	if _, err := s.Get(ctx, "a b"); !errors.Is(err, storage.ErrInvalidKey) {
		t.Errorf("Get() error = %v; want ErrInvalidKey", err)
	}
	if err := s.Put(ctx, "../x", nil); !errors.Is(err, storage.ErrInvalidKey) {
		t.Errorf("Put() error = %v; want ErrInvalidKey", err)
	}
	if err := s.Delete(ctx, ""); !errors.Is(err, storage.ErrInvalidKey) {
		t.Errorf("Delete() error = %v; want ErrInvalidKey", err)
	}
}
