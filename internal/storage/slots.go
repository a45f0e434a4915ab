// Package storage defines the key-value slot abstraction that progress and
// goal data are persisted through. A slot holds one JSON document under a
// fixed key, the same shape a browser's local storage offers.
package storage

import (
	"context"
	"errors"
	"fmt"
	"regexp"
)

var (
	// ErrNotFound is returned when a slot has never been written
	ErrNotFound = errors.New("not found")

	// ErrInvalidKey is returned for keys outside [A-Za-z0-9_.-]
	ErrInvalidKey = errors.New("invalid slot key")
)

// Slots is a minimal key-value store for JSON documents
type Slots interface {
	// Get returns the raw bytes stored under key, or ErrNotFound.
	Get(ctx context.Context, key string) ([]byte, error)

	// Put replaces the value stored under key.
	Put(ctx context.Context, key string, value []byte) error

	// Delete removes key. Deleting a missing key returns ErrNotFound.
	Delete(ctx context.Context, key string) error
}

// Lister is implemented by backends that can enumerate their keys
type Lister interface {
	Keys(ctx context.Context) ([]string, error)
}

// Watcher is implemented by backends that can report slot changes made by
// other processes. The channel carries changed keys and closes with ctx.
type Watcher interface {
	Watch(ctx context.Context) (<-chan string, error)
}

var keyPattern = regexp.MustCompile(`^[A-Za-z0-9_.-]{1,128}$`)

// ValidateKey checks that key is safe to use as a file name or row id.
func ValidateKey(key string) error {
	if !keyPattern.MatchString(key) || key == "." || key == ".." {
		return fmt.Errorf("%w: %q", ErrInvalidKey, key)
	}
	return nil
}
