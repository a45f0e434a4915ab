package local

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"github.com/felixgeelhaar/codeclip/internal/storage"
)

func TestNewStore_CreatesDirectory(t *testing.T) {
	tmpDir := t.TempDir()
	newDir := filepath.Join(tmpDir, "subdir", "nested")

	store, err := NewStore(newDir)
	if err != nil {
		t.Fatalf("NewStore() error = %v", err)
	}
	if store.Path() != newDir {
		t.Errorf("Path() = %v, want %v", store.Path(), newDir)
	}

	info, err := os.Stat(newDir)
	if err != nil {
		t.Fatalf("directory not created: %v", err)
	}
	if !info.IsDir() {
		t.Error("expected directory, got file")
	}
}

func TestStore_PutGet(t *testing.T) {
	ctx := context.Background()
	store, _ := NewStore(t.TempDir())

	if err := store.Put(ctx, "codeclip_goals", []byte(`{"weekly":[]}`)); err != nil {
		t.Fatalf("Put() error = %v", err)
	}

	got, err := store.Get(ctx, "codeclip_goals")
	if err != nil {
		t.Fatalf("Get() error = %v", err)
	}
	want := "{\n  \"weekly\": []\n}\n"
	if string(got) != want {
		t.Errorf("Get() = %q, want %q", got, want)
	}
}

func TestStore_PutNonJSON(t *testing.T) {
	ctx := context.Background()
	store, _ := NewStore(t.TempDir())

	if err := store.Put(ctx, "raw", []byte("not json")); err != nil {
		t.Fatalf("Put() error = %v", err)
	}
	got, _ := store.Get(ctx, "raw")
	if string(got) != "not json" {
		t.Errorf("Get() = %q, want raw bytes", got)
	}
}

func TestStore_GetMissing(t *testing.T) {
	store, _ := NewStore(t.TempDir())

	_, err := store.Get(context.Background(), "missing")
	if !errors.Is(err, storage.ErrNotFound) {
		t.Errorf("Get() error = %v, want ErrNotFound", err)
	}
}

func TestStore_InvalidKey(t *testing.T) {
	ctx := context.Background()
	store, _ := NewStore(t.TempDir())

	if err := store.Put(ctx, "../escape", []byte("{}")); !errors.Is(err, storage.ErrInvalidKey) {
		t.Errorf("Put() error = %v, want ErrInvalidKey", err)
	}
	if _, err := store.Get(ctx, "a/b"); !errors.Is(err, storage.ErrInvalidKey) {
		t.Errorf("Get() error = %v, want ErrInvalidKey", err)
	}
}

func TestStore_Delete(t *testing.T) {
	ctx := context.Background()
	store, _ := NewStore(t.TempDir())

	_ = store.Put(ctx, "item", []byte("{}"))
	if err := store.Delete(ctx, "item"); err != nil {
		t.Fatalf("Delete() error = %v", err)
	}
	if _, err := store.Get(ctx, "item"); !errors.Is(err, storage.ErrNotFound) {
		t.Errorf("Get() after Delete error = %v, want ErrNotFound", err)
	}
	if err := store.Delete(ctx, "item"); !errors.Is(err, storage.ErrNotFound) {
		t.Errorf("Delete() missing error = %v, want ErrNotFound", err)
	}
}

func TestStore_Keys(t *testing.T) {
	ctx := context.Background()
	dir := t.TempDir()
	store, _ := NewStore(dir)

	_ = store.Put(ctx, "b", []byte("{}"))
	_ = store.Put(ctx, "a", []byte("{}"))
	_ = os.WriteFile(filepath.Join(dir, "notes.txt"), []byte("x"), 0644)
	_ = os.Mkdir(filepath.Join(dir, "sub"), 0755)

	keys, err := store.Keys(ctx)
	if err != nil {
		t.Fatalf("Keys() error = %v", err)
	}
	if len(keys) != 2 || keys[0] != "a" || keys[1] != "b" {
		t.Errorf("Keys() = %v, want [a b]", keys)
	}
}

func TestStore_PutLeavesNoTempFiles(t *testing.T) {
	ctx := context.Background()
	dir := t.TempDir()
	store, _ := NewStore(dir)

	for i := 0; i < 3; i++ {
		_ = store.Put(ctx, "slot", []byte(`{"n":1}`))
	}

	entries, _ := os.ReadDir(dir)
	if len(entries) != 1 {
		names := []string{}
		for _, e := range entries {
			names = append(names, e.Name())
		}
		t.Errorf("directory entries = %v, want only slot.json", names)
	}
}

func TestStore_ConcurrentAccess(t *testing.T) {
	ctx := context.Background()
	store, _ := NewStore(t.TempDir())

	var wg sync.WaitGroup
	for i := 0; i < 10; i++ {
		wg.Add(2)
		go func() {
			defer wg.Done()
			_ = store.Put(ctx, "shared", []byte(`{"ok":true}`))
		}()
		go func() {
			defer wg.Done()
			_, _ = store.Get(ctx, "shared")
		}()
	}
	wg.Wait()

	if _, err := store.Get(ctx, "shared"); err != nil {
		t.Errorf("Get() error = %v", err)
	}
}

func TestStore_Watch(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	store, _ := NewStore(t.TempDir())
	changes, err := store.Watch(ctx)
	if err != nil {
		t.Fatalf("Watch() error = %v", err)
	}

	if err := store.Put(ctx, "codeclip_progress_data", []byte("{}")); err != nil {
		t.Fatalf("Put() error = %v", err)
	}

	select {
	case key := <-changes:
		if key != "codeclip_progress_data" {
			t.Errorf("change key = %q, want codeclip_progress_data", key)
		}
	case <-time.After(5 * time.Second):
		t.Fatal("no change reported")
	}

	cancel()
	for range changes {
	}
}
