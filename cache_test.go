package pagemill

import (
	"context"
	"errors"
	"io"
	"log"
	"os"
	"path/filepath"
	"sync"
	"testing"
	"time"
)

type fakeSource struct {
	mu    sync.Mutex
	calls int
	files map[string]string
	err   error
	block chan struct{}
}

func (s *fakeSource) ReadFile(ctx context.Context, name string) ([]byte, error) {
	s.mu.Lock()
	s.calls++
	s.mu.Unlock()
	if s.block != nil {
		<-s.block
	}
	if s.err != nil {
		return nil, s.err
	}
	b, ok := s.files[name]
	if !ok {
		return nil, errors.New("not found")
	}
	return []byte(b), nil
}

func (s *fakeSource) count() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.calls
}

func discardLogger() *log.Logger {
	return log.New(io.Discard, "", 0)
}

func TestResolveFetchAndPersist(t *testing.T) {
	dir := t.TempDir()
	src := &fakeSource{files: map[string]string{"a/b.txt": "hello"}}
	store := NewStore(dir, discardLogger())

	b, err := store.Resolve(context.Background(), "a/b.txt", src)
	if err != nil {
		t.Fatal(err)
	}
	if string(b) != "hello" {
		t.Fatalf("got %q, want %q", b, "hello")
	}

	disk, err := os.ReadFile(filepath.Join(dir, "a", "b.txt"))
	if err != nil {
		t.Fatal(err)
	}
	if string(disk) != "hello" {
		t.Fatalf("cached %q, want %q", disk, "hello")
	}
}

func TestResolveCacheHit(t *testing.T) {
	dir := t.TempDir()
	src := &fakeSource{files: map[string]string{"a/b.txt": "hello"}}
	store := NewStore(dir, discardLogger())

	first, err := store.Resolve(context.Background(), "a/b.txt", src)
	if err != nil {
		t.Fatal(err)
	}
	second, err := store.Resolve(context.Background(), "a/b.txt", src)
	if err != nil {
		t.Fatal(err)
	}
	if string(first) != string(second) {
		t.Fatalf("hit returned %q, want %q", second, first)
	}
	if got := src.count(); got != 1 {
		t.Fatalf("source calls = %d, want 1", got)
	}
}

func TestResolveFetchErrorNoWrite(t *testing.T) {
	dir := t.TempDir()
	src := &fakeSource{err: errors.New("remote broken")}
	store := NewStore(dir, discardLogger())

	_, err := store.Resolve(context.Background(), "a/b.txt", src)
	var fe *FetchError
	if !errors.As(err, &fe) {
		t.Fatalf("got %v, want FetchError", err)
	}
	if _, err := os.Stat(filepath.Join(dir, "a", "b.txt")); !errors.Is(err, os.ErrNotExist) {
		t.Fatalf("cache file exists after failed fetch")
	}
}

func TestResolvePersistError(t *testing.T) {
	if os.Geteuid() == 0 {
		t.Skip("directory permissions are not enforced for root")
	}
	dir := t.TempDir()
	// A read-only cache dir leaves the local read a clean miss but fails the
	// directory creation after the fetch.
	if err := os.Chmod(dir, 0o555); err != nil {
		t.Fatal(err)
	}
	t.Cleanup(func() { os.Chmod(dir, 0o755) })
	src := &fakeSource{files: map[string]string{"a/b.txt": "hello"}}
	store := NewStore(dir, discardLogger())

	_, err := store.Resolve(context.Background(), "a/b.txt", src)
	var pe *PersistError
	if !errors.As(err, &pe) {
		t.Fatalf("got %v, want PersistError", err)
	}
	if got := src.count(); got != 1 {
		t.Fatalf("source calls = %d, want 1", got)
	}
	if _, err := os.Stat(filepath.Join(dir, "a")); !errors.Is(err, os.ErrNotExist) {
		t.Fatal("cache dir gained an entry after failed persist")
	}
}

func TestResolveLocalReadErrorEscalates(t *testing.T) {
	dir := t.TempDir()
	// A directory at the entry path fails the read with something other than
	// not-exist, which must surface instead of falling back to the source.
	if err := os.MkdirAll(filepath.Join(dir, "a.md"), 0o755); err != nil {
		t.Fatal(err)
	}
	src := &fakeSource{files: map[string]string{"a.md": "hello"}}
	store := NewStore(dir, discardLogger())

	if _, err := store.Resolve(context.Background(), "a.md", src); err == nil {
		t.Fatal("expected error")
	}
	if got := src.count(); got != 0 {
		t.Fatalf("source calls = %d, want 0", got)
	}
}

func TestResolveRejectsEscapingIdentifier(t *testing.T) {
	store := NewStore(t.TempDir(), discardLogger())
	src := &fakeSource{}

	for _, name := range []string{"../secret", "/etc/passwd", ""} {
		if _, err := store.Resolve(context.Background(), name, src); err == nil {
			t.Errorf("Resolve(%q) succeeded, want error", name)
		}
	}
	if got := src.count(); got != 0 {
		t.Fatalf("source calls = %d, want 0", got)
	}
}

func TestResolveConcurrentFetchShared(t *testing.T) {
	dir := t.TempDir()
	src := &fakeSource{
		files: map[string]string{"a.md": "x"},
		block: make(chan struct{}),
	}
	store := NewStore(dir, discardLogger())

	var wg sync.WaitGroup
	for i := 0; i < 2; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			b, err := store.Resolve(context.Background(), "a.md", src)
			if err != nil {
				t.Error(err)
				return
			}
			if string(b) != "x" {
				t.Errorf("got %q, want %q", b, "x")
			}
		}()
	}
	time.Sleep(50 * time.Millisecond)
	close(src.block)
	wg.Wait()

	if got := src.count(); got != 1 {
		t.Fatalf("source calls = %d, want 1", got)
	}
}
