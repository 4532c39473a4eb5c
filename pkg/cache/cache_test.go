package cache

import (
	"context"
	"errors"
	"os"
	"strings"
	"testing"
	"time"
)

func TestNullCache(t *testing.T) {
	ctx := context.Background()
	c := NewNullCache()
	defer c.Close()

	// Get always returns miss
	data, hit, err := c.Get(ctx, "key")
	if err != nil {
		t.Fatalf("Get error: %v", err)
	}
	if hit {
		t.Error("NullCache.Get should always return miss")
	}
	if data != nil {
		t.Error("NullCache.Get should return nil data")
	}

	if err := c.Set(ctx, "key", []byte("value"), time.Hour); err != nil {
		t.Errorf("Set error: %v", err)
	}

	// Still a miss after Set
	_, hit, _ = c.Get(ctx, "key")
	if hit {
		t.Error("NullCache should not store data")
	}

	if err := c.Delete(ctx, "key"); err != nil {
		t.Errorf("Delete error: %v", err)
	}
}

func TestFileCache(t *testing.T) {
	ctx := context.Background()
	c, err := NewFileCache(t.TempDir())
	if err != nil {
		t.Fatalf("NewFileCache: %v", err)
	}
	defer c.Close()

	if _, hit, err := c.Get(ctx, "missing"); err != nil || hit {
		t.Fatalf("Get(missing) = hit %v, err %v; want miss", hit, err)
	}

	if err := c.Set(ctx, "layout:abc", []byte(`{"engine":"fdp"}`), time.Hour); err != nil {
		t.Fatalf("Set: %v", err)
	}
	data, hit, err := c.Get(ctx, "layout:abc")
	if err != nil || !hit {
		t.Fatalf("Get after Set = hit %v, err %v", hit, err)
	}
	if string(data) != `{"engine":"fdp"}` {
		t.Errorf("Get = %q", data)
	}

	if err := c.Delete(ctx, "layout:abc"); err != nil {
		t.Fatalf("Delete: %v", err)
	}
	if _, hit, _ := c.Get(ctx, "layout:abc"); hit {
		t.Error("entry still present after Delete")
	}
	if err := c.Delete(ctx, "layout:abc"); err != nil {
		t.Errorf("Delete of missing key = %v, want nil", err)
	}
}

func TestFileCacheExpiry(t *testing.T) {
	ctx := context.Background()
	c, err := NewFileCache(t.TempDir())
	if err != nil {
		t.Fatalf("NewFileCache: %v", err)
	}

	if err := c.Set(ctx, "stale", []byte("x"), time.Nanosecond); err != nil {
		t.Fatalf("Set: %v", err)
	}
	time.Sleep(5 * time.Millisecond)
	if _, hit, _ := c.Get(ctx, "stale"); hit {
		t.Error("expired entry should miss")
	}
	if _, err := os.Stat(c.path("stale")); !os.IsNotExist(err) {
		t.Error("expired entry should be removed from disk")
	}

	if err := c.Set(ctx, "forever", []byte("y"), 0); err != nil {
		t.Fatalf("Set: %v", err)
	}
	if _, hit, _ := c.Get(ctx, "forever"); !hit {
		t.Error("zero ttl entry should not expire")
	}
}

func TestFileCacheCorruptEntry(t *testing.T) {
	ctx := context.Background()
	c, err := NewFileCache(t.TempDir())
	if err != nil {
		t.Fatalf("NewFileCache: %v", err)
	}
	if err := c.Set(ctx, "k", []byte("v"), time.Hour); err != nil {
		t.Fatalf("Set: %v", err)
	}
	if err := os.WriteFile(c.path("k"), []byte("not json"), 0644); err != nil {
		t.Fatal(err)
	}
	if _, hit, err := c.Get(ctx, "k"); hit || err != nil {
		t.Errorf("corrupt entry = hit %v, err %v; want silent miss", hit, err)
	}
}

func TestFileCacheClear(t *testing.T) {
	ctx := context.Background()
	dir := t.TempDir()
	c, err := NewFileCache(dir)
	if err != nil {
		t.Fatalf("NewFileCache: %v", err)
	}
	if c.Dir() != dir {
		t.Errorf("Dir() = %q, want %q", c.Dir(), dir)
	}

	for _, k := range []string{"a", "b", "c"} {
		if err := c.Set(ctx, k, []byte(k), time.Hour); err != nil {
			t.Fatalf("Set(%s): %v", k, err)
		}
	}
	n, err := c.Clear()
	if err != nil {
		t.Fatalf("Clear: %v", err)
	}
	if n != 3 {
		t.Errorf("Clear removed %d entries, want 3", n)
	}
	if _, hit, _ := c.Get(ctx, "a"); hit {
		t.Error("entry survived Clear")
	}

	entries, _ := os.ReadDir(dir)
	if len(entries) != 0 {
		t.Errorf("Clear left %d shard directories", len(entries))
	}
}

func TestHash(t *testing.T) {
	h1 := Hash([]byte("hello"))
	h2 := Hash([]byte("hello"))
	if h1 != h2 {
		t.Error("Hash should be deterministic")
	}
	if h1 == Hash([]byte("world")) {
		t.Error("Different inputs should produce different hashes")
	}
	if len(h1) != 64 {
		t.Errorf("Hash length should be 64, got %d", len(h1))
	}
}

func TestHashJSON(t *testing.T) {
	type doc struct {
		A string
		B int
	}
	h1, err := HashJSON(doc{"x", 1})
	if err != nil {
		t.Fatalf("HashJSON: %v", err)
	}
	h2, _ := HashJSON(doc{"x", 1})
	h3, _ := HashJSON(doc{"x", 2})
	if h1 != h2 {
		t.Error("equal values should hash the same")
	}
	if h1 == h3 {
		t.Error("different values should hash differently")
	}

	if _, err := HashJSON(make(chan int)); err == nil {
		t.Error("HashJSON of a channel should fail")
	}
}

func TestDefaultKeyer(t *testing.T) {
	k := NewDefaultKeyer()
	opts := LayoutKeyOpts{Engine: "fdp", Width: 800, Height: 600}

	key := k.LayoutKey("doc1", opts)
	if !strings.HasPrefix(key, "layout:") {
		t.Errorf("LayoutKey = %q, want layout: prefix", key)
	}
	if key != k.LayoutKey("doc1", opts) {
		t.Error("LayoutKey should be deterministic")
	}

	tests := []struct {
		name string
		hash string
		opts LayoutKeyOpts
	}{
		{"other document", "doc2", opts},
		{"other engine", "doc1", LayoutKeyOpts{Engine: "dot", Width: 800, Height: 600}},
		{"detailed", "doc1", LayoutKeyOpts{Engine: "fdp", Detailed: true, Width: 800, Height: 600}},
		{"other size", "doc1", LayoutKeyOpts{Engine: "fdp", Width: 1024, Height: 600}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if k.LayoutKey(tt.hash, tt.opts) == key {
				t.Error("expected a different key")
			}
		})
	}

	svg := k.ArtifactKey("layout1", ArtifactKeyOpts{Format: "svg"})
	png := k.ArtifactKey("layout1", ArtifactKeyOpts{Format: "png", Scale: 2})
	if !strings.HasPrefix(svg, "artifact:svg:") {
		t.Errorf("ArtifactKey = %q, want artifact:svg: prefix", svg)
	}
	if svg == png {
		t.Error("formats should not share artifact keys")
	}
}

func TestScopedKeyer(t *testing.T) {
	inner := NewDefaultKeyer()
	scoped := NewScopedKeyer(inner, "api:")
	opts := LayoutKeyOpts{Engine: "fdp"}

	got := scoped.LayoutKey("doc", opts)
	want := "api:" + inner.LayoutKey("doc", opts)
	if got != want {
		t.Errorf("LayoutKey = %q, want %q", got, want)
	}

	art := scoped.ArtifactKey("l", ArtifactKeyOpts{Format: "pdf"})
	if !strings.HasPrefix(art, "api:artifact:pdf:") {
		t.Errorf("ArtifactKey = %q", art)
	}

	if NewScopedKeyer(nil, "x:").LayoutKey("doc", opts) != "x:"+inner.LayoutKey("doc", opts) {
		t.Error("nil inner keyer should fall back to the default keyer")
	}
}

func TestRetryWithBackoff(t *testing.T) {
	old := retryDelay
	retryDelay = time.Millisecond
	defer func() { retryDelay = old }()

	transient := errors.New("connection reset")
	permanent := errors.New("wrong type")

	tests := []struct {
		name      string
		errs      []error
		wantErr   error
		wantCalls int
	}{
		{"succeeds first try", []error{nil}, nil, 1},
		{"recovers after retry", []error{Retryable(transient), nil}, nil, 2},
		{"permanent error stops", []error{permanent}, permanent, 1},
		{"gives up after three", []error{Retryable(transient), Retryable(transient), Retryable(transient)}, transient, 3},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			calls := 0
			err := RetryWithBackoff(context.Background(), func() error {
				e := tt.errs[calls]
				calls++
				return e
			})
			if calls != tt.wantCalls {
				t.Errorf("calls = %d, want %d", calls, tt.wantCalls)
			}
			if tt.wantErr == nil && err != nil {
				t.Errorf("err = %v, want nil", err)
			}
			if tt.wantErr != nil && !errors.Is(err, tt.wantErr) {
				t.Errorf("err = %v, want %v", err, tt.wantErr)
			}
		})
	}
}

func TestRetryWithBackoffCancelled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	err := RetryWithBackoff(ctx, func() error {
		return Retryable(errors.New("down"))
	})
	if !errors.Is(err, context.Canceled) {
		t.Errorf("err = %v, want context.Canceled", err)
	}
}

func TestRetryable(t *testing.T) {
	if Retryable(nil) != nil {
		t.Error("Retryable(nil) should be nil")
	}
	base := errors.New("boom")
	err := Retryable(base)
	if !IsRetryable(err) {
		t.Error("IsRetryable should be true")
	}
	if !errors.Is(err, base) {
		t.Error("Retryable should unwrap to the cause")
	}
	if IsRetryable(base) {
		t.Error("plain error should not be retryable")
	}
}

func TestClassify(t *testing.T) {
	if classify(nil) != nil {
		t.Error("classify(nil) should be nil")
	}
	err := classify(errors.New("WRONGTYPE"))
	if !errors.Is(err, ErrBackend) {
		t.Error("classified error should wrap ErrBackend")
	}
	if IsRetryable(err) {
		t.Error("non-network errors should not be retryable")
	}
}

func TestNewRedisCacheRequiresAddr(t *testing.T) {
	if _, err := NewRedisCache(context.Background(), RedisOptions{}); err == nil {
		t.Error("expected error for empty address")
	}
}
