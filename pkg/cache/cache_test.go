package cache

import (
	"context"
	"errors"
	"net"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"
)

func TestNullCache(t *testing.T) {
	ctx := context.Background()
	c := NewNullCache()
	defer c.Close()

	if err := c.Set(ctx, "key", []byte("value"), time.Hour); err != nil {
		t.Errorf("Set error: %v", err)
	}
	data, hit, err := c.Get(ctx, "key")
	if err != nil || hit || data != nil {
		t.Errorf("Get() = %q, %v, %v; want a miss", data, hit, err)
	}
	if err := c.Delete(ctx, "key"); err != nil {
		t.Errorf("Delete error: %v", err)
	}
}

func TestFileCache(t *testing.T) {
	ctx := context.Background()
	dir := t.TempDir()
	c, err := NewFileCache(dir)
	if err != nil {
		t.Fatal(err)
	}

	if _, hit, err := c.Get(ctx, "missing"); hit || err != nil {
		t.Fatalf("Get(missing) = %v, %v", hit, err)
	}

	if err := c.Set(ctx, "order:abc", []byte(`[2,0,1]`), time.Hour); err != nil {
		t.Fatal(err)
	}
	data, hit, err := c.Get(ctx, "order:abc")
	if err != nil || !hit || string(data) != "[2,0,1]" {
		t.Fatalf("Get() = %q, %v, %v", data, hit, err)
	}

	h := Hash([]byte("order:abc"))
	if _, err := os.Stat(filepath.Join(dir, h[:2], h[2:]+".json")); err != nil {
		t.Errorf("entry not sharded by hash prefix: %v", err)
	}

	if err := c.Delete(ctx, "order:abc"); err != nil {
		t.Fatal(err)
	}
	if _, hit, _ := c.Get(ctx, "order:abc"); hit {
		t.Error("deleted entry still present")
	}
	if err := c.Delete(ctx, "order:abc"); err != nil {
		t.Errorf("deleting a missing key should succeed: %v", err)
	}
}

func TestFileCacheExpiry(t *testing.T) {
	ctx := context.Background()
	c, _ := NewFileCache(t.TempDir())
	now := time.Date(2026, 1, 1, 12, 0, 0, 0, time.UTC)
	c.now = func() time.Time { return now }

	_ = c.Set(ctx, "short", []byte("x"), time.Minute)
	_ = c.Set(ctx, "forever", []byte("y"), 0)

	now = now.Add(2 * time.Minute)
	if _, hit, _ := c.Get(ctx, "short"); hit {
		t.Error("expired entry should miss")
	}
	if _, err := os.Stat(c.path("short")); !os.IsNotExist(err) {
		t.Error("expired entry should be removed")
	}
	if _, hit, _ := c.Get(ctx, "forever"); !hit {
		t.Error("entry without ttl should never expire")
	}
}

func TestFileCacheCorruptEntry(t *testing.T) {
	ctx := context.Background()
	c, _ := NewFileCache(t.TempDir())
	path := c.path("bad")
	_ = os.MkdirAll(filepath.Dir(path), 0o755)
	if err := os.WriteFile(path, []byte("{not json"), 0o644); err != nil {
		t.Fatal(err)
	}
	if _, hit, err := c.Get(ctx, "bad"); hit || err != nil {
		t.Errorf("corrupt entry: hit=%v err=%v, want a clean miss", hit, err)
	}
}

func TestFileCacheClear(t *testing.T) {
	ctx := context.Background()
	c, _ := NewFileCache(t.TempDir())
	for _, k := range []string{"a", "b", "c"} {
		_ = c.Set(ctx, k, []byte(k), 0)
	}
	n, err := c.Clear()
	if err != nil || n != 3 {
		t.Fatalf("Clear() = %d, %v; want 3", n, err)
	}
	entries, _ := os.ReadDir(c.Dir())
	if len(entries) != 0 {
		t.Errorf("%d entries left after Clear", len(entries))
	}
}

func TestOpen(t *testing.T) {
	ctx := context.Background()
	tests := []struct {
		name    string
		opts    Options
		want    string
		wantErr bool
	}{
		{"Default", Options{}, "null", false},
		{"DirImpliesFile", Options{Dir: t.TempDir()}, "file", false},
		{"None", Options{Backend: "NONE", Dir: t.TempDir()}, "null", false},
		{"FileWithoutDir", Options{Backend: "file"}, "", true},
		{"Unknown", Options{Backend: "memcached"}, "", true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c, err := Open(ctx, tt.opts)
			if (err != nil) != tt.wantErr {
				t.Fatalf("Open() error = %v, wantErr %v", err, tt.wantErr)
			}
			if err != nil {
				return
			}
			defer c.Close()
			switch c.(type) {
			case NullCache:
				if tt.want != "null" {
					t.Errorf("got NullCache, want %s", tt.want)
				}
			case *FileCache:
				if tt.want != "file" {
					t.Errorf("got FileCache, want %s", tt.want)
				}
			default:
				t.Errorf("unexpected backend %T", c)
			}
		})
	}
}

func TestRedisCacheUnreachable(t *testing.T) {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	_, err := NewRedisCache(ctx, RedisOptions{Addr: "127.0.0.1:1", DialTimeout: 200 * time.Millisecond})
	if err == nil {
		t.Fatal("NewRedisCache() should fail without a server")
	}
	if !strings.Contains(err.Error(), "127.0.0.1:1") {
		t.Errorf("error should name the address: %v", err)
	}
}

func TestClassify(t *testing.T) {
	if classify(nil) != nil {
		t.Error("classify(nil) should be nil")
	}
	netErr := &net.OpError{Op: "dial", Net: "tcp", Err: errors.New("refused")}
	err := classify(netErr)
	if !IsRetryable(err) || !errors.Is(err, ErrNetwork) {
		t.Errorf("network error should be retryable: %v", err)
	}
	plain := errors.New("WRONGTYPE")
	if classify(plain) != plain {
		t.Error("non-network errors pass through")
	}
}

func TestHash(t *testing.T) {
	h1 := Hash([]byte("hello"))
	if h1 != Hash([]byte("hello")) {
		t.Error("Hash should be deterministic")
	}
	if h1 == Hash([]byte("world")) {
		t.Error("different inputs should produce different hashes")
	}
	if len(h1) != 64 {
		t.Errorf("Hash length = %d, want 64", len(h1))
	}
}

func TestDefaultKeyer(t *testing.T) {
	k := NewDefaultKeyer()

	type tuning struct {
		Seed      uint64 `json:"seed"`
		BatchSize int    `json:"batch_size"`
	}
	ok1 := k.OrderKey("g1", OrderKeyOpts{Solver: tuning{1, 4}, MaxBatches: 10})
	ok2 := k.OrderKey("g1", OrderKeyOpts{Solver: tuning{2, 4}, MaxBatches: 10})
	if ok1 == ok2 {
		t.Error("different seeds should produce different order keys")
	}
	if k.OrderKey("g1", OrderKeyOpts{Solver: tuning{1, 4}, MaxBatches: 1}) == ok1 {
		t.Error("a smaller search budget should produce a different order key")
	}
	if k.OrderKey("g1", OrderKeyOpts{Solver: tuning{1, 4}, MaxBatches: 10, Timeout: time.Second}) == ok1 {
		t.Error("a timeout should produce a different order key")
	}
	if !strings.HasPrefix(ok1, "order:") || len(ok1) != len("order:")+64 {
		t.Errorf("OrderKey() = %q", ok1)
	}
	if k.OrderKey("g2", OrderKeyOpts{Solver: tuning{1, 4}, MaxBatches: 10}) == ok1 {
		t.Error("different graphs should produce different order keys")
	}

	dk1 := k.DiagramKey("g1", DiagramKeyOpts{Order: []int{0, 1}, Width: 800})
	dk2 := k.DiagramKey("g1", DiagramKeyOpts{Order: []int{1, 0}, Width: 800})
	dk3 := k.DiagramKey("g1", DiagramKeyOpts{Order: []int{0, 1}, Width: 800, Columns: 2})
	if dk1 == dk2 || dk1 == dk3 {
		t.Error("order and columns must change the diagram key")
	}
	if dk1 != k.DiagramKey("g1", DiagramKeyOpts{Order: []int{0, 1}, Width: 800}) {
		t.Error("DiagramKey should be deterministic")
	}
}

func TestScopedKeyer(t *testing.T) {
	inner := NewDefaultKeyer()
	scoped := NewScopedKeyer(inner, "tenant:")
	opts := OrderKeyOpts{MaxBatches: 9}
	if got, want := scoped.OrderKey("g", opts), "tenant:"+inner.OrderKey("g", opts); got != want {
		t.Errorf("OrderKey() = %q, want %q", got, want)
	}

	nilInner := NewScopedKeyer(nil, "p:")
	if got := nilInner.DiagramKey("g", DiagramKeyOpts{}); !strings.HasPrefix(got, "p:diagram:") {
		t.Errorf("nil inner should fall back to the default keyer: %q", got)
	}
}

func TestRetryableError(t *testing.T) {
	if Retryable(nil) != nil {
		t.Error("Retryable(nil) should return nil")
	}
	err := Retryable(ErrNetwork)
	if !IsRetryable(err) || !errors.Is(err, ErrNetwork) {
		t.Errorf("wrapped error = %v", err)
	}
	if err.Error() != ErrNetwork.Error() {
		t.Errorf("message = %q", err.Error())
	}
	if IsRetryable(errors.New("plain")) {
		t.Error("plain errors are not retryable")
	}
}

func TestRetryWithBackoff(t *testing.T) {
	old := retryDelay
	retryDelay = time.Millisecond
	defer func() { retryDelay = old }()
	ctx := context.Background()

	tests := []struct {
		name      string
		failures  int
		retryable bool
		wantCalls int
		wantErr   bool
	}{
		{"FirstTry", 0, true, 1, false},
		{"RecoversAfterRetry", 1, true, 2, false},
		{"GivesUp", 5, true, 3, true},
		{"NotRetryable", 5, false, 1, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			calls := 0
			err := RetryWithBackoff(ctx, func() error {
				calls++
				if calls > tt.failures {
					return nil
				}
				if tt.retryable {
					return Retryable(ErrNetwork)
				}
				return ErrNetwork
			})
			if (err != nil) != tt.wantErr || calls != tt.wantCalls {
				t.Errorf("err = %v after %d calls, want err=%v after %d", err, calls, tt.wantErr, tt.wantCalls)
			}
		})
	}
}

func TestRetryWithBackoffContextCancel(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	err := RetryWithBackoff(ctx, func() error { return Retryable(ErrNetwork) })
	if !errors.Is(err, context.Canceled) {
		t.Errorf("err = %v, want context.Canceled", err)
	}
}
