package discogs

import (
	"context"
	"database/sql"
	"errors"
	"path/filepath"
	"testing"
	"time"

	_ "modernc.org/sqlite"

	"github.com/franz/discogs-tagger/internal/util"
)

type fakeFetcher struct {
	calls int
	err   error
}

func (f *fakeFetcher) GetRelease(ctx context.Context, id int) (*Release, []byte, error) {
	f.calls++
	if f.err != nil {
		return nil, nil, f.err
	}
	raw := []byte(releasePayload)
	rel, err := DecodeRelease(raw)
	return rel, raw, err
}

func openTestCache(t *testing.T, fetcher Fetcher, maxAge time.Duration) *Cache {
	t.Helper()
	db, err := sql.Open("sqlite", filepath.Join(t.TempDir(), "cache.db"))
	if err != nil {
		t.Fatalf("failed to open db: %v", err)
	}
	t.Cleanup(func() { db.Close() })

	cache := NewCache(db, fetcher, maxAge)
	if err := cache.EnsureSchema(); err != nil {
		t.Fatalf("EnsureSchema failed: %v", err)
	}
	return cache
}

func TestCacheHitAvoidsFetch(t *testing.T) {
	fetcher := &fakeFetcher{}
	cache := openTestCache(t, fetcher, 0)
	ctx := context.Background()

	for i := 0; i < 3; i++ {
		rel, err := cache.GetRelease(ctx, 40522)
		if err != nil {
			t.Fatalf("GetRelease failed: %v", err)
		}
		if rel.ID != 40522 {
			t.Fatalf("unexpected release %d", rel.ID)
		}
	}

	if fetcher.calls != 1 {
		t.Errorf("expected 1 fetch, got %d", fetcher.calls)
	}

	stats, err := cache.GetStats()
	if err != nil {
		t.Fatalf("GetStats failed: %v", err)
	}
	if stats.Entries != 1 || stats.TotalHits != 2 {
		t.Errorf("unexpected stats %+v", stats)
	}
	if stats.Bytes == 0 {
		t.Error("expected payload bytes to be counted")
	}
}

func TestCacheRefreshAndClear(t *testing.T) {
	fetcher := &fakeFetcher{}
	cache := openTestCache(t, fetcher, 0)
	ctx := context.Background()

	if _, err := cache.GetRelease(ctx, 40522); err != nil {
		t.Fatal(err)
	}
	if _, err := cache.Refresh(ctx, 40522); err != nil {
		t.Fatal(err)
	}
	if fetcher.calls != 2 {
		t.Errorf("expected refresh to refetch, calls=%d", fetcher.calls)
	}

	n, err := cache.ClearOldEntries(time.Hour)
	if err != nil {
		t.Fatal(err)
	}
	if n != 0 {
		t.Errorf("fresh entry should not be pruned, removed %d", n)
	}

	n, err = cache.ClearCache()
	if err != nil {
		t.Fatal(err)
	}
	if n != 1 {
		t.Errorf("expected 1 removed entry, got %d", n)
	}
}

func TestCacheFetchErrorPropagates(t *testing.T) {
	cache := openTestCache(t, &fakeFetcher{err: util.ErrNotFound}, 0)
	if _, err := cache.GetRelease(context.Background(), 5); !errors.Is(err, util.ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
}

func TestCacheWithoutFetcher(t *testing.T) {
	cache := openTestCache(t, nil, 0)
	if _, err := cache.GetRelease(context.Background(), 5); !errors.Is(err, util.ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
}
