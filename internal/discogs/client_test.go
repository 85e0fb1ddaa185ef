package discogs

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/franz/discogs-tagger/internal/util"
)

const releasePayload = `{
	"id": 40522,
	"title": "House For All",
	"year": 1993,
	"country": "UK",
	"artists": [{"name": "Blunted Dummies", "id": 1}],
	"labels": [{"name": "Definitive Recordings", "catno": "12DEF006"}],
	"genres": ["Electronic"],
	"styles": ["House"],
	"formats": [{"name": "Vinyl", "qty": "1", "descriptions": ["12\""]}],
	"tracklist": [
		{"type_": "track", "position": "A", "title": "House For All (Original Mix)", "duration": "5:40"}
	]
}`

func testConfig(url string) Config {
	return Config{
		BaseURL:   url,
		RateLimit: 0,
		Retry:     &util.RetryConfig{MaxAttempts: 2, InitialWait: time.Millisecond, MaxWait: time.Millisecond},
	}
}

func TestGetRelease(t *testing.T) {
	var gotAuth, gotUA string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/releases/40522" {
			http.NotFound(w, r)
			return
		}
		gotAuth = r.Header.Get("Authorization")
		gotUA = r.Header.Get("User-Agent")
		w.Write([]byte(releasePayload))
	}))
	defer srv.Close()

	cfg := testConfig(srv.URL)
	cfg.Token = "secret"
	client := NewClient(cfg)

	rel, raw, err := client.GetRelease(context.Background(), 40522)
	if err != nil {
		t.Fatalf("GetRelease failed: %v", err)
	}
	if rel.Title != "House For All" {
		t.Errorf("Title = %q", rel.Title)
	}
	if rel.Year.String() != "1993" {
		t.Errorf("Year = %q, expected numeric year decoded as string", rel.Year)
	}
	if q, err := rel.Formats[0].Qty.Int(); err != nil || q != 1 {
		t.Errorf("Qty = %v, %v", q, err)
	}
	if rel.Tracklist[0].Type != EntryTrack {
		t.Errorf("Tracklist type = %q", rel.Tracklist[0].Type)
	}
	if len(raw) == 0 {
		t.Error("expected raw payload")
	}
	if gotAuth != "Discogs token=secret" {
		t.Errorf("Authorization = %q", gotAuth)
	}
	if gotUA != UserAgent {
		t.Errorf("User-Agent = %q", gotUA)
	}
}

func TestGetReleaseNotFound(t *testing.T) {
	srv := httptest.NewServer(http.NotFoundHandler())
	defer srv.Close()

	client := NewClient(testConfig(srv.URL))
	_, _, err := client.GetRelease(context.Background(), 1)
	if !errors.Is(err, util.ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
}

func TestGetReleaseRetriesOnRateLimit(t *testing.T) {
	var calls int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if atomic.AddInt32(&calls, 1) == 1 {
			w.WriteHeader(http.StatusTooManyRequests)
			return
		}
		w.Write([]byte(releasePayload))
	}))
	defer srv.Close()

	client := NewClient(testConfig(srv.URL))
	if _, _, err := client.GetRelease(context.Background(), 40522); err != nil {
		t.Fatalf("GetRelease failed: %v", err)
	}
	if calls != 2 {
		t.Errorf("expected 2 calls, got %d", calls)
	}
}

func TestGetReleaseBadRequestNotRetried(t *testing.T) {
	var calls int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt32(&calls, 1)
		w.WriteHeader(http.StatusBadRequest)
	}))
	defer srv.Close()

	client := NewClient(testConfig(srv.URL))
	_, _, err := client.GetRelease(context.Background(), 40522)

	var httpErr *HTTPError
	if !errors.As(err, &httpErr) || httpErr.StatusCode != http.StatusBadRequest {
		t.Fatalf("expected HTTPError 400, got %v", err)
	}
	if calls != 1 {
		t.Errorf("expected 1 call, got %d", calls)
	}
}

func TestGetReleaseInvalidID(t *testing.T) {
	client := NewClient(DefaultConfig())
	if _, _, err := client.GetRelease(context.Background(), 0); err == nil {
		t.Error("expected error for id 0")
	}
}

func TestFetchImage(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte{0xff, 0xd8, 0xff})
	}))
	defer srv.Close()

	client := NewClient(testConfig(srv.URL))
	data, err := client.FetchImage(context.Background(), srv.URL+"/img.jpg")
	if err != nil {
		t.Fatalf("FetchImage failed: %v", err)
	}
	if len(data) != 3 {
		t.Errorf("expected 3 bytes, got %d", len(data))
	}
}

func TestFlexString(t *testing.T) {
	tests := []struct {
		input    string
		expected string
	}{
		{`{"year": 1997, "title": "x", "id": 1}`, "1997"},
		{`{"year": "1997", "title": "x", "id": 1}`, "1997"},
		{`{"year": null, "title": "x", "id": 1}`, ""},
		{`{"title": "x", "id": 1}`, ""},
	}

	for _, tt := range tests {
		rel, err := DecodeRelease([]byte(tt.input))
		if err != nil {
			t.Fatalf("DecodeRelease(%s) failed: %v", tt.input, err)
		}
		if rel.Year.String() != tt.expected {
			t.Errorf("DecodeRelease(%s).Year = %q, expected %q", tt.input, rel.Year, tt.expected)
		}
	}

	if _, err := DecodeRelease([]byte(`{"year": true, "id": 1}`)); err == nil {
		t.Error("expected error for boolean year")
	}
	if _, err := DecodeRelease([]byte(`{"title": "no id"}`)); err == nil {
		t.Error("expected error for missing id")
	}
}

func TestDecodeReleaseEntryTypes(t *testing.T) {
	payload := `{"id": 1, "tracklist": [
		{"type_": "heading", "title": "Side One"},
		{"type_": "track", "position": "1", "title": "a"},
		{"type_": "index", "title": "Suite"},
		{"type_": "Track", "position": "2", "title": "b"},
		{"type_": "", "position": "3", "title": "c"}
	]}`

	rel, err := DecodeRelease([]byte(payload))
	if err != nil {
		t.Fatalf("DecodeRelease failed: %v", err)
	}

	expected := []string{EntryHeading, EntryTrack, EntryIndex, EntryTrack, ""}
	for i, e := range rel.Tracklist {
		if e.Type != expected[i] {
			t.Errorf("entry %d type = %q, expected %q", i, e.Type, expected[i])
		}
	}
}
