package source

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"net/url"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"sync/atomic"
	"testing"
	"time"
)

// collector gathers emitted snapshots.
type collector struct {
	mu    sync.Mutex
	snaps []*Snapshot
	ch    chan *Snapshot
}

func newCollector() *collector {
	return &collector{ch: make(chan *Snapshot, 16)}
}

func (c *collector) emit(s *Snapshot) {
	c.mu.Lock()
	c.snaps = append(c.snaps, s)
	c.mu.Unlock()
	c.ch <- s
}

func (c *collector) next(t *testing.T) *Snapshot {
	t.Helper()
	select {
	case s := <-c.ch:
		return s
	case <-time.After(5 * time.Second):
		t.Fatal("timed out waiting for snapshot")
		return nil
	}
}

func TestFingerprint(t *testing.T) {
	t.Parallel()

	a := Fingerprint([]byte("<p>a</p>"))
	b := Fingerprint([]byte("<p>b</p>"))
	if len(a) != 64 {
		t.Errorf("expected 64 hex chars, got %d", len(a))
	}
	if a == b {
		t.Error("different bodies should have different fingerprints")
	}
	if a != Fingerprint([]byte("<p>a</p>")) {
		t.Error("fingerprint should be deterministic")
	}
}

func TestChangeDetector(t *testing.T) {
	t.Parallel()

	var d changeDetector
	first := NewSnapshot("x", []byte("one"))
	if !d.changed(first) {
		t.Error("first snapshot should count as changed")
	}
	if d.changed(NewSnapshot("x", []byte("one"))) {
		t.Error("identical content should not count as changed")
	}
	if !d.changed(NewSnapshot("x", []byte("two"))) {
		t.Error("new content should count as changed")
	}
}

func TestHTTPSourceFetch(t *testing.T) {
	t.Parallel()

	t.Run("sends headers and reads body", func(t *testing.T) {
		t.Parallel()

		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if r.Header.Get("User-Agent") != "wordwatch-test" {
				t.Errorf("unexpected User-Agent %q", r.Header.Get("User-Agent"))
			}
			if !strings.Contains(r.Header.Get("Accept"), "text/html") {
				t.Errorf("unexpected Accept %q", r.Header.Get("Accept"))
			}
			w.Header().Set("Content-Type", "text/html")
			_, _ = w.Write([]byte("<html><body>hello</body></html>"))
		}))
		defer server.Close()

		src, err := NewHTTPSource(server.URL, WithUserAgent("wordwatch-test"))
		if err != nil {
			t.Fatalf("NewHTTPSource failed: %v", err)
		}
		snap, err := src.Fetch(context.Background())
		if err != nil {
			t.Fatalf("Fetch failed: %v", err)
		}
		if !strings.Contains(string(snap.Body), "hello") {
			t.Errorf("unexpected body %q", snap.Body)
		}
		if snap.Hash != Fingerprint(snap.Body) {
			t.Error("hash does not match body")
		}
	})

	t.Run("limits body size", func(t *testing.T) {
		t.Parallel()

		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
			_, _ = w.Write([]byte(strings.Repeat("x", 1000)))
		}))
		defer server.Close()

		src, err := NewHTTPSource(server.URL, WithMaxBodySize(10))
		if err != nil {
			t.Fatalf("NewHTTPSource failed: %v", err)
		}
		snap, err := src.Fetch(context.Background())
		if err != nil {
			t.Fatalf("Fetch failed: %v", err)
		}
		if len(snap.Body) != 10 {
			t.Errorf("expected 10 bytes, got %d", len(snap.Body))
		}
	})

	t.Run("non-2xx is an error", func(t *testing.T) {
		t.Parallel()

		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
			w.WriteHeader(http.StatusServiceUnavailable)
		}))
		defer server.Close()

		src, err := NewHTTPSource(server.URL)
		if err != nil {
			t.Fatalf("NewHTTPSource failed: %v", err)
		}
		if _, err := src.Fetch(context.Background()); !errors.Is(err, ErrUnexpectedStatus) {
			t.Errorf("expected ErrUnexpectedStatus, got %v", err)
		}
	})

	t.Run("location follows redirects", func(t *testing.T) {
		t.Parallel()

		mux := http.NewServeMux()
		mux.HandleFunc("/old", func(w http.ResponseWriter, r *http.Request) {
			http.Redirect(w, r, "/new", http.StatusFound)
		})
		mux.HandleFunc("/new", func(w http.ResponseWriter, _ *http.Request) {
			_, _ = w.Write([]byte("moved"))
		})
		server := httptest.NewServer(mux)
		defer server.Close()

		src, err := NewHTTPSource(server.URL + "/old")
		if err != nil {
			t.Fatalf("NewHTTPSource failed: %v", err)
		}
		snap, err := src.Fetch(context.Background())
		if err != nil {
			t.Fatalf("Fetch failed: %v", err)
		}
		if snap.Location != server.URL+"/new" {
			t.Errorf("expected redirected location, got %q", snap.Location)
		}
		if src.Location() != server.URL+"/old" {
			t.Errorf("configured location should not change, got %q", src.Location())
		}
	})
}

func TestDocumentLocation(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name  string
		input string
		want  string
	}{
		{name: "plain", input: "https://example.com/news", want: "https://example.com/news"},
		{name: "host lowercased", input: "HTTPS://Example.COM/News", want: "https://example.com/News"},
		{name: "path stays encoded", input: "https://example.com/%D0%BD%D0%BE%D0%B2%D0%BE%D1%81%D1%82%D0%B8/a%20b/", want: "https://example.com/%D0%BD%D0%BE%D0%B2%D0%BE%D1%81%D1%82%D0%B8/a%20b/"},
		{name: "query kept", input: "http://Example.com:8080/a?q=1", want: "http://example.com:8080/a?q=1"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			u, err := url.Parse(tt.input)
			if err != nil {
				t.Fatal(err)
			}
			if got := DocumentLocation(u); got != tt.want {
				t.Errorf("got %q, want %q", got, tt.want)
			}
		})
	}
}

func TestHTTPSourceRun(t *testing.T) {
	t.Parallel()

	var hits atomic.Int32
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		n := hits.Add(1)
		switch {
		case n == 2:
			// A transient failure must not end the polling.
			w.WriteHeader(http.StatusInternalServerError)
		case n < 4:
			_, _ = w.Write([]byte("version one"))
		default:
			_, _ = w.Write([]byte("version two"))
		}
	}))
	defer server.Close()

	src, err := NewHTTPSource(server.URL, WithPollInterval(20*time.Millisecond))
	if err != nil {
		t.Fatalf("NewHTTPSource failed: %v", err)
	}

	ctx, cancel := context.WithCancel(context.Background())
	c := newCollector()
	done := make(chan error, 1)
	go func() { done <- src.Run(ctx, c.emit) }()

	if got := string(c.next(t).Body); got != "version one" {
		t.Errorf("expected first version, got %q", got)
	}
	if got := string(c.next(t).Body); got != "version two" {
		t.Errorf("expected second version, got %q", got)
	}
	cancel()

	if err := <-done; !errors.Is(err, context.Canceled) {
		t.Errorf("expected context.Canceled, got %v", err)
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	if len(c.snaps) != 2 {
		t.Errorf("unchanged content should not be emitted again, got %d snapshots", len(c.snaps))
	}
}

func TestHeaderInjectingTransport(t *testing.T) {
	t.Parallel()

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Header.Get("Cookie") != "session=abc" {
			t.Errorf("unexpected Cookie %q", r.Header.Get("Cookie"))
		}
		if r.Header.Get("X-Token") != "secret" {
			t.Errorf("unexpected X-Token %q", r.Header.Get("X-Token"))
		}
	}))
	defer server.Close()

	client, err := NewHTTPClient(ClientConfig{
		Timeout: 5 * time.Second,
		Cookie:  "session=abc",
		Headers: map[string]string{"X-Token": "secret"},
	})
	if err != nil {
		t.Fatalf("NewHTTPClient failed: %v", err)
	}
	req, err := http.NewRequestWithContext(context.Background(), http.MethodGet, server.URL, nil)
	if err != nil {
		t.Fatalf("NewRequest failed: %v", err)
	}
	resp, err := client.Do(req)
	if err != nil {
		t.Fatalf("request failed: %v", err)
	}
	resp.Body.Close()
}

func TestNewHTTPClientProxy(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name    string
		proxy   string
		wantErr bool
	}{
		{name: "no proxy", proxy: "", wantErr: false},
		{name: "valid proxy", proxy: "127.0.0.1:9050", wantErr: false},
		{name: "missing port", proxy: "127.0.0.1", wantErr: true},
		{name: "port out of range", proxy: "127.0.0.1:70000", wantErr: true},
		{name: "empty host", proxy: ":9050", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			_, err := NewHTTPClient(ClientConfig{Proxy: tt.proxy})
			if (err != nil) != tt.wantErr {
				t.Errorf("NewHTTPClient(%q) error = %v, wantErr %v", tt.proxy, err, tt.wantErr)
			}
			if tt.wantErr && !errors.Is(err, ErrInvalidProxyAddress) {
				t.Errorf("expected ErrInvalidProxyAddress, got %v", err)
			}
		})
	}
}

func TestFileSource(t *testing.T) {
	t.Parallel()

	t.Run("emits initial content and rewrites", func(t *testing.T) {
		t.Parallel()

		path := filepath.Join(t.TempDir(), "page.html")
		if err := os.WriteFile(path, []byte("<p>first</p>"), 0600); err != nil {
			t.Fatalf("failed to write file: %v", err)
		}

		src, err := NewFileSource(path)
		if err != nil {
			t.Fatalf("NewFileSource failed: %v", err)
		}
		if !strings.HasPrefix(src.Location(), "file://") {
			t.Errorf("unexpected location %q", src.Location())
		}

		ctx, cancel := context.WithCancel(context.Background())
		defer cancel()
		c := newCollector()
		done := make(chan error, 1)
		go func() { done <- src.Run(ctx, c.emit) }()

		if got := string(c.next(t).Body); got != "<p>first</p>" {
			t.Errorf("unexpected initial body %q", got)
		}

		if err := os.WriteFile(path, []byte("<p>second</p>"), 0600); err != nil {
			t.Fatalf("failed to rewrite file: %v", err)
		}
		// A write may be observed as truncate then write; wait for the
		// final content.
		deadline := time.After(5 * time.Second)
		for {
			select {
			case s := <-c.ch:
				if string(s.Body) == "<p>second</p>" {
					cancel()
					if err := <-done; !errors.Is(err, context.Canceled) {
						t.Errorf("expected context.Canceled, got %v", err)
					}
					return
				}
			case <-deadline:
				t.Fatal("timed out waiting for rewritten content")
			}
		}
	})

	t.Run("missing file fails", func(t *testing.T) {
		t.Parallel()

		src, err := NewFileSource(filepath.Join(t.TempDir(), "missing.html"))
		if err != nil {
			t.Fatalf("NewFileSource failed: %v", err)
		}
		if err := src.Run(context.Background(), func(*Snapshot) {}); err == nil {
			t.Error("expected error for missing file")
		}
	})
}

func TestOpen(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name     string
		target   string
		wantHTTP bool
		wantErr  bool
	}{
		{name: "http url", target: "http://example.com/", wantHTTP: true},
		{name: "https url", target: "https://example.com/news", wantHTTP: true},
		{name: "file url", target: "file:///tmp/page.html"},
		{name: "plain path", target: "page.html"},
		{name: "unsupported scheme", target: "ftp://example.com/", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			src, err := Open(tt.target, nil, nil)
			if tt.wantErr {
				if !errors.Is(err, ErrUnsupportedScheme) {
					t.Errorf("expected ErrUnsupportedScheme, got %v", err)
				}
				return
			}
			if err != nil {
				t.Fatalf("Open failed: %v", err)
			}
			_, isHTTP := src.(*HTTPSource)
			if isHTTP != tt.wantHTTP {
				t.Errorf("Open(%q) HTTP = %v, want %v", tt.target, isHTTP, tt.wantHTTP)
			}
		})
	}
}
