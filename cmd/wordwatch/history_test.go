package main

import (
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/nao1215/wordwatch/internal/report"
	"github.com/nao1215/wordwatch/internal/store"
)

// seedHistory records a few match events in a new database under dataDir.
func seedHistory(t *testing.T, dataDir string) {
	t.Helper()

	st, err := store.Open(dataDir, store.DefaultOptions())
	if err != nil {
		t.Fatal(err)
	}
	defer st.Close()

	ctx := t.Context()
	if err := st.RecordMatches(ctx, "run-1", "https://example.com/news", map[string]int{"urgent": 2, "breaking": 1}); err != nil {
		t.Fatal(err)
	}
	if err := st.RecordMatches(ctx, "run-2", "https://other.org/", map[string]int{"urgent": 1}); err != nil {
		t.Fatal(err)
	}
}

func TestHistoryCmd(t *testing.T) {
	t.Parallel()

	t.Run("text output", func(t *testing.T) {
		t.Parallel()
		dataDir := t.TempDir()
		seedHistory(t, dataDir)

		out, err := runCLI(t, dataDir, "history")
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		for _, want := range []string{"Match History", "Matches:   4", "Runs:      2", "urgent"} {
			if !strings.Contains(out, want) {
				t.Errorf("expected %q in output:\n%s", want, out)
			}
		}
	})

	t.Run("json with location filter", func(t *testing.T) {
		t.Parallel()
		dataDir := t.TempDir()
		seedHistory(t, dataDir)

		out, err := runCLI(t, dataDir, "history", "--json", "--location", "example.com")
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		var h report.History
		if err := json.Unmarshal([]byte(out), &h); err != nil {
			t.Fatalf("invalid JSON: %v\n%s", err, out)
		}
		if len(h.Events) != 2 {
			t.Errorf("expected 2 events, got %d", len(h.Events))
		}
		if h.TotalMatches() != 3 {
			t.Errorf("expected 3 matches, got %d", h.TotalMatches())
		}
		if h.Filter != "location~example.com" {
			t.Errorf("unexpected filter %q", h.Filter)
		}
	})

	t.Run("markdown to file", func(t *testing.T) {
		t.Parallel()
		dataDir := t.TempDir()
		seedHistory(t, dataDir)
		output := filepath.Join(t.TempDir(), "history.md")

		if _, err := runCLI(t, dataDir, "history", "--markdown", "-o", output); err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		content, err := os.ReadFile(output)
		if err != nil {
			t.Fatal(err)
		}
		if !strings.Contains(string(content), "# wordwatch Match History") {
			t.Errorf("unexpected markdown:\n%s", content)
		}
	})

	t.Run("json and markdown conflict", func(t *testing.T) {
		t.Parallel()
		dataDir := t.TempDir()
		seedHistory(t, dataDir)
		if _, err := runCLI(t, dataDir, "history", "--json", "--markdown"); err == nil {
			t.Error("expected error for conflicting formats")
		}
	})

	t.Run("missing database", func(t *testing.T) {
		t.Parallel()
		_, err := runCLI(t, filepath.Join(t.TempDir(), "none"), "history")
		if err == nil || !strings.Contains(err.Error(), "database not found") {
			t.Errorf("expected database not found error, got %v", err)
		}
	})

	t.Run("negative limit", func(t *testing.T) {
		t.Parallel()
		if _, err := runCLI(t, t.TempDir(), "history", "--limit", "-1"); err == nil {
			t.Error("expected error for negative limit")
		}
	})
}

func TestParseSince(t *testing.T) {
	t.Parallel()

	now := time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC)
	tests := []struct {
		name    string
		input   string
		want    time.Time
		wantErr bool
	}{
		{name: "empty", input: "", want: time.Time{}},
		{name: "duration", input: "90m", want: now.Add(-90 * time.Minute)},
		{name: "rfc3339", input: "2024-04-30T08:00:00Z", want: time.Date(2024, 4, 30, 8, 0, 0, 0, time.UTC)},
		{name: "negative duration", input: "-1h", wantErr: true},
		{name: "garbage", input: "yesterday", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			got, err := parseSince(tt.input, now)
			if tt.wantErr {
				if err == nil {
					t.Errorf("expected error, got %v", got)
				}
				return
			}
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if !got.Equal(tt.want) {
				t.Errorf("got %v, want %v", got, tt.want)
			}
		})
	}
}

func TestDescribeFilter(t *testing.T) {
	t.Parallel()

	if got := describeFilter("", "", 0); got != "all" {
		t.Errorf("got %q, want all", got)
	}
	if got := describeFilter("a.com", "24h", 5); got != "location~a.com, since 24h, limit 5" {
		t.Errorf("unexpected description %q", got)
	}
}
