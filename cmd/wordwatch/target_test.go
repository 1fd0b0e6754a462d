package main

import (
	"errors"
	"net/url"
	"strings"
	"testing"

	"github.com/nao1215/wordwatch/internal/source"
)

func TestTargetCmd(t *testing.T) {
	t.Parallel()

	dataDir := t.TempDir()

	out, err := runCLI(t, dataDir, "target")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !strings.Contains(out, "scanning is paused") {
		t.Errorf("expected paused notice, got %q", out)
	}

	if _, err := runCLI(t, dataDir, "target", "example.com/news"); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	out, err = runCLI(t, dataDir, "target")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if strings.TrimSpace(out) != "example.com/news" {
		t.Errorf("expected stored target, got %q", out)
	}

	if _, err := runCLI(t, dataDir, "target", "--from", "https://Example.com/live/?a=1"); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	out, _ = runCLI(t, dataDir, "target")
	if strings.TrimSpace(out) != "example.com/live" {
		t.Errorf("expected derived target, got %q", out)
	}

	if _, err := runCLI(t, dataDir, "target", "--clear"); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	out, _ = runCLI(t, dataDir, "target")
	if !strings.Contains(out, "scanning is paused") {
		t.Errorf("expected cleared target, got %q", out)
	}

	if _, err := runCLI(t, dataDir, "target", "a.com", "--clear"); err == nil {
		t.Error("expected error combining a site with --clear")
	}
}

func TestSiteFromURL(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name    string
		input   string
		want    string
		wantErr bool
	}{
		{name: "host only", input: "https://example.com", want: "example.com"},
		{name: "trailing slash", input: "https://example.com/", want: "example.com"},
		{name: "path and query", input: "http://example.com/a/b/?q=1#x", want: "example.com/a/b"},
		{name: "port kept", input: "http://localhost:8080/x", want: "localhost:8080/x"},
		{name: "host lowercased", input: "https://News.Example.COM/Top", want: "news.example.com/Top"},
		{
			name:  "encoded path stays encoded",
			input: "https://example.com/%D0%BD%D0%BE%D0%B2%D0%BE%D1%81%D1%82%D0%B8/a%20b/",
			want:  "example.com/%D0%BD%D0%BE%D0%B2%D0%BE%D1%81%D1%82%D0%B8/a%20b",
		},
		{name: "no host", input: "example.com/a", wantErr: true},
		{name: "bad url", input: "http://[::1", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			got, err := siteFromURL(tt.input)
			if tt.wantErr {
				if err == nil {
					t.Errorf("expected error, got %q", got)
				}
				return
			}
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if got != tt.want {
				t.Errorf("got %q, want %q", got, tt.want)
			}
		})
	}
}

func TestSiteFromURLMatchesPageLocation(t *testing.T) {
	t.Parallel()

	pages := []string{
		"https://example.com/%D0%BD%D0%BE%D0%B2%D0%BE%D1%81%D1%82%D0%B8/a%20b/",
		"https://Example.com/Live/",
		"http://localhost:8080/path/to/page.html",
	}
	for _, page := range pages {
		site, err := siteFromURL(page)
		if err != nil {
			t.Fatalf("siteFromURL(%q): %v", page, err)
		}
		u, err := url.Parse(page)
		if err != nil {
			t.Fatal(err)
		}
		if location := source.DocumentLocation(u); !strings.Contains(location, site) {
			t.Errorf("site %q derived from %q is not contained in location %q", site, page, location)
		}
	}
}

func TestColorCmd(t *testing.T) {
	t.Parallel()

	dataDir := t.TempDir()

	out, err := runCLI(t, dataDir, "color")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if strings.TrimSpace(out) != "#ffeb3b" {
		t.Errorf("expected default color, got %q", out)
	}

	if _, err := runCLI(t, dataDir, "color", "orange"); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	out, _ = runCLI(t, dataDir, "color")
	if strings.TrimSpace(out) != "orange" {
		t.Errorf("expected orange, got %q", out)
	}

	if _, err := runCLI(t, dataDir, "color", "red; display:none"); !errors.Is(err, errInvalidColor) {
		t.Errorf("expected errInvalidColor, got %v", err)
	}

	if _, err := runCLI(t, dataDir, "color", "--reset"); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	out, _ = runCLI(t, dataDir, "color")
	if strings.TrimSpace(out) != "#ffeb3b" {
		t.Errorf("expected reset color, got %q", out)
	}
}

func TestValidateColor(t *testing.T) {
	t.Parallel()

	valid := []string{"#fff", "#ff000080", "orange", "rgb(255 200 0)", "hsl(50, 100%, 50%)"}
	for _, c := range valid {
		if err := validateColor(c); err != nil {
			t.Errorf("validateColor(%q) = %v", c, err)
		}
	}
	invalid := []string{"", "red;", "red}", "</style>", "a\nb"}
	for _, c := range invalid {
		if err := validateColor(c); !errors.Is(err, errInvalidColor) {
			t.Errorf("validateColor(%q) = %v, want errInvalidColor", c, err)
		}
	}
}
