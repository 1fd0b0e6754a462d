package source

import (
	"context"
	"encoding/hex"
	"fmt"
	"net/url"
	"path/filepath"
	"strings"
	"time"

	"golang.org/x/crypto/blake2b"
)

// Snapshot is one version of a watched page.
type Snapshot struct {
	// Location is where the content was loaded from. For HTTP sources it
	// is the final URL after redirects.
	Location string

	// Body is the raw HTML.
	Body []byte

	// Hash is the hex encoded BLAKE2b-256 digest of Body.
	Hash string

	// LoadedAt is when the content was read.
	LoadedAt time.Time
}

// EmitFunc receives every changed Snapshot.
type EmitFunc func(*Snapshot)

// Source produces snapshots of one page.
type Source interface {
	// Location returns the configured target, before any redirects.
	Location() string

	// Run emits the first snapshot as soon as the page can be read and
	// then one snapshot per content change, until ctx is cancelled.
	// Run returns ctx.Err() on cancellation.
	Run(ctx context.Context, emit EmitFunc) error
}

// Fingerprint returns the hex encoded BLAKE2b-256 digest of body.
func Fingerprint(body []byte) string {
	sum := blake2b.Sum256(body)
	return hex.EncodeToString(sum[:])
}

// NewSnapshot builds a Snapshot stamped with the current time.
func NewSnapshot(location string, body []byte) *Snapshot {
	return &Snapshot{
		Location: location,
		Body:     body,
		Hash:     Fingerprint(body),
		LoadedAt: time.Now(),
	}
}

// changeDetector remembers the last emitted fingerprint.
type changeDetector struct {
	last string
}

// changed reports whether s differs from the previously seen snapshot and
// remembers it.
func (c *changeDetector) changed(s *Snapshot) bool {
	if s.Hash == c.last {
		return false
	}
	c.last = s.Hash
	return true
}

// Open returns the Source for target. http and https URLs are polled with
// an HTTPSource; file URLs and plain paths are followed with a FileSource.
func Open(target string, httpOpts []HTTPOption, fileOpts []FileOption) (Source, error) {
	u, err := url.Parse(target)
	if err != nil || u.Scheme == "" || len(u.Scheme) == 1 {
		// Plain path, including Windows drive letters.
		return NewFileSource(target, fileOpts...)
	}

	switch strings.ToLower(u.Scheme) {
	case "http", "https":
		return NewHTTPSource(target, httpOpts...)
	case "file":
		path := u.Path
		if u.Host != "" && u.Host != "localhost" {
			path = "//" + u.Host + path
		}
		return NewFileSource(filepath.FromSlash(path), fileOpts...)
	default:
		return nil, fmt.Errorf("%w: %s", ErrUnsupportedScheme, u.Scheme)
	}
}
