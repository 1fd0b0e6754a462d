package store

import (
	"bufio"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"path/filepath"
	"strconv"
	"strings"

	"golang.org/x/text/cases"
)

// Setting keys.
const (
	KeyWords          = "words"
	KeyTargetURL      = "targetUrl"
	KeyHighlightColor = "highlightColor"
)

// DefaultHighlightColor is used when no color is stored.
const DefaultHighlightColor = "#ffeb3b"

// Settings is a consistent snapshot of the monitor configuration.
type Settings struct {
	// Words is the trimmed, non-empty word list in stored order.
	Words []string

	// TargetURL is the substring a page location must contain. Empty
	// disables scanning.
	TargetURL string

	// HighlightColor is the marker background color.
	HighlightColor string
}

// Load reads all settings in one query, substituting defaults for missing
// or malformed values.
func (s *Store) Load(ctx context.Context) (Settings, error) {
	raw, err := s.Get(ctx, KeyWords, KeyTargetURL, KeyHighlightColor)
	if err != nil {
		return Settings{}, err
	}
	color, ok := decodeString(raw[KeyHighlightColor])
	if !ok {
		color = DefaultHighlightColor
	}
	target, _ := decodeString(raw[KeyTargetURL])
	return Settings{
		Words:          normalizeWords(decodeWords(raw[KeyWords])),
		TargetURL:      target,
		HighlightColor: color,
	}, nil
}

// Words returns the trimmed, non-empty word list. A missing or non-array
// value yields an empty list.
func (s *Store) Words(ctx context.Context) ([]string, error) {
	raw, err := s.Get(ctx, KeyWords)
	if err != nil {
		return nil, err
	}
	return normalizeWords(decodeWords(raw[KeyWords])), nil
}

// TargetURL returns the site matcher, or "" when missing or not a string.
func (s *Store) TargetURL(ctx context.Context) (string, error) {
	raw, err := s.Get(ctx, KeyTargetURL)
	if err != nil {
		return "", err
	}
	target, _ := decodeString(raw[KeyTargetURL])
	return target, nil
}

// HighlightColor returns the marker color, DefaultHighlightColor when
// missing or not a string.
func (s *Store) HighlightColor(ctx context.Context) (string, error) {
	raw, err := s.Get(ctx, KeyHighlightColor)
	if err != nil {
		return "", err
	}
	color, ok := decodeString(raw[KeyHighlightColor])
	if !ok {
		return DefaultHighlightColor, nil
	}
	return color, nil
}

// SetWords replaces the word list.
func (s *Store) SetWords(ctx context.Context, words []string) error {
	if words == nil {
		words = []string{}
	}
	return s.Set(ctx, map[string]interface{}{KeyWords: words})
}

// SetTargetURL stores the trimmed site matcher.
func (s *Store) SetTargetURL(ctx context.Context, target string) error {
	return s.Set(ctx, map[string]interface{}{KeyTargetURL: strings.TrimSpace(target)})
}

// SetHighlightColor stores the marker color.
func (s *Store) SetHighlightColor(ctx context.Context, color string) error {
	return s.Set(ctx, map[string]interface{}{KeyHighlightColor: strings.TrimSpace(color)})
}

// EnsureDefaults writes a default for every setting that is missing or has
// the wrong type, leaving valid values untouched. It returns the repaired
// keys.
func (s *Store) EnsureDefaults(ctx context.Context) ([]string, error) {
	raw, err := s.Get(ctx, KeyWords, KeyTargetURL, KeyHighlightColor)
	if err != nil {
		return nil, err
	}

	next := make(map[string]interface{})
	if !isArray(raw[KeyWords]) {
		next[KeyWords] = []string{}
	}
	if _, ok := decodeString(raw[KeyTargetURL]); !ok {
		next[KeyTargetURL] = ""
	}
	if _, ok := decodeString(raw[KeyHighlightColor]); !ok {
		next[KeyHighlightColor] = DefaultHighlightColor
	}
	if len(next) == 0 {
		return nil, nil
	}

	if err := s.Set(ctx, next); err != nil {
		return nil, err
	}

	repaired := make([]string, 0, len(next))
	for _, k := range []string{KeyWords, KeyTargetURL, KeyHighlightColor} {
		if _, ok := next[k]; ok {
			repaired = append(repaired, k)
		}
	}
	return repaired, nil
}

// AddWord appends a trimmed word. Exact duplicates are rejected with
// ErrDuplicateWord; empty input with ErrEmptyWord.
func (s *Store) AddWord(ctx context.Context, word string) error {
	word = strings.TrimSpace(word)
	if word == "" {
		return ErrEmptyWord
	}

	words, err := s.storedWords(ctx)
	if err != nil {
		return err
	}
	for _, w := range words {
		if w == word {
			return ErrDuplicateWord
		}
	}
	return s.SetWords(ctx, append(words, word))
}

// RemoveWord removes every entry equal to word. With foldCase the
// comparison uses Unicode case folding. It reports whether anything was
// removed.
func (s *Store) RemoveWord(ctx context.Context, word string, foldCase bool) (bool, error) {
	word = strings.TrimSpace(word)
	words, err := s.storedWords(ctx)
	if err != nil {
		return false, err
	}

	fold := cases.Fold()
	target := word
	if foldCase {
		target = fold.String(word)
	}

	kept := make([]string, 0, len(words))
	for _, w := range words {
		cmp := w
		if foldCase {
			cmp = fold.String(w)
		}
		if cmp == target {
			continue
		}
		kept = append(kept, w)
	}
	if len(kept) == len(words) {
		return false, nil
	}
	return true, s.SetWords(ctx, kept)
}

// ImportWords replaces the word list with the words read from r. Files
// whose name ends in ".json" must hold a JSON array whose string, number
// and boolean elements become words; anything else is read
// as one word per line. Words are trimmed, empty entries dropped and
// duplicates removed keeping the first occurrence. It returns the number of
// words stored.
func (s *Store) ImportWords(ctx context.Context, r io.Reader, name string) (int, error) {
	var imported []string
	if strings.EqualFold(filepath.Ext(name), ".json") {
		dec := json.NewDecoder(r)
		dec.UseNumber()
		var values []interface{}
		if err := dec.Decode(&values); err != nil {
			return 0, fmt.Errorf("failed to read JSON word list: %w", err)
		}
		for _, v := range values {
			// null, objects and arrays are not words.
			switch v := v.(type) {
			case string:
				imported = append(imported, v)
			case json.Number:
				imported = append(imported, v.String())
			case bool:
				imported = append(imported, strconv.FormatBool(v))
			}
		}
	} else {
		scanner := bufio.NewScanner(r)
		for scanner.Scan() {
			imported = append(imported, scanner.Text())
		}
		if err := scanner.Err(); err != nil {
			return 0, fmt.Errorf("failed to read word list: %w", err)
		}
	}

	words := unique(normalizeWords(imported))
	if len(words) == 0 {
		return 0, ErrNoWords
	}
	if err := s.SetWords(ctx, words); err != nil {
		return 0, err
	}
	return len(words), nil
}

// ExportWords writes the stored word list as an indented JSON array.
func (s *Store) ExportWords(ctx context.Context, w io.Writer) error {
	words, err := s.storedWords(ctx)
	if err != nil {
		return err
	}
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(words)
}

// storedWords returns the word list as stored, without trimming, so that
// list edits preserve entries verbatim. Non-string elements are dropped.
func (s *Store) storedWords(ctx context.Context) ([]string, error) {
	raw, err := s.Get(ctx, KeyWords)
	if err != nil {
		return nil, err
	}
	words := decodeWords(raw[KeyWords])
	if words == nil {
		words = []string{}
	}
	return words, nil
}

// decodeWords decodes a JSON array, keeping only string elements.
// Anything else yields nil.
func decodeWords(raw json.RawMessage) []string {
	if !isArray(raw) {
		return nil
	}
	var values []interface{}
	if err := json.Unmarshal(raw, &values); err != nil {
		return nil
	}
	words := make([]string, 0, len(values))
	for _, v := range values {
		if w, ok := v.(string); ok {
			words = append(words, w)
		}
	}
	return words
}

func decodeString(raw json.RawMessage) (string, bool) {
	if len(raw) == 0 {
		return "", false
	}
	var s string
	if err := json.Unmarshal(raw, &s); err != nil {
		return "", false
	}
	return s, true
}

func isArray(raw json.RawMessage) bool {
	trimmed := strings.TrimSpace(string(raw))
	return strings.HasPrefix(trimmed, "[") && json.Valid(raw)
}

func normalizeWords(words []string) []string {
	out := make([]string, 0, len(words))
	for _, w := range words {
		if w = strings.TrimSpace(w); w != "" {
			out = append(out, w)
		}
	}
	return out
}

func unique(words []string) []string {
	seen := make(map[string]bool, len(words))
	out := make([]string, 0, len(words))
	for _, w := range words {
		if !seen[w] {
			seen[w] = true
			out = append(out, w)
		}
	}
	return out
}
