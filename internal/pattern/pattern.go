package pattern

import (
	"errors"
	"regexp"
	"strings"
)

// ErrEmptyWordList is returned by Build when no usable word remains after
// trimming. Callers must skip scanning in that case.
var ErrEmptyWordList = errors.New("word list is empty")

// Matcher finds occurrences of any configured word in a text.
// It is immutable and safe for concurrent use.
type Matcher struct {
	re    *regexp.Regexp
	words []string
}

// Build compiles words into a Matcher.
// Words are trimmed and empty entries are dropped; the order of the
// remaining words decides which alternative wins on overlapping matches.
func Build(words []string) (*Matcher, error) {
	cleaned := Clean(words)
	if len(cleaned) == 0 {
		return nil, ErrEmptyWordList
	}

	quoted := make([]string, len(cleaned))
	for i, w := range cleaned {
		quoted[i] = regexp.QuoteMeta(w)
	}

	re, err := regexp.Compile("(?i)" + strings.Join(quoted, "|"))
	if err != nil {
		return nil, err
	}

	return &Matcher{re: re, words: cleaned}, nil
}

// Clean trims every word and drops the empty ones, keeping order.
// Duplicates are kept.
func Clean(words []string) []string {
	cleaned := make([]string, 0, len(words))
	for _, w := range words {
		w = strings.TrimSpace(w)
		if w != "" {
			cleaned = append(cleaned, w)
		}
	}
	return cleaned
}

// FindAll returns the [start, end) byte offsets of all successive
// non-overlapping matches in text, left to right.
func (m *Matcher) FindAll(text string) [][]int {
	return m.re.FindAllStringIndex(text, -1)
}

// Match reports whether text contains at least one word.
func (m *Matcher) Match(text string) bool {
	return m.re.MatchString(text)
}

// Words returns the cleaned words the matcher was built from.
func (m *Matcher) Words() []string {
	out := make([]string, len(m.words))
	copy(out, m.words)
	return out
}

// String returns the compiled expression.
func (m *Matcher) String() string {
	return m.re.String()
}
