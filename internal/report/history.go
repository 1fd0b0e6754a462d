package report

import (
	"sort"
	"time"

	"github.com/nao1215/wordwatch/internal/store"
)

// History is a set of match events plus per-word and per-location totals.
type History struct {
	// GeneratedAt is when the history was assembled.
	GeneratedAt time.Time `json:"generated_at"`

	// Filter describes how the events were selected.
	Filter string `json:"filter,omitempty"`

	// Events are the match events, newest first.
	Events []store.MatchEvent `json:"events"`

	// Words totals matches per word, most frequent first.
	Words []WordTotal `json:"words"`

	// Locations lists the distinct locations with matches, sorted.
	Locations []string `json:"locations"`

	// Runs is the number of distinct monitor runs in Events.
	Runs int `json:"runs"`
}

// WordTotal is the aggregate of one word.
type WordTotal struct {
	Word string `json:"word"`

	// Count is the number of marked occurrences.
	Count int `json:"count"`

	// Scans is the number of scans that marked the word.
	Scans int `json:"scans"`
}

// NewHistory aggregates events.
func NewHistory(events []store.MatchEvent, filter string) *History {
	if events == nil {
		events = []store.MatchEvent{}
	}

	totals := make(map[string]*WordTotal)
	locations := make(map[string]bool)
	runs := make(map[string]bool)
	for _, e := range events {
		t, ok := totals[e.Word]
		if !ok {
			t = &WordTotal{Word: e.Word}
			totals[e.Word] = t
		}
		t.Count += e.Count
		t.Scans++
		locations[e.Location] = true
		runs[e.RunID] = true
	}

	words := make([]WordTotal, 0, len(totals))
	for _, t := range totals {
		words = append(words, *t)
	}
	sort.Slice(words, func(i, j int) bool {
		if words[i].Count != words[j].Count {
			return words[i].Count > words[j].Count
		}
		return words[i].Word < words[j].Word
	})

	locs := make([]string, 0, len(locations))
	for l := range locations {
		locs = append(locs, l)
	}
	sort.Strings(locs)

	return &History{
		GeneratedAt: time.Now(),
		Filter:      filter,
		Events:      events,
		Words:       words,
		Locations:   locs,
		Runs:        len(runs),
	}
}

// TotalMatches is the sum of all word counts.
func (h *History) TotalMatches() int {
	total := 0
	for _, w := range h.Words {
		total += w.Count
	}
	return total
}
