package report

import (
	"fmt"
	"io"
	"strings"
)

// SimpleWriter outputs a plain text summary for the terminal.
type SimpleWriter struct {
	baseWriter

	// verbose lists every event in addition to the totals.
	verbose bool
}

// SimpleWriterOption configures a SimpleWriter.
type SimpleWriterOption func(*SimpleWriter)

// WithVerbose lists every event.
func WithVerbose(verbose bool) SimpleWriterOption {
	return func(w *SimpleWriter) {
		w.verbose = verbose
	}
}

// NewSimpleWriter creates a SimpleWriter that outputs to the given writer.
func NewSimpleWriter(output io.Writer, opts ...SimpleWriterOption) *SimpleWriter {
	w := &SimpleWriter{baseWriter: newBaseWriter(output)}
	for _, opt := range opts {
		opt(w)
	}
	return w
}

// Write outputs the summary.
func (w *SimpleWriter) Write(h *History) (int, error) {
	var sb strings.Builder

	sb.WriteString("Match History\n")
	sb.WriteString(strings.Repeat("=", 40) + "\n")
	if h.Filter != "" {
		fmt.Fprintf(&sb, "Filter:    %s\n", h.Filter)
	}
	fmt.Fprintf(&sb, "Matches:   %d\n", h.TotalMatches())
	fmt.Fprintf(&sb, "Scans:     %d\n", len(h.Events))
	fmt.Fprintf(&sb, "Runs:      %d\n", h.Runs)
	fmt.Fprintf(&sb, "Locations: %d\n", len(h.Locations))
	sb.WriteString("\n")

	if len(h.Words) == 0 {
		sb.WriteString("No matches recorded.\n")
		return io.WriteString(w.output, sb.String())
	}

	width := len("WORD")
	for _, t := range h.Words {
		width = max(width, len(t.Word))
	}

	sb.WriteString("Words\n")
	sb.WriteString(strings.Repeat("-", 40) + "\n")
	fmt.Fprintf(&sb, "%-*s  %7s  %5s\n", width, "WORD", "MATCHES", "SCANS")
	for _, t := range h.Words {
		fmt.Fprintf(&sb, "%-*s  %7d  %5d\n", width, t.Word, t.Count, t.Scans)
	}
	sb.WriteString("\n")

	sb.WriteString("Locations\n")
	sb.WriteString(strings.Repeat("-", 40) + "\n")
	for _, l := range h.Locations {
		fmt.Fprintf(&sb, "  - %s\n", l)
	}

	if w.verbose {
		sb.WriteString("\nEvents\n")
		sb.WriteString(strings.Repeat("-", 40) + "\n")
		for _, e := range h.Events {
			fmt.Fprintf(&sb, "%s  %-*s  x%d  %s\n",
				e.Timestamp.Format("2006-01-02 15:04:05"), width, e.Word, e.Count, e.Location)
		}
	}

	return io.WriteString(w.output, sb.String())
}
