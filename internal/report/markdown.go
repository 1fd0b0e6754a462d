package report

import (
	"fmt"
	"io"
	"strconv"

	"github.com/nao1215/markdown"
	"github.com/nao1215/markdown/mermaid/piechart"
)

// maxMarkdownEvents caps the event table of a Markdown report.
const maxMarkdownEvents = 100

// MarkdownWriter outputs the history as GitHub flavored Markdown.
type MarkdownWriter struct {
	baseWriter
}

// NewMarkdownWriter creates a MarkdownWriter that outputs to the given writer.
func NewMarkdownWriter(output io.Writer) *MarkdownWriter {
	return &MarkdownWriter{baseWriter: newBaseWriter(output)}
}

// Write outputs the history in Markdown format.
func (w *MarkdownWriter) Write(h *History) (int, error) {
	md := markdown.NewMarkdown(w.output)

	w.writeHeader(md, h)
	if len(h.Words) == 0 {
		md.Tip("No matches recorded.")
		md.PlainText("")
	} else {
		w.writeWords(md, h)
		w.writeEvents(md, h)
	}
	w.writeFooter(md)

	return len(md.String()), md.Build()
}

func (w *MarkdownWriter) writeHeader(md *markdown.Markdown, h *History) {
	md.H1("wordwatch Match History")
	md.PlainText("")

	rows := [][]string{
		{"Generated", h.GeneratedAt.Format("2006-01-02 15:04:05 MST")},
		{"Matches", strconv.Itoa(h.TotalMatches())},
		{"Scans", strconv.Itoa(len(h.Events))},
		{"Runs", strconv.Itoa(h.Runs)},
		{"Locations", strconv.Itoa(len(h.Locations))},
	}
	if h.Filter != "" {
		rows = append([][]string{{"Filter", "`" + h.Filter + "`"}}, rows...)
	}
	md.Table(markdown.TableSet{
		Header: []string{"Property", "Value"},
		Rows:   rows,
	})
	md.PlainText("")
}

func (w *MarkdownWriter) writeWords(md *markdown.Markdown, h *History) {
	md.H2("Words")
	md.PlainText("")

	rows := make([][]string, 0, len(h.Words))
	for _, t := range h.Words {
		rows = append(rows, []string{t.Word, strconv.Itoa(t.Count), strconv.Itoa(t.Scans)})
	}
	md.Table(markdown.TableSet{
		Header: []string{"Word", "Matches", "Scans"},
		Rows:   rows,
	})
	md.PlainText("")

	chart := piechart.NewPieChart(
		io.Discard,
		piechart.WithTitle("Matches per Word"),
		piechart.WithShowData(true),
	)
	for _, t := range h.Words {
		if t.Count > 0 {
			chart.LabelAndIntValue(t.Word, uint64(t.Count))
		}
	}
	md.CodeBlocks(markdown.SyntaxHighlightMermaid, chart.String())
	md.PlainText("")

	md.H2("Locations")
	md.PlainText("")
	md.BulletList(h.Locations...)
	md.PlainText("")
}

func (w *MarkdownWriter) writeEvents(md *markdown.Markdown, h *History) {
	md.H2("Events")
	md.PlainText("")

	events := h.Events
	if len(events) > maxMarkdownEvents {
		md.Note(fmt.Sprintf("Showing the newest %d of %d events.", maxMarkdownEvents, len(events)))
		md.PlainText("")
		events = events[:maxMarkdownEvents]
	}

	rows := make([][]string, 0, len(events))
	for _, e := range events {
		rows = append(rows, []string{
			e.Timestamp.Format("2006-01-02 15:04:05"),
			e.Word,
			strconv.Itoa(e.Count),
			e.Location,
		})
	}
	md.Table(markdown.TableSet{
		Header: []string{"Time", "Word", "Count", "Location"},
		Rows:   rows,
	})
	md.PlainText("")
}

func (w *MarkdownWriter) writeFooter(md *markdown.Markdown) {
	md.HorizontalRule()
	md.PlainText("")
	md.PlainTextf("*Report generated by [wordwatch](https://github.com/nao1215/wordwatch)*")
}
