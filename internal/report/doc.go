// Package report renders the recorded match history.
//
// This package contains writers for different output formats:
//   - SimpleWriter: plain text for the terminal
//   - JSONWriter: structured JSON for other tools
//   - MarkdownWriter: GitHub flavored Markdown with a word distribution chart
//
// Writers implement the Writer interface and can be combined with
// MultiWriter.
package report
