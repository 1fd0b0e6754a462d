package main

import (
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/nao1215/wordwatch/internal/report"
	"github.com/nao1215/wordwatch/internal/store"
	"github.com/spf13/cobra"
)

// NewHistoryCmd creates the history command.
func NewHistoryCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "history",
		Short: "Show the keywords found by past scans",
		Long: `Show the keywords found by past scans.

Every scan that marks at least one keyword records how often each word
was found. This command aggregates those records.

Examples:
  # Everything found in the last day
  wordwatch history --since 24h

  # Events of one site as Markdown
  wordwatch history --location example.com --markdown -o history.md`,
		Args: cobra.NoArgs,
		RunE: runHistoryCmd,
	}

	cmd.Flags().String("location", "", "Only events whose page location contains this text")
	cmd.Flags().String("since", "", "Only events newer than a duration (24h) or an RFC 3339 time")
	cmd.Flags().Int("limit", 0, "Maximum number of events (0 for all)")
	cmd.Flags().Bool("json", false, "Output as JSON")
	cmd.Flags().Bool("markdown", false, "Output as Markdown")
	cmd.Flags().StringP("output", "o", "", "Output file (default: stdout)")
	cmd.MarkFlagsMutuallyExclusive("json", "markdown")

	return cmd
}

func runHistoryCmd(cmd *cobra.Command, _ []string) error {
	flags := cmd.Flags()
	location, _ := flags.GetString("location")
	sinceFlag, _ := flags.GetString("since")
	limit, _ := flags.GetInt("limit")
	jsonOut, _ := flags.GetBool("json")
	markdownOut, _ := flags.GetBool("markdown")
	output, _ := flags.GetString("output")

	if limit < 0 {
		return errors.New("limit must not be negative")
	}
	since, err := parseSince(sinceFlag, time.Now())
	if err != nil {
		return err
	}

	cfg, err := loadConfig(cmd)
	if err != nil {
		return err
	}
	st, err := store.Open(cfg.DataDir, store.Options{CreateIfNotExists: false})
	if err != nil {
		return err
	}
	defer st.Close()

	events, err := st.QueryMatches(cmd.Context(), store.MatchFilter{
		Location: location,
		Since:    since,
		Limit:    limit,
	})
	if err != nil {
		return err
	}
	h := report.NewHistory(events, describeFilter(location, sinceFlag, limit))

	var out io.Writer = cmd.OutOrStdout()
	if output != "" {
		f, err := os.Create(filepath.Clean(output))
		if err != nil {
			return fmt.Errorf("failed to create output file: %w", err)
		}
		defer f.Close()
		out = f
	}

	var w report.Writer
	switch {
	case jsonOut:
		w = report.NewJSONWriter(out, report.WithPrettyPrint())
	case markdownOut:
		w = report.NewMarkdownWriter(out)
	default:
		w = report.NewSimpleWriter(out, report.WithVerbose(cfg.Verbose))
	}

	if _, err := w.Write(h); err != nil {
		return fmt.Errorf("failed to write history: %w", err)
	}
	if output != "" {
		fmt.Fprintf(cmd.ErrOrStderr(), "History written to %s\n", output)
	}
	return nil
}

// parseSince turns the --since value into an absolute time. A duration is
// taken relative to now.
func parseSince(value string, now time.Time) (time.Time, error) {
	if value == "" {
		return time.Time{}, nil
	}
	if d, err := time.ParseDuration(value); err == nil {
		if d < 0 {
			return time.Time{}, fmt.Errorf("invalid --since %q: negative duration", value)
		}
		return now.Add(-d), nil
	}
	if t, err := time.Parse(time.RFC3339, value); err == nil {
		return t, nil
	}
	if t, err := time.ParseInLocation(time.DateOnly, value, time.Local); err == nil {
		return t, nil
	}
	return time.Time{}, fmt.Errorf("invalid --since %q: want a duration, a date or an RFC 3339 time", value)
}

// describeFilter renders the active filters for the report header.
func describeFilter(location, since string, limit int) string {
	var parts []string
	if location != "" {
		parts = append(parts, "location~"+location)
	}
	if since != "" {
		parts = append(parts, "since "+since)
	}
	if limit > 0 {
		parts = append(parts, fmt.Sprintf("limit %d", limit))
	}
	if len(parts) == 0 {
		return "all"
	}
	return strings.Join(parts, ", ")
}
