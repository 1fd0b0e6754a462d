package main

import (
	"errors"
	"fmt"
	"net/url"
	"strings"

	"github.com/nao1215/wordwatch/internal/store"
	"github.com/spf13/cobra"
)

// NewTargetCmd creates the target command.
func NewTargetCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "target [site]",
		Short: "Show or set the target site",
		Long: `Show or set the target site.

Scans only run while the watched page location contains this text, for
example "example.com/news". Without arguments the current value is shown.

Examples:
  wordwatch target example.com/news
  wordwatch target --from https://example.com/news/
  wordwatch target --clear`,
		Args: cobra.MaximumNArgs(1),
		RunE: runTargetCmd,
	}

	cmd.Flags().String("from", "", "Derive the site from a page URL (host and path)")
	cmd.Flags().Bool("clear", false, "Clear the target site, pausing all scans")
	cmd.MarkFlagsMutuallyExclusive("from", "clear")

	return cmd
}

func runTargetCmd(cmd *cobra.Command, args []string) error {
	from, err := cmd.Flags().GetString("from")
	if err != nil {
		return err
	}
	clearSite, err := cmd.Flags().GetBool("clear")
	if err != nil {
		return err
	}
	if len(args) > 0 && (from != "" || clearSite) {
		return errors.New("a site argument cannot be combined with --from or --clear")
	}

	return withStore(cmd, func(st *store.Store) error {
		out := cmd.OutOrStdout()
		ctx := cmd.Context()

		var site string
		switch {
		case clearSite:
			site = ""
		case from != "":
			site, err = siteFromURL(from)
			if err != nil {
				return err
			}
		case len(args) == 1:
			site = strings.TrimSpace(args[0])
			if site == "" {
				return errors.New("target site is empty, use --clear to remove it")
			}
		default:
			current, err := st.TargetURL(ctx)
			if err != nil {
				return err
			}
			if current == "" {
				fmt.Fprintln(out, "No target site set: scanning is paused.")
				return nil
			}
			fmt.Fprintln(out, current)
			return nil
		}

		if err := st.SetTargetURL(ctx, site); err != nil {
			return err
		}
		if site == "" {
			fmt.Fprintln(out, "Target site cleared: scanning is paused.")
			return nil
		}
		fmt.Fprintf(out, "Target site set to %s\n", site)
		return nil
	})
}

// siteFromURL returns the host and path of raw without a trailing slash,
// in the form page locations are reported: lowercase host and
// percent-encoded path.
func siteFromURL(raw string) (string, error) {
	u, err := url.Parse(strings.TrimSpace(raw))
	if err != nil {
		return "", fmt.Errorf("invalid URL %q: %w", raw, err)
	}
	if u.Host == "" {
		return "", fmt.Errorf("invalid URL %q: no host", raw)
	}
	return strings.TrimSuffix(strings.ToLower(u.Host)+u.EscapedPath(), "/"), nil
}
