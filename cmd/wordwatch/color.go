package main

import (
	"errors"
	"fmt"
	"strings"

	"github.com/nao1215/wordwatch/internal/highlight"
	"github.com/nao1215/wordwatch/internal/store"
	"github.com/spf13/cobra"
)

// errInvalidColor is returned for colors that cannot be used as a CSS value.
var errInvalidColor = errors.New("invalid color")

// NewColorCmd creates the color command.
func NewColorCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "color [css-color]",
		Short: "Show or set the highlight color",
		Long: `Show or set the background color of highlight markers.

Any CSS color value is accepted, for example "#ff0000", "orange" or
"rgb(255 200 0)". Without arguments the current value is shown; --reset
restores the default.`,
		Args: cobra.MaximumNArgs(1),
		RunE: runColorCmd,
	}
	cmd.Flags().Bool("reset", false, "Restore the default color "+store.DefaultHighlightColor)
	return cmd
}

func runColorCmd(cmd *cobra.Command, args []string) error {
	reset, err := cmd.Flags().GetBool("reset")
	if err != nil {
		return err
	}
	if reset && len(args) > 0 {
		return errors.New("a color argument cannot be combined with --reset")
	}

	return withStore(cmd, func(st *store.Store) error {
		out := cmd.OutOrStdout()
		ctx := cmd.Context()

		var color string
		switch {
		case reset:
			color = store.DefaultHighlightColor
		case len(args) == 1:
			color = strings.TrimSpace(args[0])
			if err := validateColor(color); err != nil {
				return err
			}
		default:
			current, err := st.HighlightColor(ctx)
			if err != nil {
				return err
			}
			fmt.Fprintln(out, current)
			return nil
		}

		if err := st.SetHighlightColor(ctx, color); err != nil {
			return err
		}
		fmt.Fprintf(out, "Highlight color set to %s\n", color)
		return nil
	})
}

// validateColor rejects empty values and values that would escape the
// injected CSS rule.
func validateColor(color string) error {
	if color == "" {
		return fmt.Errorf("%w: empty", errInvalidColor)
	}
	if !highlight.ValidColor(color) {
		return fmt.Errorf("%w: %q", errInvalidColor, color)
	}
	return nil
}
