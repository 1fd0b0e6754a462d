package main

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/nao1215/wordwatch/internal/store"
	"github.com/spf13/cobra"
)

// NewWordsCmd creates the words command and its subcommands.
func NewWordsCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "words",
		Short: "Manage the keyword list",
		Long: `Manage the keywords highlighted in watched pages.

Keywords are matched case-insensitively. When one keyword is contained in
another, the one added first wins at a position.`,
	}

	cmd.AddCommand(newWordsListCmd())
	cmd.AddCommand(newWordsAddCmd())
	cmd.AddCommand(newWordsRemoveCmd())
	cmd.AddCommand(newWordsImportCmd())
	cmd.AddCommand(newWordsExportCmd())

	return cmd
}

func newWordsListCmd() *cobra.Command {
	return &cobra.Command{
		Use:     "list",
		Aliases: []string{"ls"},
		Short:   "Show the keyword list in match order",
		Args:    cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return withStore(cmd, func(st *store.Store) error {
				words, err := st.Words(cmd.Context())
				if err != nil {
					return err
				}
				out := cmd.OutOrStdout()
				if len(words) == 0 {
					fmt.Fprintln(out, "No words configured. Add one with 'wordwatch words add <word>'.")
					return nil
				}
				for i, w := range words {
					fmt.Fprintf(out, "%3d  %s\n", i+1, w)
				}
				return nil
			})
		},
	}
}

func newWordsAddCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "add <word>...",
		Short: "Append keywords to the list",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return withStore(cmd, func(st *store.Store) error {
				out := cmd.OutOrStdout()
				for _, w := range args {
					err := st.AddWord(cmd.Context(), w)
					switch {
					case errors.Is(err, store.ErrDuplicateWord):
						fmt.Fprintf(out, "Skipped %q: already in the list\n", w)
					case err != nil:
						return fmt.Errorf("failed to add %q: %w", w, err)
					default:
						fmt.Fprintf(out, "Added %q\n", w)
					}
				}
				return nil
			})
		},
	}
}

func newWordsRemoveCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:     "remove <word>...",
		Aliases: []string{"rm"},
		Short:   "Remove keywords from the list",
		Args:    cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ignoreCase, err := cmd.Flags().GetBool("ignore-case")
			if err != nil {
				return err
			}
			return withStore(cmd, func(st *store.Store) error {
				out := cmd.OutOrStdout()
				for _, w := range args {
					removed, err := st.RemoveWord(cmd.Context(), w, ignoreCase)
					if err != nil {
						return fmt.Errorf("failed to remove %q: %w", w, err)
					}
					if removed {
						fmt.Fprintf(out, "Removed %q\n", w)
					} else {
						fmt.Fprintf(out, "Not found: %q\n", w)
					}
				}
				return nil
			})
		},
	}
	cmd.Flags().BoolP("ignore-case", "i", false, "Remove entries differing only in case")
	return cmd
}

func newWordsImportCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "import <file>",
		Short: "Replace the keyword list with the words of a file",
		Long: `Replace the keyword list with the words of a file.

A file ending in .json must contain a JSON array; any other file is read
as one word per line.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			path := filepath.Clean(args[0])
			f, err := os.Open(path)
			if err != nil {
				return fmt.Errorf("failed to open word list: %w", err)
			}
			defer f.Close()

			return withStore(cmd, func(st *store.Store) error {
				n, err := st.ImportWords(cmd.Context(), f, path)
				if err != nil {
					return err
				}
				fmt.Fprintf(cmd.OutOrStdout(), "Imported %d words from %s\n", n, path)
				return nil
			})
		},
	}
}

func newWordsExportCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "export",
		Short: "Write the keyword list as a JSON array",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			output, err := cmd.Flags().GetString("output")
			if err != nil {
				return err
			}
			return withStore(cmd, func(st *store.Store) error {
				if output == "" {
					return st.ExportWords(cmd.Context(), cmd.OutOrStdout())
				}

				f, err := os.Create(filepath.Clean(output))
				if err != nil {
					return fmt.Errorf("failed to create output file: %w", err)
				}
				if err := st.ExportWords(cmd.Context(), f); err != nil {
					_ = f.Close()
					return err
				}
				if err := f.Close(); err != nil {
					return fmt.Errorf("failed to write output file: %w", err)
				}
				fmt.Fprintf(cmd.ErrOrStderr(), "Word list written to %s\n", output)
				return nil
			})
		},
	}
	cmd.Flags().StringP("output", "o", "", "Output file (default: stdout)")
	return cmd
}

// withStore loads the configuration, opens the settings database and
// runs fn with it.
func withStore(cmd *cobra.Command, fn func(*store.Store) error) error {
	cfg, err := loadConfig(cmd)
	if err != nil {
		return err
	}
	st, err := openStore(cfg)
	if err != nil {
		return err
	}
	defer st.Close()
	return fn(st)
}
