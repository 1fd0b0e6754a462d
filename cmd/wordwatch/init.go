package main

import (
	"embed"
	"fmt"
	"os"
	"path/filepath"

	"github.com/nao1215/wordwatch/internal/config"
	"github.com/nao1215/wordwatch/internal/store"
	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"
)

//go:embed templates/wordwatch.yaml
var configTemplate embed.FS

// templatePath is the embedded configuration template.
const templatePath = "templates/wordwatch.yaml"

// NewInitCmd creates the init command.
func NewInitCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "init",
		Short: "Create a configuration file and the settings database",
		Long: `Initialize creates a .wordwatch configuration file in the current directory
and the settings database in the data directory.

Settings that are missing or malformed in the database are reset to their
defaults: an empty word list, no target site and the default highlight
color. Valid settings are left untouched.

Examples:
  # Create .wordwatch and the database
  wordwatch init

  # Create the config file at a specific path
  wordwatch init -o myconfig.yaml

  # Force overwrite an existing config file
  wordwatch init -f`,
		Args: cobra.NoArgs,
		RunE: runInitCmd,
	}

	cmd.Flags().StringP("output", "o", config.DefaultConfigFile,
		"Output file path for the configuration")
	cmd.Flags().BoolP("force", "f", false,
		"Overwrite existing configuration file")

	return cmd
}

// runInitCmd executes the init command.
func runInitCmd(cmd *cobra.Command, _ []string) error {
	outputPath, err := cmd.Flags().GetString("output")
	if err != nil {
		return err
	}
	force, err := cmd.Flags().GetBool("force")
	if err != nil {
		return err
	}

	out := cmd.OutOrStdout()
	written, err := writeConfigTemplate(outputPath, force)
	if err != nil {
		return err
	}
	if written {
		fmt.Fprintf(out, "Created configuration file: %s\n", outputPath)
	} else {
		fmt.Fprintf(out, "Configuration file already exists: %s (use -f to overwrite)\n", outputPath)
	}

	return withStore(cmd, func(st *store.Store) error {
		repaired, err := st.EnsureDefaults(cmd.Context())
		if err != nil {
			return fmt.Errorf("failed to initialise settings: %w", err)
		}
		fmt.Fprintf(out, "Settings database: %s\n", st.Path())
		for _, key := range repaired {
			fmt.Fprintf(out, "  reset %s to its default\n", key)
		}

		fmt.Fprintln(out, "\nNext steps:")
		fmt.Fprintln(out, "  wordwatch words add <word>     add keywords to highlight")
		fmt.Fprintln(out, "  wordwatch target <site>        choose where scans run")
		fmt.Fprintln(out, "  wordwatch watch <url>          start watching a page")
		return nil
	})
}

// writeConfigTemplate writes the embedded template to path. An existing
// file is kept unless force is set; the result reports whether the file
// was written.
func writeConfigTemplate(path string, force bool) (bool, error) {
	if !force {
		if _, err := os.Stat(path); err == nil {
			return false, nil
		}
	}

	content, err := configTemplate.ReadFile(templatePath)
	if err != nil {
		return false, fmt.Errorf("failed to read config template: %w", err)
	}
	var f config.File
	if err := yaml.Unmarshal(content, &f); err != nil {
		return false, fmt.Errorf("invalid config template: %w", err)
	}

	dir := filepath.Dir(path)
	if dir != "" && dir != "." {
		if err := os.MkdirAll(dir, 0750); err != nil {
			return false, fmt.Errorf("failed to create directory: %w", err)
		}
	}
	if err := os.WriteFile(path, content, 0600); err != nil {
		return false, fmt.Errorf("failed to write configuration file: %w", err)
	}
	return true, nil
}
