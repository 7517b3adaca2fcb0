package cli

import (
	"fmt"
	"io"

	"github.com/spf13/cobra"
)

// VersionInfo contains version information for the application
type VersionInfo struct {
	Version string `json:"version"`
	Commit  string `json:"commit"`
	Date    string `json:"date"`
	BuiltBy string `json:"built_by"`
}

// NewVersionCommand creates the version command
func NewVersionCommand(opts *globalOptions, version, commit, date, builtBy string) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "version",
		Short: "Print version information",
		Long:  "Print detailed version information including build commit and date.",
		Example: `  # Display version information
  go-northstar version

  # Output in JSON format
  go-northstar version --json`,
		RunE: func(cmd *cobra.Command, args []string) error {
			info := VersionInfo{
				Version: version,
				Commit:  commit,
				Date:    date,
				BuiltBy: builtBy,
			}
			if opts.jsonOut {
				return writeSuccess(cmd.OutOrStdout(), "", map[string]interface{}{"version": info})
			}
			return printVersionText(cmd.OutOrStdout(), info)
		},
	}

	return cmd
}

// printVersionText prints version information in human-readable format
func printVersionText(w io.Writer, info VersionInfo) error {
	if _, err := fmt.Fprintf(w, "go-northstar version %s\n", info.Version); err != nil {
		return fmt.Errorf("write version: %w", err)
	}
	if _, err := fmt.Fprintf(w, "Commit: %s\n", info.Commit); err != nil {
		return fmt.Errorf("write commit: %w", err)
	}
	if _, err := fmt.Fprintf(w, "Built: %s\n", info.Date); err != nil {
		return fmt.Errorf("write date: %w", err)
	}
	if _, err := fmt.Fprintf(w, "Built by: %s\n", info.BuiltBy); err != nil {
		return fmt.Errorf("write built by: %w", err)
	}

	return nil
}
