package cli

import (
	"context"
	"fmt"
	"io"

	tea "github.com/charmbracelet/bubbletea"
	units "github.com/docker/go-units"
	"github.com/spf13/cobra"
	"github.com/steviee/go-northstar/internal/installer"
	"github.com/steviee/go-northstar/internal/tui"
)

// UpdateFlags holds all flags for the update command
type UpdateFlags struct {
	TUI bool
}

// NewUpdateCommand creates the update command
func NewUpdateCommand(opts *globalOptions) *cobra.Command {
	flags := &UpdateFlags{}

	cmd := &cobra.Command{
		Use:   "update",
		Short: "Install or update Northstar",
		Long: `Download the latest Northstar release and extract it into the game directory.

The release archive is saved as <game>/northstar.zip (see release.archive_name)
and every file in it overwrites the installed copy. Running update again
always converges on the latest release.`,
		Example: `  # Update with plain progress lines
  go-northstar update

  # Update with a progress view
  go-northstar update --tui

  # Update a specific install
  go-northstar update --game-path "/games/Titanfall2"`,
		Aliases: []string{"install"},
		Args:    cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runUpdate(cmd.Context(), cmd, opts, flags)
		},
	}

	cmd.Flags().BoolVar(&flags.TUI, "tui", false, "Show an interactive progress view")

	return cmd
}

// runUpdate executes the update command
func runUpdate(ctx context.Context, cmd *cobra.Command, opts *globalOptions, flags *UpdateFlags) error {
	stdout := cmd.OutOrStdout()

	a, err := opts.app()
	if err != nil {
		return outputError(stdout, opts.jsonOut, err)
	}
	defer a.client.Flush()

	var result *installer.Result
	if flags.TUI && !opts.jsonOut {
		result, err = tui.Run(ctx, a.installer.Update,
			tea.WithInput(cmd.InOrStdin()),
			tea.WithOutput(stdout))
	} else {
		result, err = a.installer.Update(ctx, textObserver(stdout, opts.jsonOut || opts.quiet))
	}
	if err != nil {
		return outputError(stdout, opts.jsonOut, fmt.Errorf("update failed: %w", err))
	}

	if opts.jsonOut {
		return writeSuccess(stdout, "Northstar updated", map[string]interface{}{
			"release":      result.Release.TagName,
			"game_path":    result.GamePath,
			"archive_path": result.ArchivePath,
			"files":        len(result.Files),
			"size":         result.Size,
		})
	}

	if !flags.TUI {
		_, _ = fmt.Fprintf(stdout, "✓ %s installed into %s (%d files)\n",
			result.Release.TagName, result.GamePath, len(result.Files))
	}
	return nil
}

// textObserver prints one line per update phase. Download progress is not
// printed line by line.
func textObserver(w io.Writer, silent bool) installer.Observer {
	if silent {
		return nil
	}

	downloading := false
	return func(e installer.Event) {
		switch e.Kind {
		case installer.EventDownloading:
			if downloading {
				return
			}
			downloading = true
			size := "unknown size"
			if e.BytesTotal > 0 {
				size = units.HumanSize(float64(e.BytesTotal))
			}
			_, _ = fmt.Fprintf(w, "Downloading %s (%s)...\n", e.Release.TagName, size)
		case installer.EventExtracting:
			_, _ = fmt.Fprintln(w, "Extracting...")
		}
	}
}
