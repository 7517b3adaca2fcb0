package cli

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"
	"github.com/steviee/go-northstar/internal/installer"
	"github.com/steviee/go-northstar/internal/state"
)

// NewPathCommand creates the path command group
func NewPathCommand(opts *globalOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "path",
		Short: "Manage the Titanfall 2 directory",
		Long: `Detect, show and set the Titanfall 2 install directory.

When no directory is configured, every command detects it again: on Windows
the game's registry entry is read first, then the Steam library manifest is
searched for a library containing Titanfall2.exe.`,
		Example: `  # Detect the game directory
  go-northstar path detect

  # Detect and remember it
  go-northstar path detect --save

  # Set it by hand
  go-northstar path set "D:\Games\Titanfall2"

  # Show configured and effective directories
  go-northstar path show`,
	}

	cmd.AddCommand(newPathDetectCommand(opts))
	cmd.AddCommand(newPathSetCommand(opts))
	cmd.AddCommand(newPathShowCommand(opts))

	return cmd
}

func newPathDetectCommand(opts *globalOptions) *cobra.Command {
	var save bool

	cmd := &cobra.Command{
		Use:   "detect",
		Short: "Detect the game directory",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			stdout := cmd.OutOrStdout()

			a, err := opts.app()
			if err != nil {
				return outputError(stdout, opts.jsonOut, err)
			}

			path, ok := a.resolver.Resolve()
			if !ok {
				return outputError(stdout, opts.jsonOut, installer.ErrGamePathNotFound)
			}

			if save {
				if err := saveGamePath(cmd, opts, path); err != nil {
					return outputError(stdout, opts.jsonOut, err)
				}
			}

			if opts.jsonOut {
				return writeSuccess(stdout, "", map[string]interface{}{"game_path": path, "saved": save})
			}

			_, _ = fmt.Fprintln(stdout, path)
			return nil
		},
	}

	cmd.Flags().BoolVar(&save, "save", false, "Store the detected directory in the settings")

	return cmd
}

func newPathSetCommand(opts *globalOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "set <dir>",
		Short: "Set the game directory",
		Long:  "Store the game directory in the settings. Pass an empty string to go back to detection.",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			stdout := cmd.OutOrStdout()

			path := args[0]
			if path != "" {
				abs, err := filepath.Abs(path)
				if err != nil {
					return outputError(stdout, opts.jsonOut, err)
				}
				info, err := os.Stat(abs)
				if err != nil || !info.IsDir() {
					return outputError(stdout, opts.jsonOut, fmt.Errorf("%w: %s is not a directory", installer.ErrGamePathNotFound, abs))
				}
				path = abs
			}

			if err := saveGamePath(cmd, opts, path); err != nil {
				return outputError(stdout, opts.jsonOut, err)
			}

			if opts.jsonOut {
				return writeSuccess(stdout, "Game directory saved", map[string]interface{}{"game_path": path})
			}
			if !opts.quiet {
				if path == "" {
					_, _ = fmt.Fprintln(stdout, "Game directory cleared; it will be detected automatically.")
				} else {
					_, _ = fmt.Fprintf(stdout, "Game directory set to %s\n", path)
				}
			}
			return nil
		},
	}
}

func newPathShowCommand(opts *globalOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "show",
		Short: "Show the configured and effective game directory",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			stdout := cmd.OutOrStdout()

			a, err := opts.app()
			if err != nil {
				return outputError(stdout, opts.jsonOut, err)
			}

			effective, err := a.installer.GamePath()
			if err != nil && !errors.Is(err, installer.ErrGamePathNotFound) {
				return outputError(stdout, opts.jsonOut, err)
			}

			if opts.jsonOut {
				return writeSuccess(stdout, "", map[string]interface{}{
					"configured": opts.cfg.GamePath,
					"effective":  effective,
				})
			}

			configured := opts.cfg.GamePath
			if configured == "" {
				configured = "(detect)"
			}
			if effective == "" {
				effective = "(not found)"
			}
			_, _ = fmt.Fprintf(stdout, "Configured: %s\n", configured)
			_, _ = fmt.Fprintf(stdout, "Effective:  %s\n", effective)
			return nil
		},
	}
}

// saveGamePath writes path into the settings file. The file is re-read so
// environment and flag overrides are not persisted along with it.
func saveGamePath(cmd *cobra.Command, opts *globalOptions, path string) error {
	cfg, err := state.LoadConfigFile(cmd.Context(), opts.configPath)
	if err != nil {
		return err
	}

	cfg.GamePath = path
	if err := state.SaveConfigFile(cmd.Context(), opts.configPath, cfg); err != nil {
		return err
	}

	opts.cfg.GamePath = path
	return nil
}
