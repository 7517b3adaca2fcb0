package cli

import (
	"fmt"

	"github.com/spf13/cobra"
	"github.com/steviee/go-northstar/internal/installer"
)

// LaunchFlags holds all flags for the launch command
type LaunchFlags struct {
	Vanilla bool
}

// NewLaunchCommand creates the launch command
func NewLaunchCommand(opts *globalOptions) *cobra.Command {
	flags := &LaunchFlags{}

	cmd := &cobra.Command{
		Use:   "launch",
		Short: "Launch Titanfall 2",
		Long: `Start Titanfall 2 detached from this process.

By default the game starts through NorthstarLauncher.exe with the mod
loaded. Use --vanilla to start Titanfall2.exe instead. Launching is only
supported on Windows.`,
		Example: `  # Launch with Northstar
  go-northstar launch

  # Launch the unmodified game
  go-northstar launch --vanilla`,
		Aliases: []string{"play"},
		Args:    cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			stdout := cmd.OutOrStdout()

			variant := installer.VariantNorthstar
			if flags.Vanilla {
				variant = installer.VariantVanilla
			}

			a, err := opts.app()
			if err != nil {
				return outputError(stdout, opts.jsonOut, err)
			}

			pid, err := a.installer.Launch(variant)
			if err != nil {
				return outputError(stdout, opts.jsonOut, fmt.Errorf("launch failed: %w", err))
			}

			if opts.jsonOut {
				return writeSuccess(stdout, "Game launched", map[string]interface{}{
					"variant":    string(variant),
					"executable": variant.Executable(),
					"pid":        pid,
				})
			}

			if !opts.quiet {
				_, _ = fmt.Fprintf(stdout, "Launched %s (pid %d)\n", variant.Executable(), pid)
			}
			return nil
		},
	}

	cmd.Flags().BoolVar(&flags.Vanilla, "vanilla", false, "Launch the game without Northstar")

	return cmd
}
