package cli

import (
	"errors"
	"fmt"

	"github.com/spf13/cobra"
)

// errEndpointsFailed makes check exit non-zero when an endpoint failed.
var errEndpointsFailed = errors.New("some endpoints are unreachable")

// NewCheckCommand creates the check command
func NewCheckCommand(opts *globalOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "check <url>...",
		Short: "Check which endpoints are reachable",
		Long: `Send a GET to each URL, one after another, and report which answered
with a 2xx status. The command exits non-zero when any URL failed.`,
		Example: `  # Check the master server and the release API
  go-northstar check https://northstar.tf/client/servers https://api.github.com`,
		Args: cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			stdout := cmd.OutOrStdout()

			a, err := opts.app()
			if err != nil {
				return outputError(stdout, opts.jsonOut, err)
			}

			result := a.client.Check(cmd.Context(), args...)

			if opts.jsonOut {
				if err := writeSuccess(stdout, "", map[string]interface{}{
					"succeeded": result.Succeeded,
					"failed":    result.Failed,
				}); err != nil {
					return err
				}
			} else {
				for _, endpoint := range result.Succeeded {
					_, _ = fmt.Fprintf(stdout, "✓ %s\n", endpoint)
				}
				for _, endpoint := range result.Failed {
					_, _ = fmt.Fprintf(stdout, "✗ %s\n", endpoint)
				}
			}

			if len(result.Failed) > 0 {
				return fmt.Errorf("%w: %d of %d", errEndpointsFailed, len(result.Failed), len(args))
			}
			return nil
		},
	}

	return cmd
}
