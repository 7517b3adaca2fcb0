package cli

import (
	"fmt"

	"github.com/spf13/cobra"
)

// NewCacheCommand creates the cache command group
func NewCacheCommand(opts *globalOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "cache",
		Short: "Manage the request cache",
		Long: `Inspect and clear the on-disk cache of fetched resources.

The cache is a single JSON document under the user cache directory.`,
		Example: `  # List cached keys
  go-northstar cache list

  # Remove one entry
  go-northstar cache delete northstar-release

  # Remove everything, including the cache of older launcher releases
  go-northstar cache clear`,
	}

	cmd.AddCommand(&cobra.Command{
		Use:     "list",
		Short:   "List cached keys",
		Aliases: []string{"ls"},
		Args:    cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			stdout := cmd.OutOrStdout()

			a, err := opts.app()
			if err != nil {
				return outputError(stdout, opts.jsonOut, err)
			}

			keys := a.cache.Keys()
			if opts.jsonOut {
				if keys == nil {
					keys = []string{}
				}
				return writeSuccess(stdout, "", map[string]interface{}{
					"path":  a.cache.Path(),
					"keys":  keys,
					"count": len(keys),
				})
			}

			if len(keys) == 0 {
				_, _ = fmt.Fprintln(stdout, "Request cache is empty.")
				return nil
			}
			for _, key := range keys {
				_, _ = fmt.Fprintln(stdout, key)
			}
			return nil
		},
	})

	cmd.AddCommand(&cobra.Command{
		Use:     "delete <key>",
		Short:   "Remove one cached entry",
		Aliases: []string{"rm"},
		Args:    cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			stdout := cmd.OutOrStdout()

			a, err := opts.app()
			if err != nil {
				return outputError(stdout, opts.jsonOut, err)
			}

			if err := a.cache.Delete(args[0]); err != nil {
				return outputError(stdout, opts.jsonOut, fmt.Errorf("delete cache entry: %w", err))
			}

			if opts.jsonOut {
				return writeSuccess(stdout, "Cache entry deleted", map[string]interface{}{"key": args[0]})
			}
			if !opts.quiet {
				_, _ = fmt.Fprintf(stdout, "Deleted %s\n", args[0])
			}
			return nil
		},
	})

	cmd.AddCommand(&cobra.Command{
		Use:   "clear",
		Short: "Remove the whole request cache",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			stdout := cmd.OutOrStdout()

			a, err := opts.app()
			if err != nil {
				return outputError(stdout, opts.jsonOut, err)
			}

			if err := a.cache.DeleteAll(); err != nil {
				return outputError(stdout, opts.jsonOut, fmt.Errorf("clear cache: %w", err))
			}

			if opts.jsonOut {
				return writeSuccess(stdout, "Request cache cleared", nil)
			}
			if !opts.quiet {
				_, _ = fmt.Fprintln(stdout, "Request cache cleared.")
			}
			return nil
		},
	})

	return cmd
}
