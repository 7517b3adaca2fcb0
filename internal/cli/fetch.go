package cli

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"
	"github.com/steviee/go-northstar/internal/requests"
)

// FetchFlags holds all flags for the fetch command
type FetchFlags struct {
	CacheKey  string
	MaxAge    string
	NoOffline bool
}

// NewFetchCommand creates the fetch command
func NewFetchCommand(opts *globalOptions) *cobra.Command {
	flags := &FetchFlags{}

	cmd := &cobra.Command{
		Use:   "fetch <host> <path>",
		Short: "Fetch a remote text resource through the request cache",
		Long: `GET https://<host><path> and print the body.

With --cache-key the response is cached. A fresh cached copy is printed
without a request, and when the request fails at the network level any
cached copy is printed instead unless --no-offline is given.
--max-age 0 accepts a cached copy of any age.`,
		Example: `  # Fetch without caching
  go-northstar fetch api.github.com /repos/R2Northstar/Northstar/releases/latest

  # Cache the response for ten minutes
  go-northstar fetch api.github.com /repos/R2Northstar/Northstar/releases/latest \
    --cache-key northstar-release --max-age 10m`,
		Args: cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			stdout := cmd.OutOrStdout()

			a, err := opts.app()
			if err != nil {
				return outputError(stdout, opts.jsonOut, err)
			}
			defer a.client.Flush()

			maxAge := a.maxAge()
			ignoreAge := false
			if flags.MaxAge != "" {
				if maxAge, err = parseDuration(flags.MaxAge); err != nil {
					return outputError(stdout, opts.jsonOut, fmt.Errorf("invalid --max-age: %w", err))
				}
				ignoreAge = maxAge == 0
			}

			path := args[1]
			if !strings.HasPrefix(path, "/") {
				path = "/" + path
			}

			body, err := a.client.Get(cmd.Context(), requests.Request{
				Host:              args[0],
				Path:              path,
				CacheKey:          flags.CacheKey,
				MaxAge:            maxAge,
				IgnoreAge:         ignoreAge,
				NoOfflineFallback: flags.NoOffline,
			})
			if err != nil {
				return outputError(stdout, opts.jsonOut, err)
			}

			if opts.jsonOut {
				return writeSuccess(stdout, "", map[string]interface{}{
					"url":  a.client.URL(args[0], path),
					"body": body,
				})
			}

			_, _ = fmt.Fprint(stdout, body)
			if !strings.HasSuffix(body, "\n") {
				_, _ = fmt.Fprintln(stdout)
			}
			return nil
		},
	}

	cmd.Flags().StringVar(&flags.CacheKey, "cache-key", "", "Cache the response under this key")
	cmd.Flags().StringVar(&flags.MaxAge, "max-age", "", "Maximum age of a cached copy (e.g. 5m, 300; 0 for any age)")
	cmd.Flags().BoolVar(&flags.NoOffline, "no-offline", false, "Do not fall back to a cached copy when offline")

	return cmd
}
