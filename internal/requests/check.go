package requests

import (
	"context"
	"io"
	"log/slog"
	"net/http"
)

// CheckResult partitions probed endpoints by reachability.
type CheckResult struct {
	Succeeded []string `json:"succeeded"`
	Failed    []string `json:"failed"`
}

// Check probes each endpoint with a GET and sorts it into Succeeded (2xx) or
// Failed (any other status, or any error). Endpoints are probed one after
// another, in order. Check never fails as a whole.
func (c *Client) Check(ctx context.Context, endpoints ...string) CheckResult {
	result := CheckResult{
		Succeeded: []string{},
		Failed:    []string{},
	}

	for _, endpoint := range endpoints {
		if c.probe(ctx, endpoint) {
			result.Succeeded = append(result.Succeeded, endpoint)
			continue
		}
		result.Failed = append(result.Failed, endpoint)
	}

	return result
}

// probe reports whether endpoint answered with a 2xx status.
func (c *Client) probe(ctx context.Context, endpoint string) bool {
	req, err := c.newRequest(ctx, endpoint)
	if err != nil {
		slog.Debug("endpoint check failed", "endpoint", endpoint, "error", err)
		return false
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		slog.Debug("endpoint check failed", "endpoint", endpoint, "error", err)
		return false
	}
	defer func() {
		_ = resp.Body.Close()
	}()
	_, _ = io.Copy(io.Discard, resp.Body)

	slog.Debug("endpoint checked", "endpoint", endpoint, "status", resp.StatusCode)

	return resp.StatusCode >= http.StatusOK && resp.StatusCode < http.StatusMultipleChoices
}
