package requests

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestClient_Check(t *testing.T) {
	ok := httptest.NewTLSServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	}))
	defer ok.Close()

	noContent := httptest.NewTLSServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNoContent)
	}))
	defer noContent.Close()

	broken := httptest.NewTLSServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
	}))
	defer broken.Close()

	fails := "https://" + deadHost(t)

	// Both test servers trust the same httptest certificate.
	client := NewClient(&Config{HTTPClient: ok.Client()})

	tests := []struct {
		name      string
		endpoints []string
		want      CheckResult
	}{
		{
			name:      "one reachable one transport failure",
			endpoints: []string{ok.URL, fails},
			want:      CheckResult{Succeeded: []string{ok.URL}, Failed: []string{fails}},
		},
		{
			name:      "single endpoint",
			endpoints: []string{ok.URL},
			want:      CheckResult{Succeeded: []string{ok.URL}, Failed: []string{}},
		},
		{
			name:      "non-2xx counts as failed",
			endpoints: []string{noContent.URL, broken.URL},
			want:      CheckResult{Succeeded: []string{noContent.URL}, Failed: []string{broken.URL}},
		},
		{
			name:      "malformed endpoint",
			endpoints: []string{"://nope"},
			want:      CheckResult{Succeeded: []string{}, Failed: []string{"://nope"}},
		},
		{
			name:      "no endpoints",
			endpoints: nil,
			want:      CheckResult{Succeeded: []string{}, Failed: []string{}},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := client.Check(context.Background(), tt.endpoints...)
			assert.Equal(t, tt.want, got)
		})
	}
}
