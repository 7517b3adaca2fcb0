package installer

import (
	"encoding/json"
	"fmt"
)

// Release is the subset of the GitHub release document the installer reads.
type Release struct {
	TagName string  `json:"tag_name"`
	Name    string  `json:"name"`
	Assets  []Asset `json:"assets"`

	// Message is set instead of the fields above when the API refuses the
	// request (rate limits, missing repository).
	Message string `json:"message,omitempty"`
}

// Asset is one downloadable file attached to a release.
type Asset struct {
	Name               string `json:"name"`
	Size               int64  `json:"size"`
	BrowserDownloadURL string `json:"browser_download_url"`
}

// PrimaryAsset returns the first asset, which is the release archive.
func (r *Release) PrimaryAsset() (Asset, error) {
	if len(r.Assets) == 0 || r.Assets[0].BrowserDownloadURL == "" {
		if r.Message != "" {
			return Asset{}, fmt.Errorf("%w: %s", ErrNoAssets, r.Message)
		}
		return Asset{}, ErrNoAssets
	}
	return r.Assets[0], nil
}

// ParseRelease decodes a release metadata document.
func ParseRelease(body string) (*Release, error) {
	var release Release
	if err := json.Unmarshal([]byte(body), &release); err != nil {
		return nil, fmt.Errorf("decode release: %w", err)
	}
	return &release, nil
}
