package installer

import (
	"errors"
	"fmt"
)

// Sentinel errors for installation and launch.
var (
	// ErrGamePathNotFound is returned when no game directory is configured
	// and detection finds none.
	ErrGamePathNotFound = errors.New("game directory not found")

	// ErrNoAssets is returned when the release metadata lists no download.
	ErrNoAssets = errors.New("release has no downloadable assets")

	// ErrDownload is returned when the release archive cannot be downloaded.
	ErrDownload = errors.New("download failed")

	// ErrExtraction is returned when the release archive cannot be unpacked.
	ErrExtraction = errors.New("extraction failed")

	// ErrUnknownVariant is returned for a launch variant that does not exist.
	ErrUnknownVariant = errors.New("unknown launch variant")

	// ErrUnsupportedPlatform is returned when a launch variant cannot run on
	// the current operating system.
	ErrUnsupportedPlatform = errors.New("launching is not supported on this platform")

	// ErrExecutableNotFound is returned when the variant's executable is
	// missing from the game directory.
	ErrExecutableNotFound = errors.New("game executable not found")
)

// StatusError reports an unexpected HTTP status for a download.
type StatusError struct {
	URL        string
	StatusCode int
}

// Error returns the error message.
func (e *StatusError) Error() string {
	return fmt.Sprintf("unexpected status %d for %s", e.StatusCode, e.URL)
}
