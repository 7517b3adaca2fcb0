package state

import (
	"fmt"
	"path/filepath"
	"regexp"
	"strings"
)

// hostRegex accepts DNS names and IPv4 addresses with an optional port.
var hostRegex = regexp.MustCompile(`^[a-zA-Z0-9]([a-zA-Z0-9.-]*[a-zA-Z0-9])?(:[0-9]{1,5})?$`)

// ValidateGamePath validates a configured game directory.
// An empty path is allowed and means the directory is detected on demand.
func ValidateGamePath(path string) error {
	if path == "" {
		return nil
	}

	if !filepath.IsAbs(path) {
		return fmt.Errorf("game path must be absolute: %q", path)
	}

	return nil
}

// ValidateHost validates a remote host name such as "api.github.com".
func ValidateHost(host string) error {
	if host == "" {
		return fmt.Errorf("host cannot be empty")
	}

	if strings.Contains(host, "://") {
		return fmt.Errorf("host must not include a scheme: %q", host)
	}

	if !hostRegex.MatchString(host) {
		return fmt.Errorf("invalid host: %q", host)
	}

	return nil
}

// ValidateArchiveName validates the file name the release archive is saved as.
// Rules:
// - Must not be empty
// - Must be a bare file name (no directory separators)
// - Must end in .zip
func ValidateArchiveName(name string) error {
	if name == "" {
		return fmt.Errorf("archive name cannot be empty")
	}

	if name != filepath.Base(name) || strings.ContainsAny(name, `/\`) {
		return fmt.Errorf("archive name must be a plain file name: %q", name)
	}

	if !strings.HasSuffix(strings.ToLower(name), ".zip") {
		return fmt.Errorf("archive name must end in .zip: %q", name)
	}

	return nil
}
