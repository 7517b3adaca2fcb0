package gamepath

import "errors"

var (
	// ErrNoLibraryFolders is returned when a manifest has no libraryfolders group.
	ErrNoLibraryFolders = errors.New("manifest has no libraryfolders group")

	// errNoRegistry is returned by the registry probe on platforms without one.
	errNoRegistry = errors.New("no installation registry on this platform")
)
