package installer

import (
	"fmt"
	"log/slog"
	"path/filepath"
	"strings"
)

// Variant selects which executable Launch starts.
type Variant string

const (
	// VariantNorthstar starts the game with the mod loaded.
	VariantNorthstar Variant = "northstar"
	// VariantVanilla starts the unmodified game.
	VariantVanilla Variant = "vanilla"
)

var executables = map[Variant]string{
	VariantNorthstar: "NorthstarLauncher.exe",
	VariantVanilla:   "Titanfall2.exe",
}

// ParseVariant converts a name to a Variant. The empty string selects
// VariantNorthstar.
func ParseVariant(name string) (Variant, error) {
	if name == "" {
		return VariantNorthstar, nil
	}
	v := Variant(strings.ToLower(name))
	if _, ok := executables[v]; !ok {
		return "", fmt.Errorf("%w: %q", ErrUnknownVariant, name)
	}
	return v, nil
}

// Executable returns the file name started for the variant.
func (v Variant) Executable() string {
	return executables[v]
}

// Launch starts the game detached from this process and returns its PID.
// Only Windows builds of the game exist, so other platforms get
// ErrUnsupportedPlatform.
func (i *Installer) Launch(variant Variant) (int, error) {
	exe, ok := executables[variant]
	if !ok {
		return 0, fmt.Errorf("%w: %q", ErrUnknownVariant, variant)
	}

	if i.platform != "windows" {
		return 0, fmt.Errorf("%w: %s", ErrUnsupportedPlatform, i.platform)
	}

	gamePath, err := i.GamePath()
	if err != nil {
		return 0, err
	}

	path := filepath.Join(gamePath, exe)
	if !fileExists(path) {
		return 0, fmt.Errorf("%w: %s", ErrExecutableNotFound, path)
	}

	pid, err := i.spawn(path, gamePath)
	if err != nil {
		return 0, fmt.Errorf("failed to start %s: %w", exe, err)
	}

	slog.Info("game launched", "variant", string(variant), "path", path, "pid", pid)

	return pid, nil
}
