//go:build windows

package gamepath

import (
	"fmt"
	"strings"

	"golang.org/x/sys/windows/registry"
)

const (
	registryKeyPath   = `SOFTWARE\Respawn\Titanfall2`
	registryValueName = "Install Dir"
)

// readRegistryInstallDir reads the install directory the game's own
// installer records under HKEY_LOCAL_MACHINE.
func readRegistryInstallDir() (string, error) {
	key, err := registry.OpenKey(registry.LOCAL_MACHINE, registryKeyPath, registry.QUERY_VALUE)
	if err != nil {
		return "", fmt.Errorf("open registry key: %w", err)
	}
	defer func() {
		_ = key.Close()
	}()

	dir, _, err := key.GetStringValue(registryValueName)
	if err != nil {
		return "", fmt.Errorf("read registry value %q: %w", registryValueName, err)
	}

	return strings.TrimSpace(dir), nil
}
