//go:build !windows

package gamepath

func readRegistryInstallDir() (string, error) {
	return "", errNoRegistry
}
