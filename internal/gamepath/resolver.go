package gamepath

import (
	"log/slog"
	"os"
	"path/filepath"
	"runtime"
)

const (
	// DefaultGameName is both the Steam install folder and the executable
	// base name of the game.
	DefaultGameName = "Titanfall2"

	windowsManifestPath = `C:\Program Files (x86)\Steam\steamapps\libraryfolders.vdf`
)

// unixManifestPaths are probed relative to the home directory, in order.
var unixManifestPaths = []string{
	filepath.Join(".steam", "steam", "steamapps", "libraryfolders.vdf"),
	filepath.Join(".var", "app", "com.valvesoftware.Steam", ".steam", "steam", "steamapps", "libraryfolders.vdf"),
}

// RegistryReader looks up the install directory in a native installation
// registry.
type RegistryReader interface {
	InstallDir() (string, error)
}

type systemRegistry struct{}

func (systemRegistry) InstallDir() (string, error) {
	return readRegistryInstallDir()
}

// Config holds resolver configuration.
type Config struct {
	GameName string

	// Platform selects the probe chain. Defaults to runtime.GOOS.
	Platform string

	// HomeDir anchors the Unix manifest candidates. Defaults to the
	// current user's home directory, looked up on each Resolve.
	HomeDir string

	// ManifestPaths replaces the platform's manifest candidates.
	ManifestPaths []string

	// LastCandidateWins uses the last existing manifest candidate instead of
	// the first one, matching older launcher releases.
	LastCandidateWins bool

	// Registry overrides the Windows registry probe.
	Registry RegistryReader
}

// Resolver locates the game directory. It keeps no state between calls.
type Resolver struct {
	gameName          string
	platform          string
	homeDir           string
	manifestPaths     []string
	lastCandidateWins bool
	registry          RegistryReader
}

// NewResolver creates a resolver.
func NewResolver(config *Config) *Resolver {
	if config == nil {
		config = &Config{}
	}

	r := &Resolver{
		gameName:          config.GameName,
		platform:          config.Platform,
		homeDir:           config.HomeDir,
		manifestPaths:     config.ManifestPaths,
		lastCandidateWins: config.LastCandidateWins,
		registry:          config.Registry,
	}

	if r.gameName == "" {
		r.gameName = DefaultGameName
	}
	if r.platform == "" {
		r.platform = runtime.GOOS
	}
	if r.registry == nil {
		r.registry = systemRegistry{}
	}

	return r
}

// Resolve returns the game directory, or false when no probe finds it.
//
// On Windows the registry is asked first. Then the Steam library manifest is
// read and each library root is checked for the game executable; the first
// root that has it wins.
func (r *Resolver) Resolve() (string, bool) {
	if r.platform == "windows" {
		dir, err := r.registry.InstallDir()
		if err == nil && dir != "" {
			slog.Debug("game directory found in registry", "path", dir)
			return dir, true
		}
		slog.Debug("registry probe failed", "error", err)
	}

	manifest := r.FindManifest()
	if manifest == "" {
		slog.Debug("no library manifest found", "candidates", r.ManifestCandidates())
		return "", false
	}

	roots, err := Roots(manifest)
	if err != nil {
		slog.Debug("library manifest unusable", "path", manifest, "error", err)
		return "", false
	}

	for _, root := range roots {
		gameDir := filepath.Join(root, "steamapps", "common", r.gameName)
		if isFile(filepath.Join(gameDir, r.gameName+".exe")) {
			slog.Debug("game directory found in library", "root", root, "path", gameDir)
			return gameDir, true
		}
	}

	slog.Debug("game not present in any library root", "manifest", manifest, "roots", len(roots))
	return "", false
}

// ManifestCandidates returns the manifest locations probed on this platform,
// in probe order.
func (r *Resolver) ManifestCandidates() []string {
	if len(r.manifestPaths) > 0 {
		return r.manifestPaths
	}

	switch r.platform {
	case "windows":
		return []string{windowsManifestPath}
	case "linux", "freebsd", "openbsd":
		home := r.homeDir
		if home == "" {
			var err error
			if home, err = os.UserHomeDir(); err != nil {
				return nil
			}
		}
		candidates := make([]string, 0, len(unixManifestPaths))
		for _, rel := range unixManifestPaths {
			candidates = append(candidates, filepath.Join(home, rel))
		}
		return candidates
	default:
		return nil
	}
}

// FindManifest returns the manifest candidate to read, or "" if none exists.
func (r *Resolver) FindManifest() string {
	found := ""
	for _, candidate := range r.ManifestCandidates() {
		if !isFile(candidate) {
			continue
		}
		found = candidate
		if !r.lastCandidateWins {
			break
		}
	}
	return found
}

func isFile(path string) bool {
	info, err := os.Stat(path)
	return err == nil && !info.IsDir()
}
