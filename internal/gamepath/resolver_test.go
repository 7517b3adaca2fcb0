package gamepath

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeRegistry struct {
	dir string
	err error
}

func (f fakeRegistry) InstallDir() (string, error) {
	return f.dir, f.err
}

// writeManifest writes a modern-format libraryfolders.vdf listing roots.
func writeManifest(t *testing.T, path string, roots ...string) {
	t.Helper()

	var b strings.Builder
	b.WriteString("\"libraryfolders\"\n{\n")
	for i, root := range roots {
		fmt.Fprintf(&b, "\t\"%d\"\n\t{\n\t\t\"path\"\t\t\"%s\"\n\t}\n", i, root)
	}
	b.WriteString("\t\"contentstatsid\"\t\t\"-1\"\n}\n")

	require.NoError(t, os.MkdirAll(filepath.Dir(path), 0755))
	require.NoError(t, os.WriteFile(path, []byte(b.String()), 0644))
}

// installGame creates <root>/steamapps/common/Titanfall2/Titanfall2.exe.
func installGame(t *testing.T, root string) string {
	t.Helper()

	gameDir := filepath.Join(root, "steamapps", "common", DefaultGameName)
	require.NoError(t, os.MkdirAll(gameDir, 0755))
	require.NoError(t, os.WriteFile(filepath.Join(gameDir, DefaultGameName+".exe"), []byte("MZ"), 0644))
	return gameDir
}

func TestNewResolver_Defaults(t *testing.T) {
	r := NewResolver(nil)

	assert.Equal(t, DefaultGameName, r.gameName)
	assert.NotEmpty(t, r.platform)
	assert.IsType(t, systemRegistry{}, r.registry)
	assert.False(t, r.lastCandidateWins)
}

func TestResolver_FirstRootWithGameWins(t *testing.T) {
	base := t.TempDir()
	rootA := filepath.Join(base, "A")
	rootB := filepath.Join(base, "B")
	rootC := filepath.Join(base, "C")
	for _, root := range []string{rootA, rootB, rootC} {
		require.NoError(t, os.MkdirAll(root, 0755))
	}
	want := installGame(t, rootB)

	manifest := filepath.Join(base, "libraryfolders.vdf")
	writeManifest(t, manifest, rootA, rootB, rootC)

	r := NewResolver(&Config{Platform: "linux", ManifestPaths: []string{manifest}})

	got, ok := r.Resolve()
	require.True(t, ok)
	assert.Equal(t, want, got)
}

func TestResolver_EarlierRootPreferred(t *testing.T) {
	base := t.TempDir()
	rootA := filepath.Join(base, "A")
	rootB := filepath.Join(base, "B")
	want := installGame(t, rootA)
	installGame(t, rootB)

	manifest := filepath.Join(base, "libraryfolders.vdf")
	writeManifest(t, manifest, rootA, rootB)

	r := NewResolver(&Config{Platform: "linux", ManifestPaths: []string{manifest}})

	got, ok := r.Resolve()
	require.True(t, ok)
	assert.Equal(t, want, got)
}

func TestResolver_LinuxHomeManifest(t *testing.T) {
	home := t.TempDir()
	root := filepath.Join(t.TempDir(), "SteamLibrary")
	want := installGame(t, root)
	writeManifest(t, filepath.Join(home, ".steam", "steam", "steamapps", "libraryfolders.vdf"), root)

	r := NewResolver(&Config{Platform: "linux", HomeDir: home})

	got, ok := r.Resolve()
	require.True(t, ok)
	assert.Equal(t, filepath.Join(root, "steamapps", "common", "Titanfall2"), got)
	assert.Equal(t, want, got)
}

func TestResolver_NotFound(t *testing.T) {
	tests := []struct {
		name  string
		setup func(t *testing.T, home string)
	}{
		{
			name:  "no manifest",
			setup: func(t *testing.T, home string) {},
		},
		{
			name: "manifest without the game",
			setup: func(t *testing.T, home string) {
				writeManifest(t, filepath.Join(home, ".steam", "steam", "steamapps", "libraryfolders.vdf"),
					filepath.Join(home, "empty-library"))
			},
		},
		{
			name: "game folder without executable",
			setup: func(t *testing.T, home string) {
				root := filepath.Join(home, "lib")
				require.NoError(t, os.MkdirAll(filepath.Join(root, "steamapps", "common", "Titanfall2"), 0755))
				writeManifest(t, filepath.Join(home, ".steam", "steam", "steamapps", "libraryfolders.vdf"), root)
			},
		},
		{
			name: "unparseable manifest",
			setup: func(t *testing.T, home string) {
				path := filepath.Join(home, ".steam", "steam", "steamapps", "libraryfolders.vdf")
				require.NoError(t, os.MkdirAll(filepath.Dir(path), 0755))
				require.NoError(t, os.WriteFile(path, []byte(`"appstate" { "appid" "1" }`), 0644))
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			home := t.TempDir()
			tt.setup(t, home)

			r := NewResolver(&Config{Platform: "linux", HomeDir: home})

			got, ok := r.Resolve()
			assert.False(t, ok)
			assert.Empty(t, got)
		})
	}
}

func TestResolver_RegistryShortCircuits(t *testing.T) {
	base := t.TempDir()
	root := filepath.Join(base, "lib")
	installGame(t, root)
	manifest := filepath.Join(base, "libraryfolders.vdf")
	writeManifest(t, manifest, root)

	r := NewResolver(&Config{
		Platform:      "windows",
		ManifestPaths: []string{manifest},
		Registry:      fakeRegistry{dir: `D:\Origin Games\Titanfall2`},
	})

	got, ok := r.Resolve()
	require.True(t, ok)
	assert.Equal(t, `D:\Origin Games\Titanfall2`, got)
}

func TestResolver_RegistryFailureFallsThrough(t *testing.T) {
	tests := []struct {
		name     string
		registry fakeRegistry
	}{
		{name: "missing key", registry: fakeRegistry{err: errors.New("The system cannot find the file specified.")}},
		{name: "empty value", registry: fakeRegistry{dir: ""}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			base := t.TempDir()
			root := filepath.Join(base, "lib")
			want := installGame(t, root)
			manifest := filepath.Join(base, "libraryfolders.vdf")
			writeManifest(t, manifest, root)

			r := NewResolver(&Config{
				Platform:      "windows",
				ManifestPaths: []string{manifest},
				Registry:      tt.registry,
			})

			got, ok := r.Resolve()
			require.True(t, ok)
			assert.Equal(t, want, got)
		})
	}
}

func TestResolver_RegistryIgnoredOffWindows(t *testing.T) {
	r := NewResolver(&Config{
		Platform: "linux",
		HomeDir:  t.TempDir(),
		Registry: fakeRegistry{dir: "/should/not/be/used"},
	})

	_, ok := r.Resolve()
	assert.False(t, ok)
}

func TestResolver_ManifestCandidates(t *testing.T) {
	tests := []struct {
		name     string
		platform string
		want     []string
	}{
		{
			name:     "windows",
			platform: "windows",
			want:     []string{`C:\Program Files (x86)\Steam\steamapps\libraryfolders.vdf`},
		},
		{
			name:     "linux",
			platform: "linux",
			want: []string{
				filepath.Join("/home/pilot", ".steam", "steam", "steamapps", "libraryfolders.vdf"),
				filepath.Join("/home/pilot", ".var", "app", "com.valvesoftware.Steam", ".steam", "steam", "steamapps", "libraryfolders.vdf"),
			},
		},
		{
			name:     "freebsd shares the unix candidates",
			platform: "freebsd",
			want: []string{
				filepath.Join("/home/pilot", ".steam", "steam", "steamapps", "libraryfolders.vdf"),
				filepath.Join("/home/pilot", ".var", "app", "com.valvesoftware.Steam", ".steam", "steam", "steamapps", "libraryfolders.vdf"),
			},
		},
		{
			name:     "darwin has none",
			platform: "darwin",
			want:     nil,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r := NewResolver(&Config{Platform: tt.platform, HomeDir: "/home/pilot"})
			assert.Equal(t, tt.want, r.ManifestCandidates())
		})
	}
}

func TestResolver_CandidateSelection(t *testing.T) {
	home := t.TempDir()
	nativeRoot := filepath.Join(t.TempDir(), "native")
	flatpakRoot := filepath.Join(t.TempDir(), "flatpak")
	nativeGame := installGame(t, nativeRoot)
	flatpakGame := installGame(t, flatpakRoot)

	writeManifest(t, filepath.Join(home, ".steam", "steam", "steamapps", "libraryfolders.vdf"), nativeRoot)
	writeManifest(t, filepath.Join(home, ".var", "app", "com.valvesoftware.Steam", ".steam", "steam", "steamapps", "libraryfolders.vdf"), flatpakRoot)

	tests := []struct {
		name              string
		lastCandidateWins bool
		want              string
	}{
		{name: "first existing candidate by default", lastCandidateWins: false, want: nativeGame},
		{name: "last existing candidate when requested", lastCandidateWins: true, want: flatpakGame},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r := NewResolver(&Config{Platform: "linux", HomeDir: home, LastCandidateWins: tt.lastCandidateWins})

			got, ok := r.Resolve()
			require.True(t, ok)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestResolver_ReprobesEachCall(t *testing.T) {
	home := t.TempDir()
	root := filepath.Join(t.TempDir(), "lib")
	writeManifest(t, filepath.Join(home, ".steam", "steam", "steamapps", "libraryfolders.vdf"), root)

	r := NewResolver(&Config{Platform: "linux", HomeDir: home})

	_, ok := r.Resolve()
	require.False(t, ok)

	want := installGame(t, root)

	got, ok := r.Resolve()
	require.True(t, ok)
	assert.Equal(t, want, got)
}
