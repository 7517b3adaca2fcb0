package installer

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"

	"github.com/klauspost/compress/zip"
	"github.com/steviee/go-northstar/internal/requests"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeFetcher struct {
	body string
	err  error
	reqs []requests.Request
}

func (f *fakeFetcher) Get(ctx context.Context, req requests.Request) (string, error) {
	f.reqs = append(f.reqs, req)
	return f.body, f.err
}

type fakeResolver struct {
	path string
	ok   bool
}

func (f fakeResolver) Resolve() (string, bool) {
	return f.path, f.ok
}

// buildZip returns a zip archive holding files, written in the given order.
func buildZip(t *testing.T, names []string, files map[string]string) []byte {
	t.Helper()

	var buf bytes.Buffer
	w := zip.NewWriter(&buf)
	for _, name := range names {
		f, err := w.Create(name)
		require.NoError(t, err)
		_, err = f.Write([]byte(files[name]))
		require.NoError(t, err)
	}
	require.NoError(t, w.Close())
	return buf.Bytes()
}

func releaseJSON(url string) string {
	return fmt.Sprintf(`{"tag_name":"v1.20.0","name":"Northstar v1.20.0","assets":[{"name":"Northstar.release.v1.20.0.zip","size":2048,"browser_download_url":%q}]}`, url)
}

func serveArchive(t *testing.T, archive []byte) *httptest.Server {
	t.Helper()
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/northstar.zip" {
			http.NotFound(w, r)
			return
		}
		w.Header().Set("Content-Length", fmt.Sprint(len(archive)))
		_, _ = w.Write(archive)
	}))
	t.Cleanup(server.Close)
	return server
}

func TestNew_Defaults(t *testing.T) {
	i := New(&fakeFetcher{}, nil, nil)

	assert.Equal(t, DefaultReleaseHost, i.releaseHost)
	assert.Equal(t, DefaultReleasePath, i.releasePath)
	assert.Equal(t, DefaultArchiveName, i.archiveName)
	assert.Equal(t, requests.UserAgent(), i.userAgent)
	assert.NotNil(t, i.httpClient)
	assert.Zero(t, i.httpClient.Timeout)
	assert.NotEmpty(t, i.platform)
}

func TestUpdate_InstallsRelease(t *testing.T) {
	gameDir := t.TempDir()
	require.NoError(t, os.MkdirAll(filepath.Join(gameDir, "R2Northstar"), 0755))
	require.NoError(t, os.WriteFile(filepath.Join(gameDir, "NorthstarLauncher.exe"), []byte("old launcher, much longer than the new one"), 0644))

	archive := buildZip(t,
		[]string{"NorthstarLauncher.exe", "R2Northstar/mods/Northstar.Client/mod.json"},
		map[string]string{
			"NorthstarLauncher.exe": "new launcher",
			"R2Northstar/mods/Northstar.Client/mod.json": `{"Name":"Northstar.Client"}`,
		})
	server := serveArchive(t, archive)

	fetcher := &fakeFetcher{body: releaseJSON(server.URL + "/northstar.zip")}
	inst := New(fetcher, fakeResolver{path: gameDir, ok: true}, nil)

	var events []Event
	result, err := inst.Update(context.Background(), func(e Event) {
		events = append(events, e)
	})
	require.NoError(t, err)

	require.Len(t, fetcher.reqs, 1)
	assert.Equal(t, DefaultReleaseHost, fetcher.reqs[0].Host)
	assert.Equal(t, DefaultReleasePath, fetcher.reqs[0].Path)
	assert.Empty(t, fetcher.reqs[0].CacheKey)
	assert.True(t, fetcher.reqs[0].NoOfflineFallback)

	assert.Equal(t, gameDir, result.GamePath)
	assert.Equal(t, filepath.Join(gameDir, "northstar.zip"), result.ArchivePath)
	assert.Equal(t, "v1.20.0", result.Release.TagName)
	assert.Equal(t, int64(len(archive)), result.Size)
	assert.Len(t, result.Files, 2)

	launcher, err := os.ReadFile(filepath.Join(gameDir, "NorthstarLauncher.exe"))
	require.NoError(t, err)
	assert.Equal(t, "new launcher", string(launcher))

	mod, err := os.ReadFile(filepath.Join(gameDir, "R2Northstar", "mods", "Northstar.Client", "mod.json"))
	require.NoError(t, err)
	assert.Equal(t, `{"Name":"Northstar.Client"}`, string(mod))

	saved, err := os.ReadFile(result.ArchivePath)
	require.NoError(t, err)
	assert.Equal(t, archive, saved)

	updated := 0
	for _, e := range events {
		if e.Kind == EventUpdated {
			updated++
		}
	}
	assert.Equal(t, 1, updated)
	require.NotEmpty(t, events)
	assert.Equal(t, EventDownloading, events[0].Kind)
	last := events[len(events)-1]
	assert.Equal(t, EventUpdated, last.Kind)
	assert.Same(t, result, last.Result)
}

func TestUpdate_ConfiguredGamePath(t *testing.T) {
	gameDir := t.TempDir()
	archive := buildZip(t, []string{"a.txt"}, map[string]string{"a.txt": "a"})
	server := serveArchive(t, archive)

	inst := New(&fakeFetcher{body: releaseJSON(server.URL + "/northstar.zip")},
		fakeResolver{path: "/elsewhere", ok: true},
		&Config{GamePath: gameDir, ArchiveName: "custom.zip"})

	result, err := inst.Update(context.Background(), nil)
	require.NoError(t, err)
	assert.Equal(t, gameDir, result.GamePath)
	assert.FileExists(t, filepath.Join(gameDir, "custom.zip"))
	assert.FileExists(t, filepath.Join(gameDir, "a.txt"))
}

func TestUpdate_GamePathNotFound(t *testing.T) {
	tests := []struct {
		name     string
		config   *Config
		resolver PathResolver
	}{
		{name: "nothing detected", resolver: fakeResolver{}},
		{name: "no resolver"},
		{name: "configured path missing", config: &Config{GamePath: filepath.Join(t.TempDir(), "missing")}, resolver: fakeResolver{path: t.TempDir(), ok: true}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			fetcher := &fakeFetcher{}
			inst := New(fetcher, tt.resolver, tt.config)

			var events []Event
			_, err := inst.Update(context.Background(), func(e Event) { events = append(events, e) })
			require.Error(t, err)
			assert.True(t, errors.Is(err, ErrGamePathNotFound))
			assert.Empty(t, fetcher.reqs)
			assert.Empty(t, events)
		})
	}
}

func TestUpdate_MetadataFailures(t *testing.T) {
	tests := []struct {
		name    string
		fetcher *fakeFetcher
		wantErr error
	}{
		{
			name:    "transport failure",
			fetcher: &fakeFetcher{err: requests.ErrTransport},
			wantErr: requests.ErrTransport,
		},
		{
			name:    "no assets",
			fetcher: &fakeFetcher{body: `{"tag_name":"v1.0.0","assets":[]}`},
			wantErr: ErrNoAssets,
		},
		{
			name:    "rate limited",
			fetcher: &fakeFetcher{body: `{"message":"API rate limit exceeded"}`},
			wantErr: ErrNoAssets,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			inst := New(tt.fetcher, fakeResolver{path: t.TempDir(), ok: true}, nil)

			var events []Event
			_, err := inst.Update(context.Background(), func(e Event) { events = append(events, e) })
			require.Error(t, err)
			assert.True(t, errors.Is(err, tt.wantErr))
			assert.Empty(t, events)
		})
	}

	t.Run("malformed metadata", func(t *testing.T) {
		inst := New(&fakeFetcher{body: "<html>"}, fakeResolver{path: t.TempDir(), ok: true}, nil)
		_, err := inst.Update(context.Background(), nil)
		require.Error(t, err)
		assert.Contains(t, err.Error(), "decode release")
	})
}

func TestUpdate_DownloadFailure(t *testing.T) {
	gameDir := t.TempDir()
	server := serveArchive(t, nil)

	inst := New(&fakeFetcher{body: releaseJSON(server.URL + "/gone.zip")}, fakeResolver{path: gameDir, ok: true}, nil)

	var kinds []EventKind
	_, err := inst.Update(context.Background(), func(e Event) { kinds = append(kinds, e.Kind) })
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrDownload))

	var statusErr *StatusError
	require.True(t, errors.As(err, &statusErr))
	assert.Equal(t, http.StatusNotFound, statusErr.StatusCode)

	assert.NotContains(t, kinds, EventExtracting)
	assert.NotContains(t, kinds, EventUpdated)

	entries, err := os.ReadDir(gameDir)
	require.NoError(t, err)
	assert.Empty(t, entries)
}

func TestUpdate_CorruptArchive(t *testing.T) {
	gameDir := t.TempDir()
	server := serveArchive(t, []byte("this is not a zip archive"))

	inst := New(&fakeFetcher{body: releaseJSON(server.URL + "/northstar.zip")}, fakeResolver{path: gameDir, ok: true}, nil)

	var kinds []EventKind
	_, err := inst.Update(context.Background(), func(e Event) { kinds = append(kinds, e.Kind) })
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrExtraction))
	assert.Contains(t, kinds, EventExtracting)
	assert.NotContains(t, kinds, EventUpdated)
}

func TestUpdate_Cancelled(t *testing.T) {
	archive := buildZip(t, []string{"a.txt"}, map[string]string{"a.txt": "a"})
	server := serveArchive(t, archive)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	inst := New(&fakeFetcher{body: releaseJSON(server.URL + "/northstar.zip")}, fakeResolver{path: t.TempDir(), ok: true}, nil)
	_, err := inst.Update(ctx, nil)
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrDownload))
}

func TestProgressWriter(t *testing.T) {
	var reports [][2]int64
	w := &progressWriter{total: 3 * progressInterval, report: func(done, total int64) {
		reports = append(reports, [2]int64{done, total})
	}}

	_, _ = w.Write(make([]byte, progressInterval/2))
	assert.Empty(t, reports)

	_, _ = w.Write(make([]byte, progressInterval))
	require.Len(t, reports, 1)
	assert.Equal(t, int64(progressInterval+progressInterval/2), reports[0][0])

	_, _ = w.Write(make([]byte, 10))
	w.flush()
	require.Len(t, reports, 2)
	assert.Equal(t, int64(3*progressInterval), reports[1][1])

	w.flush()
	assert.Len(t, reports, 2)
}
