package installer

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"path/filepath"
	"runtime"
	"time"

	units "github.com/docker/go-units"
	"github.com/steviee/go-northstar/internal/requests"
)

const (
	// DefaultReleaseHost serves the release metadata.
	DefaultReleaseHost = "api.github.com"

	// DefaultReleasePath is the latest-release endpoint of the mod.
	DefaultReleasePath = "/repos/R2Northstar/Northstar/releases/latest"

	// DefaultArchiveName is the file the release archive is saved as inside
	// the game directory.
	DefaultArchiveName = "northstar.zip"
)

// Fetcher retrieves text resources.
type Fetcher interface {
	Get(ctx context.Context, req requests.Request) (string, error)
}

// PathResolver locates the game directory.
type PathResolver interface {
	Resolve() (string, bool)
}

// Config holds installer configuration.
type Config struct {
	// GamePath is the game directory chosen in the settings. When empty the
	// resolver is asked on every call.
	GamePath string

	ReleaseHost string
	ReleasePath string
	ArchiveName string

	// HTTPClient downloads release archives. The default has no timeout;
	// cancel the context to abort a download.
	HTTPClient *http.Client
	UserAgent  string

	// Platform decides which launch variants are available. Defaults to
	// runtime.GOOS.
	Platform string
}

// Installer downloads and unpacks releases into the game directory and
// launches the game.
type Installer struct {
	fetcher     Fetcher
	resolver    PathResolver
	gamePath    string
	releaseHost string
	releasePath string
	archiveName string
	httpClient  *http.Client
	userAgent   string
	platform    string
	spawn       func(path, dir string) (int, error)
}

// Result describes a completed update.
type Result struct {
	GamePath    string
	ArchivePath string
	Release     *Release
	Files       []string
	Size        int64
	Duration    time.Duration
}

// installRequest is built at the start of an update and dropped at its end.
type installRequest struct {
	gamePath    string
	downloadURL string
	archivePath string
}

// New creates an installer.
func New(fetcher Fetcher, resolver PathResolver, config *Config) *Installer {
	if config == nil {
		config = &Config{}
	}

	i := &Installer{
		fetcher:     fetcher,
		resolver:    resolver,
		gamePath:    config.GamePath,
		releaseHost: config.ReleaseHost,
		releasePath: config.ReleasePath,
		archiveName: config.ArchiveName,
		httpClient:  config.HTTPClient,
		userAgent:   config.UserAgent,
		platform:    config.Platform,
		spawn:       spawnDetached,
	}

	if i.releaseHost == "" {
		i.releaseHost = DefaultReleaseHost
	}
	if i.releasePath == "" {
		i.releasePath = DefaultReleasePath
	}
	if i.archiveName == "" {
		i.archiveName = DefaultArchiveName
	}
	if i.httpClient == nil {
		i.httpClient = &http.Client{}
	}
	if i.userAgent == "" {
		i.userAgent = requests.UserAgent()
	}
	if i.platform == "" {
		i.platform = runtime.GOOS
	}

	return i
}

// GamePath returns the configured game directory, or the detected one.
func (i *Installer) GamePath() (string, error) {
	if i.gamePath != "" {
		info, err := os.Stat(i.gamePath)
		if err != nil || !info.IsDir() {
			return "", fmt.Errorf("%w: %s is not a directory", ErrGamePathNotFound, i.gamePath)
		}
		return i.gamePath, nil
	}

	if i.resolver != nil {
		if path, ok := i.resolver.Resolve(); ok {
			return path, nil
		}
	}

	return "", ErrGamePathNotFound
}

// LatestRelease fetches the release metadata, always from the network.
func (i *Installer) LatestRelease(ctx context.Context) (*Release, error) {
	body, err := i.fetcher.Get(ctx, requests.Request{
		Host:              i.releaseHost,
		Path:              i.releasePath,
		NoOfflineFallback: true,
	})
	if err != nil {
		return nil, fmt.Errorf("fetch release metadata: %w", err)
	}

	return ParseRelease(body)
}

// Update installs the latest release into the game directory.
//
// The steps are: fetch the release metadata, stream the primary asset to
// <game>/<archive name>, extract every entry over the game directory, then
// send EventUpdated. Re-running Update converges on the latest release.
// A failure aborts the remaining steps; files already extracted stay in
// place and nothing is retried.
func (i *Installer) Update(ctx context.Context, observe Observer) (*Result, error) {
	start := time.Now()

	gamePath, err := i.GamePath()
	if err != nil {
		return nil, err
	}

	release, err := i.LatestRelease(ctx)
	if err != nil {
		return nil, err
	}

	asset, err := release.PrimaryAsset()
	if err != nil {
		return nil, err
	}

	req := installRequest{
		gamePath:    gamePath,
		downloadURL: asset.BrowserDownloadURL,
		archivePath: filepath.Join(gamePath, i.archiveName),
	}

	slog.Info("downloading release",
		"release", release.TagName,
		"asset", asset.Name,
		"size", units.HumanSize(float64(asset.Size)),
		"destination", req.archivePath)

	observe.notify(Event{Kind: EventDownloading, Release: release, BytesTotal: asset.Size})

	size, err := i.download(ctx, req.downloadURL, req.archivePath, func(done, total int64) {
		observe.notify(Event{Kind: EventDownloading, Release: release, BytesDone: done, BytesTotal: total})
	})
	if err != nil {
		return nil, err
	}

	slog.Info("download done, extracting", "archive", req.archivePath, "size", units.HumanSize(float64(size)))
	observe.notify(Event{Kind: EventExtracting, Release: release})

	files, err := extractZip(ctx, req.archivePath, req.gamePath)
	if err != nil {
		return nil, err
	}

	result := &Result{
		GamePath:    req.gamePath,
		ArchivePath: req.archivePath,
		Release:     release,
		Files:       files,
		Size:        size,
		Duration:    time.Since(start),
	}

	slog.Info("installation finished",
		"release", release.TagName,
		"files", len(files),
		"duration", result.Duration)

	observe.notify(Event{Kind: EventUpdated, Release: release, Result: result})

	return result, nil
}
