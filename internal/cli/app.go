package cli

import (
	"fmt"
	"time"

	"github.com/steviee/go-northstar/internal/cache"
	"github.com/steviee/go-northstar/internal/gamepath"
	"github.com/steviee/go-northstar/internal/installer"
	"github.com/steviee/go-northstar/internal/requests"
	"github.com/steviee/go-northstar/internal/state"
)

// app bundles the components a command works with.
type app struct {
	cfg       *state.Config
	cache     *cache.Store
	client    *requests.Client
	resolver  *gamepath.Resolver
	installer *installer.Installer
}

// newApp wires the components from the settings.
func newApp(cfg *state.Config) (*app, error) {
	store, err := cache.NewDefault()
	if err != nil {
		return nil, fmt.Errorf("open request cache: %w", err)
	}
	return buildApp(cfg, store, nil), nil
}

// buildApp wires the components around an existing store. clientConfig may
// carry a custom HTTP client or scheme; its Cache is always set to store.
func buildApp(cfg *state.Config, store *cache.Store, clientConfig *requests.Config) *app {
	if clientConfig == nil {
		clientConfig = &requests.Config{}
	}
	clientConfig.Cache = store
	client := requests.NewClient(clientConfig)

	resolver := gamepath.NewResolver(&gamepath.Config{
		LastCandidateWins: cfg.Detect.LastCandidateWins,
	})

	inst := installer.New(client, resolver, &installer.Config{
		GamePath:    cfg.GamePath,
		ReleaseHost: cfg.Release.Host,
		ReleasePath: cfg.Release.Path,
		ArchiveName: cfg.Release.ArchiveName,
		HTTPClient:  clientConfig.HTTPClient,
	})

	return &app{
		cfg:       cfg,
		cache:     store,
		client:    client,
		resolver:  resolver,
		installer: inst,
	}
}

// maxAge is the configured cache freshness, falling back to the default.
func (a *app) maxAge() time.Duration {
	if a.cfg.Cache.MaxAge > 0 {
		return a.cfg.Cache.MaxAge
	}
	return cache.DefaultMaxAge
}
