package cli

import (
	"errors"
	"fmt"
	"io"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"github.com/steviee/go-northstar/internal/logging"
	"github.com/steviee/go-northstar/internal/state"
)

// EnvPrefix prefixes environment overrides, e.g. GONORTHSTAR_GAME_PATH.
const EnvPrefix = "GONORTHSTAR"

// globalOptions holds the persistent flags and what PersistentPreRunE
// builds from them.
type globalOptions struct {
	cfgFile  string
	gamePath string
	jsonOut  bool
	quiet    bool
	verbose  bool

	v          *viper.Viper
	configPath string
	cfg        *state.Config
	logCloser  io.Closer

	// newApp builds the components; tests replace it.
	newApp func(cfg *state.Config) (*app, error)
}

// NewRootCommand creates and returns the root cobra command
func NewRootCommand(version, commit, date, builtBy string) *cobra.Command {
	return newRootCommand(&globalOptions{newApp: newApp}, version, commit, date, builtBy)
}

func newRootCommand(opts *globalOptions, version, commit, date, builtBy string) *cobra.Command {
	opts.v = viper.New()

	rootCmd := &cobra.Command{
		Use:   "go-northstar",
		Short: "Install, update and launch the Northstar mod for Titanfall 2",
		Long: `go-northstar keeps the Northstar mod for Titanfall 2 up to date.

It provides:
  - Detection of the Titanfall 2 install directory (registry and Steam libraries)
  - Downloading and extracting the latest Northstar release
  - Launching the game with or without the mod
  - A cached client for remote text resources with offline fallback

Settings are stored in ~/.config/go-northstar/config.yaml by default.`,
		Example: `  # Find the game and remember its location
  go-northstar path detect --save

  # Install or update Northstar with a progress view
  go-northstar update --tui

  # Launch the game with Northstar
  go-northstar launch

  # Fetch a resource through the request cache
  go-northstar fetch api.github.com /repos/R2Northstar/Northstar/releases/latest --cache-key releases`,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			if err := opts.initConfig(cmd); err != nil {
				return fmt.Errorf("failed to initialize config: %w", err)
			}

			if err := opts.initLogger(cmd.ErrOrStderr()); err != nil {
				return fmt.Errorf("failed to initialize logger: %w", err)
			}

			return nil
		},
		PersistentPostRunE: func(cmd *cobra.Command, args []string) error {
			if opts.logCloser != nil {
				return opts.logCloser.Close()
			}
			return nil
		},
	}

	rootCmd.PersistentFlags().StringVar(&opts.cfgFile, "config", "", "config file (default: ~/.config/go-northstar/config.yaml)")
	rootCmd.PersistentFlags().StringVar(&opts.gamePath, "game-path", "", "Titanfall 2 directory (overrides the configured one)")
	rootCmd.PersistentFlags().BoolVar(&opts.jsonOut, "json", false, "output in JSON format")
	rootCmd.PersistentFlags().BoolVar(&opts.quiet, "quiet", false, "suppress non-essential output")
	rootCmd.PersistentFlags().BoolVar(&opts.verbose, "verbose", false, "enable verbose logging")

	rootCmd.MarkFlagsMutuallyExclusive("json", "quiet")
	rootCmd.MarkFlagsMutuallyExclusive("verbose", "quiet")

	_ = opts.v.BindPFlag("game_path", rootCmd.PersistentFlags().Lookup("game-path"))

	rootCmd.AddCommand(NewVersionCommand(opts, version, commit, date, builtBy))
	rootCmd.AddCommand(NewUpdateCommand(opts))
	rootCmd.AddCommand(NewLaunchCommand(opts))
	rootCmd.AddCommand(NewPathCommand(opts))
	rootCmd.AddCommand(NewFetchCommand(opts))
	rootCmd.AddCommand(NewCheckCommand(opts))
	rootCmd.AddCommand(NewCacheCommand(opts))

	return rootCmd
}

// initConfig loads the settings document and applies environment and flag
// overrides on top of it.
func (o *globalOptions) initConfig(cmd *cobra.Command) error {
	path := o.cfgFile
	if path == "" {
		var err error
		if path, err = state.GetConfigPath(); err != nil {
			return err
		}
	}

	cfg, err := state.LoadConfigFile(cmd.Context(), path)
	if err != nil {
		return err
	}

	o.v.SetEnvPrefix(EnvPrefix)
	o.v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	o.v.AutomaticEnv()

	if err := applyOverrides(o.v, cfg); err != nil {
		return err
	}

	if err := state.ValidateConfig(cfg); err != nil {
		return fmt.Errorf("invalid config: %w", err)
	}

	o.configPath = path
	o.cfg = cfg
	return nil
}

// applyOverrides copies every key set in v (environment or flag) into cfg.
func applyOverrides(v *viper.Viper, cfg *state.Config) error {
	if v.IsSet("game_path") {
		path := v.GetString("game_path")
		if path != "" {
			abs, err := filepath.Abs(path)
			if err != nil {
				return fmt.Errorf("game_path: %w", err)
			}
			path = abs
		}
		cfg.GamePath = path
	}
	if v.IsSet("release.host") {
		cfg.Release.Host = v.GetString("release.host")
	}
	if v.IsSet("release.path") {
		cfg.Release.Path = v.GetString("release.path")
	}
	if v.IsSet("release.archive_name") {
		cfg.Release.ArchiveName = v.GetString("release.archive_name")
	}
	if v.IsSet("cache.max_age") {
		d, err := parseDuration(v.GetString("cache.max_age"))
		if err != nil {
			return fmt.Errorf("cache.max_age: %w", err)
		}
		cfg.Cache.MaxAge = d
	}
	if v.IsSet("detect.last_candidate_wins") {
		cfg.Detect.LastCandidateWins = v.GetBool("detect.last_candidate_wins")
	}
	if v.IsSet("logging.level") {
		cfg.Logging.Level = v.GetString("logging.level")
	}
	if v.IsSet("logging.file") {
		cfg.Logging.File = v.GetString("logging.file")
	}
	return nil
}

// initLogger installs the process logger from the flags and settings.
func (o *globalOptions) initLogger(out io.Writer) error {
	level := o.cfg.Logging.Level
	switch {
	case o.quiet:
		level = "error"
	case o.verbose:
		level = "debug"
	}

	closer, err := logging.Setup(out, logging.Options{
		Level:      level,
		JSON:       o.jsonOut,
		File:       o.cfg.Logging.File,
		MaxSizeMB:  o.cfg.Logging.MaxSizeMB,
		MaxBackups: o.cfg.Logging.MaxBackups,
		Compress:   o.cfg.Logging.Compress,
	})
	if err != nil {
		return err
	}
	o.logCloser = closer
	return nil
}

// app returns the components for the loaded settings.
func (o *globalOptions) app() (*app, error) {
	if o.cfg == nil {
		return nil, errors.New("settings not loaded")
	}
	return o.newApp(o.cfg)
}
