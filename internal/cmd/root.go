package cmd

import (
	"context"
	"fmt"
	"os"
	"path/filepath"

	"github.com/fulmenhq/gofulmen/appidentity"
	gfconfig "github.com/fulmenhq/gofulmen/config"
	"github.com/fulmenhq/gofulmen/foundry"
	"github.com/fulmenhq/gofulmen/telemetry"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"go.uber.org/zap"

	"github.com/worklane/worklane-cli/internal/appid"
	"github.com/worklane/worklane-cli/internal/config"
	"github.com/worklane/worklane-cli/internal/observability"
)

var (
	cfgFile string
	verbose bool

	// appIdentity is read from the embedded .fulmen/app.yaml
	appIdentity *appidentity.Identity

	// Build metadata injected by the main package
	versionInfo struct {
		Version   string
		Commit    string
		BuildDate string
	}
)

// SetVersionInfo records the build metadata stamped in at link time.
func SetVersionInfo(version, commit, buildDate string) {
	versionInfo.Version = version
	versionInfo.Commit = commit
	versionInfo.BuildDate = buildDate
}

// GetAppIdentity returns the loaded app identity. It is nil until
// initConfig has run.
func GetAppIdentity() *appidentity.Identity {
	return appIdentity
}

var rootCmd = &cobra.Command{
	// Placeholder values; applyIdentity replaces them once the app
	// identity is available.
	Use:   filepath.Base(os.Args[0]),
	Short: "Worklane command-line client",
	Long: `Command-line client for the Worklane project management API.

See the subcommand help for individual operations.`,
}

// Execute runs the root command. main calls this exactly once.
func Execute() error {
	return rootCmd.Execute()
}

// applyIdentity rewrites the root command's help surfaces from the app
// identity so the binary describes itself the same way everywhere.
func applyIdentity(identity *appidentity.Identity) {
	if identity == nil {
		return
	}
	if identity.BinaryName != "" {
		rootCmd.Use = identity.BinaryName
	}
	if identity.Description != "" {
		rootCmd.Short = identity.Description
		rootCmd.Long = fmt.Sprintf("%s - %s\n\nSee the subcommand help for individual operations.", identity.BinaryName, identity.Description)
	}
	if f := rootCmd.PersistentFlags().Lookup("config"); f != nil && identity.ConfigName != "" {
		f.Usage = fmt.Sprintf("config file (default is $XDG_CONFIG_HOME/%s/config.yaml)", identity.ConfigName)
	}
}

func init() {
	// Swap in a disabled telemetry system before anything loads config,
	// otherwise early metric emission would land on stdout. Serve mode
	// installs the real system later.
	if sys, err := telemetry.NewSystem(&telemetry.Config{Enabled: false}); err == nil {
		telemetry.SetGlobalSystem(sys)
	}

	// Cobra renders --help before OnInitialize fires, so the identity is
	// applied here too for accurate help text.
	if identity, err := appid.Get(context.Background()); err == nil {
		appIdentity = identity
		applyIdentity(identity)
	}

	cobra.OnInitialize(initConfig)

	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "config file (overrides the identity search paths)")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "verbose output (debug level logging)")

	_ = viper.BindPFlag("verbose", rootCmd.PersistentFlags().Lookup("verbose"))
}

// initConfig loads the app identity, points viper at the config search
// paths, and reads the config file when one exists.
func initConfig() {
	identity, err := appid.Get(context.Background())
	if err != nil {
		ExitWithCodeStderr(foundry.ExitFileNotFound, "Failed to load app identity (.fulmen/app.yaml)", err)
	}
	appIdentity = identity
	applyIdentity(identity)

	// The CLI logger must exist before config loading can complain.
	observability.InitCLILogger(appIdentity.BinaryName, verbose)

	if cfgFile != "" {
		viper.SetConfigFile(cfgFile)
	} else {
		addConfigSearchPaths()
	}

	// Named environment variables under the identity's prefix override
	// file values.
	viper.SetEnvPrefix(appIdentity.EnvPrefix)
	viper.AutomaticEnv()

	if err := viper.ReadInConfig(); err == nil {
		if verbose {
			observability.CLILogger.Debug("Using config file", zap.String("path", viper.ConfigFileUsed()))
		}
	} else if verbose {
		// A missing file is fine; every key has a default.
		if _, ok := err.(viper.ConfigFileNotFoundError); ok {
			observability.CLILogger.Debug("No config file found, using defaults and environment variables")
		} else {
			observability.CLILogger.Warn("Error reading config file", zap.Error(err))
		}
	}

	registerDefaults()
}

// addConfigSearchPaths registers the XDG config directory, a legacy
// directory named after the binary, and ./config as a development
// convenience. Without XDG support the fallback is a dotfile in $HOME.
func addConfigSearchPaths() {
	appConfigDir := gfconfig.GetAppConfigDir(appIdentity.ConfigName)
	if appConfigDir == "" {
		if verbose {
			observability.CLILogger.Warn("Could not resolve XDG config directory, falling back to home directory")
		}
		home, err := os.UserHomeDir()
		if err != nil {
			ExitWithCode(observability.CLILogger, foundry.ExitFileNotFound, "Could not find home directory", err)
		}
		viper.AddConfigPath(home)
		viper.SetConfigName("." + appIdentity.ConfigName)
	} else {
		viper.AddConfigPath(appConfigDir)
		viper.SetConfigName("config")

		if appIdentity.BinaryName != "" && appIdentity.BinaryName != appIdentity.ConfigName {
			if legacyDir := gfconfig.GetAppConfigDir(appIdentity.BinaryName); legacyDir != "" {
				viper.AddConfigPath(legacyDir)
			}
		}
	}

	viper.AddConfigPath("./config")
	viper.SetConfigType("yaml")
}

// registerDefaults seeds viper with the default value for every config key.
func registerDefaults() {
	// API defaults. Auth token and organization id have no defaults; they
	// come from the config file or WORKLANE_API_AUTH_TOKEN /
	// WORKLANE_API_ORGANIZATION_ID.
	viper.SetDefault("api.base_url", "https://api.worklane.com/api/v2")
	viper.SetDefault("api.timeout", "30s")

	// HTTP server
	viper.SetDefault("server.host", "localhost")
	viper.SetDefault("server.port", 8080)
	viper.SetDefault("server.read_timeout", "30s")
	viper.SetDefault("server.write_timeout", "30s")
	viper.SetDefault("server.idle_timeout", "120s")
	viper.SetDefault("server.shutdown_timeout", "10s")

	// Logging
	viper.SetDefault("logging.level", "info")
	viper.SetDefault("logging.profile", "structured")

	// Cache database
	viper.SetDefault("store.driver", "libsql")
	viper.SetDefault("store.path", config.DefaultStorePath())
	viper.SetDefault("store.url", "")
	viper.SetDefault("store.auth_token", "")

	// Response cache defaults; per-endpoint TTLs override default_ttl by
	// longest matching prefix.
	viper.SetDefault("cache.enabled", true)
	viper.SetDefault("cache.default_ttl", "5m")
	viper.SetDefault("cache.ttls", map[string]string{
		"/projects":     "1h",
		"/time_entries": "5m",
		"/tasks":        "15m",
	})
	viper.SetDefault("cache.max_bytes", 50<<20)
	viper.SetDefault("cache.max_entries", 1000)

	// Resolve cache defaults
	viper.SetDefault("resolver.exact_ttl", "24h")
	viper.SetDefault("resolver.fuzzy_ttl", "1h")

	// Rate limit class overrides (optional; defaults follow documented quotas)
	viper.SetDefault("rate_limits", map[string]any{})

	// Prometheus endpoint
	viper.SetDefault("metrics.enabled", true)
	viper.SetDefault("metrics.port", 9090)

	// Health probes
	viper.SetDefault("health.enabled", true)

	// Batch resolve workers
	viper.SetDefault("workers", 4)

	// Debug and pprof
	viper.SetDefault("debug.enabled", false)
	viper.SetDefault("debug.pprof_enabled", false)
}
