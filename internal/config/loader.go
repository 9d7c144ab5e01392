// Package config provides centralized configuration management for the
// Worklane CLI. The root command wires defaults, the user config file, and
// WORKLANE_* environment variables into viper; Load decodes that merged
// state into a typed Config.
package config

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"

	"github.com/fulmenhq/gofulmen/appidentity"
	gfconfig "github.com/fulmenhq/gofulmen/config"
	"github.com/go-viper/mapstructure/v2"
	"github.com/spf13/viper"

	"github.com/worklane/worklane-cli/internal/appid"
)

var (
	current     *Config
	currentMu   sync.RWMutex
	appIdentity *appidentity.Identity
)

// Load decodes the merged viper state into a typed Config and records it
// as the current configuration. Duration fields accept Go duration
// strings ("30s", "1h"). Safe to call multiple times (e.g. config reload).
func Load(ctx context.Context) (*Config, error) {
	if err := loadIdentity(ctx); err != nil {
		return nil, err
	}

	cfg := &Config{}
	hook := viper.DecodeHook(mapstructure.ComposeDecodeHookFunc(
		mapstructure.StringToTimeDurationHookFunc(),
		mapstructure.StringToSliceHookFunc(","),
	))
	if err := viper.Unmarshal(cfg, hook); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	applyEnvOverrides(cfg)

	if strings.TrimSpace(cfg.Store.URL) == "" && strings.TrimSpace(cfg.Store.Path) == "" {
		cfg.Store.Path = DefaultStorePath()
	}

	setCurrent(cfg)

	return cfg, nil
}

// loadIdentity memoizes the app identity used for env prefixes and paths.
func loadIdentity(ctx context.Context) error {
	if appIdentity != nil {
		return nil
	}
	identity, err := appid.Get(ctx)
	if err != nil {
		return fmt.Errorf("failed to load app identity: %w", err)
	}
	appIdentity = identity
	return nil
}

// applyEnvOverrides layers secrets and the store location from the
// environment over the decoded config. viper's AutomaticEnv only matches
// top-level keys, so nested ones are read here.
func applyEnvOverrides(cfg *Config) {
	prefix := "WORKLANE_"
	if appIdentity != nil && appIdentity.EnvPrefix != "" {
		prefix = appIdentity.EnvPrefix
	}
	if !strings.HasSuffix(prefix, "_") {
		prefix += "_"
	}

	if value := strings.TrimSpace(os.Getenv(prefix + "API_AUTH_TOKEN")); value != "" {
		cfg.API.AuthToken = value
	}
	if value := strings.TrimSpace(os.Getenv(prefix + "API_ORGANIZATION_ID")); value != "" {
		cfg.API.OrganizationID = value
	}
	if value := strings.TrimSpace(os.Getenv(prefix + "STORE_PATH")); value != "" {
		cfg.Store.Path = value
	}
	if value := strings.TrimSpace(os.Getenv(prefix + "STORE_URL")); value != "" {
		cfg.Store.URL = value
	}
	if value := strings.TrimSpace(os.Getenv(prefix + "STORE_AUTH_TOKEN")); value != "" {
		cfg.Store.AuthToken = value
	}
}

// GetConfig returns the configuration recorded by the last Load call.
func GetConfig() *Config {
	currentMu.RLock()
	defer currentMu.RUnlock()
	return current
}

func setCurrent(cfg *Config) {
	currentMu.Lock()
	defer currentMu.Unlock()
	current = cfg
}

// identityNames resolves the config-file and binary names from the app
// identity, defaulting both to "worklane" when the identity is absent.
func identityNames() (configName string, binaryName string) {
	configName, binaryName = "worklane", "worklane"
	if appIdentity == nil {
		return
	}
	if name := strings.TrimSpace(appIdentity.ConfigName); name != "" {
		configName = name
	}
	if name := strings.TrimSpace(appIdentity.BinaryName); name != "" {
		binaryName = name
	}
	return
}

// DefaultConfigPath is where the user config file lives when no --config
// flag is given (XDG config dir).
func DefaultConfigPath() string {
	configName, _ := identityNames()
	configDir := gfconfig.GetAppConfigDir(configName)
	if strings.TrimSpace(configDir) == "" {
		return ""
	}
	return filepath.Join(configDir, "config.yaml")
}

// DefaultDataDir is the XDG data directory for this app.
func DefaultDataDir() string {
	configName, _ := identityNames()
	return gfconfig.GetAppDataDir(configName)
}

// DefaultCacheDir is the XDG cache directory for this app.
func DefaultCacheDir() string {
	configName, _ := identityNames()
	return gfconfig.GetAppCacheDir(configName)
}

// DefaultStorePath is where the cache database lives when store.path and
// store.url are both unset. Falls back to the working directory when no
// data dir can be resolved.
func DefaultStorePath() string {
	configName, binaryName := identityNames()
	dataDir := gfconfig.GetAppDataDir(configName)
	if strings.TrimSpace(dataDir) == "" {
		return "./" + binaryName + ".db"
	}
	return filepath.Join(dataDir, binaryName+".db")
}
