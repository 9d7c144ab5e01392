package cmd

import (
	"fmt"
	"runtime"
	"strings"

	"github.com/fulmenhq/gofulmen/crucible"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/worklane/worklane-cli/internal/config"
	"github.com/worklane/worklane-cli/internal/observability"
)

var envInfoCmd = &cobra.Command{
	Use:   "envinfo",
	Short: "Display environment information",
	Long:  "Display comprehensive environment, configuration, and version information.",
	Run:   runEnvInfo,
}

func runEnvInfo(cmd *cobra.Command, args []string) {
	cli := observability.CLILogger
	version := crucible.GetVersion()
	identity := GetAppIdentity()

	cli.Info("=== Worklane Environment Information ===")
	cli.Info("")

	cli.Info("Application:")
	cli.Info("  Name:       " + identity.BinaryName)
	cli.Info("  Version:    " + versionInfo.Version)
	cli.Info("  Commit:     " + versionInfo.Commit)
	cli.Info("  Built:      " + versionInfo.BuildDate)
	cli.Info("")

	cli.Info("SSOT:")
	cli.Info("  Gofulmen:   "+version.Gofulmen, zap.String("gofulmen_version", version.Gofulmen))
	cli.Info("  Crucible:   "+version.Crucible, zap.String("crucible_version", version.Crucible))
	cli.Info("")

	cli.Info("Runtime:")
	cli.Info("  Go Version: "+runtime.Version(), zap.String("go_version", runtime.Version()))
	cli.Info("  GOOS:       "+runtime.GOOS, zap.String("goos", runtime.GOOS))
	cli.Info("  GOARCH:     "+runtime.GOARCH, zap.String("goarch", runtime.GOARCH))
	cli.Info(fmt.Sprintf("  NumCPU:     %d", runtime.NumCPU()), zap.Int("num_cpu", runtime.NumCPU()))
	cli.Info("")

	cfg, err := config.Load(cmd.Context())
	if err != nil {
		cli.Warn("Config load failed", zap.Error(err))
		return
	}

	cli.Info("API:")
	cli.Info("  Base URL:       "+cfg.API.BaseURL, zap.String("base_url", cfg.API.BaseURL))
	if strings.TrimSpace(cfg.API.OrganizationID) != "" {
		cli.Info("  Organization:   " + cfg.API.OrganizationID)
	} else {
		cli.Info("  Organization:   (not set)")
	}
	if strings.TrimSpace(cfg.API.AuthToken) != "" {
		cli.Info("  Auth Token:     (set)")
	} else {
		cli.Info("  Auth Token:     (not set)")
	}
	cli.Info("  Timeout:        " + cfg.API.Timeout.String())
	cli.Info("")

	cli.Info("Configuration:")
	cli.Info("  Server Host:    "+cfg.Server.Host, zap.String("host", cfg.Server.Host))
	cli.Info(fmt.Sprintf("  Server Port:    %d", cfg.Server.Port), zap.Int("port", cfg.Server.Port))
	cli.Info("  Log Level:      "+cfg.Logging.Level, zap.String("log_level", cfg.Logging.Level))
	cli.Info("  Log Profile:    "+cfg.Logging.Profile, zap.String("log_profile", cfg.Logging.Profile))
	cli.Info("  DB Driver:      "+cfg.Store.Driver, zap.String("db_driver", cfg.Store.Driver))
	if strings.TrimSpace(cfg.Store.URL) != "" {
		cli.Info("  DB URL:         "+cfg.Store.URL, zap.String("db_url", cfg.Store.URL))
	} else {
		cli.Info("  DB Path:        "+cfg.Store.Path, zap.String("db_path", cfg.Store.Path))
	}
	cli.Info(fmt.Sprintf("  Metrics Port:   %d", cfg.Metrics.Port), zap.Int("metrics_port", cfg.Metrics.Port))
	cli.Info("  Config File:    "+config.DefaultConfigPath(), zap.String("config_file", config.DefaultConfigPath()))
	cli.Info("")

	cli.Info("Cache:")
	cli.Info(fmt.Sprintf("  Enabled:        %t", cfg.Cache.Enabled), zap.Bool("cache_enabled", cfg.Cache.Enabled))
	cli.Info("  Default TTL:    " + cfg.Cache.DefaultTTL.String())
	cli.Info(fmt.Sprintf("  Max Bytes:      %d", cfg.Cache.MaxBytes))
	cli.Info(fmt.Sprintf("  Max Entries:    %d", cfg.Cache.MaxEntries))
	cli.Info("")

	cli.Info("Resolver:")
	cli.Info("  Exact TTL:      " + cfg.Resolver.ExactTTL.String())
	cli.Info("  Fuzzy TTL:      " + cfg.Resolver.FuzzyTTL.String())
	cli.Info(fmt.Sprintf("  Workers:        %d", cfg.Workers), zap.Int("workers", cfg.Workers))
	cli.Info("")

	cli.Info("=== End Environment Information ===")
}

func init() {
	rootCmd.AddCommand(envInfoCmd)
}
