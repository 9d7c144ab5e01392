package cmd

import (
	"github.com/fulmenhq/gofulmen/foundry"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/worklane/worklane-cli/internal/config"
	errwrap "github.com/worklane/worklane-cli/internal/errors"
	"github.com/worklane/worklane-cli/internal/observability"
)

var healthCmd = &cobra.Command{
	Use:   "health",
	Short: "Run self-health check",
	Long:  "Run a self-health check to verify the application can start successfully.",
	Run:   runHealthCheck,
}

// runHealthCheck verifies version info, config, and the store in order,
// exiting with a semantic foundry code at the first failure.
func runHealthCheck(cmd *cobra.Command, args []string) {
	cli := observability.CLILogger
	cli.Info("Running health check...")

	if versionInfo.Version == "" {
		cli.Error("❌ FAIL: Version information missing")
		ExitWithCode(cli, foundry.ExitConfigInvalid, "Version information missing", errwrap.NewConfigInvalidError("Version information missing"))
		return
	}
	cli.Debug("Version check passed", zap.String("version", versionInfo.Version))
	cli.Info("✅ Version information available")

	ctx := cmd.Context()
	cfg, err := config.Load(ctx)
	if err != nil {
		cli.Error("❌ FAIL: Configuration invalid", zap.Error(err))
		ExitWithCode(cli, foundry.ExitConfigInvalid, "Configuration invalid", err)
		return
	}
	cli.Debug("Config check passed", zap.String("api_base_url", cfg.API.BaseURL))
	cli.Info("✅ Configuration loaded")

	db, err := openStore(ctx)
	if err != nil {
		cli.Error("❌ FAIL: Store unavailable", zap.Error(err))
		ExitWithCode(cli, foundry.ExitExternalServiceUnavailable, "Store unavailable", err)
		return
	}
	_ = db.Close()
	cli.Info("✅ Store reachable")

	cli.Info("")
	cli.Info("✅ All health checks passed")
}

func init() {
	rootCmd.AddCommand(healthCmd)
}
