package cmd

import (
	"context"
	"net/http"
	"time"

	"github.com/fulmenhq/gofulmen/appidentity"
	"github.com/fulmenhq/gofulmen/signals"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"go.uber.org/zap"

	"github.com/worklane/worklane-cli/internal/config"
	"github.com/worklane/worklane-cli/internal/core/store"
	errwrap "github.com/worklane/worklane-cli/internal/errors"
	"github.com/worklane/worklane-cli/internal/observability"
	"github.com/worklane/worklane-cli/internal/server"
	"github.com/worklane/worklane-cli/internal/server/handlers"
)

var (
	serverPort int
	serverHost string
)

// signalHealthChecker reports the signal system as registered and ready.
type signalHealthChecker struct{}

func (signalHealthChecker) CheckHealth(ctx context.Context) error {
	return nil
}

// telemetryHealthChecker ensures telemetry system and exporter are available
type telemetryHealthChecker struct{}

func (telemetryHealthChecker) CheckHealth(ctx context.Context) error {
	if observability.TelemetrySystem == nil || observability.PrometheusExporter == nil {
		return errwrap.NewInternalError("telemetry system not initialized")
	}
	return nil
}

// storeHealthChecker pings the cache store backing resolve and response
// caches.
type storeHealthChecker struct {
	db *store.Store
}

func (s storeHealthChecker) CheckHealth(ctx context.Context) error {
	if s.db == nil || s.db.DB == nil {
		return errwrap.NewInternalError("store not initialized")
	}
	return s.db.DB.PingContext(ctx)
}

// identityHealthChecker validates app identity metadata
type identityHealthChecker struct {
	binaryName string
	envPrefix  string
	configName string
}

func (i identityHealthChecker) CheckHealth(ctx context.Context) error {
	switch {
	case i.binaryName == "":
		return errwrap.NewConfigInvalidError("app identity missing binary name")
	case i.envPrefix == "":
		return errwrap.NewConfigInvalidError("app identity missing env prefix")
	case i.configName == "":
		return errwrap.NewConfigInvalidError("app identity missing config name")
	}
	return nil
}

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the agent-facing HTTP server",
	Long: `Start the HTTP resolve service with graceful shutdown support.

Exposes /v1/resolve and /v1/resolve/batch for agent integrations, plus
cache administration, rate limit status, health, version, and metrics
endpoints.

Signal Handling:
  • Ctrl+C (SIGINT) or SIGTERM: Graceful shutdown
  • Ctrl+C twice within 2s: Force quit
  • SIGHUP: Config reload (placeholder - restart recommended)

The server will cleanly shut down the HTTP server and flush logs on shutdown.`,
	RunE: runServe,
}

func runServe(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()

	identity := GetAppIdentity()
	namespace := identity.TelemetryNamespace()

	logLevel := viper.GetString("logging.level")
	observability.InitServerLogger(identity.BinaryName, logLevel, namespace)

	metricsPort := viper.GetInt("metrics.port")
	if metricsPort == 0 {
		metricsPort = 9090
	}
	if err := observability.InitMetrics(identity.BinaryName, metricsPort, namespace); err != nil {
		observability.ServerLogger.Error("Failed to initialize metrics", zap.Error(err))
		return errwrap.WrapInternal(ctx, err, "metrics initialization failed")
	}

	db, err := openStore(ctx)
	if err != nil {
		observability.ServerLogger.Error("Failed to open store", zap.Error(err))
		return errwrap.WrapDatabaseError(ctx, err, "store initialization failed")
	}
	defer db.Close() // nolint:errcheck // best-effort cleanup; errors logged internally

	cfg := config.GetConfig()
	if cfg == nil {
		return errwrap.NewConfigInvalidError("config not loaded")
	}

	api := buildResolveAPI(cfg, db, logLevel)

	observability.ServerLogger.Info("Initializing server",
		zap.String("service", identity.BinaryName),
		zap.String("namespace", namespace),
		zap.String("version", versionInfo.Version),
		zap.String("host", serverHost),
		zap.Int("port", serverPort),
		zap.Int("metrics_port", metricsPort))

	registerHealthCheckers(identity, db)

	srv := server.New(serverHost, serverPort, api)
	handlers.SetAppIdentity(identity)

	registerLifecycleHooks(srv)

	return runUntilStopped(ctx, srv)
}

// buildResolveAPI wires the client, limiter, and resolver that the serve
// handlers share with the CLI commands.
func buildResolveAPI(cfg *config.Config, db *store.Store, logLevel string) *handlers.ResolveAPI {
	componentLogger := observability.NewComponentLogger(observability.ZapLevel(logLevel))
	client, limiter := buildClient(cfg, db, clientOptions{logger: componentLogger})
	res := buildResolver(cfg, client, db, clientOptions{logger: componentLogger})

	return &handlers.ResolveAPI{
		Resolver: res,
		Cache:    db,
		Limiter:  limiter,
		Logger:   componentLogger,
	}
}

// registerHealthCheckers attaches the serve-mode checks to the shared
// health manager.
func registerHealthCheckers(identity *appidentity.Identity, db *store.Store) {
	handlers.InitHealthManager(versionInfo.Version)
	hm := handlers.GetHealthManager()
	hm.RegisterChecker("signal_handlers", signalHealthChecker{})
	hm.RegisterChecker("telemetry", telemetryHealthChecker{})
	hm.RegisterChecker("store", storeHealthChecker{db: db})
	hm.RegisterChecker("app_identity", identityHealthChecker{
		binaryName: identity.BinaryName,
		envPrefix:  identity.EnvPrefix,
		configName: identity.ConfigName,
	})
}

// registerLifecycleHooks wires graceful shutdown and SIGHUP reload.
// Shutdown hooks run LIFO: the server drains first, the logger flushes
// last.
func registerLifecycleHooks(srv *server.Server) {
	shutdownTimeout := viper.GetDuration("server.shutdown_timeout")
	if shutdownTimeout == 0 {
		shutdownTimeout = 10 * time.Second
	}

	signals.OnShutdown(func(ctx context.Context) error {
		observability.ServerLogger.Info("Flushing logger...")
		if err := observability.ServerLogger.Sync(); err != nil {
			// Sync errors are often benign (stdout/stderr already closed)
			observability.ServerLogger.Warn("Logger sync returned error (may be benign)",
				zap.Error(err))
		}
		return nil
	})

	signals.OnShutdown(func(ctx context.Context) error {
		observability.ServerLogger.Info("Shutting down HTTP server...")
		shutdownCtx, cancel := context.WithTimeout(ctx, shutdownTimeout)
		defer cancel()

		if err := srv.Shutdown(shutdownCtx); err != nil {
			return errwrap.WrapInternal(ctx, err, "server shutdown failed")
		}

		observability.ServerLogger.Info("HTTP server stopped gracefully")
		return nil
	})

	signals.OnReload(reloadConfig)

	if err := signals.EnableDoubleTap(signals.DoubleTapConfig{
		Window:  2 * time.Second,
		Message: "Press Ctrl+C again within 2 seconds to force quit",
	}); err != nil {
		observability.ServerLogger.Warn("Failed to enable double-tap force quit",
			zap.Error(err))
	}
}

// reloadConfig re-reads the config file on SIGHUP. Components read their
// settings at construction, so most changes still need a restart.
func reloadConfig(ctx context.Context) error {
	observability.ServerLogger.Info("Received SIGHUP: attempting config reload")

	if err := viper.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); ok {
			observability.ServerLogger.Info("No config file found - using defaults and environment variables")
			return nil
		}
		observability.ServerLogger.Error("Failed to reload config file",
			zap.String("file", viper.ConfigFileUsed()),
			zap.Error(err))
		return errwrap.WrapConfigInvalid(ctx, err, "config reload failed")
	}

	if _, err := config.Load(ctx); err != nil {
		observability.ServerLogger.Error("Failed to decode reloaded config",
			zap.Error(err))
		return errwrap.WrapConfigInvalid(ctx, err, "config reload failed")
	}

	observability.ServerLogger.Info("Configuration reloaded successfully",
		zap.String("file", viper.ConfigFileUsed()))
	return nil
}

// runUntilStopped serves HTTP in one goroutine and listens for signals in
// another, returning the first fatal error from either.
func runUntilStopped(ctx context.Context, srv *server.Server) error {
	errChan := make(chan error, 1)

	go func() {
		observability.ServerLogger.Info("Starting HTTP server...",
			zap.String("host", serverHost),
			zap.Int("port", serverPort))
		if err := srv.Start(); err != nil && err != http.ErrServerClosed {
			errChan <- err
		}
	}()

	go func() {
		if err := signals.Listen(ctx); err != nil {
			observability.ServerLogger.Error("Signal handler error", zap.Error(err))
			errChan <- err
		}
	}()

	if err := <-errChan; err != nil {
		return errwrap.WrapInternal(ctx, err, "server error")
	}
	return nil
}

func init() {
	rootCmd.AddCommand(serveCmd)

	serveCmd.Flags().StringVar(&serverHost, "host", "localhost", "server host")
	serveCmd.Flags().IntVarP(&serverPort, "port", "p", 8080, "server port")

	_ = viper.BindPFlag("server.host", serveCmd.Flags().Lookup("host"))
	_ = viper.BindPFlag("server.port", serveCmd.Flags().Lookup("port"))
}
