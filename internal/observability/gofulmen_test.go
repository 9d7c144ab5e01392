package observability_test

import (
	"testing"

	"github.com/fulmenhq/gofulmen/crucible"
	"github.com/fulmenhq/gofulmen/logging"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/worklane/worklane-cli/internal/observability"
)

func TestLoggerInitialization(t *testing.T) {
	t.Run("cli logger", func(t *testing.T) {
		observability.InitCLILogger("test-service", false)
		require.NotNil(t, observability.CLILogger)
		observability.CLILogger.Info("cli logger ready", zap.String("test", "value"))
	})

	t.Run("server logger", func(t *testing.T) {
		observability.InitServerLogger("test-service", "info")
		require.NotNil(t, observability.ServerLogger)
		observability.ServerLogger.Info("server logger ready", zap.String("component", "test"))
	})

	t.Run("verbose cli logger logs debug", func(t *testing.T) {
		logger, err := logging.NewCLI("verbose-test")
		require.NoError(t, err)
		logger.SetLevel(logging.DEBUG)
		logger.Debug("debug visible", zap.String("mode", "verbose"))
	})

	t.Run("structured profile with correlation middleware", func(t *testing.T) {
		logger, err := logging.New(&logging.LoggerConfig{
			Profile:      logging.ProfileStructured,
			DefaultLevel: "INFO",
			Service:      "correlation-test",
			Environment:  "test",
			Middleware: []logging.MiddlewareConfig{
				{
					Name:    "correlation",
					Enabled: true,
					Order:   100,
					Config:  make(map[string]any),
				},
			},
			Sinks: []logging.SinkConfig{
				{
					Type:   "console",
					Format: "json",
					Console: &logging.ConsoleSinkConfig{
						Stream:   "stderr",
						Colorize: false,
					},
				},
			},
		})
		require.NoError(t, err)
		logger.Info("correlation id attached automatically", zap.String("feature", "correlation"))
	})
}

func TestEmbeddedCrucible(t *testing.T) {
	version := crucible.GetVersion()
	require.NotEmpty(t, version.Gofulmen, "gofulmen version missing from crucible")
	require.NotEmpty(t, version.Crucible, "crucible version missing")

	require.NotNil(t, crucible.SchemaRegistry)
	require.NotNil(t, crucible.SchemaRegistry.Observability(), "observability schemas missing")
}
