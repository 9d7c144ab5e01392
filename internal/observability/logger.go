package observability

import (
	"fmt"
	"os"
	"strings"

	"github.com/fulmenhq/gofulmen/foundry"
	"github.com/fulmenhq/gofulmen/logging"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

var (
	// CLILogger carries command output context (SIMPLE profile).
	CLILogger *logging.Logger

	// ServerLogger carries request-scoped context (STRUCTURED profile).
	ServerLogger *logging.Logger
)

// InitCLILogger sets up the SIMPLE-profile logger commands use. Verbose
// drops the level to DEBUG so cache and limiter decisions become visible.
func InitCLILogger(serviceName string, verbose bool) {
	logger, err := logging.NewCLI(serviceName)
	if err != nil {
		fatalLoggerInit("failed to initialize CLI logger", err)
	}

	if verbose {
		logger.SetLevel(logging.DEBUG)
	}

	CLILogger = logger
}

// InitServerLogger sets up the STRUCTURED-profile logger for the HTTP
// server: JSON to stderr, correlation middleware, caller and stack capture.
func InitServerLogger(serviceName string, logLevel string, namespace ...string) {
	staticFields := map[string]any{}
	if len(namespace) > 0 && namespace[0] != "" {
		staticFields["namespace"] = namespace[0]
	}

	config := &logging.LoggerConfig{
		Profile:      logging.ProfileStructured,
		DefaultLevel: normalizeLevel(logLevel),
		Service:      serviceName,
		Environment:  "production",
		StaticFields: staticFields,
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
		EnableCaller:     true,
		EnableStacktrace: true,
	}

	logger, err := logging.New(config)
	if err != nil {
		fatalLoggerInit("failed to initialize server logger", err)
	}

	ServerLogger = logger
}

// NewComponentLogger builds the plain zap logger wired into core
// components (API client, resolver). JSON to stderr at the given level;
// components treat a nil logger as no-op, so callers that want silence
// can skip this entirely.
func NewComponentLogger(level zapcore.Level) *zap.Logger {
	cfg := zap.NewProductionConfig()
	cfg.Level = zap.NewAtomicLevelAt(level)
	cfg.OutputPaths = []string{"stderr"}
	cfg.ErrorOutputPaths = []string{"stderr"}

	logger, err := cfg.Build()
	if err != nil {
		return zap.NewNop()
	}
	return logger
}

// ZapLevel maps a config log level string to the zap level used by
// NewComponentLogger.
func ZapLevel(level string) zapcore.Level {
	switch strings.ToLower(strings.TrimSpace(level)) {
	case "trace", "debug":
		return zapcore.DebugLevel
	case "warn", "warning":
		return zapcore.WarnLevel
	case "error":
		return zapcore.ErrorLevel
	default:
		return zapcore.InfoLevel
	}
}

func normalizeLevel(level string) string {
	switch normalized := strings.ToUpper(strings.TrimSpace(level)); normalized {
	case "TRACE", "DEBUG", "WARN", "ERROR":
		return normalized
	case "WARNING":
		return "WARN"
	default:
		return "INFO"
	}
}

// fatalLoggerInit reports a logger bootstrap failure on stderr and exits
// with the semantic config code. No logger exists yet at this point.
func fatalLoggerInit(msg string, err error) {
	if err != nil {
		msg = fmt.Sprintf("%s: %v", msg, err)
	}
	fmt.Fprintln(os.Stderr, "FATAL: "+msg)

	code := foundry.ExitConfigInvalid
	if info, ok := foundry.GetExitCodeInfo(code); ok {
		fmt.Fprintf(os.Stderr, "Exit Code: %d (%s) - %s\n", info.Code, info.Name, info.Description)
		os.Exit(info.Code)
	}
	os.Exit(int(code))
}
