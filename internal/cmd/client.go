package cmd

import (
	"net/http"
	"time"

	"go.uber.org/zap"

	"github.com/worklane/worklane-cli/internal/config"
	"github.com/worklane/worklane-cli/internal/core/api"
	"github.com/worklane/worklane-cli/internal/core/engine"
	"github.com/worklane/worklane-cli/internal/core/resolver"
	"github.com/worklane/worklane-cli/internal/core/store"
	"github.com/worklane/worklane-cli/internal/observability"
)

// clientOptions adjust per-command cache behavior.
type clientOptions struct {
	noCache bool
	refresh bool
	logger  *zap.Logger
}

func classOverrides(cfg *config.Config) map[string]engine.ClassConfig {
	if cfg == nil || len(cfg.RateLimits) == 0 {
		return nil
	}
	overrides := make(map[string]engine.ClassConfig, len(cfg.RateLimits))
	for name, class := range cfg.RateLimits {
		overrides[name] = engine.ClassConfig{
			Limit:      class.Limit,
			Window:     class.Window,
			MaxRetries: class.MaxRetries,
			BaseDelay:  class.BaseDelay,
		}
	}
	return overrides
}

// buildClient assembles the API client and its limiter from config. The
// returned limiter is shared so callers can snapshot admission state.
func buildClient(cfg *config.Config, db *store.Store, opts clientOptions) (*api.Client, *engine.Limiter) {
	limiter := engine.NewLimiter(classOverrides(cfg))

	timeout := cfg.API.Timeout
	if timeout <= 0 {
		timeout = 30 * time.Second
	}

	client := &api.Client{
		BaseURL:        cfg.API.BaseURL,
		AuthToken:      cfg.API.AuthToken,
		OrganizationID: cfg.API.OrganizationID,
		Client:         &http.Client{Timeout: timeout},
		Limiter:        limiter,
		Cache:          db,
		CachePolicy: api.CachePolicy{
			TTLs:       cfg.Cache.TTLs,
			DefaultTTL: cfg.Cache.DefaultTTL,
			MaxBytes:   cfg.Cache.MaxBytes,
			MaxEntries: cfg.Cache.MaxEntries,
		},
		UseCache:    cfg.Cache.Enabled && !opts.noCache,
		Refresh:     opts.refresh,
		Logger:      opts.logger,
		ToolVersion: versionInfo.Version,
	}
	return client, limiter
}

// buildResolver assembles the query resolver on top of the API client.
func buildResolver(cfg *config.Config, client *api.Client, db *store.Store, opts clientOptions) *resolver.Resolver {
	return &resolver.Resolver{
		Directory: client,
		Store:     db,
		Tenant:    cfg.API.OrganizationID,
		UseCache:  cfg.Cache.Enabled && !opts.noCache,
		Refresh:   opts.refresh,
		ExactTTL:  cfg.Resolver.ExactTTL,
		FuzzyTTL:  cfg.Resolver.FuzzyTTL,
		Logger:    opts.logger,
	}
}

// componentLogger picks the zap logger wired into core components for CLI
// runs. Quiet by default; --verbose surfaces cache and limiter decisions.
func componentLogger() *zap.Logger {
	if verbose {
		return observability.NewComponentLogger(observability.ZapLevel("debug"))
	}
	return observability.NewComponentLogger(observability.ZapLevel("warn"))
}
