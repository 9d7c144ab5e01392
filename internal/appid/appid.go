// Package appid resolves the application identity (binary name, env
// prefix, config name) that path discovery and env handling key off.
package appid

import (
	"context"

	"github.com/fulmenhq/gofulmen/appidentity"

	appidentityassets "github.com/worklane/worklane-cli/internal/assets/appidentity"
)

func init() {
	// Registration is best-effort: an explicit identity (Options.ExplicitPath
	// or FULMEN_APP_IDENTITY_PATH) always wins over the embedded copy, which
	// only exists so the standalone binary works outside a checkout.
	_ = appidentity.RegisterEmbeddedIdentityYAML(appidentityassets.YAML)
}

// Get returns the resolved application identity.
func Get(ctx context.Context) (*appidentity.Identity, error) {
	return appidentity.Get(ctx)
}
