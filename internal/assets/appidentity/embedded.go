// Package appidentityassets embeds the app identity document so the
// compiled binary can resolve it without a `.fulmen/app.yaml` on disk.
package appidentityassets

import _ "embed"

// YAML is the identity document registered with gofulmen at startup.
//
//go:embed app.yaml
var YAML []byte
