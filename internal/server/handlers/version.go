package handlers

import (
	"net/http"
	"os"
	"path/filepath"
	"runtime"

	"github.com/fulmenhq/gofulmen/appidentity"
	"github.com/fulmenhq/gofulmen/crucible"
)

// Build metadata, stamped by main via SetVersionInfo. The zero values
// describe a from-source `go run` build.
var (
	AppVersion   = "dev"
	AppCommit    = "unknown"
	AppBuildDate = "unknown"
	appIdentity  *appidentity.Identity
)

// SetVersionInfo records the build metadata reported by /version.
func SetVersionInfo(version, commit, buildDate string) {
	AppVersion = version
	AppCommit = commit
	AppBuildDate = buildDate
}

// SetAppIdentity records the identity whose binary name labels /version.
func SetAppIdentity(identity *appidentity.Identity) {
	appIdentity = identity
}

// VersionResponse is the /version payload.
type VersionResponse struct {
	Service   string        `json:"service"`
	Version   string        `json:"version"`
	GitCommit string        `json:"git_commit"`
	BuildDate string        `json:"build_date"`
	Toolchain ToolchainInfo `json:"toolchain"`
	Libraries LibraryInfo   `json:"libraries"`
}

// ToolchainInfo describes the Go runtime serving the request.
type ToolchainInfo struct {
	GoVersion  string `json:"go_version"`
	Platform   string `json:"platform"`
	NumCPU     int    `json:"num_cpu"`
	Goroutines int    `json:"goroutines"`
}

// LibraryInfo carries the framework versions crucible tracks.
type LibraryInfo struct {
	Gofulmen string `json:"gofulmen"`
	Crucible string `json:"crucible"`
}

// VersionHandler reports build, toolchain, and framework versions.
func VersionHandler(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, buildVersionResponse())
}

func buildVersionResponse() VersionResponse {
	libs := crucible.GetVersion()

	return VersionResponse{
		Service:   serviceName(),
		Version:   AppVersion,
		GitCommit: AppCommit,
		BuildDate: AppBuildDate,
		Toolchain: ToolchainInfo{
			GoVersion:  runtime.Version(),
			Platform:   runtime.GOOS + "/" + runtime.GOARCH,
			NumCPU:     runtime.NumCPU(),
			Goroutines: runtime.NumGoroutine(),
		},
		Libraries: LibraryInfo{
			Gofulmen: libs.Gofulmen,
			Crucible: libs.Crucible,
		},
	}
}

// serviceName prefers the injected identity and falls back to the
// executable name, so the endpoint stays useful in ad-hoc builds.
func serviceName() string {
	if appIdentity != nil && appIdentity.BinaryName != "" {
		return appIdentity.BinaryName
	}
	if len(os.Args) > 0 && os.Args[0] != "" {
		return filepath.Base(os.Args[0])
	}
	return "unknown"
}
