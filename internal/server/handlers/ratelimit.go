package handlers

import (
	"net/http"

	"github.com/worklane/worklane-cli/internal/core/engine"
	apperrors "github.com/worklane/worklane-cli/internal/errors"
)

// RateLimitViewer exposes limiter state to the status endpoint.
type RateLimitViewer interface {
	Snapshot() []engine.ClassStatus
}

// RateLimitResponse lists the limiter classes and their occupancy.
type RateLimitResponse struct {
	Classes []engine.ClassStatus `json:"classes"`
}

// RateLimitHandler handles GET /v1/ratelimit.
func (a *ResolveAPI) RateLimitHandler(w http.ResponseWriter, r *http.Request) {
	if a == nil || a.Limiter == nil {
		respondWithError(w, r, apperrors.NewInternalError("rate limiter is not configured"))
		return
	}

	writeJSON(w, http.StatusOK, RateLimitResponse{Classes: a.Limiter.Snapshot()})
}
