package handlers

import (
	"context"
	"encoding/json"
	"net/http"
	"strings"

	"github.com/worklane/worklane-cli/internal/core/store"
	apperrors "github.com/worklane/worklane-cli/internal/errors"
	"github.com/worklane/worklane-cli/internal/metrics"
)

// CacheAdmin is the slice of the store behind the cache endpoints.
type CacheAdmin interface {
	InvalidateQueryCache(ctx context.Context, pattern string) (int64, error)
	SweepQueryCache(ctx context.Context, maxBytes int64, maxEntries int) (int64, error)
	GetCacheStats(ctx context.Context) (*store.CacheStats, error)
}

// CacheInvalidateRequest names the endpoints to drop. An empty or "*"
// pattern clears the whole response cache.
type CacheInvalidateRequest struct {
	Pattern string `json:"pattern"`
}

// CacheInvalidateResponse reports how many entries were removed.
type CacheInvalidateResponse struct {
	Pattern string `json:"pattern"`
	Removed int64  `json:"removed"`
}

// CacheInvalidateHandler handles POST /v1/cache/invalidate.
func (a *ResolveAPI) CacheInvalidateHandler(w http.ResponseWriter, r *http.Request) {
	if a == nil || a.Cache == nil {
		respondWithError(w, r, apperrors.NewInternalError("cache store is not configured"))
		return
	}

	var req CacheInvalidateRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondWithError(w, r, apperrors.NewInvalidInputError("request body must be a JSON invalidate request"))
		return
	}

	pattern := strings.TrimSpace(req.Pattern)
	removed, err := a.Cache.InvalidateQueryCache(r.Context(), pattern)
	if err != nil {
		respondWithError(w, r, apperrors.WrapDatabaseError(r.Context(), err, "cache invalidation failed"))
		return
	}

	metrics.RecordCacheEvent("response", "invalidate")
	writeJSON(w, http.StatusOK, CacheInvalidateResponse{Pattern: pattern, Removed: removed})
}

// CacheStatsHandler handles GET /v1/cache/stats.
func (a *ResolveAPI) CacheStatsHandler(w http.ResponseWriter, r *http.Request) {
	if a == nil || a.Cache == nil {
		respondWithError(w, r, apperrors.NewInternalError("cache store is not configured"))
		return
	}

	stats, err := a.Cache.GetCacheStats(r.Context())
	if err != nil {
		respondWithError(w, r, apperrors.WrapDatabaseError(r.Context(), err, "cache stats unavailable"))
		return
	}

	writeJSON(w, http.StatusOK, stats)
}
