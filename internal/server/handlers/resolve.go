package handlers

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"strings"

	gferrors "github.com/fulmenhq/gofulmen/errors"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/worklane/worklane-cli/internal/core"
	"github.com/worklane/worklane-cli/internal/core/resolver"
	apperrors "github.com/worklane/worklane-cli/internal/errors"
	"github.com/worklane/worklane-cli/internal/metrics"
)

const (
	// maxBatchConcurrency bounds parallel lookups per batch request.
	maxBatchConcurrency = 10
	// maxBatchQueries bounds one batch request body.
	maxBatchQueries = 100
)

// QueryResolver is the slice of the resolver the HTTP tier depends on.
type QueryResolver interface {
	Resolve(ctx context.Context, query string, opts resolver.Options) ([]core.Resolution, error)
}

// ResolveAPI exposes resolution over HTTP. All fields must be set before
// the handlers are registered.
type ResolveAPI struct {
	Resolver QueryResolver
	Cache    CacheAdmin
	Limiter  RateLimitViewer
	Logger   *zap.Logger
}

// ResolveRequest is, aside from the query itself, a JSON mirror of the
// resolver options.
type ResolveRequest struct {
	Query         string `json:"query"`
	Type          string `json:"type,omitempty"`
	Scope         string `json:"scope,omitempty"`
	First         bool   `json:"first,omitempty"`
	RequireUnique bool   `json:"require_unique,omitempty"`
	ExactOnly     bool   `json:"exact_only,omitempty"`
}

// ResolveResponse carries the matches for one query.
type ResolveResponse struct {
	Query   string            `json:"query"`
	Matches []core.Resolution `json:"matches"`
}

// BatchResolveRequest wraps the per-query requests of one batch call.
type BatchResolveRequest struct {
	Queries []ResolveRequest `json:"queries"`
}

// BatchResolveResponse preserves request order; each result carries either
// matches or an error, never both.
type BatchResolveResponse struct {
	Results []BatchResult `json:"results"`
}

// BatchResult is the outcome of one query inside a batch.
type BatchResult struct {
	Query   string            `json:"query"`
	Matches []core.Resolution `json:"matches,omitempty"`
	Error   *BatchError       `json:"error,omitempty"`
}

// BatchError is the compact error form used inside batch results.
type BatchError struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

// ResolveHandler handles POST /v1/resolve.
func (a *ResolveAPI) ResolveHandler(w http.ResponseWriter, r *http.Request) {
	if a == nil || a.Resolver == nil {
		respondWithError(w, r, apperrors.NewInternalError("resolver is not configured"))
		return
	}

	var req ResolveRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondWithError(w, r, apperrors.NewInvalidInputError("request body must be a JSON resolve request"))
		return
	}

	opts, err := a.resolveOptions(req)
	if err != nil {
		respondWithError(w, r, err)
		return
	}

	matches, err := a.Resolver.Resolve(r.Context(), req.Query, opts)
	metrics.RecordResolve(string(opts.Type), resolveOutcome(err))
	if err != nil {
		respondWithError(w, r, apperrors.FromResolveError(r.Context(), err))
		return
	}

	writeJSON(w, http.StatusOK, ResolveResponse{Query: req.Query, Matches: matches})
}

// BatchResolveHandler handles POST /v1/resolve/batch. Queries run
// concurrently with a bounded fan-out; one failing query never disturbs
// the others.
func (a *ResolveAPI) BatchResolveHandler(w http.ResponseWriter, r *http.Request) {
	if a == nil || a.Resolver == nil {
		respondWithError(w, r, apperrors.NewInternalError("resolver is not configured"))
		return
	}

	var req BatchResolveRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondWithError(w, r, apperrors.NewInvalidInputError("request body must be a JSON batch request"))
		return
	}

	if len(req.Queries) == 0 {
		respondWithError(w, r, apperrors.NewInvalidInputError("batch request needs at least one query"))
		return
	}
	if len(req.Queries) > maxBatchQueries {
		envelope := apperrors.NewInvalidInputError("batch request exceeds the query limit")
		envelope, _ = envelope.WithContext(map[string]interface{}{
			"queries": len(req.Queries),
			"limit":   maxBatchQueries,
		})
		respondWithError(w, r, envelope)
		return
	}

	ctx := r.Context()
	results := make([]BatchResult, len(req.Queries))

	var group errgroup.Group
	group.SetLimit(maxBatchConcurrency)
	for i := range req.Queries {
		group.Go(func() error {
			item := req.Queries[i]
			opts, err := a.resolveOptions(item)
			if err == nil {
				var matches []core.Resolution
				matches, err = a.Resolver.Resolve(ctx, item.Query, opts)
				metrics.RecordResolve(string(opts.Type), resolveOutcome(err))
				if err == nil {
					results[i] = BatchResult{Query: item.Query, Matches: matches}
					return nil
				}
			}
			results[i] = BatchResult{Query: item.Query, Error: batchErrorFor(r, err)}
			return nil
		})
	}
	_ = group.Wait()

	writeJSON(w, http.StatusOK, BatchResolveResponse{Results: results})
}

// resolveOptions validates a request and translates it to resolver options.
func (a *ResolveAPI) resolveOptions(req ResolveRequest) (resolver.Options, error) {
	if strings.TrimSpace(req.Query) == "" {
		return resolver.Options{}, apperrors.NewInvalidInputError("query is required")
	}

	opts := resolver.Options{
		Scope:         strings.TrimSpace(req.Scope),
		First:         req.First,
		RequireUnique: req.RequireUnique,
		ExactOnly:     req.ExactOnly,
	}

	if typeName := strings.TrimSpace(req.Type); typeName != "" {
		resourceType, ok := core.ParseResourceType(typeName)
		if !ok {
			envelope := apperrors.NewInvalidInputError("unknown resource type")
			envelope, _ = envelope.WithContext(map[string]interface{}{
				"type": typeName,
			})
			return resolver.Options{}, envelope
		}
		opts.Type = resourceType
	}

	return opts, nil
}

// resolveOutcome maps a resolver error onto the metric outcome label.
func resolveOutcome(err error) string {
	if err == nil {
		return "resolved"
	}
	var ambiguous *core.AmbiguousError
	switch {
	case core.IsNotFound(err):
		return "not_found"
	case errors.As(err, &ambiguous):
		return "ambiguous"
	default:
		return "error"
	}
}

// batchErrorFor compresses an error into the in-band batch form.
func batchErrorFor(r *http.Request, err error) *BatchError {
	var envelope *gferrors.ErrorEnvelope
	if !errors.As(err, &envelope) {
		envelope = apperrors.FromResolveError(r.Context(), err)
	}
	if envelope == nil {
		return &BatchError{Code: "INTERNAL_ERROR", Message: "resolution failed"}
	}
	return &BatchError{Code: envelope.Code, Message: envelope.Message}
}

func writeJSON(w http.ResponseWriter, status int, payload interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(payload)
}
