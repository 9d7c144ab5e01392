// Package resolver turns human-friendly input (emails, project numbers,
// free-text names) into canonical Worklane resource ids.
package resolver

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/worklane/worklane-cli/internal/core"
)

// DefaultExactTTL is how long a uniqueness-guaranteed resolution stays
// cached.
const DefaultExactTTL = 24 * time.Hour

// DefaultFuzzyTTL is how long a name-search resolution stays cached.
// Fuzzy hits go stale faster, so they live shorter.
const DefaultFuzzyTTL = time.Hour

// Directory is the slice of the API the resolver consumes.
type Directory interface {
	FindPersonByEmail(ctx context.Context, email string) ([]core.Candidate, error)
	SearchPeopleByName(ctx context.Context, query string) ([]core.Candidate, error)
	FindProjectByNumber(ctx context.Context, number string) ([]core.Candidate, error)
	SearchProjectsByName(ctx context.Context, query string) ([]core.Candidate, error)
	SearchCompaniesByName(ctx context.Context, query string) ([]core.Candidate, error)
	FindDealByNumber(ctx context.Context, number string) ([]core.Candidate, error)
	SearchDealsByName(ctx context.Context, query string) ([]core.Candidate, error)
	ServicesInScope(ctx context.Context, projectID string) ([]core.Candidate, error)
}

// ResolveStore persists single-hit resolutions between runs.
type ResolveStore interface {
	GetResolveCache(ctx context.Context, tenant string, resourceType core.ResourceType, query string) (*core.Resolution, error)
	SetResolveCache(ctx context.Context, tenant string, resolution *core.Resolution, ttl time.Duration) error
}

// Options refine a single resolution.
type Options struct {
	// Type names the resource type explicitly, skipping shape detection.
	Type core.ResourceType
	// Scope is the project id bounding service lookups.
	Scope string
	// First returns only the top candidate when several match.
	First bool
	// RequireUnique fails with an ambiguity error when more than one
	// candidate remains.
	RequireUnique bool
	// ExactOnly drops fuzzy candidates instead of returning them.
	ExactOnly bool
}

// Resolver maps queries to resource ids using the directory and a
// confidence-aware cache. Exact hits cache for a day, fuzzy hits for an
// hour, and multi-match results are never cached.
type Resolver struct {
	Directory Directory
	Store     ResolveStore
	Tenant    string
	UseCache  bool
	Refresh   bool
	ExactTTL  time.Duration
	FuzzyTTL  time.Duration
	Logger    *zap.Logger
}

// Resolve turns query into candidate resolutions. A numeric query passes
// through unresolved. Zero matches surface a not-found error; several
// matches come back as a list unless opts says otherwise.
func (r *Resolver) Resolve(ctx context.Context, query string, opts Options) ([]core.Resolution, error) {
	if r == nil || r.Directory == nil {
		return nil, errors.New("resolver is not configured")
	}
	if ctx == nil {
		ctx = context.Background()
	}

	query = strings.TrimSpace(query)
	if query == "" {
		return nil, errors.New("query is required")
	}

	if IsNumericID(query) {
		return []core.Resolution{{
			ID:    query,
			Type:  opts.Type,
			Label: query,
			Query: query,
			Exact: true,
		}}, nil
	}

	resourceType := opts.Type
	if resourceType == "" {
		resourceType = DetectType(query)
	}
	if resourceType == "" {
		return nil, fmt.Errorf("cannot infer a resource type for %q; pass one explicitly", query)
	}

	strat, ok := strategies[resourceType]
	if !ok {
		return nil, fmt.Errorf("no resolution strategy for type %q", resourceType)
	}

	cacheQuery := r.cacheQuery(query, resourceType, opts)
	if cached := r.cachedResolution(ctx, resourceType, cacheQuery); cached != nil {
		cached.Query = query
		return r.finish([]core.Resolution{*cached}, query, resourceType, "", opts)
	}

	var (
		results []core.Resolution
		err     error
	)
	if strat.exact != nil && strat.pattern != nil && strat.pattern.MatchString(query) {
		results, err = strat.exact(ctx, r, query, opts)
	} else {
		results, err = strat.fuzzy(ctx, r, query, opts)
	}
	if err != nil {
		return nil, err
	}

	return r.finish(results, query, resourceType, cacheQuery, opts)
}

// finish applies the exact-only filter, caches single hits when cacheQuery
// is set, and reduces the list per opts.
func (r *Resolver) finish(results []core.Resolution, query string, resourceType core.ResourceType, cacheQuery string, opts Options) ([]core.Resolution, error) {
	if opts.ExactOnly {
		exact := make([]core.Resolution, 0, len(results))
		for _, result := range results {
			if result.Exact {
				exact = append(exact, result)
			}
		}
		if len(exact) == 0 && len(results) > 0 {
			return nil, &core.NotFoundError{
				Query:      query,
				Type:       resourceType,
				Candidates: resolutionLabels(results),
			}
		}
		results = exact
	}

	if len(results) == 0 {
		return nil, &core.NotFoundError{Query: query, Type: resourceType}
	}

	if cacheQuery != "" && len(results) == 1 {
		r.cacheResolution(results[0], cacheQuery)
	}

	if opts.First && len(results) > 1 {
		results = results[:1]
	}
	if opts.RequireUnique && len(results) > 1 {
		return nil, &core.AmbiguousError{Query: query, Type: resourceType, Matches: results}
	}

	return results, nil
}

// cacheQuery derives the cache key's query column: lowercased, and
// qualified by scope for service lookups so catalogs of different
// projects never collide.
func (r *Resolver) cacheQuery(query string, resourceType core.ResourceType, opts Options) string {
	normalized := strings.ToLower(query)
	if resourceType == core.ResourceService && opts.Scope != "" {
		normalized = opts.Scope + "::" + normalized
	}
	return normalized
}

func (r *Resolver) cachedResolution(ctx context.Context, resourceType core.ResourceType, cacheQuery string) *core.Resolution {
	if !r.UseCache || r.Refresh || r.Store == nil {
		return nil
	}

	cached, err := r.Store.GetResolveCache(ctx, r.Tenant, resourceType, cacheQuery)
	if err != nil {
		r.logger().Debug("resolve cache read failed",
			zap.String("type", string(resourceType)), zap.Error(err))
		return nil
	}
	return cached
}

func (r *Resolver) cacheResolution(resolution core.Resolution, cacheQuery string) {
	if !r.UseCache || r.Store == nil {
		return
	}

	ttl := r.fuzzyTTL()
	if resolution.Exact {
		ttl = r.exactTTL()
	}

	resolution.Query = cacheQuery
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := r.Store.SetResolveCache(ctx, r.Tenant, &resolution, ttl); err != nil {
		r.logger().Debug("resolve cache write failed",
			zap.String("type", string(resolution.Type)), zap.Error(err))
	}
}

func (r *Resolver) exactTTL() time.Duration {
	if r.ExactTTL > 0 {
		return r.ExactTTL
	}
	return DefaultExactTTL
}

func (r *Resolver) fuzzyTTL() time.Duration {
	if r.FuzzyTTL > 0 {
		return r.FuzzyTTL
	}
	return DefaultFuzzyTTL
}

func (r *Resolver) logger() *zap.Logger {
	if r != nil && r.Logger != nil {
		return r.Logger
	}
	return zap.NewNop()
}
