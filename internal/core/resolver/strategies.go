package resolver

import (
	"context"
	"errors"
	"regexp"
	"strings"

	"github.com/worklane/worklane-cli/internal/core"
)

// strategy groups the lookups for one resource type. pattern decides when
// the exact path applies (and drives type detection); types without a
// unique identifier shape carry only a fuzzy lookup.
type strategy struct {
	pattern *regexp.Regexp
	exact   func(ctx context.Context, r *Resolver, query string, opts Options) ([]core.Resolution, error)
	fuzzy   func(ctx context.Context, r *Resolver, query string, opts Options) ([]core.Resolution, error)
}

// strategies maps each resolvable type to its lookups. Adding a type means
// adding a row here.
var strategies = map[core.ResourceType]strategy{
	core.ResourcePerson: {
		pattern: emailPattern,
		exact:   resolvePersonByEmail,
		fuzzy:   resolvePeopleByName,
	},
	core.ResourceProject: {
		pattern: projectNumberPattern,
		exact:   resolveProjectByNumber,
		fuzzy:   resolveProjectsByName,
	},
	core.ResourceDeal: {
		pattern: dealNumberPattern,
		exact:   resolveDealByNumber,
		fuzzy:   resolveDealsByName,
	},
	core.ResourceCompany: {
		fuzzy: resolveCompaniesByName,
	},
	core.ResourceService: {
		fuzzy: resolveServicesInScope,
	},
}

func resolvePersonByEmail(ctx context.Context, r *Resolver, query string, _ Options) ([]core.Resolution, error) {
	candidates, err := r.Directory.FindPersonByEmail(ctx, query)
	if err != nil {
		return nil, err
	}
	return resolutions(candidates, core.ResourcePerson, query, true), nil
}

func resolvePeopleByName(ctx context.Context, r *Resolver, query string, _ Options) ([]core.Resolution, error) {
	candidates, err := r.Directory.SearchPeopleByName(ctx, query)
	if err != nil {
		return nil, err
	}
	return fuzzyResolutions(candidates, core.ResourcePerson, query), nil
}

func resolveProjectByNumber(ctx context.Context, r *Resolver, query string, _ Options) ([]core.Resolution, error) {
	normalized := canonicalNumber(strings.ToUpper(query), "PRJ")
	candidates, err := r.Directory.FindProjectByNumber(ctx, normalized)
	if err != nil {
		return nil, err
	}
	// The canonical form can miss when the workspace uses odd numbering;
	// fall back to the query as typed before giving up.
	if len(candidates) == 0 && normalized != query {
		candidates, err = r.Directory.FindProjectByNumber(ctx, query)
		if err != nil {
			return nil, err
		}
	}
	return resolutions(candidates, core.ResourceProject, query, true), nil
}

func resolveProjectsByName(ctx context.Context, r *Resolver, query string, _ Options) ([]core.Resolution, error) {
	candidates, err := r.Directory.SearchProjectsByName(ctx, query)
	if err != nil {
		return nil, err
	}
	return fuzzyResolutions(candidates, core.ResourceProject, query), nil
}

func resolveDealByNumber(ctx context.Context, r *Resolver, query string, _ Options) ([]core.Resolution, error) {
	normalized := canonicalNumber(strings.ToUpper(query), "D")
	candidates, err := r.Directory.FindDealByNumber(ctx, normalized)
	if err != nil {
		return nil, err
	}
	if len(candidates) == 0 && normalized != query {
		candidates, err = r.Directory.FindDealByNumber(ctx, query)
		if err != nil {
			return nil, err
		}
	}
	return resolutions(candidates, core.ResourceDeal, query, true), nil
}

func resolveDealsByName(ctx context.Context, r *Resolver, query string, _ Options) ([]core.Resolution, error) {
	candidates, err := r.Directory.SearchDealsByName(ctx, query)
	if err != nil {
		return nil, err
	}
	return fuzzyResolutions(candidates, core.ResourceDeal, query), nil
}

func resolveCompaniesByName(ctx context.Context, r *Resolver, query string, _ Options) ([]core.Resolution, error) {
	candidates, err := r.Directory.SearchCompaniesByName(ctx, query)
	if err != nil {
		return nil, err
	}
	return fuzzyResolutions(candidates, core.ResourceCompany, query), nil
}

// resolveServicesInScope narrows a project's service catalog by
// case-insensitive substring, since the upstream API cannot filter
// services by text.
func resolveServicesInScope(ctx context.Context, r *Resolver, query string, opts Options) ([]core.Resolution, error) {
	if opts.Scope == "" {
		return nil, errors.New("service resolution requires a project scope")
	}

	candidates, err := r.Directory.ServicesInScope(ctx, opts.Scope)
	if err != nil {
		return nil, err
	}

	needle := strings.ToLower(query)
	matches := make([]core.Candidate, 0, len(candidates))
	for _, candidate := range candidates {
		if strings.Contains(strings.ToLower(candidate.Label), needle) {
			matches = append(matches, candidate)
		}
	}

	if len(matches) == 0 {
		return nil, &core.NotFoundError{
			Query:      query,
			Type:       core.ResourceService,
			Candidates: candidateLabels(candidates),
		}
	}
	return fuzzyResolutions(matches, core.ResourceService, query), nil
}

func resolutions(candidates []core.Candidate, resourceType core.ResourceType, query string, exact bool) []core.Resolution {
	out := make([]core.Resolution, 0, len(candidates))
	for _, candidate := range candidates {
		out = append(out, core.Resolution{
			ID:    candidate.ID,
			Type:  resourceType,
			Label: candidate.Label,
			Query: query,
			Exact: exact,
		})
	}
	return out
}

// fuzzyResolutions marks search hits non-exact, except a lone hit whose
// label equals the query case-insensitively.
func fuzzyResolutions(candidates []core.Candidate, resourceType core.ResourceType, query string) []core.Resolution {
	out := resolutions(candidates, resourceType, query, false)
	if len(out) == 1 && strings.EqualFold(out[0].Label, query) {
		out[0].Exact = true
	}
	return out
}

// nearMissLimit caps how many close matches a not-found error names.
const nearMissLimit = 5

func candidateLabels(candidates []core.Candidate) []string {
	labels := make([]string, 0, len(candidates))
	for _, candidate := range candidates {
		if candidate.Label == "" {
			continue
		}
		labels = append(labels, candidate.Label)
		if len(labels) == nearMissLimit {
			break
		}
	}
	return labels
}

func resolutionLabels(matches []core.Resolution) []string {
	labels := make([]string, 0, len(matches))
	for _, match := range matches {
		if match.Label == "" {
			continue
		}
		labels = append(labels, match.Label)
		if len(labels) == nearMissLimit {
			break
		}
	}
	return labels
}
