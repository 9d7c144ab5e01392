package resolver

import (
	"context"

	"go.uber.org/zap"

	"github.com/worklane/worklane-cli/internal/core"
)

// ResolveFilterValue rewrites one filter value to a resource id. Numeric
// values pass through; anything else resolves to the sole or top match.
func (r *Resolver) ResolveFilterValue(ctx context.Context, value string, resourceType core.ResourceType) (string, error) {
	if IsNumericID(value) {
		return value, nil
	}

	matches, err := r.Resolve(ctx, value, Options{Type: resourceType, First: true})
	if err != nil {
		return "", err
	}
	return matches[0].ID, nil
}

// ResolveFilterIds rewrites every mapped filter value to a resource id
// and reports what each rewrite did. A filter that fails to resolve keeps
// its original value; one bad filter never sinks the rest.
func (r *Resolver) ResolveFilterIds(ctx context.Context, filters map[string]string, types map[string]core.ResourceType) (map[string]string, map[string]core.FilterResolution) {
	resolved := make(map[string]string, len(filters))
	meta := make(map[string]core.FilterResolution, len(filters))

	for key, value := range filters {
		resourceType, mapped := types[key]
		if !mapped || IsNumericID(value) {
			resolved[key] = value
			continue
		}

		matches, err := r.Resolve(ctx, value, Options{Type: resourceType, First: true})
		if err != nil {
			r.logger().Debug("filter resolution failed, keeping original value",
				zap.String("filter", key),
				zap.String("value", value),
				zap.Error(err))
			resolved[key] = value
			continue
		}

		match := matches[0]
		resolved[key] = match.ID
		meta[key] = core.FilterResolution{
			Input:    value,
			ID:       match.ID,
			Label:    match.Label,
			Reusable: match.Exact,
		}
	}

	return resolved, meta
}
