package resolver

import (
	"context"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/worklane/worklane-cli/internal/core"
)

func TestResolveFilterValueNumericPassesThrough(t *testing.T) {
	directory := &stubDirectory{}
	resolver := &Resolver{Directory: directory}

	value, err := resolver.ResolveFilterValue(context.Background(), "500521", core.ResourcePerson)
	require.NoError(t, err)
	require.Equal(t, "500521", value)
	require.Empty(t, directory.calls)
}

func TestResolveFilterValueTakesTopMatch(t *testing.T) {
	directory := &stubDirectory{
		peopleByName: map[string][]core.Candidate{
			"john": {{ID: "1", Label: "John Doe"}, {ID: "2", Label: "John Smith"}},
		},
	}
	resolver := &Resolver{Directory: directory}

	value, err := resolver.ResolveFilterValue(context.Background(), "john", core.ResourcePerson)
	require.NoError(t, err)
	require.Equal(t, "1", value)
}

func TestResolveFilterValueNotFound(t *testing.T) {
	resolver := &Resolver{Directory: &stubDirectory{}}

	_, err := resolver.ResolveFilterValue(context.Background(), "ghost@example.com", core.ResourcePerson)
	require.Error(t, err)
	require.True(t, core.IsNotFound(err))
}

func TestResolveFilterIdsRewritesMappedFilters(t *testing.T) {
	directory := &stubDirectory{
		peopleByEmail: map[string][]core.Candidate{
			"john@acme.com": {{ID: "500521", Label: "John Doe"}},
		},
	}
	resolver := &Resolver{Directory: directory}

	filters := map[string]string{
		"person_id":  "john@acme.com",
		"project_id": "88123",
		"status":     "open",
	}
	types := map[string]core.ResourceType{
		"person_id":  core.ResourcePerson,
		"project_id": core.ResourceProject,
	}

	resolved, meta := resolver.ResolveFilterIds(context.Background(), filters, types)

	require.Equal(t, map[string]string{
		"person_id":  "500521",
		"project_id": "88123",
		"status":     "open",
	}, resolved)

	require.Len(t, meta, 1)
	require.Equal(t, core.FilterResolution{
		Input:    "john@acme.com",
		ID:       "500521",
		Label:    "John Doe",
		Reusable: true,
	}, meta["person_id"])
}

func TestResolveFilterIdsKeepsValueOnFailure(t *testing.T) {
	directory := &stubDirectory{
		peopleByEmail: map[string][]core.Candidate{
			"john@acme.com": {{ID: "500521", Label: "John Doe"}},
		},
	}
	resolver := &Resolver{Directory: directory}

	filters := map[string]string{
		"person_id":  "john@acme.com",
		"company_id": "NoSuchCo",
	}
	types := map[string]core.ResourceType{
		"person_id":  core.ResourcePerson,
		"company_id": core.ResourceCompany,
	}

	resolved, meta := resolver.ResolveFilterIds(context.Background(), filters, types)

	require.Equal(t, "500521", resolved["person_id"], "one failing filter must not sink the rest")
	require.Equal(t, "NoSuchCo", resolved["company_id"])
	require.NotContains(t, meta, "company_id")
}

func TestResolveFilterIdsFuzzyMatchNotReusable(t *testing.T) {
	directory := &stubDirectory{
		companiesByName: map[string][]core.Candidate{
			"acme": {{ID: "9", Label: "Acme Corporation"}},
		},
	}
	resolver := &Resolver{Directory: directory}

	resolved, meta := resolver.ResolveFilterIds(context.Background(),
		map[string]string{"company_id": "acme"},
		map[string]core.ResourceType{"company_id": core.ResourceCompany})

	require.Equal(t, "9", resolved["company_id"])
	require.False(t, meta["company_id"].Reusable)
}
