package resolver

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/worklane/worklane-cli/internal/core"
)

type stubDirectory struct {
	peopleByEmail    map[string][]core.Candidate
	peopleByName     map[string][]core.Candidate
	projectsByNumber map[string][]core.Candidate
	projectsByName   map[string][]core.Candidate
	companiesByName  map[string][]core.Candidate
	dealsByNumber    map[string][]core.Candidate
	dealsByName      map[string][]core.Candidate
	services         map[string][]core.Candidate
	err              error
	calls            []string
}

func (s *stubDirectory) FindPersonByEmail(ctx context.Context, email string) ([]core.Candidate, error) {
	s.calls = append(s.calls, "person-email:"+email)
	return s.peopleByEmail[email], s.err
}

func (s *stubDirectory) SearchPeopleByName(ctx context.Context, query string) ([]core.Candidate, error) {
	s.calls = append(s.calls, "person-name:"+query)
	return s.peopleByName[query], s.err
}

func (s *stubDirectory) FindProjectByNumber(ctx context.Context, number string) ([]core.Candidate, error) {
	s.calls = append(s.calls, "project-number:"+number)
	return s.projectsByNumber[number], s.err
}

func (s *stubDirectory) SearchProjectsByName(ctx context.Context, query string) ([]core.Candidate, error) {
	s.calls = append(s.calls, "project-name:"+query)
	return s.projectsByName[query], s.err
}

func (s *stubDirectory) SearchCompaniesByName(ctx context.Context, query string) ([]core.Candidate, error) {
	s.calls = append(s.calls, "company-name:"+query)
	return s.companiesByName[query], s.err
}

func (s *stubDirectory) FindDealByNumber(ctx context.Context, number string) ([]core.Candidate, error) {
	s.calls = append(s.calls, "deal-number:"+number)
	return s.dealsByNumber[number], s.err
}

func (s *stubDirectory) SearchDealsByName(ctx context.Context, query string) ([]core.Candidate, error) {
	s.calls = append(s.calls, "deal-name:"+query)
	return s.dealsByName[query], s.err
}

func (s *stubDirectory) ServicesInScope(ctx context.Context, projectID string) ([]core.Candidate, error) {
	s.calls = append(s.calls, "services:"+projectID)
	return s.services[projectID], s.err
}

type stubResolveStore struct {
	entries map[string]core.Resolution
	ttls    map[string]time.Duration
	sets    int
	getErr  error
	setErr  error
}

func newStubResolveStore() *stubResolveStore {
	return &stubResolveStore{
		entries: make(map[string]core.Resolution),
		ttls:    make(map[string]time.Duration),
	}
}

func resolveKey(tenant string, resourceType core.ResourceType, query string) string {
	return tenant + "|" + string(resourceType) + "|" + query
}

func (s *stubResolveStore) GetResolveCache(ctx context.Context, tenant string, resourceType core.ResourceType, query string) (*core.Resolution, error) {
	if s.getErr != nil {
		return nil, s.getErr
	}
	cached, ok := s.entries[resolveKey(tenant, resourceType, query)]
	if !ok {
		return nil, nil
	}
	return &cached, nil
}

func (s *stubResolveStore) SetResolveCache(ctx context.Context, tenant string, resolution *core.Resolution, ttl time.Duration) error {
	if s.setErr != nil {
		return s.setErr
	}
	s.sets++
	key := resolveKey(tenant, resolution.Type, resolution.Query)
	s.entries[key] = *resolution
	s.ttls[key] = ttl
	return nil
}

func TestResolveNumericPassThrough(t *testing.T) {
	directory := &stubDirectory{}
	resolver := &Resolver{Directory: directory}

	results, err := resolver.Resolve(context.Background(), "42", Options{Type: core.ResourceProject})
	require.NoError(t, err)
	require.Len(t, results, 1)
	require.Equal(t, "42", results[0].ID)
	require.Equal(t, "42", results[0].Label)
	require.Equal(t, core.ResourceProject, results[0].Type)
	require.True(t, results[0].Exact)
	require.Empty(t, directory.calls, "numeric ids must not hit the directory")

	results, err = resolver.Resolve(context.Background(), "999", Options{})
	require.NoError(t, err)
	require.Len(t, results, 1)
	require.Equal(t, "999", results[0].ID)
	require.True(t, results[0].Exact)
}

func TestResolveEmailCachesExactHit(t *testing.T) {
	directory := &stubDirectory{
		peopleByEmail: map[string][]core.Candidate{
			"user@example.com": {{ID: "500521", Label: "John Doe"}},
		},
	}
	store := newStubResolveStore()
	resolver := &Resolver{Directory: directory, Store: store, Tenant: "555001", UseCache: true}

	results, err := resolver.Resolve(context.Background(), "user@example.com", Options{})
	require.NoError(t, err)
	require.Equal(t, []core.Resolution{{
		ID:    "500521",
		Type:  core.ResourcePerson,
		Label: "John Doe",
		Query: "user@example.com",
		Exact: true,
	}}, results)
	require.Equal(t, DefaultExactTTL, store.ttls[resolveKey("555001", core.ResourcePerson, "user@example.com")])

	again, err := resolver.Resolve(context.Background(), "user@example.com", Options{})
	require.NoError(t, err)
	require.Equal(t, results, again)
	require.Len(t, directory.calls, 1, "second resolve must be served from cache")
}

func TestResolveCacheKeyIsCaseInsensitive(t *testing.T) {
	directory := &stubDirectory{
		peopleByEmail: map[string][]core.Candidate{
			"user@example.com": {{ID: "500521", Label: "John Doe"}},
		},
	}
	store := newStubResolveStore()
	resolver := &Resolver{Directory: directory, Store: store, Tenant: "555001", UseCache: true}

	_, err := resolver.Resolve(context.Background(), "user@example.com", Options{})
	require.NoError(t, err)

	results, err := resolver.Resolve(context.Background(), "User@Example.com", Options{Type: core.ResourcePerson})
	require.NoError(t, err)
	require.Len(t, directory.calls, 1)
	require.Equal(t, "500521", results[0].ID)
	require.Equal(t, "User@Example.com", results[0].Query, "hits carry the query as typed")
}

func TestResolveProjectNumberNormalizesPrefix(t *testing.T) {
	directory := &stubDirectory{
		projectsByNumber: map[string][]core.Candidate{
			"PRJ-1207": {{ID: "88123", Label: "Website Relaunch"}},
		},
	}
	resolver := &Resolver{Directory: directory}

	results, err := resolver.Resolve(context.Background(), "p-1207", Options{})
	require.NoError(t, err)
	require.Len(t, results, 1)
	require.Equal(t, "88123", results[0].ID)
	require.Equal(t, core.ResourceProject, results[0].Type)
	require.True(t, results[0].Exact)
	require.Equal(t, []string{"project-number:PRJ-1207"}, directory.calls)
}

func TestResolveProjectNumberRetriesAsTyped(t *testing.T) {
	directory := &stubDirectory{
		projectsByNumber: map[string][]core.Candidate{
			"p-77": {{ID: "101", Label: "Legacy Migration"}},
		},
	}
	resolver := &Resolver{Directory: directory}

	results, err := resolver.Resolve(context.Background(), "p-77", Options{})
	require.NoError(t, err)
	require.Equal(t, "101", results[0].ID)
	require.Equal(t, []string{"project-number:PRJ-77", "project-number:p-77"}, directory.calls)
}

func TestResolveDealNumberNormalizesPrefix(t *testing.T) {
	directory := &stubDirectory{
		dealsByNumber: map[string][]core.Candidate{
			"D-7": {{ID: "654", Label: "Annual Renewal"}},
		},
	}
	resolver := &Resolver{Directory: directory}

	results, err := resolver.Resolve(context.Background(), "deal-7", Options{})
	require.NoError(t, err)
	require.Equal(t, "654", results[0].ID)
	require.Equal(t, core.ResourceDeal, results[0].Type)
	require.True(t, results[0].Exact)
	require.Equal(t, []string{"deal-number:D-7"}, directory.calls)
}

func TestResolveNameSearchReturnsAllMatches(t *testing.T) {
	directory := &stubDirectory{
		peopleByName: map[string][]core.Candidate{
			"john": {{ID: "1", Label: "John Doe"}, {ID: "2", Label: "John Smith"}},
		},
	}
	store := newStubResolveStore()
	resolver := &Resolver{Directory: directory, Store: store, Tenant: "t", UseCache: true}

	results, err := resolver.Resolve(context.Background(), "john", Options{Type: core.ResourcePerson})
	require.NoError(t, err)
	require.Len(t, results, 2)
	require.False(t, results[0].Exact)
	require.False(t, results[1].Exact)
	require.Zero(t, store.sets, "multi-match results are never cached")
}

func TestResolveFirstTakesTopCandidate(t *testing.T) {
	directory := &stubDirectory{
		peopleByName: map[string][]core.Candidate{
			"john": {{ID: "1", Label: "John Doe"}, {ID: "2", Label: "John Smith"}},
		},
	}
	resolver := &Resolver{Directory: directory}

	results, err := resolver.Resolve(context.Background(), "john", Options{Type: core.ResourcePerson, First: true})
	require.NoError(t, err)
	require.Len(t, results, 1)
	require.Equal(t, "1", results[0].ID)
}

func TestResolveRequireUniqueRejectsMultiple(t *testing.T) {
	directory := &stubDirectory{
		peopleByName: map[string][]core.Candidate{
			"john": {{ID: "1", Label: "John Doe"}, {ID: "2", Label: "John Smith"}},
		},
	}
	resolver := &Resolver{Directory: directory}

	_, err := resolver.Resolve(context.Background(), "john", Options{Type: core.ResourcePerson, RequireUnique: true})
	require.Error(t, err)

	var ambiguous *core.AmbiguousError
	require.ErrorAs(t, err, &ambiguous)
	require.Equal(t, "john", ambiguous.Query)
	require.Len(t, ambiguous.Matches, 2)
}

func TestResolveSingleFuzzyHitLabelMatchIsExact(t *testing.T) {
	directory := &stubDirectory{
		companiesByName: map[string][]core.Candidate{
			"acme corp": {{ID: "9", Label: "Acme Corp"}},
		},
	}
	store := newStubResolveStore()
	resolver := &Resolver{Directory: directory, Store: store, Tenant: "t", UseCache: true}

	results, err := resolver.Resolve(context.Background(), "acme corp", Options{Type: core.ResourceCompany})
	require.NoError(t, err)
	require.Len(t, results, 1)
	require.True(t, results[0].Exact, "lone hit with matching label counts as exact")
	require.Equal(t, DefaultExactTTL, store.ttls[resolveKey("t", core.ResourceCompany, "acme corp")])
}

func TestResolveSingleFuzzyHitCachesShortTTL(t *testing.T) {
	directory := &stubDirectory{
		companiesByName: map[string][]core.Candidate{
			"acme": {{ID: "9", Label: "Acme Corporation"}},
		},
	}
	store := newStubResolveStore()
	resolver := &Resolver{Directory: directory, Store: store, Tenant: "t", UseCache: true}

	results, err := resolver.Resolve(context.Background(), "acme", Options{Type: core.ResourceCompany})
	require.NoError(t, err)
	require.Len(t, results, 1)
	require.False(t, results[0].Exact)
	require.Equal(t, DefaultFuzzyTTL, store.ttls[resolveKey("t", core.ResourceCompany, "acme")])
}

func TestResolveServiceRequiresScope(t *testing.T) {
	resolver := &Resolver{Directory: &stubDirectory{}}

	_, err := resolver.Resolve(context.Background(), "design", Options{Type: core.ResourceService})
	require.Error(t, err)
	require.Contains(t, err.Error(), "scope")
}

func TestResolveServiceFiltersCatalog(t *testing.T) {
	directory := &stubDirectory{
		services: map[string][]core.Candidate{
			"88123": {
				{ID: "301", Label: "Design"},
				{ID: "302", Label: "Development"},
				{ID: "303", Label: "Design Review"},
			},
		},
	}
	resolver := &Resolver{Directory: directory}

	results, err := resolver.Resolve(context.Background(), "design", Options{Type: core.ResourceService, Scope: "88123"})
	require.NoError(t, err)
	require.Len(t, results, 2)
	require.False(t, results[0].Exact)
	require.False(t, results[1].Exact)

	results, err = resolver.Resolve(context.Background(), "Development", Options{Type: core.ResourceService, Scope: "88123"})
	require.NoError(t, err)
	require.Len(t, results, 1)
	require.Equal(t, "302", results[0].ID)
	require.True(t, results[0].Exact)
}

func TestResolveServiceNotFoundListsCatalog(t *testing.T) {
	directory := &stubDirectory{
		services: map[string][]core.Candidate{
			"88123": {{ID: "301", Label: "Design"}, {ID: "302", Label: "Development"}},
		},
	}
	resolver := &Resolver{Directory: directory}

	_, err := resolver.Resolve(context.Background(), "qa", Options{Type: core.ResourceService, Scope: "88123"})
	require.Error(t, err)
	require.True(t, core.IsNotFound(err))

	var notFound *core.NotFoundError
	require.ErrorAs(t, err, &notFound)
	require.Equal(t, "qa", notFound.Query)
	require.Equal(t, core.ResourceService, notFound.Type)
	require.Contains(t, notFound.Candidates, "Design")
}

func TestResolveServiceCacheIsScopeQualified(t *testing.T) {
	directory := &stubDirectory{
		services: map[string][]core.Candidate{
			"88123": {{ID: "302", Label: "Development"}},
		},
	}
	store := newStubResolveStore()
	resolver := &Resolver{Directory: directory, Store: store, Tenant: "t", UseCache: true}

	_, err := resolver.Resolve(context.Background(), "Development", Options{Type: core.ResourceService, Scope: "88123"})
	require.NoError(t, err)
	require.Contains(t, store.entries, resolveKey("t", core.ResourceService, "88123::development"))
}

func TestResolveNotFoundCarriesQueryAndType(t *testing.T) {
	resolver := &Resolver{Directory: &stubDirectory{}}

	_, err := resolver.Resolve(context.Background(), "ghost@example.com", Options{})
	require.Error(t, err)
	require.True(t, core.IsNotFound(err))

	var notFound *core.NotFoundError
	require.ErrorAs(t, err, &notFound)
	require.Equal(t, "ghost@example.com", notFound.Query)
	require.Equal(t, core.ResourcePerson, notFound.Type)
}

func TestResolveFreeTextNeedsExplicitType(t *testing.T) {
	resolver := &Resolver{Directory: &stubDirectory{}}

	_, err := resolver.Resolve(context.Background(), "Acme", Options{})
	require.Error(t, err)
	require.Contains(t, err.Error(), "resource type")
}

func TestResolveCacheFailuresDegradeToLookup(t *testing.T) {
	directory := &stubDirectory{
		peopleByEmail: map[string][]core.Candidate{
			"user@example.com": {{ID: "500521", Label: "John Doe"}},
		},
	}
	store := newStubResolveStore()
	store.getErr = errors.New("cache unreadable")
	store.setErr = errors.New("cache unwritable")
	resolver := &Resolver{Directory: directory, Store: store, Tenant: "t", UseCache: true}

	for i := 0; i < 2; i++ {
		results, err := resolver.Resolve(context.Background(), "user@example.com", Options{})
		require.NoError(t, err, "cache failures must not surface")
		require.Equal(t, "500521", results[0].ID)
	}
	require.Len(t, directory.calls, 2, "every resolve goes upstream while the cache is down")
}

func TestResolveExactOnlyDropsFuzzyMatches(t *testing.T) {
	directory := &stubDirectory{
		peopleByName: map[string][]core.Candidate{
			"john": {{ID: "1", Label: "John Doe"}, {ID: "2", Label: "John Smith"}},
		},
		peopleByEmail: map[string][]core.Candidate{
			"user@example.com": {{ID: "500521", Label: "John Doe"}},
		},
	}
	resolver := &Resolver{Directory: directory}

	_, err := resolver.Resolve(context.Background(), "john", Options{Type: core.ResourcePerson, ExactOnly: true})
	require.Error(t, err)

	var notFound *core.NotFoundError
	require.ErrorAs(t, err, &notFound)
	require.Equal(t, []string{"John Doe", "John Smith"}, notFound.Candidates)

	results, err := resolver.Resolve(context.Background(), "user@example.com", Options{ExactOnly: true})
	require.NoError(t, err)
	require.Len(t, results, 1)
}

func TestResolveDirectoryErrorsPropagate(t *testing.T) {
	directory := &stubDirectory{err: errors.New("upstream down")}
	resolver := &Resolver{Directory: directory}

	_, err := resolver.Resolve(context.Background(), "user@example.com", Options{})
	require.Error(t, err)
	require.Contains(t, err.Error(), "upstream down")
}
