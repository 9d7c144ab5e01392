package api

import (
	"context"
	"net/url"

	"github.com/worklane/worklane-cli/internal/core"
)

// searchPageSize caps fuzzy search responses so ambiguity checks stay cheap.
const searchPageSize = "10"

// scopePageSize covers the service catalog of a single project or deal.
const scopePageSize = "200"

// ListPeople fetches people matching the given query parameters.
func (c *Client) ListPeople(ctx context.Context, params url.Values) ([]Person, error) {
	body, err := c.Get(ctx, "/people", params)
	if err != nil {
		return nil, err
	}
	return peopleFromDocument(body)
}

// ListProjects fetches projects matching the given query parameters.
func (c *Client) ListProjects(ctx context.Context, params url.Values) ([]Project, error) {
	body, err := c.Get(ctx, "/projects", params)
	if err != nil {
		return nil, err
	}
	return projectsFromDocument(body)
}

// ListCompanies fetches companies matching the given query parameters.
func (c *Client) ListCompanies(ctx context.Context, params url.Values) ([]Company, error) {
	body, err := c.Get(ctx, "/companies", params)
	if err != nil {
		return nil, err
	}
	return companiesFromDocument(body)
}

// ListDeals fetches deals matching the given query parameters.
func (c *Client) ListDeals(ctx context.Context, params url.Values) ([]Deal, error) {
	body, err := c.Get(ctx, "/deals", params)
	if err != nil {
		return nil, err
	}
	return dealsFromDocument(body)
}

// ListServices fetches services matching the given query parameters.
func (c *Client) ListServices(ctx context.Context, params url.Values) ([]Service, error) {
	body, err := c.Get(ctx, "/services", params)
	if err != nil {
		return nil, err
	}
	return servicesFromDocument(body)
}

// ListTasks fetches tasks matching the given query parameters.
func (c *Client) ListTasks(ctx context.Context, params url.Values) ([]Task, error) {
	body, err := c.Get(ctx, "/tasks", params)
	if err != nil {
		return nil, err
	}
	return tasksFromDocument(body)
}

// ListTimeEntries fetches time entries matching the given query parameters.
func (c *Client) ListTimeEntries(ctx context.Context, params url.Values) ([]TimeEntry, error) {
	body, err := c.Get(ctx, "/time_entries", params)
	if err != nil {
		return nil, err
	}
	return timeEntriesFromDocument(body)
}

// TimeReport fetches grouped time totals. Report endpoints sit in the
// slowest rate class, so callers may wait on admission.
func (c *Client) TimeReport(ctx context.Context, params url.Values) ([]ReportRow, error) {
	body, err := c.Get(ctx, "/reports/time", params)
	if err != nil {
		return nil, err
	}
	return reportRowsFromDocument(body)
}

// GetPerson fetches one person by id. A missing id returns nil.
func (c *Client) GetPerson(ctx context.Context, id string) (*Person, error) {
	body, err := c.Get(ctx, "/people/"+url.PathEscape(id), nil)
	if err != nil {
		return nil, err
	}
	return personFromDocument(body)
}

// GetProject fetches one project by id. A missing id returns nil.
func (c *Client) GetProject(ctx context.Context, id string) (*Project, error) {
	body, err := c.Get(ctx, "/projects/"+url.PathEscape(id), nil)
	if err != nil {
		return nil, err
	}
	return projectFromDocument(body)
}

// NewTimeEntry is the payload for logging a time entry.
type NewTimeEntry struct {
	Date      string `json:"date"`
	Minutes   int    `json:"time"`
	Note      string `json:"note,omitempty"`
	PersonID  string `json:"person_id,omitempty"`
	ServiceID string `json:"service_id,omitempty"`
	TaskID    string `json:"task_id,omitempty"`
}

// CreateTimeEntry logs a time entry and returns the created record.
func (c *Client) CreateTimeEntry(ctx context.Context, entry NewTimeEntry) (*TimeEntry, error) {
	payload := map[string]any{
		"data": map[string]any{
			"type":       "time_entries",
			"attributes": entry,
		},
	}
	body, err := c.Post(ctx, "/time_entries", payload)
	if err != nil {
		return nil, err
	}
	return timeEntryFromDocument(body)
}

// FindPersonByEmail looks up the person owning an exact email address.
func (c *Client) FindPersonByEmail(ctx context.Context, email string) ([]core.Candidate, error) {
	params := url.Values{}
	params.Set("filter[email]", email)
	people, err := c.ListPeople(ctx, params)
	if err != nil {
		return nil, err
	}
	return personCandidates(people), nil
}

// SearchPeopleByName fuzzy-searches people by display name.
func (c *Client) SearchPeopleByName(ctx context.Context, query string) ([]core.Candidate, error) {
	params := url.Values{}
	params.Set("filter[query]", query)
	params.Set("page[size]", searchPageSize)
	people, err := c.ListPeople(ctx, params)
	if err != nil {
		return nil, err
	}
	return personCandidates(people), nil
}

// FindProjectByNumber looks up a project by its exact number.
func (c *Client) FindProjectByNumber(ctx context.Context, number string) ([]core.Candidate, error) {
	params := url.Values{}
	params.Set("filter[number]", number)
	projects, err := c.ListProjects(ctx, params)
	if err != nil {
		return nil, err
	}
	return projectCandidates(projects), nil
}

// SearchProjectsByName fuzzy-searches projects by name.
func (c *Client) SearchProjectsByName(ctx context.Context, query string) ([]core.Candidate, error) {
	params := url.Values{}
	params.Set("filter[query]", query)
	params.Set("page[size]", searchPageSize)
	projects, err := c.ListProjects(ctx, params)
	if err != nil {
		return nil, err
	}
	return projectCandidates(projects), nil
}

// SearchCompaniesByName fuzzy-searches companies by name.
func (c *Client) SearchCompaniesByName(ctx context.Context, query string) ([]core.Candidate, error) {
	params := url.Values{}
	params.Set("filter[query]", query)
	params.Set("page[size]", searchPageSize)
	companies, err := c.ListCompanies(ctx, params)
	if err != nil {
		return nil, err
	}

	out := make([]core.Candidate, 0, len(companies))
	for _, company := range companies {
		out = append(out, core.Candidate{ID: company.ID, Label: company.Label()})
	}
	return out, nil
}

// FindDealByNumber looks up a deal by its exact number.
func (c *Client) FindDealByNumber(ctx context.Context, number string) ([]core.Candidate, error) {
	params := url.Values{}
	params.Set("filter[number]", number)
	deals, err := c.ListDeals(ctx, params)
	if err != nil {
		return nil, err
	}
	return dealCandidates(deals), nil
}

// SearchDealsByName fuzzy-searches deals by name.
func (c *Client) SearchDealsByName(ctx context.Context, query string) ([]core.Candidate, error) {
	params := url.Values{}
	params.Set("filter[query]", query)
	params.Set("page[size]", searchPageSize)
	deals, err := c.ListDeals(ctx, params)
	if err != nil {
		return nil, err
	}
	return dealCandidates(deals), nil
}

// ServicesInScope fetches the services attached to a project. The API has
// no text filter on services, so callers match names client-side.
func (c *Client) ServicesInScope(ctx context.Context, projectID string) ([]core.Candidate, error) {
	params := url.Values{}
	params.Set("filter[project_id]", projectID)
	params.Set("page[size]", scopePageSize)
	services, err := c.ListServices(ctx, params)
	if err != nil {
		return nil, err
	}

	out := make([]core.Candidate, 0, len(services))
	for _, service := range services {
		out = append(out, core.Candidate{ID: service.ID, Label: service.Label()})
	}
	return out, nil
}

func personCandidates(people []Person) []core.Candidate {
	out := make([]core.Candidate, 0, len(people))
	for _, person := range people {
		out = append(out, core.Candidate{ID: person.ID, Label: person.Label()})
	}
	return out
}

func projectCandidates(projects []Project) []core.Candidate {
	out := make([]core.Candidate, 0, len(projects))
	for _, project := range projects {
		out = append(out, core.Candidate{ID: project.ID, Label: project.Label()})
	}
	return out
}

func dealCandidates(deals []Deal) []core.Candidate {
	out := make([]core.Candidate, 0, len(deals))
	for _, deal := range deals {
		out = append(out, core.Candidate{ID: deal.ID, Label: deal.Label()})
	}
	return out
}
