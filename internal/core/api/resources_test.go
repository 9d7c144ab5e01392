package api

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"net/url"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/worklane/worklane-cli/internal/core"
)

func TestFindPersonByEmail(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, "john@acme.com", r.URL.Query().Get("filter[email]"))
		_, _ = w.Write([]byte(`{"data":[{"id":"500521","type":"people","attributes":{"first_name":"John","last_name":"Doe","email":"john@acme.com"}}]}`))
	}))
	defer server.Close()

	client := &Client{BaseURL: server.URL, Client: server.Client()}

	candidates, err := client.FindPersonByEmail(context.Background(), "john@acme.com")
	require.NoError(t, err)
	require.Equal(t, []core.Candidate{{ID: "500521", Label: "John Doe"}}, candidates)
}

func TestSearchPeopleByNameCapsPage(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, "john", r.URL.Query().Get("filter[query]"))
		require.Equal(t, "10", r.URL.Query().Get("page[size]"))
		_, _ = w.Write([]byte(`{"data":[{"id":"1","type":"people","attributes":{"first_name":"John","last_name":"Doe"}},{"id":"2","type":"people","attributes":{"first_name":"John","last_name":"Smith"}}]}`))
	}))
	defer server.Close()

	client := &Client{BaseURL: server.URL, Client: server.Client()}

	candidates, err := client.SearchPeopleByName(context.Background(), "john")
	require.NoError(t, err)
	require.Len(t, candidates, 2)
	require.Equal(t, "John Doe", candidates[0].Label)
	require.Equal(t, "John Smith", candidates[1].Label)
}

func TestFindProjectByNumber(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, "/projects", r.URL.Path)
		require.Equal(t, "PRJ-1207", r.URL.Query().Get("filter[number]"))
		_, _ = w.Write([]byte(`{"data":[{"id":"88123","type":"projects","attributes":{"name":"Website Relaunch","number":"PRJ-1207"}}]}`))
	}))
	defer server.Close()

	client := &Client{BaseURL: server.URL, Client: server.Client()}

	candidates, err := client.FindProjectByNumber(context.Background(), "PRJ-1207")
	require.NoError(t, err)
	require.Equal(t, []core.Candidate{{ID: "88123", Label: "Website Relaunch"}}, candidates)
}

func TestServicesInScope(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, "/services", r.URL.Path)
		require.Equal(t, "88123", r.URL.Query().Get("filter[project_id]"))
		require.Equal(t, "200", r.URL.Query().Get("page[size]"))
		_, _ = w.Write([]byte(`{"data":[{"id":"301","type":"services","attributes":{"name":"Design"}},{"id":"302","type":"services","attributes":{"name":"Development"}}]}`))
	}))
	defer server.Close()

	client := &Client{BaseURL: server.URL, Client: server.Client()}

	candidates, err := client.ServicesInScope(context.Background(), "88123")
	require.NoError(t, err)
	require.Equal(t, []core.Candidate{{ID: "301", Label: "Design"}, {ID: "302", Label: "Development"}}, candidates)
}

func TestListTimeEntries(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, "/time_entries", r.URL.Path)
		_, _ = w.Write([]byte(`{"data":[{"id":"900","type":"time_entries","attributes":{"date":"2025-06-02","time":90,"note":"standup","person_id":"500521"}}]}`))
	}))
	defer server.Close()

	client := &Client{BaseURL: server.URL, Client: server.Client()}

	entries, err := client.ListTimeEntries(context.Background(), nil)
	require.NoError(t, err)
	require.Len(t, entries, 1)
	require.Equal(t, "900", entries[0].ID)
	require.Equal(t, "2025-06-02", entries[0].Date)
	require.Equal(t, 90, entries[0].Minutes)
	require.Equal(t, "500521", entries[0].PersonID)
}

func TestTimeReport(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, "/reports/time", r.URL.Path)
		require.Equal(t, "person", r.URL.Query().Get("group_by"))
		_, _ = w.Write([]byte(`{"data":[{"id":"500521","type":"report_rows","attributes":{"label":"Bob Seger","time":480,"billable_time":360}}]}`))
	}))
	defer server.Close()

	client := &Client{BaseURL: server.URL, Client: server.Client()}

	params := url.Values{}
	params.Set("group_by", "person")
	rows, err := client.TimeReport(context.Background(), params)
	require.NoError(t, err)
	require.Len(t, rows, 1)
	require.Equal(t, "500521", rows[0].ID)
	require.Equal(t, "Bob Seger", rows[0].Label)
	require.Equal(t, 480, rows[0].Minutes)
	require.Equal(t, 360, rows[0].BillableMinutes)
}

func TestCreateTimeEntry(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, http.MethodPost, r.Method)
		require.Equal(t, "/time_entries", r.URL.Path)

		payload, err := io.ReadAll(r.Body)
		require.NoError(t, err)

		var doc struct {
			Data struct {
				Type       string          `json:"type"`
				Attributes json.RawMessage `json:"attributes"`
			} `json:"data"`
		}
		require.NoError(t, json.Unmarshal(payload, &doc))
		require.Equal(t, "time_entries", doc.Data.Type)
		require.JSONEq(t, `{"date":"2025-06-02","time":90,"note":"standup","person_id":"500521","service_id":"301"}`, string(doc.Data.Attributes))

		w.WriteHeader(http.StatusCreated)
		_, _ = w.Write([]byte(`{"data":{"id":"900","type":"time_entries","attributes":{"date":"2025-06-02","time":90,"note":"standup","person_id":"500521","service_id":"301"}}}`))
	}))
	defer server.Close()

	client := &Client{BaseURL: server.URL, Client: server.Client()}

	entry, err := client.CreateTimeEntry(context.Background(), NewTimeEntry{
		Date:      "2025-06-02",
		Minutes:   90,
		Note:      "standup",
		PersonID:  "500521",
		ServiceID: "301",
	})
	require.NoError(t, err)
	require.NotNil(t, entry)
	require.Equal(t, "900", entry.ID)
	require.Equal(t, 90, entry.Minutes)
}

func TestPersonLabelFallbacks(t *testing.T) {
	require.Equal(t, "John Doe", Person{FirstName: "John", LastName: "Doe"}.Label())
	require.Equal(t, "John", Person{FirstName: "John"}.Label())
	require.Equal(t, "john@acme.com", Person{ID: "5", Email: "john@acme.com"}.Label())
	require.Equal(t, "5", Person{ID: "5"}.Label())
}

func TestProjectLabelFallsBackToNumber(t *testing.T) {
	require.Equal(t, "Website Relaunch", Project{Name: "Website Relaunch", Number: "PRJ-1207"}.Label())
	require.Equal(t, "PRJ-1207", Project{Number: "PRJ-1207"}.Label())
}

func TestDecodeDocumentMissingAttributes(t *testing.T) {
	people, err := peopleFromDocument([]byte(`{"data":[{"id":"1","type":"people"}]}`))
	require.NoError(t, err)
	require.Len(t, people, 1)
	require.Equal(t, "1", people[0].ID)
}

func TestDecodeDocumentRejectsMalformedBody(t *testing.T) {
	_, err := peopleFromDocument([]byte(`{"data":`))
	require.Error(t, err)
}
