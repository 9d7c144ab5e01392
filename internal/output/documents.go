package output

import (
	"fmt"
	"sort"

	"github.com/worklane/worklane-cli/internal/core"
	"github.com/worklane/worklane-cli/internal/core/api"
	"github.com/worklane/worklane-cli/internal/core/engine"
	"github.com/worklane/worklane-cli/internal/core/store"
)

// Resolutions builds the document for one resolver query.
func Resolutions(query string, matches []core.Resolution) *Document {
	doc := &Document{
		Title:  fmt.Sprintf("Matches for %q", query),
		Header: []string{"ID", "Type", "Label", "Match"},
		Rows:   make([][]string, 0, len(matches)),
		Raw:    matches,
	}
	for _, match := range matches {
		doc.Rows = append(doc.Rows, []string{
			match.ID,
			string(match.Type),
			match.Label,
			matchLabel(match.Exact),
		})
	}
	return doc
}

func matchLabel(exact bool) string {
	if exact {
		return "exact"
	}
	return "fuzzy"
}

// FilterSection summarizes how free-text filters were rewritten to ids.
// It returns nil when every filter passed through untouched.
func FilterSection(meta map[string]core.FilterResolution) *Section {
	if len(meta) == 0 {
		return nil
	}

	keys := make([]string, 0, len(meta))
	for key := range meta {
		keys = append(keys, key)
	}
	sort.Strings(keys)

	lines := make([]string, 0, len(keys))
	for _, key := range keys {
		resolution := meta[key]
		line := fmt.Sprintf("%s: %q -> %s", key, resolution.Input, resolution.ID)
		if resolution.Label != "" {
			line += fmt.Sprintf(" (%s)", resolution.Label)
		}
		if !resolution.Reusable {
			line += " [fuzzy]"
		}
		lines = append(lines, line)
	}

	return &Section{Title: "Resolved Filters", Lines: lines}
}

// People builds the document for a people listing.
func People(people []api.Person) *Document {
	doc := &Document{
		Title:  "People",
		Header: []string{"ID", "Name", "Email", "Title"},
		Rows:   make([][]string, 0, len(people)),
		Raw:    people,
	}
	for _, person := range people {
		doc.Rows = append(doc.Rows, []string{
			person.ID,
			person.Label(),
			person.Email,
			person.Title,
		})
	}
	return doc
}

// Projects builds the document for a project listing.
func Projects(projects []api.Project) *Document {
	doc := &Document{
		Title:  "Projects",
		Header: []string{"ID", "Number", "Name", "Status"},
		Rows:   make([][]string, 0, len(projects)),
		Raw:    projects,
	}
	for _, project := range projects {
		doc.Rows = append(doc.Rows, []string{
			project.ID,
			project.Number,
			project.Name,
			project.Status,
		})
	}
	return doc
}

// Companies builds the document for a company listing.
func Companies(companies []api.Company) *Document {
	doc := &Document{
		Title:  "Companies",
		Header: []string{"ID", "Name"},
		Rows:   make([][]string, 0, len(companies)),
		Raw:    companies,
	}
	for _, company := range companies {
		doc.Rows = append(doc.Rows, []string{company.ID, company.Name})
	}
	return doc
}

// Deals builds the document for a deal listing.
func Deals(deals []api.Deal) *Document {
	doc := &Document{
		Title:  "Deals",
		Header: []string{"ID", "Number", "Name"},
		Rows:   make([][]string, 0, len(deals)),
		Raw:    deals,
	}
	for _, deal := range deals {
		doc.Rows = append(doc.Rows, []string{deal.ID, deal.Number, deal.Name})
	}
	return doc
}

// Services builds the document for a service listing.
func Services(services []api.Service) *Document {
	doc := &Document{
		Title:  "Services",
		Header: []string{"ID", "Name"},
		Rows:   make([][]string, 0, len(services)),
		Raw:    services,
	}
	for _, service := range services {
		doc.Rows = append(doc.Rows, []string{service.ID, service.Name})
	}
	return doc
}

// Tasks builds the document for a task listing.
func Tasks(tasks []api.Task) *Document {
	doc := &Document{
		Title:  "Tasks",
		Header: []string{"ID", "Title", "Project", "Status"},
		Rows:   make([][]string, 0, len(tasks)),
		Raw:    tasks,
	}
	for _, task := range tasks {
		doc.Rows = append(doc.Rows, []string{
			task.ID,
			task.Title,
			task.ProjectID,
			task.Status,
		})
	}
	return doc
}

// TimeEntries builds the document for a time entry listing.
func TimeEntries(entries []api.TimeEntry) *Document {
	doc := &Document{
		Title:  "Time Entries",
		Header: []string{"ID", "Date", "Duration", "Person", "Service", "Note"},
		Rows:   make([][]string, 0, len(entries)),
		Raw:    entries,
	}
	for _, entry := range entries {
		doc.Rows = append(doc.Rows, []string{
			entry.ID,
			entry.Date,
			formatMinutes(entry.Minutes),
			entry.PersonID,
			entry.ServiceID,
			entry.Note,
		})
	}
	return doc
}

// TimeReport builds the document for a grouped time report.
func TimeReport(rows []api.ReportRow) *Document {
	doc := &Document{
		Title:  "Time Report",
		Header: []string{"Group", "Total", "Billable"},
		Rows:   make([][]string, 0, len(rows)),
		Raw:    rows,
	}
	for _, row := range rows {
		doc.Rows = append(doc.Rows, []string{
			row.Label,
			formatMinutes(row.Minutes),
			formatMinutes(row.BillableMinutes),
		})
	}
	return doc
}

// formatMinutes renders a duration in minutes as hours and minutes.
func formatMinutes(minutes int) string {
	if minutes <= 0 {
		return "0m"
	}
	hours := minutes / 60
	rest := minutes % 60
	if hours == 0 {
		return fmt.Sprintf("%dm", rest)
	}
	if rest == 0 {
		return fmt.Sprintf("%dh", hours)
	}
	return fmt.Sprintf("%dh %dm", hours, rest)
}

// CacheStats builds the document for the cache statistics view.
func CacheStats(stats *store.CacheStats) *Document {
	doc := &Document{
		Title:  "Cache",
		Header: []string{"Cache", "Entries", "Expired", "Size"},
		Raw:    stats,
	}
	if stats == nil {
		return doc
	}
	doc.Rows = [][]string{
		{
			"response",
			fmt.Sprintf("%d", stats.ResponseEntries),
			fmt.Sprintf("%d", stats.ResponseExpired),
			formatBytes(stats.ResponseBytes),
		},
		{
			"resolve",
			fmt.Sprintf("%d", stats.ResolveEntries),
			fmt.Sprintf("%d", stats.ResolveExpired),
			"-",
		},
	}
	return doc
}

// formatBytes renders a byte count with a binary unit suffix.
func formatBytes(n int64) string {
	switch {
	case n >= 1<<20:
		return fmt.Sprintf("%.1f MiB", float64(n)/(1<<20))
	case n >= 1<<10:
		return fmt.Sprintf("%.1f KiB", float64(n)/(1<<10))
	default:
		return fmt.Sprintf("%d B", n)
	}
}

// RateLimits builds the document for the limiter status view.
func RateLimits(statuses []engine.ClassStatus) *Document {
	doc := &Document{
		Title:  "Rate Limits",
		Header: []string{"Class", "In Window", "Limit", "Window", "Max Retries"},
		Rows:   make([][]string, 0, len(statuses)),
		Raw:    statuses,
	}
	for _, status := range statuses {
		doc.Rows = append(doc.Rows, []string{
			status.Class,
			fmt.Sprintf("%d", status.InWindow),
			fmt.Sprintf("%d", status.Limit),
			status.Window.String(),
			fmt.Sprintf("%d", status.MaxRetries),
		})
	}
	return doc
}
