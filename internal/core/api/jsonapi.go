package api

import (
	"encoding/json"
	"fmt"
	"strings"
)

// resourceObject is the raw wire envelope for one resource.
type resourceObject struct {
	ID         string          `json:"id"`
	Type       string          `json:"type"`
	Attributes json.RawMessage `json:"attributes"`
}

func decodeDocument(body []byte) ([]resourceObject, error) {
	var doc struct {
		Data []resourceObject `json:"data"`
	}
	if err := json.Unmarshal(body, &doc); err != nil {
		return nil, fmt.Errorf("decode api document: %w", err)
	}
	return doc.Data, nil
}

func decodeSingle(body []byte) (*resourceObject, error) {
	var doc struct {
		Data resourceObject `json:"data"`
	}
	if err := json.Unmarshal(body, &doc); err != nil {
		return nil, fmt.Errorf("decode api document: %w", err)
	}
	if doc.Data.ID == "" {
		return nil, nil
	}
	return &doc.Data, nil
}

// Person is a Worklane person record.
type Person struct {
	ID        string `json:"id"`
	FirstName string `json:"first_name"`
	LastName  string `json:"last_name"`
	Email     string `json:"email"`
	Title     string `json:"title"`
}

// Label returns the display name for a person.
func (p Person) Label() string {
	name := strings.TrimSpace(strings.TrimSpace(p.FirstName) + " " + strings.TrimSpace(p.LastName))
	if name != "" {
		return name
	}
	if p.Email != "" {
		return p.Email
	}
	return p.ID
}

// Project is a Worklane project record.
type Project struct {
	ID     string `json:"id"`
	Name   string `json:"name"`
	Number string `json:"number"`
	Status string `json:"status"`
}

// Label returns the display name for a project.
func (p Project) Label() string {
	if p.Name != "" {
		return p.Name
	}
	return p.Number
}

// Company is a Worklane company record.
type Company struct {
	ID   string `json:"id"`
	Name string `json:"name"`
}

// Label returns the display name for a company.
func (c Company) Label() string { return c.Name }

// Deal is a Worklane deal record.
type Deal struct {
	ID     string `json:"id"`
	Name   string `json:"name"`
	Number string `json:"number"`
}

// Label returns the display name for a deal.
func (d Deal) Label() string {
	if d.Name != "" {
		return d.Name
	}
	return d.Number
}

// Service is a Worklane service record.
type Service struct {
	ID   string `json:"id"`
	Name string `json:"name"`
}

// Label returns the display name for a service.
func (s Service) Label() string { return s.Name }

// Task is a Worklane task record.
type Task struct {
	ID        string `json:"id"`
	Title     string `json:"title"`
	ProjectID string `json:"project_id"`
	Status    string `json:"status"`
}

// TimeEntry is a Worklane time entry record.
type TimeEntry struct {
	ID        string `json:"id"`
	Date      string `json:"date"`
	Minutes   int    `json:"time"`
	Note      string `json:"note"`
	PersonID  string `json:"person_id"`
	ServiceID string `json:"service_id"`
	TaskID    string `json:"task_id"`
}

// ReportRow is one grouped line of a time report. Minutes follow the
// same integer convention as time entries.
type ReportRow struct {
	ID              string `json:"id"`
	Label           string `json:"label"`
	Minutes         int    `json:"time"`
	BillableMinutes int    `json:"billable_time"`
}

func peopleFromDocument(body []byte) ([]Person, error) {
	items, err := decodeDocument(body)
	if err != nil {
		return nil, err
	}

	out := make([]Person, 0, len(items))
	for _, item := range items {
		var person Person
		if len(item.Attributes) > 0 {
			if err := json.Unmarshal(item.Attributes, &person); err != nil {
				return nil, fmt.Errorf("decode person: %w", err)
			}
		}
		person.ID = item.ID
		out = append(out, person)
	}
	return out, nil
}

func projectsFromDocument(body []byte) ([]Project, error) {
	items, err := decodeDocument(body)
	if err != nil {
		return nil, err
	}

	out := make([]Project, 0, len(items))
	for _, item := range items {
		var project Project
		if len(item.Attributes) > 0 {
			if err := json.Unmarshal(item.Attributes, &project); err != nil {
				return nil, fmt.Errorf("decode project: %w", err)
			}
		}
		project.ID = item.ID
		out = append(out, project)
	}
	return out, nil
}

func companiesFromDocument(body []byte) ([]Company, error) {
	items, err := decodeDocument(body)
	if err != nil {
		return nil, err
	}

	out := make([]Company, 0, len(items))
	for _, item := range items {
		var company Company
		if len(item.Attributes) > 0 {
			if err := json.Unmarshal(item.Attributes, &company); err != nil {
				return nil, fmt.Errorf("decode company: %w", err)
			}
		}
		company.ID = item.ID
		out = append(out, company)
	}
	return out, nil
}

func dealsFromDocument(body []byte) ([]Deal, error) {
	items, err := decodeDocument(body)
	if err != nil {
		return nil, err
	}

	out := make([]Deal, 0, len(items))
	for _, item := range items {
		var deal Deal
		if len(item.Attributes) > 0 {
			if err := json.Unmarshal(item.Attributes, &deal); err != nil {
				return nil, fmt.Errorf("decode deal: %w", err)
			}
		}
		deal.ID = item.ID
		out = append(out, deal)
	}
	return out, nil
}

func servicesFromDocument(body []byte) ([]Service, error) {
	items, err := decodeDocument(body)
	if err != nil {
		return nil, err
	}

	out := make([]Service, 0, len(items))
	for _, item := range items {
		var service Service
		if len(item.Attributes) > 0 {
			if err := json.Unmarshal(item.Attributes, &service); err != nil {
				return nil, fmt.Errorf("decode service: %w", err)
			}
		}
		service.ID = item.ID
		out = append(out, service)
	}
	return out, nil
}

func tasksFromDocument(body []byte) ([]Task, error) {
	items, err := decodeDocument(body)
	if err != nil {
		return nil, err
	}

	out := make([]Task, 0, len(items))
	for _, item := range items {
		var task Task
		if len(item.Attributes) > 0 {
			if err := json.Unmarshal(item.Attributes, &task); err != nil {
				return nil, fmt.Errorf("decode task: %w", err)
			}
		}
		task.ID = item.ID
		out = append(out, task)
	}
	return out, nil
}

func timeEntriesFromDocument(body []byte) ([]TimeEntry, error) {
	items, err := decodeDocument(body)
	if err != nil {
		return nil, err
	}

	out := make([]TimeEntry, 0, len(items))
	for _, item := range items {
		var entry TimeEntry
		if len(item.Attributes) > 0 {
			if err := json.Unmarshal(item.Attributes, &entry); err != nil {
				return nil, fmt.Errorf("decode time entry: %w", err)
			}
		}
		entry.ID = item.ID
		out = append(out, entry)
	}
	return out, nil
}

func reportRowsFromDocument(body []byte) ([]ReportRow, error) {
	items, err := decodeDocument(body)
	if err != nil {
		return nil, err
	}

	out := make([]ReportRow, 0, len(items))
	for _, item := range items {
		var row ReportRow
		if len(item.Attributes) > 0 {
			if err := json.Unmarshal(item.Attributes, &row); err != nil {
				return nil, fmt.Errorf("decode report row: %w", err)
			}
		}
		row.ID = item.ID
		out = append(out, row)
	}
	return out, nil
}

func timeEntryFromDocument(body []byte) (*TimeEntry, error) {
	item, err := decodeSingle(body)
	if err != nil || item == nil {
		return nil, err
	}

	var entry TimeEntry
	if len(item.Attributes) > 0 {
		if err := json.Unmarshal(item.Attributes, &entry); err != nil {
			return nil, fmt.Errorf("decode time entry: %w", err)
		}
	}
	entry.ID = item.ID
	return &entry, nil
}

func personFromDocument(body []byte) (*Person, error) {
	item, err := decodeSingle(body)
	if err != nil || item == nil {
		return nil, err
	}

	var person Person
	if len(item.Attributes) > 0 {
		if err := json.Unmarshal(item.Attributes, &person); err != nil {
			return nil, fmt.Errorf("decode person: %w", err)
		}
	}
	person.ID = item.ID
	return &person, nil
}

func projectFromDocument(body []byte) (*Project, error) {
	item, err := decodeSingle(body)
	if err != nil || item == nil {
		return nil, err
	}

	var project Project
	if len(item.Attributes) > 0 {
		if err := json.Unmarshal(item.Attributes, &project); err != nil {
			return nil, fmt.Errorf("decode project: %w", err)
		}
	}
	project.ID = item.ID
	return &project, nil
}
