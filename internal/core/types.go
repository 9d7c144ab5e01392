package core

import (
	"strings"
	"time"
)

// ResourceType identifies a Worklane resource kind.
type ResourceType string

const (
	ResourcePerson  ResourceType = "person"
	ResourceProject ResourceType = "project"
	ResourceCompany ResourceType = "company"
	ResourceDeal    ResourceType = "deal"
	ResourceService ResourceType = "service"
)

// ResourceTypes lists the resolvable types in display order.
var ResourceTypes = []ResourceType{
	ResourcePerson,
	ResourceProject,
	ResourceCompany,
	ResourceDeal,
	ResourceService,
}

// ParseResourceType normalizes a user-supplied type name.
func ParseResourceType(value string) (ResourceType, bool) {
	switch strings.ToLower(strings.TrimSpace(value)) {
	case "person", "people":
		return ResourcePerson, true
	case "project", "projects":
		return ResourceProject, true
	case "company", "companies":
		return ResourceCompany, true
	case "deal", "deals":
		return ResourceDeal, true
	case "service", "services":
		return ResourceService, true
	default:
		return "", false
	}
}

// Candidate is one directory hit: a canonical id plus its display label.
type Candidate struct {
	ID    string `json:"id"`
	Label string `json:"label"`
}

// Resolution is one resolver result for a query.
type Resolution struct {
	ID    string       `json:"id"`
	Type  ResourceType `json:"type"`
	Label string       `json:"label"`
	Query string       `json:"query"`
	Exact bool         `json:"exact"`
}

// FilterResolution records how one filter value was rewritten.
type FilterResolution struct {
	Input    string `json:"input"`
	ID       string `json:"id"`
	Label    string `json:"label"`
	Reusable bool   `json:"reusable"`
}

// CachedResponse is one stored API response body.
type CachedResponse struct {
	Key       string
	Endpoint  string
	Body      []byte
	CreatedAt time.Time
	ExpiresAt time.Time
}
