package api

import (
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"net/url"
	"sort"
	"strings"
	"time"
)

// CachePolicy controls response cache TTLs and storage budgets. TTLs maps
// endpoint prefixes to lifetimes; the longest matching prefix wins and
// unmatched endpoints fall back to DefaultTTL.
type CachePolicy struct {
	TTLs       map[string]time.Duration
	DefaultTTL time.Duration
	MaxBytes   int64
	MaxEntries int
}

func cachePolicyWithDefaults(policy CachePolicy) CachePolicy {
	if policy.TTLs == nil {
		policy.TTLs = map[string]time.Duration{
			"/projects":     time.Hour,
			"/time_entries": 5 * time.Minute,
			"/tasks":        15 * time.Minute,
		}
	}
	if policy.DefaultTTL == 0 {
		policy.DefaultTTL = 5 * time.Minute
	}
	if policy.MaxBytes == 0 {
		policy.MaxBytes = 50 << 20
	}
	if policy.MaxEntries == 0 {
		policy.MaxEntries = 1000
	}
	return policy
}

func cacheTTL(policy CachePolicy, endpoint string) time.Duration {
	policy = cachePolicyWithDefaults(policy)

	best := ""
	ttl := policy.DefaultTTL
	for prefix, lifetime := range policy.TTLs {
		if strings.HasPrefix(endpoint, prefix) && len(prefix) > len(best) {
			best = prefix
			ttl = lifetime
		}
	}
	return ttl
}

// cacheKey derives the response cache key: the first 16 hex characters of
// sha256 over canonical JSON of the endpoint, tenant, and params sorted by
// key. Identical requests from the same tenant always map to the same key.
func cacheKey(endpoint, tenant string, params url.Values) string {
	type pair struct {
		Key   string `json:"key"`
		Value string `json:"value"`
	}

	sorted := make([]pair, 0, len(params))
	for key, values := range params {
		for _, value := range values {
			sorted = append(sorted, pair{Key: key, Value: value})
		}
	}
	sort.Slice(sorted, func(i, j int) bool {
		if sorted[i].Key == sorted[j].Key {
			return sorted[i].Value < sorted[j].Value
		}
		return sorted[i].Key < sorted[j].Key
	})

	payload, _ := json.Marshal(struct {
		Endpoint string `json:"endpoint"`
		Tenant   string `json:"tenant"`
		Params   []pair `json:"params"`
	}{Endpoint: endpoint, Tenant: tenant, Params: sorted})

	sum := sha256.Sum256(payload)
	return hex.EncodeToString(sum[:])[:16]
}

// writeInvalidations lists the cache patterns a successful write to
// endpoint makes stale. Time entry writes also feed reports.
func writeInvalidations(endpoint string) []string {
	segment := firstSegment(endpoint)
	if segment == "" {
		return nil
	}

	patterns := []string{segment}
	if segment == "/time_entries" {
		patterns = append(patterns, "/reports")
	}
	return patterns
}

func firstSegment(endpoint string) string {
	trimmed := strings.Trim(strings.TrimSpace(endpoint), "/")
	if trimmed == "" {
		return ""
	}
	if idx := strings.Index(trimmed, "/"); idx > 0 {
		trimmed = trimmed[:idx]
	}
	return "/" + trimmed
}
