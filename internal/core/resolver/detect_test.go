package resolver

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/worklane/worklane-cli/internal/core"
)

func TestIsNumericID(t *testing.T) {
	tests := []struct {
		value    string
		expected bool
	}{
		{"12345", true},
		{"0", true},
		{" 42 ", true},
		{"PRJ-12", false},
		{"12a", false},
		{"-5", false},
		{"4.2", false},
		{"", false},
		{"   ", false},
	}

	for _, tt := range tests {
		t.Run(tt.value, func(t *testing.T) {
			require.Equal(t, tt.expected, IsNumericID(tt.value), "IsNumericID(%q)", tt.value)
		})
	}
}

func TestDetectType(t *testing.T) {
	tests := []struct {
		query    string
		expected core.ResourceType
	}{
		{"a@b.co", core.ResourcePerson},
		{"john.doe@acme.com", core.ResourcePerson},
		{"PRJ-42", core.ResourceProject},
		{"P-42", core.ResourceProject},
		{"prj-1207", core.ResourceProject},
		{"p-7", core.ResourceProject},
		{"D-7", core.ResourceDeal},
		{"DEAL-12", core.ResourceDeal},
		{"deal-3", core.ResourceDeal},
		{"42", ""},
		{"Acme", ""},
		{"PRJ-", ""},
		{"P-abc", ""},
		{"@acme", ""},
		{"", ""},
	}

	for _, tt := range tests {
		t.Run(tt.query, func(t *testing.T) {
			require.Equal(t, tt.expected, DetectType(tt.query), "DetectType(%q)", tt.query)
		})
	}
}

func TestCanonicalNumber(t *testing.T) {
	require.Equal(t, "PRJ-42", canonicalNumber("P-42", "PRJ"))
	require.Equal(t, "PRJ-42", canonicalNumber("PRJ-42", "PRJ"))
	require.Equal(t, "D-7", canonicalNumber("DEAL-7", "D"))
	require.Equal(t, "D-7", canonicalNumber("D-7", "D"))
}
