package model

import "time"

// MatchType is the closed set of keyword matching strategies for
// classification rules.
type MatchType string

const (
	// MatchContains matches when the keyword appears anywhere in the description.
	MatchContains MatchType = "CONTAINS"
	// MatchExact matches only the full description.
	MatchExact MatchType = "EXACT"
	// MatchStartsWith matches when the description begins with the keyword.
	MatchStartsWith MatchType = "STARTS_WITH"
)

// ValidMatchType reports whether s names a known match type.
func ValidMatchType(s string) bool {
	switch MatchType(s) {
	case MatchContains, MatchExact, MatchStartsWith:
		return true
	}
	return false
}

// CategoryRule maps a keyword found in transaction descriptions to a
// category. Rules are evaluated in priority order (higher first, newest
// first on ties) and the first match wins.
type CategoryRule struct {
	CreatedAt    time.Time
	Keyword      string
	MatchType    MatchType
	CategoryName string
	ID           int64
	Priority     int
	CategoryID   int64
}
