// Package rules implements keyword-based transaction classification.
package rules

import (
	"strings"

	"github.com/centavo-dev/centavo/internal/model"
)

// Classifier resolves a category name for a transaction description by
// scanning an ordered rule list. It never fails: descriptions with no
// matching rule land in the review category.
type Classifier struct{}

// NewClassifier creates a new rule classifier.
func NewClassifier() *Classifier {
	return &Classifier{}
}

// Classify returns the category name of the first rule matching the
// description. The caller supplies rules already ordered by priority
// DESC, created_at DESC; the classifier does not re-sort them.
func (c *Classifier) Classify(description string, ruleList []model.CategoryRule) string {
	upperDesc := strings.ToUpper(description)

	for _, rule := range ruleList {
		if matches(upperDesc, rule) {
			return rule.CategoryName
		}
	}

	return model.FallbackCategory
}

// matches tests a single rule keyword against an uppercased description.
func matches(upperDesc string, rule model.CategoryRule) bool {
	keyword := strings.ToUpper(rule.Keyword)
	if keyword == "" {
		return false
	}

	switch rule.MatchType {
	case model.MatchContains:
		return strings.Contains(upperDesc, keyword)
	case model.MatchExact:
		return upperDesc == keyword
	case model.MatchStartsWith:
		return strings.HasPrefix(upperDesc, keyword)
	default:
		return false
	}
}
