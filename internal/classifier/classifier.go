// Package classifier sorts free-text search terms into lookup categories.
package classifier

import (
	"fmt"
	"regexp"
	"strings"

	"github.com/Ayash-Bera/student-lookup/internal/models"
)

type pattern struct {
	category models.Category
	re       *regexp.Regexp
}

// Order matters: a term goes to the first pattern it matches.
var patterns = []pattern{
	{models.CategoryEmail, regexp.MustCompile(`(?i)^[a-z0-9._%+-]+@[a-z0-9.-]+\.[a-z]{2,}$`)},
	{models.CategoryPhone, regexp.MustCompile(`^\+?[0-9]{10,15}$`)},
	{models.CategoryOldEnrollment, regexp.MustCompile(`(?i)^[a-z0-9]+-ENRNO\d+$`)},
	{models.CategoryApplicationNo, regexp.MustCompile(`(?i)^[a-z0-9]+-APPNO\d+$`)},
	{models.CategoryEnrollment, regexp.MustCompile(`(?i)^EN\d+$`)},
	{models.CategoryName, regexp.MustCompile(`(?i)^[a-z\s]+$`)},
}

// Result is a classified search.
type Result struct {
	// Terms holds every non-empty input term in input order, classified or not.
	Terms          []string
	Classification models.Classification
}

// Split breaks a comma-separated input into trimmed, non-empty terms.
func Split(raw string) []string {
	var terms []string
	for _, part := range strings.Split(raw, ",") {
		if term := strings.TrimSpace(part); term != "" {
			terms = append(terms, term)
		}
	}
	return terms
}

// Classify parses raw and assigns its terms to categories. An empty or
// "custom" category uses pattern matching; any other known category takes
// every term as-is.
func Classify(raw string, category models.Category) (*Result, error) {
	terms := Split(raw)
	if len(terms) == 0 {
		return nil, fmt.Errorf("%w: please enter a valid input", models.ErrInvalidInput)
	}

	if category != "" && category != models.CategoryCustom {
		if !category.Valid() {
			return nil, fmt.Errorf("%w: unknown search type %q", models.ErrInvalidInput, category)
		}
		return &Result{
			Terms:          terms,
			Classification: models.Classification{category: terms},
		}, nil
	}

	classification := make(models.Classification)
	for _, term := range terms {
		if c, ok := Match(term); ok {
			classification[c] = append(classification[c], term)
		}
	}
	if len(classification) == 0 {
		return nil, fmt.Errorf("%w: no term matched a known format", models.ErrInvalidInput)
	}

	return &Result{Terms: terms, Classification: classification}, nil
}

// Match returns the category of the first pattern term satisfies.
func Match(term string) (models.Category, bool) {
	for _, p := range patterns {
		if p.re.MatchString(term) {
			return p.category, true
		}
	}
	return "", false
}
