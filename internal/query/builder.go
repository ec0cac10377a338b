// Package query turns a classification into a single store filter.
package query

import (
	"crypto/md5"
	"encoding/hex"
	"fmt"
	"strconv"
	"strings"

	"github.com/Ayash-Bera/student-lookup/internal/models"
	"go.mongodb.org/mongo-driver/bson"
)

type valueKind int

const (
	kindString valueKind = iota
	kindInt
	kindNestedString
)

type fieldRule struct {
	category models.Category
	field    string
	kind     valueKind
}

// Precedence is the order in which categories are considered. Only the
// first category present in a classification produces the filter.
var Precedence = []fieldRule{
	{models.CategoryEnrollment, "Student New ENR", kindString},
	{models.CategoryApplicationNo, "EduLearn Application No", kindNestedString},
	{models.CategoryOldEnrollment, "Student EduLearn ENR", kindString},
	{models.CategoryEmail, "Guardians Email", kindString},
	{models.CategoryPhone, "Guardians Mobile", kindInt},
	{models.CategoryStudentID, "Student ID", kindInt},
	{models.CategoryGuardianGlobalNo, "Guardians.Global No", kindString},
	{models.CategoryGuardianID, "Guardians.Guardian ID", kindInt},
	{models.CategoryName, "Student First Name", kindString},
}

// Filter is an equality match on one field against one or more values.
type Filter struct {
	Category models.Category
	Field    string
	Values   []interface{}
	// Ignored lists the categories that were present but lost on precedence.
	Ignored []models.Category
}

// Build selects the highest-precedence category in c and converts its terms
// into filter values.
func Build(c models.Classification) (*Filter, error) {
	for i, rule := range Precedence {
		terms := c[rule.category]
		if len(terms) == 0 {
			continue
		}

		values := make([]interface{}, 0, len(terms))
		for _, term := range terms {
			v, err := convert(rule, term)
			if err != nil {
				return nil, err
			}
			values = append(values, v)
		}

		filter := &Filter{Category: rule.category, Field: rule.field, Values: values}
		for _, rest := range Precedence[i+1:] {
			if len(c[rest.category]) > 0 {
				filter.Ignored = append(filter.Ignored, rest.category)
			}
		}
		return filter, nil
	}
	return nil, fmt.Errorf("%w: no searchable category in request", models.ErrInvalidInput)
}

func convert(rule fieldRule, term string) (interface{}, error) {
	term = strings.TrimSpace(term)
	switch rule.kind {
	case kindInt:
		n, err := strconv.ParseInt(strings.TrimPrefix(term, "+"), 10, 64)
		if err != nil {
			return nil, fmt.Errorf("%w: %s value %q is not a number", models.ErrInvalidInput, rule.category, term)
		}
		return n, nil
	case kindNestedString:
		return bson.D{{Key: "", Value: term}}, nil
	default:
		return term, nil
	}
}

// Document renders the filter for the driver. A single value is a plain
// equality, several values become $in.
func (f *Filter) Document() bson.D {
	if len(f.Values) == 1 {
		return bson.D{{Key: f.Field, Value: f.Values[0]}}
	}
	return bson.D{{Key: f.Field, Value: bson.D{{Key: "$in", Value: f.Values}}}}
}

// CacheKey identifies the filter for result caching.
func (f *Filter) CacheKey() string {
	// Each part is length-prefixed so no term can spell out a separator.
	var b strings.Builder
	fmt.Fprintf(&b, "%d:%s", len(f.Field), f.Field)
	for _, v := range f.Values {
		text := fmt.Sprintf("%T=%v", v, v)
		fmt.Fprintf(&b, "|%d:%s", len(text), text)
	}
	hash := md5.Sum([]byte(b.String()))
	return hex.EncodeToString(hash[:])
}
