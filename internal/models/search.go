package models

import (
	"bytes"
	"encoding/json"
	"fmt"
)

// Category is a classification bucket for search terms.
type Category string

const (
	CategoryCustom           Category = "custom"
	CategoryEmail            Category = "email"
	CategoryPhone            Category = "phone"
	CategoryOldEnrollment    Category = "enrno"
	CategoryApplicationNo    Category = "appno"
	CategoryEnrollment       Category = "enNumber"
	CategoryName             Category = "name"
	CategoryStudentID        Category = "studentId"
	CategoryGuardianGlobalNo Category = "guardianGlobalNo"
	CategoryGuardianID       Category = "guardianID"
)

// ExplicitCategories can be chosen directly instead of pattern matching.
var ExplicitCategories = []Category{
	CategoryStudentID,
	CategoryGuardianGlobalNo,
	CategoryGuardianID,
}

// Valid reports whether c is a known category other than custom.
func (c Category) Valid() bool {
	switch c {
	case CategoryEmail, CategoryPhone, CategoryOldEnrollment, CategoryApplicationNo,
		CategoryEnrollment, CategoryName, CategoryStudentID, CategoryGuardianGlobalNo,
		CategoryGuardianID:
		return true
	}
	return false
}

// Classification groups raw search terms by category.
type Classification map[Category][]string

// Terms is a list of search terms that also accepts a bare JSON string.
type Terms []string

func (t *Terms) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if bytes.Equal(data, []byte("null")) {
		*t = nil
		return nil
	}
	if len(data) > 0 && data[0] == '"' {
		var s string
		if err := json.Unmarshal(data, &s); err != nil {
			return err
		}
		*t = Terms{s}
		return nil
	}
	var list []string
	if err := json.Unmarshal(data, &list); err != nil {
		return fmt.Errorf("terms must be a string or a list of strings: %w", err)
	}
	*t = list
	return nil
}

// LookupRequest is the body of POST /byENR.
type LookupRequest struct {
	Result map[string]Terms `json:"result" binding:"required"`
}

// Classification converts the wire mapping, dropping empty categories.
func (r LookupRequest) Classification() Classification {
	out := make(Classification, len(r.Result))
	for key, terms := range r.Result {
		if len(terms) == 0 {
			continue
		}
		out[Category(key)] = []string(terms)
	}
	return out
}

// SearchRequest is the body of POST /search.
type SearchRequest struct {
	Query string `json:"query" binding:"required"`
	Type  string `json:"type"`
}

type SearchResponse struct {
	Students     []StudentRecord `json:"students"`
	MissingItems []string        `json:"missing_items"`
	Category     Category        `json:"category"`
	Total        int             `json:"total"`
}
