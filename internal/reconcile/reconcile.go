// Package reconcile reports which search terms found nothing.
package reconcile

import (
	"strconv"
	"strings"

	"github.com/Ayash-Bera/student-lookup/internal/models"
)

// Identifiers returns the lower-cased identifying values of a record and its
// guardians. Empty strings and zero ids are skipped.
func Identifiers(s models.StudentRecord) []string {
	ids := make([]string, 0, 8+4*len(s.Guardians))
	add := func(f models.FlexString) {
		if v := strings.ToLower(strings.TrimSpace(string(f))); v != "" {
			ids = append(ids, v)
		}
	}
	addInt := func(n models.FlexInt) {
		if n != 0 {
			ids = append(ids, strconv.FormatInt(int64(n), 10))
		}
	}

	addInt(s.StudentID)
	add(s.NewEnrollment)
	add(models.FlexString(s.ApplicationNo.Value))
	add(s.OldEnrollment)

	addInt(s.GuardianID)
	add(s.GuardianGlobalNo)
	add(s.GuardianEmail)
	add(s.GuardianMobile)

	for _, g := range s.Guardians {
		addInt(g.GuardianID)
		add(g.GlobalNo)
		add(g.Email)
		add(g.Mobile)
	}
	return ids
}

// Unmatched returns the terms that do not literally equal, ignoring case, any
// identifier of the returned records. Input order and duplicates are kept.
// This does not check that a term found the record it was meant to find.
func Unmatched(terms []string, records []models.StudentRecord) []string {
	matched := make(map[string]struct{})
	for _, r := range records {
		for _, id := range Identifiers(r) {
			matched[id] = struct{}{}
		}
	}

	missing := []string{}
	for _, term := range terms {
		if _, ok := matched[strings.ToLower(term)]; !ok {
			missing = append(missing, term)
		}
	}
	return missing
}
