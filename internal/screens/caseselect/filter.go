package caseselect

import (
	"sort"
	"strings"

	"github.com/lithammer/fuzzysearch/fuzzy"

	"github.com/tu613/vet-learning-app/internal/refdata"
)

// haystack is the text a case is matched against.
func haystack(c refdata.CaseScenario) string {
	parts := []string{c.Title()}
	for _, f := range []refdata.CaseField{refdata.FieldPetName, refdata.FieldSpecies, refdata.FieldLevel, refdata.FieldChiefComplaint} {
		if c.Has(f) {
			parts = append(parts, c.Field(f))
		}
	}
	return strings.Join(parts, " ")
}

// FilterCases returns the indexes of cases matching query, best match
// first. An empty query keeps every case in its original order.
func FilterCases(cases []refdata.CaseScenario, query string) []int {
	query = strings.TrimSpace(query)
	if query == "" {
		idx := make([]int, len(cases))
		for i := range cases {
			idx[i] = i
		}
		return idx
	}

	targets := make([]string, len(cases))
	for i, c := range cases {
		targets[i] = haystack(c)
	}

	ranks := fuzzy.RankFindFold(query, targets)
	sort.Stable(ranks)

	idx := make([]int, len(ranks))
	for i, r := range ranks {
		idx[i] = r.OriginalIndex
	}
	return idx
}
