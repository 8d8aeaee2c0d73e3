// Package filter narrows mapping output for elex-datasource.
//
// Filters combine optional criteria; a mapping must match all active criteria:
//   - Date range (from/to, compared with the date prefix of the generated filename)
//   - Jurisdiction names (substring matching, case-insensitive)
//   - Election slugs (substring matching, case-insensitive)
//   - Pre-processed only (mappings backed by a CSV mirror)
//
// Example usage:
//
//	f := filter.NewFilter()
//	f.Names = []string{"kanawha"}
//	from, to, _ := filter.ParseDateRange("2012-2016")
//	f.DateFrom, f.DateTo = from, to
//
//	filtered := f.Apply(mappings)
package filter

import (
	"fmt"
	"strings"
	"time"

	"github.com/pfrederiksen/elex-datasource/internal/election"
)

// Filter represents mapping filtering criteria
type Filter struct {
	// Date range filtering
	DateFrom *time.Time `json:"date_from,omitempty"`
	DateTo   *time.Time `json:"date_to,omitempty"`

	// Jurisdiction name filtering (case-insensitive substring match)
	Names []string `json:"names,omitempty"`

	// Election slug filtering (case-insensitive substring match)
	Elections []string `json:"elections,omitempty"`

	PreProcessedOnly bool `json:"pre_processed_only,omitempty"`
}

// NewFilter creates a new empty filter with no active criteria.
// The filter will match all mappings until criteria are added.
func NewFilter() *Filter {
	return &Filter{
		Names:     []string{},
		Elections: []string{},
	}
}

// IsEmpty checks if the filter has any active criteria
func (f *Filter) IsEmpty() bool {
	return f.DateFrom == nil &&
		f.DateTo == nil &&
		len(f.Names) == 0 &&
		len(f.Elections) == 0 &&
		!f.PreProcessedOnly
}

// Matches checks if a mapping matches all active filter criteria.
// Mappings whose filename has no parseable date pass the date checks.
func (f *Filter) Matches(m election.Mapping) bool {
	if f.IsEmpty() {
		return true
	}

	if f.PreProcessedOnly && !m.HasPreProcessed() {
		return false
	}

	if f.DateFrom != nil || f.DateTo != nil {
		date := mappingDate(m)
		if !date.IsZero() {
			if f.DateFrom != nil && date.Before(*f.DateFrom) {
				return false
			}
			if f.DateTo != nil && date.After(*f.DateTo) {
				return false
			}
		}
	}

	if !containsAny(m.Name, f.Names) {
		return false
	}

	if !containsAny(m.Election, f.Elections) {
		return false
	}

	return true
}

// containsAny reports whether value contains one of needles, ignoring case.
// An empty needle list matches everything.
func containsAny(value string, needles []string) bool {
	if len(needles) == 0 {
		return true
	}
	lower := strings.ToLower(value)
	for _, n := range needles {
		if strings.Contains(lower, strings.ToLower(n)) {
			return true
		}
	}
	return false
}

// Apply returns the mappings that match. An empty filter returns the input unchanged.
func (f *Filter) Apply(mappings []election.Mapping) []election.Mapping {
	if f.IsEmpty() {
		return mappings
	}

	filtered := make([]election.Mapping, 0, len(mappings))
	for _, m := range mappings {
		if f.Matches(m) {
			filtered = append(filtered, m)
		}
	}
	return filtered
}

// String returns a human-readable description of the active filter criteria.
// Format: "From: 2012-01-01 | To: 2016-12-31 | Names: kanawha | Pre-processed only"
func (f *Filter) String() string {
	if f.IsEmpty() {
		return "No active filters"
	}

	var parts []string

	if f.DateFrom != nil {
		parts = append(parts, fmt.Sprintf("From: %s", f.DateFrom.Format(election.DateLayout)))
	}

	if f.DateTo != nil {
		parts = append(parts, fmt.Sprintf("To: %s", f.DateTo.Format(election.DateLayout)))
	}

	if len(f.Names) > 0 {
		parts = append(parts, fmt.Sprintf("Names: %s", strings.Join(f.Names, ", ")))
	}

	if len(f.Elections) > 0 {
		parts = append(parts, fmt.Sprintf("Elections: %s", strings.Join(f.Elections, ", ")))
	}

	if f.PreProcessedOnly {
		parts = append(parts, "Pre-processed only")
	}

	return strings.Join(parts, " | ")
}

// mappingDate reads the YYYYMMDD prefix of the generated filename
func mappingDate(m election.Mapping) time.Time {
	stamp, _, _ := strings.Cut(m.GeneratedFilename, election.Separator)
	return election.ParseDate(stamp)
}
