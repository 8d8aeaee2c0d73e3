package cli

import (
	"sort"

	"github.com/pfrederiksen/elex-datasource/internal/election"
)

// SortOrder represents the available sorting options
type SortOrder string

const (
	SortNone     SortOrder = "none"
	SortFilename SortOrder = "filename"
	SortName     SortOrder = "name"
	SortElection SortOrder = "election"
)

// Valid reports whether s is a known sort order
func (s SortOrder) Valid() bool {
	switch s {
	case SortNone, SortFilename, SortName, SortElection:
		return true
	}
	return false
}

// sortMappings sorts mappings in place. SortNone keeps the datasource order, which
// pairs counties with scraped links positionally.
func sortMappings(mappings []election.Mapping, order SortOrder) {
	switch order {
	case SortFilename:
		sort.SliceStable(mappings, func(i, j int) bool {
			return mappings[i].GeneratedFilename < mappings[j].GeneratedFilename
		})
	case SortName:
		sort.SliceStable(mappings, func(i, j int) bool {
			if mappings[i].Name != mappings[j].Name {
				return mappings[i].Name < mappings[j].Name
			}
			return mappings[i].GeneratedFilename < mappings[j].GeneratedFilename
		})
	case SortElection:
		sort.SliceStable(mappings, func(i, j int) bool {
			return mappings[i].Election < mappings[j].Election
		})
	}
}

// sortPairs sorts by filename for any order other than SortNone
func sortPairs(pairs []election.FilePair, order SortOrder) {
	if order == SortNone {
		return
	}
	sort.SliceStable(pairs, func(i, j int) bool {
		return pairs[i].Filename < pairs[j].Filename
	})
}

// sortURLs sorts lexically for any order other than SortNone
func sortURLs(urls []string, order SortOrder) {
	if order == SortNone {
		return
	}
	sort.Strings(urls)
}
