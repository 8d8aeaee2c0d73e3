package cli

import (
	"testing"

	"github.com/pfrederiksen/elex-datasource/internal/election"
)

func filenames(mappings []election.Mapping) []string {
	names := make([]string, len(mappings))
	for i, m := range mappings {
		names[i] = m.GeneratedFilename
	}
	return names
}

func TestSortMappings(t *testing.T) {
	tests := []struct {
		order SortOrder
		want  []string
	}{
		{SortNone, []string{"20121106__wv__general__wirt.csv", "20120508__wv__primary__barbour.csv", "20040511__wv__primary__governor.csv"}},
		{SortFilename, []string{"20040511__wv__primary__governor.csv", "20120508__wv__primary__barbour.csv", "20121106__wv__general__wirt.csv"}},
		{SortName, []string{"20120508__wv__primary__barbour.csv", "20040511__wv__primary__governor.csv", "20121106__wv__general__wirt.csv"}},
		{SortElection, []string{"20040511__wv__primary__governor.csv", "20120508__wv__primary__barbour.csv", "20121106__wv__general__wirt.csv"}},
	}

	for _, tt := range tests {
		t.Run(string(tt.order), func(t *testing.T) {
			mappings := testMappings()
			sortMappings(mappings, tt.order)
			got := filenames(mappings)
			for i := range tt.want {
				if got[i] != tt.want[i] {
					t.Errorf("sortMappings(%s)[%d] = %q, want %q", tt.order, i, got[i], tt.want[i])
				}
			}
		})
	}
}

func TestSortPairs(t *testing.T) {
	pairs := []election.FilePair{{Filename: "b.csv"}, {Filename: "a.csv"}}

	sortPairs(pairs, SortNone)
	if pairs[0].Filename != "b.csv" {
		t.Error("SortNone should keep order")
	}

	sortPairs(pairs, SortName)
	if pairs[0].Filename != "a.csv" {
		t.Error("pairs should sort by filename")
	}
}

func TestSortURLs(t *testing.T) {
	urls := []string{"http://b", "http://a"}
	sortURLs(urls, SortNone)
	if urls[0] != "http://b" {
		t.Error("SortNone should keep order")
	}
	sortURLs(urls, SortFilename)
	if urls[0] != "http://a" {
		t.Error("urls should sort lexically")
	}
}

func TestSortOrderValid(t *testing.T) {
	for _, s := range []SortOrder{SortNone, SortFilename, SortName, SortElection} {
		if !s.Valid() {
			t.Errorf("%q should be valid", s)
		}
	}
	if SortOrder("size").Valid() {
		t.Error(`"size" should be invalid`)
	}
}
