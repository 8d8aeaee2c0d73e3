package election

import (
	"sort"
)

// Change types reported by DetectChanges
const (
	ChangeNew          = "new"
	ChangeRawURL       = "raw_url"
	ChangePreProcessed = "pre_processed_url"
	ChangeOCDID        = "ocd_id"
)

// MappingChange represents a difference detected in a mapping between two runs
type MappingChange struct {
	Filename   string `json:"filename"`
	ChangeType string `json:"change_type"`
	OldValue   string `json:"old_value"`
	NewValue   string `json:"new_value"`
}

// DiffResult contains the results of comparing a run against a previous one
type DiffResult struct {
	New     []Mapping
	Changes []*MappingChange
}

// diffKey identifies a mapping across runs. Zip-backed records share a generated
// filename and differ only in the extracted file.
type diffKey struct {
	filename  string
	extracted string
}

func keyOf(m Mapping) diffKey {
	return diffKey{filename: m.GeneratedFilename, extracted: m.RawExtractedFilename}
}

// Diff compares current mappings against previous ones, keyed by generated filename
// and extracted filename. A nil previous treats every current mapping as new.
func Diff(previous, current []Mapping) *DiffResult {
	result := &DiffResult{
		New:     make([]Mapping, 0),
		Changes: make([]*MappingChange, 0),
	}

	index := make(map[diffKey]Mapping, len(previous))
	for _, m := range previous {
		index[keyOf(m)] = m
	}

	for _, m := range current {
		prev, exists := index[keyOf(m)]
		if !exists {
			result.New = append(result.New, m)
			continue
		}
		result.Changes = append(result.Changes, DetectChanges(&prev, m)...)
	}

	sort.SliceStable(result.Changes, func(i, j int) bool {
		return result.Changes[i].Filename < result.Changes[j].Filename
	})

	return result
}

// DetectChanges compares two versions of the same mapping
func DetectChanges(previous *Mapping, current Mapping) []*MappingChange {
	if previous == nil {
		return []*MappingChange{{
			Filename:   current.GeneratedFilename,
			ChangeType: ChangeNew,
			NewValue:   current.RawURL,
		}}
	}

	var changes []*MappingChange
	fields := []struct {
		kind     string
		old, new string
	}{
		{ChangeRawURL, previous.RawURL, current.RawURL},
		{ChangePreProcessed, previous.PreProcessedURL, current.PreProcessedURL},
		{ChangeOCDID, previous.OCDID, current.OCDID},
	}
	for _, f := range fields {
		if f.old != f.new {
			changes = append(changes, &MappingChange{
				Filename:   current.GeneratedFilename,
				ChangeType: f.kind,
				OldValue:   f.old,
				NewValue:   f.new,
			})
		}
	}
	return changes
}
