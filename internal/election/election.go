package election

import (
	"strings"
	"time"
)

// Election is a single election as described by the metadata source
type Election struct {
	Slug        string   `json:"slug"`
	StartDate   string   `json:"start_date"` // YYYY-MM-DD
	RaceType    string   `json:"race_type"`
	Special     bool     `json:"special"`
	DirectLinks []string `json:"direct_links"`
}

// Year returns the year of the election start date, or 0 unless the date is in
// DateLayout. Start dates are compared literally against url_paths dates and end up
// in filenames, so other layouts are rejected.
func (e Election) Year() int {
	t, err := time.Parse(DateLayout, e.StartDate)
	if err != nil {
		return 0
	}
	return t.Year()
}

// DateStamp returns the start date with dashes removed, e.g. "20120508"
func (e Election) DateStamp() string {
	return strings.ReplaceAll(e.StartDate, "-", "")
}

// DirectLink returns the i-th direct link of the election, if present
func (e Election) DirectLink(i int) (string, bool) {
	if i < 0 || i >= len(e.DirectLinks) {
		return "", false
	}
	return e.DirectLinks[i], true
}

// URLPath is one row of a state's url_paths reference table. Path is relative to the
// state's results archive; URL is set when the row carries an absolute location.
type URLPath struct {
	Date                 string `json:"date"`
	Path                 string `json:"path,omitempty"`
	URL                  string `json:"url,omitempty"`
	Office               string `json:"office"`
	Party                string `json:"party,omitempty"`
	District             string `json:"district,omitempty"`
	RawExtractedFilename string `json:"raw_extracted_filename,omitempty"`
	Special              bool   `json:"special"`
}

// FilterURLPaths returns the entries whose date matches the given start date, in order
func FilterURLPaths(paths []URLPath, date string) []URLPath {
	matched := make([]URLPath, 0)
	for _, p := range paths {
		if p.Date == date {
			matched = append(matched, p)
		}
	}
	return matched
}

// Jurisdiction maps a county name to its OCD ID. Statewide rows have an empty county.
type Jurisdiction struct {
	County string `json:"county"`
	OCDID  string `json:"ocd_id"`
}

// Counties drops statewide rows, keeping the order of the reference table
func Counties(all []Jurisdiction) []Jurisdiction {
	counties := make([]Jurisdiction, 0, len(all))
	for _, j := range all {
		if j.County != "" {
			counties = append(counties, j)
		}
	}
	return counties
}

// Mapping is the metadata record for one raw results file
type Mapping struct {
	GeneratedFilename    string `json:"generated_filename"`
	RawURL               string `json:"raw_url"`
	PreProcessedURL      string `json:"pre_processed_url,omitempty"`
	RawExtractedFilename string `json:"raw_extracted_filename,omitempty"`
	OCDID                string `json:"ocd_id"`
	Name                 string `json:"name"`
	Election             string `json:"election"`
}

// HasPreProcessed reports whether a mirror exists for the raw file
func (m Mapping) HasPreProcessed() bool {
	return m.PreProcessedURL != ""
}

// FetchURL returns the mirror URL when present, otherwise the raw URL
func (m Mapping) FetchURL() string {
	if m.HasPreProcessed() {
		return m.PreProcessedURL
	}
	return m.RawURL
}

// FilePair couples a local filename with the URL it is downloaded from
type FilePair struct {
	Filename string `json:"filename"`
	URL      string `json:"url"`
}
