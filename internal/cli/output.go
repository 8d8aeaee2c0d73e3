package cli

import (
	"encoding/json"
	"fmt"
	"io"
	"time"

	"github.com/pfrederiksen/elex-datasource/internal/election"
)

// OutputFormat specifies the output format
type OutputFormat string

const (
	FormatText OutputFormat = "text"
	FormatJSON OutputFormat = "json"
)

// OutputResult contains data to be output. Exactly one of Mappings, Pairs and URLs
// is set, depending on the command.
type OutputResult struct {
	GeneratedAt time.Time           `json:"generated_at"`
	State       string              `json:"state"`
	Year        int                 `json:"year,omitempty"`
	Count       int                 `json:"count"`
	Mappings    []election.Mapping  `json:"mappings,omitempty"`
	Pairs       []election.FilePair `json:"pairs,omitempty"`
	URLs        []string            `json:"urls,omitempty"`
}

// NewOutputResult creates an empty result for a state and year
func NewOutputResult(state string, year int) *OutputResult {
	return &OutputResult{
		GeneratedAt: time.Now().UTC(),
		State:       state,
		Year:        year,
	}
}

// SetMappings stores mapping records and updates the count
func (r *OutputResult) SetMappings(mappings []election.Mapping) {
	r.Mappings = mappings
	r.Count = len(mappings)
}

// SetPairs stores filename/URL pairs and updates the count
func (r *OutputResult) SetPairs(pairs []election.FilePair) {
	r.Pairs = pairs
	r.Count = len(pairs)
}

// SetURLs stores URLs and updates the count
func (r *OutputResult) SetURLs(urls []string) {
	r.URLs = urls
	r.Count = len(urls)
}

// WriteOutput writes the result in the specified format
func WriteOutput(w io.Writer, result *OutputResult, format OutputFormat, verbose bool) error {
	switch format {
	case FormatJSON:
		return writeJSON(w, result)
	case FormatText:
		return writeText(w, result, verbose)
	default:
		return fmt.Errorf("unknown format: %s", format)
	}
}

// writeJSON outputs results as JSON
func writeJSON(w io.Writer, result *OutputResult) error {
	encoder := json.NewEncoder(w)
	encoder.SetIndent("", "  ")
	return encoder.Encode(result)
}

// writeText outputs one tab-separated line per item so the output can be piped
func writeText(w io.Writer, result *OutputResult, verbose bool) error {
	for _, m := range result.Mappings {
		fmt.Fprintf(w, "%s\t%s\n", m.GeneratedFilename, m.RawURL)
		if verbose {
			fmt.Fprintf(w, "     Election: %s\n", m.Election)
			fmt.Fprintf(w, "     Jurisdiction: %s (%s)\n", m.Name, m.OCDID)
			if m.PreProcessedURL != "" {
				fmt.Fprintf(w, "     Pre-processed: %s\n", m.PreProcessedURL)
			}
			if m.RawExtractedFilename != "" {
				fmt.Fprintf(w, "     Extract: %s\n", m.RawExtractedFilename)
			}
		}
	}

	for _, p := range result.Pairs {
		fmt.Fprintf(w, "%s\t%s\n", p.Filename, p.URL)
	}

	for _, u := range result.URLs {
		fmt.Fprintln(w, u)
	}

	if verbose {
		fmt.Fprintf(w, "\nTotal: %d\n", result.Count)
	}
	return nil
}
