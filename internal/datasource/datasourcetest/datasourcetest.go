// Package datasourcetest provides in-memory collaborators for datasource tests.
package datasourcetest

import (
	"context"
	"fmt"
	"strings"
	"sync"

	"github.com/pfrederiksen/elex-datasource/internal/election"
)

// Elections serves a fixed list of elections, grouped by year on demand
type Elections []election.Election

// Elections implements datasource.ElectionSource
func (e Elections) Elections(ctx context.Context, state string, year int) (map[int][]election.Election, error) {
	byYear := election.GroupByYear(e)
	if year == 0 {
		return byYear, nil
	}
	return map[int][]election.Election{year: byYear[year]}, nil
}

// Reference serves fixed url_paths and jurisdiction tables
type Reference struct {
	Paths []election.URLPath
	Table []election.Jurisdiction
}

// URLPaths implements datasource.ReferenceSource
func (r Reference) URLPaths(state string) ([]election.URLPath, error) {
	return r.Paths, nil
}

// Jurisdictions implements datasource.ReferenceSource
func (r Reference) Jurisdictions(state string) ([]election.Jurisdiction, error) {
	return r.Table, nil
}

// Call records one FindLinks invocation
type Call struct {
	PageURL  string
	LinkText string
	Base     string
}

// Links returns canned link lists keyed by page URL and records every call.
// Unknown pages are an error.
type Links struct {
	mu    sync.Mutex
	Pages map[string][]string
	Calls []Call
}

// FindLinks implements datasource.LinkFinder
func (l *Links) FindLinks(ctx context.Context, pageURL, linkText, base string) ([]string, error) {
	l.mu.Lock()
	defer l.mu.Unlock()

	l.Calls = append(l.Calls, Call{PageURL: pageURL, LinkText: linkText, Base: base})
	links, ok := l.Pages[pageURL]
	if !ok {
		return nil, fmt.Errorf("unexpected page %s", pageURL)
	}
	return links, nil
}

// Counties builds a jurisdiction table with a statewide row followed by the named
// counties, using OCD IDs of the form ocd-division/country:us/state:<st>/county:<name>
func Counties(state string, names ...string) []election.Jurisdiction {
	base := "ocd-division/country:us/state:" + state
	out := []election.Jurisdiction{{OCDID: base}}
	for _, name := range names {
		out = append(out, election.Jurisdiction{County: name, OCDID: base + "/county:" + slug(name)})
	}
	return out
}

func slug(name string) string {
	return strings.ReplaceAll(strings.ToLower(name), " ", "_")
}
