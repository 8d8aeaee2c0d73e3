// Package datasource defines the contract every jurisdiction implements and the
// plumbing they share.
//
// A jurisdiction supplies a Builder that turns one year's elections into mapping
// records. Base wraps the builder with the public operations (Mappings, TargetURLs,
// FilenameURLPairs, UnprocessedFilenameURLPairs, MappingsForURL). Jurisdiction
// packages register a Factory under their state code from init, so importing a
// jurisdiction package is enough to make it available through New.
package datasource

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"strings"
	"sync"

	"github.com/pfrederiksen/elex-datasource/internal/config"
	"github.com/pfrederiksen/elex-datasource/internal/election"
	"github.com/pfrederiksen/elex-datasource/internal/logger"
)

var (
	// ErrUnknownState is returned by New for states without a registered datasource
	ErrUnknownState = errors.New("unknown state")
	// ErrMissingDirectLink is returned when an election lacks a direct link its era requires
	ErrMissingDirectLink = errors.New("missing direct link")
)

// ElectionSource looks up elections by state and year. year 0 means every year.
type ElectionSource interface {
	Elections(ctx context.Context, state string, year int) (map[int][]election.Election, error)
}

// ReferenceSource provides a state's static reference tables
type ReferenceSource interface {
	URLPaths(state string) ([]election.URLPath, error)
	Jurisdictions(state string) ([]election.Jurisdiction, error)
}

// LinkFinder returns the download links on a results index page
type LinkFinder interface {
	FindLinks(ctx context.Context, pageURL, linkText, base string) ([]string, error)
}

// Deps are the collaborators a datasource needs
type Deps struct {
	Elections ElectionSource
	Reference ReferenceSource
	Links     LinkFinder
	Mirror    Mirror
	State     config.StateConfig
}

// Datasource maps a jurisdiction's elections to standardized filenames and URLs
type Datasource interface {
	State() string
	Mappings(ctx context.Context, year int) ([]election.Mapping, error)
	TargetURLs(ctx context.Context, year int) ([]string, error)
	FilenameURLPairs(ctx context.Context, year int) ([]election.FilePair, error)
	UnprocessedFilenameURLPairs(ctx context.Context, year int) ([]election.FilePair, error)
	MappingsForURL(ctx context.Context, url string) ([]election.Mapping, error)
}

// Builder produces the mapping records for one year's elections
type Builder interface {
	BuildMetadata(ctx context.Context, year int, elections []election.Election) ([]election.Mapping, error)
}

// Factory creates a datasource from its dependencies
type Factory func(deps Deps) Datasource

var (
	registryMu sync.RWMutex
	registry   = make(map[string]Factory)
)

// Register makes a datasource available under a state code.
// It panics if the code is registered twice.
func Register(state string, factory Factory) {
	registryMu.Lock()
	defer registryMu.Unlock()

	code := strings.ToLower(state)
	if _, dup := registry[code]; dup {
		panic("datasource: Register called twice for state " + code)
	}
	registry[code] = factory
}

// New returns the datasource registered for state
func New(state string, deps Deps) (Datasource, error) {
	registryMu.RLock()
	factory, ok := registry[strings.ToLower(strings.TrimSpace(state))]
	registryMu.RUnlock()

	if !ok {
		return nil, fmt.Errorf("%w: %q", ErrUnknownState, state)
	}
	if deps.Mirror == (Mirror{}) {
		deps.Mirror = DefaultMirror
	}
	return factory(deps), nil
}

// States returns the registered state codes in sorted order
func States() []string {
	registryMu.RLock()
	defer registryMu.RUnlock()

	states := make([]string, 0, len(registry))
	for code := range registry {
		states = append(states, code)
	}
	sort.Strings(states)
	return states
}

// Base implements Datasource on top of a jurisdiction Builder
type Base struct {
	state   string
	deps    Deps
	builder Builder
}

// NewBase creates a Base for state. builder is called once per year.
func NewBase(state string, deps Deps, builder Builder) *Base {
	return &Base{
		state:   strings.ToLower(state),
		deps:    deps,
		builder: builder,
	}
}

// State returns the lowercase state code
func (b *Base) State() string {
	return b.state
}

// Deps returns the datasource's collaborators
func (b *Base) Deps() Deps {
	return b.deps
}

// Mappings returns the metadata records for year, or for every year when year is 0.
// Years are processed in ascending order.
func (b *Base) Mappings(ctx context.Context, year int) ([]election.Mapping, error) {
	byYear, err := b.deps.Elections.Elections(ctx, b.state, year)
	if err != nil {
		return nil, fmt.Errorf("looking up %s elections: %w", b.state, err)
	}

	years := make([]int, 0, len(byYear))
	for y := range byYear {
		years = append(years, y)
	}
	sort.Ints(years)

	mappings := make([]election.Mapping, 0)
	for _, y := range years {
		meta, err := b.builder.BuildMetadata(ctx, y, byYear[y])
		if err != nil {
			return nil, fmt.Errorf("building %s %d metadata: %w", b.state, y, err)
		}
		mappings = append(mappings, meta...)
	}

	logger.AddCounter("mappings.generated", int64(len(mappings)))
	logger.Debug("Built mappings", logger.Fields{
		"state":    b.state,
		"year":     year,
		"years":    len(years),
		"mappings": len(mappings),
	})
	return mappings, nil
}

// TargetURLs returns the raw URL of every mapping
func (b *Base) TargetURLs(ctx context.Context, year int) ([]string, error) {
	mappings, err := b.Mappings(ctx, year)
	if err != nil {
		return nil, err
	}

	urls := make([]string, 0, len(mappings))
	for _, m := range mappings {
		urls = append(urls, m.RawURL)
	}
	return urls, nil
}

// FilenameURLPairs pairs each generated filename with the URL to fetch it from,
// preferring the pre-processed mirror when there is one
func (b *Base) FilenameURLPairs(ctx context.Context, year int) ([]election.FilePair, error) {
	mappings, err := b.Mappings(ctx, year)
	if err != nil {
		return nil, err
	}

	pairs := make([]election.FilePair, 0, len(mappings))
	for _, m := range mappings {
		pairs = append(pairs, election.FilePair{Filename: m.GeneratedFilename, URL: m.FetchURL()})
	}
	return pairs, nil
}

// UnprocessedFilenameURLPairs lists the original files behind pre-processed mirrors,
// named with a .pdf extension and paired with their raw URL
func (b *Base) UnprocessedFilenameURLPairs(ctx context.Context, year int) ([]election.FilePair, error) {
	mappings, err := b.Mappings(ctx, year)
	if err != nil {
		return nil, err
	}

	pairs := make([]election.FilePair, 0)
	for _, m := range mappings {
		if !m.HasPreProcessed() {
			continue
		}
		pairs = append(pairs, election.FilePair{
			Filename: election.ReplaceFormat(m.GeneratedFilename, election.FormatCSV, election.FormatPDF),
			URL:      m.RawURL,
		})
	}
	return pairs, nil
}

// MappingsForURL returns every mapping, across all years, whose raw URL equals url
func (b *Base) MappingsForURL(ctx context.Context, url string) ([]election.Mapping, error) {
	mappings, err := b.Mappings(ctx, 0)
	if err != nil {
		return nil, err
	}

	matched := make([]election.Mapping, 0)
	for _, m := range mappings {
		if m.RawURL == url {
			matched = append(matched, m)
		}
	}
	return matched, nil
}

// URLPaths returns the url_paths rows dated on the election's start date
func (b *Base) URLPaths(e election.Election) ([]election.URLPath, error) {
	all, err := b.deps.Reference.URLPaths(b.state)
	if err != nil {
		return nil, fmt.Errorf("loading url paths: %w", err)
	}
	return election.FilterURLPaths(all, e.StartDate), nil
}

// Counties returns the state's counties in reference-table order
func (b *Base) Counties() ([]election.Jurisdiction, error) {
	all, err := b.deps.Reference.Jurisdictions(b.state)
	if err != nil {
		return nil, fmt.Errorf("loading jurisdictions: %w", err)
	}
	return election.Counties(all), nil
}

// DirectLink returns the i-th direct link of e or an ErrMissingDirectLink error
func DirectLink(e election.Election, i int) (string, error) {
	link, ok := e.DirectLink(i)
	if !ok {
		return "", fmt.Errorf("%w: election %s has %d direct links, need index %d",
			ErrMissingDirectLink, e.Slug, len(e.DirectLinks), i)
	}
	return link, nil
}
