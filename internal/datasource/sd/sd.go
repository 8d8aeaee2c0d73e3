// Package sd standardizes South Dakota Secretary of State results files.
//
// The state publishes PDFs of precinct-level results for statewide candidates
// (including U.S. House) and legislative candidates. CSV versions of the pre-2008
// files are kept in the openelections-data-sd repository; from 2008 the results
// page for each election links a CSV per county.
package sd

import (
	"context"
	"fmt"
	"strings"

	"github.com/pfrederiksen/elex-datasource/internal/datasource"
	"github.com/pfrederiksen/elex-datasource/internal/election"
	"github.com/pfrederiksen/elex-datasource/internal/logger"
	"github.com/pfrederiksen/elex-datasource/internal/scraper"
)

const (
	State = "sd"
	Name  = "South Dakota"
	OCDID = "ocd-division/country:us/state:sd"

	// ArchiveBaseURL holds the historical PDFs, one directory per year
	ArchiveBaseURL = "https://sdsos.gov/elections-voting/assets/ElectionReturns/"
)

const firstCountyCSVYear = 2008

func init() {
	datasource.Register(State, New)
}

// Datasource maps South Dakota elections to results files
type Datasource struct {
	*datasource.Base
	archiveBaseURL string
	resultsBaseURL string
}

// New creates the South Dakota datasource. Scraped hrefs are resolved against the
// results page unless a results base URL is configured.
func New(deps datasource.Deps) datasource.Datasource {
	ds := &Datasource{
		archiveBaseURL: ArchiveBaseURL,
		resultsBaseURL: deps.State.ResultsBaseURL,
	}
	if deps.State.ArchiveBaseURL != "" {
		ds.archiveBaseURL = deps.State.ArchiveBaseURL
	}
	ds.Base = datasource.NewBase(State, deps, ds)
	return ds
}

// BuildMetadata implements datasource.Builder
func (d *Datasource) BuildMetadata(ctx context.Context, year int, elections []election.Election) ([]election.Mapping, error) {
	meta := make([]election.Mapping, 0)
	for _, e := range elections {
		var (
			records []election.Mapping
			err     error
		)
		if year < firstCountyCSVYear {
			records, err = d.officeMappings(year, e)
		} else {
			records, err = d.countyMappings(ctx, e)
		}
		if err != nil {
			return nil, err
		}
		meta = append(meta, records...)
	}
	return meta, nil
}

func (d *Datasource) officeMappings(year int, e election.Election) ([]election.Mapping, error) {
	results, err := d.URLPaths(e)
	if err != nil {
		return nil, err
	}

	mirror := d.Deps().Mirror
	meta := make([]election.Mapping, 0, len(results))
	for _, result := range results {
		filename := OfficeFilename(e, result)
		rawURL := result.URL
		if rawURL == "" {
			rawURL = fmt.Sprintf("%s%d/%s", d.archiveBaseURL, year, result.Path)
		}
		meta = append(meta, election.Mapping{
			GeneratedFilename: filename,
			RawURL:            rawURL,
			PreProcessedURL:   mirror.GithubURL(State, filename),
			OCDID:             OCDID,
			Name:              Name,
			Election:          e.Slug,
		})
	}
	return meta, nil
}

// countyMappings pairs the county list with the results page links after the first.
// Unlike West Virginia no statewide record is emitted.
func (d *Datasource) countyMappings(ctx context.Context, e election.Election) ([]election.Mapping, error) {
	pageURL, err := datasource.DirectLink(e, 0)
	if err != nil {
		return nil, err
	}

	links, err := d.Deps().Links.FindLinks(ctx, pageURL, scraper.CSVLinkText, d.resultsBaseURL)
	if err != nil {
		return nil, fmt.Errorf("finding csv links for %s: %w", e.Slug, err)
	}
	counties, err := d.Counties()
	if err != nil {
		return nil, err
	}

	var countyLinks []string
	if len(links) > 0 {
		countyLinks = links[1:]
	}
	if len(countyLinks) != len(counties) {
		logger.Warn("County link count differs from county list", logger.Fields{
			"election": e.Slug,
			"links":    len(countyLinks),
			"counties": len(counties),
		})
	}

	n := min(len(counties), len(countyLinks))
	meta := make([]election.Mapping, 0, n)
	for i := 0; i < n; i++ {
		meta = append(meta, election.Mapping{
			GeneratedFilename: CountyFilename(e, counties[i].County),
			RawURL:            countyLinks[i],
			OCDID:             counties[i].OCDID,
			Name:              counties[i].County,
			Election:          e.Slug,
		})
	}
	return meta, nil
}

// CountyFilename names a county file, e.g. 20140603__sd__primary__minnehaha.csv
func CountyFilename(e election.Election, county string) string {
	return election.JoinFilename(election.FormatCSV,
		e.DateStamp(),
		State,
		e.RaceType,
		strings.ToLower(county),
	)
}

// OfficeFilename names a pre-2008 office file, e.g. 20061107__sd__general__us_house.csv
func OfficeFilename(e election.Election, result election.URLPath) string {
	return election.JoinFilename(election.FormatCSV,
		e.DateStamp(),
		State,
		election.SpecialPrefix(e.RaceType, result.Special),
		election.OfficeSegment(result.Office, result.District),
	)
}
