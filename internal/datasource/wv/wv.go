// Package wv standardizes West Virginia Secretary of State results files.
//
// From 2008 onwards the state publishes CSV files of precinct-level results for each
// county by election date, linked from a results page that is the election's first
// direct link. Before 2008 county-level results exist only as office-specific PDFs;
// CSV versions of those live in the openelections-data-wv repository.
package wv

import (
	"context"
	"fmt"
	"strconv"
	"strings"

	"github.com/pfrederiksen/elex-datasource/internal/datasource"
	"github.com/pfrederiksen/elex-datasource/internal/election"
	"github.com/pfrederiksen/elex-datasource/internal/logger"
	"github.com/pfrederiksen/elex-datasource/internal/scraper"
)

const (
	State = "wv"
	Name  = "West Virginia"
	OCDID = "ocd-division/country:us/state:wv"

	// ArchiveBaseURL holds the pre-2008 PDFs, one directory per year
	ArchiveBaseURL = "http://www.sos.wv.gov/elections/history/electionreturns/Documents/"
	// ResultsBaseURL prefixes the relative hrefs on the results page
	ResultsBaseURL = "http://apps.sos.wv.gov/elections/results/"
)

// Year boundaries between publication formats
const (
	firstStatewideCSVYear = 2008
	firstCountyCSVYear    = 2012
)

// mirroredCounties lists the counties whose CSVs for an election are replaced by
// cleaned copies in the data repository, keyed by election date
var mirroredCounties = map[string]map[string]bool{
	"2016-11-08": {"Kanawha": true, "Marshall": true, "Nicholas": true, "Cabell": true},
}

func init() {
	datasource.Register(State, New)
}

// Datasource maps West Virginia elections to results files
type Datasource struct {
	*datasource.Base
	archiveBaseURL string
	resultsBaseURL string
}

// New creates the West Virginia datasource
func New(deps datasource.Deps) datasource.Datasource {
	ds := &Datasource{
		archiveBaseURL: ArchiveBaseURL,
		resultsBaseURL: ResultsBaseURL,
	}
	if deps.State.ArchiveBaseURL != "" {
		ds.archiveBaseURL = deps.State.ArchiveBaseURL
	}
	if deps.State.ResultsBaseURL != "" {
		ds.resultsBaseURL = deps.State.ResultsBaseURL
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
		switch {
		case year < firstStatewideCSVYear:
			records, err = d.officeMappings(year, e)
		case year < firstCountyCSVYear:
			records, err = d.statewideMappings(e)
		default:
			records, err = d.countyMappings(ctx, e)
		}
		if err != nil {
			return nil, err
		}
		meta = append(meta, records...)
	}
	return meta, nil
}

// officeMappings covers the PDF era: one file per office, mirrored as CSV on GitHub
func (d *Datasource) officeMappings(year int, e election.Election) ([]election.Mapping, error) {
	results, err := d.URLPaths(e)
	if err != nil {
		return nil, err
	}

	mirror := d.Deps().Mirror
	meta := make([]election.Mapping, 0, len(results))
	for _, result := range results {
		filename := OfficeFilename(e, result)
		meta = append(meta, election.Mapping{
			GeneratedFilename: filename,
			RawURL:            d.archiveURL(year, result),
			PreProcessedURL:   mirror.GithubURL(State, filename),
			OCDID:             OCDID,
			Name:              Name,
			Election:          e.Slug,
		})
	}
	return meta, nil
}

func (d *Datasource) archiveURL(year int, result election.URLPath) string {
	if result.URL != "" {
		return result.URL
	}
	return fmt.Sprintf("%s%d/%s", d.archiveBaseURL, year, result.Path)
}

// statewideMappings covers 2008-2011: a single statewide CSV per election
func (d *Datasource) statewideMappings(e election.Election) ([]election.Mapping, error) {
	rawURL, err := datasource.DirectLink(e, 0)
	if err != nil {
		return nil, err
	}

	return []election.Mapping{{
		GeneratedFilename: StatewideFilename(e),
		RawURL:            rawURL,
		OCDID:             OCDID,
		Name:              Name,
		Election:          e.Slug,
	}}, nil
}

// countyMappings covers 2012 onwards: a statewide CSV plus one CSV per county,
// discovered on the results page
func (d *Datasource) countyMappings(ctx context.Context, e election.Election) ([]election.Mapping, error) {
	pageURL, err := datasource.DirectLink(e, 0)
	if err != nil {
		return nil, err
	}
	statewideURL, err := datasource.DirectLink(e, 1)
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

	meta := []election.Mapping{{
		GeneratedFilename: StatewideFilename(e),
		RawURL:            statewideURL,
		OCDID:             OCDID,
		Name:              Name,
		Election:          e.Slug,
	}}

	// The first link is the statewide file.
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

	mirror := d.Deps().Mirror
	for i := 0; i < len(counties) && i < len(countyLinks); i++ {
		county := counties[i]
		filename := CountyFilename(e, county.County)

		m := election.Mapping{
			GeneratedFilename: filename,
			RawURL:            countyLinks[i],
			OCDID:             county.OCDID,
			Name:              county.County,
			Election:          e.Slug,
		}
		if mirroredCounties[e.StartDate][county.County] {
			m.PreProcessedURL = mirror.RawGithubURL(State, strconv.Itoa(e.Year()), filename)
		}
		meta = append(meta, m)
	}
	return meta, nil
}

// StatewideFilename names the statewide file, e.g. 20101102__wv__general.csv
func StatewideFilename(e election.Election) string {
	return election.JoinFilename(election.FormatCSV,
		e.DateStamp(),
		State,
		election.SpecialPrefix(e.RaceType, e.Special),
	)
}

// CountyFilename names a county file, e.g. 20120508__wv__primary__wirt.csv
func CountyFilename(e election.Election, county string) string {
	return election.JoinFilename(election.FormatCSV,
		e.DateStamp(),
		State,
		e.RaceType,
		strings.ToLower(county),
	)
}

// OfficeFilename names a pre-2008 office file, e.g. 20040511__wv__primary__state_house__12.csv.
// The special flag comes from the url_paths row, not the election.
func OfficeFilename(e election.Election, result election.URLPath) string {
	return election.JoinFilename(election.FormatCSV,
		e.DateStamp(),
		State,
		election.SpecialPrefix(e.RaceType, result.Special),
		election.OfficeSegment(result.Office, result.District),
	)
}
