// Package nc standardizes North Carolina State Board of Elections results files.
//
// North Carolina publishes one zip file per election containing precinct-level
// results for every county and office, back to 2000. Some years ship the results as
// tab-delimited text rather than CSV. The 2000 primary is the exception: it is
// published as individual Excel files per office and party.
package nc

import (
	"context"
	"strings"

	"github.com/pfrederiksen/elex-datasource/internal/datasource"
	"github.com/pfrederiksen/elex-datasource/internal/election"
)

const (
	State = "nc"
	Name  = "North Carolina"
	OCDID = "ocd-division/country:us/state:nc"
)

// excelElection is published as per-office, per-party workbooks
const excelElection = "nc-2000-05-02-primary"

// textFormatDates lists elections whose zip contains a .txt results file
var textFormatDates = map[string]bool{
	"2000-11-07": true,
	"2002-11-05": true,
	"2002-09-10": true,
	"2006-05-02": true,
	"2006-09-12": true,
	"2006-11-07": true,
	"2006-05-30": true,
	"2008-05-06": true,
}

func init() {
	datasource.Register(State, New)
}

// Datasource maps North Carolina elections to results files
type Datasource struct {
	*datasource.Base
}

// New creates the North Carolina datasource
func New(deps datasource.Deps) datasource.Datasource {
	ds := &Datasource{}
	ds.Base = datasource.NewBase(State, deps, ds)
	return ds
}

// BuildMetadata implements datasource.Builder
func (d *Datasource) BuildMetadata(ctx context.Context, year int, elections []election.Election) ([]election.Mapping, error) {
	meta := make([]election.Mapping, 0)
	for _, e := range elections {
		results, err := d.URLPaths(e)
		if err != nil {
			return nil, err
		}

		if e.Slug == excelElection {
			for _, result := range results {
				meta = append(meta, election.Mapping{
					GeneratedFilename: OfficeFilename(e, result),
					RawURL:            result.URL,
					OCDID:             OCDID,
					Name:              Name,
					Election:          e.Slug,
				})
			}
			continue
		}

		if len(results) == 0 {
			continue
		}
		zipURL, err := datasource.DirectLink(e, 0)
		if err != nil {
			return nil, err
		}
		for _, result := range results {
			meta = append(meta, election.Mapping{
				GeneratedFilename:    Filename(e, Format(result.Date)),
				RawURL:               zipURL,
				RawExtractedFilename: result.RawExtractedFilename,
				OCDID:                OCDID,
				Name:                 Name,
				Election:             e.Slug,
			})
		}
	}
	return meta, nil
}

// Format returns the extension of the results file inside an election's zip
func Format(date string) string {
	if textFormatDates[date] {
		return election.FormatTXT
	}
	return election.FormatCSV
}

// Filename names a precinct results file, e.g. 20121106__nc__general__precinct.csv.
// Dashes in the race type become separators: primary-runoff gives primary__runoff.
func Filename(e election.Election, format string) string {
	raceType := strings.ReplaceAll(e.RaceType, "-", election.Separator) + election.Separator + "precinct"
	return election.JoinFilename(format,
		e.DateStamp(),
		State,
		election.SpecialPrefix(raceType, e.Special),
	)
}

// OfficeFilename names a 2000 primary workbook, e.g.
// 20000502__nc__dem__primary__president__precinct.xls
func OfficeFilename(e election.Election, result election.URLPath) string {
	bits := []string{e.DateStamp(), State}
	if result.Party != "" {
		bits = append(bits, result.Party)
	}
	bits = append(bits, e.RaceType, result.Office, "precinct")
	return election.JoinFilename(election.FormatXLS, bits...)
}
