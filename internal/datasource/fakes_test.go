package datasource

import (
	"context"
	"errors"

	"github.com/pfrederiksen/elex-datasource/internal/election"
)

type fakeElections struct {
	byYear map[int][]election.Election
	err    error
}

func (f *fakeElections) Elections(ctx context.Context, state string, year int) (map[int][]election.Election, error) {
	if f.err != nil {
		return nil, f.err
	}
	if year == 0 {
		return f.byYear, nil
	}
	return map[int][]election.Election{year: f.byYear[year]}, nil
}

type fakeReference struct {
	paths         []election.URLPath
	jurisdictions []election.Jurisdiction
}

func (f *fakeReference) URLPaths(state string) ([]election.URLPath, error) {
	if f.paths == nil {
		return nil, errors.New("no url paths")
	}
	return f.paths, nil
}

func (f *fakeReference) Jurisdictions(state string) ([]election.Jurisdiction, error) {
	return f.jurisdictions, nil
}

// echoBuilder emits one mapping per election, mirrored when the election is special
type echoBuilder struct {
	years []int
}

func (b *echoBuilder) BuildMetadata(ctx context.Context, year int, elections []election.Election) ([]election.Mapping, error) {
	b.years = append(b.years, year)
	var out []election.Mapping
	for _, e := range elections {
		m := election.Mapping{
			GeneratedFilename: election.JoinFilename(election.FormatCSV, e.DateStamp(), "xx", e.RaceType),
			RawURL:            e.DirectLinks[0],
			Election:          e.Slug,
		}
		if e.Special {
			m.PreProcessedURL = DefaultMirror.GithubURL("xx", m.GeneratedFilename)
		}
		out = append(out, m)
	}
	return out, nil
}
