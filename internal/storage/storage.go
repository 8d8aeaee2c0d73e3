package storage

import (
	"context"
	"embed"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/pfrederiksen/elex-datasource/internal/config"
	"github.com/pfrederiksen/elex-datasource/internal/election"
)

const (
	ElectionsFile     = "elections.json"
	URLPathsFile      = "url_paths.csv"
	JurisdictionsFile = "jurisdictions.csv"
	MappingsFile      = "mappings.json"
)

//go:embed jurisdictions/*.csv
var embeddedJurisdictions embed.FS

// Storage reads and writes per-state reference data under a data directory
type Storage struct {
	dataDir string
}

// New creates a Storage rooted at dataDir. A leading "~/" is expanded.
func New(dataDir string) (*Storage, error) {
	dataDir, err := config.ExpandHome(dataDir)
	if err != nil {
		return nil, err
	}

	return &Storage{
		dataDir: dataDir,
	}, nil
}

// DataDir returns the resolved data directory
func (s *Storage) DataDir() string {
	return s.dataDir
}

func (s *Storage) statePath(state, name string) string {
	return filepath.Join(s.dataDir, strings.ToLower(state), name)
}

// electionsDocument is the paginated shape returned by the metadata service
type electionsDocument struct {
	Objects []election.Election `json:"objects"`
}

// Elections returns the state's elections grouped by year. year 0 returns every year.
func (s *Storage) Elections(ctx context.Context, state string, year int) (map[int][]election.Election, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	data, err := os.ReadFile(s.statePath(state, ElectionsFile))
	if err != nil {
		return nil, fmt.Errorf("reading elections: %w", err)
	}

	elections, err := decodeElections(data)
	if err != nil {
		return nil, err
	}

	byYear := election.GroupByYear(elections)
	if year == 0 {
		return byYear, nil
	}
	if elecs, ok := byYear[year]; ok {
		return map[int][]election.Election{year: elecs}, nil
	}
	return map[int][]election.Election{}, nil
}

func decodeElections(data []byte) ([]election.Election, error) {
	var list []election.Election
	if err := json.Unmarshal(data, &list); err == nil {
		return list, nil
	}

	var doc electionsDocument
	if err := json.Unmarshal(data, &doc); err != nil {
		return nil, fmt.Errorf("parsing elections: %w", err)
	}
	return doc.Objects, nil
}

// URLPaths returns the state's url_paths table in file order
func (s *Storage) URLPaths(state string) ([]election.URLPath, error) {
	f, err := os.Open(s.statePath(state, URLPathsFile))
	if err != nil {
		return nil, fmt.Errorf("opening url paths: %w", err)
	}
	defer f.Close()

	return ReadURLPaths(f)
}

// Jurisdictions returns the state's jurisdiction table, including the statewide row.
// A jurisdictions.csv in the data dir takes precedence over the embedded table.
func (s *Storage) Jurisdictions(state string) ([]election.Jurisdiction, error) {
	f, err := os.Open(s.statePath(state, JurisdictionsFile))
	if err == nil {
		defer f.Close()
		return ReadJurisdictions(f)
	}
	if !errors.Is(err, os.ErrNotExist) {
		return nil, fmt.Errorf("opening jurisdictions: %w", err)
	}

	return EmbeddedJurisdictions(state)
}

// EmbeddedJurisdictions returns the built-in county table for a state
func EmbeddedJurisdictions(state string) ([]election.Jurisdiction, error) {
	f, err := embeddedJurisdictions.Open("jurisdictions/" + strings.ToLower(state) + ".csv")
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, fmt.Errorf("no jurisdiction table for state %q", state)
		}
		return nil, fmt.Errorf("opening embedded jurisdictions: %w", err)
	}
	defer f.Close()

	return ReadJurisdictions(f)
}

// MappingsSnapshot is the saved output of a mappings run
type MappingsSnapshot struct {
	State     string             `json:"state"`
	Year      int                `json:"year,omitempty"`
	UpdatedAt string             `json:"updated_at"`
	Mappings  []election.Mapping `json:"mappings"`
}

// SaveMappings writes a mappings snapshot for the state, creating directories as needed
func (s *Storage) SaveMappings(state string, year int, mappings []election.Mapping) (string, error) {
	path := s.statePath(state, MappingsFile)
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return "", fmt.Errorf("creating data directory: %w", err)
	}

	snapshot := MappingsSnapshot{
		State:     strings.ToLower(state),
		Year:      year,
		UpdatedAt: time.Now().UTC().Format(time.RFC3339),
		Mappings:  mappings,
	}

	data, err := json.MarshalIndent(snapshot, "", "  ")
	if err != nil {
		return "", fmt.Errorf("encoding mappings: %w", err)
	}

	if err := os.WriteFile(path, data, 0644); err != nil {
		return "", fmt.Errorf("writing mappings: %w", err)
	}
	return path, nil
}

// LoadMappings reads a previously saved mappings snapshot
func (s *Storage) LoadMappings(state string) (*MappingsSnapshot, error) {
	f, err := os.Open(s.statePath(state, MappingsFile))
	if err != nil {
		return nil, fmt.Errorf("opening mappings: %w", err)
	}
	defer f.Close()

	return decodeSnapshot(f)
}

func decodeSnapshot(r io.Reader) (*MappingsSnapshot, error) {
	var snapshot MappingsSnapshot
	if err := json.NewDecoder(r).Decode(&snapshot); err != nil {
		return nil, fmt.Errorf("parsing mappings: %w", err)
	}
	if snapshot.Mappings == nil {
		snapshot.Mappings = make([]election.Mapping, 0)
	}
	return &snapshot, nil
}
