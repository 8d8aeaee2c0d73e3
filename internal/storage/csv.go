package storage

import (
	"encoding/csv"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/pfrederiksen/elex-datasource/internal/election"
)

// header maps lowercased column names to their index
type header map[string]int

func readHeader(cr *csv.Reader) (header, error) {
	row, err := cr.Read()
	if err != nil {
		return nil, fmt.Errorf("read header: %w", err)
	}
	h := make(header, len(row))
	for i, col := range row {
		h[strings.ToLower(strings.TrimSpace(col))] = i
	}
	return h, nil
}

func (h header) require(cols ...string) error {
	for _, col := range cols {
		if _, ok := h[col]; !ok {
			return fmt.Errorf("missing required column %q", col)
		}
	}
	return nil
}

// get returns the trimmed value of a column, or "" when the column is absent
func (h header) get(rec []string, col string) string {
	i, ok := h[col]
	if !ok || i >= len(rec) {
		return ""
	}
	return strings.TrimSpace(rec[i])
}

func newReader(r io.Reader) *csv.Reader {
	cr := csv.NewReader(r)
	cr.FieldsPerRecord = -1
	return cr
}

// ReadURLPaths parses a url_paths table. Only the date column is required.
func ReadURLPaths(r io.Reader) ([]election.URLPath, error) {
	cr := newReader(r)
	h, err := readHeader(cr)
	if err != nil {
		return nil, err
	}
	if err := h.require("date"); err != nil {
		return nil, err
	}

	var paths []election.URLPath
	for line := 2; ; line++ {
		rec, err := cr.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("read row: %w", err)
		}

		special, err := parseBool(h.get(rec, "special"))
		if err != nil {
			return nil, fmt.Errorf("line %d: special: %w", line, err)
		}

		paths = append(paths, election.URLPath{
			Date:                 h.get(rec, "date"),
			Path:                 h.get(rec, "path"),
			URL:                  h.get(rec, "url"),
			Office:               h.get(rec, "office"),
			Party:                h.get(rec, "party"),
			District:             h.get(rec, "district"),
			RawExtractedFilename: h.get(rec, "raw_extracted_filename"),
			Special:              special,
		})
	}
	return paths, nil
}

// ReadJurisdictions parses a jurisdiction table with ocd_id and county columns
func ReadJurisdictions(r io.Reader) ([]election.Jurisdiction, error) {
	cr := newReader(r)
	h, err := readHeader(cr)
	if err != nil {
		return nil, err
	}
	if err := h.require("ocd_id", "county"); err != nil {
		return nil, err
	}

	var jurisdictions []election.Jurisdiction
	for {
		rec, err := cr.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("read row: %w", err)
		}
		jurisdictions = append(jurisdictions, election.Jurisdiction{
			County: h.get(rec, "county"),
			OCDID:  h.get(rec, "ocd_id"),
		})
	}
	return jurisdictions, nil
}

func parseBool(s string) (bool, error) {
	if s == "" {
		return false, nil
	}
	return strconv.ParseBool(s)
}
