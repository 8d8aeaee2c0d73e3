// Package storage provides file-backed reference data for the datasources.
//
// Each state has a directory under the data dir holding elections.json (an export of
// the election metadata service), url_paths.csv and optionally jurisdictions.csv.
// County tables for the supported states are embedded and used when no
// jurisdictions.csv is present. Generated mappings can be saved back as a snapshot
// for the downstream fetch pipeline.
package storage
