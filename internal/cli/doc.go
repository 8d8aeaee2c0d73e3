// Package cli implements the command-line interface for elex-datasource.
//
// The cli package provides the Cobra-based commands that expose each datasource
// operation (mappings, target URLs, filename/URL pairs, unprocessed files and
// lookup by URL), with text or JSON output and optional sorting. It wires the
// config, storage, scraper and datasource packages together.
package cli
