// Package election provides the data model shared by the jurisdiction datasources.
//
// Elections and url-path entries come from external reference data. Mappings are the
// output records handed to the fetch pipeline: a standardized filename plus the URL
// the raw file can be downloaded from, and an optional pre-processed mirror URL.
package election
