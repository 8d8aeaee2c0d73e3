// Package scraper discovers download links on state results index pages.
//
// A results page lists one anchor per file, all sharing the same link text (for
// example "Download Comma Separated Values (CSV)"). The scraper fetches the page,
// keeps anchors whose text matches, and returns their absolute URLs in document
// order so callers can pair them positionally with a county list.
package scraper
