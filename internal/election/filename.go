package election

import "strings"

// Separator joins the fields of a generated filename
const Separator = "__"

// File format extensions used by the state archives
const (
	FormatCSV = ".csv"
	FormatPDF = ".pdf"
	FormatTXT = ".txt"
	FormatXLS = ".xls"
)

// JoinFilename joins the fields with Separator and appends the extension
func JoinFilename(ext string, bits ...string) string {
	return strings.Join(bits, Separator) + ext
}

// SpecialPrefix prefixes the race type with "special__" for special elections
func SpecialPrefix(raceType string, special bool) string {
	if special {
		return "special" + Separator + raceType
	}
	return raceType
}

// OfficeSegment returns the office, followed by the district when there is one
func OfficeSegment(office, district string) string {
	if district == "" {
		return office
	}
	return office + Separator + district
}

// ReplaceFormat swaps the extension of a generated filename.
// The filename is returned unchanged if it does not end in from.
func ReplaceFormat(filename, from, to string) string {
	if !strings.HasSuffix(filename, from) {
		return filename
	}
	return strings.TrimSuffix(filename, from) + to
}
