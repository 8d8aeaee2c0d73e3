package election

import "time"

// DateLayout is the layout of election start dates
const DateLayout = "2006-01-02"

// ParseDate parses an election date into a time.Time.
// Returns time.Time{} (zero value) if parsing fails.
// Supports formats: "2012-05-08", "20120508", "05/08/2012"
func ParseDate(dateText string) time.Time {
	if dateText == "" {
		return time.Time{}
	}

	t, err := time.Parse(DateLayout, dateText)
	if err == nil {
		return t
	}

	// Compact form used in generated filenames
	t, err = time.Parse("20060102", dateText)
	if err == nil {
		return t
	}

	// Month/day/year as printed on some results pages
	t, err = time.Parse("01/02/2006", dateText)
	if err == nil {
		return t
	}

	return time.Time{}
}

// GroupByYear buckets elections by the year of their start date, keeping source order.
// Elections with an unparseable date are dropped.
func GroupByYear(elections []Election) map[int][]Election {
	byYear := make(map[int][]Election)
	for _, e := range elections {
		year := e.Year()
		if year == 0 {
			continue
		}
		byYear[year] = append(byYear[year], e)
	}
	return byYear
}
