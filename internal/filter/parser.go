package filter

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"
	"time"

	"github.com/pfrederiksen/elex-datasource/internal/election"
)

var (
	yearRangeRe = regexp.MustCompile(`^(\d{4})\s*(?:-\s*(\d{4}))?$`)
	dateRangeRe = regexp.MustCompile(`^(\d{4}-\d{2}-\d{2})?\s*\.\.\s*(\d{4}-\d{2}-\d{2})?$`)
)

// ParseDateRange parses a date range string into start and end times.
//
// Supported formats:
//   - "2012" - Entire year
//   - "2012-2016" - Inclusive range of years
//   - "2012-05-08..2012-11-06" - Inclusive range of dates; either side may be omitted
//
// Returns (dateFrom, dateTo, error). Times are in UTC and a nil bound is open.
// Start time is at 00:00:00, end time is at 23:59:59.
func ParseDateRange(input string) (*time.Time, *time.Time, error) {
	input = strings.TrimSpace(input)
	if input == "" {
		return nil, nil, fmt.Errorf("date range cannot be empty")
	}

	if matches := yearRangeRe.FindStringSubmatch(input); matches != nil {
		first, _ := strconv.Atoi(matches[1])
		last := first
		if matches[2] != "" {
			last, _ = strconv.Atoi(matches[2])
		}
		if first > last {
			return nil, nil, fmt.Errorf("start year must not be after end year")
		}

		from := time.Date(first, time.January, 1, 0, 0, 0, 0, time.UTC)
		to := time.Date(last, time.December, 31, 23, 59, 59, 0, time.UTC)
		return &from, &to, nil
	}

	if matches := dateRangeRe.FindStringSubmatch(input); matches != nil {
		if matches[1] == "" && matches[2] == "" {
			return nil, nil, fmt.Errorf("date range needs at least one bound")
		}

		var from, to *time.Time
		if matches[1] != "" {
			t, err := time.Parse(election.DateLayout, matches[1])
			if err != nil {
				return nil, nil, fmt.Errorf("invalid start date: %s", matches[1])
			}
			from = &t
		}
		if matches[2] != "" {
			t, err := time.Parse(election.DateLayout, matches[2])
			if err != nil {
				return nil, nil, fmt.Errorf("invalid end date: %s", matches[2])
			}
			end := t.Add(24*time.Hour - time.Second)
			to = &end
		}

		if from != nil && to != nil && from.After(*to) {
			return nil, nil, fmt.Errorf("start date must be before end date")
		}
		return from, to, nil
	}

	return nil, nil, fmt.Errorf("invalid date range format. Use '2012', '2012-2016' or '2012-05-08..2012-11-06'")
}
