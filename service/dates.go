package service

import (
	"strconv"
	"strings"
	"time"
)

// monthsByName is the fixed table for the verbose sitting-date format.
// Lookups are exact; abbreviations and French month names do not parse.
var monthsByName = map[string]time.Month{
	"January":   time.January,
	"February":  time.February,
	"March":     time.March,
	"April":     time.April,
	"May":       time.May,
	"June":      time.June,
	"July":      time.July,
	"August":    time.August,
	"September": time.September,
	"October":   time.October,
	"November":  time.November,
	"December":  time.December,
}

// genericDateLayouts are tried last, for corpus entries that carry a date
// in neither the verbose sitting format nor ISO form.
var genericDateLayouts = []string{
	"January 2, 2006",
	"2006/01/02",
	"02/01/2006",
}

// ParseCitationDate parses the free-form date strings attached to debate
// records. Attempt order: the verbose "Weekday, Month Day, Year" sitting
// format, then ISO "YYYY-MM-DD", then genericDateLayouts. "Unknown" and
// the empty string never parse. A string that structurally matches the
// verbose format but names an unknown month is rejected outright rather
// than handed to the later layouts.
func ParseCitationDate(s string) (time.Time, bool) {
	s = strings.TrimSpace(s)
	if s == "" || s == "Unknown" {
		return time.Time{}, false
	}

	if t, ok, structural := parseVerboseDate(s); structural {
		return t, ok
	}

	if t, err := time.Parse("2006-01-02", s); err == nil {
		return t, true
	}

	for _, layout := range genericDateLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return t, true
		}
	}

	return time.Time{}, false
}

// parseVerboseDate handles "Monday, June 13, 2022". The third return value
// reports whether s had the verbose structure at all; when it did, the
// result is final regardless of success.
func parseVerboseDate(s string) (time.Time, bool, bool) {
	parts := strings.Split(s, ", ")
	if len(parts) != 3 {
		return time.Time{}, false, false
	}

	monthDay := strings.Fields(parts[1])
	if len(monthDay) != 2 {
		return time.Time{}, false, false
	}

	month, ok := monthsByName[monthDay[0]]
	if !ok {
		return time.Time{}, false, true
	}

	day, err := strconv.Atoi(monthDay[1])
	if err != nil {
		return time.Time{}, false, true
	}

	year, err := strconv.Atoi(parts[2])
	if err != nil {
		return time.Time{}, false, true
	}

	t := time.Date(year, month, day, 0, 0, 0, 0, time.UTC)
	if t.Month() != month || t.Day() != day {
		// Rejects impossible dates like February 30 that time.Date
		// would silently normalize.
		return time.Time{}, false, true
	}

	return t, true, true
}
