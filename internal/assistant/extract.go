package assistant

import (
	"regexp"
	"strconv"
	"strings"
	"time"

	"cloud.google.com/go/civil"
)

// hourPairRegex matches "3-5", "3 - 5", "3 to 5" and "10to12".
var hourPairRegex = regexp.MustCompile(`(\d{1,2})\s*(?:-|to)\s*(\d{1,2})`)

// Named parts of the day, checked in this order.
var dayParts = []struct {
	keyword string
	hours   HourRange
}{
	{"afternoon", HourRange{Start: 13, End: 17}},
	{"evening", HourRange{Start: 17, End: 20}},
	{"morning", HourRange{Start: 9, End: 12}},
}

// ExtractDate resolves a relative date keyword against now. The first
// matching rule wins: "tomorrow", "today", "friday", "next week". It returns
// nil when no rule matches.
//
// "friday" resolves to the next Friday strictly after a Friday now, so on a
// Friday it means a week later, never today.
func ExtractDate(input string, now time.Time) *civil.Date {
	lower := strings.ToLower(input)
	today := civil.DateOf(now)

	var d civil.Date
	switch {
	case strings.Contains(lower, "tomorrow"):
		d = today.AddDays(1)
	case strings.Contains(lower, "today"):
		d = today
	case strings.Contains(lower, "friday"):
		d = today.AddDays(daysUntil(now.Weekday(), time.Friday))
	case strings.Contains(lower, "next week"):
		d = today.AddDays(7)
	default:
		return nil
	}
	return &d
}

// daysUntil returns how many days ahead the next target weekday is, in
// [1, 7].
func daysUntil(from, target time.Weekday) int {
	n := (int(target) - int(from) + 7) % 7
	if n == 0 {
		n = 7
	}
	return n
}

// ExtractHours resolves an hour range. Named day parts take priority over
// numbers anywhere in the text. Otherwise the first "<a>-<b>" or
// "<a> to <b>" pair is taken verbatim as [a, b): the pair is not reordered
// and not range checked, so "20 to 3" yields [20, 3). Returns nil when
// nothing matches.
func ExtractHours(input string) *HourRange {
	lower := strings.ToLower(input)
	for _, p := range dayParts {
		if strings.Contains(lower, p.keyword) {
			h := p.hours
			return &h
		}
	}

	m := hourPairRegex.FindStringSubmatch(lower)
	if m == nil {
		return nil
	}
	start, err := strconv.Atoi(m[1])
	if err != nil {
		return nil
	}
	end, err := strconv.Atoi(m[2])
	if err != nil {
		return nil
	}
	return &HourRange{Start: start, End: end}
}
