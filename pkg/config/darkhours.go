package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/mrjrask/desk-display/pkg/models"
)

// Dark hours are windows during which the display sleeps entirely. The
// spec string is a semicolon-separated list of "Days HH:MM-HH:MM" entries,
// where Days is a single day or an inclusive range, e.g.
// "Mon-Thu 19:00-07:00; Fri-Sun 00:00-24:00". Overnight windows split
// into a late segment on the named day and an early segment on the next.

// DarkSegment is one same-day window: [Start, End) minutes on Day.
type DarkSegment struct {
	Day   time.Weekday
	Start int
	End   int
}

// ParseDarkHours parses a dark-hours spec string. An empty spec yields no
// segments, meaning the display never sleeps.
func ParseDarkHours(spec string) ([]DarkSegment, error) {
	var segments []DarkSegment

	for _, entry := range strings.Split(spec, ";") {
		entry = strings.TrimSpace(entry)
		if entry == "" {
			continue
		}

		fields := strings.Fields(entry)
		if len(fields) != 2 {
			return nil, fmt.Errorf("invalid dark hours entry %q", entry)
		}

		days, err := parseDayRange(fields[0])
		if err != nil {
			return nil, err
		}

		start, end, err := parseWindow(fields[1])
		if err != nil {
			return nil, err
		}

		for _, day := range days {
			if start < end {
				segments = append(segments, DarkSegment{Day: day, Start: start, End: end})

				continue
			}

			// Overnight: late window today, early window tomorrow.
			segments = append(segments,
				DarkSegment{Day: day, Start: start, End: 24 * 60},
				DarkSegment{Day: (day + 1) % 7, Start: 0, End: end},
			)
		}
	}

	return segments, nil
}

// IsDark reports whether the given time falls inside any dark segment.
func IsDark(segments []DarkSegment, now time.Time) bool {
	minute := now.Hour()*60 + now.Minute()

	for _, segment := range segments {
		if segment.Day == now.Weekday() && minute >= segment.Start && minute < segment.End {
			return true
		}
	}

	return false
}

var dayNames = map[string]time.Weekday{
	"sun": time.Sunday,
	"mon": time.Monday,
	"tue": time.Tuesday,
	"wed": time.Wednesday,
	"thu": time.Thursday,
	"fri": time.Friday,
	"sat": time.Saturday,
}

func parseDay(name string) (time.Weekday, error) {
	day, ok := dayNames[strings.ToLower(name)]
	if !ok {
		return 0, fmt.Errorf("unknown day %q", name)
	}

	return day, nil
}

func parseDayRange(token string) ([]time.Weekday, error) {
	first, rest, isRange := strings.Cut(token, "-")

	start, err := parseDay(first)
	if err != nil {
		return nil, err
	}

	if !isRange {
		return []time.Weekday{start}, nil
	}

	end, err := parseDay(rest)
	if err != nil {
		return nil, err
	}

	days := []time.Weekday{start}
	for day := start; day != end; {
		day = (day + 1) % 7
		days = append(days, day)
	}

	return days, nil
}

func parseWindow(token string) (int, int, error) {
	from, to, ok := strings.Cut(token, "-")
	if !ok {
		return 0, 0, fmt.Errorf("invalid time window %q", token)
	}

	start, err := models.ParseClockTime(from)
	if err != nil {
		return 0, 0, err
	}

	end, err := models.ParseClockTime(to)
	if err != nil {
		return 0, 0, err
	}

	return int(start), int(end), nil
}
