package models

import (
	"encoding/json"
	"fmt"
	"strings"
	"time"
)

// Condition gates whether a playlist or step is eligible on a given visit.
// An absent field imposes no constraint; a nil Condition always holds.
type Condition struct {
	DaysOfWeek []Weekday    `json:"days_of_week,omitempty"`
	TimeOfDay  []TimeWindow `json:"time_of_day,omitempty"`
}

// HoldsAt reports whether the condition holds at the given local time.
// Pure and cheap: it runs on every step visit. The weekday must match
// DaysOfWeek (when present) and the time must fall inside any of the
// TimeOfDay windows (when present).
func (c *Condition) HoldsAt(now time.Time) bool {
	if c == nil {
		return true
	}

	if len(c.DaysOfWeek) > 0 {
		match := false

		for _, day := range c.DaysOfWeek {
			if day.Matches(now.Weekday()) {
				match = true

				break
			}
		}

		if !match {
			return false
		}
	}

	if len(c.TimeOfDay) > 0 {
		minute := now.Hour()*60 + now.Minute()
		match := false

		for _, window := range c.TimeOfDay {
			if window.Contains(minute) {
				match = true

				break
			}
		}

		if !match {
			return false
		}
	}

	return true
}

// Weekday is a lowercase three-letter weekday token ("mon" .. "sun").
type Weekday string

var weekdayTokens = map[Weekday]time.Weekday{
	"sun": time.Sunday,
	"mon": time.Monday,
	"tue": time.Tuesday,
	"wed": time.Wednesday,
	"thu": time.Thursday,
	"fri": time.Friday,
	"sat": time.Saturday,
}

// Valid reports whether the token is a known weekday.
func (w Weekday) Valid() bool {
	_, ok := weekdayTokens[Weekday(strings.ToLower(string(w)))]

	return ok
}

// Matches reports whether the token names the given weekday.
func (w Weekday) Matches(day time.Weekday) bool {
	parsed, ok := weekdayTokens[Weekday(strings.ToLower(string(w)))]

	return ok && parsed == day
}

// TimeWindow is a wall-clock window. End is exclusive; Start > End means
// the window wraps past midnight (19:00-07:00 matches 23:00 and 05:00).
type TimeWindow struct {
	Start ClockTime `json:"start"`
	End   ClockTime `json:"end"`
}

// Contains reports whether the minute-of-day falls inside the window.
func (w TimeWindow) Contains(minute int) bool {
	start := int(w.Start)
	end := int(w.End)

	if start == end {
		return false
	}

	if start < end {
		return minute >= start && minute < end
	}

	// Wraps midnight.
	return minute >= start || minute < end
}

// ClockTime is a minute-of-day parsed from "HH:MM". "24:00" is accepted as
// end-of-day for window ends.
type ClockTime int

const minutesPerDay = 24 * 60

// ParseClockTime parses "HH:MM" into a ClockTime.
func ParseClockTime(value string) (ClockTime, error) {
	var hours, minutes int

	if _, err := fmt.Sscanf(value, "%d:%d", &hours, &minutes); err != nil {
		return 0, fmt.Errorf("invalid clock time %q: %w", value, err)
	}

	if hours == 24 && minutes == 0 {
		return ClockTime(minutesPerDay), nil
	}

	if hours < 0 || hours > 23 || minutes < 0 || minutes > 59 {
		return 0, fmt.Errorf("invalid clock time %q", value)
	}

	return ClockTime(hours*60 + minutes), nil
}

func (t ClockTime) String() string {
	return fmt.Sprintf("%02d:%02d", int(t)/60, int(t)%60)
}

// MarshalJSON renders the time back to "HH:MM".
func (t ClockTime) MarshalJSON() ([]byte, error) {
	return json.Marshal(t.String())
}

// UnmarshalJSON parses "HH:MM".
func (t *ClockTime) UnmarshalJSON(data []byte) error {
	var raw string
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}

	parsed, err := ParseClockTime(raw)
	if err != nil {
		return err
	}

	*t = parsed

	return nil
}
