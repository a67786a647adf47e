package letter

import (
	"regexp"
	"strconv"
	"time"
)

// Unit is the calendar unit of an internship duration.
type Unit string

const (
	UnitNone  Unit = ""
	UnitWeek  Unit = "week"
	UnitMonth Unit = "month"
)

// Duration is a parsed "N Months" or "N Weeks" value.
type Duration struct {
	Count int
	Unit  Unit
}

var (
	monthPattern = regexp.MustCompile(`(?i)(\d+)\s*months?\b`)
	weekPattern  = regexp.MustCompile(`(?i)(\d+)\s*weeks?\b`)
)

// ParseDuration extracts a count and unit from free-form text. A month token
// wins over a week token. Unrecognized input yields UnitNone.
func ParseDuration(s string) Duration {
	if m := monthPattern.FindStringSubmatch(s); m != nil {
		if n, err := strconv.Atoi(m[1]); err == nil {
			return Duration{Count: n, Unit: UnitMonth}
		}
	}
	if m := weekPattern.FindStringSubmatch(s); m != nil {
		if n, err := strconv.Atoi(m[1]); err == nil {
			return Duration{Count: n, Unit: UnitWeek}
		}
	}
	return Duration{}
}

// Recognized reports whether d has a unit.
func (d Duration) Recognized() bool {
	return d.Unit != UnitNone
}

// AddTo returns start advanced by d. Months are calendar months with
// time.AddDate normalization; an unrecognized duration returns start.
func (d Duration) AddTo(start time.Time) time.Time {
	switch d.Unit {
	case UnitMonth:
		return start.AddDate(0, d.Count, 0)
	case UnitWeek:
		return start.AddDate(0, 0, 7*d.Count)
	}
	return start
}
