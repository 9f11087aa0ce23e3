package clock

import (
	"fmt"
	"strings"
	"time"
)

// Mode selects how a day count is rendered.
type Mode string

const (
	ModeDays      Mode = "Days"
	ModeAutomatic Mode = "Automatic"
)

// Modes lists the selectable display modes.
var Modes = []Mode{ModeDays, ModeAutomatic}

// ParseMode maps a stored or typed mode name to a Mode. The older
// Weeks/Months/Years selections were composite views and map to Automatic.
func ParseMode(raw string) Mode {
	switch strings.ToLower(strings.TrimSpace(raw)) {
	case "days", "day":
		return ModeDays
	case "automatic", "auto", "weeks", "months", "years":
		return ModeAutomatic
	default:
		return ModeDays
	}
}

// Fixed conversion constants for the composite breakdown. These are an
// approximation of calendar units and are kept for display compatibility.
const (
	daysPerYear  = 365
	daysPerMonth = 30
	daysPerWeek  = 7
)

const (
	labelToday = "Today"
	suffixLeft = "left"
	suffixAgo  = "ago"
)

// FormattedRemaining renders the gap between now and the next occurrence,
// e.g. "Today", "3 days left", "1 year, 2 weeks ago".
func FormattedRemaining(rec Record, now time.Time, mode Mode) string {
	if rec.BaseDate.IsZero() {
		return Breakdown(0, mode)
	}
	days := DaysUntil(rec, now)
	switch {
	case days == 0:
		return labelToday
	case days > 0:
		return Breakdown(days, mode) + " " + suffixLeft
	default:
		return Breakdown(-days, mode) + " " + suffixAgo
	}
}

// Breakdown renders an absolute day count without a suffix.
func Breakdown(days int, mode Mode) string {
	if days < 0 {
		days = -days
	}
	if mode != ModeAutomatic {
		return unit(days, "day")
	}

	years := days / daysPerYear
	rest := days % daysPerYear
	months := rest / daysPerMonth
	rest %= daysPerMonth
	weeks := rest / daysPerWeek
	rest %= daysPerWeek

	parts := make([]string, 0, 4)
	for _, c := range []struct {
		n    int
		name string
	}{
		{years, "year"},
		{months, "month"},
		{weeks, "week"},
		{rest, "day"},
	} {
		if c.n > 0 {
			parts = append(parts, unit(c.n, c.name))
		}
	}
	if len(parts) == 0 {
		return unit(0, "day")
	}
	return strings.Join(parts, ", ")
}

func unit(n int, name string) string {
	if n == 1 {
		return fmt.Sprintf("%d %s", n, name)
	}
	return fmt.Sprintf("%d %ss", n, name)
}
