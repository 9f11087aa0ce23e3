// Package clock computes next occurrences and time-remaining labels for
// countdown events. Every function is pure: the caller supplies "now".
package clock

import (
	"strings"
	"time"
)

// Rule is the period by which an event repeats.
type Rule string

const (
	RuleNone    Rule = "None"
	RuleDaily   Rule = "Daily"
	RuleWeekly  Rule = "Weekly"
	RuleMonthly Rule = "Monthly"
	RuleYearly  Rule = "Yearly"
)

// Rules lists the supported rules in display order.
var Rules = []Rule{RuleNone, RuleDaily, RuleWeekly, RuleMonthly, RuleYearly}

// ParseRule accepts a rule name case-insensitively. Unknown input yields RuleNone.
func ParseRule(raw string) Rule {
	for _, r := range Rules {
		if strings.EqualFold(strings.TrimSpace(raw), string(r)) {
			return r
		}
	}
	return RuleNone
}

// Repeats reports whether the rule advances past occurrences.
func (r Rule) Repeats() bool {
	switch r {
	case RuleDaily, RuleWeekly, RuleMonthly, RuleYearly:
		return true
	default:
		return false
	}
}

// Record is the read-only projection of an event the clock works on.
type Record struct {
	BaseDate     time.Time
	IncludesTime bool
	Rule         Rule
}

// maxSteps caps advancement after the fast-forward estimate.
const maxSteps = 4096

// NextOccurrence returns the earliest occurrence of rec at or after now.
// Events without a repeating rule always return their base date.
//
// Calendar math happens in now's location. A base date without a time of
// day keeps its own calendar date and is placed at midnight in now's
// location. Month and year steps are anchored on the base date's day of
// month and clamp to the last day of shorter months (Jan 31 -> Feb 29 ->
// Mar 31).
func NextOccurrence(rec Record, now time.Time) time.Time {
	if rec.BaseDate.IsZero() || !rec.Rule.Repeats() {
		return rec.BaseDate
	}

	loc := now.Location()
	base := rec.BaseDate.In(loc)
	if !rec.IncludesTime {
		base = DateIn(rec.BaseDate, loc)
		now = StartOfDay(now)
	}
	if !base.Before(now) {
		return base
	}

	candidate := walk(base, now, rec.Rule, estimateSteps(base, now, rec.Rule))
	if !rec.IncludesTime {
		candidate = StartOfDay(candidate)
	}
	return candidate
}

// DaysUntil returns the signed number of calendar days between the start of
// now's day and the start of the next occurrence's day.
func DaysUntil(rec Record, now time.Time) int {
	if rec.BaseDate.IsZero() {
		return 0
	}
	next := NextOccurrence(rec, now)
	if !rec.IncludesTime {
		next = DateIn(next, now.Location())
	}
	return DaysBetween(now, next)
}

// DaysBetween counts civil days from a to b in a's location. The count is
// taken on Unix seconds so spans beyond time.Duration's range stay exact.
func DaysBetween(a, b time.Time) int {
	b = b.In(a.Location())
	ay, am, ad := a.Date()
	by, bm, bd := b.Date()
	from := time.Date(ay, am, ad, 0, 0, 0, 0, time.UTC)
	to := time.Date(by, bm, bd, 0, 0, 0, 0, time.UTC)
	return int((to.Unix() - from.Unix()) / secondsPerDay)
}

const secondsPerDay = 24 * 60 * 60

// DateIn returns midnight in loc of the calendar date t has in its own
// location. All-day dates are stored at UTC midnight of their calendar date.
func DateIn(t time.Time, loc *time.Location) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, loc)
}

// StartOfDay truncates t to midnight in its own location.
func StartOfDay(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, t.Location())
}

// estimateSteps returns a period count that lands strictly before now so
// the loop only has to walk the last few periods.
func estimateSteps(base, now time.Time, rule Rule) int {
	var k int
	switch rule {
	case RuleDaily:
		k = DaysBetween(base, now)
	case RuleWeekly:
		k = DaysBetween(base, now) / 7
	case RuleMonthly:
		k = (now.Year()-base.Year())*12 + int(now.Month()-base.Month())
	case RuleYearly:
		k = now.Year() - base.Year()
	}
	k--
	if k < 0 {
		return 0
	}
	return k
}

// walk steps from the k-th period until it reaches now. It stops early at
// maxSteps or when a step makes no progress, returning the last candidate.
func walk(base, now time.Time, rule Rule, k int) time.Time {
	candidate := advance(base, rule, k)
	if !candidate.After(base) && k > 0 {
		return base
	}
	for i := 0; candidate.Before(now); i++ {
		if i >= maxSteps {
			return candidate
		}
		next := advance(base, rule, k+1)
		if !next.After(candidate) {
			return candidate
		}
		k++
		candidate = next
	}
	return candidate
}

// advance moves base forward by k periods of rule.
func advance(base time.Time, rule Rule, k int) time.Time {
	switch rule {
	case RuleDaily:
		return base.AddDate(0, 0, k)
	case RuleWeekly:
		return base.AddDate(0, 0, 7*k)
	case RuleMonthly:
		return addMonthsClamped(base, k)
	case RuleYearly:
		return addMonthsClamped(base, 12*k)
	default:
		return base
	}
}

func addMonthsClamped(t time.Time, months int) time.Time {
	y, m, d := t.Date()
	first := time.Date(y, m+time.Month(months), 1, t.Hour(), t.Minute(), t.Second(), t.Nanosecond(), t.Location())
	if last := daysInMonth(first.Month(), first.Year()); d > last {
		d = last
	}
	return first.AddDate(0, 0, d-1)
}

func daysInMonth(month time.Month, year int) int {
	return time.Date(year, month+1, 0, 0, 0, 0, 0, time.UTC).Day()
}
