package service

import (
	"context"
	"strings"
	"testing"
	"time"

	ics "github.com/arran4/golang-ical"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/teambition/rrule-go"

	"countdowns/internal/clock"
)

func TestRecurrenceRule(t *testing.T) {
	assert.Empty(t, RecurrenceRule(clock.RuleNone, day(2025, time.January, 1)))
	assert.Equal(t, "FREQ=DAILY", RecurrenceRule(clock.RuleDaily, day(2025, time.January, 1)))
	assert.Equal(t, "FREQ=WEEKLY", RecurrenceRule(clock.RuleWeekly, day(2025, time.January, 1)))
	assert.Equal(t, "FREQ=MONTHLY", RecurrenceRule(clock.RuleMonthly, day(2025, time.January, 15)))
	assert.Equal(t, "FREQ=YEARLY", RecurrenceRule(clock.RuleYearly, day(2025, time.July, 4)))
}

// The exported rule must produce the same occurrences the clock computes.
func TestRecurrenceRuleMatchesClock(t *testing.T) {
	tests := []struct {
		name  string
		rule  clock.Rule
		base  time.Time
		steps int
	}{
		{"month end", clock.RuleMonthly, day(2024, time.January, 31), 14},
		{"thirtieth", clock.RuleMonthly, day(2024, time.January, 30), 14},
		{"mid month", clock.RuleMonthly, day(2024, time.January, 15), 6},
		{"leap day", clock.RuleYearly, day(2024, time.February, 29), 5},
		{"weekly", clock.RuleWeekly, day(2024, time.March, 3), 6},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r, err := rrule.StrToRRule(RecurrenceRule(tt.rule, tt.base))
			require.NoError(t, err)
			r.DTStart(tt.base)

			rec := clock.Record{BaseDate: tt.base, Rule: tt.rule}
			cursor := tt.base
			for i := 0; i < tt.steps; i++ {
				want := clock.NextOccurrence(rec, cursor)
				got := r.After(cursor, true)
				assert.True(t, want.Equal(got), "step %d: clock=%s rrule=%s", i, want, got)
				cursor = want.AddDate(0, 0, 1)
			}
		})
	}
}

func TestExportICS(t *testing.T) {
	ctx := context.Background()
	repos := newTestRepos(t)
	events := NewEventService(repos.events, zerolog.Nop())
	export := NewExportService(repos.events, time.UTC)

	party, err := events.Save(ctx, EventForm{Name: "Party", Emoji: "🎉", Date: day(2025, time.July, 4), Repeat: clock.RuleYearly, Description: "bring snacks"}, "")
	require.NoError(t, err)
	_, err = events.Save(ctx, EventForm{Name: "Dentist", Date: time.Date(2025, time.August, 1, 9, 30, 0, 0, time.UTC), IncludesTime: true}, "")
	require.NoError(t, err)

	out, err := export.ExportICS(ctx, day(2025, time.June, 1))
	require.NoError(t, err)

	assert.Contains(t, out, "BEGIN:VCALENDAR")
	assert.Contains(t, out, "METHOD:PUBLISH")
	assert.Equal(t, 2, strings.Count(out, "BEGIN:VEVENT"))
	assert.Contains(t, out, "UID:"+party.ID)
	assert.Contains(t, out, "SUMMARY:🎉 Party")
	assert.Contains(t, out, "DTSTART;VALUE=DATE:20250704")
	assert.Contains(t, out, "RRULE:FREQ=YEARLY")
	assert.Contains(t, out, "DTSTART:20250801T093000Z")

	cal, err := ics.ParseCalendar(strings.NewReader(out))
	require.NoError(t, err)
	assert.Len(t, cal.Events(), 2)
}
