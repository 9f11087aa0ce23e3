package service

import (
	"context"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"countdowns/internal/model"
)

func TestParseRefresh(t *testing.T) {
	from := day(2025, time.January, 1)

	schedule, err := ParseRefresh("07:30", time.UTC)
	require.NoError(t, err)
	assertInstant(t, time.Date(2025, time.January, 1, 7, 30, 0, 0, time.UTC), schedule.Next(from))

	schedule, err = ParseRefresh("", time.UTC)
	require.NoError(t, err)
	assertInstant(t, day(2025, time.January, 2), schedule.Next(from))

	schedule, err = ParseRefresh("@hourly", time.UTC)
	require.NoError(t, err)
	assertInstant(t, time.Date(2025, time.January, 1, 1, 0, 0, 0, time.UTC), schedule.Next(from))

	_, err = ParseRefresh("25:00", time.UTC)
	assert.Error(t, err)

	_, err = ParseRefresh("not a spec", time.UTC)
	assert.Error(t, err)
}

func TestBuildTimeline(t *testing.T) {
	schedule, err := ParseRefresh("0 0 * * *", time.UTC)
	require.NoError(t, err)

	e := model.Event{ID: "ev-1", Name: "Trip", Emoji: "🏝", ColorHex: "#007AFF", Date: day(2025, time.January, 4)}
	now := time.Date(2025, time.January, 1, 12, 0, 0, 0, time.UTC)

	timeline := BuildTimeline(e, now, schedule, 4)
	require.Len(t, timeline, 4)

	assert.Equal(t, now, timeline[0].At)
	assertInstant(t, day(2025, time.January, 2), timeline[1].At)
	assertInstant(t, day(2025, time.January, 4), timeline[3].At)

	days := []int{timeline[0].Days, timeline[1].Days, timeline[2].Days, timeline[3].Days}
	assert.Equal(t, []int{3, 2, 1, 0}, days)
	assert.Equal(t, "Days", timeline[0].Unit)
	assert.Equal(t, "Day", timeline[2].Unit)
	assert.Equal(t, "Days", timeline[3].Unit)
	assert.Equal(t, "Trip", timeline[3].Name)
	assert.Equal(t, "ev-1", timeline[3].EventID)
}

func TestWidgetServiceTimeline(t *testing.T) {
	ctx := context.Background()
	repos := newTestRepos(t)
	events := NewEventService(repos.events, zerolog.Nop())
	widget, err := NewWidgetService(repos.events, "0 0 * * *", 3, time.UTC)
	require.NoError(t, err)

	now := time.Date(2025, time.June, 1, 10, 0, 0, 0, time.UTC)

	_, err = events.Save(ctx, EventForm{Name: "Gone", Date: day(2025, time.May, 1)}, "")
	require.NoError(t, err)
	_, err = widget.Timeline(ctx, "", now)
	assert.ErrorIs(t, err, ErrNoWidgetEvent)

	later, err := events.Save(ctx, EventForm{Name: "Later", Date: day(2025, time.July, 1)}, "")
	require.NoError(t, err)
	_, err = events.Save(ctx, EventForm{Name: "Sooner", Date: day(2025, time.June, 5)}, "")
	require.NoError(t, err)

	timeline, err := widget.Timeline(ctx, "", now)
	require.NoError(t, err)
	require.Len(t, timeline, 3)
	assert.Equal(t, "Sooner", timeline[0].Name)
	assert.Equal(t, 4, timeline[0].Days)

	timeline, err = widget.Timeline(ctx, later.ID, now)
	require.NoError(t, err)
	assert.Equal(t, "Later", timeline[0].Name)
	assert.Equal(t, 30, timeline[0].Days)
}

func assertInstant(t *testing.T, want, got time.Time) {
	t.Helper()
	assert.True(t, want.Equal(got), "want %s, got %s", want, got)
}
