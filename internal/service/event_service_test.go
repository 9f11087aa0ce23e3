package service

import (
	"context"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"countdowns/internal/clock"
	"countdowns/internal/model"
)

func TestEventServiceSaveFillsDefaults(t *testing.T) {
	ctx := context.Background()
	repos := newTestRepos(t)
	svc := NewEventService(repos.events, zerolog.Nop())

	event, err := svc.Save(ctx, EventForm{
		Name: "  Birthday  ",
		Date: time.Date(2025, time.September, 9, 15, 30, 0, 0, time.UTC),
	}, "")
	require.NoError(t, err)

	assert.Equal(t, "Birthday", event.Name)
	assert.Equal(t, model.DefaultEmoji, event.Emoji)
	assert.Equal(t, model.PriorityMedium, event.Priority)
	assert.Equal(t, clock.RuleNone, event.Repeat)
	assert.Contains(t, model.Palette, event.ColorHex)
	assert.True(t, event.Date.Equal(day(2025, time.September, 9)), "date truncated without time: %s", event.Date)

	stored, err := svc.Get(ctx, event.ID)
	require.NoError(t, err)
	assert.Equal(t, event.ColorHex, stored.ColorHex)
}

func TestEventServiceSaveKeepsTimeWhenIncluded(t *testing.T) {
	repos := newTestRepos(t)
	svc := NewEventService(repos.events, zerolog.Nop())

	at := time.Date(2025, time.September, 9, 15, 30, 0, 0, time.UTC)
	event, err := svc.Save(context.Background(), EventForm{
		Name:         "Standup",
		Date:         at,
		IncludesTime: true,
		Repeat:       "daily",
		ColorHex:     "ff9500",
		Priority:     "High",
	}, "")
	require.NoError(t, err)

	assert.True(t, event.Date.Equal(at))
	assert.Equal(t, clock.RuleDaily, event.Repeat)
	assert.Equal(t, "#FF9500", event.ColorHex)
	assert.Equal(t, model.PriorityLarge, event.Priority)
}

func TestEventServiceSaveValidation(t *testing.T) {
	repos := newTestRepos(t)
	svc := NewEventService(repos.events, zerolog.Nop())
	ctx := context.Background()

	_, err := svc.Save(ctx, EventForm{Name: " ", Date: day(2025, time.January, 1)}, "")
	assert.ErrorIs(t, err, ErrNameRequired)

	_, err = svc.Save(ctx, EventForm{Name: "No date"}, "")
	assert.ErrorIs(t, err, ErrDateRequired)

	_, err = svc.Save(ctx, EventForm{Name: "Bad color", Date: day(2025, time.January, 1), ColorHex: "#12"}, "")
	assert.ErrorIs(t, err, ErrInvalidColor)

	_, err = svc.Save(ctx, EventForm{Name: "Ghost", Date: day(2025, time.January, 1)}, "missing-id")
	assert.ErrorIs(t, err, gorm.ErrRecordNotFound)
}

func TestEventServiceUpdate(t *testing.T) {
	ctx := context.Background()
	repos := newTestRepos(t)
	svc := NewEventService(repos.events, zerolog.Nop())

	created, err := svc.Save(ctx, EventForm{Name: "Exam", Date: day(2025, time.June, 20), ColorHex: "#34C759"}, "")
	require.NoError(t, err)

	form := FormFromEvent(*created)
	form.Name = "Final exam"
	form.Repeat = clock.RuleYearly
	updated, err := svc.Save(ctx, form, created.ID)
	require.NoError(t, err)
	assert.Equal(t, created.ID, updated.ID)
	assert.Equal(t, "Final exam", updated.Name)
	assert.Equal(t, clock.RuleYearly, updated.Repeat)
	assert.Equal(t, "#34C759", updated.ColorHex)

	_, err = svc.UpdatePriority(ctx, created.ID, model.PriorityLarge)
	require.NoError(t, err)
	_, err = svc.UpdateDescription(ctx, created.ID, "  room 101 ")
	require.NoError(t, err)
	_, err = svc.UpdatePhoto(ctx, created.ID, "photo-file-id")
	require.NoError(t, err)

	got, err := svc.Get(ctx, created.ID)
	require.NoError(t, err)
	assert.Equal(t, model.PriorityLarge, got.Priority)
	assert.Equal(t, "room 101", got.Description)
	assert.True(t, got.HasPhoto())

	all, err := svc.List(ctx)
	require.NoError(t, err)
	assert.Len(t, all, 1)

	require.NoError(t, svc.Delete(ctx, created.ID))
	assert.ErrorIs(t, svc.Delete(ctx, created.ID), gorm.ErrRecordNotFound)
}

func TestEventServiceDeleteAllPast(t *testing.T) {
	ctx := context.Background()
	repos := newTestRepos(t)
	svc := NewEventService(repos.events, zerolog.Nop())
	now := time.Date(2025, time.March, 10, 12, 0, 0, 0, time.UTC)

	forms := []EventForm{
		{Name: "Finished", Date: day(2025, time.January, 1)},
		{Name: "Anniversary", Date: day(2020, time.January, 1), Repeat: clock.RuleYearly},
		{Name: "Today", Date: day(2025, time.March, 10)},
		{Name: "Soon", Date: day(2025, time.April, 1)},
	}
	for _, f := range forms {
		_, err := svc.Save(ctx, f, "")
		require.NoError(t, err)
	}

	n, err := svc.DeleteAllPast(ctx, now)
	require.NoError(t, err)
	assert.EqualValues(t, 1, n)

	left, err := svc.List(ctx)
	require.NoError(t, err)
	names := make([]string, 0, len(left))
	for _, e := range left {
		names = append(names, e.Name)
	}
	assert.ElementsMatch(t, []string{"Anniversary", "Today", "Soon"}, names)
}

func TestEventServiceAllDayDateSurvivesZoneChange(t *testing.T) {
	ctx := context.Background()
	repos := newTestRepos(t)
	svc := NewEventService(repos.events, zerolog.Nop())

	entered := time.FixedZone("UTC+3", 3*60*60)
	west := time.FixedZone("UTC-5", -5*60*60)
	event, err := svc.Save(ctx, EventForm{
		Name: "Moving day",
		Date: time.Date(2025, time.June, 1, 0, 0, 0, 0, entered),
	}, "")
	require.NoError(t, err)

	stored, err := svc.Get(ctx, event.ID)
	require.NoError(t, err)
	assert.True(t, stored.Date.Equal(day(2025, time.June, 1)), "stored %s", stored.Date)

	for _, loc := range []*time.Location{entered, west, time.UTC} {
		now := time.Date(2025, time.June, 1, 9, 0, 0, 0, loc)
		assert.True(t, stored.IsToday(now), "zone=%s", loc)
	}

	n, err := svc.DeleteAllPast(ctx, time.Date(2025, time.June, 1, 23, 0, 0, 0, west))
	require.NoError(t, err)
	assert.EqualValues(t, 0, n)

	n, err = svc.DeleteAllPast(ctx, time.Date(2025, time.June, 2, 1, 0, 0, 0, west))
	require.NoError(t, err)
	assert.EqualValues(t, 1, n)
}
