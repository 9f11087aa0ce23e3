package service

import (
	"context"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"countdowns/internal/clock"
	"countdowns/internal/model"
)

func names(views []EventView) []string {
	out := make([]string, 0, len(views))
	for _, v := range views {
		out = append(out, v.Event.Name)
	}
	return out
}

func TestBuildBoardBucketsAndOrder(t *testing.T) {
	now := time.Date(2025, time.March, 10, 9, 0, 0, 0, time.UTC)
	events := []model.Event{
		{Name: "Far", Date: day(2025, time.December, 25)},
		{Name: "Near", Date: day(2025, time.March, 12)},
		{Name: "Payday", Date: day(2025, time.January, 10), Repeat: clock.RuleMonthly},
		{Name: "Lunch", Date: time.Date(2025, time.March, 10, 12, 0, 0, 0, time.UTC), IncludesTime: true},
		{Name: "Breakfast", Date: time.Date(2025, time.March, 10, 8, 0, 0, 0, time.UTC), IncludesTime: true},
		{Name: "Old", Date: day(2024, time.March, 10)},
		{Name: "Recent", Date: day(2025, time.March, 1)},
	}

	board := BuildBoard(events, now, clock.ModeDays)

	assert.Equal(t, 7, board.Len())
	assert.Equal(t, []string{"Payday", "Breakfast", "Lunch"}, names(board.Today))
	assert.Equal(t, []string{"Near", "Far"}, names(board.Upcoming))
	assert.Equal(t, []string{"Recent", "Old"}, names(board.Past))

	assert.Equal(t, "2 days left", board.Upcoming[0].Label)
	assert.Equal(t, "9 days ago", board.Past[0].Label)
	for _, v := range board.Today {
		assert.Equal(t, "Today", v.Label)
	}
}

func TestBuildBoardTiesByName(t *testing.T) {
	now := day(2025, time.March, 10)
	events := []model.Event{
		{Name: "beta", Date: day(2025, time.March, 20)},
		{Name: "Alpha", Date: day(2025, time.March, 20)},
	}
	board := BuildBoard(events, now, clock.ModeAutomatic)

	assert.Equal(t, []string{"Alpha", "beta"}, names(board.Upcoming))
	assert.Equal(t, "1 week, 3 days left", board.Upcoming[0].Label)
}

func TestBoardServiceUsesStoredMode(t *testing.T) {
	ctx := context.Background()
	repos := newTestRepos(t)
	events := NewEventService(repos.events, zerolog.Nop())
	settings := NewSettingsService(repos.settings, zerolog.Nop())
	boards := NewBoardService(repos.events, repos.settings)

	_, err := events.Save(ctx, EventForm{Name: "Launch", Date: day(2025, time.May, 1)}, "")
	require.NoError(t, err)
	now := day(2025, time.January, 1)

	board, err := boards.Board(ctx, now)
	require.NoError(t, err)
	require.Len(t, board.Upcoming, 1)
	assert.Equal(t, clock.ModeDays, board.Mode)
	assert.Equal(t, "120 days left", board.Upcoming[0].Label)

	require.NoError(t, settings.SetDisplayMode(ctx, clock.ModeAutomatic))
	board, err = boards.Board(ctx, now)
	require.NoError(t, err)
	assert.Equal(t, "4 months left", board.Upcoming[0].Label)
}

func TestSettingsService(t *testing.T) {
	ctx := context.Background()
	svc := NewSettingsService(newTestRepos(t).settings, zerolog.Nop())

	mode, err := svc.DisplayMode(ctx)
	require.NoError(t, err)
	assert.Equal(t, clock.ModeDays, mode)

	require.NoError(t, svc.SetDisplayMode(ctx, "years"))
	mode, err = svc.DisplayMode(ctx)
	require.NoError(t, err)
	assert.Equal(t, clock.ModeAutomatic, mode)

	show, err := svc.ShowPreviewBackground(ctx)
	require.NoError(t, err)
	assert.True(t, show)

	show, err = svc.TogglePreviewBackground(ctx)
	require.NoError(t, err)
	assert.False(t, show)

	mode, err = svc.DisplayMode(ctx)
	require.NoError(t, err)
	assert.Equal(t, clock.ModeAutomatic, mode, "toggle keeps the display mode")
}

func TestShareText(t *testing.T) {
	e := model.Event{
		Name:        "Concert",
		Emoji:       "🎸",
		Priority:    model.PriorityLarge,
		Date:        day(2025, time.March, 15),
		Description: "Front row",
	}
	now := day(2025, time.March, 10)

	want := "🎯 Countdown: Concert\n" +
		"⏱ 5 days left 🎸\n" +
		"🔔 Priority: High\n" +
		"\n" +
		"Front row\n" +
		"\n" +
		"Shared from my Countdown App"
	assert.Equal(t, want, ShareText(e, now, clock.ModeDays))

	e.Description = ""
	assert.Equal(t, "🎯 Countdown: Concert\n⏱ 5 days left 🎸\n🔔 Priority: High\n\nShared from my Countdown App", ShareText(e, now, clock.ModeDays))
}
