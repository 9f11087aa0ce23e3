package service

import (
	"context"
	"sort"
	"strings"
	"time"

	"countdowns/internal/clock"
	"countdowns/internal/model"
	"countdowns/internal/repository"
)

// EventView is an event with its values derived for a given instant.
type EventView struct {
	Event    model.Event
	Next     time.Time
	DaysLeft int
	Label    string
}

// Board groups events into the three list sections.
type Board struct {
	Mode     clock.Mode
	Today    []EventView
	Upcoming []EventView
	Past     []EventView
}

// Len returns the number of events on the board.
func (b Board) Len() int {
	return len(b.Today) + len(b.Upcoming) + len(b.Past)
}

// BoardService builds today/upcoming/past listings.
type BoardService struct {
	events   *repository.EventRepository
	settings *repository.SettingsRepository
}

func NewBoardService(events *repository.EventRepository, settings *repository.SettingsRepository) *BoardService {
	return &BoardService{events: events, settings: settings}
}

// Board loads all events and buckets them relative to now using the stored display mode.
func (s *BoardService) Board(ctx context.Context, now time.Time) (Board, error) {
	settings, err := s.settings.Get(ctx)
	if err != nil {
		return Board{}, err
	}
	events, err := s.events.List(ctx)
	if err != nil {
		return Board{}, err
	}
	return BuildBoard(events, now, settings.DisplayMode), nil
}

// View derives the display values of a single event.
func View(e model.Event, now time.Time, mode clock.Mode) EventView {
	rec := e.Record()
	next := clock.NextOccurrence(rec, now)
	if !rec.IncludesTime {
		next = clock.DateIn(next, now.Location())
	}
	return EventView{
		Event:    e,
		Next:     next,
		DaysLeft: clock.DaysUntil(rec, now),
		Label:    clock.FormattedRemaining(rec, now, mode),
	}
}

// BuildBoard buckets events. Upcoming is soonest first, past is most recent first.
func BuildBoard(events []model.Event, now time.Time, mode clock.Mode) Board {
	board := Board{Mode: mode}
	for _, e := range events {
		v := View(e, now, mode)
		switch {
		case v.DaysLeft == 0:
			board.Today = append(board.Today, v)
		case v.DaysLeft > 0:
			board.Upcoming = append(board.Upcoming, v)
		default:
			board.Past = append(board.Past, v)
		}
	}

	sortViews(board.Today, func(a, b EventView) bool { return a.Next.Before(b.Next) })
	sortViews(board.Upcoming, func(a, b EventView) bool { return a.DaysLeft < b.DaysLeft })
	sortViews(board.Past, func(a, b EventView) bool { return a.DaysLeft > b.DaysLeft })
	return board
}

func sortViews(views []EventView, less func(a, b EventView) bool) {
	sort.SliceStable(views, func(i, j int) bool {
		a, b := views[i], views[j]
		if less(a, b) {
			return true
		}
		if less(b, a) {
			return false
		}
		return strings.ToLower(a.Event.Name) < strings.ToLower(b.Event.Name)
	})
}
