package service

import (
	"context"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/robfig/cron/v3"

	"countdowns/internal/clock"
	"countdowns/internal/model"
	"countdowns/internal/repository"
)

const defaultWidgetEntries = 7

// WidgetEntry is one point of the home-screen widget timeline.
type WidgetEntry struct {
	At       time.Time
	EventID  string
	Name     string
	Emoji    string
	ColorHex string
	Days     int
	Unit     string
}

// WidgetService computes widget timelines. Refresh instants come from a
// cron schedule; nothing is ever run in the background.
type WidgetService struct {
	events   *repository.EventRepository
	schedule cron.Schedule
	entries  int
}

// NewWidgetService accepts a standard 5-field cron spec, a descriptor such as
// "@daily", or a plain "HH:MM" daily refresh time. Specs without a CRON_TZ
// prefix are evaluated in loc.
func NewWidgetService(events *repository.EventRepository, refresh string, entries int, loc *time.Location) (*WidgetService, error) {
	schedule, err := ParseRefresh(refresh, loc)
	if err != nil {
		return nil, err
	}
	if entries <= 0 {
		entries = defaultWidgetEntries
	}
	return &WidgetService{events: events, schedule: schedule, entries: entries}, nil
}

// ParseRefresh parses a widget refresh spec.
func ParseRefresh(refresh string, loc *time.Location) (cron.Schedule, error) {
	spec := strings.TrimSpace(refresh)
	if spec == "" {
		spec = "0 0 * * *"
	}
	if strings.Count(spec, ":") == 1 && !strings.Contains(spec, " ") {
		daily, err := buildDailySpec(spec)
		if err != nil {
			return nil, err
		}
		spec = daily
	}
	if loc != nil && !strings.HasPrefix(spec, "TZ=") && !strings.HasPrefix(spec, "CRON_TZ=") {
		spec = "CRON_TZ=" + loc.String() + " " + spec
	}
	schedule, err := cron.ParseStandard(spec)
	if err != nil {
		return nil, fmt.Errorf("parse widget refresh %q: %w", refresh, err)
	}
	return schedule, nil
}

// Timeline returns the entries for eventID, or for the nearest event that is
// today or upcoming when eventID is empty.
func (s *WidgetService) Timeline(ctx context.Context, eventID string, now time.Time) ([]WidgetEntry, error) {
	var event *model.Event
	if eventID != "" {
		found, err := s.events.FindByID(ctx, eventID)
		if err != nil {
			return nil, err
		}
		event = found
	} else {
		events, err := s.events.List(ctx)
		if err != nil {
			return nil, err
		}
		event = nearestEvent(events, now)
		if event == nil {
			return nil, ErrNoWidgetEvent
		}
	}
	return BuildTimeline(*event, now, s.schedule, s.entries), nil
}

// BuildTimeline starts with an entry at now, followed by entries at the next
// refresh instants of schedule.
func BuildTimeline(e model.Event, now time.Time, schedule cron.Schedule, entries int) []WidgetEntry {
	timeline := make([]WidgetEntry, 0, entries)
	at := now
	for i := 0; i < entries; i++ {
		if i > 0 {
			next := schedule.Next(at)
			if next.IsZero() || !next.After(at) {
				break
			}
			at = next
		}
		days := clock.DaysUntil(e.Record(), at)
		timeline = append(timeline, WidgetEntry{
			At:       at,
			EventID:  e.ID,
			Name:     e.Name,
			Emoji:    e.Emoji,
			ColorHex: e.ColorHex,
			Days:     days,
			Unit:     dayUnit(days),
		})
	}
	return timeline
}

func nearestEvent(events []model.Event, now time.Time) *model.Event {
	var best *model.Event
	bestDays := 0
	for i := range events {
		days := events[i].DaysLeft(now)
		if days < 0 {
			continue
		}
		if best == nil || days < bestDays || (days == bestDays && events[i].Name < best.Name) {
			best = &events[i]
			bestDays = days
		}
	}
	return best
}

func dayUnit(days int) string {
	if days == 1 || days == -1 {
		return "Day"
	}
	return "Days"
}

// buildDailySpec turns "HH:MM" into a standard cron spec.
func buildDailySpec(timeStr string) (string, error) {
	parts := strings.Split(timeStr, ":")
	if len(parts) != 2 {
		return "", fmt.Errorf("invalid time %q, expected HH:MM", timeStr)
	}
	hour, err := strconv.Atoi(parts[0])
	if err != nil || hour < 0 || hour > 23 {
		return "", fmt.Errorf("invalid hour in %q", timeStr)
	}
	minute, err := strconv.Atoi(parts[1])
	if err != nil || minute < 0 || minute > 59 {
		return "", fmt.Errorf("invalid minute in %q", timeStr)
	}
	// cron format: minute hour dom month dow
	return fmt.Sprintf("%d %d * * *", minute, hour), nil
}
