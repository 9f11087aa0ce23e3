package service

import (
	"context"
	"strings"
	"time"

	ics "github.com/arran4/golang-ical"
	"github.com/teambition/rrule-go"

	"countdowns/internal/clock"
	"countdowns/internal/model"
	"countdowns/internal/repository"
)

const exportProductID = "-//countdowns//events export//EN"

// ExportService renders events as an iCalendar document for calendar apps.
type ExportService struct {
	events *repository.EventRepository
	loc    *time.Location
}

func NewExportService(events *repository.EventRepository, loc *time.Location) *ExportService {
	if loc == nil {
		loc = time.Local
	}
	return &ExportService{events: events, loc: loc}
}

func (s *ExportService) ExportICS(ctx context.Context, now time.Time) (string, error) {
	events, err := s.events.List(ctx)
	if err != nil {
		return "", err
	}
	return BuildCalendar(events, now, s.loc).Serialize(), nil
}

// BuildCalendar converts events into VEVENTs. All-day events keep their stored calendar date.
func BuildCalendar(events []model.Event, now time.Time, loc *time.Location) *ics.Calendar {
	cal := ics.NewCalendar()
	cal.SetMethod(ics.MethodPublish)
	cal.SetProductId(exportProductID)
	cal.SetXWRCalName("Countdowns")

	for _, e := range events {
		vevent := cal.AddEvent(e.ID)
		vevent.SetDtStampTime(now.UTC())
		if !e.CreatedAt.IsZero() {
			vevent.SetCreatedTime(e.CreatedAt)
		}
		if !e.UpdatedAt.IsZero() {
			vevent.SetModifiedAt(e.UpdatedAt)
		}
		vevent.SetSummary(strings.TrimSpace(e.Emoji + " " + e.Name))
		if e.Description != "" {
			vevent.SetDescription(e.Description)
		}

		start := e.Date.In(loc)
		if e.IncludesTime {
			vevent.SetStartAt(start)
		} else {
			start = clock.DateIn(e.Record().BaseDate, loc)
			vevent.SetAllDayStartAt(start)
			vevent.SetAllDayEndAt(start.AddDate(0, 0, 1))
		}

		if rule := RecurrenceRule(e.Repeat, start); rule != "" {
			vevent.AddProperty(ics.ComponentPropertyRrule, rule)
		}
	}
	return cal
}

// RecurrenceRule returns the RRULE value equivalent to the clock's stepping
// for an event starting at start, or "" for non-repeating events. Days past
// the 28th use BYMONTHDAY=d,-1 with BYSETPOS=1 so shorter months fall back to
// their last day.
func RecurrenceRule(rule clock.Rule, start time.Time) string {
	var opt rrule.ROption
	switch rule {
	case clock.RuleDaily:
		opt.Freq = rrule.DAILY
	case clock.RuleWeekly:
		opt.Freq = rrule.WEEKLY
	case clock.RuleMonthly:
		opt.Freq = rrule.MONTHLY
		if day := start.Day(); day > 28 {
			opt.Bymonthday = []int{day, -1}
			opt.Bysetpos = []int{1}
		}
	case clock.RuleYearly:
		opt.Freq = rrule.YEARLY
		if start.Month() == time.February && start.Day() == 29 {
			opt.Bymonth = []int{2}
			opt.Bymonthday = []int{29, -1}
			opt.Bysetpos = []int{1}
		}
	default:
		return ""
	}
	return opt.RRuleString()
}
