package service

import (
	"context"
	"regexp"
	"strings"
	"time"

	"github.com/rs/zerolog"

	"countdowns/internal/clock"
	"countdowns/internal/model"
	"countdowns/internal/repository"
)

var colorHexRe = regexp.MustCompile(`^#[0-9A-Fa-f]{6}$`)

// EventForm represents data required to create or edit an event.
type EventForm struct {
	Name         string
	Description  string
	Emoji        string
	Priority     model.Priority
	ColorHex     string
	Date         time.Time
	IncludesTime bool
	Repeat       clock.Rule
	PhotoFileID  string
}

// FormFromEvent prefills a form for editing.
func FormFromEvent(e model.Event) EventForm {
	return EventForm{
		Name:         e.Name,
		Description:  e.Description,
		Emoji:        e.Emoji,
		Priority:     e.Priority,
		ColorHex:     e.ColorHex,
		Date:         e.Date,
		IncludesTime: e.IncludesTime,
		Repeat:       e.Repeat,
		PhotoFileID:  e.PhotoFileID,
	}
}

// EventService wraps event CRUD and form normalization.
type EventService struct {
	repo *repository.EventRepository
	log  zerolog.Logger
}

func NewEventService(repo *repository.EventRepository, log zerolog.Logger) *EventService {
	return &EventService{repo: repo, log: log.With().Str("component", "events").Logger()}
}

// Save creates a new event, or updates the event with existingID when it is
// not empty.
func (s *EventService) Save(ctx context.Context, form EventForm, existingID string) (*model.Event, error) {
	form, err := normalizeForm(form)
	if err != nil {
		return nil, err
	}

	if existingID != "" {
		event, err := s.repo.FindByID(ctx, existingID)
		if err != nil {
			return nil, err
		}
		applyForm(event, form)
		if err := s.repo.Update(ctx, event); err != nil {
			return nil, err
		}
		s.log.Info().Str("id", event.ID).Str("repeat", string(event.Repeat)).Msg("event updated")
		return event, nil
	}

	event := &model.Event{}
	applyForm(event, form)
	if err := s.repo.Create(ctx, event); err != nil {
		return nil, err
	}
	s.log.Info().Str("id", event.ID).Str("repeat", string(event.Repeat)).Msg("event created")
	return event, nil
}

func (s *EventService) Get(ctx context.Context, id string) (*model.Event, error) {
	return s.repo.FindByID(ctx, id)
}

func (s *EventService) List(ctx context.Context) ([]model.Event, error) {
	return s.repo.List(ctx)
}

func (s *EventService) Delete(ctx context.Context, id string) error {
	if err := s.repo.Delete(ctx, id); err != nil {
		return err
	}
	s.log.Info().Str("id", id).Msg("event deleted")
	return nil
}

func (s *EventService) UpdatePriority(ctx context.Context, id string, p model.Priority) (*model.Event, error) {
	return s.update(ctx, id, func(e *model.Event) { e.Priority = p })
}

func (s *EventService) UpdateDescription(ctx context.Context, id, description string) (*model.Event, error) {
	return s.update(ctx, id, func(e *model.Event) { e.Description = strings.TrimSpace(description) })
}

func (s *EventService) UpdatePhoto(ctx context.Context, id, fileID string) (*model.Event, error) {
	return s.update(ctx, id, func(e *model.Event) { e.PhotoFileID = fileID })
}

// DeleteAllPast removes events that already happened and will not repeat.
func (s *EventService) DeleteAllPast(ctx context.Context, now time.Time) (int64, error) {
	candidates, err := s.repo.ListDatedBefore(ctx, clock.StartOfDay(now))
	if err != nil {
		return 0, err
	}
	var ids []string
	for _, e := range candidates {
		if e.IsPast(now) {
			ids = append(ids, e.ID)
		}
	}
	n, err := s.repo.DeleteByIDs(ctx, ids)
	if err != nil {
		return 0, err
	}
	s.log.Info().Int64("count", n).Msg("past events deleted")
	return n, nil
}

func (s *EventService) update(ctx context.Context, id string, mutate func(*model.Event)) (*model.Event, error) {
	event, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	mutate(event)
	if err := s.repo.Update(ctx, event); err != nil {
		return nil, err
	}
	return event, nil
}

func normalizeForm(form EventForm) (EventForm, error) {
	form.Name = strings.TrimSpace(form.Name)
	if form.Name == "" {
		return form, ErrNameRequired
	}
	if form.Date.IsZero() {
		return form, ErrDateRequired
	}
	form.Description = strings.TrimSpace(form.Description)
	form.Emoji = strings.TrimSpace(form.Emoji)
	if form.Emoji == "" {
		form.Emoji = model.DefaultEmoji
	}
	form.Priority = model.ParsePriority(string(form.Priority))
	form.Repeat = clock.ParseRule(string(form.Repeat))

	form.ColorHex = strings.TrimSpace(form.ColorHex)
	switch {
	case form.ColorHex == "":
		form.ColorHex = model.RandomColor()
	case !strings.HasPrefix(form.ColorHex, "#"):
		form.ColorHex = "#" + form.ColorHex
	}
	if !colorHexRe.MatchString(form.ColorHex) {
		return form, ErrInvalidColor
	}
	form.ColorHex = strings.ToUpper(form.ColorHex)

	// All-day dates keep their calendar date at UTC midnight.
	if !form.IncludesTime {
		form.Date = clock.DateIn(form.Date, time.UTC)
	}
	return form, nil
}

func applyForm(e *model.Event, form EventForm) {
	e.Name = form.Name
	e.Description = form.Description
	e.Emoji = form.Emoji
	e.Priority = form.Priority
	e.ColorHex = form.ColorHex
	e.Date = form.Date.UTC()
	e.IncludesTime = form.IncludesTime
	e.Repeat = form.Repeat
	e.PhotoFileID = form.PhotoFileID
}
