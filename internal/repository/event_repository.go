package repository

import (
	"context"
	"fmt"
	"time"

	"gorm.io/gorm"

	"countdowns/internal/model"
)

// EventRepository handles CRUD for events.
type EventRepository struct {
	db *gorm.DB
}

func NewEventRepository(db *gorm.DB) *EventRepository {
	return &EventRepository{db: db}
}

func (r *EventRepository) Create(ctx context.Context, event *model.Event) error {
	if err := r.db.WithContext(ctx).Create(event).Error; err != nil {
		return fmt.Errorf("create event: %w", err)
	}
	return nil
}

func (r *EventRepository) Update(ctx context.Context, event *model.Event) error {
	if err := r.db.WithContext(ctx).Save(event).Error; err != nil {
		return fmt.Errorf("update event: %w", err)
	}
	return nil
}

func (r *EventRepository) FindByID(ctx context.Context, id string) (*model.Event, error) {
	var event model.Event
	if err := r.db.WithContext(ctx).Where("id = ?", id).First(&event).Error; err != nil {
		return nil, err
	}
	return &event, nil
}

// List returns every event ordered by its stored date.
func (r *EventRepository) List(ctx context.Context) ([]model.Event, error) {
	var events []model.Event
	if err := r.db.WithContext(ctx).Order("date ASC, name ASC").Find(&events).Error; err != nil {
		return nil, err
	}
	return events, nil
}

// ListDatedBefore returns events whose stored date is strictly before cutoff.
func (r *EventRepository) ListDatedBefore(ctx context.Context, cutoff time.Time) ([]model.Event, error) {
	var events []model.Event
	if err := r.db.WithContext(ctx).Where("date < ?", cutoff.UTC()).Order("date ASC").Find(&events).Error; err != nil {
		return nil, err
	}
	return events, nil
}

// Delete removes a single event. Deleting a missing ID reports gorm.ErrRecordNotFound.
func (r *EventRepository) Delete(ctx context.Context, id string) error {
	res := r.db.WithContext(ctx).Where("id = ?", id).Delete(&model.Event{})
	if res.Error != nil {
		return fmt.Errorf("delete event: %w", res.Error)
	}
	if res.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}

func (r *EventRepository) DeleteByIDs(ctx context.Context, ids []string) (int64, error) {
	if len(ids) == 0 {
		return 0, nil
	}
	res := r.db.WithContext(ctx).Where("id IN ?", ids).Delete(&model.Event{})
	if res.Error != nil {
		return 0, fmt.Errorf("delete events: %w", res.Error)
	}
	return res.RowsAffected, nil
}
