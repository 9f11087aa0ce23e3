package repository

import (
	"context"
	"errors"
	"fmt"

	"gorm.io/gorm"

	"countdowns/internal/clock"
	"countdowns/internal/model"
)

// SettingsRepository persists the single preferences row.
type SettingsRepository struct {
	db          *gorm.DB
	defaultMode clock.Mode
}

func NewSettingsRepository(db *gorm.DB, defaultMode clock.Mode) *SettingsRepository {
	return &SettingsRepository{db: db, defaultMode: defaultMode}
}

// Get returns the stored settings, or defaults when nothing was saved yet.
func (r *SettingsRepository) Get(ctx context.Context) (model.Settings, error) {
	var settings model.Settings
	err := r.db.WithContext(ctx).First(&settings, model.SettingsID).Error
	switch {
	case err == nil:
		settings.DisplayMode = clock.ParseMode(string(settings.DisplayMode))
		return settings, nil
	case errors.Is(err, gorm.ErrRecordNotFound):
		return model.DefaultSettings(r.defaultMode), nil
	default:
		return model.Settings{}, fmt.Errorf("find settings: %w", err)
	}
}

func (r *SettingsRepository) Save(ctx context.Context, settings model.Settings) error {
	settings.ID = model.SettingsID
	if err := r.db.WithContext(ctx).Save(&settings).Error; err != nil {
		return fmt.Errorf("save settings: %w", err)
	}
	return nil
}
