package model

import (
	"time"

	"countdowns/internal/clock"
)

// SettingsID is the primary key of the single settings row.
const SettingsID uint = 1

// Settings stores app-wide preferences.
type Settings struct {
	ID                    uint       `gorm:"primaryKey"`
	DisplayMode           clock.Mode `gorm:"default:Days"`
	ShowPreviewBackground bool
	UpdatedAt             time.Time
}

// DefaultSettings returns the preferences used before anything is saved.
func DefaultSettings(mode clock.Mode) Settings {
	return Settings{
		ID:                    SettingsID,
		DisplayMode:           mode,
		ShowPreviewBackground: true,
	}
}
