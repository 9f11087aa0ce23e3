package model

import (
	"math/rand"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"countdowns/internal/clock"
)

// DefaultEmoji is used when an event is saved without one.
const DefaultEmoji = "📅"

// FallbackColorHex is stored when no usable color is known.
const FallbackColorHex = "#808080"

// Palette holds the colors a new event is randomly assigned from.
var Palette = []string{
	"#FF3B30", // red
	"#007AFF", // blue
	"#34C759", // green
	"#FFCC00", // yellow
	"#AF52DE", // purple
	"#FF9500", // orange
	"#FF2D55", // pink
}

// Event is a single countdown tracked by the app.
type Event struct {
	ID           string `gorm:"primaryKey;size:36"`
	Name         string `gorm:"index"`
	Description  string
	Emoji        string
	Priority     Priority `gorm:"default:medium"`
	ColorHex     string
	Date         time.Time  `gorm:"index"`
	IncludesTime bool       `gorm:"default:false"`
	Repeat       clock.Rule `gorm:"default:None"`
	PhotoFileID  string
	CreatedAt    time.Time
	UpdatedAt    time.Time
}

// BeforeCreate assigns a UUID when the caller did not.
func (e *Event) BeforeCreate(tx *gorm.DB) error {
	if e.ID == "" {
		e.ID = uuid.NewString()
	}
	return nil
}

// Record projects the fields the clock needs. All-day dates are read as
// their UTC calendar date.
func (e Event) Record() clock.Record {
	base := e.Date
	if !e.IncludesTime {
		base = base.UTC()
	}
	return clock.Record{
		BaseDate:     base,
		IncludesTime: e.IncludesTime,
		Rule:         e.Repeat,
	}
}

func (e Event) NextDate(now time.Time) time.Time {
	return clock.NextOccurrence(e.Record(), now)
}

func (e Event) DaysLeft(now time.Time) int {
	return clock.DaysUntil(e.Record(), now)
}

func (e Event) IsToday(now time.Time) bool    { return e.DaysLeft(now) == 0 }
func (e Event) IsUpcoming(now time.Time) bool { return e.DaysLeft(now) > 0 }
func (e Event) IsPast(now time.Time) bool     { return e.DaysLeft(now) < 0 }

// HasPhoto reports whether a photo reference is attached.
func (e Event) HasPhoto() bool {
	return e.PhotoFileID != ""
}

// RandomColor picks a palette color.
func RandomColor() string {
	return Palette[rand.Intn(len(Palette))]
}
