package model

import "strings"

// Priority ranks events; the stored values match the original app.
type Priority string

const (
	PrioritySmall  Priority = "small"
	PriorityMedium Priority = "medium"
	PriorityLarge  Priority = "large"
)

var Priorities = []Priority{PrioritySmall, PriorityMedium, PriorityLarge}

// DisplayName returns the label shown to users.
func (p Priority) DisplayName() string {
	switch p {
	case PrioritySmall:
		return "Low"
	case PriorityLarge:
		return "High"
	default:
		return "Medium"
	}
}

// Next cycles low -> medium -> high -> low.
func (p Priority) Next() Priority {
	switch p {
	case PrioritySmall:
		return PriorityMedium
	case PriorityMedium:
		return PriorityLarge
	default:
		return PrioritySmall
	}
}

// ParsePriority accepts stored values or display names. Unknown input is medium.
func ParsePriority(raw string) Priority {
	switch strings.ToLower(strings.TrimSpace(raw)) {
	case "small", "low":
		return PrioritySmall
	case "large", "high":
		return PriorityLarge
	default:
		return PriorityMedium
	}
}
