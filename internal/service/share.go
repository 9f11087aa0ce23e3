package service

import (
	"fmt"
	"strings"
	"time"

	"countdowns/internal/clock"
	"countdowns/internal/model"
)

// ShareText renders the plain-text card sent when an event is shared.
func ShareText(e model.Event, now time.Time, mode clock.Mode) string {
	var sb strings.Builder
	sb.WriteString(fmt.Sprintf("🎯 Countdown: %s\n", e.Name))
	sb.WriteString(fmt.Sprintf("⏱ %s %s\n", clock.FormattedRemaining(e.Record(), now, mode), e.Emoji))
	sb.WriteString(fmt.Sprintf("🔔 Priority: %s\n", e.Priority.DisplayName()))
	if e.Description != "" {
		sb.WriteString("\n")
		sb.WriteString(e.Description)
		sb.WriteString("\n")
	}
	sb.WriteString("\nShared from my Countdown App")
	return sb.String()
}
