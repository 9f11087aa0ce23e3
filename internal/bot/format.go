package bot

import (
	"fmt"
	"html"
	"strings"
	"time"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"

	"countdowns/internal/clock"
	"countdowns/internal/model"
	"countdowns/internal/service"
)

const (
	btnSkip         = "⏭️ Skip"
	btnConfirm      = "✅ Confirm"
	btnCancel       = "↩️ Cancel"
	btnCancelDialog = "⏪ Stop"
	menuLabelNew    = "➕ New countdown"
	menuLabelEvents = "📋 Countdowns"
	menuLabelWidget = "🧩 Widget"
	menuLabelHelp   = "ℹ️ Help"
)

const helpText = "• /new — add a countdown step by step\n" +
	"• /events — today, upcoming and past countdowns\n" +
	"• /mode — show days only or years/months/weeks/days\n" +
	"• /widget — preview the home-screen widget\n" +
	"• /export — download an .ics file for your calendar\n" +
	"• /clearpast — delete past countdowns that don't repeat\n" +
	"• /background — show or hide photos in details\n" +
	"• /cancel — stop the current form"

const (
	// maxMessageLen is Telegram's limit on message text.
	maxMessageLen = 4096
	// maxBoardButtons bounds the inline keyboard under the board.
	maxBoardButtons = 50
	boardNameLen    = 64
)

// formatBoard renders the board within maxMessageLen and returns the views
// that made it into the text. Sections that do not fit end with a
// "…and N more" line.
func formatBoard(board service.Board, loc *time.Location) (string, []service.EventView) {
	var sb strings.Builder
	sb.WriteString("📋 <b>Countdowns</b>\n")
	sections := []struct {
		title string
		views []service.EventView
	}{
		{"📍 <b>Today</b>", board.Today},
		{"⏳ <b>Upcoming</b>", board.Upcoming},
		{"🕰 <b>Past</b>", board.Past},
	}

	var shown []service.EventView
	for i, section := range sections {
		if len(section.views) == 0 {
			continue
		}
		// Room kept for the overflow lines of this and later sections.
		reserve := 0
		for _, later := range sections[i:] {
			if len(later.views) > 0 {
				reserve += len(moreLine(len(later.views)))
			}
		}
		header := "\n" + section.title + "\n"
		if sb.Len()+len(header)+reserve > maxMessageLen {
			break
		}
		sb.WriteString(header)
		n := 0
		for _, v := range section.views {
			entry := boardEntry(v, loc)
			if sb.Len()+len(entry)+reserve > maxMessageLen {
				break
			}
			sb.WriteString(entry)
			shown = append(shown, v)
			n++
		}
		if rest := len(section.views) - n; rest > 0 {
			sb.WriteString(moreLine(rest))
		}
	}
	return strings.TrimSpace(sb.String()), shown
}

func boardEntry(v service.EventView, loc *time.Location) string {
	var sb strings.Builder
	sb.WriteString(fmt.Sprintf("%s <b>%s</b> · %s\n", escape(v.Event.Emoji), escape(shortTitle(v.Event.Name, boardNameLen)), escape(v.Label)))
	sb.WriteString(fmt.Sprintf("   📆 %s", formatWhen(v.Next, v.Event.IncludesTime, loc)))
	if v.Event.Repeat.Repeats() {
		sb.WriteString(fmt.Sprintf(" · 🔁 %s", v.Event.Repeat))
	}
	sb.WriteByte('\n')
	return sb.String()
}

func moreLine(n int) string {
	return fmt.Sprintf("   …and %d more\n", n)
}

func formatEventDetail(v service.EventView, loc *time.Location) string {
	e := v.Event
	var sb strings.Builder
	sb.WriteString(fmt.Sprintf("%s <b>%s</b>\n", escape(e.Emoji), escape(e.Name)))
	sb.WriteString(fmt.Sprintf("⏱ %s\n", escape(v.Label)))
	sb.WriteString(fmt.Sprintf("📆 %s\n", formatWhen(v.Next, e.IncludesTime, loc)))
	if e.Repeat.Repeats() {
		sb.WriteString(fmt.Sprintf("🔁 %s (since %s)\n", e.Repeat, formatWhen(e.Date, e.IncludesTime, loc)))
	}
	sb.WriteString(fmt.Sprintf("🔔 %s\n", priorityLabel(e.Priority)))
	if e.Description != "" {
		sb.WriteString(fmt.Sprintf("📝 %s\n", escape(e.Description)))
	}
	return strings.TrimSpace(sb.String())
}

func formatTimeline(entries []service.WidgetEntry, loc *time.Location) string {
	if len(entries) == 0 {
		return "Nothing upcoming to put on the widget."
	}
	first := entries[0]
	var sb strings.Builder
	sb.WriteString(fmt.Sprintf("🧩 <b>Widget</b>: %s %s\n", escape(first.Emoji), escape(first.Name)))
	sb.WriteString(fmt.Sprintf("<b>%d</b> %s\n\n", first.Days, first.Unit))
	sb.WriteString("Timeline:\n")
	for _, e := range entries {
		sb.WriteString(fmt.Sprintf("• %s → %d %s\n", e.At.In(loc).Format("Mon 02 Jan 15:04"), e.Days, e.Unit))
	}
	return strings.TrimSpace(sb.String())
}

func formatWhen(t time.Time, includesTime bool, loc *time.Location) string {
	if t.IsZero() {
		return "—"
	}
	if includesTime {
		return t.In(loc).Format("Mon, 02 Jan 2006 15:04")
	}
	return t.Format("Mon, 02 Jan 2006")
}

func boardKeyboard(views []service.EventView) tgbotapi.InlineKeyboardMarkup {
	if len(views) > maxBoardButtons {
		views = views[:maxBoardButtons]
	}
	rows := make([][]tgbotapi.InlineKeyboardButton, 0, len(views))
	for _, v := range views {
		label := fmt.Sprintf("%s %s", v.Event.Emoji, shortTitle(v.Event.Name, 24))
		rows = append(rows, tgbotapi.NewInlineKeyboardRow(
			tgbotapi.NewInlineKeyboardButtonData(label, cbShowPrefix+v.Event.ID),
		))
	}
	return tgbotapi.NewInlineKeyboardMarkup(rows...)
}

func eventKeyboard(e model.Event) tgbotapi.InlineKeyboardMarkup {
	return tgbotapi.NewInlineKeyboardMarkup(
		tgbotapi.NewInlineKeyboardRow(
			tgbotapi.NewInlineKeyboardButtonData("✏️ Edit", cbEditPrefix+e.ID),
			tgbotapi.NewInlineKeyboardButtonData("📤 Share", cbSharePrefix+e.ID),
		),
		tgbotapi.NewInlineKeyboardRow(
			tgbotapi.NewInlineKeyboardButtonData("🔔 "+e.Priority.Next().DisplayName(), cbPriorityPrefix+e.ID),
			tgbotapi.NewInlineKeyboardButtonData("🗑 Delete", cbDeletePrefix+e.ID),
		),
	)
}

func modeKeyboard(current clock.Mode) tgbotapi.InlineKeyboardMarkup {
	var row []tgbotapi.InlineKeyboardButton
	for _, m := range clock.Modes {
		label := string(m)
		if m == current {
			label = "• " + label
		}
		row = append(row, tgbotapi.NewInlineKeyboardButtonData(label, cbModePrefix+string(m)))
	}
	return tgbotapi.NewInlineKeyboardMarkup(row)
}

func mainMenuKeyboard() tgbotapi.ReplyKeyboardMarkup {
	kb := tgbotapi.NewReplyKeyboard(
		tgbotapi.NewKeyboardButtonRow(
			tgbotapi.NewKeyboardButton(menuLabelNew),
			tgbotapi.NewKeyboardButton(menuLabelEvents),
		),
		tgbotapi.NewKeyboardButtonRow(
			tgbotapi.NewKeyboardButton(menuLabelWidget),
			tgbotapi.NewKeyboardButton(menuLabelHelp),
		),
	)
	kb.ResizeKeyboard = true
	kb.OneTimeKeyboard = false
	return kb
}

func repeatKeyboard() tgbotapi.ReplyKeyboardMarkup {
	kb := tgbotapi.NewReplyKeyboard(
		tgbotapi.NewKeyboardButtonRow(
			tgbotapi.NewKeyboardButton(string(clock.RuleNone)),
			tgbotapi.NewKeyboardButton(string(clock.RuleDaily)),
			tgbotapi.NewKeyboardButton(string(clock.RuleWeekly)),
		),
		tgbotapi.NewKeyboardButtonRow(
			tgbotapi.NewKeyboardButton(string(clock.RuleMonthly)),
			tgbotapi.NewKeyboardButton(string(clock.RuleYearly)),
		),
		tgbotapi.NewKeyboardButtonRow(
			tgbotapi.NewKeyboardButton(btnSkip),
			tgbotapi.NewKeyboardButton(btnCancelDialog),
		),
	)
	kb.ResizeKeyboard = true
	kb.OneTimeKeyboard = true
	return kb
}

func priorityKeyboard() tgbotapi.ReplyKeyboardMarkup {
	row := make([]tgbotapi.KeyboardButton, 0, len(model.Priorities))
	for _, p := range model.Priorities {
		row = append(row, tgbotapi.NewKeyboardButton(priorityLabel(p)))
	}
	kb := tgbotapi.NewReplyKeyboard(
		row,
		tgbotapi.NewKeyboardButtonRow(
			tgbotapi.NewKeyboardButton(btnSkip),
			tgbotapi.NewKeyboardButton(btnCancelDialog),
		),
	)
	kb.ResizeKeyboard = true
	kb.OneTimeKeyboard = true
	return kb
}

func confirmKeyboard() tgbotapi.ReplyKeyboardMarkup {
	kb := tgbotapi.NewReplyKeyboard(
		tgbotapi.NewKeyboardButtonRow(
			tgbotapi.NewKeyboardButton(btnConfirm),
			tgbotapi.NewKeyboardButton(btnCancel),
		),
	)
	kb.ResizeKeyboard = true
	kb.OneTimeKeyboard = true
	return kb
}

func cancelKeyboard() tgbotapi.ReplyKeyboardMarkup {
	kb := tgbotapi.NewReplyKeyboard(
		tgbotapi.NewKeyboardButtonRow(
			tgbotapi.NewKeyboardButton(btnCancelDialog),
		),
	)
	kb.ResizeKeyboard = true
	kb.OneTimeKeyboard = true
	return kb
}

func skipKeyboard() tgbotapi.ReplyKeyboardMarkup {
	kb := tgbotapi.NewReplyKeyboard(
		tgbotapi.NewKeyboardButtonRow(
			tgbotapi.NewKeyboardButton(btnSkip),
		),
		tgbotapi.NewKeyboardButtonRow(
			tgbotapi.NewKeyboardButton(btnCancelDialog),
		),
	)
	kb.ResizeKeyboard = true
	kb.OneTimeKeyboard = true
	return kb
}

func isSkipInput(text string) bool {
	value := strings.TrimSpace(strings.ToLower(text))
	return value == "-" || value == strings.ToLower(btnSkip) || value == "skip"
}

func isConfirmInput(text string) bool {
	value := strings.TrimSpace(strings.ToLower(text))
	return value == strings.ToLower(btnConfirm) || value == "confirm" || value == "yes"
}

func isCancelInput(text string) bool {
	value := strings.TrimSpace(strings.ToLower(text))
	return value == strings.ToLower(btnCancel) || value == "cancel" || value == "no"
}

func isCancelDialogInput(text string) bool {
	value := strings.TrimSpace(strings.ToLower(text))
	return value == strings.ToLower(btnCancelDialog) || value == "stop"
}

func shortTitle(title string, maxLen int) string {
	clean := strings.TrimSpace(strings.ReplaceAll(title, "\n", " "))
	runes := []rune(clean)
	if len(runes) <= maxLen {
		return clean
	}
	if maxLen <= 1 {
		return string(runes[:maxLen])
	}
	return string(runes[:maxLen-1]) + "…"
}

func escape(s string) string {
	return html.EscapeString(s)
}
