package bot

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"gorm.io/gorm"

	"countdowns/internal/clock"
	"countdowns/internal/model"
	"countdowns/internal/service"
)

const (
	dateLayout     = "2006-01-02"
	dateTimeLayout = "2006-01-02 15:04"
)

var errBadDate = errors.New("unrecognized date")

func (b *Bot) startNewEvent(msg *tgbotapi.Message) error {
	b.log.Info().Int64("user", msg.From.ID).Msg("start new event form")
	b.clearConfirmation(msg.From.ID)
	b.setConversation(msg.From.ID, &conversationState{stage: stageName})
	return b.sendWithReplyMarkup(msg.Chat.ID, "🆕 New countdown.\n<b>Step 1:</b> what is it called?", cancelKeyboard())
}

func (b *Bot) startEditEvent(ctx context.Context, chatID, userID int64, id string) error {
	event, err := b.svc.Events.Get(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return b.sendText(chatID, "That countdown no longer exists.")
		}
		return err
	}
	b.clearConfirmation(userID)
	b.setConversation(userID, &conversationState{
		stage:     stageName,
		form:      service.FormFromEvent(*event),
		editingID: event.ID,
	})
	text := fmt.Sprintf("✏️ Editing <b>%s</b>. Send a new name or press «Skip» to keep it.", escape(event.Name))
	return b.sendWithReplyMarkup(chatID, text, skipKeyboard())
}

func (b *Bot) handleConversation(ctx context.Context, msg *tgbotapi.Message, state *conversationState) error {
	text := strings.TrimSpace(msg.Text)
	editing := state.editingID != ""
	chatID := msg.Chat.ID

	switch state.stage {
	case stageName:
		if !(editing && isSkipInput(text)) {
			if text == "" {
				return b.sendWithReplyMarkup(chatID, "The name can't be empty. What is it called?", cancelKeyboard())
			}
			state.form.Name = text
		}
		state.stage = stageDate
		return b.sendWithReplyMarkup(chatID, "📆 When? Send <code>2025-11-30</code>, or <code>2025-11-30 18:30</code> to include a time. «today» and «tomorrow» work too.", b.stepKeyboard(editing))
	case stageDate:
		if !(editing && isSkipInput(text)) {
			date, includesTime, err := parseEventDate(text, b.clock())
			if err != nil {
				return b.sendWithReplyMarkup(chatID, "I can't read that date. Use <code>2025-11-30</code> or <code>2025-11-30 18:30</code>.", b.stepKeyboard(editing))
			}
			state.form.Date = date
			state.form.IncludesTime = includesTime
		}
		state.stage = stageRepeat
		return b.sendWithReplyMarkup(chatID, "🔁 Does it repeat?", repeatKeyboard())
	case stageRepeat:
		if !isSkipInput(text) {
			rule, ok := parseRepeatInput(text)
			if !ok {
				return b.sendWithReplyMarkup(chatID, "Pick one of the options below.", repeatKeyboard())
			}
			state.form.Repeat = rule
		}
		state.stage = stagePriority
		return b.sendWithReplyMarkup(chatID, "🔔 Priority?", priorityKeyboard())
	case stagePriority:
		if !isSkipInput(text) {
			state.form.Priority = model.ParsePriority(stripLabelIcon(text))
		}
		state.stage = stageEmoji
		return b.sendWithReplyMarkup(chatID, fmt.Sprintf("😀 Send an emoji for it (default %s).", model.DefaultEmoji), skipKeyboard())
	case stageEmoji:
		if !isSkipInput(text) {
			state.form.Emoji = text
		}
		state.stage = stageDescription
		return b.sendWithReplyMarkup(chatID, "📝 Add a short description (or «Skip»).", skipKeyboard())
	case stageDescription:
		if !isSkipInput(text) {
			state.form.Description = text
		}
		state.stage = stagePhoto
		return b.sendWithReplyMarkup(chatID, "🖼 Send a photo for it (or «Skip»).", skipKeyboard())
	case stagePhoto:
		if len(msg.Photo) > 0 {
			state.form.PhotoFileID = msg.Photo[len(msg.Photo)-1].FileID
		} else if !isSkipInput(text) {
			return b.sendWithReplyMarkup(chatID, "Send a photo or press «Skip».", skipKeyboard())
		}
		err := b.finishEvent(ctx, chatID, state)
		b.clearConversation(msg.From.ID)
		return err
	default:
		b.clearConversation(msg.From.ID)
		return b.sendText(chatID, "The form was reset. Start again with /new.")
	}
}

func (b *Bot) stepKeyboard(editing bool) tgbotapi.ReplyKeyboardMarkup {
	if editing {
		return skipKeyboard()
	}
	return cancelKeyboard()
}

func (b *Bot) finishEvent(ctx context.Context, chatID int64, state *conversationState) error {
	event, err := b.svc.Events.Save(ctx, state.form, state.editingID)
	if err != nil {
		return b.sendText(chatID, fmt.Sprintf("Could not save the countdown: %s", escape(err.Error())))
	}

	mode, err := b.svc.Settings.DisplayMode(ctx)
	if err != nil {
		return err
	}
	view := service.View(*event, b.clock(), mode)

	title := "✅ <b>Countdown saved</b>\n"
	if state.editingID != "" {
		title = "✅ <b>Countdown updated</b>\n"
	}
	msg := tgbotapi.NewMessage(chatID, title+formatEventDetail(view, b.location()))
	msg.ReplyMarkup = mainMenuKeyboard()
	msg.ParseMode = tgbotapi.ModeHTML
	if _, err := b.api.Send(msg); err != nil {
		return err
	}
	return b.sendBoard(ctx, chatID)
}

// parseEventDate reads a date typed by the user in now's location. A time of
// day marks the event as time-specific.
func parseEventDate(text string, now time.Time) (time.Time, bool, error) {
	value := strings.TrimSpace(strings.ToLower(text))
	loc := now.Location()
	switch value {
	case "today":
		return clock.StartOfDay(now), false, nil
	case "tomorrow":
		return clock.StartOfDay(now).AddDate(0, 0, 1), false, nil
	}
	if t, err := time.ParseInLocation(dateTimeLayout, value, loc); err == nil {
		return t, true, nil
	}
	if t, err := time.ParseInLocation(dateLayout, value, loc); err == nil {
		return t, false, nil
	}
	return time.Time{}, false, errBadDate
}

func parseRepeatInput(text string) (clock.Rule, bool) {
	value := strings.ToLower(stripLabelIcon(text))
	if value == "no" || value == "never" {
		return clock.RuleNone, true
	}
	for _, r := range clock.Rules {
		if value == strings.ToLower(string(r)) {
			return r, true
		}
	}
	return clock.RuleNone, false
}

// stripLabelIcon drops a leading emoji from a keyboard label.
func stripLabelIcon(text string) string {
	text = strings.TrimSpace(text)
	if i := strings.IndexByte(text, ' '); i > 0 && !isASCIILetter(text[0]) {
		return strings.TrimSpace(text[i+1:])
	}
	return text
}

func isASCIILetter(c byte) bool {
	return (c >= 'a' && c <= 'z') || (c >= 'A' && c <= 'Z')
}
