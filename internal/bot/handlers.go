package bot

import (
	"context"
	"errors"
	"fmt"
	"strings"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"gorm.io/gorm"

	"countdowns/internal/clock"
	"countdowns/internal/model"
	"countdowns/internal/service"
)

func (b *Bot) handleMessage(ctx context.Context, msg *tgbotapi.Message) error {
	if msg.From == nil {
		return nil
	}

	if !msg.IsCommand() && isCancelDialogInput(msg.Text) {
		b.clearConversation(msg.From.ID)
		b.clearConfirmation(msg.From.ID)
		return b.sendText(msg.Chat.ID, "⏪ Cancelled.")
	}

	if !msg.IsCommand() {
		if handled, err := b.handleMenuAlias(ctx, msg); handled {
			return err
		}
	}

	if msg.IsCommand() {
		b.log.Info().Int64("user", msg.From.ID).Str("command", msg.Command()).Str("args", msg.CommandArguments()).Msg("command")
		return b.handleCommand(ctx, msg)
	}

	if pending, ok := b.getConfirmation(msg.From.ID); ok {
		return b.handleConfirmationResponse(ctx, msg, pending)
	}

	if state := b.getConversation(msg.From.ID); state != nil {
		b.log.Debug().Int64("user", msg.From.ID).Int("stage", int(state.stage)).Msg("conversation step")
		return b.handleConversation(ctx, msg, state)
	}

	return b.sendText(msg.Chat.ID, "I didn't get that. Send /new to add a countdown or /help for the list of commands.")
}

func (b *Bot) handleCommand(ctx context.Context, msg *tgbotapi.Message) error {
	switch msg.Command() {
	case "start":
		return b.handleStart(msg)
	case "help":
		return b.handleHelp(msg)
	case "new":
		return b.startNewEvent(msg)
	case "events":
		return b.sendBoard(ctx, msg.Chat.ID)
	case "mode":
		return b.handleMode(ctx, msg)
	case "clearpast":
		return b.askClearPast(msg)
	case "export":
		return b.handleExport(ctx, msg)
	case "widget":
		return b.handleWidget(ctx, msg.Chat.ID)
	case "background":
		return b.handleBackground(ctx, msg)
	case "cancel":
		b.clearConversation(msg.From.ID)
		b.clearConfirmation(msg.From.ID)
		return b.sendText(msg.Chat.ID, "⏪ Cancelled.")
	default:
		return b.sendText(msg.Chat.ID, "Unknown command. See /help.")
	}
}

func (b *Bot) handleMenuAlias(ctx context.Context, msg *tgbotapi.Message) (bool, error) {
	text := strings.TrimSpace(strings.ToLower(msg.Text))
	switch text {
	case strings.ToLower(menuLabelNew):
		return true, b.startNewEvent(msg)
	case strings.ToLower(menuLabelEvents):
		return true, b.sendBoard(ctx, msg.Chat.ID)
	case strings.ToLower(menuLabelWidget):
		return true, b.handleWidget(ctx, msg.Chat.ID)
	case strings.ToLower(menuLabelHelp):
		return true, b.handleHelp(msg)
	default:
		return false, nil
	}
}

func (b *Bot) handleStart(msg *tgbotapi.Message) error {
	name := strings.TrimSpace(msg.From.FirstName)
	if name == "" {
		name = "there"
	}
	text := fmt.Sprintf("👋 Hi, %s!\n<b>I keep track of the days until (and since) the moments that matter.</b>\n\n%s", escape(name), helpText)
	return b.sendText(msg.Chat.ID, text)
}

func (b *Bot) handleHelp(msg *tgbotapi.Message) error {
	return b.sendText(msg.Chat.ID, "ℹ️ <b>Commands</b>\n"+helpText)
}

func (b *Bot) sendBoard(ctx context.Context, chatID int64) error {
	board, err := b.svc.Boards.Board(ctx, b.clock())
	if err != nil {
		return b.sendText(chatID, fmt.Sprintf("Could not load events: %s", escape(err.Error())))
	}
	if board.Len() == 0 {
		return b.sendText(chatID, "No countdowns yet. Add one with /new.")
	}

	text, shown := formatBoard(board, b.location())
	if len(shown) < board.Len() {
		b.log.Debug().Int("shown", len(shown)).Int("total", board.Len()).Msg("board truncated")
	}
	msg := tgbotapi.NewMessage(chatID, text)
	msg.ParseMode = tgbotapi.ModeHTML
	msg.ReplyMarkup = boardKeyboard(shown)
	_, err = b.api.Send(msg)
	return err
}

func (b *Bot) sendEventDetail(ctx context.Context, chatID int64, id string) error {
	event, err := b.svc.Events.Get(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return b.sendText(chatID, "That countdown no longer exists.")
		}
		return err
	}
	mode, err := b.svc.Settings.DisplayMode(ctx)
	if err != nil {
		return err
	}
	showPhoto, err := b.svc.Settings.ShowPreviewBackground(ctx)
	if err != nil {
		return err
	}

	view := service.View(*event, b.clock(), mode)
	text := formatEventDetail(view, b.location())
	markup := eventKeyboard(*event)

	if showPhoto && event.HasPhoto() {
		photo := tgbotapi.NewPhoto(chatID, tgbotapi.FileID(event.PhotoFileID))
		photo.Caption = text
		photo.ParseMode = tgbotapi.ModeHTML
		photo.ReplyMarkup = markup
		_, err = b.api.Send(photo)
		return err
	}
	return b.sendWithReplyMarkup(chatID, text, markup)
}

func (b *Bot) handleMode(ctx context.Context, msg *tgbotapi.Message) error {
	args := strings.TrimSpace(msg.CommandArguments())
	if args == "" {
		current, err := b.svc.Settings.DisplayMode(ctx)
		if err != nil {
			return err
		}
		return b.sendWithReplyMarkup(msg.Chat.ID, fmt.Sprintf("Current display mode: <b>%s</b>. Pick another one:", current), modeKeyboard(current))
	}
	return b.setMode(ctx, msg.Chat.ID, clock.ParseMode(args))
}

func (b *Bot) setMode(ctx context.Context, chatID int64, mode clock.Mode) error {
	if err := b.svc.Settings.SetDisplayMode(ctx, mode); err != nil {
		return b.sendText(chatID, fmt.Sprintf("Could not save the display mode: %s", escape(err.Error())))
	}
	if err := b.sendText(chatID, fmt.Sprintf("Display mode set to <b>%s</b>.", mode)); err != nil {
		return err
	}
	return b.sendBoard(ctx, chatID)
}

func (b *Bot) handleBackground(ctx context.Context, msg *tgbotapi.Message) error {
	show, err := b.svc.Settings.TogglePreviewBackground(ctx)
	if err != nil {
		return b.sendText(msg.Chat.ID, fmt.Sprintf("Could not save the setting: %s", escape(err.Error())))
	}
	if show {
		return b.sendText(msg.Chat.ID, "🖼 Photos are shown with event details.")
	}
	return b.sendText(msg.Chat.ID, "🖼 Photos are hidden in event details.")
}

func (b *Bot) handleExport(ctx context.Context, msg *tgbotapi.Message) error {
	doc, err := b.svc.Export.ExportICS(ctx, b.clock())
	if err != nil {
		return b.sendText(msg.Chat.ID, fmt.Sprintf("Export failed: %s", escape(err.Error())))
	}
	file := tgbotapi.NewDocument(msg.Chat.ID, tgbotapi.FileBytes{Name: "countdowns.ics", Bytes: []byte(doc)})
	file.Caption = "📤 Import this file into your calendar app."
	_, err = b.api.Send(file)
	return err
}

func (b *Bot) handleWidget(ctx context.Context, chatID int64) error {
	timeline, err := b.svc.Widget.Timeline(ctx, "", b.clock())
	if err != nil {
		if errors.Is(err, service.ErrNoWidgetEvent) {
			return b.sendText(chatID, "Nothing upcoming to put on the widget.")
		}
		return b.sendText(chatID, fmt.Sprintf("Could not build the widget: %s", escape(err.Error())))
	}
	return b.sendText(chatID, formatTimeline(timeline, b.location()))
}

func (b *Bot) shareEvent(ctx context.Context, chatID int64, id string) error {
	event, err := b.svc.Events.Get(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return b.sendText(chatID, "That countdown no longer exists.")
		}
		return err
	}
	mode, err := b.svc.Settings.DisplayMode(ctx)
	if err != nil {
		return err
	}
	text := service.ShareText(*event, b.clock(), mode)
	if event.HasPhoto() {
		photo := tgbotapi.NewPhoto(chatID, tgbotapi.FileID(event.PhotoFileID))
		photo.Caption = text
		_, err = b.api.Send(photo)
		return err
	}
	return b.sendPlain(chatID, text)
}

func (b *Bot) cyclePriority(ctx context.Context, chatID int64, id string) error {
	event, err := b.svc.Events.Get(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return b.sendText(chatID, "That countdown no longer exists.")
		}
		return err
	}
	if _, err := b.svc.Events.UpdatePriority(ctx, id, event.Priority.Next()); err != nil {
		return b.sendText(chatID, fmt.Sprintf("Could not update priority: %s", escape(err.Error())))
	}
	return b.sendEventDetail(ctx, chatID, id)
}

func (b *Bot) handleCallback(ctx context.Context, cb *tgbotapi.CallbackQuery) error {
	if cb == nil || cb.From == nil || cb.Message == nil {
		return nil
	}
	b.ackCallback(cb, "")

	data := cb.Data
	chatID := cb.Message.Chat.ID
	b.log.Debug().Int64("user", cb.From.ID).Str("data", data).Msg("callback")

	switch {
	case strings.HasPrefix(data, cbShowPrefix):
		return b.sendEventDetail(ctx, chatID, strings.TrimPrefix(data, cbShowPrefix))
	case strings.HasPrefix(data, cbEditPrefix):
		return b.startEditEvent(ctx, chatID, cb.From.ID, strings.TrimPrefix(data, cbEditPrefix))
	case strings.HasPrefix(data, cbSharePrefix):
		return b.shareEvent(ctx, chatID, strings.TrimPrefix(data, cbSharePrefix))
	case strings.HasPrefix(data, cbPriorityPrefix):
		return b.cyclePriority(ctx, chatID, strings.TrimPrefix(data, cbPriorityPrefix))
	case strings.HasPrefix(data, cbDeletePrefix):
		return b.askDeleteConfirmation(ctx, chatID, cb.From.ID, strings.TrimPrefix(data, cbDeletePrefix))
	case strings.HasPrefix(data, cbModePrefix):
		return b.setMode(ctx, chatID, clock.ParseMode(strings.TrimPrefix(data, cbModePrefix)))
	default:
		return nil
	}
}

func (b *Bot) askDeleteConfirmation(ctx context.Context, chatID, userID int64, id string) error {
	event, err := b.svc.Events.Get(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return b.sendText(chatID, "That countdown no longer exists.")
		}
		return err
	}
	b.setConfirmation(userID, confirmationRequest{eventID: event.ID, action: actionDelete})
	text := fmt.Sprintf("Delete %s <b>%s</b>?", escape(event.Emoji), escape(event.Name))
	return b.sendWithReplyMarkup(chatID, text, confirmKeyboard())
}

func (b *Bot) askClearPast(msg *tgbotapi.Message) error {
	b.setConfirmation(msg.From.ID, confirmationRequest{action: actionClearPast})
	return b.sendWithReplyMarkup(msg.Chat.ID, "Delete every past countdown that does not repeat?", confirmKeyboard())
}

func (b *Bot) handleConfirmationResponse(ctx context.Context, msg *tgbotapi.Message, req confirmationRequest) error {
	text := strings.TrimSpace(msg.Text)
	switch {
	case isConfirmInput(text):
		b.clearConfirmation(msg.From.ID)
		if req.action == actionClearPast {
			return b.clearPastAndRefresh(ctx, msg.Chat.ID)
		}
		return b.deleteEventAndRefresh(ctx, msg.Chat.ID, req.eventID)
	case isCancelInput(text):
		b.clearConfirmation(msg.From.ID)
		return b.sendText(msg.Chat.ID, "Nothing was deleted.")
	default:
		return b.sendWithReplyMarkup(msg.Chat.ID, "Confirm or cancel the deletion.", confirmKeyboard())
	}
}

func (b *Bot) deleteEventAndRefresh(ctx context.Context, chatID int64, id string) error {
	event, err := b.svc.Events.Get(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return b.sendText(chatID, "That countdown was already deleted.")
		}
		return b.sendText(chatID, fmt.Sprintf("Error: %s", escape(err.Error())))
	}
	if err := b.svc.Events.Delete(ctx, id); err != nil {
		return b.sendText(chatID, fmt.Sprintf("Error: %s", escape(err.Error())))
	}
	if err := b.sendText(chatID, fmt.Sprintf("🗑 %s deleted.", escape(event.Name))); err != nil {
		return err
	}
	return b.sendBoard(ctx, chatID)
}

func (b *Bot) clearPastAndRefresh(ctx context.Context, chatID int64) error {
	n, err := b.svc.Events.DeleteAllPast(ctx, b.clock())
	if err != nil {
		return b.sendText(chatID, fmt.Sprintf("Error: %s", escape(err.Error())))
	}
	if err := b.sendText(chatID, fmt.Sprintf("🧹 Removed %d past %s.", n, pluralCountdowns(n))); err != nil {
		return err
	}
	return b.sendBoard(ctx, chatID)
}

func pluralCountdowns(n int64) string {
	if n == 1 {
		return "countdown"
	}
	return "countdowns"
}

func priorityLabel(p model.Priority) string {
	switch p {
	case model.PriorityLarge:
		return "🔴 " + p.DisplayName()
	case model.PrioritySmall:
		return "🟢 " + p.DisplayName()
	default:
		return "🟡 " + p.DisplayName()
	}
}
