package bot

import (
	"context"
	"fmt"
	"sync"
	"time"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"github.com/rs/zerolog"

	"countdowns/internal/config"
	"countdowns/internal/service"
)

type conversationStage int

const (
	stageNone conversationStage = iota
	stageName
	stageDate
	stageRepeat
	stagePriority
	stageEmoji
	stageDescription
	stagePhoto
)

const (
	cbShowPrefix     = "show:"
	cbEditPrefix     = "edit:"
	cbSharePrefix    = "share:"
	cbPriorityPrefix = "prio:"
	cbDeletePrefix   = "delete:"
	cbModePrefix     = "mode:"
)

type conversationState struct {
	stage     conversationStage
	form      service.EventForm
	editingID string
}

type confirmationAction int

const (
	actionDelete confirmationAction = iota
	actionClearPast
)

type confirmationRequest struct {
	eventID string
	action  confirmationAction
}

// Services bundles what the bot needs from the service layer.
type Services struct {
	Events   *service.EventService
	Boards   *service.BoardService
	Settings *service.SettingsService
	Widget   *service.WidgetService
	Export   *service.ExportService
}

// Bot aggregates Telegram API with services.
type Bot struct {
	api           *tgbotapi.BotAPI
	svc           Services
	config        *config.Config
	log           zerolog.Logger
	now           func() time.Time
	conversations map[int64]*conversationState
	confirmations map[int64]confirmationRequest
	mu            sync.Mutex
}

func New(token string, svc Services, cfg *config.Config, log zerolog.Logger) (*Bot, error) {
	api, err := tgbotapi.NewBotAPI(token)
	if err != nil {
		return nil, fmt.Errorf("create bot api: %w", err)
	}

	log = log.With().Str("component", "bot").Logger()
	log.Info().Str("account", api.Self.UserName).Msg("bot authorized")

	return &Bot{
		api:           api,
		svc:           svc,
		config:        cfg,
		log:           log,
		now:           time.Now,
		conversations: make(map[int64]*conversationState),
		confirmations: make(map[int64]confirmationRequest),
	}, nil
}

// Start begins polling updates until ctx is cancelled.
func (b *Bot) Start(ctx context.Context) error {
	updateConfig := tgbotapi.NewUpdate(0)
	updateConfig.Timeout = 60
	updates := b.api.GetUpdatesChan(updateConfig)

	b.log.Info().Msg("start polling updates")

	go func() {
		<-ctx.Done()
		b.api.StopReceivingUpdates()
	}()

	for update := range updates {
		switch {
		case update.CallbackQuery != nil:
			if !b.allowed(update.CallbackQuery.From) {
				continue
			}
			if err := b.handleCallback(ctx, update.CallbackQuery); err != nil {
				b.log.Error().Err(err).Msg("handle callback")
			}
		case update.Message != nil:
			if update.Message.Chat == nil || !update.Message.Chat.IsPrivate() {
				continue
			}
			if !b.allowed(update.Message.From) {
				b.log.Debug().Int64("chat", update.Message.Chat.ID).Msg("ignored message from non-owner")
				continue
			}
			if err := b.handleMessage(ctx, update.Message); err != nil {
				b.log.Error().Err(err).Msg("handle message")
			}
		}
	}

	return nil
}

// allowed applies the optional owner filter.
func (b *Bot) allowed(from *tgbotapi.User) bool {
	if from == nil {
		return false
	}
	if b.config == nil || b.config.OwnerID == 0 {
		return true
	}
	return from.ID == b.config.OwnerID
}

func (b *Bot) location() *time.Location {
	if b.config == nil {
		return time.Local
	}
	return b.config.Location()
}

// clock returns the current instant in the configured location.
func (b *Bot) clock() time.Time {
	return b.now().In(b.location())
}

func (b *Bot) sendText(chatID int64, text string) error {
	msg := tgbotapi.NewMessage(chatID, text)
	msg.ParseMode = tgbotapi.ModeHTML
	msg.ReplyMarkup = mainMenuKeyboard()
	_, err := b.api.Send(msg)
	return err
}

func (b *Bot) sendPlain(chatID int64, text string) error {
	msg := tgbotapi.NewMessage(chatID, text)
	msg.ReplyMarkup = mainMenuKeyboard()
	_, err := b.api.Send(msg)
	return err
}

func (b *Bot) sendWithReplyMarkup(chatID int64, text string, markup interface{}) error {
	msg := tgbotapi.NewMessage(chatID, text)
	msg.ParseMode = tgbotapi.ModeHTML
	msg.ReplyMarkup = markup
	_, err := b.api.Send(msg)
	return err
}

func (b *Bot) ackCallback(cb *tgbotapi.CallbackQuery, text string) {
	if _, err := b.api.Request(tgbotapi.NewCallback(cb.ID, text)); err != nil {
		b.log.Warn().Err(err).Msg("callback ack")
	}
}

func (b *Bot) getConfirmation(userID int64) (confirmationRequest, bool) {
	b.mu.Lock()
	defer b.mu.Unlock()
	req, ok := b.confirmations[userID]
	return req, ok
}

func (b *Bot) setConfirmation(userID int64, req confirmationRequest) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.confirmations[userID] = req
}

func (b *Bot) clearConfirmation(userID int64) {
	b.mu.Lock()
	defer b.mu.Unlock()
	delete(b.confirmations, userID)
}

func (b *Bot) setConversation(userID int64, state *conversationState) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.conversations[userID] = state
}

func (b *Bot) getConversation(userID int64) *conversationState {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.conversations[userID]
}

func (b *Bot) clearConversation(userID int64) {
	b.mu.Lock()
	defer b.mu.Unlock()
	delete(b.conversations, userID)
}
