package integration

import (
	"errors"
	"net/http"
	"sync"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"go.uber.org/zap"

	"github.com/updesk/helpdesk/internal/config"
)

// ErrTelegramNotConfigured is returned when the bot token or chat id is absent.
var ErrTelegramNotConfigured = errors.New("telegram not configured")

// botSender is the slice of the bot API the client needs.
type botSender interface {
	Send(c tgbotapi.Chattable) (tgbotapi.Message, error)
}

// Telegram posts support messages to the configured chat. The bot connection
// is established lazily on first send so missing credentials degrade to a
// logged no-op instead of failing startup.
type Telegram struct {
	cfg    config.TelegramConfig
	logger *zap.Logger

	mu     sync.Mutex
	bot    botSender
	newBot func() (botSender, error)
}

// NewTelegram builds the client.
func NewTelegram(cfg config.TelegramConfig, logger *zap.Logger) *Telegram {
	t := &Telegram{cfg: cfg, logger: logger}
	t.newBot = func() (botSender, error) {
		return tgbotapi.NewBotAPIWithClient(cfg.BotToken, tgbotapi.APIEndpoint, &http.Client{
			Timeout: cfg.Timeout(),
		})
	}
	return t
}

// Configured reports whether sends can be attempted.
func (t *Telegram) Configured() bool {
	return t.cfg.Configured()
}

// SendMessage posts text to the support chat and returns the Telegram
// message id of the sent message.
func (t *Telegram) SendMessage(text string) (int, error) {
	if !t.Configured() {
		return 0, ErrTelegramNotConfigured
	}

	bot, err := t.connect()
	if err != nil {
		return 0, err
	}

	sent, err := bot.Send(tgbotapi.NewMessage(t.cfg.ChatID, text))
	if err != nil {
		return 0, err
	}
	return sent.MessageID, nil
}

func (t *Telegram) connect() (botSender, error) {
	t.mu.Lock()
	defer t.mu.Unlock()
	if t.bot != nil {
		return t.bot, nil
	}
	bot, err := t.newBot()
	if err != nil {
		t.logger.Error("telegram bot connection failed", zap.Error(err))
		return nil, err
	}
	t.bot = bot
	return bot, nil
}
