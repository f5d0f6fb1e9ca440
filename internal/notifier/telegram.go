package notifier

import (
	"fmt"
	"strings"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"github.com/quantex/marketpulse/internal/model"
)

// Telegram pushes emitted signals to a chat. Delivery is fire-and-forget;
// a failed send never blocks the pipeline.
type Telegram struct {
	bot    *tgbotapi.BotAPI
	chatID int64
	logger zerolog.Logger
}

// NewTelegram creates a telegram notifier.
func NewTelegram(token string, chatID int64) (*Telegram, error) {
	bot, err := tgbotapi.NewBotAPI(token)
	if err != nil {
		return nil, fmt.Errorf("creating telegram bot: %w", err)
	}

	return &Telegram{
		bot:    bot,
		chatID: chatID,
		logger: log.With().Str("component", "telegram_notifier").Logger(),
	}, nil
}

// NotifySignal formats and sends one signal.
func (t *Telegram) NotifySignal(sig model.Signal) error {
	msg := tgbotapi.NewMessage(t.chatID, FormatSignal(sig))
	if _, err := t.bot.Send(msg); err != nil {
		t.logger.Warn().Err(err).Str("symbol", sig.Symbol).Msg("telegram send failed")
		return fmt.Errorf("sending telegram message: %w", err)
	}
	return nil
}

// FormatSignal renders a signal for chat delivery.
func FormatSignal(sig model.Signal) string {
	var sb strings.Builder
	sb.WriteString(fmt.Sprintf("%s %s\n", strings.ToUpper(string(sig.Action)), sig.Symbol))
	sb.WriteString(fmt.Sprintf("strength %.2f / confidence %.2f\n", sig.Strength, sig.Confidence))
	sb.WriteString(sig.Reasoning)
	if narrative, ok := sig.Metadata["narrative"]; ok {
		sb.WriteString("\n\n")
		sb.WriteString(narrative)
	}
	return sb.String()
}
