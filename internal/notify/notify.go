// Package notify is the outbound message channel. All sends go through one
// shared rate limiter so routines that fan out over many users cannot trip
// the transport's flood limits.
package notify

import (
	"context"
	"fmt"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"github.com/rs/zerolog"
	"golang.org/x/time/rate"

	"planbot/internal/action"
)

// Button is one labeled choice attached to a message.
type Button struct {
	Label  string
	Action action.Action
}

// Row builds a single keyboard row.
func Row(buttons ...Button) []Button { return buttons }

// sender is the slice of the Telegram API the service uses.
type sender interface {
	Send(c tgbotapi.Chattable) (tgbotapi.Message, error)
}

// Service sends messages on behalf of the scheduler and the bot.
type Service struct {
	api     sender
	limiter *rate.Limiter
	log     zerolog.Logger
}

// Telegram allows roughly 30 messages per second overall; stay under it.
const (
	sendRate  = 25
	sendBurst = 5
)

func New(api sender, log zerolog.Logger) *Service {
	return &Service{
		api:     api,
		limiter: rate.NewLimiter(rate.Limit(sendRate), sendBurst),
		log:     log.With().Str("component", "notify").Logger(),
	}
}

// Send delivers a text message, optionally with inline action buttons.
// Delivery is fire-and-forget beyond the returned error.
func (s *Service) Send(ctx context.Context, chatID int64, text string, buttons [][]Button) error {
	if err := s.limiter.Wait(ctx); err != nil {
		return fmt.Errorf("rate limit wait: %w", err)
	}

	msg := tgbotapi.NewMessage(chatID, text)
	if len(buttons) > 0 {
		msg.ReplyMarkup = keyboard(buttons)
	}
	if _, err := s.api.Send(msg); err != nil {
		s.log.Warn().Int64("chat", chatID).Err(err).Msg("send failed")
		return fmt.Errorf("send to %d: %w", chatID, err)
	}
	return nil
}

func keyboard(rows [][]Button) tgbotapi.InlineKeyboardMarkup {
	var kb [][]tgbotapi.InlineKeyboardButton
	for _, row := range rows {
		var r []tgbotapi.InlineKeyboardButton
		for _, b := range row {
			r = append(r, tgbotapi.NewInlineKeyboardButtonData(b.Label, b.Action.Encode()))
		}
		kb = append(kb, r)
	}
	return tgbotapi.NewInlineKeyboardMarkup(kb...)
}
