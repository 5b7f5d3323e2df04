// Package bot is the Telegram transport surface. It routes commands, captures
// free-form plan input, and decodes callback buttons into actions, leaving the
// date grammar, lifecycle rules, and trigger management to the inner packages.
package bot

import (
	"context"
	"fmt"
	"time"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"github.com/rs/zerolog"

	"planbot/internal/config"
	"planbot/internal/model"
	"planbot/internal/notify"
)

type userStore interface {
	GetByChatID(ctx context.Context, chatID int64) (*model.User, error)
	Create(ctx context.Context, chatID int64, tz string, eveningHour, eveningMin, morningHour, morningMin int) (*model.User, error)
	UpdateTimezone(ctx context.Context, userID uint, tz string) error
	UpdateEveningTime(ctx context.Context, userID uint, hour, minute int) error
	UpdateMorningTime(ctx context.Context, userID uint, hour, minute int) error
	SetAwaitingInput(ctx context.Context, userID uint, awaiting bool) error
	SetSkippedTonight(ctx context.Context, userID uint, skipped bool) error
}

type taskStore interface {
	Create(ctx context.Context, userID uint, content, dueDate string) (*model.Task, error)
	ListByUserAndDate(ctx context.Context, userID uint, date string, statuses []model.Status) ([]model.Task, error)
	ListByUserAndDateRange(ctx context.Context, userID uint, start, end string, statuses []model.Status) ([]model.Task, error)
}

type callbackStore interface {
	Exists(ctx context.Context, callbackID string) (bool, error)
	Insert(ctx context.Context, callbackID string, taskID uint, action string) error
}

type taskMachine interface {
	MarkDone(ctx context.Context, taskID uint) (bool, error)
	MarkCanceled(ctx context.Context, taskID uint) (bool, error)
	Postpone(ctx context.Context, taskID uint, days int) (string, bool, error)
}

type jobRebuilder interface {
	RebuildUserJobs(user *model.User) error
}

type replySender interface {
	Send(ctx context.Context, chatID int64, text string, buttons [][]notify.Button) error
}

// Bot aggregates the Telegram API with the stores and services behind it.
type Bot struct {
	api       *tgbotapi.BotAPI
	users     userStore
	tasks     taskStore
	callbacks callbackStore
	machine   taskMachine
	jobs      jobRebuilder
	replies   replySender
	log       zerolog.Logger
	now       func() time.Time

	defaultTimezone string
	eveningHour     int
	eveningMin      int
	morningHour     int
	morningMin      int
}

func New(api *tgbotapi.BotAPI, users userStore, tasks taskStore, callbacks callbackStore,
	machine taskMachine, jobs jobRebuilder, replies replySender, cfg config.Config, log zerolog.Logger) (*Bot, error) {

	eh, em, err := parseClock(cfg.DefaultEvening)
	if err != nil {
		return nil, fmt.Errorf("default evening time: %w", err)
	}
	mh, mm, err := parseClock(cfg.DefaultMorning)
	if err != nil {
		return nil, fmt.Errorf("default morning time: %w", err)
	}

	return &Bot{
		api:             api,
		users:           users,
		tasks:           tasks,
		callbacks:       callbacks,
		machine:         machine,
		jobs:            jobs,
		replies:         replies,
		log:             log.With().Str("component", "bot").Logger(),
		now:             time.Now,
		defaultTimezone: cfg.DefaultTimezone,
		eveningHour:     eh,
		eveningMin:      em,
		morningHour:     mh,
		morningMin:      mm,
	}, nil
}

// Start begins polling updates until ctx is cancelled.
func (b *Bot) Start(ctx context.Context) error {
	updateConfig := tgbotapi.NewUpdate(0)
	updateConfig.Timeout = 60
	updates := b.api.GetUpdatesChan(updateConfig)

	b.log.Info().Str("account", b.api.Self.UserName).Msg("start polling updates")

	go func() {
		<-ctx.Done()
		b.api.StopReceivingUpdates()
	}()

	for update := range updates {
		switch {
		case update.CallbackQuery != nil:
			cb := update.CallbackQuery
			if cb.From == nil || cb.Message == nil {
				continue
			}
			if _, err := b.api.Request(tgbotapi.NewCallback(cb.ID, "")); err != nil {
				b.log.Warn().Err(err).Msg("callback ack")
			}
			if err := b.handleAction(ctx, cb.ID, cb.Message.Chat.ID, cb.Data); err != nil {
				b.log.Error().Err(err).Msg("handle callback")
			}
		case update.Message != nil:
			msg := update.Message
			if msg.From == nil || msg.Chat == nil || !msg.Chat.IsPrivate() {
				continue
			}
			if err := b.handleMessage(ctx, msg); err != nil {
				b.log.Error().Err(err).Msg("handle message")
			}
		}
	}

	return nil
}

func (b *Bot) handleMessage(ctx context.Context, msg *tgbotapi.Message) error {
	if msg.IsCommand() {
		b.log.Info().Int64("chat", msg.Chat.ID).Str("command", msg.Command()).Msg("command")
		return b.handleCommand(ctx, msg.Chat.ID, msg.Command(), msg.CommandArguments())
	}
	return b.handleText(ctx, msg.Chat.ID, msg.Text)
}

// ensureUser loads the user for a chat, registering them with the configured
// defaults and installing their daily triggers on first contact.
func (b *Bot) ensureUser(ctx context.Context, chatID int64) (*model.User, error) {
	user, err := b.users.GetByChatID(ctx, chatID)
	if err != nil {
		return nil, err
	}
	if user != nil {
		return user, nil
	}

	user, err = b.users.Create(ctx, chatID, b.defaultTimezone, b.eveningHour, b.eveningMin, b.morningHour, b.morningMin)
	if err != nil {
		return nil, err
	}
	b.log.Info().Int64("chat", chatID).Uint("user", user.ID).Msg("registered new user")

	if err := b.jobs.RebuildUserJobs(user); err != nil {
		b.log.Error().Uint("user", user.ID).Err(err).Msg("install triggers for new user")
	}
	return user, nil
}

// localToday is the user's current civil date.
func (b *Bot) localToday(user *model.User) (time.Time, error) {
	loc, err := user.Location()
	if err != nil {
		return time.Time{}, fmt.Errorf("user %d timezone %q: %w", user.ID, user.Timezone, err)
	}
	return b.now().In(loc), nil
}

func (b *Bot) reply(ctx context.Context, chatID int64, text string) error {
	return b.replies.Send(ctx, chatID, text, nil)
}
