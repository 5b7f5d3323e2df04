// Package scheduler owns the per-user recurring triggers and the startup
// recovery sweep. Each active user gets at most two named daily triggers,
// evening:<id> and morning:<id>, firing at the user's wall-clock time in the
// user's own timezone. Triggers are derived state: they are never persisted
// and are rebuilt from the users table on every boot.
package scheduler

import (
	"context"
	"fmt"
	"sort"
	"sync"
	"time"

	"github.com/robfig/cron/v3"
	"github.com/rs/zerolog"

	"planbot/internal/model"
	"planbot/internal/notify"
)

// UserStore is the slice of the record store the scheduler reads and writes.
type UserStore interface {
	GetByID(ctx context.Context, id uint) (*model.User, error)
	ListAll(ctx context.Context) ([]model.User, error)
	SetSkippedTonight(ctx context.Context, userID uint, skipped bool) error
}

type TaskStore interface {
	ListByUserAndDate(ctx context.Context, userID uint, date string, statuses []model.Status) ([]model.Task, error)
}

// Notifier delivers messages to a chat, optionally with action buttons.
type Notifier interface {
	Send(ctx context.Context, chatID int64, text string, buttons [][]notify.Button) error
}

// Review messages go out in spaced batches to stay under Telegram's
// per-chat send limits.
const (
	BatchSize  = 10
	BatchDelay = 1500 * time.Millisecond

	routineTimeout = 2 * time.Minute
)

var openStatuses = []model.Status{model.StatusPending, model.StatusMissed}

// Scheduler drives all per-user triggers off one cron runner.
type Scheduler struct {
	users    UserStore
	tasks    TaskStore
	notifier Notifier
	log      zerolog.Logger

	mu      sync.Mutex
	cron    *cron.Cron
	entries map[string]cron.EntryID

	baseCtx    context.Context
	now        func() time.Time
	batchDelay time.Duration
}

func New(users UserStore, tasks TaskStore, notifier Notifier, log zerolog.Logger) *Scheduler {
	return &Scheduler{
		users:      users,
		tasks:      tasks,
		notifier:   notifier,
		log:        log.With().Str("component", "scheduler").Logger(),
		cron:       cron.New(cron.WithSeconds()),
		entries:    make(map[string]cron.EntryID),
		baseCtx:    context.Background(),
		now:        time.Now,
		batchDelay: BatchDelay,
	}
}

// Start begins firing triggers. Routine contexts descend from ctx.
func (s *Scheduler) Start(ctx context.Context) {
	s.baseCtx = ctx
	s.cron.Start()
	s.log.Info().Msg("scheduler started")
}

// Stop halts the trigger clock and waits for in-flight routines to finish.
func (s *Scheduler) Stop() {
	<-s.cron.Stop().Done()
	s.log.Info().Msg("scheduler stopped")
}

func eveningTrigger(userID uint) string { return fmt.Sprintf("evening:%d", userID) }
func morningTrigger(userID uint) string { return fmt.Sprintf("morning:%d", userID) }

// RebuildUserJobs removes any existing triggers for the user by name, then
// reinstalls the evening trigger and, when enabled, the morning trigger.
// Idempotent: calling it twice leaves exactly one trigger per name. Call it
// whenever the user's timezone or routine times change, and once per user at
// startup.
func (s *Scheduler) RebuildUserJobs(user *model.User) error {
	if _, err := user.Location(); err != nil {
		return fmt.Errorf("user %d timezone %q: %w", user.ID, user.Timezone, err)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	s.removeLocked(eveningTrigger(user.ID))
	s.removeLocked(morningTrigger(user.ID))

	userID := user.ID
	err := s.installLocked(eveningTrigger(userID), user.Timezone, user.EveningHour, user.EveningMin, func() {
		s.runRoutine(userID, s.EveningRoutine)
	})
	if err != nil {
		return err
	}

	if user.MorningEnabled() {
		err := s.installLocked(morningTrigger(userID), user.Timezone, user.MorningHour, user.MorningMin, func() {
			s.runRoutine(userID, s.MorningChecklist)
		})
		if err != nil {
			return err
		}
	}

	s.log.Info().
		Uint("user", userID).
		Str("tz", user.Timezone).
		Str("evening", fmt.Sprintf("%02d:%02d", user.EveningHour, user.EveningMin)).
		Bool("morning", user.MorningEnabled()).
		Msg("triggers rebuilt")
	return nil
}

// RebuildAllJobs restores scheduler state from the users table. One user's
// bad configuration never blocks the rest.
func (s *Scheduler) RebuildAllJobs(ctx context.Context) error {
	users, err := s.users.ListAll(ctx)
	if err != nil {
		return fmt.Errorf("rebuild all jobs: %w", err)
	}
	for i := range users {
		if err := s.RebuildUserJobs(&users[i]); err != nil {
			s.log.Error().Uint("user", users[i].ID).Err(err).Msg("rebuild user jobs")
		}
	}
	s.log.Info().Int("users", len(users)).Msg("all triggers rebuilt")
	return nil
}

// ActiveTriggers returns the installed trigger names, sorted.
func (s *Scheduler) ActiveTriggers() []string {
	s.mu.Lock()
	defer s.mu.Unlock()
	names := make([]string, 0, len(s.entries))
	for name := range s.entries {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

func (s *Scheduler) installLocked(name, tz string, hour, minute int, job func()) error {
	spec := fmt.Sprintf("CRON_TZ=%s 0 %d %d * * *", tz, minute, hour)
	id, err := s.cron.AddFunc(spec, job)
	if err != nil {
		return fmt.Errorf("install trigger %s: %w", name, err)
	}
	s.entries[name] = id
	return nil
}

func (s *Scheduler) removeLocked(name string) {
	if id, ok := s.entries[name]; ok {
		// In-flight runs of this entry complete; only future firings stop.
		s.cron.Remove(id)
		delete(s.entries, name)
	}
}

func (s *Scheduler) runRoutine(userID uint, fn func(ctx context.Context, userID uint)) {
	ctx, cancel := context.WithTimeout(s.baseCtx, routineTimeout)
	defer cancel()
	fn(ctx, userID)
}

// localDate formats the user's calendar date offset whole days from now,
// computed in the user's timezone at call time.
func (s *Scheduler) localDate(user *model.User, offsetDays int) (string, error) {
	loc, err := user.Location()
	if err != nil {
		return "", fmt.Errorf("user %d timezone %q: %w", user.ID, user.Timezone, err)
	}
	return s.now().In(loc).AddDate(0, 0, offsetDays).Format(model.DateLayout), nil
}
