package scheduler

import (
	"context"
	"fmt"
	"time"

	"github.com/rs/zerolog"

	"planbot/internal/model"
)

// MakeupSender is the scheduler's notification primitive the recovery sweep
// drives.
type MakeupSender interface {
	SendMakeupReview(ctx context.Context, userID uint) error
}

// Recovery patches notification gaps left by process downtime. It runs once
// at startup, after triggers are installed: any user whose local yesterday
// still has open tasks gets a backfilled review instead of silently losing
// the evening they missed.
type Recovery struct {
	users  UserStore
	tasks  TaskStore
	sender MakeupSender
	log    zerolog.Logger
	now    func() time.Time
}

func NewRecovery(users UserStore, tasks TaskStore, sender MakeupSender, log zerolog.Logger) *Recovery {
	return &Recovery{
		users:  users,
		tasks:  tasks,
		sender: sender,
		log:    log.With().Str("component", "recovery").Logger(),
		now:    time.Now,
	}
}

// Run sweeps all users. One user failing never aborts the sweep.
func (r *Recovery) Run(ctx context.Context) error {
	users, err := r.users.ListAll(ctx)
	if err != nil {
		return fmt.Errorf("recovery sweep: %w", err)
	}

	sent := 0
	for i := range users {
		user := &users[i]
		loc, err := user.Location()
		if err != nil {
			r.log.Error().Uint("user", user.ID).Str("tz", user.Timezone).Err(err).Msg("bad timezone, skipping")
			continue
		}
		yesterday := r.now().In(loc).AddDate(0, 0, -1).Format(model.DateLayout)

		tasks, err := r.tasks.ListByUserAndDate(ctx, user.ID, yesterday, openStatuses)
		if err != nil {
			r.log.Error().Uint("user", user.ID).Err(err).Msg("list yesterday tasks")
			continue
		}
		if len(tasks) == 0 {
			continue
		}

		if err := r.sender.SendMakeupReview(ctx, user.ID); err != nil {
			r.log.Error().Uint("user", user.ID).Err(err).Msg("makeup review failed")
			continue
		}
		sent++
	}

	r.log.Info().Int("users", len(users)).Int("sent", sent).Msg("recovery sweep done")
	return nil
}
