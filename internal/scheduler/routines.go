package scheduler

import (
	"context"
	"fmt"
	"strings"
	"time"

	"planbot/internal/action"
	"planbot/internal/model"
	"planbot/internal/notify"
)

const (
	headerReview       = "🧾 日终核对（今天应完成）："
	headerMakeupReview = "🧾 日终核对（含昨日未清）："
	headerMorning      = "🌅 今日待办："
	newPlanPrompt      = "要不要录入「明天 + 一周内」的新计划？"
)

// EveningRoutine is the once-daily per-user review. It resets the nightly
// skip gate, reviews today's open tasks, and then, unless the user skipped
// in the meantime, invites new plans.
func (s *Scheduler) EveningRoutine(ctx context.Context, userID uint) {
	log := s.log.With().Uint("user", userID).Logger()
	log.Info().Msg("evening routine fired")

	user, err := s.users.GetByID(ctx, userID)
	if err != nil {
		log.Error().Err(err).Msg("load user")
		return
	}
	if user == nil {
		log.Warn().Msg("user gone, trigger stale")
		return
	}

	// Reset the nightly gate before anything else so tonight's prompt
	// decision starts from a clean flag.
	if err := s.users.SetSkippedTonight(ctx, userID, false); err != nil {
		log.Error().Err(err).Msg("reset skip flag")
	}

	today, err := s.localDate(user, 0)
	if err != nil {
		log.Error().Err(err).Msg("resolve local date")
		return
	}

	tasks, err := s.tasks.ListByUserAndDate(ctx, userID, today, openStatuses)
	if err != nil {
		log.Error().Err(err).Msg("list due tasks")
		return
	}
	if len(tasks) > 0 {
		if err := s.sendReview(ctx, user.ChatID, tasks, false); err != nil {
			log.Error().Err(err).Msg("send review")
		}
	}

	// Re-read: a button click may have set the skip flag while the review
	// was going out. The race with a click landing right now is accepted;
	// the guarantee is "ask at most about once more", not exactly once.
	user, err = s.users.GetByID(ctx, userID)
	if err != nil {
		log.Error().Err(err).Msg("re-read user")
		return
	}
	if user == nil || user.SkippedTonight {
		return
	}
	buttons := [][]notify.Button{notify.Row(
		notify.Button{Label: "现在录入", Action: action.CaptureNow()},
		notify.Button{Label: "今晚跳过", Action: action.SkipTonight()},
	)}
	if err := s.notifier.Send(ctx, user.ChatID, newPlanPrompt, buttons); err != nil {
		log.Error().Err(err).Msg("send new plan prompt")
	}
}

// MorningChecklist announces today's open tasks in one consolidated message
// with no buttons. No tasks means no message.
func (s *Scheduler) MorningChecklist(ctx context.Context, userID uint) {
	log := s.log.With().Uint("user", userID).Logger()
	log.Info().Msg("morning checklist fired")

	user, err := s.users.GetByID(ctx, userID)
	if err != nil {
		log.Error().Err(err).Msg("load user")
		return
	}
	if user == nil {
		log.Warn().Msg("user gone, trigger stale")
		return
	}

	today, err := s.localDate(user, 0)
	if err != nil {
		log.Error().Err(err).Msg("resolve local date")
		return
	}

	tasks, err := s.tasks.ListByUserAndDate(ctx, userID, today, openStatuses)
	if err != nil {
		log.Error().Err(err).Msg("list due tasks")
		return
	}
	if len(tasks) == 0 {
		log.Debug().Msg("nothing due, staying silent")
		return
	}

	lines := make([]string, 0, len(tasks)+1)
	lines = append(lines, headerMorning)
	for _, task := range tasks {
		lines = append(lines, taskLine(task))
	}
	if err := s.notifier.Send(ctx, user.ChatID, strings.Join(lines, "\n"), nil); err != nil {
		log.Error().Err(err).Msg("send morning checklist")
	}
}

// SendMakeupReview backfills the review for the user's local yesterday.
// Called by the startup recovery sweep, never by a trigger.
func (s *Scheduler) SendMakeupReview(ctx context.Context, userID uint) error {
	user, err := s.users.GetByID(ctx, userID)
	if err != nil {
		return err
	}
	if user == nil {
		return fmt.Errorf("makeup review: user %d not found", userID)
	}

	yesterday, err := s.localDate(user, -1)
	if err != nil {
		return err
	}

	tasks, err := s.tasks.ListByUserAndDate(ctx, userID, yesterday, openStatuses)
	if err != nil {
		return err
	}
	if len(tasks) == 0 {
		return nil
	}

	s.log.Info().Uint("user", userID).Int("tasks", len(tasks)).Msg("sending makeup review")
	return s.sendReview(ctx, user.ChatID, tasks, true)
}

// sendReview sends the review header followed by one message per task, each
// carrying three action buttons, in batches of BatchSize with a delay in
// between.
func (s *Scheduler) sendReview(ctx context.Context, chatID int64, tasks []model.Task, makeup bool) error {
	header := headerReview
	if makeup {
		header = headerMakeupReview
	}
	if err := s.notifier.Send(ctx, chatID, header, nil); err != nil {
		return err
	}

	for i, task := range tasks {
		if i > 0 && i%BatchSize == 0 {
			select {
			case <-ctx.Done():
				return ctx.Err()
			case <-time.After(s.batchDelay):
			}
		}
		if err := s.notifier.Send(ctx, chatID, taskLine(task), taskButtons(task.ID)); err != nil {
			return err
		}
	}
	return nil
}

func taskLine(t model.Task) string {
	return fmt.Sprintf("• #%d %s", t.ID, t.Content)
}

func taskButtons(taskID uint) [][]notify.Button {
	return [][]notify.Button{notify.Row(
		notify.Button{Label: "✅ 完成", Action: action.TaskDone(taskID)},
		notify.Button{Label: "⏳ 未完成", Action: action.TaskUndone(taskID)},
		notify.Button{Label: "🗑 取消", Action: action.TaskCancel(taskID)},
	)}
}
