package bot

import (
	"context"
	"fmt"
	"strings"
	"time"

	"planbot/internal/dateparse"
	"planbot/internal/model"
)

func (b *Bot) handleCommand(ctx context.Context, chatID int64, command, args string) error {
	switch command {
	case "start":
		if _, err := b.ensureUser(ctx, chatID); err != nil {
			return err
		}
		return b.reply(ctx, chatID, msgWelcome)
	case "help":
		return b.reply(ctx, chatID, msgWelcome)
	case "add":
		return b.handleAdd(ctx, chatID)
	case "today":
		return b.handleToday(ctx, chatID)
	case "week":
		return b.handleWeek(ctx, chatID)
	case "setevening":
		return b.handleSetEvening(ctx, chatID, args)
	case "setmorning":
		return b.handleSetMorning(ctx, chatID, args)
	case "timezone":
		return b.handleTimezone(ctx, chatID, args)
	default:
		return b.reply(ctx, chatID, msgUnknownCommand)
	}
}

func (b *Bot) handleAdd(ctx context.Context, chatID int64) error {
	user, err := b.ensureUser(ctx, chatID)
	if err != nil {
		return err
	}
	if err := b.users.SetAwaitingInput(ctx, user.ID, true); err != nil {
		return err
	}
	return b.reply(ctx, chatID, msgCapturePrompt)
}

func (b *Bot) handleToday(ctx context.Context, chatID int64) error {
	user, err := b.ensureUser(ctx, chatID)
	if err != nil {
		return err
	}
	today, err := b.localToday(user)
	if err != nil {
		return err
	}

	tasks, err := b.tasks.ListByUserAndDate(ctx, user.ID, today.Format(model.DateLayout), nil)
	if err != nil {
		return err
	}
	if len(tasks) == 0 {
		return b.reply(ctx, chatID, msgNothingToday)
	}

	lines := []string{headerToday}
	for _, task := range tasks {
		lines = append(lines, listLine(task))
	}
	return b.reply(ctx, chatID, strings.Join(lines, "\n"))
}

func (b *Bot) handleWeek(ctx context.Context, chatID int64) error {
	user, err := b.ensureUser(ctx, chatID)
	if err != nil {
		return err
	}
	today, err := b.localToday(user)
	if err != nil {
		return err
	}

	start := today.Format(model.DateLayout)
	end := today.AddDate(0, 0, 6).Format(model.DateLayout)
	tasks, err := b.tasks.ListByUserAndDateRange(ctx, user.ID, start, end,
		[]model.Status{model.StatusPending, model.StatusMissed})
	if err != nil {
		return err
	}
	if len(tasks) == 0 {
		return b.reply(ctx, chatID, msgNothingThisWeek)
	}

	// Group by due date; the repository already orders by (due_date, id).
	lines := []string{headerWeek}
	currentDate := ""
	for _, task := range tasks {
		if task.DueDate != currentDate {
			currentDate = task.DueDate
			lines = append(lines, "", "📌 "+currentDate)
		}
		lines = append(lines, listLine(task))
	}
	return b.reply(ctx, chatID, strings.Join(lines, "\n"))
}

func (b *Bot) handleSetEvening(ctx context.Context, chatID int64, args string) error {
	user, err := b.ensureUser(ctx, chatID)
	if err != nil {
		return err
	}
	hour, minute, err := parseClock(args)
	if err != nil {
		return b.reply(ctx, chatID, msgBadClock)
	}
	if err := b.users.UpdateEveningTime(ctx, user.ID, hour, minute); err != nil {
		return err
	}
	user.EveningHour, user.EveningMin = hour, minute
	if err := b.jobs.RebuildUserJobs(user); err != nil {
		return err
	}
	return b.reply(ctx, chatID, fmt.Sprintf("晚间核对时间改为 %02d:%02d。", hour, minute))
}

func (b *Bot) handleSetMorning(ctx context.Context, chatID int64, args string) error {
	user, err := b.ensureUser(ctx, chatID)
	if err != nil {
		return err
	}

	if isOffInput(args) {
		if err := b.users.UpdateMorningTime(ctx, user.ID, model.MorningDisabled, 0); err != nil {
			return err
		}
		user.MorningHour, user.MorningMin = model.MorningDisabled, 0
		if err := b.jobs.RebuildUserJobs(user); err != nil {
			return err
		}
		return b.reply(ctx, chatID, "早间提醒已关闭。")
	}

	hour, minute, err := parseClock(args)
	if err != nil {
		return b.reply(ctx, chatID, msgBadClock)
	}
	if err := b.users.UpdateMorningTime(ctx, user.ID, hour, minute); err != nil {
		return err
	}
	user.MorningHour, user.MorningMin = hour, minute
	if err := b.jobs.RebuildUserJobs(user); err != nil {
		return err
	}
	return b.reply(ctx, chatID, fmt.Sprintf("早间提醒时间改为 %02d:%02d。", hour, minute))
}

func (b *Bot) handleTimezone(ctx context.Context, chatID int64, args string) error {
	user, err := b.ensureUser(ctx, chatID)
	if err != nil {
		return err
	}
	tz := strings.TrimSpace(args)
	if _, err := time.LoadLocation(tz); err != nil || tz == "" {
		return b.reply(ctx, chatID, msgBadTimezone)
	}
	if err := b.users.UpdateTimezone(ctx, user.ID, tz); err != nil {
		return err
	}
	user.Timezone = tz
	if err := b.jobs.RebuildUserJobs(user); err != nil {
		return err
	}
	return b.reply(ctx, chatID, fmt.Sprintf("时区改为 %s，每日提醒将按当地时间触发。", tz))
}

// handleText ingests free-form plan lines when the user has armed capture via
// /add or the evening prompt; anything else gets a gentle hint.
func (b *Bot) handleText(ctx context.Context, chatID int64, text string) error {
	user, err := b.ensureUser(ctx, chatID)
	if err != nil {
		return err
	}
	if !user.AwaitingInput {
		return b.reply(ctx, chatID, msgNotCapturing)
	}

	today, err := b.localToday(user)
	if err != nil {
		return err
	}

	plans, truncated := dateparse.ParseLines(text, today)
	if len(plans) == 0 {
		return b.reply(ctx, chatID, "这段文字里没有可录入的计划，再试一次？")
	}

	lines := []string{fmt.Sprintf("✅ 已录入 %d 条计划：", len(plans))}
	for _, plan := range plans {
		task, err := b.tasks.Create(ctx, user.ID, plan.Content, plan.Due.Format(model.DateLayout))
		if err != nil {
			return err
		}
		lines = append(lines, fmt.Sprintf("• %s #%d %s", task.DueDate, task.ID, task.Content))
	}
	if truncated {
		lines = append(lines, fmt.Sprintf("（超过 %d 行的部分没有录入）", dateparse.MaxLines))
	}

	if err := b.users.SetAwaitingInput(ctx, user.ID, false); err != nil {
		return err
	}
	b.log.Info().Uint("user", user.ID).Int("tasks", len(plans)).Msg("captured plans")
	return b.reply(ctx, chatID, strings.Join(lines, "\n"))
}
