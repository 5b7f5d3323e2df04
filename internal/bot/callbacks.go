package bot

import (
	"context"
	"errors"
	"fmt"

	"planbot/internal/action"
	"planbot/internal/notify"
	"planbot/internal/repository"
)

// handleAction decodes one callback press and applies it. The processed-callback
// record is written before any state mutation, so a redelivered or double-pressed
// button mutates at most once regardless of interleaving.
func (b *Bot) handleAction(ctx context.Context, callbackID string, chatID int64, data string) error {
	act, err := action.Parse(data)
	if err != nil {
		b.log.Warn().Str("data", data).Err(err).Msg("malformed callback")
		return b.reply(ctx, chatID, msgTryAgain)
	}

	seen, err := b.callbacks.Exists(ctx, callbackID)
	if err != nil {
		return b.reply(ctx, chatID, msgTryAgain)
	}
	if seen {
		return b.reply(ctx, chatID, msgAlreadyHandled)
	}
	if err := b.callbacks.Insert(ctx, callbackID, act.TaskID, act.Token()); err != nil {
		if errors.Is(err, repository.ErrCallbackProcessed) {
			return b.reply(ctx, chatID, msgAlreadyHandled)
		}
		return b.reply(ctx, chatID, msgTryAgain)
	}

	switch act.Kind {
	case action.KindTaskDone:
		ok, err := b.machine.MarkDone(ctx, act.TaskID)
		if err != nil {
			return b.reply(ctx, chatID, msgTryAgain)
		}
		if !ok {
			return b.reply(ctx, chatID, msgTaskClosed)
		}
		return b.reply(ctx, chatID, fmt.Sprintf("✅ #%d 已完成。", act.TaskID))

	case action.KindTaskUndone:
		// Not done yet: offer to push the task forward instead of mutating.
		buttons := [][]notify.Button{notify.Row(
			notify.Button{Label: "+1 天", Action: action.TaskPostpone(act.TaskID, 1)},
			notify.Button{Label: "+2 天", Action: action.TaskPostpone(act.TaskID, 2)},
			notify.Button{Label: "+3 天", Action: action.TaskPostpone(act.TaskID, 3)},
		)}
		return b.replies.Send(ctx, chatID, msgPickPostpone, buttons)

	case action.KindTaskPostpone:
		newDue, ok, err := b.machine.Postpone(ctx, act.TaskID, act.Days)
		if err != nil {
			return b.reply(ctx, chatID, msgTryAgain)
		}
		if !ok {
			return b.reply(ctx, chatID, msgTaskGone)
		}
		return b.reply(ctx, chatID, fmt.Sprintf("⏭ #%d 顺延到 %s。", act.TaskID, newDue))

	case action.KindTaskCancel:
		ok, err := b.machine.MarkCanceled(ctx, act.TaskID)
		if err != nil {
			return b.reply(ctx, chatID, msgTryAgain)
		}
		if !ok {
			return b.reply(ctx, chatID, msgTaskClosed)
		}
		return b.reply(ctx, chatID, fmt.Sprintf("🗑 #%d 已取消。", act.TaskID))

	case action.KindCaptureNow:
		user, err := b.ensureUser(ctx, chatID)
		if err != nil {
			return err
		}
		if err := b.users.SetAwaitingInput(ctx, user.ID, true); err != nil {
			return err
		}
		return b.reply(ctx, chatID, msgCapturePrompt)

	case action.KindSkipTonight:
		user, err := b.ensureUser(ctx, chatID)
		if err != nil {
			return err
		}
		if err := b.users.SetSkippedTonight(ctx, user.ID, true); err != nil {
			return err
		}
		return b.reply(ctx, chatID, msgSkipAck)
	}

	return nil
}
