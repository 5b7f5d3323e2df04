// Package lifecycle implements the task state machine.
//
// pending → {done, canceled, missed}; postponing returns a task to pending
// with a new due date and is the only way back from missed. done and
// canceled are terminal.
//
// Every operation is a single-record mutation. Duplicate-click safety is not
// handled here; the callback idempotency gate at the transport boundary is
// responsible for that.
package lifecycle

import (
	"context"
	"time"

	"github.com/rs/zerolog"

	"planbot/internal/model"
)

// TaskStore is the slice of the record store the state machine needs.
// Lookups return (nil, nil) for absent tasks.
type TaskStore interface {
	GetByID(ctx context.Context, taskID uint) (*model.Task, error)
	UpdateStatus(ctx context.Context, taskID uint, status model.Status, at time.Time) error
	UpdateDueDate(ctx context.Context, taskID uint, newDate string) error
}

// Machine applies task state transitions.
type Machine struct {
	tasks TaskStore
	log   zerolog.Logger
	now   func() time.Time
}

func New(tasks TaskStore, log zerolog.Logger) *Machine {
	return &Machine{
		tasks: tasks,
		log:   log.With().Str("component", "lifecycle").Logger(),
		now:   time.Now,
	}
}

// MarkDone transitions a task to done and stamps the completion time.
// It is a no-op returning false when the task is absent or already in a
// terminal state; repeat calls after success return false.
func (m *Machine) MarkDone(ctx context.Context, taskID uint) (bool, error) {
	return m.markTerminal(ctx, taskID, model.StatusDone)
}

// MarkCanceled is symmetric to MarkDone for the canceled status.
func (m *Machine) MarkCanceled(ctx context.Context, taskID uint) (bool, error) {
	return m.markTerminal(ctx, taskID, model.StatusCanceled)
}

func (m *Machine) markTerminal(ctx context.Context, taskID uint, status model.Status) (bool, error) {
	task, err := m.tasks.GetByID(ctx, taskID)
	if err != nil {
		return false, err
	}
	if task == nil {
		m.log.Warn().Uint("task", taskID).Msg("task not found")
		return false, nil
	}
	if task.Status.Terminal() {
		m.log.Debug().Uint("task", taskID).Str("status", string(task.Status)).Msg("task already settled")
		return false, nil
	}
	if err := m.tasks.UpdateStatus(ctx, taskID, status, m.now().UTC()); err != nil {
		return false, err
	}
	m.log.Info().Uint("task", taskID).Uint("user", task.UserID).Str("status", string(status)).Msg("task transitioned")
	return true, nil
}

// Postpone moves a task's due date forward by the given number of days and
// forces the status back to pending regardless of what it was. Returns the
// new due date; ok is false when the task is absent or its stored due date
// does not parse (the mutation is aborted, never the process).
func (m *Machine) Postpone(ctx context.Context, taskID uint, days int) (string, bool, error) {
	task, err := m.tasks.GetByID(ctx, taskID)
	if err != nil {
		return "", false, err
	}
	if task == nil {
		m.log.Warn().Uint("task", taskID).Msg("task not found")
		return "", false, nil
	}

	due, err := time.Parse(model.DateLayout, task.DueDate)
	if err != nil {
		m.log.Error().Uint("task", taskID).Str("due", task.DueDate).Msg("stored due date unparseable")
		return "", false, nil
	}

	newDue := due.AddDate(0, 0, days).Format(model.DateLayout)
	if err := m.tasks.UpdateDueDate(ctx, taskID, newDue); err != nil {
		return "", false, err
	}
	if task.Status != model.StatusPending {
		if err := m.tasks.UpdateStatus(ctx, taskID, model.StatusPending, m.now().UTC()); err != nil {
			return "", false, err
		}
	}

	m.log.Info().Uint("task", taskID).Int("days", days).Str("due", newDue).Msg("task postponed")
	return newDue, true, nil
}

// MarkMissed transitions a pending task to missed. Any other current status
// means a user action already settled the task; the call is then a no-op.
func (m *Machine) MarkMissed(ctx context.Context, taskID uint) (bool, error) {
	task, err := m.tasks.GetByID(ctx, taskID)
	if err != nil {
		return false, err
	}
	if task == nil {
		m.log.Warn().Uint("task", taskID).Msg("task not found")
		return false, nil
	}
	if task.Status != model.StatusPending {
		m.log.Debug().Uint("task", taskID).Str("status", string(task.Status)).Msg("not pending, skip missed mark")
		return false, nil
	}
	if err := m.tasks.UpdateStatus(ctx, taskID, model.StatusMissed, m.now().UTC()); err != nil {
		return false, err
	}
	m.log.Info().Uint("task", taskID).Msg("task marked missed")
	return true, nil
}
