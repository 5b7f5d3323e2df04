package lifecycle

import (
	"context"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"planbot/internal/model"
)

type fakeTaskStore struct {
	tasks         map[uint]*model.Task
	statusUpdates int
	dueUpdates    int
}

func newFakeTaskStore(tasks ...*model.Task) *fakeTaskStore {
	s := &fakeTaskStore{tasks: make(map[uint]*model.Task)}
	for _, t := range tasks {
		s.tasks[t.ID] = t
	}
	return s
}

func (s *fakeTaskStore) GetByID(_ context.Context, taskID uint) (*model.Task, error) {
	t, ok := s.tasks[taskID]
	if !ok {
		return nil, nil
	}
	cp := *t
	return &cp, nil
}

func (s *fakeTaskStore) UpdateStatus(_ context.Context, taskID uint, status model.Status, at time.Time) error {
	s.statusUpdates++
	t := s.tasks[taskID]
	t.Status = status
	switch status {
	case model.StatusDone:
		t.CompletedAt = &at
	case model.StatusCanceled:
		t.CanceledAt = &at
	}
	return nil
}

func (s *fakeTaskStore) UpdateDueDate(_ context.Context, taskID uint, newDate string) error {
	s.dueUpdates++
	s.tasks[taskID].DueDate = newDate
	return nil
}

func newMachine(store *fakeTaskStore) *Machine {
	m := New(store, zerolog.Nop())
	m.now = func() time.Time {
		return time.Date(2025, 11, 8, 22, 0, 0, 0, time.UTC)
	}
	return m
}

func pendingTask(id uint, due string) *model.Task {
	return &model.Task{ID: id, UserID: 1, Content: "备份 NAS 配置", DueDate: due, Status: model.StatusPending}
}

func TestMarkDone(t *testing.T) {
	store := newFakeTaskStore(pendingTask(12, "2025-11-08"))
	m := newMachine(store)

	ok, err := m.MarkDone(context.Background(), 12)
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, model.StatusDone, store.tasks[12].Status)
	require.NotNil(t, store.tasks[12].CompletedAt)
}

func TestMarkDoneIdempotent(t *testing.T) {
	store := newFakeTaskStore(pendingTask(12, "2025-11-08"))
	m := newMachine(store)

	ok, err := m.MarkDone(context.Background(), 12)
	require.NoError(t, err)
	require.True(t, ok)

	// The repeat call is a no-op returning false, with no second mutation.
	ok, err = m.MarkDone(context.Background(), 12)
	require.NoError(t, err)
	assert.False(t, ok)
	assert.Equal(t, 1, store.statusUpdates)
}

func TestMarkDoneMissingTask(t *testing.T) {
	m := newMachine(newFakeTaskStore())
	ok, err := m.MarkDone(context.Background(), 99)
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestMarkDoneBlockedAfterCancel(t *testing.T) {
	task := pendingTask(12, "2025-11-08")
	task.Status = model.StatusCanceled
	store := newFakeTaskStore(task)
	m := newMachine(store)

	ok, err := m.MarkDone(context.Background(), 12)
	require.NoError(t, err)
	assert.False(t, ok)
	assert.Equal(t, model.StatusCanceled, store.tasks[12].Status)
}

func TestMarkCanceled(t *testing.T) {
	store := newFakeTaskStore(pendingTask(12, "2025-11-08"))
	m := newMachine(store)

	ok, err := m.MarkCanceled(context.Background(), 12)
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, model.StatusCanceled, store.tasks[12].Status)
	require.NotNil(t, store.tasks[12].CanceledAt)

	ok, err = m.MarkCanceled(context.Background(), 12)
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestPostponeRevivesMissed(t *testing.T) {
	task := pendingTask(12, "2025-11-08")
	task.Status = model.StatusMissed
	store := newFakeTaskStore(task)
	m := newMachine(store)

	newDue, ok, err := m.Postpone(context.Background(), 12, 2)
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, "2025-11-10", newDue)
	assert.Equal(t, "2025-11-10", store.tasks[12].DueDate)
	assert.Equal(t, model.StatusPending, store.tasks[12].Status)
}

func TestPostponePendingKeepsPending(t *testing.T) {
	store := newFakeTaskStore(pendingTask(12, "2025-11-08"))
	m := newMachine(store)

	newDue, ok, err := m.Postpone(context.Background(), 12, 1)
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, "2025-11-09", newDue)
	// Already pending: no extra status write.
	assert.Equal(t, 0, store.statusUpdates)
}

func TestPostponeUnparseableDueDate(t *testing.T) {
	task := pendingTask(12, "not-a-date")
	store := newFakeTaskStore(task)
	m := newMachine(store)

	_, ok, err := m.Postpone(context.Background(), 12, 2)
	require.NoError(t, err)
	assert.False(t, ok)
	assert.Equal(t, "not-a-date", store.tasks[12].DueDate)
	assert.Equal(t, 0, store.dueUpdates)
}

func TestPostponeMissingTask(t *testing.T) {
	m := newMachine(newFakeTaskStore())
	_, ok, err := m.Postpone(context.Background(), 7, 2)
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestMarkMissedOnlyFromPending(t *testing.T) {
	store := newFakeTaskStore(pendingTask(12, "2025-11-08"))
	m := newMachine(store)

	ok, err := m.MarkMissed(context.Background(), 12)
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, model.StatusMissed, store.tasks[12].Status)

	// missed → missed is rejected; so is done → missed.
	ok, err = m.MarkMissed(context.Background(), 12)
	require.NoError(t, err)
	assert.False(t, ok)

	done := pendingTask(13, "2025-11-08")
	done.Status = model.StatusDone
	store.tasks[13] = done
	ok, err = m.MarkMissed(context.Background(), 13)
	require.NoError(t, err)
	assert.False(t, ok)
}
