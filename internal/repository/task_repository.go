package repository

import (
	"context"
	"errors"
	"fmt"
	"time"

	"gorm.io/gorm"

	"planbot/internal/model"
)

// TaskRepository handles CRUD for tasks.
type TaskRepository struct {
	db *gorm.DB
}

func NewTaskRepository(db *gorm.DB) *TaskRepository {
	return &TaskRepository{db: db}
}

func (r *TaskRepository) Create(ctx context.Context, userID uint, content, dueDate string) (*model.Task, error) {
	task := model.Task{
		UserID:  userID,
		Content: content,
		DueDate: dueDate,
		Status:  model.StatusPending,
	}
	if err := r.db.WithContext(ctx).Create(&task).Error; err != nil {
		return nil, fmt.Errorf("create task: %w", err)
	}
	return &task, nil
}

func (r *TaskRepository) GetByID(ctx context.Context, taskID uint) (*model.Task, error) {
	var task model.Task
	err := r.db.WithContext(ctx).First(&task, taskID).Error
	switch {
	case err == nil:
		return &task, nil
	case errors.Is(err, gorm.ErrRecordNotFound):
		return nil, nil
	default:
		return nil, fmt.Errorf("find task %d: %w", taskID, err)
	}
}

// ListByUserAndDate returns the user's tasks due on the given calendar date,
// optionally restricted to the given statuses.
func (r *TaskRepository) ListByUserAndDate(ctx context.Context, userID uint, date string, statuses []model.Status) ([]model.Task, error) {
	var tasks []model.Task
	q := r.db.WithContext(ctx).Where("user_id = ? AND due_date = ?", userID, date)
	if len(statuses) > 0 {
		q = q.Where("status IN ?", statuses)
	}
	if err := q.Order("id ASC").Find(&tasks).Error; err != nil {
		return nil, fmt.Errorf("list tasks for user %d on %s: %w", userID, date, err)
	}
	return tasks, nil
}

// ListByUserAndDateRange returns tasks due in [start, end], ordered by
// (due_date, id).
func (r *TaskRepository) ListByUserAndDateRange(ctx context.Context, userID uint, start, end string, statuses []model.Status) ([]model.Task, error) {
	var tasks []model.Task
	q := r.db.WithContext(ctx).Where("user_id = ? AND due_date >= ? AND due_date <= ?", userID, start, end)
	if len(statuses) > 0 {
		q = q.Where("status IN ?", statuses)
	}
	if err := q.Order("due_date ASC, id ASC").Find(&tasks).Error; err != nil {
		return nil, fmt.Errorf("list tasks for user %d in [%s, %s]: %w", userID, start, end, err)
	}
	return tasks, nil
}

// UpdateStatus transitions a task and stamps the matching timestamp for
// terminal statuses.
func (r *TaskRepository) UpdateStatus(ctx context.Context, taskID uint, status model.Status, at time.Time) error {
	updates := map[string]interface{}{"status": status}
	switch status {
	case model.StatusDone:
		updates["completed_at"] = at
	case model.StatusCanceled:
		updates["canceled_at"] = at
	}
	if err := r.db.WithContext(ctx).Model(&model.Task{}).Where("id = ?", taskID).Updates(updates).Error; err != nil {
		return fmt.Errorf("update task %d status: %w", taskID, err)
	}
	return nil
}

func (r *TaskRepository) UpdateDueDate(ctx context.Context, taskID uint, newDate string) error {
	if err := r.db.WithContext(ctx).Model(&model.Task{}).Where("id = ?", taskID).
		Update("due_date", newDate).Error; err != nil {
		return fmt.Errorf("update task %d due date: %w", taskID, err)
	}
	return nil
}
