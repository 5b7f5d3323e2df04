package repository

import (
	"context"
	"errors"
	"fmt"
	"time"

	"gorm.io/gorm"

	"planbot/internal/model"
)

// ErrCallbackProcessed is returned by Insert when the callback identifier was
// already recorded. A pre-existing row is conclusive proof of prior handling.
var ErrCallbackProcessed = errors.New("callback already processed")

// CallbackRepository records handled button presses for idempotency.
type CallbackRepository struct {
	db *gorm.DB
}

func NewCallbackRepository(db *gorm.DB) *CallbackRepository {
	return &CallbackRepository{db: db}
}

func (r *CallbackRepository) Exists(ctx context.Context, callbackID string) (bool, error) {
	var count int64
	if err := r.db.WithContext(ctx).Model(&model.ProcessedCallback{}).
		Where("callback_id = ?", callbackID).Count(&count).Error; err != nil {
		return false, fmt.Errorf("check callback %s: %w", callbackID, err)
	}
	return count > 0, nil
}

// Insert records a callback identifier exactly once. The unique index on
// callback_id makes concurrent duplicates lose with ErrCallbackProcessed.
func (r *CallbackRepository) Insert(ctx context.Context, callbackID string, taskID uint, action string) error {
	rec := model.ProcessedCallback{
		CallbackID:  callbackID,
		TaskID:      taskID,
		Action:      action,
		ProcessedAt: time.Now().UTC(),
	}
	err := r.db.WithContext(ctx).Create(&rec).Error
	if errors.Is(err, gorm.ErrDuplicatedKey) {
		return ErrCallbackProcessed
	}
	if err != nil {
		return fmt.Errorf("record callback %s: %w", callbackID, err)
	}
	return nil
}
