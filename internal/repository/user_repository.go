package repository

import (
	"context"
	"errors"
	"fmt"

	"gorm.io/gorm"

	"planbot/internal/model"
)

// UserRepository handles CRUD for users.
// Lookups return (nil, nil) when no row exists; absence is a recoverable
// condition for every caller, not an error.
type UserRepository struct {
	db *gorm.DB
}

func NewUserRepository(db *gorm.DB) *UserRepository {
	return &UserRepository{db: db}
}

func (r *UserRepository) GetByID(ctx context.Context, id uint) (*model.User, error) {
	var user model.User
	err := r.db.WithContext(ctx).First(&user, id).Error
	switch {
	case err == nil:
		return &user, nil
	case errors.Is(err, gorm.ErrRecordNotFound):
		return nil, nil
	default:
		return nil, fmt.Errorf("find user %d: %w", id, err)
	}
}

func (r *UserRepository) GetByChatID(ctx context.Context, chatID int64) (*model.User, error) {
	var user model.User
	err := r.db.WithContext(ctx).Where("chat_id = ?", chatID).First(&user).Error
	switch {
	case err == nil:
		return &user, nil
	case errors.Is(err, gorm.ErrRecordNotFound):
		return nil, nil
	default:
		return nil, fmt.Errorf("find user by chat %d: %w", chatID, err)
	}
}

// Create registers a new user with the given reminder configuration.
func (r *UserRepository) Create(ctx context.Context, chatID int64, tz string, eveningHour, eveningMin, morningHour, morningMin int) (*model.User, error) {
	user := model.User{
		ChatID:      chatID,
		Timezone:    tz,
		EveningHour: eveningHour,
		EveningMin:  eveningMin,
		MorningHour: morningHour,
		MorningMin:  morningMin,
	}
	if err := r.db.WithContext(ctx).Create(&user).Error; err != nil {
		return nil, fmt.Errorf("create user: %w", err)
	}
	return &user, nil
}

func (r *UserRepository) UpdateTimezone(ctx context.Context, userID uint, tz string) error {
	return r.updateColumns(ctx, userID, map[string]interface{}{"timezone": tz})
}

func (r *UserRepository) UpdateEveningTime(ctx context.Context, userID uint, hour, minute int) error {
	return r.updateColumns(ctx, userID, map[string]interface{}{
		"evening_hour": hour,
		"evening_min":  minute,
	})
}

// UpdateMorningTime sets the morning checklist time. Pass
// model.MorningDisabled as the hour to turn the checklist off.
func (r *UserRepository) UpdateMorningTime(ctx context.Context, userID uint, hour, minute int) error {
	return r.updateColumns(ctx, userID, map[string]interface{}{
		"morning_hour": hour,
		"morning_min":  minute,
	})
}

func (r *UserRepository) SetAwaitingInput(ctx context.Context, userID uint, awaiting bool) error {
	return r.updateColumns(ctx, userID, map[string]interface{}{"awaiting_input": awaiting})
}

func (r *UserRepository) SetSkippedTonight(ctx context.Context, userID uint, skipped bool) error {
	return r.updateColumns(ctx, userID, map[string]interface{}{"skipped_tonight": skipped})
}

func (r *UserRepository) ListAll(ctx context.Context) ([]model.User, error) {
	var users []model.User
	if err := r.db.WithContext(ctx).Find(&users).Error; err != nil {
		return nil, fmt.Errorf("list users: %w", err)
	}
	return users, nil
}

func (r *UserRepository) updateColumns(ctx context.Context, userID uint, updates map[string]interface{}) error {
	res := r.db.WithContext(ctx).Model(&model.User{}).Where("id = ?", userID).Updates(updates)
	if res.Error != nil {
		return fmt.Errorf("update user %d: %w", userID, res.Error)
	}
	return nil
}
