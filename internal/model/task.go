package model

import "time"

// DateLayout is the canonical calendar-date form used for due dates.
const DateLayout = "2006-01-02"

// Status is the lifecycle state of a task.
type Status string

const (
	StatusPending  Status = "pending"
	StatusDone     Status = "done"
	StatusCanceled Status = "canceled"
	StatusMissed   Status = "missed"
)

// Terminal reports whether no further transition is permitted,
// except that postponing may revive a missed task.
func (s Status) Terminal() bool {
	return s == StatusDone || s == StatusCanceled
}

// Task represents a single plan item. Tasks are never physically deleted;
// done and canceled are terminal in place.
type Task struct {
	ID      uint   `gorm:"primaryKey"`
	UserID  uint   `gorm:"index:idx_task_user_due,priority:1;index:idx_task_user_status_due,priority:1"`
	Content string `gorm:"size:512"`

	// DueDate is a calendar date (DateLayout) in the owning user's calendar,
	// resolved once at creation and changed only by postponement.
	DueDate string `gorm:"size:10;index:idx_task_user_due,priority:2;index:idx_task_user_status_due,priority:3"`
	Status  Status `gorm:"size:16;default:pending;index:idx_task_user_status_due,priority:2"`

	CreatedAt   time.Time
	UpdatedAt   time.Time
	CompletedAt *time.Time
	CanceledAt  *time.Time
}
