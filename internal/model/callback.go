package model

import "time"

// ProcessedCallback is an idempotency record for one button press.
// The unique CallbackID insert is the gate that keeps a duplicate click
// from re-applying a task transition. Rows are written once and kept.
type ProcessedCallback struct {
	ID          uint   `gorm:"primaryKey"`
	CallbackID  string `gorm:"size:128;uniqueIndex"`
	TaskID      uint
	Action      string `gorm:"size:32"`
	ProcessedAt time.Time
}
