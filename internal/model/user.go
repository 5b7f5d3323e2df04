package model

import "time"

// MorningDisabled is stored in MorningHour when the user turned the
// morning checklist off. Disabled is an explicit state, not an unset one.
const MorningDisabled = -1

// User stores per-chat reminder configuration.
type User struct {
	ID       uint   `gorm:"primaryKey"`
	ChatID   int64  `gorm:"uniqueIndex"`
	Timezone string `gorm:"size:64"`

	EveningHour int
	EveningMin  int
	MorningHour int
	MorningMin  int

	// AwaitingInput marks that the next plain-text message is a plan list.
	AwaitingInput bool `gorm:"default:false"`
	// SkippedTonight suppresses the evening new-plan prompt until the next
	// evening routine resets it.
	SkippedTonight bool `gorm:"default:false"`

	CreatedAt time.Time
	UpdatedAt time.Time

	Tasks []Task `gorm:"foreignKey:UserID;constraint:OnDelete:CASCADE"`
}

func (u *User) MorningEnabled() bool {
	return u.MorningHour != MorningDisabled
}

// Location resolves the user's IANA timezone.
func (u *User) Location() (*time.Location, error) {
	return time.LoadLocation(u.Timezone)
}
