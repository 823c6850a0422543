package models

import (
	"time"

	"gorm.io/gorm"
)

// QuotaState tracks what a user is entitled to. FreeUsed only ever grows;
// SubscribedUntil only ever moves forward (renewal) or is cleared by an
// explicit cancellation.
type QuotaState struct {
	gorm.Model
	UserID uint `gorm:"uniqueIndex;not null"`

	FreeUsed        int
	SubscribedUntil *time.Time `gorm:"index"`
	LastPaymentRef  string     `gorm:"size:255"`
}

func (q *QuotaState) Subscribed(now time.Time) bool {
	return q.SubscribedUntil != nil && q.SubscribedUntil.After(now)
}
