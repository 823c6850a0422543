package models

import (
	"encoding/json"
	"time"

	"gorm.io/gorm"
)

type DialogState string

const (
	StateIdle                 DialogState = "idle"
	StateAwaitingProfileField DialogState = "awaiting_profile_field"
	StateAwaitingMealInput    DialogState = "awaiting_meal_input"
	StateAwaitingSubscription DialogState = "awaiting_subscription_choice"
	StateAwaitingPayment      DialogState = "awaiting_payment_confirmation"
)

// ConversationState is the single dialog record per user. It is
// overwritten on every transition; Revision is bumped each time so a
// handler that released the user lock during an external call can detect
// that somebody else moved the dialog underneath it.
type ConversationState struct {
	gorm.Model
	UserID uint `gorm:"uniqueIndex;not null"`

	State      DialogState `gorm:"size:40;not null"`
	FieldIndex int         // which setup step, when State is awaiting_profile_field
	StepData   string      `gorm:"type:text"` // JSON key/value, step specific
	EnteredAt  time.Time
	Revision   int64
}

func (c *ConversationState) Data() map[string]string {
	out := map[string]string{}
	if c.StepData != "" {
		_ = json.Unmarshal([]byte(c.StepData), &out)
	}
	return out
}

func (c *ConversationState) SetData(d map[string]string) {
	if len(d) == 0 {
		c.StepData = ""
		return
	}
	b, _ := json.Marshal(d)
	c.StepData = string(b)
}

// Stale reports whether the dialog sat in a non-idle state longer than
// the inactivity window.
func (c *ConversationState) Stale(now time.Time, window time.Duration) bool {
	return c.State != StateIdle && now.Sub(c.EnteredAt) > window
}
