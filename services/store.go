package services

import (
	"errors"
	"time"

	"nutribot/models"
)

var ErrNotFound = errors.New("record not found")

// UsageCounts is what the admin health endpoint reports.
type UsageCounts struct {
	Users         int64 `json:"users"`
	Entries       int64 `json:"entries"`
	ActiveSubs    int64 `json:"active_subscriptions"`
	FreeUsedTotal int64 `json:"free_analyses_used"`
}

// Store is the keyed create/read/update access the core needs. The
// production implementation is GormStore; MemoryStore backs development
// runs and tests.
type Store interface {
	GetOrCreateUser(telegramID int64, username, firstName, lastName string) (*models.User, error)

	ProfileByUser(userID uint) (*models.Profile, error)
	SaveProfile(p *models.Profile) error

	CreateEntry(e *models.FoodEntry) error
	EntriesBetween(userID uint, from, to time.Time) ([]models.FoodEntry, error)
	// EntryDates returns distinct dates having at least one entry,
	// strictly on the given side of the boundary, newest-first when
	// backward and oldest-first otherwise. Dates are midnight-truncated.
	EntryDates(userID uint, boundary time.Time, backward bool, limit int) ([]time.Time, error)

	QuotaByUser(userID uint) (*models.QuotaState, error)
	SaveQuota(q *models.QuotaState) error

	ConversationByUser(userID uint) (*models.ConversationState, error)
	SaveConversation(c *models.ConversationState) error

	Counts(now time.Time) (UsageCounts, error)
}
