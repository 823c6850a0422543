package services

import (
	"errors"
	"time"
)

type Direction string

const (
	Backward Direction = "backward"
	Forward  Direction = "forward"
)

var ErrBadDirection = errors.New("direction must be backward or forward")

type CalendarService struct {
	store Store
}

func NewCalendarService(store Store) *CalendarService {
	return &CalendarService{store: store}
}

// ListDays pages through the dates that have at least one entry. The
// anchor is a cursor: returned dates are strictly before (backward,
// newest first) or strictly after (forward, oldest first) the anchor's
// date, so resuming from the last returned date never repeats or skips a
// day even while new entries keep arriving.
func (s *CalendarService) ListDays(userID uint, anchor time.Time, dir Direction, pageSize int) ([]time.Time, error) {
	if pageSize <= 0 {
		pageSize = 7
	}

	switch dir {
	case Backward:
		return s.store.EntryDates(userID, dayStart(anchor), true, pageSize)
	case Forward:
		boundary := dayStart(anchor).AddDate(0, 0, 1)
		return s.store.EntryDates(userID, boundary, false, pageSize)
	default:
		return nil, ErrBadDirection
	}
}
