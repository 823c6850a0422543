package services

import (
	"sync"
	"time"
)

type Decision string

const (
	Allowed                   Decision = "allowed"
	DeniedFreeLimitReached    Decision = "denied_free_limit_reached"
	DeniedSubscriptionExpired Decision = "denied_subscription_expired"
)

// QuotaService authorizes analyses against the free allowance and the
// subscription window. In-flight free-tier authorizations are held as
// reservations in memory so two concurrent analyses can never both claim
// the last free slot; the stored counter moves only when a reservation is
// committed, which keeps it monotonic.
type QuotaService struct {
	store     Store
	freeLimit int

	mu       sync.Mutex
	reserved map[uint]int
}

func NewQuotaService(store Store, freeLimit int) *QuotaService {
	return &QuotaService{store: store, freeLimit: freeLimit, reserved: make(map[uint]int)}
}

// Reservation is one authorized analysis slot. Commit after the analysis
// succeeded, Release if it did not happen. Subscribed usage carries a
// no-op reservation: it neither counts nor needs releasing, but callers
// treat both paths the same.
type Reservation struct {
	svc    *QuotaService
	userID uint
	free   bool
	done   bool
}

// Authorize decides whether the user may run one analysis right now.
// Order: active subscription wins, then the free allowance, then the
// denial that best explains the situation.
func (s *QuotaService) Authorize(userID uint, now time.Time) (Decision, *Reservation, error) {
	q, err := s.store.QuotaByUser(userID)
	if err != nil {
		return "", nil, err
	}

	if q.Subscribed(now) {
		return Allowed, &Reservation{svc: s, userID: userID, free: false}, nil
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if q.FreeUsed+s.reserved[userID] < s.freeLimit {
		s.reserved[userID]++
		return Allowed, &Reservation{svc: s, userID: userID, free: true}, nil
	}

	if q.SubscribedUntil != nil {
		return DeniedSubscriptionExpired, nil, nil
	}
	return DeniedFreeLimitReached, nil, nil
}

// Commit consumes the reserved slot. Only the free path increments the
// stored counter.
func (r *Reservation) Commit() error {
	if r == nil || r.done {
		return nil
	}
	r.done = true
	if !r.free {
		return nil
	}

	r.svc.mu.Lock()
	if r.svc.reserved[r.userID] > 0 {
		r.svc.reserved[r.userID]--
	}
	r.svc.mu.Unlock()

	q, err := r.svc.store.QuotaByUser(r.userID)
	if err != nil {
		return err
	}
	q.FreeUsed++
	return r.svc.store.SaveQuota(q)
}

// Release returns the reserved slot without consuming it.
func (r *Reservation) Release() {
	if r == nil || r.done || !r.free {
		if r != nil {
			r.done = true
		}
		return
	}
	r.done = true
	r.svc.mu.Lock()
	if r.svc.reserved[r.userID] > 0 {
		r.svc.reserved[r.userID]--
	}
	r.svc.mu.Unlock()
}

// RemainingFree reports how many free analyses the user still has,
// counting outstanding reservations as spent.
func (s *QuotaService) RemainingFree(userID uint) (int, error) {
	q, err := s.store.QuotaByUser(userID)
	if err != nil {
		return 0, err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	rem := s.freeLimit - q.FreeUsed - s.reserved[userID]
	if rem < 0 {
		rem = 0
	}
	return rem, nil
}

// GrantSubscription extends the subscription by whole months. A renewal
// before expiry extends from the current expiry; after expiry it starts
// fresh from now. Payment validity is the caller's concern.
func (s *QuotaService) GrantSubscription(userID uint, months int, now time.Time, paymentRef string) (time.Time, error) {
	q, err := s.store.QuotaByUser(userID)
	if err != nil {
		return time.Time{}, err
	}

	base := now
	if q.SubscribedUntil != nil && q.SubscribedUntil.After(now) {
		base = *q.SubscribedUntil
	}
	until := base.AddDate(0, months, 0)

	q.SubscribedUntil = &until
	if paymentRef != "" {
		q.LastPaymentRef = paymentRef
	}
	if err := s.store.SaveQuota(q); err != nil {
		return time.Time{}, err
	}
	return until, nil
}

// CancelSubscription clears the expiry. It is the one sanctioned way the
// window ever moves backwards.
func (s *QuotaService) CancelSubscription(userID uint) error {
	q, err := s.store.QuotaByUser(userID)
	if err != nil {
		return err
	}
	q.SubscribedUntil = nil
	return s.store.SaveQuota(q)
}
