package services

import (
	"sort"
	"sync"
	"time"

	"nutribot/models"
)

// MemoryStore keeps everything in process memory. It exists for local
// development without a Postgres instance and for tests; semantics match
// GormStore.
type MemoryStore struct {
	mu     sync.RWMutex
	nextID uint

	users         map[int64]*models.User
	profiles      map[uint]*models.Profile
	entries       map[uint][]models.FoodEntry
	quotas        map[uint]*models.QuotaState
	conversations map[uint]*models.ConversationState
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		users:         make(map[int64]*models.User),
		profiles:      make(map[uint]*models.Profile),
		entries:       make(map[uint][]models.FoodEntry),
		quotas:        make(map[uint]*models.QuotaState),
		conversations: make(map[uint]*models.ConversationState),
	}
}

func (s *MemoryStore) id() uint {
	s.nextID++
	return s.nextID
}

func (s *MemoryStore) GetOrCreateUser(telegramID int64, username, firstName, lastName string) (*models.User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if u, ok := s.users[telegramID]; ok {
		cp := *u
		return &cp, nil
	}
	u := &models.User{
		TelegramID: telegramID,
		Username:   username,
		FirstName:  firstName,
		LastName:   lastName,
	}
	u.ID = s.id()
	u.CreatedAt = time.Now()
	s.users[telegramID] = u
	cp := *u
	return &cp, nil
}

func (s *MemoryStore) ProfileByUser(userID uint) (*models.Profile, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	p, ok := s.profiles[userID]
	if !ok {
		return nil, ErrNotFound
	}
	cp := *p
	return &cp, nil
}

func (s *MemoryStore) SaveProfile(p *models.Profile) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if p.ID == 0 {
		p.ID = s.id()
		p.CreatedAt = time.Now()
	}
	p.UpdatedAt = time.Now()
	cp := *p
	s.profiles[p.UserID] = &cp
	return nil
}

func (s *MemoryStore) CreateEntry(e *models.FoodEntry) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	e.ID = s.id()
	e.CreatedAt = time.Now()
	s.entries[e.UserID] = append(s.entries[e.UserID], *e)
	return nil
}

func (s *MemoryStore) EntriesBetween(userID uint, from, to time.Time) ([]models.FoodEntry, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	var out []models.FoodEntry
	for _, e := range s.entries[userID] {
		if !e.EatenAt.Before(from) && e.EatenAt.Before(to) {
			out = append(out, e)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].EatenAt.Before(out[j].EatenAt) })
	return out, nil
}

func (s *MemoryStore) EntryDates(userID uint, boundary time.Time, backward bool, limit int) ([]time.Time, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	seen := map[string]time.Time{}
	for _, e := range s.entries[userID] {
		if backward && !e.EatenAt.Before(boundary) {
			continue
		}
		if !backward && e.EatenAt.Before(boundary) {
			continue
		}
		d := dayStart(e.EatenAt)
		seen[d.Format("2006-01-02")] = d
	}

	days := make([]time.Time, 0, len(seen))
	for _, d := range seen {
		days = append(days, d)
	}
	sort.Slice(days, func(i, j int) bool {
		if backward {
			return days[i].After(days[j])
		}
		return days[i].Before(days[j])
	})
	if len(days) > limit {
		days = days[:limit]
	}
	return days, nil
}

func (s *MemoryStore) QuotaByUser(userID uint) (*models.QuotaState, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	q, ok := s.quotas[userID]
	if !ok {
		q = &models.QuotaState{UserID: userID}
		q.ID = s.id()
		q.CreatedAt = time.Now()
		s.quotas[userID] = q
	}
	cp := *q
	return &cp, nil
}

func (s *MemoryStore) SaveQuota(q *models.QuotaState) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	q.UpdatedAt = time.Now()
	cp := *q
	s.quotas[q.UserID] = &cp
	return nil
}

func (s *MemoryStore) ConversationByUser(userID uint) (*models.ConversationState, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	c, ok := s.conversations[userID]
	if !ok {
		c = &models.ConversationState{UserID: userID, State: models.StateIdle, EnteredAt: time.Now()}
		c.ID = s.id()
		c.CreatedAt = time.Now()
		s.conversations[userID] = c
	}
	cp := *c
	return &cp, nil
}

func (s *MemoryStore) SaveConversation(c *models.ConversationState) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	c.UpdatedAt = time.Now()
	cp := *c
	s.conversations[c.UserID] = &cp
	return nil
}

func (s *MemoryStore) Counts(now time.Time) (UsageCounts, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := UsageCounts{Users: int64(len(s.users))}
	for _, list := range s.entries {
		out.Entries += int64(len(list))
	}
	for _, q := range s.quotas {
		if q.Subscribed(now) {
			out.ActiveSubs++
		}
		out.FreeUsedTotal += int64(q.FreeUsed)
	}
	return out, nil
}
