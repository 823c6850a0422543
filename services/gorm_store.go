package services

import (
	"errors"
	"time"

	"nutribot/models"

	"gorm.io/gorm"
)

type GormStore struct {
	db *gorm.DB
}

func NewGormStore(db *gorm.DB) *GormStore { return &GormStore{db: db} }

func (s *GormStore) GetOrCreateUser(telegramID int64, username, firstName, lastName string) (*models.User, error) {
	var u models.User
	err := s.db.Where("telegram_id = ?", telegramID).First(&u).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		u = models.User{
			TelegramID: telegramID,
			Username:   username,
			FirstName:  firstName,
			LastName:   lastName,
		}
		if err := s.db.Create(&u).Error; err != nil {
			return nil, err
		}
		return &u, nil
	}
	if err != nil {
		return nil, err
	}
	return &u, nil
}

func (s *GormStore) ProfileByUser(userID uint) (*models.Profile, error) {
	var p models.Profile
	err := s.db.Where("user_id = ?", userID).First(&p).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return &p, nil
}

func (s *GormStore) SaveProfile(p *models.Profile) error {
	return s.db.Save(p).Error
}

func (s *GormStore) CreateEntry(e *models.FoodEntry) error {
	return s.db.Create(e).Error
}

func (s *GormStore) EntriesBetween(userID uint, from, to time.Time) ([]models.FoodEntry, error) {
	var entries []models.FoodEntry
	err := s.db.
		Where("user_id = ? AND eaten_at >= ? AND eaten_at < ?", userID, from, to).
		Order("eaten_at ASC").
		Find(&entries).Error
	return entries, err
}

func (s *GormStore) EntryDates(userID uint, boundary time.Time, backward bool, limit int) ([]time.Time, error) {
	op, ord := ">=", "ASC"
	if backward {
		op, ord = "<", "DESC"
	}

	type dayRow struct{ Day time.Time }
	var rows []dayRow
	err := s.db.Model(&models.FoodEntry{}).
		Select("date(eaten_at) AS day").
		Where("user_id = ?", userID).
		Where("eaten_at "+op+" ?", boundary).
		Group("date(eaten_at)").
		Order("day " + ord).
		Limit(limit).
		Scan(&rows).Error
	if err != nil {
		return nil, err
	}

	days := make([]time.Time, 0, len(rows))
	for _, r := range rows {
		days = append(days, r.Day)
	}
	return days, nil
}

func (s *GormStore) QuotaByUser(userID uint) (*models.QuotaState, error) {
	var q models.QuotaState
	err := s.db.Where("user_id = ?", userID).First(&q).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		q = models.QuotaState{UserID: userID}
		if err := s.db.Create(&q).Error; err != nil {
			return nil, err
		}
		return &q, nil
	}
	if err != nil {
		return nil, err
	}
	return &q, nil
}

func (s *GormStore) SaveQuota(q *models.QuotaState) error {
	return s.db.Save(q).Error
}

func (s *GormStore) ConversationByUser(userID uint) (*models.ConversationState, error) {
	var c models.ConversationState
	err := s.db.Where("user_id = ?", userID).First(&c).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		c = models.ConversationState{UserID: userID, State: models.StateIdle, EnteredAt: time.Now()}
		if err := s.db.Create(&c).Error; err != nil {
			return nil, err
		}
		return &c, nil
	}
	if err != nil {
		return nil, err
	}
	return &c, nil
}

func (s *GormStore) SaveConversation(c *models.ConversationState) error {
	return s.db.Save(c).Error
}

func (s *GormStore) Counts(now time.Time) (UsageCounts, error) {
	var out UsageCounts
	if err := s.db.Model(&models.User{}).Count(&out.Users).Error; err != nil {
		return out, err
	}
	if err := s.db.Model(&models.FoodEntry{}).Count(&out.Entries).Error; err != nil {
		return out, err
	}
	if err := s.db.Model(&models.QuotaState{}).
		Where("subscribed_until > ?", now).
		Count(&out.ActiveSubs).Error; err != nil {
		return out, err
	}
	var sum struct{ Total int64 }
	if err := s.db.Model(&models.QuotaState{}).
		Select("COALESCE(SUM(free_used), 0) AS total").
		Scan(&sum).Error; err != nil {
		return out, err
	}
	out.FreeUsedTotal = sum.Total
	return out, nil
}
