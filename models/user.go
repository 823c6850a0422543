package models

import (
	"gorm.io/gorm"
)

type User struct {
	gorm.Model
	TelegramID int64 `gorm:"uniqueIndex;not null"`
	Username   string
	FirstName  string
	LastName   string
	IsAdmin    bool
}
