package models

import (
	"time"

	"gorm.io/gorm"
)

type EntrySource string

const (
	SourcePhoto EntrySource = "photo"
	SourceVoice EntrySource = "voice"
	SourceText  EntrySource = "text"
)

type MealType string

const (
	MealBreakfast MealType = "breakfast"
	MealLunch     MealType = "lunch"
	MealDinner    MealType = "dinner"
	MealSnack     MealType = "snack"
)

// FoodEntry is one analyzed dish. Rows are immutable once created: a
// correction is a new entry, never an update.
type FoodEntry struct {
	gorm.Model
	UserID   uint        `gorm:"index:idx_user_eaten;not null"`
	EatenAt  time.Time   `gorm:"index:idx_user_eaten;not null"`
	Source   EntrySource `gorm:"size:10"`
	MealType MealType    `gorm:"size:20;index"`

	Description string `gorm:"size:500"`
	Calories    float64
	Protein     float64
	Fat         float64
	Carbs       float64

	ImageURL string `gorm:"size:1000"`
}
