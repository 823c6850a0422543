package models

import (
	"gorm.io/gorm"
)

type Sex string

const (
	SexMale   Sex = "male"
	SexFemale Sex = "female"
)

type ActivityLevel string

const (
	ActivitySedentary  ActivityLevel = "sedentary"
	ActivityLight      ActivityLevel = "light"
	ActivityModerate   ActivityLevel = "moderate"
	ActivityActive     ActivityLevel = "active"
	ActivityVeryActive ActivityLevel = "very_active"
)

type Goal string

const (
	GoalLose     Goal = "lose"
	GoalMaintain Goal = "maintain"
	GoalGain     Goal = "gain"
)

// Profile holds the demographic inputs and the derived daily targets.
// When ManualTargets is set the stored targets are frozen and never
// recalculated from the demographics.
type Profile struct {
	gorm.Model
	UserID uint `gorm:"uniqueIndex;not null"`

	Sex      Sex     `gorm:"size:10"`
	Age      int     // years
	Weight   float64 // kg
	Height   float64 // cm
	Activity ActivityLevel `gorm:"size:20"`
	Goal     Goal          `gorm:"size:20"`

	TargetCalories float64 // kcal
	TargetProtein  float64 // g
	TargetFat      float64 // g
	TargetCarbs    float64 // g

	ManualTargets bool
}
