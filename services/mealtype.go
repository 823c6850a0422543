package services

import (
	"time"

	"nutribot/config"
	"nutribot/models"
)

// MealTypeFor classifies a local timestamp into a meal type using the
// configured hour brackets. Brackets are half-open, so together with the
// snack fallback they partition the whole day.
func MealTypeFor(t time.Time, b config.MealBrackets) models.MealType {
	hour := t.Hour()
	switch {
	case hour >= b.BreakfastStart && hour < b.BreakfastEnd:
		return models.MealBreakfast
	case hour >= b.BreakfastEnd && hour < b.LunchEnd:
		return models.MealLunch
	case hour >= b.LunchEnd && hour < b.DinnerEnd:
		return models.MealDinner
	default:
		return models.MealSnack
	}
}
