package services

import (
	"testing"
	"time"

	"nutribot/config"
	"nutribot/models"

	"github.com/stretchr/testify/assert"
)

var defaultBrackets = config.MealBrackets{
	BreakfastStart: 5,
	BreakfastEnd:   11,
	LunchEnd:       16,
	DinnerEnd:      22,
}

func at(hour, min int) time.Time {
	return time.Date(2026, 8, 15, hour, min, 0, 0, time.UTC)
}

func TestMealTypeForBoundaries(t *testing.T) {
	cases := []struct {
		hour, min int
		want      models.MealType
	}{
		{4, 59, models.MealSnack},
		{5, 0, models.MealBreakfast},
		{10, 59, models.MealBreakfast},
		{11, 0, models.MealLunch},
		{15, 59, models.MealLunch},
		{16, 0, models.MealDinner},
		{21, 59, models.MealDinner},
		{22, 0, models.MealSnack},
		{0, 0, models.MealSnack},
		{2, 30, models.MealSnack},
	}
	for _, tc := range cases {
		got := MealTypeFor(at(tc.hour, tc.min), defaultBrackets)
		assert.Equal(t, tc.want, got, "hour %02d:%02d", tc.hour, tc.min)
	}
}

func TestMealTypeForCoversWholeDay(t *testing.T) {
	// Every hour of the day must classify to exactly one type.
	for h := 0; h < 24; h++ {
		got := MealTypeFor(at(h, 0), defaultBrackets)
		switch got {
		case models.MealBreakfast, models.MealLunch, models.MealDinner, models.MealSnack:
		default:
			t.Fatalf("hour %d produced unknown meal type %q", h, got)
		}
	}
}

func TestMealTypeForCustomBrackets(t *testing.T) {
	b := config.MealBrackets{BreakfastStart: 6, BreakfastEnd: 10, LunchEnd: 15, DinnerEnd: 21}
	assert.Equal(t, models.MealSnack, MealTypeFor(at(5, 30), b))
	assert.Equal(t, models.MealBreakfast, MealTypeFor(at(6, 0), b))
	assert.Equal(t, models.MealDinner, MealTypeFor(at(20, 59), b))
	assert.Equal(t, models.MealSnack, MealTypeFor(at(21, 0), b))
}
