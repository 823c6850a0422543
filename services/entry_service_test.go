package services

import (
	"testing"
	"time"

	"nutribot/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func seedEntry(t *testing.T, svc *EntryService, userID uint, eatenAt time.Time, desc string, cal, prot, fat, carbs float64) *models.FoodEntry {
	t.Helper()
	e, err := svc.RecordEntry(userID, &models.FoodEntry{
		EatenAt:     eatenAt,
		Source:      models.SourceText,
		Description: desc,
		Calories:    cal,
		Protein:     prot,
		Fat:         fat,
		Carbs:       carbs,
	})
	require.NoError(t, err)
	return e
}

func TestRecordEntryAssignsMealType(t *testing.T) {
	store := NewMemoryStore()
	svc := NewEntryService(store, defaultBrackets)

	e := seedEntry(t, svc, 1, at(8, 30), "oatmeal", 350, 12, 7, 60)
	assert.Equal(t, models.MealBreakfast, e.MealType)
	assert.Equal(t, uint(1), e.UserID)

	e = seedEntry(t, svc, 1, at(23, 15), "yogurt", 120, 10, 3, 12)
	assert.Equal(t, models.MealSnack, e.MealType)
}

func TestAggregateSumsByMealAndDay(t *testing.T) {
	store := NewMemoryStore()
	svc := NewEntryService(store, defaultBrackets)

	day := time.Date(2026, 8, 15, 0, 0, 0, 0, time.UTC)
	seedEntry(t, svc, 1, day.Add(8*time.Hour), "oatmeal", 350, 12, 7, 60)
	seedEntry(t, svc, 1, day.Add(9*time.Hour), "coffee with milk", 50, 2, 2, 5)
	seedEntry(t, svc, 1, day.Add(13*time.Hour), "chicken with rice", 650, 45, 15, 80)

	agg, err := svc.AggregateDay(1, day)
	require.NoError(t, err)
	require.NotNil(t, agg)

	assert.Equal(t, "2026-08-15", agg.Date)

	breakfast := agg.Meals[models.MealBreakfast]
	require.NotNil(t, breakfast)
	assert.Equal(t, 2, breakfast.Count)
	assert.Equal(t, 400.0, breakfast.Calories)
	assert.Equal(t, []string{"oatmeal", "coffee with milk"}, agg.Items[models.MealBreakfast])

	lunch := agg.Meals[models.MealLunch]
	require.NotNil(t, lunch)
	assert.Equal(t, 1, lunch.Count)

	assert.Nil(t, agg.Meals[models.MealDinner], "meals with no entries stay absent")

	assert.Equal(t, 3, agg.Total.Count)
	assert.Equal(t, 1050.0, agg.Total.Calories)
	assert.Equal(t, 59.0, agg.Total.Protein)
	assert.Equal(t, 24.0, agg.Total.Fat)
	assert.Equal(t, 145.0, agg.Total.Carbs)
}

func TestAggregateOmitsEmptyDays(t *testing.T) {
	store := NewMemoryStore()
	svc := NewEntryService(store, defaultBrackets)

	day1 := time.Date(2026, 8, 10, 12, 0, 0, 0, time.UTC)
	day3 := time.Date(2026, 8, 12, 12, 0, 0, 0, time.UTC)
	seedEntry(t, svc, 1, day1, "soup", 300, 10, 8, 30)
	seedEntry(t, svc, 1, day3, "salad", 200, 5, 12, 15)

	days, err := svc.Aggregate(1, day1, day3)
	require.NoError(t, err)
	require.Len(t, days, 2, "the empty middle day is omitted, not zero-filled")
	assert.Equal(t, "2026-08-10", days[0].Date)
	assert.Equal(t, "2026-08-12", days[1].Date)
}

func TestAggregateDayNilWhenNoEntries(t *testing.T) {
	store := NewMemoryStore()
	svc := NewEntryService(store, defaultBrackets)

	agg, err := svc.AggregateDay(1, time.Now())
	require.NoError(t, err)
	assert.Nil(t, agg)
}

func TestAggregateRatiosAgainstCurrentTargets(t *testing.T) {
	store := NewMemoryStore()
	svc := NewEntryService(store, defaultBrackets)

	require.NoError(t, store.SaveProfile(&models.Profile{
		UserID:         1,
		TargetCalories: 2000,
		TargetProtein:  150,
		TargetFat:      70,
		TargetCarbs:    200,
	}))

	day := time.Date(2026, 8, 15, 0, 0, 0, 0, time.UTC)
	seedEntry(t, svc, 1, day.Add(13*time.Hour), "burger", 1000, 50, 40, 80)

	agg, err := svc.AggregateDay(1, day)
	require.NoError(t, err)
	require.NotNil(t, agg)

	assert.Equal(t, 50.0, agg.Ratios["calories"].Percent)
	assert.Equal(t, 2000.0, agg.Ratios["calories"].Target)
	assert.InDelta(t, 33.3, agg.Ratios["protein"].Percent, 0.05)

	// Over-target days report the honest percentage.
	seedEntry(t, svc, 1, day.Add(19*time.Hour), "pizza", 1400, 60, 55, 140)
	agg, err = svc.AggregateDay(1, day)
	require.NoError(t, err)
	assert.Equal(t, 120.0, agg.Ratios["calories"].Percent)
}

func TestAggregateWithoutProfileSkipsRatios(t *testing.T) {
	store := NewMemoryStore()
	svc := NewEntryService(store, defaultBrackets)

	day := time.Date(2026, 8, 15, 0, 0, 0, 0, time.UTC)
	seedEntry(t, svc, 1, day.Add(13*time.Hour), "soup", 300, 10, 8, 30)

	agg, err := svc.AggregateDay(1, day)
	require.NoError(t, err)
	require.NotNil(t, agg)
	assert.Nil(t, agg.Ratios)
}
