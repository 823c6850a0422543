package services

import (
	"math"
	"time"

	"nutribot/config"
	"nutribot/models"
)

type EntryService struct {
	store    Store
	brackets config.MealBrackets
}

func NewEntryService(store Store, brackets config.MealBrackets) *EntryService {
	return &EntryService{store: store, brackets: brackets}
}

// RecordEntry stores one immutable food entry, assigning its meal type
// from the timestamp. Prior entries are never touched.
func (s *EntryService) RecordEntry(userID uint, e *models.FoodEntry) (*models.FoodEntry, error) {
	e.UserID = userID
	if e.EatenAt.IsZero() {
		e.EatenAt = time.Now()
	}
	e.MealType = MealTypeFor(e.EatenAt, s.brackets)
	if err := s.store.CreateEntry(e); err != nil {
		return nil, err
	}
	return e, nil
}

type MacroSums struct {
	Count    int     `json:"count"`
	Calories float64 `json:"calories"`
	Protein  float64 `json:"protein"`
	Fat      float64 `json:"fat"`
	Carbs    float64 `json:"carbs"`
}

func (m *MacroSums) add(e models.FoodEntry) {
	m.Count++
	m.Calories += e.Calories
	m.Protein += e.Protein
	m.Fat += e.Fat
	m.Carbs += e.Carbs
}

type TargetRatio struct {
	Consumed float64 `json:"consumed"`
	Target   float64 `json:"target"`
	Percent  float64 `json:"percent"`
}

type DayAggregate struct {
	Date   string                         `json:"date"` // YYYY-MM-DD
	Meals  map[models.MealType]*MacroSums `json:"meals"`
	Items  map[models.MealType][]string   `json:"items"`
	Total  MacroSums                      `json:"total"`
	Ratios map[string]TargetRatio         `json:"ratios"`
}

// Aggregate builds one DayAggregate per date in [from, to] that has at
// least one entry. Dates without entries are omitted rather than returned
// as zero rows, so callers can tell "no data" from "present but zero".
// Ratios always compare against the profile's targets as they are now.
func (s *EntryService) Aggregate(userID uint, from, to time.Time) ([]DayAggregate, error) {
	entries, err := s.store.EntriesBetween(userID, dayStart(from), dayStart(to).AddDate(0, 0, 1))
	if err != nil {
		return nil, err
	}

	var targets *models.Profile
	if p, err := s.store.ProfileByUser(userID); err == nil {
		targets = p
	} else if err != ErrNotFound {
		return nil, err
	}

	byDay := map[string]*DayAggregate{}
	var order []string
	for _, e := range entries {
		key := dayStart(e.EatenAt).Format("2006-01-02")
		agg, ok := byDay[key]
		if !ok {
			agg = &DayAggregate{
				Date:  key,
				Meals: map[models.MealType]*MacroSums{},
				Items: map[models.MealType][]string{},
			}
			byDay[key] = agg
			order = append(order, key)
		}
		if agg.Meals[e.MealType] == nil {
			agg.Meals[e.MealType] = &MacroSums{}
		}
		agg.Meals[e.MealType].add(e)
		agg.Items[e.MealType] = append(agg.Items[e.MealType], e.Description)
		agg.Total.add(e)
	}

	out := make([]DayAggregate, 0, len(order))
	for _, key := range order {
		agg := byDay[key]
		if targets != nil {
			agg.Ratios = map[string]TargetRatio{
				"calories": ratio(agg.Total.Calories, targets.TargetCalories),
				"protein":  ratio(agg.Total.Protein, targets.TargetProtein),
				"fat":      ratio(agg.Total.Fat, targets.TargetFat),
				"carbs":    ratio(agg.Total.Carbs, targets.TargetCarbs),
			}
		}
		out = append(out, *agg)
	}
	return out, nil
}

// AggregateDay is Aggregate for a single date; nil when the date has no
// entries.
func (s *EntryService) AggregateDay(userID uint, date time.Time) (*DayAggregate, error) {
	days, err := s.Aggregate(userID, date, date)
	if err != nil {
		return nil, err
	}
	if len(days) == 0 {
		return nil, nil
	}
	return &days[0], nil
}

func ratio(consumed, target float64) TargetRatio {
	r := TargetRatio{Consumed: round1(consumed), Target: target}
	if target > 0 {
		r.Percent = round1(consumed / target * 100)
	}
	return r
}

func round1(v float64) float64 { return math.Round(v*10) / 10 }

func dayStart(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, t.Location())
}
