package utils

import (
	"errors"
	"math"

	"nutribot/config"
	"nutribot/models"
)

var ErrInvalidProfileInput = errors.New("profile input out of allowed range")

// activityMultipliers maps activity level to its TDEE multiplier. This is
// the single source of truth for valid activity levels; input validation
// uses the same map.
var activityMultipliers = map[models.ActivityLevel]float64{
	models.ActivitySedentary:  1.2,
	models.ActivityLight:      1.375,
	models.ActivityModerate:   1.55,
	models.ActivityActive:     1.725,
	models.ActivityVeryActive: 1.9,
}

var goalFactors = map[models.Goal]float64{
	models.GoalLose:     0.85,
	models.GoalMaintain: 1.0,
	models.GoalGain:     1.15,
}

// Caloric density per gram.
const (
	kcalPerGramProtein = 4
	kcalPerGramFat     = 9
	kcalPerGramCarb    = 4
)

type Targets struct {
	Calories float64
	Protein  float64
	Fat      float64
	Carbs    float64
}

// CalculateTargets derives daily energy and macro targets from the
// demographic profile using the Mifflin-St Jeor formula, adjusted for
// activity level and goal. All outputs are rounded to whole units.
func CalculateTargets(
	sex models.Sex,
	age int,
	weightKg, heightCm float64,
	activity models.ActivityLevel,
	goal models.Goal,
	split config.MacroSplit,
) (Targets, error) {
	if sex != models.SexMale && sex != models.SexFemale {
		return Targets{}, ErrInvalidProfileInput
	}
	if age < 10 || age > 120 {
		return Targets{}, ErrInvalidProfileInput
	}
	if weightKg <= 0 || heightCm <= 0 {
		return Targets{}, ErrInvalidProfileInput
	}
	mult, ok := activityMultipliers[activity]
	if !ok {
		return Targets{}, ErrInvalidProfileInput
	}
	factor, ok := goalFactors[goal]
	if !ok {
		return Targets{}, ErrInvalidProfileInput
	}
	if !split.Valid() {
		return Targets{}, ErrInvalidProfileInput
	}

	bmr := 10*weightKg + 6.25*heightCm - 5*float64(age)
	if sex == models.SexMale {
		bmr += 5
	} else {
		bmr -= 161
	}

	calories := bmr * mult * factor

	return Targets{
		Calories: math.Round(calories),
		Protein:  math.Round(calories * float64(split.ProteinPct) / 100 / kcalPerGramProtein),
		Fat:      math.Round(calories * float64(split.FatPct) / 100 / kcalPerGramFat),
		Carbs:    math.Round(calories * float64(split.CarbPct) / 100 / kcalPerGramCarb),
	}, nil
}

// ValidateManualTargets checks user-entered targets taken verbatim.
// Energy-vs-macros consistency is deliberately the user's responsibility.
func ValidateManualTargets(calories, protein, fat, carbs float64) error {
	if calories <= 0 || protein <= 0 || fat <= 0 || carbs <= 0 {
		return ErrInvalidProfileInput
	}
	return nil
}
