package utils

import (
	"testing"

	"nutribot/config"
	"nutribot/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var maintainSplit = config.MacroSplit{ProteinPct: 30, FatPct: 30, CarbPct: 40}

func TestCalculateTargetsMaleModerateMaintain(t *testing.T) {
	got, err := CalculateTargets(models.SexMale, 30, 80, 180, models.ActivityModerate, models.GoalMaintain, maintainSplit)
	require.NoError(t, err)

	// BMR 1780 * 1.55 activity * 1.0 goal.
	assert.Equal(t, 2759.0, got.Calories)
	assert.Equal(t, 207.0, got.Protein)
	assert.Equal(t, 92.0, got.Fat)
	assert.Equal(t, 276.0, got.Carbs)
}

func TestCalculateTargetsFemaleOffset(t *testing.T) {
	male, err := CalculateTargets(models.SexMale, 30, 80, 180, models.ActivitySedentary, models.GoalMaintain, maintainSplit)
	require.NoError(t, err)
	female, err := CalculateTargets(models.SexFemale, 30, 80, 180, models.ActivitySedentary, models.GoalMaintain, maintainSplit)
	require.NoError(t, err)

	// The sex constants differ by 166 kcal of BMR, times the 1.2 multiplier.
	assert.InDelta(t, 166*1.2, male.Calories-female.Calories, 1.0)
}

func TestCalculateTargetsGoalOrdering(t *testing.T) {
	lose, err := CalculateTargets(models.SexFemale, 25, 60, 165, models.ActivityLight, models.GoalLose,
		config.MacroSplit{ProteinPct: 35, FatPct: 30, CarbPct: 35})
	require.NoError(t, err)
	maintain, err := CalculateTargets(models.SexFemale, 25, 60, 165, models.ActivityLight, models.GoalMaintain, maintainSplit)
	require.NoError(t, err)
	gain, err := CalculateTargets(models.SexFemale, 25, 60, 165, models.ActivityLight, models.GoalGain,
		config.MacroSplit{ProteinPct: 30, FatPct: 25, CarbPct: 45})
	require.NoError(t, err)

	assert.Less(t, lose.Calories, maintain.Calories)
	assert.Less(t, maintain.Calories, gain.Calories)
}

func TestCalculateTargetsMacrosMatchCalories(t *testing.T) {
	got, err := CalculateTargets(models.SexMale, 45, 95.5, 178, models.ActivityActive, models.GoalLose,
		config.MacroSplit{ProteinPct: 35, FatPct: 30, CarbPct: 35})
	require.NoError(t, err)

	back := got.Protein*4 + got.Fat*9 + got.Carbs*4
	// Each macro is rounded to a whole gram, so the reconstruction can be
	// off by at most 0.5 g per macro at its caloric density.
	assert.InDelta(t, got.Calories, back, 0.5*4+0.5*9+0.5*4)
}

func TestCalculateTargetsRejectsBadInput(t *testing.T) {
	cases := []struct {
		name     string
		sex      models.Sex
		age      int
		weight   float64
		height   float64
		activity models.ActivityLevel
		goal     models.Goal
		split    config.MacroSplit
	}{
		{"unknown sex", "other", 30, 80, 180, models.ActivityModerate, models.GoalMaintain, maintainSplit},
		{"age too low", models.SexMale, 9, 80, 180, models.ActivityModerate, models.GoalMaintain, maintainSplit},
		{"age too high", models.SexMale, 121, 80, 180, models.ActivityModerate, models.GoalMaintain, maintainSplit},
		{"zero weight", models.SexMale, 30, 0, 180, models.ActivityModerate, models.GoalMaintain, maintainSplit},
		{"negative height", models.SexMale, 30, 80, -1, models.ActivityModerate, models.GoalMaintain, maintainSplit},
		{"unknown activity", models.SexMale, 30, 80, 180, "couch", models.GoalMaintain, maintainSplit},
		{"unknown goal", models.SexMale, 30, 80, 180, models.ActivityModerate, "bulk", maintainSplit},
		{"split not 100", models.SexMale, 30, 80, 180, models.ActivityModerate, models.GoalMaintain, config.MacroSplit{ProteinPct: 30, FatPct: 30, CarbPct: 30}},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := CalculateTargets(tc.sex, tc.age, tc.weight, tc.height, tc.activity, tc.goal, tc.split)
			assert.ErrorIs(t, err, ErrInvalidProfileInput)
		})
	}
}

func TestValidateManualTargets(t *testing.T) {
	assert.NoError(t, ValidateManualTargets(2000, 150, 70, 200))
	assert.ErrorIs(t, ValidateManualTargets(0, 150, 70, 200), ErrInvalidProfileInput)
	assert.ErrorIs(t, ValidateManualTargets(2000, -1, 70, 200), ErrInvalidProfileInput)
	assert.ErrorIs(t, ValidateManualTargets(2000, 150, 0, 200), ErrInvalidProfileInput)
	assert.ErrorIs(t, ValidateManualTargets(2000, 150, 70, 0), ErrInvalidProfileInput)
}
