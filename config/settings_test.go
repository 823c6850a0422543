package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadDefaults(t *testing.T) {
	require.NoError(t, Load())

	assert.Equal(t, 10, App.FreeAnalysisLimit)
	assert.Equal(t, 30*time.Minute, App.InactivityWindow)
	assert.Equal(t, MealBrackets{BreakfastStart: 5, BreakfastEnd: 11, LunchEnd: 16, DinnerEnd: 22}, App.Brackets)

	for goal, s := range App.Splits {
		assert.True(t, s.Valid(), "split for %q", goal)
	}
}

func TestLoadRejectsBadSplit(t *testing.T) {
	t.Setenv("SPLIT_LOSE_PROTEIN", "50")
	assert.Error(t, Load())
}

func TestLoadRejectsBadBrackets(t *testing.T) {
	t.Setenv("LUNCH_START_HOUR", "3")
	assert.Error(t, Load())
}

func TestLoadAdminIDs(t *testing.T) {
	t.Setenv("ADMIN_TELEGRAM_IDS", "42, 99,bad,7")
	require.NoError(t, Load())

	assert.Equal(t, []int64{42, 99, 7}, App.AdminIDs)
	assert.True(t, App.IsAdminID(99))
	assert.False(t, App.IsAdminID(1))
}

func TestMacroSplitValid(t *testing.T) {
	assert.True(t, MacroSplit{ProteinPct: 30, FatPct: 30, CarbPct: 40}.Valid())
	assert.False(t, MacroSplit{ProteinPct: 30, FatPct: 30, CarbPct: 30}.Valid())
	assert.False(t, MacroSplit{ProteinPct: 0, FatPct: 50, CarbPct: 50}.Valid())
}

func TestTariffFor(t *testing.T) {
	require.NoError(t, Load())

	tariff, ok := App.TariffFor(3)
	require.True(t, ok)
	assert.Equal(t, 3, tariff.Months)

	_, ok = App.TariffFor(5)
	assert.False(t, ok)
}
