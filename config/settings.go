package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"
)

// MacroSplit is the percentage of daily calories assigned to each
// macronutrient. The three values must sum to 100.
type MacroSplit struct {
	ProteinPct int
	FatPct     int
	CarbPct    int
}

func (m MacroSplit) Valid() bool {
	return m.ProteinPct > 0 && m.FatPct > 0 && m.CarbPct > 0 &&
		m.ProteinPct+m.FatPct+m.CarbPct == 100
}

// MealBrackets are the half-open hour boundaries used to classify an
// entry's meal type from its timestamp. A bracket [Start, End) is matched
// against the local hour; anything outside all three is a snack.
type MealBrackets struct {
	BreakfastStart int
	BreakfastEnd   int // == LunchStart
	LunchEnd       int // == DinnerStart
	DinnerEnd      int
}

// Tariff is one purchasable subscription option.
type Tariff struct {
	Months   int
	PriceRub int
}

// Settings holds every operator-tunable value. All of them come from the
// environment so retuning never requires a redeploy of core logic.
type Settings struct {
	FreeAnalysisLimit int
	InactivityWindow  time.Duration
	Brackets          MealBrackets
	// Macro split depends on the goal; keys are the models.Goal strings.
	Splits  map[string]MacroSplit
	Tariffs []Tariff

	WebhookSecret string
	JWTSecret     string
	// AdminIDs bootstraps operator access before any user row carries the
	// admin flag.
	AdminIDs []int64
}

func (s Settings) IsAdminID(telegramID int64) bool {
	for _, id := range s.AdminIDs {
		if id == telegramID {
			return true
		}
	}
	return false
}

// App is the process-wide settings instance, filled by Load.
var App Settings

func Load() error {
	App = Settings{
		FreeAnalysisLimit: envInt("FREE_ANALYSIS_LIMIT", 10),
		InactivityWindow:  time.Duration(envInt("INACTIVITY_WINDOW_MINUTES", 30)) * time.Minute,
		Brackets: MealBrackets{
			BreakfastStart: envInt("BREAKFAST_START_HOUR", 5),
			BreakfastEnd:   envInt("LUNCH_START_HOUR", 11),
			LunchEnd:       envInt("DINNER_START_HOUR", 16),
			DinnerEnd:      envInt("DINNER_END_HOUR", 22),
		},
		Splits: map[string]MacroSplit{
			"lose":     {ProteinPct: envInt("SPLIT_LOSE_PROTEIN", 35), FatPct: envInt("SPLIT_LOSE_FAT", 30), CarbPct: envInt("SPLIT_LOSE_CARB", 35)},
			"maintain": {ProteinPct: envInt("SPLIT_MAINTAIN_PROTEIN", 30), FatPct: envInt("SPLIT_MAINTAIN_FAT", 30), CarbPct: envInt("SPLIT_MAINTAIN_CARB", 40)},
			"gain":     {ProteinPct: envInt("SPLIT_GAIN_PROTEIN", 30), FatPct: envInt("SPLIT_GAIN_FAT", 25), CarbPct: envInt("SPLIT_GAIN_CARB", 45)},
		},
		Tariffs: []Tariff{
			{Months: 1, PriceRub: envInt("TARIFF_1M_RUB", 299)},
			{Months: 3, PriceRub: envInt("TARIFF_3M_RUB", 799)},
			{Months: 12, PriceRub: envInt("TARIFF_12M_RUB", 2490)},
		},
		WebhookSecret: os.Getenv("WEBHOOK_SECRET"),
		JWTSecret:     os.Getenv("JWT_SECRET"),
		AdminIDs:      envInt64List("ADMIN_TELEGRAM_IDS"),
	}

	for goal, s := range App.Splits {
		if !s.Valid() {
			return fmt.Errorf("macro split for %q must sum to 100", goal)
		}
	}
	b := App.Brackets
	if !(0 <= b.BreakfastStart && b.BreakfastStart < b.BreakfastEnd &&
		b.BreakfastEnd < b.LunchEnd && b.LunchEnd < b.DinnerEnd && b.DinnerEnd <= 24) {
		return fmt.Errorf("meal brackets must be increasing hours within 0..24")
	}
	if App.FreeAnalysisLimit < 0 {
		return fmt.Errorf("free analysis limit must not be negative")
	}
	return nil
}

func (s Settings) TariffFor(months int) (Tariff, bool) {
	for _, t := range s.Tariffs {
		if t.Months == months {
			return t, true
		}
	}
	return Tariff{}, false
}

func envInt64List(key string) []int64 {
	v := os.Getenv(key)
	if v == "" {
		return nil
	}
	var out []int64
	for _, part := range strings.Split(v, ",") {
		n, err := strconv.ParseInt(strings.TrimSpace(part), 10, 64)
		if err != nil {
			continue
		}
		out = append(out, n)
	}
	return out
}

func envInt(key string, def int) int {
	v := os.Getenv(key)
	if v == "" {
		return def
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		return def
	}
	return n
}
