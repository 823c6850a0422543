package services

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"nutribot/models"
)

var ErrRecognitionFailed = errors.New("could not recognize the meal")

// MealEstimate is what recognition produces: a display description plus
// macro values for the whole analyzed portion.
type MealEstimate struct {
	Description string
	Calories    float64
	Protein     float64
	Fat         float64
	Carbs       float64
}

// Recognizer turns raw user input (photo bytes, voice transcript, free
// text) into a macro estimate. The dialog only ever calls it after the
// quota ledger has authorized the attempt.
type Recognizer interface {
	Recognize(ctx context.Context, source models.EntrySource, payload string) (*MealEstimate, error)
}

// FoodRecognizer is the production Recognizer: photos go through label
// detection first, then the detected dish (or the user's own words) is
// resolved to macros by the nutrition lookup API. Voice payloads arrive
// already transcribed; audio conversion happens upstream.
type FoodRecognizer struct {
	labels    *RekognitionService
	nutrition *NutritionAPIService
}

func NewFoodRecognizer(labels *RekognitionService, nutrition *NutritionAPIService) *FoodRecognizer {
	return &FoodRecognizer{labels: labels, nutrition: nutrition}
}

func (r *FoodRecognizer) Recognize(ctx context.Context, source models.EntrySource, payload string) (*MealEstimate, error) {
	query := strings.TrimSpace(payload)

	if source == models.SourcePhoto {
		labels, err := r.labels.DetectFood(ctx, payload)
		if err != nil {
			return nil, fmt.Errorf("%w: %v", ErrRecognitionFailed, err)
		}
		if len(labels) == 0 {
			return nil, ErrRecognitionFailed
		}
		query = strings.Join(labels, ", ")
	}

	if query == "" {
		return nil, ErrRecognitionFailed
	}

	est, err := r.nutrition.Lookup(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrRecognitionFailed, err)
	}
	return est, nil
}
