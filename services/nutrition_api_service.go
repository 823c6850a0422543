package services

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"os"
	"time"
)

// NutritionAPIService resolves a dish description to macro values via the
// Edamam nutrition API.
type NutritionAPIService struct {
	appID  string
	appKey string
	client *http.Client
}

func NewNutritionAPIService() *NutritionAPIService {
	return &NutritionAPIService{
		appID:  os.Getenv("EDAMAM_APP_ID"),
		appKey: os.Getenv("EDAMAM_APP_KEY"),
		client: &http.Client{Timeout: 10 * time.Second},
	}
}

type nutritionResponse struct {
	Calories       float64 `json:"calories"`
	TotalNutrients map[string]struct {
		Quantity float64 `json:"quantity"`
	} `json:"totalNutrients"`
	Ingredients []struct {
		Parsed []struct {
			Food string `json:"food"`
		} `json:"parsed"`
	} `json:"ingredients"`
}

// Lookup analyzes a free-text dish description ("chicken soup, 300 g")
// and returns the macro estimate for it.
func (s *NutritionAPIService) Lookup(ctx context.Context, query string) (*MealEstimate, error) {
	u := fmt.Sprintf(
		"https://api.edamam.com/api/nutrition-data?ingr=%s&app_id=%s&app_key=%s",
		url.QueryEscape(query), s.appID, s.appKey,
	)

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create nutrition request: %w", err)
	}

	resp, err := s.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("failed to call nutrition API: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to read nutrition response: %w", err)
	}
	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("nutrition API error %d: %s", resp.StatusCode, string(body))
	}

	var nr nutritionResponse
	if err := json.Unmarshal(body, &nr); err != nil {
		return nil, fmt.Errorf("failed to parse nutrition JSON: %w", err)
	}

	est := &MealEstimate{
		Description: query,
		Calories:    nr.Calories,
		Protein:     nr.TotalNutrients["PROCNT"].Quantity,
		Fat:         nr.TotalNutrients["FAT"].Quantity,
		Carbs:       nr.TotalNutrients["CHOCDF"].Quantity,
	}
	// Prefer the parsed dish name over the raw query when available.
	for _, ing := range nr.Ingredients {
		for _, p := range ing.Parsed {
			if p.Food != "" {
				est.Description = p.Food
				break
			}
		}
	}

	if est.Calories <= 0 {
		return nil, fmt.Errorf("nutrition API returned no data for %q", query)
	}
	return est, nil
}
