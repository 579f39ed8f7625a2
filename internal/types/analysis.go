package types

import (
	"encoding/json"
	"fmt"
	"strconv"
	"strings"
	"unicode"
)

// Freshness values reported by the vision model
const (
	FreshnessFresh    = "fresh"
	FreshnessModerate = "moderate"
	FreshnessExpiring = "expiring"
)

// MalformedOutput marks a model reply that could not be parsed as JSON.
// It is embedded so the error fields sit at the top level of the response.
type MalformedOutput struct {
	Error      string `json:"error"`
	RawContent string `json:"raw_content"`
}

// DetectedIngredient is one item the vision model found in a photo
type DetectedIngredient struct {
	Name       string  `json:"name"`
	Quantity   string  `json:"quantity"`
	Freshness  string  `json:"freshness"`
	Confidence float64 `json:"confidence"`
}

// AnalysisResult is either a list of ingredients or a malformed-output marker
type AnalysisResult struct {
	Ingredients []DetectedIngredient `json:"ingredients"`
	Model       string               `json:"model,omitempty"`
	*MalformedOutput
}

// Failed reports whether the model output could not be parsed
func (r *AnalysisResult) Failed() bool {
	return r.MalformedOutput != nil
}

// RecipePreferences narrow what the recipe model may suggest
type RecipePreferences struct {
	DietaryRestrictions []string `json:"dietary_restrictions,omitempty"`
	ExcludedIngredients []string `json:"excluded_ingredients,omitempty"`
}

// RecipeIngredient is an ingredient line in a generated recipe
type RecipeIngredient struct {
	Name      string `json:"name"`
	Quantity  string `json:"quantity"`
	Available bool   `json:"available"`
}

// GeneratedRecipe is a single recipe proposed by the text model
type GeneratedRecipe struct {
	Title        string             `json:"title"`
	Description  string             `json:"description"`
	Ingredients  []RecipeIngredient `json:"ingredients"`
	Instructions []string           `json:"instructions"`
	CookingTime  FlexibleInt        `json:"cooking_time"`
	Difficulty   string             `json:"difficulty"`
	Calories     FlexibleInt        `json:"calories"`
}

// RecipeResult is the recipe document returned by the text model, the
// canned recipes of mock mode, or a malformed-output marker. Document holds
// the model's JSON exactly as extracted and is written out unchanged.
type RecipeResult struct {
	Recipes  []GeneratedRecipe `json:"recipes"`
	Document json.RawMessage   `json:"-"`
	*MalformedOutput
}

func (r RecipeResult) MarshalJSON() ([]byte, error) {
	if r.MalformedOutput == nil && len(r.Document) > 0 {
		return r.Document, nil
	}
	type plain RecipeResult
	return json.Marshal(plain(r))
}

// Failed reports whether the model output could not be parsed
func (r *RecipeResult) Failed() bool {
	return r.MalformedOutput != nil
}

// FlexibleInt accepts a JSON number or a string with a leading number
// such as "30" or "30분". Anything else decodes to zero.
type FlexibleInt int

func (f *FlexibleInt) UnmarshalJSON(data []byte) error {
	// Try to unmarshal as number first
	var num float64
	if err := json.Unmarshal(data, &num); err == nil {
		*f = FlexibleInt(int(num))
		return nil
	}

	// Try to unmarshal as string
	var str string
	if err := json.Unmarshal(data, &str); err == nil {
		*f = FlexibleInt(leadingInt(str))
		return nil
	}

	return fmt.Errorf("invalid numeric value %s", data)
}

func leadingInt(s string) int {
	s = strings.TrimSpace(s)
	end := strings.IndexFunc(s, func(r rune) bool { return !unicode.IsDigit(r) })
	if end == -1 {
		end = len(s)
	}
	n, err := strconv.Atoi(s[:end])
	if err != nil {
		return 0
	}
	return n
}
