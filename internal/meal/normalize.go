package meal

import (
	"fmt"
	"strings"
	"time"

	"github.com/mealcal/mealcal/internal/errors"
)

// DateLayout is the wire and storage format of a meal date.
const DateLayout = "2006-01-02"

// ParseDate validates s as a YYYY-MM-DD calendar date and returns it in
// canonical form. field names the offending input in the error message.
func ParseDate(field, s string) (string, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return "", errors.NewValidation(fmt.Sprintf("%s is required", field))
	}
	t, err := time.Parse(DateLayout, s)
	if err != nil {
		return "", errors.NewValidation(fmt.Sprintf("%s must be a date in YYYY-MM-DD format, got %q", field, s))
	}
	return t.Format(DateLayout), nil
}

// ParseMealType validates s against the fixed meal types (case-insensitive).
func ParseMealType(field, s string) (MealType, error) {
	norm := strings.ToLower(strings.TrimSpace(s))
	if norm == "" {
		return "", errors.NewValidation(fmt.Sprintf("%s is required", field))
	}
	for _, mt := range MealTypes {
		if string(mt) == norm {
			return mt, nil
		}
	}
	return "", errors.NewValidation(fmt.Sprintf("%s must be one of: breakfast, lunch, dinner", field))
}

// NormalizeName trims name and rejects it if nothing remains.
func NormalizeName(name string) (string, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return "", errors.NewValidation("name cannot be empty")
	}
	return name, nil
}

// CleanIngredients trims every entry, drops blanks and exact duplicates
// (first occurrence wins) and enforces MaxIngredients.
// The result is never nil.
func CleanIngredients(ingredients []string) ([]string, error) {
	cleaned := make([]string, 0, len(ingredients))
	seen := make(map[string]bool, len(ingredients))
	for _, item := range ingredients {
		item = strings.TrimSpace(item)
		if item == "" || seen[item] {
			continue
		}
		seen[item] = true
		cleaned = append(cleaned, item)
	}
	if len(cleaned) > MaxIngredients {
		return nil, errors.NewValidation(fmt.Sprintf("maximum %d ingredients allowed, got %d", MaxIngredients, len(cleaned)))
	}
	return cleaned, nil
}

// NormalizeIngredient folds an ingredient or search term for case-insensitive matching.
func NormalizeIngredient(s string) string {
	return strings.ToLower(strings.TrimSpace(s))
}

// NormalizeIngredients folds every entry of ingredients.
func NormalizeIngredients(ingredients []string) []string {
	out := make([]string, len(ingredients))
	for i, item := range ingredients {
		out[i] = NormalizeIngredient(item)
	}
	return out
}
