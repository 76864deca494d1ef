package ops

import (
	"context"
	"database/sql"

	"github.com/mealcal/mealcal/internal/db"
	"github.com/mealcal/mealcal/internal/errors"
	"github.com/mealcal/mealcal/internal/meal"
)

// SearchInput contains parameters for the Search operation.
type SearchInput struct {
	Ingredient string // required, matched case-insensitively
}

// SearchOutput contains the result of the Search operation.
type SearchOutput struct {
	Meals []meal.Meal `json:"meals"`
}

// Search finds live meals with an ingredient equal to the term, ignoring
// case. It is an exact match against whole ingredients, not a substring
// search. Results are newest date first, at most MaxSearchResults.
func Search(ctx context.Context, database *sql.DB, input SearchInput) (*SearchOutput, error) {
	term := meal.NormalizeIngredient(input.Ingredient)
	if term == "" {
		return nil, observe("search", errors.NewValidation("ingredient is required"))
	}

	meals, err := db.SearchIngredient(ctx, database, term, MaxSearchResults)
	if err != nil {
		return nil, observe("search", err)
	}

	observe("search", nil)
	return &SearchOutput{Meals: meals}, nil
}
