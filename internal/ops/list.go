package ops

import (
	"context"
	"database/sql"

	"github.com/mealcal/mealcal/internal/db"
	"github.com/mealcal/mealcal/internal/meal"
)

// ListInput contains parameters for the List operation.
type ListInput struct {
	StartDate string // required, YYYY-MM-DD
	EndDate   string // required, YYYY-MM-DD, inclusive
}

// ListOutput contains the result of the List operation.
type ListOutput struct {
	Meals []meal.Meal `json:"meals"`
}

// List returns every live meal dated within [StartDate, EndDate], ordered by
// date then breakfast, lunch, dinner.
func List(ctx context.Context, database *sql.DB, input ListInput) (*ListOutput, error) {
	r, err := ParseDateRange(input.StartDate, input.EndDate)
	if err != nil {
		return nil, observe("list", err)
	}

	meals, err := db.ListRange(ctx, database, r.Start, r.End)
	if err != nil {
		return nil, observe("list", err)
	}

	observe("list", nil)
	return &ListOutput{Meals: meals}, nil
}
