package ops

import (
	"context"
	"database/sql"

	"github.com/mealcal/mealcal/internal/db"
	"github.com/mealcal/mealcal/internal/meal"
)

// SummaryInput contains parameters for the Summary operation.
type SummaryInput struct {
	StartDate string
	EndDate   string
}

// SummaryOutput is a printable plan for a date range.
type SummaryOutput struct {
	StartDate    string              `json:"start_date"`
	EndDate      string              `json:"end_date"`
	Meals        []meal.Meal         `json:"meals"`
	ShoppingList []meal.ShoppingItem `json:"shopping_list"`
	Markdown     string              `json:"markdown"`
}

// Summary renders the meals of a date range as markdown, one section per
// day, followed by an aggregated shopping list.
func Summary(ctx context.Context, database *sql.DB, input SummaryInput) (*SummaryOutput, error) {
	r, err := ParseDateRange(input.StartDate, input.EndDate)
	if err != nil {
		return nil, observe("summary", err)
	}

	meals, err := db.ListRange(ctx, database, r.Start, r.End)
	if err != nil {
		return nil, observe("summary", err)
	}

	shopping := meal.ShoppingList(meals)
	if shopping == nil {
		shopping = []meal.ShoppingItem{}
	}

	observe("summary", nil)
	return &SummaryOutput{
		StartDate:    r.Start,
		EndDate:      r.End,
		Meals:        meals,
		ShoppingList: shopping,
		Markdown:     meal.Markdown(r.Start, r.End, meals),
	}, nil
}
