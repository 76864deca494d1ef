package ops

import (
	"context"
	"database/sql"

	"github.com/mealcal/mealcal/internal/db"
	"github.com/mealcal/mealcal/internal/meal"
)

// GetInput contains parameters for the Get operation.
type GetInput struct {
	ID string
}

// Get retrieves a single live meal by id.
func Get(ctx context.Context, database *sql.DB, input GetInput) (*meal.Meal, error) {
	id, err := requireID("id", input.ID)
	if err != nil {
		return nil, observe("get", err)
	}

	m, err := db.GetByID(ctx, database, id)
	return m, observe("get", err)
}
