package ops

import (
	"context"
	"database/sql"

	"github.com/mealcal/mealcal/internal/db"
	"github.com/mealcal/mealcal/internal/errors"
	"github.com/mealcal/mealcal/internal/meal"
)

// UpdateInput contains parameters for the Update operation.
// Nil fields are left unchanged; at least one must be set.
type UpdateInput struct {
	ID          string
	Name        *string
	Ingredients *[]string
}

// Update changes the name and/or ingredients of a live meal.
// The slot is never changed by Update; see Move and Swap.
func Update(ctx context.Context, database *sql.DB, input UpdateInput) (*meal.Meal, error) {
	m, err := update(ctx, database, input)
	return m, observe("update", err)
}

func update(ctx context.Context, database *sql.DB, input UpdateInput) (*meal.Meal, error) {
	id, err := requireID("id", input.ID)
	if err != nil {
		return nil, err
	}
	if input.Name == nil && input.Ingredients == nil {
		return nil, errors.NewValidation("at least one of name or ingredients is required")
	}

	// Validate everything before touching the row.
	var name string
	if input.Name != nil {
		if name, err = meal.NormalizeName(*input.Name); err != nil {
			return nil, err
		}
	}
	var ingredients []string
	if input.Ingredients != nil {
		if ingredients, err = meal.CleanIngredients(*input.Ingredients); err != nil {
			return nil, err
		}
	}

	var m *meal.Meal
	err = db.WithTx(ctx, database, func(tx *sql.Tx) error {
		existing, err := db.GetByID(ctx, tx, id)
		if err != nil {
			return err
		}
		if input.Name != nil {
			existing.Name = name
		}
		if input.Ingredients != nil {
			existing.Ingredients = ingredients
		}
		if err := db.UpdateContent(ctx, tx, existing); err != nil {
			return err
		}
		m = existing
		return nil
	})
	if err != nil {
		return nil, err
	}

	return m, nil
}
