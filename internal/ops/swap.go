package ops

import (
	"context"
	"database/sql"

	"github.com/mealcal/mealcal/internal/db"
	"github.com/mealcal/mealcal/internal/meal"
)

// SwapInput contains parameters for the Swap operation.
type SwapInput struct {
	MealID1 string
	MealID2 string
}

// SwapOutput contains both meals after the exchange, in input order.
type SwapOutput struct {
	Meals []meal.Meal `json:"meals"`
}

// Swap exchanges the slots of two live meals; ids, names and ingredients
// stay with their meals. Both sides change or neither does. Swapping a meal
// with itself succeeds without changes and returns it twice.
func Swap(ctx context.Context, database *sql.DB, input SwapInput) (*SwapOutput, error) {
	out, err := swap(ctx, database, input)
	return out, observe("swap", err)
}

func swap(ctx context.Context, database *sql.DB, input SwapInput) (*SwapOutput, error) {
	id1, err := requireID("meal_id_1", input.MealID1)
	if err != nil {
		return nil, err
	}
	id2, err := requireID("meal_id_2", input.MealID2)
	if err != nil {
		return nil, err
	}

	var a, b *meal.Meal
	err = db.WithTx(ctx, database, func(tx *sql.Tx) error {
		if a, err = db.GetByID(ctx, tx, id1); err != nil {
			return err
		}
		if id1 == id2 {
			b = a
			return nil
		}
		if b, err = db.GetByID(ctx, tx, id2); err != nil {
			return err
		}
		return db.SwapSlots(ctx, tx, a, b)
	})
	if err != nil {
		return nil, err
	}

	return &SwapOutput{Meals: []meal.Meal{*a, *b}}, nil
}
