package ops

import (
	"context"
	"database/sql"

	"github.com/mealcal/mealcal/internal/db"
	"github.com/mealcal/mealcal/internal/errors"
	"github.com/mealcal/mealcal/internal/meal"
)

// MoveInput contains parameters for the Move operation.
type MoveInput struct {
	ID             string
	TargetDate     string // required, YYYY-MM-DD
	TargetMealType string // required
}

// Move relocates a live meal to the target slot, keeping its id and content.
// Moving onto the meal's own slot succeeds without changes; a different live
// meal in the target slot is a conflict.
func Move(ctx context.Context, database *sql.DB, input MoveInput) (*meal.Meal, error) {
	m, err := move(ctx, database, input)
	return m, observe("move", err)
}

func move(ctx context.Context, database *sql.DB, input MoveInput) (*meal.Meal, error) {
	id, err := requireID("id", input.ID)
	if err != nil {
		return nil, err
	}
	target, err := parseSlot(input.TargetDate, input.TargetMealType)
	if err != nil {
		return nil, err
	}

	var moved *meal.Meal
	err = db.WithTx(ctx, database, func(tx *sql.Tx) error {
		m, err := db.GetByID(ctx, tx, id)
		if err != nil {
			return err
		}
		if m.Slot() == target {
			moved = m
			return nil
		}

		occupant, err := db.GetBySlot(ctx, tx, target.Date, target.MealType)
		if err != nil {
			return err
		}
		if occupant != nil {
			return errors.NewSlotOccupied(target.Date, string(target.MealType))
		}

		if err := db.UpdateSlot(ctx, tx, m, target.Date, target.MealType); err != nil {
			return err
		}
		moved = m
		return nil
	})
	if err != nil {
		return nil, err
	}

	return moved, nil
}
