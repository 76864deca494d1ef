package ops

import (
	"context"
	"database/sql"
	"time"

	"github.com/mealcal/mealcal/internal/db"
	"github.com/mealcal/mealcal/internal/errors"
	"github.com/mealcal/mealcal/internal/meal"
)

// CopyInput contains parameters for the Copy operation.
type CopyInput struct {
	ID             string // source meal
	TargetDate     string // required, YYYY-MM-DD
	TargetMealType string // required
}

// Copy creates a new meal in the target slot with the source's name and
// ingredients. The target must be empty; copying onto the source's own slot
// is a conflict. The source is not modified.
func Copy(ctx context.Context, database *sql.DB, input CopyInput) (*meal.Meal, error) {
	m, err := copyMeal(ctx, database, input)
	return m, observe("copy", err)
}

func copyMeal(ctx context.Context, database *sql.DB, input CopyInput) (*meal.Meal, error) {
	id, err := requireID("id", input.ID)
	if err != nil {
		return nil, err
	}
	target, err := parseSlot(input.TargetDate, input.TargetMealType)
	if err != nil {
		return nil, err
	}

	newID, err := generateULID()
	if err != nil {
		return nil, errors.NewInternal(err)
	}

	var created *meal.Meal
	err = db.WithTx(ctx, database, func(tx *sql.Tx) error {
		source, err := db.GetByID(ctx, tx, id)
		if err != nil {
			if errors.Is(err, errors.ErrNotFound) {
				return errors.NewSourceNotFound(id)
			}
			return err
		}

		now := time.Now().Unix()
		m := &meal.Meal{
			ID:          newID,
			Date:        target.Date,
			MealType:    target.MealType,
			Name:        source.Name,
			Ingredients: append([]string{}, source.Ingredients...),
			CreatedAt:   now,
			UpdatedAt:   now,
		}
		if err := insertIntoFreeSlot(ctx, tx, m); err != nil {
			return err
		}
		created = m
		return nil
	})
	if err != nil {
		return nil, err
	}

	return created, nil
}
