package ops

import (
	"context"
	"database/sql"
	"time"

	"github.com/mealcal/mealcal/internal/db"
	"github.com/mealcal/mealcal/internal/errors"
	"github.com/mealcal/mealcal/internal/meal"
)

// CreateInput contains parameters for the Create operation.
type CreateInput struct {
	Date     string // required, YYYY-MM-DD
	MealType string // required: breakfast, lunch or dinner
	Name     string // required, trimmed
}

// Create places a new meal with no ingredients into an empty slot.
func Create(ctx context.Context, database *sql.DB, input CreateInput) (*meal.Meal, error) {
	m, err := create(ctx, database, input)
	return m, observe("create", err)
}

func create(ctx context.Context, database *sql.DB, input CreateInput) (*meal.Meal, error) {
	date, err := meal.ParseDate("date", input.Date)
	if err != nil {
		return nil, err
	}
	mealType, err := meal.ParseMealType("meal_type", input.MealType)
	if err != nil {
		return nil, err
	}
	name, err := meal.NormalizeName(input.Name)
	if err != nil {
		return nil, err
	}

	id, err := generateULID()
	if err != nil {
		return nil, errors.NewInternal(err)
	}

	now := time.Now().Unix()
	m := &meal.Meal{
		ID:          id,
		Date:        date,
		MealType:    mealType,
		Name:        name,
		Ingredients: []string{},
		CreatedAt:   now,
		UpdatedAt:   now,
	}

	err = db.WithTx(ctx, database, func(tx *sql.Tx) error {
		return insertIntoFreeSlot(ctx, tx, m)
	})
	if err != nil {
		return nil, err
	}

	return m, nil
}

// insertIntoFreeSlot inserts m after confirming its slot holds no live meal.
func insertIntoFreeSlot(ctx context.Context, tx *sql.Tx, m *meal.Meal) error {
	occupant, err := db.GetBySlot(ctx, tx, m.Date, m.MealType)
	if err != nil {
		return err
	}
	if occupant != nil {
		return errors.NewSlotOccupied(m.Date, string(m.MealType))
	}
	return db.Insert(ctx, tx, m)
}
