package ops

import (
	"context"
	"testing"

	"github.com/mealcal/mealcal/internal/errors"
)

func TestList_Range(t *testing.T) {
	database := setupDB(t)
	seeded := seedWeek(t, database)

	out, err := List(context.Background(), database, ListInput{StartDate: "2024-01-16", EndDate: "2024-01-16"})
	if err != nil {
		t.Fatalf("List failed: %v", err)
	}
	if len(out.Meals) != 2 {
		t.Fatalf("len = %d, want 2", len(out.Meals))
	}
	if out.Meals[0].ID != seeded["oatmeal"].ID || out.Meals[1].ID != seeded["sandwich"].ID {
		t.Errorf("order = %s, %s", out.Meals[0].Name, out.Meals[1].Name)
	}
}

func TestList_InclusiveBounds(t *testing.T) {
	database := setupDB(t)
	seedWeek(t, database)

	out, err := List(context.Background(), database, ListInput{StartDate: "2024-01-15", EndDate: "2024-01-16"})
	if err != nil {
		t.Fatalf("List failed: %v", err)
	}
	if len(out.Meals) != 5 {
		t.Errorf("len = %d, want 5", len(out.Meals))
	}
}

func TestList_EmptyRange(t *testing.T) {
	database := setupDB(t)
	seedWeek(t, database)

	tests := []struct {
		name  string
		input ListInput
	}{
		{"no meals in range", ListInput{StartDate: "2024-02-01", EndDate: "2024-02-07"}},
		{"start after end", ListInput{StartDate: "2024-01-16", EndDate: "2024-01-15"}},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			out, err := List(context.Background(), database, tc.input)
			if err != nil {
				t.Fatalf("List failed: %v", err)
			}
			if out.Meals == nil || len(out.Meals) != 0 {
				t.Errorf("Meals = %#v, want empty non-nil", out.Meals)
			}
		})
	}
}

func TestList_MissingParams(t *testing.T) {
	database := setupDB(t)

	tests := []ListInput{
		{EndDate: "2024-01-21"},
		{StartDate: "2024-01-15"},
		{StartDate: "next week", EndDate: "2024-01-21"},
	}

	for _, input := range tests {
		_, err := List(context.Background(), database, input)
		if !errors.Is(err, errors.ErrValidation) {
			t.Errorf("List(%+v) error = %v, want VALIDATION_ERROR", input, err)
		}
	}
}
