package ops

import (
	"context"
	"testing"

	"github.com/google/go-cmp/cmp"

	"github.com/mealcal/mealcal/internal/errors"
)

func TestUpdate_Name(t *testing.T) {
	database := setupDB(t)
	m := mustCreate(t, database, "2024-01-15", "lunch", "Salad", "lettuce")

	name := "  Caesar Salad "
	got, err := Update(context.Background(), database, UpdateInput{ID: m.ID, Name: &name})
	if err != nil {
		t.Fatalf("Update failed: %v", err)
	}
	if got.Name != "Caesar Salad" {
		t.Errorf("Name = %q, want trimmed", got.Name)
	}
	// untouched fields survive
	if diff := cmp.Diff([]string{"lettuce"}, got.Ingredients); diff != "" {
		t.Errorf("Ingredients changed (-want +got):\n%s", diff)
	}
	if got.Date != m.Date || got.MealType != m.MealType {
		t.Errorf("slot changed: %s %s", got.Date, got.MealType)
	}
}

func TestUpdate_Ingredients(t *testing.T) {
	database := setupDB(t)
	m := mustCreate(t, database, "2024-01-15", "lunch", "Salad")

	ingredients := []string{" lettuce ", "", "tomato", "lettuce", "Tomato"}
	got, err := Update(context.Background(), database, UpdateInput{ID: m.ID, Ingredients: &ingredients})
	if err != nil {
		t.Fatalf("Update failed: %v", err)
	}

	want := []string{"lettuce", "tomato", "Tomato"}
	if diff := cmp.Diff(want, got.Ingredients); diff != "" {
		t.Errorf("Ingredients mismatch (-want +got):\n%s", diff)
	}
	if got.Name != "Salad" {
		t.Errorf("Name = %q, want unchanged", got.Name)
	}

	// clearing is allowed
	empty := []string{}
	got, err = Update(context.Background(), database, UpdateInput{ID: m.ID, Ingredients: &empty})
	if err != nil {
		t.Fatalf("Update(clear) failed: %v", err)
	}
	if len(got.Ingredients) != 0 {
		t.Errorf("Ingredients = %v, want empty", got.Ingredients)
	}
}

func TestUpdate_EmptyNameDoesNotMutate(t *testing.T) {
	database := setupDB(t)
	m := mustCreate(t, database, "2024-01-15", "dinner", "Pasta", "pasta")

	blank := "   "
	ingredients := []string{"rice"}
	_, err := Update(context.Background(), database, UpdateInput{ID: m.ID, Name: &blank, Ingredients: &ingredients})
	if !errors.Is(err, errors.ErrValidation) {
		t.Fatalf("Update error = %v, want VALIDATION_ERROR", err)
	}

	got, err := Get(context.Background(), database, GetInput{ID: m.ID})
	if err != nil {
		t.Fatalf("Get failed: %v", err)
	}
	if got.Name != "Pasta" {
		t.Errorf("Name = %q, want unchanged", got.Name)
	}
	if diff := cmp.Diff([]string{"pasta"}, got.Ingredients); diff != "" {
		t.Errorf("Ingredients changed (-want +got):\n%s", diff)
	}
}

func TestUpdate_TooManyIngredients(t *testing.T) {
	database := setupDB(t)
	m := mustCreate(t, database, "2024-01-15", "dinner", "Stew")

	ingredients := []string{"a", "b", "c", "d", "e", "f", "g", "h", "i", "j", "k"}
	_, err := Update(context.Background(), database, UpdateInput{ID: m.ID, Ingredients: &ingredients})
	if !errors.Is(err, errors.ErrValidation) {
		t.Errorf("Update error = %v, want VALIDATION_ERROR", err)
	}
}

func TestUpdate_Errors(t *testing.T) {
	database := setupDB(t)
	m := mustCreate(t, database, "2024-01-15", "dinner", "Stew")
	name := "Goulash"

	tests := []struct {
		name  string
		input UpdateInput
		code  errors.ErrorCode
	}{
		{"no fields", UpdateInput{ID: m.ID}, errors.ErrValidation},
		{"blank id", UpdateInput{Name: &name}, errors.ErrValidation},
		{"unknown id", UpdateInput{ID: "01UNKNOWN", Name: &name}, errors.ErrNotFound},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			_, err := Update(context.Background(), database, tc.input)
			if !errors.Is(err, tc.code) {
				t.Errorf("Update error = %v, want %s", err, tc.code)
			}
		})
	}
}

func TestUpdate_DeletedMeal(t *testing.T) {
	database := setupDB(t)
	m := mustCreate(t, database, "2024-01-15", "dinner", "Stew")
	if _, err := Delete(context.Background(), database, DeleteInput{ID: m.ID}); err != nil {
		t.Fatalf("Delete failed: %v", err)
	}

	name := "Goulash"
	if _, err := Update(context.Background(), database, UpdateInput{ID: m.ID, Name: &name}); !errors.Is(err, errors.ErrNotFound) {
		t.Errorf("Update error = %v, want NOT_FOUND", err)
	}
}
