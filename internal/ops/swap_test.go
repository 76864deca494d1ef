package ops

import (
	"context"
	"testing"

	"github.com/google/go-cmp/cmp"

	"github.com/mealcal/mealcal/internal/errors"
	"github.com/mealcal/mealcal/internal/meal"
)

func TestSwap(t *testing.T) {
	database := setupDB(t)
	seeded := seedWeek(t, database)
	a, b := seeded["pancakes"], seeded["sandwich"]

	out, err := Swap(context.Background(), database, SwapInput{MealID1: a.ID, MealID2: b.ID})
	if err != nil {
		t.Fatalf("Swap failed: %v", err)
	}
	if len(out.Meals) != 2 || out.Meals[0].ID != a.ID || out.Meals[1].ID != b.ID {
		t.Fatalf("output order = %+v", out.Meals)
	}

	gotA, _ := Get(context.Background(), database, GetInput{ID: a.ID})
	gotB, _ := Get(context.Background(), database, GetInput{ID: b.ID})

	if gotA.Slot() != b.Slot() {
		t.Errorf("A slot = %v, want %v", gotA.Slot(), b.Slot())
	}
	if gotB.Slot() != a.Slot() {
		t.Errorf("B slot = %v, want %v", gotB.Slot(), a.Slot())
	}
	if gotA.Name != a.Name || gotB.Name != b.Name {
		t.Error("names moved with the slot")
	}
	if diff := cmp.Diff(a.Ingredients, gotA.Ingredients); diff != "" {
		t.Errorf("A ingredients changed (-want +got):\n%s", diff)
	}
	assertSlotsUnique(t, database)
}

func TestSwap_SameDaySlots(t *testing.T) {
	database := setupDB(t)
	seeded := seedWeek(t, database)

	_, err := Swap(context.Background(), database, SwapInput{MealID1: seeded["pancakes"].ID, MealID2: seeded["salad"].ID})
	if err != nil {
		t.Fatalf("Swap failed: %v", err)
	}

	got, _ := Get(context.Background(), database, GetInput{ID: seeded["pancakes"].ID})
	if got.MealType != meal.Lunch {
		t.Errorf("pancakes MealType = %s, want lunch", got.MealType)
	}
	got, _ = Get(context.Background(), database, GetInput{ID: seeded["salad"].ID})
	if got.MealType != meal.Breakfast {
		t.Errorf("salad MealType = %s, want breakfast", got.MealType)
	}
}

// Swapping a meal with itself is a no-op success returning the meal twice.
func TestSwap_SelfIsNoop(t *testing.T) {
	database := setupDB(t)
	m := mustCreate(t, database, "2024-01-15", "dinner", "Pasta")

	out, err := Swap(context.Background(), database, SwapInput{MealID1: m.ID, MealID2: m.ID})
	if err != nil {
		t.Fatalf("Swap(self) failed: %v", err)
	}
	if len(out.Meals) != 2 {
		t.Fatalf("len = %d, want 2", len(out.Meals))
	}
	for i, got := range out.Meals {
		if diff := cmp.Diff(*m, got); diff != "" {
			t.Errorf("Meals[%d] changed (-want +got):\n%s", i, diff)
		}
	}
}

func TestSwap_MissingSideDoesNotApply(t *testing.T) {
	database := setupDB(t)
	m := mustCreate(t, database, "2024-01-15", "dinner", "Pasta")

	tests := []struct {
		name  string
		input SwapInput
		id    string
	}{
		{"first missing", SwapInput{MealID1: "01MISSING", MealID2: m.ID}, "01MISSING"},
		{"second missing", SwapInput{MealID1: m.ID, MealID2: "01MISSING"}, "01MISSING"},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			_, err := Swap(context.Background(), database, tc.input)
			if !errors.Is(err, errors.ErrNotFound) {
				t.Fatalf("Swap error = %v, want NOT_FOUND", err)
			}
			if got := errors.As(err).Details["id"]; got != tc.id {
				t.Errorf("Details[id] = %v, want %s", got, tc.id)
			}

			after, _ := Get(context.Background(), database, GetInput{ID: m.ID})
			if after.Slot() != m.Slot() {
				t.Errorf("slot changed to %v", after.Slot())
			}
		})
	}
}

func TestSwap_DeletedMeal(t *testing.T) {
	database := setupDB(t)
	seeded := seedWeek(t, database)
	if _, err := Delete(context.Background(), database, DeleteInput{ID: seeded["salad"].ID}); err != nil {
		t.Fatalf("Delete failed: %v", err)
	}

	_, err := Swap(context.Background(), database, SwapInput{MealID1: seeded["pancakes"].ID, MealID2: seeded["salad"].ID})
	if !errors.Is(err, errors.ErrNotFound) {
		t.Errorf("Swap error = %v, want NOT_FOUND", err)
	}
}

func TestSwap_BlankIDs(t *testing.T) {
	database := setupDB(t)

	if _, err := Swap(context.Background(), database, SwapInput{MealID1: "", MealID2: "x"}); !errors.Is(err, errors.ErrValidation) {
		t.Errorf("Swap error = %v, want VALIDATION_ERROR", err)
	}
}
