package ops

import (
	"context"
	"testing"

	"github.com/mealcal/mealcal/internal/errors"
)

func TestDelete(t *testing.T) {
	database := setupDB(t)
	m := mustCreate(t, database, "2024-01-15", "breakfast", "Pancakes")

	out, err := Delete(context.Background(), database, DeleteInput{ID: m.ID})
	if err != nil {
		t.Fatalf("Delete failed: %v", err)
	}
	if !out.Deleted || out.ID != m.ID {
		t.Errorf("output = %+v", out)
	}

	if _, err := Get(context.Background(), database, GetInput{ID: m.ID}); !errors.Is(err, errors.ErrNotFound) {
		t.Errorf("Get after delete error = %v, want NOT_FOUND", err)
	}
}

func TestDelete_Twice(t *testing.T) {
	database := setupDB(t)
	m := mustCreate(t, database, "2024-01-15", "breakfast", "Pancakes")

	if _, err := Delete(context.Background(), database, DeleteInput{ID: m.ID}); err != nil {
		t.Fatalf("first Delete failed: %v", err)
	}
	if _, err := Delete(context.Background(), database, DeleteInput{ID: m.ID}); !errors.Is(err, errors.ErrNotFound) {
		t.Errorf("second Delete error = %v, want NOT_FOUND", err)
	}
}

func TestDelete_FreesSlotWithNewID(t *testing.T) {
	database := setupDB(t)
	old := mustCreate(t, database, "2024-01-15", "breakfast", "Pancakes")

	if _, err := Delete(context.Background(), database, DeleteInput{ID: old.ID}); err != nil {
		t.Fatalf("Delete failed: %v", err)
	}

	replacement := mustCreate(t, database, "2024-01-15", "breakfast", "Waffles")
	if replacement.ID == old.ID {
		t.Error("deleted id was reused")
	}
}

func TestDelete_Unknown(t *testing.T) {
	database := setupDB(t)

	if _, err := Delete(context.Background(), database, DeleteInput{ID: "01UNKNOWN"}); !errors.Is(err, errors.ErrNotFound) {
		t.Errorf("Delete error = %v, want NOT_FOUND", err)
	}
	if _, err := Delete(context.Background(), database, DeleteInput{}); !errors.Is(err, errors.ErrValidation) {
		t.Errorf("Delete(blank) error = %v, want VALIDATION_ERROR", err)
	}
}
