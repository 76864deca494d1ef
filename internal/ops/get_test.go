package ops

import (
	"context"
	"testing"

	"github.com/mealcal/mealcal/internal/errors"
)

func TestGet(t *testing.T) {
	database := setupDB(t)
	created := mustCreate(t, database, "2024-01-15", "dinner", "Pasta", "pasta")

	got, err := Get(context.Background(), database, GetInput{ID: created.ID})
	if err != nil {
		t.Fatalf("Get failed: %v", err)
	}
	if got.Name != "Pasta" || len(got.Ingredients) != 1 {
		t.Errorf("got %+v", got)
	}
}

func TestGet_Errors(t *testing.T) {
	database := setupDB(t)

	if _, err := Get(context.Background(), database, GetInput{ID: "  "}); !errors.Is(err, errors.ErrValidation) {
		t.Errorf("blank id error = %v, want VALIDATION_ERROR", err)
	}
	if _, err := Get(context.Background(), database, GetInput{ID: "01UNKNOWN"}); !errors.Is(err, errors.ErrNotFound) {
		t.Errorf("unknown id error = %v, want NOT_FOUND", err)
	}
}
