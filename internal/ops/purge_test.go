package ops

import (
	"context"
	"database/sql"
	"testing"
	"time"

	"github.com/mealcal/mealcal/internal/errors"
)

// backdateDeletion moves a meal's deleted_at into the past.
func backdateDeletion(t *testing.T, database *sql.DB, id string, days int) {
	t.Helper()
	ts := time.Now().Add(-time.Duration(days) * 24 * time.Hour).Unix()
	if _, err := database.Exec(`UPDATE meals SET deleted_at = ? WHERE id = ?`, ts, id); err != nil {
		t.Fatalf("backdate failed: %v", err)
	}
}

func TestPurge(t *testing.T) {
	database := setupDB(t)
	seeded := seedWeek(t, database)
	ctx := context.Background()

	for _, key := range []string{"pancakes", "salad"} {
		if _, err := Delete(ctx, database, DeleteInput{ID: seeded[key].ID}); err != nil {
			t.Fatalf("Delete failed: %v", err)
		}
	}

	out, err := Purge(ctx, database, PurgeInput{})
	if err != nil {
		t.Fatalf("Purge failed: %v", err)
	}
	if out.Purged != 2 {
		t.Errorf("Purged = %d, want 2", out.Purged)
	}
	if out.Message != "Permanently deleted 2 meals" {
		t.Errorf("Message = %q", out.Message)
	}
	if n := len(liveMeals(t, database)); n != 3 {
		t.Errorf("live meals = %d, want 3", n)
	}

	// purged ids stay gone
	if _, err := Get(ctx, database, GetInput{ID: seeded["pancakes"].ID}); !errors.Is(err, errors.ErrNotFound) {
		t.Errorf("Get purged error = %v, want NOT_FOUND", err)
	}
}

func TestPurge_OlderThanDays(t *testing.T) {
	database := setupDB(t)
	seeded := seedWeek(t, database)
	ctx := context.Background()

	for _, key := range []string{"pancakes", "salad"} {
		if _, err := Delete(ctx, database, DeleteInput{ID: seeded[key].ID}); err != nil {
			t.Fatalf("Delete failed: %v", err)
		}
	}
	backdateDeletion(t, database, seeded["pancakes"].ID, 40)

	days := 30
	out, err := Purge(ctx, database, PurgeInput{OlderThanDays: &days})
	if err != nil {
		t.Fatalf("Purge failed: %v", err)
	}
	if out.Purged != 1 {
		t.Errorf("Purged = %d, want 1", out.Purged)
	}
	if out.Message != "Permanently deleted 1 meal (deleted more than 30 days ago)" {
		t.Errorf("Message = %q", out.Message)
	}

	var remaining int
	if err := database.QueryRow(`SELECT COUNT(*) FROM meals WHERE deleted_at IS NOT NULL`).Scan(&remaining); err != nil {
		t.Fatalf("count failed: %v", err)
	}
	if remaining != 1 {
		t.Errorf("deleted rows left = %d, want 1", remaining)
	}
}

func TestPurge_Nothing(t *testing.T) {
	database := setupDB(t)
	seedWeek(t, database)

	out, err := Purge(context.Background(), database, PurgeInput{})
	if err != nil {
		t.Fatalf("Purge failed: %v", err)
	}
	if out.Purged != 0 || out.Message != "No deleted meals to purge" {
		t.Errorf("out = %+v", out)
	}
	if n := len(liveMeals(t, database)); n != 5 {
		t.Errorf("live meals = %d, want 5", n)
	}
}

func TestPurge_NegativeDays(t *testing.T) {
	database := setupDB(t)
	days := -1

	if _, err := Purge(context.Background(), database, PurgeInput{OlderThanDays: &days}); !errors.Is(err, errors.ErrValidation) {
		t.Errorf("Purge error = %v, want VALIDATION_ERROR", err)
	}
}
