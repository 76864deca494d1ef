package db

import (
	"context"
	"database/sql"
	"encoding/json"
	"strings"
	"time"

	"github.com/mealcal/mealcal/internal/errors"
	"github.com/mealcal/mealcal/internal/meal"
)

// parkingDate is a value no validated date can take. Swap moves one meal
// here for the duration of its transaction so the slot index never sees
// two live meals in one slot.
const parkingDate = "0000-00-00"

const mealColumns = `id, date, meal_type, name, ingredients_json, created_at, updated_at, deleted_at`

// slotOrder sorts rows breakfast, lunch, dinner within a day.
const slotOrder = `CASE meal_type WHEN 'breakfast' THEN 0 WHEN 'lunch' THEN 1 ELSE 2 END`

// Insert stores a new meal. A live meal already in the slot yields SLOT_OCCUPIED.
func Insert(ctx context.Context, q Querier, m *meal.Meal) error {
	ingredientsJSON, normJSON, err := encodeIngredients(m.Ingredients)
	if err != nil {
		return errors.NewInternal(err)
	}

	query := `
		INSERT INTO meals (
			id, date, meal_type, name, ingredients_json, ingredients_norm_json,
			created_at, updated_at, deleted_at
		) VALUES (?, ?, ?, ?, ?, ?, ?, ?, NULL)
	`

	_, err = q.ExecContext(ctx, query,
		m.ID, m.Date, string(m.MealType), m.Name, ingredientsJSON, normJSON,
		m.CreatedAt, m.UpdatedAt,
	)
	if err != nil {
		if isUniqueConstraintError(err) {
			return errors.NewSlotOccupied(m.Date, string(m.MealType))
		}
		return wrapErr(ctx, err)
	}

	return nil
}

// isUniqueConstraintError checks if the error is a SQLite UNIQUE constraint violation.
func isUniqueConstraintError(err error) bool {
	if err == nil {
		return false
	}
	// SQLite returns "UNIQUE constraint failed: ..." for unique violations
	return strings.Contains(err.Error(), "UNIQUE constraint failed")
}

// GetByID retrieves a live meal by its ULID.
func GetByID(ctx context.Context, q Querier, id string) (*meal.Meal, error) {
	query := `SELECT ` + mealColumns + ` FROM meals WHERE id = ? AND deleted_at IS NULL`

	m, err := scanMeal(q.QueryRowContext(ctx, query, id))
	if err == sql.ErrNoRows {
		return nil, errors.NewNotFound(id)
	}
	if err != nil {
		return nil, wrapErr(ctx, err)
	}

	return m, nil
}

// GetBySlot returns the live meal occupying (date, mealType), or nil if the slot is empty.
func GetBySlot(ctx context.Context, q Querier, date string, mealType meal.MealType) (*meal.Meal, error) {
	query := `SELECT ` + mealColumns + ` FROM meals WHERE date = ? AND meal_type = ? AND deleted_at IS NULL`

	m, err := scanMeal(q.QueryRowContext(ctx, query, date, string(mealType)))
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, wrapErr(ctx, err)
	}

	return m, nil
}

// ListRange returns live meals with start <= date <= end, ordered by date
// then breakfast, lunch, dinner. Dates compare lexically, which matches
// chronological order for YYYY-MM-DD.
func ListRange(ctx context.Context, q Querier, start, end string) ([]meal.Meal, error) {
	query := `
		SELECT ` + mealColumns + `
		FROM meals
		WHERE deleted_at IS NULL AND date >= ? AND date <= ?
		ORDER BY date ASC, ` + slotOrder

	rows, err := q.QueryContext(ctx, query, start, end)
	if err != nil {
		return nil, wrapErr(ctx, err)
	}
	defer rows.Close()

	return collectMeals(ctx, rows)
}

// SearchIngredient returns live meals with an ingredient equal to the
// normalized term, newest date first, at most limit rows.
func SearchIngredient(ctx context.Context, q Querier, termNorm string, limit int) ([]meal.Meal, error) {
	query := `
		SELECT ` + mealColumns + `
		FROM meals
		WHERE deleted_at IS NULL
		  AND EXISTS (
		    SELECT 1 FROM json_each(meals.ingredients_norm_json) AS ing
		    WHERE ing.value = ?
		  )
		ORDER BY date DESC, id DESC
		LIMIT ?
	`

	rows, err := q.QueryContext(ctx, query, termNorm, limit)
	if err != nil {
		return nil, wrapErr(ctx, err)
	}
	defer rows.Close()

	return collectMeals(ctx, rows)
}

// UpdateContent rewrites name and ingredients of a live meal and sets
// updated_at. The slot is never changed here.
func UpdateContent(ctx context.Context, q Querier, m *meal.Meal) error {
	ingredientsJSON, normJSON, err := encodeIngredients(m.Ingredients)
	if err != nil {
		return errors.NewInternal(err)
	}

	now := time.Now().Unix()

	query := `
		UPDATE meals
		SET name = ?, ingredients_json = ?, ingredients_norm_json = ?, updated_at = ?
		WHERE id = ? AND deleted_at IS NULL
	`

	result, err := q.ExecContext(ctx, query, m.Name, ingredientsJSON, normJSON, now, m.ID)
	if err != nil {
		return wrapErr(ctx, err)
	}
	if err := requireOneRow(ctx, result, m.ID); err != nil {
		return err
	}

	m.UpdatedAt = now
	return nil
}

// UpdateSlot moves a live meal to (date, mealType) and sets updated_at.
// A different live meal in the target slot yields SLOT_OCCUPIED.
func UpdateSlot(ctx context.Context, q Querier, m *meal.Meal, date string, mealType meal.MealType) error {
	now := time.Now().Unix()

	query := `
		UPDATE meals
		SET date = ?, meal_type = ?, updated_at = ?
		WHERE id = ? AND deleted_at IS NULL
	`

	result, err := q.ExecContext(ctx, query, date, string(mealType), now, m.ID)
	if err != nil {
		if isUniqueConstraintError(err) {
			return errors.NewSlotOccupied(date, string(mealType))
		}
		return wrapErr(ctx, err)
	}
	if err := requireOneRow(ctx, result, m.ID); err != nil {
		return err
	}

	m.Date = date
	m.MealType = mealType
	m.UpdatedAt = now
	return nil
}

// SwapSlots exchanges the slots of two distinct live meals. Must run inside
// a transaction: the first meal is parked outside any real slot while the
// second takes its place.
func SwapSlots(ctx context.Context, tx *sql.Tx, a, b *meal.Meal) error {
	slotA, slotB := a.Slot(), b.Slot()

	if err := UpdateSlot(ctx, tx, a, parkingDate, slotA.MealType); err != nil {
		return err
	}
	if err := UpdateSlot(ctx, tx, b, slotA.Date, slotA.MealType); err != nil {
		return err
	}
	return UpdateSlot(ctx, tx, a, slotB.Date, slotB.MealType)
}

// SoftDelete marks a meal as deleted by setting deleted_at.
func SoftDelete(ctx context.Context, q Querier, id string) error {
	now := time.Now().Unix()

	query := `
		UPDATE meals
		SET deleted_at = ?
		WHERE id = ? AND deleted_at IS NULL
	`

	result, err := q.ExecContext(ctx, query, now, id)
	if err != nil {
		return wrapErr(ctx, err)
	}

	return requireOneRow(ctx, result, id)
}

// PurgeDeleted permanently removes soft-deleted meals. If olderThanDays is
// set, only meals deleted more than that many days ago are removed.
func PurgeDeleted(ctx context.Context, q Querier, olderThanDays *int) (int, error) {
	query := `DELETE FROM meals WHERE deleted_at IS NOT NULL`
	var args []any

	if olderThanDays != nil {
		cutoff := time.Now().Unix() - int64(*olderThanDays)*24*60*60
		query += ` AND deleted_at < ?`
		args = append(args, cutoff)
	}

	result, err := q.ExecContext(ctx, query, args...)
	if err != nil {
		return 0, wrapErr(ctx, err)
	}

	n, err := result.RowsAffected()
	if err != nil {
		return 0, errors.NewInternal(err)
	}

	return int(n), nil
}

// CountLive returns the number of live meals.
func CountLive(ctx context.Context, q Querier) (int, error) {
	var n int
	if err := q.QueryRowContext(ctx, `SELECT COUNT(*) FROM meals WHERE deleted_at IS NULL`).Scan(&n); err != nil {
		return 0, wrapErr(ctx, err)
	}
	return n, nil
}

// requireOneRow reports NOT_FOUND for an update that matched no live meal.
func requireOneRow(ctx context.Context, result sql.Result, id string) error {
	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return wrapErr(ctx, err)
	}
	if rowsAffected == 0 {
		return errors.NewNotFound(id)
	}
	return nil
}

// encodeIngredients returns the stored JSON array and its normalized twin
// used for case-insensitive search.
func encodeIngredients(ingredients []string) (string, string, error) {
	if ingredients == nil {
		ingredients = []string{}
	}
	raw, err := json.Marshal(ingredients)
	if err != nil {
		return "", "", err
	}
	norm, err := json.Marshal(meal.NormalizeIngredients(ingredients))
	if err != nil {
		return "", "", err
	}
	return string(raw), string(norm), nil
}

// rowScanner is implemented by *sql.Row and *sql.Rows.
type rowScanner interface {
	Scan(dest ...any) error
}

// scanMeal scans a single row into a Meal struct.
func scanMeal(row rowScanner) (*meal.Meal, error) {
	var (
		m               meal.Meal
		mealType        string
		ingredientsJSON string
		deletedAt       sql.NullInt64
	)

	err := row.Scan(
		&m.ID, &m.Date, &mealType, &m.Name, &ingredientsJSON,
		&m.CreatedAt, &m.UpdatedAt, &deletedAt,
	)
	if err != nil {
		return nil, err
	}

	m.MealType = meal.MealType(mealType)
	if deletedAt.Valid {
		m.DeletedAt = &deletedAt.Int64
	}

	m.Ingredients = []string{}
	if ingredientsJSON != "" {
		if err := json.Unmarshal([]byte(ingredientsJSON), &m.Ingredients); err != nil {
			return nil, err
		}
	}

	return &m, nil
}

// collectMeals drains rows into a non-nil slice.
func collectMeals(ctx context.Context, rows *sql.Rows) ([]meal.Meal, error) {
	meals := []meal.Meal{}
	for rows.Next() {
		m, err := scanMeal(rows)
		if err != nil {
			return nil, errors.NewInternal(err)
		}
		meals = append(meals, *m)
	}
	if err := rows.Err(); err != nil {
		return nil, wrapErr(ctx, err)
	}
	return meals, nil
}
