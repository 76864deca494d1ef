package ops

import (
	"crypto/rand"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/oklog/ulid/v2"

	"github.com/mealcal/mealcal/internal/errors"
	"github.com/mealcal/mealcal/internal/meal"
	"github.com/mealcal/mealcal/internal/metrics"
)

// MaxSearchResults caps ingredient search results.
const MaxSearchResults = 10

// Bounds used when an export has no date range.
const (
	minDate = "0001-01-01"
	maxDate = "9999-12-31"
)

// DateRange is a validated inclusive date range.
type DateRange struct {
	Start string
	End   string
}

// ParseDateRange validates start and end. Both are required; start after end
// is allowed and simply matches nothing.
func ParseDateRange(start, end string) (DateRange, error) {
	s, err := meal.ParseDate("start_date", start)
	if err != nil {
		return DateRange{}, err
	}
	e, err := meal.ParseDate("end_date", end)
	if err != nil {
		return DateRange{}, err
	}
	return DateRange{Start: s, End: e}, nil
}

// parseSlot validates a target slot for copy and move.
func parseSlot(date, mealType string) (meal.Slot, error) {
	d, err := meal.ParseDate("target_date", date)
	if err != nil {
		return meal.Slot{}, err
	}
	mt, err := meal.ParseMealType("target_meal_type", mealType)
	if err != nil {
		return meal.Slot{}, err
	}
	return meal.Slot{Date: d, MealType: mt}, nil
}

// requireID trims id and rejects it if blank.
func requireID(field, id string) (string, error) {
	id = strings.TrimSpace(id)
	if id == "" {
		return "", errors.NewValidation(fmt.Sprintf("%s is required", field))
	}
	return id, nil
}

// observe records the outcome of op and passes err through.
func observe(op string, err error) error {
	metrics.ObserveOperation(op, err)
	return err
}

var (
	entropyMu sync.Mutex
	entropy   = ulid.Monotonic(rand.Reader, 0)
)

// generateULID generates a new ULID. Ids from one process are strictly
// increasing, so newer meals sort after older ones.
func generateULID() (string, error) {
	entropyMu.Lock()
	defer entropyMu.Unlock()
	id, err := ulid.New(ulid.Timestamp(time.Now()), entropy)
	if err != nil {
		return "", err
	}
	return id.String(), nil
}
