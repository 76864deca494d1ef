// Package ics renders planned meals as an iCalendar feed.
package ics

import (
	"fmt"
	"strings"
	"time"

	ical "github.com/arran4/golang-ical"

	"github.com/mealcal/mealcal/internal/config"
	"github.com/mealcal/mealcal/internal/meal"
)

// ProductID identifies the feed producer.
const ProductID = "-//mealcal//meal plan//EN"

// MealDuration is the length of every meal event.
const MealDuration = time.Hour

// UID returns the stable event UID of a meal.
func UID(m *meal.Meal) string {
	return m.ID + "@mealcal"
}

// Feed renders meals as a VCALENDAR with one VEVENT per meal. Events start
// at the configured meal time in the configured timezone.
func Feed(meals []meal.Meal, cfg *config.Config, now time.Time) (string, error) {
	if cfg == nil {
		cfg = config.DefaultConfig()
	}
	loc, err := cfg.Location()
	if err != nil {
		return "", err
	}

	cal := ical.NewCalendar()
	cal.SetMethod(ical.MethodPublish)
	cal.SetProductId(ProductID)
	cal.SetXWRCalName("Meal plan")
	cal.SetXWRTimezone(loc.String())

	stamp := now.UTC()
	for i := range meals {
		m := &meals[i]
		start, err := StartTime(m, cfg.MealTimes, loc)
		if err != nil {
			return "", err
		}

		event := cal.AddEvent(UID(m))
		event.SetDtStampTime(stamp)
		event.SetCreatedTime(time.Unix(m.CreatedAt, 0))
		event.SetModifiedAt(time.Unix(m.UpdatedAt, 0))
		event.SetStartAt(start)
		event.SetEndAt(start.Add(MealDuration))
		event.SetSummary(fmt.Sprintf("%s: %s", m.MealType.Label(), m.Name))
		if len(m.Ingredients) > 0 {
			event.SetDescription(strings.Join(m.Ingredients, ", "))
		}
	}

	return cal.Serialize(), nil
}

// StartTime places a meal on its date at the meal time for its type.
// A blank meal time falls back to the default.
func StartTime(m *meal.Meal, times config.MealTimes, loc *time.Location) (time.Time, error) {
	day, err := time.ParseInLocation(meal.DateLayout, m.Date, loc)
	if err != nil {
		return time.Time{}, fmt.Errorf("invalid meal date %q: %w", m.Date, err)
	}

	hm := times.For(string(m.MealType))
	if hm == "" {
		hm = config.DefaultConfig().MealTimes.For(string(m.MealType))
	}
	hour, minute, err := config.ParseClock(hm)
	if err != nil {
		return time.Time{}, err
	}

	return time.Date(day.Year(), day.Month(), day.Day(), hour, minute, 0, 0, loc), nil
}
