package web

import (
	"net/http"
	"time"

	"go.uber.org/zap"

	"github.com/mealcal/mealcal/internal/meal"
	"github.com/mealcal/mealcal/internal/ops"
)

// weekBounds resolves the ?start= parameter to the week containing it.
// Without a parameter the current week in the configured timezone is used.
func (h *Handlers) weekBounds(r *http.Request) (start, end time.Time, err error) {
	day := h.today()
	if s := r.URL.Query().Get("start"); s != "" {
		date, err := meal.ParseDate("start", s)
		if err != nil {
			return time.Time{}, time.Time{}, err
		}
		day, _ = time.Parse(meal.DateLayout, date)
	}
	start = meal.WeekStart(day, h.cfg.WeekStart)
	return start, start.AddDate(0, 0, 6), nil
}

func (h *Handlers) today() time.Time {
	loc, err := h.cfg.Location()
	if err != nil {
		loc = time.UTC
	}
	return time.Now().In(loc)
}

// HandleWeek handles GET /week, the 7x3 meal grid.
func (h *Handlers) HandleWeek(w http.ResponseWriter, r *http.Request) {
	start, end, err := h.weekBounds(r)
	if err != nil {
		h.failPage(w, r, err)
		return
	}
	startDate, endDate := start.Format(meal.DateLayout), end.Format(meal.DateLayout)

	out, err := ops.List(r.Context(), h.db, ops.ListInput{StartDate: startDate, EndDate: endDate})
	if err != nil {
		h.failPage(w, r, err)
		return
	}

	bySlot := make(map[meal.Slot]*meal.Meal, len(out.Meals))
	for i := range out.Meals {
		bySlot[out.Meals[i].Slot()] = &out.Meals[i]
	}

	today := h.today().Format(meal.DateLayout)
	days := make([]DayView, 0, 7)
	for _, date := range meal.Days(startDate, endDate) {
		day := DayView{Date: date, Weekday: meal.Weekday(date), Today: date == today}
		for _, mt := range meal.MealTypes {
			day.Slots = append(day.Slots, SlotView{MealType: mt, Meal: bySlot[meal.Slot{Date: date, MealType: mt}]})
		}
		days = append(days, day)
	}

	h.render(w, r, "week", WeekPageData{
		PageData:  h.renderer.page("Week of "+startDate, "week"),
		Start:     startDate,
		End:       endDate,
		PrevStart: start.AddDate(0, 0, -7).Format(meal.DateLayout),
		NextStart: start.AddDate(0, 0, 7).Format(meal.DateLayout),
		Days:      days,
		MealTypes: meal.MealTypes,
		Count:     len(out.Meals),
	})
}

// HandleWeekSummary handles GET /week/summary: the printable plan and shopping list.
func (h *Handlers) HandleWeekSummary(w http.ResponseWriter, r *http.Request) {
	start, end, err := h.weekBounds(r)
	if err != nil {
		h.failPage(w, r, err)
		return
	}
	startDate, endDate := start.Format(meal.DateLayout), end.Format(meal.DateLayout)

	out, err := ops.Summary(r.Context(), h.db, ops.SummaryInput{StartDate: startDate, EndDate: endDate})
	if err != nil {
		h.failPage(w, r, err)
		return
	}

	h.render(w, r, "summary", SummaryPageData{
		PageData:     h.renderer.page("Summary "+startDate+" to "+endDate, "summary"),
		Start:        startDate,
		End:          endDate,
		PrevStart:    start.AddDate(0, 0, -7).Format(meal.DateLayout),
		NextStart:    start.AddDate(0, 0, 7).Format(meal.DateLayout),
		RenderedHTML: renderMarkdown(out.Markdown),
	})
}

func (h *Handlers) render(w http.ResponseWriter, r *http.Request, name string, data any) {
	if err := h.renderer.renderPage(w, http.StatusOK, name, data); err != nil {
		h.logger.Error("render page", zap.String("page", name), zap.Error(err))
		http.Error(w, "internal server error", http.StatusInternalServerError)
	}
}
