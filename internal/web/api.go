package web

import (
	"net/http"
	"time"

	"github.com/mealcal/mealcal/internal/ics"
	"github.com/mealcal/mealcal/internal/ops"
)

type createRequest struct {
	Date     string `json:"date"`
	MealType string `json:"meal_type"`
	Name     string `json:"name"`
}

type updateRequest struct {
	Name        *string   `json:"name"`
	Ingredients *[]string `json:"ingredients"`
}

type slotRequest struct {
	TargetDate     string `json:"target_date"`
	TargetMealType string `json:"target_meal_type"`
}

type swapRequest struct {
	MealID1 string `json:"meal_id_1"`
	MealID2 string `json:"meal_id_2"`
}

// Health handles GET /api/health.
func (h *Handlers) Health(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "healthy"})
}

// ListMeals handles GET /api/meals?start_date=&end_date=.
func (h *Handlers) ListMeals(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	out, err := ops.List(r.Context(), h.db, ops.ListInput{
		StartDate: q.Get("start_date"),
		EndDate:   q.Get("end_date"),
	})
	if err != nil {
		h.fail(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, out.Meals)
}

// CreateMeal handles POST /api/meals.
// A new meal always starts with no ingredients; an "ingredients" field in the
// body is ignored. Set them afterwards with PUT/PATCH /api/meals/{id}.
func (h *Handlers) CreateMeal(w http.ResponseWriter, r *http.Request) {
	var req createRequest
	if err := decodeBody(w, r, &req); err != nil {
		h.fail(w, r, err)
		return
	}

	m, err := ops.Create(r.Context(), h.db, ops.CreateInput{
		Date:     req.Date,
		MealType: req.MealType,
		Name:     req.Name,
	})
	if err != nil {
		h.fail(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, m)
}

// GetMeal handles GET /api/meals/{id}.
func (h *Handlers) GetMeal(w http.ResponseWriter, r *http.Request) {
	m, err := ops.Get(r.Context(), h.db, ops.GetInput{ID: pathID(r)})
	if err != nil {
		h.fail(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, m)
}

// UpdateMeal handles PUT and PATCH /api/meals/{id}.
func (h *Handlers) UpdateMeal(w http.ResponseWriter, r *http.Request) {
	var req updateRequest
	if err := decodeBody(w, r, &req); err != nil {
		h.fail(w, r, err)
		return
	}

	m, err := ops.Update(r.Context(), h.db, ops.UpdateInput{
		ID:          pathID(r),
		Name:        req.Name,
		Ingredients: req.Ingredients,
	})
	if err != nil {
		h.fail(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, m)
}

// DeleteMeal handles DELETE /api/meals/{id}.
func (h *Handlers) DeleteMeal(w http.ResponseWriter, r *http.Request) {
	if _, err := ops.Delete(r.Context(), h.db, ops.DeleteInput{ID: pathID(r)}); err != nil {
		h.fail(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// CopyMeal handles POST /api/meals/{id}/copy.
func (h *Handlers) CopyMeal(w http.ResponseWriter, r *http.Request) {
	var req slotRequest
	if err := decodeBody(w, r, &req); err != nil {
		h.fail(w, r, err)
		return
	}

	m, err := ops.Copy(r.Context(), h.db, ops.CopyInput{
		ID:             pathID(r),
		TargetDate:     req.TargetDate,
		TargetMealType: req.TargetMealType,
	})
	if err != nil {
		h.fail(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, m)
}

// MoveMeal handles PATCH /api/meals/{id}/move.
func (h *Handlers) MoveMeal(w http.ResponseWriter, r *http.Request) {
	var req slotRequest
	if err := decodeBody(w, r, &req); err != nil {
		h.fail(w, r, err)
		return
	}

	m, err := ops.Move(r.Context(), h.db, ops.MoveInput{
		ID:             pathID(r),
		TargetDate:     req.TargetDate,
		TargetMealType: req.TargetMealType,
	})
	if err != nil {
		h.fail(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, m)
}

// SwapMeals handles POST /api/meals/swap and returns both meals.
func (h *Handlers) SwapMeals(w http.ResponseWriter, r *http.Request) {
	var req swapRequest
	if err := decodeBody(w, r, &req); err != nil {
		h.fail(w, r, err)
		return
	}

	out, err := ops.Swap(r.Context(), h.db, ops.SwapInput{MealID1: req.MealID1, MealID2: req.MealID2})
	if err != nil {
		h.fail(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, out.Meals)
}

// SearchMeals handles GET /api/meals/search?ingredient=.
func (h *Handlers) SearchMeals(w http.ResponseWriter, r *http.Request) {
	out, err := ops.Search(r.Context(), h.db, ops.SearchInput{Ingredient: r.URL.Query().Get("ingredient")})
	if err != nil {
		h.fail(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, out.Meals)
}

// MealSummary handles GET /api/meals/summary. It returns markdown, or the
// structured summary when the client accepts JSON.
func (h *Handlers) MealSummary(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	out, err := ops.Summary(r.Context(), h.db, ops.SummaryInput{
		StartDate: q.Get("start_date"),
		EndDate:   q.Get("end_date"),
	})
	if err != nil {
		h.fail(w, r, err)
		return
	}

	if wantsJSON(r) {
		writeJSON(w, http.StatusOK, out)
		return
	}
	w.Header().Set("Content-Type", "text/markdown; charset=utf-8")
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte(out.Markdown))
}

// CalendarFeed handles GET /api/meals/calendar.ics.
func (h *Handlers) CalendarFeed(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	out, err := ops.List(r.Context(), h.db, ops.ListInput{
		StartDate: q.Get("start_date"),
		EndDate:   q.Get("end_date"),
	})
	if err != nil {
		h.fail(w, r, err)
		return
	}

	feed, err := ics.Feed(out.Meals, h.cfg, time.Now())
	if err != nil {
		h.fail(w, r, err)
		return
	}

	w.Header().Set("Content-Type", "text/calendar; charset=utf-8")
	w.Header().Set("Content-Disposition", `inline; filename="meals.ics"`)
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte(feed))
}
