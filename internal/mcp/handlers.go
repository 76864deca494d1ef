package mcp

import (
	"context"
	"database/sql"
	"encoding/json"

	"github.com/mark3labs/mcp-go/mcp"

	"github.com/mealcal/mealcal/internal/config"
	"github.com/mealcal/mealcal/internal/errors"
	"github.com/mealcal/mealcal/internal/ops"
)

// Handlers holds dependencies for MCP tool handlers.
type Handlers struct {
	db  *sql.DB
	cfg *config.Config
}

// NewHandlers creates a new Handlers instance.
func NewHandlers(db *sql.DB, cfg *config.Config) *Handlers {
	return &Handlers{db: db, cfg: cfg}
}

// Request types for each tool

// RangeRequest represents the arguments for list and summary.
type RangeRequest struct {
	StartDate string `json:"start_date"`
	EndDate   string `json:"end_date"`
}

// IDRequest represents the arguments for get and delete.
type IDRequest struct {
	ID string `json:"id"`
}

// CreateRequest represents the arguments for create.
type CreateRequest struct {
	Date     string `json:"date"`
	MealType string `json:"meal_type"`
	Name     string `json:"name"`
}

// UpdateRequest represents the arguments for update.
type UpdateRequest struct {
	ID          string    `json:"id"`
	Name        *string   `json:"name,omitempty"`
	Ingredients *[]string `json:"ingredients,omitempty"`
}

// SlotRequest represents the arguments for copy and move.
type SlotRequest struct {
	ID             string `json:"id"`
	TargetDate     string `json:"target_date"`
	TargetMealType string `json:"target_meal_type"`
}

// SwapRequest represents the arguments for swap.
type SwapRequest struct {
	MealID1 string `json:"meal_id_1"`
	MealID2 string `json:"meal_id_2"`
}

// SearchRequest represents the arguments for search.
type SearchRequest struct {
	Ingredient string `json:"ingredient"`
}

// ExportRequest represents the arguments for export.
type ExportRequest struct {
	Path      string `json:"path,omitempty"`
	StartDate string `json:"start_date,omitempty"`
	EndDate   string `json:"end_date,omitempty"`
}

// ImportRequest represents the arguments for import.
type ImportRequest struct {
	Path string `json:"path"`
	Mode string `json:"mode,omitempty"`
}

// PurgeRequest represents the arguments for purge.
type PurgeRequest struct {
	OlderThanDays *int `json:"older_than_days,omitempty"`
}

// Handler implementations

// HandleList handles the meal_list tool call.
func (h *Handlers) HandleList(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	input, err := decode[RangeRequest](req)
	if err != nil {
		return errorResult(errors.NewValidation(err.Error())), nil
	}

	result, err := ops.List(ctx, h.db, ops.ListInput{StartDate: input.StartDate, EndDate: input.EndDate})
	if err != nil {
		return errorResult(err), nil
	}

	return successResult(result)
}

// HandleGet handles the meal_get tool call.
func (h *Handlers) HandleGet(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	input, err := decode[IDRequest](req)
	if err != nil {
		return errorResult(errors.NewValidation(err.Error())), nil
	}

	result, err := ops.Get(ctx, h.db, ops.GetInput{ID: input.ID})
	if err != nil {
		return errorResult(err), nil
	}

	return successResult(result)
}

// HandleCreate handles the meal_create tool call.
func (h *Handlers) HandleCreate(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	input, err := decode[CreateRequest](req)
	if err != nil {
		return errorResult(errors.NewValidation(err.Error())), nil
	}

	result, err := ops.Create(ctx, h.db, ops.CreateInput{
		Date:     input.Date,
		MealType: input.MealType,
		Name:     input.Name,
	})
	if err != nil {
		return errorResult(err), nil
	}

	return successResult(result)
}

// HandleUpdate handles the meal_update tool call.
func (h *Handlers) HandleUpdate(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	input, err := decode[UpdateRequest](req)
	if err != nil {
		return errorResult(errors.NewValidation(err.Error())), nil
	}

	result, err := ops.Update(ctx, h.db, ops.UpdateInput{
		ID:          input.ID,
		Name:        input.Name,
		Ingredients: input.Ingredients,
	})
	if err != nil {
		return errorResult(err), nil
	}

	return successResult(result)
}

// HandleDelete handles the meal_delete tool call.
func (h *Handlers) HandleDelete(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	input, err := decode[IDRequest](req)
	if err != nil {
		return errorResult(errors.NewValidation(err.Error())), nil
	}

	result, err := ops.Delete(ctx, h.db, ops.DeleteInput{ID: input.ID})
	if err != nil {
		return errorResult(err), nil
	}

	return successResult(result)
}

// HandleCopy handles the meal_copy tool call.
func (h *Handlers) HandleCopy(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	input, err := decode[SlotRequest](req)
	if err != nil {
		return errorResult(errors.NewValidation(err.Error())), nil
	}

	result, err := ops.Copy(ctx, h.db, ops.CopyInput{
		ID:             input.ID,
		TargetDate:     input.TargetDate,
		TargetMealType: input.TargetMealType,
	})
	if err != nil {
		return errorResult(err), nil
	}

	return successResult(result)
}

// HandleMove handles the meal_move tool call.
func (h *Handlers) HandleMove(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	input, err := decode[SlotRequest](req)
	if err != nil {
		return errorResult(errors.NewValidation(err.Error())), nil
	}

	result, err := ops.Move(ctx, h.db, ops.MoveInput{
		ID:             input.ID,
		TargetDate:     input.TargetDate,
		TargetMealType: input.TargetMealType,
	})
	if err != nil {
		return errorResult(err), nil
	}

	return successResult(result)
}

// HandleSwap handles the meal_swap tool call.
func (h *Handlers) HandleSwap(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	input, err := decode[SwapRequest](req)
	if err != nil {
		return errorResult(errors.NewValidation(err.Error())), nil
	}

	result, err := ops.Swap(ctx, h.db, ops.SwapInput{MealID1: input.MealID1, MealID2: input.MealID2})
	if err != nil {
		return errorResult(err), nil
	}

	return successResult(result)
}

// HandleSearch handles the meal_search tool call.
func (h *Handlers) HandleSearch(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	input, err := decode[SearchRequest](req)
	if err != nil {
		return errorResult(errors.NewValidation(err.Error())), nil
	}

	result, err := ops.Search(ctx, h.db, ops.SearchInput{Ingredient: input.Ingredient})
	if err != nil {
		return errorResult(err), nil
	}

	return successResult(result)
}

// HandleSummary handles the meal_summary tool call.
func (h *Handlers) HandleSummary(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	input, err := decode[RangeRequest](req)
	if err != nil {
		return errorResult(errors.NewValidation(err.Error())), nil
	}

	result, err := ops.Summary(ctx, h.db, ops.SummaryInput{StartDate: input.StartDate, EndDate: input.EndDate})
	if err != nil {
		return errorResult(err), nil
	}

	return successResult(result)
}

// HandleExport handles the meal_export tool call.
func (h *Handlers) HandleExport(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	input, err := decode[ExportRequest](req)
	if err != nil {
		return errorResult(errors.NewValidation(err.Error())), nil
	}

	result, err := ops.Export(ctx, h.db, h.cfg, ops.ExportInput{
		Path:      input.Path,
		StartDate: input.StartDate,
		EndDate:   input.EndDate,
	})
	if err != nil {
		return errorResult(err), nil
	}

	return successResult(result)
}

// HandleImport handles the meal_import tool call.
func (h *Handlers) HandleImport(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	input, err := decode[ImportRequest](req)
	if err != nil {
		return errorResult(errors.NewValidation(err.Error())), nil
	}

	result, err := ops.Import(ctx, h.db, h.cfg, ops.ImportInput{
		Path: input.Path,
		Mode: ops.ImportMode(input.Mode),
	})
	if err != nil {
		return errorResult(err), nil
	}

	return successResult(result)
}

// HandlePurge handles the meal_purge tool call.
func (h *Handlers) HandlePurge(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	input, err := decode[PurgeRequest](req)
	if err != nil {
		return errorResult(errors.NewValidation(err.Error())), nil
	}

	result, err := ops.Purge(ctx, h.db, ops.PurgeInput{OlderThanDays: input.OlderThanDays})
	if err != nil {
		return errorResult(err), nil
	}

	return successResult(result)
}

// Result helpers

// errorResult creates an MCP error result from any error.
// Uses IsError: true so MCP clients recognize failures properly.
// Internal error details are never exposed.
func errorResult(err error) *mcp.CallToolResult {
	mErr := errors.As(err)
	errorObj := map[string]any{
		"code":    mErr.Code,
		"message": mErr.Message,
		"status":  mErr.Status,
	}
	if mErr.Code != errors.ErrInternal && len(mErr.Details) > 0 {
		errorObj["details"] = mErr.Details
	}

	content, _ := json.Marshal(map[string]any{
		"detail": mErr.Message,
		"error":  errorObj,
	})
	return &mcp.CallToolResult{
		Content: []mcp.Content{mcp.TextContent{Type: "text", Text: string(content)}},
		IsError: true,
	}
}

// successResult creates an MCP success result from any data.
func successResult(data any) (*mcp.CallToolResult, error) {
	return mcp.NewToolResultJSON(data)
}
