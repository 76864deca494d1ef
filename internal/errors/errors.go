package errors

import (
	stderrors "errors"
	"fmt"
)

// ErrorCode represents a mealcal error code.
type ErrorCode string

const (
	ErrValidation   ErrorCode = "VALIDATION_ERROR" // 422
	ErrNotFound     ErrorCode = "NOT_FOUND"        // 404
	ErrSlotOccupied ErrorCode = "SLOT_OCCUPIED"    // 409
	ErrFileNotFound ErrorCode = "FILE_NOT_FOUND"   // 404
	ErrCancelled    ErrorCode = "CANCELLED"        // 499
	ErrInternal     ErrorCode = "INTERNAL"         // 500
)

// StatusClientClosedRequest is the non-standard status used for cancelled requests.
const StatusClientClosedRequest = 499

// MealError represents a structured error with code, status, and details.
type MealError struct {
	Code    ErrorCode
	Status  int
	Message string
	Details map[string]any
}

// Error implements the error interface.
func (e *MealError) Error() string {
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

// NewValidation creates a 422 error for malformed or missing input.
func NewValidation(msg string) *MealError {
	return &MealError{
		Code:    ErrValidation,
		Status:  422,
		Message: msg,
	}
}

// NewNotFound creates a 404 error for an id with no live meal.
func NewNotFound(id string) *MealError {
	return &MealError{
		Code:    ErrNotFound,
		Status:  404,
		Message: fmt.Sprintf("meal not found: %s", id),
		Details: map[string]any{"id": id},
	}
}

// NewSourceNotFound creates a 404 error for a copy whose source meal is missing.
func NewSourceNotFound(id string) *MealError {
	return &MealError{
		Code:    ErrNotFound,
		Status:  404,
		Message: fmt.Sprintf("source meal not found: %s", id),
		Details: map[string]any{"id": id},
	}
}

// NewSlotOccupied creates a 409 error when a live meal already holds the slot.
func NewSlotOccupied(date, mealType string) *MealError {
	return &MealError{
		Code:    ErrSlotOccupied,
		Status:  409,
		Message: fmt.Sprintf("a meal already exists for %s - %s", date, mealType),
		Details: map[string]any{"date": date, "meal_type": mealType},
	}
}

// NewFileNotFound creates a 404 error for a missing import file.
func NewFileNotFound(path string) *MealError {
	return &MealError{
		Code:    ErrFileNotFound,
		Status:  404,
		Message: fmt.Sprintf("file not found: %s", path),
		Details: map[string]any{"path": path},
	}
}

// NewCancelled creates a 499 error when the caller's context is done mid-operation.
func NewCancelled(op string) *MealError {
	return &MealError{
		Code:    ErrCancelled,
		Status:  StatusClientClosedRequest,
		Message: fmt.Sprintf("%s cancelled", op),
		Details: map[string]any{"operation": op},
	}
}

// NewInternal creates a 500 error for unexpected internal errors.
// The message is generic; the cause is kept in Details for logging only.
func NewInternal(err error) *MealError {
	details := map[string]any{}
	if err != nil {
		details["internal_error"] = err.Error()
	}
	return &MealError{
		Code:    ErrInternal,
		Status:  500,
		Message: "an internal error occurred",
		Details: details,
	}
}

// Is checks if err (or anything it wraps) is a MealError with the given code.
func Is(err error, code ErrorCode) bool {
	var mErr *MealError
	if stderrors.As(err, &mErr) {
		return mErr.Code == code
	}
	return false
}

// As extracts a *MealError from err, wrapping unknown errors as internal.
func As(err error) *MealError {
	var mErr *MealError
	if stderrors.As(err, &mErr) {
		return mErr
	}
	return NewInternal(err)
}
