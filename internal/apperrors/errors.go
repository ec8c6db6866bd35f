package apperrors

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"
)

// ErrNotFound indicates that a requested resource could not be found.
var ErrNotFound = errors.New("resource not found")

// ErrValidation indicates that input data failed validation checks.
var ErrValidation = errors.New("validation error")

// ErrDuplicate indicates that an attempt was made to create a resource that already exists.
var ErrDuplicate = errors.New("resource already exists")

// ErrForbidden indicates that the actor is not allowed to perform the action.
var ErrForbidden = errors.New("forbidden")

// Pricing and currency resolution errors.
var (
	// ErrUnknownCurrency is returned when a currency code is unrecognized or inactive.
	ErrUnknownCurrency = errors.New("unknown currency")

	// ErrRateNotFound is returned when no FX rate exists for a pair as of a date.
	ErrRateNotFound = errors.New("exchange rate not found")

	// ErrNoActiveRateCard aborts a whole pricing batch.
	ErrNoActiveRateCard = errors.New("no active rate card")

	// ErrUnmatchedLineItem is scoped to a single line item.
	ErrUnmatchedLineItem = errors.New("unmatched line item")

	// ErrCacheLoadFailure wraps a store error raised while filling the cache.
	ErrCacheLoadFailure = errors.New("cache load failure")

	// ErrNegativeQuantity is rejected before any rounding happens.
	ErrNegativeQuantity = errors.New("negative quantity")
)

// AppError carries an HTTP-ish status code alongside a message and cause.
type AppError struct {
	Code    int
	Message string
	Err     error
}

func (e *AppError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.Err)
	}
	return e.Message
}

func (e *AppError) Unwrap() error {
	return e.Err
}

// NewAppError creates an AppError wrapping err.
func NewAppError(code int, message string, err error) *AppError {
	return &AppError{Code: code, Message: message, Err: err}
}

// NewNotFoundError creates a 404 AppError that matches ErrNotFound.
func NewNotFoundError(message string) *AppError {
	return &AppError{Code: http.StatusNotFound, Message: message, Err: ErrNotFound}
}

// NewValidationError creates a 400 AppError that matches ErrValidation.
func NewValidationError(message string) *AppError {
	return &AppError{Code: http.StatusBadRequest, Message: message, Err: ErrValidation}
}

// UnmatchedLineItem describes one line item that could not be priced.
type UnmatchedLineItem struct {
	Index       int    `json:"index"`
	Description string `json:"description"`
	Reason      string `json:"reason"`
}

// UnmatchedLineItemsError aggregates every unmatched item of a batch so the
// caller can report them all at once.
type UnmatchedLineItemsError struct {
	Unmatched []UnmatchedLineItem
}

func (e *UnmatchedLineItemsError) Error() string {
	if len(e.Unmatched) == 1 {
		u := e.Unmatched[0]
		return fmt.Sprintf("%s: item %d (%q): %s", ErrUnmatchedLineItem, u.Index, u.Description, u.Reason)
	}
	parts := make([]string, 0, len(e.Unmatched))
	for _, u := range e.Unmatched {
		parts = append(parts, fmt.Sprintf("%d (%q)", u.Index, u.Description))
	}
	return fmt.Sprintf("%s: %d items: %s", ErrUnmatchedLineItem, len(e.Unmatched), strings.Join(parts, ", "))
}

// Is lets errors.Is(err, ErrUnmatchedLineItem) match the aggregate.
func (e *UnmatchedLineItemsError) Is(target error) bool {
	return target == ErrUnmatchedLineItem
}

// Add appends an unmatched entry.
func (e *UnmatchedLineItemsError) Add(index int, description, reason string) {
	e.Unmatched = append(e.Unmatched, UnmatchedLineItem{Index: index, Description: description, Reason: reason})
}

// HasErrors reports whether any item was recorded.
func (e *UnmatchedLineItemsError) HasErrors() bool {
	return len(e.Unmatched) > 0
}

// HTTPStatus maps an error from the pricing core to a response status.
func HTTPStatus(err error) int {
	var appErr *AppError
	switch {
	case err == nil:
		return http.StatusOK
	case errors.Is(err, ErrValidation), errors.Is(err, ErrNegativeQuantity):
		return http.StatusBadRequest
	case errors.Is(err, ErrForbidden):
		return http.StatusForbidden
	case errors.Is(err, ErrNoActiveRateCard), errors.Is(err, ErrUnmatchedLineItem):
		return http.StatusUnprocessableEntity
	case errors.Is(err, ErrUnknownCurrency), errors.Is(err, ErrRateNotFound), errors.Is(err, ErrNotFound):
		return http.StatusNotFound
	case errors.Is(err, ErrDuplicate):
		return http.StatusConflict
	case errors.Is(err, context.DeadlineExceeded):
		return http.StatusGatewayTimeout
	case errors.As(err, &appErr) && appErr.Code != 0:
		return appErr.Code
	default:
		return http.StatusInternalServerError
	}
}
