package errors

import (
	"errors"
	"fmt"
)

// ErrorCategory classifies a failure by how the caller should react to it.
type ErrorCategory string

const (
	// ErrorCategoryTransient marks broker I/O failures (unreachable, timeout).
	// The current pass is aborted and retried on the next scheduled tick.
	ErrorCategoryTransient ErrorCategory = "TRANSIENT_IO"

	// ErrorCategoryInvalidInput marks a malformed decision or garbage market
	// data. The offending item is rejected and the batch continues.
	ErrorCategoryInvalidInput ErrorCategory = "INVALID_INPUT"

	// ErrorCategoryPrecondition marks a decision that conflicts with live
	// account state (e.g. BUY while short). Rejected with reason, no retry.
	ErrorCategoryPrecondition ErrorCategory = "PRECONDITION"

	// ErrorCategoryPartialExecution marks an order whose outcome is unknown
	// after the request was sent. Treated as "may have executed"; the next
	// pass reconciles from live positions.
	ErrorCategoryPartialExecution ErrorCategory = "PARTIAL_EXECUTION"

	// ErrorCategoryConfiguration marks invalid startup configuration.
	ErrorCategoryConfiguration ErrorCategory = "CONFIG"
)

// BotError is a categorized error carrying the component and symbol context
// needed for audit logs.
type BotError struct {
	Category   ErrorCategory
	Component  string
	Symbol     string
	Message    string
	Underlying error
}

func (e *BotError) Error() string {
	ctx := e.Component
	if e.Symbol != "" {
		ctx = fmt.Sprintf("%s:%s", e.Component, e.Symbol)
	}
	if e.Underlying != nil {
		return fmt.Sprintf("[%s:%s] %s: %v", e.Category, ctx, e.Message, e.Underlying)
	}
	return fmt.Sprintf("[%s:%s] %s", e.Category, ctx, e.Message)
}

func (e *BotError) Unwrap() error {
	return e.Underlying
}

// Retryable reports whether the failure is expected to clear on its own.
// Only transient I/O qualifies; everything else needs new upstream input.
func (e *BotError) Retryable() bool {
	return e.Category == ErrorCategoryTransient
}

// New creates a categorized error without an underlying cause.
func New(category ErrorCategory, component, symbol, message string) *BotError {
	return &BotError{
		Category:  category,
		Component: component,
		Symbol:    symbol,
		Message:   message,
	}
}

// Wrap attaches category and context to an existing error. Returns nil for a
// nil error so call sites can wrap unconditionally.
func Wrap(err error, category ErrorCategory, component, symbol string) *BotError {
	if err == nil {
		return nil
	}
	return &BotError{
		Category:   category,
		Component:  component,
		Symbol:     symbol,
		Message:    "operation failed",
		Underlying: err,
	}
}

// IsCategory reports whether err (or anything it wraps) carries the given
// category.
func IsCategory(err error, category ErrorCategory) bool {
	var botErr *BotError
	if errors.As(err, &botErr) {
		return botErr.Category == category
	}
	return false
}

// IsTransient reports whether err should abort the current pass and be
// retried on the next tick.
func IsTransient(err error) bool {
	return IsCategory(err, ErrorCategoryTransient)
}

// IsPrecondition reports whether err is a live-state conflict rejection.
func IsPrecondition(err error) bool {
	return IsCategory(err, ErrorCategoryPrecondition)
}

// IsInvalidInput reports whether err is a malformed-item rejection.
func IsInvalidInput(err error) bool {
	return IsCategory(err, ErrorCategoryInvalidInput)
}

// IsPartialExecution reports whether an order may have executed despite the
// failure.
func IsPartialExecution(err error) bool {
	return IsCategory(err, ErrorCategoryPartialExecution)
}
