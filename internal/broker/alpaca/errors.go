package alpaca

import (
	"errors"
	"net/http"

	alpaca_api "github.com/alpacahq/alpaca-trade-api-go/v3/alpaca"
)

// Error codes Alpaca returns in order rejections.
const (
	ErrCodeInsufficientBuyingPower = 40310000
	ErrCodeInsufficientQty         = 40310100
	ErrCodeSymbolNotTradable       = 40410000
)

// IsRetryableError reports whether the request may succeed if repeated.
// Only server-side failures and throttling qualify; order rejections are
// final.
func IsRetryableError(err error) bool {
	var apiErr *alpaca_api.APIError
	if errors.As(err, &apiErr) {
		switch apiErr.StatusCode {
		case http.StatusTooManyRequests,
			http.StatusInternalServerError,
			http.StatusBadGateway,
			http.StatusServiceUnavailable,
			http.StatusGatewayTimeout:
			return true
		}
	}
	return false
}

// IsAuthenticationError checks if the error is related to credentials.
// A 403 with a broker error code is an order rejection, not bad
// credentials.
func IsAuthenticationError(err error) bool {
	var apiErr *alpaca_api.APIError
	if errors.As(err, &apiErr) {
		return apiErr.StatusCode == http.StatusUnauthorized ||
			(apiErr.StatusCode == http.StatusForbidden && apiErr.Code == 0)
	}
	return false
}

// IsInsufficientBuyingPowerError checks if an order was rejected for
// lack of cash.
func IsInsufficientBuyingPowerError(err error) bool {
	var apiErr *alpaca_api.APIError
	if errors.As(err, &apiErr) {
		return apiErr.Code == ErrCodeInsufficientBuyingPower
	}
	return false
}

// IsOrderRejection reports whether the broker definitively refused the
// request: a client-error response is in hand, so the order was not
// executed and a resend cannot double-fill. Throttling is excluded, its
// outcome is a retry question, not a rejection.
func IsOrderRejection(err error) bool {
	var apiErr *alpaca_api.APIError
	if errors.As(err, &apiErr) {
		return apiErr.StatusCode >= 400 && apiErr.StatusCode < 500 &&
			apiErr.StatusCode != http.StatusTooManyRequests
	}
	return false
}
