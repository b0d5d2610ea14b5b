// Package clients provides the resilient HTTP client used to reach the
// quotation backend, plus the credential helpers that decorate its requests.
package clients

import "errors"

// Transport-level failures. The ACL translates these into domain errors.
var (
	// ErrCircuitOpen is returned without contacting the backend while the
	// breaker is open.
	ErrCircuitOpen = errors.New("circuit breaker open")

	// ErrMaxRetriesExceeded wraps the last attempt's error once every
	// attempt has failed.
	ErrMaxRetriesExceeded = errors.New("max retries exceeded")

	// ErrInvalidToken is returned when a configured bearer token cannot be
	// parsed as a JWT.
	ErrInvalidToken = errors.New("invalid bearer token")
)
