// Package common defines shared constants and sentinel errors used across
// the contactdesk server layers. Callers should use errors.Is to match
// these values.
package common

import "errors"

var (
	// Repository-level errors.
	ErrorNotFound = errors.New("not found")
	ErrorConflict = errors.New("already exists")

	// Input validation errors (rejected before touching the store).
	ErrorValidation = errors.New("validation error")

	// Service-level errors (generic/internal flow control).
	ErrorInternal            = errors.New("internal error")
	ErrorUnauthorized        = errors.New("unauthorized")
	ErrorUpstreamUnavailable = errors.New("upstream unavailable")

	// Token lifecycle errors. All three collapse to ErrorUnauthorized at
	// the API boundary but stay distinguishable for tests.
	ErrInvalidToken      = errors.New("invalid token")
	ErrTokenExpired      = errors.New("token expired")
	ErrWrongTokenPurpose = errors.New("wrong token purpose")
)
