// Package common defines shared constants and sentinel errors used across
// the lease store, the services and the transport layer. Callers should use
// errors.Is to match these values.
package common

import "errors"

var (
	// Repository-level errors.
	ErrorNotFound = errors.New("not found")

	// Service-level errors (generic/internal flow control).
	ErrorInternal      = errors.New("internal error")
	ErrorUnauthorized  = errors.New("unauthorized")
	ErrInvalidArgument = errors.New("invalid argument")

	// Leasing errors.
	//
	// ErrLeaseExpired is recoverable: the caller should ask for a new page.
	// ErrDuplicateRevision means the caller let a user submit the same page twice.
	ErrLeaseExpired      = errors.New("lease expired before save")
	ErrDuplicateRevision = errors.New("duplicate revision")

	// Auth errors (invalid or malformed token).
	ErrInvalidToken = errors.New("invalid token")

	// Token lifecycle errors.
	ErrTokenExpired = errors.New("token expired")
)
