// Package common holds sentinel errors shared across the backend.
package common

import "errors"

var (
	// ErrUnauthenticated means no valid identity was supplied.
	ErrUnauthenticated = errors.New("unauthenticated")

	// ErrInvalidIdentifier means an id was malformed (non-positive).
	ErrInvalidIdentifier = errors.New("invalid identifier")

	// ErrNotFound means a referenced entity does not exist.
	ErrNotFound = errors.New("not found")

	// ErrForbidden means the actor is not the owner or participant the
	// operation requires.
	ErrForbidden = errors.New("forbidden")

	// ErrValidationFailed means a required field was missing or malformed.
	ErrValidationFailed = errors.New("validation failed")

	// ErrExpired means the operation targeted an expired story.
	ErrExpired = errors.New("expired")

	// ErrUpstreamUnavailable means the media host failed. Always non-fatal:
	// callers degrade and keep going.
	ErrUpstreamUnavailable = errors.New("upstream unavailable")
)
