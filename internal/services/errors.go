package services

import (
	"errors"
)

// Deterministic outcomes surfaced to handlers and matched with errors.Is.
// Anything else coming out of a service is a store failure and maps to an
// internal error at the HTTP boundary.
var (
	ErrNotFound         = errors.New("record not found")
	ErrForbidden        = errors.New("operation not permitted for this user")
	ErrValidation       = errors.New("validation failed")
	ErrCrossReviewReply = errors.New("parent comment belongs to a different review")
)
