package domain

import (
	"errors"
	"strings"
)

var ErrRequirementNotFound = errors.New("requirement not found")
var ErrClientNotFound = errors.New("client not found")
var ErrUserNotFound = errors.New("user not found")
var ErrReviewNotFound = errors.New("review not found")
var ErrUserExists = errors.New("user already exists")
var ErrInvalidCredentials = errors.New("invalid credentials")

// ErrInvalidID signals a malformed record identifier. It is detected before
// any store call is made.
var ErrInvalidID = errors.New("invalid record id")

// ValidationError reports the exact field names that made a payload
// unacceptable: required fields that are absent, or keys outside the
// entity's allowed set.
type ValidationError struct {
	Missing []string
	Unknown []string
}

func (e *ValidationError) Error() string {
	var parts []string
	if len(e.Missing) > 0 {
		parts = append(parts, "missing required fields: "+strings.Join(e.Missing, ", "))
	}
	if len(e.Unknown) > 0 {
		parts = append(parts, "unknown fields: "+strings.Join(e.Unknown, ", "))
	}
	if len(parts) == 0 {
		return "validation failed"
	}
	return strings.Join(parts, "; ")
}

// NewMissingFieldsError builds a ValidationError for absent required fields.
func NewMissingFieldsError(fields ...string) *ValidationError {
	return &ValidationError{Missing: fields}
}

// NewUnknownFieldsError builds a ValidationError for disallowed keys.
func NewUnknownFieldsError(fields ...string) *ValidationError {
	return &ValidationError{Unknown: fields}
}
