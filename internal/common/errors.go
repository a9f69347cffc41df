// Package common defines the coded sentinel errors shared by the service
// and transport layers. Each error carries the numeric code surfaced to
// API clients. Callers should use errors.Is to match these values.
package common

// Error is a domain error with a client-facing code and message.
type Error struct {
	Code    int
	Message string
}

func (e *Error) Error() string {
	return e.Message
}

var (
	// Validation errors (400).
	ErrWeakPassword  = &Error{Code: 400, Message: "password must be at least 7 characters long and contain at least one letter and one digit"}
	ErrInvalidEmail  = &Error{Code: 400, Message: "invalid e-mail address"}
	ErrBadDateFormat = &Error{Code: 400, Message: "birth date must be a valid dd/mm/yyyy date"}
	ErrFutureDate    = &Error{Code: 400, Message: "birth date is in the future"}

	// Auth errors (401).
	ErrTokenMissing  = &Error{Code: 401, Message: "token not found"}
	ErrTokenInvalid  = &Error{Code: 401, Message: "invalid token"}
	ErrWrongPassword = &Error{Code: 401, Message: "wrong password"}

	// Lookup errors (404).
	ErrUserNotFound = &Error{Code: 404, Message: "user not found"}

	// Conflict errors (409).
	ErrEmailTaken = &Error{Code: 409, Message: "e-mail is already registered"}

	// Internal errors (500). Never carries details to the client.
	ErrInternal = &Error{Code: 500, Message: "internal error"}
)
