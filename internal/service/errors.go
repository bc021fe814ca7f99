package service

import "errors"

// Error kinds returned by the auth service. The HTTP layer maps each kind to
// a status code and response message; no kind carries internal detail.
var (
	// ErrMissingFields indicates a required input is absent.
	ErrMissingFields = errors.New("missing required fields")
	// ErrInvalidEmail indicates the email failed shape validation.
	ErrInvalidEmail = errors.New("invalid email address")
	// ErrInvalidUsername indicates the username is empty or over 50 characters.
	ErrInvalidUsername = errors.New("invalid username")
	// ErrWeakPassword indicates the password is below the minimum length.
	ErrWeakPassword = errors.New("password too short")
	// ErrEmailTaken indicates another user already owns the email.
	ErrEmailTaken = errors.New("email already taken")
	// ErrUsernameTaken indicates another user already owns the username.
	ErrUsernameTaken = errors.New("username already taken")
	// ErrInvalidCredentials deliberately merges unknown-email and
	// wrong-password so login failures never reveal account existence.
	ErrInvalidCredentials = errors.New("invalid credentials")
	// ErrUserNotFound indicates an id-based lookup missed.
	ErrUserNotFound = errors.New("user not found")
	// ErrStorageUnavailable stands in for any storage failure. Detail is
	// logged server-side and never surfaced to the caller.
	ErrStorageUnavailable = errors.New("storage unavailable")
)
