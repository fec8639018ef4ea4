package domain

import "errors"

// Sentinel errors shared between repositories and services. Repositories
// translate storage-engine failures into these; services match them with
// errors.Is so no layer above the repository depends on pgx error codes.
var (
	// ErrNotFound is returned when an org-scoped lookup matches no record.
	ErrNotFound = errors.New("record not found")
	// ErrUserAlreadyRegistered is returned when the org-qualified identity
	// already exists; it is produced only by the storage uniqueness
	// constraint, never by a check-then-insert.
	ErrUserAlreadyRegistered = errors.New("user already registered")
	// ErrPasswordNotValidated is returned when a candidate password fails
	// the strength policy.
	ErrPasswordNotValidated = errors.New("password not validated")
	// ErrEmailNotValidated is returned when a candidate email is malformed.
	ErrEmailNotValidated = errors.New("email not validated")
	// ErrInvalidCredentials covers both unknown user and wrong password so
	// signin responses cannot be used to enumerate accounts.
	ErrInvalidCredentials = errors.New("invalid credentials")
	// ErrConflict is returned when a concurrent writer got there first,
	// e.g. two requests provisioning the same org's signing key.
	ErrConflict = errors.New("conflicting concurrent write")
)
