package domain

import "time"

// Availability values recognised by the directory.
const (
	AvailabilityAvailable    = "available"
	AvailabilityNotAvailable = "not available"
)

// Status values carried on a user record.
const (
	StatusActive   = "active"
	StatusDisabled = "disabled"
)

// Role values carried on a user record. The directory treats role as a
// flat attribute; it does not derive permissions from it.
const (
	RoleNormal = "normal"
	RoleAdmin  = "admin"
)

// User is a directory entry scoped to one org. The (OrgID, Name) pair is
// unique; PasswordHash never leaves the process.
type User struct {
	ID           int64
	OrgID        int64
	Name         string
	Email        string
	PasswordHash string
	Status       string
	Availability string
	Role         string
	LastLoginAt  *time.Time
	CreatedAt    time.Time
	UpdatedAt    time.Time
}

// Identity returns the org-qualified identity key, e.g. "acme-bob".
func (u User) Identity(orgSlug string) string {
	return orgSlug + "-" + u.Name
}
