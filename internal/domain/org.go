package domain

import "time"

// Org is the tenant boundary. Slug is the stable key callers present in
// the X-Org-ID header and the prefix of every user identity.
type Org struct {
	ID        int64
	Slug      string
	Name      string
	Status    string
	CreatedAt time.Time
	UpdatedAt time.Time
}
