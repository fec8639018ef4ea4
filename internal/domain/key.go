package domain

import "time"

// SigningKey is a per-org secret used to sign and verify access tokens.
type SigningKey struct {
	ID        int64
	OrgID     int64
	KID       string
	Secret    []byte
	Algorithm string
	IsActive  bool
	CreatedAt time.Time
	RotatedAt *time.Time
}
