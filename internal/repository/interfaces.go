package repository

import (
	"context"
	"time"

	"github.com/smallbiznis/valora-directory/internal/domain"
)

// ListFilter is the explicit allow-list of filterable user attributes.
// Anything a caller supplies outside these fields never reaches SQL, and
// the org constraint is applied by the repository itself, so a filter can
// never widen a query across tenants.
type ListFilter struct {
	Name         *string
	Email        *string
	Status       *string
	Availability *string
	Role         *string

	// NotAvailability excludes records with the given availability value.
	NotAvailability string
}

// UserPatch carries the updatable user attributes; nil fields are left
// untouched.
type UserPatch struct {
	Name         *string
	Email        *string
	PasswordHash *string
	Status       *string
	Availability *string
	Role         *string
}

// UserRepository persists directory users. Every query is scoped to an
// org; uniqueness of (org, name) is enforced atomically by the store and
// surfaces as domain.ErrUserAlreadyRegistered.
type UserRepository interface {
	GetByID(ctx context.Context, orgID, userID int64) (domain.User, error)
	GetByName(ctx context.Context, orgID int64, name string) (domain.User, error)
	List(ctx context.Context, orgID int64, filter ListFilter) ([]domain.User, error)
	Create(ctx context.Context, user domain.User) (domain.User, error)
	Update(ctx context.Context, orgID, userID int64, patch UserPatch) (domain.User, error)
	Delete(ctx context.Context, orgID, userID int64) error
	TouchLastLogin(ctx context.Context, orgID, userID int64, at time.Time) error
}

// OrgRepository exposes tenant lookups.
type OrgRepository interface {
	GetByID(ctx context.Context, orgID int64) (domain.Org, error)
	GetBySlug(ctx context.Context, slug string) (domain.Org, error)
	Create(ctx context.Context, org domain.Org) (domain.Org, error)
}

// KeyRepository stores token signing keys per org.
type KeyRepository interface {
	GetActiveKey(ctx context.Context, orgID int64) (domain.SigningKey, error)
	CreateKey(ctx context.Context, key domain.SigningKey) (domain.SigningKey, error)
}

// OrgCache is a read-through cache in front of OrgRepository.GetBySlug.
// A nil org with nil error means cache miss.
type OrgCache interface {
	GetOrg(ctx context.Context, slug string) (*domain.Org, error)
	SaveOrg(ctx context.Context, org domain.Org, ttl time.Duration) error
}
