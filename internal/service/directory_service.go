package service

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"
	"go.uber.org/zap"

	"github.com/smallbiznis/valora-directory/internal/domain"
	"github.com/smallbiznis/valora-directory/internal/password"
	"github.com/smallbiznis/valora-directory/internal/repository"
	"github.com/smallbiznis/valora-directory/internal/validate"
)

// DirectoryService exposes org-scoped reads and writes over the user
// directory. Every operation takes the caller's org; rows from other
// orgs are unreachable by construction.
type DirectoryService struct {
	users repository.UserRepository
	auth  *AuthService
}

// NewDirectoryService wires a DirectoryService.
func NewDirectoryService(users repository.UserRepository, auth *AuthService) *DirectoryService {
	return &DirectoryService{users: users, auth: auth}
}

// filterKeys is the closed set of query keys a caller may filter on.
// Anything else, org identifiers included, is dropped.
var filterKeys = map[string]struct{}{
	"name":         {},
	"email":        {},
	"status":       {},
	"availability": {},
	"role":         {},
}

// ListAvailable returns the org's users whose availability is not
// "not available".
func (s *DirectoryService) ListAvailable(ctx context.Context, org domain.Org) ([]domain.User, error) {
	ctx, span := tracer.Start(ctx, "directory.ListAvailable", trace.WithAttributes(attribute.String("org", org.Slug)))
	defer span.End()

	users, err := s.users.List(ctx, org.ID, repository.ListFilter{NotAvailability: domain.AvailabilityNotAvailable})
	if err != nil {
		return nil, fmt.Errorf("list available users: %w", err)
	}
	return users, nil
}

// List returns the org's users matching the allow-listed query filters.
func (s *DirectoryService) List(ctx context.Context, org domain.Org, query map[string]string) ([]domain.User, error) {
	ctx, span := tracer.Start(ctx, "directory.List", trace.WithAttributes(attribute.String("org", org.Slug)))
	defer span.End()

	var filter repository.ListFilter
	for key, value := range query {
		if _, ok := filterKeys[key]; !ok {
			continue
		}
		v := value
		switch key {
		case "name":
			filter.Name = &v
		case "email":
			filter.Email = &v
		case "status":
			filter.Status = &v
		case "availability":
			filter.Availability = &v
		case "role":
			filter.Role = &v
		}
	}

	users, err := s.users.List(ctx, org.ID, filter)
	if err != nil {
		return nil, fmt.Errorf("list users: %w", err)
	}
	return users, nil
}

// GetByID returns the org's user with the given id, or nil when no such
// user exists in the org.
func (s *DirectoryService) GetByID(ctx context.Context, org domain.Org, userID int64) (*domain.User, error) {
	ctx, span := tracer.Start(ctx, "directory.GetByID", trace.WithAttributes(attribute.String("org", org.Slug)))
	defer span.End()

	user, err := s.users.GetByID(ctx, org.ID, userID)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return nil, nil
		}
		return nil, fmt.Errorf("get user: %w", err)
	}
	return &user, nil
}

// Create registers a user in the org through the same validation and
// hashing path as self sign-up.
func (s *DirectoryService) Create(ctx context.Context, org domain.Org, in SignUpInput) (domain.User, Session, error) {
	return s.auth.SignUp(ctx, org, in)
}

// UpdateByID applies a partial update to the org's user. A new email or
// password is validated the same way sign-up validates it, and a new
// password is re-hashed before it is stored. Updating a user the org
// does not have returns nil, like GetByID.
func (s *DirectoryService) UpdateByID(ctx context.Context, org domain.Org, userID int64, in UpdateInput) (*domain.User, error) {
	ctx, span := tracer.Start(ctx, "directory.UpdateByID", trace.WithAttributes(attribute.String("org", org.Slug)))
	defer span.End()

	patch := repository.UserPatch{
		Status:       in.Status,
		Availability: in.Availability,
		Role:         in.Role,
	}

	if in.Name != nil {
		trimmed := strings.TrimSpace(*in.Name)
		patch.Name = &trimmed
	}
	if in.Email != nil {
		trimmed := strings.TrimSpace(*in.Email)
		if !validate.Email(trimmed) {
			return nil, domain.ErrEmailNotValidated
		}
		patch.Email = &trimmed
	}
	if in.Password != nil {
		if !validate.Password(*in.Password) {
			return nil, domain.ErrPasswordNotValidated
		}
		hash, err := password.Hash(*in.Password)
		if err != nil {
			return nil, fmt.Errorf("hash password: %w", err)
		}
		patch.PasswordHash = &hash
	}

	user, err := s.users.Update(ctx, org.ID, userID, patch)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return nil, nil
		}
		if errors.Is(err, domain.ErrUserAlreadyRegistered) {
			return nil, err
		}
		return nil, fmt.Errorf("update user: %w", err)
	}

	zap.L().Info("user updated", zap.String("org", org.Slug), zap.Int64("user_id", userID))
	return &user, nil
}

// UpdateSelf applies a partial update to the authenticated user's own
// record.
func (s *DirectoryService) UpdateSelf(ctx context.Context, org domain.Org, principal domain.Principal, in UpdateInput) (*domain.User, error) {
	return s.UpdateByID(ctx, org, principal.UserID, in)
}

// DeleteByID removes the org's user. Deleting a user that is already
// gone is not an error.
func (s *DirectoryService) DeleteByID(ctx context.Context, org domain.Org, userID int64) error {
	ctx, span := tracer.Start(ctx, "directory.DeleteByID", trace.WithAttributes(attribute.String("org", org.Slug)))
	defer span.End()

	if err := s.users.Delete(ctx, org.ID, userID); err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return nil
		}
		return fmt.Errorf("delete user: %w", err)
	}

	zap.L().Info("user deleted", zap.String("org", org.Slug), zap.Int64("user_id", userID))
	return nil
}
