package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/bwmarrin/snowflake"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"
	"go.uber.org/zap"

	"github.com/smallbiznis/valora-directory/internal/domain"
	"github.com/smallbiznis/valora-directory/internal/jwt"
	"github.com/smallbiznis/valora-directory/internal/password"
	"github.com/smallbiznis/valora-directory/internal/repository"
	"github.com/smallbiznis/valora-directory/internal/validate"
)

var tracer = otel.Tracer("github.com/smallbiznis/valora-directory/internal/service")

// AuthService implements credential and token based sign-in plus
// registration for a single org context.
type AuthService struct {
	users  repository.UserRepository
	tokens *jwt.Generator
	ids    *snowflake.Node
}

// NewAuthService wires an AuthService.
func NewAuthService(users repository.UserRepository, tokens *jwt.Generator, ids *snowflake.Node) *AuthService {
	return &AuthService{users: users, tokens: tokens, ids: ids}
}

// SignIn verifies name and password within the org and issues a fresh
// access token. Unknown names and wrong passwords are indistinguishable
// to the caller.
func (s *AuthService) SignIn(ctx context.Context, org domain.Org, in SignInInput) (domain.User, Session, error) {
	ctx, span := tracer.Start(ctx, "auth.SignIn", trace.WithAttributes(attribute.String("org", org.Slug)))
	defer span.End()

	user, err := s.users.GetByName(ctx, org.ID, strings.TrimSpace(in.Name))
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return domain.User{}, Session{}, domain.ErrInvalidCredentials
		}
		return domain.User{}, Session{}, fmt.Errorf("sign in lookup: %w", err)
	}

	ok, err := password.Verify(in.Password, user.PasswordHash)
	if err != nil {
		return domain.User{}, Session{}, fmt.Errorf("verify password: %w", err)
	}
	if !ok {
		zap.L().Info("sign in rejected", zap.String("org", org.Slug), zap.String("identity", user.Identity(org.Slug)))
		return domain.User{}, Session{}, domain.ErrInvalidCredentials
	}

	now := time.Now().UTC()
	if err := s.users.TouchLastLogin(ctx, org.ID, user.ID, now); err != nil {
		return domain.User{}, Session{}, fmt.Errorf("record login: %w", err)
	}
	user.LastLoginAt = &now

	token, err := s.tokens.GenerateAccessToken(ctx, org, user)
	if err != nil {
		return domain.User{}, Session{}, fmt.Errorf("issue token: %w", err)
	}

	zap.L().Info("user signed in", zap.String("org", org.Slug), zap.String("identity", user.Identity(org.Slug)))
	return user, Session{Token: token}, nil
}

// SignUp validates and registers a user in the org, then signs the new
// user in. Duplicate (org, name) pairs surface as ErrUserAlreadyRegistered
// from the unique constraint, never from a pre-check.
func (s *AuthService) SignUp(ctx context.Context, org domain.Org, in SignUpInput) (domain.User, Session, error) {
	ctx, span := tracer.Start(ctx, "auth.SignUp", trace.WithAttributes(attribute.String("org", org.Slug)))
	defer span.End()

	if !validate.Password(in.Password) {
		return domain.User{}, Session{}, domain.ErrPasswordNotValidated
	}
	email := strings.TrimSpace(in.Email)
	if !validate.Email(email) {
		return domain.User{}, Session{}, domain.ErrEmailNotValidated
	}

	hash, err := password.Hash(in.Password)
	if err != nil {
		return domain.User{}, Session{}, fmt.Errorf("hash password: %w", err)
	}

	status := in.Status
	if status == "" {
		status = domain.StatusActive
	}
	availability := in.Availability
	if availability == "" {
		availability = domain.AvailabilityAvailable
	}
	role := in.Role
	if role == "" {
		role = domain.RoleNormal
	}

	user, err := s.users.Create(ctx, domain.User{
		ID:           s.ids.Generate().Int64(),
		OrgID:        org.ID,
		Name:         strings.TrimSpace(in.Name),
		Email:        email,
		PasswordHash: hash,
		Status:       status,
		Availability: availability,
		Role:         role,
	})
	if err != nil {
		if errors.Is(err, domain.ErrUserAlreadyRegistered) {
			return domain.User{}, Session{}, domain.ErrUserAlreadyRegistered
		}
		return domain.User{}, Session{}, fmt.Errorf("create user: %w", err)
	}

	token, err := s.tokens.GenerateAccessToken(ctx, org, user)
	if err != nil {
		return domain.User{}, Session{}, fmt.Errorf("issue token: %w", err)
	}

	zap.L().Info("user registered", zap.String("org", org.Slug), zap.String("identity", user.Identity(org.Slug)))
	return user, Session{Token: token}, nil
}

// SignInToken exchanges a still-valid access token for the current user
// record and a freshly issued token, refreshing both the last login
// timestamp and the session expiry.
func (s *AuthService) SignInToken(ctx context.Context, org domain.Org, token string) (domain.User, Session, error) {
	ctx, span := tracer.Start(ctx, "auth.SignInToken", trace.WithAttributes(attribute.String("org", org.Slug)))
	defer span.End()

	principal, err := s.tokens.ValidateAccessToken(ctx, org.ID, token)
	if err != nil {
		return domain.User{}, Session{}, domain.ErrInvalidCredentials
	}

	user, err := s.users.GetByID(ctx, org.ID, principal.UserID)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return domain.User{}, Session{}, domain.ErrInvalidCredentials
		}
		return domain.User{}, Session{}, fmt.Errorf("token sign in lookup: %w", err)
	}

	now := time.Now().UTC()
	if err := s.users.TouchLastLogin(ctx, org.ID, user.ID, now); err != nil {
		return domain.User{}, Session{}, fmt.Errorf("record login: %w", err)
	}
	user.LastLoginAt = &now

	fresh, err := s.tokens.GenerateAccessToken(ctx, org, user)
	if err != nil {
		return domain.User{}, Session{}, fmt.Errorf("issue token: %w", err)
	}

	return user, Session{Token: fresh}, nil
}

// Logout acknowledges a client-side session teardown. Access tokens are
// stateless, so there is nothing to revoke server-side.
func (s *AuthService) Logout(ctx context.Context, principal domain.Principal) error {
	zap.L().Info("user logged out", zap.String("org", principal.OrgSlug), zap.String("name", principal.Name))
	return nil
}
