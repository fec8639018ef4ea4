package bootstrap

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/bwmarrin/snowflake"
	"go.uber.org/fx"
	"go.uber.org/zap"

	"github.com/smallbiznis/valora-directory/internal/config"
	"github.com/smallbiznis/valora-directory/internal/domain"
	"github.com/smallbiznis/valora-directory/internal/password"
	"github.com/smallbiznis/valora-directory/internal/repository"
)

// EnsureAdmin seeds a default org and admin user for dev/e2e setups.
// It is a no-op unless the bootstrap env vars are all set.
func EnsureAdmin(lc fx.Lifecycle, cfg config.Config, users repository.UserRepository, orgs repository.OrgRepository, node *snowflake.Node, logger *zap.Logger) {
	lc.Append(fx.Hook{
		OnStart: func(ctx context.Context) error {
			return ensureAdmin(ctx, cfg, users, orgs, node, logger)
		},
	})
}

func ensureAdmin(ctx context.Context, cfg config.Config, users repository.UserRepository, orgs repository.OrgRepository, node *snowflake.Node, logger *zap.Logger) error {
	slug := strings.ToLower(strings.TrimSpace(cfg.DefaultOrgSlug))
	name := strings.TrimSpace(cfg.AdminName)
	if slug == "" || name == "" || cfg.AdminEmail == "" || cfg.AdminPassword == "" {
		if logger != nil {
			logger.Info("admin bootstrap skipped, not configured")
		}
		return nil
	}

	org, err := orgs.GetBySlug(ctx, slug)
	if errors.Is(err, domain.ErrNotFound) {
		orgName := cfg.DefaultOrgName
		if orgName == "" {
			orgName = slug
		}
		org, err = orgs.Create(ctx, domain.Org{
			ID:     node.Generate().Int64(),
			Slug:   slug,
			Name:   orgName,
			Status: "active",
		})
	}
	if err != nil {
		return fmt.Errorf("bootstrap org: %w", err)
	}

	if _, err := users.GetByName(ctx, org.ID, name); err == nil {
		return nil
	} else if !errors.Is(err, domain.ErrNotFound) {
		return fmt.Errorf("bootstrap lookup user: %w", err)
	}

	hashed, err := password.Hash(cfg.AdminPassword)
	if err != nil {
		return fmt.Errorf("bootstrap hash password: %w", err)
	}

	created, err := users.Create(ctx, domain.User{
		ID:           node.Generate().Int64(),
		OrgID:        org.ID,
		Name:         name,
		Email:        strings.ToLower(cfg.AdminEmail),
		PasswordHash: hashed,
		Status:       domain.StatusActive,
		Availability: domain.AvailabilityAvailable,
		Role:         domain.RoleAdmin,
	})
	if err != nil {
		if errors.Is(err, domain.ErrUserAlreadyRegistered) {
			return nil
		}
		return fmt.Errorf("bootstrap create user: %w", err)
	}

	if logger != nil {
		logger.Info("bootstrap admin user created",
			zap.String("org", org.Slug),
			zap.Int64("user_id", created.ID),
			zap.String("identity", created.Identity(org.Slug)),
		)
	}
	return nil
}
