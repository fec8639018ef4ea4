package org

import (
	"context"
	"fmt"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/smallbiznis/valora-directory/internal/domain"
	"github.com/smallbiznis/valora-directory/internal/repository"
)

// Context carries the resolved tenant for the request lifecycle.
type Context struct {
	Org domain.Org
}

// Resolver loads org metadata by slug, cache-aside over Redis with the
// repository as source of truth. Cache failures degrade to the repo.
type Resolver struct {
	repo     repository.OrgRepository
	cache    repository.OrgCache
	cacheTTL time.Duration
}

// NewResolver creates an org resolver. cache may be nil.
func NewResolver(repo repository.OrgRepository, cache repository.OrgCache, cacheTTL time.Duration) *Resolver {
	return &Resolver{repo: repo, cache: cache, cacheTTL: cacheTTL}
}

// ResolveBySlug returns the org context for the tenant slug.
func (r *Resolver) ResolveBySlug(ctx context.Context, slug string) (*Context, error) {
	cleaned := strings.ToLower(strings.TrimSpace(slug))
	if cleaned == "" {
		return nil, fmt.Errorf("resolve org: empty slug")
	}

	if r.cache != nil {
		cached, err := r.cache.GetOrg(ctx, cleaned)
		if err != nil {
			zap.L().Warn("org cache lookup failed", zap.String("slug", cleaned), zap.Error(err))
		} else if cached != nil {
			return &Context{Org: *cached}, nil
		}
	}

	orgRow, err := r.repo.GetBySlug(ctx, cleaned)
	if err != nil {
		zap.L().Error("failed to resolve org", zap.String("slug", cleaned), zap.Error(err))
		return nil, fmt.Errorf("resolve org by slug: %w", err)
	}

	if r.cache != nil {
		if err := r.cache.SaveOrg(ctx, orgRow, r.cacheTTL); err != nil {
			zap.L().Warn("org cache store failed", zap.String("slug", cleaned), zap.Error(err))
		}
	}

	zap.L().Debug("org context resolved", zap.String("slug", cleaned), zap.Int64("org_id", orgRow.ID))
	return &Context{Org: orgRow}, nil
}
