package org_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/smallbiznis/valora-directory/internal/domain"
	"github.com/smallbiznis/valora-directory/internal/org"
)

func TestResolveBySlugCacheMissFallsBackToRepo(t *testing.T) {
	repo := &fakeOrgRepo{org: domain.Org{ID: 1, Slug: "acme", Name: "Acme"}}
	cache := &fakeOrgCache{}
	resolver := org.NewResolver(repo, cache, time.Minute)

	orgCtx, err := resolver.ResolveBySlug(context.Background(), "ACME ")
	require.NoError(t, err)
	require.Equal(t, int64(1), orgCtx.Org.ID)
	require.Equal(t, 1, repo.bySlugCalls)
	require.NotNil(t, cache.saved)
	require.Equal(t, "acme", cache.saved.Slug)
}

func TestResolveBySlugCacheHitSkipsRepo(t *testing.T) {
	repo := &fakeOrgRepo{org: domain.Org{ID: 1, Slug: "acme"}}
	cache := &fakeOrgCache{cached: &domain.Org{ID: 1, Slug: "acme"}}
	resolver := org.NewResolver(repo, cache, time.Minute)

	orgCtx, err := resolver.ResolveBySlug(context.Background(), "acme")
	require.NoError(t, err)
	require.Equal(t, int64(1), orgCtx.Org.ID)
	require.Zero(t, repo.bySlugCalls)
}

func TestResolveBySlugCacheErrorDegradesToRepo(t *testing.T) {
	repo := &fakeOrgRepo{org: domain.Org{ID: 1, Slug: "acme"}}
	cache := &fakeOrgCache{getErr: errors.New("redis down")}
	resolver := org.NewResolver(repo, cache, time.Minute)

	orgCtx, err := resolver.ResolveBySlug(context.Background(), "acme")
	require.NoError(t, err)
	require.Equal(t, int64(1), orgCtx.Org.ID)
	require.Equal(t, 1, repo.bySlugCalls)
}

func TestResolveBySlugUnknownOrg(t *testing.T) {
	repo := &fakeOrgRepo{bySlugErr: domain.ErrNotFound}
	resolver := org.NewResolver(repo, nil, time.Minute)

	_, err := resolver.ResolveBySlug(context.Background(), "ghost")
	require.Error(t, err)
}

func TestResolveBySlugEmpty(t *testing.T) {
	resolver := org.NewResolver(&fakeOrgRepo{}, nil, time.Minute)
	_, err := resolver.ResolveBySlug(context.Background(), "   ")
	require.Error(t, err)
}

type fakeOrgRepo struct {
	org         domain.Org
	bySlugErr   error
	bySlugCalls int
}

func (f *fakeOrgRepo) GetByID(ctx context.Context, orgID int64) (domain.Org, error) {
	return f.org, nil
}

func (f *fakeOrgRepo) GetBySlug(ctx context.Context, slug string) (domain.Org, error) {
	f.bySlugCalls++
	if f.bySlugErr != nil {
		return domain.Org{}, f.bySlugErr
	}
	return f.org, nil
}

func (f *fakeOrgRepo) Create(ctx context.Context, org domain.Org) (domain.Org, error) {
	return org, nil
}

type fakeOrgCache struct {
	cached *domain.Org
	getErr error
	saved  *domain.Org
}

func (f *fakeOrgCache) GetOrg(ctx context.Context, slug string) (*domain.Org, error) {
	if f.getErr != nil {
		return nil, f.getErr
	}
	return f.cached, nil
}

func (f *fakeOrgCache) SaveOrg(ctx context.Context, org domain.Org, ttl time.Duration) error {
	f.saved = &org
	return nil
}
