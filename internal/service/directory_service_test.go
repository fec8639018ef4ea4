package service_test

import (
	"context"
	"testing"
	"time"

	"github.com/bwmarrin/snowflake"
	"github.com/stretchr/testify/require"

	"github.com/smallbiznis/valora-directory/internal/domain"
	"github.com/smallbiznis/valora-directory/internal/jwt"
	"github.com/smallbiznis/valora-directory/internal/service"
)

func newDirectoryFixture(t *testing.T) (*service.DirectoryService, *memoryUserRepo, domain.Org) {
	t.Helper()
	users := newMemoryUserRepo()
	manager := jwt.NewKeyManager(newMemoryKeyRepo())
	tokens := jwt.NewGenerator(manager, "https://directory.test", time.Hour)
	ids, err := snowflake.NewNode(1)
	require.NoError(t, err)
	auth := service.NewAuthService(users, tokens, ids)
	return service.NewDirectoryService(users, auth), users, domain.Org{ID: 1, Slug: "acme", Name: "Acme"}
}

func seedUser(t *testing.T, dir *service.DirectoryService, org domain.Org, name string) domain.User {
	t.Helper()
	user, _, err := dir.Create(context.Background(), org, service.SignUpInput{
		Name:     name,
		Email:    name + "@acme.io",
		Password: "hunter2abc",
	})
	require.NoError(t, err)
	return user
}

func TestListAvailableExcludesNotAvailable(t *testing.T) {
	dir, _, org := newDirectoryFixture(t)
	ctx := context.Background()

	seedUser(t, dir, org, "bob")
	carol := seedUser(t, dir, org, "carol")

	notAvailable := domain.AvailabilityNotAvailable
	_, err := dir.UpdateByID(ctx, org, carol.ID, service.UpdateInput{Availability: &notAvailable})
	require.NoError(t, err)

	users, err := dir.ListAvailable(ctx, org)
	require.NoError(t, err)
	require.Len(t, users, 1)
	require.Equal(t, "bob", users[0].Name)
}

func TestListIgnoresUnknownAndOrgFilters(t *testing.T) {
	dir, _, org := newDirectoryFixture(t)
	other := domain.Org{ID: 2, Slug: "globex"}
	ctx := context.Background()

	seedUser(t, dir, org, "bob")
	seedUser(t, dir, other, "mallory")

	users, err := dir.List(ctx, org, map[string]string{
		"org_id":       "2",
		"organisation": "globex",
		"unknown":      "x",
	})
	require.NoError(t, err)
	require.Len(t, users, 1)
	require.Equal(t, "bob", users[0].Name)
}

func TestListFiltersByAllowListedKeys(t *testing.T) {
	dir, _, org := newDirectoryFixture(t)
	ctx := context.Background()

	seedUser(t, dir, org, "bob")
	seedUser(t, dir, org, "carol")

	users, err := dir.List(ctx, org, map[string]string{"name": "carol"})
	require.NoError(t, err)
	require.Len(t, users, 1)
	require.Equal(t, "carol", users[0].Name)

	users, err = dir.List(ctx, org, map[string]string{"email": "bob@acme.io"})
	require.NoError(t, err)
	require.Len(t, users, 1)
	require.Equal(t, "bob", users[0].Name)
}

func TestGetByIDScopedToOrg(t *testing.T) {
	dir, _, org := newDirectoryFixture(t)
	other := domain.Org{ID: 2, Slug: "globex"}
	ctx := context.Background()

	bob := seedUser(t, dir, org, "bob")

	found, err := dir.GetByID(ctx, org, bob.ID)
	require.NoError(t, err)
	require.NotNil(t, found)
	require.Equal(t, bob.ID, found.ID)

	crossOrg, err := dir.GetByID(ctx, other, bob.ID)
	require.NoError(t, err)
	require.Nil(t, crossOrg)
}

func TestGetByIDMissingIsNil(t *testing.T) {
	dir, _, org := newDirectoryFixture(t)

	found, err := dir.GetByID(context.Background(), org, 12345)
	require.NoError(t, err)
	require.Nil(t, found)
}

func TestUpdateByIDRehashesPassword(t *testing.T) {
	dir, users, org := newDirectoryFixture(t)
	ctx := context.Background()

	bob := seedUser(t, dir, org, "bob")
	oldHash := bob.PasswordHash

	next := "newsecret9"
	updated, err := dir.UpdateByID(ctx, org, bob.ID, service.UpdateInput{Password: &next})
	require.NoError(t, err)
	require.NotNil(t, updated)
	require.NotEqual(t, oldHash, updated.PasswordHash)
	require.NotEqual(t, next, updated.PasswordHash)

	stored, err := users.GetByID(ctx, org.ID, bob.ID)
	require.NoError(t, err)
	require.Equal(t, updated.PasswordHash, stored.PasswordHash)
}

func TestUpdateByIDValidatesEmailAndPassword(t *testing.T) {
	dir, _, org := newDirectoryFixture(t)
	ctx := context.Background()

	bob := seedUser(t, dir, org, "bob")

	badEmail := "nope"
	_, err := dir.UpdateByID(ctx, org, bob.ID, service.UpdateInput{Email: &badEmail})
	require.ErrorIs(t, err, domain.ErrEmailNotValidated)

	badPassword := "short"
	_, err = dir.UpdateByID(ctx, org, bob.ID, service.UpdateInput{Password: &badPassword})
	require.ErrorIs(t, err, domain.ErrPasswordNotValidated)
}

func TestUpdateByIDMissingUserIsNil(t *testing.T) {
	dir, _, org := newDirectoryFixture(t)

	name := "ghost"
	updated, err := dir.UpdateByID(context.Background(), org, 12345, service.UpdateInput{Name: &name})
	require.NoError(t, err)
	require.Nil(t, updated)
}

func TestUpdateByIDScopedToOrg(t *testing.T) {
	dir, _, org := newDirectoryFixture(t)
	other := domain.Org{ID: 2, Slug: "globex"}
	ctx := context.Background()

	bob := seedUser(t, dir, org, "bob")

	name := "hijacked"
	updated, err := dir.UpdateByID(ctx, other, bob.ID, service.UpdateInput{Name: &name})
	require.NoError(t, err)
	require.Nil(t, updated)

	stored, err := dir.GetByID(ctx, org, bob.ID)
	require.NoError(t, err)
	require.Equal(t, "bob", stored.Name)
}

func TestUpdateSelfTargetsPrincipal(t *testing.T) {
	dir, _, org := newDirectoryFixture(t)
	ctx := context.Background()

	bob := seedUser(t, dir, org, "bob")
	principal := domain.Principal{UserID: bob.ID, OrgID: org.ID, OrgSlug: org.Slug, Name: bob.Name}

	email := "bob+new@acme.io"
	updated, err := dir.UpdateSelf(ctx, org, principal, service.UpdateInput{Email: &email})
	require.NoError(t, err)
	require.NotNil(t, updated)
	require.Equal(t, bob.ID, updated.ID)
	require.Equal(t, email, updated.Email)
}

func TestDeleteByIDIdempotent(t *testing.T) {
	dir, _, org := newDirectoryFixture(t)
	ctx := context.Background()

	bob := seedUser(t, dir, org, "bob")

	require.NoError(t, dir.DeleteByID(ctx, org, bob.ID))
	require.NoError(t, dir.DeleteByID(ctx, org, bob.ID))

	found, err := dir.GetByID(ctx, org, bob.ID)
	require.NoError(t, err)
	require.Nil(t, found)
}

func TestDeleteByIDScopedToOrg(t *testing.T) {
	dir, _, org := newDirectoryFixture(t)
	other := domain.Org{ID: 2, Slug: "globex"}
	ctx := context.Background()

	bob := seedUser(t, dir, org, "bob")

	require.NoError(t, dir.DeleteByID(ctx, other, bob.ID))

	found, err := dir.GetByID(ctx, org, bob.ID)
	require.NoError(t, err)
	require.NotNil(t, found)
}
