package jwt

import (
	"context"
	"crypto/rand"
	"errors"
	"fmt"

	"github.com/go-jose/go-jose/v4"
	"github.com/google/uuid"

	"github.com/smallbiznis/valora-directory/internal/domain"
	"github.com/smallbiznis/valora-directory/internal/repository"
)

const secretLen = 64

// KeyManager ensures every org has an active signing key.
type KeyManager struct {
	repo repository.KeyRepository
}

// NewKeyManager creates a KeyManager.
func NewKeyManager(repo repository.KeyRepository) *KeyManager {
	return &KeyManager{repo: repo}
}

// EnsureSigningKey returns the active key, provisioning one on first use.
func (m *KeyManager) EnsureSigningKey(ctx context.Context, orgID int64) (domain.SigningKey, error) {
	key, err := m.repo.GetActiveKey(ctx, orgID)
	if err == nil {
		return key, nil
	}
	if !errors.Is(err, domain.ErrNotFound) {
		return domain.SigningKey{}, fmt.Errorf("ensure signing key: %w", err)
	}

	secret := make([]byte, secretLen)
	if _, randErr := rand.Read(secret); randErr != nil {
		return domain.SigningKey{}, fmt.Errorf("generate secret: %w", randErr)
	}

	created, err := m.repo.CreateKey(ctx, domain.SigningKey{
		OrgID:     orgID,
		KID:       uuid.NewString(),
		Secret:    secret,
		Algorithm: string(jose.HS256),
		IsActive:  true,
	})
	if err != nil {
		// A concurrent request provisioned the key first; use theirs.
		if errors.Is(err, domain.ErrConflict) {
			winner, readErr := m.repo.GetActiveKey(ctx, orgID)
			if readErr != nil {
				return domain.SigningKey{}, fmt.Errorf("reload signing key: %w", readErr)
			}
			return winner, nil
		}
		return domain.SigningKey{}, fmt.Errorf("persist signing key: %w", err)
	}
	return created, nil
}

// ActiveKey retrieves the current key without provisioning.
func (m *KeyManager) ActiveKey(ctx context.Context, orgID int64) (domain.SigningKey, error) {
	key, err := m.repo.GetActiveKey(ctx, orgID)
	if err != nil {
		return domain.SigningKey{}, fmt.Errorf("active key: %w", err)
	}
	return key, nil
}

// JWKS returns the org key set for external token verifiers. Symmetric
// key material stays private; only the kid and algorithm are published
// so verifiers can pick the right shared secret.
func (m *KeyManager) JWKS(ctx context.Context, orgID int64) (map[string]any, error) {
	key, err := m.EnsureSigningKey(ctx, orgID)
	if err != nil {
		return nil, fmt.Errorf("jwks active key: %w", err)
	}
	return map[string]any{
		"keys": []map[string]any{{
			"kid": key.KID,
			"use": "sig",
			"alg": key.Algorithm,
			"kty": "oct",
		}},
	}, nil
}
