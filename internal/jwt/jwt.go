package jwt

import (
	"context"
	"fmt"
	"strconv"
	"time"

	gojose "github.com/go-jose/go-jose/v4"
	gojwt "github.com/go-jose/go-jose/v4/jwt"
	"github.com/google/uuid"

	"github.com/smallbiznis/valora-directory/internal/domain"
)

// Generator signs and validates directory access tokens.
type Generator struct {
	keys      *KeyManager
	issuer    string
	accessTTL time.Duration
}

// NewGenerator constructs a token generator.
func NewGenerator(manager *KeyManager, issuer string, accessTTL time.Duration) *Generator {
	return &Generator{keys: manager, issuer: issuer, accessTTL: accessTTL}
}

// AccessTokenClaims is the custom JWT payload. Subject and expiry live in
// the standard claim set; these carry the tenant identity.
type AccessTokenClaims struct {
	OrgID int64  `json:"org_id"`
	Org   string `json:"org"`
	Name  string `json:"name"`
	Email string `json:"email"`
	Role  string `json:"role"`
}

// GenerateAccessToken produces a signed JWT bound to the user and org.
func (g *Generator) GenerateAccessToken(ctx context.Context, org domain.Org, user domain.User) (string, error) {
	key, err := g.keys.EnsureSigningKey(ctx, org.ID)
	if err != nil {
		return "", fmt.Errorf("ensure signing key: %w", err)
	}

	signer, err := gojose.NewSigner(
		gojose.SigningKey{Algorithm: gojose.SignatureAlgorithm(key.Algorithm), Key: key.Secret},
		(&gojose.SignerOptions{}).WithType("JWT").WithHeader("kid", key.KID))
	if err != nil {
		return "", fmt.Errorf("new signer: %w", err)
	}

	// A unique jti keeps renewals distinct even within the same second.
	now := time.Now().UTC()
	std := gojwt.Claims{
		ID:        uuid.NewString(),
		Subject:   strconv.FormatInt(user.ID, 10),
		Audience:  gojwt.Audience{org.Slug},
		Issuer:    g.issuer,
		IssuedAt:  gojwt.NewNumericDate(now),
		NotBefore: gojwt.NewNumericDate(now),
		Expiry:    gojwt.NewNumericDate(now.Add(g.accessTTL)),
	}
	custom := AccessTokenClaims{
		OrgID: org.ID,
		Org:   org.Slug,
		Name:  user.Name,
		Email: user.Email,
		Role:  user.Role,
	}

	token, err := gojwt.Signed(signer).Claims(std).Claims(custom).Serialize()
	if err != nil {
		return "", fmt.Errorf("serialize jwt: %w", err)
	}
	return token, nil
}

// ValidateAccessToken verifies signature, issuer and expiry, and returns
// the principal encoded in the token.
func (g *Generator) ValidateAccessToken(ctx context.Context, orgID int64, token string) (domain.Principal, error) {
	key, err := g.keys.ActiveKey(ctx, orgID)
	if err != nil {
		return domain.Principal{}, fmt.Errorf("load key: %w", err)
	}

	parsed, err := gojwt.ParseSigned(token, []gojose.SignatureAlgorithm{gojose.SignatureAlgorithm(key.Algorithm)})
	if err != nil {
		return domain.Principal{}, fmt.Errorf("parse token: %w", err)
	}

	var std gojwt.Claims
	var custom AccessTokenClaims
	if err := parsed.Claims(key.Secret, &std, &custom); err != nil {
		return domain.Principal{}, fmt.Errorf("verify token: %w", err)
	}
	if err := std.Validate(gojwt.Expected{Issuer: g.issuer, Time: time.Now().UTC()}); err != nil {
		return domain.Principal{}, fmt.Errorf("validate claims: %w", err)
	}

	userID, err := strconv.ParseInt(std.Subject, 10, 64)
	if err != nil {
		return domain.Principal{}, fmt.Errorf("parse subject: %w", err)
	}

	return domain.Principal{
		UserID:  userID,
		OrgID:   custom.OrgID,
		OrgSlug: custom.Org,
		Name:    custom.Name,
		Email:   custom.Email,
		Role:    custom.Role,
	}, nil
}
