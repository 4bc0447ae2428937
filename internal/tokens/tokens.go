package tokens

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"

	"github.com/lovestory/lovestory/backend/go-services/internal/apperr"
	"github.com/lovestory/lovestory/backend/go-services/internal/config"
)

// Subject is who an access token is issued to: the owner and the project
// they unlocked with its template code.
type Subject struct {
	Email        string
	ProjectID    string
	TemplateType string
}

// Claims is the access token payload. sub carries the owner email.
type Claims struct {
	ProjectID    string `json:"pid"`
	TemplateType string `json:"tpl"`
	jwt.RegisteredClaims
}

// Subject returns the identity the claims were issued for.
func (c *Claims) Subject() Subject {
	return Subject{Email: c.RegisteredClaims.Subject, ProjectID: c.ProjectID, TemplateType: c.TemplateType}
}

// GenerateAccessToken creates a signed JWT access token for s
func GenerateAccessToken(cfg *config.Config, s Subject, ttl time.Duration) (string, error) {
	now := time.Now()
	claims := Claims{
		ProjectID:    s.ProjectID,
		TemplateType: s.TemplateType,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   s.Email,
			// unique per token so a revoked token never equals a fresh one
			ID:        uuid.NewString(),
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(ttl)),
		},
	}
	jt := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return jt.SignedString([]byte(cfg.JWT.Secret))
}

// Parse verifies signature and expiry and returns the claims. Only HS256 is
// accepted.
func Parse(secret, raw string) (*Claims, error) {
	var claims Claims
	_, err := jwt.ParseWithClaims(raw, &claims, func(t *jwt.Token) (interface{}, error) {
		return []byte(secret), nil
	}, jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}))
	if err != nil {
		if errors.Is(err, jwt.ErrTokenExpired) {
			return nil, fmt.Errorf("%w: token expired", apperr.ErrAuth)
		}
		return nil, fmt.Errorf("%w: %v", apperr.ErrAuth, err)
	}
	if claims.RegisteredClaims.ExpiresAt == nil {
		return nil, fmt.Errorf("%w: token has no expiry", apperr.ErrAuth)
	}
	if claims.RegisteredClaims.Subject == "" {
		return nil, fmt.Errorf("%w: token has no subject", apperr.ErrAuth)
	}
	return &claims, nil
}

// Verifier checks access tokens signed with one secret.
type Verifier struct {
	secret string
}

func NewVerifier(cfg *config.Config) *Verifier {
	return &Verifier{secret: cfg.JWT.Secret}
}

func (v *Verifier) Verify(ctx context.Context, raw string) (*Claims, error) {
	return Parse(v.secret, raw)
}
