// Package token resolves bearer tokens into principals.
package token

import (
	"errors"
	"fmt"
	"time"

	"github.com/felixgeelhaar/carecal/internal/identity/domain"
	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
)

const issuer = "carecal"

// Claims is the access token body.
type Claims struct {
	Role           string   `json:"role"`
	Permissions    []string `json:"permissions"`
	HealthUnits    []string `json:"health_units"`
	CollaboratorID string   `json:"collaborator_id,omitempty"`
	jwt.RegisteredClaims
}

// JWTResolver verifies HMAC signed tokens.
type JWTResolver struct {
	secret []byte
	leeway time.Duration
}

// NewJWTResolver creates a resolver for secret.
func NewJWTResolver(secret string) *JWTResolver {
	return &JWTResolver{secret: []byte(secret), leeway: 5 * time.Second}
}

// Resolve verifies tokenString and builds the principal from its claims.
// Every failure wraps domain.ErrUnauthenticated.
func (r *JWTResolver) Resolve(tokenString string) (domain.Principal, error) {
	if len(r.secret) == 0 {
		return domain.Principal{}, fmt.Errorf("%w: token verification is not configured", domain.ErrUnauthenticated)
	}

	claims := &Claims{}
	_, err := jwt.ParseWithClaims(tokenString, claims, func(t *jwt.Token) (interface{}, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", t.Header["alg"])
		}
		return r.secret, nil
	}, jwt.WithLeeway(r.leeway), jwt.WithIssuer(issuer))
	if err != nil {
		return domain.Principal{}, fmt.Errorf("%w: %v", domain.ErrUnauthenticated, err)
	}

	return claims.principal()
}

func (c *Claims) principal() (domain.Principal, error) {
	userID, err := uuid.Parse(c.Subject)
	if err != nil {
		return domain.Principal{}, fmt.Errorf("%w: subject is not a user id", domain.ErrUnauthenticated)
	}

	p := domain.Principal{UserID: userID, Role: domain.Role(c.Role)}
	for _, perm := range c.Permissions {
		p.Permissions = append(p.Permissions, domain.Permission(perm))
	}
	for _, raw := range c.HealthUnits {
		id, err := uuid.Parse(raw)
		if err != nil {
			return domain.Principal{}, fmt.Errorf("%w: health unit %q", domain.ErrUnauthenticated, raw)
		}
		p.HealthUnits = append(p.HealthUnits, id)
	}
	if c.CollaboratorID != "" {
		if p.CollaboratorID, err = uuid.Parse(c.CollaboratorID); err != nil {
			return domain.Principal{}, fmt.Errorf("%w: collaborator id %q", domain.ErrUnauthenticated, c.CollaboratorID)
		}
	}
	return p, nil
}

// Issue signs a token for p valid for ttl from now. Used by the CLI to mint
// tokens for local testing of the HTTP API.
func (r *JWTResolver) Issue(p domain.Principal, now time.Time, ttl time.Duration) (string, error) {
	if len(r.secret) == 0 {
		return "", errors.New("JWT secret is not configured")
	}

	claims := Claims{
		Role: string(p.Role),
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   p.UserID.String(),
			Issuer:    issuer,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(ttl)),
		},
	}
	for _, perm := range p.Permissions {
		claims.Permissions = append(claims.Permissions, string(perm))
	}
	for _, id := range p.HealthUnits {
		claims.HealthUnits = append(claims.HealthUnits, id.String())
	}
	if p.CollaboratorID != uuid.Nil {
		claims.CollaboratorID = p.CollaboratorID.String()
	}

	return jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(r.secret)
}
