package auth

import (
	"fmt"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
)

const tokenIssuer = "tijara"

// DefaultSessionTTL keeps a session credential valid for a week.
const DefaultSessionTTL = 7 * 24 * time.Hour

// Session is the verified identity embedded in a token. It carries no
// permission snapshot: permissions are re-read from storage on every request
// so revocation takes effect immediately.
type Session struct {
	UserID         string
	OrganizationID string
}

type sessionClaims struct {
	OrganizationID string `json:"org"`
	jwt.RegisteredClaims
}

// Tokens signs and verifies session credentials with HS256.
type Tokens struct {
	secret []byte
	ttl    time.Duration
	now    func() time.Time
}

// NewTokens builds a token service. An empty secret is permitted at
// construction; Issue and Verify fail with ErrNoSecret until one is set.
func NewTokens(secret string, ttl time.Duration) *Tokens {
	if ttl <= 0 {
		ttl = DefaultSessionTTL
	}
	t := &Tokens{ttl: ttl, now: time.Now}
	if secret = strings.TrimSpace(secret); secret != "" {
		t.secret = []byte(secret)
	}
	return t
}

// TTL returns the configured session lifetime.
func (t *Tokens) TTL() time.Duration { return t.ttl }

// Issue signs a session credential for the user/organization pair.
func (t *Tokens) Issue(userID, organizationID string) (string, time.Time, error) {
	if len(t.secret) == 0 {
		return "", time.Time{}, ErrNoSecret
	}
	if strings.TrimSpace(userID) == "" || strings.TrimSpace(organizationID) == "" {
		return "", time.Time{}, fmt.Errorf("%w: user and organization ids are required", ErrInvalidInput)
	}

	now := t.now().UTC()
	expiresAt := now.Add(t.ttl)
	claims := sessionClaims{
		OrganizationID: organizationID,
		RegisteredClaims: jwt.RegisteredClaims{
			Issuer:    tokenIssuer,
			Subject:   userID,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(expiresAt),
			ID:        uuid.NewString(),
		},
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := token.SignedString(t.secret)
	if err != nil {
		return "", time.Time{}, fmt.Errorf("sign token: %w", err)
	}
	return signed, expiresAt, nil
}

// Verify checks signature and expiry and returns the embedded session.
func (t *Tokens) Verify(token string) (Session, error) {
	if len(t.secret) == 0 {
		return Session{}, ErrNoSecret
	}
	token = strings.TrimSpace(token)
	if token == "" {
		return Session{}, ErrInvalidToken
	}

	parsed, err := jwt.ParseWithClaims(token, &sessionClaims{}, func(tok *jwt.Token) (any, error) {
		if tok.Method != jwt.SigningMethodHS256 {
			return nil, ErrInvalidToken
		}
		return t.secret, nil
	}, jwt.WithTimeFunc(func() time.Time { return t.now().UTC() }))
	if err != nil {
		return Session{}, ErrInvalidToken
	}
	claims, ok := parsed.Claims.(*sessionClaims)
	if !ok || !parsed.Valid {
		return Session{}, ErrInvalidToken
	}
	if claims.Issuer != tokenIssuer {
		return Session{}, ErrInvalidToken
	}
	if strings.TrimSpace(claims.Subject) == "" || strings.TrimSpace(claims.OrganizationID) == "" {
		return Session{}, ErrInvalidToken
	}
	return Session{UserID: claims.Subject, OrganizationID: claims.OrganizationID}, nil
}
