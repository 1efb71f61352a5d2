package session

import (
	"context"
	"errors"
	"fmt"
	"time"

	"anoa.com/campushub/internal/entity"
	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
)

const CookieName = "campushub_session"

var (
	ErrInvalidSession = errors.New("invalid or expired session")
	ErrRevokedSession = errors.New("session has been revoked")
)

type Claims struct {
	jwt.RegisteredClaims
}

// AccountID returns the subject as a UUID.
func (c *Claims) AccountID() (uuid.UUID, error) {
	return uuid.Parse(c.Subject)
}

// Manager issues and verifies signed session tokens. Revocation is tracked in
// Redis when a client is configured; without one, logout only clears the cookie.
type Manager struct {
	secret []byte
	ttl    time.Duration
	issuer string
	rdb    *redis.Client
	now    func() time.Time
}

func NewManager(secret string, ttl time.Duration, rdb *redis.Client) *Manager {
	if ttl <= 0 {
		ttl = 24 * time.Hour
	}
	return &Manager{
		secret: []byte(secret),
		ttl:    ttl,
		issuer: "campushub",
		rdb:    rdb,
		now:    time.Now,
	}
}

func (m *Manager) TTL() time.Duration {
	return m.ttl
}

func (m *Manager) Issue(account *entity.Account) (string, time.Time, error) {
	now := m.now()
	expiresAt := now.Add(m.ttl)

	claims := Claims{
		RegisteredClaims: jwt.RegisteredClaims{
			ID:        uuid.NewString(),
			Subject:   account.ID.String(),
			Issuer:    m.issuer,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(expiresAt),
		},
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := token.SignedString(m.secret)
	if err != nil {
		return "", time.Time{}, fmt.Errorf("failed to sign session: %w", err)
	}

	return signed, expiresAt, nil
}

func (m *Manager) Resolve(ctx context.Context, tokenString string) (*Claims, error) {
	claims := &Claims{}
	token, err := jwt.ParseWithClaims(tokenString, claims, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", token.Header["alg"])
		}
		return m.secret, nil
	}, jwt.WithIssuer(m.issuer), jwt.WithTimeFunc(m.now))
	if err != nil || !token.Valid {
		return nil, ErrInvalidSession
	}

	if m.rdb != nil && claims.ID != "" {
		revoked, err := m.rdb.Exists(ctx, revokedKey(claims.ID)).Result()
		if err != nil {
			return nil, fmt.Errorf("failed to check session revocation: %w", err)
		}
		if revoked > 0 {
			return nil, ErrRevokedSession
		}
	}

	return claims, nil
}

func (m *Manager) Revoke(ctx context.Context, claims *Claims) error {
	if m.rdb == nil || claims == nil || claims.ID == "" {
		return nil
	}

	ttl := m.ttl
	if claims.ExpiresAt != nil {
		ttl = claims.ExpiresAt.Time.Sub(m.now())
	}
	if ttl <= 0 {
		return nil
	}

	return m.rdb.Set(ctx, revokedKey(claims.ID), "1", ttl).Err()
}

func revokedKey(jti string) string {
	return "session:revoked:" + jti
}
