package auth

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"github.com/shashiranjanraj/bazaar/pkg/cache"
	"golang.org/x/crypto/bcrypt"
)

// ErrUnauthorized is returned for any token that is missing, malformed,
// expired or revoked.
var ErrUnauthorized = errors.New("unauthorized")

// Claims holds the typed JWT payload.
type Claims struct {
	UserID uint   `json:"user_id"`
	Role   string `json:"role"`
	jwt.RegisteredClaims
}

// TokenService issues and resolves HS256 access tokens. Revoked token IDs
// are kept in the cache until the token would have expired anyway.
type TokenService struct {
	secret     []byte
	ttl        time.Duration
	refreshTTL time.Duration
	revoked    cache.Store
	now        func() time.Time
}

func NewTokenService(secret string, ttl, refreshTTL time.Duration, revoked cache.Store) *TokenService {
	return &TokenService{
		secret:     []byte(secret),
		ttl:        ttl,
		refreshTTL: refreshTTL,
		revoked:    revoked,
		now:        time.Now,
	}
}

// TTL is the lifetime of tokens produced by Issue.
func (s *TokenService) TTL() time.Duration { return s.ttl }

// Issue signs a token for p.
func (s *TokenService) Issue(p Principal) (string, error) {
	now := s.now()
	claims := Claims{
		UserID: p.ID,
		Role:   p.Role,
		RegisteredClaims: jwt.RegisteredClaims{
			ID:        uuid.NewString(),
			Subject:   strconv.FormatUint(uint64(p.ID), 10),
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(s.ttl)),
		},
	}
	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(s.secret)
	if err != nil {
		return "", fmt.Errorf("auth: sign token: %w", err)
	}
	return signed, nil
}

// Resolve validates token and returns its principal.
func (s *TokenService) Resolve(ctx context.Context, token string) (Principal, error) {
	claims, err := s.parse(token, jwt.WithTimeFunc(s.now), jwt.WithExpirationRequired())
	if err != nil {
		return Principal{}, err
	}
	if err := s.checkRevoked(ctx, claims); err != nil {
		return Principal{}, err
	}
	return Principal{ID: claims.UserID, Role: claims.Role}, nil
}

// Revoke denylists token. Revoking an already expired token is a no-op.
func (s *TokenService) Revoke(ctx context.Context, token string) error {
	claims, err := s.parse(token, jwt.WithoutClaimsValidation())
	if err != nil {
		return err
	}
	return s.revoke(ctx, claims)
}

// Refresh exchanges token for a new one and revokes the old. Expired tokens
// are accepted for refreshTTL after they were issued.
func (s *TokenService) Refresh(ctx context.Context, token string) (string, Principal, error) {
	claims, err := s.parse(token, jwt.WithoutClaimsValidation())
	if err != nil {
		return "", Principal{}, err
	}
	if claims.IssuedAt == nil || s.now().After(claims.IssuedAt.Add(s.refreshTTL)) {
		return "", Principal{}, ErrUnauthorized
	}
	if err := s.checkRevoked(ctx, claims); err != nil {
		return "", Principal{}, err
	}
	if err := s.revoke(ctx, claims); err != nil {
		return "", Principal{}, err
	}

	p := Principal{ID: claims.UserID, Role: claims.Role}
	fresh, err := s.Issue(p)
	return fresh, p, err
}

func (s *TokenService) parse(token string, opts ...jwt.ParserOption) (*Claims, error) {
	opts = append(opts, jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}))
	parsed, err := jwt.ParseWithClaims(token, &Claims{}, func(*jwt.Token) (interface{}, error) {
		return s.secret, nil
	}, opts...)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrUnauthorized, err)
	}
	claims, ok := parsed.Claims.(*Claims)
	if !ok || !parsed.Valid || claims.ID == "" {
		return nil, ErrUnauthorized
	}
	return claims, nil
}

func revokedKey(jti string) string { return "jwt:revoked:" + jti }

func (s *TokenService) checkRevoked(ctx context.Context, c *Claims) error {
	if s.revoked == nil {
		return nil
	}
	hit, err := s.revoked.Exists(ctx, revokedKey(c.ID))
	if err != nil {
		return fmt.Errorf("auth: denylist lookup: %w", err)
	}
	if hit {
		return ErrUnauthorized
	}
	return nil
}

func (s *TokenService) revoke(ctx context.Context, c *Claims) error {
	if s.revoked == nil {
		return nil
	}
	// Keep the entry for as long as the token could still be presented,
	// either for access or for refresh.
	var until time.Time
	if c.ExpiresAt != nil {
		until = c.ExpiresAt.Time
	}
	if c.IssuedAt != nil {
		if r := c.IssuedAt.Add(s.refreshTTL); r.After(until) {
			until = r
		}
	}
	ttl := until.Sub(s.now())
	if ttl <= 0 {
		return nil
	}
	return s.revoked.Set(ctx, revokedKey(c.ID), true, ttl)
}

// HashPassword returns a bcrypt hash of the plain-text password.
func HashPassword(plain string) (string, error) {
	bytes, err := bcrypt.GenerateFromPassword([]byte(plain), bcrypt.DefaultCost)
	return string(bytes), err
}

// CheckPassword compares a bcrypt hash against the plain-text candidate.
func CheckPassword(hash, plain string) bool {
	return bcrypt.CompareHashAndPassword([]byte(hash), []byte(plain)) == nil
}
