package jwtutil

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v4"
	"github.com/google/uuid"
)

// ErrInvalidToken is returned for any token that fails verification:
// bad signature, unexpected algorithm, malformed payload or expiry.
var ErrInvalidToken = errors.New("invalid token")

// JWTConfig holds JWT configuration
type JWTConfig struct {
	SigningKey string
	Expiration time.Duration
}

// UserClaims represents the JWT claims for a signed in user
type UserClaims struct {
	UserID string `json:"userId"`
	Email  string `json:"email"`
	Role   string `json:"role"`
	jwt.RegisteredClaims
}

// Denylist records tokens that must no longer be accepted before their expiry.
type Denylist interface {
	Revoke(ctx context.Context, tokenID string, until time.Time) error
	IsRevoked(ctx context.Context, tokenID string) (bool, error)
}

// JWTUtil issues and verifies session tokens
type JWTUtil struct {
	config   JWTConfig
	denylist Denylist
	now      func() time.Time
}

// Option configures a JWTUtil
type Option func(*JWTUtil)

// WithDenylist enables revocation checks against d.
func WithDenylist(d Denylist) Option {
	return func(j *JWTUtil) {
		j.denylist = d
	}
}

// WithClock overrides the time source, used by tests.
func WithClock(now func() time.Time) Option {
	return func(j *JWTUtil) {
		j.now = now
	}
}

// NewJWTUtil creates a new JWT utility with the given configuration
func NewJWTUtil(config JWTConfig, opts ...Option) (*JWTUtil, error) {
	if config.SigningKey == "" {
		return nil, errors.New("JWT signing key not provided")
	}
	if config.Expiration <= 0 {
		return nil, errors.New("JWT expiration must be positive")
	}

	j := &JWTUtil{config: config, now: time.Now}
	for _, opt := range opts {
		opt(j)
	}
	return j, nil
}

// Expiration returns the lifetime of issued tokens
func (j *JWTUtil) Expiration() time.Duration {
	return j.config.Expiration
}

// Issue creates a signed token for the given identity
func (j *JWTUtil) Issue(userID, email, role string) (string, error) {
	now := j.now()
	claims := UserClaims{
		UserID: userID,
		Email:  email,
		Role:   role,
		RegisteredClaims: jwt.RegisteredClaims{
			ID:        uuid.NewString(),
			ExpiresAt: jwt.NewNumericDate(now.Add(j.config.Expiration)),
			IssuedAt:  jwt.NewNumericDate(now),
		},
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := token.SignedString([]byte(j.config.SigningKey))
	if err != nil {
		return "", fmt.Errorf("failed to sign token: %w", err)
	}
	return signed, nil
}

// Verify validates the token and returns its claims. It never consults
// storage beyond the optional denylist.
func (j *JWTUtil) Verify(ctx context.Context, tokenString string) (*UserClaims, error) {
	claims, err := j.parse(tokenString)
	if err != nil {
		return nil, err
	}

	if j.denylist != nil && claims.ID != "" {
		revoked, err := j.denylist.IsRevoked(ctx, claims.ID)
		if err != nil {
			return nil, fmt.Errorf("failed to check token denylist: %w", err)
		}
		if revoked {
			return nil, fmt.Errorf("%w: token revoked", ErrInvalidToken)
		}
	}

	return claims, nil
}

// Revoke adds the token to the denylist until its natural expiry. It is a
// no-op when no denylist is configured or the token is already invalid.
func (j *JWTUtil) Revoke(ctx context.Context, tokenString string) error {
	if j.denylist == nil {
		return nil
	}
	claims, err := j.parse(tokenString)
	if err != nil || claims.ID == "" {
		return nil
	}
	return j.denylist.Revoke(ctx, claims.ID, claims.ExpiresAt.Time)
}

func (j *JWTUtil) parse(tokenString string) (*UserClaims, error) {
	parser := jwt.NewParser(jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}))

	claims := &UserClaims{}
	token, err := parser.ParseWithClaims(tokenString, claims, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", token.Header["alg"])
		}
		return []byte(j.config.SigningKey), nil
	})
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidToken, err)
	}
	if !token.Valid {
		return nil, ErrInvalidToken
	}

	// jwt/v4 treats a missing exp as valid; session tokens must always expire.
	if claims.ExpiresAt == nil || !claims.ExpiresAt.After(j.now()) {
		return nil, fmt.Errorf("%w: token expired", ErrInvalidToken)
	}
	if claims.UserID == "" || claims.Email == "" || claims.Role == "" {
		return nil, fmt.Errorf("%w: incomplete claims", ErrInvalidToken)
	}

	return claims, nil
}
