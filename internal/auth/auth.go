// Package auth issues and validates the bearer tokens that guard the
// results API.
package auth

import (
	"errors"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

var (
	ErrInvalidToken = errors.New("invalid token")
	ErrNoSecret     = errors.New("signing secret is empty")
)

// Claims represents the JWT claims of a chart viewer
type Claims struct {
	Viewer string `json:"viewer"`
	jwt.RegisteredClaims
}

// Validator checks a token string
type Validator interface {
	ValidateToken(tokenString string) (*Claims, error)
}

// Config holds authentication configuration
type Config struct {
	SecretKey     string
	TokenDuration time.Duration
}

// DefaultConfig returns default configuration
func DefaultConfig() Config {
	return Config{
		TokenDuration: 30 * 24 * time.Hour,
	}
}

// TokenService issues and validates HS256 viewer tokens
type TokenService struct {
	config Config
}

// NewTokenService creates a new token service
func NewTokenService(config Config) (*TokenService, error) {
	if config.SecretKey == "" {
		return nil, ErrNoSecret
	}
	if config.TokenDuration <= 0 {
		config.TokenDuration = DefaultConfig().TokenDuration
	}
	return &TokenService{config: config}, nil
}

// Issue returns a signed token for a viewer
func (s *TokenService) Issue(viewer string) (string, error) {
	now := time.Now()
	claims := &Claims{
		Viewer: viewer,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   viewer,
			ExpiresAt: jwt.NewNumericDate(now.Add(s.config.TokenDuration)),
			IssuedAt:  jwt.NewNumericDate(now),
		},
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString([]byte(s.config.SecretKey))
}

// ValidateToken validates a token and returns its claims
func (s *TokenService) ValidateToken(tokenString string) (*Claims, error) {
	claims := &Claims{}

	token, err := jwt.ParseWithClaims(tokenString, claims, func(token *jwt.Token) (interface{}, error) {
		return []byte(s.config.SecretKey), nil
	}, jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}))
	if err != nil || !token.Valid {
		return nil, ErrInvalidToken
	}

	return claims, nil
}
