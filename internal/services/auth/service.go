package auth

import (
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"

	"github.com/mcoot/courtside/internal/dependencies/clock"
	"github.com/mcoot/courtside/internal/model"
)

// Errors
var (
	ErrInvalidToken = errors.New("invalid or expired token")
	ErrMissingKey   = errors.New("token signing key not configured")
)

// Claims is the token payload issued by the identity provider
type Claims struct {
	jwt.RegisteredClaims
	Name string `json:"name"`
	Role string `json:"role"`
}

// Service verifies bearer tokens issued by the external identity provider
type Service struct {
	clock  clock.Clock
	secret []byte
	issuer string
	ttl    time.Duration
}

// Config holds configuration for the auth service
type Config struct {
	// Secret is the HS256 key shared with the identity provider
	Secret string
	// Issuer, if set, must match the token's iss claim
	Issuer string
	// TokenTTL is used only when signing tokens for tests and local tooling
	TokenTTL time.Duration
}

// DefaultConfig returns default auth configuration
func DefaultConfig() Config {
	return Config{
		TokenTTL: 12 * time.Hour,
	}
}

// New creates a new AuthService
func New(clock clock.Clock, cfg Config) *Service {
	if cfg.TokenTTL == 0 {
		cfg.TokenTTL = DefaultConfig().TokenTTL
	}
	return &Service{
		clock:  clock,
		secret: []byte(cfg.Secret),
		issuer: cfg.Issuer,
		ttl:    cfg.TokenTTL,
	}
}

// ValidateToken verifies the signature and expiry and returns the caller identity
func (s *Service) ValidateToken(token string) (*model.Identity, error) {
	if len(s.secret) == 0 {
		return nil, ErrMissingKey
	}

	opts := []jwt.ParserOption{
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithTimeFunc(s.clock.Now),
		jwt.WithExpirationRequired(),
	}
	if s.issuer != "" {
		opts = append(opts, jwt.WithIssuer(s.issuer))
	}

	claims := &Claims{}
	_, err := jwt.ParseWithClaims(token, claims, func(*jwt.Token) (interface{}, error) {
		return s.secret, nil
	}, opts...)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidToken, err)
	}
	if claims.Subject == "" {
		return nil, fmt.Errorf("%w: missing subject", ErrInvalidToken)
	}

	name := claims.Name
	if name == "" {
		name = claims.Subject
	}
	return &model.Identity{
		ID:          claims.Subject,
		DisplayName: name,
		Role:        model.Role(claims.Role),
	}, nil
}

// IssueToken signs a token for the identity. Production tokens come from the
// identity provider; this serves tests and local development.
func (s *Service) IssueToken(identity model.Identity) (string, error) {
	if len(s.secret) == 0 {
		return "", ErrMissingKey
	}

	now := s.clock.Now()
	claims := Claims{
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   identity.ID,
			Issuer:    s.issuer,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(s.ttl)),
		},
		Name: identity.DisplayName,
		Role: string(identity.Role),
	}
	return jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(s.secret)
}
