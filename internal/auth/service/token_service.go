package service

import (
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"

	authDomain "github.com/allisson/screening/internal/auth/domain"
)

// accessClaims is the claim set of an access token. The user id travels in "sub".
type accessClaims struct {
	jwt.RegisteredClaims

	Role      authDomain.Role       `json:"role"`
	ClientID  *uuid.UUID            `json:"client_id,omitempty"`
	Status    authDomain.UserStatus `json:"status"`
	TokenType authDomain.TokenType  `json:"token_type"`
}

// refreshClaims is deliberately minimal so a refresh never trusts a stale role.
type refreshClaims struct {
	jwt.RegisteredClaims

	TokenType authDomain.TokenType `json:"token_type"`
}

// TokenConfig holds the signing parameters of a TokenService.
type TokenConfig struct {
	AccessSecret  string
	RefreshSecret string
	Issuer        string
	Audience      string
	AccessTTL     time.Duration
	RefreshTTL    time.Duration
}

// Option configures a TokenService.
type Option func(*tokenService)

// WithClock replaces time.Now for issuing and validating tokens.
func WithClock(now func() time.Time) Option {
	return func(s *tokenService) {
		s.now = now
	}
}

type tokenService struct {
	accessSecret  []byte
	refreshSecret []byte
	issuer        string
	audience      string
	accessTTL     time.Duration
	refreshTTL    time.Duration
	now           func() time.Time
}

// NewTokenService creates a TokenService. Both secrets are required and must differ.
func NewTokenService(cfg TokenConfig, opts ...Option) (TokenService, error) {
	if cfg.AccessSecret == "" || cfg.RefreshSecret == "" {
		return nil, errors.New("access and refresh secrets are required")
	}
	if cfg.AccessSecret == cfg.RefreshSecret {
		return nil, errors.New("access and refresh secrets must differ")
	}
	if cfg.AccessTTL <= 0 || cfg.RefreshTTL <= 0 {
		return nil, errors.New("token TTLs must be positive")
	}

	s := &tokenService{
		accessSecret:  []byte(cfg.AccessSecret),
		refreshSecret: []byte(cfg.RefreshSecret),
		issuer:        cfg.Issuer,
		audience:      cfg.Audience,
		accessTTL:     cfg.AccessTTL,
		refreshTTL:    cfg.RefreshTTL,
		now:           time.Now,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s, nil
}

func (s *tokenService) registeredClaims(userID uuid.UUID, ttl time.Duration) (jwt.RegisteredClaims, time.Time) {
	now := s.now()
	expiresAt := now.Add(ttl)
	return jwt.RegisteredClaims{
		ID:        uuid.NewString(),
		Subject:   userID.String(),
		Issuer:    s.issuer,
		Audience:  jwt.ClaimStrings{s.audience},
		IssuedAt:  jwt.NewNumericDate(now),
		ExpiresAt: jwt.NewNumericDate(expiresAt),
	}, expiresAt
}

// IssueAccessToken implements TokenService.
func (s *tokenService) IssueAccessToken(uc authDomain.UserContext) (string, time.Time, error) {
	registered, expiresAt := s.registeredClaims(uc.ID, s.accessTTL)
	claims := accessClaims{
		RegisteredClaims: registered,
		Role:             uc.Role,
		ClientID:         uc.ClientID,
		Status:           uc.Status,
		TokenType:        authDomain.TokenTypeAccess,
	}

	token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(s.accessSecret)
	if err != nil {
		return "", time.Time{}, fmt.Errorf("failed to sign access token: %w", err)
	}
	return token, expiresAt, nil
}

// IssueRefreshToken implements TokenService.
func (s *tokenService) IssueRefreshToken(uc authDomain.UserContext) (string, time.Time, error) {
	registered, expiresAt := s.registeredClaims(uc.ID, s.refreshTTL)
	claims := refreshClaims{
		RegisteredClaims: registered,
		TokenType:        authDomain.TokenTypeRefresh,
	}

	token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(s.refreshSecret)
	if err != nil {
		return "", time.Time{}, fmt.Errorf("failed to sign refresh token: %w", err)
	}
	return token, expiresAt, nil
}

// ValidateAccessToken implements TokenService.
func (s *tokenService) ValidateAccessToken(token string) (authDomain.UserContext, error) {
	claims := &accessClaims{}
	if err := s.parse(token, claims, s.accessSecret); err != nil {
		return authDomain.UserContext{}, err
	}
	if claims.TokenType != authDomain.TokenTypeAccess || !claims.Role.IsValid() {
		return authDomain.UserContext{}, authDomain.ErrTokenInvalid
	}

	userID, err := uuid.Parse(claims.Subject)
	if err != nil {
		return authDomain.UserContext{}, authDomain.ErrTokenInvalid
	}

	return authDomain.UserContext{
		ID:       userID,
		Role:     claims.Role,
		ClientID: claims.ClientID,
		Status:   claims.Status,
	}, nil
}

// ValidateRefreshToken implements TokenService.
func (s *tokenService) ValidateRefreshToken(token string) (uuid.UUID, error) {
	claims := &refreshClaims{}
	if err := s.parse(token, claims, s.refreshSecret); err != nil {
		return uuid.Nil, err
	}
	if claims.TokenType != authDomain.TokenTypeRefresh {
		return uuid.Nil, authDomain.ErrTokenInvalid
	}

	userID, err := uuid.Parse(claims.Subject)
	if err != nil {
		return uuid.Nil, authDomain.ErrTokenInvalid
	}
	return userID, nil
}

// parse verifies the token and maps library errors onto the two domain outcomes.
func (s *tokenService) parse(token string, claims jwt.Claims, secret []byte) error {
	_, err := jwt.ParseWithClaims(
		token,
		claims,
		func(*jwt.Token) (any, error) { return secret, nil },
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithIssuer(s.issuer),
		jwt.WithAudience(s.audience),
		jwt.WithExpirationRequired(),
		jwt.WithTimeFunc(s.now),
	)
	if err == nil {
		return nil
	}
	if errors.Is(err, jwt.ErrTokenExpired) {
		return authDomain.ErrTokenExpired
	}
	return authDomain.ErrTokenInvalid
}
