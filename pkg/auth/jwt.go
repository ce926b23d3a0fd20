// Package auth issues and validates the service's bearer tokens. Tokens
// are HMAC-signed JWTs carrying the user identity; credential verification
// itself is mocked at the handler layer.
package auth

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"

	"github.com/trailhead/trailhead/pkg/observability/logger"
)

// ErrInvalidToken is returned for any token that fails validation.
var ErrInvalidToken = errors.New("invalid token")

// Claims are the validated contents of a bearer token.
type Claims struct {
	// Subject is the user id.
	Subject   string
	Email     string
	Issuer    string
	ExpiresAt time.Time
	IssuedAt  time.Time
}

// Config holds token service configuration.
type Config struct {
	// Secret signs tokens (HS256). Required.
	Secret string
	Issuer string
	// AccessTTL is the access token lifetime. Defaults to 15 minutes.
	AccessTTL time.Duration
	// RefreshTTL is the refresh token lifetime. Defaults to 7 days.
	RefreshTTL time.Duration
}

// TokenPair is what login, signup, and refresh hand back to the client.
type TokenPair struct {
	AccessToken  string    `json:"accessToken"`
	RefreshToken string    `json:"refreshToken"`
	ExpiresAt    time.Time `json:"expiresAt"`
}

// TokenService issues and validates access and refresh tokens.
type TokenService struct {
	secret     []byte
	issuer     string
	accessTTL  time.Duration
	refreshTTL time.Duration
	logger     logger.Logger
	now        func() time.Time
}

// NewTokenService creates a token service. The signing secret is required.
func NewTokenService(cfg Config, log logger.Logger) (*TokenService, error) {
	if cfg.Secret == "" {
		return nil, fmt.Errorf("auth: signing secret is required")
	}
	if cfg.Issuer == "" {
		cfg.Issuer = "trailhead"
	}
	if cfg.AccessTTL <= 0 {
		cfg.AccessTTL = 15 * time.Minute
	}
	if cfg.RefreshTTL <= 0 {
		cfg.RefreshTTL = 7 * 24 * time.Hour
	}
	return &TokenService{
		secret:     []byte(cfg.Secret),
		issuer:     cfg.Issuer,
		accessTTL:  cfg.AccessTTL,
		refreshTTL: cfg.RefreshTTL,
		logger:     log,
		now:        time.Now,
	}, nil
}

// Issue creates a fresh access and refresh token pair for a user.
func (s *TokenService) Issue(userID, email string) (TokenPair, error) {
	now := s.now().UTC()
	accessExpiry := now.Add(s.accessTTL)

	access, err := s.sign(userID, email, "access", now, accessExpiry)
	if err != nil {
		return TokenPair{}, err
	}
	refresh, err := s.sign(userID, email, "refresh", now, now.Add(s.refreshTTL))
	if err != nil {
		return TokenPair{}, err
	}
	return TokenPair{
		AccessToken:  access,
		RefreshToken: refresh,
		ExpiresAt:    accessExpiry,
	}, nil
}

// Validate checks an access token's signature, issuer, expiry, and token
// type, and returns its claims.
func (s *TokenService) Validate(tokenString string) (*Claims, error) {
	return s.parse(tokenString, "access")
}

// Refresh validates a refresh token and issues a fresh token pair.
func (s *TokenService) Refresh(refreshToken string) (TokenPair, error) {
	claims, err := s.parse(refreshToken, "refresh")
	if err != nil {
		return TokenPair{}, err
	}
	return s.Issue(claims.Subject, claims.Email)
}

func (s *TokenService) sign(userID, email, tokenType string, issuedAt, expiresAt time.Time) (string, error) {
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{
		"sub":   userID,
		"email": email,
		"iss":   s.issuer,
		"typ":   tokenType,
		"iat":   issuedAt.Unix(),
		"exp":   expiresAt.Unix(),
	})
	signed, err := token.SignedString(s.secret)
	if err != nil {
		return "", fmt.Errorf("auth: failed to sign token: %w", err)
	}
	return signed, nil
}

func (s *TokenService) parse(tokenString, wantType string) (*Claims, error) {
	token, err := jwt.Parse(tokenString, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", token.Header["alg"])
		}
		return s.secret, nil
	}, jwt.WithIssuer(s.issuer), jwt.WithExpirationRequired())
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidToken, err)
	}
	if !token.Valid {
		return nil, ErrInvalidToken
	}

	mapClaims, ok := token.Claims.(jwt.MapClaims)
	if !ok {
		return nil, ErrInvalidToken
	}
	if typ, _ := mapClaims["typ"].(string); typ != wantType {
		return nil, fmt.Errorf("%w: wrong token type", ErrInvalidToken)
	}

	claims := &Claims{Issuer: s.issuer}
	claims.Subject, _ = mapClaims["sub"].(string)
	claims.Email, _ = mapClaims["email"].(string)
	if claims.Subject == "" {
		return nil, fmt.Errorf("%w: missing subject", ErrInvalidToken)
	}
	if exp, err := mapClaims.GetExpirationTime(); err == nil && exp != nil {
		claims.ExpiresAt = exp.Time
	}
	if iat, err := mapClaims.GetIssuedAt(); err == nil && iat != nil {
		claims.IssuedAt = iat.Time
	}
	return claims, nil
}

// claimsContextKey is the context key for storing claims.
type claimsContextKey struct{}

// WithClaims stores validated claims in the context.
func WithClaims(ctx context.Context, claims *Claims) context.Context {
	return context.WithValue(ctx, claimsContextKey{}, claims)
}

// GetClaims retrieves claims from the context, or nil when the request is
// unauthenticated.
func GetClaims(ctx context.Context) *Claims {
	if claims, ok := ctx.Value(claimsContextKey{}).(*Claims); ok {
		return claims
	}
	return nil
}
