// Package auth provides authentication and session-token domain logic.
package auth

import (
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"

	appctx "planora/internal/core/context"
	"planora/internal/core/id"
	"planora/internal/core/role"
)

// JWTConfig holds JWT configuration.
type JWTConfig struct {
	Secret         string
	Issuer         string
	AccessTokenTTL time.Duration
}

// DefaultJWTConfig returns default JWT configuration.
func DefaultJWTConfig(secret string) JWTConfig {
	return JWTConfig{
		Secret:         secret,
		Issuer:         "planora",
		AccessTokenTTL: 24 * time.Hour,
	}
}

// Claims represents JWT claims carrying the caller identity.
type Claims struct {
	jwt.RegisteredClaims
	UserID         string `json:"uid"`
	Email          string `json:"email"`
	Role           string `json:"role"`
	EntrepreneurID string `json:"eid,omitempty"`
}

// JWTService signs and verifies session tokens.
type JWTService struct {
	config JWTConfig
}

// NewJWTService creates a new JWT service.
func NewJWTService(config JWTConfig) *JWTService {
	return &JWTService{config: config}
}

// GenerateAccessToken signs the identity into an access token.
func (s *JWTService) GenerateAccessToken(ident *appctx.Identity) (string, time.Time, error) {
	now := time.Now()
	expiresAt := now.Add(s.config.AccessTokenTTL)

	claims := Claims{
		RegisteredClaims: jwt.RegisteredClaims{
			Issuer:    s.config.Issuer,
			Subject:   ident.UserID.String(),
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(expiresAt),
		},
		UserID: ident.UserID.String(),
		Email:  ident.Email,
		Role:   ident.Role.String(),
	}
	if ident.EntrepreneurID != nil {
		claims.EntrepreneurID = ident.EntrepreneurID.String()
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	tokenString, err := token.SignedString([]byte(s.config.Secret))
	if err != nil {
		return "", time.Time{}, fmt.Errorf("sign token: %w", err)
	}

	return tokenString, expiresAt, nil
}

// ValidateToken verifies signature and expiry and reconstructs the Identity.
// A token decodes to exactly one Identity or fails outright.
func (s *JWTService) ValidateToken(tokenString string) (*appctx.Identity, error) {
	token, err := jwt.ParseWithClaims(tokenString, &Claims{}, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", token.Header["alg"])
		}
		return []byte(s.config.Secret), nil
	})
	if err != nil {
		return nil, fmt.Errorf("parse token: %w", err)
	}

	claims, ok := token.Claims.(*Claims)
	if !ok || !token.Valid {
		return nil, fmt.Errorf("invalid token claims")
	}

	userID, err := id.Parse(claims.UserID)
	if err != nil {
		return nil, fmt.Errorf("invalid uid claim: %w", err)
	}
	r, err := role.Parse(claims.Role)
	if err != nil {
		return nil, fmt.Errorf("invalid role claim: %w", err)
	}

	ident := &appctx.Identity{
		UserID: userID,
		Email:  claims.Email,
		Role:   r,
	}
	if claims.EntrepreneurID != "" {
		eid, err := id.Parse(claims.EntrepreneurID)
		if err != nil {
			return nil, fmt.Errorf("invalid eid claim: %w", err)
		}
		ident.EntrepreneurID = &eid
	}

	return ident, nil
}
