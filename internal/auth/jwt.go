// SentinelShield - Multi-Tenant Security Monitoring Backend
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/sentinelshield/sentinelshield

// Package auth validates the JWT bearer tokens that gate the realtime
// and feedback APIs. Tokens are issued by the identity service; this
// package only verifies them and extracts the tenant claims.
package auth

import (
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"

	"github.com/sentinelshield/sentinelshield/internal/config"
)

// ErrMissingTenantClaims is returned when a structurally valid token
// carries no organization or user identity.
var ErrMissingTenantClaims = errors.New("auth: token missing tenant claims")

// Claims carries the tenant identity embedded in a SentinelShield JWT.
type Claims struct {
	OrganizationID string `json:"org_id"`
	UserID         string `json:"user_id"`
	Role           string `json:"role"`
	jwt.RegisteredClaims
}

// JWTManager validates JWT tokens signed with the shared HS256 secret.
type JWTManager struct {
	secret  []byte
	timeout time.Duration
}

// NewJWTManager creates a manager from the security configuration.
// The secret is required; config validation enforces its minimum length.
func NewJWTManager(cfg config.SecurityConfig) (*JWTManager, error) {
	if cfg.JWTSecret == "" {
		return nil, fmt.Errorf("jwt secret is required but was empty")
	}
	return &JWTManager{
		secret:  []byte(cfg.JWTSecret),
		timeout: cfg.SessionTimeout,
	}, nil
}

// GenerateToken mints a signed token for the given tenant identity.
// Production tokens come from the identity service; this exists for
// operational tooling and tests.
func (m *JWTManager) GenerateToken(orgID, userID, role string) (string, error) {
	now := time.Now()
	claims := &Claims{
		OrganizationID: orgID,
		UserID:         userID,
		Role:           role,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   userID,
			ExpiresAt: jwt.NewNumericDate(now.Add(m.timeout)),
			IssuedAt:  jwt.NewNumericDate(now),
			NotBefore: jwt.NewNumericDate(now),
		},
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signedToken, err := token.SignedString(m.secret)
	if err != nil {
		return "", fmt.Errorf("failed to sign token: %w", err)
	}
	return signedToken, nil
}

// ValidateToken verifies the signature, algorithm, and time claims, and
// requires a non-empty organization and user identity. Rejecting
// non-HMAC algorithms up front blocks algorithm confusion attacks.
func (m *JWTManager) ValidateToken(tokenString string) (*Claims, error) {
	token, err := jwt.ParseWithClaims(tokenString, &Claims{}, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", token.Header["alg"])
		}
		return m.secret, nil
	})
	if err != nil {
		return nil, fmt.Errorf("failed to parse token: %w", err)
	}

	claims, ok := token.Claims.(*Claims)
	if !ok || !token.Valid {
		return nil, fmt.Errorf("invalid token claims")
	}
	if claims.OrganizationID == "" || claims.UserID == "" {
		return nil, ErrMissingTenantClaims
	}

	return claims, nil
}
