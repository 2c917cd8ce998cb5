// Package auth issues and verifies the HS256 bearer tokens that guard the
// API when a signing secret is configured. Lexis is single-learner, so a
// token identifies a device or client rather than a user account.
package auth

import (
	"context"
	"time"
)

// JWTService defines operations for managing bearer tokens.
type JWTService interface {
	// GenerateToken signs a token for subject that expires after ttl.
	GenerateToken(ctx context.Context, subject string, ttl time.Duration) (string, error)

	// ValidateToken verifies signature and time claims and returns the claims.
	ValidateToken(ctx context.Context, tokenString string) (*Claims, error)
}

// Claims are the verified contents of a token.
type Claims struct {
	Subject   string    `json:"sub,omitempty"`
	IssuedAt  time.Time `json:"iat,omitempty"`
	ExpiresAt time.Time `json:"exp,omitempty"`
	ID        string    `json:"jti,omitempty"`
}
