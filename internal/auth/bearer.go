// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 BRACU-out Contributors

package auth

import (
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/samber/oops"
)

// BearerTokenIssuer is the iss claim on portal API tokens.
const BearerTokenIssuer = "bracu-out-portal"

// BearerClaims is the JWT payload carried by portal API bearer tokens.
type BearerClaims struct {
	UserID   string `json:"userId"`
	Username string `json:"username"`
	Email    string `json:"email"`
	Role     Role   `json:"role"`
	jwt.RegisteredClaims
}

// BearerIssuer signs and verifies HS256 bearer tokens for the JSON API.
type BearerIssuer struct {
	secret []byte
	expiry time.Duration
}

// NewBearerIssuer creates a BearerIssuer. The secret must not be empty.
func NewBearerIssuer(secret string, expiry time.Duration) (*BearerIssuer, error) {
	if secret == "" {
		return nil, oops.Code("AUTH_INVALID_DEPS").Errorf("bearer token secret is required")
	}
	if expiry <= 0 {
		expiry = SessionTokenExpiry
	}
	return &BearerIssuer{secret: []byte(secret), expiry: expiry}, nil
}

// Issue signs a bearer token for the given identity.
func (b *BearerIssuer) Issue(identity Identity) (string, error) {
	now := time.Now()
	claims := BearerClaims{
		UserID:   identity.ID,
		Username: identity.Username,
		Email:    identity.Email,
		Role:     identity.Role,
		RegisteredClaims: jwt.RegisteredClaims{
			Issuer:    BearerTokenIssuer,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(b.expiry)),
		},
	}

	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(b.secret)
	if err != nil {
		return "", oops.Code("AUTH_TOKEN_SIGN_FAILED").Wrap(err)
	}
	return signed, nil
}

// Verify parses and validates a bearer token, returning its claims.
// Any parse or validation failure reports an invalid token.
func (b *BearerIssuer) Verify(token string) (*BearerClaims, error) {
	parsed, err := jwt.ParseWithClaims(token, &BearerClaims{}, func(t *jwt.Token) (any, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, oops.Code("AUTH_TOKEN_INVALID").Errorf("unexpected signing method %q", t.Method.Alg())
		}
		return b.secret, nil
	}, jwt.WithIssuer(BearerTokenIssuer))
	if err != nil {
		return nil, oops.Code("AUTH_TOKEN_INVALID").Wrap(err)
	}

	claims, ok := parsed.Claims.(*BearerClaims)
	if !ok || !parsed.Valid {
		return nil, oops.Code("AUTH_TOKEN_INVALID").Errorf("invalid bearer token")
	}
	return claims, nil
}
