// Package auth signs and verifies the HS256 bearer tokens that guard the API.
package auth

import (
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"

	"github.com/custodia-labs/docucortex/internal/core/domain"
	"github.com/custodia-labs/docucortex/internal/core/ports/driven"
)

// Ensure Adapter implements TokenService
var _ driven.TokenService = (*Adapter)(nil)

// Issuer is written to and required in every token.
const Issuer = "docucortex"

// Adapter handles bearer tokens using a shared HMAC secret
type Adapter struct {
	jwtSecret []byte
}

// NewAdapter creates a new auth adapter with the given JWT secret
func NewAdapter(jwtSecret string) (*Adapter, error) {
	if jwtSecret == "" {
		return nil, errors.New("jwt secret is required")
	}
	return &Adapter{jwtSecret: []byte(jwtSecret)}, nil
}

// GenerateToken creates a signed JWT from domain claims
func (a *Adapter) GenerateToken(claims *domain.TokenClaims) (string, error) {
	rc := jwt.RegisteredClaims{
		Issuer:   Issuer,
		Subject:  claims.Subject,
		IssuedAt: jwt.NewNumericDate(time.Unix(claims.IssuedAt, 0)),
	}
	if claims.ExpiresAt > 0 {
		rc.ExpiresAt = jwt.NewNumericDate(time.Unix(claims.ExpiresAt, 0))
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, rc)
	return token.SignedString(a.jwtSecret)
}

// ParseToken validates a JWT and extracts domain claims
func (a *Adapter) ParseToken(tokenString string) (*domain.TokenClaims, error) {
	var rc jwt.RegisteredClaims
	token, err := jwt.ParseWithClaims(tokenString, &rc, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", token.Header["alg"])
		}
		return a.jwtSecret, nil
	}, jwt.WithIssuer(Issuer), jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}))
	if err != nil {
		return nil, err
	}
	if !token.Valid || rc.Subject == "" {
		return nil, fmt.Errorf("invalid token claims")
	}

	claims := &domain.TokenClaims{Subject: rc.Subject}
	if rc.IssuedAt != nil {
		claims.IssuedAt = rc.IssuedAt.Unix()
	}
	if rc.ExpiresAt != nil {
		claims.ExpiresAt = rc.ExpiresAt.Unix()
	}
	return claims, nil
}
