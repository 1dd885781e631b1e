package driven

import "github.com/custodia-labs/docucortex/internal/core/domain"

// TokenService issues and validates API bearer tokens
type TokenService interface {
	// GenerateToken signs claims into a token string
	GenerateToken(claims *domain.TokenClaims) (string, error)

	// ParseToken validates a token and returns its claims.
	// Expired or tampered tokens return an error.
	ParseToken(token string) (*domain.TokenClaims, error)
}
