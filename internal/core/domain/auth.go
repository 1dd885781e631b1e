package domain

// TokenClaims are the claims carried by an API bearer token.
// Times are Unix seconds.
type TokenClaims struct {
	Subject   string `json:"sub"`
	IssuedAt  int64  `json:"iat"`
	ExpiresAt int64  `json:"exp"`
}
