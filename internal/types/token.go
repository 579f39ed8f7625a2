package types

import (
	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
)

// TokenTypeAccess is the only token type the API issues
const TokenTypeAccess = "access"

// TokenClaims represents the claims in an access token.
// The user ID travels in the registered "sub" claim.
type TokenClaims struct {
	jwt.RegisteredClaims
	Email   string `json:"email"`
	IsAdmin bool   `json:"is_admin"`
	Type    string `json:"type"`
}

// UserID parses the subject as a UUID
func (c *TokenClaims) UserID() (uuid.UUID, error) {
	return uuid.Parse(c.Subject)
}
