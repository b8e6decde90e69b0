package auth

import "github.com/golang-jwt/jwt/v5"

// Claims is the subset of access-token claims the API relies on.
type Claims struct {
	jwt.RegisteredClaims        // sub, iss, aud, exp, iat
	Email                string `json:"email,omitempty"`
	Role                 string `json:"role,omitempty"` // "anon" tokens are rejected
}

// GetUserID returns the subject claim.
func (c *Claims) GetUserID() string {
	return c.Subject
}

// JWTVerifier turns a bearer token into claims; errors wrap domain.ErrUnauthorized
type JWTVerifier interface {
	VerifyToken(tokenString string) (*Claims, error)
	Close() error
}
