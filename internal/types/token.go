package types

import (
	"github.com/golang-jwt/jwt/v5"
)

// TokenClaims represents the claims in a JWT token.
// Subject carries the user id as a string and ID (jti) the revocation key.
type TokenClaims struct {
	jwt.RegisteredClaims
	UserID  uint `json:"user_id"`
	IsStaff bool `json:"is_staff"`
}

// AuthTokenResponse is the body returned by the login endpoint.
type AuthTokenResponse struct {
	AuthToken string `json:"auth_token"`
}
