package models

import "github.com/golang-jwt/jwt/v5"

// JWTClaims represents the JWT payload for access tokens issued by the
// identity provider.
type JWTClaims struct {
	UserID   string   `json:"user_id"`
	Role     UserRole `json:"role"`
	Email    string   `json:"email"`
	FullName string   `json:"full_name"`
	jwt.RegisteredClaims
}

// Actor returns the acting user described by the claims.
func (c *JWTClaims) Actor() User {
	return User{
		ID:       c.UserID,
		Email:    c.Email,
		FullName: c.FullName,
		Role:     c.Role,
	}
}
