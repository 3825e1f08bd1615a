package models

import "github.com/golang-jwt/jwt/v5"

// AuthClaims are the JWT claims the auth middleware extracts. The subject is
// the authenticated account id; authentication itself is an external
// collaborator, the core only consumes the id.
type AuthClaims struct {
	jwt.RegisteredClaims
	Email string `json:"email,omitempty"`
	Role  string `json:"role,omitempty"`
}
