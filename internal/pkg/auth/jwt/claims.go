package jwt

import "github.com/golang-jwt/jwt"

// Payload is the JWT claim set issued on register and login.
type Payload struct {
	jwt.StandardClaims

	// UserID is the persisted user identifier the token was issued for.
	UserID string `json:"userId"`
}
