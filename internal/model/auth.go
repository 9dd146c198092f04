package model

import "github.com/golang-jwt/jwt/v5"

// Claims carried in every access token.
type Claims struct {
	UserID uint   `json:"user_id"`
	Role   string `json:"role"`
	jwt.RegisteredClaims
}
