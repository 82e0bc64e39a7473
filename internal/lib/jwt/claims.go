// Package jwt implements generation and parsing of the signed session
// tokens. Access and refresh tokens carry the same claims but are signed
// with different secrets and lifetimes.
package jwt

import "github.com/golang-jwt/jwt/v5"

// Claims is the payload embedded in both token kinds. Only the user UID is
// carried; everything else about the caller is loaded from storage at
// validation time.
type Claims struct {
	UserUID              string `json:"user_uid"`
	jwt.RegisteredClaims        // ExpiresAt, IssuedAt and the other standard claims
}
