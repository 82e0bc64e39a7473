package jwt

import (
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// Maker describes generation and parsing of the session token pair.
type Maker interface {
	// GenerateAccessToken issues a short-lived access token for the user.
	GenerateAccessToken(userUID string) (string, error)
	// GenerateRefreshToken issues a long-lived refresh token for the user.
	GenerateRefreshToken(userUID string) (string, error)
	// ParseAccessToken verifies signature and expiry against the access secret.
	ParseAccessToken(tokenStr string) (*Claims, error)
	// ParseRefreshToken verifies signature and expiry against the refresh secret.
	ParseRefreshToken(tokenStr string) (*Claims, error)
}

// MakerImpl implements Maker with two HS256 secrets and per-kind TTLs.
type MakerImpl struct {
	accessSecret  string
	accessTTL     time.Duration
	refreshSecret string
	refreshTTL    time.Duration
}

// NewMaker creates a MakerImpl from the configured secrets and lifetimes.
func NewMaker(accessSecret string, accessTTL time.Duration, refreshSecret string, refreshTTL time.Duration) *MakerImpl {
	return &MakerImpl{
		accessSecret:  accessSecret,
		accessTTL:     accessTTL,
		refreshSecret: refreshSecret,
		refreshTTL:    refreshTTL,
	}
}

// GenerateAccessToken signs a new access token embedding the user UID.
func (m *MakerImpl) GenerateAccessToken(userUID string) (string, error) {
	return m.generate(userUID, m.accessSecret, m.accessTTL)
}

// GenerateRefreshToken signs a new refresh token embedding the user UID.
func (m *MakerImpl) GenerateRefreshToken(userUID string) (string, error) {
	return m.generate(userUID, m.refreshSecret, m.refreshTTL)
}

func (m *MakerImpl) generate(userUID, secret string, ttl time.Duration) (string, error) {
	const op = "jwt.generate"
	claims := Claims{
		UserUID: userUID,
		RegisteredClaims: jwt.RegisteredClaims{
			IssuedAt:  jwt.NewNumericDate(time.Now()),
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(ttl)),
		},
	}
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := token.SignedString([]byte(secret))
	if err != nil {
		return "", fmt.Errorf("%s: %w", op, err)
	}
	return signed, nil
}

// ParseAccessToken parses and verifies an access token.
func (m *MakerImpl) ParseAccessToken(tokenStr string) (*Claims, error) {
	return parse(tokenStr, m.accessSecret)
}

// ParseRefreshToken parses and verifies a refresh token.
func (m *MakerImpl) ParseRefreshToken(tokenStr string) (*Claims, error) {
	return parse(tokenStr, m.refreshSecret)
}

func parse(tokenStr, secret string) (*Claims, error) {
	const op = "jwt.parse"
	token, err := jwt.ParseWithClaims(tokenStr, &Claims{}, func(_ *jwt.Token) (any, error) {
		return []byte(secret), nil
	})
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	claims, ok := token.Claims.(*Claims)
	if !ok || !token.Valid {
		return nil, fmt.Errorf("%s: invalid token", op)
	}
	return claims, nil
}
