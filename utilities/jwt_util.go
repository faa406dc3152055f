package utilities

import (
	"errors"
	"os"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// Secrets come from the environment; the fallbacks keep local development
// working without a .env file.
var (
	accessSecret  = secretFromEnv("EXAMLOOP_ACCESS_SECRET", "local-access-secret")
	refreshSecret = secretFromEnv("EXAMLOOP_REFRESH_SECRET", "local-refresh-secret")
)

// Token expiration times
const (
	AccessTokenExpiry  = time.Hour * 12
	RefreshTokenExpiry = time.Hour * 24 * 7
)

func secretFromEnv(key, fallback string) []byte {
	if value := os.Getenv(key); value != "" {
		return []byte(value)
	}
	return []byte(fallback)
}

// Claims identify the single operator of the deployment.
type Claims struct {
	Subject string `json:"sub_name"`
	jwt.RegisteredClaims
}

// GenerateTokens creates both access and refresh tokens.
func GenerateTokens() (string, string, error) {
	accessToken, err := generateToken(accessSecret, AccessTokenExpiry)
	if err != nil {
		return "", "", err
	}

	refreshToken, err := generateToken(refreshSecret, RefreshTokenExpiry)
	if err != nil {
		return "", "", err
	}

	return accessToken, refreshToken, nil
}

// ValidateToken verifies the token and extracts claims.
func ValidateToken(tokenStr string, isRefresh bool) (*Claims, error) {
	secret := accessSecret
	if isRefresh {
		secret = refreshSecret
	}

	token, err := jwt.ParseWithClaims(tokenStr, &Claims{}, func(token *jwt.Token) (interface{}, error) {
		return secret, nil
	})
	if err != nil {
		return nil, errors.New("invalid or malformed token")
	}

	claims, ok := token.Claims.(*Claims)
	if !ok || !token.Valid {
		return nil, errors.New("invalid token claims")
	}
	if claims.ExpiresAt != nil && claims.ExpiresAt.Time.Before(time.Now()) {
		return nil, errors.New("token has expired")
	}

	return claims, nil
}

// RefreshTokens issues a new token pair from a valid refresh token.
func RefreshTokens(refreshToken string) (string, string, error) {
	if _, err := ValidateToken(refreshToken, true); err != nil {
		return "", "", errors.New("invalid or expired refresh token")
	}
	return GenerateTokens()
}

func generateToken(secret []byte, expiry time.Duration) (string, error) {
	claims := &Claims{
		Subject: "operator",
		RegisteredClaims: jwt.RegisteredClaims{
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(expiry)),
			IssuedAt:  jwt.NewNumericDate(time.Now()),
			Subject:   "operator",
		},
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString(secret)
}
