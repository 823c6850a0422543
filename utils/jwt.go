package utils

import (
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// GenerateAdminJWT issues the token the operator dashboard uses against
// the admin endpoints.
func GenerateAdminJWT(telegramID int64, secret string) (string, error) {
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{
		"telegramId": telegramID,
		"admin":      true,
		"exp":        time.Now().Add(time.Hour * 72).Unix(),
	})

	return token.SignedString([]byte(secret))
}
