package jwt

import (
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"

	"github.com/magabrotheeeer/finance-tracker/internal/models"
)

// CustomClaims хранит профиль пользователя, который провайдер аутентификации
// отдаёт контроллеру сессии. Subject содержит ID пользователя, ID — jti.
type CustomClaims struct {
	Email       string `json:"email"`
	DisplayName string `json:"display_name"`
	jwt.RegisteredClaims
}

// User возвращает профиль пользователя из claims.
func (c *CustomClaims) User() models.AuthUser {
	return models.AuthUser{
		ID:          c.Subject,
		Email:       c.Email,
		DisplayName: c.DisplayName,
	}
}

// GenerateToken создаёт подписанный токен с новым jti.
func (j *MakerImpl) GenerateToken(user models.AuthUser) (string, error) {
	const op = "jwt.GenerateToken"
	now := time.Now()
	claims := CustomClaims{
		Email:       user.Email,
		DisplayName: user.DisplayName,
		RegisteredClaims: jwt.RegisteredClaims{
			ID:        uuid.NewString(),
			Subject:   user.ID,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(j.tokenTTL)),
		},
	}
	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte(j.secretKey))
	if err != nil {
		return "", fmt.Errorf("%s: %w", op, err)
	}
	return signed, nil
}

// ParseToken проверяет подпись и срок действия токена.
func (j *MakerImpl) ParseToken(tokenStr string) (*CustomClaims, error) {
	const op = "jwt.ParseToken"
	token, err := jwt.ParseWithClaims(tokenStr, &CustomClaims{}, func(_ *jwt.Token) (any, error) {
		return []byte(j.secretKey), nil
	}, jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}))
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	claims, ok := token.Claims.(*CustomClaims)
	if !ok || !token.Valid || claims.Subject == "" || claims.ID == "" {
		return nil, fmt.Errorf("%s: invalid token", op)
	}
	return claims, nil
}
