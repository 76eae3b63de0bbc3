// Package jwt выпускает и проверяет токены браузерных сессий.
//
// Идентификатор токена (jti) используется как ключ сессии в менеджере сессий
// и как ключ отзыва в кеше.
package jwt

import (
	"time"

	"github.com/magabrotheeeer/finance-tracker/internal/models"
)

// Maker описывает генерацию и разбор токенов.
type Maker interface {
	GenerateToken(user models.AuthUser) (string, error)
	ParseToken(tokenStr string) (*CustomClaims, error)
}

// MakerImpl подписывает токены HS256 секретным ключом.
type MakerImpl struct {
	secretKey string
	tokenTTL  time.Duration
}

// NewJWTMaker создаёт MakerImpl на основе секретного ключа и TTL.
func NewJWTMaker(secretKey string, ttl time.Duration) *MakerImpl {
	return &MakerImpl{
		secretKey: secretKey,
		tokenTTL:  ttl,
	}
}

// TTL возвращает время жизни выпускаемых токенов.
func (j *MakerImpl) TTL() time.Duration {
	return j.tokenTTL
}
