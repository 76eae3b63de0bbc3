// Package auth содержит регистрацию и вход по учётным данным, а также
// клиентскую сессию, которая играет роль провайдера аутентификации
// для контроллера сессии.
package auth

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/magabrotheeeer/finance-tracker/internal/lib/jwt"
	"github.com/magabrotheeeer/finance-tracker/internal/lib/password"
	"github.com/magabrotheeeer/finance-tracker/internal/lib/sl"
	"github.com/magabrotheeeer/finance-tracker/internal/models"
	"github.com/magabrotheeeer/finance-tracker/internal/storage/repository"
)

var (
	// ErrInvalidCredentials неверная почта или пароль.
	ErrInvalidCredentials = errors.New("invalid credentials")
	// ErrTokenRevoked токен отозван выходом из аккаунта.
	ErrTokenRevoked = errors.New("token revoked")
)

// UserRepository описывает контракт для работы с учётными данными.
type UserRepository interface {
	CreateUser(ctx context.Context, user models.User) (string, error)
	GetUserByEmail(ctx context.Context, email string) (*models.User, error)
}

// AccountWriter создаёт и обновляет запись аккаунта.
type AccountWriter interface {
	UpdateAccount(ctx context.Context, userID string, patch models.AccountPatch) error
}

// TokenRevoker хранит отозванные идентификаторы токенов.
type TokenRevoker interface {
	Revoke(ctx context.Context, tokenID string, ttl time.Duration) error
	IsRevoked(ctx context.Context, tokenID string) (bool, error)
}

// Service отвечает за регистрацию, вход и проверку токенов.
type Service struct {
	users    UserRepository
	accounts AccountWriter
	jwtMaker jwt.Maker
	revoker  TokenRevoker
	log      *slog.Logger
}

// NewService создаёт новый экземпляр Service.
func NewService(users UserRepository, accounts AccountWriter, jwtMaker jwt.Maker, revoker TokenRevoker, log *slog.Logger) *Service {
	return &Service{
		users:    users,
		accounts: accounts,
		jwtMaker: jwtMaker,
		revoker:  revoker,
		log:      log,
	}
}

// Register создаёт пользователя и его запись аккаунта с ролью и статусом по умолчанию.
// Запись аккаунта вторична: если она не создалась, контроллер сессии
// подставит значения по умолчанию при первом входе.
func (s *Service) Register(ctx context.Context, email, displayName, rawPassword string) (string, error) {
	const op = "auth.Register"
	hashed, err := password.GetHash(rawPassword)
	if err != nil {
		return "", fmt.Errorf("%s: %w", op, err)
	}
	uid, err := s.users.CreateUser(ctx, models.User{
		Email:        email,
		DisplayName:  displayName,
		PasswordHash: hashed,
	})
	if err != nil {
		return "", fmt.Errorf("%s: %w", op, err)
	}

	role, status := models.RoleUser, models.StatusActive
	patch := models.AccountPatch{
		DisplayName: &displayName,
		Email:       &email,
		Role:        &role,
		Status:      &status,
	}
	if err := s.accounts.UpdateAccount(ctx, uid, patch); err != nil {
		s.log.Warn("failed to create account record", sl.Op(op), slog.String("user_id", uid), sl.Err(err))
	}
	return uid, nil
}

// Login проверяет пароль и выпускает токен браузерной сессии.
func (s *Service) Login(ctx context.Context, email, rawPassword string) (string, *jwt.CustomClaims, error) {
	const op = "auth.Login"
	user, err := s.users.GetUserByEmail(ctx, email)
	if errors.Is(err, repository.ErrUserNotFound) {
		return "", nil, fmt.Errorf("%s: %w", op, ErrInvalidCredentials)
	}
	if err != nil {
		return "", nil, fmt.Errorf("%s: %w", op, err)
	}
	if err := password.CompareHash(user.PasswordHash, rawPassword); err != nil {
		return "", nil, fmt.Errorf("%s: %w", op, ErrInvalidCredentials)
	}

	token, err := s.jwtMaker.GenerateToken(user.Profile())
	if err != nil {
		return "", nil, fmt.Errorf("%s: %w", op, err)
	}
	claims, err := s.jwtMaker.ParseToken(token)
	if err != nil {
		return "", nil, fmt.Errorf("%s: %w", op, err)
	}
	return token, claims, nil
}

// Authenticate проверяет подпись, срок действия и отзыв токена.
func (s *Service) Authenticate(ctx context.Context, token string) (*jwt.CustomClaims, error) {
	const op = "auth.Authenticate"
	claims, err := s.jwtMaker.ParseToken(token)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	revoked, err := s.revoker.IsRevoked(ctx, claims.ID)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	if revoked {
		return nil, fmt.Errorf("%s: %w", op, ErrTokenRevoked)
	}
	return claims, nil
}

// Revoke отзывает токен до конца срока его действия.
func (s *Service) Revoke(ctx context.Context, claims *jwt.CustomClaims) error {
	const op = "auth.Revoke"
	if err := RevokeToken(ctx, s.revoker, claims); err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	return nil
}

// RevokeToken отзывает токен на оставшийся срок его действия.
func RevokeToken(ctx context.Context, revoker TokenRevoker, claims *jwt.CustomClaims) error {
	ttl := time.Minute
	if claims.ExpiresAt != nil {
		ttl = time.Until(claims.ExpiresAt.Time)
	}
	return revoker.Revoke(ctx, claims.ID, ttl)
}
