package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/jackc/pgerrcode"
	"github.com/jackc/pgx/v5/pgconn"

	"github.com/magabrotheeeer/finance-tracker/internal/models"
)

// CreateUser сохраняет учётные данные и возвращает UID пользователя.
func (s *Storage) CreateUser(ctx context.Context, user models.User) (string, error) {
	const op = "storage.CreateUser"

	query := `INSERT INTO users (email, display_name, password_hash)
			  VALUES ($1, $2, $3)
			  RETURNING uid`
	var uid string
	err := s.DB.QueryRowContext(ctx, query, user.Email, user.DisplayName, user.PasswordHash).Scan(&uid)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == pgerrcode.UniqueViolation {
			return "", fmt.Errorf("%s: %w", op, ErrUserExists)
		}
		return "", fmt.Errorf("%s: %w", op, err)
	}
	return uid, nil
}

// GetUserByEmail возвращает учётные данные по email или ErrUserNotFound.
func (s *Storage) GetUserByEmail(ctx context.Context, email string) (*models.User, error) {
	const op = "storage.GetUserByEmail"

	query := `SELECT uid, email, display_name, password_hash, created_at
			  FROM users
			  WHERE email = $1`
	var u models.User
	err := s.DB.QueryRowContext(ctx, query, email).Scan(
		&u.UUID, &u.Email, &u.DisplayName, &u.PasswordHash, &u.CreatedAt,
	)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("%s: %w", op, ErrUserNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	return &u, nil
}
