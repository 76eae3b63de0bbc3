// Package repository реализует хранилище на PostgreSQL: учётные данные
// пользователей, записи аккаунтов и тикеты поддержки.
package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	// Регистрация драйвера pgx для использования с database/sql.
	_ "github.com/jackc/pgx/v5/stdlib"
)

var (
	// ErrAccountNotFound записи аккаунта нет; для сессии это не ошибка.
	ErrAccountNotFound = errors.New("account not found")
	// ErrTicketNotFound у пользователя нет тикета поддержки.
	ErrTicketNotFound = errors.New("ticket not found")
	// ErrUserNotFound нет учётных данных с таким email.
	ErrUserNotFound = errors.New("user not found")
	// ErrUserExists email уже зарегистрирован.
	ErrUserExists = errors.New("user already exists")
)

// Storage инкапсулирует соединение с PostgreSQL.
type Storage struct {
	DB *sql.DB
}

// New открывает соединение и проверяет его доступность.
func New(storageConnectionString string) (*Storage, error) {
	const op = "storage.New"

	db, err := sql.Open("pgx", storageConnectionString)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	if err = db.PingContext(context.Background()); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	return &Storage{DB: db}, nil
}

// Close закрывает пул соединений.
func (s *Storage) Close() error {
	return s.DB.Close()
}

// CheckDatabaseReady проверяет, что миграции применены.
func CheckDatabaseReady(ctx context.Context, storage *Storage) error {
	const op = "storage.CheckDatabaseReady"
	var exists bool
	err := storage.DB.QueryRowContext(ctx, `SELECT EXISTS (
		SELECT FROM information_schema.tables
		WHERE table_name = 'accounts'
	)`).Scan(&exists)
	if err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	if !exists {
		return fmt.Errorf("%s: table accounts is missing", op)
	}
	return nil
}
