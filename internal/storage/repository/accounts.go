package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/magabrotheeeer/finance-tracker/internal/lib/calendar"
	"github.com/magabrotheeeer/finance-tracker/internal/models"
)

// GetAccount возвращает запись аккаунта или ErrAccountNotFound.
//
// Дата окончания подписки хранится строкой "YYYY-MM-DD"; строка, которую
// не удалось разобрать, трактуется как отсутствие срока.
func (s *Storage) GetAccount(ctx context.Context, userID string) (*models.Account, error) {
	const op = "storage.GetAccount"

	query := `SELECT user_uid, display_name, email, role, status,
			      subscription_expires_at, last_seen
			  FROM accounts
			  WHERE user_uid = $1`

	var (
		acc          models.Account
		role, status string
		expiresAt    sql.NullString
		lastSeen     sql.NullTime
	)
	err := s.DB.QueryRowContext(ctx, query, userID).Scan(
		&acc.ID, &acc.DisplayName, &acc.Email, &role, &status, &expiresAt, &lastSeen,
	)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("%s: %w", op, ErrAccountNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	acc.Role = models.Role(role)
	acc.Status = models.Status(status)
	if expiresAt.Valid {
		acc.SubscriptionExpiresAt = calendar.ParseOptional(expiresAt.String)
	}
	if lastSeen.Valid {
		acc.LastSeen = &lastSeen.Time
	}
	return &acc, nil
}

// UpdateAccount записывает только заданные в патче поля. Если записи ещё
// нет, она создаётся, а незаданные поля получают значения по умолчанию.
func (s *Storage) UpdateAccount(ctx context.Context, userID string, patch models.AccountPatch) error {
	const op = "storage.UpdateAccount"
	if patch.Empty() {
		return nil
	}

	cols, args := accountColumns(patch)
	args = append([]any{userID}, args...)

	placeholders := make([]string, len(cols))
	updates := make([]string, len(cols))
	for i, col := range cols {
		placeholders[i] = "$" + strconv.Itoa(i+2)
		updates[i] = col + " = EXCLUDED." + col
	}

	query := fmt.Sprintf(`INSERT INTO accounts (user_uid, %s)
			  VALUES ($1, %s)
			  ON CONFLICT (user_uid) DO UPDATE SET %s`,
		strings.Join(cols, ", "),
		strings.Join(placeholders, ", "),
		strings.Join(updates, ", "),
	)
	if _, err := s.DB.ExecContext(ctx, query, args...); err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	return nil
}

// TouchAccount обновляет отметку присутствия в существующей записи аккаунта.
// Запись не создаётся: если её нет, возвращает ErrAccountNotFound.
func (s *Storage) TouchAccount(ctx context.Context, userID string, at time.Time) error {
	const op = "storage.TouchAccount"

	query := `UPDATE accounts
			  SET last_seen = $2
			  WHERE user_uid = $1`
	res, err := s.DB.ExecContext(ctx, query, userID, at)
	if err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	if n == 0 {
		return fmt.Errorf("%s: %w", op, ErrAccountNotFound)
	}
	return nil
}

func accountColumns(p models.AccountPatch) ([]string, []any) {
	var (
		cols []string
		args []any
	)
	add := func(col string, v any) {
		cols = append(cols, col)
		args = append(args, v)
	}

	if p.DisplayName != nil {
		add("display_name", *p.DisplayName)
	}
	if p.Email != nil {
		add("email", *p.Email)
	}
	if p.Role != nil {
		add("role", string(*p.Role))
	}
	if p.Status != nil {
		add("status", string(*p.Status))
	}
	switch {
	case p.ClearSubscriptionExpiry:
		add("subscription_expires_at", nil)
	case p.SubscriptionExpiresAt != nil:
		add("subscription_expires_at", calendar.Format(*p.SubscriptionExpiresAt))
	}
	if p.LastSeen != nil {
		add("last_seen", *p.LastSeen)
	}
	return cols, args
}
