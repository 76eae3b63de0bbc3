package repository

import (
	"context"
	"fmt"
	"time"
)

// TouchTicket обновляет отметку присутствия в тикете поддержки пользователя.
// Если тикета нет, возвращает ErrTicketNotFound.
func (s *Storage) TouchTicket(ctx context.Context, userID string, at time.Time) error {
	const op = "storage.TouchTicket"

	query := `UPDATE support_tickets
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
		return fmt.Errorf("%s: %w", op, ErrTicketNotFound)
	}
	return nil
}
