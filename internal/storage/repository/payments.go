package repository

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/magabrotheeeer/reddigen-backend/internal/models"
)

// ClaimPayment вставляет запись о платеже, используя уникальный индекс
// по transaction_id как атомарный захват идентификатора транзакции.
// Возвращает claimed = false, если транзакция уже была обработана.
func (s *Storage) ClaimPayment(ctx context.Context, payment models.Payment) (int, bool, error) {
	const op = "storage.ClaimPayment"
	select {
	case <-ctx.Done():
		return 0, false, fmt.Errorf("%s: %w", op, ctx.Err())
	default:
	}

	query := `INSERT INTO payments (transaction_id, user_id, customer_email, plan_type,
			      amount, posts_per_month, billing_cycle, status, completed_at, created_at)
			  VALUES ($1, $2, $3, $4, $5, $6, $7, $8, NOW(), NOW())
			  ON CONFLICT (transaction_id) DO NOTHING
			  RETURNING id`
	var newID int
	err := s.DB.QueryRowContext(ctx, query,
		payment.TransactionID, payment.UserID, payment.CustomerEmail, payment.PlanType,
		payment.Amount, payment.PostsPerMonth, payment.BillingCycle, payment.Status).Scan(&newID)
	if err != nil {
		if err == sql.ErrNoRows {
			return 0, false, nil
		}
		return 0, false, fmt.Errorf("%s: %w", op, err)
	}
	return newID, true, nil
}

// FindPayment находит завершенный платеж по идентификатору транзакции.
// Если записи нет, возвращает found = false без ошибки.
func (s *Storage) FindPayment(ctx context.Context, transactionID string) (*models.Payment, bool, error) {
	const op = "storage.FindPayment"
	select {
	case <-ctx.Done():
		return nil, false, fmt.Errorf("%s: %w", op, ctx.Err())
	default:
	}

	query := `SELECT id, transaction_id, user_id, customer_email, plan_type, amount,
			      posts_per_month, billing_cycle, status, completed_at, created_at
			  FROM payments
			  WHERE transaction_id = $1 AND status = $2`
	return s.scanPayment(s.DB.QueryRowContext(ctx, query, transactionID, models.PaymentStatusCompleted), op)
}

// FindPaymentForUser находит платеж по идентификатору транзакции,
// принадлежащий конкретному пользователю.
func (s *Storage) FindPaymentForUser(ctx context.Context, transactionID, userID string) (*models.Payment, bool, error) {
	const op = "storage.FindPaymentForUser"
	select {
	case <-ctx.Done():
		return nil, false, fmt.Errorf("%s: %w", op, ctx.Err())
	default:
	}

	query := `SELECT id, transaction_id, user_id, customer_email, plan_type, amount,
			      posts_per_month, billing_cycle, status, completed_at, created_at
			  FROM payments
			  WHERE transaction_id = $1 AND user_id = $2`
	return s.scanPayment(s.DB.QueryRowContext(ctx, query, transactionID, userID), op)
}

func (s *Storage) scanPayment(row *sql.Row, op string) (*models.Payment, bool, error) {
	p := &models.Payment{}
	var email sql.NullString
	err := row.Scan(&p.ID, &p.TransactionID, &p.UserID, &email, &p.PlanType, &p.Amount,
		&p.PostsPerMonth, &p.BillingCycle, &p.Status, &p.CompletedAt, &p.CreatedAt)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, false, nil
		}
		return nil, false, fmt.Errorf("%s: %w", op, err)
	}
	if email.Valid {
		p.CustomerEmail = email.String
	}
	return p, true, nil
}
