package repository

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/magabrotheeeer/reddigen-backend/internal/models"
)

// GetPlan возвращает тарифный план пользователя по его UID.
// Если записи нет, возвращает found = false без ошибки.
func (s *Storage) GetPlan(ctx context.Context, userID string) (*models.Plan, bool, error) {
	const op = "storage.GetPlan"
	select {
	case <-ctx.Done():
		return nil, false, fmt.Errorf("%s: %w", op, ctx.Err())
	default:
	}

	query := `SELECT user_id, plan_type, posts_per_month, credits_remaining,
			      billing_cycle, amount, status, activated_at, expires_at, updated_at
			  FROM user_plans
			  WHERE user_id = $1`
	p := &models.Plan{}
	var expiresAt sql.NullTime
	err := s.DB.QueryRowContext(ctx, query, userID).Scan(
		&p.UserID, &p.PlanType, &p.PostsPerMonth, &p.CreditsRemaining,
		&p.BillingCycle, &p.Amount, &p.Status, &p.ActivatedAt, &expiresAt, &p.UpdatedAt)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, false, nil
		}
		return nil, false, fmt.Errorf("%s: %w", op, err)
	}
	if expiresAt.Valid {
		p.ExpiresAt = &expiresAt.Time
	}
	return p, true, nil
}

// CreateFreePlan вставляет бесплатный план по умолчанию и возвращает его.
func (s *Storage) CreateFreePlan(ctx context.Context, userID string) (*models.Plan, error) {
	const op = "storage.CreateFreePlan"
	select {
	case <-ctx.Done():
		return nil, fmt.Errorf("%s: %w", op, ctx.Err())
	default:
	}

	query := `INSERT INTO user_plans (user_id, plan_type, posts_per_month, credits_remaining,
			      billing_cycle, amount, status, activated_at, updated_at)
			  VALUES ($1, $2, $3, $4, $5, 0, $6, NOW(), NOW())
			  ON CONFLICT (user_id) DO NOTHING
			  RETURNING user_id, plan_type, posts_per_month, credits_remaining,
			      billing_cycle, amount, status, activated_at, updated_at`
	p := &models.Plan{}
	err := s.DB.QueryRowContext(ctx, query,
		userID, models.PlanFree, models.FreePlanCredits, models.FreePlanCredits,
		"monthly", models.PlanStatusActive).Scan(
		&p.UserID, &p.PlanType, &p.PostsPerMonth, &p.CreditsRemaining,
		&p.BillingCycle, &p.Amount, &p.Status, &p.ActivatedAt, &p.UpdatedAt)
	if err != nil {
		// Конкурирующая вставка уже создала план, перечитываем его.
		if err == sql.ErrNoRows {
			existing, _, readErr := s.GetPlan(ctx, userID)
			if readErr != nil {
				return nil, fmt.Errorf("%s: %w", op, readErr)
			}
			return existing, nil
		}
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	return p, nil
}

// UpsertPlan активирует тарифный план после оплаты: вставляет новую запись
// или полностью перезаписывает существующую.
func (s *Storage) UpsertPlan(ctx context.Context, plan models.Plan) error {
	const op = "storage.UpsertPlan"
	select {
	case <-ctx.Done():
		return fmt.Errorf("%s: %w", op, ctx.Err())
	default:
	}

	query := `INSERT INTO user_plans (user_id, plan_type, posts_per_month, credits_remaining,
			      billing_cycle, amount, status, activated_at, expires_at, updated_at)
			  VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, NOW())
			  ON CONFLICT (user_id) DO UPDATE SET
			      plan_type = EXCLUDED.plan_type,
			      posts_per_month = EXCLUDED.posts_per_month,
			      credits_remaining = EXCLUDED.credits_remaining,
			      billing_cycle = EXCLUDED.billing_cycle,
			      amount = EXCLUDED.amount,
			      status = EXCLUDED.status,
			      activated_at = EXCLUDED.activated_at,
			      expires_at = EXCLUDED.expires_at,
			      updated_at = NOW()`
	var expiresAt any
	if plan.ExpiresAt != nil {
		expiresAt = *plan.ExpiresAt
	}
	_, err := s.DB.ExecContext(ctx, query,
		plan.UserID, plan.PlanType, plan.PostsPerMonth, plan.CreditsRemaining,
		plan.BillingCycle, plan.Amount, plan.Status, plan.ActivatedAt, expiresAt)
	if err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	return nil
}

// SpendCredit атомарно списывает один кредит, только если остаток
// положительный. Возвращает новый остаток и spent = false, если
// списывать было нечего.
func (s *Storage) SpendCredit(ctx context.Context, userID string) (int, bool, error) {
	const op = "storage.SpendCredit"
	select {
	case <-ctx.Done():
		return 0, false, fmt.Errorf("%s: %w", op, ctx.Err())
	default:
	}

	query := `UPDATE user_plans
			  SET credits_remaining = credits_remaining - 1, updated_at = NOW()
			  WHERE user_id = $1 AND credits_remaining > 0
			  RETURNING credits_remaining`
	var remaining int
	err := s.DB.QueryRowContext(ctx, query, userID).Scan(&remaining)
	if err != nil {
		if err == sql.ErrNoRows {
			return 0, false, nil
		}
		return 0, false, fmt.Errorf("%s: %w", op, err)
	}
	return remaining, true, nil
}
