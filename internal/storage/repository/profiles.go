package repository

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/magabrotheeeer/reddigen-backend/internal/models"
)

// GetProfile возвращает профиль пользователя по его UID.
// Если записи нет, возвращает found = false без ошибки.
func (s *Storage) GetProfile(ctx context.Context, userID string) (*models.Profile, bool, error) {
	const op = "storage.GetProfile"
	select {
	case <-ctx.Done():
		return nil, false, fmt.Errorf("%s: %w", op, ctx.Err())
	default:
	}

	query := `SELECT user_id, email, display_name, bio, created_at, updated_at
			  FROM user_profiles
			  WHERE user_id = $1`
	p := &models.Profile{}
	var bio sql.NullString
	err := s.DB.QueryRowContext(ctx, query, userID).Scan(
		&p.UserID, &p.Email, &p.DisplayName, &bio, &p.CreatedAt, &p.UpdatedAt)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, false, nil
		}
		return nil, false, fmt.Errorf("%s: %w", op, err)
	}
	if bio.Valid {
		p.Bio = bio.String
	}
	return p, true, nil
}

// CreateProfile вставляет новую запись профиля и возвращает её.
func (s *Storage) CreateProfile(ctx context.Context, userID, email, displayName string) (*models.Profile, error) {
	const op = "storage.CreateProfile"
	select {
	case <-ctx.Done():
		return nil, fmt.Errorf("%s: %w", op, ctx.Err())
	default:
	}

	query := `INSERT INTO user_profiles (user_id, email, display_name, created_at, updated_at)
			  VALUES ($1, $2, $3, NOW(), NOW())
			  ON CONFLICT (user_id) DO UPDATE SET email = EXCLUDED.email
			  RETURNING user_id, email, display_name, created_at, updated_at`
	p := &models.Profile{}
	err := s.DB.QueryRowContext(ctx, query, userID, email, displayName).Scan(
		&p.UserID, &p.Email, &p.DisplayName, &p.CreatedAt, &p.UpdatedAt)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	return p, nil
}

// UpdateProfile обновляет отображаемое имя и описание профиля,
// возвращает обновлённую запись. Если профиля нет, возвращает
// found = false без ошибки.
func (s *Storage) UpdateProfile(ctx context.Context, userID, displayName, bio string) (*models.Profile, bool, error) {
	const op = "storage.UpdateProfile"
	select {
	case <-ctx.Done():
		return nil, false, fmt.Errorf("%s: %w", op, ctx.Err())
	default:
	}

	query := `UPDATE user_profiles
			  SET display_name = $1, bio = $2, updated_at = NOW()
			  WHERE user_id = $3
			  RETURNING user_id, email, display_name, bio, created_at, updated_at`
	p := &models.Profile{}
	var bioVal sql.NullString
	err := s.DB.QueryRowContext(ctx, query, displayName, bio, userID).Scan(
		&p.UserID, &p.Email, &p.DisplayName, &bioVal, &p.CreatedAt, &p.UpdatedAt)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, false, nil
		}
		return nil, false, fmt.Errorf("%s: %w", op, err)
	}
	if bioVal.Valid {
		p.Bio = bioVal.String
	}
	return p, true, nil
}

// FindUserIDByEmail возвращает UID пользователя по его email.
// Если записи нет, возвращает found = false без ошибки.
func (s *Storage) FindUserIDByEmail(ctx context.Context, email string) (string, bool, error) {
	const op = "storage.FindUserIDByEmail"
	select {
	case <-ctx.Done():
		return "", false, fmt.Errorf("%s: %w", op, ctx.Err())
	default:
	}

	query := `SELECT user_id FROM user_profiles WHERE email = $1`
	var userID string
	err := s.DB.QueryRowContext(ctx, query, email).Scan(&userID)
	if err != nil {
		if err == sql.ErrNoRows {
			return "", false, nil
		}
		return "", false, fmt.Errorf("%s: %w", op, err)
	}
	return userID, true, nil
}

// DeleteUserData удаляет все данные пользователя из четырёх таблиц
// и возвращает суммарное количество удалённых строк.
func (s *Storage) DeleteUserData(ctx context.Context, userID string) (int, error) {
	const op = "storage.DeleteUserData"
	select {
	case <-ctx.Done():
		return 0, fmt.Errorf("%s: %w", op, ctx.Err())
	default:
	}

	tx, err := s.DB.BeginTx(ctx, nil)
	if err != nil {
		return 0, fmt.Errorf("%s: %w", op, err)
	}
	defer func() {
		_ = tx.Rollback()
	}()

	var total int64
	for _, table := range []string{"post_history", "payments", "user_plans", "user_profiles"} {
		result, err := tx.ExecContext(ctx, fmt.Sprintf(`DELETE FROM %s WHERE user_id = $1`, table), userID)
		if err != nil {
			return 0, fmt.Errorf("%s: %w", op, err)
		}
		affected, err := result.RowsAffected()
		if err != nil {
			return 0, fmt.Errorf("%s: %w", op, err)
		}
		total += affected
	}

	if err := tx.Commit(); err != nil {
		return 0, fmt.Errorf("%s: %w", op, err)
	}
	return int(total), nil
}
