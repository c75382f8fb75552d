package repository

import (
	"context"
	"fmt"

	"github.com/magabrotheeeer/reddigen-backend/internal/models"
)

// CreateHistoryItem добавляет запись в историю постов и возвращает её
// с заполненными ID и датой создания.
func (s *Storage) CreateHistoryItem(ctx context.Context, item models.HistoryItem) (*models.HistoryItem, error) {
	const op = "storage.CreateHistoryItem"
	select {
	case <-ctx.Done():
		return nil, fmt.Errorf("%s: %w", op, ctx.Err())
	default:
	}

	query := `INSERT INTO post_history (user_id, subreddit, title, content, post_type, created_at)
			  VALUES ($1, $2, $3, $4, $5, NOW())
			  RETURNING id, created_at`
	err := s.DB.QueryRowContext(ctx, query,
		item.UserID, item.Subreddit, item.Title, item.Content, item.PostType).Scan(
		&item.ID, &item.CreatedAt)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	return &item, nil
}

// ListHistory возвращает последние записи истории пользователя,
// отсортированные по дате создания по убыванию.
func (s *Storage) ListHistory(ctx context.Context, userID string, limit int) ([]*models.HistoryItem, error) {
	const op = "storage.ListHistory"
	select {
	case <-ctx.Done():
		return nil, fmt.Errorf("%s: %w", op, ctx.Err())
	default:
	}

	query := `SELECT id, user_id, subreddit, title, content, post_type, created_at
			  FROM post_history
			  WHERE user_id = $1
			  ORDER BY created_at DESC
			  LIMIT $2`
	rows, err := s.DB.QueryContext(ctx, query, userID, limit)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	defer func() {
		_ = rows.Close()
	}()

	var result []*models.HistoryItem
	for rows.Next() {
		var item models.HistoryItem
		if err := rows.Scan(&item.ID, &item.UserID, &item.Subreddit, &item.Title,
			&item.Content, &item.PostType, &item.CreatedAt); err != nil {
			return nil, fmt.Errorf("%s: %w", op, err)
		}
		result = append(result, &item)
	}
	return result, nil
}
