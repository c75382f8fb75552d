// Package user содержит бизнес-логику работы с профилем, планом
// и историей постов пользователя.
package user

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"github.com/magabrotheeeer/reddigen-backend/internal/lib/sl"
	"github.com/magabrotheeeer/reddigen-backend/internal/models"
)

// Repository определяет методы хранилища, нужные сервису пользователя.
type Repository interface {
	// GetProfile возвращает профиль пользователя по ID.
	GetProfile(ctx context.Context, userID string) (*models.Profile, bool, error)
	// CreateProfile создает профиль, если его еще нет.
	CreateProfile(ctx context.Context, userID, email, displayName string) (*models.Profile, error)
	// UpdateProfile обновляет имя и описание профиля.
	UpdateProfile(ctx context.Context, userID, displayName, bio string) (*models.Profile, bool, error)
	// GetPlan возвращает план пользователя.
	GetPlan(ctx context.Context, userID string) (*models.Plan, bool, error)
	// CreateFreePlan создает бесплатный план, если плана еще нет.
	CreateFreePlan(ctx context.Context, userID string) (*models.Plan, error)
	// ListHistory возвращает последние записи истории постов.
	ListHistory(ctx context.Context, userID string, limit int) ([]*models.HistoryItem, error)
	// DeleteUserData удаляет все данные пользователя из хранилища.
	DeleteUserData(ctx context.Context, userID string) (int, error)
}

// AdminAPI описывает административные операции над учетной записью.
type AdminAPI interface {
	// AdminUpdatePassword меняет пароль пользователя.
	AdminUpdatePassword(ctx context.Context, userID, newPassword string) error
	// AdminDeleteUser удаляет учетную запись пользователя.
	AdminDeleteUser(ctx context.Context, userID string) error
}

// Data агрегирует профиль, план и историю для выдачи фронтенду.
type Data struct {
	Profile *models.Profile       `json:"profile"`
	Plan    *models.Plan          `json:"plan"`
	History []*models.HistoryItem `json:"history"`
}

// Service реализует операции над данными пользователя.
type Service struct {
	repo  Repository
	admin AdminAPI
	log   *slog.Logger
}

// New создает новый экземпляр Service.
func New(repo Repository, admin AdminAPI, log *slog.Logger) *Service {
	return &Service{
		repo:  repo,
		admin: admin,
		log:   log,
	}
}

const historyLimit = 50

// GetData возвращает профиль, план и историю пользователя.
// Отсутствующие профиль и план создаются на лету: профиль получает
// имя из локальной части email, план — бесплатный тариф.
func (s *Service) GetData(ctx context.Context, userID, email string) (*Data, error) {
	const op = "services.user.GetData"

	profile, found, err := s.repo.GetProfile(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	if !found {
		displayName := email
		if i := strings.Index(email, "@"); i > 0 {
			displayName = email[:i]
		}
		profile, err = s.repo.CreateProfile(ctx, userID, email, displayName)
		if err != nil {
			return nil, fmt.Errorf("%s: %w", op, err)
		}
		s.log.Info("created profile", slog.String("user_id", userID))
	}

	plan, found, err := s.repo.GetPlan(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	if !found {
		plan, err = s.repo.CreateFreePlan(ctx, userID)
		if err != nil {
			return nil, fmt.Errorf("%s: %w", op, err)
		}
		s.log.Info("created free plan", slog.String("user_id", userID))
	}

	history, err := s.repo.ListHistory(ctx, userID, historyLimit)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	return &Data{
		Profile: profile,
		Plan:    plan,
		History: history,
	}, nil
}

// UpdateProfile изменяет имя и описание профиля пользователя.
func (s *Service) UpdateProfile(ctx context.Context, userID string, req models.UpdateProfileRequest) (*models.Profile, bool, error) {
	const op = "services.user.UpdateProfile"

	profile, found, err := s.repo.UpdateProfile(ctx, userID, req.DisplayName, req.Bio)
	if err != nil {
		return nil, false, fmt.Errorf("%s: %w", op, err)
	}
	return profile, found, nil
}

// ChangePassword меняет пароль учетной записи через административный API.
func (s *Service) ChangePassword(ctx context.Context, userID, newPassword string) error {
	const op = "services.user.ChangePassword"

	if err := s.admin.AdminUpdatePassword(ctx, userID, newPassword); err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	s.log.Info("password updated", slog.String("user_id", userID))
	return nil
}

// DeleteAccount удаляет данные пользователя из хранилища и его учетную запись.
// Ошибка удаления учетной записи не откатывает удаление данных.
func (s *Service) DeleteAccount(ctx context.Context, userID string) error {
	const op = "services.user.DeleteAccount"

	rows, err := s.repo.DeleteUserData(ctx, userID)
	if err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	s.log.Info("removed user data", slog.String("user_id", userID), slog.Int("rows", rows))

	if err := s.admin.AdminDeleteUser(ctx, userID); err != nil {
		s.log.Error("failed to delete auth account", slog.String("user_id", userID), sl.Err(err))
		return fmt.Errorf("%s: %w", op, err)
	}
	return nil
}
