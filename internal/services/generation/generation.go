// Package generation содержит бизнес-логику генерации и оптимизации
// постов с учетом кредитов тарифного плана.
package generation

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"github.com/magabrotheeeer/reddigen-backend/internal/gemini"
	"github.com/magabrotheeeer/reddigen-backend/internal/lib/sl"
	"github.com/magabrotheeeer/reddigen-backend/internal/models"
)

// Ошибки допуска к генерации.
var (
	// ErrPlanNotFound возвращается, когда у пользователя нет тарифного плана.
	ErrPlanNotFound = errors.New("plan not found")
	// ErrNoCredits возвращается при исчерпанных кредитах.
	ErrNoCredits = errors.New("no credits remaining")
)

// Repository определяет методы хранилища, нужные сервису генерации.
type Repository interface {
	// GetPlan возвращает план пользователя.
	GetPlan(ctx context.Context, userID string) (*models.Plan, bool, error)
	// SpendCredit атомарно списывает один кредит, если они еще остались.
	SpendCredit(ctx context.Context, userID string) (int, bool, error)
	// CreateHistoryItem сохраняет сгенерированный пост в историю.
	CreateHistoryItem(ctx context.Context, item models.HistoryItem) (*models.HistoryItem, error)
}

// AIClient описывает генерацию текста по промпту.
type AIClient interface {
	// Generate выполняет запрос к модели и возвращает сырой текст ответа.
	Generate(ctx context.Context, prompt string, temperature float64) (string, error)
}

// Result содержит итог генерации: пост, запись истории и остаток кредитов.
type Result struct {
	Post             gemini.Post
	CreditsRemaining int
	History          *models.HistoryItem
}

// OptimizeResult содержит улучшенный текст поста и остаток кредитов.
type OptimizeResult struct {
	OptimizedPost    string
	CreditsRemaining int
}

// Service реализует генерацию и оптимизацию постов.
type Service struct {
	repo Repository
	ai   AIClient
	log  *slog.Logger
}

// New создает новый экземпляр Service.
func New(repo Repository, ai AIClient, log *slog.Logger) *Service {
	return &Service{
		repo: repo,
		ai:   ai,
		log:  log,
	}
}

// Температуры запросов к модели: генерация допускает больше
// вариативности, чем оптимизация существующего текста.
const (
	generateTemperature = 0.8
	optimizeTemperature = 0.7
)

// GeneratePost генерирует пост для сабреддита, списывает кредит
// и сохраняет результат в историю.
func (s *Service) GeneratePost(ctx context.Context, userID string, req models.GeneratePostRequest) (*Result, error) {
	const op = "services.generation.GeneratePost"

	if err := s.checkCredits(ctx, userID); err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	prompt := gemini.BuildGeneratePrompt(req.Subreddit, req.Topic, req.Style, req.Rules)
	raw, err := s.ai.Generate(ctx, prompt, generateTemperature)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	post := gemini.ExtractPost(raw)

	remaining, err := s.spendCredit(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	item, err := s.repo.CreateHistoryItem(ctx, models.HistoryItem{
		UserID:    userID,
		Subreddit: strings.ToLower(req.Subreddit),
		Title:     post.Title,
		Content:   post.Content,
		PostType:  models.PostTypeGenerated,
	})
	if err != nil {
		// пост уже сгенерирован и кредит списан, теряем только запись истории
		s.log.Error("failed to save history item", slog.String("user_id", userID), sl.Err(err))
		return &Result{Post: post, CreditsRemaining: remaining}, nil
	}

	s.log.Info("generated post",
		slog.String("user_id", userID),
		slog.String("subreddit", req.Subreddit),
		slog.Int("credits_remaining", remaining))

	return &Result{Post: post, CreditsRemaining: remaining, History: item}, nil
}

// OptimizePost улучшает существующий пост и списывает кредит.
// Модель отвечает готовым текстом без JSON-обертки, ответ возвращается
// как есть. В историю оптимизированные посты не записываются.
func (s *Service) OptimizePost(ctx context.Context, userID string, req models.OptimizePostRequest) (*OptimizeResult, error) {
	const op = "services.generation.OptimizePost"

	if err := s.checkCredits(ctx, userID); err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	prompt := gemini.BuildOptimizePrompt(req.Subreddit, req.Content, req.Style, req.Rules)
	raw, err := s.ai.Generate(ctx, prompt, optimizeTemperature)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	remaining, err := s.spendCredit(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	s.log.Info("optimized post",
		slog.String("user_id", userID),
		slog.String("subreddit", req.Subreddit),
		slog.Int("credits_remaining", remaining))

	return &OptimizeResult{OptimizedPost: strings.TrimSpace(raw), CreditsRemaining: remaining}, nil
}

// checkCredits проверяет наличие плана и кредитов до обращения к модели,
// чтобы не тратить вызов на заведомо отклоненный запрос.
func (s *Service) checkCredits(ctx context.Context, userID string) error {
	plan, found, err := s.repo.GetPlan(ctx, userID)
	if err != nil {
		return err
	}
	if !found {
		return ErrPlanNotFound
	}
	if plan.CreditsRemaining <= 0 {
		return ErrNoCredits
	}
	return nil
}

// spendCredit списывает кредит после успешной генерации. Условное
// обновление закрывает гонку параллельных запросов: кредит уходит
// только если он еще есть.
func (s *Service) spendCredit(ctx context.Context, userID string) (int, error) {
	remaining, spent, err := s.repo.SpendCredit(ctx, userID)
	if err != nil {
		return 0, err
	}
	if !spent {
		return 0, ErrNoCredits
	}
	return remaining, nil
}
