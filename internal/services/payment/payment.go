// Package payment содержит бизнес-логику активации тарифных планов:
// подтверждение платежа клиентом, обработку webhook-событий платежного
// провайдера и проверку статуса платежа.
package payment

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"strconv"
	"time"

	"github.com/google/uuid"

	"github.com/magabrotheeeer/reddigen-backend/internal/lib/billing"
	"github.com/magabrotheeeer/reddigen-backend/internal/lib/sl"
	"github.com/magabrotheeeer/reddigen-backend/internal/models"
)

// Ошибки активации плана.
var (
	// ErrUnknownUser возвращается, когда пользователя не удалось
	// определить ни по токену, ни по userId, ни по email.
	ErrUnknownUser = errors.New("cannot identify user")
	// ErrUnsupportedEvent возвращается для событий, которые не требуют
	// активации плана.
	ErrUnsupportedEvent = errors.New("unsupported event type")
)

// Repository определяет методы хранилища, нужные сервису платежей.
type Repository interface {
	// ClaimPayment атомарно захватывает идентификатор транзакции.
	ClaimPayment(ctx context.Context, payment models.Payment) (int, bool, error)
	// FindPayment находит завершенный платеж по транзакции без
	// привязки к пользователю.
	FindPayment(ctx context.Context, transactionID string) (*models.Payment, bool, error)
	// FindPaymentForUser находит платеж пользователя по транзакции.
	FindPaymentForUser(ctx context.Context, transactionID, userID string) (*models.Payment, bool, error)
	// FindUserIDByEmail возвращает UID пользователя по email.
	FindUserIDByEmail(ctx context.Context, email string) (string, bool, error)
	// UpsertPlan создает или обновляет тарифный план пользователя.
	UpsertPlan(ctx context.Context, plan models.Plan) error
	// GetPlan возвращает план пользователя.
	GetPlan(ctx context.Context, userID string) (*models.Plan, bool, error)
}

// EventPublisher отправляет событие активации во внешнюю очередь.
type EventPublisher interface {
	Publish(message any) error
}

// Activation описывает один запрос на активацию плана.
type Activation struct {
	UserID        string
	TransactionID string
	PlanType      string
	PostsPerMonth int
	BillingCycle  string
	Amount        float64
	CustomerEmail string
}

// ActivatedEvent публикуется в очередь после успешной активации плана.
type ActivatedEvent struct {
	UserID        string    `json:"user_id"`
	TransactionID string    `json:"transaction_id"`
	PlanType      string    `json:"plan_type"`
	BillingCycle  string    `json:"billing_cycle"`
	Amount        float64   `json:"amount"`
	ActivatedAt   time.Time `json:"activated_at"`
}

// Status агрегирует платеж и план для ответа на проверку статуса.
type Status struct {
	Payment *models.Payment `json:"payment"`
	Plan    *models.Plan    `json:"plan"`
	Status  string          `json:"status"`
}

// Service реализует активацию планов и проверку платежей.
type Service struct {
	repo      Repository
	publisher EventPublisher
	log       *slog.Logger
}

// New создает новый экземпляр Service. Publisher может быть nil,
// тогда события активации не публикуются.
func New(repo Repository, publisher EventPublisher, log *slog.Logger) *Service {
	return &Service{
		repo:      repo,
		publisher: publisher,
		log:       log,
	}
}

// Verify подтверждает платеж по данным клиента и активирует план.
// Пользователь определяется по приоритету: авторизованный запрос,
// затем userId из тела платежа, затем поиск по email. Возвращает
// итоговый UID и признак ранее обработанной транзакции.
func (s *Service) Verify(ctx context.Context, authUserID string, req models.VerifyPaymentRequest) (string, bool, error) {
	const op = "services.payment.Verify"

	userID := authUserID
	if userID == "" {
		userID = req.UserID
	}
	if userID == "" && req.Email != "" {
		found := false
		var err error
		userID, found, err = s.repo.FindUserIDByEmail(ctx, req.Email)
		if err != nil {
			return "", false, fmt.Errorf("%s: %w", op, err)
		}
		if !found {
			userID = ""
		}
	}
	if userID == "" {
		return "", false, fmt.Errorf("%s: %w", op, ErrUnknownUser)
	}

	transactionID := req.SessionID
	if transactionID == "" {
		transactionID = "manual_" + uuid.NewString()
	}

	alreadyProcessed, err := s.Activate(ctx, Activation{
		UserID:        userID,
		TransactionID: transactionID,
		PlanType:      req.Plan,
		PostsPerMonth: req.PostsPerMonth,
		BillingCycle:  billing.NormalizeCycle(req.BillingCycle),
		Amount:        req.Amount,
		CustomerEmail: req.Email,
	})
	if err != nil {
		return "", false, fmt.Errorf("%s: %w", op, err)
	}
	return userID, alreadyProcessed, nil
}

// Activate идемпотентно активирует план. Сначала запись платежа
// захватывает идентификатор транзакции, и только победивший захват
// обновляет план: повторная доставка того же события не активирует
// план дважды. Возвращает true, если транзакция уже была обработана.
func (s *Service) Activate(ctx context.Context, act Activation) (bool, error) {
	const op = "services.payment.Activate"

	// известная транзакция не доходит до вставки; захват ниже остается
	// последней защитой от гонки параллельных доставок
	_, found, err := s.repo.FindPayment(ctx, act.TransactionID)
	if err != nil {
		s.log.Warn("payment lookup failed", sl.Err(err))
	} else if found {
		s.log.Info("payment already processed",
			slog.String("transaction_id", act.TransactionID))
		return true, nil
	}

	_, claimed, err := s.repo.ClaimPayment(ctx, models.Payment{
		TransactionID: act.TransactionID,
		UserID:        act.UserID,
		CustomerEmail: act.CustomerEmail,
		PlanType:      act.PlanType,
		Amount:        act.Amount,
		PostsPerMonth: act.PostsPerMonth,
		BillingCycle:  act.BillingCycle,
		Status:        models.PaymentStatusCompleted,
	})
	if err != nil {
		return false, fmt.Errorf("%s: %w", op, err)
	}
	if !claimed {
		s.log.Info("payment already processed",
			slog.String("transaction_id", act.TransactionID))
		return true, nil
	}

	now := time.Now()
	expiresAt := billing.ExpiryDate(now, act.BillingCycle)
	err = s.repo.UpsertPlan(ctx, models.Plan{
		UserID:           act.UserID,
		PlanType:         act.PlanType,
		PostsPerMonth:    act.PostsPerMonth,
		CreditsRemaining: act.PostsPerMonth,
		BillingCycle:     act.BillingCycle,
		Amount:           act.Amount,
		Status:           models.PlanStatusActive,
		ActivatedAt:      now,
		ExpiresAt:        &expiresAt,
		UpdatedAt:        now,
	})
	if err != nil {
		return false, fmt.Errorf("%s: %w", op, err)
	}

	s.log.Info("plan activated",
		slog.String("user_id", act.UserID),
		slog.String("plan_type", act.PlanType),
		slog.String("transaction_id", act.TransactionID))

	if s.publisher != nil {
		event := ActivatedEvent{
			UserID:        act.UserID,
			TransactionID: act.TransactionID,
			PlanType:      act.PlanType,
			BillingCycle:  act.BillingCycle,
			Amount:        act.Amount,
			ActivatedAt:   now,
		}
		if err := s.publisher.Publish(event); err != nil {
			s.log.Warn("failed to publish activation event", sl.Err(err))
		}
	}
	return false, nil
}

// CheckStatus возвращает платеж пользователя и его текущий план.
// Если платеж не найден, возвращает found = false без ошибки.
func (s *Service) CheckStatus(ctx context.Context, userID, sessionID string) (*Status, bool, error) {
	const op = "services.payment.CheckStatus"

	p, found, err := s.repo.FindPaymentForUser(ctx, sessionID, userID)
	if err != nil {
		return nil, false, fmt.Errorf("%s: %w", op, err)
	}
	if !found {
		return nil, false, nil
	}

	plan, _, err := s.repo.GetPlan(ctx, userID)
	if err != nil {
		return nil, false, fmt.Errorf("%s: %w", op, err)
	}

	return &Status{
		Payment: p,
		Plan:    plan,
		Status:  p.Status,
	}, true, nil
}

// Событийная модель платежного провайдера. Сессия может лежать
// как в data.object, так и на верхнем уровне события.
type webhookEnvelope struct {
	Type string `json:"type"`
	Data struct {
		Object json.RawMessage `json:"object"`
	} `json:"data"`
}

type webhookSession struct {
	ID            string            `json:"id"`
	CustomerEmail string            `json:"customer_email"`
	AmountTotal   float64           `json:"amount_total"`
	Amount        float64           `json:"amount"`
	Metadata      map[string]string `json:"metadata"`
}

// Типы событий, приводящие к активации плана.
var activationEvents = map[string]struct{}{
	"checkout.session.completed": {},
	"payment.succeeded":          {},
	"charge.succeeded":           {},
}

// Умолчания для неполных метаданных события.
const (
	defaultWebhookPlan  = models.PlanStarter
	defaultWebhookPosts = 50
)

// parseEvent разбирает тело события и собирает запрос на активацию.
// Для событий, не требующих активации, возвращает nil без ошибки.
// Идентификатор транзакции остается пустым, если в сессии его нет.
func parseEvent(body []byte) (*Activation, string, error) {
	var envelope webhookEnvelope
	if err := json.Unmarshal(body, &envelope); err != nil {
		return nil, "", err
	}
	if _, ok := activationEvents[envelope.Type]; !ok {
		return nil, envelope.Type, nil
	}

	sessionRaw := envelope.Data.Object
	if len(sessionRaw) == 0 {
		sessionRaw = body
	}
	var session webhookSession
	if err := json.Unmarshal(sessionRaw, &session); err != nil {
		return nil, envelope.Type, err
	}

	userID := session.Metadata["userId"]
	if userID == "" {
		return nil, envelope.Type, ErrUnknownUser
	}

	planType := session.Metadata["planType"]
	if planType == "" {
		planType = defaultWebhookPlan
	}
	postsPerMonth := defaultWebhookPosts
	if v, err := strconv.Atoi(session.Metadata["postsPerMonth"]); err == nil && v > 0 {
		postsPerMonth = v
	}
	amount := session.AmountTotal
	if amount == 0 {
		amount = session.Amount
	}
	email := session.CustomerEmail
	if email == "" {
		email = session.Metadata["email"]
	}

	return &Activation{
		UserID:        userID,
		TransactionID: session.ID,
		PlanType:      planType,
		PostsPerMonth: postsPerMonth,
		BillingCycle:  billing.NormalizeCycle(session.Metadata["billingCycle"]),
		Amount:        amount / 100,
		CustomerEmail: email,
	}, envelope.Type, nil
}

// ValidateEvent проверяет тело события до подтверждения доставки:
// активационное событие без userId в метаданных отклоняется.
func (s *Service) ValidateEvent(body []byte) error {
	const op = "services.payment.ValidateEvent"

	if _, _, err := parseEvent(body); err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	return nil
}

// ProcessEvent разбирает webhook-событие и активирует план.
// События неизвестных типов подтверждаются без обработки.
func (s *Service) ProcessEvent(ctx context.Context, body []byte) error {
	const op = "services.payment.ProcessEvent"

	act, eventType, err := parseEvent(body)
	if err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	if act == nil {
		s.log.Info("skipping webhook event", slog.String("type", eventType))
		return nil
	}
	if act.TransactionID == "" {
		act.TransactionID = "webhook_" + uuid.NewString()
	}

	if _, err := s.Activate(ctx, *act); err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	return nil
}
