package models

import "time"

// Статусы платежа.
const (
	PaymentStatusCompleted = "completed"
)

// Payment представляет один завершенный платеж. TransactionID — ключ
// дедупликации для идемпотентной обработки webhook-событий, в базе на нем
// уникальный индекс.
type Payment struct {
	ID            int       `json:"id"`
	TransactionID string    `json:"transaction_id"`
	UserID        string    `json:"user_id"`
	CustomerEmail string    `json:"customer_email,omitempty"`
	PlanType      string    `json:"plan_type"`
	Amount        float64   `json:"amount"`
	PostsPerMonth int       `json:"posts_per_month"`
	BillingCycle  string    `json:"billing_cycle"`
	Status        string    `json:"status"`
	CompletedAt   time.Time `json:"completed_at"`
	CreatedAt     time.Time `json:"created_at"`
}

// VerifyPaymentRequest используется для приёма данных из JSON-запроса
// на подтверждение платежа клиентом.
type VerifyPaymentRequest struct {
	Plan          string  `json:"plan" validate:"required"`
	BillingCycle  string  `json:"billingCycle"`
	PostsPerMonth int     `json:"postsPerMonth" validate:"required,gt=0"`
	Amount        float64 `json:"amount"`
	SessionID     string  `json:"sessionId"`
	Email         string  `json:"email"`
	UserID        string  `json:"userId"`
}
