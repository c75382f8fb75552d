package models

import "time"

// Типы тарифных планов.
const (
	PlanFree         = "free"
	PlanStarter      = "starter"
	PlanProfessional = "professional"
	PlanEnterprise   = "enterprise"
)

// Статусы тарифного плана.
const (
	PlanStatusActive = "active"
)

// Квота постов бесплатного плана, выдается при ленивом создании записи.
const FreePlanCredits = 10

// Plan представляет текущий тарифный план пользователя: тип, остаток
// кредитов, квоту постов в месяц, биллинговый цикл и сроки действия.
// Одна запись на пользователя, обновляется через upsert при покупке.
type Plan struct {
	UserID           string     `json:"user_id"`
	PlanType         string     `json:"plan_type"`
	PostsPerMonth    int        `json:"posts_per_month"`
	CreditsRemaining int        `json:"credits_remaining"`
	BillingCycle     string     `json:"billing_cycle"`
	Amount           float64    `json:"amount"`
	Status           string     `json:"status"`
	ActivatedAt      time.Time  `json:"activated_at"`
	ExpiresAt        *time.Time `json:"expires_at,omitempty"`
	UpdatedAt        time.Time  `json:"updated_at"`
}
