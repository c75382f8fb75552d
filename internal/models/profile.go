// Package models содержит доменные структуры профиля, тарифного плана,
// истории постов и платежей, а также вспомогательные типы для приёма
// данных из JSON-запросов.
package models

import "time"

// Profile представляет профиль пользователя.
// Создается лениво при первом запросе данных, если записи еще нет.
type Profile struct {
	UserID      string    `json:"user_id"`
	Email       string    `json:"email"`
	DisplayName string    `json:"display_name"`
	Bio         string    `json:"bio,omitempty"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}

// UpdateProfileRequest используется для приёма данных из JSON-запроса
// на обновление профиля.
type UpdateProfileRequest struct {
	DisplayName string `json:"displayName" validate:"required"`
	Bio         string `json:"bio"`
}
