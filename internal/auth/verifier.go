// Package auth реализует проверку bearer-токенов внешнего провайдера
// аутентификации и административные операции над учетными записями.
//
// Поддерживаются два режима проверки: удаленный обмен токена на
// пользователя через HTTP API провайдера и локальная проверка подписи
// JWT секретом проекта.
package auth

import (
	"context"
	"errors"
)

// AuthUser представляет пользователя, извлеченного из bearer-токена.
type AuthUser struct {
	ID    string `json:"id"`
	Email string `json:"email"`
}

// ErrInvalidToken возвращается, когда провайдер отверг токен
// или его подпись/срок действия не прошли проверку.
var ErrInvalidToken = errors.New("invalid or expired token")

// TokenVerifier описывает интерфейс обмена bearer-токена на пользователя.
type TokenVerifier interface {
	Verify(ctx context.Context, token string) (*AuthUser, error)
}
