package auth

import (
	"context"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// SupabaseClaims описывает claims access-токена GoTrue,
// используемые сервисом.
type SupabaseClaims struct {
	Email                string `json:"email"`
	jwt.RegisteredClaims        // Встроенные стандартные claims JWT (ExpiresAt, IssuedAt и пр.)
}

// LocalVerifier проверяет подпись access-токена секретом проекта,
// не обращаясь к провайдеру по сети.
type LocalVerifier struct {
	secretKey string // Секретный ключ проекта для проверки подписи.
	parser    *jwt.Parser
}

// NewLocalVerifier создаёт новый LocalVerifier на основе секретного ключа.
func NewLocalVerifier(secretKey string) *LocalVerifier {
	return &LocalVerifier{
		secretKey: secretKey,
		parser: jwt.NewParser(
			jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Name}),
			jwt.WithLeeway(30 * time.Second),
		),
	}
}

// Verify парсит токен, проверяет его подпись и срок действия,
// возвращает пользователя, если токен корректен.
func (v *LocalVerifier) Verify(_ context.Context, tokenStr string) (*AuthUser, error) {
	const op = "auth.LocalVerifier.Verify"
	token, err := v.parser.ParseWithClaims(tokenStr, &SupabaseClaims{}, func(_ *jwt.Token) (any, error) {
		return []byte(v.secretKey), nil
	})
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, ErrInvalidToken)
	}
	claims, ok := token.Claims.(*SupabaseClaims)
	if !ok || !token.Valid || claims.Subject == "" {
		return nil, fmt.Errorf("%s: %w", op, ErrInvalidToken)
	}
	return &AuthUser{
		ID:    claims.Subject,
		Email: claims.Email,
	}, nil
}
