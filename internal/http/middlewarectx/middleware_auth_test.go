package middlewarectx

import (
	"context"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/magabrotheeeer/reddigen-backend/internal/auth"
)

type stubVerifier struct {
	user *auth.AuthUser
	err  error
}

func (s *stubVerifier) Verify(_ context.Context, _ string) (*auth.AuthUser, error) {
	return s.user, s.err
}

func newNoopLogger() *slog.Logger {
	h := slog.NewTextHandler(io.Discard, &slog.HandlerOptions{})
	return slog.New(h)
}

func TestAuthMiddleware(t *testing.T) {
	cases := []struct {
		name           string
		header         string
		verifier       *stubVerifier
		expectedStatus int
		expectNext     bool
	}{
		{
			name:           "валидный токен пропускает запрос",
			header:         "Bearer good-token",
			verifier:       &stubVerifier{user: &auth.AuthUser{ID: "u1", Email: "a@b.c"}},
			expectedStatus: http.StatusOK,
			expectNext:     true,
		},
		{
			name:           "отсутствует заголовок",
			header:         "",
			verifier:       &stubVerifier{},
			expectedStatus: http.StatusUnauthorized,
		},
		{
			name:           "не bearer схема",
			header:         "Basic dXNlcjpwYXNz",
			verifier:       &stubVerifier{},
			expectedStatus: http.StatusUnauthorized,
		},
		{
			name:           "провайдер отклонил токен",
			header:         "Bearer bad-token",
			verifier:       &stubVerifier{err: auth.ErrInvalidToken},
			expectedStatus: http.StatusUnauthorized,
		},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			nextCalled := false
			next := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				nextCalled = true
				assert.Equal(t, "u1", r.Context().Value(UserUID))
				assert.Equal(t, "a@b.c", r.Context().Value(UserEmail))
			})

			handler := AuthMiddleware(tc.verifier, newNoopLogger())(next)

			req := httptest.NewRequest(http.MethodGet, "/api/user/data", nil)
			if tc.header != "" {
				req.Header.Set("Authorization", tc.header)
			}
			rec := httptest.NewRecorder()
			handler.ServeHTTP(rec, req)

			require.Equal(t, tc.expectedStatus, rec.Code)
			assert.Equal(t, tc.expectNext, nextCalled)
		})
	}
}

func TestOptionalAuthMiddleware(t *testing.T) {
	cases := []struct {
		name        string
		header      string
		verifier    *stubVerifier
		expectedUID any
	}{
		{
			name:        "валидный токен добавляет пользователя в контекст",
			header:      "Bearer good-token",
			verifier:    &stubVerifier{user: &auth.AuthUser{ID: "u1", Email: "a@b.c"}},
			expectedUID: "u1",
		},
		{
			name:        "без заголовка запрос проходит без пользователя",
			header:      "",
			verifier:    &stubVerifier{},
			expectedUID: nil,
		},
		{
			name:        "невалидный токен не блокирует запрос",
			header:      "Bearer bad-token",
			verifier:    &stubVerifier{err: auth.ErrInvalidToken},
			expectedUID: nil,
		},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			nextCalled := false
			next := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				nextCalled = true
				assert.Equal(t, tc.expectedUID, r.Context().Value(UserUID))
			})

			handler := OptionalAuthMiddleware(tc.verifier, newNoopLogger())(next)

			req := httptest.NewRequest(http.MethodPost, "/api/payment/verify", nil)
			if tc.header != "" {
				req.Header.Set("Authorization", tc.header)
			}
			rec := httptest.NewRecorder()
			handler.ServeHTTP(rec, req)

			require.Equal(t, http.StatusOK, rec.Code)
			assert.True(t, nextCalled)
		})
	}
}
