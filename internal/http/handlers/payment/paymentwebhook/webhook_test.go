package paymentwebhook

import (
	"bytes"
	"context"
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/magabrotheeeer/reddigen-backend/internal/services/payment"
)

type recordingService struct {
	mu          sync.Mutex
	validateErr error
	bodies      [][]byte
	done        chan struct{}
}

func newRecordingService() *recordingService {
	return &recordingService{done: make(chan struct{}, 1)}
}

func (s *recordingService) ValidateEvent(_ []byte) error {
	return s.validateErr
}

func (s *recordingService) ProcessEvent(_ context.Context, body []byte) error {
	s.mu.Lock()
	s.bodies = append(s.bodies, body)
	s.mu.Unlock()
	s.done <- struct{}{}
	return nil
}

func (s *recordingService) calls() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.bodies)
}

func newNoopLogger() *slog.Logger {
	h := slog.NewTextHandler(io.Discard, &slog.HandlerOptions{})
	return slog.New(h)
}

func sign(body []byte, secret string) string {
	mac := hmac.New(sha256.New, []byte(secret))
	mac.Write(body)
	return hex.EncodeToString(mac.Sum(nil))
}

const testSecret = "whsec_test"

func TestWebhookHandler_ValidSignature(t *testing.T) {
	service := newRecordingService()
	handler := New(newNoopLogger(), service, testSecret)

	body := []byte(`{"type":"payment.succeeded","data":{"object":{"id":"sess_1","metadata":{"userId":"u1"}}}}`)
	req := httptest.NewRequest(http.MethodPost, "/api/dodo/webhook", bytes.NewReader(body))
	req.Header.Set("dodo-signature", sign(body, testSecret))

	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"received":true}`, rec.Body.String())

	select {
	case <-service.done:
	case <-time.After(time.Second):
		t.Fatal("event was not processed")
	}
	assert.Equal(t, 1, service.calls())
}

func TestWebhookHandler_FallbackSignatureHeader(t *testing.T) {
	service := newRecordingService()
	handler := New(newNoopLogger(), service, testSecret)

	body := []byte(`{"type":"invoice.created"}`)
	req := httptest.NewRequest(http.MethodPost, "/api/dodo/webhook", bytes.NewReader(body))
	req.Header.Set("webhook-signature", sign(body, testSecret))

	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)
	select {
	case <-service.done:
	case <-time.After(time.Second):
		t.Fatal("event was not processed")
	}
}

func TestWebhookHandler_InvalidSignature(t *testing.T) {
	cases := []struct {
		name      string
		signature string
	}{
		{"неверная подпись", "deadbeef"},
		{"подпись чужим секретом", sign([]byte(`{"type":"payment.succeeded"}`), "other-secret")},
		{"отсутствует подпись", ""},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			service := newRecordingService()
			handler := New(newNoopLogger(), service, testSecret)

			body := []byte(`{"type":"payment.succeeded"}`)
			req := httptest.NewRequest(http.MethodPost, "/api/dodo/webhook", bytes.NewReader(body))
			if tc.signature != "" {
				req.Header.Set("dodo-signature", tc.signature)
			}

			rec := httptest.NewRecorder()
			handler.ServeHTTP(rec, req)

			require.Equal(t, http.StatusUnauthorized, rec.Code)
			assert.JSONEq(t, `{"success":false,"error":"Invalid signature"}`, rec.Body.String())
			assert.Zero(t, service.calls())
		})
	}
}

// Активационное событие без userId отклоняется синхронно, до подтверждения.
func TestWebhookHandler_MissingUserID(t *testing.T) {
	service := newRecordingService()
	service.validateErr = payment.ErrUnknownUser
	handler := New(newNoopLogger(), service, testSecret)

	body := []byte(`{"type":"payment.succeeded","data":{"object":{"id":"sess_1","metadata":{}}}}`)
	req := httptest.NewRequest(http.MethodPost, "/api/dodo/webhook", bytes.NewReader(body))
	req.Header.Set("dodo-signature", sign(body, testSecret))

	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)

	require.Equal(t, http.StatusBadRequest, rec.Code)
	assert.JSONEq(t, `{"success":false,"error":"Missing userId"}`, rec.Body.String())
	assert.Zero(t, service.calls())
}

func TestWebhookHandler_MalformedBody(t *testing.T) {
	service := newRecordingService()
	service.validateErr = errors.New("unexpected end of JSON input")
	handler := New(newNoopLogger(), service, testSecret)

	body := []byte(`{"type":`)
	req := httptest.NewRequest(http.MethodPost, "/api/dodo/webhook", bytes.NewReader(body))
	req.Header.Set("dodo-signature", sign(body, testSecret))

	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)

	require.Equal(t, http.StatusBadRequest, rec.Code)
	assert.JSONEq(t, `{"success":false,"error":"Webhook failed"}`, rec.Body.String())
	assert.Zero(t, service.calls())
}

func TestWebhookHandler_EmptySecretRejectsAll(t *testing.T) {
	service := newRecordingService()
	handler := New(newNoopLogger(), service, "")

	body := []byte(`{"type":"payment.succeeded"}`)
	req := httptest.NewRequest(http.MethodPost, "/api/dodo/webhook", bytes.NewReader(body))
	req.Header.Set("dodo-signature", sign(body, ""))

	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)

	require.Equal(t, http.StatusUnauthorized, rec.Code)
	assert.Zero(t, service.calls())
}
