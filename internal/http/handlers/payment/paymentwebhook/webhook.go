// Package paymentwebhook обрабатывает webhook-события платежного провайдера.
package paymentwebhook

import (
	"context"
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/middleware"
	"github.com/go-chi/render"

	"github.com/magabrotheeeer/reddigen-backend/internal/http/response"
	"github.com/magabrotheeeer/reddigen-backend/internal/lib/sl"
	"github.com/magabrotheeeer/reddigen-backend/internal/services/payment"
)

// Service определяет интерфейс обработки платежных событий.
type Service interface {
	ValidateEvent(body []byte) error
	ProcessEvent(ctx context.Context, body []byte) error
}

// Handler обрабатывает webhook-запросы провайдера.
type Handler struct {
	log     *slog.Logger
	service Service
	secret  string
}

// New создает новый экземпляр Handler.
func New(log *slog.Logger, service Service, secret string) *Handler {
	return &Handler{
		log:     log,
		service: service,
		secret:  secret,
	}
}

const (
	maxBodySize    = 1 << 20
	processTimeout = 30 * time.Second
)

// AckResponse подтверждает получение события.
type AckResponse struct {
	Received bool `json:"received"`
}

// ServeHTTP godoc
// @Summary Webhook платежного провайдера
// @Description Проверяет HMAC-подпись и тело события, подтверждает получение и активирует план асинхронно
// @Tags Payments
// @Accept json
// @Produce json
// @Success 200 {object} AckResponse "Событие принято"
// @Failure 400 {object} response.ErrorResponse "Некорректное тело запроса"
// @Failure 401 {object} response.ErrorResponse "Неверная подпись"
// @Router /dodo/webhook [post]
func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	const op = "handlers.payment.webhook"
	log := h.log.With(
		slog.String("op", op),
		slog.String("request_id", middleware.GetReqID(r.Context())),
	)

	body, err := io.ReadAll(io.LimitReader(r.Body, maxBodySize))
	if err != nil {
		log.Error("failed to read request body", sl.Err(err))
		render.Status(r, http.StatusBadRequest)
		render.JSON(w, r, response.Error("Webhook failed"))
		return
	}

	signature := r.Header.Get("dodo-signature")
	if signature == "" {
		signature = r.Header.Get("webhook-signature")
	}
	if !h.verifySignature(body, signature) {
		log.Error("invalid webhook signature")
		render.Status(r, http.StatusUnauthorized)
		render.JSON(w, r, response.Error("Invalid signature"))
		return
	}

	// событие без userId отклоняется до подтверждения доставки
	if err := h.service.ValidateEvent(body); err != nil {
		if errors.Is(err, payment.ErrUnknownUser) {
			log.Error("missing userId in event metadata")
			render.Status(r, http.StatusBadRequest)
			render.JSON(w, r, response.Error("Missing userId"))
			return
		}
		log.Error("invalid webhook payload", sl.Err(err))
		render.Status(r, http.StatusBadRequest)
		render.JSON(w, r, response.Error("Webhook failed"))
		return
	}

	// провайдер ждет быстрого подтверждения, активация идет фоном
	render.JSON(w, r, AckResponse{Received: true})

	go func() {
		ctx, cancel := context.WithTimeout(context.Background(), processTimeout)
		defer cancel()
		if err := h.service.ProcessEvent(ctx, body); err != nil {
			log.Error("webhook processing failed", sl.Err(err))
		}
	}()
}

// verifySignature сравнивает HMAC-SHA256 подпись тела запроса
// с заявленной, не раскрывая позицию расхождения.
func (h *Handler) verifySignature(body []byte, signature string) bool {
	if h.secret == "" || signature == "" {
		return false
	}
	mac := hmac.New(sha256.New, []byte(h.secret))
	mac.Write(body)
	expected := hex.EncodeToString(mac.Sum(nil))
	return hmac.Equal([]byte(expected), []byte(signature))
}
