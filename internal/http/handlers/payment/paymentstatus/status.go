// Package paymentstatus обрабатывает проверку статуса платежа.
package paymentstatus

import (
	"context"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi"
	"github.com/go-chi/chi/middleware"
	"github.com/go-chi/render"

	"github.com/magabrotheeeer/reddigen-backend/internal/http/middlewarectx"
	"github.com/magabrotheeeer/reddigen-backend/internal/http/response"
	"github.com/magabrotheeeer/reddigen-backend/internal/lib/sl"
	"github.com/magabrotheeeer/reddigen-backend/internal/models"
	"github.com/magabrotheeeer/reddigen-backend/internal/services/payment"
)

// Service определяет интерфейс сервиса платежей.
type Service interface {
	CheckStatus(ctx context.Context, userID, sessionID string) (*payment.Status, bool, error)
}

// Handler обрабатывает запросы статуса платежа.
type Handler struct {
	log     *slog.Logger
	service Service
}

// New создает новый экземпляр Handler.
func New(log *slog.Logger, service Service) *Handler {
	return &Handler{
		log:     log,
		service: service,
	}
}

// StatusResponse описывает ответ со статусом платежа.
type StatusResponse struct {
	Success bool            `json:"success"`
	Status  string          `json:"status"`
	Payment *models.Payment `json:"payment,omitempty"`
	Plan    *models.Plan    `json:"plan,omitempty"`
}

// ServeHTTP godoc
// @Summary Статус платежа
// @Description Возвращает платеж пользователя по идентификатору сессии и его текущий план
// @Tags Payments
// @Produce json
// @Param sessionId path string true "Идентификатор сессии оплаты"
// @Success 200 {object} StatusResponse "Статус платежа"
// @Failure 401 {object} response.ErrorResponse "Пользователь не авторизован"
// @Failure 500 {object} response.ErrorResponse "Ошибка сервера"
// @Router /payment/status/{sessionId} [get]
// @Security BearerAuth
func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	const op = "handlers.payment.status"
	log := h.log.With(
		slog.String("op", op),
		slog.String("request_id", middleware.GetReqID(r.Context())),
	)

	userUID, ok := r.Context().Value(middlewarectx.UserUID).(string)
	if !ok || userUID == "" {
		log.Error("user UID not found in context")
		render.Status(r, http.StatusUnauthorized)
		render.JSON(w, r, response.Error("unauthorized"))
		return
	}

	sessionID := chi.URLParam(r, "sessionId")
	status, found, err := h.service.CheckStatus(r.Context(), userUID, sessionID)
	if err != nil {
		log.Error("failed to check payment status", sl.Err(err))
		render.Status(r, http.StatusInternalServerError)
		render.JSON(w, r, response.Error("failed to check payment status"))
		return
	}
	if !found {
		render.JSON(w, r, StatusResponse{Success: false, Status: "not_found"})
		return
	}

	render.JSON(w, r, StatusResponse{
		Success: true,
		Status:  status.Status,
		Payment: status.Payment,
		Plan:    status.Plan,
	})
}
