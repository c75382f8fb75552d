// Package paymentverify обрабатывает подтверждение платежа клиентом.
package paymentverify

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/middleware"
	"github.com/go-chi/render"
	"github.com/go-playground/validator"

	"github.com/magabrotheeeer/reddigen-backend/internal/http/middlewarectx"
	"github.com/magabrotheeeer/reddigen-backend/internal/http/response"
	"github.com/magabrotheeeer/reddigen-backend/internal/lib/sl"
	"github.com/magabrotheeeer/reddigen-backend/internal/models"
	"github.com/magabrotheeeer/reddigen-backend/internal/services/payment"
)

// Service определяет интерфейс сервиса платежей.
type Service interface {
	Verify(ctx context.Context, authUserID string, req models.VerifyPaymentRequest) (string, bool, error)
}

// Handler обрабатывает запросы подтверждения платежа.
type Handler struct {
	log      *slog.Logger
	service  Service
	validate *validator.Validate
}

// New создает новый экземпляр Handler.
func New(log *slog.Logger, service Service) *Handler {
	return &Handler{
		log:      log,
		service:  service,
		validate: validator.New(),
	}
}

// VerifyResponse описывает результат подтверждения платежа.
type VerifyResponse struct {
	Success          bool   `json:"success"`
	Message          string `json:"message"`
	UserID           string `json:"userId,omitempty"`
	AlreadyProcessed bool   `json:"alreadyProcessed,omitempty"`
}

// ServeHTTP godoc
// @Summary Подтвердить платеж
// @Description Активирует тарифный план по данным платежа. Авторизация не обязательна: пользователь определяется по токену, userId или email
// @Tags Payments
// @Accept json
// @Produce json
// @Param request body models.VerifyPaymentRequest true "Данные платежа"
// @Success 200 {object} VerifyResponse "План активирован"
// @Failure 400 {object} response.ErrorResponse "Некорректный JSON или неизвестный пользователь"
// @Failure 422 {object} response.ErrorResponse "Ошибка валидации"
// @Failure 500 {object} response.ErrorResponse "Ошибка сервера"
// @Router /payment/verify [post]
func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	const op = "handlers.payment.verify"
	log := h.log.With(
		slog.String("op", op),
		slog.String("request_id", middleware.GetReqID(r.Context())),
	)

	var req models.VerifyPaymentRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		log.Error("failed to decode request", sl.Err(err))
		render.Status(r, http.StatusBadRequest)
		render.JSON(w, r, response.Error("invalid request body"))
		return
	}

	if err := h.validate.Struct(req); err != nil {
		log.Error("validation failed", sl.Err(err))
		render.Status(r, http.StatusUnprocessableEntity)
		render.JSON(w, r, response.ValidationError(err.(validator.ValidationErrors)))
		return
	}

	// авторизация опциональна: после оплаты у клиента может не быть токена
	authUserID, _ := r.Context().Value(middlewarectx.UserUID).(string)

	userID, alreadyProcessed, err := h.service.Verify(r.Context(), authUserID, req)
	if err != nil {
		if errors.Is(err, payment.ErrUnknownUser) {
			log.Error("cannot identify user")
			render.Status(r, http.StatusBadRequest)
			render.JSON(w, r, response.Error("Cannot identify user - no userId or email provided"))
			return
		}
		log.Error("payment verification failed", sl.Err(err))
		render.Status(r, http.StatusInternalServerError)
		render.JSON(w, r, response.Error("payment verification failed"))
		return
	}

	if alreadyProcessed {
		log.Info("payment already processed", slog.String("session_id", req.SessionID))
		render.JSON(w, r, VerifyResponse{
			Success:          true,
			Message:          "Plan already activated",
			AlreadyProcessed: true,
		})
		return
	}

	log.Info("payment verified", slog.String("user_id", userID))
	render.JSON(w, r, VerifyResponse{
		Success: true,
		Message: "Payment verified and plan activated successfully",
		UserID:  userID,
	})
}
