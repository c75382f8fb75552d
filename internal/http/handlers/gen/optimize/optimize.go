// Package optimize обрабатывает оптимизацию существующих постов.
package optimize

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
	"github.com/magabrotheeeer/reddigen-backend/internal/services/generation"
)

// Service определяет интерфейс сервиса генерации.
type Service interface {
	OptimizePost(ctx context.Context, userID string, req models.OptimizePostRequest) (*generation.OptimizeResult, error)
}

// Handler обрабатывает запросы оптимизации постов.
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

// OptimizeResponse описывает ответ с улучшенным постом.
type OptimizeResponse struct {
	Success          bool   `json:"success"`
	OptimizedPost    string `json:"optimizedPost"`
	CreditsRemaining int    `json:"creditsRemaining"`
}

// ServeHTTP godoc
// @Summary Оптимизировать пост
// @Description Улучшает существующий пост под правила сабреддита и списывает один кредит
// @Tags Reddit
// @Accept json
// @Produce json
// @Param request body models.OptimizePostRequest true "Пост для оптимизации"
// @Success 200 {object} OptimizeResponse "Улучшенный пост"
// @Failure 400 {object} response.ErrorResponse "Некорректный JSON"
// @Failure 401 {object} response.ErrorResponse "Пользователь не авторизован"
// @Failure 402 {object} response.ErrorResponse "Кредиты исчерпаны"
// @Failure 422 {object} response.ErrorResponse "Ошибка валидации"
// @Failure 500 {object} response.ErrorResponse "Ошибка сервера или модели"
// @Router /optimize-post [post]
// @Security BearerAuth
func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	const op = "handlers.gen.optimize"
	log := h.log.With(
		slog.String("op", op),
		slog.String("request_id", middleware.GetReqID(r.Context())),
	)

	var req models.OptimizePostRequest
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

	userUID, ok := r.Context().Value(middlewarectx.UserUID).(string)
	if !ok || userUID == "" {
		log.Error("user UID not found in context")
		render.Status(r, http.StatusUnauthorized)
		render.JSON(w, r, response.Error("unauthorized"))
		return
	}

	result, err := h.service.OptimizePost(r.Context(), userUID, req)
	if err != nil {
		switch {
		case errors.Is(err, generation.ErrNoCredits):
			log.Error("no credits remaining")
			render.Status(r, http.StatusPaymentRequired)
			render.JSON(w, r, response.Error("No credits remaining"))
		case errors.Is(err, generation.ErrPlanNotFound):
			log.Error("plan not found")
			render.Status(r, http.StatusInternalServerError)
			render.JSON(w, r, response.Error("Could not verify plan"))
		default:
			log.Error("optimization failed", sl.Err(err))
			render.Status(r, http.StatusInternalServerError)
			render.JSON(w, r, response.Error("optimization failed"))
		}
		return
	}

	log.Info("post optimized", slog.String("subreddit", req.Subreddit))
	render.JSON(w, r, OptimizeResponse{
		Success:          true,
		OptimizedPost:    result.OptimizedPost,
		CreditsRemaining: result.CreditsRemaining,
	})
}
