// Package generate обрабатывает генерацию постов для сабреддита.
package generate

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/middleware"
	"github.com/go-chi/render"
	"github.com/go-playground/validator"

	"github.com/magabrotheeeer/reddigen-backend/internal/gemini"
	"github.com/magabrotheeeer/reddigen-backend/internal/http/middlewarectx"
	"github.com/magabrotheeeer/reddigen-backend/internal/http/response"
	"github.com/magabrotheeeer/reddigen-backend/internal/lib/sl"
	"github.com/magabrotheeeer/reddigen-backend/internal/models"
	"github.com/magabrotheeeer/reddigen-backend/internal/services/generation"
)

// Service определяет интерфейс сервиса генерации.
type Service interface {
	GeneratePost(ctx context.Context, userID string, req models.GeneratePostRequest) (*generation.Result, error)
}

// Handler обрабатывает запросы генерации постов.
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

// GenerateResponse описывает ответ с сгенерированным постом.
type GenerateResponse struct {
	Success          bool                `json:"success"`
	Post             gemini.Post         `json:"post"`
	HistoryItem      *models.HistoryItem `json:"historyItem"`
	CreditsRemaining int                 `json:"creditsRemaining"`
}

// ServeHTTP godoc
// @Summary Сгенерировать пост
// @Description Генерирует пост для сабреддита с учетом его правил, списывает один кредит и сохраняет результат в историю
// @Tags Reddit
// @Accept json
// @Produce json
// @Param request body models.GeneratePostRequest true "Параметры генерации"
// @Success 200 {object} GenerateResponse "Сгенерированный пост"
// @Failure 400 {object} response.ErrorResponse "Некорректный JSON"
// @Failure 401 {object} response.ErrorResponse "Пользователь не авторизован"
// @Failure 402 {object} response.ErrorResponse "Кредиты исчерпаны"
// @Failure 422 {object} response.ErrorResponse "Ошибка валидации"
// @Failure 500 {object} response.ErrorResponse "Ошибка сервера или модели"
// @Router /generate-post [post]
// @Security BearerAuth
func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	const op = "handlers.gen.generate"
	log := h.log.With(
		slog.String("op", op),
		slog.String("request_id", middleware.GetReqID(r.Context())),
	)

	var req models.GeneratePostRequest
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

	result, err := h.service.GeneratePost(r.Context(), userUID, req)
	if err != nil {
		writeGenerationError(w, r, log, err)
		return
	}

	log.Info("post generated", slog.String("subreddit", req.Subreddit))
	render.JSON(w, r, GenerateResponse{
		Success:          true,
		Post:             result.Post,
		HistoryItem:      result.History,
		CreditsRemaining: result.CreditsRemaining,
	})
}

// writeGenerationError переводит ошибки сервиса генерации в HTTP-статусы.
func writeGenerationError(w http.ResponseWriter, r *http.Request, log *slog.Logger, err error) {
	switch {
	case errors.Is(err, generation.ErrNoCredits):
		log.Error("no credits remaining")
		render.Status(r, http.StatusPaymentRequired)
		render.JSON(w, r, response.Error("No credits remaining. Upgrade your plan."))
	case errors.Is(err, generation.ErrPlanNotFound):
		log.Error("plan not found")
		render.Status(r, http.StatusInternalServerError)
		render.JSON(w, r, response.Error("Could not verify plan"))
	default:
		log.Error("generation failed", sl.Err(err))
		render.Status(r, http.StatusInternalServerError)
		render.JSON(w, r, response.Error("generation failed"))
	}
}
