// Package proxy обрабатывает прямые запросы к языковой модели.
package proxy

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/middleware"
	"github.com/go-chi/render"
	"github.com/go-playground/validator"

	"github.com/magabrotheeeer/reddigen-backend/internal/http/response"
	"github.com/magabrotheeeer/reddigen-backend/internal/lib/sl"
)

// AIClient описывает генерацию текста по промпту.
type AIClient interface {
	Generate(ctx context.Context, prompt string, temperature float64) (string, error)
}

// PromptRequest представляет запрос с произвольным промптом.
type PromptRequest struct {
	Prompt string `json:"prompt" validate:"required"`
}

// PromptResponse описывает ответ модели.
type PromptResponse struct {
	Success bool   `json:"success"`
	Content string `json:"content"`
}

// Handler проксирует промпты в языковую модель.
type Handler struct {
	log      *slog.Logger
	ai       AIClient
	validate *validator.Validate
}

// New создает новый экземпляр Handler.
func New(log *slog.Logger, ai AIClient) *Handler {
	return &Handler{
		log:      log,
		ai:       ai,
		validate: validator.New(),
	}
}

const proxyTemperature = 0.7

// ServeHTTP godoc
// @Summary Запрос к модели
// @Description Выполняет произвольный промпт через языковую модель без списания кредитов
// @Tags Reddit
// @Accept json
// @Produce json
// @Param request body PromptRequest true "Промпт"
// @Success 200 {object} PromptResponse "Ответ модели"
// @Failure 400 {object} response.ErrorResponse "Промпт не задан"
// @Failure 500 {object} response.ErrorResponse "Ошибка модели"
// @Router /gemini [post]
func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	const op = "handlers.gen.proxy"
	log := h.log.With(
		slog.String("op", op),
		slog.String("request_id", middleware.GetReqID(r.Context())),
	)

	var req PromptRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		log.Error("failed to decode request", sl.Err(err))
		render.Status(r, http.StatusBadRequest)
		render.JSON(w, r, response.Error("invalid request body"))
		return
	}
	if err := h.validate.Struct(req); err != nil {
		log.Error("validation failed", sl.Err(err))
		render.Status(r, http.StatusBadRequest)
		render.JSON(w, r, response.Error("Prompt required"))
		return
	}

	content, err := h.ai.Generate(r.Context(), req.Prompt, proxyTemperature)
	if err != nil {
		log.Error("model request failed", sl.Err(err))
		render.Status(r, http.StatusInternalServerError)
		render.JSON(w, r, response.Error("model request failed"))
		return
	}

	render.JSON(w, r, PromptResponse{Success: true, Content: content})
}
