// Package rules обрабатывает запросы правил сабреддита.
package rules

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi"
	"github.com/go-chi/chi/middleware"
	"github.com/go-chi/render"

	"github.com/magabrotheeeer/reddigen-backend/internal/http/response"
	"github.com/magabrotheeeer/reddigen-backend/internal/lib/sl"
	"github.com/magabrotheeeer/reddigen-backend/internal/redditrules"
)

// Fetcher загружает правила сабреддита.
type Fetcher interface {
	Fetch(ctx context.Context, subreddit string) (string, error)
}

// Cache описывает методы для кэширования данных.
type Cache interface {
	Get(key string, result any) (bool, error)
	Set(key string, value any, expiration time.Duration) error
}

// Handler обрабатывает запросы правил сабреддита.
type Handler struct {
	log     *slog.Logger
	fetcher Fetcher
	cache   Cache
}

// New создает новый экземпляр Handler.
func New(log *slog.Logger, fetcher Fetcher, cache Cache) *Handler {
	return &Handler{
		log:     log,
		fetcher: fetcher,
		cache:   cache,
	}
}

const cacheTTL = time.Hour

// RulesResponse описывает ответ с правилами сабреддита.
type RulesResponse struct {
	Success   bool   `json:"success"`
	Subreddit string `json:"subreddit"`
	Rules     string `json:"rules"`
}

// ServeHTTP godoc
// @Summary Правила сабреддита
// @Description Возвращает правила сабреддита одним текстовым блоком, результат кэшируется
// @Tags Reddit
// @Produce json
// @Param subreddit path string true "Имя сабреддита"
// @Success 200 {object} RulesResponse "Правила сабреддита"
// @Failure 403 {object} response.ErrorResponse "Сабреддит приватный"
// @Failure 404 {object} response.ErrorResponse "Сабреддит не найден"
// @Failure 500 {object} response.ErrorResponse "Ошибка сервера"
// @Router /reddit-rules/{subreddit} [get]
func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	const op = "handlers.rules"
	log := h.log.With(
		slog.String("op", op),
		slog.String("request_id", middleware.GetReqID(r.Context())),
	)

	subreddit := redditrules.Normalize(chi.URLParam(r, "subreddit"))
	cacheKey := "reddit-rules:" + subreddit

	var cached string
	found, err := h.cache.Get(cacheKey, &cached)
	if err != nil {
		log.Warn("cache lookup failed", slog.String("key", cacheKey), sl.Err(err))
	}
	if found {
		render.JSON(w, r, RulesResponse{Success: true, Subreddit: subreddit, Rules: cached})
		return
	}

	rulesText, err := h.fetcher.Fetch(r.Context(), subreddit)
	if err != nil {
		switch {
		case errors.Is(err, redditrules.ErrNotFound):
			log.Error("subreddit not found", slog.String("subreddit", subreddit))
			render.Status(r, http.StatusNotFound)
			render.JSON(w, r, response.Error("Subreddit not found"))
		case errors.Is(err, redditrules.ErrPrivate):
			log.Error("subreddit is private", slog.String("subreddit", subreddit))
			render.Status(r, http.StatusForbidden)
			render.JSON(w, r, response.Error("Subreddit is private"))
		default:
			log.Error("failed to fetch rules", sl.Err(err))
			render.Status(r, http.StatusInternalServerError)
			render.JSON(w, r, response.Error("Failed to fetch rules"))
		}
		return
	}

	if err := h.cache.Set(cacheKey, rulesText, cacheTTL); err != nil {
		log.Warn("failed to cache rules", slog.String("key", cacheKey), sl.Err(err))
	}

	render.JSON(w, r, RulesResponse{Success: true, Subreddit: subreddit, Rules: rulesText})
}
