// Package deleteaccount обрабатывает удаление учетной записи.
package deleteaccount

import (
	"context"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/middleware"
	"github.com/go-chi/render"

	"github.com/magabrotheeeer/reddigen-backend/internal/http/middlewarectx"
	"github.com/magabrotheeeer/reddigen-backend/internal/http/response"
	"github.com/magabrotheeeer/reddigen-backend/internal/lib/sl"
)

// Service определяет интерфейс сервиса данных пользователя.
type Service interface {
	DeleteAccount(ctx context.Context, userID string) error
}

// Handler обрабатывает запросы удаления учетной записи.
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

// ServeHTTP godoc
// @Summary Удалить учетную запись
// @Description Удаляет все данные пользователя и его учетную запись
// @Tags Auth
// @Produce json
// @Success 200 {object} response.Response "Учетная запись удалена"
// @Failure 401 {object} response.ErrorResponse "Пользователь не авторизован"
// @Failure 500 {object} response.ErrorResponse "Ошибка сервера"
// @Router /auth/delete-account [post]
// @Security BearerAuth
func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	const op = "handlers.account.deleteaccount"
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

	if err := h.service.DeleteAccount(r.Context(), userUID); err != nil {
		log.Error("failed to delete account", sl.Err(err))
		render.Status(r, http.StatusInternalServerError)
		render.JSON(w, r, response.Error("failed to delete account"))
		return
	}

	log.Info("account deleted", slog.String("user_id", userUID))
	render.JSON(w, r, response.OK())
}
