// Package userdata обрабатывает выдачу агрегированных данных пользователя.
package userdata

import (
	"context"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/middleware"
	"github.com/go-chi/render"

	"github.com/magabrotheeeer/reddigen-backend/internal/http/middlewarectx"
	"github.com/magabrotheeeer/reddigen-backend/internal/http/response"
	"github.com/magabrotheeeer/reddigen-backend/internal/lib/sl"
	"github.com/magabrotheeeer/reddigen-backend/internal/services/user"
)

// Service определяет интерфейс сервиса данных пользователя.
type Service interface {
	GetData(ctx context.Context, userID, email string) (*user.Data, error)
}

// Handler обрабатывает запросы данных пользователя.
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

// DataResponse описывает ответ с данными пользователя.
type DataResponse struct {
	Success bool       `json:"success"`
	Data    *user.Data `json:"data"`
}

// ServeHTTP godoc
// @Summary Данные пользователя
// @Description Возвращает профиль, тарифный план и историю постов. Отсутствующие профиль и план создаются автоматически
// @Tags User
// @Produce json
// @Success 200 {object} DataResponse "Данные пользователя"
// @Failure 401 {object} response.ErrorResponse "Пользователь не авторизован"
// @Failure 500 {object} response.ErrorResponse "Ошибка сервера"
// @Router /user/data [get]
// @Security BearerAuth
func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	const op = "handlers.user.data"
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
	email, _ := r.Context().Value(middlewarectx.UserEmail).(string)

	data, err := h.service.GetData(r.Context(), userUID, email)
	if err != nil {
		log.Error("failed to load user data", sl.Err(err))
		render.Status(r, http.StatusInternalServerError)
		render.JSON(w, r, response.Error("failed to load user data"))
		return
	}

	render.JSON(w, r, DataResponse{Success: true, Data: data})
}
