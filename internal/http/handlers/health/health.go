// Package health обрабатывает проверочные запросы к серверу.
package health

import (
	"net/http"
	"time"

	"github.com/go-chi/render"
)

// InfoResponse описывает ответ проверочного эндпоинта.
type InfoResponse struct {
	Message   string   `json:"message"`
	Mode      string   `json:"mode"`
	Features  []string `json:"features"`
	Timestamp string   `json:"timestamp"`
	Supabase  string   `json:"supabase"`
	Gemini    string   `json:"gemini"`
}

// RootResponse описывает ответ корневого эндпоинта.
type RootResponse struct {
	Message    string `json:"message"`
	Status     string `json:"status"`
	Version    string `json:"version"`
	AIProvider string `json:"ai_provider"`
}

// Handler обрабатывает проверочные запросы.
type Handler struct {
	mode             string
	supabaseEnabled  bool
	geminiConfigured bool
}

// New создает новый экземпляр Handler.
func New(mode string, supabaseEnabled, geminiConfigured bool) *Handler {
	return &Handler{
		mode:             mode,
		supabaseEnabled:  supabaseEnabled,
		geminiConfigured: geminiConfigured,
	}
}

// ServeHTTP godoc
// @Summary Проверка работоспособности
// @Description Возвращает состояние сервера и подключенных сервисов
// @Tags Health
// @Produce json
// @Success 200 {object} InfoResponse "Сервер работает"
// @Router /test [get]
func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	supabase := "Not configured"
	if h.supabaseEnabled {
		supabase = "Connected"
	}
	gemini := "Not configured"
	if h.geminiConfigured {
		gemini = "Configured"
	}

	render.JSON(w, r, InfoResponse{
		Message:   "Server working",
		Mode:      h.mode,
		Features:  []string{"Reddit Generation", "Post Optimization", "Dodo Payments", "User Management"},
		Timestamp: time.Now().UTC().Format(time.RFC3339),
		Supabase:  supabase,
		Gemini:    gemini,
	})
}

// Root возвращает краткую сводку о сервисе.
func Root(w http.ResponseWriter, r *http.Request) {
	render.JSON(w, r, RootResponse{
		Message:    "ReddiGen API Server",
		Status:     "online",
		Version:    "2.0.0",
		AIProvider: "Google Gemini 2.0 Flash",
	})
}
