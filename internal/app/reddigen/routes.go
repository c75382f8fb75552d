// Package reddigen предоставляет маршруты для основного приложения.
package reddigen

import (
	"log/slog"
	"net/http"

	"github.com/go-chi/chi"
	"github.com/go-chi/chi/middleware"
	"github.com/go-chi/cors"
	"github.com/go-chi/render"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	httpSwagger "github.com/swaggo/http-swagger"

	"github.com/magabrotheeeer/reddigen-backend/internal/auth"
	"github.com/magabrotheeeer/reddigen-backend/internal/cache"
	"github.com/magabrotheeeer/reddigen-backend/internal/config"
	"github.com/magabrotheeeer/reddigen-backend/internal/gemini"
	"github.com/magabrotheeeer/reddigen-backend/internal/http/handlers/account/changepassword"
	"github.com/magabrotheeeer/reddigen-backend/internal/http/handlers/account/deleteaccount"
	"github.com/magabrotheeeer/reddigen-backend/internal/http/handlers/gen/generate"
	"github.com/magabrotheeeer/reddigen-backend/internal/http/handlers/gen/optimize"
	"github.com/magabrotheeeer/reddigen-backend/internal/http/handlers/gen/proxy"
	"github.com/magabrotheeeer/reddigen-backend/internal/http/handlers/health"
	"github.com/magabrotheeeer/reddigen-backend/internal/http/handlers/payment/paymentstatus"
	"github.com/magabrotheeeer/reddigen-backend/internal/http/handlers/payment/paymentverify"
	"github.com/magabrotheeeer/reddigen-backend/internal/http/handlers/payment/paymentwebhook"
	"github.com/magabrotheeeer/reddigen-backend/internal/http/handlers/rules"
	"github.com/magabrotheeeer/reddigen-backend/internal/http/handlers/user/userdata"
	"github.com/magabrotheeeer/reddigen-backend/internal/http/handlers/user/userprofile"
	"github.com/magabrotheeeer/reddigen-backend/internal/http/middlewarectx"
	"github.com/magabrotheeeer/reddigen-backend/internal/http/response"
	"github.com/magabrotheeeer/reddigen-backend/internal/redditrules"
	generationservice "github.com/magabrotheeeer/reddigen-backend/internal/services/generation"
	paymentservice "github.com/magabrotheeeer/reddigen-backend/internal/services/payment"
	userservice "github.com/magabrotheeeer/reddigen-backend/internal/services/user"
)

// Deps собирает зависимости маршрутов приложения.
type Deps struct {
	Verifier          auth.TokenVerifier
	Cache             *cache.Cache
	GeminiClient      *gemini.Client
	RulesClient       *redditrules.Client
	UserService       *userservice.Service
	GenerationService *generationservice.Service
	PaymentService    *paymentservice.Service
}

// RegisterRoutes регистрирует все маршруты приложения.
func RegisterRoutes(r chi.Router, logger *slog.Logger, cfg *config.Config, deps Deps) {
	// Глобальные middleware
	r.Use(
		middleware.RequestID,
		middleware.Logger,
		middleware.Recoverer,
		middleware.URLFormat,
	)
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   cfg.AllowedOrigins,
		AllowedMethods:   []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type"},
		AllowCredentials: true,
		MaxAge:           300,
	}))

	r.Get("/", health.Root)

	r.Route("/api", func(r chi.Router) {
		// Открытые конечные точки
		r.Get("/test", health.New(cfg.Dodo.Mode, cfg.SupabaseURL != "", cfg.GeminiAPIKey != "").ServeHTTP)
		r.Get("/reddit-rules/{subreddit}", rules.New(logger, deps.RulesClient, deps.Cache).ServeHTTP)
		r.With(middlewarectx.RateLimitMiddleware(logger)).
			Post("/gemini", proxy.New(logger, deps.GeminiClient).ServeHTTP)

		// Подтверждение платежа: авторизация опциональна, пользователь
		// определяется по данным платежа, если токена нет
		r.With(middlewarectx.OptionalAuthMiddleware(deps.Verifier, logger)).
			Post("/payment/verify", paymentverify.New(logger, deps.PaymentService).ServeHTTP)

		// Webhook endpoint (без аутентификации)
		r.Post("/dodo/webhook", paymentwebhook.New(logger, deps.PaymentService, cfg.WebhookSecret).ServeHTTP)

		// Группа с проверкой bearer-токена
		r.Group(func(r chi.Router) {
			r.Use(middlewarectx.AuthMiddleware(deps.Verifier, logger))
			r.Get("/user/data", userdata.New(logger, deps.UserService).ServeHTTP)
			r.Put("/user/profile", userprofile.New(logger, deps.UserService).ServeHTTP)
			r.Get("/payment/status/{sessionId}", paymentstatus.New(logger, deps.PaymentService).ServeHTTP)
			r.Post("/auth/change-password", changepassword.New(logger, deps.UserService).ServeHTTP)
			r.Post("/auth/delete-account", deleteaccount.New(logger, deps.UserService).ServeHTTP)

			// AI-эндпоинты с лимитом частоты
			r.Group(func(r chi.Router) {
				r.Use(middlewarectx.RateLimitMiddleware(logger))
				r.Post("/generate-post", generate.New(logger, deps.GenerationService).ServeHTTP)
				r.Post("/optimize-post", optimize.New(logger, deps.GenerationService).ServeHTTP)
			})
		})

		r.NotFound(func(w http.ResponseWriter, req *http.Request) {
			render.Status(req, http.StatusNotFound)
			render.JSON(w, req, response.Error("Endpoint not found"))
		})
	})

	r.Handle("/metrics", promhttp.Handler())
	// Swagger docs endpoint
	r.Get("/docs/*", httpSwagger.WrapHandler)
}
