package accessgate

import (
	"log/slog"

	"github.com/go-chi/chi"
	"github.com/go-chi/chi/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	httpSwagger "github.com/swaggo/http-swagger"
	"golang.org/x/time/rate"

	accounthandler "github.com/magabrotheeeer/access-gate/internal/http/handlers/account"
	"github.com/magabrotheeeer/access-gate/internal/http/handlers/auth/login"
	"github.com/magabrotheeeer/access-gate/internal/http/handlers/auth/register"
	checkouthandler "github.com/magabrotheeeer/access-gate/internal/http/handlers/checkout"
	"github.com/magabrotheeeer/access-gate/internal/http/handlers/health"
	"github.com/magabrotheeeer/access-gate/internal/http/handlers/verify"
	"github.com/magabrotheeeer/access-gate/internal/http/handlers/webhook"
	"github.com/magabrotheeeer/access-gate/internal/http/middlewarectx"
	"github.com/magabrotheeeer/access-gate/internal/lib/jwt"
)

// AccountService — всё, что HTTP-слой вызывает у сервиса аккаунтов.
type AccountService interface {
	register.Service
	login.Service
	verify.Checker
	accounthandler.Service
}

// Deps — зависимости маршрутов.
type Deps struct {
	Accounts   AccountService
	Checkout   checkouthandler.Service
	Reconciler webhook.Reconciler
	JWT        jwt.Maker
	Limiter    *rate.Limiter
	Health     map[string]health.Check
}

// RegisterRoutes регистрирует все маршруты приложения.
func RegisterRoutes(r chi.Router, logger *slog.Logger, deps Deps) {
	r.Use(
		middleware.RequestID,
		middleware.RealIP,
		middleware.Logger,
		middleware.Recoverer,
	)

	// Открытые конечные точки с ограничением частоты
	r.Group(func(r chi.Router) {
		r.Use(middlewarectx.RateLimitMiddleware(logger, deps.Limiter))
		r.Post("/register", register.New(logger, deps.Accounts).ServeHTTP)
		r.Post("/login", login.New(logger, deps.Accounts).ServeHTTP)
		r.Post("/create-checkout-session", checkouthandler.New(logger, deps.Checkout).ServeHTTP)
	})

	// Webhook провайдера, аутентифицируется подписью
	r.Post("/webhook", webhook.New(logger, deps.Reconciler).ServeHTTP)
	r.Get("/verify", verify.New(logger, deps.Accounts).ServeHTTP)

	r.Group(func(r chi.Router) {
		r.Use(middlewarectx.JWTMiddleware(deps.JWT, logger))
		r.Get("/account", accounthandler.New(logger, deps.Accounts).ServeHTTP)
	})

	r.Get("/health", health.New(logger, deps.Health).ServeHTTP)
	r.Handle("/metrics", promhttp.Handler())
	r.Get("/docs/*", httpSwagger.WrapHandler)
}
