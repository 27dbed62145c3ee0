// Package login реализует HTTP-обработчик входа.
//
// При успехе возвращает статус подписки и JWT, при неверных учётных
// данных отвечает 401 с {"login": false}.
package login

import (
	"context"
	"errors"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/middleware"
	"github.com/go-playground/validator"

	"github.com/magabrotheeeer/access-gate/internal/http/response"
	"github.com/magabrotheeeer/access-gate/internal/lib/apperr"
	"github.com/magabrotheeeer/access-gate/internal/lib/sl"
	"github.com/magabrotheeeer/access-gate/internal/metrics"
	"github.com/magabrotheeeer/access-gate/internal/models"
)

// Request — учётные данные для входа.
type Request struct {
	Email    string `json:"email" validate:"required" example:"user@example.com"`
	Password string `json:"password" validate:"required" example:"secret"`
}

// Response — ответ на попытку входа.
type Response struct {
	Login        bool   `json:"login" example:"true"`
	Subscription string `json:"subscription,omitempty" example:"none"`
	Token        string `json:"token,omitempty"`
}

// Service описывает бизнес-логику входа.
type Service interface {
	Login(ctx context.Context, email, password string) (models.SubscriptionStatus, string, error)
}

// Handler обрабатывает POST /login.
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

// ServeHTTP godoc
// @Summary Вход
// @Description Проверяет email и пароль, возвращает статус подписки и JWT.
// @Tags Auth
// @Accept json
// @Produce json
// @Param request body Request true "Учетные данные"
// @Success 200 {object} Response
// @Failure 400 {object} response.ErrorResponse "Некорректный JSON"
// @Failure 401 {object} Response "Неверные учетные данные"
// @Failure 422 {object} response.ErrorResponse "Ошибка валидации"
// @Failure 503 {object} response.ErrorResponse "Хранилище недоступно"
// @Router /login [post]
func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	const op = "handlers.auth.login"

	log := h.log.With(
		slog.String("op", op),
		slog.String("request_id", middleware.GetReqID(r.Context())),
	)

	var req Request
	if err := response.DecodeJSON(w, r, h.validate, &req); err != nil {
		log.Warn("invalid request", sl.Err(err))
		return
	}

	status, token, err := h.service.Login(r.Context(), req.Email, req.Password)
	if err != nil {
		if errors.Is(err, apperr.ErrInvalidCredentials) {
			log.Info("invalid credentials", sl.Email(req.Email))
			metrics.LoginsTotal.WithLabelValues("invalid").Inc()
			response.JSON(w, r, http.StatusUnauthorized, Response{Login: false})
			return
		}
		log.Error("login failed", sl.Err(err))
		metrics.LoginsTotal.WithLabelValues("error").Inc()
		response.WriteError(w, r, err)
		return
	}

	log.Info("login success", sl.Email(req.Email))
	metrics.LoginsTotal.WithLabelValues("ok").Inc()
	response.JSON(w, r, http.StatusOK, Response{
		Login:        true,
		Subscription: string(status),
		Token:        token,
	})
}
