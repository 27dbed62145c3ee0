// Package register реализует HTTP-обработчик регистрации аккаунта.
package register

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
)

// Request — входные данные для регистрации.
type Request struct {
	Email    string `json:"email" validate:"required,email" example:"user@example.com"`
	Password string `json:"password" validate:"required,max=72" example:"secret"`
}

// Response — ответ на успешную регистрацию.
type Response struct {
	Registered bool `json:"registered" example:"true"`
}

// Service описывает бизнес-логику регистрации.
type Service interface {
	Register(ctx context.Context, email, password string) error
}

// Handler обрабатывает POST /register.
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
// @Summary Регистрация аккаунта
// @Description Создаёт аккаунт по email и паролю.
// @Tags Auth
// @Accept json
// @Produce json
// @Param request body Request true "Учетные данные"
// @Success 200 {object} Response
// @Failure 400 {object} response.ErrorResponse "Некорректный JSON"
// @Failure 409 {object} response.ErrorResponse "Email уже зарегистрирован"
// @Failure 422 {object} response.ErrorResponse "Ошибка валидации"
// @Failure 503 {object} response.ErrorResponse "Хранилище недоступно"
// @Router /register [post]
func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	const op = "handlers.auth.register"

	log := h.log.With(
		slog.String("op", op),
		slog.String("request_id", middleware.GetReqID(r.Context())),
	)

	var req Request
	if err := response.DecodeJSON(w, r, h.validate, &req); err != nil {
		log.Warn("invalid request", sl.Err(err))
		metrics.RegistrationsTotal.WithLabelValues("invalid").Inc()
		return
	}

	if err := h.service.Register(r.Context(), req.Email, req.Password); err != nil {
		if errors.Is(err, apperr.ErrDuplicateIdentity) {
			log.Info("user already exists", sl.Email(req.Email))
			metrics.RegistrationsTotal.WithLabelValues("duplicate").Inc()
			response.JSON(w, r, http.StatusConflict, response.Error("User already exists"))
			return
		}
		log.Error("registration failed", sl.Err(err))
		metrics.RegistrationsTotal.WithLabelValues("error").Inc()
		response.WriteError(w, r, err)
		return
	}

	log.Info("user registered", sl.Email(req.Email))
	metrics.RegistrationsTotal.WithLabelValues("ok").Inc()
	response.JSON(w, r, http.StatusOK, Response{Registered: true})
}
