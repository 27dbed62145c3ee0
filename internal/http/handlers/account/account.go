// Package account реализует выдачу сводки по аккаунту владельцу JWT.
package account

import (
	"context"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/middleware"

	"github.com/magabrotheeeer/access-gate/internal/http/middlewarectx"
	"github.com/magabrotheeeer/access-gate/internal/http/response"
	"github.com/magabrotheeeer/access-gate/internal/lib/sl"
	"github.com/magabrotheeeer/access-gate/internal/models"
)

// Response — сводка по аккаунту без учётных данных.
type Response struct {
	Email              string    `json:"email" example:"user@example.com"`
	SubscriptionStatus string    `json:"subscription_status" example:"active"`
	Access             bool      `json:"access" example:"true"`
	HasCustomer        bool      `json:"has_customer" example:"true"`
	CreatedAt          time.Time `json:"created_at"`
}

// Service возвращает аккаунт по email.
type Service interface {
	Account(ctx context.Context, email string) (*models.Account, error)
}

// Handler обрабатывает GET /account.
type Handler struct {
	log     *slog.Logger
	service Service
}

// New создает новый экземпляр Handler.
func New(log *slog.Logger, service Service) *Handler {
	return &Handler{log: log, service: service}
}

// ServeHTTP godoc
// @Summary Аккаунт
// @Description Сводка по аккаунту текущего пользователя.
// @Tags Access
// @Produce json
// @Security BearerAuth
// @Success 200 {object} Response
// @Failure 401 {object} response.ErrorResponse "Нет или неверный токен"
// @Failure 404 {object} response.ErrorResponse "Аккаунт не найден"
// @Failure 503 {object} response.ErrorResponse "Хранилище недоступно"
// @Router /account [get]
func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	const op = "handlers.account"

	log := h.log.With(
		slog.String("op", op),
		slog.String("request_id", middleware.GetReqID(r.Context())),
	)

	email, ok := middlewarectx.EmailFromContext(r.Context())
	if !ok {
		log.Error("email missing in context")
		response.JSON(w, r, http.StatusUnauthorized, response.Error("unauthorized"))
		return
	}

	acc, err := h.service.Account(r.Context(), email)
	if err != nil {
		log.Error("failed to load account", sl.Err(err), sl.Email(email))
		response.WriteError(w, r, err)
		return
	}

	response.JSON(w, r, http.StatusOK, Response{
		Email:              acc.Email,
		SubscriptionStatus: string(acc.SubscriptionStatus),
		Access:             acc.IsActive(),
		HasCustomer:        acc.ProviderCustomerID != "",
		CreatedAt:          acc.CreatedAt,
	})
}
