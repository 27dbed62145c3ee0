// Package checkout реализует HTTP-обработчик создания сессии оплаты подписки.
package checkout

import (
	"context"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/middleware"
	"github.com/go-playground/validator"

	"github.com/magabrotheeeer/access-gate/internal/http/response"
	"github.com/magabrotheeeer/access-gate/internal/lib/sl"
	"github.com/magabrotheeeer/access-gate/internal/metrics"
)

// Request — учётные данные покупателя.
type Request struct {
	Email    string `json:"email" validate:"required" example:"user@example.com"`
	Password string `json:"password" validate:"required" example:"secret"`
}

// Response содержит адрес hosted checkout страницы.
type Response struct {
	CheckoutURL string `json:"checkout_url" example:"https://checkout.stripe.com/c/pay/cs_test_123"`
}

// Service создаёт сессию оплаты.
type Service interface {
	CreateSession(ctx context.Context, email, password string) (string, error)
}

// Handler обрабатывает POST /create-checkout-session.
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
// @Summary Сессия оплаты
// @Description Проверяет учетные данные и создает hosted checkout сессию подписки у Stripe.
// @Tags Billing
// @Accept json
// @Produce json
// @Param request body Request true "Учетные данные"
// @Success 200 {object} Response
// @Failure 400 {object} response.ErrorResponse "Некорректный JSON"
// @Failure 401 {object} response.ErrorResponse "Неверные учетные данные"
// @Failure 422 {object} response.ErrorResponse "Ошибка валидации"
// @Failure 502 {object} response.ErrorResponse "Ошибка платежного провайдера"
// @Router /create-checkout-session [post]
func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	const op = "handlers.checkout"

	log := h.log.With(
		slog.String("op", op),
		slog.String("request_id", middleware.GetReqID(r.Context())),
	)

	var req Request
	if err := response.DecodeJSON(w, r, h.validate, &req); err != nil {
		log.Warn("invalid request", sl.Err(err))
		return
	}

	url, err := h.service.CreateSession(r.Context(), req.Email, req.Password)
	if err != nil {
		log.Error("failed to create checkout session", sl.Err(err))
		metrics.CheckoutSessionsTotal.WithLabelValues("error").Inc()
		response.WriteError(w, r, err)
		return
	}

	log.Info("checkout session created", sl.Email(req.Email))
	metrics.CheckoutSessionsTotal.WithLabelValues("ok").Inc()
	response.JSON(w, r, http.StatusOK, Response{CheckoutURL: url})
}
