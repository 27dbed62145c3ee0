// Package webhook реализует приём событий платёжного провайдера.
//
// Тело читается целиком и без изменений, так как подпись считается над сырыми байтами.
package webhook

import (
	"context"
	"io"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/middleware"

	"github.com/magabrotheeeer/access-gate/internal/http/response"
	"github.com/magabrotheeeer/access-gate/internal/lib/sl"
	"github.com/magabrotheeeer/access-gate/internal/paymentprovider"
	"github.com/magabrotheeeer/access-gate/internal/services/reconciler"
)

// MaxBodyBytes — предельный размер тела события.
const MaxBodyBytes = 64 << 10

// Response — подтверждение приёма события.
type Response struct {
	Status string `json:"status" example:"success"`
}

// Reconciler применяет событие провайдера.
type Reconciler interface {
	Reconcile(ctx context.Context, payload []byte, signature string) (*reconciler.Result, error)
}

// Handler обрабатывает POST /webhook.
type Handler struct {
	log        *slog.Logger
	reconciler Reconciler
}

// New создает новый экземпляр Handler.
func New(log *slog.Logger, reconciler Reconciler) *Handler {
	return &Handler{log: log, reconciler: reconciler}
}

// ServeHTTP godoc
// @Summary Webhook Stripe
// @Description Проверяет подпись события и применяет checkout.session.completed. Остальные типы подтверждаются без изменений.
// @Tags Billing
// @Accept json
// @Produce json
// @Param Stripe-Signature header string true "Подпись события"
// @Success 200 {object} Response
// @Failure 400 {object} response.ErrorResponse "Неверная подпись"
// @Failure 413 {object} response.ErrorResponse "Слишком большое тело"
// @Failure 422 {object} response.ErrorResponse "Некорректное событие"
// @Failure 503 {object} response.ErrorResponse "Хранилище недоступно"
// @Router /webhook [post]
func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	const op = "handlers.webhook"

	log := h.log.With(
		slog.String("op", op),
		slog.String("request_id", middleware.GetReqID(r.Context())),
	)

	payload, err := io.ReadAll(http.MaxBytesReader(w, r.Body, MaxBodyBytes))
	if err != nil {
		log.Error("failed to read webhook body", sl.Err(err))
		response.JSON(w, r, http.StatusRequestEntityTooLarge, response.Error("request body too large"))
		return
	}

	res, err := h.reconciler.Reconcile(r.Context(), payload, r.Header.Get(paymentprovider.SignatureHeader))
	if err != nil {
		log.Error("webhook rejected", sl.Err(err))
		response.WriteError(w, r, err)
		return
	}

	log.Info("webhook processed",
		slog.String("event_id", res.EventID),
		slog.String("event_type", res.EventType),
		slog.String("outcome", res.Outcome),
	)
	response.JSON(w, r, http.StatusOK, Response{Status: "success"})
}
