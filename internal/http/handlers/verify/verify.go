// Package verify реализует проверку доступа по email.
package verify

import (
	"context"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/middleware"

	"github.com/magabrotheeeer/access-gate/internal/http/response"
	"github.com/magabrotheeeer/access-gate/internal/lib/sl"
	"github.com/magabrotheeeer/access-gate/internal/models"
)

// Response сообщает, есть ли у email доступ.
type Response struct {
	Access bool `json:"access" example:"true"`
}

// Checker проверяет статус подписки.
type Checker interface {
	IsActive(ctx context.Context, email string) (bool, error)
}

// Handler обрабатывает GET /verify?email=.
type Handler struct {
	log     *slog.Logger
	checker Checker
}

// New создает новый экземпляр Handler.
func New(log *slog.Logger, checker Checker) *Handler {
	return &Handler{log: log, checker: checker}
}

// ServeHTTP godoc
// @Summary Проверка доступа
// @Description Возвращает access=true, только если подписка email активна.
// @Tags Access
// @Produce json
// @Param email query string true "Email аккаунта"
// @Success 200 {object} Response
// @Failure 400 {object} response.ErrorResponse "Не указан email"
// @Failure 503 {object} response.ErrorResponse "Хранилище недоступно"
// @Router /verify [get]
func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	const op = "handlers.verify"

	log := h.log.With(
		slog.String("op", op),
		slog.String("request_id", middleware.GetReqID(r.Context())),
	)

	email := models.NormalizeEmail(r.URL.Query().Get("email"))
	if email == "" {
		response.JSON(w, r, http.StatusBadRequest, response.Error("email query parameter is required"))
		return
	}

	active, err := h.checker.IsActive(r.Context(), email)
	if err != nil {
		log.Error("failed to check access", sl.Err(err))
		response.WriteError(w, r, err)
		return
	}

	log.Debug("access checked", sl.Email(email), slog.Bool("access", active))
	response.JSON(w, r, http.StatusOK, Response{Access: active})
}
