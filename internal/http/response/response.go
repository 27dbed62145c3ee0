// Package response формирует JSON-ответы HTTP-обработчиков и переводит
// ошибки предметной области в HTTP-статусы.
package response

import (
	"errors"
	"fmt"
	"net/http"
	"strings"

	"github.com/go-chi/render"
	"github.com/go-playground/validator"

	"github.com/magabrotheeeer/access-gate/internal/lib/apperr"
)

// ErrorResponse — тело ответа с ошибкой.
type ErrorResponse struct {
	Error string `json:"error" example:"invalid request body"`
}

// Error возвращает ErrorResponse с переданным сообщением.
func Error(msg string) ErrorResponse {
	return ErrorResponse{Error: msg}
}

// ValidationError собирает нарушения валидации в одно сообщение через запятую.
func ValidationError(errs validator.ValidationErrors) ErrorResponse {
	var errsMsgs []string

	for _, err := range errs {
		switch err.ActualTag() {
		case "required":
			errsMsgs = append(errsMsgs, fmt.Sprintf("field %s is a required field", err.Field()))
		case "email":
			errsMsgs = append(errsMsgs, fmt.Sprintf("field %s must be a valid email", err.Field()))
		case "max":
			errsMsgs = append(errsMsgs, fmt.Sprintf("field %s is too long", err.Field()))
		default:
			errsMsgs = append(errsMsgs, fmt.Sprintf("field %s is not a valid", err.Field()))
		}
	}
	return ErrorResponse{Error: strings.Join(errsMsgs, ", ")}
}

// JSON пишет v с указанным статусом.
func JSON(w http.ResponseWriter, r *http.Request, status int, v any) {
	render.Status(r, status)
	render.JSON(w, r, v)
}

// WriteError выбирает статус по классу err и пишет безопасное для клиента сообщение.
func WriteError(w http.ResponseWriter, r *http.Request, err error) {
	JSON(w, r, apperr.HTTPStatus(err), Error(apperr.Message(err)))
}

// DecodeJSON разбирает тело запроса и проверяет его validate.
// При ошибке ответ уже записан: 400 для неразбираемого JSON, 422 для нарушений валидации.
func DecodeJSON(w http.ResponseWriter, r *http.Request, validate *validator.Validate, dst any) error {
	if err := render.DecodeJSON(r.Body, dst); err != nil {
		JSON(w, r, http.StatusBadRequest, Error("invalid request body"))
		return err
	}
	if err := validate.Struct(dst); err != nil {
		var verrs validator.ValidationErrors
		if errors.As(err, &verrs) {
			JSON(w, r, http.StatusUnprocessableEntity, ValidationError(verrs))
		} else {
			JSON(w, r, http.StatusUnprocessableEntity, Error("invalid request"))
		}
		return err
	}
	return nil
}
