// httperr стандартизирует ответы об ошибках HTTP-слоя.
// На вход он принимает ошибку доменного слоя (service), а на выход даёт:
//   - корректный HTTP-статус;
//   - краткое безопасное message без утечки деталей.
//
// Каждому виду ошибок соответствует своя категория статуса, чтобы клиент
// мог отличить "войди заново" от "повтори" и от "токен действительно
// недействителен:
//   - ErrEmptyUsername/ErrEmptyPassword/ErrEmptyTitle -> 400;
//   - ErrAccountNotFound -> 404;
//   - ErrInvalidCredentials/ErrMissingToken -> 401;
//   - ErrInvalidToken/ErrTokenExpired/ErrTokenMismatch -> 403;
//   - ErrAccountExists -> 409;
//   - иные ошибки (хранилище/контекст) -> 500/internal.
package httperr

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/pribylovaa/go-todo-service/internal/service"
)

// ErrInvalidInput — локальная ошибка HTTP-слоя (битый JSON, неизвестные
// поля). Маппится в 400/invalid_argument.
var ErrInvalidInput = errors.New("invalid input")

// APIError — единый формат ошибки для фронта.
// Code — короткий стабильный код для машиночитаемой обработки.
// Message — безопасное человекочитаемое описание.
// RequestID — прокидывается из X-Request-Id, если есть (для трассировки).
type APIError struct {
	Code      string `json:"code"`
	Message   string `json:"message"`
	RequestID string `json:"request_id,omitempty"`
}

// ErrorResponse — корневой объект в ответе.
type ErrorResponse struct {
	Error APIError `json:"error"`
}

// ToHTTP конвертирует ошибку доменного слоя в HTTP-статус и
// унифицированный ответ.
//
// err == nil — программная ошибка вызова: возвращаем 500/internal,
// чтобы не послать "200 OK" с телом ошибки и не маскировать баг.
func ToHTTP(err error) (int, ErrorResponse) {
	status, code, msg := classify(err)

	return status, ErrorResponse{
		Error: APIError{
			Code:    code,
			Message: msg,
		},
	}
}

// WriteError — хелпер для HTTP-хендлеров.
// Пишет корректный статус/тело, добавляет request_id из заголовка, если он есть.
func WriteError(w http.ResponseWriter, r *http.Request, err error) {
	status, resp := ToHTTP(err)

	if rid := r.Header.Get("X-Request-Id"); rid != "" {
		resp.Error.RequestID = rid
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(resp)
}

func classify(err error) (int, string, string) {
	switch {
	case err == nil:
		return http.StatusInternalServerError, "internal", "internal error"
	case errors.Is(err, ErrInvalidInput),
		errors.Is(err, service.ErrEmptyUsername),
		errors.Is(err, service.ErrEmptyPassword),
		errors.Is(err, service.ErrEmptyTitle):
		return http.StatusBadRequest, "invalid_argument", "invalid argument"
	case errors.Is(err, service.ErrAccountNotFound):
		return http.StatusNotFound, "not_found", "account not found"
	case errors.Is(err, service.ErrInvalidCredentials):
		return http.StatusUnauthorized, "unauthenticated", "invalid credentials"
	case errors.Is(err, service.ErrMissingToken):
		return http.StatusUnauthorized, "unauthenticated", "missing token"
	case errors.Is(err, service.ErrInvalidToken), errors.Is(err, service.ErrTokenExpired):
		return http.StatusForbidden, "forbidden", "invalid token"
	case errors.Is(err, service.ErrTokenMismatch):
		return http.StatusForbidden, "forbidden", "token mismatch"
	case errors.Is(err, service.ErrAccountExists):
		return http.StatusConflict, "already_exists", "account already exists"
	default:
		return http.StatusInternalServerError, "internal", "internal error"
	}
}
