package middleware

import (
	"context"
	"net/http"
	"time"
)

// Timeout ограничивает обработку запроса бюджетом времени из конфигурации
// HTTP-сервера: bcrypt и обращения к Mongo не должны держать соединение
// дольше него. Уже установленный deadline не укорачивается; значение <=0
// отключает мидлвар.
func Timeout(budget time.Duration) Middleware {
	return func(next http.Handler) http.Handler {
		if budget <= 0 {
			return next
		}

		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if _, ok := r.Context().Deadline(); ok {
				next.ServeHTTP(w, r)
				return
			}

			ctx, cancel := context.WithTimeout(r.Context(), budget)
			defer cancel()
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}
