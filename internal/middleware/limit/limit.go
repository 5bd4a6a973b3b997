package limit

import (
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5/middleware"
)

const TooLargeMessage = "Размер запроса превышает допустимый (максимум 16MB)"

// MaxBody ограничивает размер тела запроса n байтами. Известный Content-Length
// сверх лимита отклоняется сразу, иначе чтение сверх лимита вернёт *http.MaxBytesError.
func MaxBody(n int64) func(http.Handler) http.Handler {
	size := middleware.RequestSize(n)
	return func(next http.Handler) http.Handler {
		limited := size(next)
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if r.ContentLength > n {
				http.Error(w, TooLargeMessage, http.StatusRequestEntityTooLarge)
				return
			}
			limited.ServeHTTP(w, r)
		})
	}
}

func TooLarge(err error) bool {
	var maxErr *http.MaxBytesError
	return errors.As(err, &maxErr)
}
