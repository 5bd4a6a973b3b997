package health

import (
	"context"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/render"
)

type Pinger interface {
	Ping(ctx context.Context) error
}

type response struct {
	Status   string `json:"status"`
	Database string `json:"database"`
}

// Health отвечает 503, если база недоступна.
func Health(log *slog.Logger, db Pinger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		const op = "handlers.health.Health"

		ctx, cancel := context.WithTimeout(r.Context(), 2*time.Second)
		defer cancel()

		if err := db.Ping(ctx); err != nil {
			log.With(slog.String("op", op), slog.String("error", err.Error())).Error("База данных недоступна")
			render.Status(r, http.StatusServiceUnavailable)
			render.JSON(w, r, response{Status: "error", Database: "unavailable"})
			return
		}

		render.JSON(w, r, response{Status: "ok", Database: "ok"})
	}
}
