package get

import (
	"context"
	"log/slog"
	"net/http"
	"p2p-reports/internal/storage"
	"time"

	"github.com/go-chi/render"
)

type SalarySettingsProvider interface {
	SalarySettings(ctx context.Context) (*storage.SalarySettings, error)
}

func GetSalarySettings(log *slog.Logger, provider SalarySettingsProvider) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		const op = "handlers.settings.get.GetSalarySettings"

		ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
		defer cancel()

		settings, err := provider.SalarySettings(ctx)
		if err != nil {
			log.With(slog.String("op", op), slog.String("error", err.Error())).Error("Ошибка при получении настроек зарплаты")
			http.Error(w, "Внутренняя ошибка сервера", http.StatusInternalServerError)
			return
		}

		render.JSON(w, r, settings)
	}
}
