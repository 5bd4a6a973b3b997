package remove

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"p2p-reports/internal/lib/params"
	"p2p-reports/internal/storage"
	"time"

	"github.com/go-chi/render"
)

type ReportRemover interface {
	Delete(ctx context.Context, id int64) error
}

// DeleteReport удаляет отчёт вместе с его историей скама.
func DeleteReport(log *slog.Logger, remover ReportRemover) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		const op = "handlers.reports.remove.DeleteReport"

		id, err := params.ID(r, "id")
		if err != nil {
			http.Error(w, "Invalid ID", http.StatusBadRequest)
			return
		}

		ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
		defer cancel()

		if err := remover.Delete(ctx, id); err != nil {
			if errors.Is(err, storage.ErrNotFound) {
				http.Error(w, "Отчёт не найден", http.StatusNotFound)
				return
			}
			log.With(slog.String("op", op), slog.String("error", err.Error())).Error("Ошибка при удалении отчёта")
			http.Error(w, "Внутренняя ошибка сервера", http.StatusInternalServerError)
			return
		}

		log.Info("отчёт удалён", slog.Int64("id", id))

		render.JSON(w, r, map[string]any{"message": "Report deleted successfully"})
	}
}
