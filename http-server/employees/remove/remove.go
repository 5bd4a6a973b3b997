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

type EmployeeRemover interface {
	DeleteEmployee(ctx context.Context, id int64) error
}

func DeleteEmployee(log *slog.Logger, remover EmployeeRemover) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		const op = "handlers.employees.remove.DeleteEmployee"

		id, err := params.ID(r, "id")
		if err != nil {
			http.Error(w, "Invalid ID", http.StatusBadRequest)
			return
		}

		ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
		defer cancel()

		if err := remover.DeleteEmployee(ctx, id); err != nil {
			if errors.Is(err, storage.ErrEmployeeNotFound) {
				http.Error(w, "Сотрудник не найден", http.StatusNotFound)
				return
			}
			log.With(slog.String("op", op), slog.String("error", err.Error())).Error("Ошибка при удалении сотрудника")
			http.Error(w, "Внутренняя ошибка сервера", http.StatusInternalServerError)
			return
		}

		log.Info("сотрудник удалён", slog.Int64("id", id))

		render.JSON(w, r, map[string]any{"message": "Employee deleted successfully"})
	}
}
