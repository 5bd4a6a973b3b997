package update

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"p2p-reports/internal/lib/params"
	"p2p-reports/internal/storage"
	"time"

	"github.com/go-chi/render"
)

type EmployeeUpdater interface {
	UpdateEmployee(ctx context.Context, id int64, upd storage.EmployeeUpdate) error
}

func UpdateEmployee(log *slog.Logger, updater EmployeeUpdater) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		const op = "handlers.employees.update.UpdateEmployee"

		id, err := params.ID(r, "id")
		if err != nil {
			http.Error(w, "Invalid ID", http.StatusBadRequest)
			return
		}

		var upd storage.EmployeeUpdate
		if err := json.NewDecoder(r.Body).Decode(&upd); err != nil {
			http.Error(w, "Invalid JSON", http.StatusBadRequest)
			return
		}
		if upd.SalaryPercent != nil && (*upd.SalaryPercent < 0 || *upd.SalaryPercent > 100) {
			http.Error(w, "Процент зарплаты должен быть от 0 до 100", http.StatusBadRequest)
			return
		}

		ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
		defer cancel()

		if err := updater.UpdateEmployee(ctx, id, upd); err != nil {
			if errors.Is(err, storage.ErrEmployeeNotFound) {
				http.Error(w, "Сотрудник не найден", http.StatusNotFound)
				return
			}
			log.With(slog.String("op", op), slog.String("error", err.Error())).Error("Ошибка при обновлении сотрудника")
			http.Error(w, "Внутренняя ошибка сервера", http.StatusInternalServerError)
			return
		}

		render.JSON(w, r, map[string]any{"message": "Employee updated successfully"})
	}
}
