package get

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"p2p-reports/internal/lib/params"
	"p2p-reports/internal/service/salary"
	"p2p-reports/internal/storage"
	"time"

	"github.com/go-chi/render"
)

type SalaryCalculator interface {
	Calculate(ctx context.Context, employeeID int64, from, to time.Time) (salary.Result, error)
}

// GetEmployeeSalary считает зарплату сотрудника за start_date..end_date.
func GetEmployeeSalary(log *slog.Logger, calc SalaryCalculator) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		const op = "handlers.salary.get.GetEmployeeSalary"

		id, err := params.ID(r, "id")
		if err != nil {
			http.Error(w, "Invalid ID", http.StatusBadRequest)
			return
		}

		from, err := params.Date(r, "start_date")
		if err != nil {
			http.Error(w, err.Error(), http.StatusBadRequest)
			return
		}
		to, err := params.Date(r, "end_date")
		if err != nil {
			http.Error(w, err.Error(), http.StatusBadRequest)
			return
		}
		if from == nil || to == nil {
			http.Error(w, "Укажите start_date и end_date", http.StatusBadRequest)
			return
		}

		ctx, cancel := context.WithTimeout(r.Context(), 10*time.Second)
		defer cancel()

		res, err := calc.Calculate(ctx, id, *from, *to)
		if err != nil {
			if errors.Is(err, storage.ErrEmployeeNotFound) {
				http.Error(w, "Сотрудник не найден", http.StatusNotFound)
				return
			}
			log.With(slog.String("op", op), slog.String("error", err.Error())).Error("Ошибка при расчёте зарплаты")
			http.Error(w, "Внутренняя ошибка сервера", http.StatusInternalServerError)
			return
		}

		render.JSON(w, r, res)
	}
}
