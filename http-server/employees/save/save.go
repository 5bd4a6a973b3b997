package save

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"
	"p2p-reports/internal/storage"
	"strings"
	"time"

	"github.com/go-chi/render"
)

type EmployeeCreator interface {
	CreateEmployee(ctx context.Context, e storage.Employee) (int64, error)
}

type request struct {
	Name          string   `json:"name"`
	Telegram      string   `json:"telegram"`
	SalaryPercent *float64 `json:"salary_percent"`
}

func SaveEmployee(log *slog.Logger, creator EmployeeCreator) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		const op = "handlers.employees.save.SaveEmployee"

		var req request
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			log.With(slog.String("op", op), slog.String("error", err.Error())).Warn("Некорректный JSON")
			http.Error(w, "Invalid JSON", http.StatusBadRequest)
			return
		}

		req.Name = strings.TrimSpace(req.Name)
		req.Telegram = strings.TrimSpace(req.Telegram)
		if req.Name == "" || req.Telegram == "" {
			http.Error(w, "Имя и Telegram обязательны", http.StatusBadRequest)
			return
		}
		if req.SalaryPercent != nil && (*req.SalaryPercent < 0 || *req.SalaryPercent > 100) {
			http.Error(w, "Процент зарплаты должен быть от 0 до 100", http.StatusBadRequest)
			return
		}

		ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
		defer cancel()

		id, err := creator.CreateEmployee(ctx, storage.Employee{
			Name:          req.Name,
			Telegram:      req.Telegram,
			SalaryPercent: req.SalaryPercent,
		})
		if err != nil {
			log.With(slog.String("op", op), slog.String("error", err.Error())).Error("Ошибка при создании сотрудника")
			http.Error(w, "Внутренняя ошибка сервера", http.StatusInternalServerError)
			return
		}

		log.Info("сотрудник создан", slog.Int64("id", id))

		render.Status(r, http.StatusCreated)
		render.JSON(w, r, map[string]any{"id": id, "message": "Employee created successfully"})
	}
}
