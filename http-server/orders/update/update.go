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

type OrderUpdater interface {
	UpdateOrder(ctx context.Context, id int64, upd storage.OrderUpdate) error
}

// request перекрывает executed_at строкой, чтобы принимать время без зоны.
type request struct {
	storage.OrderUpdate
	ExecutedAt *string `json:"executed_at"`
}

func UpdateOrder(log *slog.Logger, updater OrderUpdater) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		const op = "handlers.orders.update.UpdateOrder"

		id, err := params.ID(r, "id")
		if err != nil {
			http.Error(w, "Invalid ID", http.StatusBadRequest)
			return
		}

		var req request
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			http.Error(w, "Invalid JSON", http.StatusBadRequest)
			return
		}
		upd := req.OrderUpdate
		if req.ExecutedAt != nil {
			t, err := params.ParseTimestamp(*req.ExecutedAt)
			if err != nil || t == nil {
				http.Error(w, "Некорректное время исполнения", http.StatusBadRequest)
				return
			}
			upd.ExecutedAt = t
		}
		if upd.Side != nil && *upd.Side != storage.SideBuy && *upd.Side != storage.SideSell {
			http.Error(w, "Поле side должно быть buy или sell", http.StatusBadRequest)
			return
		}

		ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
		defer cancel()

		if err := updater.UpdateOrder(ctx, id, upd); err != nil {
			switch {
			case errors.Is(err, storage.ErrNotFound):
				http.Error(w, "Ордер не найден", http.StatusNotFound)
			case errors.Is(err, storage.ErrEmployeeNotFound):
				http.Error(w, "Сотрудник не найден", http.StatusNotFound)
			case errors.Is(err, storage.ErrOrderExists):
				http.Error(w, "Ордер с таким ID уже существует", http.StatusConflict)
			default:
				log.With(slog.String("op", op), slog.String("error", err.Error())).Error("Ошибка при обновлении ордера")
				http.Error(w, "Внутренняя ошибка сервера", http.StatusInternalServerError)
			}
			return
		}

		render.JSON(w, r, map[string]any{"message": "Ордер успешно обновлен"})
	}
}
