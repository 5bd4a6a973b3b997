package remove

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"p2p-reports/internal/lib/params"
	"p2p-reports/internal/storage"
	"time"

	"github.com/go-chi/render"
)

type OrderRemover interface {
	DeleteOrder(ctx context.Context, id int64) error
	DeleteOrders(ctx context.Context, ids []int64) (int64, error)
}

func DeleteOrder(log *slog.Logger, remover OrderRemover) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		const op = "handlers.orders.remove.DeleteOrder"

		id, err := params.ID(r, "id")
		if err != nil {
			http.Error(w, "Invalid ID", http.StatusBadRequest)
			return
		}

		ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
		defer cancel()

		if err := remover.DeleteOrder(ctx, id); err != nil {
			if errors.Is(err, storage.ErrNotFound) {
				http.Error(w, "Ордер не найден", http.StatusNotFound)
				return
			}
			log.With(slog.String("op", op), slog.String("error", err.Error())).Error("Ошибка при удалении ордера")
			http.Error(w, "Внутренняя ошибка сервера", http.StatusInternalServerError)
			return
		}

		render.JSON(w, r, map[string]any{"message": "Ордер удален"})
	}
}

type bulkRequest struct {
	OrderIDs []int64 `json:"order_ids"`
}

// BulkDelete удаляет ордера по списку id.
func BulkDelete(log *slog.Logger, remover OrderRemover) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		const op = "handlers.orders.remove.BulkDelete"

		var req bulkRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			http.Error(w, "Invalid JSON", http.StatusBadRequest)
			return
		}
		if len(req.OrderIDs) == 0 {
			http.Error(w, "Не указаны ID ордеров для удаления", http.StatusBadRequest)
			return
		}

		ctx, cancel := context.WithTimeout(r.Context(), 10*time.Second)
		defer cancel()

		n, err := remover.DeleteOrders(ctx, req.OrderIDs)
		if err != nil {
			log.With(slog.String("op", op), slog.String("error", err.Error())).Error("Ошибка при массовом удалении ордеров")
			http.Error(w, "Внутренняя ошибка сервера", http.StatusInternalServerError)
			return
		}
		if n == 0 {
			http.Error(w, "Ордеры не найдены", http.StatusNotFound)
			return
		}

		log.Info("ордера удалены", slog.Int64("count", n))

		render.JSON(w, r, map[string]any{
			"success":       true,
			"deleted_count": n,
			"message":       fmt.Sprintf("Успешно удалено %d ордеров", n),
		})
	}
}
