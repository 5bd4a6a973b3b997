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

type AccountRemover interface {
	DeleteAccount(ctx context.Context, id int64) error
}

func DeleteAccount(log *slog.Logger, remover AccountRemover) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		const op = "handlers.accounts.remove.DeleteAccount"

		id, err := params.ID(r, "id")
		if err != nil {
			http.Error(w, "Invalid ID", http.StatusBadRequest)
			return
		}

		ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
		defer cancel()

		if err := remover.DeleteAccount(ctx, id); err != nil {
			if errors.Is(err, storage.ErrNotFound) {
				http.Error(w, "Аккаунт не найден", http.StatusNotFound)
				return
			}
			log.With(slog.String("op", op), slog.String("error", err.Error())).Error("Ошибка при удалении аккаунта")
			http.Error(w, "Внутренняя ошибка сервера", http.StatusInternalServerError)
			return
		}

		render.JSON(w, r, map[string]any{"message": "Account deleted successfully"})
	}
}
