package save

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"p2p-reports/internal/storage"
	"strings"
	"time"

	"github.com/go-chi/render"
)

type AccountCreator interface {
	CreateAccount(ctx context.Context, a storage.Account) (int64, error)
}

type request struct {
	Platform    string `json:"platform"`
	AccountName string `json:"account_name"`
	EmployeeID  *int64 `json:"employee_id"`
}

func knownPlatform(p string) bool {
	for _, known := range storage.Platforms {
		if p == known {
			return true
		}
	}
	return false
}

func SaveAccount(log *slog.Logger, creator AccountCreator) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		const op = "handlers.accounts.save.SaveAccount"

		var req request
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			http.Error(w, "Invalid JSON", http.StatusBadRequest)
			return
		}

		req.Platform = strings.ToLower(strings.TrimSpace(req.Platform))
		req.AccountName = strings.TrimSpace(req.AccountName)
		if req.AccountName == "" {
			http.Error(w, "Название аккаунта обязательно", http.StatusBadRequest)
			return
		}
		if !knownPlatform(req.Platform) {
			http.Error(w, "Неизвестная площадка", http.StatusBadRequest)
			return
		}

		ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
		defer cancel()

		id, err := creator.CreateAccount(ctx, storage.Account{
			EmployeeID:  req.EmployeeID,
			Platform:    req.Platform,
			AccountName: req.AccountName,
			IsActive:    true,
		})
		if err != nil {
			if errors.Is(err, storage.ErrEmployeeNotFound) {
				http.Error(w, "Сотрудник не найден", http.StatusNotFound)
				return
			}
			log.With(slog.String("op", op), slog.String("error", err.Error())).Error("Ошибка при создании аккаунта")
			http.Error(w, "Внутренняя ошибка сервера", http.StatusInternalServerError)
			return
		}

		render.Status(r, http.StatusCreated)
		render.JSON(w, r, map[string]any{"id": id, "message": "Account created successfully"})
	}
}
