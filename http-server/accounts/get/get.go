package get

import (
	"context"
	"log/slog"
	"net/http"
	"p2p-reports/internal/lib/params"
	"p2p-reports/internal/storage"
	"time"

	"github.com/go-chi/render"
)

type AccountProvider interface {
	ListAccounts(ctx context.Context, filter storage.AccountFilter) ([]storage.Account, error)
}

// GetAccounts отдаёт активные аккаунты, опционально по сотруднику и площадке.
func GetAccounts(log *slog.Logger, provider AccountProvider) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		const op = "handlers.accounts.get.GetAccounts"

		employeeID, err := params.Int64(r, "employee_id")
		if err != nil {
			http.Error(w, err.Error(), http.StatusBadRequest)
			return
		}

		ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
		defer cancel()

		accounts, err := provider.ListAccounts(ctx, storage.AccountFilter{
			EmployeeID: employeeID,
			Platform:   r.URL.Query().Get("platform"),
			ActiveOnly: true,
		})
		if err != nil {
			log.With(slog.String("op", op), slog.String("error", err.Error())).Error("Ошибка при получении аккаунтов")
			http.Error(w, "Внутренняя ошибка сервера", http.StatusInternalServerError)
			return
		}
		if accounts == nil {
			accounts = []storage.Account{}
		}

		render.JSON(w, r, accounts)
	}
}
