package get

import (
	"context"
	"log/slog"
	"net/http"
	"p2p-reports/internal/lib/params"
	"p2p-reports/internal/service/statistics"
	"p2p-reports/internal/storage"
	"time"

	"github.com/go-chi/render"
)

type PlatformBalancesProvider interface {
	PlatformBalances(ctx context.Context) (statistics.PlatformBalances, error)
}

type BalanceProvider interface {
	InitialBalances(ctx context.Context, platform string) ([]storage.InitialBalance, error)
	ListBalanceHistory(ctx context.Context, filter storage.BalanceHistoryFilter) ([]storage.BalanceHistory, error)
}

// GetPlatformBalances отдаёт последний известный баланс каждого аккаунта по площадкам.
func GetPlatformBalances(log *slog.Logger, provider PlatformBalancesProvider) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		const op = "handlers.balances.get.GetPlatformBalances"

		ctx, cancel := context.WithTimeout(r.Context(), 10*time.Second)
		defer cancel()

		balances, err := provider.PlatformBalances(ctx)
		if err != nil {
			log.With(slog.String("op", op), slog.String("error", err.Error())).Error("Ошибка при получении балансов площадок")
			http.Error(w, "Внутренняя ошибка сервера", http.StatusInternalServerError)
			return
		}

		render.JSON(w, r, balances)
	}
}

// GetInitialBalances отдаёт начальные балансы, сгруппированные по площадкам.
func GetInitialBalances(log *slog.Logger, provider BalanceProvider) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		const op = "handlers.balances.get.GetInitialBalances"

		ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
		defer cancel()

		balances, err := provider.InitialBalances(ctx, r.URL.Query().Get("platform"))
		if err != nil {
			log.With(slog.String("op", op), slog.String("error", err.Error())).Error("Ошибка при получении начальных балансов")
			http.Error(w, "Внутренняя ошибка сервера", http.StatusInternalServerError)
			return
		}

		grouped := make(map[string][]storage.InitialBalance, len(storage.Platforms))
		for _, p := range storage.Platforms {
			grouped[p] = []storage.InitialBalance{}
		}
		for _, b := range balances {
			grouped[b.Platform] = append(grouped[b.Platform], b)
		}

		render.JSON(w, r, grouped)
	}
}

func GetBalanceHistory(log *slog.Logger, provider BalanceProvider) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		const op = "handlers.balances.get.GetBalanceHistory"

		var filter storage.BalanceHistoryFilter
		var err error
		if filter.AccountID, err = params.Int64(r, "account_id"); err != nil {
			http.Error(w, err.Error(), http.StatusBadRequest)
			return
		}
		if filter.EmployeeID, err = params.Int64(r, "employee_id"); err != nil {
			http.Error(w, err.Error(), http.StatusBadRequest)
			return
		}
		if filter.From, err = params.Date(r, "start_date"); err != nil {
			http.Error(w, err.Error(), http.StatusBadRequest)
			return
		}
		if filter.To, err = params.Date(r, "end_date"); err != nil {
			http.Error(w, err.Error(), http.StatusBadRequest)
			return
		}
		filter.Platform = r.URL.Query().Get("platform")
		filter.Department = r.URL.Query().Get("department")

		ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
		defer cancel()

		history, err := provider.ListBalanceHistory(ctx, filter)
		if err != nil {
			log.With(slog.String("op", op), slog.String("error", err.Error())).Error("Ошибка при получении истории балансов")
			http.Error(w, "Внутренняя ошибка сервера", http.StatusInternalServerError)
			return
		}
		if history == nil {
			history = []storage.BalanceHistory{}
		}

		render.JSON(w, r, history)
	}
}
