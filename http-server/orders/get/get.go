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

type OrderProvider interface {
	ListOrders(ctx context.Context, filter storage.OrderFilter) ([]storage.Order, error)
}

type StatisticsProvider interface {
	OrderStatistics(ctx context.Context, q statistics.OrderQuery) (statistics.OrderStats, error)
}

// orderFilter читает employee_id, platform, status и даты. end_date включительно.
func orderFilter(r *http.Request) (storage.OrderFilter, error) {
	var filter storage.OrderFilter
	var err error

	if filter.EmployeeID, err = params.Int64(r, "employee_id"); err != nil {
		return filter, err
	}
	if filter.From, err = params.Date(r, "start_date"); err != nil {
		return filter, err
	}
	end, err := params.Date(r, "end_date")
	if err != nil {
		return filter, err
	}
	if end != nil {
		before := end.AddDate(0, 0, 1)
		filter.Before = &before
	}
	filter.Platform = r.URL.Query().Get("platform")
	filter.Status = r.URL.Query().Get("status")

	return filter, nil
}

func listOrders(log *slog.Logger, provider OrderProvider, op string, w http.ResponseWriter, r *http.Request, filter storage.OrderFilter) {
	ctx, cancel := context.WithTimeout(r.Context(), 10*time.Second)
	defer cancel()

	orders, err := provider.ListOrders(ctx, filter)
	if err != nil {
		log.With(slog.String("op", op), slog.String("error", err.Error())).Error("Ошибка при получении ордеров")
		http.Error(w, "Внутренняя ошибка сервера", http.StatusInternalServerError)
		return
	}
	if orders == nil {
		orders = []storage.Order{}
	}

	render.JSON(w, r, orders)
}

// GetOrders отдаёт ордера по фильтрам. BTC-ордера видны только при platform=bybit_btc.
func GetOrders(log *slog.Logger, provider OrderProvider) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		const op = "handlers.orders.get.GetOrders"

		filter, err := orderFilter(r)
		if err != nil {
			http.Error(w, err.Error(), http.StatusBadRequest)
			return
		}
		if filter.Platform == "" {
			filter.ExcludePlatform = storage.PlatformBybitBTC
		}

		listOrders(log, provider, op, w, r, filter)
	}
}

func GetBTCOrders(log *slog.Logger, provider OrderProvider) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		const op = "handlers.orders.get.GetBTCOrders"

		filter, err := orderFilter(r)
		if err != nil {
			http.Error(w, err.Error(), http.StatusBadRequest)
			return
		}
		filter.Platform = storage.PlatformBybitBTC

		listOrders(log, provider, op, w, r, filter)
	}
}

// GetOrderStatistics: без явного статуса отменённые и просроченные не учитываются.
func GetOrderStatistics(log *slog.Logger, provider StatisticsProvider) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		const op = "handlers.orders.get.GetOrderStatistics"

		filter, err := orderFilter(r)
		if err != nil {
			http.Error(w, err.Error(), http.StatusBadRequest)
			return
		}
		to, _ := params.Date(r, "end_date")

		ctx, cancel := context.WithTimeout(r.Context(), 10*time.Second)
		defer cancel()

		stats, err := provider.OrderStatistics(ctx, statistics.OrderQuery{
			EmployeeID:      filter.EmployeeID,
			Platform:        filter.Platform,
			Status:          filter.Status,
			From:            filter.From,
			To:              to,
			ExcludeInactive: r.URL.Query().Get("include_inactive") != "true",
		})
		if err != nil {
			log.With(slog.String("op", op), slog.String("error", err.Error())).Error("Ошибка при расчёте статистики ордеров")
			http.Error(w, "Внутренняя ошибка сервера", http.StatusInternalServerError)
			return
		}

		render.JSON(w, r, stats)
	}
}
