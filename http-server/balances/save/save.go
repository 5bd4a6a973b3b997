package save

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"p2p-reports/internal/lib/params"
	"p2p-reports/internal/storage"
	"strings"
	"time"

	"github.com/go-chi/render"
)

type InitialBalanceSaver interface {
	ReplaceInitialBalances(ctx context.Context, balances []storage.InitialBalance) error
}

type BalanceHistorySaver interface {
	AddBalanceHistory(ctx context.Context, h storage.BalanceHistory) (int64, error)
}

type initialRequest struct {
	Balances []storage.InitialBalance `json:"balances"`
}

// ReplaceInitialBalances заменяет весь набор начальных балансов.
func ReplaceInitialBalances(log *slog.Logger, saver InitialBalanceSaver) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		const op = "handlers.balances.save.ReplaceInitialBalances"

		var req initialRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			http.Error(w, "Invalid JSON", http.StatusBadRequest)
			return
		}

		for i := range req.Balances {
			b := &req.Balances[i]
			b.Platform = strings.ToLower(strings.TrimSpace(b.Platform))
			b.AccountName = strings.TrimSpace(b.AccountName)
			if b.Platform == "" || b.AccountName == "" {
				http.Error(w, fmt.Sprintf("Баланс #%d: площадка и аккаунт обязательны", i+1), http.StatusBadRequest)
				return
			}
		}

		ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
		defer cancel()

		if err := saver.ReplaceInitialBalances(ctx, req.Balances); err != nil {
			log.With(slog.String("op", op), slog.String("error", err.Error())).Error("Ошибка при сохранении начальных балансов")
			http.Error(w, "Внутренняя ошибка сервера", http.StatusInternalServerError)
			return
		}

		render.JSON(w, r, map[string]any{"success": true, "count": len(req.Balances)})
	}
}

type historyRequest struct {
	AccountID    int64   `json:"account_id"`
	AccountName  string  `json:"account_name"`
	Platform     string  `json:"platform"`
	ShiftDate    string  `json:"shift_date"`
	ShiftType    string  `json:"shift_type"`
	Balance      float64 `json:"balance"`
	EmployeeID   *int64  `json:"employee_id"`
	EmployeeName string  `json:"employee_name"`
	BalanceType  string  `json:"balance_type"`
}

func AddBalanceHistory(log *slog.Logger, saver BalanceHistorySaver) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		const op = "handlers.balances.save.AddBalanceHistory"

		var req historyRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			http.Error(w, "Invalid JSON", http.StatusBadRequest)
			return
		}
		if req.AccountID <= 0 || req.Platform == "" || req.ShiftDate == "" {
			http.Error(w, "Не указаны обязательные поля", http.StatusBadRequest)
			return
		}
		day, err := params.ParseDate(req.ShiftDate)
		if err != nil {
			http.Error(w, err.Error(), http.StatusBadRequest)
			return
		}
		if req.ShiftType != storage.ShiftMorning && req.ShiftType != storage.ShiftEvening {
			http.Error(w, "Неверный тип смены", http.StatusBadRequest)
			return
		}
		if req.BalanceType != "" && req.BalanceType != "start" && req.BalanceType != "end" {
			http.Error(w, "Неверный тип баланса", http.StatusBadRequest)
			return
		}

		ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
		defer cancel()

		id, err := saver.AddBalanceHistory(ctx, storage.BalanceHistory{
			AccountID:    req.AccountID,
			AccountName:  req.AccountName,
			Platform:     strings.ToLower(req.Platform),
			ShiftDate:    *day,
			ShiftType:    req.ShiftType,
			Balance:      req.Balance,
			EmployeeID:   req.EmployeeID,
			EmployeeName: req.EmployeeName,
			BalanceType:  req.BalanceType,
		})
		if err != nil {
			log.With(slog.String("op", op), slog.String("error", err.Error())).Error("Ошибка при сохранении истории баланса")
			http.Error(w, "Внутренняя ошибка сервера", http.StatusInternalServerError)
			return
		}

		render.Status(r, http.StatusCreated)
		render.JSON(w, r, map[string]any{"id": id, "success": true})
	}
}
