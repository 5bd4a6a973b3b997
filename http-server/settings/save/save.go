package save

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"
	"p2p-reports/internal/storage"
	"time"

	"github.com/go-chi/render"
)

type SalarySettingsUpdater interface {
	SalarySettings(ctx context.Context) (*storage.SalarySettings, error)
	UpdateSalarySettings(ctx context.Context, st storage.SalarySettings) error
}

// request: незаданные поля сохраняют текущие значения.
type request struct {
	BasePercent          *float64 `json:"base_percent"`
	MinDailyProfit       *float64 `json:"min_daily_profit"`
	BonusPercent         *float64 `json:"bonus_percent"`
	BonusProfitThreshold *float64 `json:"bonus_profit_threshold"`
}

func (req request) apply(st *storage.SalarySettings) {
	if req.BasePercent != nil {
		st.BasePercent = *req.BasePercent
	}
	if req.MinDailyProfit != nil {
		st.MinDailyProfit = *req.MinDailyProfit
	}
	if req.BonusPercent != nil {
		st.BonusPercent = *req.BonusPercent
	}
	if req.BonusProfitThreshold != nil {
		st.BonusProfitThreshold = *req.BonusProfitThreshold
	}
}

func valid(st storage.SalarySettings) bool {
	return st.BasePercent >= 0 && st.BasePercent <= 100 &&
		st.BonusPercent >= 0 && st.BonusPercent <= 100 &&
		st.MinDailyProfit >= 0 && st.BonusProfitThreshold >= 0
}

func UpdateSalarySettings(log *slog.Logger, updater SalarySettingsUpdater) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		const op = "handlers.settings.save.UpdateSalarySettings"

		var req request
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			http.Error(w, "Invalid JSON", http.StatusBadRequest)
			return
		}

		ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
		defer cancel()

		current, err := updater.SalarySettings(ctx)
		if err != nil {
			log.With(slog.String("op", op), slog.String("error", err.Error())).Error("Ошибка при получении настроек зарплаты")
			http.Error(w, "Внутренняя ошибка сервера", http.StatusInternalServerError)
			return
		}

		st := *current
		req.apply(&st)
		if !valid(st) {
			http.Error(w, "Неверные значения настроек", http.StatusBadRequest)
			return
		}

		if err := updater.UpdateSalarySettings(ctx, st); err != nil {
			log.With(slog.String("op", op), slog.String("error", err.Error())).Error("Ошибка при сохранении настроек зарплаты")
			http.Error(w, "Внутренняя ошибка сервера", http.StatusInternalServerError)
			return
		}

		log.Info("salary settings updated",
			slog.Float64("base_percent", st.BasePercent),
			slog.Float64("bonus_percent", st.BonusPercent),
		)
		render.JSON(w, r, map[string]bool{"success": true})
	}
}
