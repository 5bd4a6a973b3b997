package get

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"p2p-reports/internal/lib/params"
	"p2p-reports/internal/service/statistics"
	"p2p-reports/internal/storage"
	"time"

	"github.com/go-chi/render"
)

type StatisticsProvider interface {
	Dashboard(ctx context.Context, period statistics.Period) (statistics.Dashboard, error)
	EmployeeStatistics(ctx context.Context, period statistics.Period) ([]statistics.EmployeeStats, error)
	StatisticsExcel(ctx context.Context, period statistics.Period) ([]byte, error)
	EmployeeProfile(ctx context.Context, employeeID int64, period statistics.Period) (statistics.Profile, error)
}

// period читает start_date и end_date; недостающие границы берутся из текущего месяца.
func period(r *http.Request, now time.Time) (statistics.Period, error) {
	p := statistics.CurrentMonth(now)

	from, err := params.Date(r, "start_date")
	if err != nil {
		return p, err
	}
	to, err := params.Date(r, "end_date")
	if err != nil {
		return p, err
	}
	if from != nil {
		p.From = *from
	}
	if to != nil {
		p.To = *to
	}
	if p.To.Before(p.From) {
		return p, errors.New("Дата начала позже даты окончания")
	}
	return p, nil
}

func GetDashboard(log *slog.Logger, provider StatisticsProvider) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		const op = "handlers.statistics.get.GetDashboard"

		p, err := period(r, time.Now())
		if err != nil {
			http.Error(w, err.Error(), http.StatusBadRequest)
			return
		}

		ctx, cancel := context.WithTimeout(r.Context(), 15*time.Second)
		defer cancel()

		dashboard, err := provider.Dashboard(ctx, p)
		if err != nil {
			log.With(slog.String("op", op), slog.String("error", err.Error())).Error("Ошибка при расчёте дашборда")
			http.Error(w, "Внутренняя ошибка сервера", http.StatusInternalServerError)
			return
		}

		render.JSON(w, r, dashboard)
	}
}

func GetStatistics(log *slog.Logger, provider StatisticsProvider) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		const op = "handlers.statistics.get.GetStatistics"

		p, err := period(r, time.Now())
		if err != nil {
			http.Error(w, err.Error(), http.StatusBadRequest)
			return
		}

		ctx, cancel := context.WithTimeout(r.Context(), 15*time.Second)
		defer cancel()

		stats, err := provider.EmployeeStatistics(ctx, p)
		if err != nil {
			log.With(slog.String("op", op), slog.String("error", err.Error())).Error("Ошибка при расчёте статистики")
			http.Error(w, "Внутренняя ошибка сервера", http.StatusInternalServerError)
			return
		}
		if stats == nil {
			stats = []statistics.EmployeeStats{}
		}

		render.JSON(w, r, stats)
	}
}

// GetStatisticsExcel отдаёт статистику сотрудников за период файлом XLSX.
func GetStatisticsExcel(log *slog.Logger, provider StatisticsProvider) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		const op = "handlers.statistics.get.GetStatisticsExcel"

		p, err := period(r, time.Now())
		if err != nil {
			http.Error(w, err.Error(), http.StatusBadRequest)
			return
		}

		ctx, cancel := context.WithTimeout(r.Context(), 30*time.Second)
		defer cancel()

		excelBytes, err := provider.StatisticsExcel(ctx, p)
		if err != nil {
			log.With(slog.String("op", op), slog.String("error", err.Error())).Error("Ошибка при формировании Excel")
			http.Error(w, "Внутренняя ошибка сервера", http.StatusInternalServerError)
			return
		}

		fileName := fmt.Sprintf("statistics_%s_%s.xlsx", p.From.Format(params.DateLayout), p.To.Format(params.DateLayout))
		w.Header().Set("Content-Type", "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet")
		w.Header().Set("Content-Disposition", "attachment; filename="+fileName)
		w.Write(excelBytes)
	}
}

func GetEmployeeProfile(log *slog.Logger, provider StatisticsProvider) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		const op = "handlers.statistics.get.GetEmployeeProfile"

		id, err := params.ID(r, "id")
		if err != nil {
			http.Error(w, "Invalid ID", http.StatusBadRequest)
			return
		}
		p, err := period(r, time.Now())
		if err != nil {
			http.Error(w, err.Error(), http.StatusBadRequest)
			return
		}

		ctx, cancel := context.WithTimeout(r.Context(), 15*time.Second)
		defer cancel()

		profile, err := provider.EmployeeProfile(ctx, id, p)
		if err != nil {
			if errors.Is(err, storage.ErrEmployeeNotFound) {
				http.Error(w, "Сотрудник не найден", http.StatusNotFound)
				return
			}
			log.With(slog.String("op", op), slog.String("error", err.Error())).Error("Ошибка при получении профиля сотрудника")
			http.Error(w, "Внутренняя ошибка сервера", http.StatusInternalServerError)
			return
		}

		render.JSON(w, r, profile)
	}
}
