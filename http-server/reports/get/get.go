package get

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"p2p-reports/internal/lib/params"
	"p2p-reports/internal/service/profit"
	"p2p-reports/internal/storage"
	"time"

	"github.com/go-chi/render"
	"golang.org/x/sync/errgroup"
)

type ReportProvider interface {
	ListReports(ctx context.Context, filter storage.ReportFilter) ([]storage.ShiftReport, error)
}

type ProfitCalculator interface {
	Calculate(ctx context.Context, method profit.Method, report storage.ShiftReport) (profit.Result, error)
}

type Reconciler interface {
	Reconcile(ctx context.Context, id int64) (profit.Reconciliation, error)
}

// Report: строка списка отчётов с прибылью выбранного метода.
type Report struct {
	storage.ShiftReport
	Profit        float64       `json:"profit"`
	ProjectProfit float64       `json:"project_profit"`
	SalaryProfit  float64       `json:"salary_profit"`
	ProfitMethod  profit.Method `json:"profit_method"`
}

func reportFilter(r *http.Request) (storage.ReportFilter, error) {
	var filter storage.ReportFilter
	var err error

	if filter.From, err = params.Date(r, "start_date"); err != nil {
		return filter, err
	}
	if filter.To, err = params.Date(r, "end_date"); err != nil {
		return filter, err
	}
	if filter.EmployeeID, err = params.Int64(r, "employee_id"); err != nil {
		return filter, err
	}
	filter.Department = r.URL.Query().Get("department")
	return filter, nil
}

func GetReports(log *slog.Logger, provider ReportProvider, calc ProfitCalculator, method profit.Method) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		const op = "handlers.reports.get.GetReports"

		filter, err := reportFilter(r)
		if err != nil {
			http.Error(w, err.Error(), http.StatusBadRequest)
			return
		}

		ctx, cancel := context.WithTimeout(r.Context(), 15*time.Second)
		defer cancel()

		reports, err := provider.ListReports(ctx, filter)
		if err != nil {
			log.With(slog.String("op", op), slog.String("error", err.Error())).Error("Ошибка при получении отчётов")
			http.Error(w, "Внутренняя ошибка сервера", http.StatusInternalServerError)
			return
		}

		rows := make([]Report, len(reports))
		g, gctx := errgroup.WithContext(ctx)
		g.SetLimit(4)
		for i, rep := range reports {
			g.Go(func() error {
				res, err := calc.Calculate(gctx, method, rep)
				if err != nil {
					return err
				}
				rows[i] = Report{
					ShiftReport:   rep,
					Profit:        res.Profit,
					ProjectProfit: res.ProjectProfit,
					SalaryProfit:  res.SalaryProfit,
					ProfitMethod:  res.Method,
				}
				return nil
			})
		}
		if err := g.Wait(); err != nil {
			log.With(slog.String("op", op), slog.String("error", err.Error())).Error("Ошибка при расчёте прибыли")
			http.Error(w, "Внутренняя ошибка сервера", http.StatusInternalServerError)
			return
		}

		render.JSON(w, r, rows)
	}
}

// GetReportProfit сверяет прибыль отчёта по балансам и по ордерам.
func GetReportProfit(log *slog.Logger, reconciler Reconciler) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		const op = "handlers.reports.get.GetReportProfit"

		id, err := params.ID(r, "id")
		if err != nil {
			http.Error(w, "Invalid ID", http.StatusBadRequest)
			return
		}

		ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
		defer cancel()

		rec, err := reconciler.Reconcile(ctx, id)
		if err != nil {
			if errors.Is(err, storage.ErrNotFound) {
				http.Error(w, "Отчёт не найден", http.StatusNotFound)
				return
			}
			log.With(slog.String("op", op), slog.String("error", err.Error())).Error("Ошибка при сверке прибыли")
			http.Error(w, "Внутренняя ошибка сервера", http.StatusInternalServerError)
			return
		}

		render.JSON(w, r, map[string]any{
			"report_id":      id,
			"reconciliation": rec,
		})
	}
}
