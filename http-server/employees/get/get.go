package get

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"p2p-reports/internal/lib/money"
	"p2p-reports/internal/lib/params"
	"p2p-reports/internal/storage"
	"time"

	"github.com/go-chi/render"
)

type EmployeeProvider interface {
	ListEmployees(ctx context.Context, activeOnly bool) ([]storage.Employee, error)
	GetEmployee(ctx context.Context, id int64) (*storage.Employee, error)
	ListAccounts(ctx context.Context, filter storage.AccountFilter) ([]storage.Account, error)
	ListScams(ctx context.Context, employeeID int64) ([]storage.ScamRecord, error)
}

// GetEmployees отдаёт активных сотрудников, с ?all=true и уволенных.
func GetEmployees(log *slog.Logger, provider EmployeeProvider) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		const op = "handlers.employees.get.GetEmployees"

		ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
		defer cancel()

		employees, err := provider.ListEmployees(ctx, r.URL.Query().Get("all") != "true")
		if err != nil {
			log.With(slog.String("op", op), slog.String("error", err.Error())).Error("Ошибка при получении сотрудников")
			http.Error(w, "Внутренняя ошибка сервера", http.StatusInternalServerError)
			return
		}
		if employees == nil {
			employees = []storage.Employee{}
		}

		render.JSON(w, r, employees)
	}
}

// GetEmployeeAccounts отдаёт активные аккаунты сотрудника по площадкам.
func GetEmployeeAccounts(log *slog.Logger, provider EmployeeProvider) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		const op = "handlers.employees.get.GetEmployeeAccounts"

		id, err := params.ID(r, "id")
		if err != nil {
			http.Error(w, "Invalid ID", http.StatusBadRequest)
			return
		}

		ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
		defer cancel()

		accounts, err := provider.ListAccounts(ctx, storage.AccountFilter{EmployeeID: id, ActiveOnly: true})
		if err != nil {
			log.With(slog.String("op", op), slog.String("error", err.Error())).Error("Ошибка при получении аккаунтов сотрудника")
			http.Error(w, "Внутренняя ошибка сервера", http.StatusInternalServerError)
			return
		}

		grouped := make(map[string][]storage.Account, len(storage.Platforms))
		for _, p := range storage.Platforms {
			grouped[p] = []storage.Account{}
		}
		for _, acc := range accounts {
			grouped[acc.Platform] = append(grouped[acc.Platform], acc)
		}

		render.JSON(w, r, grouped)
	}
}

type scamItem struct {
	ID            int64   `json:"id"`
	Date          string  `json:"date"`
	Amount        float64 `json:"amount"`
	Comment       string  `json:"comment"`
	ShiftReportID *int64  `json:"shift_report_id"`
}

type scamsResponse struct {
	EmployeeID   int64      `json:"employee_id"`
	EmployeeName string     `json:"employee_name"`
	Scams        []scamItem `json:"scams"`
	TotalAmount  float64    `json:"total_amount"`
}

func GetEmployeeScams(log *slog.Logger, provider EmployeeProvider) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		const op = "handlers.employees.get.GetEmployeeScams"

		id, err := params.ID(r, "id")
		if err != nil {
			http.Error(w, "Invalid ID", http.StatusBadRequest)
			return
		}

		ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
		defer cancel()

		emp, err := provider.GetEmployee(ctx, id)
		if err != nil {
			if errors.Is(err, storage.ErrEmployeeNotFound) {
				http.Error(w, "Сотрудник не найден", http.StatusNotFound)
				return
			}
			log.With(slog.String("op", op), slog.String("error", err.Error())).Error("Ошибка при получении сотрудника")
			http.Error(w, "Внутренняя ошибка сервера", http.StatusInternalServerError)
			return
		}

		scams, err := provider.ListScams(ctx, id)
		if err != nil {
			log.With(slog.String("op", op), slog.String("error", err.Error())).Error("Ошибка при получении истории скама")
			http.Error(w, "Внутренняя ошибка сервера", http.StatusInternalServerError)
			return
		}

		resp := scamsResponse{EmployeeID: emp.ID, EmployeeName: emp.Name, Scams: make([]scamItem, 0, len(scams))}
		amounts := make([]float64, 0, len(scams))
		for _, sc := range scams {
			resp.Scams = append(resp.Scams, scamItem{
				ID:            sc.ID,
				Date:          sc.Date.Format(params.DateLayout),
				Amount:        sc.Amount,
				Comment:       sc.Comment,
				ShiftReportID: sc.ShiftReportID,
			})
			amounts = append(amounts, sc.Amount)
		}
		resp.TotalAmount = money.Round2(money.Sum(amounts...))

		render.JSON(w, r, resp)
	}
}
