package salary

import (
	"context"
	"fmt"
	"p2p-reports/internal/lib/money"
	"p2p-reports/internal/service/profit"
	"p2p-reports/internal/storage"
	"time"
)

type Storage interface {
	SalarySettings(ctx context.Context) (*storage.SalarySettings, error)
	GetEmployee(ctx context.Context, id int64) (*storage.Employee, error)
	ListReports(ctx context.Context, filter storage.ReportFilter) ([]storage.ShiftReport, error)
}

type ProfitCalculator interface {
	Calculate(ctx context.Context, method profit.Method, report storage.ShiftReport) (profit.Result, error)
}

type Result struct {
	Salary               float64 `json:"salary"`
	AvgDailyProfit       float64 `json:"avg_daily_profit"`
	TotalDays            int     `json:"total_days"`
	TotalProfit          float64 `json:"total_profit"`
	BasePercent          float64 `json:"base_percent"`
	BonusPercent         float64 `json:"bonus_percent"`
	MinDailyProfit       float64 `json:"min_daily_profit"`
	BonusProfitThreshold float64 `json:"bonus_profit_threshold"`
}

type Service struct {
	storage Storage
	profit  ProfitCalculator
	method  profit.Method
}

func New(storage Storage, calc ProfitCalculator, method profit.Method) *Service {
	return &Service{storage: storage, profit: calc, method: method}
}

// Calculate считает зарплату за период [from, to] по средней прибыли на рабочий день.
// Зарплата начисляется, только если средняя прибыль не ниже min_daily_profit,
// бонус начисляется, если не ниже bonus_profit_threshold.
func (s *Service) Calculate(ctx context.Context, employeeID int64, from, to time.Time) (Result, error) {
	const op = "service.salary.Calculate"

	emp, err := s.storage.GetEmployee(ctx, employeeID)
	if err != nil {
		return Result{}, fmt.Errorf("%s: %w", op, err)
	}

	reports, err := s.storage.ListReports(ctx, storage.ReportFilter{
		EmployeeID: employeeID,
		From:       &from,
		To:         &to,
	})
	if err != nil {
		return Result{}, fmt.Errorf("%s: %w", op, err)
	}

	if len(reports) == 0 {
		def := storage.DefaultSalarySettings()
		return Result{
			BasePercent:          def.BasePercent,
			MinDailyProfit:       def.MinDailyProfit,
			BonusProfitThreshold: def.BonusProfitThreshold,
		}, nil
	}

	settings, err := s.storage.SalarySettings(ctx)
	if err != nil {
		return Result{}, fmt.Errorf("%s: %w", op, err)
	}

	profits := make([]float64, 0, len(reports))
	days := make(map[time.Time]struct{})
	for _, r := range reports {
		res, err := s.profit.Calculate(ctx, s.method, r)
		if err != nil {
			return Result{}, fmt.Errorf("%s: %w", op, err)
		}
		profits = append(profits, res.SalaryProfit)
		days[r.ShiftDate] = struct{}{}
	}

	total := money.Sum(profits...)
	avg := money.Ratio(total, float64(len(days)))

	basePercent := settings.BasePercent
	if emp.SalaryPercent != nil {
		basePercent = *emp.SalaryPercent
	}

	res := Result{
		AvgDailyProfit:       money.Round2(avg),
		TotalDays:            len(days),
		TotalProfit:          money.Round2(total),
		BasePercent:          basePercent,
		MinDailyProfit:       settings.MinDailyProfit,
		BonusProfitThreshold: settings.BonusProfitThreshold,
	}

	if avg >= settings.MinDailyProfit {
		salary := money.Percent(total, basePercent)
		if avg >= settings.BonusProfitThreshold {
			res.BonusPercent = settings.BonusPercent
			salary = money.Sum(salary, money.Percent(total, settings.BonusPercent))
		}
		res.Salary = money.Round2(salary)
	}

	return res, nil
}
