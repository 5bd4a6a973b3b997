package statistics

import (
	"context"
	"fmt"
	"p2p-reports/internal/lib/money"
	"p2p-reports/internal/service/profit"
	"p2p-reports/internal/storage"
	"time"

	"golang.org/x/sync/errgroup"
)

const employeeWorkers = 4

type EmployeeStats struct {
	ID                int64   `json:"id"`
	Name              string  `json:"name"`
	Telegram          string  `json:"telegram"`
	TotalDays         int     `json:"total_days"`
	TotalShifts       int     `json:"total_shifts"`
	TotalRequests     int     `json:"total_requests"`
	TotalBybit        int     `json:"total_bybit"`
	TotalHTX          int     `json:"total_htx"`
	TotalBliss        int     `json:"total_bliss"`
	AvgRequestsPerDay float64 `json:"avg_requests_per_day"`
	TotalProfit       float64 `json:"total_profit"`
	NetProfit         float64 `json:"net_profit"`
	Salary            float64 `json:"salary"`
	TotalScam         float64 `json:"total_scam"`
	TotalTransfer     float64 `json:"total_transfer"`
	AvgProfitPerShift float64 `json:"avg_profit_per_shift"`
}

// EmployeeStatistics: сводка по каждому активному сотруднику за период.
func (s *Service) EmployeeStatistics(ctx context.Context, period Period) ([]EmployeeStats, error) {
	const op = "service.statistics.EmployeeStatistics"

	employees, err := s.storage.ListEmployees(ctx, true)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	stats := make([]EmployeeStats, len(employees))

	g, gCtx := errgroup.WithContext(ctx)
	g.SetLimit(employeeWorkers)
	for i, emp := range employees {
		g.Go(func() error {
			reports, err := s.storage.ListReports(gCtx, period.reportFilter(emp.ID))
			if err != nil {
				return fmt.Errorf("отчёты сотрудника %d: %w", emp.ID, err)
			}
			st, err := s.employeeStats(gCtx, emp, reports, s.methods.Statistics)
			if err != nil {
				return err
			}
			stats[i] = st
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	return stats, nil
}

func (s *Service) employeeStats(ctx context.Context, emp storage.Employee, reports []storage.ShiftReport, method profit.Method) (EmployeeStats, error) {
	st := EmployeeStats{
		ID:       emp.ID,
		Name:     emp.Name,
		Telegram: emp.Telegram,
	}
	if len(reports) == 0 {
		return st, nil
	}

	var fromPlatforms, fromField int
	var project, salaryProfit, scams, transfers []float64
	days := make(map[time.Time]struct{})

	for _, r := range reports {
		res, err := s.profit.Calculate(ctx, method, r)
		if err != nil {
			return EmployeeStats{}, err
		}
		project = append(project, res.ProjectProfit)
		salaryProfit = append(salaryProfit, res.SalaryProfit)
		scams = append(scams, r.Scam.Amount)
		transfers = append(transfers, r.Dokidka.Amount)

		st.TotalBybit += r.BybitRequests
		st.TotalHTX += r.HTXRequests
		st.TotalBliss += r.BlissRequests
		fromPlatforms += r.BybitRequests + r.HTXRequests + r.BlissRequests
		fromField += r.TotalRequests
		days[r.ShiftDate] = struct{}{}
	}

	net := money.Sum(salaryProfit...)
	percent := storage.DefaultSalaryPercent
	if emp.SalaryPercent != nil {
		percent = *emp.SalaryPercent
	}

	st.TotalShifts = len(reports)
	st.TotalDays = len(days)
	st.TotalRequests = max(fromPlatforms, fromField)
	st.AvgRequestsPerDay = money.Round2(money.Ratio(float64(st.TotalRequests), float64(st.TotalDays)))
	st.TotalProfit = money.Round2(money.Sum(project...))
	st.NetProfit = money.Round2(net)
	st.Salary = money.Round2(max(0, money.Percent(net, percent)))
	st.TotalScam = money.Round2(money.Sum(scams...))
	st.TotalTransfer = money.Round2(money.Sum(transfers...))
	st.AvgProfitPerShift = money.Round2(money.Ratio(net, float64(st.TotalShifts)))

	return st, nil
}
