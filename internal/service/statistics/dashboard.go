package statistics

import (
	"context"
	"fmt"
	"p2p-reports/internal/lib/money"
	"p2p-reports/internal/service/profit"
	"p2p-reports/internal/storage"
	"sort"

	"golang.org/x/sync/errgroup"
)

const lastReportsLimit = 3

type Dashboard struct {
	TotalProfit               float64                        `json:"total_profit"`
	MonthTotalProfit          float64                        `json:"month_total_profit"`
	TotalVolume               float64                        `json:"total_volume"`
	TotalRequests             int                            `json:"total_requests"`
	MonthTotalRequests        int                            `json:"month_total_requests"`
	MorningProfit             float64                        `json:"morning_profit"`
	EveningProfit             float64                        `json:"evening_profit"`
	EmployeeStats             []DashboardEmployee            `json:"employee_stats"`
	EmployeeStatsByDepartment map[string][]DashboardEmployee `json:"employee_stats_by_department"`
	LastReports               []LastReport                   `json:"last_reports"`
	Reports                   []ReportProfit                 `json:"reports"`
	ProfitByDay               map[string]float64             `json:"profit_by_day"`
}

type DashboardEmployee struct {
	ID                int64   `json:"id"`
	Name              string  `json:"name"`
	Telegram          string  `json:"telegram"`
	TotalRequests     int     `json:"total_requests"`
	NetProfit         float64 `json:"net_profit"`
	TotalShifts       int     `json:"total_shifts"`
	AvgProfitPerShift float64 `json:"avg_profit_per_shift"`
}

// ReportProfit: отчёт с прибылью проекта.
type ReportProfit struct {
	storage.ShiftReport
	NetProfit float64 `json:"net_profit"`
}

type PlatformDelta struct {
	Accounts int     `json:"accounts"`
	Delta    float64 `json:"delta"`
}

type LastReport struct {
	ID            int64                    `json:"id"`
	EmployeeName  string                   `json:"employee_name"`
	ShiftDate     string                   `json:"shift_date"`
	ShiftType     string                   `json:"shift_type"`
	TotalRequests int                      `json:"total_requests"`
	Profit        float64                  `json:"profit"`
	Platforms     map[string]PlatformDelta `json:"platforms"`
}

// profitCache считает прибыль отчёта один раз за запрос.
type profitCache struct {
	calc   ProfitCalculator
	method profit.Method
	byID   map[int64]profit.Result
}

func (c *profitCache) get(ctx context.Context, r storage.ShiftReport) (profit.Result, error) {
	if res, ok := c.byID[r.ID]; ok {
		return res, nil
	}
	res, err := c.calc.Calculate(ctx, c.method, r)
	if err != nil {
		return profit.Result{}, err
	}
	c.byID[r.ID] = res
	return res, nil
}

// Dashboard: итоги периода, а также топ сотрудников и итоги текущего месяца.
func (s *Service) Dashboard(ctx context.Context, period Period) (Dashboard, error) {
	const op = "service.statistics.Dashboard"

	month := CurrentMonth(s.now())

	var (
		reports, monthReports, latest []storage.ShiftReport
		employees                     []storage.Employee
	)

	g, gCtx := errgroup.WithContext(ctx)
	g.Go(func() error {
		var err error
		reports, err = s.storage.ListReports(gCtx, period.reportFilter(0))
		return err
	})
	g.Go(func() error {
		var err error
		monthReports, err = s.storage.ListReports(gCtx, month.reportFilter(0))
		return err
	})
	g.Go(func() error {
		var err error
		latest, err = s.storage.ListReports(gCtx, storage.ReportFilter{Limit: lastReportsLimit})
		return err
	})
	g.Go(func() error {
		var err error
		employees, err = s.storage.ListEmployees(gCtx, true)
		return err
	})
	if err := g.Wait(); err != nil {
		return Dashboard{}, fmt.Errorf("%s: %w", op, err)
	}

	cache := &profitCache{calc: s.profit, method: s.methods.Dashboard, byID: make(map[int64]profit.Result)}

	d := Dashboard{
		Reports:     make([]ReportProfit, 0, len(reports)),
		ProfitByDay: make(map[string]float64),
	}

	var total, morning, evening []float64
	for _, r := range reports {
		res, err := cache.get(ctx, r)
		if err != nil {
			return Dashboard{}, fmt.Errorf("%s: %w", op, err)
		}
		p := res.ProjectProfit
		total = append(total, p)
		switch r.ShiftType {
		case storage.ShiftMorning:
			morning = append(morning, p)
		case storage.ShiftEvening:
			evening = append(evening, p)
		}
		d.TotalRequests += platformRequests(r)
		d.Reports = append(d.Reports, ReportProfit{ShiftReport: r, NetProfit: money.Round2(p)})
		key := dateKey(r.ShiftDate)
		d.ProfitByDay[key] = money.Round2(money.Sum(d.ProfitByDay[key], p))
	}
	d.TotalProfit = money.Round2(money.Sum(total...))
	d.MorningProfit = money.Round2(money.Sum(morning...))
	d.EveningProfit = money.Round2(money.Sum(evening...))
	d.TotalVolume = closingVolume(reports)

	var monthProfits []float64
	for _, r := range monthReports {
		res, err := cache.get(ctx, r)
		if err != nil {
			return Dashboard{}, fmt.Errorf("%s: %w", op, err)
		}
		monthProfits = append(monthProfits, res.ProjectProfit)
		d.MonthTotalRequests += platformRequests(r)
	}
	d.MonthTotalProfit = money.Round2(money.Sum(monthProfits...))

	var err error
	if d.EmployeeStats, err = dashboardEmployees(ctx, cache, employees, monthReports, ""); err != nil {
		return Dashboard{}, fmt.Errorf("%s: %w", op, err)
	}
	d.EmployeeStatsByDepartment = make(map[string][]DashboardEmployee, 2)
	for _, dep := range []string{storage.DepartmentFirst, storage.DepartmentSecond} {
		stats, err := dashboardEmployees(ctx, cache, employees, monthReports, dep)
		if err != nil {
			return Dashboard{}, fmt.Errorf("%s: %w", op, err)
		}
		d.EmployeeStatsByDepartment[dep+"_department"] = stats
	}

	if d.LastReports, err = s.lastReports(ctx, latest); err != nil {
		return Dashboard{}, fmt.Errorf("%s: %w", op, err)
	}

	return d, nil
}

// dashboardEmployees: прибыль и заявки по сотрудникам. С department
// учитываются только отчёты отдела и только сотрудники, у которых они есть.
func dashboardEmployees(ctx context.Context, cache *profitCache, employees []storage.Employee, reports []storage.ShiftReport, department string) ([]DashboardEmployee, error) {
	byEmployee := make(map[int64][]storage.ShiftReport)
	for _, r := range reports {
		if department != "" && r.Department != department {
			continue
		}
		byEmployee[r.EmployeeID] = append(byEmployee[r.EmployeeID], r)
	}

	stats := make([]DashboardEmployee, 0, len(employees))
	for _, emp := range employees {
		own := byEmployee[emp.ID]
		if department != "" && len(own) == 0 {
			continue
		}

		st := DashboardEmployee{ID: emp.ID, Name: emp.Name, Telegram: emp.Telegram, TotalShifts: len(own)}
		var profits []float64
		for _, r := range own {
			res, err := cache.get(ctx, r)
			if err != nil {
				return nil, err
			}
			profits = append(profits, res.ProjectProfit)
			st.TotalRequests += platformRequests(r)
		}
		net := money.Sum(profits...)
		st.NetProfit = money.Round2(net)
		st.AvgProfitPerShift = money.Round2(money.Ratio(net, float64(st.TotalShifts)))
		stats = append(stats, st)
	}

	sort.SliceStable(stats, func(i, j int) bool {
		return stats[i].NetProfit > stats[j].NetProfit
	})

	return stats, nil
}

func (s *Service) lastReports(ctx context.Context, reports []storage.ShiftReport) ([]LastReport, error) {
	last := make([]LastReport, 0, len(reports))
	for _, r := range reports {
		deltas, err := s.profit.PlatformDeltas(ctx, r)
		if err != nil {
			return nil, err
		}

		lr := LastReport{
			ID:            r.ID,
			EmployeeName:  r.EmployeeName,
			ShiftDate:     dateKey(r.ShiftDate),
			ShiftType:     r.ShiftType,
			TotalRequests: r.TotalRequests,
			Platforms:     make(map[string]PlatformDelta, len(storage.Platforms)),
		}
		sum := make([]float64, 0, len(storage.Platforms)+2)
		for _, platform := range storage.Platforms {
			lr.Platforms[platform] = PlatformDelta{
				Accounts: len(r.Balances[platform]),
				Delta:    deltas[platform],
			}
			sum = append(sum, deltas[platform])
		}
		sum = append(sum, -r.Scam.Amount, -r.Dokidka.Amount)
		lr.Profit = money.Round2(money.Sum(sum...))
		last = append(last, lr)
	}
	return last, nil
}

// closingVolume: сумма конечных балансов последней смены периода.
func closingVolume(reports []storage.ShiftReport) float64 {
	if len(reports) == 0 {
		return 0
	}
	latest := reports[0]
	for _, r := range reports[1:] {
		if latest.Before(r) {
			latest = r
		}
	}

	var ends []float64
	for _, platform := range storage.Platforms {
		for _, acc := range latest.Balances[platform] {
			ends = append(ends, acc.End())
		}
	}
	return money.Round2(money.Sum(ends...))
}

func platformRequests(r storage.ShiftReport) int {
	return r.BybitRequests + r.HTXRequests + r.BlissRequests
}
