package statistics

import (
	"context"
	"fmt"
	"p2p-reports/internal/lib/money"
	"p2p-reports/internal/storage"

	"golang.org/x/sync/errgroup"
)

type Profile struct {
	Employee        ProfileEmployee    `json:"employee"`
	Period          ProfilePeriod      `json:"period"`
	BasicStats      EmployeeStats      `json:"basic_stats"`
	ReportDetails   []ReportDetail     `json:"report_details"`
	OrderStats      ProfileOrderStats  `json:"order_stats"`
	TimeStats       *TimeStats         `json:"time_stats"`
	ShiftStats      ShiftTypeStats     `json:"shift_stats"`
	AvgStats        *AvgStats          `json:"avg_stats"`
	BestWorst       *BestWorst         `json:"best_worst"`
	PlatformProfits map[string]float64 `json:"platform_profits"`
}

type ProfileEmployee struct {
	storage.Employee
	SalaryPercent float64 `json:"salary_percent"`
}

type ProfilePeriod struct {
	StartDate string `json:"start_date"`
	EndDate   string `json:"end_date"`
}

type ReportDetail struct {
	ID                     int64              `json:"id"`
	Date                   string             `json:"date"`
	ShiftType              string             `json:"shift_type"`
	TotalRequests          int                `json:"total_requests"`
	BybitRequests          int                `json:"bybit_requests"`
	HTXRequests            int                `json:"htx_requests"`
	BlissRequests          int                `json:"bliss_requests"`
	ProjectProfit          float64            `json:"project_profit"`
	SalaryProfit           float64            `json:"salary_profit"`
	ScamAmount             float64            `json:"scam_amount"`
	DokidkaAmount          float64            `json:"dokidka_amount"`
	InternalTransferAmount float64            `json:"internal_transfer_amount"`
	PlatformDeltas         map[string]float64 `json:"platform_deltas"`
	Balances               storage.Balances   `json:"balances"`
}

type PlatformOrderStats struct {
	TotalOrders    int     `json:"total_orders"`
	BuyOrders      int     `json:"buy_orders"`
	SellOrders     int     `json:"sell_orders"`
	TotalBuysUSDT  float64 `json:"total_buys_usdt"`
	TotalSalesUSDT float64 `json:"total_sales_usdt"`
	TotalBuysRub   float64 `json:"total_buys_rub"`
	TotalSalesRub  float64 `json:"total_sales_rub"`
	AvgBuyPrice    float64 `json:"avg_buy_price"`
	AvgSellPrice   float64 `json:"avg_sell_price"`
	ProfitUSDT     float64 `json:"profit_usdt"`
}

type ProfileOrderStats struct {
	ShiftStats
	PlatformStats         map[string]int                `json:"platform_stats"`
	PlatformDetailedStats map[string]PlatformOrderStats `json:"platform_detailed_stats"`
	StatusStats           map[string]int                `json:"status_stats"`
	TotalFees             float64                       `json:"total_fees"`
	TotalOrdersCount      int                           `json:"total_orders_count"`
	CompletedOrdersCount  int                           `json:"completed_orders_count"`
	CanceledOrdersCount   int                           `json:"canceled_orders_count"`
	PendingOrdersCount    int                           `json:"pending_orders_count"`
	SpecialOrdersCount    int                           `json:"special_orders_count"`
}

type TimeStats struct {
	FirstReportDate string  `json:"first_report_date"`
	LastReportDate  string  `json:"last_report_date"`
	TotalPeriodDays int     `json:"total_period_days"`
	ActiveDays      int     `json:"active_days"`
	ActivityRatio   float64 `json:"activity_ratio"`
}

type ShiftTypeStats struct {
	MorningShifts int     `json:"morning_shifts"`
	EveningShifts int     `json:"evening_shifts"`
	MorningProfit float64 `json:"morning_profit"`
	EveningProfit float64 `json:"evening_profit"`
}

type AvgStats struct {
	AvgRequestsPerShift      float64 `json:"avg_requests_per_shift"`
	AvgProfitPerShift        float64 `json:"avg_profit_per_shift"`
	AvgProjectProfitPerShift float64 `json:"avg_project_profit_per_shift"`
	AvgBybitPerShift         float64 `json:"avg_bybit_per_shift"`
	AvgHTXPerShift           float64 `json:"avg_htx_per_shift"`
	AvgBlissPerShift         float64 `json:"avg_bliss_per_shift"`
}

type ShiftMark struct {
	Amount    float64 `json:"amount"`
	Date      string  `json:"date"`
	ShiftType string  `json:"shift_type"`
}

type RequestsMark struct {
	Count int    `json:"count"`
	Date  string `json:"date"`
}

type BestWorst struct {
	BestProfit   ShiftMark    `json:"best_profit"`
	WorstProfit  ShiftMark    `json:"worst_profit"`
	MostRequests RequestsMark `json:"most_requests"`
}

// EmployeeProfile: подробный профиль сотрудника за период.
func (s *Service) EmployeeProfile(ctx context.Context, employeeID int64, period Period) (Profile, error) {
	const op = "service.statistics.EmployeeProfile"

	var (
		emp     *storage.Employee
		reports []storage.ShiftReport
		orders  []storage.Order
	)

	g, gCtx := errgroup.WithContext(ctx)
	g.Go(func() error {
		var err error
		emp, err = s.storage.GetEmployee(gCtx, employeeID)
		return err
	})
	g.Go(func() error {
		var err error
		reports, err = s.storage.ListReports(gCtx, period.reportFilter(employeeID))
		return err
	})
	g.Go(func() error {
		from, before := period.From, period.Before()
		var err error
		orders, err = s.storage.ListOrders(gCtx, storage.OrderFilter{EmployeeID: employeeID, From: &from, Before: &before})
		return err
	})
	if err := g.Wait(); err != nil {
		return Profile{}, fmt.Errorf("%s: %w", op, err)
	}

	basic, err := s.employeeStats(ctx, *emp, reports, s.methods.Profile)
	if err != nil {
		return Profile{}, fmt.Errorf("%s: %w", op, err)
	}

	percent := storage.DefaultSalaryPercent
	if emp.SalaryPercent != nil {
		percent = *emp.SalaryPercent
	}

	p := Profile{
		Employee:        ProfileEmployee{Employee: *emp, SalaryPercent: percent},
		Period:          ProfilePeriod{StartDate: dateKey(period.From), EndDate: dateKey(period.To)},
		BasicStats:      basic,
		ReportDetails:   make([]ReportDetail, 0, len(reports)),
		OrderStats:      profileOrderStats(orders),
		PlatformProfits: make(map[string]float64, len(storage.Platforms)),
	}
	for _, platform := range storage.Platforms {
		p.PlatformProfits[platform] = 0
	}

	salaryProfits := make([]float64, len(reports))
	var projectProfits, morning, evening []float64
	for i, r := range reports {
		res, err := s.profit.Calculate(ctx, s.methods.Profile, r)
		if err != nil {
			return Profile{}, fmt.Errorf("%s: %w", op, err)
		}
		deltas, err := s.profit.PlatformDeltas(ctx, r)
		if err != nil {
			return Profile{}, fmt.Errorf("%s: %w", op, err)
		}
		for platform, d := range deltas {
			p.PlatformProfits[platform] = money.Round2(money.Sum(p.PlatformProfits[platform], d))
		}

		salaryProfits[i] = res.SalaryProfit
		projectProfits = append(projectProfits, res.ProjectProfit)
		switch r.ShiftType {
		case storage.ShiftMorning:
			p.ShiftStats.MorningShifts++
			morning = append(morning, res.SalaryProfit)
		case storage.ShiftEvening:
			p.ShiftStats.EveningShifts++
			evening = append(evening, res.SalaryProfit)
		}

		p.ReportDetails = append(p.ReportDetails, ReportDetail{
			ID:                     r.ID,
			Date:                   dateKey(r.ShiftDate),
			ShiftType:              r.ShiftType,
			TotalRequests:          r.TotalRequests,
			BybitRequests:          r.BybitRequests,
			HTXRequests:            r.HTXRequests,
			BlissRequests:          r.BlissRequests,
			ProjectProfit:          money.Round2(res.ProjectProfit),
			SalaryProfit:           money.Round2(res.SalaryProfit),
			ScamAmount:             r.Scam.Amount,
			DokidkaAmount:          r.Dokidka.Amount,
			InternalTransferAmount: r.InternalTransfer.Amount,
			PlatformDeltas:         deltas,
			Balances:               r.Balances,
		})
	}
	p.ShiftStats.MorningProfit = money.Round2(money.Sum(morning...))
	p.ShiftStats.EveningProfit = money.Round2(money.Sum(evening...))

	if len(reports) > 0 {
		p.TimeStats = timeStats(reports)
		p.AvgStats = avgStats(reports, salaryProfits, projectProfits)
		p.BestWorst = bestWorst(reports, salaryProfits)
	}

	return p, nil
}

func profileOrderStats(orders []storage.Order) ProfileOrderStats {
	st := ProfileOrderStats{
		ShiftStats:            ShiftStatsFromOrders(orders),
		PlatformStats:         make(map[string]int),
		PlatformDetailedStats: make(map[string]PlatformOrderStats),
		StatusStats:           make(map[string]int),
		TotalOrdersCount:      len(orders),
	}

	byPlatform := make(map[string]*struct{ buys, sells volume })
	var fees []float64
	for _, o := range orders {
		st.PlatformStats[o.Platform]++
		st.StatusStats[o.Status]++
		fees = append(fees, o.FeesUSDT)

		ps := st.PlatformDetailedStats[o.Platform]
		ps.TotalOrders++
		v, ok := byPlatform[o.Platform]
		if !ok {
			v = &struct{ buys, sells volume }{}
			byPlatform[o.Platform] = v
		}

		switch o.Status {
		case storage.StatusFilled:
			st.CompletedOrdersCount++
			switch o.Side {
			case storage.SideBuy:
				ps.BuyOrders++
				v.buys.add(o)
			case storage.SideSell:
				ps.SellOrders++
				v.sells.add(o)
			}
		case storage.StatusCanceled:
			st.CanceledOrdersCount++
		case storage.StatusPending:
			st.PendingOrdersCount++
		}
		if storage.IsSpecialStatus(o.Status) {
			st.SpecialOrdersCount++
		}
		st.PlatformDetailedStats[o.Platform] = ps
	}

	for platform, v := range byPlatform {
		ps := st.PlatformDetailedStats[platform]
		ps.TotalBuysUSDT = money.Round2(v.buys.USDT())
		ps.TotalSalesUSDT = money.Round2(v.sells.USDT())
		ps.TotalBuysRub = money.Round2(v.buys.Rub())
		ps.TotalSalesRub = money.Round2(v.sells.Rub())
		ps.AvgBuyPrice = money.Round2(v.buys.rate())
		ps.AvgSellPrice = money.Round2(v.sells.rate())
		ps.ProfitUSDT = money.Round2(v.buys.usdt.Sub(v.sells.usdt).InexactFloat64())
		st.PlatformDetailedStats[platform] = ps
	}
	st.TotalFees = money.Round2(money.Sum(fees...))

	return st
}

func timeStats(reports []storage.ShiftReport) *TimeStats {
	first, last := reports[0].ShiftDate, reports[0].ShiftDate
	days := make(map[string]struct{})
	for _, r := range reports {
		if r.ShiftDate.Before(first) {
			first = r.ShiftDate
		}
		if r.ShiftDate.After(last) {
			last = r.ShiftDate
		}
		days[dateKey(r.ShiftDate)] = struct{}{}
	}

	total := int(last.Sub(first).Hours()/24) + 1
	return &TimeStats{
		FirstReportDate: dateKey(first),
		LastReportDate:  dateKey(last),
		TotalPeriodDays: total,
		ActiveDays:      len(days),
		ActivityRatio:   money.Round2(float64(len(days)) / float64(total)),
	}
}

func avgStats(reports []storage.ShiftReport, salaryProfits, projectProfits []float64) *AvgStats {
	n := float64(len(reports))
	var requests, bybit, htx, bliss int
	for _, r := range reports {
		requests += r.TotalRequests
		bybit += r.BybitRequests
		htx += r.HTXRequests
		bliss += r.BlissRequests
	}
	return &AvgStats{
		AvgRequestsPerShift:      money.Round2(float64(requests) / n),
		AvgProfitPerShift:        money.Round2(money.Sum(salaryProfits...) / n),
		AvgProjectProfitPerShift: money.Round2(money.Sum(projectProfits...) / n),
		AvgBybitPerShift:         money.Round2(float64(bybit) / n),
		AvgHTXPerShift:           money.Round2(float64(htx) / n),
		AvgBlissPerShift:         money.Round2(float64(bliss) / n),
	}
}

func bestWorst(reports []storage.ShiftReport, salaryProfits []float64) *BestWorst {
	best, worst, most := 0, 0, 0
	for i := range reports {
		if salaryProfits[i] > salaryProfits[best] {
			best = i
		}
		if salaryProfits[i] < salaryProfits[worst] {
			worst = i
		}
		if reports[i].TotalRequests > reports[most].TotalRequests {
			most = i
		}
	}
	mark := func(i int) ShiftMark {
		return ShiftMark{
			Amount:    money.Round2(salaryProfits[i]),
			Date:      dateKey(reports[i].ShiftDate),
			ShiftType: reports[i].ShiftType,
		}
	}
	return &BestWorst{
		BestProfit:   mark(best),
		WorstProfit:  mark(worst),
		MostRequests: RequestsMark{Count: reports[most].TotalRequests, Date: dateKey(reports[most].ShiftDate)},
	}
}
