// Package statistics собирает сводки для дашборда, профиля сотрудника,
// статистики по ордерам и выгрузки в Excel.
package statistics

import (
	"context"
	"p2p-reports/internal/service/profit"
	"p2p-reports/internal/storage"
	"time"
)

type Storage interface {
	ListEmployees(ctx context.Context, activeOnly bool) ([]storage.Employee, error)
	GetEmployee(ctx context.Context, id int64) (*storage.Employee, error)
	ListReports(ctx context.Context, filter storage.ReportFilter) ([]storage.ShiftReport, error)
	ListOrders(ctx context.Context, filter storage.OrderFilter) ([]storage.Order, error)
}

type ProfitCalculator interface {
	Calculate(ctx context.Context, method profit.Method, report storage.ShiftReport) (profit.Result, error)
	PlatformDeltas(ctx context.Context, report storage.ShiftReport) (map[string]float64, error)
}

// Methods: метод расчёта прибыли для каждой сводки.
type Methods struct {
	Dashboard  profit.Method
	Statistics profit.Method
	Profile    profit.Method
}

type Service struct {
	storage Storage
	profit  ProfitCalculator
	methods Methods
	now     func() time.Time
}

func New(storage Storage, calc ProfitCalculator, methods Methods) *Service {
	return &Service{
		storage: storage,
		profit:  calc,
		methods: methods,
		now:     time.Now,
	}
}

// Period: диапазон дат смен, обе границы включительно.
type Period struct {
	From time.Time `json:"start_date"`
	To   time.Time `json:"end_date"`
}

// Before возвращает начало дня после To, строгую границу для executed_at.
func (p Period) Before() time.Time {
	return truncateDay(p.To).AddDate(0, 0, 1)
}

func (p Period) reportFilter(employeeID int64) storage.ReportFilter {
	from, to := p.From, p.To
	return storage.ReportFilter{EmployeeID: employeeID, From: &from, To: &to}
}

// CurrentMonth: с первого числа текущего месяца по сегодня.
func CurrentMonth(now time.Time) Period {
	today := truncateDay(now)
	return Period{From: today.AddDate(0, 0, 1-today.Day()), To: today}
}

// LastDays: последние n дней, включая сегодня.
func LastDays(now time.Time, n int) Period {
	today := truncateDay(now)
	return Period{From: today.AddDate(0, 0, -n), To: today}
}

func truncateDay(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, t.Location())
}

func dateKey(t time.Time) string {
	return t.Format("2006-01-02")
}
