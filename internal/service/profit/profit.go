package profit

import (
	"context"
	"fmt"
	"math"
	"p2p-reports/internal/lib/money"
	"p2p-reports/internal/metrics"
	"p2p-reports/internal/storage"

	"github.com/shopspring/decimal"
)

type Method string

const (
	MethodBalance Method = "balance"
	MethodOrders  Method = "orders"
)

func ParseMethod(s string) (Method, error) {
	switch Method(s) {
	case MethodBalance, MethodOrders:
		return Method(s), nil
	}
	return "", fmt.Errorf("неизвестный метод расчёта прибыли: %q", s)
}

const (
	// Балансы и прибыль сверх порогов считаются ошибкой ввода и обнуляются.
	BalanceClamp = 100000.0
	ProfitClamp  = 50000.0
)

type Storage interface {
	PreviousReports(ctx context.Context, report storage.ShiftReport) ([]storage.ShiftReport, error)
	InitialBalances(ctx context.Context, platform string) ([]storage.InitialBalance, error)
	GetAccount(ctx context.Context, id int64) (*storage.Account, error)
	ListOrders(ctx context.Context, filter storage.OrderFilter) ([]storage.Order, error)
}

type Result struct {
	Method              Method  `json:"method"`
	Profit              float64 `json:"profit"`
	ProjectProfit       float64 `json:"project_profit"`
	SalaryProfit        float64 `json:"salary_profit"`
	Scam                float64 `json:"scam"`
	Dokidka             float64 `json:"dokidka"`
	Internal            float64 `json:"internal"`
	Appeal              float64 `json:"appeal"`
	SalesAdjustment     float64 `json:"sales_adjustment"`
	PurchasesAdjustment float64 `json:"purchases_adjustment"`
}

// Reconciliation: оба метода для одного отчёта. Расхождение только помечается.
type Reconciliation struct {
	Balance    Result  `json:"balance"`
	Orders     Result  `json:"orders"`
	Difference float64 `json:"difference"`
	Diverged   bool    `json:"diverged"`
}

type Calculator struct {
	storage Storage
}

func NewCalculator(storage Storage) *Calculator {
	return &Calculator{storage: storage}
}

func (c *Calculator) Calculate(ctx context.Context, method Method, report storage.ShiftReport) (Result, error) {
	switch method {
	case MethodOrders:
		return c.FromOrders(ctx, report)
	case MethodBalance:
		return c.FromBalances(ctx, report)
	}
	return Result{}, fmt.Errorf("service.profit.Calculate: неизвестный метод %q", method)
}

// FromBalances считает прибыль по дельте балансов аккаунтов смены.
func (c *Calculator) FromBalances(ctx context.Context, report storage.ShiftReport) (Result, error) {
	const op = "service.profit.FromBalances"

	lookup := c.newPrevLookup(report)

	raw := decimal.Zero
	for _, platform := range storage.Platforms {
		for _, acc := range report.Balances[platform] {
			delta, err := lookup.accountDelta(ctx, platform, acc)
			if err != nil {
				return Result{}, fmt.Errorf("%s: отчёт id=%d: %w", op, report.ID, err)
			}
			raw = raw.Add(decimal.NewFromFloat(delta))
		}
	}

	cats := categories{
		scam:     report.Scam.Amount,
		dokidka:  report.Dokidka.Amount,
		internal: report.InternalTransfer.Amount,
		appeal:   report.Appeal.Amount,
	}

	var special []storage.Order
	if report.HasWindow() {
		var err error
		special, err = c.windowOrders(ctx, report, storage.SpecialStatuses...)
		if err != nil {
			return Result{}, fmt.Errorf("%s: %w", op, err)
		}
		for _, o := range special {
			// ордера с чекбоксами учитываются ниже поштучно
			if !o.CountInSales && !o.CountInPurchases {
				cats.add(o.Status, o.Quantity)
			}
		}
	}

	profit := raw.InexactFloat64()
	if math.Abs(profit) > ProfitClamp {
		profit = 0
	}

	return settle(MethodBalance, profit, cats, report, special, false), nil
}

// FromOrders считает прибыль по завершённым ордерам окна смены: покупки минус продажи.
func (c *Calculator) FromOrders(ctx context.Context, report storage.ShiftReport) (Result, error) {
	const op = "service.profit.FromOrders"

	if !report.HasWindow() {
		return Result{Method: MethodOrders}, nil
	}

	filled, err := c.windowOrders(ctx, report, storage.StatusFilled)
	if err != nil {
		return Result{}, fmt.Errorf("%s: %w", op, err)
	}
	special, err := c.windowOrders(ctx, report, storage.SpecialStatuses...)
	if err != nil {
		return Result{}, fmt.Errorf("%s: %w", op, err)
	}

	buys, sells := decimal.Zero, decimal.Zero
	for _, o := range filled {
		switch o.Side {
		case storage.SideBuy:
			buys = buys.Add(decimal.NewFromFloat(o.Quantity))
		case storage.SideSell:
			sells = sells.Add(decimal.NewFromFloat(o.Quantity))
		}
	}

	var cats categories
	for _, o := range special {
		cats.add(o.Status, o.Quantity)
	}

	return settle(MethodOrders, buys.Sub(sells).InexactFloat64(), cats, report, special, true), nil
}

// Reconcile считает оба метода и помечает расхождение больше tolerance.
func (c *Calculator) Reconcile(ctx context.Context, report storage.ShiftReport, tolerance float64) (Reconciliation, error) {
	const op = "service.profit.Reconcile"

	byBalance, err := c.FromBalances(ctx, report)
	if err != nil {
		return Reconciliation{}, fmt.Errorf("%s: %w", op, err)
	}
	byOrders, err := c.FromOrders(ctx, report)
	if err != nil {
		return Reconciliation{}, fmt.Errorf("%s: %w", op, err)
	}

	diff := money.Round2(byBalance.Profit - byOrders.Profit)
	rec := Reconciliation{
		Balance:    byBalance,
		Orders:     byOrders,
		Difference: diff,
		Diverged:   math.Abs(diff) > tolerance,
	}
	if rec.Diverged {
		metrics.ProfitDivergence.Inc()
	}

	return rec, nil
}

// PlatformDeltas: сумма дельт балансов по каждой площадке отчёта.
func (c *Calculator) PlatformDeltas(ctx context.Context, report storage.ShiftReport) (map[string]float64, error) {
	const op = "service.profit.PlatformDeltas"

	lookup := c.newPrevLookup(report)
	deltas := make(map[string]float64, len(storage.Platforms))
	for _, platform := range storage.Platforms {
		total := decimal.Zero
		for _, acc := range report.Balances[platform] {
			delta, err := lookup.accountDelta(ctx, platform, acc)
			if err != nil {
				return nil, fmt.Errorf("%s: %w", op, err)
			}
			total = total.Add(decimal.NewFromFloat(delta))
		}
		deltas[platform] = money.Round2(total.InexactFloat64())
	}
	return deltas, nil
}

func (c *Calculator) windowOrders(ctx context.Context, report storage.ShiftReport, statuses ...string) ([]storage.Order, error) {
	orders, err := c.storage.ListOrders(ctx, storage.OrderFilter{
		EmployeeID: report.EmployeeID,
		Statuses:   statuses,
		From:       report.ShiftStartTime,
		To:         report.ShiftEndTime,
	})
	if err != nil {
		return nil, fmt.Errorf("ордера смены отчёта id=%d: %w", report.ID, err)
	}
	return orders, nil
}

func clampBalance(v float64) float64 {
	if math.Abs(v) > BalanceClamp {
		return 0
	}
	return v
}
