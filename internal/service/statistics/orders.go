package statistics

import (
	"context"
	"fmt"
	"p2p-reports/internal/lib/money"
	"p2p-reports/internal/storage"
	"time"

	"github.com/shopspring/decimal"
	"golang.org/x/sync/errgroup"
)

type OrderQuery struct {
	EmployeeID int64
	Platform   string
	Status     string
	From       *time.Time
	To         *time.Time
	// ExcludeInactive скрывает canceled/expired/failed, если статус не задан явно.
	ExcludeInactive bool
}

type OrderStats struct {
	TotalOrders            int            `json:"total_orders"`
	StatusStats            map[string]int `json:"status_stats"`
	SellVolume             float64        `json:"sell_volume"`
	BuyVolume              float64        `json:"buy_volume"`
	SellVolumeUSDT         float64        `json:"sell_volume_usdt"`
	BuyVolumeUSDT          float64        `json:"buy_volume_usdt"`
	AvgSellRate            float64        `json:"avg_sell_rate"`
	AvgBuyRate             float64        `json:"avg_buy_rate"`
	ProfitUSDT             float64        `json:"profit_usdt"`
	ProfitRub              float64        `json:"profit_rub"`
	DokidkaAmount          float64        `json:"dokidka_amount"`
	InternalTransferAmount float64        `json:"internal_transfer_amount"`
	ScamAmount             float64        `json:"scam_amount"`
	TotalVolumeRub         float64        `json:"total_volume_rub"`
	TotalVolumeUSDT        float64        `json:"total_volume_usdt"`
	BTCTotalUSDT           *float64       `json:"btc_total_usdt"`
}

// volume: суммы в рублях (total_usdt) и USDT (quantity).
type volume struct {
	rub  decimal.Decimal
	usdt decimal.Decimal
}

func (v *volume) add(o storage.Order) {
	v.rub = v.rub.Add(decimal.NewFromFloat(o.TotalUSDT))
	v.usdt = v.usdt.Add(decimal.NewFromFloat(o.Quantity))
}

func (v volume) plus(other volume) volume {
	return volume{rub: v.rub.Add(other.rub), usdt: v.usdt.Add(other.usdt)}
}

func (v volume) Rub() float64  { return v.rub.InexactFloat64() }
func (v volume) USDT() float64 { return v.usdt.InexactFloat64() }

// rate: средний курс, рублей за USDT.
func (v volume) rate() float64 {
	if v.usdt.IsZero() {
		return 0
	}
	return v.rub.Div(v.usdt).InexactFloat64()
}

func (q OrderQuery) platformFilter(f *storage.OrderFilter) {
	if q.Platform == storage.PlatformBybitBTC {
		f.Platform = storage.PlatformBybitBTC
		return
	}
	f.ExcludePlatform = storage.PlatformBybitBTC
}

func (q OrderQuery) before() *time.Time {
	if q.To == nil {
		return nil
	}
	b := truncateDay(*q.To).AddDate(0, 0, 1)
	return &b
}

// OrderStatistics: объёмы, средние курсы и вклад корректировок по ордерам.
// Без явной площадки BTC-ордера не учитываются.
func (s *Service) OrderStatistics(ctx context.Context, q OrderQuery) (OrderStats, error) {
	const op = "service.statistics.OrderStatistics"

	base := storage.OrderFilter{EmployeeID: q.EmployeeID, Status: q.Status, From: q.From, Before: q.before()}
	q.platformFilter(&base)
	if q.Status == "" && q.ExcludeInactive {
		base.ExcludeStatuses = storage.InactiveStatuses
	}

	special := storage.OrderFilter{EmployeeID: q.EmployeeID, Statuses: storage.SpecialStatuses, From: q.From, Before: q.before()}
	q.platformFilter(&special)

	var orders, specials []storage.Order
	var reports []storage.ShiftReport

	g, gCtx := errgroup.WithContext(ctx)
	g.Go(func() error {
		var err error
		orders, err = s.storage.ListOrders(gCtx, base)
		return err
	})
	g.Go(func() error {
		var err error
		specials, err = s.storage.ListOrders(gCtx, special)
		return err
	})
	g.Go(func() error {
		var err error
		reports, err = s.storage.ListReports(gCtx, storage.ReportFilter{EmployeeID: q.EmployeeID, From: q.From, To: q.To})
		return err
	})
	if err := g.Wait(); err != nil {
		return OrderStats{}, fmt.Errorf("%s: %w", op, err)
	}

	return orderStats(q, orders, specials, reports), nil
}

func orderStats(q OrderQuery, orders, specials []storage.Order, reports []storage.ShiftReport) OrderStats {
	st := OrderStats{
		TotalOrders: len(orders),
		StatusStats: make(map[string]int),
	}

	var all, buys, sells volume
	for _, o := range orders {
		all.add(o)
		st.StatusStats[o.Status]++
		if o.Status != storage.StatusFilled {
			continue
		}
		switch o.Side {
		case storage.SideBuy:
			buys.add(o)
		case storage.SideSell:
			sells.add(o)
		}
	}

	var dokidka, internal, scam []float64
	for _, r := range reports {
		dokidka = append(dokidka, r.Dokidka.Amount)
		internal = append(internal, r.InternalTransfer.Amount)
		scam = append(scam, r.Scam.Amount)
	}

	var specialBuys, specialSales volume
	for _, o := range specials {
		if o.CountInPurchases {
			specialBuys.add(o)
			if o.Status == storage.StatusScam {
				scam = append(scam, o.Quantity)
			} else {
				internal = append(internal, o.Quantity)
			}
		}
		if o.CountInSales {
			specialSales.add(o)
			if o.Status == storage.StatusScam {
				scam = append(scam, o.Quantity)
			} else {
				dokidka = append(dokidka, o.Quantity)
			}
		}
	}

	totalBuys := buys.plus(specialBuys)
	totalSales := sells.plus(specialSales)

	st.BuyVolume = money.Round2(totalBuys.Rub())
	st.BuyVolumeUSDT = money.Round2(totalBuys.USDT())
	st.SellVolume = money.Round2(totalSales.Rub())
	st.SellVolumeUSDT = money.Round2(totalSales.USDT())
	st.AvgBuyRate = money.Round2(buys.rate())
	st.AvgSellRate = money.Round2(sells.rate())
	st.ProfitUSDT = money.Round2(totalBuys.usdt.Sub(totalSales.usdt).InexactFloat64())
	st.ProfitRub = money.Round2(totalBuys.rub.Sub(totalSales.rub).InexactFloat64())
	st.DokidkaAmount = money.Round2(money.Sum(dokidka...))
	st.InternalTransferAmount = money.Round2(money.Sum(internal...))
	st.ScamAmount = money.Round2(money.Sum(scam...))
	st.TotalVolumeRub = money.Round2(all.Rub())
	st.TotalVolumeUSDT = money.Round2(all.USDT())

	if q.Platform == storage.PlatformBybitBTC {
		btc := all.USDT()
		st.BTCTotalUSDT = &btc
	}

	return st
}

// ShiftStats: показатели смены по завершённым ордерам.
type ShiftStats struct {
	TotalOrders        int     `json:"total_orders"`
	WorkHours          float64 `json:"work_hours"`
	TotalSalesRub      float64 `json:"total_sales_rub"`
	TotalSalesUSDT     float64 `json:"total_sales_usdt"`
	TotalPurchasesRub  float64 `json:"total_purchases_rub"`
	TotalPurchasesUSDT float64 `json:"total_purchases_usdt"`
	AvgSellPrice       float64 `json:"avg_sell_price"`
	AvgBuyPrice        float64 `json:"avg_buy_price"`
	ProfitUSDT         float64 `json:"profit_usdt"`
}

// ShiftStatsFromOrders считает длительность работы (от первого до последнего
// завершённого ордера), объёмы и средние цены.
func ShiftStatsFromOrders(orders []storage.Order) ShiftStats {
	var completed []storage.Order
	for _, o := range orders {
		if o.Status == storage.StatusFilled {
			completed = append(completed, o)
		}
	}
	if len(completed) == 0 {
		return ShiftStats{TotalOrders: len(orders)}
	}

	first, last := completed[0].ExecutedAt, completed[0].ExecutedAt
	var buys, sells volume
	for _, o := range completed {
		if o.ExecutedAt.Before(first) {
			first = o.ExecutedAt
		}
		if o.ExecutedAt.After(last) {
			last = o.ExecutedAt
		}
		switch o.Side {
		case storage.SideBuy:
			buys.add(o)
		case storage.SideSell:
			sells.add(o)
		}
	}

	return ShiftStats{
		TotalOrders:        len(completed),
		WorkHours:          money.Round2(last.Sub(first).Hours()),
		TotalSalesRub:      money.Round2(sells.Rub()),
		TotalSalesUSDT:     money.Round2(sells.USDT()),
		TotalPurchasesRub:  money.Round2(buys.Rub()),
		TotalPurchasesUSDT: money.Round2(buys.USDT()),
		AvgSellPrice:       money.Round2(sells.rate()),
		AvgBuyPrice:        money.Round2(buys.rate()),
		ProfitUSDT:         money.Round2(buys.usdt.Sub(sells.usdt).InexactFloat64()),
	}
}
