package profit

import (
	"p2p-reports/internal/lib/money"
	"p2p-reports/internal/storage"

	"github.com/shopspring/decimal"
)

type categories struct {
	scam     float64
	dokidka  float64
	internal float64
	appeal   float64
}

func (c *categories) add(status string, amount float64) {
	switch status {
	case storage.StatusScam:
		c.scam = money.Sum(c.scam, amount)
	case storage.StatusAppealed:
		c.appeal = money.Sum(c.appeal, amount)
	case storage.StatusDokidka:
		c.dokidka = money.Sum(c.dokidka, amount)
	case storage.StatusInternalTransfer:
		c.internal = money.Sum(c.internal, amount)
	}
}

// settle применяет чекбоксы отчёта и ордеров к сырой прибыли.
// Скам с поштучным чекбоксом уменьшает корректировку: деньги ушли, а не пришли.
// Без чекбоксов отчёта прибыль остаётся сырой, если не задан always.
func settle(method Method, raw float64, cats categories, report storage.ShiftReport, special []storage.Order, always bool) Result {
	sales, purchases := decimal.Zero, decimal.Zero

	flagged := []struct {
		adj    storage.Adjustment
		amount float64
	}{
		{report.Scam, cats.scam},
		{report.Dokidka, cats.dokidka},
		{report.InternalTransfer, cats.internal},
		{report.Appeal, cats.appeal},
	}
	for _, f := range flagged {
		if f.adj.CountInSales {
			sales = sales.Add(decimal.NewFromFloat(f.amount))
		}
		if f.adj.CountInPurchases {
			purchases = purchases.Add(decimal.NewFromFloat(f.amount))
		}
	}

	for _, o := range special {
		q := decimal.NewFromFloat(o.Quantity)
		if o.Status == storage.StatusScam {
			q = q.Neg()
		}
		if o.CountInSales {
			sales = sales.Add(q)
		}
		if o.CountInPurchases {
			purchases = purchases.Add(q)
		}
	}

	profit := decimal.NewFromFloat(raw)
	if always || report.AnyFlag() {
		profit = profit.Sub(sales).Add(purchases)
	}

	p := money.Round2(profit.InexactFloat64())
	return Result{
		Method:              method,
		Profit:              p,
		ProjectProfit:       p,
		SalaryProfit:        p,
		Scam:                money.Round2(cats.scam),
		Dokidka:             money.Round2(cats.dokidka),
		Internal:            money.Round2(cats.internal),
		Appeal:              money.Round2(cats.appeal),
		SalesAdjustment:     money.Round2(sales.InexactFloat64()),
		PurchasesAdjustment: money.Round2(purchases.InexactFloat64()),
	}
}
