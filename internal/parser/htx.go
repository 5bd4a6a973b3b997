package parser

import (
	"io"
	"p2p-reports/internal/storage"
	"strings"
)

const (
	htxOrderID  = "Номер:"
	htxCoin     = "Монета"
	htxType     = "Тип"
	htxQuantity = "Количество"
	htxPrice    = "Цена за ед."
	htxTotal    = "Общая цена"
	htxStatus   = "Статус"
	htxTime     = "Время"
)

type htxParser struct{}

func htxStatusOf(v string) string {
	lower := strings.ToLower(v)
	switch {
	case isEmptyValue(v):
		return storage.StatusFilled
	case strings.Contains(lower, "завершено"):
		return storage.StatusFilled
	case strings.Contains(lower, "отменено"):
		return storage.StatusCanceled
	case strings.Contains(lower, "ожидание"):
		return storage.StatusPending
	case strings.Contains(lower, "оформление жалоб"):
		return storage.StatusAppealed
	}
	return storage.StatusFilled
}

func (htxParser) Parse(r io.Reader, filename string) (Result, error) {
	t, err := readTable(r, filename)
	if err != nil {
		return Result{}, err
	}
	if !t.has(htxOrderID, htxQuantity) {
		return Result{}, ErrMissingColumns
	}

	idx := map[string]int{}
	for _, name := range []string{htxOrderID, htxCoin, htxType, htxQuantity, htxPrice, htxTotal, htxStatus, htxTime} {
		idx[name] = t.index(name)
	}

	var res Result
	for _, row := range t.rows {
		o := storage.Order{
			Platform: storage.PlatformHTX,
			OrderID:  cell(row, idx[htxOrderID]),
			Status:   htxStatusOf(cell(row, idx[htxStatus])),
			Symbol:   "USDT",
		}
		if coin := cell(row, idx[htxCoin]); !isEmptyValue(coin) {
			o.Symbol = strings.ToUpper(coin)
		}

		typ := strings.ToLower(cell(row, idx[htxType]))
		switch {
		case strings.Contains(typ, "продать"):
			o.Side = storage.SideSell
		case strings.Contains(typ, "купить"):
			o.Side = storage.SideBuy
		}

		var hasQty, hasPrice, hasTotal bool
		o.Quantity, hasQty = plainNumber(cell(row, idx[htxQuantity]))
		o.Price, hasPrice = plainNumber(cell(row, idx[htxPrice]))
		o.TotalUSDT, hasTotal = plainNumber(cell(row, idx[htxTotal]))

		executed, err := parseTime(cell(row, idx[htxTime]))

		if isEmptyValue(o.OrderID) || !hasQty || (!hasPrice && !hasTotal) || o.Side == "" || err != nil {
			res.Skipped++
			continue
		}

		backfill(o.Quantity, &o.Price, &o.TotalUSDT)
		o.ExecutedAt = ToMoscow(storage.PlatformHTX, executed)
		res.Orders = append(res.Orders, o)
	}

	return res, nil
}
