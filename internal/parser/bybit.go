package parser

import (
	"io"
	"p2p-reports/internal/storage"
	"strings"
)

type bybitColumn int

const (
	colUnknown bybitColumn = iota
	colOrderID
	colSymbol
	colSide
	colCoinAmount
	colPrice
	colFiatAmount
	colStatus
	colTime
)

// Порядок проверки важен: "Coin Amount" не должен попасть в цену и т.п.
var bybitHeaderRules = []struct {
	col     bybitColumn
	needles []string
}{
	{colOrderID, []string{"order no", "order id", "orderid", "order_id", "номер"}},
	{colSymbol, []string{"cryptocurrency", "symbol", "pair", "пара", "инструмент", "currency", "валюта"}},
	{colSide, []string{"side", "type", "тип", "направление"}},
	{colCoinAmount, []string{"coin amount", "coinamount", "coin_amount"}},
	{colPrice, []string{"price", "цена", "курс"}},
	{colFiatAmount, []string{"fiat amount", "fiatamount", "fiat_amount"}},
	{colStatus, []string{"status", "статус"}},
	{colTime, []string{"time", "date", "время", "дата", "created"}},
}

func classifyBybitHeader(h string) bybitColumn {
	h = strings.ToLower(strings.TrimSpace(h))
	for _, rule := range bybitHeaderRules {
		for _, n := range rule.needles {
			if strings.Contains(h, n) {
				return rule.col
			}
		}
	}
	return colUnknown
}

func bybitStatus(v string) string {
	v = strings.ToLower(strings.TrimSpace(v))
	switch {
	case isEmptyValue(v):
		return storage.StatusFilled
	case strings.Contains(v, "completed") || strings.Contains(v, "завершен"):
		return storage.StatusFilled
	case strings.Contains(v, "canceled") || strings.Contains(v, "cancelled") || strings.Contains(v, "отменен"):
		return storage.StatusCanceled
	case strings.Contains(v, "pending") || strings.Contains(v, "ожидание"):
		return storage.StatusPending
	case strings.Contains(v, "оформление жалоб") || strings.Contains(v, "appeal"):
		return storage.StatusAppealed
	}
	return storage.StatusFilled
}

func sideOf(v string) string {
	v = strings.ToLower(v)
	switch {
	case strings.Contains(v, "buy") || strings.Contains(v, "покупка") || strings.Contains(v, "купить") || strings.Contains(v, "long"):
		return storage.SideBuy
	case strings.Contains(v, "sell") || strings.Contains(v, "продажа") || strings.Contains(v, "продать") || strings.Contains(v, "short"):
		return storage.SideSell
	}
	return ""
}

// bybitParser разбирает P2P-выгрузку Bybit (и Gate) по подстрокам заголовков.
type bybitParser struct {
	platform string
}

func (p bybitParser) Parse(r io.Reader, filename string) (Result, error) {
	t, err := readTable(r, filename)
	if err != nil {
		return Result{}, err
	}

	cols := make([]bybitColumn, len(t.header))
	for i, h := range t.header {
		cols[i] = classifyBybitHeader(h)
	}

	var res Result
	for _, row := range t.rows {
		o, ok := p.parseRow(cols, row)
		if !ok {
			res.Skipped++
			continue
		}
		res.Orders = append(res.Orders, o)
	}
	return res, nil
}

func (p bybitParser) parseRow(cols []bybitColumn, row []string) (storage.Order, bool) {
	o := storage.Order{
		Platform: p.platform,
		Status:   storage.StatusFilled,
	}
	var hasQty, hasPrice, hasTotal, hasTime bool

	// при повторяющихся колонках побеждает последняя
	for i, col := range cols {
		v := cell(row, i)
		switch col {
		case colOrderID:
			o.OrderID = v
		case colSymbol:
			if !isEmptyValue(v) {
				o.Symbol = strings.ToUpper(v)
			}
		case colSide:
			if s := sideOf(v); s != "" {
				o.Side = s
			}
		case colCoinAmount:
			o.Quantity, hasQty = cleanNumber(v)
		case colPrice:
			o.Price, hasPrice = cleanNumber(v)
		case colFiatAmount:
			o.TotalUSDT, hasTotal = cleanNumber(v)
		case colStatus:
			o.Status = bybitStatus(v)
		case colTime:
			if t, err := parseTime(v); err == nil {
				o.ExecutedAt = t
				hasTime = true
			}
		}
	}

	if isEmptyValue(o.OrderID) || !hasQty || (!hasPrice && !hasTotal) || o.Side == "" || !hasTime {
		return storage.Order{}, false
	}
	if o.Symbol == "" {
		o.Symbol = "USDT"
	}
	backfill(o.Quantity, &o.Price, &o.TotalUSDT)
	o.ExecutedAt = ToMoscow(p.platform, o.ExecutedAt)

	return o, true
}
