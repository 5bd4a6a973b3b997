package parser

import (
	"io"
	"p2p-reports/internal/storage"
	"strings"
)

var blissRequired = []string{"Creation date", "Internal id", "Organization user", "Amount", "Crypto amount", "Status", "Method"}

var blissSeparators = []rune{';', ',', '\t'}

const blissTimeLayout = "02.01.2006 15:04:05"

// blissParser разбирает CSV Bliss. Имя аккаунта берётся из колонки Organization user.
type blissParser struct{}

func blissStatus(v string) string {
	switch strings.ToLower(strings.TrimSpace(v)) {
	case "success", "completed", "done":
		return storage.StatusFilled
	case "cancelled", "canceled":
		return storage.StatusCanceled
	case "expired":
		return storage.StatusExpired
	case "failed":
		return storage.StatusFailed
	}
	return storage.StatusPending
}

func (blissParser) Parse(r io.Reader, _ string) (Result, error) {
	data, err := readText(r)
	if err != nil {
		return Result{}, err
	}

	var t table
	found := false
	for _, sep := range blissSeparators {
		candidate, err := readCSV(data, sep)
		if err != nil {
			continue
		}
		if candidate.has(blissRequired...) {
			t, found = candidate, true
			break
		}
	}
	if !found {
		return Result{}, ErrMissingColumns
	}

	iDate := t.index("Creation date")
	iID := t.index("Internal id")
	iUser := t.index("Organization user")
	iAmount := t.index("Amount")
	iCrypto := t.index("Crypto amount")
	iStatus := t.index("Status")
	iMethod := t.index("Method")

	var res Result
	for _, row := range t.rows {
		o := storage.Order{
			Platform:    storage.PlatformBliss,
			OrderID:     cell(row, iID),
			AccountName: cell(row, iUser),
			Symbol:      "USDT",
			Side:        storage.SideBuy,
			Status:      blissStatus(cell(row, iStatus)),
		}

		switch strings.ToLower(cell(row, iMethod)) {
		case "sell", "продажа", "продать":
			o.Side = storage.SideSell
		}

		total, okTotal := plainNumber(cell(row, iAmount))
		qty, okQty := plainNumber(cell(row, iCrypto))
		executed, err := parseTime(cell(row, iDate), blissTimeLayout)

		if !okTotal || !okQty || err != nil || isEmptyValue(o.OrderID) || isEmptyValue(o.AccountName) {
			res.Skipped++
			continue
		}

		o.TotalUSDT = total
		o.Quantity = qty
		if qty > 0 {
			o.Price = total / qty
		}
		o.ExecutedAt = ToMoscow(storage.PlatformBliss, executed)
		res.Orders = append(res.Orders, o)
	}

	return res, nil
}
