package parser

import (
	"bufio"
	"bytes"
	"crypto/md5"
	"encoding/hex"
	"io"
	"p2p-reports/internal/storage"
	"strconv"
	"strings"
)

const btcFields = 14

// bybitBTCParser разбирает журнал BTC-операций Bybit: 14 полей через запятую,
// первая строка: заголовок. order_id синтетический, от содержимого строки.
type bybitBTCParser struct{}

func (bybitBTCParser) Parse(r io.Reader, _ string) (Result, error) {
	data, err := readText(r)
	if err != nil {
		return Result{}, err
	}

	var res Result
	sc := bufio.NewScanner(bytes.NewReader(data))
	sc.Buffer(make([]byte, 64*1024), 1024*1024)

	header := true
	for sc.Scan() {
		line := strings.TrimSpace(sc.Text())
		if header {
			header = false
			continue
		}
		if line == "" {
			continue
		}

		o, ok := parseBTCLine(line)
		if !ok {
			res.Skipped++
			continue
		}
		res.Orders = append(res.Orders, o)
	}
	if err := sc.Err(); err != nil {
		return Result{}, err
	}

	return res, nil
}

func parseBTCLine(line string) (storage.Order, bool) {
	parts := strings.Split(line, ",")
	for len(parts) < btcFields {
		parts = append(parts, "")
	}
	for i := range parts {
		parts[i] = strings.TrimSpace(parts[i])
	}

	currency, contract, direction := parts[0], parts[1], parts[3]
	quantity, price, timeStr := parts[4], parts[6], parts[13]

	executed, err := parseTime(timeStr, "02.01.2006 15:04", "2006-01-02 15:04:05")
	if err != nil {
		return storage.Order{}, false
	}

	o := storage.Order{
		OrderID:  btcOrderID(currency, contract, direction, quantity, price, timeStr),
		Platform: storage.PlatformBybitBTC,
		Symbol:   "USDT",
		Side:     "--",
		Status:   storage.StatusBTCCompleted,
	}
	switch {
	case contract != "":
		o.Symbol = contract
	case currency != "":
		o.Symbol = currency
	}
	if direction != "" {
		o.Side = direction
	}
	if v, err := strconv.ParseFloat(quantity, 64); err == nil {
		o.Quantity = v
	}
	if v, err := strconv.ParseFloat(price, 64); err == nil {
		o.Price = v
	}
	o.ExecutedAt = ToMoscow(storage.PlatformBybitBTC, executed)

	return o, true
}

func btcOrderID(fields ...string) string {
	sum := md5.Sum([]byte(strings.Join(fields, "_")))
	return "btc_" + hex.EncodeToString(sum[:])[:16]
}
