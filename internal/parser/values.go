package parser

import (
	"errors"
	"p2p-reports/internal/storage"
	"strconv"
	"strings"
	"time"
)

// Смещение времени выгрузки относительно Москвы.
var moscowOffsets = map[string]time.Duration{
	storage.PlatformBybit:    3 * time.Hour,
	storage.PlatformBybitBTC: 3 * time.Hour,
	storage.PlatformHTX:      -5 * time.Hour,
	storage.PlatformBliss:    3 * time.Hour,
	storage.PlatformGate:     0,
}

// ToMoscow переводит время выгрузки площадки в московское.
func ToMoscow(platform string, t time.Time) time.Time {
	return t.Add(moscowOffsets[platform])
}

var timeLayouts = []string{
	"2006-01-02 15:04:05",
	"2006-01-02T15:04:05",
	"2006-01-02 15:04",
	"2006-01-02T15:04",
	"2006/01/02 15:04:05",
	"02.01.2006 15:04:05",
	"02.01.2006 15:04",
	time.RFC3339,
}

var errBadTime = errors.New("неизвестный формат времени")

// parseTime разбирает время без зоны как UTC.
func parseTime(s string, layouts ...string) (time.Time, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return time.Time{}, errBadTime
	}
	if len(layouts) == 0 {
		layouts = timeLayouts
	}
	for _, layout := range layouts {
		if t, err := time.Parse(layout, s); err == nil {
			return t.UTC(), nil
		}
	}
	return time.Time{}, errBadTime
}

// cleanNumber оставляет цифры и разделители, запятую считает десятичной точкой.
func cleanNumber(s string) (float64, bool) {
	var b strings.Builder
	for _, r := range s {
		if (r >= '0' && r <= '9') || r == '.' || r == ',' {
			b.WriteRune(r)
		}
	}
	if b.Len() == 0 {
		return 0, false
	}
	f, err := strconv.ParseFloat(strings.ReplaceAll(b.String(), ",", "."), 64)
	if err != nil {
		return 0, false
	}
	return f, true
}

// plainNumber: число с возможной десятичной запятой и пробелами-разделителями.
func plainNumber(s string) (float64, bool) {
	s = strings.TrimSpace(s)
	if s == "" || strings.EqualFold(s, "nan") {
		return 0, false
	}
	s = strings.ReplaceAll(s, " ", "")
	s = strings.ReplaceAll(s, "\u00a0", "")
	f, err := strconv.ParseFloat(strings.ReplaceAll(s, ",", "."), 64)
	if err != nil {
		return 0, false
	}
	return f, true
}

func isEmptyValue(s string) bool {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "nan", "none", "null":
		return true
	}
	return false
}

// backfill дополняет цену или сумму по двум другим величинам.
func backfill(quantity float64, price, total *float64) {
	if *price == 0 && quantity != 0 && *total != 0 {
		*price = *total / quantity
	}
	if *total == 0 && *price != 0 && quantity != 0 {
		*total = *price * quantity
	}
}
