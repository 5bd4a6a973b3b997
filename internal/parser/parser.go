// Package parser разбирает выгрузки ордеров бирж в storage.Order.
package parser

import (
	"errors"
	"fmt"
	"io"
	"p2p-reports/internal/storage"
	"strings"
)

var (
	ErrUnsupportedPlatform = errors.New("неподдерживаемая площадка")
	ErrUnsupportedFormat   = errors.New("неподдерживаемый формат файла")
	ErrMissingColumns      = errors.New("в файле нет обязательных колонок")
)

// Result: разобранные ордера файла и число отброшенных строк.
// Platform у ордеров заполнен, EmployeeID и AccountName (кроме Bliss) заполняет вызывающий.
type Result struct {
	Orders  []storage.Order
	Skipped int
}

type OrderFileParser interface {
	Parse(r io.Reader, filename string) (Result, error)
}

var parsers = map[string]OrderFileParser{
	storage.PlatformBybit:    bybitParser{platform: storage.PlatformBybit},
	storage.PlatformGate:     bybitParser{platform: storage.PlatformGate},
	storage.PlatformHTX:      htxParser{},
	storage.PlatformBliss:    blissParser{},
	storage.PlatformBybitBTC: bybitBTCParser{},
}

// ForPlatform возвращает парсер площадки. Gate разбирается форматом Bybit.
func ForPlatform(platform string) (OrderFileParser, error) {
	p, ok := parsers[strings.ToLower(strings.TrimSpace(platform))]
	if !ok {
		return nil, fmt.Errorf("%w: %q", ErrUnsupportedPlatform, platform)
	}
	return p, nil
}

// Supported сообщает, есть ли парсер для площадки.
func Supported(platform string) bool {
	_, err := ForPlatform(platform)
	return err == nil
}
