package storage

import "errors"

var (
	ErrNotFound         = errors.New("запись не найдена")
	ErrEmployeeNotFound = errors.New("сотрудник не найден")
	ErrOrderExists      = errors.New("ордер уже существует")
)

// Площадки, по которым ведутся балансы и отчёты.
const (
	PlatformBybit    = "bybit"
	PlatformHTX      = "htx"
	PlatformBliss    = "bliss"
	PlatformGate     = "gate"
	PlatformBybitBTC = "bybit_btc"
)

var Platforms = []string{PlatformBybit, PlatformHTX, PlatformBliss, PlatformGate}

var PlatformTitles = map[string]string{
	PlatformBybit: "Bybit",
	PlatformHTX:   "HTX",
	PlatformBliss: "Bliss",
	PlatformGate:  "Gate",
}

const (
	ShiftMorning = "morning"
	ShiftEvening = "evening"

	DepartmentFirst  = "first"
	DepartmentSecond = "second"
)
