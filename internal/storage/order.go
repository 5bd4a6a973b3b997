package storage

import "time"

const (
	SideBuy  = "buy"
	SideSell = "sell"
)

const (
	StatusFilled           = "filled"
	StatusCanceled         = "canceled"
	StatusPending          = "pending"
	StatusAppealed         = "appealed"
	StatusExpired          = "expired"
	StatusFailed           = "failed"
	StatusScam             = "scam"
	StatusDokidka          = "dokidka"
	StatusInternalTransfer = "internal_transfer"

	// BTC-выгрузки приходят уже завершёнными и хранятся со своим статусом,
	// чтобы не попадать в расчёт прибыли по filled-ордерам.
	StatusBTCCompleted = "Завершен"
)

// SpecialStatuses: статусы синтетических ордеров-корректировок.
var SpecialStatuses = []string{StatusScam, StatusAppealed, StatusDokidka, StatusInternalTransfer}

// InactiveStatuses не учитываются в статистике по умолчанию.
var InactiveStatuses = []string{StatusCanceled, StatusExpired, StatusFailed}

func IsSpecialStatus(status string) bool {
	for _, s := range SpecialStatuses {
		if s == status {
			return true
		}
	}
	return false
}

type Order struct {
	ID               int64     `json:"id"`
	OrderID          string    `json:"order_id"`
	EmployeeID       int64     `json:"employee_id"`
	EmployeeName     string    `json:"employee_name,omitempty"`
	Platform         string    `json:"platform"`
	AccountName      string    `json:"account_name"`
	Symbol           string    `json:"symbol"`
	Side             string    `json:"side"`
	Quantity         float64   `json:"quantity"`
	Price            float64   `json:"price"`
	TotalUSDT        float64   `json:"total_usdt"`
	FeesUSDT         float64   `json:"fees_usdt"`
	Status           string    `json:"status"`
	CountInSales     bool      `json:"count_in_sales"`
	CountInPurchases bool      `json:"count_in_purchases"`
	ExecutedAt       time.Time `json:"executed_at"`
	CreatedAt        time.Time `json:"created_at"`
	UpdatedAt        time.Time `json:"updated_at"`
}

// OrderFilter: фильтр списка ордеров. Пустые поля не ограничивают выборку.
type OrderFilter struct {
	EmployeeID int64
	Platform   string
	// ExcludePlatform исключает площадку (по умолчанию в списках скрываются BTC-ордера).
	ExcludePlatform string
	Status          string
	Statuses        []string
	ExcludeStatuses []string
	Side            string
	// Department оставляет ордера дней, когда у сотрудника был отчёт этого отдела.
	Department string
	From       *time.Time
	// Before: строгая верхняя граница (конец дня + 1).
	Before *time.Time
	// To: нестрогая верхняя граница (окно смены).
	To *time.Time
}

type OrderUpdate struct {
	OrderID          *string    `json:"order_id"`
	EmployeeID       *int64     `json:"employee_id"`
	Platform         *string    `json:"platform"`
	AccountName      *string    `json:"account_name"`
	Symbol           *string    `json:"symbol"`
	Side             *string    `json:"side"`
	Quantity         *float64   `json:"quantity"`
	Price            *float64   `json:"price"`
	TotalUSDT        *float64   `json:"total_usdt"`
	FeesUSDT         *float64   `json:"fees_usdt"`
	Status           *string    `json:"status"`
	CountInSales     *bool      `json:"count_in_sales"`
	CountInPurchases *bool      `json:"count_in_purchases"`
	ExecutedAt       *time.Time `json:"executed_at"`
}
