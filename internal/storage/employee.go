package storage

import "time"

const DefaultSalaryPercent = 30.0

type Employee struct {
	ID            int64     `json:"id"`
	Name          string    `json:"name"`
	Telegram      string    `json:"telegram"`
	IsActive      bool      `json:"is_active"`
	SalaryPercent *float64  `json:"salary_percent"`
	CreatedAt     time.Time `json:"created_at"`
}

type EmployeeUpdate struct {
	Name          *string  `json:"name"`
	Telegram      *string  `json:"telegram"`
	SalaryPercent *float64 `json:"salary_percent"`
}

type Account struct {
	ID          int64  `json:"id"`
	EmployeeID  *int64 `json:"employee_id"`
	Platform    string `json:"platform"`
	AccountName string `json:"account_name"`
	IsActive    bool   `json:"is_active"`
}

// ScamRecord: строка истории скамов сотрудника.
type ScamRecord struct {
	ID            int64     `json:"id"`
	EmployeeID    int64     `json:"employee_id"`
	ShiftReportID *int64    `json:"shift_report_id"`
	Amount        float64   `json:"amount"`
	Comment       string    `json:"comment"`
	Date          time.Time `json:"date"`
}

type SalarySettings struct {
	ID                   int64   `json:"-"`
	BasePercent          float64 `json:"base_percent"`
	MinDailyProfit       float64 `json:"min_daily_profit"`
	BonusPercent         float64 `json:"bonus_percent"`
	BonusProfitThreshold float64 `json:"bonus_profit_threshold"`
}

func DefaultSalarySettings() SalarySettings {
	return SalarySettings{
		BasePercent:          30,
		MinDailyProfit:       100,
		BonusPercent:         5,
		BonusProfitThreshold: 150,
	}
}

type InitialBalance struct {
	ID          int64   `json:"id"`
	Platform    string  `json:"platform"`
	AccountID   *int64  `json:"account_id"`
	AccountName string  `json:"account_name"`
	Balance     float64 `json:"balance"`
}

type BalanceHistory struct {
	ID           int64     `json:"id"`
	AccountID    int64     `json:"account_id"`
	AccountName  string    `json:"account_name"`
	Platform     string    `json:"platform"`
	ShiftDate    time.Time `json:"shift_date"`
	ShiftType    string    `json:"shift_type"`
	Balance      float64   `json:"balance"`
	EmployeeID   *int64    `json:"employee_id"`
	EmployeeName string    `json:"employee_name"`
	BalanceType  string    `json:"balance_type"`
	CreatedAt    time.Time `json:"created_at"`
}

type BalanceHistoryFilter struct {
	AccountID  int64
	Platform   string
	EmployeeID int64
	Department string
	From       *time.Time
	To         *time.Time
}

type AccountFilter struct {
	EmployeeID int64
	Platform   string
	ActiveOnly bool
}

