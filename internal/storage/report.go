package storage

import (
	"bytes"
	"database/sql/driver"
	"encoding/json"
	"fmt"
	"strconv"
	"strings"
	"time"
)

// AccountBalance: снимок баланса одного аккаунта внутри отчёта.
// start/end задаются при ручном вводе смены, balance: одиночный замер на конец смены.
type AccountBalance struct {
	AccountID    int64    `json:"account_id"`
	AccountName  string   `json:"account_name,omitempty"`
	StartBalance *float64 `json:"start_balance,omitempty"`
	EndBalance   *float64 `json:"end_balance,omitempty"`
	Balance      *float64 `json:"balance,omitempty"`
}

func (a AccountBalance) Start() float64   { return valueOf(a.StartBalance) }
func (a AccountBalance) End() float64     { return valueOf(a.EndBalance) }
func (a AccountBalance) Current() float64 { return valueOf(a.Balance) }

// HasRange сообщает, заданы ли ненулевые start/end.
func (a AccountBalance) HasRange() bool {
	return valueOf(a.StartBalance) != 0 || valueOf(a.EndBalance) != 0
}

// Closing возвращает баланс на конец смены: balance, иначе end_balance.
func (a AccountBalance) Closing() float64 {
	if a.Balance != nil {
		return *a.Balance
	}
	return valueOf(a.EndBalance)
}

func (a *AccountBalance) UnmarshalJSON(data []byte) error {
	var raw struct {
		AccountID    json.RawMessage `json:"account_id"`
		ID           json.RawMessage `json:"id"`
		AccountName  string          `json:"account_name"`
		StartBalance json.RawMessage `json:"start_balance"`
		EndBalance   json.RawMessage `json:"end_balance"`
		Balance      json.RawMessage `json:"balance"`
	}
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}

	idRaw := raw.AccountID
	if isEmptyRaw(idRaw) {
		idRaw = raw.ID
	}
	id, err := flexNumber(idRaw)
	if err != nil {
		return fmt.Errorf("account_id: %w", err)
	}
	if id != nil {
		a.AccountID = int64(*id)
	}
	a.AccountName = raw.AccountName

	if a.StartBalance, err = flexNumber(raw.StartBalance); err != nil {
		return fmt.Errorf("start_balance: %w", err)
	}
	if a.EndBalance, err = flexNumber(raw.EndBalance); err != nil {
		return fmt.Errorf("end_balance: %w", err)
	}
	if a.Balance, err = flexNumber(raw.Balance); err != nil {
		return fmt.Errorf("balance: %w", err)
	}
	return nil
}

// Balances: площадка -> аккаунты. Хранится в колонке balances_json.
type Balances map[string][]AccountBalance

// Find ищет аккаунт на площадке по id.
func (b Balances) Find(platform string, accountID int64) (AccountBalance, bool) {
	for _, acc := range b[platform] {
		if acc.AccountID == accountID {
			return acc, true
		}
	}
	return AccountBalance{}, false
}

func (b Balances) Value() (driver.Value, error) {
	if b == nil {
		return "{}", nil
	}
	data, err := json.Marshal(b)
	if err != nil {
		return nil, err
	}
	return string(data), nil
}

func (b *Balances) Scan(src any) error {
	var data []byte
	switch v := src.(type) {
	case nil:
		*b = Balances{}
		return nil
	case []byte:
		data = v
	case string:
		data = []byte(v)
	default:
		return fmt.Errorf("balances: unsupported type %T", src)
	}

	parsed, err := ParseBalances(data)
	if err != nil {
		// битый JSON в старых строках не должен ломать чтение отчёта
		*b = Balances{}
		return nil
	}
	*b = parsed
	return nil
}

// ParseBalances разбирает JSON балансов из формы или базы.
func ParseBalances(data []byte) (Balances, error) {
	data = bytes.TrimSpace(data)
	if len(data) == 0 || string(data) == "null" {
		return Balances{}, nil
	}
	var b Balances
	if err := json.Unmarshal(data, &b); err != nil {
		return nil, err
	}
	if b == nil {
		b = Balances{}
	}
	return b, nil
}

type Adjustment struct {
	Amount           float64 `json:"amount"`
	AmountRub        float64 `json:"amount_rub"`
	Platform         string  `json:"platform"`
	Account          string  `json:"account"`
	Comment          string  `json:"comment"`
	CountInSales     bool    `json:"count_in_sales"`
	CountInPurchases bool    `json:"count_in_purchases"`
}

type ShiftReport struct {
	ID             int64      `json:"id"`
	EmployeeID     int64      `json:"employee_id"`
	EmployeeName   string     `json:"employee_name,omitempty"`
	ShiftDate      time.Time  `json:"shift_date"`
	ShiftType      string     `json:"shift_type"`
	Department     string     `json:"department"`
	ShiftStartDate *time.Time `json:"shift_start_date"`
	ShiftEndDate   *time.Time `json:"shift_end_date"`
	ShiftStartTime *time.Time `json:"shift_start_time"`
	ShiftEndTime   *time.Time `json:"shift_end_time"`

	TotalRequests int `json:"total_requests"`
	BybitRequests int `json:"bybit_requests"`
	HTXRequests   int `json:"htx_requests"`
	BlissRequests int `json:"bliss_requests"`

	Balances Balances `json:"balances"`

	Scam             Adjustment `json:"scam"`
	Dokidka          Adjustment `json:"dokidka"`
	InternalTransfer Adjustment `json:"internal_transfer"`
	Appeal           Adjustment `json:"appeal"`
	AppealDeducted   bool       `json:"appeal_deducted"`

	BybitFile    string `json:"bybit_file"`
	BybitBTCFile string `json:"bybit_btc_file"`
	HTXFile      string `json:"htx_file"`
	BlissFile    string `json:"bliss_file"`
	StartPhoto   string `json:"start_photo"`
	EndPhoto     string `json:"end_photo"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// HasWindow сообщает, задано ли время начала и конца смены.
func (r ShiftReport) HasWindow() bool {
	return r.ShiftStartTime != nil && r.ShiftEndTime != nil
}

// AnyFlag: установлен ли хотя бы один чекбокс учёта корректировок.
func (r ShiftReport) AnyFlag() bool {
	for _, a := range []Adjustment{r.Scam, r.Dokidka, r.InternalTransfer, r.Appeal} {
		if a.CountInSales || a.CountInPurchases {
			return true
		}
	}
	return false
}

// Before сообщает, предшествует ли отчёт other: более ранняя дата
// либо утро того же дня перед вечером.
func (r ShiftReport) Before(other ShiftReport) bool {
	if r.ShiftDate.Before(other.ShiftDate) {
		return true
	}
	return r.ShiftDate.Equal(other.ShiftDate) && r.ShiftType == ShiftMorning && other.ShiftType == ShiftEvening
}

type ReportFilter struct {
	From       *time.Time
	To         *time.Time
	EmployeeID int64
	Department string
	// Limit > 0 ограничивает выборку самыми свежими отчётами.
	Limit int
}

// ReportFiles: имена сохранённых файлов выгрузок по площадкам.
type ReportFiles map[string]string

func valueOf(f *float64) float64 {
	if f == nil {
		return 0
	}
	return *f
}

func isEmptyRaw(raw json.RawMessage) bool {
	s := strings.TrimSpace(string(raw))
	return s == "" || s == "null" || s == `""`
}

// flexNumber принимает число, строку с числом, пустую строку или null.
func flexNumber(raw json.RawMessage) (*float64, error) {
	if isEmptyRaw(raw) {
		return nil, nil
	}
	var f float64
	if err := json.Unmarshal(raw, &f); err == nil {
		return &f, nil
	}
	var s string
	if err := json.Unmarshal(raw, &s); err != nil {
		return nil, err
	}
	s = strings.ReplaceAll(strings.TrimSpace(s), ",", ".")
	if s == "" {
		return nil, nil
	}
	f, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return nil, err
	}
	return &f, nil
}
