package save

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"p2p-reports/internal/lib/params"
	"p2p-reports/internal/storage"
	"strings"
	"time"
)

// fields даёт одинаковый доступ к полям JSON-тела и формы.
type fields func(name string) string

func jsonFields(body io.Reader) (fields, error) {
	var raw map[string]json.RawMessage
	if err := json.NewDecoder(body).Decode(&raw); err != nil {
		return nil, err
	}
	if len(raw) == 0 {
		return nil, fmt.Errorf("пустое тело запроса")
	}

	return func(name string) string {
		v := bytes.TrimSpace(raw[name])
		if len(v) == 0 || string(v) == "null" {
			return ""
		}
		if v[0] == '"' {
			var s string
			if err := json.Unmarshal(v, &s); err == nil {
				return s
			}
		}
		return string(v)
	}, nil
}

var adjustmentKinds = []string{"scam", "dokidka", "internal_transfer", "appeal"}

func required(f fields, names ...string) error {
	for _, name := range names {
		if strings.TrimSpace(f(name)) == "" {
			return fmt.Errorf("Поле %s обязательно для заполнения", name)
		}
	}
	return nil
}

// reportFromFields собирает отчёт из плоских полей: *_requests, balances,
// окно смены и корректировки вида {kind}_amount, {kind}_comment и т.д.
func reportFromFields(f fields) (storage.ShiftReport, error) {
	var r storage.ShiftReport
	var err error

	if r.EmployeeID, err = params.Int64Value("employee_id", f("employee_id")); err != nil {
		return r, err
	}

	if raw := f("shift_date"); raw != "" {
		day, err := params.ParseDate(raw)
		if err != nil {
			return r, err
		}
		r.ShiftDate = *day
	}
	r.ShiftType = strings.TrimSpace(f("shift_type"))
	r.Department = strings.TrimSpace(f("department"))
	if r.Department == "" {
		r.Department = storage.DepartmentFirst
	}

	if r.ShiftStartTime, err = params.ParseDateTime(f("shift_start_time")); err != nil {
		return r, err
	}
	if r.ShiftEndTime, err = params.ParseDateTime(f("shift_end_time")); err != nil {
		return r, err
	}
	if r.HasWindow() {
		start, end := day(*r.ShiftStartTime), day(*r.ShiftEndTime)
		r.ShiftStartDate, r.ShiftEndDate = &start, &end
	}

	if r.BybitRequests, err = params.Int("bybit_requests", f("bybit_requests")); err != nil {
		return r, err
	}
	if r.HTXRequests, err = params.Int("htx_requests", f("htx_requests")); err != nil {
		return r, err
	}
	if r.BlissRequests, err = params.Int("bliss_requests", f("bliss_requests")); err != nil {
		return r, err
	}

	balances := f("balances_json")
	if balances == "" {
		balances = f("balances")
	}
	if r.Balances, err = storage.ParseBalances([]byte(balances)); err != nil {
		return r, fmt.Errorf("Неверный формат JSON балансов")
	}

	adjustments := map[string]*storage.Adjustment{
		"scam":              &r.Scam,
		"dokidka":           &r.Dokidka,
		"internal_transfer": &r.InternalTransfer,
		"appeal":            &r.Appeal,
	}
	for _, kind := range adjustmentKinds {
		a := adjustments[kind]
		if a.Amount, err = params.Float(kind+"_amount", f(kind+"_amount")); err != nil {
			return r, err
		}
		if a.AmountRub, err = params.Float(kind+"_amount_rub", f(kind+"_amount_rub")); err != nil {
			return r, err
		}
		if a.Amount < 0 || a.AmountRub < 0 {
			return r, fmt.Errorf("Сумма %s не может быть отрицательной", kind)
		}
		a.Platform = strings.ToLower(strings.TrimSpace(f(kind + "_platform")))
		a.Account = strings.TrimSpace(f(kind + "_account"))
		a.Comment = f(kind + "_comment")
		a.CountInSales = params.Bool(f(kind + "_count_in_sales"))
		a.CountInPurchases = params.Bool(f(kind + "_count_in_purchases"))
	}
	r.AppealDeducted = params.Bool(f("appeal_deducted"))

	r.BybitFile = f("bybit_file")
	r.BybitBTCFile = f("bybit_btc_file")
	r.HTXFile = f("htx_file")
	r.BlissFile = f("bliss_file")
	r.StartPhoto = f("start_photo")
	r.EndPhoto = f("end_photo")

	return r, nil
}

func day(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, t.Location())
}
