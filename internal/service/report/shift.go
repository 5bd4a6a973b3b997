package report

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"p2p-reports/internal/service/ingest"
	"p2p-reports/internal/storage"
	"strings"
	"time"
)

// EveningFrom: смена, начатая с этого часа, считается вечерней.
const EveningFrom = 16

const maxShiftDuration = 24 * time.Hour

// ShiftType определяет тип смены по часу начала.
func ShiftType(start time.Time) string {
	if start.Hour() < EveningFrom {
		return storage.ShiftMorning
	}
	return storage.ShiftEvening
}

type GateAmount struct {
	USDT float64
	Rub  float64
}

// ShiftRequest: смена с окном, выбранными аккаунтами, ручными суммами Gate
// и выгрузками по аккаунтам.
type ShiftRequest struct {
	Report           storage.ShiftReport
	SelectedAccounts map[string][]int64
	GateAmounts      map[int64]GateAmount
	Files            []Upload
}

type ShiftStats struct {
	TotalOrders        int      `json:"total_orders"`
	LinkedOrders       int      `json:"linked_orders"`
	PlatformsProcessed []string `json:"platforms_processed"`
	Errors             []string `json:"errors"`
}

type ShiftResult struct {
	ID      int64      `json:"id"`
	Message string     `json:"message"`
	Stats   ShiftStats `json:"stats"`
}

// CreateShift сохраняет отчёт вместе с синтетическими ордерами корректировок
// и ручными ордерами Gate, затем загружает выгрузки каждого выбранного аккаунта.
func (s *Service) CreateShift(ctx context.Context, req ShiftRequest) (ShiftResult, error) {
	const op = "service.report.CreateShift"

	r := req.Report
	if !r.HasWindow() {
		return ShiftResult{}, invalid("Заполните все обязательные поля")
	}
	r.ShiftType = ShiftType(*r.ShiftStartTime)
	if r.Department == "" {
		r.Department = storage.DepartmentFirst
	}
	day := truncateDay(r.ShiftDate)
	r.ShiftStartDate, r.ShiftEndDate = &day, &day
	r.TotalRequests = r.BybitRequests + r.HTXRequests + r.BlissRequests
	if err := Validate(r); err != nil {
		return ShiftResult{}, err
	}

	emp, err := s.storage.GetEmployee(ctx, r.EmployeeID)
	if err != nil {
		return ShiftResult{}, fmt.Errorf("%s: %w", op, err)
	}

	accounts := make(map[int64]storage.Account)
	for _, ids := range req.SelectedAccounts {
		for _, id := range ids {
			if _, ok := accounts[id]; ok {
				continue
			}
			acc, err := s.storage.GetAccount(ctx, id)
			if err != nil {
				if errors.Is(err, storage.ErrNotFound) {
					return ShiftResult{}, invalid("Аккаунт id=%d не найден", id)
				}
				return ShiftResult{}, fmt.Errorf("%s: %w", op, err)
			}
			accounts[id] = *acc
		}
	}

	unix := s.now().Unix()
	gate := gateOrders(r, req, accounts, unix)

	id, err := s.storage.CreateReport(ctx, r, func(reportID int64) []storage.Order {
		orders := SyntheticOrders(r, emp.Name, reportID, unix)
		for _, o := range gate {
			o.OrderID = fmt.Sprintf("gate_manual_%d_%s", reportID, o.OrderID)
			orders = append(orders, o)
		}
		return orders
	})
	if err != nil {
		return ShiftResult{}, fmt.Errorf("%s: %w", op, err)
	}
	r.ID = id

	stats := ShiftStats{PlatformsProcessed: []string{}, Errors: []string{}}
	for _, platform := range storage.Platforms {
		ids := req.SelectedAccounts[platform]
		if len(ids) == 0 {
			continue
		}

		var total, linked int
		if platform == storage.PlatformGate {
			for _, id := range ids {
				if _, ok := req.GateAmounts[id]; ok {
					linked++
				}
			}
		} else {
			for _, id := range ids {
				for _, f := range filesFor(req.Files, platform, id) {
					st, err := s.importer.Import(ctx, ingest.Request{
						EmployeeID:   r.EmployeeID,
						Platform:     f.Platform,
						AccountName:  accounts[id].AccountName,
						ForceAccount: true,
						From:         r.ShiftStartTime,
						To:           r.ShiftEndTime,
						Filename:     f.Filename,
						Reader:       f.Open(),
					})
					if err != nil {
						s.log.Error("failed to import account file",
							slog.String("op", op),
							slog.String("platform", f.Platform),
							slog.Int64("account_id", id),
							slog.String("error", err.Error()),
						)
						stats.Errors = append(stats.Errors,
							fmt.Sprintf("Ошибка обработки файла %s для аккаунта %d: %s", f.Platform, id, err))
						continue
					}
					total += st.TotalParsed
					linked += st.Inserted
				}
			}
		}

		stats.TotalOrders += total
		stats.LinkedOrders += linked
		if total > 0 || linked > 0 {
			stats.PlatformsProcessed = append(stats.PlatformsProcessed, strings.ToUpper(platform))
		}
	}

	return ShiftResult{ID: id, Message: createdMessage, Stats: stats}, nil
}

// filesFor: выгрузки аккаунта площадки; к аккаунту Bybit относятся и BTC-выгрузки.
func filesFor(files []Upload, platform string, accountID int64) []Upload {
	var res []Upload
	for _, f := range files {
		if f.AccountID != accountID {
			continue
		}
		if f.Platform == platform || (platform == storage.PlatformBybit && f.Platform == storage.PlatformBybitBTC) {
			res = append(res, f)
		}
	}
	return res
}

// gateOrders строит ручные ордера Gate. OrderID пока содержит только суффикс,
// префикс с id отчёта добавляется внутри транзакции.
func gateOrders(r storage.ShiftReport, req ShiftRequest, accounts map[int64]storage.Account, unix int64) []storage.Order {
	var orders []storage.Order
	for _, id := range req.SelectedAccounts[storage.PlatformGate] {
		amount, ok := req.GateAmounts[id]
		if !ok {
			continue
		}
		name := accounts[id].AccountName
		if name == "" {
			name = "Unknown"
		}
		orders = append(orders, storage.Order{
			OrderID:     fmt.Sprintf("%d_%d", id, unix),
			EmployeeID:  r.EmployeeID,
			Platform:    storage.PlatformGate,
			AccountName: name,
			Symbol:      "USDT",
			Side:        storage.SideBuy,
			Quantity:    amount.USDT,
			Price:       rate(amount.USDT, amount.Rub),
			TotalUSDT:   amount.Rub,
			Status:      storage.StatusFilled,
			ExecutedAt:  *r.ShiftStartTime,
		})
	}
	return orders
}

type adjustmentKind struct {
	kind    string
	status  string
	account string
	adj     storage.Adjustment
}

// SyntheticOrders превращает непустые корректировки отчёта в ордера-продажи
// со спец-статусами. Флаги учёта переносятся из отчёта.
func SyntheticOrders(r storage.ShiftReport, employeeName string, reportID, unix int64) []storage.Order {
	kinds := []adjustmentKind{
		{kind: "appeal", status: storage.StatusAppealed, account: "appeal", adj: r.Appeal},
		{kind: "dokidka", status: storage.StatusDokidka, account: "dokidka", adj: r.Dokidka},
		{kind: "scam", status: storage.StatusScam, account: "scam", adj: r.Scam},
		{kind: "internal_transfer", status: storage.StatusInternalTransfer, account: "internal", adj: r.InternalTransfer},
	}

	executed := r.ShiftDate
	if r.ShiftStartTime != nil {
		executed = *r.ShiftStartTime
	}

	var orders []storage.Order
	for _, k := range kinds {
		if k.adj.Amount <= 0 {
			continue
		}
		platform := k.adj.Platform
		if platform == "" {
			platform = storage.PlatformBybit
		}
		account := k.adj.Account
		if account == "" {
			account = employeeName + "_" + k.account
		}
		total := k.adj.Amount
		if k.adj.AmountRub > 0 {
			total = k.adj.AmountRub
		}

		orders = append(orders, storage.Order{
			OrderID:          fmt.Sprintf("%s_%d_%d", k.kind, reportID, unix),
			EmployeeID:       r.EmployeeID,
			Platform:         platform,
			AccountName:      account,
			Symbol:           "USDT",
			Side:             storage.SideSell,
			Quantity:         k.adj.Amount,
			Price:            rate(k.adj.Amount, k.adj.AmountRub),
			TotalUSDT:        total,
			Status:           k.status,
			CountInSales:     k.adj.CountInSales,
			CountInPurchases: k.adj.CountInPurchases,
			ExecutedAt:       executed,
		})
	}
	return orders
}

// rate: курс RUB/USDT, либо 1 без рублёвой суммы.
func rate(usdt, rub float64) float64 {
	if usdt > 0 && rub > 0 {
		return rub / usdt
	}
	return 1
}

func truncateDay(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, t.Location())
}
