package statistics

import (
	"context"
	"fmt"
	"p2p-reports/internal/lib/money"
	"p2p-reports/internal/service/profit"
	"p2p-reports/internal/storage"
	"strconv"
	"time"
)

const noBalancesMessage = "Нет данных о балансах"

type BalanceUpdate struct {
	Date         string `json:"date"`
	ShiftType    string `json:"shift_type"`
	EmployeeName string `json:"employee_name"`
}

type AccountBalanceInfo struct {
	AccountID   int64         `json:"account_id"`
	AccountName string        `json:"account_name"`
	Balance     float64       `json:"balance"`
	LastUpdate  BalanceUpdate `json:"last_update"`
}

type PlatformBalance struct {
	Platform      string               `json:"platform"`
	PlatformName  string               `json:"platform_name"`
	TotalBalance  float64              `json:"total_balance"`
	AccountsCount int                  `json:"accounts_count"`
	Accounts      []AccountBalanceInfo `json:"accounts"`
}

type LatestUpdate struct {
	BalanceUpdate
	UpdatedAt time.Time `json:"updated_at"`
}

type PlatformBalances struct {
	Platforms            []PlatformBalance `json:"platforms"`
	TotalBalance         float64           `json:"total_balance"`
	ActivePlatformsCount int               `json:"active_platforms_count"`
	LastUpdate           *LatestUpdate     `json:"last_update"`
	Message              string            `json:"message,omitempty"`
}

// PlatformBalances: последний известный конечный баланс каждого аккаунта.
func (s *Service) PlatformBalances(ctx context.Context) (PlatformBalances, error) {
	const op = "service.statistics.PlatformBalances"

	reports, err := s.storage.ListReports(ctx, storage.ReportFilter{})
	if err != nil {
		return PlatformBalances{}, fmt.Errorf("%s: %w", op, err)
	}
	if len(reports) == 0 {
		return PlatformBalances{Platforms: []PlatformBalance{}, Message: noBalancesMessage}, nil
	}

	profit.SortNewestFirst(reports)
	return latestBalances(reports), nil
}

// latestBalances ожидает отчёты от новых к старым.
func latestBalances(reports []storage.ShiftReport) PlatformBalances {
	res := PlatformBalances{Platforms: make([]PlatformBalance, 0, len(storage.Platforms))}

	for _, platform := range storage.Platforms {
		seen := make(map[string]struct{})
		pb := PlatformBalance{
			Platform:     platform,
			PlatformName: storage.PlatformTitles[platform],
			Accounts:     []AccountBalanceInfo{},
		}
		var total []float64

		for _, r := range reports {
			for _, acc := range r.Balances[platform] {
				key := acc.AccountName
				if key == "" {
					key = "#" + strconv.FormatInt(acc.AccountID, 10)
				}
				if _, ok := seen[key]; ok {
					continue
				}
				seen[key] = struct{}{}

				balance := acc.Closing()
				total = append(total, balance)
				pb.Accounts = append(pb.Accounts, AccountBalanceInfo{
					AccountID:   acc.AccountID,
					AccountName: acc.AccountName,
					Balance:     balance,
					LastUpdate: BalanceUpdate{
						Date:         dateKey(r.ShiftDate),
						ShiftType:    r.ShiftType,
						EmployeeName: r.EmployeeName,
					},
				})
			}
		}

		if len(pb.Accounts) == 0 {
			continue
		}
		pb.TotalBalance = money.Round2(money.Sum(total...))
		pb.AccountsCount = len(pb.Accounts)
		res.Platforms = append(res.Platforms, pb)
		res.TotalBalance = money.Sum(res.TotalBalance, pb.TotalBalance)
	}

	latest := reports[0]
	res.TotalBalance = money.Round2(res.TotalBalance)
	res.ActivePlatformsCount = len(res.Platforms)
	res.LastUpdate = &LatestUpdate{
		BalanceUpdate: BalanceUpdate{
			Date:         dateKey(latest.ShiftDate),
			ShiftType:    latest.ShiftType,
			EmployeeName: latest.EmployeeName,
		},
		UpdatedAt: latest.UpdatedAt,
	}
	return res
}
