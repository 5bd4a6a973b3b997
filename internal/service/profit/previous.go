package profit

import (
	"context"
	"errors"
	"fmt"
	"p2p-reports/internal/storage"
	"sort"
)

// prevLookup ищет предыдущий баланс аккаунта для одного отчёта.
// Предыдущие отчёты и начальные балансы загружаются один раз.
type prevLookup struct {
	storage Storage
	report  storage.ShiftReport

	loaded   bool
	previous []storage.ShiftReport
	initial  map[string][]storage.InitialBalance
}

func (c *Calculator) newPrevLookup(report storage.ShiftReport) *prevLookup {
	return &prevLookup{
		storage: c.storage,
		report:  report,
		initial: make(map[string][]storage.InitialBalance),
	}
}

func (l *prevLookup) accountDelta(ctx context.Context, platform string, acc storage.AccountBalance) (float64, error) {
	if acc.HasRange() {
		return clampBalance(acc.End()) - clampBalance(acc.Start()), nil
	}

	current := clampBalance(acc.Current())
	if current == 0 || acc.AccountID == 0 {
		return 0, nil
	}

	prev, err := l.previousBalance(ctx, platform, acc.AccountID)
	if err != nil {
		return 0, err
	}
	return current - prev, nil
}

// previousBalance: последний более ранний отчёт с этим аккаунтом,
// затем начальный баланс по id аккаунта, затем по имени, иначе 0.
func (l *prevLookup) previousBalance(ctx context.Context, platform string, accountID int64) (float64, error) {
	if err := l.loadPrevious(ctx); err != nil {
		return 0, err
	}

	for _, r := range l.previous {
		if acc, ok := r.Balances.Find(platform, accountID); ok {
			return clampBalance(acc.Closing()), nil
		}
	}

	initial, ok := l.initial[platform]
	if !ok {
		var err error
		initial, err = l.storage.InitialBalances(ctx, platform)
		if err != nil {
			return 0, fmt.Errorf("начальные балансы %s: %w", platform, err)
		}
		l.initial[platform] = initial
	}

	for _, ib := range initial {
		if ib.AccountID != nil && *ib.AccountID == accountID {
			return ib.Balance, nil
		}
	}

	account, err := l.storage.GetAccount(ctx, accountID)
	if err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			return 0, nil
		}
		return 0, fmt.Errorf("аккаунт id=%d: %w", accountID, err)
	}
	for _, ib := range initial {
		if ib.AccountName == account.AccountName {
			return ib.Balance, nil
		}
	}

	return 0, nil
}

func (l *prevLookup) loadPrevious(ctx context.Context) error {
	if l.loaded {
		return nil
	}

	reports, err := l.storage.PreviousReports(ctx, l.report)
	if err != nil {
		return fmt.Errorf("предыдущие отчёты: %w", err)
	}

	previous := make([]storage.ShiftReport, 0, len(reports))
	for _, r := range reports {
		if r.ID != l.report.ID && r.Before(l.report) {
			previous = append(previous, r)
		}
	}
	SortNewestFirst(previous)

	l.previous = previous
	l.loaded = true
	return nil
}

// SortNewestFirst: дата по убыванию, вечер раньше утра той же даты, затем id.
func SortNewestFirst(reports []storage.ShiftReport) {
	sort.SliceStable(reports, func(i, j int) bool {
		a, b := reports[i], reports[j]
		if !a.ShiftDate.Equal(b.ShiftDate) {
			return a.ShiftDate.After(b.ShiftDate)
		}
		if a.ShiftType != b.ShiftType {
			return a.ShiftType == storage.ShiftEvening
		}
		return a.ID > b.ID
	})
}
