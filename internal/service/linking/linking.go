// Package linking привязывает уже загруженные ордера к сотруднику смены.
package linking

import (
	"context"
	"fmt"
	"p2p-reports/internal/metrics"
	"p2p-reports/internal/storage"
	"time"
)

type Storage interface {
	ListAccounts(ctx context.Context, filter storage.AccountFilter) ([]storage.Account, error)
	ReassignOrders(ctx context.Context, employeeID int64, accountNames []string, from, to time.Time) (int64, error)
}

type Service struct {
	storage Storage
}

func New(storage Storage) *Service {
	return &Service{storage: storage}
}

// Link переназначает на сотрудника отчёта ордера его активных аккаунтов,
// исполненные в окне смены. Возвращает число переназначенных ордеров.
func (s *Service) Link(ctx context.Context, report storage.ShiftReport) (int64, error) {
	const op = "service.linking.Link"

	if !report.HasWindow() {
		return 0, nil
	}

	accounts, err := s.storage.ListAccounts(ctx, storage.AccountFilter{
		EmployeeID: report.EmployeeID,
		ActiveOnly: true,
	})
	if err != nil {
		return 0, fmt.Errorf("%s: аккаунты сотрудника %d: %w", op, report.EmployeeID, err)
	}
	if len(accounts) == 0 {
		return 0, nil
	}

	names := make([]string, 0, len(accounts))
	seen := make(map[string]struct{}, len(accounts))
	for _, a := range accounts {
		if _, ok := seen[a.AccountName]; ok {
			continue
		}
		seen[a.AccountName] = struct{}{}
		names = append(names, a.AccountName)
	}

	n, err := s.storage.ReassignOrders(ctx, report.EmployeeID, names, *report.ShiftStartTime, *report.ShiftEndTime)
	if err != nil {
		return 0, fmt.Errorf("%s: %w", op, err)
	}
	metrics.OrdersLinked.Add(float64(n))

	return n, nil
}
