package report

import (
	"context"
	"errors"
	"fmt"
	"p2p-reports/internal/service/ingest"
	"p2p-reports/internal/storage"
	"time"
)

// ErrNoAccounts: у сотрудника нет активных аккаунтов.
var ErrNoAccounts = errors.New("у сотрудника нет активных аккаунтов")

type ValidateRequest struct {
	EmployeeID int64
	Start      time.Time
	End        time.Time
	Files      []Upload
}

type FileValidation struct {
	TotalOrders      int      `json:"total_orders"`
	EmployeeOrders   int      `json:"employee_orders"`
	AccountNames     []string `json:"account_names"`
	HasOrdersInShift bool     `json:"has_orders_in_shift"`
}

type Validation struct {
	IsValid        bool                      `json:"is_valid"`
	Errors         []string                  `json:"errors"`
	Warnings       []string                  `json:"warnings"`
	FileValidation map[string]FileValidation `json:"file_validation"`
}

// ValidateShift проверяет окно смены и разбирает выгрузки без записи в базу:
// сколько ордеров попало в окно и сколько из них по аккаунтам сотрудника.
func (s *Service) ValidateShift(ctx context.Context, req ValidateRequest) (Validation, error) {
	const op = "service.report.ValidateShift"

	accounts, err := s.storage.ListAccounts(ctx, storage.AccountFilter{EmployeeID: req.EmployeeID, ActiveOnly: true})
	if err != nil {
		return Validation{}, fmt.Errorf("%s: %w", op, err)
	}
	if len(accounts) == 0 {
		return Validation{}, ErrNoAccounts
	}

	v := Validation{
		IsValid:        true,
		Errors:         []string{},
		Warnings:       []string{},
		FileValidation: make(map[string]FileValidation),
	}

	if !req.Start.Before(req.End) {
		v.IsValid = false
		v.Errors = append(v.Errors, "Время начала смены должно быть раньше времени окончания")
		return v, nil
	}
	if req.End.Sub(req.Start) > maxShiftDuration {
		v.Warnings = append(v.Warnings, "Длительность смены превышает 24 часа")
	}

	names := make(map[string][]string)
	for _, acc := range accounts {
		names[acc.Platform] = append(names[acc.Platform], acc.AccountName)
	}

	for _, f := range req.Files {
		accountPlatform := f.Platform
		if accountPlatform == storage.PlatformBybitBTC {
			accountPlatform = storage.PlatformBybit
		}
		own := names[accountPlatform]
		if len(own) == 0 {
			v.Warnings = append(v.Warnings,
				fmt.Sprintf("Файл выгрузки %s загружен, но у сотрудника нет аккаунтов на этой площадке", f.Platform))
		}

		start, end := req.Start, req.End
		total, matched, err := s.importer.Preview(ingest.Request{
			Platform: f.Platform,
			From:     &start,
			To:       &end,
			Filename: f.Filename,
			Reader:   f.Open(),
		}, own)
		if err != nil {
			v.Errors = append(v.Errors, fmt.Sprintf("Ошибка обработки файла %s: %s", f.Platform, err))
			continue
		}

		if own == nil {
			own = []string{}
		}
		v.FileValidation[f.Platform] = FileValidation{
			TotalOrders:      total,
			EmployeeOrders:   matched,
			AccountNames:     own,
			HasOrdersInShift: matched > 0,
		}
		if matched == 0 {
			v.Warnings = append(v.Warnings,
				fmt.Sprintf("В файле %s не найдено ордеров для аккаунтов сотрудника в указанное время смены", f.Platform))
		}
	}

	v.IsValid = len(v.Errors) == 0
	return v, nil
}
