package mysql

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"p2p-reports/internal/storage"
	"strings"
)

func (s *Storage) ListAccounts(ctx context.Context, filter storage.AccountFilter) ([]storage.Account, error) {
	const op = "storage.mysql.ListAccounts"

	var where []string
	var args []any
	if filter.ActiveOnly {
		where = append(where, "is_active = TRUE")
	}
	if filter.EmployeeID != 0 {
		where = append(where, "employee_id = ?")
		args = append(args, filter.EmployeeID)
	}
	if filter.Platform != "" {
		where = append(where, "platform = ?")
		args = append(args, filter.Platform)
	}

	query := "SELECT id, employee_id, platform, account_name, is_active FROM accounts"
	if len(where) > 0 {
		query += " WHERE " + strings.Join(where, " AND ")
	}
	query += " ORDER BY platform, id"

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	defer rows.Close()

	var accounts []storage.Account
	for rows.Next() {
		var a storage.Account
		var employeeID sql.NullInt64
		if err := rows.Scan(&a.ID, &employeeID, &a.Platform, &a.AccountName, &a.IsActive); err != nil {
			return nil, fmt.Errorf("%s: ошибка сканирования строки: %w", op, err)
		}
		a.EmployeeID = intPtr(employeeID)
		accounts = append(accounts, a)
	}

	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("%s: ошибка при итерации по строкам: %w", op, err)
	}

	return accounts, nil
}

func (s *Storage) GetAccount(ctx context.Context, id int64) (*storage.Account, error) {
	const op = "storage.mysql.GetAccount"

	var a storage.Account
	var employeeID sql.NullInt64
	err := s.db.QueryRowContext(ctx,
		"SELECT id, employee_id, platform, account_name, is_active FROM accounts WHERE id = ?", id,
	).Scan(&a.ID, &employeeID, &a.Platform, &a.AccountName, &a.IsActive)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, fmt.Errorf("%s: аккаунт id=%d: %w", op, id, storage.ErrNotFound)
		}
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	a.EmployeeID = intPtr(employeeID)

	return &a, nil
}

func (s *Storage) CreateAccount(ctx context.Context, a storage.Account) (int64, error) {
	const op = "storage.mysql.CreateAccount"

	res, err := s.db.ExecContext(ctx,
		"INSERT INTO accounts (employee_id, platform, account_name, is_active) VALUES (?, ?, ?, TRUE)",
		nullInt(a.EmployeeID), a.Platform, a.AccountName,
	)
	if err != nil {
		if mysqlErr, ok := asMySQLError(err); ok && mysqlErr.Number == errForeignKey {
			return 0, fmt.Errorf("%s: %w", op, storage.ErrEmployeeNotFound)
		}
		return 0, fmt.Errorf("%s: %w", op, err)
	}

	id, err := res.LastInsertId()
	if err != nil {
		return 0, fmt.Errorf("%s: %w", op, err)
	}

	return id, nil
}

func (s *Storage) DeleteAccount(ctx context.Context, id int64) error {
	const op = "storage.mysql.DeleteAccount"

	res, err := s.db.ExecContext(ctx, "DELETE FROM accounts WHERE id = ?", id)
	if err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}

	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	if n == 0 {
		return fmt.Errorf("%s: аккаунт id=%d: %w", op, id, storage.ErrNotFound)
	}

	return nil
}
