package mysql

import (
	"context"
	"database/sql"
	"fmt"
	"p2p-reports/internal/storage"
	"strings"
)

// InitialBalances возвращает начальные балансы площадки; пустая площадка: все.
func (s *Storage) InitialBalances(ctx context.Context, platform string) ([]storage.InitialBalance, error) {
	const op = "storage.mysql.InitialBalances"

	query := "SELECT id, platform, account_id, account_name, balance FROM initial_balances"
	var args []any
	if platform != "" {
		query += " WHERE platform = ?"
		args = append(args, platform)
	}
	query += " ORDER BY id"

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	defer rows.Close()

	var balances []storage.InitialBalance
	for rows.Next() {
		var b storage.InitialBalance
		var accountID sql.NullInt64
		if err := rows.Scan(&b.ID, &b.Platform, &accountID, &b.AccountName, &b.Balance); err != nil {
			return nil, fmt.Errorf("%s: ошибка сканирования строки: %w", op, err)
		}
		b.AccountID = intPtr(accountID)
		balances = append(balances, b)
	}

	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("%s: ошибка при итерации по строкам: %w", op, err)
	}

	return balances, nil
}

// ReplaceInitialBalances заменяет все начальные балансы новым набором.
func (s *Storage) ReplaceInitialBalances(ctx context.Context, balances []storage.InitialBalance) error {
	const op = "storage.mysql.ReplaceInitialBalances"

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("%s: begin tx: %w", op, err)
	}
	defer tx.Rollback()

	if _, err := tx.ExecContext(ctx, "DELETE FROM initial_balances"); err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}

	stmt, err := tx.PrepareContext(ctx,
		"INSERT INTO initial_balances (platform, account_id, account_name, balance) VALUES (?, ?, ?, ?)")
	if err != nil {
		return fmt.Errorf("%s: prepare: %w", op, err)
	}
	defer stmt.Close()

	for _, b := range balances {
		if _, err := stmt.ExecContext(ctx, b.Platform, nullInt(b.AccountID), b.AccountName, b.Balance); err != nil {
			return fmt.Errorf("%s: %s/%s: %w", op, b.Platform, b.AccountName, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("%s: commit: %w", op, err)
	}

	return nil
}

func (s *Storage) ListBalanceHistory(ctx context.Context, filter storage.BalanceHistoryFilter) ([]storage.BalanceHistory, error) {
	const op = "storage.mysql.ListBalanceHistory"

	var where []string
	var args []any
	if filter.AccountID != 0 {
		where = append(where, "h.account_id = ?")
		args = append(args, filter.AccountID)
	}
	if filter.Platform != "" {
		where = append(where, "h.platform = ?")
		args = append(args, filter.Platform)
	}
	if filter.EmployeeID != 0 {
		where = append(where, "h.employee_id = ?")
		args = append(args, filter.EmployeeID)
	}
	if filter.From != nil {
		where = append(where, "h.shift_date >= ?")
		args = append(args, filter.From.Format("2006-01-02"))
	}
	if filter.To != nil {
		where = append(where, "h.shift_date <= ?")
		args = append(args, filter.To.Format("2006-01-02"))
	}
	if filter.Department != "" {
		where = append(where, `EXISTS (SELECT 1 FROM shift_reports r
			WHERE r.shift_date = h.shift_date AND r.employee_id = h.employee_id AND r.department = ?)`)
		args = append(args, filter.Department)
	}

	query := `SELECT h.id, h.account_id, h.account_name, h.platform, h.shift_date, h.shift_type,
		h.balance, h.employee_id, h.employee_name, h.balance_type, h.created_at
		FROM account_balance_history h`
	if len(where) > 0 {
		query += " WHERE " + strings.Join(where, " AND ")
	}
	query += " ORDER BY h.shift_date, h.shift_type"

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	defer rows.Close()

	var history []storage.BalanceHistory
	for rows.Next() {
		var h storage.BalanceHistory
		var employeeID sql.NullInt64
		err := rows.Scan(&h.ID, &h.AccountID, &h.AccountName, &h.Platform, &h.ShiftDate, &h.ShiftType,
			&h.Balance, &employeeID, &h.EmployeeName, &h.BalanceType, &h.CreatedAt)
		if err != nil {
			return nil, fmt.Errorf("%s: ошибка сканирования строки: %w", op, err)
		}
		h.EmployeeID = intPtr(employeeID)
		history = append(history, h)
	}

	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("%s: ошибка при итерации по строкам: %w", op, err)
	}

	return history, nil
}

func (s *Storage) AddBalanceHistory(ctx context.Context, h storage.BalanceHistory) (int64, error) {
	const op = "storage.mysql.AddBalanceHistory"

	balanceType := h.BalanceType
	if balanceType == "" {
		balanceType = "end"
	}

	res, err := s.db.ExecContext(ctx, `INSERT INTO account_balance_history
		(account_id, account_name, platform, shift_date, shift_type, balance, employee_id, employee_name, balance_type)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		h.AccountID, h.AccountName, h.Platform, h.ShiftDate.Format("2006-01-02"), h.ShiftType,
		h.Balance, nullInt(h.EmployeeID), h.EmployeeName, balanceType,
	)
	if err != nil {
		return 0, fmt.Errorf("%s: %w", op, err)
	}

	id, err := res.LastInsertId()
	if err != nil {
		return 0, fmt.Errorf("%s: %w", op, err)
	}

	return id, nil
}
