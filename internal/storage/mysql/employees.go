package mysql

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"p2p-reports/internal/storage"
)

func (s *Storage) ListEmployees(ctx context.Context, activeOnly bool) ([]storage.Employee, error) {
	const op = "storage.mysql.ListEmployees"

	query := "SELECT id, name, telegram, is_active, salary_percent, created_at FROM employees"
	if activeOnly {
		query += " WHERE is_active = TRUE"
	}
	query += " ORDER BY id"

	rows, err := s.db.QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	defer rows.Close()

	var employees []storage.Employee
	for rows.Next() {
		var e storage.Employee
		var percent sql.NullFloat64
		if err := rows.Scan(&e.ID, &e.Name, &e.Telegram, &e.IsActive, &percent, &e.CreatedAt); err != nil {
			return nil, fmt.Errorf("%s: ошибка сканирования строки: %w", op, err)
		}
		if percent.Valid {
			e.SalaryPercent = &percent.Float64
		}
		employees = append(employees, e)
	}

	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("%s: ошибка при итерации по строкам: %w", op, err)
	}

	return employees, nil
}

func (s *Storage) GetEmployee(ctx context.Context, id int64) (*storage.Employee, error) {
	const op = "storage.mysql.GetEmployee"

	var e storage.Employee
	var percent sql.NullFloat64
	err := s.db.QueryRowContext(ctx,
		"SELECT id, name, telegram, is_active, salary_percent, created_at FROM employees WHERE id = ?", id,
	).Scan(&e.ID, &e.Name, &e.Telegram, &e.IsActive, &percent, &e.CreatedAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, fmt.Errorf("%s: id=%d: %w", op, id, storage.ErrEmployeeNotFound)
		}
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	if percent.Valid {
		e.SalaryPercent = &percent.Float64
	}

	return &e, nil
}

func (s *Storage) CreateEmployee(ctx context.Context, e storage.Employee) (int64, error) {
	const op = "storage.mysql.CreateEmployee"

	var percent sql.NullFloat64
	if e.SalaryPercent != nil {
		percent = sql.NullFloat64{Float64: *e.SalaryPercent, Valid: true}
	}

	res, err := s.db.ExecContext(ctx,
		"INSERT INTO employees (name, telegram, is_active, salary_percent) VALUES (?, ?, TRUE, ?)",
		e.Name, e.Telegram, percent,
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

func (s *Storage) UpdateEmployee(ctx context.Context, id int64, upd storage.EmployeeUpdate) error {
	const op = "storage.mysql.UpdateEmployee"

	emp, err := s.GetEmployee(ctx, id)
	if err != nil {
		return err
	}

	if upd.Name != nil {
		emp.Name = *upd.Name
	}
	if upd.Telegram != nil {
		emp.Telegram = *upd.Telegram
	}
	var percent sql.NullFloat64
	if upd.SalaryPercent != nil {
		percent = sql.NullFloat64{Float64: *upd.SalaryPercent, Valid: true}
	} else if emp.SalaryPercent != nil {
		percent = sql.NullFloat64{Float64: *emp.SalaryPercent, Valid: true}
	}

	_, err = s.db.ExecContext(ctx,
		"UPDATE employees SET name = ?, telegram = ?, salary_percent = ? WHERE id = ?",
		emp.Name, emp.Telegram, percent, id,
	)
	if err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}

	return nil
}

func (s *Storage) DeleteEmployee(ctx context.Context, id int64) error {
	const op = "storage.mysql.DeleteEmployee"

	res, err := s.db.ExecContext(ctx, "DELETE FROM employees WHERE id = ?", id)
	if err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}

	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	if n == 0 {
		return fmt.Errorf("%s: id=%d: %w", op, id, storage.ErrEmployeeNotFound)
	}

	return nil
}
