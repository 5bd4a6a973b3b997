package mysql

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"p2p-reports/internal/storage"
)

// SalarySettings возвращает единственную строку настроек, создавая её со значениями по умолчанию.
func (s *Storage) SalarySettings(ctx context.Context) (*storage.SalarySettings, error) {
	const op = "storage.mysql.SalarySettings"

	var st storage.SalarySettings
	err := s.db.QueryRowContext(ctx, `SELECT id, base_percent, min_daily_profit, bonus_percent, bonus_profit_threshold
		FROM salary_settings ORDER BY id LIMIT 1`,
	).Scan(&st.ID, &st.BasePercent, &st.MinDailyProfit, &st.BonusPercent, &st.BonusProfitThreshold)
	if err == nil {
		return &st, nil
	}
	if !errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	st = storage.DefaultSalarySettings()
	res, err := s.db.ExecContext(ctx, `INSERT INTO salary_settings
		(base_percent, min_daily_profit, bonus_percent, bonus_profit_threshold) VALUES (?, ?, ?, ?)`,
		st.BasePercent, st.MinDailyProfit, st.BonusPercent, st.BonusProfitThreshold,
	)
	if err != nil {
		return nil, fmt.Errorf("%s: создание настроек по умолчанию: %w", op, err)
	}
	if st.ID, err = res.LastInsertId(); err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	return &st, nil
}

func (s *Storage) UpdateSalarySettings(ctx context.Context, st storage.SalarySettings) error {
	const op = "storage.mysql.UpdateSalarySettings"

	current, err := s.SalarySettings(ctx)
	if err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}

	_, err = s.db.ExecContext(ctx, `UPDATE salary_settings
		SET base_percent = ?, min_daily_profit = ?, bonus_percent = ?, bonus_profit_threshold = ?
		WHERE id = ?`,
		st.BasePercent, st.MinDailyProfit, st.BonusPercent, st.BonusProfitThreshold, current.ID,
	)
	if err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}

	return nil
}

func (s *Storage) ListScams(ctx context.Context, employeeID int64) ([]storage.ScamRecord, error) {
	const op = "storage.mysql.ListScams"

	rows, err := s.db.QueryContext(ctx, `SELECT id, employee_id, shift_report_id, amount, comment, date
		FROM employee_scam_history WHERE employee_id = ? ORDER BY date DESC, id DESC`, employeeID)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	defer rows.Close()

	var scams []storage.ScamRecord
	for rows.Next() {
		var sc storage.ScamRecord
		var reportID sql.NullInt64
		var comment sql.NullString
		if err := rows.Scan(&sc.ID, &sc.EmployeeID, &reportID, &sc.Amount, &comment, &sc.Date); err != nil {
			return nil, fmt.Errorf("%s: ошибка сканирования строки: %w", op, err)
		}
		sc.ShiftReportID = intPtr(reportID)
		sc.Comment = comment.String
		scams = append(scams, sc)
	}

	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("%s: ошибка при итерации по строкам: %w", op, err)
	}

	return scams, nil
}
