package mysql

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"p2p-reports/internal/storage"
	"strings"
)

const reportColumns = `r.id, r.employee_id, COALESCE(e.name, ''), r.shift_date, r.shift_type, r.department,
	r.shift_start_date, r.shift_end_date, r.shift_start_time, r.shift_end_time,
	r.total_requests, r.bybit_requests, r.htx_requests, r.bliss_requests,
	r.balances_json,
	r.scam_amount, r.scam_amount_rub, r.scam_platform, r.scam_account, r.scam_comment,
	r.scam_count_in_sales, r.scam_count_in_purchases,
	r.dokidka_amount, r.dokidka_amount_rub, r.dokidka_platform, r.dokidka_account, r.dokidka_comment,
	r.dokidka_count_in_sales, r.dokidka_count_in_purchases,
	r.internal_transfer_amount, r.internal_transfer_amount_rub, r.internal_transfer_platform,
	r.internal_transfer_account, r.internal_transfer_comment,
	r.internal_transfer_count_in_sales, r.internal_transfer_count_in_purchases,
	r.appeal_amount, r.appeal_amount_rub, r.appeal_platform, r.appeal_account, r.appeal_comment,
	r.appeal_count_in_sales, r.appeal_count_in_purchases, r.appeal_deducted,
	r.bybit_file, r.bybit_btc_file, r.htx_file, r.bliss_file, r.start_photo, r.end_photo,
	r.created_at, r.updated_at`

const reportFrom = ` FROM shift_reports r LEFT JOIN employees e ON e.id = r.employee_id`

type rowScanner interface {
	Scan(dest ...any) error
}

// adjustmentDest: приёмники для колонок одной корректировки.
type adjustmentDest struct {
	comment sql.NullString
}

func (d *adjustmentDest) targets(a *storage.Adjustment) []any {
	return []any{&a.Amount, &a.AmountRub, &a.Platform, &a.Account, &d.comment, &a.CountInSales, &a.CountInPurchases}
}

func scanReport(row rowScanner) (storage.ShiftReport, error) {
	var r storage.ShiftReport
	var startDate, endDate, startTime, endTime sql.NullTime
	var files [6]sql.NullString
	var scam, dokidka, internal, appeal adjustmentDest

	dest := []any{
		&r.ID, &r.EmployeeID, &r.EmployeeName, &r.ShiftDate, &r.ShiftType, &r.Department,
		&startDate, &endDate, &startTime, &endTime,
		&r.TotalRequests, &r.BybitRequests, &r.HTXRequests, &r.BlissRequests,
		&r.Balances,
	}
	dest = append(dest, scam.targets(&r.Scam)...)
	dest = append(dest, dokidka.targets(&r.Dokidka)...)
	dest = append(dest, internal.targets(&r.InternalTransfer)...)
	dest = append(dest, appeal.targets(&r.Appeal)...)
	dest = append(dest, &r.AppealDeducted)
	for i := range files {
		dest = append(dest, &files[i])
	}
	dest = append(dest, &r.CreatedAt, &r.UpdatedAt)

	if err := row.Scan(dest...); err != nil {
		return storage.ShiftReport{}, err
	}

	r.ShiftStartDate = timePtr(startDate)
	r.ShiftEndDate = timePtr(endDate)
	r.ShiftStartTime = timePtr(startTime)
	r.ShiftEndTime = timePtr(endTime)

	r.Scam.Comment = scam.comment.String
	r.Dokidka.Comment = dokidka.comment.String
	r.InternalTransfer.Comment = internal.comment.String
	r.Appeal.Comment = appeal.comment.String

	r.BybitFile = files[0].String
	r.BybitBTCFile = files[1].String
	r.HTXFile = files[2].String
	r.BlissFile = files[3].String
	r.StartPhoto = files[4].String
	r.EndPhoto = files[5].String

	return r, nil
}

func (s *Storage) queryReports(ctx context.Context, op, query string, args ...any) ([]storage.ShiftReport, error) {
	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	defer rows.Close()

	var reports []storage.ShiftReport
	for rows.Next() {
		r, err := scanReport(rows)
		if err != nil {
			return nil, fmt.Errorf("%s: ошибка сканирования строки: %w", op, err)
		}
		reports = append(reports, r)
	}

	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("%s: ошибка при итерации по строкам: %w", op, err)
	}

	return reports, nil
}

func (s *Storage) ListReports(ctx context.Context, filter storage.ReportFilter) ([]storage.ShiftReport, error) {
	const op = "storage.mysql.ListReports"

	var where []string
	var args []any
	if filter.From != nil {
		where = append(where, "r.shift_date >= ?")
		args = append(args, filter.From.Format("2006-01-02"))
	}
	if filter.To != nil {
		where = append(where, "r.shift_date <= ?")
		args = append(args, filter.To.Format("2006-01-02"))
	}
	if filter.EmployeeID != 0 {
		where = append(where, "r.employee_id = ?")
		args = append(args, filter.EmployeeID)
	}
	if filter.Department != "" {
		where = append(where, "r.department = ?")
		args = append(args, filter.Department)
	}

	query := "SELECT " + reportColumns + reportFrom
	if len(where) > 0 {
		query += " WHERE " + strings.Join(where, " AND ")
	}
	query += " ORDER BY r.shift_date DESC, r.id DESC"
	if filter.Limit > 0 {
		query += " LIMIT ?"
		args = append(args, filter.Limit)
	}

	return s.queryReports(ctx, op, query, args...)
}

func (s *Storage) GetReport(ctx context.Context, id int64) (*storage.ShiftReport, error) {
	const op = "storage.mysql.GetReport"

	row := s.db.QueryRowContext(ctx, "SELECT "+reportColumns+reportFrom+" WHERE r.id = ?", id)
	r, err := scanReport(row)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, fmt.Errorf("%s: отчёт id=%d: %w", op, id, storage.ErrNotFound)
		}
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	return &r, nil
}

// PreviousReports возвращает отчёты не позже даты report, кроме него самого.
// Точный порядок смен внутри даты определяет вызывающий.
func (s *Storage) PreviousReports(ctx context.Context, report storage.ShiftReport) ([]storage.ShiftReport, error) {
	const op = "storage.mysql.PreviousReports"

	query := "SELECT " + reportColumns + reportFrom +
		" WHERE r.shift_date <= ? AND r.id <> ? ORDER BY r.shift_date DESC, r.id DESC"

	return s.queryReports(ctx, op, query, report.ShiftDate.Format("2006-01-02"), report.ID)
}

// CreateReport сохраняет отчёт, запись истории скама и синтетические ордера одной транзакцией.
// synthetic получает id нового отчёта и может вернуть nil.
func (s *Storage) CreateReport(ctx context.Context, r storage.ShiftReport, synthetic func(reportID int64) []storage.Order) (int64, error) {
	const op = "storage.mysql.CreateReport"

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return 0, fmt.Errorf("%s: begin tx: %w", op, err)
	}
	defer tx.Rollback()

	id, err := insertReport(ctx, tx, r)
	if err != nil {
		return 0, fmt.Errorf("%s: %w", op, err)
	}

	if r.Scam.Amount > 0 {
		_, err = tx.ExecContext(ctx,
			`INSERT INTO employee_scam_history (employee_id, shift_report_id, amount, comment, date) VALUES (?, ?, ?, ?, ?)`,
			r.EmployeeID, id, r.Scam.Amount, r.Scam.Comment, r.ShiftDate.Format("2006-01-02"),
		)
		if err != nil {
			return 0, fmt.Errorf("%s: история скама: %w", op, err)
		}
	}

	if synthetic != nil {
		for _, o := range synthetic(id) {
			if _, err := insertOrder(ctx, tx, o); err != nil {
				return 0, fmt.Errorf("%s: ордер %s: %w", op, o.OrderID, err)
			}
		}
	}

	if err := tx.Commit(); err != nil {
		return 0, fmt.Errorf("%s: commit: %w", op, err)
	}

	return id, nil
}

func insertReport(ctx context.Context, db execer, r storage.ShiftReport) (int64, error) {
	balances, err := r.Balances.Value()
	if err != nil {
		return 0, fmt.Errorf("balances: %w", err)
	}

	department := r.Department
	if department == "" {
		department = storage.DepartmentFirst
	}

	args := []any{
		r.EmployeeID, r.ShiftDate.Format("2006-01-02"), r.ShiftType, department,
		nullTime(r.ShiftStartDate), nullTime(r.ShiftEndDate), nullTime(r.ShiftStartTime), nullTime(r.ShiftEndTime),
		r.TotalRequests, r.BybitRequests, r.HTXRequests, r.BlissRequests,
		balances,
	}
	for _, a := range []storage.Adjustment{r.Scam, r.Dokidka, r.InternalTransfer, r.Appeal} {
		platform := a.Platform
		if platform == "" {
			platform = storage.PlatformBybit
		}
		args = append(args, a.Amount, a.AmountRub, platform, a.Account, a.Comment, a.CountInSales, a.CountInPurchases)
	}
	args = append(args, r.AppealDeducted,
		nullString(r.BybitFile), nullString(r.BybitBTCFile), nullString(r.HTXFile), nullString(r.BlissFile),
		nullString(r.StartPhoto), nullString(r.EndPhoto),
	)

	res, err := db.ExecContext(ctx, `INSERT INTO shift_reports (
		employee_id, shift_date, shift_type, department,
		shift_start_date, shift_end_date, shift_start_time, shift_end_time,
		total_requests, bybit_requests, htx_requests, bliss_requests,
		balances_json,
		scam_amount, scam_amount_rub, scam_platform, scam_account, scam_comment,
		scam_count_in_sales, scam_count_in_purchases,
		dokidka_amount, dokidka_amount_rub, dokidka_platform, dokidka_account, dokidka_comment,
		dokidka_count_in_sales, dokidka_count_in_purchases,
		internal_transfer_amount, internal_transfer_amount_rub, internal_transfer_platform,
		internal_transfer_account, internal_transfer_comment,
		internal_transfer_count_in_sales, internal_transfer_count_in_purchases,
		appeal_amount, appeal_amount_rub, appeal_platform, appeal_account, appeal_comment,
		appeal_count_in_sales, appeal_count_in_purchases, appeal_deducted,
		bybit_file, bybit_btc_file, htx_file, bliss_file, start_photo, end_photo
	) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?,
		?, ?, ?, ?, ?, ?, ?,
		?, ?, ?, ?, ?, ?, ?,
		?, ?, ?, ?, ?, ?, ?,
		?, ?, ?, ?, ?, ?, ?, ?,
		?, ?, ?, ?, ?, ?)`, args...)
	if err != nil {
		if mysqlErr, ok := asMySQLError(err); ok && mysqlErr.Number == errForeignKey {
			return 0, storage.ErrEmployeeNotFound
		}
		return 0, fmt.Errorf("insert shift_reports: %w", err)
	}

	return res.LastInsertId()
}

// DeleteReport удаляет отчёт вместе с его историей скама.
func (s *Storage) DeleteReport(ctx context.Context, id int64) error {
	const op = "storage.mysql.DeleteReport"

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("%s: begin tx: %w", op, err)
	}
	defer tx.Rollback()

	if _, err := tx.ExecContext(ctx, "DELETE FROM employee_scam_history WHERE shift_report_id = ?", id); err != nil {
		return fmt.Errorf("%s: история скама: %w", op, err)
	}

	res, err := tx.ExecContext(ctx, "DELETE FROM shift_reports WHERE id = ?", id)
	if err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	if n == 0 {
		return fmt.Errorf("%s: отчёт id=%d: %w", op, id, storage.ErrNotFound)
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("%s: commit: %w", op, err)
	}

	return nil
}
