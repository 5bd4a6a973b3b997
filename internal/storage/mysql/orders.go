package mysql

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"p2p-reports/internal/storage"
	"strings"
	"time"
)

const orderColumns = `o.id, o.order_id, o.employee_id, COALESCE(e.name, ''), o.platform, o.account_name,
	o.symbol, o.side, o.quantity, o.price, o.total_usdt, o.fees_usdt, o.status,
	o.count_in_sales, o.count_in_purchases, o.executed_at, o.created_at, o.updated_at`

const orderFrom = ` FROM orders o LEFT JOIN employees e ON e.id = o.employee_id`

func scanOrder(row rowScanner) (storage.Order, error) {
	var o storage.Order
	err := row.Scan(
		&o.ID, &o.OrderID, &o.EmployeeID, &o.EmployeeName, &o.Platform, &o.AccountName,
		&o.Symbol, &o.Side, &o.Quantity, &o.Price, &o.TotalUSDT, &o.FeesUSDT, &o.Status,
		&o.CountInSales, &o.CountInPurchases, &o.ExecutedAt, &o.CreatedAt, &o.UpdatedAt,
	)
	return o, err
}

func placeholders(n int) string {
	return strings.TrimSuffix(strings.Repeat("?, ", n), ", ")
}

func orderWhere(filter storage.OrderFilter) (string, []any) {
	var where []string
	var args []any

	if filter.EmployeeID != 0 {
		where = append(where, "o.employee_id = ?")
		args = append(args, filter.EmployeeID)
	}
	if filter.Platform != "" {
		where = append(where, "o.platform = ?")
		args = append(args, filter.Platform)
	}
	if filter.ExcludePlatform != "" {
		where = append(where, "o.platform <> ?")
		args = append(args, filter.ExcludePlatform)
	}
	if filter.Status != "" {
		where = append(where, "o.status = ?")
		args = append(args, filter.Status)
	}
	if len(filter.Statuses) > 0 {
		where = append(where, "o.status IN ("+placeholders(len(filter.Statuses))+")")
		for _, st := range filter.Statuses {
			args = append(args, st)
		}
	}
	if len(filter.ExcludeStatuses) > 0 {
		where = append(where, "o.status NOT IN ("+placeholders(len(filter.ExcludeStatuses))+")")
		for _, st := range filter.ExcludeStatuses {
			args = append(args, st)
		}
	}
	if filter.Side != "" {
		where = append(where, "o.side = ?")
		args = append(args, filter.Side)
	}
	if filter.Department != "" {
		where = append(where, `EXISTS (SELECT 1 FROM shift_reports r
			WHERE r.employee_id = o.employee_id AND r.shift_date = DATE(o.executed_at) AND r.department = ?)`)
		args = append(args, filter.Department)
	}
	if filter.From != nil {
		where = append(where, "o.executed_at >= ?")
		args = append(args, *filter.From)
	}
	if filter.Before != nil {
		where = append(where, "o.executed_at < ?")
		args = append(args, *filter.Before)
	}
	if filter.To != nil {
		where = append(where, "o.executed_at <= ?")
		args = append(args, *filter.To)
	}

	if len(where) == 0 {
		return "", nil
	}
	return " WHERE " + strings.Join(where, " AND "), args
}

func (s *Storage) ListOrders(ctx context.Context, filter storage.OrderFilter) ([]storage.Order, error) {
	const op = "storage.mysql.ListOrders"

	where, args := orderWhere(filter)
	query := "SELECT " + orderColumns + orderFrom + where + " ORDER BY o.executed_at DESC, o.id DESC"

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	defer rows.Close()

	var orders []storage.Order
	for rows.Next() {
		o, err := scanOrder(rows)
		if err != nil {
			return nil, fmt.Errorf("%s: ошибка сканирования строки: %w", op, err)
		}
		orders = append(orders, o)
	}

	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("%s: ошибка при итерации по строкам: %w", op, err)
	}

	return orders, nil
}

func (s *Storage) GetOrder(ctx context.Context, id int64) (*storage.Order, error) {
	const op = "storage.mysql.GetOrder"

	o, err := scanOrder(s.db.QueryRowContext(ctx, "SELECT "+orderColumns+orderFrom+" WHERE o.id = ?", id))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, fmt.Errorf("%s: ордер id=%d: %w", op, id, storage.ErrNotFound)
		}
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	return &o, nil
}

func (s *Storage) OrderExists(ctx context.Context, orderID, platform string) (bool, error) {
	const op = "storage.mysql.OrderExists"

	var exists bool
	err := s.db.QueryRowContext(ctx,
		"SELECT EXISTS(SELECT 1 FROM orders WHERE order_id = ? AND platform = ?)", orderID, platform,
	).Scan(&exists)
	if err != nil {
		return false, fmt.Errorf("%s: %w", op, err)
	}

	return exists, nil
}

// ContentDuplicateExists ищет ордер той же площадки с совпадающим содержимым.
// Нужен для BTC-выгрузок, где order_id синтетический.
func (s *Storage) ContentDuplicateExists(ctx context.Context, o storage.Order) (bool, error) {
	const op = "storage.mysql.ContentDuplicateExists"

	var exists bool
	err := s.db.QueryRowContext(ctx, `SELECT EXISTS(SELECT 1 FROM orders
		WHERE platform = ? AND symbol = ? AND side = ? AND quantity = ? AND price = ? AND executed_at = ?)`,
		o.Platform, o.Symbol, o.Side, o.Quantity, o.Price, o.ExecutedAt,
	).Scan(&exists)
	if err != nil {
		return false, fmt.Errorf("%s: %w", op, err)
	}

	return exists, nil
}

func (s *Storage) InsertOrder(ctx context.Context, o storage.Order) (int64, error) {
	const op = "storage.mysql.InsertOrder"

	id, err := insertOrder(ctx, s.db, o)
	if err != nil {
		return 0, fmt.Errorf("%s: %w", op, err)
	}

	return id, nil
}

func insertOrder(ctx context.Context, db execer, o storage.Order) (int64, error) {
	res, err := db.ExecContext(ctx, `INSERT INTO orders (
		order_id, employee_id, platform, account_name, symbol, side, quantity, price,
		total_usdt, fees_usdt, status, count_in_sales, count_in_purchases, executed_at
	) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		o.OrderID, o.EmployeeID, o.Platform, o.AccountName, o.Symbol, o.Side, o.Quantity, o.Price,
		o.TotalUSDT, o.FeesUSDT, o.Status, o.CountInSales, o.CountInPurchases, o.ExecutedAt,
	)
	if err != nil {
		if isDuplicate(err) {
			return 0, fmt.Errorf("order_id=%s platform=%s: %w", o.OrderID, o.Platform, storage.ErrOrderExists)
		}
		if mysqlErr, ok := asMySQLError(err); ok && mysqlErr.Number == errForeignKey {
			return 0, storage.ErrEmployeeNotFound
		}
		return 0, err
	}

	return res.LastInsertId()
}

// UpdateOrder применяет частичное обновление. Смена order_id на занятый даёт ErrOrderExists.
func (s *Storage) UpdateOrder(ctx context.Context, id int64, upd storage.OrderUpdate) error {
	const op = "storage.mysql.UpdateOrder"

	o, err := s.GetOrder(ctx, id)
	if err != nil {
		return err
	}

	if upd.OrderID != nil {
		o.OrderID = *upd.OrderID
	}
	if upd.EmployeeID != nil {
		o.EmployeeID = *upd.EmployeeID
	}
	if upd.Platform != nil {
		o.Platform = *upd.Platform
	}
	if upd.AccountName != nil {
		o.AccountName = *upd.AccountName
	}
	if upd.Symbol != nil {
		o.Symbol = *upd.Symbol
	}
	if upd.Side != nil {
		o.Side = *upd.Side
	}
	if upd.Quantity != nil {
		o.Quantity = *upd.Quantity
	}
	if upd.Price != nil {
		o.Price = *upd.Price
	}
	if upd.TotalUSDT != nil {
		o.TotalUSDT = *upd.TotalUSDT
	}
	if upd.FeesUSDT != nil {
		o.FeesUSDT = *upd.FeesUSDT
	}
	if upd.Status != nil {
		o.Status = *upd.Status
	}
	if upd.CountInSales != nil {
		o.CountInSales = *upd.CountInSales
	}
	if upd.CountInPurchases != nil {
		o.CountInPurchases = *upd.CountInPurchases
	}
	if upd.ExecutedAt != nil {
		o.ExecutedAt = *upd.ExecutedAt
	}

	_, err = s.db.ExecContext(ctx, `UPDATE orders SET
		order_id = ?, employee_id = ?, platform = ?, account_name = ?, symbol = ?, side = ?,
		quantity = ?, price = ?, total_usdt = ?, fees_usdt = ?, status = ?,
		count_in_sales = ?, count_in_purchases = ?, executed_at = ?, updated_at = ?
		WHERE id = ?`,
		o.OrderID, o.EmployeeID, o.Platform, o.AccountName, o.Symbol, o.Side,
		o.Quantity, o.Price, o.TotalUSDT, o.FeesUSDT, o.Status,
		o.CountInSales, o.CountInPurchases, o.ExecutedAt, time.Now().UTC(), id,
	)
	if err != nil {
		if isDuplicate(err) {
			return fmt.Errorf("%s: %w", op, storage.ErrOrderExists)
		}
		if mysqlErr, ok := asMySQLError(err); ok && mysqlErr.Number == errForeignKey {
			return fmt.Errorf("%s: %w", op, storage.ErrEmployeeNotFound)
		}
		return fmt.Errorf("%s: %w", op, err)
	}

	return nil
}

func (s *Storage) DeleteOrder(ctx context.Context, id int64) error {
	const op = "storage.mysql.DeleteOrder"

	res, err := s.db.ExecContext(ctx, "DELETE FROM orders WHERE id = ?", id)
	if err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	if n == 0 {
		return fmt.Errorf("%s: ордер id=%d: %w", op, id, storage.ErrNotFound)
	}

	return nil
}

// DeleteOrders удаляет ордера по id и возвращает число удалённых.
func (s *Storage) DeleteOrders(ctx context.Context, ids []int64) (int64, error) {
	const op = "storage.mysql.DeleteOrders"

	if len(ids) == 0 {
		return 0, nil
	}

	args := make([]any, len(ids))
	for i, id := range ids {
		args[i] = id
	}

	res, err := s.db.ExecContext(ctx, "DELETE FROM orders WHERE id IN ("+placeholders(len(ids))+")", args...)
	if err != nil {
		return 0, fmt.Errorf("%s: %w", op, err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("%s: %w", op, err)
	}

	return n, nil
}

// ReassignOrders одним UPDATE переводит на сотрудника ордера его аккаунтов внутри окна.
func (s *Storage) ReassignOrders(ctx context.Context, employeeID int64, accountNames []string, from, to time.Time) (int64, error) {
	const op = "storage.mysql.ReassignOrders"

	if len(accountNames) == 0 {
		return 0, nil
	}

	args := []any{employeeID, from, to}
	for _, name := range accountNames {
		args = append(args, name)
	}
	args = append(args, employeeID)

	res, err := s.db.ExecContext(ctx, `UPDATE orders SET employee_id = ?
		WHERE executed_at >= ? AND executed_at <= ?
		AND account_name IN (`+placeholders(len(accountNames))+`)
		AND employee_id <> ?`, args...)
	if err != nil {
		return 0, fmt.Errorf("%s: %w", op, err)
	}

	n, err := res.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("%s: %w", op, err)
	}

	return n, nil
}
