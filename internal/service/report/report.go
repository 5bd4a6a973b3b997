// Package report создаёт и удаляет сменные отчёты: сохраняет отчёт,
// синтетические ордера корректировок, загружает выгрузки смены и привязывает ордера.
package report

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"p2p-reports/internal/service/ingest"
	"p2p-reports/internal/service/profit"
	"p2p-reports/internal/storage"
	"time"
)

// ValidationError: ошибка входных данных, отдаётся клиенту как есть.
type ValidationError struct {
	Msg string
}

func (e *ValidationError) Error() string { return e.Msg }

func invalid(format string, args ...any) error {
	return &ValidationError{Msg: fmt.Sprintf(format, args...)}
}

// IsValidation сообщает, что err вызван некорректными данными запроса.
func IsValidation(err error) bool {
	var v *ValidationError
	return errors.As(err, &v)
}

type Storage interface {
	GetEmployee(ctx context.Context, id int64) (*storage.Employee, error)
	GetAccount(ctx context.Context, id int64) (*storage.Account, error)
	ListAccounts(ctx context.Context, filter storage.AccountFilter) ([]storage.Account, error)
	GetReport(ctx context.Context, id int64) (*storage.ShiftReport, error)
	CreateReport(ctx context.Context, r storage.ShiftReport, synthetic func(reportID int64) []storage.Order) (int64, error)
	DeleteReport(ctx context.Context, id int64) error
}

type Importer interface {
	Import(ctx context.Context, req ingest.Request) (ingest.Stats, error)
	Preview(req ingest.Request, accountNames []string) (total, matched int, err error)
}

type Linker interface {
	Link(ctx context.Context, report storage.ShiftReport) (int64, error)
}

type Reconciler interface {
	Reconcile(ctx context.Context, report storage.ShiftReport, tolerance float64) (profit.Reconciliation, error)
}

type Service struct {
	log       *slog.Logger
	storage   Storage
	importer  Importer
	linker    Linker
	profit    Reconciler
	tolerance float64
	now       func() time.Time
}

func New(log *slog.Logger, storage Storage, importer Importer, linker Linker, calc Reconciler, tolerance float64) *Service {
	return &Service{
		log:       log,
		storage:   storage,
		importer:  importer,
		linker:    linker,
		profit:    calc,
		tolerance: tolerance,
		now:       time.Now,
	}
}

// Upload: файл выгрузки, приложенный к отчёту. AccountID задаётся, когда
// файл относится к конкретному аккаунту смены.
type Upload struct {
	Platform  string
	AccountID int64
	Filename  string
	Open      func() io.Reader
}

type CreateRequest struct {
	Report storage.ShiftReport
	Files  []Upload
}

type CreateResult struct {
	ID             int64         `json:"id"`
	Message        string        `json:"message"`
	FileProcessing *ingest.Stats `json:"file_processing,omitempty"`
	LinkedOrders   *int64        `json:"linked_orders,omitempty"`
}

const createdMessage = "Report created successfully"

// Validate проверяет заявки и окно смены.
func Validate(r storage.ShiftReport) error {
	if r.EmployeeID <= 0 {
		return invalid("Поле employee_id обязательно для заполнения")
	}
	if r.ShiftDate.IsZero() {
		return invalid("Поле shift_date обязательно для заполнения")
	}
	if r.ShiftType != storage.ShiftMorning && r.ShiftType != storage.ShiftEvening {
		return invalid("Неверный тип смены: %q", r.ShiftType)
	}
	if r.Department != "" && r.Department != storage.DepartmentFirst && r.Department != storage.DepartmentSecond {
		return invalid("Неверный отдел: %q", r.Department)
	}
	if r.BybitRequests < 0 || r.HTXRequests < 0 || r.BlissRequests < 0 || r.TotalRequests < 0 {
		return invalid("Количество заявок не может быть отрицательным")
	}
	if r.HasWindow() && !r.ShiftStartTime.Before(*r.ShiftEndTime) {
		return invalid("Время начала смены должно быть меньше времени окончания")
	}
	return nil
}

// Create сохраняет отчёт. Если есть выгрузки и окно смены, ордера загружаются
// из файлов, иначе к сотруднику привязываются уже загруженные ордера.
func (s *Service) Create(ctx context.Context, req CreateRequest) (CreateResult, error) {
	const op = "service.report.Create"

	r := req.Report
	r.TotalRequests = r.BybitRequests + r.HTXRequests + r.BlissRequests
	if err := Validate(r); err != nil {
		return CreateResult{}, err
	}

	id, err := s.storage.CreateReport(ctx, r, nil)
	if err != nil {
		return CreateResult{}, fmt.Errorf("%s: %w", op, err)
	}
	r.ID = id

	res := CreateResult{ID: id, Message: createdMessage}

	if len(req.Files) > 0 && r.HasWindow() {
		var stats ingest.Stats
		for _, f := range req.Files {
			st, err := s.importer.Import(ctx, ingest.Request{
				EmployeeID: r.EmployeeID,
				Platform:   f.Platform,
				From:       r.ShiftStartTime,
				To:         r.ShiftEndTime,
				Filename:   f.Filename,
				Reader:     f.Open(),
			})
			if err != nil {
				s.log.Error("failed to import shift file",
					slog.String("op", op),
					slog.String("platform", f.Platform),
					slog.String("error", err.Error()),
				)
				stats.Failed++
				continue
			}
			stats.Add(st)
		}
		res.FileProcessing = &stats
		return res, nil
	}

	linked, err := s.linker.Link(ctx, r)
	if err != nil {
		return CreateResult{}, fmt.Errorf("%s: %w", op, err)
	}
	res.LinkedOrders = &linked

	return res, nil
}

// Delete удаляет отчёт и его историю скама. Ордера смены остаются.
func (s *Service) Delete(ctx context.Context, id int64) error {
	const op = "service.report.Delete"

	if err := s.storage.DeleteReport(ctx, id); err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	return nil
}

// Reconcile считает прибыль отчёта обоими методами и помечает расхождение.
func (s *Service) Reconcile(ctx context.Context, id int64) (profit.Reconciliation, error) {
	const op = "service.report.Reconcile"

	r, err := s.storage.GetReport(ctx, id)
	if err != nil {
		return profit.Reconciliation{}, fmt.Errorf("%s: %w", op, err)
	}

	rec, err := s.profit.Reconcile(ctx, *r, s.tolerance)
	if err != nil {
		return profit.Reconciliation{}, fmt.Errorf("%s: %w", op, err)
	}

	if rec.Diverged {
		s.log.Warn("profit methods diverge",
			slog.String("op", op),
			slog.Int64("report_id", id),
			slog.Float64("balance", rec.Balance.Profit),
			slog.Float64("orders", rec.Orders.Profit),
			slog.Float64("difference", rec.Difference),
		)
	}

	return rec, nil
}
