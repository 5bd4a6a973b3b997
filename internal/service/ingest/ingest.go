// Package ingest загружает ордера из выгрузок площадок в БД.
package ingest

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"p2p-reports/internal/metrics"
	"p2p-reports/internal/parser"
	"p2p-reports/internal/storage"
	"strings"
	"time"
)

type Storage interface {
	OrderExists(ctx context.Context, orderID, platform string) (bool, error)
	ContentDuplicateExists(ctx context.Context, o storage.Order) (bool, error)
	InsertOrder(ctx context.Context, o storage.Order) (int64, error)
}

// Request: одна выгрузка одной площадки.
type Request struct {
	EmployeeID  int64
	Platform    string
	AccountName string
	// ForceAccount проставляет AccountName всем ордерам, даже если в файле есть своё имя.
	ForceAccount bool
	From         *time.Time
	To           *time.Time
	Filename     string
	Reader       io.Reader
}

type Stats struct {
	TotalParsed int `json:"total_parsed"`
	Inserted    int `json:"inserted"`
	Duplicates  int `json:"duplicates"`
	Invalid     int `json:"invalid"`
	Outside     int `json:"outside"`
	Failed      int `json:"failed"`
}

// Skipped: всё, что не попало в БД.
func (s Stats) Skipped() int {
	return s.Duplicates + s.Invalid + s.Outside + s.Failed
}

func (s *Stats) Add(other Stats) {
	s.TotalParsed += other.TotalParsed
	s.Inserted += other.Inserted
	s.Duplicates += other.Duplicates
	s.Invalid += other.Invalid
	s.Outside += other.Outside
	s.Failed += other.Failed
}

type Service struct {
	log     *slog.Logger
	storage Storage
}

func New(log *slog.Logger, storage Storage) *Service {
	return &Service{log: log, storage: storage}
}

// Import разбирает файл, отбрасывает ордера вне окна и сохраняет новые.
// Повторная загрузка того же файла ничего не добавляет.
func (s *Service) Import(ctx context.Context, req Request) (Stats, error) {
	const op = "service.ingest.Import"

	log := s.log.With(
		slog.String("op", op),
		slog.String("platform", req.Platform),
		slog.Int64("employee_id", req.EmployeeID),
	)

	orders, stats, err := parseWindow(req)
	if err != nil {
		return Stats{}, fmt.Errorf("%s: %w", op, err)
	}

	platform := strings.ToLower(req.Platform)
	for _, o := range orders {
		o.EmployeeID = req.EmployeeID
		if req.ForceAccount || o.AccountName == "" {
			o.AccountName = req.AccountName
		}

		dup, err := s.isDuplicate(ctx, o)
		if err != nil {
			return stats, fmt.Errorf("%s: %w", op, err)
		}
		if dup {
			stats.Duplicates++
			continue
		}

		if _, err := s.storage.InsertOrder(ctx, o); err != nil {
			switch {
			case errors.Is(err, storage.ErrOrderExists):
				stats.Duplicates++
				continue
			case errors.Is(err, storage.ErrEmployeeNotFound):
				return stats, fmt.Errorf("%s: %w", op, err)
			}
			log.Warn("не удалось сохранить ордер",
				slog.String("order_id", o.OrderID),
				slog.String("error", err.Error()),
			)
			stats.Failed++
			continue
		}
		stats.Inserted++
	}

	metrics.OrdersImported.WithLabelValues(platform).Add(float64(stats.Inserted))
	metrics.OrdersSkipped.WithLabelValues(platform, "duplicate").Add(float64(stats.Duplicates))
	metrics.OrdersSkipped.WithLabelValues(platform, "invalid").Add(float64(stats.Invalid))
	metrics.OrdersSkipped.WithLabelValues(platform, "outside_window").Add(float64(stats.Outside))

	log.Info("выгрузка обработана",
		slog.Int("parsed", stats.TotalParsed),
		slog.Int("inserted", stats.Inserted),
		slog.Int("skipped", stats.Skipped()),
	)

	return stats, nil
}

// Preview разбирает файл без записи: сколько ордеров в окне и сколько из них
// относятся к аккаунтам сотрудника.
func (s *Service) Preview(req Request, accountNames []string) (total, matched int, err error) {
	const op = "service.ingest.Preview"

	orders, _, err := parseWindow(req)
	if err != nil {
		return 0, 0, fmt.Errorf("%s: %w", op, err)
	}

	names := make(map[string]struct{}, len(accountNames))
	for _, n := range accountNames {
		names[n] = struct{}{}
	}
	for _, o := range orders {
		if _, ok := names[o.AccountName]; ok {
			matched++
		}
	}
	return len(orders), matched, nil
}

func (s *Service) isDuplicate(ctx context.Context, o storage.Order) (bool, error) {
	exists, err := s.storage.OrderExists(ctx, o.OrderID, o.Platform)
	if err != nil {
		return false, err
	}
	if exists {
		return true, nil
	}
	if o.Platform != storage.PlatformBybitBTC {
		return false, nil
	}
	return s.storage.ContentDuplicateExists(ctx, o)
}

func parseWindow(req Request) ([]storage.Order, Stats, error) {
	p, err := parser.ForPlatform(req.Platform)
	if err != nil {
		return nil, Stats{}, err
	}

	res, err := p.Parse(req.Reader, req.Filename)
	if err != nil {
		return nil, Stats{}, fmt.Errorf("разбор файла %s: %w", req.Filename, err)
	}

	kept, outside := parser.FilterWindow(res.Orders, req.From, req.To)
	stats := Stats{
		TotalParsed: len(res.Orders),
		Invalid:     res.Skipped,
		Outside:     outside,
	}
	return kept, stats, nil
}

// Buffered читает файл целиком, чтобы разобрать его для нескольких аккаунтов.
func Buffered(r io.Reader) (func() io.Reader, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, fmt.Errorf("чтение файла: %w", err)
	}
	return func() io.Reader { return bytes.NewReader(data) }, nil
}
