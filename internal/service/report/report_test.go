package report

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"p2p-reports/internal/service/ingest"
	"p2p-reports/internal/service/profit"
	"p2p-reports/internal/storage"
	"strconv"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

type MockStorage struct {
	mock.Mock
}

func (m *MockStorage) GetEmployee(ctx context.Context, id int64) (*storage.Employee, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*storage.Employee), args.Error(1)
}

func (m *MockStorage) GetAccount(ctx context.Context, id int64) (*storage.Account, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*storage.Account), args.Error(1)
}

func (m *MockStorage) ListAccounts(ctx context.Context, filter storage.AccountFilter) ([]storage.Account, error) {
	args := m.Called(ctx, filter)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]storage.Account), args.Error(1)
}

func (m *MockStorage) GetReport(ctx context.Context, id int64) (*storage.ShiftReport, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*storage.ShiftReport), args.Error(1)
}

func (m *MockStorage) CreateReport(ctx context.Context, r storage.ShiftReport, synthetic func(reportID int64) []storage.Order) (int64, error) {
	args := m.Called(ctx, r, synthetic)
	id, _ := args.Get(0).(int64)
	return id, args.Error(1)
}

func (m *MockStorage) DeleteReport(ctx context.Context, id int64) error {
	args := m.Called(ctx, id)
	return args.Error(0)
}

type MockImporter struct {
	mock.Mock
}

func (m *MockImporter) Import(ctx context.Context, req ingest.Request) (ingest.Stats, error) {
	args := m.Called(ctx, req)
	st, _ := args.Get(0).(ingest.Stats)
	return st, args.Error(1)
}

func (m *MockImporter) Preview(req ingest.Request, accountNames []string) (int, int, error) {
	args := m.Called(req, accountNames)
	return args.Int(0), args.Int(1), args.Error(2)
}

type MockLinker struct {
	mock.Mock
}

func (m *MockLinker) Link(ctx context.Context, r storage.ShiftReport) (int64, error) {
	args := m.Called(ctx, r)
	n, _ := args.Get(0).(int64)
	return n, args.Error(1)
}

type MockReconciler struct {
	mock.Mock
}

func (m *MockReconciler) Reconcile(ctx context.Context, r storage.ShiftReport, tolerance float64) (profit.Reconciliation, error) {
	args := m.Called(ctx, r, tolerance)
	rec, _ := args.Get(0).(profit.Reconciliation)
	return rec, args.Error(1)
}

type deps struct {
	storage  *MockStorage
	importer *MockImporter
	linker   *MockLinker
	profit   *MockReconciler
}

var fixedNow = time.Date(2025, 3, 10, 22, 0, 0, 0, time.UTC)

func newTestService() (*Service, deps) {
	d := deps{
		storage:  new(MockStorage),
		importer: new(MockImporter),
		linker:   new(MockLinker),
		profit:   new(MockReconciler),
	}
	s := New(slog.New(slog.NewTextHandler(io.Discard, nil)), d.storage, d.importer, d.linker, d.profit, 0.01)
	s.now = func() time.Time { return fixedNow }
	return s, d
}

func at(h int) *time.Time {
	t := time.Date(2025, 3, 10, h, 0, 0, 0, time.UTC)
	return &t
}

func baseReport() storage.ShiftReport {
	return storage.ShiftReport{
		EmployeeID: 1,
		ShiftDate:  time.Date(2025, 3, 10, 0, 0, 0, 0, time.UTC),
		ShiftType:  storage.ShiftMorning,
	}
}

func upload(platform string, accountID int64, content string) Upload {
	return Upload{
		Platform:  platform,
		AccountID: accountID,
		Filename:  platform + ".csv",
		Open:      func() io.Reader { return strings.NewReader(content) },
	}
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name   string
		modify func(r *storage.ShiftReport)
		ok     bool
	}{
		{name: "valid", modify: func(r *storage.ShiftReport) {}, ok: true},
		{name: "no employee", modify: func(r *storage.ShiftReport) { r.EmployeeID = 0 }},
		{name: "no date", modify: func(r *storage.ShiftReport) { r.ShiftDate = time.Time{} }},
		{name: "bad shift type", modify: func(r *storage.ShiftReport) { r.ShiftType = "night" }},
		{name: "bad department", modify: func(r *storage.ShiftReport) { r.Department = "third" }},
		{name: "negative requests", modify: func(r *storage.ShiftReport) { r.HTXRequests = -1 }},
		{name: "reversed window", modify: func(r *storage.ShiftReport) { r.ShiftStartTime, r.ShiftEndTime = at(18), at(9) }},
		{name: "window", modify: func(r *storage.ShiftReport) { r.ShiftStartTime, r.ShiftEndTime = at(9), at(18) }, ok: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r := baseReport()
			tt.modify(&r)
			err := Validate(r)
			if tt.ok {
				assert.NoError(t, err)
				return
			}
			assert.True(t, IsValidation(err))
		})
	}
}

// Тест: без выгрузок к отчёту привязываются существующие ордера
func TestCreate_LinksWithoutFiles(t *testing.T) {
	s, d := newTestService()
	r := baseReport()
	r.ShiftStartTime, r.ShiftEndTime = at(9), at(18)
	r.BybitRequests, r.HTXRequests = 3, 2

	d.storage.On("CreateReport", mock.Anything, mock.MatchedBy(func(got storage.ShiftReport) bool {
		return got.TotalRequests == 5
	}), mock.Anything).Return(int64(7), nil)
	d.linker.On("Link", mock.Anything, mock.MatchedBy(func(got storage.ShiftReport) bool {
		return got.ID == 7
	})).Return(int64(3), nil)

	res, err := s.Create(context.Background(), CreateRequest{Report: r})

	require.NoError(t, err)
	assert.Equal(t, int64(7), res.ID)
	require.NotNil(t, res.LinkedOrders)
	assert.Equal(t, int64(3), *res.LinkedOrders)
	assert.Nil(t, res.FileProcessing)
	d.importer.AssertNotCalled(t, "Import", mock.Anything, mock.Anything)
}

// Тест: выгрузки загружаются с окном смены, ошибка одного файла не прерывает остальные
func TestCreate_ImportsFiles(t *testing.T) {
	s, d := newTestService()
	r := baseReport()
	r.ShiftStartTime, r.ShiftEndTime = at(9), at(18)

	d.storage.On("CreateReport", mock.Anything, mock.Anything, mock.Anything).Return(int64(8), nil)
	d.importer.On("Import", mock.Anything, mock.MatchedBy(func(req ingest.Request) bool {
		return req.Platform == storage.PlatformBybit && req.EmployeeID == 1 && req.From.Equal(*at(9)) && req.To.Equal(*at(18))
	})).Return(ingest.Stats{TotalParsed: 10, Inserted: 6, Duplicates: 4}, nil)
	d.importer.On("Import", mock.Anything, mock.MatchedBy(func(req ingest.Request) bool {
		return req.Platform == storage.PlatformHTX
	})).Return(ingest.Stats{}, errors.New("разбор файла"))

	res, err := s.Create(context.Background(), CreateRequest{
		Report: r,
		Files:  []Upload{upload(storage.PlatformBybit, 0, "x"), upload(storage.PlatformHTX, 0, "y")},
	})

	require.NoError(t, err)
	require.NotNil(t, res.FileProcessing)
	assert.Equal(t, ingest.Stats{TotalParsed: 10, Inserted: 6, Duplicates: 4, Failed: 1}, *res.FileProcessing)
	assert.Nil(t, res.LinkedOrders)
	d.linker.AssertNotCalled(t, "Link", mock.Anything, mock.Anything)
}

// Тест: ошибка валидации не доходит до базы
func TestCreate_Invalid(t *testing.T) {
	s, d := newTestService()
	r := baseReport()
	r.BlissRequests = -2

	_, err := s.Create(context.Background(), CreateRequest{Report: r})

	assert.True(t, IsValidation(err))
	d.storage.AssertNotCalled(t, "CreateReport", mock.Anything, mock.Anything, mock.Anything)
}

// Тест: смена с корректировкой, ручной суммой Gate и выгрузками аккаунта Bybit
func TestCreateShift(t *testing.T) {
	s, d := newTestService()
	r := baseReport()
	r.ShiftType = ""
	r.ShiftStartTime, r.ShiftEndTime = at(9), at(18)
	r.Scam = storage.Adjustment{Amount: 30, CountInSales: true}

	d.storage.On("GetEmployee", mock.Anything, int64(1)).Return(&storage.Employee{ID: 1, Name: "Иван"}, nil)
	d.storage.On("GetAccount", mock.Anything, int64(11)).Return(&storage.Account{ID: 11, Platform: storage.PlatformBybit, AccountName: "acc1"}, nil)
	d.storage.On("GetAccount", mock.Anything, int64(12)).Return(&storage.Account{ID: 12, Platform: storage.PlatformGate, AccountName: "gate1"}, nil)

	var synthetic []storage.Order
	d.storage.On("CreateReport", mock.Anything, mock.MatchedBy(func(got storage.ShiftReport) bool {
		return got.ShiftType == storage.ShiftMorning && got.Department == storage.DepartmentFirst && got.ShiftStartDate != nil
	}), mock.Anything).Run(func(args mock.Arguments) {
		build := args.Get(2).(func(int64) []storage.Order)
		synthetic = build(5)
	}).Return(int64(5), nil)

	d.importer.On("Import", mock.Anything, mock.MatchedBy(func(req ingest.Request) bool {
		return req.Platform == storage.PlatformBybit && req.AccountName == "acc1" && req.ForceAccount
	})).Return(ingest.Stats{TotalParsed: 10, Inserted: 4}, nil)
	d.importer.On("Import", mock.Anything, mock.MatchedBy(func(req ingest.Request) bool {
		return req.Platform == storage.PlatformBybitBTC && req.AccountName == "acc1"
	})).Return(ingest.Stats{TotalParsed: 2, Inserted: 1}, nil)

	res, err := s.CreateShift(context.Background(), ShiftRequest{
		Report: r,
		SelectedAccounts: map[string][]int64{
			storage.PlatformBybit: {11},
			storage.PlatformGate:  {12},
		},
		GateAmounts: map[int64]GateAmount{12: {USDT: 100, Rub: 9500}},
		Files: []Upload{
			upload(storage.PlatformBybit, 11, "orders"),
			upload(storage.PlatformBybitBTC, 11, "btc"),
			upload(storage.PlatformHTX, 99, "ignored"),
		},
	})

	require.NoError(t, err)
	assert.Equal(t, int64(5), res.ID)
	assert.Equal(t, ShiftStats{
		TotalOrders:        12,
		LinkedOrders:       6,
		PlatformsProcessed: []string{"BYBIT", "GATE"},
		Errors:             []string{},
	}, res.Stats)

	unix := fixedNow.Unix()
	require.Len(t, synthetic, 2)

	scam := synthetic[0]
	assert.Equal(t, "scam_5_"+itoa(unix), scam.OrderID)
	assert.Equal(t, "Иван_scam", scam.AccountName)
	assert.Equal(t, storage.PlatformBybit, scam.Platform)
	assert.Equal(t, storage.SideSell, scam.Side)
	assert.Equal(t, storage.StatusScam, scam.Status)
	assert.Equal(t, 1.0, scam.Price)
	assert.Equal(t, 30.0, scam.TotalUSDT)
	assert.True(t, scam.CountInSales)
	assert.Equal(t, *at(9), scam.ExecutedAt)

	gate := synthetic[1]
	assert.Equal(t, "gate_manual_5_12_"+itoa(unix), gate.OrderID)
	assert.Equal(t, "gate1", gate.AccountName)
	assert.Equal(t, storage.SideBuy, gate.Side)
	assert.Equal(t, storage.StatusFilled, gate.Status)
	assert.Equal(t, 95.0, gate.Price)
	assert.Equal(t, 9500.0, gate.TotalUSDT)
}

// Тест: вечерняя смена определяется по часу начала
func TestShiftType(t *testing.T) {
	assert.Equal(t, storage.ShiftMorning, ShiftType(*at(15)))
	assert.Equal(t, storage.ShiftEvening, ShiftType(*at(16)))
}

// Тест: курс из рублёвой суммы и счёт по умолчанию для каждой корректировки
func TestSyntheticOrders(t *testing.T) {
	r := baseReport()
	r.ShiftStartTime = at(10)
	r.Appeal = storage.Adjustment{Amount: 10, AmountRub: 950, Platform: storage.PlatformHTX}
	r.Dokidka = storage.Adjustment{Amount: 5, Account: "main"}
	r.InternalTransfer = storage.Adjustment{Amount: 2, CountInPurchases: true}

	orders := SyntheticOrders(r, "Пётр", 3, 100)

	require.Len(t, orders, 3)
	assert.Equal(t, "appeal_3_100", orders[0].OrderID)
	assert.Equal(t, storage.StatusAppealed, orders[0].Status)
	assert.Equal(t, "Пётр_appeal", orders[0].AccountName)
	assert.Equal(t, storage.PlatformHTX, orders[0].Platform)
	assert.Equal(t, 95.0, orders[0].Price)
	assert.Equal(t, 950.0, orders[0].TotalUSDT)

	assert.Equal(t, "main", orders[1].AccountName)
	assert.Equal(t, "internal_transfer_3_100", orders[2].OrderID)
	assert.Equal(t, "Пётр_internal", orders[2].AccountName)
	assert.True(t, orders[2].CountInPurchases)
}

// Тест: предпросмотр выгрузок и предупреждения по площадкам без аккаунтов
func TestValidateShift(t *testing.T) {
	s, d := newTestService()
	d.storage.On("ListAccounts", mock.Anything, storage.AccountFilter{EmployeeID: 1, ActiveOnly: true}).Return([]storage.Account{
		{ID: 1, Platform: storage.PlatformBybit, AccountName: "acc1"},
	}, nil)
	d.importer.On("Preview", mock.MatchedBy(func(req ingest.Request) bool {
		return req.Platform == storage.PlatformBybit
	}), []string{"acc1"}).Return(10, 3, nil)
	d.importer.On("Preview", mock.MatchedBy(func(req ingest.Request) bool {
		return req.Platform == storage.PlatformHTX
	}), mock.Anything).Return(5, 0, nil)

	v, err := s.ValidateShift(context.Background(), ValidateRequest{
		EmployeeID: 1,
		Start:      *at(9),
		End:        *at(21),
		Files:      []Upload{upload(storage.PlatformBybit, 0, "a"), upload(storage.PlatformHTX, 0, "b")},
	})

	require.NoError(t, err)
	assert.True(t, v.IsValid)
	assert.Empty(t, v.Errors)
	assert.Len(t, v.Warnings, 2)
	assert.Equal(t, FileValidation{TotalOrders: 10, EmployeeOrders: 3, AccountNames: []string{"acc1"}, HasOrdersInShift: true}, v.FileValidation[storage.PlatformBybit])
	assert.False(t, v.FileValidation[storage.PlatformHTX].HasOrdersInShift)
}

// Тест: начало позже конца делает смену невалидной
func TestValidateShift_BadWindow(t *testing.T) {
	s, d := newTestService()
	d.storage.On("ListAccounts", mock.Anything, mock.Anything).Return([]storage.Account{{ID: 1, Platform: storage.PlatformBybit}}, nil)

	v, err := s.ValidateShift(context.Background(), ValidateRequest{EmployeeID: 1, Start: *at(18), End: *at(9)})

	require.NoError(t, err)
	assert.False(t, v.IsValid)
	assert.Len(t, v.Errors, 1)
}

// Тест: длинная смена даёт предупреждение
func TestValidateShift_LongShift(t *testing.T) {
	s, d := newTestService()
	d.storage.On("ListAccounts", mock.Anything, mock.Anything).Return([]storage.Account{{ID: 1, Platform: storage.PlatformBybit}}, nil)

	v, err := s.ValidateShift(context.Background(), ValidateRequest{EmployeeID: 1, Start: *at(9), End: at(9).Add(25 * time.Hour)})

	require.NoError(t, err)
	assert.True(t, v.IsValid)
	assert.Equal(t, []string{"Длительность смены превышает 24 часа"}, v.Warnings)
}

// Тест: без активных аккаунтов проверка невозможна
func TestValidateShift_NoAccounts(t *testing.T) {
	s, d := newTestService()
	d.storage.On("ListAccounts", mock.Anything, mock.Anything).Return([]storage.Account{}, nil)

	_, err := s.ValidateShift(context.Background(), ValidateRequest{EmployeeID: 1, Start: *at(9), End: *at(18)})

	assert.ErrorIs(t, err, ErrNoAccounts)
}

// Тест: сверка методов возвращает расхождение как есть
func TestReconcile(t *testing.T) {
	s, d := newTestService()
	r := baseReport()
	r.ID = 4
	d.storage.On("GetReport", mock.Anything, int64(4)).Return(&r, nil)
	rec := profit.Reconciliation{
		Balance:    profit.Result{Profit: 100},
		Orders:     profit.Result{Profit: 80},
		Difference: 20,
		Diverged:   true,
	}
	d.profit.On("Reconcile", mock.Anything, r, 0.01).Return(rec, nil)

	got, err := s.Reconcile(context.Background(), 4)

	require.NoError(t, err)
	assert.Equal(t, rec, got)
}

// Тест: отсутствующий отчёт
func TestReconcile_NotFound(t *testing.T) {
	s, d := newTestService()
	d.storage.On("GetReport", mock.Anything, int64(4)).Return(nil, storage.ErrNotFound)

	_, err := s.Reconcile(context.Background(), 4)

	assert.ErrorIs(t, err, storage.ErrNotFound)
}

func TestDelete(t *testing.T) {
	s, d := newTestService()
	d.storage.On("DeleteReport", mock.Anything, int64(4)).Return(nil)

	require.NoError(t, s.Delete(context.Background(), 4))
	d.storage.AssertExpectations(t)
}

func itoa(v int64) string {
	return strconv.FormatInt(v, 10)
}
