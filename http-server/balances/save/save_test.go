package save

import (
	"context"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"p2p-reports/internal/storage"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
)

type MockBalanceSaver struct {
	mock.Mock
}

func (m *MockBalanceSaver) ReplaceInitialBalances(ctx context.Context, balances []storage.InitialBalance) error {
	return m.Called(ctx, balances).Error(0)
}

func (m *MockBalanceSaver) AddBalanceHistory(ctx context.Context, h storage.BalanceHistory) (int64, error) {
	args := m.Called(ctx, h)
	return args.Get(0).(int64), args.Error(1)
}

// Тест: площадка нормализуется, пароль в теле не мешает разбору
func TestReplaceInitialBalances(t *testing.T) {
	accountID := int64(4)
	saver := new(MockBalanceSaver)
	saver.On("ReplaceInitialBalances", mock.Anything, []storage.InitialBalance{
		{Platform: storage.PlatformBybit, AccountID: &accountID, AccountName: "by1", Balance: 1500},
	}).Return(nil)

	req := httptest.NewRequest(http.MethodPost, "/api/settings/balances",
		strings.NewReader(`{"password":"secret","balances":[{"platform":"Bybit","account_id":4,"account_name":" by1 ","balance":1500}]}`))
	rr := httptest.NewRecorder()

	ReplaceInitialBalances(slog.Default(), saver).ServeHTTP(rr, req)

	assert.Equal(t, http.StatusOK, rr.Code)
	saver.AssertExpectations(t)
}

func TestReplaceInitialBalances_Invalid(t *testing.T) {
	saver := new(MockBalanceSaver)

	req := httptest.NewRequest(http.MethodPost, "/api/settings/balances",
		strings.NewReader(`{"balances":[{"platform":"htx","account_name":""}]}`))
	rr := httptest.NewRecorder()

	ReplaceInitialBalances(slog.Default(), saver).ServeHTTP(rr, req)

	assert.Equal(t, http.StatusBadRequest, rr.Code)
	saver.AssertNotCalled(t, "ReplaceInitialBalances", mock.Anything, mock.Anything)
}

func TestAddBalanceHistory(t *testing.T) {
	saver := new(MockBalanceSaver)
	saver.On("AddBalanceHistory", mock.Anything, mock.MatchedBy(func(h storage.BalanceHistory) bool {
		return h.AccountID == 4 && h.Platform == storage.PlatformGate &&
			h.ShiftDate.Equal(time.Date(2025, 3, 2, 0, 0, 0, 0, time.UTC)) &&
			h.ShiftType == storage.ShiftEvening && h.Balance == 320.5
	})).Return(int64(1), nil)

	req := httptest.NewRequest(http.MethodPost, "/api/account-balance-history",
		strings.NewReader(`{"account_id":4,"platform":"gate","shift_date":"2025-03-02","shift_type":"evening","balance":320.5}`))
	rr := httptest.NewRecorder()

	AddBalanceHistory(slog.Default(), saver).ServeHTTP(rr, req)

	assert.Equal(t, http.StatusCreated, rr.Code)
	saver.AssertExpectations(t)
}

func TestAddBalanceHistory_Invalid(t *testing.T) {
	for _, body := range []string{
		`{"platform":"gate","shift_date":"2025-03-02","shift_type":"evening"}`,
		`{"account_id":4,"platform":"gate","shift_date":"02.03.2025","shift_type":"evening"}`,
		`{"account_id":4,"platform":"gate","shift_date":"2025-03-02","shift_type":"night"}`,
		`{"account_id":4,"platform":"gate","shift_date":"2025-03-02","shift_type":"morning","balance_type":"middle"}`,
	} {
		saver := new(MockBalanceSaver)
		req := httptest.NewRequest(http.MethodPost, "/api/account-balance-history", strings.NewReader(body))
		rr := httptest.NewRecorder()

		AddBalanceHistory(slog.Default(), saver).ServeHTTP(rr, req)

		assert.Equal(t, http.StatusBadRequest, rr.Code, body)
	}
}
