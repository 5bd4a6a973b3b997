package get

import (
	"context"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"p2p-reports/internal/service/statistics"
	"p2p-reports/internal/storage"
	"testing"
	"time"

	"github.com/go-chi/render"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

type MockBalanceProvider struct {
	mock.Mock
}

func (m *MockBalanceProvider) InitialBalances(ctx context.Context, platform string) ([]storage.InitialBalance, error) {
	args := m.Called(ctx, platform)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]storage.InitialBalance), args.Error(1)
}

func (m *MockBalanceProvider) ListBalanceHistory(ctx context.Context, filter storage.BalanceHistoryFilter) ([]storage.BalanceHistory, error) {
	args := m.Called(ctx, filter)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]storage.BalanceHistory), args.Error(1)
}

type MockPlatformBalances struct {
	mock.Mock
}

func (m *MockPlatformBalances) PlatformBalances(ctx context.Context) (statistics.PlatformBalances, error) {
	args := m.Called(ctx)
	return args.Get(0).(statistics.PlatformBalances), args.Error(1)
}

// Тест: площадки без балансов отдаются пустыми списками
func TestGetInitialBalances(t *testing.T) {
	provider := new(MockBalanceProvider)
	provider.On("InitialBalances", mock.Anything, "").Return([]storage.InitialBalance{
		{ID: 1, Platform: storage.PlatformBybit, AccountName: "by1", Balance: 1000},
		{ID: 2, Platform: storage.PlatformBybit, AccountName: "by2", Balance: 500},
	}, nil)

	rr := httptest.NewRecorder()
	GetInitialBalances(slog.Default(), provider).ServeHTTP(rr, httptest.NewRequest(http.MethodGet, "/api/settings/balances", nil))

	require.Equal(t, http.StatusOK, rr.Code)
	var got map[string][]storage.InitialBalance
	require.NoError(t, render.DecodeJSON(rr.Body, &got))
	assert.Len(t, got[storage.PlatformBybit], 2)
	assert.NotNil(t, got[storage.PlatformHTX])
	assert.Empty(t, got[storage.PlatformHTX])
}

func TestGetBalanceHistory_Filter(t *testing.T) {
	from := time.Date(2025, 3, 1, 0, 0, 0, 0, time.UTC)
	provider := new(MockBalanceProvider)
	provider.On("ListBalanceHistory", mock.Anything, storage.BalanceHistoryFilter{
		AccountID: 7,
		Platform:  storage.PlatformHTX,
		From:      &from,
	}).Return(nil, nil)

	rr := httptest.NewRecorder()
	GetBalanceHistory(slog.Default(), provider).ServeHTTP(rr,
		httptest.NewRequest(http.MethodGet, "/api/account-balance-history?account_id=7&platform=htx&start_date=2025-03-01", nil))

	assert.Equal(t, http.StatusOK, rr.Code)
	assert.JSONEq(t, `[]`, rr.Body.String())
	provider.AssertExpectations(t)
}

func TestGetBalanceHistory_BadParams(t *testing.T) {
	provider := new(MockBalanceProvider)

	for _, target := range []string{
		"/api/account-balance-history?account_id=x",
		"/api/account-balance-history?end_date=2025-13-01",
	} {
		rr := httptest.NewRecorder()
		GetBalanceHistory(slog.Default(), provider).ServeHTTP(rr, httptest.NewRequest(http.MethodGet, target, nil))
		assert.Equal(t, http.StatusBadRequest, rr.Code, target)
	}
}

func TestGetPlatformBalances(t *testing.T) {
	provider := new(MockPlatformBalances)
	provider.On("PlatformBalances", mock.Anything).Return(statistics.PlatformBalances{
		Platforms:    []statistics.PlatformBalance{},
		TotalBalance: 0,
		Message:      "Нет данных",
	}, nil)

	rr := httptest.NewRecorder()
	GetPlatformBalances(slog.Default(), provider).ServeHTTP(rr, httptest.NewRequest(http.MethodGet, "/api/platform-balances", nil))

	assert.Equal(t, http.StatusOK, rr.Code)
	assert.Contains(t, rr.Body.String(), `"platforms":[]`)
}
