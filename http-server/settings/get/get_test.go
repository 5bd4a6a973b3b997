package get

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"p2p-reports/internal/storage"
	"strings"
	"testing"

	"github.com/go-chi/render"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

type MockSalarySettingsProvider struct {
	mock.Mock
}

func (m *MockSalarySettingsProvider) SalarySettings(ctx context.Context) (*storage.SalarySettings, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*storage.SalarySettings), args.Error(1)
}

func TestGetSalarySettings(t *testing.T) {
	provider := new(MockSalarySettingsProvider)
	provider.On("SalarySettings", mock.Anything).Return(&storage.SalarySettings{
		ID: 1, BasePercent: 10, MinDailyProfit: 50, BonusPercent: 5, BonusProfitThreshold: 200,
	}, nil)

	rr := httptest.NewRecorder()
	GetSalarySettings(slog.Default(), provider).ServeHTTP(rr, httptest.NewRequest(http.MethodGet, "/api/settings/salary", nil))

	require.Equal(t, http.StatusOK, rr.Code)
	var resp map[string]any
	require.NoError(t, render.DecodeJSON(strings.NewReader(rr.Body.String()), &resp))
	assert.Equal(t, float64(10), resp["base_percent"])
	assert.Equal(t, float64(200), resp["bonus_profit_threshold"])
	assert.NotContains(t, resp, "id")
}

func TestGetSalarySettings_StorageError(t *testing.T) {
	provider := new(MockSalarySettingsProvider)
	provider.On("SalarySettings", mock.Anything).Return(nil, errors.New("boom"))

	rr := httptest.NewRecorder()
	GetSalarySettings(slog.Default(), provider).ServeHTTP(rr, httptest.NewRequest(http.MethodGet, "/api/settings/salary", nil))

	assert.Equal(t, http.StatusInternalServerError, rr.Code)
}
