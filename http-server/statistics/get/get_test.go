package get

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"p2p-reports/internal/service/statistics"
	"p2p-reports/internal/storage"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/render"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

type MockStatisticsProvider struct {
	mock.Mock
}

func (m *MockStatisticsProvider) Dashboard(ctx context.Context, period statistics.Period) (statistics.Dashboard, error) {
	args := m.Called(ctx, period)
	return args.Get(0).(statistics.Dashboard), args.Error(1)
}

func (m *MockStatisticsProvider) EmployeeStatistics(ctx context.Context, period statistics.Period) ([]statistics.EmployeeStats, error) {
	args := m.Called(ctx, period)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]statistics.EmployeeStats), args.Error(1)
}

func (m *MockStatisticsProvider) StatisticsExcel(ctx context.Context, period statistics.Period) ([]byte, error) {
	args := m.Called(ctx, period)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]byte), args.Error(1)
}

func (m *MockStatisticsProvider) EmployeeProfile(ctx context.Context, employeeID int64, period statistics.Period) (statistics.Profile, error) {
	args := m.Called(ctx, employeeID, period)
	return args.Get(0).(statistics.Profile), args.Error(1)
}

func day(y int, m time.Month, d int) time.Time {
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

func TestPeriod(t *testing.T) {
	now := time.Date(2025, 3, 14, 18, 30, 0, 0, time.UTC)

	req := httptest.NewRequest(http.MethodGet, "/api/dashboard", nil)
	p, err := period(req, now)
	require.NoError(t, err)
	assert.Equal(t, day(2025, 3, 1), p.From)
	assert.Equal(t, day(2025, 3, 14), p.To)

	req = httptest.NewRequest(http.MethodGet, "/api/dashboard?start_date=2025-02-01&end_date=2025-02-28", nil)
	p, err = period(req, now)
	require.NoError(t, err)
	assert.Equal(t, day(2025, 2, 1), p.From)
	assert.Equal(t, day(2025, 2, 28), p.To)

	req = httptest.NewRequest(http.MethodGet, "/api/dashboard?start_date=2025-02-10&end_date=2025-02-01", nil)
	_, err = period(req, now)
	assert.Error(t, err)

	req = httptest.NewRequest(http.MethodGet, "/api/dashboard?start_date=01.02.2025", nil)
	_, err = period(req, now)
	assert.Error(t, err)
}

func TestGetDashboard(t *testing.T) {
	provider := new(MockStatisticsProvider)
	provider.On("Dashboard", mock.Anything, statistics.Period{From: day(2025, 2, 1), To: day(2025, 2, 28)}).
		Return(statistics.Dashboard{TotalProfit: 1250.5, TotalRequests: 40}, nil)

	req := httptest.NewRequest(http.MethodGet, "/api/dashboard?start_date=2025-02-01&end_date=2025-02-28", nil)
	rr := httptest.NewRecorder()

	GetDashboard(slog.Default(), provider).ServeHTTP(rr, req)

	require.Equal(t, http.StatusOK, rr.Code)
	var got statistics.Dashboard
	require.NoError(t, render.DecodeJSON(rr.Body, &got))
	assert.Equal(t, 1250.5, got.TotalProfit)
	assert.Equal(t, 40, got.TotalRequests)
	provider.AssertExpectations(t)
}

// Тест: пустая статистика отдаётся как []
func TestGetStatistics_Empty(t *testing.T) {
	provider := new(MockStatisticsProvider)
	provider.On("EmployeeStatistics", mock.Anything, mock.Anything).Return(nil, nil)

	req := httptest.NewRequest(http.MethodGet, "/api/statistics", nil)
	rr := httptest.NewRecorder()

	GetStatistics(slog.Default(), provider).ServeHTTP(rr, req)

	assert.Equal(t, http.StatusOK, rr.Code)
	assert.JSONEq(t, `[]`, rr.Body.String())
}

func TestGetStatisticsExcel(t *testing.T) {
	provider := new(MockStatisticsProvider)
	provider.On("StatisticsExcel", mock.Anything, statistics.Period{From: day(2025, 1, 1), To: day(2025, 1, 31)}).
		Return([]byte("xlsx"), nil)

	req := httptest.NewRequest(http.MethodGet, "/api/statistics/excel?start_date=2025-01-01&end_date=2025-01-31", nil)
	rr := httptest.NewRecorder()

	GetStatisticsExcel(slog.Default(), provider).ServeHTTP(rr, req)

	assert.Equal(t, http.StatusOK, rr.Code)
	assert.Equal(t, "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet", rr.Header().Get("Content-Type"))
	assert.Equal(t, "attachment; filename=statistics_2025-01-01_2025-01-31.xlsx", rr.Header().Get("Content-Disposition"))
	assert.Equal(t, "xlsx", rr.Body.String())
}

func TestGetStatisticsExcel_Error(t *testing.T) {
	provider := new(MockStatisticsProvider)
	provider.On("StatisticsExcel", mock.Anything, mock.Anything).Return(nil, fmt.Errorf("boom"))

	req := httptest.NewRequest(http.MethodGet, "/api/statistics/excel", nil)
	rr := httptest.NewRecorder()

	GetStatisticsExcel(slog.Default(), provider).ServeHTTP(rr, req)

	assert.Equal(t, http.StatusInternalServerError, rr.Code)
}

func TestGetEmployeeProfile(t *testing.T) {
	tests := []struct {
		name string
		path string
		err  error
		code int
	}{
		{name: "ok", path: "/api/employee-profile/3", code: http.StatusOK},
		{name: "not found", path: "/api/employee-profile/3", err: fmt.Errorf("wrap: %w", storage.ErrEmployeeNotFound), code: http.StatusNotFound},
		{name: "bad id", path: "/api/employee-profile/abc", code: http.StatusBadRequest},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			provider := new(MockStatisticsProvider)
			provider.On("EmployeeProfile", mock.Anything, int64(3), mock.Anything).Return(statistics.Profile{}, tt.err)

			router := chi.NewRouter()
			router.Get("/api/employee-profile/{id}", GetEmployeeProfile(slog.Default(), provider))

			req := httptest.NewRequest(http.MethodGet, tt.path, nil)
			rr := httptest.NewRecorder()
			router.ServeHTTP(rr, req)

			assert.Equal(t, tt.code, rr.Code)
		})
	}
}
