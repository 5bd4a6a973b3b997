package get

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"p2p-reports/internal/service/salary"
	"p2p-reports/internal/storage"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/render"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

type MockSalaryCalculator struct {
	mock.Mock
}

func (m *MockSalaryCalculator) Calculate(ctx context.Context, employeeID int64, from, to time.Time) (salary.Result, error) {
	args := m.Called(ctx, employeeID, from, to)
	return args.Get(0).(salary.Result), args.Error(1)
}

func serve(calc SalaryCalculator, target string) *httptest.ResponseRecorder {
	router := chi.NewRouter()
	router.Get("/api/employee-salary/{id}", GetEmployeeSalary(slog.Default(), calc))

	rr := httptest.NewRecorder()
	router.ServeHTTP(rr, httptest.NewRequest(http.MethodGet, target, nil))
	return rr
}

func TestGetEmployeeSalary(t *testing.T) {
	calc := new(MockSalaryCalculator)
	calc.On("Calculate", mock.Anything, int64(2),
		time.Date(2025, 3, 1, 0, 0, 0, 0, time.UTC),
		time.Date(2025, 3, 31, 0, 0, 0, 0, time.UTC),
	).Return(salary.Result{Salary: 420, TotalDays: 12, BasePercent: 30}, nil)

	rr := serve(calc, "/api/employee-salary/2?start_date=2025-03-01&end_date=2025-03-31")

	require.Equal(t, http.StatusOK, rr.Code)
	var got salary.Result
	require.NoError(t, render.DecodeJSON(rr.Body, &got))
	assert.Equal(t, 420.0, got.Salary)
	assert.Equal(t, 12, got.TotalDays)
	calc.AssertExpectations(t)
}

// Тест: без дат расчёт не выполняется
func TestGetEmployeeSalary_MissingDates(t *testing.T) {
	calc := new(MockSalaryCalculator)

	for _, target := range []string{
		"/api/employee-salary/2",
		"/api/employee-salary/2?start_date=2025-03-01",
		"/api/employee-salary/2?end_date=2025-03-31",
	} {
		rr := serve(calc, target)
		assert.Equal(t, http.StatusBadRequest, rr.Code, target)
	}
	calc.AssertNotCalled(t, "Calculate", mock.Anything, mock.Anything, mock.Anything, mock.Anything)
}

func TestGetEmployeeSalary_NotFound(t *testing.T) {
	calc := new(MockSalaryCalculator)
	calc.On("Calculate", mock.Anything, int64(9), mock.Anything, mock.Anything).
		Return(salary.Result{}, fmt.Errorf("service.salary.Calculate: %w", storage.ErrEmployeeNotFound))

	rr := serve(calc, "/api/employee-salary/9?start_date=2025-03-01&end_date=2025-03-31")

	assert.Equal(t, http.StatusNotFound, rr.Code)
}
