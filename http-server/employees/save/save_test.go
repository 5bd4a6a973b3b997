package save

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

type MockEmployeeCreator struct {
	mock.Mock
}

func (m *MockEmployeeCreator) CreateEmployee(ctx context.Context, e storage.Employee) (int64, error) {
	args := m.Called(ctx, e)
	return args.Get(0).(int64), args.Error(1)
}

// Тест: успешное создание сотрудника
func TestSaveEmployee_Success(t *testing.T) {
	creator := new(MockEmployeeCreator)
	creator.On("CreateEmployee", mock.Anything, mock.MatchedBy(func(e storage.Employee) bool {
		return e.Name == "Иван" && e.Telegram == "@ivan" && e.SalaryPercent != nil && *e.SalaryPercent == 35
	})).Return(int64(12), nil)

	req := httptest.NewRequest(http.MethodPost, "/api/employees",
		strings.NewReader(`{"name":" Иван ","telegram":"@ivan","salary_percent":35}`))
	rr := httptest.NewRecorder()

	SaveEmployee(slog.Default(), creator).ServeHTTP(rr, req)

	require.Equal(t, http.StatusCreated, rr.Code)
	var resp map[string]any
	require.NoError(t, render.DecodeJSON(strings.NewReader(rr.Body.String()), &resp))
	assert.Equal(t, float64(12), resp["id"])
	creator.AssertExpectations(t)
}

func TestSaveEmployee_Validation(t *testing.T) {
	tests := []struct {
		name string
		body string
	}{
		{name: "no telegram", body: `{"name":"Иван"}`},
		{name: "blank name", body: `{"name":"  ","telegram":"@x"}`},
		{name: "percent", body: `{"name":"Иван","telegram":"@x","salary_percent":140}`},
		{name: "json", body: `{"name":`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			creator := new(MockEmployeeCreator)
			req := httptest.NewRequest(http.MethodPost, "/api/employees", strings.NewReader(tt.body))
			rr := httptest.NewRecorder()

			SaveEmployee(slog.Default(), creator).ServeHTTP(rr, req)

			assert.Equal(t, http.StatusBadRequest, rr.Code)
			creator.AssertNotCalled(t, "CreateEmployee", mock.Anything, mock.Anything)
		})
	}
}

func TestSaveEmployee_StorageError(t *testing.T) {
	creator := new(MockEmployeeCreator)
	creator.On("CreateEmployee", mock.Anything, mock.Anything).Return(int64(0), errors.New("db down"))

	req := httptest.NewRequest(http.MethodPost, "/api/employees", strings.NewReader(`{"name":"Иван","telegram":"@ivan"}`))
	rr := httptest.NewRecorder()

	SaveEmployee(slog.Default(), creator).ServeHTTP(rr, req)

	assert.Equal(t, http.StatusInternalServerError, rr.Code)
}
