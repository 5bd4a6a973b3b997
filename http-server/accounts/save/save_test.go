package save

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"p2p-reports/internal/storage"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
)

type MockAccountCreator struct {
	mock.Mock
}

func (m *MockAccountCreator) CreateAccount(ctx context.Context, a storage.Account) (int64, error) {
	args := m.Called(ctx, a)
	return args.Get(0).(int64), args.Error(1)
}

// Тест: площадка нормализуется к нижнему регистру
func TestSaveAccount_Success(t *testing.T) {
	employeeID := int64(2)
	creator := new(MockAccountCreator)
	creator.On("CreateAccount", mock.Anything, storage.Account{
		EmployeeID:  &employeeID,
		Platform:    storage.PlatformHTX,
		AccountName: "htx_main",
		IsActive:    true,
	}).Return(int64(5), nil)

	req := httptest.NewRequest(http.MethodPost, "/api/accounts",
		strings.NewReader(`{"platform":"HTX","account_name":"htx_main","employee_id":2}`))
	rr := httptest.NewRecorder()

	SaveAccount(slog.Default(), creator).ServeHTTP(rr, req)

	assert.Equal(t, http.StatusCreated, rr.Code)
	creator.AssertExpectations(t)
}

func TestSaveAccount_BadPlatform(t *testing.T) {
	creator := new(MockAccountCreator)

	for _, body := range []string{
		`{"platform":"binance","account_name":"a"}`,
		`{"platform":"bybit_btc","account_name":"a"}`,
		`{"platform":"bybit","account_name":""}`,
	} {
		req := httptest.NewRequest(http.MethodPost, "/api/accounts", strings.NewReader(body))
		rr := httptest.NewRecorder()
		SaveAccount(slog.Default(), creator).ServeHTTP(rr, req)
		assert.Equal(t, http.StatusBadRequest, rr.Code, body)
	}
	creator.AssertNotCalled(t, "CreateAccount", mock.Anything, mock.Anything)
}

func TestSaveAccount_UnknownEmployee(t *testing.T) {
	creator := new(MockAccountCreator)
	creator.On("CreateAccount", mock.Anything, mock.Anything).Return(int64(0), fmt.Errorf("op: %w", storage.ErrEmployeeNotFound))

	req := httptest.NewRequest(http.MethodPost, "/api/accounts",
		strings.NewReader(`{"platform":"bybit","account_name":"a","employee_id":99}`))
	rr := httptest.NewRecorder()

	SaveAccount(slog.Default(), creator).ServeHTTP(rr, req)

	assert.Equal(t, http.StatusNotFound, rr.Code)
}
