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

type MockAccountProvider struct {
	mock.Mock
}

func (m *MockAccountProvider) ListAccounts(ctx context.Context, filter storage.AccountFilter) ([]storage.Account, error) {
	args := m.Called(ctx, filter)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]storage.Account), args.Error(1)
}

func TestGetAccounts(t *testing.T) {
	provider := new(MockAccountProvider)
	owner := int64(2)
	provider.On("ListAccounts", mock.Anything, storage.AccountFilter{EmployeeID: 2, Platform: "htx", ActiveOnly: true}).
		Return([]storage.Account{{ID: 1, EmployeeID: &owner, Platform: "htx", AccountName: "htx-main", IsActive: true}}, nil).Once()

	req := httptest.NewRequest(http.MethodGet, "/api/accounts?employee_id=2&platform=htx", nil)
	rr := httptest.NewRecorder()

	GetAccounts(slog.Default(), provider).ServeHTTP(rr, req)

	require.Equal(t, http.StatusOK, rr.Code)
	var resp []storage.Account
	require.NoError(t, render.DecodeJSON(strings.NewReader(rr.Body.String()), &resp))
	require.Len(t, resp, 1)
	assert.Equal(t, "htx-main", resp[0].AccountName)
	provider.AssertExpectations(t)
}

// Тест: пустая выборка отдаётся как [], а не null
func TestGetAccounts_Empty(t *testing.T) {
	provider := new(MockAccountProvider)
	provider.On("ListAccounts", mock.Anything, storage.AccountFilter{ActiveOnly: true}).Return(nil, nil)

	req := httptest.NewRequest(http.MethodGet, "/api/accounts", nil)
	rr := httptest.NewRecorder()

	GetAccounts(slog.Default(), provider).ServeHTTP(rr, req)

	require.Equal(t, http.StatusOK, rr.Code)
	assert.JSONEq(t, `[]`, rr.Body.String())
}

func TestGetAccounts_BadEmployee(t *testing.T) {
	provider := new(MockAccountProvider)

	req := httptest.NewRequest(http.MethodGet, "/api/accounts?employee_id=abc", nil)
	rr := httptest.NewRecorder()

	GetAccounts(slog.Default(), provider).ServeHTTP(rr, req)

	assert.Equal(t, http.StatusBadRequest, rr.Code)
	provider.AssertNotCalled(t, "ListAccounts", mock.Anything, mock.Anything)
}

func TestGetAccounts_StorageError(t *testing.T) {
	provider := new(MockAccountProvider)
	provider.On("ListAccounts", mock.Anything, mock.Anything).Return(nil, errors.New("boom"))

	req := httptest.NewRequest(http.MethodGet, "/api/accounts", nil)
	rr := httptest.NewRecorder()

	GetAccounts(slog.Default(), provider).ServeHTTP(rr, req)

	assert.Equal(t, http.StatusInternalServerError, rr.Code)
}
