package remove

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"p2p-reports/internal/storage"
	"strings"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/render"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

type MockOrderRemover struct {
	mock.Mock
}

func (m *MockOrderRemover) DeleteOrder(ctx context.Context, id int64) error {
	return m.Called(ctx, id).Error(0)
}

func (m *MockOrderRemover) DeleteOrders(ctx context.Context, ids []int64) (int64, error) {
	args := m.Called(ctx, ids)
	return args.Get(0).(int64), args.Error(1)
}

func TestBulkDelete(t *testing.T) {
	remover := new(MockOrderRemover)
	remover.On("DeleteOrders", mock.Anything, []int64{1, 2, 3}).Return(int64(2), nil)

	req := httptest.NewRequest(http.MethodPost, "/api/orders/bulk-delete",
		strings.NewReader(`{"password":"secret","order_ids":[1,2,3]}`))
	rr := httptest.NewRecorder()

	BulkDelete(slog.Default(), remover).ServeHTTP(rr, req)

	require.Equal(t, http.StatusOK, rr.Code)
	var resp map[string]any
	require.NoError(t, render.DecodeJSON(strings.NewReader(rr.Body.String()), &resp))
	assert.Equal(t, true, resp["success"])
	assert.Equal(t, float64(2), resp["deleted_count"])
}

func TestBulkDelete_Empty(t *testing.T) {
	remover := new(MockOrderRemover)

	req := httptest.NewRequest(http.MethodPost, "/api/orders/bulk-delete", strings.NewReader(`{"order_ids":[]}`))
	rr := httptest.NewRecorder()

	BulkDelete(slog.Default(), remover).ServeHTTP(rr, req)

	assert.Equal(t, http.StatusBadRequest, rr.Code)
}

func TestBulkDelete_NothingDeleted(t *testing.T) {
	remover := new(MockOrderRemover)
	remover.On("DeleteOrders", mock.Anything, []int64{42}).Return(int64(0), nil)

	req := httptest.NewRequest(http.MethodPost, "/api/orders/bulk-delete", strings.NewReader(`{"order_ids":[42]}`))
	rr := httptest.NewRecorder()

	BulkDelete(slog.Default(), remover).ServeHTTP(rr, req)

	assert.Equal(t, http.StatusNotFound, rr.Code)
}

func TestDeleteOrder_NotFound(t *testing.T) {
	remover := new(MockOrderRemover)
	remover.On("DeleteOrder", mock.Anything, int64(5)).Return(fmt.Errorf("op: %w", storage.ErrNotFound))

	router := chi.NewRouter()
	router.Delete("/api/orders/{id}", DeleteOrder(slog.Default(), remover))
	rr := httptest.NewRecorder()
	router.ServeHTTP(rr, httptest.NewRequest(http.MethodDelete, "/api/orders/5", nil))

	assert.Equal(t, http.StatusNotFound, rr.Code)
}
