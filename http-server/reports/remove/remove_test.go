package remove

import (
	"context"
	"errors"
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

type MockReportRemover struct {
	mock.Mock
}

func (m *MockReportRemover) Delete(ctx context.Context, id int64) error {
	return m.Called(ctx, id).Error(0)
}

func serve(remover ReportRemover, path string) *httptest.ResponseRecorder {
	router := chi.NewRouter()
	router.Delete("/api/reports/{id}", DeleteReport(slog.Default(), remover))
	rr := httptest.NewRecorder()
	router.ServeHTTP(rr, httptest.NewRequest(http.MethodDelete, path, nil))
	return rr
}

func TestDeleteReport(t *testing.T) {
	remover := new(MockReportRemover)
	remover.On("Delete", mock.Anything, int64(12)).Return(nil).Once()

	rr := serve(remover, "/api/reports/12")

	require.Equal(t, http.StatusOK, rr.Code)
	var resp map[string]any
	require.NoError(t, render.DecodeJSON(strings.NewReader(rr.Body.String()), &resp))
	assert.Equal(t, "Report deleted successfully", resp["message"])
	remover.AssertExpectations(t)
}

func TestDeleteReport_InvalidID(t *testing.T) {
	cases := []string{"/api/reports/abc", "/api/reports/0", "/api/reports/-3"}

	for _, path := range cases {
		t.Run(path, func(t *testing.T) {
			remover := new(MockReportRemover)

			rr := serve(remover, path)

			assert.Equal(t, http.StatusBadRequest, rr.Code)
			remover.AssertNotCalled(t, "Delete", mock.Anything, mock.Anything)
		})
	}
}

func TestDeleteReport_NotFound(t *testing.T) {
	remover := new(MockReportRemover)
	remover.On("Delete", mock.Anything, int64(5)).Return(fmt.Errorf("storage.postgres.DeleteReport: %w", storage.ErrNotFound))

	rr := serve(remover, "/api/reports/5")

	assert.Equal(t, http.StatusNotFound, rr.Code)
	assert.Contains(t, rr.Body.String(), "Отчёт не найден")
	assert.Contains(t, rr.Header().Get("Content-Type"), "text/plain")
}

func TestDeleteReport_StorageError(t *testing.T) {
	remover := new(MockReportRemover)
	remover.On("Delete", mock.Anything, int64(5)).Return(errors.New("connection refused"))

	rr := serve(remover, "/api/reports/5")

	assert.Equal(t, http.StatusInternalServerError, rr.Code)
	assert.NotContains(t, rr.Body.String(), "connection refused")
}
