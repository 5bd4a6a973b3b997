package remove

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"p2p-reports/internal/storage"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
)

type MockEmployeeRemover struct {
	mock.Mock
}

func (m *MockEmployeeRemover) DeleteEmployee(ctx context.Context, id int64) error {
	return m.Called(ctx, id).Error(0)
}

func TestDeleteEmployee(t *testing.T) {
	cases := []struct {
		name string
		path string
		err  error
		code int
	}{
		{"удалён", "/api/employees/4", nil, http.StatusOK},
		{"нет сотрудника", "/api/employees/4", fmt.Errorf("op: %w", storage.ErrEmployeeNotFound), http.StatusNotFound},
		{"ошибка БД", "/api/employees/4", errors.New("boom"), http.StatusInternalServerError},
		{"некорректный id", "/api/employees/x", nil, http.StatusBadRequest},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			remover := new(MockEmployeeRemover)
			remover.On("DeleteEmployee", mock.Anything, int64(4)).Return(tc.err).Maybe()

			router := chi.NewRouter()
			router.Delete("/api/employees/{id}", DeleteEmployee(slog.Default(), remover))
			rr := httptest.NewRecorder()
			router.ServeHTTP(rr, httptest.NewRequest(http.MethodDelete, tc.path, nil))

			assert.Equal(t, tc.code, rr.Code)
		})
	}
}
