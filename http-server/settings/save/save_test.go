package save

import (
	"context"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"p2p-reports/internal/storage"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
)

type MockSettings struct {
	mock.Mock
}

func (m *MockSettings) SalarySettings(ctx context.Context) (*storage.SalarySettings, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*storage.SalarySettings), args.Error(1)
}

func (m *MockSettings) UpdateSalarySettings(ctx context.Context, st storage.SalarySettings) error {
	return m.Called(ctx, st).Error(0)
}

// Тест: частичное обновление сохраняет остальные поля
func TestUpdateSalarySettings_Partial(t *testing.T) {
	current := storage.DefaultSalarySettings()
	want := current
	want.BasePercent = 35

	settings := new(MockSettings)
	settings.On("SalarySettings", mock.Anything).Return(&current, nil)
	settings.On("UpdateSalarySettings", mock.Anything, want).Return(nil)

	req := httptest.NewRequest(http.MethodPost, "/api/settings/salary",
		strings.NewReader(`{"password":"secret","base_percent":35}`))
	rr := httptest.NewRecorder()

	UpdateSalarySettings(slog.Default(), settings).ServeHTTP(rr, req)

	assert.Equal(t, http.StatusOK, rr.Code)
	assert.JSONEq(t, `{"success":true}`, rr.Body.String())
	settings.AssertExpectations(t)
}

func TestUpdateSalarySettings_Invalid(t *testing.T) {
	current := storage.DefaultSalarySettings()

	settings := new(MockSettings)
	settings.On("SalarySettings", mock.Anything).Return(&current, nil)

	req := httptest.NewRequest(http.MethodPost, "/api/settings/salary", strings.NewReader(`{"bonus_percent":140}`))
	rr := httptest.NewRecorder()

	UpdateSalarySettings(slog.Default(), settings).ServeHTTP(rr, req)

	assert.Equal(t, http.StatusBadRequest, rr.Code)
	settings.AssertNotCalled(t, "UpdateSalarySettings", mock.Anything, mock.Anything)
}
