package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const testConfig = `
env: "local"
db:
  db_user: "user"
  db_name: "p2p_reports"
auth:
  admin_password: "secret"
profit:
  reports: "balance"
  divergence_tolerance: 0.01
`

func writeConfig(t *testing.T) {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte(testConfig), 0o644))
	t.Setenv("CONFIG_PATH", path)
}

func TestMustConfig_Defaults(t *testing.T) {
	writeConfig(t)

	cfg := MustConfig()

	assert.Equal(t, "balance", cfg.Profit.Reports)
	assert.Equal(t, "orders", cfg.Profit.Dashboard)
	assert.Equal(t, int64(16<<20), cfg.Uploads.MaxSize)
	assert.Equal(t, int64(17<<20), cfg.Uploads.MaxRequest)
}

// Тест: методы расчёта прибыли переопределяются переменными окружения
func TestMustConfig_ProfitEnv(t *testing.T) {
	writeConfig(t)
	t.Setenv("PROFIT_REPORTS_METHOD", "orders")
	t.Setenv("PROFIT_SALARY_METHOD", "orders")
	t.Setenv("PROFIT_DIVERGENCE_TOLERANCE", "0.5")
	t.Setenv("UPLOAD_MAX_REQUEST", "1048576")

	cfg := MustConfig()

	assert.Equal(t, "orders", cfg.Profit.Reports)
	assert.Equal(t, "orders", cfg.Profit.Salary)
	assert.Equal(t, 0.5, cfg.Profit.DivergenceTolerance)
	assert.Equal(t, int64(1<<20), cfg.Uploads.MaxRequest)
}
