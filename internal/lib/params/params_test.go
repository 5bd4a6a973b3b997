package params

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func withURLParam(r *http.Request, key, value string) *http.Request {
	rctx := chi.NewRouteContext()
	rctx.URLParams.Add(key, value)
	return r.WithContext(context.WithValue(r.Context(), chi.RouteCtxKey, rctx))
}

func TestID(t *testing.T) {
	req := withURLParam(httptest.NewRequest(http.MethodGet, "/api/employees/7", nil), "id", "7")
	id, err := ID(req, "id")
	require.NoError(t, err)
	assert.Equal(t, int64(7), id)

	for _, raw := range []string{"", "abc", "0", "-3"} {
		req := withURLParam(httptest.NewRequest(http.MethodGet, "/", nil), "id", raw)
		_, err := ID(req, "id")
		assert.Error(t, err, raw)
	}
}

func TestDate(t *testing.T) {
	req := httptest.NewRequest(http.MethodGet, "/api/orders?start_date=2025-03-01&bad=01.03.2025", nil)

	d, err := Date(req, "start_date")
	require.NoError(t, err)
	assert.Equal(t, time.Date(2025, 3, 1, 0, 0, 0, 0, time.UTC), *d)

	d, err = Date(req, "end_date")
	require.NoError(t, err)
	assert.Nil(t, d)

	_, err = Date(req, "bad")
	assert.Error(t, err)
}

func TestParseDateTime(t *testing.T) {
	d, err := ParseDateTime("2025-03-01T09:30")
	require.NoError(t, err)
	assert.Equal(t, time.Date(2025, 3, 1, 9, 30, 0, 0, time.UTC), *d)

	_, err = ParseDateTime("2025-03-01 09:30")
	assert.Error(t, err)
}

func TestValues(t *testing.T) {
	f, err := Float("amount", "12,5")
	require.NoError(t, err)
	assert.Equal(t, 12.5, f)

	n, err := Int("count", "3")
	require.NoError(t, err)
	assert.Equal(t, 3, n)

	n, err = Int("count", "4.0")
	require.NoError(t, err)
	assert.Equal(t, 4, n)

	_, err = Int("count", "4.5")
	assert.Error(t, err)

	id, err := Int64Value("employee", "")
	require.NoError(t, err)
	assert.Zero(t, id)

	_, err = Int64Value("employee", "x")
	assert.Error(t, err)

	assert.True(t, Bool("on"))
	assert.True(t, Bool("True"))
	assert.False(t, Bool(""))
}

func TestInt64Query(t *testing.T) {
	req := httptest.NewRequest(http.MethodGet, "/api/orders?employee_id=5&bad=x", nil)

	v, err := Int64(req, "employee_id")
	require.NoError(t, err)
	assert.Equal(t, int64(5), v)

	_, err = Int64(req, "bad")
	assert.Error(t, err)
}

func TestParseTimestamp(t *testing.T) {
	want := time.Date(2025, 3, 1, 9, 30, 0, 0, time.UTC)
	for _, raw := range []string{"2025-03-01T09:30:00Z", "2025-03-01T09:30:00", "2025-03-01T09:30", "2025-03-01 09:30:00"} {
		got, err := ParseTimestamp(raw)
		require.NoError(t, err, raw)
		assert.True(t, want.Equal(*got), raw)
	}

	got, err := ParseTimestamp("")
	require.NoError(t, err)
	assert.Nil(t, got)

	_, err = ParseTimestamp("вчера")
	assert.Error(t, err)
}
