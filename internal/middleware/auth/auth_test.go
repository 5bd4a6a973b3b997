package auth

import (
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"
)

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

// echo отдаёт тело запроса, чтобы проверить, что оно восстановлено.
func echo() http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		body, _ := io.ReadAll(r.Body)
		w.Write(body)
	})
}

// Тест: верный пароль пропускает запрос, тело доступно обработчику
func TestAdminPassword_OK(t *testing.T) {
	h := AdminPassword(discardLogger(), NewPassword("secret", ""))(echo())

	body := `{"password":"secret","ids":[1,2]}`
	req := httptest.NewRequest(http.MethodPost, "/api/orders/bulk-delete", strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	rr := httptest.NewRecorder()

	h.ServeHTTP(rr, req)

	assert.Equal(t, http.StatusOK, rr.Code)
	assert.Equal(t, body, rr.Body.String())
}

func TestAdminPassword_Mismatch(t *testing.T) {
	tests := []struct {
		name string
		body string
	}{
		{name: "wrong", body: `{"password":"nope"}`},
		{name: "missing", body: `{}`},
		{name: "empty body", body: ``},
		{name: "broken json", body: `{"password":`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			h := AdminPassword(discardLogger(), NewPassword("secret", ""))(echo())
			req := httptest.NewRequest(http.MethodDelete, "/api/employees/1", strings.NewReader(tt.body))
			rr := httptest.NewRecorder()

			h.ServeHTTP(rr, req)

			assert.Equal(t, http.StatusForbidden, rr.Code)
		})
	}
}

// Тест: пароль из формы
func TestAdminPassword_Form(t *testing.T) {
	h := AdminPassword(discardLogger(), NewPassword("secret", ""))(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNoContent)
	}))
	req := httptest.NewRequest(http.MethodPost, "/api/settings/salary", strings.NewReader("password=secret&base_percent=35"))
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	rr := httptest.NewRecorder()

	h.ServeHTTP(rr, req)

	assert.Equal(t, http.StatusNoContent, rr.Code)
}

// Тест: bcrypt-хеш имеет приоритет над открытым паролем
func TestPassword_Hash(t *testing.T) {
	hash, err := bcrypt.GenerateFromPassword([]byte("hashed"), bcrypt.MinCost)
	require.NoError(t, err)

	p := NewPassword("plain", string(hash))

	assert.True(t, p.Check("hashed"))
	assert.False(t, p.Check("plain"))
	assert.False(t, p.Check(""))
}

func TestPassword_EmptyConfig(t *testing.T) {
	assert.False(t, NewPassword("", "").Check(""))
	assert.False(t, NewPassword("", "").Check("anything"))
}

func TestBasicAuth(t *testing.T) {
	h := BasicAuth("Metrics", "metrics", "pass")(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	}))

	req := httptest.NewRequest(http.MethodGet, "/metrics", nil)
	rr := httptest.NewRecorder()
	h.ServeHTTP(rr, req)
	assert.Equal(t, http.StatusUnauthorized, rr.Code)
	assert.Equal(t, `Basic realm="Metrics"`, rr.Header().Get("WWW-Authenticate"))

	req = httptest.NewRequest(http.MethodGet, "/metrics", nil)
	req.SetBasicAuth("metrics", "wrong")
	rr = httptest.NewRecorder()
	h.ServeHTTP(rr, req)
	assert.Equal(t, http.StatusUnauthorized, rr.Code)

	req = httptest.NewRequest(http.MethodGet, "/metrics", nil)
	req.SetBasicAuth("metrics", "pass")
	rr = httptest.NewRecorder()
	h.ServeHTTP(rr, req)
	assert.Equal(t, http.StatusOK, rr.Code)
}
