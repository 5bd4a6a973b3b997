package auth

import (
	"bytes"
	"crypto/subtle"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"strings"

	"golang.org/x/crypto/bcrypt"
)

// maxPasswordBody: сколько байт тела читается в поисках пароля.
const maxPasswordBody = 1 << 20

// Password сверяет пароль с открытым значением или bcrypt-хешем из конфига.
type Password struct {
	plain string
	hash  []byte
}

// NewPassword: hash имеет приоритет над plain.
func NewPassword(plain, hash string) *Password {
	p := &Password{plain: plain}
	if hash != "" {
		p.hash = []byte(hash)
	}
	return p
}

func (p *Password) Check(password string) bool {
	if password == "" {
		return false
	}
	if p.hash != nil {
		return bcrypt.CompareHashAndPassword(p.hash, []byte(password)) == nil
	}
	if p.plain == "" {
		return false
	}
	return subtle.ConstantTimeCompare([]byte(password), []byte(p.plain)) == 1
}

// AdminPassword пропускает запрос, только если поле password в теле
// (JSON или форма) совпадает с паролем администратора. Тело JSON
// восстанавливается для следующего обработчика.
func AdminPassword(log *slog.Logger, p *Password) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			const op = "middleware.auth.AdminPassword"

			password, err := passwordFromRequest(r)
			if err != nil {
				log.Warn("cannot read password",
					slog.String("op", op),
					slog.String("error", err.Error()),
				)
			}

			if !p.Check(password) {
				log.Warn("admin password mismatch",
					slog.String("op", op),
					slog.String("path", r.URL.Path),
				)
				http.Error(w, "Неверный пароль", http.StatusForbidden)
				return
			}

			next.ServeHTTP(w, r)
		})
	}
}

func passwordFromRequest(r *http.Request) (string, error) {
	contentType := r.Header.Get("Content-Type")
	if strings.HasPrefix(contentType, "multipart/form-data") || strings.HasPrefix(contentType, "application/x-www-form-urlencoded") {
		return r.FormValue("password"), nil
	}

	if r.Body == nil || r.Body == http.NoBody {
		return "", nil
	}

	body, err := io.ReadAll(io.LimitReader(r.Body, maxPasswordBody))
	r.Body.Close()
	r.Body = io.NopCloser(bytes.NewReader(body))
	if err != nil {
		return "", err
	}
	if len(bytes.TrimSpace(body)) == 0 {
		return "", nil
	}

	var payload struct {
		Password string `json:"password"`
	}
	if err := json.Unmarshal(body, &payload); err != nil {
		return "", err
	}
	return payload.Password, nil
}
