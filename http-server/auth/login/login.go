package login

import (
	"encoding/json"
	"log/slog"
	"net/http"

	"github.com/go-chi/render"
)

type PasswordChecker interface {
	Check(password string) bool
}

type request struct {
	Password string `json:"password"`
}

// Login сверяет пароль из тела; name попадает в лог при неудачной попытке.
func Login(log *slog.Logger, name string, checker PasswordChecker) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		const op = "handlers.auth.login.Login"

		var req request
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			http.Error(w, "Invalid JSON", http.StatusBadRequest)
			return
		}

		if !checker.Check(req.Password) {
			log.Warn("login failed",
				slog.String("op", op),
				slog.String("scope", name),
				slog.String("remote_addr", r.RemoteAddr),
			)
			http.Error(w, "Неверный пароль", http.StatusUnauthorized)
			return
		}

		render.JSON(w, r, map[string]bool{"success": true})
	}
}
