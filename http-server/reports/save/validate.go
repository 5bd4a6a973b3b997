package save

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"p2p-reports/internal/lib/params"
	"p2p-reports/internal/service/ingest"
	"p2p-reports/internal/service/report"
	"p2p-reports/internal/uploads"
	"time"

	"github.com/go-chi/render"
)

type ShiftValidator interface {
	ValidateShift(ctx context.Context, req report.ValidateRequest) (report.Validation, error)
}

// ValidateShift разбирает приложенные выгрузки без сохранения и сообщает,
// сколько ордеров сотрудника попало в окно смены.
func ValidateShift(log *slog.Logger, validator ShiftValidator) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		const op = "handlers.reports.save.ValidateShift"

		if !parseForm(w, r) {
			return
		}
		f := fields(r.FormValue)

		if err := required(f, "employee_id", "shift_start_time", "shift_end_time"); err != nil {
			http.Error(w, err.Error(), http.StatusBadRequest)
			return
		}
		employeeID, err := params.Int64Value("employee_id", f("employee_id"))
		if err != nil {
			http.Error(w, err.Error(), http.StatusBadRequest)
			return
		}
		start, err := params.ParseDateTime(f("shift_start_time"))
		if err != nil {
			http.Error(w, err.Error(), http.StatusBadRequest)
			return
		}
		end, err := params.ParseDateTime(f("shift_end_time"))
		if err != nil {
			http.Error(w, err.Error(), http.StatusBadRequest)
			return
		}

		req := report.ValidateRequest{EmployeeID: employeeID, Start: *start, End: *end}
		for _, e := range exportFields {
			headers := r.MultipartForm.File[e.field]
			if len(headers) == 0 || headers[0].Filename == "" {
				continue
			}
			fh := headers[0]
			if !uploads.Allowed(fh.Filename) {
				http.Error(w, "Недопустимый тип файла", http.StatusBadRequest)
				return
			}

			src, err := fh.Open()
			if err != nil {
				log.With(slog.String("op", op), slog.String("error", err.Error())).Error("Ошибка при чтении файла")
				http.Error(w, "Внутренняя ошибка сервера", http.StatusInternalServerError)
				return
			}
			open, err := ingest.Buffered(io.LimitReader(src, maxMemory))
			src.Close()
			if err != nil {
				http.Error(w, err.Error(), http.StatusBadRequest)
				return
			}
			req.Files = append(req.Files, report.Upload{Platform: e.platform, Filename: fh.Filename, Open: open})
		}

		ctx, cancel := context.WithTimeout(r.Context(), 30*time.Second)
		defer cancel()

		res, err := validator.ValidateShift(ctx, req)
		if err != nil {
			if errors.Is(err, report.ErrNoAccounts) {
				http.Error(w, "У сотрудника нет активных аккаунтов", http.StatusBadRequest)
				return
			}
			log.With(slog.String("op", op), slog.String("error", err.Error())).Error("Ошибка при проверке смены")
			http.Error(w, "Внутренняя ошибка сервера", http.StatusInternalServerError)
			return
		}

		render.JSON(w, r, res)
	}
}
