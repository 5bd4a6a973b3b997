package upload

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"log/slog"
	"mime/multipart"
	"net/http"
	"p2p-reports/internal/lib/params"
	"p2p-reports/internal/middleware/limit"
	"p2p-reports/internal/parser"
	"p2p-reports/internal/service/ingest"
	"p2p-reports/internal/storage"
	"p2p-reports/internal/uploads"
	"strings"
	"time"

	"github.com/go-chi/render"
)

const maxMemory = 32 << 20

type EmployeeProvider interface {
	GetEmployee(ctx context.Context, id int64) (*storage.Employee, error)
}

type Importer interface {
	Import(ctx context.Context, req ingest.Request) (ingest.Stats, error)
}

type FileStore interface {
	Save(fh *multipart.FileHeader) (uploads.File, error)
	Remove(name string) error
}

type response struct {
	Message string       `json:"message"`
	File    string       `json:"file"`
	Stats   ingest.Stats `json:"stats"`
}

// UploadOrders загружает выгрузку площадки для сотрудника и аккаунта.
// start_date и end_date (YYYY-MM-DDTHH:MM) ограничивают окно.
func UploadOrders(log *slog.Logger, employees EmployeeProvider, importer Importer, store FileStore) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		const op = "handlers.orders.upload.UploadOrders"

		if err := r.ParseMultipartForm(maxMemory); err != nil {
			if limit.TooLarge(err) {
				http.Error(w, limit.TooLargeMessage, http.StatusRequestEntityTooLarge)
				return
			}
			http.Error(w, "Некорректная форма", http.StatusBadRequest)
			return
		}

		platform := strings.ToLower(strings.TrimSpace(r.FormValue("platform")))
		accountName := strings.TrimSpace(r.FormValue("account_name"))
		employeeID, err := params.Int64Value("employee_id", r.FormValue("employee_id"))
		if err != nil || employeeID <= 0 || platform == "" || accountName == "" {
			http.Error(w, "Не указаны обязательные поля", http.StatusBadRequest)
			return
		}
		if !parser.Supported(platform) {
			http.Error(w, fmt.Sprintf("Площадка %s не поддерживается", platform), http.StatusBadRequest)
			return
		}

		from, err := params.ParseDateTime(r.FormValue("start_date"))
		if err != nil {
			http.Error(w, "Неверный формат начальной даты", http.StatusBadRequest)
			return
		}
		to, err := params.ParseDateTime(r.FormValue("end_date"))
		if err != nil {
			http.Error(w, "Неверный формат конечной даты", http.StatusBadRequest)
			return
		}
		if from != nil && to != nil && from.After(*to) {
			http.Error(w, "Начальная дата не может быть больше конечной", http.StatusBadRequest)
			return
		}

		ctx, cancel := context.WithTimeout(r.Context(), 60*time.Second)
		defer cancel()

		if _, err := employees.GetEmployee(ctx, employeeID); err != nil {
			if errors.Is(err, storage.ErrEmployeeNotFound) {
				http.Error(w, "Сотрудник не найден", http.StatusNotFound)
				return
			}
			log.With(slog.String("op", op), slog.String("error", err.Error())).Error("Ошибка при получении сотрудника")
			http.Error(w, "Внутренняя ошибка сервера", http.StatusInternalServerError)
			return
		}

		headers := r.MultipartForm.File["file"]
		if len(headers) == 0 || headers[0].Filename == "" {
			http.Error(w, "Файл не загружен", http.StatusBadRequest)
			return
		}

		file, err := store.Save(headers[0])
		if err != nil {
			switch {
			case errors.Is(err, uploads.ErrExtension):
				http.Error(w, "Неподдерживаемый тип файла", http.StatusBadRequest)
			case errors.Is(err, uploads.ErrTooLarge):
				http.Error(w, "Файл слишком большой (максимум 16MB)", http.StatusBadRequest)
			default:
				log.With(slog.String("op", op), slog.String("error", err.Error())).Error("Ошибка при сохранении файла")
				http.Error(w, "Внутренняя ошибка сервера", http.StatusInternalServerError)
			}
			return
		}

		stats, err := importer.Import(ctx, ingest.Request{
			EmployeeID:  employeeID,
			Platform:    platform,
			AccountName: accountName,
			From:        from,
			To:          to,
			Filename:    file.Original,
			Reader:      bytes.NewReader(file.Data),
		})
		if err != nil {
			if rmErr := store.Remove(file.Name); rmErr != nil {
				log.Warn("failed to remove upload",
					slog.String("op", op),
					slog.String("file", file.Name),
					slog.String("error", rmErr.Error()),
				)
			}
			if errors.Is(err, storage.ErrEmployeeNotFound) {
				http.Error(w, "Сотрудник не найден", http.StatusNotFound)
				return
			}
			log.With(slog.String("op", op), slog.String("error", err.Error())).Error("Ошибка при обработке выгрузки")
			http.Error(w, fmt.Sprintf("Ошибка обработки файла: %s", err), http.StatusBadRequest)
			return
		}

		render.JSON(w, r, response{
			Message: fmt.Sprintf("Загружено %d ордеров, пропущено %d", stats.Inserted, stats.Skipped()),
			File:    file.Name,
			Stats:   stats,
		})
	}
}
