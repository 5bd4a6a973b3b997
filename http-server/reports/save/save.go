package save

import (
	"bytes"
	"context"
	"errors"
	"io"
	"log/slog"
	"mime/multipart"
	"net/http"
	"p2p-reports/internal/middleware/limit"
	"p2p-reports/internal/service/report"
	"p2p-reports/internal/storage"
	"p2p-reports/internal/uploads"
	"strings"
	"time"

	"github.com/go-chi/render"
)

const maxMemory = 32 << 20

type FileStore interface {
	Save(fh *multipart.FileHeader) (uploads.File, error)
	Remove(name string) error
}

type ReportCreator interface {
	Create(ctx context.Context, req report.CreateRequest) (report.CreateResult, error)
}

// exportFields: поля выгрузок отчёта и площадка, под которой файл разбирается.
var exportFields = []struct {
	field    string
	platform string
}{
	{field: "bybit_file", platform: storage.PlatformBybit},
	{field: "bybit_btc_file", platform: storage.PlatformBybitBTC},
	{field: "htx_file", platform: storage.PlatformHTX},
	{field: "bliss_file", platform: storage.PlatformBliss},
}

func isMultipart(r *http.Request) bool {
	return strings.HasPrefix(r.Header.Get("Content-Type"), "multipart/form-data")
}

// SaveReport создаёт отчёт из JSON или multipart-формы с выгрузками и фото.
func SaveReport(log *slog.Logger, creator ReportCreator, store FileStore) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		const op = "handlers.reports.save.SaveReport"

		var f fields
		if isMultipart(r) {
			if !parseForm(w, r) {
				return
			}
			f = r.FormValue
		} else {
			var err error
			if f, err = jsonFields(r.Body); err != nil {
				if limit.TooLarge(err) {
					http.Error(w, limit.TooLargeMessage, http.StatusRequestEntityTooLarge)
					return
				}
				http.Error(w, "Отсутствуют данные в запросе", http.StatusBadRequest)
				return
			}
		}

		if err := required(f, "employee_id", "shift_date", "shift_type"); err != nil {
			http.Error(w, err.Error(), http.StatusBadRequest)
			return
		}

		rep, err := reportFromFields(f)
		if err != nil {
			http.Error(w, err.Error(), http.StatusBadRequest)
			return
		}

		var files []report.Upload
		saved := &savedFiles{store: store}
		if isMultipart(r) {
			names := map[string]*string{
				"bybit_file":     &rep.BybitFile,
				"bybit_btc_file": &rep.BybitBTCFile,
				"htx_file":       &rep.HTXFile,
				"bliss_file":     &rep.BlissFile,
			}
			for _, e := range exportFields {
				file, ok, err := saved.save(r, e.field, false)
				if err != nil {
					saved.discard(log, op)
					uploadError(w, log, op, err)
					return
				}
				if !ok {
					continue
				}
				*names[e.field] = file.Name
				files = append(files, upload(e.platform, 0, file))
			}

			for field, dst := range map[string]*string{"start_photo": &rep.StartPhoto, "end_photo": &rep.EndPhoto} {
				file, ok, err := saved.save(r, field, true)
				if err != nil {
					saved.discard(log, op)
					uploadError(w, log, op, err)
					return
				}
				if ok {
					*dst = file.Name
				}
			}
		}

		ctx, cancel := context.WithTimeout(r.Context(), 60*time.Second)
		defer cancel()

		res, err := creator.Create(ctx, report.CreateRequest{Report: rep, Files: files})
		if err != nil {
			saved.discard(log, op)
			createError(w, log, op, err)
			return
		}

		log.Info("отчёт создан", slog.Int64("id", res.ID), slog.Int64("employee_id", rep.EmployeeID))

		render.Status(r, http.StatusCreated)
		render.JSON(w, r, res)
	}
}

var errNotImage = errors.New("фото должно быть изображением")

// parseForm разбирает multipart-форму; при ошибке ответ уже записан.
func parseForm(w http.ResponseWriter, r *http.Request) bool {
	if err := r.ParseMultipartForm(maxMemory); err != nil {
		if limit.TooLarge(err) {
			http.Error(w, limit.TooLargeMessage, http.StatusRequestEntityTooLarge)
			return false
		}
		http.Error(w, "Некорректная форма", http.StatusBadRequest)
		return false
	}
	return true
}

// savedFiles помнит файлы, записанные за время запроса, чтобы удалить их,
// если отчёт так и не был создан.
type savedFiles struct {
	store FileStore
	names []string
}

func (s *savedFiles) save(r *http.Request, field string, image bool) (uploads.File, bool, error) {
	file, ok, err := saveFile(s.store, r, field, image)
	if ok {
		s.names = append(s.names, file.Name)
	}
	return file, ok, err
}

func (s *savedFiles) discard(log *slog.Logger, op string) {
	for _, name := range s.names {
		if err := s.store.Remove(name); err != nil {
			log.Warn("failed to remove upload",
				slog.String("op", op),
				slog.String("file", name),
				slog.String("error", err.Error()),
			)
		}
	}
	s.names = nil
}

// saveFile сохраняет файл поля формы. ok=false, если поле пустое.
func saveFile(store FileStore, r *http.Request, field string, image bool) (uploads.File, bool, error) {
	if r.MultipartForm == nil {
		return uploads.File{}, false, nil
	}
	headers := r.MultipartForm.File[field]
	if len(headers) == 0 || headers[0].Filename == "" {
		return uploads.File{}, false, nil
	}
	fh := headers[0]
	if image && !uploads.IsImage(fh.Filename) {
		return uploads.File{}, false, errNotImage
	}

	file, err := store.Save(fh)
	if err != nil {
		return uploads.File{}, false, err
	}
	return file, true, nil
}

func upload(platform string, accountID int64, file uploads.File) report.Upload {
	data := file.Data
	return report.Upload{
		Platform:  platform,
		AccountID: accountID,
		Filename:  file.Original,
		Open:      func() io.Reader { return bytes.NewReader(data) },
	}
}

func uploadError(w http.ResponseWriter, log *slog.Logger, op string, err error) {
	switch {
	case errors.Is(err, uploads.ErrExtension):
		http.Error(w, "Недопустимый тип файла", http.StatusBadRequest)
	case errors.Is(err, uploads.ErrTooLarge):
		http.Error(w, "Файл слишком большой (максимум 16MB)", http.StatusBadRequest)
	case errors.Is(err, errNotImage):
		http.Error(w, err.Error(), http.StatusBadRequest)
	default:
		log.With(slog.String("op", op), slog.String("error", err.Error())).Error("Ошибка при сохранении файла")
		http.Error(w, "Внутренняя ошибка сервера", http.StatusInternalServerError)
	}
}

func createError(w http.ResponseWriter, log *slog.Logger, op string, err error) {
	switch {
	case report.IsValidation(err):
		http.Error(w, err.Error(), http.StatusBadRequest)
	case errors.Is(err, storage.ErrEmployeeNotFound):
		http.Error(w, "Сотрудник не найден", http.StatusNotFound)
	default:
		log.With(slog.String("op", op), slog.String("error", err.Error())).Error("Ошибка при создании отчёта")
		http.Error(w, "Внутренняя ошибка сервера", http.StatusInternalServerError)
	}
}
