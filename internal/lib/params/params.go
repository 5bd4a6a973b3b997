// Package params разбирает параметры пути, query-строки и полей формы.
package params

import (
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
)

const (
	DateLayout     = "2006-01-02"
	DateTimeLayout = "2006-01-02T15:04"
)

var ErrMissing = errors.New("параметр не задан")

// ID читает положительный int64 из параметра пути.
func ID(r *http.Request, name string) (int64, error) {
	raw := chi.URLParam(r, name)
	if raw == "" {
		return 0, fmt.Errorf("%s: %w", name, ErrMissing)
	}
	id, err := strconv.ParseInt(raw, 10, 64)
	if err != nil || id <= 0 {
		return 0, fmt.Errorf("%s: некорректный id %q", name, raw)
	}
	return id, nil
}

// Int64 читает необязательное целое из query; пустое значение даёт 0.
func Int64(r *http.Request, name string) (int64, error) {
	return Int64Value(name, r.URL.Query().Get(name))
}

// Date читает необязательную дату YYYY-MM-DD из query.
func Date(r *http.Request, name string) (*time.Time, error) {
	return ParseDate(r.URL.Query().Get(name))
}

func ParseDate(raw string) (*time.Time, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return nil, nil
	}
	t, err := time.Parse(DateLayout, raw)
	if err != nil {
		return nil, fmt.Errorf("некорректная дата %q, ожидается YYYY-MM-DD", raw)
	}
	return &t, nil
}

// ParseDateTime разбирает время окна смены YYYY-MM-DDTHH:MM.
func ParseDateTime(raw string) (*time.Time, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return nil, nil
	}
	t, err := time.Parse(DateTimeLayout, raw)
	if err != nil {
		return nil, fmt.Errorf("некорректное время %q, ожидается YYYY-MM-DDTHH:MM", raw)
	}
	return &t, nil
}

var timestampLayouts = []string{
	time.RFC3339,
	"2006-01-02T15:04:05",
	DateTimeLayout,
	"2006-01-02 15:04:05",
}

// ParseTimestamp принимает ISO-время с секундами или без и с зоной или без.
func ParseTimestamp(raw string) (*time.Time, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return nil, nil
	}
	for _, layout := range timestampLayouts {
		if t, err := time.Parse(layout, raw); err == nil {
			return &t, nil
		}
	}
	return nil, fmt.Errorf("некорректное время %q", raw)
}

// Int разбирает необязательное целое; пустое значение даёт 0.
func Int(name, raw string) (int, error) {
	v, err := Int64Value(name, raw)
	return int(v), err
}

func Int64Value(name, raw string) (int64, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return 0, nil
	}
	v, err := strconv.ParseInt(raw, 10, 64)
	if err != nil {
		// JSON-числа вида 3.0
		f, ferr := strconv.ParseFloat(raw, 64)
		if ferr != nil || f != float64(int64(f)) {
			return 0, fmt.Errorf("%s: некорректное число %q", name, raw)
		}
		v = int64(f)
	}
	return v, nil
}

// Float принимает и запятую, и точку в качестве разделителя.
func Float(name, raw string) (float64, error) {
	raw = strings.TrimSpace(strings.ReplaceAll(raw, ",", "."))
	if raw == "" {
		return 0, nil
	}
	v, err := strconv.ParseFloat(raw, 64)
	if err != nil {
		return 0, fmt.Errorf("%s: некорректное число %q", name, raw)
	}
	return v, nil
}

// Bool: "true", "1", "on", "yes" считаются истиной.
func Bool(raw string) bool {
	switch strings.ToLower(strings.TrimSpace(raw)) {
	case "true", "1", "on", "yes":
		return true
	}
	return false
}
