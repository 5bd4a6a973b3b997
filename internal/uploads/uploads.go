// Package uploads хранит загруженные выгрузки и фото смен на локальном диске.
package uploads

import (
	"errors"
	"fmt"
	"io"
	"mime/multipart"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/google/uuid"
)

var (
	ErrExtension = errors.New("недопустимый тип файла")
	ErrTooLarge  = errors.New("файл слишком большой")
)

var allowed = map[string]struct{}{
	".csv": {}, ".xlsx": {}, ".xls": {}, ".txt": {},
	".png": {}, ".jpg": {}, ".jpeg": {}, ".webp": {},
	".pdf": {},
}

var images = map[string]struct{}{
	".png": {}, ".jpg": {}, ".jpeg": {}, ".webp": {},
}

type Store struct {
	dir     string
	maxSize int64
	now     func() time.Time
}

// File: имя сохранённого файла на диске и его содержимое для разбора.
type File struct {
	Name     string
	Original string
	Data     []byte
}

func New(dir string, maxSize int64) (*Store, error) {
	const op = "uploads.New"

	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	return &Store{dir: dir, maxSize: maxSize, now: time.Now}, nil
}

func (s *Store) Dir() string {
	return s.dir
}

// Allowed проверяет расширение по списку разрешённых.
func Allowed(filename string) bool {
	_, ok := allowed[ext(filename)]
	return ok
}

func IsImage(filename string) bool {
	_, ok := images[ext(filename)]
	return ok
}

// Save проверяет расширение и размер и пишет файл под уникальным именем.
func (s *Store) Save(fh *multipart.FileHeader) (File, error) {
	const op = "uploads.Save"

	if !Allowed(fh.Filename) {
		return File{}, fmt.Errorf("%s: %s: %w", op, fh.Filename, ErrExtension)
	}
	if fh.Size > s.maxSize {
		return File{}, fmt.Errorf("%s: %s: %w", op, fh.Filename, ErrTooLarge)
	}

	src, err := fh.Open()
	if err != nil {
		return File{}, fmt.Errorf("%s: %w", op, err)
	}
	defer src.Close()

	data, err := io.ReadAll(io.LimitReader(src, s.maxSize+1))
	if err != nil {
		return File{}, fmt.Errorf("%s: %w", op, err)
	}
	if int64(len(data)) > s.maxSize {
		return File{}, fmt.Errorf("%s: %s: %w", op, fh.Filename, ErrTooLarge)
	}

	name := s.uniqueName(fh.Filename)
	if err := os.WriteFile(filepath.Join(s.dir, name), data, 0o644); err != nil {
		return File{}, fmt.Errorf("%s: %w", op, err)
	}

	return File{Name: name, Original: fh.Filename, Data: data}, nil
}

// Remove удаляет файл, если он есть.
func (s *Store) Remove(name string) error {
	err := os.Remove(filepath.Join(s.dir, filepath.Base(name)))
	if err != nil && !errors.Is(err, os.ErrNotExist) {
		return err
	}
	return nil
}

func (s *Store) uniqueName(original string) string {
	base := strings.TrimSuffix(filepath.Base(original), filepath.Ext(original))
	base = sanitize(base)
	id := uuid.NewString()[:8]
	return fmt.Sprintf("%s_%s_%s%s", s.now().Format("20060102_150405"), id, base, ext(original))
}

func sanitize(name string) string {
	var b strings.Builder
	for _, r := range name {
		switch {
		case r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z', r >= '0' && r <= '9', r == '-', r == '_':
			b.WriteRune(r)
		case r == ' ' || r == '.':
			b.WriteRune('_')
		}
	}
	if b.Len() == 0 {
		return "file"
	}
	return b.String()
}

func ext(filename string) string {
	return strings.ToLower(filepath.Ext(filename))
}
