package uploads

import (
	"bytes"
	"mime/multipart"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func fileHeader(t *testing.T, filename string, content []byte) *multipart.FileHeader {
	t.Helper()

	body := &bytes.Buffer{}
	w := multipart.NewWriter(body)
	part, err := w.CreateFormFile("file", filename)
	require.NoError(t, err)
	_, err = part.Write(content)
	require.NoError(t, err)
	require.NoError(t, w.Close())

	req := httptest.NewRequest("POST", "/", body)
	req.Header.Set("Content-Type", w.FormDataContentType())
	require.NoError(t, req.ParseMultipartForm(1<<20))

	return req.MultipartForm.File["file"][0]
}

// Тест: файл сохраняется под уникальным именем с меткой времени
func TestSave(t *testing.T) {
	dir := t.TempDir()
	s, err := New(dir, 1024)
	require.NoError(t, err)
	s.now = func() time.Time { return time.Date(2025, 3, 10, 9, 30, 0, 0, time.UTC) }

	f, err := s.Save(fileHeader(t, "выгрузка bybit.CSV", []byte("a,b\n1,2\n")))

	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(f.Name, "20250310_093000_"))
	assert.True(t, strings.HasSuffix(f.Name, "_bybit.csv"))
	assert.Equal(t, "выгрузка bybit.CSV", f.Original)
	assert.Equal(t, []byte("a,b\n1,2\n"), f.Data)

	onDisk, err := os.ReadFile(filepath.Join(dir, f.Name))
	require.NoError(t, err)
	assert.Equal(t, f.Data, onDisk)
}

// Тест: расширение вне списка отклоняется
func TestSave_Extension(t *testing.T) {
	s, err := New(t.TempDir(), 1024)
	require.NoError(t, err)

	_, err = s.Save(fileHeader(t, "script.exe", []byte("x")))

	assert.ErrorIs(t, err, ErrExtension)
}

// Тест: превышение лимита размера
func TestSave_TooLarge(t *testing.T) {
	s, err := New(t.TempDir(), 4)
	require.NoError(t, err)

	_, err = s.Save(fileHeader(t, "big.txt", []byte("0123456789")))

	assert.ErrorIs(t, err, ErrTooLarge)
}

func TestAllowedAndImage(t *testing.T) {
	assert.True(t, Allowed("orders.xlsx"))
	assert.True(t, Allowed("photo.JPEG"))
	assert.False(t, Allowed("archive.zip"))
	assert.True(t, IsImage("end.webp"))
	assert.False(t, IsImage("orders.csv"))
}

// Тест: удаление отсутствующего файла не ошибка
func TestRemove_Missing(t *testing.T) {
	s, err := New(t.TempDir(), 1024)
	require.NoError(t, err)

	assert.NoError(t, s.Remove("nope.csv"))
}
