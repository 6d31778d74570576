package upload

import (
	"bytes"
	"mime/multipart"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	cfgpkg "github.com/leaselens/leaselens/pkg/config"
)

func newTestStore(t *testing.T) *Store {
	t.Helper()
	cfg := &cfgpkg.Config{}
	cfg.Upload = cfgpkg.UploadConfig{Dir: t.TempDir(), MaxFileSizeMB: 1, MaxPages: 40}
	s, err := NewStore(cfg, zap.NewNop().Sugar())
	require.NoError(t, err)
	return s
}

func multipartContext(t *testing.T, filename string, content []byte) (*gin.Context, *multipart.FileHeader) {
	t.Helper()
	gin.SetMode(gin.TestMode)

	var buf bytes.Buffer
	w := multipart.NewWriter(&buf)
	fw, err := w.CreateFormFile("files", filename)
	require.NoError(t, err)
	_, err = fw.Write(content)
	require.NoError(t, err)
	require.NoError(t, w.Close())

	req := httptest.NewRequest("POST", "/analyze", &buf)
	req.Header.Set("Content-Type", w.FormDataContentType())

	c, _ := gin.CreateTestContext(httptest.NewRecorder())
	c.Request = req
	form, err := c.MultipartForm()
	require.NoError(t, err)
	require.Len(t, form.File["files"], 1)
	return c, form.File["files"][0]
}

func TestValidateRejectsBadExtension(t *testing.T) {
	s := newTestStore(t)
	_, fh := multipartContext(t, "lease.docx", []byte("content"))

	err := s.Validate(fh)
	var vErr *ValidationError
	require.ErrorAs(t, err, &vErr)
	assert.Contains(t, vErr.Reason, "Invalid file format: .docx")
}

func TestValidateRejectsEmptyFile(t *testing.T) {
	s := newTestStore(t)
	_, fh := multipartContext(t, "lease.pdf", nil)

	err := s.Validate(fh)
	var vErr *ValidationError
	require.ErrorAs(t, err, &vErr)
	assert.Equal(t, "File is empty", vErr.Reason)
}

func TestValidateRejectsOversizedFile(t *testing.T) {
	s := newTestStore(t)
	_, fh := multipartContext(t, "lease.pdf", []byte("x"))
	fh.Size = 2 * 1024 * 1024

	err := s.Validate(fh)
	var vErr *ValidationError
	require.ErrorAs(t, err, &vErr)
	assert.Contains(t, vErr.Reason, "Maximum size is 1MB")
}

func TestSaveAndCleanup(t *testing.T) {
	s := newTestStore(t)
	c, fh := multipartContext(t, "lease.PDF", []byte("%PDF-1.4 content"))

	path, err := s.Save(c, fh)
	require.NoError(t, err)
	assert.Equal(t, ".pdf", filepath.Ext(path))

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, []byte("%PDF-1.4 content"), data)

	s.Cleanup(path)
	_, err = os.Stat(path)
	assert.True(t, os.IsNotExist(err))

	// Cleanup tolerates repeated calls and empty paths.
	s.Cleanup(path)
	s.Cleanup("")
}

func TestSweepStale(t *testing.T) {
	s := newTestStore(t)
	old := filepath.Join(s.dir, "old.pdf")
	fresh := filepath.Join(s.dir, "fresh.pdf")
	require.NoError(t, os.WriteFile(old, []byte("old"), 0o644))
	require.NoError(t, os.WriteFile(fresh, []byte("fresh"), 0o644))
	past := time.Now().Add(-3 * time.Hour)
	require.NoError(t, os.Chtimes(old, past, past))

	s.SweepStale(2 * time.Hour)

	_, err := os.Stat(old)
	assert.True(t, os.IsNotExist(err))
	_, err = os.Stat(fresh)
	assert.NoError(t, err)
}
