// Package upload handles intake of client files: extension and size
// validation, temp storage under a unique name, and cleanup.
package upload

import (
	"context"
	"fmt"
	"mime/multipart"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"go.uber.org/fx"
	"go.uber.org/zap"

	cfgpkg "github.com/leaselens/leaselens/pkg/config"
)

var allowedExtensions = map[string]bool{
	".pdf":  true,
	".jpg":  true,
	".jpeg": true,
	".png":  true,
}

// ValidationError describes a rejected upload; callers map it to a 400.
type ValidationError struct {
	Reason string
}

func (e *ValidationError) Error() string { return e.Reason }

type Store struct {
	dir     string
	maxSize int64
	log     *zap.SugaredLogger
}

func NewStore(cfg *cfgpkg.Config, log *zap.SugaredLogger) (*Store, error) {
	if err := os.MkdirAll(cfg.Upload.Dir, 0o755); err != nil {
		return nil, fmt.Errorf("failed to create upload dir: %w", err)
	}
	return &Store{dir: cfg.Upload.Dir, maxSize: cfg.Upload.MaxFileSizeBytes(), log: log}, nil
}

// Validate rejects unsupported extensions, oversized files and empty files.
func (s *Store) Validate(fh *multipart.FileHeader) error {
	ext := strings.ToLower(filepath.Ext(fh.Filename))
	if !allowedExtensions[ext] {
		return &ValidationError{Reason: fmt.Sprintf(
			"Invalid file format: %s. Allowed formats: .pdf, .jpg, .jpeg, .png", ext)}
	}
	if fh.Size > s.maxSize {
		return &ValidationError{Reason: fmt.Sprintf(
			"File too large. Maximum size is %dMB", s.maxSize/(1024*1024))}
	}
	if fh.Size == 0 {
		return &ValidationError{Reason: "File is empty"}
	}
	return nil
}

// Save validates the upload and writes it under a unique name, returning the
// temp path. Callers must Cleanup the path on every exit path.
func (s *Store) Save(c *gin.Context, fh *multipart.FileHeader) (string, error) {
	if err := s.Validate(fh); err != nil {
		return "", err
	}
	ext := strings.ToLower(filepath.Ext(fh.Filename))
	dst := filepath.Join(s.dir, uuid.NewString()+ext)
	if err := c.SaveUploadedFile(fh, dst); err != nil {
		return "", fmt.Errorf("failed to save file: %w", err)
	}
	return dst, nil
}

// Cleanup removes a temp file, tolerating files already gone.
func (s *Store) Cleanup(path string) {
	if path == "" {
		return
	}
	if err := os.Remove(path); err != nil && !os.IsNotExist(err) {
		s.log.Warnw("failed to cleanup temp file", "path", path, "err", err)
	}
}

// SweepStale removes temp files older than the given age. Maintenance
// operation, not part of the request path.
func (s *Store) SweepStale(olderThan time.Duration) {
	entries, err := os.ReadDir(s.dir)
	if err != nil {
		s.log.Warnw("failed to sweep upload dir", "err", err)
		return
	}
	cutoff := time.Now().Add(-olderThan)
	for _, e := range entries {
		if e.IsDir() {
			continue
		}
		info, err := e.Info()
		if err != nil {
			continue
		}
		if info.ModTime().Before(cutoff) {
			s.Cleanup(filepath.Join(s.dir, e.Name()))
		}
	}
}

// registerSweep periodically clears temp files left behind by crashed
// requests. Request-path cleanup is still the primary mechanism.
func registerSweep(lc fx.Lifecycle, s *Store) {
	done := make(chan struct{})
	lc.Append(fx.Hook{
		OnStart: func(context.Context) error {
			go func() {
				ticker := time.NewTicker(time.Hour)
				defer ticker.Stop()
				for {
					select {
					case <-ticker.C:
						s.SweepStale(2 * time.Hour)
					case <-done:
						return
					}
				}
			}()
			return nil
		},
		OnStop: func(context.Context) error {
			close(done)
			return nil
		},
	})
}

var Module = fx.Options(
	fx.Provide(NewStore),
	fx.Invoke(registerSweep),
)
