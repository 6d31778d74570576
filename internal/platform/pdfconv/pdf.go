// Package pdfconv rasterizes PDFs into page images for the OCR engine.
package pdfconv

import (
	"context"
	"fmt"
	"os/exec"
	"path/filepath"
	"sort"
	"strings"

	"go.uber.org/fx"
	"go.uber.org/zap"
)

// DPI is the fixed render resolution for OCR input.
const DPI = 200

// Converter is the narrow interface the pipeline consumes.
type Converter interface {
	IsPDF(path string) bool
	IsImage(path string) bool
	// ToImages renders every page of the PDF to a PNG next to the source
	// file and returns the image paths in page order.
	ToImages(ctx context.Context, path string) ([]string, error)
}

var imageExtensions = map[string]bool{
	".jpg":  true,
	".jpeg": true,
	".png":  true,
}

// Poppler shells out to pdftoppm.
type Poppler struct {
	log *zap.SugaredLogger
}

func NewPoppler(log *zap.SugaredLogger) *Poppler {
	return &Poppler{log: log}
}

func (p *Poppler) IsPDF(path string) bool {
	return strings.ToLower(filepath.Ext(path)) == ".pdf"
}

func (p *Poppler) IsImage(path string) bool {
	return imageExtensions[strings.ToLower(filepath.Ext(path))]
}

func (p *Poppler) ToImages(ctx context.Context, path string) ([]string, error) {
	dir := filepath.Dir(path)
	stem := strings.TrimSuffix(filepath.Base(path), filepath.Ext(path))
	prefix := filepath.Join(dir, stem+"_page")

	cmd := exec.CommandContext(ctx, "pdftoppm", "-png", "-r", fmt.Sprint(DPI), path, prefix)
	if out, err := cmd.CombinedOutput(); err != nil {
		return nil, fmt.Errorf("failed to convert PDF to images: %w: %s", err, strings.TrimSpace(string(out)))
	}

	// pdftoppm names output <prefix>-1.png, <prefix>-2.png, ... zero-padded
	// depending on page count; lexical sort of the padded names is page order.
	pages, err := filepath.Glob(prefix + "-*.png")
	if err != nil {
		return nil, fmt.Errorf("failed to list rendered pages: %w", err)
	}
	if len(pages) == 0 {
		return nil, fmt.Errorf("no pages rendered from %s", filepath.Base(path))
	}
	sort.Strings(pages)
	p.log.Infow("rendered pdf pages", "file", filepath.Base(path), "pages", len(pages))
	return pages, nil
}

var Module = fx.Options(
	fx.Provide(NewPoppler),
	fx.Provide(func(p *Poppler) Converter { return p }),
)
