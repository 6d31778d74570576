// Package ocr is the text-extraction adapter. The engine itself is an
// external cloud service; this client uploads rendered page images one page
// at a time and assembles the document-level view the pipeline consumes.
package ocr

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/go-resty/resty/v2"
	"go.uber.org/fx"
	"go.uber.org/zap"

	"github.com/leaselens/leaselens/internal/models"
	cfgpkg "github.com/leaselens/leaselens/pkg/config"
)

// Result is the document-level recognition output. FullText is the
// concatenation of per-page text blocks, each prefixed with a literal
// "--- Page N ---" marker and joined by blank lines.
type Result struct {
	Lines     []models.OCRLine
	FullText  string
	PageCount int
}

// Recognizer is the narrow interface the pipeline consumes.
type Recognizer interface {
	Recognize(ctx context.Context, imagePaths []string) (*Result, error)
}

type pageResponse struct {
	Lines []struct {
		Text       string  `json:"text"`
		Confidence float64 `json:"confidence"`
	} `json:"lines"`
}

type Client struct {
	http *resty.Client
	log  *zap.SugaredLogger
}

func NewClient(cfg *cfgpkg.Config, log *zap.SugaredLogger) *Client {
	httpc := resty.New().
		SetBaseURL(cfg.OCR.BaseURL).
		SetTimeout(time.Duration(cfg.OCR.TimeoutSeconds) * time.Second)
	if cfg.OCR.APIKey != "" {
		httpc.SetAuthToken(cfg.OCR.APIKey)
	}
	return &Client{http: httpc, log: log}
}

func (c *Client) Recognize(ctx context.Context, imagePaths []string) (*Result, error) {
	result := &Result{PageCount: len(imagePaths)}
	var blocks []string

	for i, path := range imagePaths {
		var page pageResponse
		resp, err := c.http.R().
			SetContext(ctx).
			SetFile("image", path).
			SetResult(&page).
			Post("/v1/recognize")
		if err != nil {
			return nil, fmt.Errorf("ocr request failed for page %d: %w", i+1, err)
		}
		if resp.IsError() {
			return nil, fmt.Errorf("ocr returned %d for page %d: %s", resp.StatusCode(), i+1, resp.String())
		}

		var pageLines []string
		for _, l := range page.Lines {
			result.Lines = append(result.Lines, models.OCRLine{Text: l.Text, Confidence: l.Confidence})
			pageLines = append(pageLines, l.Text)
		}
		blocks = append(blocks, fmt.Sprintf("--- Page %d ---\n%s", i+1, strings.Join(pageLines, "\n")))
	}

	result.FullText = strings.Join(blocks, "\n\n")
	return result, nil
}

var Module = fx.Options(
	fx.Provide(NewClient),
	fx.Provide(func(c *Client) Recognizer { return c }),
)
