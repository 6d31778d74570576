// Package analysis orchestrates the lease pipeline: upload intake, PDF
// rasterization, OCR, structured summary, clause sampling, the access gate
// and the analysis store.
package analysis

import (
	"context"
	"fmt"
	"math"
	"mime/multipart"
	"path/filepath"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/leaselens/leaselens/internal/app/service/entitlement"
	"github.com/leaselens/leaselens/internal/app/service/sampler"
	"github.com/leaselens/leaselens/internal/app/service/summary"
	"github.com/leaselens/leaselens/internal/models"
	"github.com/leaselens/leaselens/internal/platform/ocr"
	"github.com/leaselens/leaselens/internal/platform/pdfconv"
	"github.com/leaselens/leaselens/internal/platform/upload"
	"github.com/leaselens/leaselens/internal/repo"
	cfgpkg "github.com/leaselens/leaselens/pkg/config"
	"github.com/leaselens/leaselens/pkg/logctx"
	"github.com/leaselens/leaselens/pkg/metrics"
	"github.com/leaselens/leaselens/pkg/tool"
)

// InputError rejects a request before any pipeline work; maps to a 400.
type InputError struct{ Message string }

func (e *InputError) Error() string { return e.Message }

// AccessDeniedError is the post-pipeline gate decision; maps to a 403. The
// analysis that was computed is discarded, never stored.
type AccessDeniedError struct {
	Reason  string
	Message string
}

func (e *AccessDeniedError) Error() string { return e.Message }

// NotFoundError maps to a 404.
type NotFoundError struct{ Message string }

func (e *NotFoundError) Error() string { return e.Message }

// SoftError reports a pipeline failure the client should see as a non-fatal
// "could not analyze" body rather than an HTTP error.
type SoftError struct{ Message string }

func (e *SoftError) Error() string { return e.Message }

// Timing is the request's duration breakdown in the response payload.
type Timing struct {
	BackendDuration  int64   `json:"backendDuration"`  // ms, whole request
	AIDuration       int64   `json:"aiDuration"`       // ms inside model calls
	BusinessDuration int64   `json:"businessDuration"` // ms, whole request
	TotalDuration    float64 `json:"totalDuration"`    // seconds, 2dp
}

// Report is the client-facing analysis view.
type Report struct {
	AnalysisID     string           `json:"analysis_id"`
	FullText       string           `json:"full_text"`
	KeyInfo        models.KeyInfo   `json:"key_info"`
	Summary        models.Summary   `json:"summary"`
	Clauses        []models.Clause  `json:"clauses"`
	HighRisk       []models.Clause  `json:"high_risk_clauses"`
	TotalClauses   int              `json:"total_clauses"`
	ShownClauses   int              `json:"shown_clauses"`
	MaxClauses     int              `json:"max_clauses,omitempty"`
	HasFullAccess  bool             `json:"has_full_access"`
	UserID         string           `json:"user_id"`
	Lines          []models.OCRLine `json:"lines"`
	ProcessingTime float64          `json:"processing_time"`
	PageCount      int              `json:"page_count"`
	Timing         *Timing          `json:"timing,omitempty"`
}

type Service struct {
	cfg         *cfgpkg.Config
	log         *zap.SugaredLogger
	uploads     *upload.Store
	pdf         pdfconv.Converter
	ocr         ocr.Recognizer
	sampler     *sampler.Service
	summarizer  *summary.Service
	entitlement *entitlement.Service
	analyses    repo.AnalysisRepository
	metrics     *metrics.Metrics

	historyMu sync.Mutex
	history   map[string][]QuickResult
}

func NewService(
	cfg *cfgpkg.Config,
	log *zap.SugaredLogger,
	uploads *upload.Store,
	pdf pdfconv.Converter,
	recognizer ocr.Recognizer,
	smp *sampler.Service,
	summarizer *summary.Service,
	ent *entitlement.Service,
	analyses repo.AnalysisRepository,
	m *metrics.Metrics,
) *Service {
	return &Service{
		cfg:         cfg,
		log:         log,
		uploads:     uploads,
		pdf:         pdf,
		ocr:         recognizer,
		sampler:     smp,
		summarizer:  summarizer,
		entitlement: ent,
		analyses:    analyses,
		metrics:     m,
		history:     make(map[string][]QuickResult),
	}
}

// Analyze runs the whole pipeline for one upload batch. The access gate runs
// after the document work but strictly before anything is stored or any quota
// is consumed; a denied request leaves no trace.
func (s *Service) Analyze(c *gin.Context, files []*multipart.FileHeader, userID string) (*Report, error) {
	start := time.Now()
	ctx := c.Request.Context()

	var tempPaths []string
	defer func() {
		for _, p := range tempPaths {
			s.uploads.Cleanup(p)
		}
	}()

	s.log.Infow("starting lease analysis", "files", len(files), "user_id", userID)

	sort.Slice(files, func(i, j int) bool { return files[i].Filename < files[j].Filename })

	var imagePaths []string
	for _, fh := range files {
		saved, err := s.uploads.Save(c, fh)
		if err != nil {
			return nil, err
		}
		tempPaths = append(tempPaths, saved)

		switch {
		case s.pdf.IsPDF(saved):
			pages, err := s.pdf.ToImages(ctx, saved)
			if err != nil {
				s.metrics.AdapterFailures.WithLabelValues("pdfconv").Inc()
				return nil, &SoftError{Message: fmt.Sprintf("Failed to analyze lease: %v", err)}
			}
			imagePaths = append(imagePaths, pages...)
			tempPaths = append(tempPaths, pages...)
		case s.pdf.IsImage(saved):
			imagePaths = append(imagePaths, saved)
		default:
			return nil, &InputError{Message: fmt.Sprintf(
				"Unsupported file format: %s. Please upload PDF or image files.", filepath.Ext(saved))}
		}
	}

	if len(imagePaths) == 0 {
		return nil, &InputError{Message: "No pages found in the document(s)"}
	}
	if maxPages := s.cfg.Upload.MaxPages; len(imagePaths) > maxPages {
		return nil, &InputError{Message: fmt.Sprintf(
			"Your document has %d pages, which exceeds our limit of %d pages. Please upload a shorter lease or contact support.",
			len(imagePaths), maxPages)}
	}

	ocrResult, err := s.ocr.Recognize(ctx, imagePaths)
	if err != nil {
		s.metrics.AdapterFailures.WithLabelValues("ocr").Inc()
		s.log.Errorw("ocr failed", "err", err)
		return nil, &SoftError{Message: fmt.Sprintf("Failed to analyze lease: %v", err)}
	}
	fullText := ocrResult.FullText
	if strings.TrimSpace(fullText) == "" {
		return nil, &SoftError{Message: "No text extracted from document. The document may be empty, contain only images, or have formatting issues."}
	}
	s.log.Infow("text extracted", "chars", len(fullText), "pages", ocrResult.PageCount)

	sum := summary.Validate(s.summarizer.Extract(ctx, fullText))

	var keyInfo models.KeyInfo
	if sum.MonthlyRentAmount != nil || sum.LeaseStartDate != "" {
		keyInfo = summary.BuildKeyInfo(sum)
	} else {
		keyInfo = summary.ExtractKeyInfo(fullText)
	}

	clauses, aiDuration := s.sampler.Sample(ctx, fullText, false)
	clauses, highRisk := sampler.FilterClauses(clauses)

	hasFullAccess := true
	if !s.cfg.IsBypassUser(userID) {
		access := s.entitlement.Check(ctx, userID)
		hasFullAccess = access.HasAccess
		if !hasFullAccess {
			s.metrics.AnalysesDenied.Inc()
			msg := access.MessageZH
			if msg == "" {
				msg = entitlement.NoAccessMessageZH
			}
			return nil, &AccessDeniedError{Reason: access.Reason, Message: msg}
		}
	}

	processing := round2(time.Since(start).Seconds())
	analysisID := tool.GenerateAnalysisID()

	s.analyses.Save(&models.Analysis{
		ID:             analysisID,
		UserID:         userID,
		FullText:       fullText,
		KeyInfo:        keyInfo,
		Summary:        sum,
		Clauses:        clauses,
		HighRisk:       highRisk,
		Lines:          ocrResult.Lines,
		PageCount:      ocrResult.PageCount,
		ProcessingTime: processing,
		AIDuration:     aiDuration,
		CreatedAt:      time.Now(),
	})

	alog := logctx.WithAnalysis(s.log, analysisID)
	if err := s.entitlement.Consume(ctx, userID, analysisID); err != nil {
		alog.Errorw("failed to record quota consumption", "user_id", userID, "err", err)
	}
	s.metrics.AnalysesCompleted.Inc()
	alog.Infow("lease analysis stored", "user_id", userID,
		"clauses", len(clauses), "high_risk", len(highRisk), "seconds", processing)

	return &Report{
		AnalysisID:     analysisID,
		FullText:       fullText,
		KeyInfo:        keyInfo,
		Summary:        sum,
		Clauses:        clauses,
		HighRisk:       highRisk,
		TotalClauses:   len(clauses),
		ShownClauses:   len(clauses),
		MaxClauses:     len(clauses),
		HasFullAccess:  hasFullAccess,
		UserID:         userID,
		Lines:          ocrResult.Lines,
		ProcessingTime: processing,
		PageCount:      ocrResult.PageCount,
		Timing: &Timing{
			BackendDuration:  int64(math.Round(processing * 1000)),
			AIDuration:       int64(math.Round(aiDuration * 1000)),
			BusinessDuration: int64(math.Round(processing * 1000)),
			TotalDuration:    processing,
		},
	}, nil
}

// FullReport returns a stored analysis. Owners always see their own report;
// anyone else needs active access.
func (s *Service) FullReport(ctx context.Context, analysisID, userID string) (*Report, error) {
	a := s.analyses.Get(analysisID)
	if a == nil {
		return nil, &NotFoundError{Message: "Analysis not found. Please analyze a lease first."}
	}

	if a.UserID != userID {
		if access := s.entitlement.Check(ctx, userID); !access.HasAccess {
			return nil, &AccessDeniedError{
				Reason:  access.Reason,
				Message: "Access denied. This analysis belongs to another user or your access has expired.",
			}
		}
	}

	return &Report{
		AnalysisID:     a.ID,
		FullText:       a.FullText,
		KeyInfo:        a.KeyInfo,
		Summary:        a.Summary,
		Clauses:        a.Clauses,
		HighRisk:       a.HighRisk,
		TotalClauses:   len(a.Clauses),
		ShownClauses:   len(a.Clauses),
		HasFullAccess:  s.entitlement.Check(ctx, userID).HasAccess,
		UserID:         userID,
		Lines:          a.Lines,
		ProcessingTime: a.ProcessingTime,
		PageCount:      a.PageCount,
	}, nil
}

func round2(f float64) float64 {
	return math.Round(f*100) / 100
}
