package app

import (
	"time"

	"go.uber.org/fx"

	"github.com/leaselens/leaselens/internal/app/api/server"
	"github.com/leaselens/leaselens/internal/app/service/analysis"
	"github.com/leaselens/leaselens/internal/app/service/billing"
	"github.com/leaselens/leaselens/internal/app/service/entitlement"
	"github.com/leaselens/leaselens/internal/app/service/ratelimit"
	"github.com/leaselens/leaselens/internal/app/service/sampler"
	"github.com/leaselens/leaselens/internal/app/service/summary"
	"github.com/leaselens/leaselens/internal/platform/db"
	"github.com/leaselens/leaselens/internal/platform/llm"
	"github.com/leaselens/leaselens/internal/platform/ocr"
	"github.com/leaselens/leaselens/internal/platform/payment"
	"github.com/leaselens/leaselens/internal/platform/pdfconv"
	"github.com/leaselens/leaselens/internal/platform/upload"
	"github.com/leaselens/leaselens/internal/repo"
	"github.com/leaselens/leaselens/pkg/config"
	"github.com/leaselens/leaselens/pkg/logger"
	"github.com/leaselens/leaselens/pkg/metrics"
)

const (
	DefaultStartTimeout = 15 * time.Second
	DefaultStopTimeout  = 10 * time.Second
)

var Module = fx.Options(
	logger.Module,
	config.Module,
	metrics.Module,
	db.Module,
	repo.Module,
	llm.Module,
	ocr.Module,
	pdfconv.Module,
	payment.Module,
	upload.Module,
	sampler.Module,
	summary.Module,
	entitlement.Module,
	ratelimit.Module,
	billing.Module,
	analysis.Module,
	server.Module,
)
