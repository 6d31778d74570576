package server

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/fx"
	"go.uber.org/zap"

	"github.com/leaselens/leaselens/internal/app/api/handlers"
	mw "github.com/leaselens/leaselens/internal/app/api/middleware"
	"github.com/leaselens/leaselens/internal/app/service/analysis"
	"github.com/leaselens/leaselens/internal/app/service/billing"
	"github.com/leaselens/leaselens/internal/app/service/ratelimit"
	cfgpkg "github.com/leaselens/leaselens/pkg/config"
	"github.com/leaselens/leaselens/pkg/metrics"
)

func newEngine(m *metrics.Metrics) *gin.Engine {
	r := gin.New()
	r.Use(gin.Recovery())
	// Tracing and metrics apply to everything; request logger and access log
	// are attached per group in registerRoutes.
	r.Use(mw.TraceMiddleware())
	r.Use(m.Middleware())
	return r
}

func registerRoutes(
	lc fx.Lifecycle,
	r *gin.Engine,
	log *zap.SugaredLogger,
	cfg *cfgpkg.Config,
	analysisSvc *analysis.Service,
	billingSvc *billing.Service,
	limiter *ratelimit.Limiter,
	m *metrics.Metrics,
) {
	if cfg.MetricsAddr != "" {
		m.Serve(lc, cfg.MetricsAddr, log)
	}

	// Public group: request logger + access log
	pub := r.Group("/")
	pub.Use(mw.RequestLoggerMiddleware(log), mw.AccessLogMiddleware())
	handlers.RegisterHealthRoutes(pub)

	lease := r.Group("/api/lease")
	lease.Use(mw.RequestLoggerMiddleware(log), mw.AccessLogMiddleware())
	lease.GET("/health", handlers.Healthz)
	handlers.RegisterLeaseRoutes(lease, analysisSvc, log)
	handlers.RegisterClauseRoutes(lease.Group("/clause"), analysisSvc, limiter, m, log)

	billingGroup := r.Group("/api/billing")
	billingGroup.Use(mw.RequestLoggerMiddleware(log), mw.AccessLogMiddleware())
	handlers.RegisterBillingRoutes(billingGroup, billingSvc, log)
}

func runServer(lc fx.Lifecycle, log *zap.SugaredLogger, cfg *cfgpkg.Config, r *gin.Engine) {
	addr := fmt.Sprintf("%s:%d", cfg.Server.Host, cfg.Server.Port)
	srv := &http.Server{Addr: addr, Handler: r, ReadHeaderTimeout: 5 * time.Second}

	lc.Append(fx.Hook{
		OnStart: func(ctx context.Context) error {
			log.Infow("starting HTTP server", "addr", addr)
			go func() {
				if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
					log.Errorf("server error: %v", err)
					panic(err)
				}
			}()
			return nil
		},
		OnStop: func(ctx context.Context) error {
			log.Infow("stopping HTTP server")
			shutdownCtx, cancel := context.WithTimeout(ctx, 120*time.Second)
			defer cancel()
			return srv.Shutdown(shutdownCtx)
		},
	})
}

var Module = fx.Options(
	fx.Provide(newEngine),
	fx.Invoke(registerRoutes),
	fx.Invoke(runServer),
)
