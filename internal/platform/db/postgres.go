package db

import (
	"context"

	"go.uber.org/fx"
	"go.uber.org/zap"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"

	"github.com/leaselens/leaselens/internal/models"
	cfgpkg "github.com/leaselens/leaselens/pkg/config"
	gormzap "github.com/leaselens/leaselens/pkg/gormlog"
)

// Conn wraps the optional database handle. Gorm is nil when no DSN is
// configured and the service runs purely on in-memory stores.
type Conn struct {
	Gorm *gorm.DB
}

func NewConn(l *zap.SugaredLogger, cfg *cfgpkg.Config) (*Conn, error) {
	if cfg.Database.DSN == "" {
		l.Infow("no database DSN configured, using in-memory stores")
		return &Conn{}, nil
	}
	gdb, err := gorm.Open(postgres.Open(cfg.Database.DSN), &gorm.Config{Logger: gormzap.New(l)})
	if err != nil {
		l.Errorf("failed to connect database: %v", err)
		return nil, err
	}
	l.Infow("connected to postgres via DSN")
	return &Conn{Gorm: gdb}, nil
}

// AutoMigrate runs GORM migrations on startup for the durable records.
func AutoMigrate(l *zap.SugaredLogger, conn *Conn) error {
	if conn.Gorm == nil {
		return nil
	}
	if err := conn.Gorm.AutoMigrate(
		&models.AccessPass{},
		&models.Transaction{},
	); err != nil {
		l.Errorf("automigrate failed: %v", err)
		return err
	}
	l.Infow("automigrate completed")
	return nil
}

// registerClose ensures the underlying *sql.DB is closed on shutdown.
func registerClose(lc fx.Lifecycle, l *zap.SugaredLogger, conn *Conn) {
	if conn.Gorm == nil {
		return
	}
	lc.Append(fx.Hook{
		OnStop: func(ctx context.Context) error {
			sqlDB, err := conn.Gorm.DB()
			if err != nil {
				l.Warnw("gorm: get sql.DB failed", "err", err)
				return nil
			}
			l.Infow("closing postgres connection pool")
			return sqlDB.Close()
		},
	})
}

var Module = fx.Options(
	fx.Provide(NewConn),
	fx.Invoke(AutoMigrate),
	fx.Invoke(registerClose),
)
