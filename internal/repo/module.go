package repo

import (
	"go.uber.org/fx"
	"go.uber.org/zap"

	"github.com/leaselens/leaselens/internal/platform/db"
	cfgpkg "github.com/leaselens/leaselens/pkg/config"
)

// New selects repository implementations. Analyses always live in memory
// (their lifetime is the process by contract); access passes and transactions
// move to postgres when a DSN is configured.
func New(cfg *cfgpkg.Config, conn *db.Conn, log *zap.SugaredLogger) (AnalysisRepository, AccessRepository, TransactionRepository) {
	analyses := NewMemoryAnalysisRepository(cfg.Store.MaxAnalyses, log)
	if conn != nil && conn.Gorm != nil {
		log.Infow("using gorm-backed access and transaction repositories")
		return analyses, NewGormAccessRepository(conn.Gorm), NewGormTransactionRepository(conn.Gorm)
	}
	return analyses, NewMemoryAccessRepository(), NewMemoryTransactionRepository()
}

var Module = fx.Options(
	fx.Provide(New),
)
