// Package bootstrap arma los casos de uso sobre el almacenamiento configurado.
// Lo comparten el servidor HTTP y la CLI.
package bootstrap

import (
	"context"
	"fmt"

	"github.com/shopspring/decimal"

	appinventory "github.com/jhoicas/stock-reconciliation/internal/application/inventory"
	"github.com/jhoicas/stock-reconciliation/internal/application/reconciliation"
	"github.com/jhoicas/stock-reconciliation/internal/application/usecase"
	"github.com/jhoicas/stock-reconciliation/internal/domain/inventory"
	"github.com/jhoicas/stock-reconciliation/internal/domain/matching"
	"github.com/jhoicas/stock-reconciliation/internal/domain/repository"
	"github.com/jhoicas/stock-reconciliation/internal/infrastructure/postgres"
	"github.com/jhoicas/stock-reconciliation/internal/infrastructure/sqlite"
	"github.com/jhoicas/stock-reconciliation/pkg/config"
	"github.com/jhoicas/stock-reconciliation/pkg/logger"
)

// Services casos de uso listos para usar. Close libera el almacenamiento.
type Services struct {
	Catalog       *usecase.CatalogUseCase
	Ledger        *appinventory.Ledger
	Replenishment *appinventory.ReplenishmentUseCase
	Orchestrator  *reconciliation.Orchestrator
	Resolver      *matching.Resolver
	Close         func()
}

type store struct {
	items     repository.CatalogItemRepository
	movements repository.StockMovementRepository
	tx        appinventory.TxRunner
	close     func()
}

// Build abre el almacenamiento de cfg.DB.Driver y construye los servicios.
// Con PostgreSQL aplica antes las migraciones pendientes.
func Build(ctx context.Context, cfg *config.Config, log *logger.Logger) (*Services, error) {
	log = logger.OrNop(log)
	st, err := openStore(ctx, cfg, log)
	if err != nil {
		return nil, err
	}

	rcfg, err := ReconciliationConfig(cfg.Reconcile)
	if err != nil {
		st.close()
		return nil, err
	}
	resolver := matching.NewResolver(matching.ResolverConfig{
		AutoAcceptThreshold: cfg.Reconcile.AutoAcceptThreshold,
		Workers:             cfg.Reconcile.Workers,
		PrefixBoost:         true,
	})

	catalog := usecase.NewCatalogUseCase(st.items)
	ledger := appinventory.NewLedger(st.tx, st.items, st.movements, cfg.Reconcile.MovementTimeout, log)
	return &Services{
		Catalog:       catalog,
		Ledger:        ledger,
		Replenishment: appinventory.NewReplenishmentUseCase(st.items),
		Orchestrator:  reconciliation.NewOrchestrator(catalog, ledger, resolver, rcfg, log),
		Resolver:      resolver,
		Close:         st.close,
	}, nil
}

// ReconciliationConfig traduce la configuración de entorno a la del orquestador.
func ReconciliationConfig(c config.ReconcileConfig) (reconciliation.Config, error) {
	basis, err := inventory.ParseBasis(c.ApportionBasis)
	if err != nil {
		return reconciliation.Config{}, fmt.Errorf("APPORTION_BASIS: %w", err)
	}
	return reconciliation.Config{
		Basis:              basis,
		UnitCostPlaces:     c.UnitCostPlaces,
		TotalsTolerancePct: decimal.NewFromFloat(c.TotalsTolerancePct),
	}, nil
}

func openStore(ctx context.Context, cfg *config.Config, log *logger.Logger) (*store, error) {
	switch cfg.DB.Driver {
	case config.DriverSQLite:
		db, err := sqlite.Open(cfg.DB.SQLitePath)
		if err != nil {
			return nil, err
		}
		log.Info().Str("driver", config.DriverSQLite).Str("path", cfg.DB.SQLitePath).Msg("almacenamiento listo")
		return &store{
			items:     sqlite.NewCatalogItemRepository(db),
			movements: sqlite.NewStockMovementRepository(db),
			tx:        sqlite.NewTxRunner(db),
			close:     func() { _ = sqlite.Close(db) },
		}, nil

	case config.DriverPostgres:
		version, err := postgres.Migrate(cfg.DB.MigrationsSource(), cfg.DB.ConnectionString())
		if err != nil {
			return nil, err
		}
		pool, err := postgres.NewPool(ctx, cfg.DB)
		if err != nil {
			return nil, err
		}
		log.Info().Str("driver", config.DriverPostgres).Uint("schema_version", version).Msg("almacenamiento listo")
		return &store{
			items:     postgres.NewCatalogItemRepository(pool),
			movements: postgres.NewStockMovementRepository(pool),
			tx:        postgres.NewTxRunner(pool),
			close:     pool.Close,
		}, nil
	}
	return nil, fmt.Errorf("DB_DRIVER no soportado: %q", cfg.DB.Driver)
}

// Migrate aplica el esquema del driver configurado sin construir los servicios.
func Migrate(ctx context.Context, cfg *config.Config) (string, error) {
	switch cfg.DB.Driver {
	case config.DriverSQLite:
		db, err := sqlite.Open(cfg.DB.SQLitePath)
		if err != nil {
			return "", err
		}
		if err := sqlite.Close(db); err != nil {
			return "", err
		}
		return fmt.Sprintf("esquema SQLite listo en %s", cfg.DB.SQLitePath), nil
	case config.DriverPostgres:
		version, err := postgres.Migrate(cfg.DB.MigrationsSource(), cfg.DB.ConnectionString())
		if err != nil {
			return "", err
		}
		return fmt.Sprintf("esquema PostgreSQL en versión %d", version), nil
	}
	return "", fmt.Errorf("DB_DRIVER no soportado: %q", cfg.DB.Driver)
}
