package sqlite

import (
	"context"

	"gorm.io/gorm"

	"github.com/jhoicas/stock-reconciliation/internal/application/inventory"
	"github.com/jhoicas/stock-reconciliation/internal/domain/repository"
)

var _ inventory.TxRunner = (*TxRunner)(nil)

// TxRunner ejecuta callbacks dentro de una transacción gorm.
type TxRunner struct {
	db *gorm.DB
}

// NewTxRunner construye el runner.
func NewTxRunner(db *gorm.DB) *TxRunner {
	return &TxRunner{db: db}
}

// Run hace Commit si fn devuelve nil y Rollback en cualquier otro caso.
func (r *TxRunner) Run(ctx context.Context, fn func(
	items repository.CatalogItemRepository,
	movements repository.StockMovementRepository,
) error) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		return fn(NewCatalogItemRepository(tx), NewStockMovementRepository(tx))
	})
}
