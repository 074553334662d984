package inventory

import (
	"context"

	"github.com/jhoicas/stock-reconciliation/internal/domain/repository"
)

// TxRunner ejecuta una función dentro de una transacción de BD, pasando repositorios atados a esa tx.
// Garantiza atomicidad para el ledger: actualización del ítem y registro del movimiento van juntos.
type TxRunner interface {
	Run(ctx context.Context, fn func(
		items repository.CatalogItemRepository,
		movements repository.StockMovementRepository,
	) error) error
}
