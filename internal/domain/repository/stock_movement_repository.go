package repository

import (
	"context"

	"github.com/jhoicas/stock-reconciliation/internal/domain/entity"
)

// StockMovementRepository define el puerto de persistencia para movimientos de stock (solo inserción).
type StockMovementRepository interface {
	Create(ctx context.Context, movement *entity.StockMovement) error
	GetByID(ctx context.Context, id string) (*entity.StockMovement, error)
	// ListByItem devuelve el historial del ítem, más reciente primero.
	ListByItem(ctx context.Context, itemID string, limit, offset int) ([]*entity.StockMovement, error)
}
