package repository

import (
	"context"

	"github.com/shopspring/decimal"

	"github.com/jhoicas/stock-reconciliation/internal/domain/entity"
)

// CatalogItemRepository define el puerto de persistencia para CatalogItem (DIP).
// Los métodos de lectura devuelven domain.ErrItemNotFound cuando el ítem no existe.
type CatalogItemRepository interface {
	Create(ctx context.Context, item *entity.CatalogItem) error
	GetByID(ctx context.Context, id string) (*entity.CatalogItem, error)
	// GetForUpdate bloquea la fila hasta el fin de la transacción (SELECT FOR UPDATE).
	GetForUpdate(ctx context.Context, id string) (*entity.CatalogItem, error)
	GetByCode(ctx context.Context, code string) (*entity.CatalogItem, error)
	// ListActive devuelve todos los ítems activos ordenados por código e id.
	ListActive(ctx context.Context) ([]*entity.CatalogItem, error)
	List(ctx context.Context, includeInactive bool, limit, offset int) ([]*entity.CatalogItem, error)
	// Update modifica solo campos descriptivos (código, descripción, unidad, mínimo).
	Update(ctx context.Context, item *entity.CatalogItem) error
	// UpdateStock la usa únicamente el ledger de costeo.
	UpdateStock(ctx context.Context, id string, quantity, averageCost decimal.Decimal) error
	Deactivate(ctx context.Context, id string) error
	ListBelowMinimum(ctx context.Context) ([]*entity.CatalogItem, error)
}
