package inventory

import (
	"context"
	"sort"

	"github.com/shopspring/decimal"

	"github.com/jhoicas/stock-reconciliation/internal/application/dto"
	"github.com/jhoicas/stock-reconciliation/internal/domain/repository"
)

// idealStockFactor stock ideal = MinQuantity * 1.5.
var idealStockFactor = decimal.RequireFromString("1.5")

// ReplenishmentUseCase genera la lista de reposición: ítems activos en o por debajo de su mínimo.
type ReplenishmentUseCase struct {
	items repository.CatalogItemRepository
}

// NewReplenishmentUseCase construye el caso de uso de reposición.
func NewReplenishmentUseCase(items repository.CatalogItemRepository) *ReplenishmentUseCase {
	return &ReplenishmentUseCase{items: items}
}

// GenerateReplenishmentList devuelve los ítems bajo mínimo con la cantidad sugerida de pedido,
// el costo estimado al costo promedio y una prioridad por déficit (1 = más urgente).
func (uc *ReplenishmentUseCase) GenerateReplenishmentList(ctx context.Context) ([]dto.LowStockItemDTO, error) {
	rawItems, err := uc.items.ListBelowMinimum(ctx)
	if err != nil {
		return nil, err
	}
	suggestions := make([]dto.LowStockItemDTO, 0, len(rawItems))
	for _, item := range rawItems {
		if !item.Active || !item.BelowMinimum() {
			continue
		}
		idealStock := item.MinQuantity.Mul(idealStockFactor)
		suggestedQty := idealStock.Sub(item.Quantity)
		if suggestedQty.LessThanOrEqual(decimal.Zero) {
			suggestedQty = decimal.Zero
		}
		suggestions = append(suggestions, dto.LowStockItemDTO{
			ItemID:             item.ID,
			Code:               item.Code,
			Description:        item.Description,
			CurrentStock:       item.Quantity,
			MinQuantity:        item.MinQuantity,
			IdealStock:         idealStock,
			SuggestedOrderQty:  suggestedQty,
			UnitCost:           item.AverageCost,
			EstimatedOrderCost: suggestedQty.Mul(item.AverageCost),
		})
	}

	// Mayor déficit absoluto primero; empate por código para un orden estable.
	sort.SliceStable(suggestions, func(i, j int) bool {
		a, b := suggestions[i], suggestions[j]
		defA := a.MinQuantity.Sub(a.CurrentStock)
		defB := b.MinQuantity.Sub(b.CurrentStock)
		if !defA.Equal(defB) {
			return defA.GreaterThan(defB)
		}
		return a.Code < b.Code
	})
	for i := range suggestions {
		suggestions[i].Priority = i + 1
	}
	return suggestions, nil
}
