package dto

import "github.com/jhoicas/stock-reconciliation/internal/domain/entity"

// CatalogItemFromEntity mapea el ítem a su representación de salida.
func CatalogItemFromEntity(it *entity.CatalogItem) CatalogItemResponse {
	return CatalogItemResponse{
		ID:          it.ID,
		Code:        it.Code,
		Description: it.Description,
		UnitMeasure: it.UnitMeasure,
		Quantity:    it.Quantity,
		AverageCost: it.AverageCost,
		StockValue:  it.StockValue(),
		MinQuantity: it.MinQuantity,
		Active:      it.Active,
		CreatedAt:   it.CreatedAt,
		UpdatedAt:   it.UpdatedAt,
	}
}

// MovementFromEntity mapea un movimiento a su representación de salida.
func MovementFromEntity(m *entity.StockMovement) MovementResponse {
	return MovementResponse{
		ID:                  m.ID,
		ItemID:              m.ItemID,
		Kind:                m.Kind.String(),
		Quantity:            m.Quantity,
		UnitCost:            m.UnitCost,
		PreviousQuantity:    m.PreviousQuantity,
		NewQuantity:         m.NewQuantity,
		PreviousAverageCost: m.PreviousAverageCost,
		NewAverageCost:      m.NewAverageCost,
		Reason:              m.Reason,
		ActorID:             m.ActorID,
		Reference:           m.Reference,
		CreatedAt:           m.CreatedAt,
	}
}
