package dto

import (
	"time"

	"github.com/shopspring/decimal"
)

// RegisterMovementRequest body para POST /api/inventory/movements.
// Kind: entry | exit | adjustment. En adjustment, Quantity es la cantidad objetivo.
type RegisterMovementRequest struct {
	ItemID    string           `json:"item_id"`
	Kind      string           `json:"kind"`
	Quantity  decimal.Decimal  `json:"quantity"`
	UnitCost  *decimal.Decimal `json:"unit_cost,omitempty"`
	Reason    string           `json:"reason,omitempty"`
	Reference string           `json:"reference,omitempty"`
}

// MovementResponse salida de un movimiento registrado.
type MovementResponse struct {
	ID                  string           `json:"id"`
	ItemID              string           `json:"item_id"`
	Kind                string           `json:"kind"`
	Quantity            decimal.Decimal  `json:"quantity"`
	UnitCost            *decimal.Decimal `json:"unit_cost,omitempty"`
	PreviousQuantity    decimal.Decimal  `json:"previous_quantity"`
	NewQuantity         decimal.Decimal  `json:"new_quantity"`
	PreviousAverageCost decimal.Decimal  `json:"previous_average_cost"`
	NewAverageCost      decimal.Decimal  `json:"new_average_cost"`
	Reason              string           `json:"reason,omitempty"`
	ActorID             string           `json:"actor_id,omitempty"`
	Reference           string           `json:"reference,omitempty"`
	CreatedAt           time.Time        `json:"created_at"`
}

// MovementListResponse historial paginado de un ítem.
type MovementListResponse struct {
	Items []MovementResponse `json:"items"`
	Page  PageResponse       `json:"page"`
}

// RegisterMovementResponse ítem resultante más el movimiento creado.
type RegisterMovementResponse struct {
	Item     CatalogItemResponse `json:"item"`
	Movement MovementResponse    `json:"movement"`
}

// LowStockItemDTO ítem en o por debajo de su mínimo, con sugerencia de pedido.
type LowStockItemDTO struct {
	ItemID             string          `json:"item_id"`
	Code               string          `json:"code"`
	Description        string          `json:"description"`
	CurrentStock       decimal.Decimal `json:"current_stock"`
	MinQuantity        decimal.Decimal `json:"min_quantity"`
	IdealStock         decimal.Decimal `json:"ideal_stock"`          // MinQuantity * 1.5
	SuggestedOrderQty  decimal.Decimal `json:"suggested_order_qty"`  // IdealStock - CurrentStock
	UnitCost           decimal.Decimal `json:"unit_cost"`            // costo promedio ponderado
	EstimatedOrderCost decimal.Decimal `json:"estimated_order_cost"` // SuggestedOrderQty * UnitCost
	Priority           int             `json:"priority"`             // 1 = mayor déficit
}
