package dto

import (
	"time"

	"github.com/shopspring/decimal"
)

// CreateCatalogItemRequest entrada para crear un ítem del catálogo. Nace con cantidad 0.
type CreateCatalogItemRequest struct {
	Code        string          `json:"code"`
	Description string          `json:"description"`
	UnitMeasure string          `json:"unit_measure"`
	MinQuantity decimal.Decimal `json:"min_quantity"`
}

// UpdateCatalogItemRequest entrada para actualizar un ítem (sin cantidad ni costo).
type UpdateCatalogItemRequest struct {
	Code        *string          `json:"code"`
	Description *string          `json:"description"`
	UnitMeasure *string          `json:"unit_measure"`
	MinQuantity *decimal.Decimal `json:"min_quantity"`
}

// CatalogItemResponse salida de un ítem del catálogo.
type CatalogItemResponse struct {
	ID          string          `json:"id"`
	Code        string          `json:"code,omitempty"`
	Description string          `json:"description"`
	UnitMeasure string          `json:"unit_measure"`
	Quantity    decimal.Decimal `json:"quantity"`
	AverageCost decimal.Decimal `json:"average_cost"`
	StockValue  decimal.Decimal `json:"stock_value"`
	MinQuantity decimal.Decimal `json:"min_quantity"`
	Active      bool            `json:"active"`
	CreatedAt   time.Time       `json:"created_at"`
	UpdatedAt   time.Time       `json:"updated_at"`
}

// CatalogItemListResponse lista paginada de ítems.
type CatalogItemListResponse struct {
	Items []CatalogItemResponse `json:"items"`
	Page  PageResponse          `json:"page"`
}
