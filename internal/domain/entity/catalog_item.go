package entity

import (
	"time"

	"github.com/shopspring/decimal"
)

// CatalogItem representa un SKU del catálogo de inventario.
// Quantity y AverageCost solo los modifica el ledger de costeo; nunca se borra, se desactiva.
type CatalogItem struct {
	ID          string
	Code        string // código único opcional (suele ser el código del proveedor)
	Description string
	UnitMeasure string
	Quantity    decimal.Decimal // nunca negativo
	AverageCost decimal.Decimal // costo promedio ponderado; 0 cuando Quantity es 0
	MinQuantity decimal.Decimal // umbral de reposición
	Active      bool
	CreatedAt   time.Time
	UpdatedAt   time.Time
}

// StockValue devuelve Quantity * AverageCost.
func (i *CatalogItem) StockValue() decimal.Decimal {
	return i.Quantity.Mul(i.AverageCost)
}

// BelowMinimum indica si el ítem está en o por debajo de su umbral de reposición.
func (i *CatalogItem) BelowMinimum() bool {
	return i.MinQuantity.GreaterThan(decimal.Zero) && i.Quantity.LessThanOrEqual(i.MinQuantity)
}
