package entity

import (
	"time"

	"github.com/shopspring/decimal"
)

// Supplier datos del proveedor emisor del documento.
type Supplier struct {
	Name  string `json:"name"`
	TaxID string `json:"tax_id"`
}

// DocumentTotals totales declarados en el documento.
type DocumentTotals struct {
	Products  decimal.Decimal `json:"products"`
	Freight   decimal.Decimal `json:"freight"`
	Discounts decimal.Decimal `json:"discounts"`
	Taxes     decimal.Decimal `json:"taxes"`
	Grand     decimal.Decimal `json:"grand"`
}

// ImportedLineItem una línea del documento tal como la entrega el servicio de extracción.
type ImportedLineItem struct {
	SupplierCode string          `json:"supplier_code"`
	Description  string          `json:"description"`
	Unit         string          `json:"unit"`
	Quantity     decimal.Decimal `json:"quantity"`
	UnitValue    decimal.Decimal `json:"unit_value"`
	LineTotal    decimal.Decimal `json:"line_total"`
}

// ImportedDocument documento estructurado (factura/recibo) a conciliar. No se persiste.
type ImportedDocument struct {
	Supplier  Supplier           `json:"supplier"`
	Type      string             `json:"type"`
	Number    string             `json:"number"`
	AccessKey string             `json:"access_key"`
	IssuedAt  *time.Time         `json:"issued_at,omitempty"`
	Totals    DocumentTotals     `json:"totals"`
	Items     []ImportedLineItem `json:"items"`
}

// Reference identificador legible del documento para los movimientos que genera.
func (d *ImportedDocument) Reference() string {
	switch {
	case d.Number != "" && d.Supplier.Name != "":
		return d.Supplier.Name + " #" + d.Number
	case d.Number != "":
		return d.Number
	default:
		return d.AccessKey
	}
}

// SumLineTotals suma los totales de línea.
func (d *ImportedDocument) SumLineTotals() decimal.Decimal {
	sum := decimal.Zero
	for _, it := range d.Items {
		sum = sum.Add(it.LineTotal)
	}
	return sum
}
