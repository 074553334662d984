package reconciliation

import (
	"fmt"

	"github.com/shopspring/decimal"

	"github.com/jhoicas/stock-reconciliation/internal/domain"
	"github.com/jhoicas/stock-reconciliation/internal/domain/entity"
)

// Códigos de advertencia. No bloquean la confirmación.
const (
	WarnTotalsMismatch        = domain.CodeTotalsMismatch
	WarnProductsTotalMismatch = "PRODUCTS_TOTAL_MISMATCH"
	WarnLineTotalMismatch     = "LINE_TOTAL_MISMATCH"
	WarnApportionmentSkipped  = "APPORTIONMENT_SKIPPED"
	WarnNewItemWithoutCode    = "NEW_ITEM_WITHOUT_CODE"
)

// minAbsTolerance diferencia absoluta que siempre se acepta (redondeo a centavos del documento).
var minAbsTolerance = decimal.RequireFromString("0.01")

// Warning observación sobre el documento; Line es nil cuando aplica al documento entero.
type Warning struct {
	Code    string `json:"code"`
	Line    *int   `json:"line,omitempty"`
	Message string `json:"message"`
}

func lineWarning(code string, line int, format string, args ...any) Warning {
	return Warning{Code: code, Line: &line, Message: fmt.Sprintf(format, args...)}
}

// checkTotals compara los totales declarados con los calculados.
// tolerancePct es porcentual: 1 significa 1% del valor esperado.
func checkTotals(doc *entity.ImportedDocument, tolerancePct decimal.Decimal) []Warning {
	var warnings []Warning

	for i, it := range doc.Items {
		if !it.Quantity.IsPositive() || it.UnitValue.IsZero() || it.LineTotal.IsZero() {
			continue
		}
		computed := it.Quantity.Mul(it.UnitValue)
		if !withinTolerance(it.LineTotal, computed, tolerancePct) {
			warnings = append(warnings, lineWarning(WarnLineTotalMismatch, i,
				"cantidad x valor unitario = %s, total de línea declarado %s", computed, it.LineTotal))
		}
	}

	sum := doc.SumLineTotals()
	t := doc.Totals
	if !t.Products.IsZero() && !withinTolerance(t.Products, sum, tolerancePct) {
		warnings = append(warnings, Warning{
			Code:    WarnProductsTotalMismatch,
			Message: fmt.Sprintf("suma de líneas %s, total de productos declarado %s", sum, t.Products),
		})
	}
	if !t.Grand.IsZero() {
		expected := sum.Add(t.Freight).Add(t.Taxes).Sub(t.Discounts)
		if !withinTolerance(t.Grand, expected, tolerancePct) {
			warnings = append(warnings, Warning{
				Code:    WarnTotalsMismatch,
				Message: fmt.Sprintf("total calculado %s, total declarado %s", expected, t.Grand),
			})
		}
	}
	return warnings
}

func withinTolerance(actual, expected, tolerancePct decimal.Decimal) bool {
	allowed := expected.Abs().Mul(tolerancePct).Div(decimal.NewFromInt(100))
	if allowed.LessThan(minAbsTolerance) {
		allowed = minAbsTolerance
	}
	return actual.Sub(expected).Abs().LessThanOrEqual(allowed)
}
