package inventory

import (
	"fmt"
	"strings"

	"github.com/shopspring/decimal"
)

// Basis criterio de prorrateo de un cargo compartido (flete).
type Basis uint8

const (
	BasisValue    Basis = iota + 1 // proporcional al total de línea
	BasisQuantity                  // proporcional a la cantidad
)

func (b Basis) String() string {
	switch b {
	case BasisValue:
		return "value"
	case BasisQuantity:
		return "quantity"
	}
	return fmt.Sprintf("Basis(%d)", uint8(b))
}

// ParseBasis acepta "value" / "quantity". Vacío equivale a BasisValue.
func ParseBasis(s string) (Basis, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "value", "byvalue":
		return BasisValue, nil
	case "quantity", "byquantity":
		return BasisQuantity, nil
	}
	return 0, fmt.Errorf("base de prorrateo desconocida: %q", s)
}

// ApportionLine entrada del prorrateo: una línea con su total y cantidad.
type ApportionLine struct {
	Quantity  decimal.Decimal
	LineTotal decimal.Decimal
}

// ApportionResult resultado por línea, en el mismo orden de la entrada.
type ApportionResult struct {
	Share    decimal.Decimal // porción del cargo asignada (sin redondear)
	UnitCost decimal.Decimal // costo unitario efectivo, redondeado a places
	Skipped  bool            // cantidad 0: no puede recibir costo unitario, requiere revisión manual
}

// Apportion reparte charge entre las líneas según basis.
// Las líneas con cantidad 0 quedan fuera de la base y se marcan Skipped, de modo que la
// suma de las porciones sigue siendo igual a charge. Solo se redondea el costo unitario final.
// applied es false cuando el cargo o la base total son 0; en ese caso las porciones son 0.
func Apportion(lines []ApportionLine, charge decimal.Decimal, basis Basis, places int32) (results []ApportionResult, applied bool) {
	results = make([]ApportionResult, len(lines))

	total := decimal.Zero
	for i, l := range lines {
		if !l.Quantity.IsPositive() {
			results[i].Skipped = true
			continue
		}
		total = total.Add(basisOf(l, basis))
	}

	applied = !charge.IsZero() && total.IsPositive()
	for i, l := range lines {
		if results[i].Skipped {
			continue
		}
		if applied {
			results[i].Share = basisOf(l, basis).Div(total).Mul(charge)
		}
		results[i].UnitCost = l.LineTotal.Add(results[i].Share).Div(l.Quantity).Round(places)
	}
	return results, applied
}

func basisOf(l ApportionLine, basis Basis) decimal.Decimal {
	if basis == BasisQuantity {
		return l.Quantity
	}
	return l.LineTotal
}
