package inventory

import (
	"fmt"

	"github.com/shopspring/decimal"

	"github.com/jhoicas/stock-reconciliation/internal/domain"
	"github.com/jhoicas/stock-reconciliation/internal/domain/entity"
)

// CostCalculator implementa la lógica de costo promedio ponderado (servicio de dominio).
// NuevoCosto = ((StockActual * CostoActual) + (CantEntrada * CostoEntrada)) / (StockActual + CantEntrada)
func CostCalculator(stockActual, costoActual, cantEntrada, costoEntrada decimal.Decimal) decimal.Decimal {
	sum := stockActual.Add(cantEntrada)
	if sum.LessThanOrEqual(decimal.Zero) {
		return decimal.Zero
	}
	num := stockActual.Mul(costoActual).Add(cantEntrada.Mul(costoEntrada))
	return num.Div(sum)
}

// Position es el par (cantidad, costo promedio) de un ítem en un instante.
type Position struct {
	Quantity    decimal.Decimal
	AverageCost decimal.Decimal
}

// Apply calcula la posición resultante de aplicar un movimiento. No modifica p.
// Para MovementAdjustment qty es la cantidad objetivo, no un delta.
func (p Position) Apply(kind entity.MovementKind, qty decimal.Decimal, unitCost *decimal.Decimal) (Position, error) {
	if err := ValidateMovement(kind, qty, unitCost); err != nil {
		return p, err
	}
	switch kind {
	case entity.MovementEntry:
		return p.entry(qty, *unitCost), nil
	case entity.MovementExit:
		return p.exit(qty)
	case entity.MovementAdjustment:
		return p.adjust(qty, unitCost), nil
	}
	return p, fmt.Errorf("%w: tipo de movimiento %s", domain.ErrValidation, kind)
}

// ValidateMovement valida los argumentos de un movimiento sin mirar el estado del ítem.
func ValidateMovement(kind entity.MovementKind, qty decimal.Decimal, unitCost *decimal.Decimal) error {
	if unitCost != nil && unitCost.IsNegative() {
		return fmt.Errorf("%w: costo unitario negativo", domain.ErrValidation)
	}
	switch kind {
	case entity.MovementEntry:
		if !qty.IsPositive() {
			return fmt.Errorf("%w: la cantidad de una entrada debe ser mayor a 0", domain.ErrValidation)
		}
		if unitCost == nil {
			return fmt.Errorf("%w: la entrada requiere costo unitario", domain.ErrValidation)
		}
	case entity.MovementExit:
		if !qty.IsPositive() {
			return fmt.Errorf("%w: la cantidad de una salida debe ser mayor a 0", domain.ErrValidation)
		}
	case entity.MovementAdjustment:
		if qty.IsNegative() {
			return fmt.Errorf("%w: la cantidad objetivo del ajuste no puede ser negativa", domain.ErrValidation)
		}
	default:
		return fmt.Errorf("%w: tipo de movimiento %s", domain.ErrValidation, kind)
	}
	return nil
}

func (p Position) entry(qty, unitCost decimal.Decimal) Position {
	return Position{
		Quantity:    p.Quantity.Add(qty),
		AverageCost: CostCalculator(p.Quantity, p.AverageCost, qty, unitCost),
	}
}

// exit no altera el promedio, salvo que el stock quede en 0.
func (p Position) exit(qty decimal.Decimal) (Position, error) {
	if p.Quantity.LessThan(qty) {
		return p, fmt.Errorf("%w: disponible %s, solicitado %s", domain.ErrInsufficientStock, p.Quantity, qty)
	}
	next := Position{Quantity: p.Quantity.Sub(qty), AverageCost: p.AverageCost}
	if next.Quantity.IsZero() {
		next.AverageCost = decimal.Zero
	}
	return next, nil
}

// adjust lleva la cantidad al objetivo. Subir con costo equivale a una entrada implícita;
// subir sin costo deja el promedio igual; bajar equivale a una salida implícita.
func (p Position) adjust(target decimal.Decimal, unitCost *decimal.Decimal) Position {
	switch target.Cmp(p.Quantity) {
	case 1:
		if unitCost != nil {
			return p.entry(target.Sub(p.Quantity), *unitCost)
		}
		return Position{Quantity: target, AverageCost: p.AverageCost}
	case -1:
		next, _ := p.exit(p.Quantity.Sub(target))
		return next
	}
	return p
}
