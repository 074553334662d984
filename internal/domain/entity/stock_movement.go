package entity

import (
	"fmt"
	"strings"
	"time"

	"github.com/shopspring/decimal"
)

// MovementKind es el tipo de movimiento de inventario. Conjunto cerrado: Entry, Exit, Adjustment.
type MovementKind uint8

const (
	MovementEntry      MovementKind = iota + 1 // entrada
	MovementExit                               // salida
	MovementAdjustment                         // ajuste a una cantidad objetivo
)

// String devuelve la forma textual persistida ("entry", "exit", "adjustment").
func (k MovementKind) String() string {
	switch k {
	case MovementEntry:
		return "entry"
	case MovementExit:
		return "exit"
	case MovementAdjustment:
		return "adjustment"
	}
	return fmt.Sprintf("MovementKind(%d)", uint8(k))
}

// Valid indica si k es uno de los tipos conocidos.
func (k MovementKind) Valid() bool {
	return k >= MovementEntry && k <= MovementAdjustment
}

// ParseMovementKind convierte la forma textual en MovementKind.
func ParseMovementKind(s string) (MovementKind, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "entry", "in":
		return MovementEntry, nil
	case "exit", "out":
		return MovementExit, nil
	case "adjustment", "adjust":
		return MovementAdjustment, nil
	}
	return 0, fmt.Errorf("tipo de movimiento desconocido: %q", s)
}

// MarshalText permite serializar el tipo como texto en JSON.
func (k MovementKind) MarshalText() ([]byte, error) {
	if !k.Valid() {
		return nil, fmt.Errorf("tipo de movimiento inválido: %d", uint8(k))
	}
	return []byte(k.String()), nil
}

// UnmarshalText es la contraparte de MarshalText.
func (k *MovementKind) UnmarshalText(b []byte) error {
	parsed, err := ParseMovementKind(string(b))
	if err != nil {
		return err
	}
	*k = parsed
	return nil
}

// StockMovement registro inmutable de un cambio de cantidad sobre un CatalogItem.
// Para Entry/Exit Quantity es la magnitud; para Adjustment es la cantidad objetivo.
type StockMovement struct {
	ID                  string
	ItemID              string
	Kind                MovementKind
	Quantity            decimal.Decimal
	UnitCost            *decimal.Decimal // obligatorio en Entry
	PreviousQuantity    decimal.Decimal
	NewQuantity         decimal.Decimal
	PreviousAverageCost decimal.Decimal
	NewAverageCost      decimal.Decimal
	Reason              string
	ActorID             string
	Reference           string // número de documento cuando viene de una importación
	CreatedAt           time.Time
}

// Delta devuelve el cambio neto de cantidad que produjo el movimiento.
func (m *StockMovement) Delta() decimal.Decimal {
	return m.NewQuantity.Sub(m.PreviousQuantity)
}
