package inventory

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/jhoicas/stock-reconciliation/internal/domain"
	"github.com/jhoicas/stock-reconciliation/internal/domain/entity"
	"github.com/jhoicas/stock-reconciliation/internal/domain/inventory"
	"github.com/jhoicas/stock-reconciliation/internal/domain/repository"
	"github.com/jhoicas/stock-reconciliation/pkg/logger"
)

// DefaultMovementTimeout límite por movimiento (espera del bloqueo + transacción).
const DefaultMovementTimeout = 5 * time.Second

// MovementInput entrada para aplicar un movimiento.
// Para Adjustment, Quantity es la cantidad objetivo; UnitCost es obligatorio en Entry.
type MovementInput struct {
	ItemID    string
	Kind      entity.MovementKind
	Quantity  decimal.Decimal
	UnitCost  *decimal.Decimal
	Reason    string
	ActorID   string
	Reference string
}

// MovementResult estado del ítem después del movimiento y el registro creado.
type MovementResult struct {
	Item     *entity.CatalogItem
	Movement *entity.StockMovement
}

// Ledger es el único componente que modifica cantidad y costo promedio de los ítems.
// Serializa por ítem (bloqueo en proceso + SELECT FOR UPDATE) y deja el ítem intacto ante cualquier error.
type Ledger struct {
	txRunner  TxRunner
	items     repository.CatalogItemRepository
	movements repository.StockMovementRepository
	locks     *itemLocks
	timeout   time.Duration
	log       *logger.Logger
	now       func() time.Time
}

// NewLedger construye el ledger. timeout <= 0 usa DefaultMovementTimeout.
func NewLedger(
	txRunner TxRunner,
	items repository.CatalogItemRepository,
	movements repository.StockMovementRepository,
	timeout time.Duration,
	log *logger.Logger,
) *Ledger {
	if timeout <= 0 {
		timeout = DefaultMovementTimeout
	}
	return &Ledger{
		txRunner:  txRunner,
		items:     items,
		movements: movements,
		locks:     newItemLocks(),
		timeout:   timeout,
		log:       logger.OrNop(log).Component("ledger"),
		now:       func() time.Time { return time.Now().UTC() },
	}
}

// ApplyMovement valida, bloquea el ítem, calcula la nueva posición y persiste ítem y movimiento
// en una sola transacción. Errores: ErrValidation, ErrItemInactive, ErrItemNotFound,
// ErrInsufficientStock, timeout/cancelación del contexto o error de almacenamiento.
func (l *Ledger) ApplyMovement(ctx context.Context, in MovementInput) (*MovementResult, error) {
	in.ItemID = strings.TrimSpace(in.ItemID)
	if in.ItemID == "" {
		return nil, fmt.Errorf("%w: item_id es obligatorio", domain.ErrValidation)
	}
	if err := inventory.ValidateMovement(in.Kind, in.Quantity, in.UnitCost); err != nil {
		l.log.Debug().Err(err).Str("item_id", in.ItemID).Str("kind", in.Kind.String()).Msg("movimiento rechazado")
		return nil, err
	}

	ctx, cancel := context.WithTimeout(ctx, l.timeout)
	defer cancel()

	unlock, err := l.locks.lock(ctx, in.ItemID)
	if err != nil {
		return nil, fmt.Errorf("esperando turno del ítem %s: %w", in.ItemID, err)
	}
	defer unlock()

	var result *MovementResult
	err = l.txRunner.Run(ctx, func(items repository.CatalogItemRepository, movements repository.StockMovementRepository) error {
		// Bloquea la fila del ítem hasta el commit
		item, err := items.GetForUpdate(ctx, in.ItemID)
		if err != nil {
			return err
		}
		if !item.Active {
			return fmt.Errorf("%w: %s", domain.ErrItemInactive, item.ID)
		}

		prev := inventory.Position{Quantity: item.Quantity, AverageCost: item.AverageCost}
		next, err := prev.Apply(in.Kind, in.Quantity, in.UnitCost)
		if err != nil {
			return err
		}

		now := l.now()
		mov := &entity.StockMovement{
			ID:                  uuid.NewString(),
			ItemID:              item.ID,
			Kind:                in.Kind,
			Quantity:            in.Quantity,
			UnitCost:            in.UnitCost,
			PreviousQuantity:    prev.Quantity,
			NewQuantity:         next.Quantity,
			PreviousAverageCost: prev.AverageCost,
			NewAverageCost:      next.AverageCost,
			Reason:              in.Reason,
			ActorID:             in.ActorID,
			Reference:           in.Reference,
			CreatedAt:           now,
		}
		if err := items.UpdateStock(ctx, item.ID, next.Quantity, next.AverageCost); err != nil {
			return err
		}
		if err := movements.Create(ctx, mov); err != nil {
			return err
		}

		updated := *item
		updated.Quantity = next.Quantity
		updated.AverageCost = next.AverageCost
		updated.UpdatedAt = now
		result = &MovementResult{Item: &updated, Movement: mov}
		return nil
	})
	if err != nil {
		l.log.Debug().Err(err).Str("item_id", in.ItemID).Str("kind", in.Kind.String()).Msg("movimiento rechazado")
		return nil, err
	}

	l.log.Debug().
		Str("item_id", in.ItemID).
		Str("kind", in.Kind.String()).
		Str("qty", result.Item.Quantity.String()).
		Str("avg_cost", result.Item.AverageCost.String()).
		Msg("movimiento aplicado")
	return result, nil
}

// GetItem obtiene el estado actual de un ítem.
func (l *Ledger) GetItem(ctx context.Context, id string) (*entity.CatalogItem, error) {
	return l.items.GetByID(ctx, id)
}

// ListMovements devuelve el historial del ítem, más reciente primero.
func (l *Ledger) ListMovements(ctx context.Context, itemID string, limit, offset int) ([]*entity.StockMovement, error) {
	if _, err := l.items.GetByID(ctx, itemID); err != nil {
		return nil, err
	}
	if limit <= 0 || limit > 200 {
		limit = 50
	}
	if offset < 0 {
		offset = 0
	}
	return l.movements.ListByItem(ctx, itemID, limit, offset)
}
