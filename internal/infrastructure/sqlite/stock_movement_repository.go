package sqlite

import (
	"context"
	"errors"
	"fmt"

	"gorm.io/gorm"

	"github.com/jhoicas/stock-reconciliation/internal/domain"
	"github.com/jhoicas/stock-reconciliation/internal/domain/entity"
	"github.com/jhoicas/stock-reconciliation/internal/domain/repository"
)

var _ repository.StockMovementRepository = (*StockMovementRepo)(nil)

// StockMovementRepo implementación de StockMovementRepository sobre gorm/SQLite.
type StockMovementRepo struct {
	db *gorm.DB
}

// NewStockMovementRepository construye el adaptador.
func NewStockMovementRepository(db *gorm.DB) *StockMovementRepo {
	return &StockMovementRepo{db: db}
}

func (r *StockMovementRepo) Create(ctx context.Context, m *entity.StockMovement) error {
	row := stockMovementModel{
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
	if err := r.db.WithContext(ctx).Create(&row).Error; err != nil {
		return fmt.Errorf("insert stock movement: %w", err)
	}
	return nil
}

func (r *StockMovementRepo) GetByID(ctx context.Context, id string) (*entity.StockMovement, error) {
	var row stockMovementModel
	if err := r.db.WithContext(ctx).Where("id = ?", id).Take(&row).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, fmt.Errorf("%w: %s", domain.ErrMovementNotFound, id)
		}
		return nil, fmt.Errorf("get stock movement: %w", err)
	}
	return fromMovementModel(row)
}

// ListByItem más reciente primero; rowid desempata movimientos con la misma marca de tiempo.
func (r *StockMovementRepo) ListByItem(ctx context.Context, itemID string, limit, offset int) ([]*entity.StockMovement, error) {
	var rows []stockMovementModel
	err := r.db.WithContext(ctx).
		Where("item_id = ?", itemID).
		Order("created_at DESC, rowid DESC").
		Limit(limit).Offset(offset).
		Find(&rows).Error
	if err != nil {
		return nil, fmt.Errorf("list stock movements: %w", err)
	}
	out := make([]*entity.StockMovement, 0, len(rows))
	for _, row := range rows {
		m, err := fromMovementModel(row)
		if err != nil {
			return nil, err
		}
		out = append(out, m)
	}
	return out, nil
}

func fromMovementModel(row stockMovementModel) (*entity.StockMovement, error) {
	kind, err := entity.ParseMovementKind(row.Kind)
	if err != nil {
		return nil, fmt.Errorf("stock movement %s: %w", row.ID, err)
	}
	return &entity.StockMovement{
		ID:                  row.ID,
		ItemID:              row.ItemID,
		Kind:                kind,
		Quantity:            row.Quantity,
		UnitCost:            row.UnitCost,
		PreviousQuantity:    row.PreviousQuantity,
		NewQuantity:         row.NewQuantity,
		PreviousAverageCost: row.PreviousAverageCost,
		NewAverageCost:      row.NewAverageCost,
		Reason:              row.Reason,
		ActorID:             row.ActorID,
		Reference:           row.Reference,
		CreatedAt:           row.CreatedAt,
	}, nil
}
