package sqlite

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/jhoicas/stock-reconciliation/internal/domain"
	"github.com/jhoicas/stock-reconciliation/internal/domain/entity"
	"github.com/jhoicas/stock-reconciliation/internal/domain/repository"
)

var _ repository.CatalogItemRepository = (*CatalogItemRepo)(nil)

// CatalogItemRepo implementación de CatalogItemRepository sobre gorm/SQLite (usable con db o tx).
type CatalogItemRepo struct {
	db *gorm.DB
}

// NewCatalogItemRepository construye el adaptador.
func NewCatalogItemRepository(db *gorm.DB) *CatalogItemRepo {
	return &CatalogItemRepo{db: db}
}

func (r *CatalogItemRepo) Create(ctx context.Context, item *entity.CatalogItem) error {
	m := toItemModel(item)
	if err := r.db.WithContext(ctx).Create(&m).Error; err != nil {
		if isDuplicate(err) {
			return fmt.Errorf("%w: código %q", domain.ErrDuplicate, item.Code)
		}
		return fmt.Errorf("insert catalog item: %w", err)
	}
	return nil
}

func (r *CatalogItemRepo) GetByID(ctx context.Context, id string) (*entity.CatalogItem, error) {
	return r.first(r.db.WithContext(ctx).Where("id = ?", id), "get catalog item", id)
}

// GetForUpdate en SQLite el bloqueo lo da la conexión única; la cláusula se omite al generar el SQL.
func (r *CatalogItemRepo) GetForUpdate(ctx context.Context, id string) (*entity.CatalogItem, error) {
	q := r.db.WithContext(ctx).Clauses(clause.Locking{Strength: "UPDATE"}).Where("id = ?", id)
	return r.first(q, "get catalog item for update", id)
}

func (r *CatalogItemRepo) GetByCode(ctx context.Context, code string) (*entity.CatalogItem, error) {
	return r.first(r.db.WithContext(ctx).Where("code = ?", code), "get catalog item by code", code)
}

func (r *CatalogItemRepo) ListActive(ctx context.Context) ([]*entity.CatalogItem, error) {
	var rows []catalogItemModel
	err := r.db.WithContext(ctx).
		Where("active = ?", true).
		Order("COALESCE(code, '') ASC, id ASC").
		Find(&rows).Error
	if err != nil {
		return nil, fmt.Errorf("list active catalog items: %w", err)
	}
	return fromItemModels(rows), nil
}

func (r *CatalogItemRepo) List(ctx context.Context, includeInactive bool, limit, offset int) ([]*entity.CatalogItem, error) {
	q := r.db.WithContext(ctx).Order("COALESCE(code, '') ASC, id ASC").Limit(limit).Offset(offset)
	if !includeInactive {
		q = q.Where("active = ?", true)
	}
	var rows []catalogItemModel
	if err := q.Find(&rows).Error; err != nil {
		return nil, fmt.Errorf("list catalog items: %w", err)
	}
	return fromItemModels(rows), nil
}

func (r *CatalogItemRepo) Update(ctx context.Context, item *entity.CatalogItem) error {
	res := r.db.WithContext(ctx).Model(&catalogItemModel{}).Where("id = ?", item.ID).Updates(map[string]any{
		"code":         nullIfEmpty(item.Code),
		"description":  item.Description,
		"unit_measure": item.UnitMeasure,
		"min_quantity": item.MinQuantity,
		"updated_at":   item.UpdatedAt,
	})
	if res.Error != nil {
		if isDuplicate(res.Error) {
			return fmt.Errorf("%w: código %q", domain.ErrDuplicate, item.Code)
		}
		return fmt.Errorf("update catalog item: %w", res.Error)
	}
	if res.RowsAffected == 0 {
		return fmt.Errorf("%w: %s", domain.ErrItemNotFound, item.ID)
	}
	return nil
}

func (r *CatalogItemRepo) UpdateStock(ctx context.Context, id string, quantity, averageCost decimal.Decimal) error {
	res := r.db.WithContext(ctx).Model(&catalogItemModel{}).Where("id = ?", id).Updates(map[string]any{
		"quantity":     quantity,
		"average_cost": averageCost,
		"updated_at":   time.Now().UTC(),
	})
	if res.Error != nil {
		return fmt.Errorf("update catalog item stock: %w", res.Error)
	}
	if res.RowsAffected == 0 {
		return fmt.Errorf("%w: %s", domain.ErrItemNotFound, id)
	}
	return nil
}

func (r *CatalogItemRepo) Deactivate(ctx context.Context, id string) error {
	res := r.db.WithContext(ctx).Model(&catalogItemModel{}).Where("id = ?", id).Updates(map[string]any{
		"active":     false,
		"updated_at": time.Now().UTC(),
	})
	if res.Error != nil {
		return fmt.Errorf("deactivate catalog item: %w", res.Error)
	}
	if res.RowsAffected == 0 {
		return fmt.Errorf("%w: %s", domain.ErrItemNotFound, id)
	}
	return nil
}

// ListBelowMinimum filtra en memoria: los decimales se guardan como texto y SQLite los compararía como cadenas.
func (r *CatalogItemRepo) ListBelowMinimum(ctx context.Context) ([]*entity.CatalogItem, error) {
	active, err := r.ListActive(ctx)
	if err != nil {
		return nil, err
	}
	out := make([]*entity.CatalogItem, 0)
	for _, it := range active {
		if it.BelowMinimum() {
			out = append(out, it)
		}
	}
	return out, nil
}

func (r *CatalogItemRepo) first(q *gorm.DB, op, key string) (*entity.CatalogItem, error) {
	var m catalogItemModel
	if err := q.Take(&m).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, fmt.Errorf("%w: %s", domain.ErrItemNotFound, key)
		}
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	return fromItemModel(m), nil
}

func toItemModel(it *entity.CatalogItem) catalogItemModel {
	return catalogItemModel{
		ID:          it.ID,
		Code:        nullIfEmpty(it.Code),
		Description: it.Description,
		UnitMeasure: it.UnitMeasure,
		Quantity:    it.Quantity,
		AverageCost: it.AverageCost,
		MinQuantity: it.MinQuantity,
		Active:      it.Active,
		CreatedAt:   it.CreatedAt,
		UpdatedAt:   it.UpdatedAt,
	}
}

func fromItemModel(m catalogItemModel) *entity.CatalogItem {
	it := &entity.CatalogItem{
		ID:          m.ID,
		Description: m.Description,
		UnitMeasure: m.UnitMeasure,
		Quantity:    m.Quantity,
		AverageCost: m.AverageCost,
		MinQuantity: m.MinQuantity,
		Active:      m.Active,
		CreatedAt:   m.CreatedAt,
		UpdatedAt:   m.UpdatedAt,
	}
	if m.Code != nil {
		it.Code = *m.Code
	}
	return it
}

func fromItemModels(rows []catalogItemModel) []*entity.CatalogItem {
	out := make([]*entity.CatalogItem, 0, len(rows))
	for _, m := range rows {
		out = append(out, fromItemModel(m))
	}
	return out
}

func nullIfEmpty(s string) *string {
	if s == "" {
		return nil
	}
	return &s
}

func isDuplicate(err error) bool {
	return errors.Is(err, gorm.ErrDuplicatedKey) || strings.Contains(err.Error(), "UNIQUE constraint failed")
}
