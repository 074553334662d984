package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/shopspring/decimal"

	"github.com/jhoicas/stock-reconciliation/internal/domain"
	"github.com/jhoicas/stock-reconciliation/internal/domain/entity"
	"github.com/jhoicas/stock-reconciliation/internal/domain/repository"
)

var _ repository.CatalogItemRepository = (*CatalogItemRepo)(nil)

const catalogItemColumns = `id, COALESCE(code, ''), description, unit_measure, quantity, average_cost, min_quantity, active, created_at, updated_at`

// CatalogItemRepo implementación de CatalogItemRepository sobre PostgreSQL (usable con pool o tx).
type CatalogItemRepo struct {
	q Querier
}

// NewCatalogItemRepository construye el adaptador. Pasar pool o tx (Querier).
func NewCatalogItemRepository(q Querier) *CatalogItemRepo {
	return &CatalogItemRepo{q: q}
}

// Create persiste un ítem nuevo. Código repetido → domain.ErrDuplicate.
func (r *CatalogItemRepo) Create(ctx context.Context, item *entity.CatalogItem) error {
	query := `
		INSERT INTO catalog_items (id, code, description, unit_measure, quantity, average_cost, min_quantity, active, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)`
	_, err := r.q.Exec(ctx, query,
		item.ID, nullIfEmpty(item.Code), item.Description, item.UnitMeasure,
		item.Quantity, item.AverageCost, item.MinQuantity, item.Active, item.CreatedAt, item.UpdatedAt,
	)
	if err != nil {
		if isUniqueViolation(err) {
			return fmt.Errorf("%w: código %q", domain.ErrDuplicate, item.Code)
		}
		return fmt.Errorf("insert catalog item: %w", err)
	}
	return nil
}

// GetByID obtiene un ítem por ID.
func (r *CatalogItemRepo) GetByID(ctx context.Context, id string) (*entity.CatalogItem, error) {
	row := r.q.QueryRow(ctx, `SELECT `+catalogItemColumns+` FROM catalog_items WHERE id = $1`, id)
	return scanOne(row, "get catalog item", id)
}

// GetForUpdate obtiene el ítem y bloquea la fila hasta el fin de la transacción (SELECT FOR UPDATE).
func (r *CatalogItemRepo) GetForUpdate(ctx context.Context, id string) (*entity.CatalogItem, error) {
	row := r.q.QueryRow(ctx, `SELECT `+catalogItemColumns+` FROM catalog_items WHERE id = $1 FOR UPDATE`, id)
	return scanOne(row, "get catalog item for update", id)
}

// GetByCode obtiene un ítem (activo o no) por código.
func (r *CatalogItemRepo) GetByCode(ctx context.Context, code string) (*entity.CatalogItem, error) {
	row := r.q.QueryRow(ctx, `SELECT `+catalogItemColumns+` FROM catalog_items WHERE code = $1`, code)
	return scanOne(row, "get catalog item by code", code)
}

// ListActive lista todos los ítems activos ordenados por código e id.
func (r *CatalogItemRepo) ListActive(ctx context.Context) ([]*entity.CatalogItem, error) {
	rows, err := r.q.Query(ctx, `
		SELECT `+catalogItemColumns+`
		FROM catalog_items WHERE active ORDER BY COALESCE(code, ''), id`)
	if err != nil {
		return nil, fmt.Errorf("list active catalog items: %w", err)
	}
	return scanMany(rows)
}

// List lista ítems con paginación.
func (r *CatalogItemRepo) List(ctx context.Context, includeInactive bool, limit, offset int) ([]*entity.CatalogItem, error) {
	rows, err := r.q.Query(ctx, `
		SELECT `+catalogItemColumns+`
		FROM catalog_items WHERE ($1 OR active)
		ORDER BY COALESCE(code, ''), id LIMIT $2 OFFSET $3`,
		includeInactive, limit, offset)
	if err != nil {
		return nil, fmt.Errorf("list catalog items: %w", err)
	}
	return scanMany(rows)
}

// Update actualiza campos descriptivos. Cantidad y costo solo cambian vía UpdateStock.
func (r *CatalogItemRepo) Update(ctx context.Context, item *entity.CatalogItem) error {
	cmd, err := r.q.Exec(ctx, `
		UPDATE catalog_items SET code = $2, description = $3, unit_measure = $4, min_quantity = $5, updated_at = $6
		WHERE id = $1`,
		item.ID, nullIfEmpty(item.Code), item.Description, item.UnitMeasure, item.MinQuantity, item.UpdatedAt,
	)
	if err != nil {
		if isUniqueViolation(err) {
			return fmt.Errorf("%w: código %q", domain.ErrDuplicate, item.Code)
		}
		return fmt.Errorf("update catalog item: %w", err)
	}
	if cmd.RowsAffected() == 0 {
		return fmt.Errorf("%w: %s", domain.ErrItemNotFound, item.ID)
	}
	return nil
}

// UpdateStock fija cantidad y costo promedio (usado por el ledger dentro de su transacción).
func (r *CatalogItemRepo) UpdateStock(ctx context.Context, id string, quantity, averageCost decimal.Decimal) error {
	cmd, err := r.q.Exec(ctx,
		`UPDATE catalog_items SET quantity = $2, average_cost = $3, updated_at = now() WHERE id = $1`,
		id, quantity, averageCost,
	)
	if err != nil {
		return fmt.Errorf("update catalog item stock: %w", err)
	}
	if cmd.RowsAffected() == 0 {
		return fmt.Errorf("%w: %s", domain.ErrItemNotFound, id)
	}
	return nil
}

// Deactivate marca el ítem como inactivo.
func (r *CatalogItemRepo) Deactivate(ctx context.Context, id string) error {
	cmd, err := r.q.Exec(ctx, `UPDATE catalog_items SET active = FALSE, updated_at = now() WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("deactivate catalog item: %w", err)
	}
	if cmd.RowsAffected() == 0 {
		return fmt.Errorf("%w: %s", domain.ErrItemNotFound, id)
	}
	return nil
}

// ListBelowMinimum ítems activos con mínimo definido y cantidad en o por debajo de él.
func (r *CatalogItemRepo) ListBelowMinimum(ctx context.Context) ([]*entity.CatalogItem, error) {
	rows, err := r.q.Query(ctx, `
		SELECT `+catalogItemColumns+`
		FROM catalog_items
		WHERE active AND min_quantity > 0 AND quantity <= min_quantity
		ORDER BY (min_quantity - quantity) DESC, COALESCE(code, '')`)
	if err != nil {
		return nil, fmt.Errorf("list catalog items below minimum: %w", err)
	}
	return scanMany(rows)
}

func scanItem(row pgx.Row, it *entity.CatalogItem) error {
	return row.Scan(
		&it.ID, &it.Code, &it.Description, &it.UnitMeasure, &it.Quantity, &it.AverageCost,
		&it.MinQuantity, &it.Active, &it.CreatedAt, &it.UpdatedAt,
	)
}

func scanOne(row pgx.Row, op, key string) (*entity.CatalogItem, error) {
	var it entity.CatalogItem
	if err := scanItem(row, &it); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, fmt.Errorf("%w: %s", domain.ErrItemNotFound, key)
		}
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	return &it, nil
}

func scanMany(rows pgx.Rows) ([]*entity.CatalogItem, error) {
	defer rows.Close()
	var list []*entity.CatalogItem
	for rows.Next() {
		var it entity.CatalogItem
		if err := scanItem(rows, &it); err != nil {
			return nil, fmt.Errorf("scan catalog item: %w", err)
		}
		list = append(list, &it)
	}
	return list, rows.Err()
}
