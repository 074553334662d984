package usecase

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/jhoicas/stock-reconciliation/internal/application/dto"
	"github.com/jhoicas/stock-reconciliation/internal/domain"
	"github.com/jhoicas/stock-reconciliation/internal/domain/entity"
	"github.com/jhoicas/stock-reconciliation/internal/domain/repository"
)

// DefaultUnitMeasure unidad asignada cuando no se indica ninguna.
const DefaultUnitMeasure = "UN"

// CatalogUseCase casos de uso CRUD para ítems del catálogo. Cantidad y costo se manejan vía movimientos.
type CatalogUseCase struct {
	repo repository.CatalogItemRepository
	now  func() time.Time
}

// NewCatalogUseCase construye el caso de uso.
func NewCatalogUseCase(repo repository.CatalogItemRepository) *CatalogUseCase {
	return &CatalogUseCase{repo: repo, now: func() time.Time { return time.Now().UTC() }}
}

// Create crea un ítem nuevo con cantidad y costo en 0.
func (uc *CatalogUseCase) Create(ctx context.Context, in dto.CreateCatalogItemRequest) (*dto.CatalogItemResponse, error) {
	item, err := uc.CreateItem(ctx, in.Code, in.Description, in.UnitMeasure, in.MinQuantity)
	if err != nil {
		return nil, err
	}
	out := dto.CatalogItemFromEntity(item)
	return &out, nil
}

// CreateItem crea y persiste un ítem. El código, si viene, debe ser único.
func (uc *CatalogUseCase) CreateItem(ctx context.Context, code, description, unit string, minQty decimal.Decimal) (*entity.CatalogItem, error) {
	code = strings.TrimSpace(code)
	description = strings.TrimSpace(description)
	unit = strings.TrimSpace(unit)
	if description == "" {
		return nil, fmt.Errorf("%w: la descripción es obligatoria", domain.ErrValidation)
	}
	if minQty.IsNegative() {
		return nil, fmt.Errorf("%w: min_quantity no puede ser negativo", domain.ErrValidation)
	}
	if err := uc.ensureCodeFree(ctx, code, ""); err != nil {
		return nil, err
	}
	if unit == "" {
		unit = DefaultUnitMeasure
	}
	now := uc.now()
	item := &entity.CatalogItem{
		ID:          uuid.New().String(),
		Code:        code,
		Description: description,
		UnitMeasure: unit,
		Quantity:    decimal.Zero,
		AverageCost: decimal.Zero,
		MinQuantity: minQty,
		Active:      true,
		CreatedAt:   now,
		UpdatedAt:   now,
	}
	if err := uc.repo.Create(ctx, item); err != nil {
		return nil, err
	}
	return item, nil
}

// GetByID obtiene un ítem por ID.
func (uc *CatalogUseCase) GetByID(ctx context.Context, id string) (*dto.CatalogItemResponse, error) {
	item, err := uc.repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	out := dto.CatalogItemFromEntity(item)
	return &out, nil
}

// Update actualiza campos descriptivos. No permite modificar cantidad ni costo.
func (uc *CatalogUseCase) Update(ctx context.Context, id string, in dto.UpdateCatalogItemRequest) (*dto.CatalogItemResponse, error) {
	item, err := uc.repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if in.Code != nil {
		code := strings.TrimSpace(*in.Code)
		if err := uc.ensureCodeFree(ctx, code, item.ID); err != nil {
			return nil, err
		}
		item.Code = code
	}
	if in.Description != nil {
		desc := strings.TrimSpace(*in.Description)
		if desc == "" {
			return nil, fmt.Errorf("%w: la descripción es obligatoria", domain.ErrValidation)
		}
		item.Description = desc
	}
	if in.UnitMeasure != nil && strings.TrimSpace(*in.UnitMeasure) != "" {
		item.UnitMeasure = strings.TrimSpace(*in.UnitMeasure)
	}
	if in.MinQuantity != nil {
		if in.MinQuantity.IsNegative() {
			return nil, fmt.Errorf("%w: min_quantity no puede ser negativo", domain.ErrValidation)
		}
		item.MinQuantity = *in.MinQuantity
	}
	item.UpdatedAt = uc.now()
	if err := uc.repo.Update(ctx, item); err != nil {
		return nil, err
	}
	out := dto.CatalogItemFromEntity(item)
	return &out, nil
}

// List lista ítems con paginación (activos salvo includeInactive).
func (uc *CatalogUseCase) List(ctx context.Context, includeInactive bool, page dto.PageRequest) (*dto.CatalogItemListResponse, error) {
	page.DefaultPage()
	list, err := uc.repo.List(ctx, includeInactive, page.Limit, page.Offset)
	if err != nil {
		return nil, err
	}
	items := make([]dto.CatalogItemResponse, 0, len(list))
	for _, it := range list {
		items = append(items, dto.CatalogItemFromEntity(it))
	}
	return &dto.CatalogItemListResponse{
		Items: items,
		Page:  dto.PageResponse{Limit: page.Limit, Offset: page.Offset},
	}, nil
}

// ListActive devuelve el catálogo activo completo (entrada del matching).
func (uc *CatalogUseCase) ListActive(ctx context.Context) ([]*entity.CatalogItem, error) {
	return uc.repo.ListActive(ctx)
}

// Deactivate desactiva un ítem; nunca se borra porque el historial lo referencia.
func (uc *CatalogUseCase) Deactivate(ctx context.Context, id string) error {
	if _, err := uc.repo.GetByID(ctx, id); err != nil {
		return err
	}
	return uc.repo.Deactivate(ctx, id)
}

// ensureCodeFree falla con ErrDuplicate si otro ítem (distinto de selfID) ya usa code.
func (uc *CatalogUseCase) ensureCodeFree(ctx context.Context, code, selfID string) error {
	if code == "" {
		return nil
	}
	existing, err := uc.repo.GetByCode(ctx, code)
	switch {
	case errors.Is(err, domain.ErrItemNotFound):
		return nil
	case err != nil:
		return err
	case existing.ID != selfID:
		return fmt.Errorf("%w: código %q ya existe", domain.ErrDuplicate, code)
	}
	return nil
}
