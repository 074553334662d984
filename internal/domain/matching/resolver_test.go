package matching_test

import (
	"context"
	"fmt"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jhoicas/stock-reconciliation/internal/domain/entity"
	"github.com/jhoicas/stock-reconciliation/internal/domain/matching"
)

func item(id, code, desc string) *entity.CatalogItem {
	return &entity.CatalogItem{ID: id, Code: code, Description: desc, Active: true}
}

func line(code, desc string) entity.ImportedLineItem {
	return entity.ImportedLineItem{
		SupplierCode: code,
		Description:  desc,
		Quantity:     decimal.NewFromInt(1),
		UnitValue:    decimal.NewFromInt(1),
		LineTotal:    decimal.NewFromInt(1),
	}
}

func catalog() []*entity.CatalogItem {
	return []*entity.CatalogItem{
		item("i-1", "FO-XYZ", "Filtro de óleo XYZ"),
		item("i-2", "PAR-M8", "Parafuso M8 Sextavado"),
		item("i-3", "", "Arruela lisa 8mm"),
	}
}

func TestResolve_PrefijoAutoAceptado(t *testing.T) {
	r := matching.NewResolver(matching.DefaultResolverConfig())
	c := r.Resolve(0, line("", "PARAFUSO M8"), matching.NewCatalogIndex(catalog()))

	assert.Equal(t, "i-2", c.ItemID)
	assert.Equal(t, entity.MatchedByDescription, c.MatchedBy)
	assert.GreaterOrEqual(t, c.Score, 0.85)
	assert.True(t, c.AutoAccepted)
	assert.False(t, c.RequiresNewItem)
}

func TestResolve_SinPrefijoNoAlcanzaUmbral(t *testing.T) {
	cfg := matching.DefaultResolverConfig()
	cfg.PrefixBoost = false
	r := matching.NewResolver(cfg)
	c := r.Resolve(0, line("", "PARAFUSO M8"), matching.NewCatalogIndex(catalog()))

	assert.Equal(t, "i-2", c.ItemID, "la sugerencia se conserva")
	assert.False(t, c.AutoAccepted)
	assert.True(t, c.RequiresNewItem)
}

func TestResolve_CatalogoVacio(t *testing.T) {
	r := matching.NewResolver(matching.DefaultResolverConfig())
	c := r.Resolve(3, line("", "XYZ123UNKNOWN"), matching.NewCatalogIndex(nil))

	assert.Equal(t, 3, c.Line)
	assert.True(t, c.RequiresNewItem)
	assert.False(t, c.AutoAccepted)
	assert.False(t, c.HasItem())
	assert.Equal(t, entity.MatchedByNone, c.MatchedBy)
}

func TestResolve_PorCodigo(t *testing.T) {
	r := matching.NewResolver(matching.DefaultResolverConfig())
	c := r.Resolve(0, line(" FO-XYZ ", "descripción que no se parece"), matching.NewCatalogIndex(catalog()))

	assert.Equal(t, "i-1", c.ItemID)
	assert.Equal(t, entity.MatchedByCode, c.MatchedBy)
	assert.Equal(t, 1.0, c.Score)
	assert.True(t, c.AutoAccepted)
}

func TestResolve_IgnoraInactivos(t *testing.T) {
	items := catalog()
	items[1].Active = false
	r := matching.NewResolver(matching.DefaultResolverConfig())
	c := r.Resolve(0, line("PAR-M8", "Parafuso M8 Sextavado"), matching.NewCatalogIndex(items))

	assert.NotEqual(t, "i-2", c.ItemID)
	assert.False(t, c.AutoAccepted)
}

func TestResolve_EmpateGanaElPrimero(t *testing.T) {
	items := []*entity.CatalogItem{
		item("b", "B", "Tuerca M8"),
		item("a", "A", "Tuerca M8"),
	}
	r := matching.NewResolver(matching.DefaultResolverConfig())
	c := r.Resolve(0, line("", "tuerca m8"), matching.NewCatalogIndex(items))
	assert.Equal(t, "a", c.ItemID, "orden por código")
}

func TestResolveAll_IdempotenteYOrdenado(t *testing.T) {
	lines := make([]entity.ImportedLineItem, 0, 50)
	for i := 0; i < 50; i++ {
		switch i % 3 {
		case 0:
			lines = append(lines, line("", "PARAFUSO M8"))
		case 1:
			lines = append(lines, line("FO-XYZ", "x"))
		default:
			lines = append(lines, line("", fmt.Sprintf("desconocido %d", i)))
		}
	}
	r := matching.NewResolver(matching.ResolverConfig{Workers: 8, PrefixBoost: true})

	first, err := r.ResolveAll(context.Background(), lines, catalog())
	require.NoError(t, err)
	second, err := r.ResolveAll(context.Background(), lines, catalog())
	require.NoError(t, err)

	require.Len(t, first, len(lines))
	assert.Equal(t, first, second)
	for i, c := range first {
		assert.Equal(t, i, c.Line)
	}
	assert.Equal(t, "i-2", first[0].ItemID)
	assert.Equal(t, entity.MatchedByCode, first[1].MatchedBy)
}

func TestResolveAll_Cancelado(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	r := matching.NewResolver(matching.DefaultResolverConfig())

	_, err := r.ResolveAll(ctx, []entity.ImportedLineItem{line("", "a")}, catalog())
	assert.ErrorIs(t, err, context.Canceled)
}

func TestNewResolver_UmbralFueraDeRango(t *testing.T) {
	r := matching.NewResolver(matching.ResolverConfig{AutoAcceptThreshold: 1.5})
	assert.Equal(t, matching.DefaultAutoAcceptThreshold, r.Threshold())
}
