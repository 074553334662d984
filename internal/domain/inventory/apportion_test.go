package inventory_test

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jhoicas/stock-reconciliation/internal/domain/inventory"
)

// Dos líneas de 100 y 300 con flete 40 por valor: 10 y 30.
func TestApportion_PorValor(t *testing.T) {
	lines := []inventory.ApportionLine{
		{Quantity: d("10"), LineTotal: d("100")},
		{Quantity: d("3"), LineTotal: d("300")},
	}
	res, applied := inventory.Apportion(lines, d("40"), inventory.BasisValue, 4)
	require.True(t, applied)
	require.Len(t, res, 2)

	assert.True(t, res[0].Share.Equal(d("10")), "got %s", res[0].Share)
	assert.True(t, res[1].Share.Equal(d("30")), "got %s", res[1].Share)
	assert.True(t, res[0].UnitCost.Equal(d("11")))
	assert.True(t, res[1].UnitCost.Equal(d("110")))
}

func TestApportion_PorCantidad(t *testing.T) {
	lines := []inventory.ApportionLine{
		{Quantity: d("1"), LineTotal: d("100")},
		{Quantity: d("3"), LineTotal: d("30")},
	}
	res, applied := inventory.Apportion(lines, d("8"), inventory.BasisQuantity, 4)
	require.True(t, applied)
	assert.True(t, res[0].Share.Equal(d("2")))
	assert.True(t, res[1].Share.Equal(d("6")))
	assert.True(t, res[1].UnitCost.Equal(d("12")))
}

func TestApportion_Conservacion(t *testing.T) {
	lines := []inventory.ApportionLine{
		{Quantity: d("3"), LineTotal: d("33.33")},
		{Quantity: d("7"), LineTotal: d("12.01")},
		{Quantity: d("1"), LineTotal: d("0.99")},
		{Quantity: d("9"), LineTotal: d("77")},
	}
	charge := d("17.23")
	for _, basis := range []inventory.Basis{inventory.BasisValue, inventory.BasisQuantity} {
		res, applied := inventory.Apportion(lines, charge, basis, 2)
		require.True(t, applied)
		sum := decimal.Zero
		for _, r := range res {
			sum = sum.Add(r.Share)
		}
		diff, _ := sum.Sub(charge).Abs().Float64()
		assert.Less(t, diff, 1e-9, "basis %s", basis)
	}
}

func TestApportion_SinCargoOBaseCero(t *testing.T) {
	lines := []inventory.ApportionLine{{Quantity: d("4"), LineTotal: d("10")}}

	res, applied := inventory.Apportion(lines, decimal.Zero, inventory.BasisValue, 4)
	assert.False(t, applied)
	assert.True(t, res[0].Share.IsZero())
	assert.True(t, res[0].UnitCost.Equal(d("2.5")))

	zeroValue := []inventory.ApportionLine{{Quantity: d("4"), LineTotal: decimal.Zero}}
	res, applied = inventory.Apportion(zeroValue, d("5"), inventory.BasisValue, 4)
	assert.False(t, applied)
	assert.True(t, res[0].Share.IsZero())
}

func TestApportion_CantidadCeroSeOmite(t *testing.T) {
	lines := []inventory.ApportionLine{
		{Quantity: d("2"), LineTotal: d("50")},
		{Quantity: decimal.Zero, LineTotal: d("50")},
	}
	res, applied := inventory.Apportion(lines, d("10"), inventory.BasisValue, 4)
	require.True(t, applied)
	assert.False(t, res[0].Skipped)
	assert.True(t, res[1].Skipped)
	assert.True(t, res[1].Share.IsZero())
	assert.True(t, res[0].Share.Equal(d("10")), "la porción de la línea omitida se reparte entre el resto")
	assert.True(t, res[0].UnitCost.Equal(d("30")))
}

func TestApportion_RedondeoSoloAlFinal(t *testing.T) {
	lines := []inventory.ApportionLine{
		{Quantity: d("3"), LineTotal: d("10")},
		{Quantity: d("3"), LineTotal: d("10")},
		{Quantity: d("3"), LineTotal: d("10")},
	}
	res, _ := inventory.Apportion(lines, d("1"), inventory.BasisValue, 2)
	// (10 + 0.3333...) / 3 = 3.4444... -> 3.44
	for _, r := range res {
		assert.Equal(t, "3.44", r.UnitCost.String())
	}
}

func TestParseBasis(t *testing.T) {
	b, err := inventory.ParseBasis("")
	require.NoError(t, err)
	assert.Equal(t, inventory.BasisValue, b)

	b, err = inventory.ParseBasis("Quantity")
	require.NoError(t, err)
	assert.Equal(t, inventory.BasisQuantity, b)

	_, err = inventory.ParseBasis("peso")
	assert.Error(t, err)
}
