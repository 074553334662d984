package inventory_test

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	appinventory "github.com/jhoicas/stock-reconciliation/internal/application/inventory"
	"github.com/jhoicas/stock-reconciliation/internal/domain"
	"github.com/jhoicas/stock-reconciliation/internal/domain/entity"
	"github.com/jhoicas/stock-reconciliation/internal/infrastructure/sqlite"
	"github.com/jhoicas/stock-reconciliation/pkg/logger"
)

type fixture struct {
	db     *gorm.DB
	ledger *appinventory.Ledger
	items  *sqlite.CatalogItemRepo
	moves  *sqlite.StockMovementRepo
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	db, err := sqlite.Open("file:" + uuid.NewString() + "?mode=memory&cache=shared")
	require.NoError(t, err)
	t.Cleanup(func() { _ = sqlite.Close(db) })

	items := sqlite.NewCatalogItemRepository(db)
	moves := sqlite.NewStockMovementRepository(db)
	return &fixture{
		db:     db,
		ledger: appinventory.NewLedger(sqlite.NewTxRunner(db), items, moves, 5*time.Second, logger.Nop()),
		items:  items,
		moves:  moves,
	}
}

func (f *fixture) seed(t *testing.T, code, desc, qty, avg string) *entity.CatalogItem {
	t.Helper()
	now := time.Now().UTC()
	it := &entity.CatalogItem{
		ID:          uuid.NewString(),
		Code:        code,
		Description: desc,
		UnitMeasure: "UN",
		Quantity:    d(qty),
		AverageCost: d(avg),
		MinQuantity: decimal.Zero,
		Active:      true,
		CreatedAt:   now,
		UpdatedAt:   now,
	}
	require.NoError(t, f.items.Create(context.Background(), it))
	return it
}

func d(s string) decimal.Decimal { return decimal.RequireFromString(s) }

func ptr(v decimal.Decimal) *decimal.Decimal { return &v }

func TestLedger_EntradaRecalculaPromedio(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	it := f.seed(t, "FO-XYZ", "Filtro de óleo XYZ", "10", "5.00")

	res, err := f.ledger.ApplyMovement(ctx, appinventory.MovementInput{
		ItemID: it.ID, Kind: entity.MovementEntry, Quantity: d("5"), UnitCost: ptr(d("7.00")), ActorID: "u-1",
	})
	require.NoError(t, err)

	assert.True(t, res.Item.Quantity.Equal(d("15")))
	assert.Equal(t, "5.67", res.Item.AverageCost.StringFixed(2))
	assert.True(t, res.Movement.PreviousQuantity.Equal(d("10")))
	assert.True(t, res.Movement.NewQuantity.Equal(d("15")))
	assert.True(t, res.Movement.PreviousAverageCost.Equal(d("5")))
	assert.Equal(t, "u-1", res.Movement.ActorID)

	stored, err := f.ledger.GetItem(ctx, it.ID)
	require.NoError(t, err)
	assert.True(t, stored.Quantity.Equal(d("15")))
	assert.True(t, stored.AverageCost.Equal(res.Item.AverageCost), "el promedio se persiste sin pérdida")
}

func TestLedger_SalidaInsuficienteNoModifica(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	it := f.seed(t, "FO-XYZ", "Filtro de óleo XYZ", "10", "5.00")

	_, err := f.ledger.ApplyMovement(ctx, appinventory.MovementInput{
		ItemID: it.ID, Kind: entity.MovementEntry, Quantity: d("5"), UnitCost: ptr(d("7")),
	})
	require.NoError(t, err)
	before, err := f.ledger.GetItem(ctx, it.ID)
	require.NoError(t, err)

	_, err = f.ledger.ApplyMovement(ctx, appinventory.MovementInput{
		ItemID: it.ID, Kind: entity.MovementExit, Quantity: d("20"),
	})
	require.ErrorIs(t, err, domain.ErrInsufficientStock)
	assert.Equal(t, domain.CodeInsufficientStock, domain.Code(err))

	after, err := f.ledger.GetItem(ctx, it.ID)
	require.NoError(t, err)
	assert.True(t, after.Quantity.Equal(d("15")))
	assert.True(t, after.AverageCost.Equal(before.AverageCost))

	history, err := f.ledger.ListMovements(ctx, it.ID, 10, 0)
	require.NoError(t, err)
	assert.Len(t, history, 1, "el rechazo no deja movimiento")
}

func TestLedger_Errores(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	it := f.seed(t, "A", "Arruela", "1", "1")

	_, err := f.ledger.ApplyMovement(ctx, appinventory.MovementInput{
		ItemID: uuid.NewString(), Kind: entity.MovementExit, Quantity: d("1"),
	})
	assert.ErrorIs(t, err, domain.ErrItemNotFound)

	_, err = f.ledger.ApplyMovement(ctx, appinventory.MovementInput{
		ItemID: it.ID, Kind: entity.MovementEntry, Quantity: d("1"),
	})
	assert.ErrorIs(t, err, domain.ErrValidation, "entrada sin costo")

	_, err = f.ledger.ApplyMovement(ctx, appinventory.MovementInput{
		ItemID: "", Kind: entity.MovementExit, Quantity: d("1"),
	})
	assert.ErrorIs(t, err, domain.ErrValidation)

	require.NoError(t, f.items.Deactivate(ctx, it.ID))
	_, err = f.ledger.ApplyMovement(ctx, appinventory.MovementInput{
		ItemID: it.ID, Kind: entity.MovementExit, Quantity: d("1"),
	})
	assert.ErrorIs(t, err, domain.ErrItemInactive)
	assert.ErrorIs(t, err, domain.ErrValidation)
}

func TestLedger_AjusteRegistraAntesYDespues(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	it := f.seed(t, "A", "Arruela", "10", "2")

	res, err := f.ledger.ApplyMovement(ctx, appinventory.MovementInput{
		ItemID: it.ID, Kind: entity.MovementAdjustment, Quantity: d("4"), Reason: "conteo físico",
	})
	require.NoError(t, err)
	assert.True(t, res.Item.Quantity.Equal(d("4")))
	assert.True(t, res.Item.AverageCost.Equal(d("2")))
	assert.True(t, res.Movement.Delta().Equal(d("-6")))
	assert.Equal(t, "conteo físico", res.Movement.Reason)
}

func TestLedger_EntradasConcurrentes(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	it := f.seed(t, "A", "Arruela", "10", "5")

	const n = 20
	var wg sync.WaitGroup
	for i := 1; i <= n; i++ {
		wg.Add(1)
		go func(cost int64) {
			defer wg.Done()
			_, err := f.ledger.ApplyMovement(ctx, appinventory.MovementInput{
				ItemID: it.ID, Kind: entity.MovementEntry, Quantity: d("1"), UnitCost: ptr(decimal.NewFromInt(cost)),
			})
			assert.NoError(t, err)
		}(int64(i))
	}
	wg.Wait()

	final, err := f.ledger.GetItem(ctx, it.ID)
	require.NoError(t, err)
	assert.True(t, final.Quantity.Equal(d("30")))
	// (10*5 + 1+2+...+20) / 30
	want := (50.0 + 210.0) / 30.0
	got, _ := final.AverageCost.Float64()
	assert.InDelta(t, want, got, 1e-9)

	history, err := f.ledger.ListMovements(ctx, it.ID, 100, 0)
	require.NoError(t, err)
	assert.Len(t, history, n)
}

func TestLedger_SalidasConcurrentesNoDejanNegativo(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	it := f.seed(t, "A", "Arruela", "10", "5")

	const n = 15
	var (
		wg           sync.WaitGroup
		mu           sync.Mutex
		ok, rejected int
	)
	for i := 0; i < n; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, err := f.ledger.ApplyMovement(ctx, appinventory.MovementInput{
				ItemID: it.ID, Kind: entity.MovementExit, Quantity: d("1"),
			})
			mu.Lock()
			defer mu.Unlock()
			switch {
			case err == nil:
				ok++
			case errors.Is(err, domain.ErrInsufficientStock):
				rejected++
			default:
				t.Errorf("error inesperado: %v", err)
			}
		}()
	}
	wg.Wait()

	assert.Equal(t, 10, ok)
	assert.Equal(t, 5, rejected)
	final, err := f.ledger.GetItem(ctx, it.ID)
	require.NoError(t, err)
	assert.True(t, final.Quantity.IsZero())
	assert.True(t, final.AverageCost.IsZero())
}

func TestLedger_HistorialMasRecientePrimero(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	it := f.seed(t, "A", "Arruela", "0", "0")

	for _, qty := range []string{"1", "2", "3"} {
		_, err := f.ledger.ApplyMovement(ctx, appinventory.MovementInput{
			ItemID: it.ID, Kind: entity.MovementEntry, Quantity: d(qty), UnitCost: ptr(d("1")),
		})
		require.NoError(t, err)
	}
	history, err := f.ledger.ListMovements(ctx, it.ID, 2, 0)
	require.NoError(t, err)
	require.Len(t, history, 2)
	assert.True(t, history[0].Quantity.Equal(d("3")))
	assert.True(t, history[1].Quantity.Equal(d("2")))

	_, err = f.ledger.ListMovements(ctx, uuid.NewString(), 10, 0)
	assert.ErrorIs(t, err, domain.ErrItemNotFound)
}

func TestLedger_TimeoutFallaSinModificar(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	it := f.seed(t, "T-1", "Tuerca", "10", "5")
	ledger := appinventory.NewLedger(sqlite.NewTxRunner(f.db), f.items, f.moves, 50*time.Millisecond, logger.Nop())

	// ocupa la única conexión hasta que venza el plazo del movimiento
	held := f.db.Begin()
	require.NoError(t, held.Error)

	_, err := ledger.ApplyMovement(ctx, appinventory.MovementInput{
		ItemID: it.ID, Kind: entity.MovementEntry, Quantity: d("4"), UnitCost: ptr(d("9")),
	})
	require.NoError(t, held.Rollback().Error)

	require.Error(t, err)
	assert.ErrorIs(t, err, context.DeadlineExceeded)
	assert.Equal(t, domain.CodeTimeout, domain.Code(err))

	got, err := f.ledger.GetItem(ctx, it.ID)
	require.NoError(t, err)
	assert.True(t, got.Quantity.Equal(d("10")))
	assert.True(t, got.AverageCost.Equal(d("5")))

	history, err := f.moves.ListByItem(ctx, it.ID, 10, 0)
	require.NoError(t, err)
	assert.Empty(t, history)
}
