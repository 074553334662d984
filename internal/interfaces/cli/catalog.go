package cli

import (
	"context"
	"flag"
	"fmt"
	"text/tabwriter"

	"github.com/google/subcommands"
	"github.com/shopspring/decimal"

	"github.com/jhoicas/stock-reconciliation/internal/application/dto"
	"github.com/jhoicas/stock-reconciliation/internal/application/inventory"
	"github.com/jhoicas/stock-reconciliation/internal/domain/entity"
)

type migrateCmd struct {
	app *App
}

func (*migrateCmd) Name() string     { return "migrate" }
func (*migrateCmd) Synopsis() string { return "aplica las migraciones pendientes del esquema" }
func (*migrateCmd) Usage() string {
	return `reconcile migrate

  Aplica las migraciones de MIGRATIONS_PATH (PostgreSQL) o crea las tablas (SQLite).
`
}
func (*migrateCmd) SetFlags(*flag.FlagSet) {}

func (c *migrateCmd) Execute(ctx context.Context, _ *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
	if c.app.Migrate == nil {
		return c.app.fail(fmt.Errorf("migraciones no configuradas"))
	}
	msg, err := c.app.Migrate(ctx)
	if err != nil {
		return c.app.fail(err)
	}
	fmt.Fprintln(c.app.stdout(), msg)
	return subcommands.ExitSuccess
}

type itemsCmd struct {
	app      *App
	inactive bool
	low      bool
	asJSON   bool
}

func (*itemsCmd) Name() string     { return "items" }
func (*itemsCmd) Synopsis() string { return "lista el catálogo con cantidad y costo promedio" }
func (*itemsCmd) Usage() string {
	return `reconcile items [-inactive] [-low] [-json]

  Lista los ítems activos del catálogo. -low muestra solo los que están en o
  por debajo de su mínimo, con la cantidad sugerida de pedido.
`
}

func (c *itemsCmd) SetFlags(f *flag.FlagSet) {
	f.BoolVar(&c.inactive, "inactive", false, "Incluir ítems desactivados.")
	f.BoolVar(&c.low, "low", false, "Solo ítems en o por debajo del mínimo.")
	f.BoolVar(&c.asJSON, "json", false, "Salida JSON.")
}

func (c *itemsCmd) Execute(ctx context.Context, _ *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
	svc, err := c.app.services(ctx)
	if err != nil {
		return c.app.fail(err)
	}
	defer svc.Close()

	if c.low {
		list, err := svc.Replenishment.GenerateReplenishmentList(ctx)
		if err != nil {
			return c.app.fail(err)
		}
		if c.asJSON {
			if err := c.app.printJSON(list); err != nil {
				return c.app.fail(err)
			}
			return subcommands.ExitSuccess
		}
		c.printLowStock(list)
		return subcommands.ExitSuccess
	}

	var items []dto.CatalogItemResponse
	page := dto.PageRequest{Limit: dto.MaxPageLimit}
	for {
		out, err := svc.Catalog.List(ctx, c.inactive, page)
		if err != nil {
			return c.app.fail(err)
		}
		items = append(items, out.Items...)
		if len(out.Items) < page.Limit {
			break
		}
		page.Offset += page.Limit
	}
	if c.asJSON {
		if err := c.app.printJSON(items); err != nil {
			return c.app.fail(err)
		}
		return subcommands.ExitSuccess
	}
	w := tabwriter.NewWriter(c.app.stdout(), 0, 4, 2, ' ', 0)
	fmt.Fprintln(w, "ID\tCÓDIGO\tDESCRIPCIÓN\tCANTIDAD\tCOSTO PROM.\tACTIVO")
	for _, it := range items {
		fmt.Fprintf(w, "%s\t%s\t%s\t%s\t%s\t%t\n", it.ID, it.Code, it.Description, it.Quantity, it.AverageCost.StringFixed(4), it.Active)
	}
	_ = w.Flush()
	return subcommands.ExitSuccess
}

func (c *itemsCmd) printLowStock(list []dto.LowStockItemDTO) {
	w := tabwriter.NewWriter(c.app.stdout(), 0, 4, 2, ' ', 0)
	fmt.Fprintln(w, "PRIORIDAD\tCÓDIGO\tDESCRIPCIÓN\tSTOCK\tMÍNIMO\tPEDIR\tCOSTO EST.")
	for _, it := range list {
		fmt.Fprintf(w, "%d\t%s\t%s\t%s\t%s\t%s\t%s\n", it.Priority, it.Code, it.Description,
			it.CurrentStock, it.MinQuantity, it.SuggestedOrderQty, it.EstimatedOrderCost.StringFixed(2))
	}
	_ = w.Flush()
}

type moveCmd struct {
	app       *App
	itemID    string
	kind      string
	qty       string
	cost      string
	reason    string
	reference string
	actor     string
}

func (*moveCmd) Name() string     { return "move" }
func (*moveCmd) Synopsis() string { return "registra un movimiento de inventario" }
func (*moveCmd) Usage() string {
	return `reconcile move -item <id> -kind entry|exit|adjustment -qty <n> [-cost <c>] [-reason <r>]

  Aplica un movimiento sobre el ítem. En adjustment, -qty es la cantidad objetivo.
  Las entradas requieren -cost.
`
}

func (c *moveCmd) SetFlags(f *flag.FlagSet) {
	f.StringVar(&c.itemID, "item", "", "ID del ítem.")
	f.StringVar(&c.kind, "kind", "", "Tipo: entry, exit o adjustment.")
	f.StringVar(&c.qty, "qty", "", "Cantidad (objetivo en adjustment).")
	f.StringVar(&c.cost, "cost", "", "Costo unitario.")
	f.StringVar(&c.reason, "reason", "", "Motivo del movimiento.")
	f.StringVar(&c.reference, "ref", "", "Referencia externa (documento).")
	f.StringVar(&c.actor, "actor", "cli", "Actor que registra el movimiento.")
}

func (c *moveCmd) Execute(ctx context.Context, f *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
	in, err := c.input(f)
	if err != nil {
		return c.app.fail(err)
	}
	svc, err := c.app.services(ctx)
	if err != nil {
		return c.app.fail(err)
	}
	defer svc.Close()

	out, err := svc.Ledger.ApplyMovement(ctx, in)
	if err != nil {
		return c.app.fail(err)
	}
	if err := c.app.printJSON(dto.RegisterMovementResponse{
		Item:     dto.CatalogItemFromEntity(out.Item),
		Movement: dto.MovementFromEntity(out.Movement),
	}); err != nil {
		return c.app.fail(err)
	}
	return subcommands.ExitSuccess
}

func (c *moveCmd) input(f *flag.FlagSet) (inventory.MovementInput, error) {
	if err := requireFlag(f, "item", c.itemID); err != nil {
		return inventory.MovementInput{}, err
	}
	if err := requireFlag(f, "qty", c.qty); err != nil {
		return inventory.MovementInput{}, err
	}
	kind, err := entity.ParseMovementKind(c.kind)
	if err != nil {
		return inventory.MovementInput{}, validation(err)
	}
	qty, err := decimal.NewFromString(c.qty)
	if err != nil {
		return inventory.MovementInput{}, validation(fmt.Errorf("-qty: %w", err))
	}
	in := inventory.MovementInput{
		ItemID:    c.itemID,
		Kind:      kind,
		Quantity:  qty,
		Reason:    c.reason,
		ActorID:   c.actor,
		Reference: c.reference,
	}
	if c.cost != "" {
		cost, err := decimal.NewFromString(c.cost)
		if err != nil {
			return inventory.MovementInput{}, validation(fmt.Errorf("-cost: %w", err))
		}
		in.UnitCost = &cost
	}
	return in, nil
}

type historyCmd struct {
	app    *App
	itemID string
	limit  int
	offset int
}

func (*historyCmd) Name() string     { return "history" }
func (*historyCmd) Synopsis() string { return "muestra los movimientos de un ítem" }
func (*historyCmd) Usage() string {
	return `reconcile history -item <id> [-limit n] [-offset n]

  Historial de movimientos del ítem, más reciente primero.
`
}

func (c *historyCmd) SetFlags(f *flag.FlagSet) {
	f.StringVar(&c.itemID, "item", "", "ID del ítem.")
	f.IntVar(&c.limit, "limit", 50, "Máximo de movimientos.")
	f.IntVar(&c.offset, "offset", 0, "Desplazamiento.")
}

func (c *historyCmd) Execute(ctx context.Context, f *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
	if err := requireFlag(f, "item", c.itemID); err != nil {
		return c.app.fail(err)
	}
	svc, err := c.app.services(ctx)
	if err != nil {
		return c.app.fail(err)
	}
	defer svc.Close()

	list, err := svc.Ledger.ListMovements(ctx, c.itemID, c.limit, c.offset)
	if err != nil {
		return c.app.fail(err)
	}
	w := tabwriter.NewWriter(c.app.stdout(), 0, 4, 2, ' ', 0)
	fmt.Fprintln(w, "FECHA\tTIPO\tCANTIDAD\tCOSTO\tSTOCK\tCOSTO PROM.\tREFERENCIA")
	for _, m := range list {
		cost := "-"
		if m.UnitCost != nil {
			cost = m.UnitCost.String()
		}
		fmt.Fprintf(w, "%s\t%s\t%s\t%s\t%s → %s\t%s\t%s\n",
			m.CreatedAt.Format("2006-01-02 15:04:05"), m.Kind, m.Quantity, cost,
			m.PreviousQuantity, m.NewQuantity, m.NewAverageCost.StringFixed(4), m.Reference)
	}
	_ = w.Flush()
	return subcommands.ExitSuccess
}
