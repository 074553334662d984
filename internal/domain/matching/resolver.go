package matching

import (
	"context"
	"sort"
	"strings"

	"golang.org/x/sync/errgroup"

	"github.com/jhoicas/stock-reconciliation/internal/domain/entity"
)

// DefaultAutoAcceptThreshold puntaje mínimo para aceptar un candidato sin confirmación humana.
const DefaultAutoAcceptThreshold = 0.85

// ResolverConfig parámetros del resolver.
type ResolverConfig struct {
	AutoAcceptThreshold float64 // (0,1]; fuera de rango se usa DefaultAutoAcceptThreshold
	Workers             int     // tamaño del pool de ResolveAll
	PrefixBoost         bool    // usar Score (con prefijo) en lugar de Similarity pura
}

// DefaultResolverConfig valores por defecto.
func DefaultResolverConfig() ResolverConfig {
	return ResolverConfig{
		AutoAcceptThreshold: DefaultAutoAcceptThreshold,
		Workers:             4,
		PrefixBoost:         true,
	}
}

// Resolver elige el mejor ítem del catálogo para cada línea importada. Solo lectura.
type Resolver struct {
	cfg ResolverConfig
}

// NewResolver construye el resolver normalizando la configuración.
func NewResolver(cfg ResolverConfig) *Resolver {
	if cfg.AutoAcceptThreshold <= 0 || cfg.AutoAcceptThreshold > 1 {
		cfg.AutoAcceptThreshold = DefaultAutoAcceptThreshold
	}
	if cfg.Workers <= 0 {
		cfg.Workers = 1
	}
	return &Resolver{cfg: cfg}
}

// Threshold devuelve el umbral de auto-aceptación efectivo.
func (r *Resolver) Threshold() float64 { return r.cfg.AutoAcceptThreshold }

type indexEntry struct {
	item *entity.CatalogItem
	norm []rune
}

// CatalogIndex vista del catálogo activo con descripciones normalizadas una sola vez.
// El orden (código, id) es fijo para que los empates se resuelvan siempre igual.
type CatalogIndex struct {
	entries []indexEntry
	byCode  map[string]*entity.CatalogItem
}

// NewCatalogIndex indexa los ítems activos de items. No modifica el slice recibido.
func NewCatalogIndex(items []*entity.CatalogItem) *CatalogIndex {
	active := make([]*entity.CatalogItem, 0, len(items))
	for _, it := range items {
		if it != nil && it.Active {
			active = append(active, it)
		}
	}
	sort.SliceStable(active, func(i, j int) bool {
		if active[i].Code != active[j].Code {
			return active[i].Code < active[j].Code
		}
		return active[i].ID < active[j].ID
	})

	ix := &CatalogIndex{
		entries: make([]indexEntry, 0, len(active)),
		byCode:  make(map[string]*entity.CatalogItem, len(active)),
	}
	for _, it := range active {
		if code := strings.TrimSpace(it.Code); code != "" {
			if _, dup := ix.byCode[code]; !dup {
				ix.byCode[code] = it
			}
		}
		if n := []rune(Normalize(it.Description)); len(n) > 0 {
			ix.entries = append(ix.entries, indexEntry{item: it, norm: n})
		}
	}
	return ix
}

// Len número de ítems comparables por descripción.
func (ix *CatalogIndex) Len() int { return len(ix.entries) }

// Resolve produce el candidato de una línea:
//  1. código de proveedor igual al código de un ítem activo → puntaje 1;
//  2. si no, el mayor puntaje por descripción (el primero gana en empates);
//  3. puntaje ≥ umbral → auto-aceptado; si no, se sugiere crear un ítem nuevo.
func (r *Resolver) Resolve(line int, li entity.ImportedLineItem, ix *CatalogIndex) entity.MatchCandidate {
	c := entity.MatchCandidate{
		Line:            line,
		MatchedBy:       entity.MatchedByNone,
		RequiresNewItem: true,
	}

	if code := strings.TrimSpace(li.SupplierCode); code != "" {
		if it, ok := ix.byCode[code]; ok {
			c.ItemID, c.ItemDescription = it.ID, it.Description
			c.Score = 1
			c.MatchedBy = entity.MatchedByCode
			c.AutoAccepted, c.RequiresNewItem = true, false
			return c
		}
	}

	desc := []rune(Normalize(li.Description))
	if len(desc) == 0 {
		return c
	}
	best, bestScore := -1, -1.0
	for i, e := range ix.entries {
		if s := scoreNormalized(desc, e.norm, r.cfg.PrefixBoost); s > bestScore {
			best, bestScore = i, s
			if s == 1 {
				break
			}
		}
	}
	if best < 0 {
		return c
	}

	it := ix.entries[best].item
	c.ItemID, c.ItemDescription = it.ID, it.Description
	c.Score = bestScore
	c.MatchedBy = entity.MatchedByDescription
	if bestScore >= r.cfg.AutoAcceptThreshold {
		c.AutoAccepted, c.RequiresNewItem = true, false
	}
	return c
}

// ResolveAll resuelve todas las líneas en paralelo con un pool acotado.
// El resultado conserva el orden de lines y es función pura de (lines, catalog).
func (r *Resolver) ResolveAll(ctx context.Context, lines []entity.ImportedLineItem, catalog []*entity.CatalogItem) ([]entity.MatchCandidate, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	ix := NewCatalogIndex(catalog)
	out := make([]entity.MatchCandidate, len(lines))

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(r.cfg.Workers)
	for i := range lines {
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}
			out[i] = r.Resolve(i, lines[i], ix)
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return out, nil
}
