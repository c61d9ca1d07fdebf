package collections

import (
	"context"
	"fmt"

	"github.com/pocketbase/pocketbase/core"

	"quotelines/logger"
)

type productDef struct {
	name        string
	description string
	units       string
	width       float64
	family      string
	unitPrice   float64
	averageCost float64
	costPerUnit float64
}

// discountProducts are the catalog entries that turn a row into an
// individual discount. Their names must match the editor's recognised set.
var discountProducts = []productDef{
	{name: "5% Discount", description: "5% line discount", family: "Discount"},
	{name: "10% Discount", description: "10% line discount", family: "Discount"},
	{name: "15% Discount", description: "15% line discount", family: "Discount"},
	{name: "20% Discount", description: "20% line discount", family: "Discount"},
}

var catalogProducts = []productDef{
	// ── wall-to-wall group: net area is derived ──────────────────────
	{"Berber Loop Carpet", "Loop pile, 4m roll", "4 SqM", 4, "Wall to Wall", 12.5, 6, 7},
	{"Saxony Twist Carpet", "Cut pile, 5m roll", "5 SqM", 5, "Wall to Wall", 18, 9.5, 10},
	{"Safety Sheet Vinyl", "R10 slip rating, 2m roll", "2 SqM", 2, "F.SHEET-VINYL", 22, 11, 12},
	{"Landscape Grass 30mm", "Artificial turf, 4m roll", "4 SqM", 4, "F.ARTIFICIAL GRASS", 16, 8, 9},

	// ── decking group: length is derived ─────────────────────────────
	{"Composite Deck Board", "3.6m grooved board", "0.5 SqM", 0, "F. DECKING", 30, 17, 18},
	{"Engineered Oak Plank", "14mm, brushed", "2.2 SqM", 0, "Wood Flooring", 48, 27, 29},
	{"Luxury Vinyl Tile", "Click LVT, 5mm", "2.5 SqM", 0, "F.LVT", 26, 13, 14},

	// ── everything else ──────────────────────────────────────────────
	{"Porcelain Tile 600x600", "Matt finish", "1.44 SqM", 0, "Tiles", 35, 19, 20},
	{"Acoustic Underlay 10mm", "PU foam underlay", "15 SqM", 0, "Underlay", 4.5, 2, 2.5},
	{"Gripper Strip", "Per linear metre", "", 0, "Accessories", 1.2, 0.5, 0.6},
}

// SeedCatalog populates the products collection with a flooring catalog and
// the four individual-discount products. It is safe to call on every startup
// because it returns early if any product records already exist.
func SeedCatalog(app core.App, log *logger.Logger) error {
	ctx := log.WithField(context.Background(), "collection", "products")

	productsCol, err := app.FindCollectionByNameOrId("products")
	if err != nil {
		return fmt.Errorf("seed: could not find products collection: %w", err)
	}
	total, err := app.CountRecords(productsCol)
	if err != nil {
		return fmt.Errorf("seed: could not count products: %w", err)
	}
	if total > 0 {
		log.Debug(ctx, "catalog already seeded")
		return nil
	}

	log.Info(ctx, "products collection is empty, inserting catalog")

	defs := append(append([]productDef{}, catalogProducts...), discountProducts...)
	return app.RunInTransaction(func(txApp core.App) error {
		for _, d := range defs {
			r := core.NewRecord(productsCol)
			r.Set("name", d.name)
			r.Set("description", d.description)
			r.Set("units", d.units)
			r.Set("width", d.width)
			r.Set("family", d.family)
			r.Set("unit_price", d.unitPrice)
			r.Set("average_cost", d.averageCost)
			r.Set("cost_per_unit", d.costPerUnit)
			r.Set("active", true)
			if err := txApp.Save(r); err != nil {
				return fmt.Errorf("seed: save product %q: %w", d.name, err)
			}
		}
		return nil
	})
}

// SeedSampleQuote creates an empty quote to open in the editor when none exist.
func SeedSampleQuote(app core.App, log *logger.Logger) (*core.Record, error) {
	quotesCol, err := app.FindCollectionByNameOrId("quotes")
	if err != nil {
		return nil, fmt.Errorf("seed: could not find quotes collection: %w", err)
	}
	existing, err := app.FindRecordsByFilter(quotesCol, "id != ''", "-created", 1, 0)
	if err != nil {
		return nil, fmt.Errorf("seed: could not query quotes: %w", err)
	}
	if len(existing) > 0 {
		return existing[0], nil
	}

	r := core.NewRecord(quotesCol)
	r.Set("title", "Sample Flooring Quote")
	r.Set("reference_number", "Q-0001")
	r.Set("customer", "Walk-in Customer")
	if err := app.Save(r); err != nil {
		return nil, fmt.Errorf("seed: save sample quote: %w", err)
	}
	log.Info(log.WithField(context.Background(), "quote_id", r.Id), "created sample quote")
	return r, nil
}
