package collections

import (
	"context"
	"fmt"

	"github.com/pocketbase/pocketbase/core"

	"quotelines/logger"
)

// Setup programmatically creates/ensures the products, quotes and
// quote_line_items collections exist.
func Setup(app core.App, log *logger.Logger) error {
	products, err := ensureCollection(app, log, "products", func(c *core.Collection) {
		c.Fields.Add(&core.TextField{Name: "name", Required: true})
		c.Fields.Add(&core.TextField{Name: "description", Required: false})
		c.Fields.Add(&core.TextField{Name: "units", Required: false})
		c.Fields.Add(&core.NumberField{Name: "width", Required: false})
		c.Fields.Add(&core.TextField{Name: "family", Required: false})
		c.Fields.Add(&core.NumberField{Name: "unit_price", Required: false})
		c.Fields.Add(&core.NumberField{Name: "average_cost", Required: false})
		c.Fields.Add(&core.NumberField{Name: "cost_per_unit", Required: false})
		c.Fields.Add(&core.BoolField{Name: "active"})
		c.AddIndex("idx_products_name", false, "name", "")
	})
	if err != nil {
		return err
	}

	quotes, err := ensureCollection(app, log, "quotes", func(c *core.Collection) {
		c.Fields.Add(&core.TextField{Name: "title", Required: true})
		c.Fields.Add(&core.TextField{Name: "reference_number", Required: false})
		c.Fields.Add(&core.TextField{Name: "customer", Required: false})
		c.Fields.Add(&core.NumberField{Name: "discount_percent", Required: false})
		c.Fields.Add(&core.NumberField{Name: "discount_amount", Required: false})
		c.Fields.Add(&core.AutodateField{Name: "created", OnCreate: true})
		c.Fields.Add(&core.AutodateField{Name: "updated", OnCreate: true, OnUpdate: true})
	})
	if err != nil {
		return err
	}

	_, err = ensureCollection(app, log, "quote_line_items", func(c *core.Collection) {
		c.Fields.Add(&core.RelationField{
			Name:          "quote",
			Required:      true,
			CollectionId:  quotes.Id,
			CascadeDelete: true,
			MaxSelect:     1,
		})
		c.Fields.Add(&core.RelationField{
			Name:         "product",
			Required:     false,
			CollectionId: products.Id,
			MaxSelect:    1,
		})
		c.Fields.Add(&core.TextField{Name: "row_key", Required: false})
		c.Fields.Add(&core.NumberField{Name: "row_number", Required: false})
		c.Fields.Add(&core.SelectField{
			Name:      "kind",
			Required:  true,
			Values:    []string{"product", "overall_discount", "individual_discount"},
			MaxSelect: 1,
		})
		c.Fields.Add(&core.TextField{Name: "location", Required: false})
		c.Fields.Add(&core.TextField{Name: "product_name", Required: false})
		c.Fields.Add(&core.TextField{Name: "description", Required: false})
		c.Fields.Add(&core.TextField{Name: "family", Required: false})
		c.Fields.Add(&core.TextField{Name: "product_family", Required: false})
		for _, name := range []string{
			"length", "width", "net_area", "wastage", "total_area",
			"unit_price", "average_cost", "cost_per_unit",
			"quantity", "quantity_area", "rate", "amount", "tax_amount", "gross_amount",
			"estimated_cost", "cost_price",
		} {
			c.Fields.Add(&core.NumberField{Name: name, Required: false})
		}
		c.Fields.Add(&core.TextField{Name: "units", Required: false})
		c.Fields.Add(&core.TextField{Name: "cost_estimate_type", Required: false})
		c.Fields.Add(&core.TextField{Name: "estimate_type", Required: false})
		c.Fields.Add(&core.TextField{Name: "discount_applied_from_row", Required: false})
		c.Fields.Add(&core.TextField{Name: "individual_discount_row", Required: false})
		c.AddIndex("idx_quote_line_items_quote", false, "quote, row_number", "")
	})
	return err
}

// ensureCollection checks if a collection already exists by name. If it does,
// the existing collection is returned. Otherwise a new base collection is
// created, the addFields callback is invoked to populate its fields, and the
// collection is saved.
func ensureCollection(app core.App, log *logger.Logger, name string, addFields func(*core.Collection)) (*core.Collection, error) {
	ctx := log.WithField(context.Background(), "collection", name)

	existing, err := app.FindCollectionByNameOrId(name)
	if err == nil && existing != nil {
		log.Debug(ctx, "collection already exists, skipping creation")
		return existing, nil
	}

	collection := core.NewBaseCollection(name)
	addFields(collection)

	if err := app.Save(collection); err != nil {
		return nil, fmt.Errorf("create collection %q: %w", name, err)
	}

	log.Info(log.WithField(ctx, "id", collection.Id), "created collection")
	return collection, nil
}
