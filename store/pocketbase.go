// Package store implements the catalog search and quote persistence
// collaborators on top of PocketBase collections.
package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"

	"github.com/pocketbase/pocketbase/core"
	"github.com/spf13/cast"

	"quotelines/quote"
)

const (
	productsCollection  = "products"
	quotesCollection    = "quotes"
	lineItemsCollection = "quote_line_items"

	DefaultSearchLimit = 20
)

// ErrQuoteNotFound is returned when the parent quote does not exist.
var ErrQuoteNotFound = errors.New("store: quote not found")

// PocketBase serves quote.Searcher and quote.Store from an app's database.
type PocketBase struct {
	app         core.App
	searchLimit int
}

func New(app core.App, searchLimit int) *PocketBase {
	if searchLimit <= 0 {
		searchLimit = DefaultSearchLimit
	}
	return &PocketBase{app: app, searchLimit: searchLimit}
}

// Search returns active products whose name contains term.
func (s *PocketBase) Search(ctx context.Context, term string) ([]quote.Candidate, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	term = strings.TrimSpace(term)
	if term == "" {
		return nil, nil
	}

	records, err := s.app.FindRecordsByFilter(
		productsCollection,
		"active = true && name ~ {:term}",
		"name",
		s.searchLimit,
		0,
		map[string]any{"term": term},
	)
	if err != nil {
		return nil, fmt.Errorf("search products: %w", err)
	}

	out := make([]quote.Candidate, 0, len(records))
	for _, r := range records {
		out = append(out, candidateFromRecord(r))
	}
	return out, nil
}

func candidateFromRecord(r *core.Record) quote.Candidate {
	return quote.Candidate{
		ID:          r.Id,
		Name:        r.GetString("name"),
		Description: r.GetString("description"),
		Units:       r.GetString("units"),
		Width:       optional(r.Get("width")),
		Family:      r.GetString("family"),
		UnitPrice:   optional(r.Get("unit_price")),
		AverageCost: optional(r.Get("average_cost")),
		CostPerUnit: optional(r.Get("cost_per_unit")),
	}
}

// optional reads a stored number; zero means the value was never set.
func optional(v any) quote.Num {
	f, err := cast.ToFloat64E(v)
	if err != nil || f == 0 {
		return quote.Num{}
	}
	return quote.N(f)
}

func (s *PocketBase) findQuote(app core.App, quoteID string) (*core.Record, error) {
	rec, err := app.FindRecordById(quotesCollection, quoteID)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("%w: %s", ErrQuoteNotFound, quoteID)
	}
	if err != nil {
		return nil, fmt.Errorf("find quote %s: %w", quoteID, err)
	}
	return rec, nil
}

// Load returns the quote's line items ordered by row number.
func (s *PocketBase) Load(ctx context.Context, quoteID string) ([]quote.LineItem, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if _, err := s.findQuote(s.app, quoteID); err != nil {
		return nil, err
	}

	records, err := s.app.FindRecordsByFilter(
		lineItemsCollection,
		"quote = {:quoteId}",
		"row_number",
		0,
		0,
		map[string]any{"quoteId": quoteID},
	)
	if err != nil {
		return nil, fmt.Errorf("load line items for quote %s: %w", quoteID, err)
	}

	items := make([]quote.LineItem, 0, len(records))
	for _, r := range records {
		items = append(items, lineItemFromRecord(r))
	}
	return items, nil
}

func lineItemFromRecord(r *core.Record) quote.LineItem {
	kind := quote.Kind(r.GetString("kind"))
	return quote.LineItem{
		ExternalID:    r.Id,
		RowKey:        r.GetString("row_key"),
		RowNumber:     r.GetInt("row_number"),
		Location:      r.GetString("location"),
		ProductID:     r.GetString("product"),
		ProductName:   r.GetString("product_name"),
		Description:   r.GetString("description"),
		Family:        r.GetString("family"),
		ProductFamily: r.GetString("product_family"),

		Length:        optional(r.Get("length")),
		Width:         optional(r.Get("width")),
		NetArea:       r.GetFloat("net_area"),
		Wastage:       r.GetFloat("wastage"),
		TotalArea:     r.GetFloat("total_area"),
		Units:         r.GetString("units"),
		UnitPrice:     r.GetFloat("unit_price"),
		AverageCost:   r.GetFloat("average_cost"),
		CostPerUnit:   r.GetFloat("cost_per_unit"),
		Quantity:      r.GetFloat("quantity"),
		QuantityArea:  r.GetFloat("quantity_area"),
		Rate:          r.GetFloat("rate"),
		Amount:        r.GetFloat("amount"),
		TaxAmount:     r.GetFloat("tax_amount"),
		GrossAmount:   r.GetFloat("gross_amount"),
		EstimatedCost: r.GetFloat("estimated_cost"),
		CostPrice:     r.GetFloat("cost_price"),

		CostEstimateType: r.GetString("cost_estimate_type"),
		EstimateType:     r.GetString("estimate_type"),

		IsIndividualDiscount:   kind == quote.KindIndividualDiscount,
		IsOverallDiscount:      kind == quote.KindOverallDiscount,
		DiscountAppliedFromRow: r.GetString("discount_applied_from_row"),
		IndividualDiscountRow:  r.GetString("individual_discount_row"),
	}
}

func fillRecord(rec *core.Record, quoteID string, it quote.LineItem) {
	kind := quote.KindProduct
	switch {
	case it.IsOverallDiscount:
		kind = quote.KindOverallDiscount
	case it.IsIndividualDiscount:
		kind = quote.KindIndividualDiscount
	}

	rec.Set("quote", quoteID)
	rec.Set("product", it.ProductID)
	rec.Set("row_key", it.RowKey)
	rec.Set("row_number", it.RowNumber)
	rec.Set("kind", string(kind))
	rec.Set("location", it.Location)
	rec.Set("product_name", it.ProductName)
	rec.Set("description", it.Description)
	rec.Set("family", it.Family)
	rec.Set("product_family", it.ProductFamily)

	rec.Set("length", it.Length.Float())
	rec.Set("width", it.Width.Float())
	rec.Set("net_area", it.NetArea)
	rec.Set("wastage", it.Wastage)
	rec.Set("total_area", it.TotalArea)
	rec.Set("units", it.Units)
	rec.Set("unit_price", it.UnitPrice)
	rec.Set("average_cost", it.AverageCost)
	rec.Set("cost_per_unit", it.CostPerUnit)
	rec.Set("quantity", it.Quantity)
	rec.Set("quantity_area", it.QuantityArea)
	rec.Set("rate", it.Rate)
	rec.Set("amount", it.Amount)
	rec.Set("tax_amount", it.TaxAmount)
	rec.Set("gross_amount", it.GrossAmount)
	rec.Set("estimated_cost", it.EstimatedCost)
	rec.Set("cost_price", it.CostPrice)

	rec.Set("cost_estimate_type", it.CostEstimateType)
	rec.Set("estimate_type", it.EstimateType)
	rec.Set("discount_applied_from_row", it.DiscountAppliedFromRow)
	rec.Set("individual_discount_row", it.IndividualDiscountRow)
}

// Upsert writes the batch in one transaction: deletions first, then every
// item, then the quote's discount totals. Items whose stored record has
// disappeared are recreated. Deleted ids belonging to another quote are
// ignored.
func (s *PocketBase) Upsert(ctx context.Context, quoteID string, req quote.SaveRequest) (quote.SaveResult, error) {
	if err := ctx.Err(); err != nil {
		return quote.SaveResult{}, err
	}

	res := quote.SaveResult{IDs: make(map[string]string, len(req.Items))}
	err := s.app.RunInTransaction(func(txApp core.App) error {
		q, err := s.findQuote(txApp, quoteID)
		if err != nil {
			return err
		}
		col, err := txApp.FindCollectionByNameOrId(lineItemsCollection)
		if err != nil {
			return fmt.Errorf("find %s collection: %w", lineItemsCollection, err)
		}

		for _, id := range req.DeletedIDs {
			rec, err := txApp.FindRecordById(col, id)
			if errors.Is(err, sql.ErrNoRows) {
				continue
			}
			if err != nil {
				return fmt.Errorf("find line item %s: %w", id, err)
			}
			if rec.GetString("quote") != quoteID {
				continue
			}
			if err := txApp.Delete(rec); err != nil {
				return fmt.Errorf("delete line item %s: %w", id, err)
			}
		}

		for _, it := range req.Items {
			rec, err := existingOrNew(txApp, col, quoteID, it.ExternalID)
			if err != nil {
				return err
			}
			fillRecord(rec, quoteID, it)
			if err := txApp.Save(rec); err != nil {
				return fmt.Errorf("save line item %q: %w", it.RowKey, err)
			}
			res.IDs[it.RowKey] = rec.Id
		}

		q.Set("discount_percent", req.DiscountPercent)
		q.Set("discount_amount", req.DiscountAmount)
		if err := txApp.Save(q); err != nil {
			return fmt.Errorf("update quote %s discount: %w", quoteID, err)
		}
		return nil
	})
	if err != nil {
		return quote.SaveResult{}, err
	}
	return res, nil
}

func existingOrNew(app core.App, col *core.Collection, quoteID, id string) (*core.Record, error) {
	if id == "" {
		return core.NewRecord(col), nil
	}
	rec, err := app.FindRecordById(col, id)
	if errors.Is(err, sql.ErrNoRows) {
		return core.NewRecord(col), nil
	}
	if err != nil {
		return nil, fmt.Errorf("find line item %s: %w", id, err)
	}
	if rec.GetString("quote") != quoteID {
		return nil, fmt.Errorf("line item %s belongs to another quote", id)
	}
	return rec, nil
}
