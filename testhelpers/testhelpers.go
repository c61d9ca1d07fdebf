// Package testhelpers provides utilities for testing PocketBase-based applications.
package testhelpers

import (
	"strings"
	"testing"

	"github.com/pocketbase/pocketbase"
	"github.com/pocketbase/pocketbase/core"

	"quotelines/collections"
	"quotelines/logger"
)

// NewTestApp creates a PocketBase instance backed by a temporary directory.
// It bootstraps the app and runs collections.Setup to create all tables.
// The temporary directory is cleaned up automatically when the test finishes.
func NewTestApp(t *testing.T) *pocketbase.PocketBase {
	t.Helper()

	tmpDir := t.TempDir()
	app := pocketbase.NewWithConfig(pocketbase.Config{
		DefaultDataDir: tmpDir,
	})

	if err := app.Bootstrap(); err != nil {
		t.Fatalf("failed to bootstrap test app: %v", err)
	}

	if err := collections.Setup(app, logger.Nop()); err != nil {
		t.Fatalf("failed to set up collections: %v", err)
	}

	return app
}

// CreateTestQuote creates a quote record with the given title and returns it.
func CreateTestQuote(t *testing.T, app core.App, title string) *core.Record {
	t.Helper()

	col, err := app.FindCollectionByNameOrId("quotes")
	if err != nil {
		t.Fatalf("failed to find quotes collection: %v", err)
	}

	record := core.NewRecord(col)
	record.Set("title", title)
	record.Set("customer", "Test Customer")

	if err := app.Save(record); err != nil {
		t.Fatalf("failed to save test quote: %v", err)
	}

	return record
}

// CreateTestProduct creates an active product record and returns it.
func CreateTestProduct(t *testing.T, app core.App, name, family string, unitPrice, width float64) *core.Record {
	t.Helper()

	col, err := app.FindCollectionByNameOrId("products")
	if err != nil {
		t.Fatalf("failed to find products collection: %v", err)
	}

	record := core.NewRecord(col)
	record.Set("name", name)
	record.Set("description", name+" description")
	record.Set("family", family)
	record.Set("unit_price", unitPrice)
	record.Set("width", width)
	record.Set("units", "4 SqM")
	record.Set("average_cost", unitPrice/2)
	record.Set("cost_per_unit", unitPrice/2)
	record.Set("active", true)

	if err := app.Save(record); err != nil {
		t.Fatalf("failed to save test product: %v", err)
	}

	return record
}

// CreateTestLineItem creates a plain product line item on a quote.
func CreateTestLineItem(t *testing.T, app core.App, quoteID, rowKey string, rowNumber int, productName string, gross float64) *core.Record {
	t.Helper()

	col, err := app.FindCollectionByNameOrId("quote_line_items")
	if err != nil {
		t.Fatalf("failed to find quote_line_items collection: %v", err)
	}

	record := core.NewRecord(col)
	record.Set("quote", quoteID)
	record.Set("row_key", rowKey)
	record.Set("row_number", rowNumber)
	record.Set("kind", "product")
	record.Set("product_name", productName)
	record.Set("gross_amount", gross)
	record.Set("quantity", 1)

	if err := app.Save(record); err != nil {
		t.Fatalf("failed to save test line item: %v", err)
	}

	return record
}

// AssertJSONContains checks that body contains all specified fragments.
func AssertJSONContains(t *testing.T, body string, fragments ...string) {
	t.Helper()

	for _, frag := range fragments {
		if !strings.Contains(body, frag) {
			t.Errorf("expected body to contain %q, but it was not found\nbody (first 500 chars): %s",
				frag, truncate(body, 500))
		}
	}
}

func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return s[:n] + "..."
}
