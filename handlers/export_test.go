package handlers

import (
	"context"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"quotelines/logger"
	"quotelines/store"
	"quotelines/testhelpers"
)

func TestSanitizeFilename(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  string
	}{
		{"spaces to hyphens", "My Quote File", "My-Quote-File"},
		{"slashes to hyphens", "path/to/file", "path-to-file"},
		{"backslashes", "path\\to\\file", "path-to-file"},
		{"colons", "file:name", "file-name"},
		{"mixed", "A / B \\ C : D", "A---B---C---D"},
		{"no special chars", "simple", "simple"},
		{"empty", "", ""},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := sanitizeFilename(tt.input)
			if got != tt.want {
				t.Errorf("sanitizeFilename(%q) = %q, want %q", tt.input, got, tt.want)
			}
		})
	}
}

func TestBuildExportData_WithItems(t *testing.T) {
	app := testhelpers.NewTestApp(t)
	q := testhelpers.CreateTestQuote(t, app, "Export Quote")
	testhelpers.CreateTestLineItem(t, app, q.Id, "1", 1, "Berber Carpet", 210)
	testhelpers.CreateTestLineItem(t, app, q.Id, "2", 2, "Porcelain Tile", 52.5)

	data, err := buildExportData(context.Background(), app, store.New(app, 0), q.Id)
	if err != nil {
		t.Fatalf("buildExportData error: %v", err)
	}
	if data.Title != "Export Quote" {
		t.Errorf("title = %q, want 'Export Quote'", data.Title)
	}
	if data.Customer != "Test Customer" {
		t.Errorf("customer = %q", data.Customer)
	}
	if len(data.Rows) != 2 {
		t.Fatalf("expected 2 rows, got %d", len(data.Rows))
	}
	if data.Rows[0].Product != "Berber Carpet" || data.Rows[0].Index != "1" {
		t.Errorf("first row = %+v", data.Rows[0])
	}
	if data.Totals.Net != 262.5 {
		t.Errorf("net = %v, want 262.5", data.Totals.Net)
	}
}

func TestBuildExportData_Empty(t *testing.T) {
	app := testhelpers.NewTestApp(t)
	q := testhelpers.CreateTestQuote(t, app, "Empty Quote")

	data, err := buildExportData(context.Background(), app, store.New(app, 0), q.Id)
	if err != nil {
		t.Fatalf("buildExportData error: %v", err)
	}
	if len(data.Rows) != 0 {
		t.Errorf("expected 0 rows, got %d", len(data.Rows))
	}
}

func TestBuildExportData_NotFound(t *testing.T) {
	app := testhelpers.NewTestApp(t)
	_, err := buildExportData(context.Background(), app, store.New(app, 0), "nonexistent")
	if err == nil {
		t.Error("expected error for nonexistent quote")
	}
}

func TestHandleQuoteExportExcel_Success(t *testing.T) {
	app := testhelpers.NewTestApp(t)
	q := testhelpers.CreateTestQuote(t, app, "Excel Quote")
	testhelpers.CreateTestLineItem(t, app, q.Id, "1", 1, "Excel Item", 105)
	handler := HandleQuoteExportExcel(app, store.New(app, 0), logger.Nop())
	req := httptest.NewRequest(http.MethodGet, fmt.Sprintf("/quotes/%s/export/excel", q.Id), nil)
	req.SetPathValue("quoteId", q.Id)
	rec := httptest.NewRecorder()
	e := newRequestEvent(app, req, rec)
	if err := handler(e); err != nil {
		t.Fatalf("handler error: %v", err)
	}
	if rec.Code != http.StatusOK {
		t.Errorf("expected 200, got %d", rec.Code)
	}
	ct := rec.Header().Get("Content-Type")
	if !strings.Contains(ct, "spreadsheetml") {
		t.Errorf("expected Excel content type, got %q", ct)
	}
	cd := rec.Header().Get("Content-Disposition")
	if !strings.Contains(cd, "attachment") || !strings.Contains(cd, "Quote_Excel-Quote_") {
		t.Errorf("unexpected disposition %q", cd)
	}
	if rec.Body.Len() == 0 {
		t.Error("expected non-empty body")
	}
}

func TestHandleQuoteExportPDF_Success(t *testing.T) {
	app := testhelpers.NewTestApp(t)
	q := testhelpers.CreateTestQuote(t, app, "PDF Quote")
	testhelpers.CreateTestLineItem(t, app, q.Id, "1", 1, "PDF Item", 105)
	handler := HandleQuoteExportPDF(app, store.New(app, 0), logger.Nop())
	req := httptest.NewRequest(http.MethodGet, fmt.Sprintf("/quotes/%s/export/pdf", q.Id), nil)
	req.SetPathValue("quoteId", q.Id)
	rec := httptest.NewRecorder()
	e := newRequestEvent(app, req, rec)
	if err := handler(e); err != nil {
		t.Fatalf("handler error: %v", err)
	}
	if rec.Code != http.StatusOK {
		t.Errorf("expected 200, got %d", rec.Code)
	}
	if ct := rec.Header().Get("Content-Type"); ct != "application/pdf" {
		t.Errorf("expected application/pdf, got %q", ct)
	}
	if rec.Body.Len() == 0 {
		t.Error("expected non-empty PDF body")
	}
}

func TestHandleQuoteExportExcel_NotFound(t *testing.T) {
	app := testhelpers.NewTestApp(t)
	handler := HandleQuoteExportExcel(app, store.New(app, 0), logger.Nop())
	req := httptest.NewRequest(http.MethodGet, "/quotes/nonexistent/export/excel", nil)
	req.SetPathValue("quoteId", "nonexistent")
	rec := httptest.NewRecorder()
	e := newRequestEvent(app, req, rec)
	if err := handler(e); err != nil {
		t.Fatalf("handler error: %v", err)
	}
	if rec.Code != http.StatusNotFound {
		t.Errorf("expected 404, got %d", rec.Code)
	}
}
