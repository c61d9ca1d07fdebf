package handlers

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/pocketbase/pocketbase/core"

	"quotelines/logger"
	"quotelines/quote"
	"quotelines/services"
	"quotelines/store"
)

// buildExportData loads the saved quote and its line items into an ExportData.
func buildExportData(ctx context.Context, app core.App, st quote.Store, quoteID string) (services.ExportData, error) {
	quoteRecord, err := app.FindRecordById("quotes", quoteID)
	if err != nil {
		return services.ExportData{}, fmt.Errorf("%w: %s", store.ErrQuoteNotFound, quoteID)
	}

	items, err := st.Load(ctx, quoteID)
	if err != nil {
		return services.ExportData{}, fmt.Errorf("load line items: %w", err)
	}
	summary := quote.Summarize(items)

	createdDate := "-"
	if dt := quoteRecord.GetDateTime("created"); !dt.IsZero() {
		createdDate = dt.Time().Format("02 Jan 2006")
	}

	return services.ExportData{
		Title:           quoteRecord.GetString("title"),
		ReferenceNumber: quoteRecord.GetString("reference_number"),
		Customer:        quoteRecord.GetString("customer"),
		CreatedDate:     createdDate,
		Rows:            summary.Rows,
		OverallRate:     summary.OverallRate,
		Totals:          summary.Totals,
	}, nil
}

// sanitizeFilename removes characters that are unsafe for filenames.
func sanitizeFilename(s string) string {
	s = strings.ReplaceAll(s, " ", "-")
	s = strings.ReplaceAll(s, "/", "-")
	s = strings.ReplaceAll(s, "\\", "-")
	s = strings.ReplaceAll(s, ":", "-")
	return s
}

type exportFormat struct {
	ext         string
	contentType string
	generate    func(services.ExportData) ([]byte, error)
}

var (
	excelExport = exportFormat{
		ext:         "xlsx",
		contentType: "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet",
		generate:    services.GenerateExcel,
	}
	pdfExport = exportFormat{
		ext:         "pdf",
		contentType: "application/pdf",
		generate:    services.GeneratePDF,
	}
)

func handleExport(app core.App, st quote.Store, log *logger.Logger, format exportFormat) func(*core.RequestEvent) error {
	return func(e *core.RequestEvent) error {
		quoteID := e.Request.PathValue("quoteId")
		if quoteID == "" {
			return e.String(http.StatusBadRequest, "Missing quote ID")
		}
		ctx := log.WithFields(e.Request.Context(), map[string]any{"quote_id": quoteID, "format": format.ext})

		data, err := buildExportData(e.Request.Context(), app, st, quoteID)
		if errors.Is(err, store.ErrQuoteNotFound) {
			return e.String(http.StatusNotFound, "Quote not found")
		}
		if err != nil {
			log.Error(ctx, "export: build data", err)
			return e.String(http.StatusInternalServerError, "Failed to load quote")
		}

		out, err := format.generate(data)
		if err != nil {
			log.Error(ctx, "export: generate", err)
			return e.String(http.StatusInternalServerError, fmt.Sprintf("Failed to generate %s file", strings.ToUpper(format.ext)))
		}

		filename := fmt.Sprintf("Quote_%s_%d.%s", sanitizeFilename(data.Title), time.Now().Year(), format.ext)

		e.Response.Header().Set("Content-Type", format.contentType)
		e.Response.Header().Set("Content-Disposition", fmt.Sprintf(`attachment; filename="%s"`, filename))
		e.Response.Write(out)
		return nil
	}
}

// HandleQuoteExportExcel returns a handler that downloads the saved quote as Excel.
func HandleQuoteExportExcel(app core.App, st quote.Store, log *logger.Logger) func(*core.RequestEvent) error {
	return handleExport(app, st, log, excelExport)
}

// HandleQuoteExportPDF returns a handler that downloads the saved quote as PDF.
func HandleQuoteExportPDF(app core.App, st quote.Store, log *logger.Logger) func(*core.RequestEvent) error {
	return handleExport(app, st, log, pdfExport)
}
