package services

import (
	"fmt"
	"math"

	"github.com/johnfercher/maroto/v2"
	"github.com/johnfercher/maroto/v2/pkg/components/col"
	"github.com/johnfercher/maroto/v2/pkg/components/row"
	"github.com/johnfercher/maroto/v2/pkg/components/text"
	"github.com/johnfercher/maroto/v2/pkg/config"
	"github.com/johnfercher/maroto/v2/pkg/consts/align"
	"github.com/johnfercher/maroto/v2/pkg/consts/fontstyle"
	"github.com/johnfercher/maroto/v2/pkg/consts/orientation"
	"github.com/johnfercher/maroto/v2/pkg/consts/pagesize"
	"github.com/johnfercher/maroto/v2/pkg/core"
	"github.com/johnfercher/maroto/v2/pkg/props"
)

// GeneratePDF creates a PDF document from quote export data using maroto/v2.
// It returns the raw PDF bytes or an error.
func GeneratePDF(data ExportData) ([]byte, error) {
	cfg := config.NewBuilder().
		WithOrientation(orientation.Horizontal).
		WithPageSize(pagesize.A4).
		WithLeftMargin(10).
		WithTopMargin(10).
		WithRightMargin(10).
		WithPageNumber(props.PageNumber{
			Pattern: "Page {current} of {total}",
			Place:   props.RightBottom,
			Size:    7,
			Color:   &props.Color{Red: 120, Green: 120, Blue: 120},
		}).
		Build()

	m := maroto.New(cfg)

	addHeader(m, data)
	addTableHeader(m)
	for _, r := range data.Rows {
		addTableRow(m, r)
	}
	addSummary(m, data)
	addFooter(m, data)

	doc, err := m.Generate()
	if err != nil {
		return nil, fmt.Errorf("failed to generate PDF: %w", err)
	}

	return doc.GetBytes(), nil
}

// addHeader adds the title, reference, customer and date to the PDF.
func addHeader(m core.Maroto, data ExportData) {
	m.AddRows(
		row.New(12).Add(
			col.New(12).Add(
				text.New(data.Title, props.Text{
					Size:  16,
					Style: fontstyle.Bold,
					Align: align.Center,
				}),
			),
		),
	)

	grey := &props.Color{Red: 80, Green: 80, Blue: 80}
	m.AddRows(
		row.New(8).Add(
			col.New(4).Add(
				text.New(fmt.Sprintf("Reference: %s", data.ReferenceNumber), props.Text{
					Size:  9,
					Align: align.Left,
					Color: grey,
				}),
			),
			col.New(4).Add(
				text.New(fmt.Sprintf("Customer: %s", data.Customer), props.Text{
					Size:  9,
					Align: align.Center,
					Color: grey,
				}),
			),
			col.New(4).Add(
				text.New(fmt.Sprintf("Date: %s", data.CreatedDate), props.Text{
					Size:  9,
					Align: align.Right,
					Color: grey,
				}),
			),
		),
	)

	m.AddRows(row.New(4))
}

// pdfColumns are the grid widths (out of 12) of the line table.
var pdfColumns = []struct {
	title string
	width int
	align align.Type
}{
	{"#", 1, align.Center},
	{"Location", 1, align.Left},
	{"Product", 2, align.Left},
	{"Description", 2, align.Left},
	{"Qty", 1, align.Right},
	{"Rate", 1, align.Right},
	{"Amount", 1, align.Right},
	{"Tax", 1, align.Right},
	{"Gross", 2, align.Right},
}

// addTableHeader adds the column header row for the line table.
func addTableHeader(m core.Maroto) {
	headerBg := &props.Color{Red: 33, Green: 37, Blue: 41}
	headerCell := props.Cell{BackgroundColor: headerBg}

	cols := make([]core.Col, 0, len(pdfColumns))
	for _, c := range pdfColumns {
		cols = append(cols, col.New(c.width).Add(
			text.New(c.title, props.Text{
				Size:  8,
				Style: fontstyle.Bold,
				Align: c.align,
				Color: &props.Color{Red: 255, Green: 255, Blue: 255},
			}),
		).WithStyle(&headerCell))
	}
	m.AddRows(row.New(8).Add(cols...))
}

// addTableRow adds a single quote line. Discount lines are shaded and italic.
func addTableRow(m core.Maroto, r ExportRow) {
	var cellStyle *props.Cell
	textStyle := fontstyle.Normal
	if r.Discount {
		textStyle = fontstyle.Italic
		cellStyle = &props.Cell{BackgroundColor: &props.Color{Red: 253, Green: 236, Blue: 236}}
	}

	values := []string{
		r.Index,
		r.Location,
		r.Product,
		r.Description,
		formatQty(r.Quantity),
		FormatAmount(r.Rate),
		FormatAmount(r.Amount),
		FormatAmount(r.TaxAmount),
		FormatAmount(r.GrossAmount),
	}

	cols := make([]core.Col, 0, len(pdfColumns))
	for i, c := range pdfColumns {
		cl := col.New(c.width).Add(text.New(values[i], props.Text{
			Size:  7,
			Style: textStyle,
			Align: c.align,
		}))
		if cellStyle != nil {
			cl = cl.WithStyle(cellStyle)
		}
		cols = append(cols, cl)
	}
	m.AddRows(row.New(7).Add(cols...))
}

// addSummary adds the totals section at the bottom of the PDF.
func addSummary(m core.Maroto, data ExportData) {
	m.AddRows(row.New(6))

	summaryCell := &props.Cell{BackgroundColor: &props.Color{Red: 240, Green: 240, Blue: 240}}
	style := props.Text{
		Size:  9,
		Style: fontstyle.Bold,
		Align: align.Right,
	}

	for _, line := range summaryLines(data) {
		m.AddRows(
			row.New(8).Add(
				col.New(8).Add(text.New(line.label, style)).WithStyle(summaryCell),
				col.New(4).Add(text.New(FormatAmount(line.value), style)).WithStyle(summaryCell),
			),
		)
	}
}

// addFooter adds the generated-date line at the bottom.
func addFooter(m core.Maroto, data ExportData) {
	m.AddRows(row.New(6))
	m.AddRows(
		row.New(6).Add(
			col.New(12).Add(
				text.New(
					fmt.Sprintf("Generated on %s", data.CreatedDate),
					props.Text{
						Size:  7,
						Align: align.Left,
						Color: &props.Color{Red: 140, Green: 140, Blue: 140},
					},
				),
			),
		),
	)
}

// formatQty returns a string representation of the quantity value.
// Whole numbers are formatted without decimals; fractional values get 2 decimal places.
func formatQty(qty float64) string {
	if qty == math.Trunc(qty) {
		return fmt.Sprintf("%.0f", qty)
	}
	return fmt.Sprintf("%.2f", qty)
}
