package report

import (
	"fmt"
	"io"
	"math"
	"time"

	"github.com/jung-kurt/gofpdf"

	"liyu1981.xyz/vessel-resource-service/pkg/engine"
)

type PDFWriter struct {
	timezone *time.Location
}

func NewPDFWriter(timezone *time.Location) *PDFWriter {
	if timezone == nil {
		timezone = time.UTC
	}
	return &PDFWriter{timezone: timezone}
}

func (w *PDFWriter) Format() string { return "pdf" }

func (w *PDFWriter) ContentType() string { return "application/pdf" }

func (w *PDFWriter) Write(out io.Writer, data *Data) error {
	if data == nil {
		return fmt.Errorf("report data is nil")
	}

	r := data.Resource
	remaining := engine.RemainingDuration(&r)

	pdf := gofpdf.New("P", "mm", "A4", "")
	pdf.SetFont("Arial", "", 12)
	pdf.AddPage()

	pdf.SetFont("Arial", "B", 14)
	pdf.Cell(0, 8, fmt.Sprintf("Resource Report: %s", r.Type))
	pdf.Ln(10)

	pdf.SetFont("Arial", "", 10)
	lines := []string{
		fmt.Sprintf("Level: %.1f%% (%.1f of %.1f %s)", r.Level, remaining.Absolute, r.Capacity, r.Unit),
		fmt.Sprintf("Consumption rate: %g %s", r.ConsumptionRate.Value, r.ConsumptionRate.Unit),
		fmt.Sprintf("Last updated: %s", r.LastUpdated.In(w.timezone).Format(timeLayout)),
		fmt.Sprintf("Period: %s", formatRange(data.From, data.To, w.timezone)),
		fmt.Sprintf("Generated: %s", data.GeneratedAt.In(w.timezone).Format(time.RFC3339)),
	}
	if !math.IsInf(remaining.Hours, 1) {
		lines = append(lines, fmt.Sprintf("Remaining: %.1f hours (%.1f days)", remaining.Hours, remaining.Days))
	}
	for _, line := range lines {
		pdf.Cell(0, 6, line)
		pdf.Ln(5)
	}
	pdf.Ln(4)

	pdf.SetFont("Arial", "B", 11)
	pdf.Cell(0, 6, "History")
	pdf.Ln(7)
	tableHeader(pdf, []string{"Time", "Action", "Amount", "Level (%)", "Actor"}, []float64{40, 30, 30, 25, 45})
	for _, e := range data.History {
		pdf.CellFormat(40, 6, e.Timestamp.In(w.timezone).Format("2006-01-02 15:04"), "1", 0, "C", false, 0, "")
		pdf.CellFormat(30, 6, string(e.Action), "1", 0, "C", false, 0, "")
		pdf.CellFormat(30, 6, fmt.Sprintf("%.2f", e.Amount), "1", 0, "R", false, 0, "")
		pdf.CellFormat(25, 6, fmt.Sprintf("%.1f", e.Level), "1", 0, "R", false, 0, "")
		pdf.CellFormat(45, 6, e.Actor, "1", 0, "L", false, 0, "")
		pdf.Ln(-1)
	}
	pdf.Ln(6)

	pdf.SetFont("Arial", "B", 11)
	pdf.Cell(0, 6, "Deliveries")
	pdf.Ln(7)
	tableHeader(pdf, []string{"Time", "Amount", "Document", "Actor"}, []float64{40, 30, 60, 40})
	for _, d := range data.Deliveries {
		pdf.CellFormat(40, 6, d.Timestamp.In(w.timezone).Format("2006-01-02 15:04"), "1", 0, "C", false, 0, "")
		pdf.CellFormat(30, 6, fmt.Sprintf("%.2f", d.Amount), "1", 0, "R", false, 0, "")
		pdf.CellFormat(60, 6, d.Document, "1", 0, "L", false, 0, "")
		pdf.CellFormat(40, 6, d.Actor, "1", 0, "L", false, 0, "")
		pdf.Ln(-1)
	}

	return pdf.Output(out)
}

func tableHeader(pdf *gofpdf.Fpdf, headers []string, widths []float64) {
	pdf.SetFont("Arial", "B", 10)
	for i, h := range headers {
		pdf.CellFormat(widths[i], 6, h, "1", 0, "C", false, 0, "")
	}
	pdf.Ln(-1)
	pdf.SetFont("Arial", "", 10)
}
