package report

import (
	"fmt"
	"io"
	"math"
	"time"

	"github.com/xuri/excelize/v2"

	"liyu1981.xyz/vessel-resource-service/pkg/engine"
)

const (
	sheetSummary    = "Summary"
	sheetHistory    = "History"
	sheetDeliveries = "Deliveries"
	defaultSheet    = "Sheet1"

	colorHeaderBg = "4472C4"
	colorHeaderFg = "FFFFFF"

	timeLayout = "2006-01-02 15:04:05"
)

type XLSXWriter struct {
	timezone *time.Location
}

func NewXLSXWriter(timezone *time.Location) *XLSXWriter {
	if timezone == nil {
		timezone = time.UTC
	}
	return &XLSXWriter{timezone: timezone}
}

func (w *XLSXWriter) Format() string { return "xlsx" }

func (w *XLSXWriter) ContentType() string {
	return "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"
}

func (w *XLSXWriter) Write(out io.Writer, data *Data) error {
	if data == nil {
		return fmt.Errorf("report data is nil")
	}

	f := excelize.NewFile()
	defer f.Close()

	headerStyle, err := f.NewStyle(&excelize.Style{
		Font: &excelize.Font{Bold: true, Color: colorHeaderFg},
		Fill: excelize.Fill{Type: "pattern", Color: []string{colorHeaderBg}, Pattern: 1},
		Alignment: &excelize.Alignment{
			Horizontal: "center",
			Vertical:   "center",
		},
	})
	if err != nil {
		return err
	}

	if err := w.summarySheet(f, data); err != nil {
		return fmt.Errorf("failed to create summary sheet: %w", err)
	}
	if err := w.historySheet(f, data, headerStyle); err != nil {
		return fmt.Errorf("failed to create history sheet: %w", err)
	}
	if err := w.deliveriesSheet(f, data, headerStyle); err != nil {
		return fmt.Errorf("failed to create deliveries sheet: %w", err)
	}

	_ = f.DeleteSheet(defaultSheet)
	idx, _ := f.GetSheetIndex(sheetSummary)
	f.SetActiveSheet(idx)

	if err := f.Write(out); err != nil {
		return fmt.Errorf("failed to write xlsx: %w", err)
	}
	return nil
}

func (w *XLSXWriter) summarySheet(f *excelize.File, data *Data) error {
	if _, err := f.NewSheet(sheetSummary); err != nil {
		return err
	}
	_ = f.SetColWidth(sheetSummary, "A", "A", 22)
	_ = f.SetColWidth(sheetSummary, "B", "B", 30)

	r := data.Resource
	remaining := engine.RemainingDuration(&r)
	hours := "unbounded"
	if !math.IsInf(remaining.Hours, 1) {
		hours = fmt.Sprintf("%.1f", remaining.Hours)
	}

	rows := []struct {
		label string
		value any
	}{
		{"Resource", string(r.Type)},
		{"Level (%)", r.Level},
		{"Quantity (" + r.Unit + ")", remaining.Absolute},
		{"Capacity (" + r.Unit + ")", r.Capacity},
		{"Consumption rate", fmt.Sprintf("%g %s", r.ConsumptionRate.Value, r.ConsumptionRate.Unit)},
		{"Remaining hours", hours},
		{"Last updated", r.LastUpdated.In(w.timezone).Format(timeLayout)},
		{"Period", formatRange(data.From, data.To, w.timezone)},
		{"History entries", len(data.History)},
		{"Deliveries", len(data.Deliveries)},
		{"Generated", data.GeneratedAt.In(w.timezone).Format(timeLayout)},
	}
	for i, row := range rows {
		_ = f.SetCellValue(sheetSummary, fmt.Sprintf("A%d", i+1), row.label)
		_ = f.SetCellValue(sheetSummary, fmt.Sprintf("B%d", i+1), row.value)
	}
	return nil
}

func (w *XLSXWriter) historySheet(f *excelize.File, data *Data, headerStyle int) error {
	if _, err := f.NewSheet(sheetHistory); err != nil {
		return err
	}
	headers := []string{"Time", "Action", "Amount", "Level (%)", "Actor"}
	if err := writeHeader(f, sheetHistory, headers, headerStyle); err != nil {
		return err
	}
	for i, e := range data.History {
		row := i + 2
		_ = f.SetCellValue(sheetHistory, fmt.Sprintf("A%d", row), e.Timestamp.In(w.timezone).Format(timeLayout))
		_ = f.SetCellValue(sheetHistory, fmt.Sprintf("B%d", row), string(e.Action))
		_ = f.SetCellValue(sheetHistory, fmt.Sprintf("C%d", row), e.Amount)
		_ = f.SetCellValue(sheetHistory, fmt.Sprintf("D%d", row), e.Level)
		_ = f.SetCellValue(sheetHistory, fmt.Sprintf("E%d", row), e.Actor)
	}
	return nil
}

func (w *XLSXWriter) deliveriesSheet(f *excelize.File, data *Data, headerStyle int) error {
	if _, err := f.NewSheet(sheetDeliveries); err != nil {
		return err
	}
	headers := []string{"Time", "Amount", "Document", "Actor"}
	if err := writeHeader(f, sheetDeliveries, headers, headerStyle); err != nil {
		return err
	}
	for i, d := range data.Deliveries {
		row := i + 2
		_ = f.SetCellValue(sheetDeliveries, fmt.Sprintf("A%d", row), d.Timestamp.In(w.timezone).Format(timeLayout))
		_ = f.SetCellValue(sheetDeliveries, fmt.Sprintf("B%d", row), d.Amount)
		_ = f.SetCellValue(sheetDeliveries, fmt.Sprintf("C%d", row), d.Document)
		_ = f.SetCellValue(sheetDeliveries, fmt.Sprintf("D%d", row), d.Actor)
	}
	return nil
}

func writeHeader(f *excelize.File, sheet string, headers []string, style int) error {
	for i, h := range headers {
		cell, err := excelize.CoordinatesToCellName(i+1, 1)
		if err != nil {
			return err
		}
		_ = f.SetCellValue(sheet, cell, h)
	}
	last, _ := excelize.CoordinatesToCellName(len(headers), 1)
	_ = f.SetColWidth(sheet, "A", "A", 20)
	return f.SetCellStyle(sheet, "A1", last, style)
}
