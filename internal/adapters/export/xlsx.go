package export

import (
	"fmt"
	"io"

	"github.com/xuri/excelize/v2"

	"github.com/jsamuelsen/quotation-service/internal/domain"
)

const (
	quotationsSheet = "Quotations"
	summarySheet    = "Summary"
)

// xlsx columns after the display columns: raw currency and numeric total.
var xlsxColumns = append(append([]string{}, columns...), "Currency", "Total", "Status")

func writeXLSX(w io.Writer, doc *Document) (err error) {
	f := excelize.NewFile()
	defer func() {
		if cerr := f.Close(); cerr != nil && err == nil {
			err = fmt.Errorf("close workbook: %w", cerr)
		}
	}()

	if err := f.SetSheetName("Sheet1", quotationsSheet); err != nil {
		return fmt.Errorf("rename sheet: %w", err)
	}

	headerStyle, err := f.NewStyle(&excelize.Style{
		Font: &excelize.Font{Bold: true, Color: "#FFFFFF"},
		Fill: excelize.Fill{Type: "pattern", Color: []string{"#4472C4"}, Pattern: 1},
		Alignment: &excelize.Alignment{
			Horizontal: "center",
			Vertical:   "center",
		},
	})
	if err != nil {
		return fmt.Errorf("header style: %w", err)
	}

	if err := writeQuotationsSheet(f, doc, headerStyle); err != nil {
		return err
	}

	if err := writeSummarySheet(f, doc, headerStyle); err != nil {
		return err
	}

	if err := f.Write(w); err != nil {
		return fmt.Errorf("write workbook: %w", err)
	}

	return nil
}

func writeQuotationsSheet(f *excelize.File, doc *Document, headerStyle int) error {
	header := make([]any, len(xlsxColumns))
	for i, c := range xlsxColumns {
		header[i] = c
	}

	if err := f.SetSheetRow(quotationsSheet, "A1", &header); err != nil {
		return fmt.Errorf("write header: %w", err)
	}

	last, _ := excelize.CoordinatesToCellName(len(xlsxColumns), 1)
	if err := f.SetCellStyle(quotationsSheet, "A1", last, headerStyle); err != nil {
		return fmt.Errorf("style header: %w", err)
	}

	for i, item := range doc.Items {
		row := make([]any, 0, len(xlsxColumns))
		for _, v := range rowValues(domain.ToRow(item)) {
			row = append(row, v)
		}

		row = append(row, item.Currency, totalCell(item), item.Status)

		cell, _ := excelize.CoordinatesToCellName(1, i+2)
		if err := f.SetSheetRow(quotationsSheet, cell, &row); err != nil {
			return fmt.Errorf("write row %d: %w", i+1, err)
		}
	}

	if err := f.SetColWidth(quotationsSheet, "A", "F", 22); err != nil {
		return fmt.Errorf("column width: %w", err)
	}

	return f.AutoFilter(quotationsSheet, "A1:"+last, nil)
}

// totalCell writes parseable totals as numbers and keeps the raw text otherwise.
func totalCell(item domain.EnrichedQuotation) any {
	total, err := item.Total()
	if err != nil {
		return item.TotalAmount
	}

	return total.InexactFloat64()
}

func writeSummarySheet(f *excelize.File, doc *Document, headerStyle int) error {
	if _, err := f.NewSheet(summarySheet); err != nil {
		return fmt.Errorf("create summary sheet: %w", err)
	}

	s := doc.Summary
	rows := [][]any{
		{doc.Title},
		{"Generated", doc.GeneratedAt.UTC().Format("2006-01-02 15:04:05 MST")},
		{"Filter", describeCriteria(doc.Criteria)},
		{"Quotations", s.Count},
		{"With client", s.WithClient},
		{"Without client", s.WithoutClient},
		{"Unparseable amounts", s.InvalidAmounts},
		{},
		{"Currency", "Count", "Total"},
	}

	for _, t := range s.Totals {
		rows = append(rows, []any{t.Currency, t.Count, t.Total.InexactFloat64()})
	}

	for i, row := range rows {
		cell, _ := excelize.CoordinatesToCellName(1, i+1)
		if err := f.SetSheetRow(summarySheet, cell, &row); err != nil {
			return fmt.Errorf("write summary row %d: %w", i+1, err)
		}
	}

	if err := f.SetCellStyle(summarySheet, "A9", "C9", headerStyle); err != nil {
		return fmt.Errorf("style summary header: %w", err)
	}

	return f.SetColWidth(summarySheet, "A", "A", 24)
}
