package export

import (
	"fmt"

	"wallet_ledger/internal/domain"

	"github.com/xuri/excelize/v2"
)

const sheetName = "Transactions"

var xlsxWidths = map[string]float64{"A": 8, "B": 20, "C": 10, "D": 40, "E": 14, "F": 16}

func renderXLSX(rows []domain.Transaction, c Context) ([]byte, error) {
	f := excelize.NewFile()
	defer f.Close()

	if err := f.SetSheetName("Sheet1", sheetName); err != nil {
		return nil, fmt.Errorf("rename sheet: %w", err)
	}
	headerStyle, err := f.NewStyle(&excelize.Style{
		Font: &excelize.Font{Bold: true},
		Fill: excelize.Fill{Type: "pattern", Color: []string{"#D3D3D3"}, Pattern: 1},
	})
	if err != nil {
		return nil, fmt.Errorf("header style: %w", err)
	}
	amountStyle, err := f.NewStyle(&excelize.Style{NumFmt: 2})
	if err != nil {
		return nil, fmt.Errorf("amount style: %w", err)
	}

	header := []any{"ID", "Date", "Type", "Description", "Amount", "Category"}
	if err := f.SetSheetRow(sheetName, "A1", &header); err != nil {
		return nil, fmt.Errorf("write header: %w", err)
	}
	if err := f.SetCellStyle(sheetName, "A1", "F1", headerStyle); err != nil {
		return nil, fmt.Errorf("style header: %w", err)
	}

	for i, r := range rows {
		cell, err := excelize.CoordinatesToCellName(1, i+2)
		if err != nil {
			return nil, err
		}
		values := []any{
			r.ID,
			r.CreatedAt.UTC().Format("2006-01-02 15:04:05"),
			string(r.Type),
			r.Description,
			r.Amount.InexactFloat64(),
			r.Category,
		}
		if err := f.SetSheetRow(sheetName, cell, &values); err != nil {
			return nil, fmt.Errorf("write row %d: %w", r.ID, err)
		}
	}
	last := len(rows) + 1
	if err := f.SetCellStyle(sheetName, "E2", fmt.Sprintf("E%d", last), amountStyle); err != nil {
		return nil, fmt.Errorf("style amounts: %w", err)
	}

	credit, debit := totals(rows)
	summary := [][]any{
		{"Total Credit", credit.InexactFloat64()},
		{"Total Debit", debit.InexactFloat64()},
		{"User", c.UserName},
		{"Generated", c.GeneratedAt.Format("2006-01-02 15:04:05")},
	}
	for i, row := range summary {
		cell := fmt.Sprintf("D%d", last+2+i)
		if err := f.SetSheetRow(sheetName, cell, &row); err != nil {
			return nil, fmt.Errorf("write summary: %w", err)
		}
	}
	if err := f.SetCellStyle(sheetName, fmt.Sprintf("E%d", last+2), fmt.Sprintf("E%d", last+3), amountStyle); err != nil {
		return nil, fmt.Errorf("style totals: %w", err)
	}

	for col, width := range xlsxWidths {
		if err := f.SetColWidth(sheetName, col, col, width); err != nil {
			return nil, fmt.Errorf("column width: %w", err)
		}
	}

	buf, err := f.WriteToBuffer()
	if err != nil {
		return nil, fmt.Errorf("write workbook: %w", err)
	}
	return buf.Bytes(), nil
}
