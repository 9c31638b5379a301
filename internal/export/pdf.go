package export

import (
	"bytes"
	"strconv"

	"wallet_ledger/internal/domain"

	"github.com/go-pdf/fpdf"
)

const (
	pdfFont       = "Helvetica"
	pdfRowHeight  = 7.0
	pdfPageBottom = 280.0
)

var (
	pdfHeaders = []string{"ID", "Date", "Type", "Description", "Amount", "Category"}
	pdfWidths  = []float64{15, 30, 22, 63, 30, 30}
)

func renderPDF(rows []domain.Transaction, c Context) ([]byte, error) {
	pdf := fpdf.New("P", "mm", "A4", "")
	pdf.SetTitle("Transaction History", true)
	pdf.SetAutoPageBreak(false, 10)
	tr := pdf.UnicodeTranslatorFromDescriptor("")
	pdf.AddPage()

	pdf.SetFont(pdfFont, "B", 18)
	pdf.CellFormat(0, 10, "Transaction History", "", 1, "L", false, 0, "")
	pdf.SetFont(pdfFont, "", 10)
	pdf.CellFormat(0, 6, tr("User: "+c.UserName), "", 1, "L", false, 0, "")
	pdf.CellFormat(0, 6, "Generated: "+c.GeneratedAt.Format("2006-01-02 15:04:05"), "", 1, "L", false, 0, "")
	pdf.Ln(4)

	header := func() {
		pdf.SetFont(pdfFont, "B", 11)
		pdf.SetFillColor(211, 211, 211)
		for i, h := range pdfHeaders {
			pdf.CellFormat(pdfWidths[i], pdfRowHeight, h, "1", 0, "C", true, 0, "")
		}
		pdf.Ln(-1)
		pdf.SetFont(pdfFont, "", 10)
	}
	header()

	for _, r := range rows {
		if pdf.GetY()+pdfRowHeight > pdfPageBottom {
			pdf.AddPage()
			header()
		}
		cells := []string{
			strconv.FormatUint(uint64(r.ID), 10),
			r.CreatedAt.UTC().Format("2006-01-02 15:04"),
			string(r.Type),
			fit(pdf, tr(r.Description), pdfWidths[3]-2),
			money(r.Amount, c.Currency),
			fit(pdf, tr(r.Category), pdfWidths[5]-2),
		}
		for i, v := range cells {
			align := "L"
			if i == 4 {
				align = "R"
			}
			pdf.CellFormat(pdfWidths[i], pdfRowHeight, v, "1", 0, align, false, 0, "")
		}
		pdf.Ln(-1)
	}

	credit, debit := totals(rows)
	if pdf.GetY()+20 > pdfPageBottom {
		pdf.AddPage()
	}
	pdf.Ln(4)
	pdf.SetFont(pdfFont, "B", 11)
	pdf.CellFormat(0, 6, "Total Credit: "+money(credit, c.Currency), "", 1, "L", false, 0, "")
	pdf.CellFormat(0, 6, "Total Debit: "+money(debit, c.Currency), "", 1, "L", false, 0, "")

	var buf bytes.Buffer
	if err := pdf.Output(&buf); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

// fit truncates s with an ellipsis so it renders within width.
func fit(pdf *fpdf.Fpdf, s string, width float64) string {
	if pdf.GetStringWidth(s) <= width {
		return s
	}
	r := []rune(s)
	for len(r) > 0 && pdf.GetStringWidth(string(r)+"...") > width {
		r = r[:len(r)-1]
	}
	return string(r) + "..."
}
