package export

import (
	"bytes"
	"encoding/csv"
	"strconv"
	"time"

	"wallet_ledger/internal/domain"
)

var csvHeader = []string{"Id", "Amount", "Type", "Date", "Description", "Category"}

func renderCSV(rows []domain.Transaction) ([]byte, error) {
	var buf bytes.Buffer
	w := csv.NewWriter(&buf)
	if err := w.Write(csvHeader); err != nil {
		return nil, err
	}
	for _, r := range rows {
		record := []string{
			strconv.FormatUint(uint64(r.ID), 10),
			r.Amount.StringFixed(domain.AmountScale),
			string(r.Type),
			r.CreatedAt.UTC().Format(time.RFC3339),
			r.Description,
			r.Category,
		}
		if err := w.Write(record); err != nil {
			return nil, err
		}
	}
	w.Flush()
	if err := w.Error(); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}
