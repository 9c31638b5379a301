// Package export renders ledger rows as downloadable documents.
package export

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"wallet_ledger/internal/domain"

	"github.com/shopspring/decimal"
)

// Format is a supported document format.
type Format string

// Supported formats
const (
	CSV  Format = "csv"
	PDF  Format = "pdf"
	XLSX Format = "xlsx"
)

// ErrUnsupportedFormat is returned for formats other than csv, pdf and xlsx.
var ErrUnsupportedFormat = errors.New("unsupported export format")

// Context describes who the document is for and when it was produced.
type Context struct {
	UserName    string
	Currency    string
	GeneratedAt time.Time
}

// Document is a rendered export.
type Document struct {
	Body        []byte
	ContentType string
	Extension   string
}

// FileName returns the download name for d, stamped with the generation date.
func (d *Document) FileName(generatedAt time.Time) string {
	return "transactions_" + generatedAt.UTC().Format("20060102") + "." + d.Extension
}

// ParseFormat accepts a format name case-insensitively.
func ParseFormat(s string) (Format, error) {
	switch f := Format(strings.ToLower(strings.TrimSpace(s))); f {
	case CSV, PDF, XLSX:
		return f, nil
	default:
		return "", fmt.Errorf("%w: %q", ErrUnsupportedFormat, s)
	}
}

// Render renders rows in format. Rows are written in the order given.
func Render(rows []domain.Transaction, format Format, c Context) (*Document, error) {
	if len(rows) == 0 {
		return nil, domain.ErrNoRowsToExport
	}
	if c.GeneratedAt.IsZero() {
		c.GeneratedAt = time.Now()
	}
	c.GeneratedAt = c.GeneratedAt.UTC()

	switch format {
	case CSV:
		body, err := renderCSV(rows)
		if err != nil {
			return nil, err
		}
		return &Document{Body: body, ContentType: "text/csv; charset=utf-8", Extension: "csv"}, nil
	case PDF:
		body, err := renderPDF(rows, c)
		if err != nil {
			return nil, err
		}
		return &Document{Body: body, ContentType: "application/pdf", Extension: "pdf"}, nil
	case XLSX:
		body, err := renderXLSX(rows, c)
		if err != nil {
			return nil, err
		}
		return &Document{Body: body, ContentType: "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet", Extension: "xlsx"}, nil
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnsupportedFormat, format)
	}
}

// totals sums credit and debit magnitudes.
func totals(rows []domain.Transaction) (credit, debit decimal.Decimal) {
	for _, r := range rows {
		if r.Type == domain.Credit {
			credit = credit.Add(r.Amount)
		} else {
			debit = debit.Add(r.Amount)
		}
	}
	return credit, debit
}

func money(d decimal.Decimal, currency string) string {
	if currency == "" {
		return d.StringFixed(domain.AmountScale)
	}
	return d.StringFixed(domain.AmountScale) + " " + currency
}
