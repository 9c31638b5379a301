package api

import (
	"errors"   // Error inspection
	"net/http" // HTTP status codes
	"time"     // Export timestamp

	"wallet_ledger/internal/export"     // Document rendering
	"wallet_ledger/internal/history"    // History queries
	"wallet_ledger/internal/ledger"     // Balance lookup for the export currency
	"wallet_ledger/internal/middleware" // Principal lookup

	"github.com/gin-gonic/gin"   // Gin web framework
	"github.com/sirupsen/logrus" // Logging library
)

// GetTransactionHistoryHandler returns one page of the caller's transactions
func GetTransactionHistoryHandler(hist *history.Service, log logrus.FieldLogger) gin.HandlerFunc {
	return func(c *gin.Context) {
		p, ok := middleware.PrincipalFrom(c)
		if !ok {
			unauthorized(c)
			return
		}
		page, pageSize, err := pageParams(c)
		if err != nil {
			respondError(c, log, err)
			return
		}
		from, to, err := dateRange(c)
		if err != nil {
			badRequest(c, "Invalid date range", err)
			return
		}
		result, err := hist.ListTransactions(c.Request.Context(), p, history.ListQuery{
			Page:     page,
			PageSize: pageSize,
			Category: c.Query("category"),
			From:     from,
			To:       to,
		})
		if err != nil {
			respondError(c, log, err)
			return
		}
		respond(c, http.StatusOK, "Transactions retrieved", result)
	}
}

// GetTransactionHandler returns one of the caller's transactions
func GetTransactionHandler(hist *history.Service, log logrus.FieldLogger) gin.HandlerFunc {
	return func(c *gin.Context) {
		p, ok := middleware.PrincipalFrom(c)
		if !ok {
			unauthorized(c)
			return
		}
		id, err := idParam(c, "id")
		if err != nil {
			badRequest(c, "Invalid transaction id", err)
			return
		}
		t, err := hist.GetTransaction(c.Request.Context(), p, id)
		if err != nil {
			respondError(c, log, err)
			return
		}
		respond(c, http.StatusOK, "Transaction retrieved", t)
	}
}

// ListCategoriesHandler returns the categories used in the caller's ledger
func ListCategoriesHandler(hist *history.Service, log logrus.FieldLogger) gin.HandlerFunc {
	return func(c *gin.Context) {
		p, ok := middleware.PrincipalFrom(c)
		if !ok {
			unauthorized(c)
			return
		}
		categories, err := hist.ListCategories(c.Request.Context(), p)
		if err != nil {
			respondError(c, log, err)
			return
		}
		respond(c, http.StatusOK, "Categories retrieved", gin.H{"categories": categories})
	}
}

// SummaryHandler returns per-category totals for an optional date range
func SummaryHandler(hist *history.Service, log logrus.FieldLogger) gin.HandlerFunc {
	return func(c *gin.Context) {
		p, ok := middleware.PrincipalFrom(c)
		if !ok {
			unauthorized(c)
			return
		}
		from, to, err := dateRange(c)
		if err != nil {
			badRequest(c, "Invalid date range", err)
			return
		}
		summary, err := hist.SummaryByCategory(c.Request.Context(), p, from, to)
		if err != nil {
			respondError(c, log, err)
			return
		}
		respond(c, http.StatusOK, "Summary retrieved", gin.H{"summary": summary})
	}
}

// ExportHandler streams the caller's filtered transactions as a csv, pdf or xlsx download
func ExportHandler(hist *history.Service, engine *ledger.Engine, log logrus.FieldLogger) gin.HandlerFunc {
	return func(c *gin.Context) {
		p, ok := middleware.PrincipalFrom(c)
		if !ok {
			unauthorized(c)
			return
		}
		format, err := export.ParseFormat(c.Param("format"))
		if err != nil {
			badRequest(c, "Unsupported export format", err)
			return
		}
		from, to, err := dateRange(c)
		if err != nil {
			badRequest(c, "Invalid date range", err)
			return
		}
		ctx := c.Request.Context()
		rows, err := hist.ExportRows(ctx, p, history.ExportQuery{Category: c.Query("category"), From: from, To: to})
		if err != nil {
			respondError(c, log, err)
			return
		}
		view, err := engine.Balance(ctx, p) // Wallet currency for amount columns
		if err != nil {
			respondError(c, log, err)
			return
		}
		generatedAt := time.Now().UTC()
		doc, err := export.Render(rows, format, export.Context{
			UserName:    p.Name,
			Currency:    view.Currency,
			GeneratedAt: generatedAt,
		})
		if err != nil {
			if errors.Is(err, export.ErrUnsupportedFormat) {
				badRequest(c, "Unsupported export format", err)
				return
			}
			respondError(c, log, err)
			return
		}
		middleware.Logger(c, log).WithFields(logrus.Fields{
			"user_id": p.UserID,  // Exporting user
			"format":  format,    // Document format
			"rows":    len(rows), // Exported rows
		}).Info("Transactions exported")
		c.Header("Content-Disposition", `attachment; filename="`+doc.FileName(generatedAt)+`"`)
		c.Data(http.StatusOK, doc.ContentType, doc.Body)
	}
}
