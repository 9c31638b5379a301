package api

import (
	"net/http" // HTTP status codes

	"wallet_ledger/internal/domain"     // Domain errors
	"wallet_ledger/internal/middleware" // Request-scoped logger

	"github.com/gin-gonic/gin"   // Gin web framework
	"github.com/sirupsen/logrus" // Logging library
)

// Response is the envelope of every JSON reply
type Response struct {
	Success bool     `json:"success"` // Whether the request succeeded
	Message string   `json:"message"` // Short, user facing message
	Data    any      `json:"data"`    // Payload, null on failure
	Errors  []string `json:"errors"`  // Validation or diagnostic details
}

// respond writes a successful envelope
func respond(c *gin.Context, status int, msg string, data any) {
	c.JSON(status, Response{Success: true, Message: msg, Data: data, Errors: []string{}})
}

// fail writes a failed envelope
func fail(c *gin.Context, status int, msg string, errs ...string) {
	if errs == nil {
		errs = []string{}
	}
	c.JSON(status, Response{Success: false, Message: msg, Errors: errs})
}

// badRequest rejects a malformed request, echoing the binding error outside production
func badRequest(c *gin.Context, msg string, err error) {
	fail(c, http.StatusBadRequest, msg, details(err)...)
}

// details exposes err's text only outside release mode
func details(err error) []string {
	if err == nil || gin.Mode() == gin.ReleaseMode {
		return nil
	}
	return []string{err.Error()}
}

// statusOf maps a failure kind to its HTTP status
func statusOf(kind domain.ErrorKind) int {
	switch kind {
	case domain.KindInvalidAmount, domain.KindInvalidPage, domain.KindInsufficientFunds, domain.KindSelfTransfer:
		return http.StatusBadRequest
	case domain.KindWalletNotFound, domain.KindSenderWalletNotFound, domain.KindReceiverWalletNotFound,
		domain.KindReceiverNotFound, domain.KindTransactionNotFound, domain.KindNoRowsToExport:
		return http.StatusNotFound
	default:
		return http.StatusInternalServerError
	}
}

// respondError writes the envelope for err. Server-side failures are logged
// with their detail; the detail is returned only outside production.
func respondError(c *gin.Context, log logrus.FieldLogger, err error) {
	e, ok := domain.AsError(err)
	if !ok {
		e = domain.ErrStoreUnavailable.Wrap(err)
	}
	status := statusOf(e.Kind)
	if status >= http.StatusInternalServerError {
		middleware.Logger(c, log).WithFields(logrus.Fields{
			"kind":  e.Kind,
			"error": err.Error(),
		}).Error("Request failed")
	}
	var errs []string
	if e.Detail != "" && gin.Mode() != gin.ReleaseMode {
		errs = []string{e.Detail}
	}
	fail(c, status, e.Message, errs...)
}
