package api

import (
	"net/http" // HTTP status codes

	"wallet_ledger/internal/ledger"     // Ledger engine
	"wallet_ledger/internal/middleware" // Principal lookup

	"github.com/gin-gonic/gin"      // Gin web framework
	"github.com/shopspring/decimal" // Exact amounts
	"github.com/sirupsen/logrus"    // Logging library
)

// MoneyRequest is the body of a deposit or withdrawal
type MoneyRequest struct {
	Amount      decimal.Decimal `json:"amount"`      // Number or numeric string
	Category    string          `json:"category"`    // Optional category
	Description string          `json:"description"` // Optional description
}

// TransferRequest represents a transfer request
type TransferRequest struct {
	Receiver      string          `json:"receiver"`       // Receiver email or user id
	ReceiverEmail string          `json:"receiver_email"` // Alternative to receiver
	Amount        decimal.Decimal `json:"amount"`         // Transfer amount
	Category      string          `json:"category"`       // Optional category
}

// target returns the receiver named by the request
func (r TransferRequest) target() string {
	if r.Receiver != "" {
		return r.Receiver
	}
	return r.ReceiverEmail
}

// unauthorized rejects a request that reached a handler without a principal
func unauthorized(c *gin.Context) {
	fail(c, http.StatusUnauthorized, "Unauthorized")
}

// GetBalanceHandler returns the caller's balance and currency
func GetBalanceHandler(engine *ledger.Engine, log logrus.FieldLogger) gin.HandlerFunc {
	return func(c *gin.Context) {
		p, ok := middleware.PrincipalFrom(c) // Get principal from context
		if !ok {
			unauthorized(c)
			return
		}
		view, err := engine.Balance(c.Request.Context(), p)
		if err != nil {
			respondError(c, log, err)
			return
		}
		respond(c, http.StatusOK, "Balance retrieved", view)
	}
}

// DepositHandler credits the caller's wallet
func DepositHandler(engine *ledger.Engine, log logrus.FieldLogger) gin.HandlerFunc {
	return func(c *gin.Context) {
		p, ok := middleware.PrincipalFrom(c)
		if !ok {
			unauthorized(c)
			return
		}
		var req MoneyRequest // Bind JSON request to struct
		if err := c.ShouldBindJSON(&req); err != nil {
			badRequest(c, "Invalid request", err)
			return
		}
		receipt, err := engine.Deposit(c.Request.Context(), p, ledger.DepositRequest{
			Amount:      req.Amount,
			Category:    req.Category,
			Description: req.Description,
		})
		if err != nil {
			respondError(c, log, err)
			return
		}
		respond(c, http.StatusOK, "Deposit successful", receipt)
	}
}

// WithdrawHandler debits the caller's wallet
func WithdrawHandler(engine *ledger.Engine, log logrus.FieldLogger) gin.HandlerFunc {
	return func(c *gin.Context) {
		p, ok := middleware.PrincipalFrom(c)
		if !ok {
			unauthorized(c)
			return
		}
		var req MoneyRequest // Bind JSON request to struct
		if err := c.ShouldBindJSON(&req); err != nil {
			badRequest(c, "Invalid request", err)
			return
		}
		receipt, err := engine.Withdraw(c.Request.Context(), p, ledger.WithdrawRequest{
			Amount:      req.Amount,
			Category:    req.Category,
			Description: req.Description,
		})
		if err != nil {
			respondError(c, log, err)
			return
		}
		respond(c, http.StatusOK, "Withdrawal successful", receipt)
	}
}

// TransferHandler allows a user to transfer funds to another user's wallet
func TransferHandler(engine *ledger.Engine, log logrus.FieldLogger) gin.HandlerFunc {
	return func(c *gin.Context) {
		p, ok := middleware.PrincipalFrom(c)
		if !ok {
			unauthorized(c)
			return
		}
		var req TransferRequest // Bind JSON request to struct
		if err := c.ShouldBindJSON(&req); err != nil {
			badRequest(c, "Invalid request", err)
			return
		}
		// A receiver must be named one way or the other
		if req.target() == "" {
			fail(c, http.StatusBadRequest, "Receiver is required")
			return
		}
		receipt, err := engine.Transfer(c.Request.Context(), p, ledger.TransferRequest{
			Receiver: req.target(),
			Amount:   req.Amount,
			Category: req.Category,
		})
		if err != nil {
			respondError(c, log, err)
			return
		}
		respond(c, http.StatusOK, "Transfer successful", receipt)
	}
}
