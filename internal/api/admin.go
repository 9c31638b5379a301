package api

import (
	"net/http" // HTTP status codes

	"wallet_ledger/internal/domain"     // Importing domain models
	"wallet_ledger/internal/history"    // History queries
	"wallet_ledger/internal/middleware" // Request-scoped logger
	"wallet_ledger/internal/store"      // User persistence
	"wallet_ledger/internal/utils"      // Utility functions

	"github.com/gin-gonic/gin"   // Gin web framework
	"github.com/sirupsen/logrus" // Logging library
)

// UserAdminResponse represents the user data returned to admin
type UserAdminResponse struct {
	ID       uint           `json:"id"`        // User ID
	Email    string         `json:"email"`     // Email
	FullName string         `json:"full_name"` // Display name
	Role     string         `json:"role"`      // User role
	Wallet   *domain.Wallet `json:"wallet"`    // Associated wallet
}

// UserPage is one page of the admin user listing
type UserPage struct {
	Users      []UserAdminResponse `json:"users"`       // List of users
	Page       int                 `json:"page"`        // Current page
	PageSize   int                 `json:"page_size"`   // Page size
	Total      int64               `json:"total"`       // Total number of users
	TotalPages int                 `json:"total_pages"` // Total pages
	Cached     bool                `json:"cached"`      // Whether the page came from cache
}

// ListUsersHandler returns all users with their wallet info
func ListUsersHandler(users *store.UserStore, cache *utils.Cache, log logrus.FieldLogger) gin.HandlerFunc {
	return func(c *gin.Context) {
		page, pageSize, err := pageParams(c)
		if err != nil {
			respondError(c, log, err)
			return
		}
		ctx := c.Request.Context()
		cacheKey := utils.AdminUsersKey(page, pageSize) // Cache key based on pagination parameters
		// If cached data found, return it
		var cached UserPage
		if found, err := cache.Get(ctx, cacheKey, &cached); err == nil && found {
			cached.Cached = true // Indicate response is from cache
			respond(c, http.StatusOK, "Users retrieved", cached)
			return
		}
		list, total, err := users.List(ctx, (page-1)*pageSize, pageSize)
		if err != nil {
			respondError(c, log, domain.ErrStoreUnavailable.Wrap(err))
			return
		}
		// Map users to response format
		resp := UserPage{
			Users:      make([]UserAdminResponse, len(list)),
			Page:       page,
			PageSize:   pageSize,
			Total:      total,
			TotalPages: int((total + int64(pageSize) - 1) / int64(pageSize)),
		}
		for i, u := range list {
			resp.Users[i] = UserAdminResponse{ID: u.ID, Email: u.Email, FullName: u.FullName, Role: u.Role, Wallet: u.Wallet}
		}
		// Cache the response for future requests
		if err := cache.Set(ctx, cacheKey, resp); err != nil {
			middleware.Logger(c, log).WithField("error", err.Error()).Warn("Admin cache write failed")
		}
		respond(c, http.StatusOK, "Users retrieved", resp)
	}
}

// ListUserTransactionsHandler returns one page of any user's transactions
func ListUserTransactionsHandler(hist *history.Service, log logrus.FieldLogger) gin.HandlerFunc {
	return func(c *gin.Context) {
		userID, err := idParam(c, "userID")
		if err != nil {
			badRequest(c, "Invalid user id", err)
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
		result, err := hist.ListTransactions(c.Request.Context(), domain.Principal{UserID: userID}, history.ListQuery{
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

// ReconcileHandler compares a user's stored balance with their ledger
func ReconcileHandler(hist *history.Service, log logrus.FieldLogger) gin.HandlerFunc {
	return func(c *gin.Context) {
		userID, err := idParam(c, "userID")
		if err != nil {
			badRequest(c, "Invalid user id", err)
			return
		}
		report, err := hist.Reconcile(c.Request.Context(), userID)
		if err != nil {
			respondError(c, log, err)
			return
		}
		msg := "Wallet balanced"
		if !report.Balanced {
			msg = "Wallet out of balance"
		}
		respond(c, http.StatusOK, msg, report)
	}
}
