package middleware

import (
	"context"  // Context for lookups
	"net/http" // HTTP status codes

	"wallet_ledger/internal/domain" // Importing domain models

	"github.com/gin-gonic/gin" // Gin web framework
)

// UserLookup loads a user by id
type UserLookup interface {
	ByID(ctx context.Context, id uint) (*domain.User, error)
}

// AdminOnlyMiddleware checks the user's role from the database on each request
func AdminOnlyMiddleware(users UserLookup) gin.HandlerFunc {
	return func(c *gin.Context) {
		p, ok := PrincipalFrom(c) // Get principal from context
		// Check if principal exists in context
		if !ok {
			// If not, abort with unauthorized status
			abort(c, http.StatusUnauthorized, "Unauthorized")
			return
		}
		user, err := users.ByID(c.Request.Context(), p.UserID) // Fetch user from database
		// Check if user exists and has the admin role
		if err != nil || user.Role != domain.RoleAdmin {
			// If not admin, abort with forbidden status
			abort(c, http.StatusForbidden, "Admin access required")
			return
		}
		// If admin, proceed to the next handler
		c.Next()
	}
}
