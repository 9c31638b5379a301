package middleware

import (
	"net/http" // HTTP status codes
	"strings"  // String manipulation

	"wallet_ledger/internal/domain" // Principal type
	"wallet_ledger/internal/utils"  // JWT utility functions

	"github.com/gin-gonic/gin" // Gin web framework
)

// PrincipalKey is the gin context key holding the resolved domain.Principal
const PrincipalKey = "principal"

// JWTAuthMiddleware validates JWT tokens and stores the caller's principal
func JWTAuthMiddleware(secret string) gin.HandlerFunc {
	return func(c *gin.Context) {
		authHeader := c.GetHeader("Authorization") // Get Authorization header
		// Check if the Authorization header is present and properly formatted
		if authHeader == "" || !strings.HasPrefix(authHeader, "Bearer ") {
			// If not, abort with unauthorized status
			abort(c, http.StatusUnauthorized, "Missing or invalid Authorization header")
			return
		}
		tokenStr := strings.TrimPrefix(authHeader, "Bearer ") // Extract the token string
		claims, err := utils.ParseJWT(tokenStr, secret)       // Parse the JWT token
		if err != nil {
			// If parsing fails, abort with unauthorized status
			abort(c, http.StatusUnauthorized, "Invalid or expired token")
			return
		}
		// Store the principal in context
		c.Set(PrincipalKey, domain.Principal{UserID: claims.UserID, Email: claims.Email, Name: claims.Name})
		c.Next() // Proceed to the next handler
	}
}

// PrincipalFrom returns the principal stored by JWTAuthMiddleware
func PrincipalFrom(c *gin.Context) (domain.Principal, bool) {
	v, exists := c.Get(PrincipalKey)
	if !exists {
		return domain.Principal{}, false
	}
	p, ok := v.(domain.Principal)
	return p, ok && p.UserID != 0
}

// abort stops the chain with the standard error envelope
func abort(c *gin.Context, status int, msg string) {
	c.AbortWithStatusJSON(status, gin.H{"success": false, "message": msg, "data": nil, "errors": []string{}})
}
