package api

import (
	"errors"   // Error inspection
	"net/http" // HTTP status codes
	"strings"  // String manipulation
	"time"     // Token lifetime

	"wallet_ledger/internal/domain"     // Importing domain models
	"wallet_ledger/internal/middleware" // Request-scoped logger
	"wallet_ledger/internal/store"      // User persistence
	"wallet_ledger/internal/utils"      // Utility functions

	"github.com/gin-gonic/gin"   // Gin web framework
	"github.com/sirupsen/logrus" // Logging library
	"golang.org/x/crypto/bcrypt" // Password hashing
)

// Request struct for registration
type RegisterRequest struct {
	Email    string `json:"email" binding:"required,email"` // Email must be provided and valid
	FullName string `json:"full_name" binding:"required"`   // Display name must be provided
	Password string `json:"password" binding:"required"`    // Password must be provided
}

// Request struct for login
type LoginRequest struct {
	Email    string `json:"email" binding:"required"`    // Email must be provided
	Password string `json:"password" binding:"required"` // Password must be provided
}

// Response struct for authentication
type AuthResponse struct {
	Token     string    `json:"token"`      // JWT token
	ExpiresAt time.Time `json:"expires_at"` // Token expiry
}

// isValidPassword checks if the password length is between 8 and 64 characters
func isValidPassword(password string) bool {
	return len(password) >= 8 && len(password) <= 64 // Return true if length is valid
}

// RegisterHandler creates a user and an empty wallet in currency
func RegisterHandler(users *store.UserStore, cache *utils.Cache, currency string, log logrus.FieldLogger) gin.HandlerFunc {
	return func(c *gin.Context) {
		var req RegisterRequest // Bind JSON request to struct
		if err := c.ShouldBindJSON(&req); err != nil {
			// If binding fails, return bad request
			badRequest(c, "Invalid request", err)
			return
		}
		// Validate password length
		if !isValidPassword(req.Password) {
			// If password is invalid, return bad request
			fail(c, http.StatusBadRequest, "Password must be 8-64 characters")
			return
		}
		// Hash the password
		hash, err := bcrypt.GenerateFromPassword([]byte(req.Password), bcrypt.DefaultCost)
		if err != nil {
			// If hashing fails, return internal server error
			respondError(c, log, err)
			return
		}
		user := domain.User{Email: req.Email, FullName: strings.TrimSpace(req.FullName), Password: string(hash)}
		// Create the user and wallet together
		if err := users.Register(c.Request.Context(), &user, currency); err != nil {
			if errors.Is(err, store.ErrEmailTaken) {
				// Duplicate email
				fail(c, http.StatusConflict, "Email already registered")
				return
			}
			respondError(c, log, err)
			return
		}
		entry := middleware.Logger(c, log).WithFields(logrus.Fields{
			"user_id":   user.ID,        // New user ID
			"wallet_id": user.Wallet.ID, // New wallet ID
		})
		// Admin user pages now miss a row
		if err := cache.InvalidateUsers(c.Request.Context()); err != nil {
			entry.WithField("error", err.Error()).Warn("Cache invalidation failed")
		}
		entry.Info("User registered")
		// Return success response
		respond(c, http.StatusCreated, "User registered successfully", user)
	}
}

// LoginHandler authenticates a user and returns a JWT token
func LoginHandler(users *store.UserStore, jwtSecret string, ttl time.Duration, log logrus.FieldLogger) gin.HandlerFunc {
	return func(c *gin.Context) {
		var req LoginRequest // Bind JSON request to struct
		if err := c.ShouldBindJSON(&req); err != nil {
			// If binding fails, return bad request
			badRequest(c, "Invalid request", err)
			return
		}
		user, err := users.ByEmail(c.Request.Context(), req.Email) // Fetch user from database
		if err != nil {
			if store.IsNotFound(err) {
				// If user not found, return unauthorized
				fail(c, http.StatusUnauthorized, "Invalid credentials")
				return
			}
			respondError(c, log, err)
			return
		}
		// Compare provided password with stored hash
		if err := bcrypt.CompareHashAndPassword([]byte(user.Password), []byte(req.Password)); err != nil {
			fail(c, http.StatusUnauthorized, "Invalid credentials")
			return
		}
		// Generate JWT token
		token, err := utils.GenerateJWT(user.ID, user.Email, user.FullName, jwtSecret, ttl)
		if err != nil {
			// If token generation fails, return internal server error
			respondError(c, log, err)
			return
		}
		// Return the token in the response
		respond(c, http.StatusOK, "Login successful", AuthResponse{Token: token, ExpiresAt: time.Now().UTC().Add(ttl)})
	}
}

// RefreshTokenHandler issues a fresh token for the authenticated caller
func RefreshTokenHandler(users *store.UserStore, jwtSecret string, ttl time.Duration, log logrus.FieldLogger) gin.HandlerFunc {
	return func(c *gin.Context) {
		p, ok := middleware.PrincipalFrom(c)
		if !ok {
			unauthorized(c)
			return
		}
		// Reload the user so a deleted account cannot keep refreshing
		user, err := users.ByID(c.Request.Context(), p.UserID)
		if err != nil {
			if store.IsNotFound(err) {
				fail(c, http.StatusUnauthorized, "User not found")
				return
			}
			respondError(c, log, err)
			return
		}
		token, err := utils.GenerateJWT(user.ID, user.Email, user.FullName, jwtSecret, ttl)
		if err != nil {
			respondError(c, log, err)
			return
		}
		respond(c, http.StatusOK, "Token refreshed", AuthResponse{Token: token, ExpiresAt: time.Now().UTC().Add(ttl)})
	}
}
