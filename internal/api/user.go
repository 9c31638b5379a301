package api

import (
	"errors"   // Error inspection
	"net/http" // HTTP status codes
	"strings"  // String manipulation

	"wallet_ledger/internal/domain"     // Domain errors
	"wallet_ledger/internal/ledger"     // Balance lookup
	"wallet_ledger/internal/middleware" // Principal lookup
	"wallet_ledger/internal/store"      // User persistence
	"wallet_ledger/internal/utils"      // Cache invalidation

	"github.com/gin-gonic/gin"      // Gin web framework
	"github.com/shopspring/decimal" // Money amounts
	"github.com/sirupsen/logrus"    // Logging library
	"golang.org/x/crypto/bcrypt"    // Password hashing
)

// Response struct for the caller's profile
type ProfileResponse struct {
	ID            uint            `json:"id"`             // User ID
	FullName      string          `json:"full_name"`      // Display name
	Email         string          `json:"email"`          // Login email
	WalletBalance decimal.Decimal `json:"wallet_balance"` // Zero when the wallet is missing
	Currency      string          `json:"currency"`       // Wallet currency
}

// Request struct for profile updates
type UpdateProfileRequest struct {
	FullName string `json:"full_name" binding:"required"` // New display name
}

// Request struct for password changes
type ChangePasswordRequest struct {
	CurrentPassword string `json:"current_password" binding:"required"` // Must match the stored hash
	NewPassword     string `json:"new_password" binding:"required"`     // Must be 8-64 characters
}

// ProfileHandler returns the caller's account with their wallet balance
func ProfileHandler(users *store.UserStore, engine *ledger.Engine, log logrus.FieldLogger) gin.HandlerFunc {
	return func(c *gin.Context) {
		p, ok := middleware.PrincipalFrom(c)
		if !ok {
			unauthorized(c)
			return
		}
		user, ok := currentUser(c, users, p, log)
		if !ok {
			return
		}
		profile := ProfileResponse{
			ID:            user.ID,
			FullName:      user.FullName,
			Email:         user.Email,
			WalletBalance: decimal.Zero,
			Currency:      domain.DefaultCurrency,
		}
		view, err := engine.Balance(c.Request.Context(), p)
		switch {
		case err == nil:
			profile.WalletBalance, profile.Currency = view.Balance, view.Currency
		case !errors.Is(err, domain.ErrWalletNotFound):
			respondError(c, log, err)
			return
		}
		respond(c, http.StatusOK, "Profile retrieved", profile)
	}
}

// UpdateProfileHandler changes the caller's full name
func UpdateProfileHandler(users *store.UserStore, cache *utils.Cache, log logrus.FieldLogger) gin.HandlerFunc {
	return func(c *gin.Context) {
		p, ok := middleware.PrincipalFrom(c)
		if !ok {
			unauthorized(c)
			return
		}
		var req UpdateProfileRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			badRequest(c, "Invalid request", err)
			return
		}
		name := strings.TrimSpace(req.FullName)
		if name == "" {
			fail(c, http.StatusBadRequest, "Full name must not be blank")
			return
		}
		ctx := c.Request.Context()
		if err := users.UpdateName(ctx, p.UserID, name); err != nil {
			if store.IsNotFound(err) {
				fail(c, http.StatusNotFound, "User not found")
				return
			}
			respondError(c, log, domain.ErrStoreUnavailable.Wrap(err))
			return
		}
		entry := middleware.Logger(c, log).WithField("user_id", p.UserID)
		// Admin user pages embed the name
		if err := cache.InvalidateUsers(ctx); err != nil {
			entry.WithField("error", err.Error()).Warn("Cache invalidation failed")
		}
		entry.Info("Profile updated")
		respond(c, http.StatusOK, "Profile updated", gin.H{"full_name": name})
	}
}

// ChangePasswordHandler replaces the caller's password after checking the current one
func ChangePasswordHandler(users *store.UserStore, log logrus.FieldLogger) gin.HandlerFunc {
	return func(c *gin.Context) {
		p, ok := middleware.PrincipalFrom(c)
		if !ok {
			unauthorized(c)
			return
		}
		var req ChangePasswordRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			badRequest(c, "Invalid request", err)
			return
		}
		user, ok := currentUser(c, users, p, log)
		if !ok {
			return
		}
		if err := bcrypt.CompareHashAndPassword([]byte(user.Password), []byte(req.CurrentPassword)); err != nil {
			fail(c, http.StatusBadRequest, "Current password is incorrect")
			return
		}
		if !isValidPassword(req.NewPassword) {
			fail(c, http.StatusBadRequest, "Password must be 8-64 characters")
			return
		}
		hash, err := bcrypt.GenerateFromPassword([]byte(req.NewPassword), bcrypt.DefaultCost)
		if err != nil {
			respondError(c, log, err)
			return
		}
		if err := users.UpdatePassword(c.Request.Context(), p.UserID, string(hash)); err != nil {
			if store.IsNotFound(err) {
				fail(c, http.StatusNotFound, "User not found")
				return
			}
			respondError(c, log, domain.ErrStoreUnavailable.Wrap(err))
			return
		}
		middleware.Logger(c, log).WithField("user_id", p.UserID).Info("Password changed")
		respond(c, http.StatusOK, "Password changed", nil)
	}
}

// currentUser loads the caller's row, writing the error response when it fails
func currentUser(c *gin.Context, users *store.UserStore, p domain.Principal, log logrus.FieldLogger) (*domain.User, bool) {
	user, err := users.ByID(c.Request.Context(), p.UserID)
	if err != nil {
		if store.IsNotFound(err) {
			fail(c, http.StatusNotFound, "User not found")
			return nil, false
		}
		respondError(c, log, domain.ErrStoreUnavailable.Wrap(err))
		return nil, false
	}
	return user, true
}

// DeleteAccountHandler removes the caller with their wallet and transactions
func DeleteAccountHandler(users *store.UserStore, cache *utils.Cache, log logrus.FieldLogger) gin.HandlerFunc {
	return func(c *gin.Context) {
		p, ok := middleware.PrincipalFrom(c)
		if !ok {
			unauthorized(c)
			return
		}
		ctx := c.Request.Context()
		if err := users.Delete(ctx, p.UserID); err != nil {
			if store.IsNotFound(err) {
				fail(c, http.StatusNotFound, "User not found")
				return
			}
			respondError(c, log, domain.ErrStoreUnavailable.Wrap(err))
			return
		}
		entry := middleware.Logger(c, log).WithField("user_id", p.UserID)
		// Stale entries would outlive the account
		if err := cache.InvalidateOwners(ctx, p.UserID); err != nil {
			entry.WithField("error", err.Error()).Warn("Cache invalidation failed")
		}
		entry.Info("Account deleted")
		respond(c, http.StatusOK, "Account deleted", nil)
	}
}
