package api

import (
	"fmt" // Error wrapping

	"wallet_ledger/internal/config"     // Configuration
	"wallet_ledger/internal/history"    // History queries
	"wallet_ledger/internal/ledger"     // Ledger engine
	"wallet_ledger/internal/middleware" // Custom middleware
	"wallet_ledger/internal/store"      // User persistence
	"wallet_ledger/internal/utils"      // Redis cache

	"github.com/gin-gonic/gin"   // Gin web framework
	"github.com/sirupsen/logrus" // Logging library
	"gorm.io/gorm"               // GORM ORM library
)

// Deps are the components the HTTP layer is built on
type Deps struct {
	Config  *config.Config
	DB      *gorm.DB
	Users   *store.UserStore
	Engine  *ledger.Engine
	History *history.Service
	Cache   *utils.Cache
	Log     logrus.FieldLogger
}

// NewRouter wires every route
func NewRouter(d Deps) (*gin.Engine, error) {
	r := gin.New()
	r.Use(gin.Recovery(), middleware.RequestID(), middleware.RequestLogger(d.Log))

	// Set trusted proxies for Gin
	if err := r.SetTrustedProxies(d.Config.TrustedProxies); err != nil {
		return nil, fmt.Errorf("set trusted proxies: %w", err)
	}

	r.GET("/healthz", HealthHandler(d.DB, d.Cache))

	// Auth routes
	auth := r.Group("/auth")
	jwtAuth := middleware.JWTAuthMiddleware(d.Config.JWTSecret)
	auth.POST("/register", RegisterHandler(d.Users, d.Cache, d.Config.DefaultCurrency, d.Log))                     // Registration endpoint
	auth.POST("/login", LoginHandler(d.Users, d.Config.JWTSecret, d.Config.JWTTTL, d.Log))                         // Login endpoint
	auth.POST("/refresh-token", jwtAuth, RefreshTokenHandler(d.Users, d.Config.JWTSecret, d.Config.JWTTTL, d.Log)) // Token refresh endpoint

	// Wallet routes (protected by JWT)
	wallet := r.Group("/wallet", jwtAuth)
	wallet.GET("/balance", GetBalanceHandler(d.Engine, d.Log))                  // Balance endpoint
	wallet.POST("/deposit", DepositHandler(d.Engine, d.Log))                    // Deposit endpoint
	wallet.POST("/withdraw", WithdrawHandler(d.Engine, d.Log))                  // Withdraw endpoint
	wallet.POST("/transfer", TransferHandler(d.Engine, d.Log))                  // Transfer endpoint
	wallet.GET("/transactions", GetTransactionHistoryHandler(d.History, d.Log)) // Transaction history endpoint
	wallet.GET("/transactions/:id", GetTransactionHandler(d.History, d.Log))    // Single transaction endpoint
	wallet.GET("/categories", ListCategoriesHandler(d.History, d.Log))          // Categories endpoint
	wallet.GET("/summary", SummaryHandler(d.History, d.Log))                    // Category summary endpoint
	wallet.GET("/export/:format", ExportHandler(d.History, d.Engine, d.Log))    // Export endpoint

	// Account routes (protected by JWT)
	user := r.Group("/user", jwtAuth)
	user.DELETE("", DeleteAccountHandler(d.Users, d.Cache, d.Log))       // Account deletion endpoint
	user.GET("/profile", ProfileHandler(d.Users, d.Engine, d.Log))       // Profile endpoint
	user.PUT("/profile", UpdateProfileHandler(d.Users, d.Cache, d.Log))  // Profile update endpoint
	user.POST("/change-password", ChangePasswordHandler(d.Users, d.Log)) // Password change endpoint

	// Admin routes (protected, admin only)
	admin := r.Group("/admin", jwtAuth, middleware.AdminOnlyMiddleware(d.Users))
	admin.GET("/users", ListUsersHandler(d.Users, d.Cache, d.Log))                          // List users endpoint
	admin.GET("/users/:userID/transactions", ListUserTransactionsHandler(d.History, d.Log)) // User transactions endpoint
	admin.GET("/wallets/:userID/reconcile", ReconcileHandler(d.History, d.Log))             // Reconcile endpoint

	return r, nil
}
