package handler

import (
	"teenpay-backend/internal/adapter/http/middleware"
	redisStore "teenpay-backend/internal/adapter/storage/redis"
	"teenpay-backend/internal/core/domain"
	"teenpay-backend/internal/core/ports"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"
)

// RouterDeps bundles everything the router needs. Optional fields may
// be nil; the corresponding feature is then disabled.
type RouterDeps struct {
	AuthSvc      ports.AuthService
	PaymentSvc   ports.PaymentService
	TopUpSvc     ports.TopUpService
	ReportingSvc ports.ReportingService
	TokenSvc     ports.TokenService
	AuditSvc     ports.AuditService

	RateLimitStore *redisStore.RateLimitStore
	HealthCheckers []ports.HealthChecker

	Logger zerolog.Logger
}

// SetupRouter builds the gin engine with all middleware and routes.
func SetupRouter(deps RouterDeps) *gin.Engine {
	gin.SetMode(gin.ReleaseMode)
	r := gin.New()

	r.Use(middleware.Recovery(deps.Logger))
	r.Use(middleware.RequestLogger(deps.Logger))
	r.Use(middleware.MaxBodySize(1 << 20)) // 1 MiB
	if deps.AuditSvc != nil {
		r.Use(middleware.AuditLog(deps.AuditSvc))
	}

	r.GET("/health", HealthCheck(deps.HealthCheckers...))

	rules := middleware.DefaultRateLimitRules()
	rl := func(group string) gin.HandlerFunc {
		if deps.RateLimitStore == nil {
			return func(c *gin.Context) { c.Next() }
		}
		rule, ok := rules[group]
		if !ok {
			return func(c *gin.Context) { c.Next() }
		}
		return middleware.RateLimiter(deps.RateLimitStore, group, rule, deps.Logger)
	}

	jwtAuth := middleware.JWTAuth(deps.TokenSvc, deps.Logger)

	// API v1 routes
	v1 := r.Group("/api/v1")

	authHandler := NewAuthHandler(deps.AuthSvc)
	auth := v1.Group("/auth")
	{
		auth.POST("/register", rl("auth_register"), authHandler.Register)
		auth.POST("/login", rl("auth_login"), authHandler.Login)
		auth.POST("/refresh", rl("auth_refresh"), authHandler.Refresh)
		auth.POST("/logout", jwtAuth, authHandler.Logout)
	}

	paymentHandler := NewPaymentHandler(deps.PaymentSvc)
	payments := v1.Group("/payments", jwtAuth)
	{
		payments.POST("/qr", rl("payments"), middleware.RequireRole(domain.RolePOS), paymentHandler.PayByQR)
		payments.GET("/qr-code", rl("payments"), paymentHandler.QRCode)
	}

	topupHandler := NewTopUpHandler(deps.TopUpSvc)
	topups := v1.Group("/topup-requests", jwtAuth)
	{
		topups.POST("", rl("topups"), middleware.RequireRole(domain.RoleChild), topupHandler.Create)
		topups.GET("/inbox", rl("topups"), middleware.RequireRole(domain.RoleParent), topupHandler.Inbox)
		topups.POST("/:id/approve", rl("topups"), middleware.RequireRole(domain.RoleParent), topupHandler.Approve)
	}

	walletHandler := NewWalletHandler(deps.TopUpSvc, deps.ReportingSvc)
	wallets := v1.Group("/wallets", jwtAuth)
	{
		wallets.GET("/balance", rl("reports"), walletHandler.GetBalance)
		wallets.POST("/topup-child", rl("topups"), middleware.RequireRole(domain.RoleParent), walletHandler.TopUpChild)
	}

	receiptHandler := NewReceiptHandler(deps.ReportingSvc)
	receipts := v1.Group("", jwtAuth)
	{
		receipts.GET("/receipts", rl("reports"), receiptHandler.ListReceipts)
		receipts.GET("/transactions", rl("reports"), receiptHandler.ListTransactions)
	}

	return r
}
