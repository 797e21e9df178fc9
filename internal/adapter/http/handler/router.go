package handler

import (
	"tapneat/internal/adapter/http/middleware"
	"tapneat/internal/core/ports"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"
)

// RouterDeps carries everything the router needs.
type RouterDeps struct {
	WalletSvc      ports.WalletService
	PrintQueueSvc  ports.PrintQueueService
	ReceiptSvc     ports.ReceiptService
	QueueAPIKey    string
	HealthCheckers []ports.HealthChecker
	Logger         zerolog.Logger
}

// SetupRouter wires all routes and middleware into a gin engine.
func SetupRouter(deps RouterDeps) *gin.Engine {
	gin.SetMode(gin.ReleaseMode)
	r := gin.New()

	r.Use(middleware.Recovery(deps.Logger))
	r.Use(middleware.RequestID())
	r.Use(middleware.RequestLogger(deps.Logger))
	r.Use(middleware.MaxBodySize(1 << 20))

	scanHandler := NewScanHandler(deps.WalletSvc, deps.PrintQueueSvc, deps.Logger)
	walletHandler := NewWalletHandler(deps.WalletSvc)
	receiptHandler := NewReceiptHandler(deps.ReceiptSvc)
	queueHandler := NewQueueHandler(deps.PrintQueueSvc)

	r.GET("/health", HealthCheck(deps.HealthCheckers...))

	v1 := r.Group("/api/v1")
	{
		// Cafeteria kiosk endpoints.
		v1.POST("/scan", scanHandler.Scan)
		v1.GET("/scan", scanHandler.MealInfo)

		// Wallet administration.
		v1.GET("/wallet", walletHandler.Lookup)
		v1.POST("/wallet/recharge", walletHandler.Recharge)

		// Public receipt page (QR landing) and history.
		v1.GET("/receipt", receiptHandler.Get)
		v1.POST("/receipt/status", receiptHandler.UpdateStatus)
		v1.GET("/transactions", receiptHandler.ListTransactions)

		// Print queue, dispatcher-facing.
		queue := v1.Group("/print-queue")
		queue.Use(middleware.APIKeyAuth(deps.QueueAPIKey, deps.Logger))
		{
			queue.GET("/jobs", queueHandler.ClaimJobs)
			queue.GET("/jobs/:id", queueHandler.GetJob)
			queue.POST("/jobs", queueHandler.Enqueue)
			queue.POST("/status", queueHandler.UpdateStatus)
		}
	}

	return r
}
