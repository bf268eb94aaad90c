package router

import (
	"net/http"

	"github.com/ASMFahim71/ledgerly/internal/config"
	"github.com/ASMFahim71/ledgerly/internal/handler"
	"github.com/ASMFahim71/ledgerly/internal/middleware"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"
)

// Setup configures the Gin engine and mounts the API routes.
func Setup(cfg *config.Config, db *gorm.DB) *gin.Engine {
	if cfg.Server.Mode != "" {
		gin.SetMode(cfg.Server.Mode)
	}
	r := gin.New()
	r.Use(gin.Logger(), gin.Recovery())

	r.GET("/healthz", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": true})
	})

	api := r.Group("/api")

	authHandler := handler.NewAuthHandler(db, cfg.JWT, cfg.Security.BcryptCost)
	api.POST("/users/register", authHandler.Register)
	api.POST("/users/login", authHandler.Login)
	api.GET("/users/logout", authHandler.Logout)

	protected := api.Group("")
	protected.Use(
		middleware.Auth(cfg.JWT, db),
		middleware.Audit(db),
	)

	protected.GET("/users/me", authHandler.Me)

	cashbookHandler := handler.NewCashbookHandler(db)
	protected.GET("/cashbooks", cashbookHandler.List)
	protected.POST("/cashbooks", cashbookHandler.Create)
	protected.GET("/cashbooks/:id", cashbookHandler.Get)
	protected.PATCH("/cashbooks/:id", cashbookHandler.Update)
	protected.DELETE("/cashbooks/:id", cashbookHandler.Delete)
	protected.GET("/cashbooks/:id/balance", cashbookHandler.Balance)

	categoryHandler := handler.NewCategoryHandler(db)
	protected.GET("/categories", categoryHandler.List)
	protected.POST("/categories", categoryHandler.Create)
	protected.GET("/categories/stats", categoryHandler.Stats)
	protected.POST("/categories/assign", categoryHandler.Assign)
	protected.GET("/categories/:id", categoryHandler.Get)
	protected.PATCH("/categories/:id", categoryHandler.Update)
	protected.DELETE("/categories/:id", categoryHandler.Delete)
	// gin requires one wildcard name per position in the DELETE tree, so the
	// unassign route reuses :id for the transaction id
	protected.DELETE("/categories/:id/:category_id", categoryHandler.Unassign)

	transactionHandler := handler.NewTransactionHandler(db)
	protected.GET("/transactions", transactionHandler.List)
	protected.POST("/transactions", transactionHandler.Create)
	protected.GET("/transactions/stats", transactionHandler.Stats)
	protected.GET("/transactions/:id", transactionHandler.Get)
	protected.PATCH("/transactions/:id", transactionHandler.Update)
	protected.DELETE("/transactions/:id", transactionHandler.Delete)

	exportHandler := handler.NewExportHandler(db)
	protected.GET("/transactions/export/csv", exportHandler.CSV)
	protected.GET("/transactions/export/xlsx", exportHandler.XLSX)

	return r
}
