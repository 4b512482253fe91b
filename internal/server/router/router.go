package router

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/mamadbah2/stockdesk/internal/config"
	"github.com/mamadbah2/stockdesk/internal/server/handlers"
)

// Handlers groups the HTTP adapters mounted under /api.
type Handlers struct {
	Session   *handlers.SessionHandler
	Inventory *handlers.InventoryHandler
	Stocktake *handlers.StocktakeHandler
	Export    *handlers.ExportHandler
	Reports   *handlers.ReportHandler
}

// New wires the Gin engine with required routes and middlewares.
func New(h Handlers, cfg config.ServerConfig, logger *zap.Logger) *gin.Engine {
	if logger == nil {
		logger = zap.NewNop()
	}
	gin.SetMode(gin.ReleaseMode)

	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(zapLoggerMiddleware(logger))

	r.GET("/healthz", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})

	api := r.Group("/api")
	if cfg.BasicAuthUser != "" {
		api.Use(gin.BasicAuth(gin.Accounts{cfg.BasicAuthUser: cfg.BasicAuthPassword}))
	}

	api.POST("/session/login", h.Session.Login)

	authed := api.Group("")
	authed.Use(h.Session.RequireSession())
	{
		authed.GET("/session", h.Session.Me)
		authed.POST("/session/logout", h.Session.Logout)

		authed.GET("/events", h.Reports.Events)
		authed.GET("/dashboard", h.Inventory.Dashboard)
		authed.POST("/reload", h.Inventory.Reload)
		authed.GET("/reports", h.Reports.List)

		authed.GET("/items", h.Inventory.ListItems)
		authed.GET("/items/:code", h.Inventory.GetItem)
		authed.GET("/users", h.Inventory.ListUsers)
		authed.GET("/history", h.Inventory.ListHistory)
		authed.POST("/movements", h.Inventory.LogMovement)
		authed.POST("/scan", h.Inventory.Scan)

		authed.GET("/stocktake", h.Stocktake.List)
		authed.POST("/stocktake", h.Stocktake.Add)
		authed.DELETE("/stocktake", h.Stocktake.Reset)
		authed.GET("/stocktake/export.csv", h.Stocktake.ExportCSV)
		authed.GET("/stocktake/export.xlsx", h.Stocktake.ExportXLSX)

		authed.GET("/export/:file", h.Export.Table)
		authed.GET("/labels/items/:code", h.Export.ItemLabel)
		authed.GET("/labels/users/:id", h.Export.UserLabel)
	}

	admin := authed.Group("")
	admin.Use(h.Session.RequireAdmin())
	{
		admin.POST("/items", h.Inventory.CreateItem)
		admin.PUT("/items/:code", h.Inventory.UpdateItem)
		admin.DELETE("/items/:code", h.Inventory.DeleteItem)
		admin.POST("/users", h.Inventory.CreateUser)
		admin.PUT("/history/:row", h.Inventory.UpdateHistory)
	}

	logger.Info("router initialized", zap.Bool("basic_auth", cfg.BasicAuthUser != ""))

	return r
}

func zapLoggerMiddleware(logger *zap.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()

		logger.Info("request completed",
			zap.String("method", c.Request.Method),
			zap.String("path", c.Request.URL.Path),
			zap.Int("status", c.Writer.Status()),
			zap.Duration("duration", time.Since(start)),
			zap.String("client_ip", c.ClientIP()))
	}
}
