package httpserver

import (
	"io"
	"net/http"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/go-faster/errors"
	"github.com/sirupsen/logrus"

	"sahara-storefront/internal/metrics"
)

// buildRouter wires routes for the storefront gateway.
func buildRouter(logger logrus.FieldLogger, deps Deps) (*gin.Engine, error) {
	if deps.Sessions == nil {
		return nil, errors.New("session registry required")
	}

	gin.SetMode(gin.ReleaseMode)
	router := gin.New()
	router.Use(gin.LoggerWithWriter(logWriter(logger)), gin.Recovery())
	router.Use(corsMiddleware(deps.CORSOrigins))
	router.Use(metrics.Middleware())

	router.GET("/healthz", healthHandler)
	router.GET("/readyz", readyHandler(deps.ReadyCheck))
	router.GET("/metrics", gin.WrapH(metrics.Handler()))

	limiter := newRateLimiter(deps.RateLimitRPS, deps.RateLimitBurst, logger)
	api := router.Group("/", sessionMiddleware(deps.Sessions), limiter.handler())

	h := &handlers{logger: logger, categories: deps.Categories}

	shop := api.Group("/shop")
	shop.GET("/items", h.listItems)
	shop.GET("/items/:id", h.getItem)
	shop.GET("/categories", h.listCategories)
	shop.POST("/refetch", h.refetch)
	shop.GET("/query", h.getQuery)
	shop.PUT("/query/search", h.setSearch)
	shop.DELETE("/query/search", h.clearSearch)
	shop.PUT("/query/sort", h.setSort)
	shop.DELETE("/query/sort", h.clearSort)
	shop.PUT("/query/filters", h.setFilters)
	shop.DELETE("/query/filters", h.clearFilters)

	cart := api.Group("/cart")
	cart.GET("", h.getCart)
	cart.DELETE("", h.clearCart)
	cart.POST("/lines", h.addLine)
	cart.PUT("/lines/:id", h.setLineQuantity)
	cart.DELETE("/lines/:id", h.removeLine)
	cart.POST("/save", h.saveCart)
	cart.POST("/retrieve/:cartId", h.retrieveCart)

	admin := api.Group("/admin")
	admin.GET("/items", h.adminListItems)
	admin.POST("/items", h.adminCreateItem)
	admin.PATCH("/items/:id", h.adminUpdateItem)
	admin.DELETE("/items/:id", h.adminDeleteItem)

	return router, nil
}

func corsMiddleware(origins []string) gin.HandlerFunc {
	cfg := cors.Config{
		AllowMethods:     []string{http.MethodGet, http.MethodPost, http.MethodPut, http.MethodPatch, http.MethodDelete, http.MethodOptions},
		AllowHeaders:     []string{"Origin", "Content-Type", "Accept", sessionHeader},
		ExposeHeaders:    []string{sessionHeader},
		AllowCredentials: true,
		MaxAge:           12 * time.Hour,
	}
	if len(origins) == 0 {
		cfg.AllowAllOrigins = true
		cfg.AllowCredentials = false
	} else {
		cfg.AllowOrigins = origins
	}
	return cors.New(cfg)
}

// logWriter routes gin's access log through logrus when the logger supports it.
func logWriter(logger logrus.FieldLogger) io.Writer {
	if w, ok := logger.(interface{ Writer() *io.PipeWriter }); ok {
		return w.Writer()
	}
	return io.Discard
}
