// Store API: customers register, browse the catalog and place orders
// against finite stock; admins read sales statistics.
//
// @title Clothing Store API
// @version 0.1
// @BasePath /
// @securityDefinitions.apikey BearerAuth
// @in header
// @name Authorization
package main

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/jackc/pgx/v5/pgxpool"
	log "github.com/sirupsen/logrus"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"

	_ "github.com/mcruz-dev/clothing-store/docs"
	"github.com/mcruz-dev/clothing-store/internal/auth"
	"github.com/mcruz-dev/clothing-store/internal/catalog"
	"github.com/mcruz-dev/clothing-store/internal/config"
	"github.com/mcruz-dev/clothing-store/internal/httpx"
	"github.com/mcruz-dev/clothing-store/internal/order"
	"github.com/mcruz-dev/clothing-store/internal/stats"
)

type deps struct {
	tokens  *auth.TokenSource
	auth    authService
	catalog catalog.Repository
	orders  orderPlacer
	history orderHistory
	stats   stats.Repository
}

func newRouter(d deps) *gin.Engine {
	r := gin.New()
	r.Use(gin.Recovery(), httpx.RequestID(), httpx.Logger())

	r.GET("/", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"msg": "Clothing Store v0.1"})
	})
	r.GET("/healthz", func(c *gin.Context) {
		c.String(http.StatusOK, "ok")
	})
	r.GET("/swagger/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))

	r.POST("/users/register", registerHandler(d.auth))
	r.POST("/users/login", loginHandler(d.auth))
	r.DELETE("/users/:id", httpx.Auth(d.tokens), httpx.RequireAdmin(), deleteUserHandler(d.auth))

	r.GET("/products", listProductsHandler(d.catalog))
	r.GET("/categories", listCategoriesHandler(d.catalog))
	r.GET("/categories/:id", getCategoryHandler(d.catalog))
	r.POST("/categories", httpx.Auth(d.tokens), httpx.RequireAdmin(), createCategoryHandler(d.catalog))

	r.POST("/orders", httpx.Auth(d.tokens), placeOrderHandler(d.orders))
	r.GET("/orders", httpx.Auth(d.tokens), listOrdersHandler(d.history))

	admin := r.Group("/stats", httpx.Auth(d.tokens), httpx.RequireAdmin())
	admin.GET("/customers", customerStatsHandler(d.stats))
	admin.GET("/products", productStatsHandler(d.stats))
	admin.GET("/top-products", topProductsHandler(d.stats))
	admin.GET("/recent-sales", recentSalesHandler(d.stats))

	return r
}

func main() {
	cfg := config.Load()
	if cfg.JWTSecret == "" {
		log.Fatal("JWT_SECRET is required")
	}

	ctx := context.Background()
	pool, err := pgxpool.New(ctx, cfg.PostgresDSN)
	if err != nil {
		log.WithError(err).Fatal("connect postgres")
	}
	defer pool.Close()
	if err := pool.Ping(ctx); err != nil {
		log.WithError(err).Fatal("ping postgres")
	}

	tokens := auth.NewTokenSource(cfg.JWTSecret, cfg.TokenTTL)
	r := newRouter(deps{
		tokens:  tokens,
		auth:    auth.NewService(auth.NewPGRepo(pool), tokens),
		catalog: catalog.NewPGRepo(pool),
		orders:  order.NewService(pool, order.StockLedger{}, order.Repo{}, cfg.LockWait),
		history: order.NewHistory(pool),
		stats:   stats.NewPGRepo(pool),
	})

	log.WithField("addr", cfg.HTTPAddr).Info("store-api listening")
	if err := r.Run(cfg.HTTPAddr); err != nil {
		log.WithError(err).Fatal("http server")
	}
}
