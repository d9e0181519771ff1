package router

import (
	"github.com/gin-gonic/gin"
	"github.com/ikkim/vitrine-backend/config"
	"github.com/ikkim/vitrine-backend/internal/app/controller"
	"github.com/ikkim/vitrine-backend/internal/middleware"
	"github.com/ikkim/vitrine-backend/pkg/metrics"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

type Router struct {
	sessionController    *controller.SessionController
	catalogController    *controller.CatalogController
	storefrontController *controller.StorefrontController
	wsController         *controller.WSController
	sessionMiddleware    *middleware.SessionMiddleware
	httpMetrics          *metrics.HTTPMetrics
	gatherer             prometheus.Gatherer
	config               *config.Config
}

func NewRouter(
	sessionController *controller.SessionController,
	catalogController *controller.CatalogController,
	storefrontController *controller.StorefrontController,
	wsController *controller.WSController,
	sessionMiddleware *middleware.SessionMiddleware,
	httpMetrics *metrics.HTTPMetrics,
	gatherer prometheus.Gatherer,
	cfg *config.Config,
) *Router {
	return &Router{
		sessionController:    sessionController,
		catalogController:    catalogController,
		storefrontController: storefrontController,
		wsController:         wsController,
		sessionMiddleware:    sessionMiddleware,
		httpMetrics:          httpMetrics,
		gatherer:             gatherer,
		config:               cfg,
	}
}

func (r *Router) Setup() *gin.Engine {
	gin.SetMode(r.config.Server.GinMode)

	router := gin.New()

	router.Use(gin.Recovery())
	router.Use(middleware.LoggingMiddleware())
	router.Use(middleware.CORSMiddleware(r.config.CORS.AllowedOrigins))
	if r.httpMetrics != nil {
		router.Use(middleware.MetricsMiddleware(r.httpMetrics))
	}

	router.GET("/health", func(c *gin.Context) {
		c.JSON(200, gin.H{
			"status":  "healthy",
			"message": "Vitrine API is running",
		})
	})

	if r.config.Metrics.Enabled && r.gatherer != nil {
		router.GET(r.config.Metrics.Path, gin.WrapH(promhttp.HandlerFor(r.gatherer, promhttp.HandlerOpts{})))
	}

	v1 := router.Group("/api/v1")
	{
		v1.POST("/sessions", r.sessionController.CreateSession)
		v1.DELETE("/sessions", r.sessionMiddleware.Authenticate(), r.sessionController.DeleteSession)

		products := v1.Group("/catalog/products")
		{
			products.GET("", r.catalogController.ListProducts)
			products.GET("/:id", r.catalogController.GetProduct)
		}

		session := v1.Group("")
		session.Use(r.sessionMiddleware.Authenticate())
		{
			storefront := session.Group("/storefront")
			{
				storefront.GET("/grid", r.storefrontController.GetGrid)
				storefront.PUT("/filter", r.storefrontController.SetFilter)
				storefront.PUT("/search", r.storefrontController.Search)
				storefront.POST("/quick-add", r.storefrontController.QuickAdd)
			}

			modal := session.Group("/modal")
			{
				modal.POST("", r.storefrontController.OpenModal)
				modal.GET("", r.storefrontController.GetModal)
				modal.DELETE("", r.storefrontController.CloseModal)
				modal.PUT("/tier", r.storefrontController.SelectTier)
				modal.PUT("/slots/:index", r.storefrontController.SelectSlot)
				modal.POST("/qty", r.storefrontController.StepQty)
				modal.POST("/commit", r.storefrontController.Commit)
			}

			cart := session.Group("/cart")
			{
				cart.GET("", r.storefrontController.GetCart)
				cart.DELETE("", r.storefrontController.ClearCart)
				cart.POST("/adjust", r.storefrontController.AdjustCartLine)
				cart.PUT("/qty", r.storefrontController.SetCartLineQty)
				cart.DELETE("/items", r.storefrontController.RemoveCartLine)
				cart.GET("/export", r.storefrontController.ExportCart)
			}

			checkout := session.Group("/checkout")
			{
				checkout.PUT("/fields", r.storefrontController.SetCheckoutFields)
				checkout.GET("/link", r.storefrontController.GetCheckoutLink)
				checkout.POST("/send", r.storefrontController.Send)
			}

			session.GET("/ws", r.wsController.Stream)
		}
	}

	return router
}
