// api/router/router.go

package router

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/strafeup/permissions/api/controller"
	"github.com/strafeup/permissions/api/middleware"
	"github.com/strafeup/permissions/api/observability"
)

func SetupRouter(
	controllers *controller.Controllers,
	metrics *observability.Metrics,
	jwtSecret []byte,
	rateLimitRequests int,
	rateLimitDuration time.Duration,
) *gin.Engine {
	router := gin.New()
	router.Use(gin.Recovery())
	router.Use(middleware.RequestID())
	router.Use(middleware.Logger())
	router.Use(middleware.Metrics(metrics))

	router.GET("/healthz", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})
	router.GET("/metrics", gin.WrapH(metrics.Handler()))

	api := router.Group("/api/v1")
	api.Use(middleware.Auth(jwtSecret))
	api.Use(middleware.RateLimiter(rateLimitRequests, rateLimitDuration))

	controllers.Permission.RegisterRoutes(api)
	controllers.Group.RegisterRoutes(api)
	controllers.Audit.RegisterRoutes(api)

	return router
}
