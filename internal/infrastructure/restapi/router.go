package restapi

import (
	"net/http"
	"net/http/pprof"
	"time"

	"name_wall/internal/infrastructure/configloader"
	"name_wall/internal/pkg/utils"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"
	"go.uber.org/zap"
)

// SetupRouter builds the Gin engine with the wall page, the JSON API and the optional ops endpoints.
func SetupRouter(wallHandler *WallHandler, cfg *configloader.Config, zapLogger *zap.Logger) *gin.Engine {
	router := gin.New()
	router.Use(gin.Recovery(), utils.ZapLoggerMiddleware(zapLogger.Named("http")))
	router.SetHTMLTemplate(WallTemplates())

	router.GET("/", wallHandler.GetWallPageHandler)
	router.POST("/names", wallHandler.PostNameFormHandler)
	router.GET("/healthz", wallHandler.HealthHandler)

	v1 := router.Group("/api/v1")
	v1.Use(cors.New(cors.Config{
		AllowAllOrigins: true,
		AllowMethods:    []string{http.MethodGet, http.MethodPost, http.MethodOptions},
		AllowHeaders:    []string{"Origin", "Content-Type", "Accept"},
		MaxAge:          12 * time.Hour,
	}))
	{
		v1.GET("/wall", wallHandler.GetWallHandler)
		v1.POST("/wall/names", wallHandler.PostNameHandler)
		v1.OPTIONS("/wall/names", func(c *gin.Context) { c.Status(http.StatusNoContent) })
		v1.GET("/wall/layout", wallHandler.GetLayoutHandler)
		v1.GET("/network", wallHandler.GetNetworkHandler)
	}

	if cfg.Swagger.Enabled {
		router.StaticFile("/docs/swagger.yaml", cfg.Swagger.SpecFile)
		swaggerURL := ginSwagger.URL("/docs/swagger.yaml")
		router.GET(cfg.Swagger.Path+"/*any", ginSwagger.WrapHandler(swaggerFiles.Handler, swaggerURL))
	}

	if cfg.Metrics.Enabled {
		router.GET(cfg.Metrics.Path, gin.WrapH(promhttp.Handler()))
	}

	if cfg.Server.EnablePprof {
		debug := router.Group("/debug/pprof")
		debug.GET("/", gin.WrapF(pprof.Index))
		debug.GET("/cmdline", gin.WrapF(pprof.Cmdline))
		debug.GET("/profile", gin.WrapF(pprof.Profile))
		debug.GET("/symbol", gin.WrapF(pprof.Symbol))
		debug.GET("/trace", gin.WrapF(pprof.Trace))
		debug.GET("/:name", func(c *gin.Context) {
			pprof.Handler(c.Param("name")).ServeHTTP(c.Writer, c.Request)
		})
	}

	return router
}
