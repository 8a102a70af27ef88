// Package router assembles the gin engine from the app's modules.
package router

import (
	"net/http"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"golang.org/x/time/rate"

	apphttp "dealership_crm_backend/internal/http"
	"dealership_crm_backend/platform/config"
	"dealership_crm_backend/platform/httpkit"
	"dealership_crm_backend/platform/logger"
)

// New builds the gin engine with shared middleware and every module's
// routes mounted.
func New(cfg *config.Config, log *logger.Logger, app *apphttp.App, webhookAuth gin.HandlerFunc) *gin.Engine {
	if cfg.Env != "development" {
		gin.SetMode(gin.ReleaseMode)
	}

	engine := gin.New()
	engine.Use(gin.Recovery())
	engine.Use(httpkit.RequestID())
	engine.Use(httpkit.RequestLogger(log))
	engine.Use(httpkit.SecurityHeaders())
	engine.Use(corsMiddleware(cfg))

	limiter := httpkit.NewIPRateLimiter(rate.Limit(20), 40)
	engine.Use(limiter.Middleware(log))

	engine.GET("/healthz", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})

	v1 := engine.Group("/api/v1")
	protected := v1.Group("")
	protected.Use(httpkit.AuthRequired(cfg.JWTAccessSecret))
	admin := protected.Group("")
	admin.Use(httpkit.RequireRole("admin"))
	webhook := v1.Group("/webhooks")
	if webhookAuth != nil {
		webhook.Use(webhookAuth)
	}

	rc := apphttp.RouterContext{
		Engine:    engine,
		V1:        v1,
		Protected: protected,
		Admin:     admin,
		Webhook:   webhook,
	}

	for _, module := range app.Modules {
		module.RegisterRoutes(rc)
		log.Info("module routes registered", "module", module.Name())
	}

	return engine
}

func corsMiddleware(cfg *config.Config) gin.HandlerFunc {
	corsConfig := cors.Config{
		AllowMethods:     []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"},
		AllowHeaders:     []string{"Origin", "Content-Type", "Authorization", "X-Request-ID", "X-API-Key"},
		ExposeHeaders:    []string{"X-Request-ID"},
		AllowCredentials: cfg.CORSAllowCreds,
	}
	if cfg.CORSAllowAll {
		corsConfig.AllowAllOrigins = true
		corsConfig.AllowCredentials = false
	} else {
		corsConfig.AllowOrigins = cfg.CORSOrigins
	}
	return cors.New(corsConfig)
}
