package routes

import (
	"strings"
	"time"

	"quickbook/config"
	"quickbook/handlers"
	"quickbook/middleware"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
)

// RegisterQuickBookRoutes registers the intent endpoints of a workspace bot.
func RegisterQuickBookRoutes(r *gin.Engine, hb *handlers.HandlerBundle) {
	api := r.Group("/api/workspaces/:workspaceId/bots/:botId/quickbook/intents")
	{
		api.Use(middleware.TenantScopeMiddleware())
		api.POST("", hb.StartIntentHandler)
		api.GET("/:intentId", hb.GetIntentHandler)
		api.POST("/:intentId/contact", hb.AttachContactHandler)
		api.POST("/:intentId/click", hb.ClickHandler)
		api.POST("/:intentId/complete", hb.CompleteHandler)
	}
}

// RegisterChatRoutes registers the chat assistant endpoints.
func RegisterChatRoutes(r *gin.Engine, hb *handlers.HandlerBundle) {
	api := r.Group("/api/workspaces/:workspaceId/bots/:botId/chat")
	{
		api.Use(middleware.TenantScopeMiddleware())
		api.POST("/booking-intent", hb.DetectBookingIntentHandler)
	}
}

// RegisterExportRoutes registers the data lifecycle endpoints.
func RegisterExportRoutes(r *gin.Engine, hb *handlers.HandlerBundle) {
	api := r.Group("/api/workspaces/:workspaceId/quickbook")
	{
		api.GET("/intents/export", hb.ExportIntentsHandler)
	}
}

// RegisterHealthRoute registers the health-check and metrics endpoints.
func RegisterHealthRoute(r *gin.Engine, hb *handlers.HandlerBundle) {
	r.GET("/health", hb.HealthHandler)
	if hb.MetricsHandler != nil {
		r.GET("/metrics", hb.MetricsHandler)
	}
}

// RegisterRoutes centralizes registration of all endpoints and middleware.
func RegisterRoutes(r *gin.Engine, hb *handlers.HandlerBundle) {
	r.Use(cors.New(corsConfig(config.AppConfig.AllowedOrigins)))

	RegisterQuickBookRoutes(r, hb)
	RegisterChatRoutes(r, hb)
	RegisterExportRoutes(r, hb)
	RegisterHealthRoute(r, hb)
}

// corsConfig allows the chat widget to call the API from customer sites.
func corsConfig(origins string) cors.Config {
	cfg := cors.Config{
		AllowMethods:  []string{"GET", "POST", "OPTIONS"},
		AllowHeaders:  []string{"Origin", "Authorization", "Content-Type", "X-Request-ID"},
		ExposeHeaders: []string{"Content-Length", "X-Request-ID"},
		MaxAge:        12 * time.Hour,
	}
	if origins == "" || origins == "*" {
		cfg.AllowAllOrigins = true
		return cfg
	}
	for _, o := range strings.Split(origins, ",") {
		if o = strings.TrimSpace(o); o != "" {
			cfg.AllowOrigins = append(cfg.AllowOrigins, o)
		}
	}
	cfg.AllowCredentials = true
	return cfg
}
