package routes

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"quotecompare/internal/handlers"
)

type Handlers struct {
	Referral *handlers.ReferralHandler
	Signup   *handlers.SignupHandler
	Quote    *handlers.QuoteHandler
	Health   *handlers.HealthHandler
}

// SetupRoutes mounts the API under /api. metricsHandler may be nil.
func SetupRoutes(router *gin.Engine, h *Handlers, metricsPath string, metricsHandler http.Handler) {
	api := router.Group("/api")
	{
		SetupReferralRoutes(api, h.Referral, h.Signup)
		SetupQuoteRoutes(api, h.Quote)
	}

	router.GET("/health", h.Health.Health)

	if metricsHandler != nil {
		router.GET(metricsPath, gin.WrapH(metricsHandler))
	}
}
