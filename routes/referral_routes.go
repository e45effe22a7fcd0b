package routes

import (
	"github.com/gin-gonic/gin"

	"quotecompare/internal/handlers"
)

// SetupReferralRoutes sets up the user, referral, signup and dashboard routes
func SetupReferralRoutes(r *gin.RouterGroup, referralHandler *handlers.ReferralHandler, signupHandler *handlers.SignupHandler) {
	r.POST("/users", referralHandler.CreateUser)
	r.POST("/referrals", referralHandler.CreateReferral)
	r.POST("/signups", signupHandler.RecordSignup)

	dashboard := r.Group("/dashboard")
	{
		dashboard.GET("", referralHandler.GetDashboard)
		if referralHandler.StreamEnabled() {
			dashboard.GET("/ws", referralHandler.StreamDashboard)
		}
	}
}

// SetupQuoteRoutes sets up the read-only quote catalog
func SetupQuoteRoutes(r *gin.RouterGroup, quoteHandler *handlers.QuoteHandler) {
	quotes := r.Group("/quotes")
	{
		quotes.GET("", quoteHandler.ListQuotes)
		quotes.GET("/:id", quoteHandler.GetQuote)
	}
}
