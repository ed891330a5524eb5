// Package app wires shared HTTP routes for both local and Lambda execution.
package app

import (
	"net/http"
	"time"

	"github.com/WWTD-Production/Server/auth"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
)

// NewRouter builds the shared HTTP router for both local and Lambda execution.
func NewRouter(a *App) (*gin.Engine, error) {
	router := gin.Default()
	router.Use(cors.New(cors.Config{
		AllowOrigins: []string{"*"},
		AllowMethods: []string{"GET", "POST", "OPTIONS"},
		AllowHeaders: []string{"Origin", "Content-Type", "Accept", "Authorization", "Stripe-Signature"},
		MaxAge:       12 * time.Hour,
	}))

	router.GET("/", StatusPage)
	router.GET("/health", Health)
	// Stripe authenticates itself through the signature header.
	router.POST("/webhook", a.StripeWebhook)

	var verifier *auth.Verifier
	if a.cfg.Auth.Issuer != "" {
		v, err := auth.NewVerifier(a.cfg.Auth.Issuer, a.cfg.Auth.Audience, "")
		if err != nil {
			return nil, err
		}
		verifier = v
	}

	protected := router.Group("/")
	protected.Use(auth.Middleware(verifier))
	protected.POST("/create-checkout-session", a.CreateCheckoutSession)
	protected.POST("/start_conversation", a.StartConversation)
	protected.POST("/send_query", a.SendQuery)

	return router, nil
}

// authorizeUser rejects requests whose verified token subject does not match
// the user they act on. Without a verifier there are no claims and every
// request passes, matching the open surface of the original deployment.
func (a *App) authorizeUser(c *gin.Context, userID string) bool {
	claims, ok := auth.ClaimsFromContext(c.Request.Context())
	if !ok {
		return true
	}
	if claims.Subject != userID {
		c.AbortWithStatusJSON(http.StatusForbidden, gin.H{"error": "user mismatch"})
		return false
	}
	return true
}
