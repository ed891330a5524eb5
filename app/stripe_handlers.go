package app

import (
	"encoding/json"
	"io"
	"log"
	"net/http"

	"github.com/WWTD-Production/Server/app/models"

	"github.com/gin-gonic/gin"
	"github.com/stripe/stripe-go/v79"
	"github.com/stripe/stripe-go/v79/webhook"
)

// CreateCheckoutSession starts a Stripe Checkout Session for a one-time
// subscription payment and returns its id and redirect URL.
func (a *App) CreateCheckoutSession(c *gin.Context) {
	var req models.CreateCheckoutRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request"})
		return
	}
	if req.UserID == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "missing user_id"})
		return
	}

	plan := models.Plan(req.SubscriptionType)
	if !models.ValidPurchasePlan(plan) {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid subscription_type"})
		return
	}

	if !a.authorizeUser(c, req.UserID) {
		return
	}

	params := buildCheckoutParams(a.cfg, req.UserID, plan)
	sess, err := a.checkout.Create(params)
	if err != nil {
		log.Printf("stripe checkout session failed user=%s: %v", req.UserID, err)
		c.JSON(http.StatusForbidden, gin.H{"error": "failed to create checkout session"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"id": sess.ID, "url": sess.URL})
}

// StripeWebhook receives payment notifications. The payload is verified
// against the signing secret before any field is trusted; a completed
// checkout is handed to the entitlement manager keyed by its session id.
func (a *App) StripeWebhook(c *gin.Context) {
	const maxBodyBytes = int64(65536)
	body, err := io.ReadAll(io.LimitReader(c.Request.Body, maxBodyBytes))
	if err != nil {
		log.Printf("stripe webhook read failed: %v", err)
		c.String(http.StatusBadRequest, "invalid payload")
		return
	}

	sigHeader := c.GetHeader("Stripe-Signature")
	endpointSecret := a.cfg.Stripe.WebhookSecret
	if endpointSecret == "" {
		log.Printf("stripe webhook secret missing")
		c.String(http.StatusInternalServerError, "webhook not configured")
		return
	}

	event, err := webhook.ConstructEventWithOptions(
		body,
		sigHeader,
		endpointSecret,
		webhook.ConstructEventOptions{
			IgnoreAPIVersionMismatch: true,
		},
	)
	if err != nil {
		log.Printf("stripe webhook signature failed: %v", err)
		c.String(http.StatusBadRequest, "signature verification failed")
		return
	}

	switch event.Type {
	case "checkout.session.completed":
		var sess stripe.CheckoutSession
		if err := json.Unmarshal(event.Data.Raw, &sess); err != nil {
			log.Printf("stripe session unmarshal failed: %v", err)
			c.String(http.StatusBadRequest, "invalid session payload")
			return
		}

		userID := sess.Metadata["user_id"]
		subscriptionType := sess.Metadata["subscription_type"]
		if userID == "" {
			log.Printf("stripe session missing user_id metadata session=%s", sess.ID)
			c.String(http.StatusBadRequest, "missing user_id metadata")
			return
		}

		if _, err := a.entitlements.ApplyCompletedPayment(c.Request.Context(), sess.ID, userID, models.Plan(subscriptionType)); err != nil {
			log.Printf("payment apply failed session=%s user=%s: %v", sess.ID, userID, err)
			c.String(http.StatusInternalServerError, "failed to update subscription")
			return
		}
	default:
		// Intentionally ignore unhandled events.
	}

	c.String(http.StatusOK, "Success")
}
