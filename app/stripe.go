package app

import (
	"github.com/WWTD-Production/Server/app/config"
	"github.com/WWTD-Production/Server/app/models"

	"github.com/stripe/stripe-go/v79"
	"github.com/stripe/stripe-go/v79/checkout/session"
)

// InitStripe wires the Stripe API key from config.
func InitStripe(cfg *config.Config) {
	stripe.Key = cfg.Stripe.SecretKey
}

// CheckoutCreator creates checkout sessions; the indirection exists so
// handler tests can substitute a fake for the live Stripe API.
type CheckoutCreator interface {
	Create(params *stripe.CheckoutSessionParams) (*stripe.CheckoutSession, error)
}

type stripeCheckout struct{}

// StripeCheckout returns the live Stripe-backed CheckoutCreator.
func StripeCheckout() CheckoutCreator {
	return stripeCheckout{}
}

func (stripeCheckout) Create(params *stripe.CheckoutSessionParams) (*stripe.CheckoutSession, error) {
	return session.New(params)
}

// buildCheckoutParams assembles a one-time payment for the requested plan,
// tagged with metadata so the completion webhook can correlate it back to
// the user without a local session table.
func buildCheckoutParams(cfg *config.Config, userID string, plan models.Plan) *stripe.CheckoutSessionParams {
	price := cfg.Stripe.MonthlyPriceCents
	if plan == models.PlanYearly {
		price = cfg.Stripe.YearlyPriceCents
	}

	return &stripe.CheckoutSessionParams{
		Mode:               stripe.String(string(stripe.CheckoutSessionModePayment)),
		PaymentMethodTypes: stripe.StringSlice([]string{"card"}),
		LineItems: []*stripe.CheckoutSessionLineItemParams{
			{
				PriceData: &stripe.CheckoutSessionLineItemPriceDataParams{
					Currency: stripe.String("usd"),
					ProductData: &stripe.CheckoutSessionLineItemPriceDataProductDataParams{
						Name: stripe.String("Subscription"),
					},
					UnitAmount: stripe.Int64(price),
				},
				Quantity: stripe.Int64(1),
			},
		},
		SuccessURL: stripe.String(cfg.Stripe.SuccessURL),
		CancelURL:  stripe.String(cfg.Stripe.CancelURL),
		Metadata: map[string]string{
			"user_id":           userID,
			"subscription_type": string(plan),
		},
	}
}
