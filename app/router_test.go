package app

import (
	"testing"

	"github.com/WWTD-Production/Server/app/config"

	"github.com/gin-gonic/gin"
)

func init() {
	gin.SetMode(gin.TestMode)
}

func testConfig() *config.Config {
	return &config.Config{
		Stripe: config.StripeConfig{
			WebhookSecret:     "whsec_test",
			SuccessURL:        "https://example.test/success",
			CancelURL:         "https://example.test/cancel",
			MonthlyPriceCents: 199,
			YearlyPriceCents:  999,
		},
		LLM: config.LLMConfig{Model: "gpt-4o"},
	}
}

func newTestRouter(t *testing.T, store AccountStore, completer ChatCompleter, checkout CheckoutCreator, outbox OutboxPublisher) (*App, *gin.Engine) {
	t.Helper()
	a := New(testConfig(), store, completer, checkout, outbox)
	router, err := NewRouter(a)
	if err != nil {
		t.Fatalf("NewRouter error = %v", err)
	}
	return a, router
}
