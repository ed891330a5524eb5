package main

import (
	"context"
	"log"

	"github.com/WWTD-Production/Server/app"
	"github.com/WWTD-Production/Server/app/config"
	"github.com/WWTD-Production/Server/llm"
)

func main() {
	cfg, err := config.LoadConfig()
	if err != nil {
		log.Fatalf("failed to load config: %v", err)
	}

	db := app.MustOpenDB(cfg)
	store := app.NewStore(db)
	app.InitStripe(cfg)

	llmClient := llm.NewClient(cfg.LLM.BaseURL, cfg.LLM.APIKey, cfg.LLM.Timeout)

	var outbox app.OutboxPublisher
	if cfg.Outbox.QueueURL != "" {
		ob, err := app.NewSQSOutbox(context.Background(), cfg.Outbox.QueueURL)
		if err != nil {
			log.Fatalf("failed to init outbox: %v", err)
		}
		outbox = ob
	}

	a := app.New(cfg, store, llmClient, app.StripeCheckout(), outbox)
	router, err := app.NewRouter(a)
	if err != nil {
		log.Fatalf("failed to initialize router: %v", err)
	}
	router.Run("0.0.0.0:8080")
}
