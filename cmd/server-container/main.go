package main

import (
	"context"
	"log"

	"github.com/WWTD-Production/Server/app"
	"github.com/WWTD-Production/Server/app/config"
	"github.com/WWTD-Production/Server/llm"

	"github.com/aws/aws-lambda-go/events"
	"github.com/aws/aws-lambda-go/lambda"
	ginadapter "github.com/awslabs/aws-lambda-go-api-proxy/gin"
)

var ginLambda *ginadapter.GinLambda

// init runs once per Lambda container (cold start)
func init() {
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

	ginLambda = ginadapter.New(router)
}

// Handler is the Lambda entrypoint for API Gateway proxy integration.
func Handler(ctx context.Context, req events.APIGatewayProxyRequest) (events.APIGatewayProxyResponse, error) {
	return ginLambda.ProxyWithContext(ctx, req)
}

func main() {
	lambda.Start(Handler)
}
