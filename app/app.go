package app

import (
	"context"

	"github.com/WWTD-Production/Server/app/config"
	"github.com/WWTD-Production/Server/llm"
)

// ChatCompleter is the slice of the LLM client the relay needs.
type ChatCompleter interface {
	CreateChatCompletion(ctx context.Context, req *llm.ChatCompletionRequest) (*llm.ChatCompletionResponse, error)
}

// App holds every external dependency, built once at process start and
// passed into the router. Nothing here is a package global.
type App struct {
	cfg          *config.Config
	store        AccountStore
	entitlements *Entitlements
	meter        *Meter
	llm          ChatCompleter
	checkout     CheckoutCreator
	outbox       OutboxPublisher
}

// New wires an App from its collaborators. outbox may be nil when no queue
// is configured; persistence failures are then only logged.
func New(cfg *config.Config, store AccountStore, completer ChatCompleter, checkout CheckoutCreator, outbox OutboxPublisher) *App {
	return &App{
		cfg:          cfg,
		store:        store,
		entitlements: NewEntitlements(store),
		meter:        NewMeter(store),
		llm:          completer,
		checkout:     checkout,
		outbox:       outbox,
	}
}
