package app

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/WWTD-Production/Server/app/models"
	"github.com/WWTD-Production/Server/llm"

	"github.com/stripe/stripe-go/v79"
)

// memStore is an in-memory AccountStore for handler and component tests.
type memStore struct {
	mu       sync.Mutex
	accounts map[string]models.Account
	applied  map[string]time.Time
	threads  map[string]models.Thread
	messages map[string][]models.Message

	failAppend    bool
	failDecrement bool
}

func newMemStore() *memStore {
	return &memStore{
		accounts: map[string]models.Account{},
		applied:  map[string]time.Time{},
		threads:  map[string]models.Thread{},
		messages: map[string][]models.Message{},
	}
}

func (s *memStore) GetAccount(ctx context.Context, userID string) (models.Account, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if acc, ok := s.accounts[userID]; ok {
		return acc, nil
	}
	return models.Account{UserID: userID, SubscriptionPlan: models.PlanNone}, nil
}

func (s *memStore) DecrementTokens(ctx context.Context, userID string, tokens int64) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.failDecrement {
		return errors.New("store unavailable")
	}
	acc, ok := s.accounts[userID]
	if !ok {
		return errAccountNotFound
	}
	acc.AvailableTokens -= tokens
	s.accounts[userID] = acc
	return nil
}

func (s *memStore) ApplyCompletedPayment(ctx context.Context, sessionID, userID string, plan models.Plan, expiresAt time.Time) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, done := s.applied[sessionID]; done {
		return false, nil
	}
	s.applied[sessionID] = time.Now()

	acc := s.accounts[userID]
	acc.UserID = userID
	acc.IsSubscribed = true
	acc.SubscriptionPlan = plan
	acc.SubscriptionExpiration = expiresAt
	s.accounts[userID] = acc
	return true, nil
}

func (s *memStore) CreateThread(ctx context.Context, userID string, thread models.Thread) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	thread.DateCreated = time.Now()
	s.threads[thread.ID] = thread
	return nil
}

func (s *memStore) AppendMessages(ctx context.Context, userID, threadID string, msgs []models.Message) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.failAppend {
		return errors.New("store unavailable")
	}
	s.messages[threadID] = append(s.messages[threadID], msgs...)
	return nil
}

func (s *memStore) setAccount(acc models.Account) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.accounts[acc.UserID] = acc
}

func (s *memStore) account(userID string) models.Account {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.accounts[userID]
}

// fakeCompleter is a canned ChatCompleter.
type fakeCompleter struct {
	resp *llm.ChatCompletionResponse
	err  error

	lastReq *llm.ChatCompletionRequest
	calls   int
}

func (f *fakeCompleter) CreateChatCompletion(ctx context.Context, req *llm.ChatCompletionRequest) (*llm.ChatCompletionResponse, error) {
	f.calls++
	f.lastReq = req
	if f.err != nil {
		return nil, f.err
	}
	return f.resp, nil
}

func completionWith(content string, totalTokens int) *llm.ChatCompletionResponse {
	return &llm.ChatCompletionResponse{
		ID:    "chatcmpl-test",
		Model: "gpt-4o",
		Choices: []llm.Choice{
			{Message: &llm.ChatMessage{Role: models.RoleAssistant, Content: content}, FinishReason: "stop"},
		},
		Usage: &llm.Usage{TotalTokens: totalTokens},
	}
}

// fakeCheckout records checkout params instead of calling Stripe.
type fakeCheckout struct {
	lastParams *stripe.CheckoutSessionParams
	err        error
}

func (f *fakeCheckout) Create(params *stripe.CheckoutSessionParams) (*stripe.CheckoutSession, error) {
	f.lastParams = params
	if f.err != nil {
		return nil, f.err
	}
	return &stripe.CheckoutSession{
		ID:       "cs_test_123",
		URL:      "https://checkout.stripe.com/pay/cs_test_123",
		Metadata: params.Metadata,
	}, nil
}

// fakeOutbox records published records.
type fakeOutbox struct {
	recs []models.PendingMessages
	err  error
}

func (f *fakeOutbox) Publish(ctx context.Context, rec models.PendingMessages) error {
	if f.err != nil {
		return f.err
	}
	f.recs = append(f.recs, rec)
	return nil
}
