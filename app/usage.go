// Package app meters token spend for unsubscribed accounts.
package app

import (
	"context"
	"log"

	"github.com/WWTD-Production/Server/app/models"
)

type budgetError struct {
	Available int64
}

func (e budgetError) Error() string {
	return "token budget exhausted"
}

// Meter tracks token spend against an account's budget. Callers only meter
// unsubscribed accounts; subscribed usage is unmetered by definition.
type Meter struct {
	store AccountStore
}

func NewMeter(store AccountStore) *Meter {
	return &Meter{store: store}
}

// Admit decides whether an account may issue another metered request.
// Subscribed accounts always pass. An unsubscribed account passes while its
// balance is positive; a balance driven to or below zero by a previous
// request is rejected here, before any provider spend.
func (m *Meter) Admit(account models.Account) error {
	if account.IsSubscribed {
		return nil
	}
	if account.AvailableTokens > 0 {
		return nil
	}
	return budgetError{Available: account.AvailableTokens}
}

// RecordUsage decrements the account's budget by tokensUsed. The decrement
// is atomic at the store. Failures are logged and swallowed: the response
// has already been delivered, and failing to bill must not block it.
func (m *Meter) RecordUsage(ctx context.Context, userID string, tokensUsed int64) {
	if tokensUsed < 0 {
		tokensUsed = 0
	}
	if tokensUsed == 0 {
		return
	}
	if err := m.store.DecrementTokens(ctx, userID, tokensUsed); err != nil {
		log.Printf("failed to update tokens for user=%s: %v", userID, err)
	}
}
