package app

import (
	"context"
	"errors"
	"log"
	"time"

	"github.com/WWTD-Production/Server/app/models"
)

const (
	monthlyTerm = 30 * 24 * time.Hour
	yearlyTerm  = 365 * 24 * time.Hour
)

// Entitlements applies completed payments to accounts. Application is keyed
// on the checkout session id so a redelivered notification never extends the
// subscription a second time.
type Entitlements struct {
	store AccountStore
}

func NewEntitlements(store AccountStore) *Entitlements {
	return &Entitlements{store: store}
}

// ApplyCompletedPayment activates the subscription bought in sessionID.
// It reports false when that session was already applied.
func (e *Entitlements) ApplyCompletedPayment(ctx context.Context, sessionID, userID string, plan models.Plan) (bool, error) {
	if sessionID == "" {
		return false, errors.New("missing checkout session id")
	}
	if userID == "" {
		return false, errors.New("missing user id")
	}

	expiresAt := expirationFor(plan, time.Now().UTC())
	applied, err := e.store.ApplyCompletedPayment(ctx, sessionID, userID, plan, expiresAt)
	if err != nil {
		return false, err
	}
	if !applied {
		log.Printf("payment already applied, skipping session=%s user=%s", sessionID, userID)
		return false, nil
	}

	log.Printf("subscription updated user=%s plan=%s expires=%s", userID, plan, expiresAt.Format(time.RFC3339))
	return true, nil
}

// expirationFor grants no term for plans it does not recognize.
func expirationFor(plan models.Plan, now time.Time) time.Time {
	switch plan {
	case models.PlanMonthly:
		return now.Add(monthlyTerm)
	case models.PlanYearly:
		return now.Add(yearlyTerm)
	default:
		return now
	}
}
