// Package models defines account, subscription, and message thread records.
package models

import "time"

type Plan string

const (
	PlanMonthly Plan = "monthly"
	PlanYearly  Plan = "yearly"
	PlanNone    Plan = "none"
)

// ValidPurchasePlan reports whether a plan can be bought at checkout.
func ValidPurchasePlan(p Plan) bool {
	return p == PlanMonthly || p == PlanYearly
}

// Account is the per-user subscription and token budget record.
// AvailableTokens is only meaningful while the account is not subscribed.
type Account struct {
	UserID                 string    `json:"user_id"`
	IsSubscribed           bool      `json:"isSubscribed"`
	SubscriptionPlan       Plan      `json:"subscriptionPlan"`
	SubscriptionExpiration time.Time `json:"subscriptionExpirationDate"`
	AvailableTokens        int64     `json:"availableTokens"`
}
