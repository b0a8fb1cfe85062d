package models

import "time"

// SubscriptionStatus mirrors the billing provider's subscription states.
type SubscriptionStatus string

const (
	SubscriptionIncomplete SubscriptionStatus = "incomplete"
	SubscriptionTrialing   SubscriptionStatus = "trialing"
	SubscriptionActive     SubscriptionStatus = "active"
	SubscriptionPastDue    SubscriptionStatus = "past_due"
	SubscriptionCanceled   SubscriptionStatus = "canceled"
)

// Subscription is a user's paid plan.
type Subscription struct {
	Base
	UserID           string             `gorm:"type:uuid;not null;uniqueIndex" json:"user_id"`
	CustomerID       string             `gorm:"index" json:"customer_id"`
	SubscriptionID   string             `gorm:"index" json:"subscription_id"`
	Status           SubscriptionStatus `gorm:"not null" json:"status"`
	Plan             string             `json:"plan"`
	CurrentPeriodEnd *time.Time         `json:"current_period_end,omitempty"`
}

// IsPremium reports whether the subscription grants paid features.
func (s Subscription) IsPremium() bool {
	return s.Status == SubscriptionActive || s.Status == SubscriptionTrialing
}
