package model

import (
	"strconv"
	"time"
)

// BillingCycle is how often a subscription is billed.
type BillingCycle string

const (
	BillingMonthly   BillingCycle = "monthly"
	BillingQuarterly BillingCycle = "quarterly"
	BillingYearly    BillingCycle = "yearly"
	BillingOneTime   BillingCycle = "one_time"
)

// SubscriptionStatus is the lifecycle state of a subscription.
type SubscriptionStatus string

const (
	SubscriptionActive    SubscriptionStatus = "active"
	SubscriptionPaused    SubscriptionStatus = "paused"
	SubscriptionCancelled SubscriptionStatus = "cancelled"
)

// Subscription is a recurring service billed to a client.
type Subscription struct {
	ID              int64              `json:"id"`
	ClientID        int64              `json:"clientId"`
	Name            string             `json:"name"`
	Description     string             `json:"description"`
	Amount          float64            `json:"amount"`
	Currency        string             `json:"currency"`
	BillingCycle    BillingCycle       `json:"billingCycle"`
	StartDate       Date               `json:"startDate"`
	NextPaymentDate *Date              `json:"nextPaymentDate"`
	Status          SubscriptionStatus `json:"status"`
	CreatedAt       time.Time          `json:"createdAt"`
	UpdatedAt       time.Time          `json:"updatedAt"`
}

// MaxAmount is the exclusive upper bound of a NUMERIC(12,2) amount.
const MaxAmount = 1e10

// Normalize fills defaults for omitted fields.
func (s *Subscription) Normalize() {
	if s.Currency == "" {
		s.Currency = "EUR"
	}
	if s.BillingCycle == "" {
		s.BillingCycle = BillingMonthly
	}
	if s.Status == "" {
		s.Status = SubscriptionActive
	}
}

// Validate checks field constraints.
func (s *Subscription) Validate() error {
	if s.ClientID <= 0 {
		return invalid("clientId", "is required")
	}
	if s.Amount < 0 {
		return invalid("amount", "must not be negative")
	}
	if s.Amount >= MaxAmount {
		return invalid("amount", "is too large")
	}
	if s.StartDate.IsZero() {
		return invalid("startDate", "is required")
	}
	if len(s.Currency) != 3 {
		return invalid("currency", "must be a 3-letter ISO code")
	}
	return firstError(
		required("name", s.Name),
		maxLen("name", s.Name, 255),
		oneOf("billingCycle", string(s.BillingCycle),
			string(BillingMonthly), string(BillingQuarterly), string(BillingYearly), string(BillingOneTime)),
		oneOf("status", string(s.Status),
			string(SubscriptionActive), string(SubscriptionPaused), string(SubscriptionCancelled)),
	)
}

func itoa(n int64) string {
	return strconv.FormatInt(n, 10)
}

// SetID sets the primary key.
func (s *Subscription) SetID(id int64) { s.ID = id }

// GetID returns the primary key.
func (s *Subscription) GetID() int64 { return s.ID }
