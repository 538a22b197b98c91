package plans

import "github.com/shopspring/decimal"

// BillingCycle values match the backend's pricing plan serializer.
type BillingCycle string

const (
	CycleOneTime   BillingCycle = "one_time"
	CycleMonthly   BillingCycle = "monthly"
	CycleQuarterly BillingCycle = "quarterly"
	CycleYearly    BillingCycle = "yearly"
)

func (c BillingCycle) Recurring() bool {
	return c != CycleOneTime && c != ""
}

// PricingPlan is a read-only copy of a plan owned by the platform backend.
// It is fetched once per checkout attempt and never mutated locally.
type PricingPlan struct {
	ID            string           `json:"id"`
	Name          string           `json:"name"`
	Description   string           `json:"description"`
	Price         decimal.Decimal  `json:"price"`
	OriginalPrice *decimal.Decimal `json:"original_price,omitempty"`
	Currency      string           `json:"currency"`
	BillingCycle  BillingCycle     `json:"billing_cycle"`
	Features      []string         `json:"features"`
	ProgramID     string           `json:"program_id,omitempty"`
	ProgramTitle  string           `json:"program_title,omitempty"`
	IsActive      bool             `json:"is_active"`
}
