package billing

import "time"

// Payment statuses for the local audit trail.
const (
	PaymentStatusPending   = "pending"
	PaymentStatusCompleted = "completed"
	PaymentStatusFailed    = "failed"
)

// Payment records one gateway round trip against a backend order. The
// backend stays the authority on order status; this table exists so support
// can see what the gateway said without querying the provider.
type Payment struct {
	ID              uint   `gorm:"primaryKey"`
	OrderID         string `gorm:"size:64;index"`
	Provider        string `gorm:"size:32"`
	ProviderOrderID string `gorm:"size:128;uniqueIndex"`
	CaptureID       *string
	Amount          string `gorm:"size:32"`
	Currency        string `gorm:"size:3"`
	Status          string `gorm:"size:16"`
	ProviderStatus  *string
	CreatedAt       time.Time
	UpdatedAt       time.Time
}
