package billing

import (
	"context"
	"fmt"

	"gorm.io/gorm"

	"enrollment-app/internal/domain/orders"
)

// Recorder writes the payment audit trail. It implements
// checkout.PaymentRecorder.
type Recorder struct {
	db *gorm.DB
}

func NewRecorder(db *gorm.DB) *Recorder {
	return &Recorder{db: db}
}

func (r *Recorder) RecordRemoteOrder(ctx context.Context, order *orders.Order, provider, providerOrderID string) error {
	p := Payment{
		OrderID:         order.ID,
		Provider:        provider,
		ProviderOrderID: providerOrderID,
		Amount:          order.Amount.StringFixed(2),
		Currency:        order.Currency,
		Status:          PaymentStatusPending,
	}
	if err := r.db.WithContext(ctx).Create(&p).Error; err != nil {
		return fmt.Errorf("record payment attempt: %w", err)
	}
	return nil
}

func (r *Recorder) RecordOutcome(ctx context.Context, providerOrderID string, completed bool, providerStatus, captureID string) error {
	status := PaymentStatusFailed
	if completed {
		status = PaymentStatusCompleted
	}

	updates := map[string]any{"status": status}
	if providerStatus != "" {
		updates["provider_status"] = providerStatus
	}
	if captureID != "" {
		updates["capture_id"] = captureID
	}

	err := r.db.WithContext(ctx).
		Model(&Payment{}).
		Where("provider_order_id = ?", providerOrderID).
		Updates(updates).Error
	if err != nil {
		return fmt.Errorf("record payment outcome: %w", err)
	}
	return nil
}

// ListByOrderIDs returns the audit rows for the given backend orders, newest
// first.
func (r *Recorder) ListByOrderIDs(ctx context.Context, orderIDs []string) ([]Payment, error) {
	var payments []Payment
	err := r.db.WithContext(ctx).
		Where("order_id IN ?", orderIDs).
		Order("created_at DESC").
		Find(&payments).Error
	if err != nil {
		return nil, fmt.Errorf("load payments: %w", err)
	}
	return payments, nil
}
