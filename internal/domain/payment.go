package domain

import (
	"context"
	"time"

	"github.com/google/uuid"
)

// Payment is a settled purchase reported by the payment provider's webhook.
type Payment struct {
	PaymentID   string
	MakerID     uuid.UUID
	AmountCents int64
	Currency    string
	ReceivedAt  time.Time
}

type PaymentRepository interface {
	// RecordAndGrant stores the payment and grants the maker lifetime access in one
	// transaction. It reports false when the payment ID was already recorded.
	RecordAndGrant(ctx context.Context, p Payment) (bool, error)
}
