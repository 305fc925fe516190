package app

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"github.com/pscheid92/founderswall/internal/domain"
)

// RecordPayment grants lifetime access for a settled payment. Deliveries of an already
// recorded payment ID succeed without changing anything and report false.
func (s *Service) RecordPayment(ctx context.Context, p domain.Payment) (bool, error) {
	p.PaymentID = strings.TrimSpace(p.PaymentID)
	if p.PaymentID == "" {
		return false, domain.Invalid("payment id is required")
	}
	if p.AmountCents <= 0 {
		return false, domain.Invalid("payment amount must be positive")
	}

	if _, err := s.makers.GetByID(ctx, p.MakerID); err != nil {
		return false, err
	}

	if p.ReceivedAt.IsZero() {
		p.ReceivedAt = s.clock.Now()
	}

	granted, err := s.payments.RecordAndGrant(ctx, p)
	if err != nil {
		return false, fmt.Errorf("failed to record payment: %w", err)
	}

	if granted {
		slog.InfoContext(ctx, "Lifetime access granted", "maker_id", p.MakerID.String(), "payment_id", p.PaymentID)
	} else {
		slog.InfoContext(ctx, "Duplicate payment delivery ignored", "payment_id", p.PaymentID)
	}
	return granted, nil
}
