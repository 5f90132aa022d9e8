package billing

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// SettlementRequest describes a bill to fulfil with the external provider.
type SettlementRequest struct {
	Category  string
	Reference string
	Amount    decimal.Decimal
}

// SettlementReceipt is the provider's acknowledgement of a fulfilled bill.
type SettlementReceipt struct {
	ProviderRef string
	SettledAt   time.Time
}

// Settler is the connector to the external payee system that fulfils
// airtime and data purchases. Implementations must honour context
// cancellation: the caller bounds every settlement with a timeout and
// treats expiry as failure.
type Settler interface {
	Settle(ctx context.Context, req SettlementRequest) (SettlementReceipt, error)
}

// SimulatedSettler stands in for the real provider. It waits for the
// configured delay and then approves, unless the context expires first.
type SimulatedSettler struct {
	Delay time.Duration
}

// Settle approves the request with a synthetic reference after Delay.
func (s SimulatedSettler) Settle(ctx context.Context, _ SettlementRequest) (SettlementReceipt, error) {
	if s.Delay > 0 {
		timer := time.NewTimer(s.Delay)
		defer timer.Stop()
		select {
		case <-ctx.Done():
			return SettlementReceipt{}, ctx.Err()
		case <-timer.C:
		}
	}
	return SettlementReceipt{ProviderRef: uuid.NewString(), SettledAt: time.Now().UTC()}, nil
}
