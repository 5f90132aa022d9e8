package billing

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/owobank/owobank/internal/ledger"
	"github.com/owobank/owobank/internal/pin"
	"github.com/owobank/owobank/internal/wallet"
)

var (
	// ErrInvalidCategory rejects bill categories other than AIRTIME and DATA.
	ErrInvalidCategory = errors.New("invalid bill category")

	// ErrSettlementUnavailable indicates the external provider failed or
	// timed out. The wallet is never charged in this case.
	ErrSettlementUnavailable = errors.New("settlement provider unavailable")

	// ErrReconciliationRequired indicates the provider settled the bill but
	// the debit failed to persist. The charge is unreconciled and needs
	// manual follow-up; it is never retried automatically.
	ErrReconciliationRequired = errors.New("settlement completed but debit failed; reconciliation required")
)

const defaultSettlementTimeout = 5 * time.Second

// Service executes bill payments: an external settlement followed by one
// atomic wallet debit.
type Service struct {
	ledger  ledger.Ledger
	wallets *wallet.Service
	gate    *pin.Gate
	settler Settler
	timeout time.Duration
	logger  *slog.Logger
}

// NewService constructs a billing service. A nil settler gets the simulated
// provider; a zero timeout gets the default bound.
func NewService(led ledger.Ledger, wallets *wallet.Service, gate *pin.Gate, settler Settler, timeout time.Duration, logger *slog.Logger) *Service {
	if settler == nil {
		settler = SimulatedSettler{}
	}
	if timeout <= 0 {
		timeout = defaultSettlementTimeout
	}
	return &Service{ledger: led, wallets: wallets, gate: gate, settler: settler, timeout: timeout, logger: logger}
}

// Input captures one bill payment request.
type Input struct {
	HolderID  string
	Category  string
	Amount    string
	Reference string
	PIN       string
}

// Result describes a committed bill payment.
type Result struct {
	TransactionID string
	NewBalance    string
	ProviderRef   string
	CompletedAt   time.Time
}

// Pay validates and authorizes the request, settles with the provider under
// a timeout, and then applies a single atomic debit. A provider failure
// leaves the wallet untouched.
func (s *Service) Pay(ctx context.Context, input Input) (Result, error) {
	category := strings.ToUpper(strings.TrimSpace(input.Category))
	if category != ledger.CategoryAirtime && category != ledger.CategoryData {
		return Result{}, ErrInvalidCategory
	}
	amount, err := ledger.ParseAmount(input.Amount)
	if err != nil {
		return Result{}, err
	}
	if strings.TrimSpace(input.Reference) == "" {
		return Result{}, errors.New("payee reference is required")
	}

	if _, err := s.gate.Authorize(ctx, input.HolderID, input.PIN); err != nil {
		return Result{}, err
	}
	w, err := s.wallets.GetByOwner(ctx, input.HolderID)
	if err != nil {
		return Result{}, err
	}

	// Fail fast before involving the provider; the authoritative check
	// happens again under the ledger's row lock.
	balance, err := s.ledger.Balance(ctx, w.AccountNumber)
	if err != nil {
		return Result{}, err
	}
	if balance.LessThan(amount) {
		return Result{}, ledger.ErrInsufficientFunds
	}

	settleCtx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()
	receipt, err := s.settler.Settle(settleCtx, SettlementRequest{
		Category:  category,
		Reference: input.Reference,
		Amount:    amount,
	})
	if err != nil {
		return Result{}, fmt.Errorf("%w: %v", ErrSettlementUnavailable, err)
	}

	res, err := s.ledger.Debit(ctx, ledger.Posting{
		Account:             w.AccountNumber,
		Amount:              amount,
		Category:            category,
		Description:         fmt.Sprintf("%s purchase for %s", titleCase(category), input.Reference),
		Counterparty:        input.Reference,
		CounterpartyAccount: receipt.ProviderRef,
	})
	if err != nil {
		// The provider has already been paid. Surface the unreconciled
		// charge instead of pretending nothing happened.
		if s.logger != nil {
			s.logger.Error("bill settled but debit failed",
				slog.String("holder_id", input.HolderID),
				slog.String("provider_ref", receipt.ProviderRef),
				slog.String("category", category),
				slog.String("amount", amount.StringFixed(2)),
				slog.Any("error", err),
			)
		}
		return Result{}, fmt.Errorf("%w: %v", ErrReconciliationRequired, err)
	}

	return Result{
		TransactionID: res.TransactionID,
		NewBalance:    res.NewBalance.StringFixed(2),
		ProviderRef:   receipt.ProviderRef,
		CompletedAt:   time.Now().UTC(),
	}, nil
}

func titleCase(category string) string {
	if category == "" {
		return category
	}
	return strings.ToUpper(category[:1]) + strings.ToLower(category[1:])
}
