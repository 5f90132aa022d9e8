package ledger

import (
	"context"
	"errors"
	"time"

	"github.com/shopspring/decimal"
)

var (
	// ErrInsufficientFunds occurs when a wallet lacks the balance to cover a
	// requested debit.
	ErrInsufficientFunds = errors.New("insufficient funds")

	// ErrWalletNotFound indicates the referenced account number has no wallet.
	ErrWalletNotFound = errors.New("wallet not found")

	// ErrInvalidAmount indicates a monetary amount that is not a positive
	// decimal with at most two fractional digits.
	ErrInvalidAmount = errors.New("invalid amount")
)

const (
	// CategoryTransfer marks wallet-to-wallet and outbound bank transfers.
	CategoryTransfer = "TRANSFER"
	// CategoryAirtime marks airtime bill payments.
	CategoryAirtime = "AIRTIME"
	// CategoryData marks data bundle bill payments.
	CategoryData = "DATA"
	// CategoryDeposit marks wallet funding credits.
	CategoryDeposit = "DEPOSIT"
)

// Entry is one immutable row of a wallet's transaction log. Amount is signed:
// positive entries are credits, negative entries are debits. Entries are never
// updated or deleted once written; a wallet's balance always equals the sum of
// its entry amounts.
type Entry struct {
	ID                  string
	AccountNumber       string
	Amount              decimal.Decimal
	Category            string
	Description         string
	Counterparty        string
	CounterpartyAccount string
	CreatedAt           time.Time
}

// Posting describes a single-leg balance mutation against one wallet.
// Amount must be positive; Debit and Credit decide the sign of the entry.
type Posting struct {
	Account             string
	Amount              decimal.Decimal
	Category            string
	Description         string
	Counterparty        string
	CounterpartyAccount string
}

// TransferPosting describes an internal two-leg transfer: a debit against the
// sender's wallet and a matching credit against the recipient's, committed as
// one atomic unit.
type TransferPosting struct {
	FromAccount string
	ToAccount   string
	Amount      decimal.Decimal
	FromLeg     LegSpec
	ToLeg       LegSpec
}

// LegSpec carries the display fields recorded on one leg of a transfer.
type LegSpec struct {
	Description         string
	Counterparty        string
	CounterpartyAccount string
}

// PostingResult captures the outcome of a committed posting.
type PostingResult struct {
	TransactionID string
	NewBalance    decimal.Decimal
}

// EntryQuery selects entries from a wallet's log. Category may be empty or
// "all" (no filter), "deposit" (credits only), "withdrawal" (debits only), or
// an exact category such as TRANSFER. A zero Limit means no cap.
type EntryQuery struct {
	Account  string
	From     time.Time
	To       time.Time
	Category string
	Limit    int
}

// Summary aggregates a filtered slice of the log. TotalDebit is reported as
// an absolute value; Net is TotalCredit minus TotalDebit.
type Summary struct {
	Count       int
	TotalCredit decimal.Decimal
	TotalDebit  decimal.Decimal
	Net         decimal.Decimal
}

// Ledger is the contract implemented by ledger backends. Every mutating
// operation is atomic: the balance change and its log entries either all
// persist or none do, and concurrent postings against the same wallet are
// serialized so a stale balance can never be spent twice.
type Ledger interface {
	// EnsureAccount registers an account with backends that keep balances
	// outside the wallet store. The Postgres ledger reads balances from the
	// wallets table itself and treats this as a no-op.
	EnsureAccount(ctx context.Context, account string) error
	Balance(ctx context.Context, account string) (decimal.Decimal, error)
	Transfer(ctx context.Context, p TransferPosting) (PostingResult, error)
	Debit(ctx context.Context, p Posting) (PostingResult, error)
	Credit(ctx context.Context, p Posting) (PostingResult, error)
	Entries(ctx context.Context, q EntryQuery) ([]Entry, error)
	Summarize(ctx context.Context, q EntryQuery) (Summary, error)
}

// ParseAmount parses a monetary amount from its wire form. Amounts travel as
// decimal strings, never floats, and must be positive with at most two
// fractional digits.
func ParseAmount(s string) (decimal.Decimal, error) {
	d, err := decimal.NewFromString(s)
	if err != nil {
		return decimal.Decimal{}, ErrInvalidAmount
	}
	if !d.IsPositive() {
		return decimal.Decimal{}, ErrInvalidAmount
	}
	if d.Exponent() < -2 {
		return decimal.Decimal{}, ErrInvalidAmount
	}
	return d, nil
}

func validPosting(account string, amount decimal.Decimal) error {
	if account == "" {
		return ErrWalletNotFound
	}
	if !amount.IsPositive() || amount.Exponent() < -2 {
		return ErrInvalidAmount
	}
	return nil
}

func matchesCategory(e Entry, category string) bool {
	switch category {
	case "", "all":
		return true
	case "deposit":
		return e.Amount.IsPositive()
	case "withdrawal":
		return e.Amount.IsNegative()
	default:
		return e.Category == category
	}
}
